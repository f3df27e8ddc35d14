package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hmpc-qa/inspection-api/internal/models"
	appErrors "github.com/hmpc-qa/inspection-api/pkg/errors"
	"github.com/hmpc-qa/inspection-api/pkg/export"
)

type defectExporter interface {
	Render(data export.Dataset, sheet string) ([]byte, error)
}

// ExportService produces spreadsheet downloads of a job's defect summary.
type ExportService struct {
	jobs     reportJobReader
	exporter defectExporter
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(jobs reportJobReader, exporter defectExporter, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{jobs: jobs, exporter: exporter, logger: logger}
}

var defectSummaryHeaders = []string{"No.", "Defect Code", "Defect Encountered", "Status", "Recurrence", "Image"}

// DefectSummaryXLSX renders the job's defect table as a workbook, mirroring
// the summary page columns of the PDF report.
func (s *ExportService) DefectSummaryXLSX(ctx context.Context, jobID string) ([]byte, string, error) {
	job, err := s.requireJob(ctx, jobID)
	if err != nil {
		return nil, "", err
	}

	rows := make([]map[string]string, 0, len(job.DefectSummary))
	for idx, defect := range job.DefectSummary {
		no := defect.No
		if no == 0 {
			no = idx + 1
		}
		code := defect.DefectCode
		if option, ok := lookupSummaryCode(code); ok {
			code = option
		}
		image := ""
		if defect.Image != nil {
			image = *defect.Image
		}
		rows = append(rows, map[string]string{
			"No.":                fmt.Sprintf("%d", no),
			"Defect Code":        code,
			"Defect Encountered": defect.DefectEncountered,
			"Status":             string(defect.Status),
			"Recurrence":         fmt.Sprintf("%d", defect.Recurrence),
			"Image":              image,
		})
	}

	data, err := s.exporter.Render(export.Dataset{Headers: defectSummaryHeaders, Rows: rows}, "Defect Summary")
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render defect summary export")
	}
	filename := fmt.Sprintf("defect-summary-%s.xlsx", job.ID)
	return data, filename, nil
}

func (s *ExportService) requireJob(ctx context.Context, jobID string) (*models.Job, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid job id")
	}
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch job")
	}
	return job, nil
}

// lookupSummaryCode expands a stored defect code value to its short printed
// code, matching the report's value-then-code resolution.
func lookupSummaryCode(input string) (string, bool) {
	codes := map[string]string{
		"functional_safety": "XX",
		"functional_other":  "X",
		"sensory_major":     "XX",
		"sensory_minor":     "X",
	}
	if code, ok := codes[input]; ok {
		return code, true
	}
	return "", false
}

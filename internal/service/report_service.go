package service

import (
	"context"
	"database/sql"
	"errors"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hmpc-qa/inspection-api/internal/checklist"
	"github.com/hmpc-qa/inspection-api/internal/dto"
	"github.com/hmpc-qa/inspection-api/internal/models"
	appErrors "github.com/hmpc-qa/inspection-api/pkg/errors"
)

type reportJobReader interface {
	GetByID(ctx context.Context, id string) (*models.Job, error)
}

type reportRenderer interface {
	Render(w io.Writer, job *models.Job, category *models.Category) error
}

// ReportDocument is a prepared report: the resolved job and category plus the
// ability to stream the PDF. Callers read the metadata to build response
// headers before asking for the body.
type ReportDocument struct {
	Job      *models.Job
	Category *models.Category

	renderer reportRenderer
}

// Render streams the PDF to w.
func (d *ReportDocument) Render(w io.Writer) error {
	return d.renderer.Render(w, d.Job, d.Category)
}

// ReportService prepares inspection report downloads.
type ReportService struct {
	jobs       reportJobReader
	categories jobCategoryReader
	renderer   reportRenderer
	logger     *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(jobs reportJobReader, categories jobCategoryReader, renderer reportRenderer, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{jobs: jobs, categories: categories, renderer: renderer, logger: logger}
}

// Generate resolves the job and its category and returns the renderable
// document. A job whose category was deleted still renders; only the category
// name line on the letterhead goes blank.
func (s *ReportService) Generate(ctx context.Context, jobID string) (*ReportDocument, error) {
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

	category, err := s.categories.GetByID(ctx, job.CategoryID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch category")
		}
		s.logger.Warn("rendering report for job with deleted category", zap.String("job_id", jobID))
		category = nil
	}

	return &ReportDocument{Job: job, Category: category, renderer: s.renderer}, nil
}

// Preview returns the checklist exactly as the report will number and filter
// it, section by section.
func (s *ReportService) Preview(ctx context.Context, jobID string) ([]dto.SectionPreview, error) {
	doc, err := s.Generate(ctx, jobID)
	if err != nil {
		return nil, err
	}

	sections := make([]dto.SectionPreview, 0, len(doc.Job.Checklist))
	for idx, section := range doc.Job.Checklist {
		preview := dto.SectionPreview{
			ID:      section.ID,
			Section: section.Title,
			Order:   section.Order,
			Numeral: checklist.RomanNumeral(idx + 1),
		}
		rows := checklist.Flatten(checklist.BuildTree(section.Items))
		preview.Rows = make([]dto.RowPreview, 0, len(rows))
		for _, row := range rows {
			rowPreview := dto.RowPreview{
				Number:  row.Number,
				Text:    row.DisplayText(),
				Depth:   row.Depth,
				Remarks: row.VisibleRemarks(),
			}
			if row.Item.Type == models.ItemTypeStatus {
				rowPreview.Status = string(row.Item.Status)
			}
			preview.Rows = append(preview.Rows, rowPreview)
		}
		sections = append(sections, preview)
	}
	return sections, nil
}

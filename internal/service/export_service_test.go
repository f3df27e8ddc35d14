package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmpc-qa/inspection-api/internal/models"
	appErrors "github.com/hmpc-qa/inspection-api/pkg/errors"
	"github.com/hmpc-qa/inspection-api/pkg/export"
)

type stubExporter struct {
	dataset export.Dataset
	sheet   string
}

func (s *stubExporter) Render(data export.Dataset, sheet string) ([]byte, error) {
	s.dataset = data
	s.sheet = sheet
	return []byte("xlsx-bytes"), nil
}

func TestExportServiceDefectSummaryXLSX(t *testing.T) {
	image := "stored/defect.png"
	job := &models.Job{
		ID: uuid.NewString(),
		DefectSummary: models.DefectSummaries{
			{No: 3, DefectCode: "functional_safety", DefectEncountered: "Brake hose chafing", Status: models.StatusNoGood, Recurrence: 2, Image: &image},
			{DefectCode: "B-17", DefectEncountered: "Loose trim", Status: models.StatusCorrected},
		},
	}
	exporter := &stubExporter{}
	svc := NewExportService(newMockJobRepo(job), exporter, nil)

	data, filename, err := svc.DefectSummaryXLSX(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("xlsx-bytes"), data)
	assert.Equal(t, fmt.Sprintf("defect-summary-%s.xlsx", job.ID), filename)
	assert.Equal(t, "Defect Summary", exporter.sheet)

	require.Len(t, exporter.dataset.Rows, 2)
	first := exporter.dataset.Rows[0]
	assert.Equal(t, "3", first["No."])
	assert.Equal(t, "XX", first["Defect Code"])
	assert.Equal(t, "Brake hose chafing", first["Defect Encountered"])
	assert.Equal(t, image, first["Image"])

	// Zero No falls back to list position; unknown codes pass through.
	second := exporter.dataset.Rows[1]
	assert.Equal(t, "2", second["No."])
	assert.Equal(t, "B-17", second["Defect Code"])
}

func TestExportServiceDefectSummaryXLSXErrors(t *testing.T) {
	svc := NewExportService(newMockJobRepo(), &stubExporter{}, nil)

	_, _, err := svc.DefectSummaryXLSX(context.Background(), "not-a-uuid")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, _, err = svc.DefectSummaryXLSX(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

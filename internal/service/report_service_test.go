package service

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmpc-qa/inspection-api/internal/models"
	appErrors "github.com/hmpc-qa/inspection-api/pkg/errors"
)

type stubRenderer struct {
	payload  []byte
	lastJob  *models.Job
	category *models.Category
	called   bool
}

func (r *stubRenderer) Render(w io.Writer, job *models.Job, category *models.Category) error {
	r.called = true
	r.lastJob = job
	r.category = category
	_, err := w.Write(r.payload)
	return err
}

func previewJob() *models.Job {
	root := uuid.NewString()
	return &models.Job{
		ID:         uuid.NewString(),
		CategoryID: uuid.NewString(),
		Checklist: models.Checklist{
			{
				ID:    uuid.NewString(),
				Title: "Exterior",
				Order: 1,
				Items: []models.Item{
					{ID: root, Name: "Paint finish", Type: models.ItemTypeStatus, Status: models.StatusNoGood, Remarks: "scratched"},
					{ID: uuid.NewString(), Name: "Roof coat", Type: models.ItemTypeStatus, Status: models.StatusGood, Remarks: "hidden", ParentItem: &root},
					{ID: uuid.NewString(), Name: "Chassis number", Type: models.ItemTypeInput, Value: ""},
					{ID: uuid.NewString(), Name: "Key number", Type: models.ItemTypeInput, Value: "K-42"},
				},
			},
			{ID: uuid.NewString(), Title: "Engine", Order: 5},
		},
	}
}

func TestReportServiceGenerate(t *testing.T) {
	job := previewJob()
	category := &models.Category{ID: job.CategoryID, Name: "Electric Bus"}
	renderer := &stubRenderer{payload: []byte("%PDF-stub")}
	svc := NewReportService(newMockJobRepo(job), newMockCategoryRepo(category), renderer, nil)

	doc, err := svc.Generate(context.Background(), job.ID)
	require.NoError(t, err)
	require.NotNil(t, doc.Category)
	assert.Equal(t, "Electric Bus", doc.Category.Name)

	var buf bytes.Buffer
	require.NoError(t, doc.Render(&buf))
	assert.True(t, renderer.called)
	assert.Equal(t, "%PDF-stub", buf.String())
}

func TestReportServiceGenerateDeletedCategory(t *testing.T) {
	job := previewJob()
	renderer := &stubRenderer{}
	svc := NewReportService(newMockJobRepo(job), newMockCategoryRepo(), renderer, nil)

	doc, err := svc.Generate(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Nil(t, doc.Category)
}

func TestReportServiceGenerateErrors(t *testing.T) {
	svc := NewReportService(newMockJobRepo(), newMockCategoryRepo(), &stubRenderer{}, nil)

	_, err := svc.Generate(context.Background(), "not-a-uuid")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Generate(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReportServicePreviewNumbering(t *testing.T) {
	job := previewJob()
	svc := NewReportService(newMockJobRepo(job), newMockCategoryRepo(), &stubRenderer{}, nil)

	sections, err := svc.Preview(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, sections, 2)

	// Numerals follow list position, not the stored section orders.
	assert.Equal(t, "I", sections[0].Numeral)
	assert.Equal(t, "II", sections[1].Numeral)
	assert.Equal(t, 5, sections[1].Order)

	rows := sections[0].Rows
	// The empty input item is filtered; the filled one renders its value.
	require.Len(t, rows, 3)
	assert.Equal(t, "1", rows[0].Number)
	assert.Equal(t, "Paint finish", rows[0].Text)
	assert.Equal(t, "scratched", rows[0].Remarks)
	assert.Equal(t, string(models.StatusNoGood), rows[0].Status)

	assert.Equal(t, "1.1", rows[1].Number)
	assert.Equal(t, 1, rows[1].Depth)
	assert.Empty(t, rows[1].Remarks)

	assert.Equal(t, "2", rows[2].Number)
	assert.Equal(t, "K-42", rows[2].Text)
	assert.Empty(t, rows[2].Status)
}

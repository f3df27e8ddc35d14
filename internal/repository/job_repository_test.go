package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmpc-qa/inspection-api/internal/models"
)

func TestJobRepositoryGetByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "category_id", "category_path", "job_info", "checklist", "appearance_images", "appearance_marks", "defect_summary", "technical_tests", "created_at", "updated_at"}).
		AddRow(
			"job-1", "cat-1", "{root-cat,cat-1}",
			[]byte(`{"customer":"ACME Transport","model":"FC9J","jobType":"standard"}`),
			[]byte(`[{"id":"sec-1","section":"Checks","order":1,"items":[]}]`),
			[]byte(`{"front":null,"rear":null,"left":null,"right":null}`),
			[]byte(`[{"side":"front","type":"circle","x":0.5,"y":0.5,"radius":0.1,"path":[],"defectName":"Defect1","remarks":"","image":null}]`),
			[]byte(`[{"no":1,"defectCode":"functional_safety","defectEncountered":"loose bolt","status":"noGood","recurrence":2,"image":null}]`),
			[]byte(`{"speedTesting":{"speedometer":"80","tester":"78"}}`),
			now, now,
		)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, category_id, category_path, job_info, checklist, appearance_images, appearance_marks, defect_summary, technical_tests, created_at, updated_at FROM jobs WHERE id = $1`)).
		WithArgs("job-1").
		WillReturnRows(rows)

	job, err := repo.GetByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "cat-1", job.CategoryID)
	assert.Equal(t, []string{"root-cat", "cat-1"}, []string(job.CategoryPath))
	assert.Equal(t, "ACME Transport", job.JobInfo.Customer)
	require.Len(t, job.AppearanceMarks, 1)
	assert.Equal(t, models.SideFront, job.AppearanceMarks[0].Side)
	assert.InDelta(t, 0.5, job.AppearanceMarks[0].X, 1e-9)
	require.Len(t, job.DefectSummary, 1)
	assert.Equal(t, 2, job.DefectSummary[0].Recurrence)
	assert.Equal(t, "80", job.TechnicalTests.SpeedTesting.Speedometer)
}

func TestJobRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT`)).
		WithArgs("job-404").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "job-404")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestJobRepositoryCreateGeneratesDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO jobs`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	job := &models.Job{CategoryID: "cat-1"}
	require.NoError(t, repo.Create(context.Background(), job))
	assert.NotEmpty(t, job.ID)
	assert.False(t, job.UpdatedAt.IsZero())
}

func TestJobRepositorySaveMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewJobRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE jobs`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Save(context.Background(), &models.Job{ID: "job-404"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

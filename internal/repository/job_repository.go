package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hmpc-qa/inspection-api/internal/models"
)

// JobRepository persists inspection job snapshots.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository constructs the repository.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `id, category_id, category_path, job_info, checklist, appearance_images, appearance_marks, defect_summary, technical_tests, created_at, updated_at`

// Create inserts a new job row with generated defaults.
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	const query = `INSERT INTO jobs (id, category_id, category_path, job_info, checklist, appearance_images, appearance_marks, defect_summary, technical_tests, created_at, updated_at)
VALUES (:id, :category_id, :category_path, :job_info, :checklist, :appearance_images, :appearance_marks, :defect_summary, :technical_tests, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// GetByID returns a job row by its identifier.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	var job models.Job
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

// ListByCategory returns the jobs created from one category, newest first.
func (r *JobRepository) ListByCategory(ctx context.Context, categoryID string) ([]models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE category_id = $1 ORDER BY job_info->>'date' DESC NULLS LAST, created_at DESC`
	var jobs []models.Job
	if err := r.db.SelectContext(ctx, &jobs, query, categoryID); err != nil {
		return nil, fmt.Errorf("list jobs by category: %w", err)
	}
	return jobs, nil
}

// List returns every job, newest inspection date first.
func (r *JobRepository) List(ctx context.Context) ([]models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs ORDER BY job_info->>'date' DESC NULLS LAST, created_at DESC`
	var jobs []models.Job
	if err := r.db.SelectContext(ctx, &jobs, query); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// Save persists the whole mutable state of an existing job row.
func (r *JobRepository) Save(ctx context.Context, job *models.Job) error {
	job.UpdatedAt = time.Now().UTC()
	const query = `UPDATE jobs
SET job_info = :job_info, checklist = :checklist, appearance_images = :appearance_images, appearance_marks = :appearance_marks, defect_summary = :defect_summary, technical_tests = :technical_tests, updated_at = :updated_at
WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, job)
	if err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("save job %s: %w", job.ID, sql.ErrNoRows)
	}
	return nil
}

// Delete removes the job row.
func (r *JobRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("delete job %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

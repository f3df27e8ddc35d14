package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/hmpc-qa/inspection-api/internal/checklist"
	"github.com/hmpc-qa/inspection-api/internal/dto"
	"github.com/hmpc-qa/inspection-api/internal/models"
	appErrors "github.com/hmpc-qa/inspection-api/pkg/errors"
)

type jobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id string) (*models.Job, error)
	ListByCategory(ctx context.Context, categoryID string) ([]models.Job, error)
	List(ctx context.Context) ([]models.Job, error)
	Save(ctx context.Context, job *models.Job) error
	Delete(ctx context.Context, id string) error
}

type jobCategoryReader interface {
	GetByID(ctx context.Context, id string) (*models.Category, error)
}

// maxAncestorDepth bounds the path walk so a corrupted parent chain cannot
// loop forever.
const maxAncestorDepth = 64

// JobService manages inspection jobs: independent checklist snapshots taken
// from a category template or a caller-supplied payload, merged item-by-item
// on update.
type JobService struct {
	repo       jobRepository
	categories jobCategoryReader
	images     imageStore
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewJobService constructs a JobService.
func NewJobService(repo jobRepository, categories jobCategoryReader, images imageStore, validate *validator.Validate, logger *zap.Logger) *JobService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobService{repo: repo, categories: categories, images: images, validator: validate, logger: logger}
}

// Create opens a job under a category. The checklist snapshot comes from the
// category template unless the request carries its own; appearance photos are
// copied by value so later template edits never bleed into the job. Mark and
// defect uploads are keyed by slice index.
func (s *JobService) Create(ctx context.Context, req dto.CreateJobRequest, markImages map[int]ImagePayload, defectImages map[int]ImagePayload) (*models.Job, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid job payload")
	}

	category, err := s.categories.GetByID(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch category")
	}

	path, err := s.ancestorPath(ctx, category)
	if err != nil {
		return nil, err
	}

	source := checklist.FromTemplate(category.Checklist)
	if len(req.Checklist) > 0 {
		source = checklist.FromPayload(req.Checklist)
	}

	marks, err := s.processMarks(req.AppearanceMarks, markImages)
	if err != nil {
		return nil, err
	}
	defects, err := s.processDefects(req.DefectSummary, defectImages)
	if err != nil {
		return nil, err
	}

	job := &models.Job{
		CategoryID:       category.ID,
		CategoryPath:     pq.StringArray(path),
		Checklist:        source.Build(),
		AppearanceImages: category.AppearanceImages,
		AppearanceMarks:  marks,
		DefectSummary:    defects,
	}
	if req.JobInfo != nil {
		job.JobInfo = *req.JobInfo
	}
	if req.TechnicalTests != nil {
		job.TechnicalTests = *req.TechnicalTests
	}

	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create job")
	}
	s.logger.Info("job created", zap.String("job_id", job.ID), zap.String("category_id", category.ID))
	return job, nil
}

// GetByID fetches one job.
func (s *JobService) GetByID(ctx context.Context, id string) (*models.Job, error) {
	return s.requireJob(ctx, id)
}

// ListByCategory returns the jobs opened under one category.
func (s *JobService) ListByCategory(ctx context.Context, categoryID string) ([]models.Job, error) {
	if _, err := uuid.Parse(categoryID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid category id")
	}
	jobs, err := s.repo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list jobs")
	}
	return jobs, nil
}

// List returns all jobs, newest inspection date first.
func (s *JobService) List(ctx context.Context) ([]models.Job, error) {
	jobs, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list jobs")
	}
	return jobs, nil
}

// Update applies a partial update. Checklist updates merge by item id and
// never touch hierarchy or stored codes; mark, defect and technical payloads
// replace wholesale when present.
func (s *JobService) Update(ctx context.Context, id string, req dto.UpdateJobRequest, markImages map[int]ImagePayload, defectImages map[int]ImagePayload) (*models.Job, error) {
	job, err := s.requireJob(ctx, id)
	if err != nil {
		return nil, err
	}

	req.JobInfo.Apply(&job.JobInfo)
	if len(req.Checklist) > 0 {
		checklist.Merge(job.Checklist, req.Checklist)
	}

	if req.AppearanceMarks != nil {
		marks, err := s.processMarks(*req.AppearanceMarks, markImages)
		if err != nil {
			return nil, err
		}
		job.AppearanceMarks = marks
	}
	if req.DefectSummary != nil {
		defects, err := s.processDefects(*req.DefectSummary, defectImages)
		if err != nil {
			return nil, err
		}
		job.DefectSummary = defects
	}
	if req.TechnicalTests != nil {
		job.TechnicalTests = *req.TechnicalTests
	}

	if err := s.repo.Save(ctx, job); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save job")
	}
	s.logger.Info("job updated", zap.String("job_id", job.ID))
	return job, nil
}

// Delete removes a job along with its mark and defect image files. The
// per-side appearance photos belong to the category and are never touched.
func (s *JobService) Delete(ctx context.Context, id string) error {
	job, err := s.requireJob(ctx, id)
	if err != nil {
		return err
	}

	for _, mark := range job.AppearanceMarks {
		s.removeImage(mark.Image)
	}
	for _, defect := range job.DefectSummary {
		s.removeImage(defect.Image)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete job")
	}
	s.logger.Info("job deleted", zap.String("job_id", id))
	return nil
}

// ancestorPath walks the parent chain root-first. A missing ancestor stops
// the walk; the partial path is kept.
func (s *JobService) ancestorPath(ctx context.Context, category *models.Category) ([]string, error) {
	path := []string{}
	current := category
	for depth := 0; current.Parent != nil && depth < maxAncestorDepth; depth++ {
		path = append([]string{*current.Parent}, path...)
		parent, err := s.categories.GetByID(ctx, *current.Parent)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				break
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to walk category ancestors")
		}
		current = parent
	}
	return path, nil
}

// processMarks normalizes mark payloads and attaches uploads by index. With a
// new upload a replaced previous image file is deleted; without one the
// existing image reference is kept.
func (s *JobService) processMarks(marks []models.AppearanceMark, uploads map[int]ImagePayload) (models.AppearanceMarks, error) {
	processed := make(models.AppearanceMarks, 0, len(marks))
	for idx, mark := range marks {
		if mark.Side == "" {
			mark.Side = models.SideFront
		}
		if mark.Type == "" {
			mark.Type = models.MarkCircle
		}
		if mark.Radius == 0 {
			mark.Radius = 0.05
		}
		if mark.Path == nil {
			mark.Path = []models.PathPoint{}
		}
		if upload, ok := uploads[idx]; ok {
			if mark.Image != nil {
				s.removeImage(mark.Image)
			}
			path, err := s.images.Store(upload.Data, upload.Filename)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store mark image")
			}
			mark.Image = &path
		}
		processed = append(processed, mark)
	}
	return processed, nil
}

func (s *JobService) processDefects(defects []models.DefectSummary, uploads map[int]ImagePayload) (models.DefectSummaries, error) {
	processed := make(models.DefectSummaries, 0, len(defects))
	for idx, defect := range defects {
		if upload, ok := uploads[idx]; ok {
			if defect.Image != nil {
				s.removeImage(defect.Image)
			}
			path, err := s.images.Store(upload.Data, upload.Filename)
			if err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store defect image")
			}
			defect.Image = &path
		}
		processed = append(processed, defect)
	}
	return processed, nil
}

func (s *JobService) removeImage(path *string) {
	if path == nil || *path == "" {
		return
	}
	if err := s.images.Delete(*path); err != nil {
		s.logger.Warn("failed to remove job image", zap.Error(err), zap.String("path", *path))
	}
}

func (s *JobService) requireJob(ctx context.Context, id string) (*models.Job, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid job id")
	}
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch job")
	}
	return job, nil
}

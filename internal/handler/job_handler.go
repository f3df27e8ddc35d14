package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hmpc-qa/inspection-api/internal/dto"
	"github.com/hmpc-qa/inspection-api/internal/models"
	"github.com/hmpc-qa/inspection-api/internal/service"
	appErrors "github.com/hmpc-qa/inspection-api/pkg/errors"
	"github.com/hmpc-qa/inspection-api/pkg/response"
)

type jobService interface {
	Create(ctx context.Context, req dto.CreateJobRequest, markImages map[int]service.ImagePayload, defectImages map[int]service.ImagePayload) (*models.Job, error)
	GetByID(ctx context.Context, id string) (*models.Job, error)
	ListByCategory(ctx context.Context, categoryID string) ([]models.Job, error)
	List(ctx context.Context) ([]models.Job, error)
	Update(ctx context.Context, id string, req dto.UpdateJobRequest, markImages map[int]service.ImagePayload, defectImages map[int]service.ImagePayload) (*models.Job, error)
	Delete(ctx context.Context, id string) error
}

// JobHandler exposes the inspection job endpoints. Job payloads arrive either
// as plain JSON or as multipart form data with JSON-encoded fields plus
// indexed image files, matching the client's two submission paths.
type JobHandler struct {
	service jobService
	uploads UploadPolicy
}

// NewJobHandler builds a new handler.
func NewJobHandler(service jobService, uploads UploadPolicy) *JobHandler {
	return &JobHandler{service: service, uploads: uploads}
}

// Create godoc
// @Summary Open a job under a category
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Category id"
// @Success 201 {object} response.Envelope
// @Router /categories/{id}/jobs [post]
func (h *JobHandler) Create(c *gin.Context) {
	var req dto.CreateJobRequest
	var markImages, defectImages map[int]service.ImagePayload

	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid multipart payload"))
			return
		}
		if err := bindJobFields(form, &req.JobInfo, &req.Checklist, &req.AppearanceMarks, &req.DefectSummary, &req.TechnicalTests); err != nil {
			response.Error(c, err)
			return
		}
		markImages, err = h.indexedFiles(form, "appearance")
		if err != nil {
			response.Error(c, err)
			return
		}
		defectImages, err = h.indexedFiles(form, "summary")
		if err != nil {
			response.Error(c, err)
			return
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid job payload"))
			return
		}
	}
	req.CategoryID = c.Param("id")

	job, err := h.service.Create(c.Request.Context(), req, markImages, defectImages)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, job)
}

// ListByCategory godoc
// @Summary List jobs for a category
// @Tags Jobs
// @Produce json
// @Param id path string true "Category id"
// @Success 200 {object} response.Envelope
// @Router /categories/{id}/jobs [get]
func (h *JobHandler) ListByCategory(c *gin.Context) {
	jobs, err := h.service.ListByCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, jobs, nil)
}

// List godoc
// @Summary List all jobs
// @Tags Jobs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	jobs, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, jobs, nil)
}

// Get godoc
// @Summary Get job by id
// @Tags Jobs
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} response.Envelope
// @Router /jobs/{id} [get]
func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Update godoc
// @Summary Apply a partial job update
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} response.Envelope
// @Router /jobs/{id} [put]
func (h *JobHandler) Update(c *gin.Context) {
	var req dto.UpdateJobRequest
	var markImages, defectImages map[int]service.ImagePayload

	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid multipart payload"))
			return
		}
		if err := bindUpdateFields(form, &req); err != nil {
			response.Error(c, err)
			return
		}
		markImages, err = h.indexedFiles(form, "appearance")
		if err != nil {
			response.Error(c, err)
			return
		}
		defectImages, err = h.indexedFiles(form, "summary")
		if err != nil {
			response.Error(c, err)
			return
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid job payload"))
			return
		}
	}

	job, err := h.service.Update(c.Request.Context(), c.Param("id"), req, markImages, defectImages)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Delete godoc
// @Summary Delete job
// @Tags Jobs
// @Produce json
// @Param id path string true "Job id"
// @Success 204 {object} nil
// @Router /jobs/{id} [delete]
func (h *JobHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

// indexedFiles reads files named "<prefix>-<idx>" into a map keyed by index.
func (h *JobHandler) indexedFiles(form *multipart.Form, prefix string) (map[int]service.ImagePayload, error) {
	files := map[int]service.ImagePayload{}
	for field, headers := range form.File {
		var idx int
		if _, err := fmt.Sscanf(field, prefix+"-%d", &idx); err != nil {
			continue
		}
		if len(headers) == 0 {
			continue
		}
		payload, err := h.uploads.Read(headers[0])
		if err != nil {
			return nil, err
		}
		files[idx] = *payload
	}
	return files, nil
}

func bindJobFields(form *multipart.Form, jobInfo **models.JobInfo, checklist *models.Checklist, marks *[]models.AppearanceMark, defects *[]models.DefectSummary, technical **models.TechnicalTests) error {
	if raw := formValue(form, "jobInfo"); raw != "" {
		parsed := &models.JobInfo{}
		if err := json.Unmarshal([]byte(raw), parsed); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "invalid jobInfo payload")
		}
		*jobInfo = parsed
	}
	if raw := formValue(form, "checklist"); raw != "" {
		if err := json.Unmarshal([]byte(raw), checklist); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "invalid checklist payload")
		}
	}
	if raw := formValue(form, "appearanceMarks"); raw != "" {
		if err := json.Unmarshal([]byte(raw), marks); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "invalid appearanceMarks payload")
		}
	}
	if raw := formValue(form, "defectSummary"); raw != "" {
		if err := json.Unmarshal([]byte(raw), defects); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "invalid defectSummary payload")
		}
	}
	if raw := formValue(form, "technicalTests"); raw != "" {
		parsed := &models.TechnicalTests{}
		if err := json.Unmarshal([]byte(raw), parsed); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "invalid technicalTests payload")
		}
		*technical = parsed
	}
	return nil
}

func bindUpdateFields(form *multipart.Form, req *dto.UpdateJobRequest) error {
	if raw := formValue(form, "jobInfo"); raw != "" {
		req.JobInfo = &dto.JobInfoUpdate{}
		if err := json.Unmarshal([]byte(raw), req.JobInfo); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "invalid jobInfo payload")
		}
	}
	if raw := formValue(form, "checklist"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Checklist); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "invalid checklist payload")
		}
	}
	if raw := formValue(form, "appearanceMarks"); raw != "" {
		marks := []models.AppearanceMark{}
		if err := json.Unmarshal([]byte(raw), &marks); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "invalid appearanceMarks payload")
		}
		req.AppearanceMarks = &marks
	}
	if raw := formValue(form, "defectSummary"); raw != "" {
		defects := []models.DefectSummary{}
		if err := json.Unmarshal([]byte(raw), &defects); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "invalid defectSummary payload")
		}
		req.DefectSummary = &defects
	}
	if raw := formValue(form, "technicalTests"); raw != "" {
		req.TechnicalTests = &models.TechnicalTests{}
		if err := json.Unmarshal([]byte(raw), req.TechnicalTests); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "invalid technicalTests payload")
		}
	}
	return nil
}

func formValue(form *multipart.Form, field string) string {
	values := form.Value[field]
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hmpc-qa/inspection-api/internal/dto"
	"github.com/hmpc-qa/inspection-api/internal/models"
	"github.com/hmpc-qa/inspection-api/internal/service"
	appErrors "github.com/hmpc-qa/inspection-api/pkg/errors"
	"github.com/hmpc-qa/inspection-api/pkg/response"
)

type categoryService interface {
	Create(ctx context.Context, req dto.CreateCategoryRequest) (*models.Category, error)
	Tree(ctx context.Context) ([]*models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	Delete(ctx context.Context, id string) error
	AddSection(ctx context.Context, categoryID string, req dto.AddSectionRequest) (*models.Category, error)
	DeleteSection(ctx context.Context, categoryID, sectionID string) (*models.Category, error)
	AddItem(ctx context.Context, categoryID, sectionID string, req dto.AddItemRequest, image *service.ImagePayload) (*models.Category, error)
	UpdateItem(ctx context.Context, categoryID, sectionID, itemID string, req dto.UpdateItemRequest, image *service.ImagePayload) (*models.Category, error)
	DeleteItem(ctx context.Context, categoryID, sectionID, itemID string) (*models.Category, error)
	ReplaceChecklist(ctx context.Context, categoryID string, checklist models.Checklist) (*models.Category, error)
	UpdateAppearanceImages(ctx context.Context, categoryID string, uploads map[models.MarkSide]service.ImagePayload) (*models.Category, error)
}

// CategoryHandler exposes the category template endpoints.
type CategoryHandler struct {
	service categoryService
	uploads UploadPolicy
}

// NewCategoryHandler builds a new handler.
func NewCategoryHandler(service categoryService, uploads UploadPolicy) *CategoryHandler {
	return &CategoryHandler{service: service, uploads: uploads}
}

// Create godoc
// @Summary Create category
// @Tags Categories
// @Accept json
// @Produce json
// @Param payload body dto.CreateCategoryRequest true "Category payload"
// @Success 201 {object} response.Envelope
// @Router /categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid category payload"))
		return
	}
	category, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, category)
}

// Tree godoc
// @Summary List categories as a tree
// @Tags Categories
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /categories [get]
func (h *CategoryHandler) Tree(c *gin.Context) {
	categories, err := h.service.Tree(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, categories, nil)
}

// Get godoc
// @Summary Get category by id
// @Tags Categories
// @Produce json
// @Param id path string true "Category id"
// @Success 200 {object} response.Envelope
// @Router /categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	category, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category, nil)
}

// Delete godoc
// @Summary Delete category
// @Tags Categories
// @Produce json
// @Param id path string true "Category id"
// @Success 204 {object} nil
// @Router /categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddSection godoc
// @Summary Append a checklist section
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path string true "Category id"
// @Param payload body dto.AddSectionRequest true "Section payload"
// @Success 200 {object} response.Envelope
// @Router /categories/{id}/sections [post]
func (h *CategoryHandler) AddSection(c *gin.Context) {
	var req dto.AddSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid section payload"))
		return
	}
	category, err := h.service.AddSection(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category, nil)
}

// DeleteSection godoc
// @Summary Delete a checklist section
// @Tags Categories
// @Produce json
// @Param id path string true "Category id"
// @Param sectionId path string true "Section id"
// @Success 200 {object} response.Envelope
// @Router /categories/{id}/sections/{sectionId} [delete]
func (h *CategoryHandler) DeleteSection(c *gin.Context) {
	category, err := h.service.DeleteSection(c.Request.Context(), c.Param("id"), c.Param("sectionId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category, nil)
}

// AddItem godoc
// @Summary Append a checklist item
// @Tags Categories
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Category id"
// @Param sectionId path string true "Section id"
// @Param name formData string false "Item name"
// @Param type formData string false "Item type (status or input)"
// @Param parentItem formData string false "Parent item id"
// @Param image formData file false "Item image"
// @Success 200 {object} response.Envelope
// @Router /categories/{id}/sections/{sectionId}/items [post]
func (h *CategoryHandler) AddItem(c *gin.Context) {
	req := dto.AddItemRequest{
		Name: c.PostForm("name"),
		Type: models.ItemType(c.PostForm("type")),
	}
	if parent := c.PostForm("parentItem"); parent != "" {
		req.ParentItem = &parent
	}

	image, err := h.itemImage(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	category, err := h.service.AddItem(c.Request.Context(), c.Param("id"), c.Param("sectionId"), req, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category, nil)
}

// UpdateItem godoc
// @Summary Update a checklist item
// @Tags Categories
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Category id"
// @Param sectionId path string true "Section id"
// @Param itemId path string true "Item id"
// @Success 200 {object} response.Envelope
// @Router /categories/{id}/sections/{sectionId}/items/{itemId} [put]
func (h *CategoryHandler) UpdateItem(c *gin.Context) {
	var req dto.UpdateItemRequest
	if name := c.PostForm("name"); name != "" {
		req.Name = &name
	}
	if raw := c.PostForm("type"); raw != "" {
		itemType := models.ItemType(raw)
		req.Type = &itemType
	}

	image, err := h.itemImage(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	category, err := h.service.UpdateItem(c.Request.Context(), c.Param("id"), c.Param("sectionId"), c.Param("itemId"), req, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category, nil)
}

// DeleteItem godoc
// @Summary Delete a checklist item
// @Tags Categories
// @Produce json
// @Param id path string true "Category id"
// @Param sectionId path string true "Section id"
// @Param itemId path string true "Item id"
// @Success 200 {object} response.Envelope
// @Router /categories/{id}/sections/{sectionId}/items/{itemId} [delete]
func (h *CategoryHandler) DeleteItem(c *gin.Context) {
	category, err := h.service.DeleteItem(c.Request.Context(), c.Param("id"), c.Param("sectionId"), c.Param("itemId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category, nil)
}

// ReplaceChecklist godoc
// @Summary Replace the entire checklist
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path string true "Category id"
// @Param payload body dto.ReplaceChecklistRequest true "Checklist payload"
// @Success 200 {object} response.Envelope
// @Router /categories/{id}/checklist [put]
func (h *CategoryHandler) ReplaceChecklist(c *gin.Context) {
	var req dto.ReplaceChecklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid checklist payload"))
		return
	}
	category, err := h.service.ReplaceChecklist(c.Request.Context(), c.Param("id"), req.Checklist)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category, nil)
}

// UpdateAppearanceImages godoc
// @Summary Upload per-side appearance photos
// @Tags Categories
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Category id"
// @Param front formData file false "Front photo"
// @Param rear formData file false "Rear photo"
// @Param left formData file false "Left photo"
// @Param right formData file false "Right photo"
// @Success 200 {object} response.Envelope
// @Router /categories/{id}/appearance-images [put]
func (h *CategoryHandler) UpdateAppearanceImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid multipart payload"))
		return
	}

	uploads := map[models.MarkSide]service.ImagePayload{}
	for _, side := range models.Sides {
		payload, err := h.uploads.optionalFile(form, string(side))
		if err != nil {
			response.Error(c, err)
			return
		}
		if payload != nil {
			uploads[side] = *payload
		}
	}

	category, err := h.service.UpdateAppearanceImages(c.Request.Context(), c.Param("id"), uploads)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category, nil)
}

func (h *CategoryHandler) itemImage(c *gin.Context) (*service.ImagePayload, error) {
	header, err := c.FormFile("image")
	if err != nil {
		// Missing file or non-multipart request: no image attached.
		return nil, nil
	}
	return h.uploads.Read(header)
}

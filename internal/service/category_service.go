package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hmpc-qa/inspection-api/internal/dto"
	"github.com/hmpc-qa/inspection-api/internal/models"
	appErrors "github.com/hmpc-qa/inspection-api/pkg/errors"
)

const categoryTreeCacheKey = "categories:tree"

type categoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	ListByParent(ctx context.Context, parentID string) ([]models.Category, error)
	ExistsByNameAndParent(ctx context.Context, name string, parent *string) (bool, error)
	Save(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
}

type treeCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string)
}

type imageStore interface {
	Store(data []byte, suggestedName string) (string, error)
	Delete(relativePath string) error
}

// ImagePayload carries one validated upload from the transport layer.
type ImagePayload struct {
	Data     []byte
	Filename string
}

// CategoryServiceConfig tunes runtime behaviour.
type CategoryServiceConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// CategoryService manages inspection template categories: the category tree,
// each category's checklist structure and its appearance photos.
type CategoryService struct {
	repo      categoryRepository
	cache     treeCache
	images    imageStore
	validator *validator.Validate
	logger    *zap.Logger
	config    CategoryServiceConfig
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(repo categoryRepository, cache treeCache, images imageStore, validate *validator.Validate, logger *zap.Logger, cfg CategoryServiceConfig) *CategoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &CategoryService{repo: repo, cache: cache, images: images, validator: validate, logger: logger, config: cfg}
}

// Create persists a new category. Seed checklist items are normalized to a
// clean slate: fresh ids, status reset to na, remarks cleared; only input
// items keep their seed value.
func (s *CategoryService) Create(ctx context.Context, req dto.CreateCategoryRequest) (*models.Category, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid category payload")
	}

	parent := normalizeOptionalID(req.Parent)
	if parent != nil {
		if _, err := uuid.Parse(*parent); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid parent category id")
		}
	}

	exists, err := s.repo.ExistsByNameAndParent(ctx, req.Name, parent)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check category name")
	}
	if exists {
		return nil, appErrors.ErrDuplicateCategory
	}

	category := &models.Category{
		Name:        req.Name,
		Description: req.Description,
		Parent:      parent,
		Checklist:   seedChecklist(req.Checklist),
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create category")
	}

	s.invalidateTree(ctx)
	s.logger.Info("category created", zap.String("category_id", category.ID), zap.String("name", category.Name))
	return category, nil
}

// Tree returns all root categories with children resolved from parent
// pointers. Categories whose parent id no longer resolves stay out of the
// tree but remain reachable by id.
func (s *CategoryService) Tree(ctx context.Context) ([]*models.Category, error) {
	if s.config.CacheEnabled && s.cache != nil {
		var cached []*models.Category
		if err := s.cache.Get(ctx, categoryTreeCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list categories")
	}

	byID := make(map[string]*models.Category, len(categories))
	for i := range categories {
		sortSections(&categories[i])
		categories[i].Children = []*models.Category{}
		byID[categories[i].ID] = &categories[i]
	}

	roots := make([]*models.Category, 0, len(categories))
	for i := range categories {
		cat := &categories[i]
		if cat.Parent == nil {
			roots = append(roots, cat)
			continue
		}
		if parent, ok := byID[*cat.Parent]; ok {
			parent.Children = append(parent.Children, cat)
		}
	}

	if s.config.CacheEnabled && s.cache != nil {
		if err := s.cache.Set(ctx, categoryTreeCacheKey, roots, s.config.CacheTTL); err != nil {
			s.logger.Warn("failed to cache category tree", zap.Error(err))
		}
	}
	return roots, nil
}

// GetByID fetches one category with its sections sorted by order and its
// direct children attached.
func (s *CategoryService) GetByID(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.requireCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	children, err := s.repo.ListByParent(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list child categories")
	}
	category.Children = make([]*models.Category, 0, len(children))
	for i := range children {
		category.Children = append(category.Children, &children[i])
	}
	return category, nil
}

// Delete removes a category. Children are neither deleted nor re-parented;
// they drop out of the tree listing but stay addressable by id.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "invalid category id")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete category")
	}
	s.invalidateTree(ctx)
	s.logger.Info("category deleted", zap.String("category_id", id))
	return nil
}

// AddSection appends an empty section. Orders only ever grow: the next order
// is one past the current maximum, so deleting a section never renumbers the
// survivors.
func (s *CategoryService) AddSection(ctx context.Context, categoryID string, req dto.AddSectionRequest) (*models.Category, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	category, err := s.requireCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	nextOrder := 1
	for _, section := range category.Checklist {
		if section.Order >= nextOrder {
			nextOrder = section.Order + 1
		}
	}
	category.Checklist = append(category.Checklist, models.Section{
		ID:    uuid.NewString(),
		Title: req.Section,
		Order: nextOrder,
		Items: []models.Item{},
	})

	return s.saveAndInvalidate(ctx, category)
}

// DeleteSection removes a section by id. Remaining section orders keep their
// values.
func (s *CategoryService) DeleteSection(ctx context.Context, categoryID, sectionID string) (*models.Category, error) {
	category, err := s.requireCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	kept := category.Checklist[:0]
	found := false
	for _, section := range category.Checklist {
		if section.ID == sectionID {
			found = true
			continue
		}
		kept = append(kept, section)
	}
	if !found {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
	}
	category.Checklist = kept
	return s.saveAndInvalidate(ctx, category)
}

// AddItem appends an item to a section. Root items get a stored code of
// section order followed by their root position; sub-items get none. The
// stored code is historical only: reports renumber at render time.
func (s *CategoryService) AddItem(ctx context.Context, categoryID, sectionID string, req dto.AddItemRequest, image *ImagePayload) (*models.Category, error) {
	category, err := s.requireCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	section := category.FindSection(sectionID)
	if section == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
	}

	itemType := req.Type
	if itemType == "" {
		itemType = models.ItemTypeStatus
	}
	if req.Name == "" && itemType != models.ItemTypeInput {
		return nil, appErrors.Clone(appErrors.ErrValidation, "item name is required")
	}

	parent := normalizeOptionalID(req.ParentItem)
	if parent != nil {
		if _, err := uuid.Parse(*parent); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid parent item id")
		}
	}

	code := ""
	if parent == nil {
		rootCount := 0
		for _, item := range section.Items {
			if item.ParentItem == nil {
				rootCount++
			}
		}
		code = fmt.Sprintf("%d%d", section.Order, rootCount+1)
	}

	item := models.Item{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Type:       itemType,
		Status:     models.StatusNA,
		Remarks:    "",
		Value:      "",
		ParentItem: parent,
		Code:       code,
	}
	if image != nil {
		path, err := s.images.Store(image.Data, image.Filename)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store item image")
		}
		item.Image = &path
	}
	section.Items = append(section.Items, item)

	return s.saveAndInvalidate(ctx, category)
}

// UpdateItem mutates an item's name, type or image. A replacement image
// deletes the previous file.
func (s *CategoryService) UpdateItem(ctx context.Context, categoryID, sectionID, itemID string, req dto.UpdateItemRequest, image *ImagePayload) (*models.Category, error) {
	category, err := s.requireCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	section := category.FindSection(sectionID)
	if section == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
	}
	item := findSectionItem(section, itemID)
	if item == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "item not found")
	}

	if req.Name != nil && *req.Name != "" {
		item.Name = *req.Name
	}
	if req.Type != nil && *req.Type != "" {
		item.Type = *req.Type
	}
	if image != nil {
		if item.Image != nil {
			if err := s.images.Delete(*item.Image); err != nil {
				s.logger.Warn("failed to remove replaced item image", zap.Error(err))
			}
		}
		path, err := s.images.Store(image.Data, image.Filename)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store item image")
		}
		item.Image = &path
	}

	return s.saveAndInvalidate(ctx, category)
}

// DeleteItem removes an item and its stored image file, if any.
func (s *CategoryService) DeleteItem(ctx context.Context, categoryID, sectionID, itemID string) (*models.Category, error) {
	category, err := s.requireCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	section := category.FindSection(sectionID)
	if section == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
	}

	kept := section.Items[:0]
	found := false
	for _, item := range section.Items {
		if item.ID == itemID {
			found = true
			if item.Image != nil {
				if err := s.images.Delete(*item.Image); err != nil {
					s.logger.Warn("failed to remove item image", zap.Error(err))
				}
			}
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "item not found")
	}
	section.Items = kept

	return s.saveAndInvalidate(ctx, category)
}

// ReplaceChecklist swaps the entire checklist structure wholesale. Sections
// and items missing ids receive fresh ones.
func (s *CategoryService) ReplaceChecklist(ctx context.Context, categoryID string, checklist models.Checklist) (*models.Category, error) {
	category, err := s.requireCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	for i := range checklist {
		if checklist[i].ID == "" {
			checklist[i].ID = uuid.NewString()
		}
		if checklist[i].Order == 0 {
			checklist[i].Order = i + 1
		}
		for j := range checklist[i].Items {
			if checklist[i].Items[j].ID == "" {
				checklist[i].Items[j].ID = uuid.NewString()
			}
		}
	}
	category.Checklist = checklist

	return s.saveAndInvalidate(ctx, category)
}

// UpdateAppearanceImages stores new per-side reference photos, deleting each
// replaced file. Sides absent from the map are untouched.
func (s *CategoryService) UpdateAppearanceImages(ctx context.Context, categoryID string, uploads map[models.MarkSide]ImagePayload) (*models.Category, error) {
	category, err := s.requireCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	for _, side := range models.Sides {
		upload, ok := uploads[side]
		if !ok {
			continue
		}
		slot := category.AppearanceImages.Side(side)
		if *slot != nil {
			if err := s.images.Delete(**slot); err != nil {
				s.logger.Warn("failed to remove replaced appearance image", zap.Error(err), zap.String("side", string(side)))
			}
		}
		path, err := s.images.Store(upload.Data, upload.Filename)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store appearance image")
		}
		*slot = &path
	}

	return s.saveAndInvalidate(ctx, category)
}

func (s *CategoryService) requireCategory(ctx context.Context, id string) (*models.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid category id")
	}
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch category")
	}
	sortSections(category)
	return category, nil
}

func (s *CategoryService) saveAndInvalidate(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := s.repo.Save(ctx, category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save category")
	}
	s.invalidateTree(ctx)
	return category, nil
}

func (s *CategoryService) invalidateTree(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, categoryTreeCacheKey)
	}
}

func seedChecklist(sections []dto.CreateSectionPayload) models.Checklist {
	checklist := make(models.Checklist, 0, len(sections))
	for idx, sec := range sections {
		section := models.Section{
			ID:    uuid.NewString(),
			Title: sec.Section,
			Order: idx + 1,
			Items: make([]models.Item, 0, len(sec.Items)),
		}
		for _, item := range sec.Items {
			itemType := item.Type
			if itemType == "" {
				itemType = models.ItemTypeStatus
			}
			section.Items = append(section.Items, models.Item{
				ID:     uuid.NewString(),
				Name:   item.Name,
				Type:   itemType,
				Status: models.StatusNA,
				Value:  item.Value,
			})
		}
		checklist = append(checklist, section)
	}
	return checklist
}

func sortSections(category *models.Category) {
	sort.SliceStable(category.Checklist, func(i, j int) bool {
		return category.Checklist[i].Order < category.Checklist[j].Order
	})
}

func findSectionItem(section *models.Section, itemID string) *models.Item {
	for i := range section.Items {
		if section.Items[i].ID == itemID {
			return &section.Items[i]
		}
	}
	return nil
}

func normalizeOptionalID(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}

package dto

import "github.com/hmpc-qa/inspection-api/internal/models"

// CreateCategoryRequest creates a template category, optionally seeded with a
// checklist whose item states are normalized to a clean slate.
type CreateCategoryRequest struct {
	Name        string                 `json:"name" binding:"required" validate:"required"`
	Description string                 `json:"description"`
	Parent      *string                `json:"parent"`
	Checklist   []CreateSectionPayload `json:"checklist"`
}

// CreateSectionPayload seeds one section at category creation.
type CreateSectionPayload struct {
	Section string              `json:"section" validate:"required"`
	Items   []CreateItemPayload `json:"items"`
}

// CreateItemPayload seeds one item at category creation.
type CreateItemPayload struct {
	Name  string          `json:"name" validate:"required"`
	Type  models.ItemType `json:"type"`
	Value string          `json:"value"`
}

// AddSectionRequest appends a section to an existing category checklist.
type AddSectionRequest struct {
	Section string `json:"section" binding:"required" validate:"required"`
}

// AddItemRequest appends an item to a section. Name may be empty for
// input-typed items.
type AddItemRequest struct {
	Name       string          `json:"name"`
	Type       models.ItemType `json:"type"`
	ParentItem *string         `json:"parentItem"`
}

// UpdateItemRequest mutates a template item's descriptive fields.
type UpdateItemRequest struct {
	Name *string          `json:"name"`
	Type *models.ItemType `json:"type"`
}

// ReplaceChecklistRequest swaps a category's entire checklist structure.
type ReplaceChecklistRequest struct {
	Checklist models.Checklist `json:"checklist" binding:"required"`
}

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

// CategoryRepository persists inspection template categories.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository constructs the repository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

const categoryColumns = `id, name, description, parent, checklist, appearance_images, created_at, updated_at`

// Create inserts a new category row with generated defaults.
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if category.CreatedAt.IsZero() {
		category.CreatedAt = now
	}
	category.UpdatedAt = now
	const query = `INSERT INTO categories (id, name, description, parent, checklist, appearance_images, created_at, updated_at)
VALUES (:id, :name, :description, :parent, :checklist, :appearance_images, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// GetByID returns a category row by its identifier.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	var category models.Category
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &category, nil
}

// List returns every category ordered by creation time.
func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY created_at ASC`
	var categories []models.Category
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// ListByParent returns the direct children of a category.
func (r *CategoryRepository) ListByParent(ctx context.Context, parentID string) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE parent = $1 ORDER BY created_at ASC`
	var categories []models.Category
	if err := r.db.SelectContext(ctx, &categories, query, parentID); err != nil {
		return nil, fmt.Errorf("list child categories: %w", err)
	}
	return categories, nil
}

// ExistsByNameAndParent reports a sibling name collision under the same
// parent (root categories compare against a NULL parent).
func (r *CategoryRepository) ExistsByNameAndParent(ctx context.Context, name string, parent *string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM categories WHERE name = $1 AND parent IS NOT DISTINCT FROM $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, name, parent); err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return exists, nil
}

// Save persists checklist and appearance image mutations of an existing row.
func (r *CategoryRepository) Save(ctx context.Context, category *models.Category) error {
	category.UpdatedAt = time.Now().UTC()
	const query = `UPDATE categories
SET name = :name, description = :description, checklist = :checklist, appearance_images = :appearance_images, updated_at = :updated_at
WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, category)
	if err != nil {
		return fmt.Errorf("save category: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("save category %s: %w", category.ID, sql.ErrNoRows)
	}
	return nil
}

// Delete removes the category row only. Children keep their parent pointer
// and Jobs created from the category stay untouched.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("delete category %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmpc-qa/inspection-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func TestCategoryRepositoryGetByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	checklist := []byte(`[{"id":"sec-1","section":"Checks","order":1,"items":[{"id":"it-1","name":"Oil Level","type":"status","status":"na","remarks":"","value":"","parentItem":null,"code":"11","image":null}]}]`)
	images := []byte(`{"front":"/uploads/front.jpg","rear":null,"left":null,"right":null}`)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "name", "description", "parent", "checklist", "appearance_images", "created_at", "updated_at"}).
		AddRow("cat-1", "Engine", "engine checks", nil, checklist, images, now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, description, parent, checklist, appearance_images, created_at, updated_at FROM categories WHERE id = $1`)).
		WithArgs("cat-1").
		WillReturnRows(rows)

	category, err := repo.GetByID(context.Background(), "cat-1")
	require.NoError(t, err)
	assert.Equal(t, "Engine", category.Name)
	require.Len(t, category.Checklist, 1)
	assert.Equal(t, "Checks", category.Checklist[0].Title)
	assert.Equal(t, 1, category.Checklist[0].Order)
	require.Len(t, category.Checklist[0].Items, 1)
	assert.Equal(t, "Oil Level", category.Checklist[0].Items[0].Name)
	require.NotNil(t, category.AppearanceImages.Front)
	assert.Equal(t, "/uploads/front.jpg", *category.AppearanceImages.Front)
}

func TestCategoryRepositoryCreateGeneratesID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO categories`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	category := &models.Category{Name: "Engine"}
	require.NoError(t, repo.Create(context.Background(), category))
	assert.NotEmpty(t, category.ID)
	assert.False(t, category.CreatedAt.IsZero())
}

func TestCategoryRepositoryExistsByNameAndParent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM categories WHERE name = $1 AND parent IS NOT DISTINCT FROM $2)`)).
		WithArgs("Engine", nil).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByNameAndParent(context.Background(), "Engine", nil)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCategoryRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM categories WHERE id = $1`)).
		WithArgs("cat-404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "cat-404")
	assert.Error(t, err)
}

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmpc-qa/inspection-api/internal/dto"
	"github.com/hmpc-qa/inspection-api/internal/models"
	appErrors "github.com/hmpc-qa/inspection-api/pkg/errors"
)

type mockCategoryRepo struct {
	categories map[string]*models.Category
	listOrder  []string
	exists     bool
	saved      *models.Category
	deleted    []string
}

func newMockCategoryRepo(categories ...*models.Category) *mockCategoryRepo {
	repo := &mockCategoryRepo{categories: make(map[string]*models.Category)}
	for _, cat := range categories {
		repo.categories[cat.ID] = cat
		repo.listOrder = append(repo.listOrder, cat.ID)
	}
	return repo
}

func (m *mockCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	m.categories[category.ID] = category
	m.listOrder = append(m.listOrder, category.ID)
	return nil
}

func (m *mockCategoryRepo) GetByID(ctx context.Context, id string) (*models.Category, error) {
	cat, ok := m.categories[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *cat
	copied.Checklist = append(models.Checklist{}, cat.Checklist...)
	return &copied, nil
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]models.Category, error) {
	out := make([]models.Category, 0, len(m.listOrder))
	for _, id := range m.listOrder {
		out = append(out, *m.categories[id])
	}
	return out, nil
}

func (m *mockCategoryRepo) ListByParent(ctx context.Context, parentID string) ([]models.Category, error) {
	var out []models.Category
	for _, id := range m.listOrder {
		cat := m.categories[id]
		if cat.Parent != nil && *cat.Parent == parentID {
			out = append(out, *cat)
		}
	}
	return out, nil
}

func (m *mockCategoryRepo) ExistsByNameAndParent(ctx context.Context, name string, parent *string) (bool, error) {
	return m.exists, nil
}

func (m *mockCategoryRepo) Save(ctx context.Context, category *models.Category) error {
	if _, ok := m.categories[category.ID]; !ok {
		return sql.ErrNoRows
	}
	m.categories[category.ID] = category
	m.saved = category
	return nil
}

func (m *mockCategoryRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.categories[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.categories, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockTreeCache struct {
	entries     map[string][]byte
	invalidated []string
}

func newMockTreeCache() *mockTreeCache {
	return &mockTreeCache{entries: make(map[string][]byte)}
}

func (m *mockTreeCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockTreeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *mockTreeCache) Invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		delete(m.entries, key)
		m.invalidated = append(m.invalidated, key)
	}
}

type mockImageStore struct {
	stored  []string
	deleted []string
	counter int
}

func (m *mockImageStore) Store(data []byte, suggestedName string) (string, error) {
	m.counter++
	path := fmt.Sprintf("stored/%d-%s", m.counter, suggestedName)
	m.stored = append(m.stored, path)
	return path, nil
}

func (m *mockImageStore) Delete(relativePath string) error {
	m.deleted = append(m.deleted, relativePath)
	return nil
}

func testCategory(sections ...models.Section) *models.Category {
	return &models.Category{
		ID:        uuid.NewString(),
		Name:      "Electric Bus",
		Checklist: models.Checklist(sections),
	}
}

func newTestCategoryService(repo *mockCategoryRepo, cache *mockTreeCache, images *mockImageStore, cfg CategoryServiceConfig) *CategoryService {
	if images == nil {
		images = &mockImageStore{}
	}
	var tc treeCache
	if cache != nil {
		tc = cache
	}
	return NewCategoryService(repo, tc, images, nil, nil, cfg)
}

func TestCategoryServiceCreateSeedsChecklist(t *testing.T) {
	repo := newMockCategoryRepo()
	svc := newTestCategoryService(repo, nil, nil, CategoryServiceConfig{})

	cat, err := svc.Create(context.Background(), dto.CreateCategoryRequest{
		Name: "Electric Bus",
		Checklist: []dto.CreateSectionPayload{
			{Section: "Exterior", Items: []dto.CreateItemPayload{
				{Name: "Paint finish"},
				{Name: "Chassis number", Type: models.ItemTypeInput, Value: "CH-001"},
			}},
			{Section: "Interior"},
		},
	})
	require.NoError(t, err)
	require.Len(t, cat.Checklist, 2)

	exterior := cat.Checklist[0]
	assert.Equal(t, 1, exterior.Order)
	assert.Equal(t, "Exterior", exterior.Title)
	require.Len(t, exterior.Items, 2)
	assert.NotEmpty(t, exterior.Items[0].ID)
	assert.Equal(t, models.ItemTypeStatus, exterior.Items[0].Type)
	assert.Equal(t, models.StatusNA, exterior.Items[0].Status)
	assert.Equal(t, models.ItemTypeInput, exterior.Items[1].Type)
	assert.Equal(t, "CH-001", exterior.Items[1].Value)
	assert.Equal(t, 2, cat.Checklist[1].Order)
}

func TestCategoryServiceCreateDuplicateName(t *testing.T) {
	repo := newMockCategoryRepo()
	repo.exists = true
	svc := newTestCategoryService(repo, nil, nil, CategoryServiceConfig{})

	_, err := svc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Electric Bus"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateCategory.Code, appErrors.FromError(err).Code)
}

func TestCategoryServiceCreateRejectsBadParent(t *testing.T) {
	repo := newMockCategoryRepo()
	svc := newTestCategoryService(repo, nil, nil, CategoryServiceConfig{})

	parent := "not-a-uuid"
	_, err := svc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Electric Bus", Parent: &parent})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCategoryServiceTreeResolvesChildren(t *testing.T) {
	root := testCategory()
	child := testCategory()
	child.Name = "City Bus"
	child.Parent = &root.ID
	orphanParent := uuid.NewString()
	orphan := testCategory()
	orphan.Name = "Orphan"
	orphan.Parent = &orphanParent

	repo := newMockCategoryRepo(root, child, orphan)
	svc := newTestCategoryService(repo, nil, nil, CategoryServiceConfig{})

	tree, err := svc.Tree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, root.ID, tree[0].ID)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, child.ID, tree[0].Children[0].ID)
}

func TestCategoryServiceTreeUsesCache(t *testing.T) {
	root := testCategory()
	repo := newMockCategoryRepo(root)
	cache := newMockTreeCache()
	svc := newTestCategoryService(repo, cache, nil, CategoryServiceConfig{CacheEnabled: true, CacheTTL: time.Minute})

	first, err := svc.Tree(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Contains(t, cache.entries, "categories:tree")

	// The repo is mutated behind the cache; the cached tree still wins.
	repo.listOrder = nil
	second, err := svc.Tree(context.Background())
	require.NoError(t, err)
	assert.Len(t, second, 1)
}

func TestCategoryServiceAddSectionOrder(t *testing.T) {
	cat := testCategory(
		models.Section{ID: uuid.NewString(), Title: "Exterior", Order: 1},
		models.Section{ID: uuid.NewString(), Title: "Engine", Order: 3},
	)
	repo := newMockCategoryRepo(cat)
	cache := newMockTreeCache()
	svc := newTestCategoryService(repo, cache, nil, CategoryServiceConfig{CacheEnabled: true, CacheTTL: time.Minute})

	updated, err := svc.AddSection(context.Background(), cat.ID, dto.AddSectionRequest{Section: "Electrical"})
	require.NoError(t, err)
	require.Len(t, updated.Checklist, 3)
	assert.Equal(t, 4, updated.Checklist[2].Order)
	assert.Contains(t, cache.invalidated, "categories:tree")
}

func TestCategoryServiceDeleteSectionKeepsOrders(t *testing.T) {
	first := models.Section{ID: uuid.NewString(), Title: "Exterior", Order: 1}
	second := models.Section{ID: uuid.NewString(), Title: "Engine", Order: 2}
	cat := testCategory(first, second)
	repo := newMockCategoryRepo(cat)
	svc := newTestCategoryService(repo, nil, nil, CategoryServiceConfig{})

	updated, err := svc.DeleteSection(context.Background(), cat.ID, first.ID)
	require.NoError(t, err)
	require.Len(t, updated.Checklist, 1)
	assert.Equal(t, 2, updated.Checklist[0].Order)

	_, err = svc.DeleteSection(context.Background(), cat.ID, "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCategoryServiceAddItemCodes(t *testing.T) {
	rootItem := models.Item{ID: uuid.NewString(), Name: "Paint finish", Type: models.ItemTypeStatus}
	section := models.Section{ID: uuid.NewString(), Title: "Exterior", Order: 2, Items: []models.Item{rootItem}}
	cat := testCategory(section)
	repo := newMockCategoryRepo(cat)
	svc := newTestCategoryService(repo, nil, nil, CategoryServiceConfig{})

	updated, err := svc.AddItem(context.Background(), cat.ID, section.ID, dto.AddItemRequest{Name: "Door seals"}, nil)
	require.NoError(t, err)
	items := updated.Checklist[0].Items
	require.Len(t, items, 2)
	assert.Equal(t, "22", items[1].Code)
	assert.Equal(t, models.StatusNA, items[1].Status)

	parentID := rootItem.ID
	updated, err = svc.AddItem(context.Background(), cat.ID, section.ID, dto.AddItemRequest{Name: "Roof coat", ParentItem: &parentID}, nil)
	require.NoError(t, err)
	items = updated.Checklist[0].Items
	require.Len(t, items, 3)
	assert.Empty(t, items[2].Code)
	require.NotNil(t, items[2].ParentItem)
	assert.Equal(t, rootItem.ID, *items[2].ParentItem)
}

func TestCategoryServiceAddItemNameRules(t *testing.T) {
	section := models.Section{ID: uuid.NewString(), Title: "Exterior", Order: 1}
	cat := testCategory(section)
	repo := newMockCategoryRepo(cat)
	svc := newTestCategoryService(repo, nil, nil, CategoryServiceConfig{})

	_, err := svc.AddItem(context.Background(), cat.ID, section.ID, dto.AddItemRequest{}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	updated, err := svc.AddItem(context.Background(), cat.ID, section.ID, dto.AddItemRequest{Type: models.ItemTypeInput}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ItemTypeInput, updated.Checklist[0].Items[0].Type)
}

func TestCategoryServiceUpdateItemReplacesImage(t *testing.T) {
	oldImage := "stored/old.png"
	item := models.Item{ID: uuid.NewString(), Name: "Paint finish", Image: &oldImage}
	section := models.Section{ID: uuid.NewString(), Title: "Exterior", Order: 1, Items: []models.Item{item}}
	cat := testCategory(section)
	repo := newMockCategoryRepo(cat)
	images := &mockImageStore{}
	svc := newTestCategoryService(repo, nil, images, CategoryServiceConfig{})

	name := "Paint and trim"
	updated, err := svc.UpdateItem(context.Background(), cat.ID, section.ID, item.ID, dto.UpdateItemRequest{Name: &name}, &ImagePayload{Data: []byte("img"), Filename: "new.png"})
	require.NoError(t, err)
	got := updated.Checklist[0].Items[0]
	assert.Equal(t, "Paint and trim", got.Name)
	require.NotNil(t, got.Image)
	assert.NotEqual(t, oldImage, *got.Image)
	assert.Equal(t, []string{oldImage}, images.deleted)
}

func TestCategoryServiceDeleteItemRemovesImage(t *testing.T) {
	image := "stored/item.png"
	item := models.Item{ID: uuid.NewString(), Name: "Paint finish", Image: &image}
	section := models.Section{ID: uuid.NewString(), Title: "Exterior", Order: 1, Items: []models.Item{item}}
	cat := testCategory(section)
	repo := newMockCategoryRepo(cat)
	images := &mockImageStore{}
	svc := newTestCategoryService(repo, nil, images, CategoryServiceConfig{})

	updated, err := svc.DeleteItem(context.Background(), cat.ID, section.ID, item.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.Checklist[0].Items)
	assert.Equal(t, []string{image}, images.deleted)
}

func TestCategoryServiceReplaceChecklistFillsIDs(t *testing.T) {
	cat := testCategory()
	repo := newMockCategoryRepo(cat)
	svc := newTestCategoryService(repo, nil, nil, CategoryServiceConfig{})

	updated, err := svc.ReplaceChecklist(context.Background(), cat.ID, models.Checklist{
		{Title: "Exterior", Items: []models.Item{{Name: "Paint finish"}}},
		{Title: "Engine"},
	})
	require.NoError(t, err)
	require.Len(t, updated.Checklist, 2)
	assert.NotEmpty(t, updated.Checklist[0].ID)
	assert.Equal(t, 1, updated.Checklist[0].Order)
	assert.NotEmpty(t, updated.Checklist[0].Items[0].ID)
	assert.Equal(t, 2, updated.Checklist[1].Order)
}

func TestCategoryServiceUpdateAppearanceImages(t *testing.T) {
	oldFront := "stored/front-old.png"
	cat := testCategory()
	cat.AppearanceImages.Front = &oldFront
	repo := newMockCategoryRepo(cat)
	images := &mockImageStore{}
	svc := newTestCategoryService(repo, nil, images, CategoryServiceConfig{})

	updated, err := svc.UpdateAppearanceImages(context.Background(), cat.ID, map[models.MarkSide]ImagePayload{
		models.SideFront: {Data: []byte("img"), Filename: "front.png"},
		models.SideLeft:  {Data: []byte("img"), Filename: "left.png"},
	})
	require.NoError(t, err)
	require.NotNil(t, updated.AppearanceImages.Front)
	assert.NotEqual(t, oldFront, *updated.AppearanceImages.Front)
	assert.NotNil(t, updated.AppearanceImages.Left)
	assert.Nil(t, updated.AppearanceImages.Rear)
	assert.Equal(t, []string{oldFront}, images.deleted)
}

func TestCategoryServiceDeleteNotFound(t *testing.T) {
	repo := newMockCategoryRepo()
	svc := newTestCategoryService(repo, nil, nil, CategoryServiceConfig{})

	err := svc.Delete(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	err = svc.Delete(context.Background(), "not-a-uuid")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

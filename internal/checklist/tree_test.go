package checklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmpc-qa/inspection-api/internal/models"
)

func item(id, name string, parent *string) models.Item {
	return models.Item{ID: id, Name: name, Type: models.ItemTypeStatus, Status: models.StatusNA, ParentItem: parent}
}

func strptr(s string) *string { return &s }

func flattenIDs(rows []Row) []string {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.Item.ID)
	}
	return ids
}

func TestBuildTreeNesting(t *testing.T) {
	items := []models.Item{
		item("a", "Oil Level", nil),
		item("b", "Belt", nil),
		item("c", "Belt Tension", strptr("b")),
	}

	roots := BuildTree(items)
	require.Len(t, roots, 2)
	assert.Equal(t, "a", roots[0].ID)
	assert.Equal(t, "b", roots[1].ID)
	require.Len(t, roots[1].Children, 1)
	assert.Equal(t, "c", roots[1].Children[0].ID)
}

func TestBuildTreePreservesSiblingOrder(t *testing.T) {
	items := []models.Item{
		item("p", "Parent", nil),
		item("c1", "First", strptr("p")),
		item("c2", "Second", strptr("p")),
		item("c3", "Third", strptr("p")),
	}

	roots := BuildTree(items)
	require.Len(t, roots, 1)
	require.Len(t, roots[0].Children, 3)
	assert.Equal(t, "c1", roots[0].Children[0].ID)
	assert.Equal(t, "c2", roots[0].Children[1].ID)
	assert.Equal(t, "c3", roots[0].Children[2].ID)
}

func TestBuildTreeOrphanBecomesRoot(t *testing.T) {
	items := []models.Item{
		item("a", "A", nil),
		item("b", "B", strptr("missing")),
	}

	roots := BuildTree(items)
	require.Len(t, roots, 2)
	assert.Equal(t, "b", roots[1].ID)
	assert.Empty(t, roots[1].Children)
}

func TestBuildTreeSelfReferenceBecomesRoot(t *testing.T) {
	items := []models.Item{
		item("a", "A", strptr("a")),
	}

	roots := BuildTree(items)
	require.Len(t, roots, 1)
	assert.Equal(t, "a", roots[0].ID)
}

func TestBuildTreeBreaksMutualCycle(t *testing.T) {
	items := []models.Item{
		item("a", "A", strptr("b")),
		item("b", "B", strptr("a")),
	}

	// The first cycle member in input order is re-rooted; the other keeps
	// its parent link.
	roots := BuildTree(items)
	require.Len(t, roots, 1)
	assert.Equal(t, "a", roots[0].ID)
	require.Len(t, roots[0].Children, 1)
	assert.Equal(t, "b", roots[0].Children[0].ID)
}

func TestBuildTreeCycleRootingIsDeterministic(t *testing.T) {
	items := []models.Item{
		item("a", "A", strptr("b")),
		item("b", "B", strptr("c")),
		item("c", "C", strptr("a")),
	}

	for i := 0; i < 50; i++ {
		rows := Flatten(BuildTree(items))
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"a", "c", "b"}, flattenIDs(rows))
		assert.Equal(t, "1", rows[0].Number)
		assert.Equal(t, "1.1", rows[1].Number)
		assert.Equal(t, "1.1.1", rows[2].Number)
	}
}

func TestBuildTreeEveryItemAppearsOnce(t *testing.T) {
	items := []models.Item{
		item("a", "A", nil),
		item("b", "B", nil),
		item("c", "C", strptr("b")),
		item("d", "D", strptr("c")),
		item("e", "E", strptr("missing")),
	}

	rows := Flatten(BuildTree(items))
	assert.ElementsMatch(t, []string{"a", "b", "c", "d", "e"}, flattenIDs(rows))
}

func TestFlattenNumberingIsSequentialPerLevel(t *testing.T) {
	items := []models.Item{
		item("a", "A", nil),
		item("b", "B", nil),
		item("c", "C", strptr("b")),
	}
	// Stored codes must not influence the rendered numbering.
	items[0].Code = "91"
	items[1].Code = "92"

	rows := Flatten(BuildTree(items))
	require.Len(t, rows, 3)
	assert.Equal(t, "1", rows[0].Number)
	assert.Equal(t, "A", rows[0].DisplayText())
	assert.Equal(t, "2", rows[1].Number)
	assert.Equal(t, "2.1", rows[2].Number)
	assert.Equal(t, 1, rows[2].Depth)
}

func TestFlattenFiltersEmptyInputItems(t *testing.T) {
	empty := models.Item{ID: "s1", Name: "Serial 1", Type: models.ItemTypeInput, Value: ""}
	filled := models.Item{ID: "s2", Name: "Serial 2", Type: models.ItemTypeInput, Value: "ENG-123"}
	status := item("a", "A", nil)

	rows := Flatten(BuildTree([]models.Item{empty, filled, status}))
	require.Len(t, rows, 2)
	assert.Equal(t, "s2", rows[0].Item.ID)
	assert.Equal(t, "ENG-123", rows[0].DisplayText())
	assert.Equal(t, "1", rows[0].Number)
	assert.Equal(t, "2", rows[1].Number)
}

func TestFlattenDeterministic(t *testing.T) {
	items := []models.Item{
		item("a", "A", nil),
		item("b", "B", strptr("a")),
		item("c", "C", nil),
	}

	first := Flatten(BuildTree(items))
	second := Flatten(BuildTree(items))
	assert.Equal(t, first, second)
}

func TestVisibleRemarks(t *testing.T) {
	cases := []struct {
		status models.ItemStatus
		want   string
	}{
		{models.StatusGood, ""},
		{models.StatusNA, ""},
		{models.StatusNoGood, "leak detected"},
		{models.StatusCorrected, "leak detected"},
	}
	for _, tc := range cases {
		row := Row{Item: models.Item{Status: tc.status, Remarks: "leak detected"}}
		assert.Equal(t, tc.want, row.VisibleRemarks(), "status %s", tc.status)
	}
}

func TestRomanNumeral(t *testing.T) {
	assert.Equal(t, "I", RomanNumeral(1))
	assert.Equal(t, "IV", RomanNumeral(4))
	assert.Equal(t, "XV", RomanNumeral(15))
	assert.Equal(t, "16", RomanNumeral(16))
	assert.Equal(t, "0", RomanNumeral(0))
}

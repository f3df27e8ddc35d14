// Package checklist holds the pure checklist-hierarchy logic shared by the
// report renderer, the preview endpoints and the job snapshot builder.
package checklist

import (
	"fmt"

	"github.com/hmpc-qa/inspection-api/internal/models"
)

// Node wraps an item with its resolved children.
type Node struct {
	models.Item
	Children []*Node
}

// BuildTree converts a flat, parent-referencing item list into a rooted
// forest. Sibling order follows input order. An item whose parent reference
// does not resolve within the input list becomes a root rather than an error,
// and parent chains that would loop back onto an item are broken the same way,
// so traversal always terminates and never drops an item.
func BuildTree(items []models.Item) []*Node {
	nodes := make(map[string]*Node, len(items))
	ordered := make([]*Node, 0, len(items))
	for i := range items {
		node := &Node{Item: items[i]}
		nodes[items[i].ID] = node
		ordered = append(ordered, node)
	}

	parentOf := make(map[string]string, len(items))
	for _, node := range ordered {
		if node.ParentItem == nil || *node.ParentItem == node.ID {
			continue
		}
		if _, known := nodes[*node.ParentItem]; known {
			parentOf[node.ID] = *node.ParentItem
		}
	}

	// Re-root any item whose ancestor chain loops back onto itself. Items are
	// walked in input order so the first cycle member in the input is the one
	// that loses its parent link; repeated calls always build the same forest.
	for _, node := range ordered {
		id := node.ID
		if _, ok := parentOf[id]; !ok {
			continue
		}
		seen := map[string]bool{id: true}
		for cur, ok := parentOf[id]; ok; cur, ok = parentOf[cur] {
			if seen[cur] {
				delete(parentOf, id)
				break
			}
			seen[cur] = true
		}
	}

	roots := make([]*Node, 0, len(ordered))
	for _, node := range ordered {
		if parentID, ok := parentOf[node.ID]; ok {
			parent := nodes[parentID]
			parent.Children = append(parent.Children, node)
			continue
		}
		roots = append(roots, node)
	}
	return roots
}

// Renderable reports whether an item appears in rendered views. Input items
// the inspector never filled in are hidden everywhere; status items always
// show regardless of status.
func Renderable(item models.Item) bool {
	return !(item.Type == models.ItemTypeInput && item.Value == "")
}

// Row is one flattened checklist line ready for rendering.
type Row struct {
	Item   models.Item
	Number string
	Depth  int
}

// DisplayText returns the text printed for the row: the inspector-entered
// value for input items, the item name otherwise.
func (r Row) DisplayText() string {
	if r.Item.Type == models.ItemTypeInput {
		return r.Item.Value
	}
	return r.Item.Name
}

// VisibleRemarks returns the remarks to display beside the row. Remarks only
// surface for noGood and corrected statuses; otherwise stored text is
// suppressed.
func (r Row) VisibleRemarks() string {
	if r.Item.Status == models.StatusNoGood || r.Item.Status == models.StatusCorrected {
		return r.Item.Remarks
	}
	return ""
}

// Flatten walks a forest in pre-order and produces the rendered row list.
// Numbering is recomputed per level from list position: children of item "2"
// are labelled "2.1", "2.2" and so on. The stored code field never
// participates.
func Flatten(roots []*Node) []Row {
	return flattenInto(nil, roots, "", 0)
}

func flattenInto(rows []Row, nodes []*Node, prefix string, depth int) []Row {
	position := 0
	for _, node := range nodes {
		if !Renderable(node.Item) {
			continue
		}
		position++
		number := fmt.Sprintf("%d", position)
		if prefix != "" {
			number = fmt.Sprintf("%s.%d", prefix, position)
		}
		rows = append(rows, Row{Item: node.Item, Number: number, Depth: depth})
		if len(node.Children) > 0 {
			rows = flattenInto(rows, node.Children, number, depth+1)
		}
	}
	return rows
}

// RomanNumeral renders a 1-based section order as its Roman-numeral label.
// Out-of-range orders fall back to the decimal string.
func RomanNumeral(order int) string {
	numerals := []string{
		"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X",
		"XI", "XII", "XIII", "XIV", "XV",
	}
	if order >= 1 && order <= len(numerals) {
		return numerals[order-1]
	}
	return fmt.Sprintf("%d", order)
}

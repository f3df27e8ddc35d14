package checklist

import "github.com/hmpc-qa/inspection-api/internal/models"

// SnapshotSource discriminates the two ways a job checklist comes into being:
// derived fresh from a category template, or accepted from a payload the
// client workflow already assembled. Both normalize into the same shape.
type SnapshotSource struct {
	template models.Checklist
	payload  models.Checklist
	fromTpl  bool
}

// FromTemplate snapshots a category's checklist: statuses reset to na,
// remarks cleared, status-typed items lose any value. Structure (ids, parent
// references, codes, images) carries through so later updates merge by id.
func FromTemplate(template models.Checklist) SnapshotSource {
	return SnapshotSource{template: template, fromTpl: true}
}

// FromPayload accepts a caller-assembled checklist, defaulting absent fields
// instead of resetting them.
func FromPayload(payload models.Checklist) SnapshotSource {
	return SnapshotSource{payload: payload}
}

// Build produces the job's independent checklist copy.
func (s SnapshotSource) Build() models.Checklist {
	if s.fromTpl {
		return snapshotTemplate(s.template)
	}
	return normalizePayload(s.payload)
}

func snapshotTemplate(template models.Checklist) models.Checklist {
	snapshot := make(models.Checklist, 0, len(template))
	for _, section := range template {
		copied := models.Section{
			ID:    section.ID,
			Title: section.Title,
			Order: section.Order,
			Items: make([]models.Item, 0, len(section.Items)),
		}
		for _, item := range section.Items {
			reset := item
			reset.Type = defaultType(item.Type)
			reset.Status = models.StatusNA
			reset.Remarks = ""
			if reset.Type == models.ItemTypeStatus {
				reset.Value = ""
			}
			copied.Items = append(copied.Items, reset)
		}
		snapshot = append(snapshot, copied)
	}
	return snapshot
}

func normalizePayload(payload models.Checklist) models.Checklist {
	normalized := make(models.Checklist, 0, len(payload))
	for _, section := range payload {
		copied := models.Section{
			ID:    section.ID,
			Title: section.Title,
			Order: section.Order,
			Items: make([]models.Item, 0, len(section.Items)),
		}
		for _, item := range section.Items {
			kept := item
			kept.Type = defaultType(item.Type)
			if kept.Status == "" {
				kept.Status = models.StatusNA
			}
			copied.Items = append(copied.Items, kept)
		}
		normalized = append(normalized, copied)
	}
	return normalized
}

func defaultType(t models.ItemType) models.ItemType {
	if t == "" {
		return models.ItemTypeStatus
	}
	return t
}

// SectionUpdate is a partial update for one section, matched by id.
type SectionUpdate struct {
	ID    string       `json:"id"`
	Title *string      `json:"section"`
	Items []ItemUpdate `json:"items"`
}

// ItemUpdate is a partial update for one item, matched by id. Nil fields are
// left untouched; parentItem and code are never updated through this path.
type ItemUpdate struct {
	ID      string             `json:"id"`
	Status  *models.ItemStatus `json:"status"`
	Remarks *string            `json:"remarks"`
	Value   *string            `json:"value"`
	Name    *string            `json:"name"`
	Image   *string            `json:"image"`
}

// Merge applies partial section/item updates to an existing job checklist in
// place. Updates that match no existing id are ignored: item creation happens
// at the category level, never through a job update.
func Merge(existing models.Checklist, updates []SectionUpdate) {
	for _, sectionUpdate := range updates {
		section := findSection(existing, sectionUpdate.ID)
		if section == nil {
			continue
		}
		if sectionUpdate.Title != nil && *sectionUpdate.Title != "" {
			section.Title = *sectionUpdate.Title
		}
		for _, itemUpdate := range sectionUpdate.Items {
			item := findItem(section, itemUpdate.ID)
			if item == nil {
				continue
			}
			if itemUpdate.Status != nil && *itemUpdate.Status != "" {
				item.Status = *itemUpdate.Status
			}
			if itemUpdate.Remarks != nil {
				item.Remarks = *itemUpdate.Remarks
			}
			if itemUpdate.Value != nil {
				item.Value = *itemUpdate.Value
			}
			if itemUpdate.Name != nil && *itemUpdate.Name != "" {
				item.Name = *itemUpdate.Name
			}
			if itemUpdate.Image != nil {
				item.Image = itemUpdate.Image
			}
		}
	}
}

func findSection(sections models.Checklist, id string) *models.Section {
	for i := range sections {
		if sections[i].ID == id {
			return &sections[i]
		}
	}
	return nil
}

func findItem(section *models.Section, id string) *models.Item {
	for i := range section.Items {
		if section.Items[i].ID == id {
			return &section.Items[i]
		}
	}
	return nil
}

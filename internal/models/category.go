package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ItemType discriminates checklist entries between status marks and free-text
// inputs (serial numbers and the like).
type ItemType string

const (
	ItemTypeStatus ItemType = "status"
	ItemTypeInput  ItemType = "input"
)

// ItemStatus enumerates the four inspection marks.
type ItemStatus string

const (
	StatusGood      ItemStatus = "good"
	StatusNoGood    ItemStatus = "noGood"
	StatusCorrected ItemStatus = "corrected"
	StatusNA        ItemStatus = "na"
)

// Item is a single checklist entry. Hierarchy is flat: a sub-item references
// its parent by id within the same section rather than nesting structurally.
type Item struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Type       ItemType   `json:"type"`
	Status     ItemStatus `json:"status"`
	Remarks    string     `json:"remarks"`
	Value      string     `json:"value"`
	ParentItem *string    `json:"parentItem"`
	Code       string     `json:"code"`
	Image      *string    `json:"image"`
}

// Section groups items under a Roman-numeral-rendered sequence order. Order is
// assigned at creation and never renumbered on deletion.
type Section struct {
	ID    string `json:"id"`
	Title string `json:"section"`
	Order int    `json:"order"`
	Items []Item `json:"items"`
}

// Checklist is the ordered section list persisted as a single JSONB document
// so the nested shape round-trips without flattening.
type Checklist []Section

// Value marshals the checklist for persistence.
func (c Checklist) Value() (driver.Value, error) {
	if c == nil {
		c = Checklist{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal checklist: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSONB payload into the checklist.
func (c *Checklist) Scan(value interface{}) error {
	return scanJSON(value, c, "Checklist")
}

// AppearanceImages holds the per-side reference photos of the vehicle.
type AppearanceImages struct {
	Front *string `json:"front"`
	Rear  *string `json:"rear"`
	Left  *string `json:"left"`
	Right *string `json:"right"`
}

// Value marshals the image set for persistence.
func (a AppearanceImages) Value() (driver.Value, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal appearance images: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSONB payload into the image set.
func (a *AppearanceImages) Scan(value interface{}) error {
	return scanJSON(value, a, "AppearanceImages")
}

// Side returns a pointer to the slot for the named side, or nil for an
// unknown side.
func (a *AppearanceImages) Side(side MarkSide) **string {
	switch side {
	case SideFront:
		return &a.Front
	case SideRear:
		return &a.Rear
	case SideLeft:
		return &a.Left
	case SideRight:
		return &a.Right
	}
	return nil
}

// Category is an inspection template node. Categories form a tree via the
// parent pointer; each owns its checklist sections and appearance photos.
type Category struct {
	ID               string           `db:"id" json:"id"`
	Name             string           `db:"name" json:"name"`
	Description      string           `db:"description" json:"description"`
	Parent           *string          `db:"parent" json:"parent"`
	Checklist        Checklist        `db:"checklist" json:"checklist"`
	AppearanceImages AppearanceImages `db:"appearance_images" json:"appearanceImages"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`

	// Children is resolved in memory from parent pointers; never persisted.
	Children []*Category `db:"-" json:"children,omitempty"`
}

// FindSection returns the section with the given id, or nil.
func (c *Category) FindSection(sectionID string) *Section {
	for i := range c.Checklist {
		if c.Checklist[i].ID == sectionID {
			return &c.Checklist[i]
		}
	}
	return nil
}

func scanJSON(value interface{}, dest interface{}, what string) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for %s", value, what)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", what, err)
	}
	return nil
}

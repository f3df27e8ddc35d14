package dto

import (
	"time"

	"github.com/hmpc-qa/inspection-api/internal/checklist"
	"github.com/hmpc-qa/inspection-api/internal/models"
)

// CreateJobRequest opens an inspection job under a category. When Checklist is
// empty the snapshot is taken from the category template; otherwise the payload
// checklist is normalized and stored as given.
type CreateJobRequest struct {
	CategoryID      string                   `json:"categoryId" validate:"required,uuid4"`
	JobInfo         *models.JobInfo          `json:"jobInfo"`
	Checklist       models.Checklist         `json:"checklist"`
	AppearanceMarks []models.AppearanceMark  `json:"appearanceMarks"`
	DefectSummary   []models.DefectSummary   `json:"defectSummary"`
	TechnicalTests  *models.TechnicalTests   `json:"technicalTests"`
}

// JobInfoUpdate carries a partial job-info merge; nil fields are left as-is.
type JobInfoUpdate struct {
	Customer   *string    `json:"customer"`
	Model      *string    `json:"model"`
	BodyType   *string    `json:"bodyType"`
	ChassisNum *string    `json:"chassisNum"`
	EngineNum  *string    `json:"engineNum"`
	Date       *time.Time `json:"date"`
	JONo       *string    `json:"joNo"`
	CSNo       *string    `json:"csNo"`
	KeyNumber  *string    `json:"keyNumber"`
	JobType    *string    `json:"jobType"`
}

// Apply merges the non-nil fields into info.
func (u *JobInfoUpdate) Apply(info *models.JobInfo) {
	if u == nil || info == nil {
		return
	}
	if u.Customer != nil {
		info.Customer = *u.Customer
	}
	if u.Model != nil {
		info.Model = *u.Model
	}
	if u.BodyType != nil {
		info.BodyType = *u.BodyType
	}
	if u.ChassisNum != nil {
		info.ChassisNum = *u.ChassisNum
	}
	if u.EngineNum != nil {
		info.EngineNum = *u.EngineNum
	}
	if u.Date != nil {
		info.Date = u.Date
	}
	if u.JONo != nil {
		info.JONo = *u.JONo
	}
	if u.CSNo != nil {
		info.CSNo = *u.CSNo
	}
	if u.KeyNumber != nil {
		info.KeyNumber = *u.KeyNumber
	}
	if u.JobType != nil {
		info.JobType = *u.JobType
	}
}

// UpdateJobRequest applies a partial update to an existing job. Checklist
// updates are merged item-by-item; collection fields replace wholesale when
// present.
type UpdateJobRequest struct {
	JobInfo         *JobInfoUpdate             `json:"jobInfo"`
	Checklist       []checklist.SectionUpdate  `json:"checklist"`
	AppearanceMarks *[]models.AppearanceMark   `json:"appearanceMarks"`
	DefectSummary   *[]models.DefectSummary    `json:"defectSummary"`
	TechnicalTests  *models.TechnicalTests     `json:"technicalTests"`
}

// JobListItem is the compact shape used by job listings.
type JobListItem struct {
	ID           string          `json:"id"`
	CategoryID   string          `json:"categoryId"`
	CategoryPath []string        `json:"categoryPath"`
	JobInfo      models.JobInfo  `json:"jobInfo"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// RowPreview is one rendered checklist row as the report will number it.
type RowPreview struct {
	Number  string `json:"number"`
	Text    string `json:"text"`
	Depth   int    `json:"depth"`
	Status  string `json:"status,omitempty"`
	Remarks string `json:"remarks,omitempty"`
}

// SectionPreview is one section of the rendered checklist preview.
type SectionPreview struct {
	ID      string       `json:"id"`
	Section string       `json:"section"`
	Order   int          `json:"order"`
	Numeral string       `json:"numeral"`
	Rows    []RowPreview `json:"rows"`
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// MarkSide names one of the four vehicle sides carrying an appearance photo.
type MarkSide string

const (
	SideFront MarkSide = "front"
	SideRear  MarkSide = "rear"
	SideLeft  MarkSide = "left"
	SideRight MarkSide = "right"
)

// Sides lists the four vehicle sides in display order.
var Sides = []MarkSide{SideFront, SideRear, SideLeft, SideRight}

// MarkType discriminates appearance defect markers.
type MarkType string

const (
	MarkCircle MarkType = "circle"
	MarkPath   MarkType = "path"
)

// PathPoint is one vertex of a freehand defect outline, normalized to [0,1]
// relative to the side image dimensions.
type PathPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// AppearanceMark is a normalized-coordinate defect annotation on a side image.
// Circles carry center and radius; paths carry the vertex list.
type AppearanceMark struct {
	Side       MarkSide    `json:"side"`
	Type       MarkType    `json:"type"`
	X          float64     `json:"x"`
	Y          float64     `json:"y"`
	Radius     float64     `json:"radius"`
	Path       []PathPoint `json:"path"`
	DefectName string      `json:"defectName"`
	Remarks    string      `json:"remarks"`
	Image      *string     `json:"image"`
}

// AppearanceMarks is persisted as one JSONB document per job.
type AppearanceMarks []AppearanceMark

func (m AppearanceMarks) Value() (driver.Value, error) {
	if m == nil {
		m = AppearanceMarks{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal appearance marks: %w", err)
	}
	return data, nil
}

func (m *AppearanceMarks) Scan(value interface{}) error {
	return scanJSON(value, m, "AppearanceMarks")
}

// DefectSummary is one tabulated defect record on the summary page.
type DefectSummary struct {
	No                int        `json:"no"`
	DefectCode        string     `json:"defectCode"`
	DefectEncountered string     `json:"defectEncountered"`
	Status            ItemStatus `json:"status"`
	Recurrence        int        `json:"recurrence"`
	Image             *string    `json:"image"`
}

// DefectSummaries is persisted as one JSONB document per job.
type DefectSummaries []DefectSummary

func (d DefectSummaries) Value() (driver.Value, error) {
	if d == nil {
		d = DefectSummaries{}
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal defect summary: %w", err)
	}
	return data, nil
}

func (d *DefectSummaries) Scan(value interface{}) error {
	return scanJSON(value, d, "DefectSummaries")
}

// SidePair holds left/right hand readings.
type SidePair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// AxleReading holds per-axle braking force readings.
type AxleReading struct {
	Left       string `json:"left"`
	Right      string `json:"right"`
	Sum        string `json:"sum"`
	Difference string `json:"difference"`
}

// BrakingExtremes holds one max-or-min set across both axles.
type BrakingExtremes struct {
	Front AxleReading `json:"front"`
	Rear  AxleReading `json:"rear"`
}

// SlipReading is one speed/value pair from the slip tester.
type SlipReading struct {
	Speed string `json:"speed"`
	Value string `json:"value"`
}

// BeamReadings holds before/after adjustment values for one beam.
type BeamReadings struct {
	Before SidePair `json:"before"`
	After  SidePair `json:"after"`
}

// ABSReading is one option/remarks pair from the ABS test.
type ABSReading struct {
	Option  string `json:"option"`
	Remarks string `json:"remarks"`
}

// TechnicalTests is the fixed-shape record of vehicle technical measurements.
// It is filled incrementally by the inspector, not a checklist item list.
type TechnicalTests struct {
	BreakingForce struct {
		Max BrakingExtremes `json:"max"`
		Min BrakingExtremes `json:"min"`
	} `json:"breakingForce"`
	SpeedTesting struct {
		Speedometer string `json:"speedometer"`
		Tester      string `json:"tester"`
	} `json:"speedTesting"`
	TurningRadius struct {
		Inner SidePair `json:"inner"`
		Outer SidePair `json:"outer"`
	} `json:"turningRadius"`
	SlipTester      []SlipReading `json:"slipTester"`
	HeadlightTester struct {
		LowBeam  BeamReadings `json:"lowBeam"`
		HighBeam BeamReadings `json:"highBeam"`
	} `json:"headlightTester"`
	ABSTesting []ABSReading `json:"absTesting"`
}

func (t TechnicalTests) Value() (driver.Value, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal technical tests: %w", err)
	}
	return data, nil
}

func (t *TechnicalTests) Scan(value interface{}) error {
	return scanJSON(value, t, "TechnicalTests")
}

// JobInfo carries the vehicle and work-order identifiers printed on the
// report's info tables.
type JobInfo struct {
	Customer   string     `json:"customer"`
	Model      string     `json:"model"`
	BodyType   string     `json:"bodyType"`
	ChassisNum string     `json:"chassisNum"`
	EngineNum  string     `json:"engineNum"`
	Date       *time.Time `json:"date"`
	JONo       string     `json:"joNo"`
	CSNo       string     `json:"csNo"`
	KeyNumber  string     `json:"keyNumber"`
	JobType    string     `json:"jobType"`
}

func (j JobInfo) Value() (driver.Value, error) {
	data, err := json.Marshal(j)
	if err != nil {
		return nil, fmt.Errorf("marshal job info: %w", err)
	}
	return data, nil
}

func (j *JobInfo) Scan(value interface{}) error {
	return scanJSON(value, j, "JobInfo")
}

// Job is one inspection instance: an independent snapshot of the category's
// checklist, mutable without affecting the template it came from. The ancestor
// path is materialized at creation and deliberately not kept in sync with
// later re-parenting.
type Job struct {
	ID               string           `db:"id" json:"id"`
	CategoryID       string           `db:"category_id" json:"category"`
	CategoryPath     pq.StringArray   `db:"category_path" json:"categoryPath"`
	JobInfo          JobInfo          `db:"job_info" json:"jobInfo"`
	Checklist        Checklist        `db:"checklist" json:"checklist"`
	AppearanceImages AppearanceImages `db:"appearance_images" json:"appearanceImages"`
	AppearanceMarks  AppearanceMarks  `db:"appearance_marks" json:"appearanceMarks"`
	DefectSummary    DefectSummaries  `db:"defect_summary" json:"defectSummary"`
	TechnicalTests   TechnicalTests   `db:"technical_tests" json:"technicalTests"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// MarksForSide filters the job's appearance marks for one vehicle side,
// preserving input order.
func (j *Job) MarksForSide(side MarkSide) []AppearanceMark {
	marks := make([]AppearanceMark, 0, len(j.AppearanceMarks))
	for _, mark := range j.AppearanceMarks {
		if mark.Side == side {
			marks = append(marks, mark)
		}
	}
	return marks
}

// Package report renders the final-inspection checklist PDF: the paginated
// checklist tables, the appearance page with mark overlays, the defect
// summary and the technical test measurements.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/hmpc-qa/inspection-api/internal/checklist"
	"github.com/hmpc-qa/inspection-api/internal/models"
)

const (
	pageLeft      = 30.0
	pageBreakY    = 700.0
	checklistRowH = 25.0
)

var checklistColWidths = []float64{300, 100, 150}

// Meta carries the fixed letterhead text and logo printed on every page.
type Meta struct {
	Organization string
	Division     string
	Department   string
	Title        string
	LogoPath     string
}

// Renderer builds inspection report PDFs. It is stateless and safe for
// concurrent use; each Render call works on its own document.
type Renderer struct {
	meta   Meta
	images ImageResolver
}

// NewRenderer constructs a Renderer. A nil resolver renders placeholders in
// place of every image.
func NewRenderer(meta Meta, images ImageResolver) *Renderer {
	return &Renderer{meta: meta, images: images}
}

// Render writes the complete report for one job to w.
func (r *Renderer) Render(w io.Writer, job *models.Job, category *models.Category) error {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pageLeft, pageLeft, pageLeft)
	pdf.SetAutoPageBreak(false, pageLeft)

	d := &document{
		pdf:        pdf,
		meta:       r.meta,
		images:     r.images,
		job:        job,
		category:   category,
		registered: map[string]string{},
	}

	pdf.AddPage()
	d.drawHeader()
	d.drawJobInfo()
	d.drawLegend()
	d.drawChecklist()
	d.drawAppearancePage()
	d.drawSummaryPage()
	d.drawTechnicalPage()

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render report pdf: %w", err)
	}
	return nil
}

type document struct {
	pdf        *gofpdf.Fpdf
	meta       Meta
	images     ImageResolver
	job        *models.Job
	category   *models.Category
	registered map[string]string
}

// drawHeader paints the letterhead repeated on every page and leaves the
// cursor below it.
func (d *document) drawHeader() {
	pdf := d.pdf
	if d.meta.LogoPath != "" {
		if _, err := os.Stat(d.meta.LogoPath); err == nil {
			pdf.ImageOptions(d.meta.LogoPath, pageLeft, 30, 80, 0, false, gofpdf.ImageOptions{}, 0, "")
		}
	}

	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(pageLeft, 40)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 18, d.meta.Organization, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 14, d.meta.Division, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 14, d.meta.Department, "", 1, "C", false, 0, "")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 16, d.meta.Title, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	categoryName := ""
	if d.category != nil {
		categoryName = d.category.Name
	}
	pdf.CellFormat(0, 14, "Category: "+categoryName, "", 1, "C", false, 0, "")
	pdf.Ln(20)
}

// drawJobInfo paints the two side-by-side identifier tables.
func (d *document) drawJobInfo() {
	pdf := d.pdf
	info := d.job.JobInfo
	const (
		leftX      = pageLeft
		rightX     = 300.0
		tableWidth = 240.0
		rowHeight  = 20.0
	)
	startY := pdf.GetY()

	left := []string{
		"Customer: " + orNA(info.Customer),
		"Model: " + orNA(info.Model),
		"Body Type: " + orNA(info.BodyType),
		"Chassis No.: " + orNA(info.ChassisNum),
		"Engine No.: " + orNA(info.EngineNum),
	}
	right := []string{
		"Date: " + formatDate(info.Date),
		"JO No.: " + orNA(info.JONo),
		"C/S No.: " + orNA(info.CSNo),
		"Key No.: " + orNA(info.KeyNumber),
		"Job Type: " + orNA(info.JobType),
	}

	pdf.SetFont("Helvetica", "", 10)
	for idx, text := range left {
		y := startY + float64(idx)*rowHeight
		pdf.Rect(leftX, y, tableWidth, rowHeight, "D")
		pdf.SetXY(leftX+5, y+5)
		pdf.CellFormat(tableWidth-10, 10, text, "", 0, "L", false, 0, "")
	}
	for idx, text := range right {
		y := startY + float64(idx)*rowHeight
		pdf.Rect(rightX, y, tableWidth, rowHeight, "D")
		pdf.SetXY(rightX+5, y+5)
		pdf.CellFormat(tableWidth-10, 10, text, "", 0, "L", false, 0, "")
	}

	pdf.SetY(startY + float64(len(left))*rowHeight + 10)
}

// drawLegend paints the status legend row above the checklist table.
func (d *document) drawLegend() {
	pdf := d.pdf
	y := pdf.GetY()
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(pageLeft, y+9, "Legend:")

	d.drawStatusSymbol(models.StatusGood, pageLeft+60, y+5)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(pageLeft+75, y+9, "Good")

	d.drawStatusSymbol(models.StatusNoGood, pageLeft+130, y+5)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(pageLeft+145, y+9, "No Good")

	d.drawStatusSymbol(models.StatusCorrected, pageLeft+210, y+5)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(pageLeft+225, y+9, "Corrected")

	d.drawStatusSymbol(models.StatusNA, pageLeft+290, y+5)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(pageLeft+305, y+9, "Not Applicable")

	pdf.SetY(y + 30)
}

func (d *document) checklistColX() []float64 {
	colX := make([]float64, len(checklistColWidths)+1)
	colX[0] = pageLeft
	for i, w := range checklistColWidths {
		colX[i+1] = colX[i] + w
	}
	return colX
}

// drawChecklistHeader paints the three-column table header at the cursor.
func (d *document) drawChecklistHeader() {
	pdf := d.pdf
	colX := d.checklistColX()
	y := pdf.GetY()

	pdf.SetFont("Helvetica", "B", 10)
	headers := []string{"DESCRIPTION/SYSTEM", "STATUS", "REMARKS"}
	for i, h := range headers {
		pdf.SetXY(colX[i]+5, y+7)
		pdf.CellFormat(checklistColWidths[i]-10, 10, h, "", 0, "L", false, 0, "")
	}
	right := colX[len(colX)-1]
	pdf.Line(pageLeft, y, right, y)
	pdf.Line(pageLeft, y+checklistRowH, right, y+checklistRowH)
	for _, x := range colX {
		pdf.Line(x, y, x, y+checklistRowH)
	}
	pdf.SetY(y + checklistRowH)
}

// drawChecklistRow paints one row. The status glyph is drawn after the
// borders so it stays visible; highlight fills section rows grey.
func (d *document) drawChecklistRow(description, remarks string, highlight bool, status models.ItemStatus, withStatus bool) {
	pdf := d.pdf
	colX := d.checklistColX()
	right := colX[len(colX)-1]
	y := pdf.GetY()

	if highlight {
		pdf.SetFillColor(240, 240, 240)
		pdf.Rect(pageLeft, y, right-pageLeft, checklistRowH, "FD")
	}

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(colX[0]+5, y+7)
	pdf.MultiCell(checklistColWidths[0]-10, 10, description, "", "L", false)
	pdf.SetXY(colX[2]+5, y+7)
	pdf.MultiCell(checklistColWidths[2]-10, 10, remarks, "", "L", false)

	pdf.Line(pageLeft, y, right, y)
	pdf.Line(pageLeft, y+checklistRowH, right, y+checklistRowH)
	for _, x := range colX {
		pdf.Line(x, y, x, y+checklistRowH)
	}

	if withStatus {
		d.drawStatusSymbol(status, colX[1]+checklistColWidths[1]/2, y+checklistRowH/2)
	}

	pdf.SetY(y + checklistRowH)
}

// ensureChecklistSpace starts a new page, redrawing the letterhead and table
// header, once the cursor has passed the break line.
func (d *document) ensureChecklistSpace() {
	if d.pdf.GetY() > pageBreakY {
		d.pdf.AddPage()
		d.drawHeader()
		d.drawChecklistHeader()
	}
}

// drawChecklist paints every section and its flattened, renumbered rows,
// breaking pages past the limit with the letterhead and table header
// repeated. Section-title rows break the same way item rows do.
func (d *document) drawChecklist() {
	d.drawChecklistHeader()
	for idx, section := range d.job.Checklist {
		d.ensureChecklistSpace()
		d.drawChecklistRow(checklist.RomanNumeral(idx+1)+". "+section.Title, "", true, "", false)
		rows := checklist.Flatten(checklist.BuildTree(section.Items))
		for _, row := range rows {
			d.ensureChecklistSpace()
			text := strings.ReplaceAll(row.DisplayText(), "™", "")
			text = strings.TrimSpace(text)
			marker := ""
			if row.Depth > 0 {
				marker = "- "
			}
			description := strings.Repeat("  ", row.Depth) + marker + row.Number + ". " + text
			d.drawChecklistRow(description, row.VisibleRemarks(), false, row.Item.Status, true)
		}
	}
}

func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return t.Format("January 2, 2006")
}

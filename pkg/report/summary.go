package report

import (
	"fmt"

	"github.com/hmpc-qa/inspection-api/internal/models"
)

var summaryColWidths = []float64{50, 100, 150, 80, 80, 100}

const summaryRowH = 50.0

var summaryHeaders = []string{"No.", "Defect Code", "Defect Encountered", "Status", "Recurrence", "Image"}

func summaryColX() []float64 {
	colX := make([]float64, len(summaryColWidths)+1)
	colX[0] = pageLeft
	for i, w := range summaryColWidths {
		colX[i+1] = colX[i] + w
	}
	return colX
}

// drawSummaryPage paints the defect-code and status legends followed by the
// summary table. Rows grow past the 50pt minimum when their text wraps;
// thumbnails render 40x40 centered in the image column.
func (d *document) drawSummaryPage() {
	pdf := d.pdf
	pdf.AddPage()
	d.drawHeader()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 16, "Summary Checklist", "", 1, "C", false, 0, "")
	pdf.Ln(10)

	legendY := pdf.GetY()
	const statusLegendX = 450.0

	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(pageLeft, legendY+10, "Defect Code Legend:")
	for idx, option := range defectCodes {
		rowY := legendY + 15 + float64(idx)*20
		d.drawDefectSymbol(option.Value, pageLeft+10, rowY+6)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetXY(pageLeft+50, rowY)
		pdf.MultiCell(350, 9, " - "+option.Label, "", "L", false)
	}

	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(statusLegendX, legendY+10, "Status Legend:")
	statusOptions := []struct {
		status models.ItemStatus
		label  string
	}{
		{models.StatusNoGood, "No Good"},
		{models.StatusCorrected, "Corrected"},
	}
	for idx, option := range statusOptions {
		rowY := legendY + 15 + float64(idx)*20
		d.drawStatusSymbol(option.status, statusLegendX+10, rowY+6)
		pdf.SetFont("Helvetica", "", 8)
		pdf.Text(statusLegendX+30, rowY+8, " - "+option.label)
	}

	legendHeight := 15 + float64(len(defectCodes)-1)*20 + 20
	pdf.SetY(legendY + legendHeight + 10)

	d.drawSummaryHeader()
	for idx, defect := range d.job.DefectSummary {
		if pdf.GetY() > pageBreakY {
			pdf.AddPage()
			d.drawHeader()
			d.drawSummaryHeader()
		}
		d.drawSummaryRow(idx, defect)
	}
}

func (d *document) drawSummaryHeader() {
	pdf := d.pdf
	colX := summaryColX()
	right := colX[len(colX)-1]
	y := pdf.GetY()

	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range summaryHeaders {
		pdf.SetXY(colX[i]+5, y+7)
		pdf.MultiCell(summaryColWidths[i]-10, 10, h, "", "C", false)
	}
	pdf.Line(pageLeft, y, right, y)
	pdf.Line(pageLeft, y+summaryRowH, right, y+summaryRowH)
	for _, x := range colX {
		pdf.Line(x, y, x, y+summaryRowH)
	}
	pdf.SetY(y + summaryRowH)
}

func (d *document) drawSummaryRow(idx int, defect models.DefectSummary) {
	pdf := d.pdf
	colX := summaryColX()
	right := colX[len(colX)-1]
	y := pdf.GetY()

	no := fmt.Sprintf("%d", defect.No)
	if defect.No == 0 {
		no = fmt.Sprintf("%d", idx+1)
	}
	encountered := orNA(defect.DefectEncountered)
	recurrence := fmt.Sprintf("%d", defect.Recurrence)

	// Symbol and image columns stay fixed height; text columns stretch the row.
	rowHeight := summaryRowH
	for i, text := range map[int]string{0: no, 2: encountered, 4: recurrence} {
		if h := d.textHeight(text, summaryColWidths[i]-10, 14); h > rowHeight {
			rowHeight = h
		}
	}

	pdf.SetFont("Helvetica", "", 14)
	pdf.SetXY(colX[0]+5, y+7)
	pdf.MultiCell(summaryColWidths[0]-10, 17, no, "", "C", false)

	if defect.DefectCode != "" {
		d.drawDefectSymbol(defect.DefectCode, colX[1]+10, y+rowHeight/2)
	} else {
		pdf.SetFont("Helvetica", "", 14)
		pdf.SetXY(colX[1]+5, y+7)
		pdf.MultiCell(summaryColWidths[1]-10, 17, "N/A", "", "C", false)
	}

	pdf.SetFont("Helvetica", "", 14)
	pdf.SetXY(colX[2]+5, y+7)
	pdf.MultiCell(summaryColWidths[2]-10, 17, encountered, "", "L", false)

	switch defect.Status {
	case models.StatusNoGood, models.StatusCorrected:
		d.drawStatusSymbol(defect.Status, colX[3]+summaryColWidths[3]/2, y+rowHeight/2)
	default:
		pdf.SetFont("Helvetica", "", 14)
		pdf.SetXY(colX[3]+5, y+7)
		pdf.MultiCell(summaryColWidths[3]-10, 17, "N/A", "", "C", false)
	}

	pdf.SetFont("Helvetica", "", 14)
	pdf.SetXY(colX[4]+5, y+7)
	pdf.MultiCell(summaryColWidths[4]-10, 17, recurrence, "", "C", false)

	if defect.Image != nil && *defect.Image != "" {
		imageX := colX[5] + (summaryColWidths[5]-40)/2
		imageY := y + (rowHeight-40)/2
		if !d.placeImage(*defect.Image, imageX, imageY, 40, 40) {
			pdf.SetFont("Helvetica", "", 14)
			pdf.SetXY(colX[5]+5, y+7)
			pdf.MultiCell(summaryColWidths[5]-10, 17, "Image not found", "", "C", false)
		}
	} else {
		pdf.SetFont("Helvetica", "", 14)
		pdf.SetXY(colX[5]+5, y+7)
		pdf.MultiCell(summaryColWidths[5]-10, 17, "N/A", "", "C", false)
	}

	pdf.Line(pageLeft, y, right, y)
	pdf.Line(pageLeft, y+rowHeight, right, y+rowHeight)
	for _, x := range colX {
		pdf.Line(x, y, x, y+rowHeight)
	}
	pdf.SetY(y + rowHeight)
}

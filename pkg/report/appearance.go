package report

import (
	"math"
	"strings"

	"github.com/hmpc-qa/inspection-api/internal/models"
)

const (
	appearanceImageW = 200.0
	appearanceImageH = 150.0
)

// sideLegend maps the short codes painted over the side photos.
var sideLegend = []struct{ Code, Label string }{
	{"C", "Crack"},
	{"SC", "Scratch"},
	{"D", "Dent"},
}

// drawAppearancePage paints the 2x2 grid of side photos with the job's
// normalized defect marks overlaid, plus the defect legend and per-side
// remarks column on the right.
func (d *document) drawAppearancePage() {
	pdf := d.pdf
	pdf.AddPage()
	d.drawHeader()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 16, "Appearance Checklist", "", 1, "C", false, 0, "")
	pdf.Ln(10)

	gridX := []float64{pageLeft, 250}
	top := pdf.GetY()
	gridY := []float64{top, top + appearanceImageH + 20}
	positions := []struct {
		side models.MarkSide
		x, y float64
	}{
		{models.SideFront, gridX[0], gridY[0]},
		{models.SideRear, gridX[1], gridY[0]},
		{models.SideLeft, gridX[0], gridY[1]},
		{models.SideRight, gridX[1], gridY[1]},
	}

	for _, pos := range positions {
		d.drawSidePhoto(pos.side, pos.x, pos.y)
	}

	legendX := gridX[1] + appearanceImageW + 20
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(legendX, gridY[0]+12, "Defect Legend:")
	pdf.SetFont("Helvetica", "", 10)
	for idx, entry := range sideLegend {
		pdf.Text(legendX, gridY[0]+20+float64(idx)*15+10, entry.Code+" - "+entry.Label)
	}

	remarksHeaderY := gridY[0] + 20 + float64(len(sideLegend))*15 + 20
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(legendX, remarksHeaderY+12, "Remarks:")
	remarksY := remarksHeaderY + 20
	for _, side := range models.Sides {
		marks := d.job.MarksForSide(side)
		if len(marks) == 0 {
			continue
		}
		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(legendX, remarksY+10, sideTitle(side)+" Side:")
		remarksY += 15
		for _, mark := range marks {
			if mark.Remarks == "" {
				continue
			}
			name := mark.DefectName
			if name == "" {
				name = "Defect"
			}
			pdf.Text(legendX+10, remarksY+10, "- "+name+": "+mark.Remarks)
			remarksY += 12
		}
	}
}

// drawSidePhoto paints one side image (or its placeholder) with every mark
// for that side overlaid in red at clamped normalized coordinates.
func (d *document) drawSidePhoto(side models.MarkSide, x, y float64) {
	pdf := d.pdf

	imagePath := ""
	if slot := d.job.AppearanceImages.Side(side); slot != nil && *slot != nil {
		imagePath = **slot
	}
	if !d.placeImage(imagePath, x, y, appearanceImageW, appearanceImageH) {
		pdf.Rect(x, y, appearanceImageW, appearanceImageH, "D")
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetXY(x+10, y+appearanceImageH/2)
		pdf.CellFormat(appearanceImageW-20, 10, "No "+string(side)+" image", "", 0, "C", false, 0, "")
	}

	for _, mark := range d.job.MarksForSide(side) {
		markX := x + clamp01(mark.X)*appearanceImageW
		markY := y + clamp01(mark.Y)*appearanceImageH

		pdf.SetDrawColor(255, 0, 0)
		pdf.SetLineWidth(2)
		switch mark.Type {
		case models.MarkPath:
			if len(mark.Path) > 1 {
				for i, point := range mark.Path {
					px := x + clamp01(point.X)*appearanceImageW
					py := y + clamp01(point.Y)*appearanceImageH
					if i == 0 {
						pdf.MoveTo(px, py)
					} else {
						pdf.LineTo(px, py)
					}
				}
				pdf.DrawPath("D")
			}
		default:
			radius := mark.Radius
			if radius == 0 {
				radius = 0.05
			}
			scaled := math.Max(5, radius*math.Min(appearanceImageW, appearanceImageH))
			pdf.Circle(markX, markY, scaled, "D")
		}
		pdf.SetDrawColor(0, 0, 0)
		pdf.SetLineWidth(0.2)

		shortCode := "Defect"
		if fields := strings.Fields(mark.DefectName); len(fields) > 0 {
			shortCode = fields[0]
		}
		pdf.SetTextColor(255, 0, 0)
		pdf.SetFont("Helvetica", "", 8)
		pdf.Text(markX-10, markY-20, shortCode)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(x, y-5, sideTitle(side))
}

func sideTitle(side models.MarkSide) string {
	s := string(side)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

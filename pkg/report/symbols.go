package report

import (
	"github.com/hmpc-qa/inspection-api/internal/models"
)

// drawStatusSymbol draws the inspection mark centered at (x, y): a circle for
// good, a cross for noGood, a crossed circle for corrected and the literal
// text "N/A" for not-applicable. Callers draw it after cell borders so the
// glyph stays on top.
func (d *document) drawStatusSymbol(status models.ItemStatus, x, y float64) {
	pdf := d.pdf
	switch status {
	case models.StatusGood:
		pdf.Circle(x, y, 6, "D")
	case models.StatusNoGood:
		prev := pdf.GetLineWidth()
		pdf.SetLineWidth(1)
		pdf.Line(x-6, y-6, x+6, y+6)
		pdf.Line(x+6, y-6, x-6, y+6)
		pdf.SetLineWidth(prev)
	case models.StatusCorrected:
		pdf.Circle(x, y, 6, "D")
		pdf.Line(x-4, y-4, x+4, y+4)
		pdf.Line(x+4, y-4, x-4, y+4)
	case models.StatusNA:
		pdf.SetFont("Helvetica", "", 10)
		pdf.Text(x-10, y+3, "N/A")
	}
}

// defectCode classifies a summary defect. Filled codes render as a black
// square, outlined ones as a bordered white square, each with the short code
// printed beside it.
type defectCode struct {
	Value  string
	Code   string
	Label  string
	Filled bool
}

var defectCodes = []defectCode{
	{Value: "functional_safety", Code: "XX", Filled: true,
		Label: "FUNCTIONAL DEFECT/DEFECT RELATED TO SAFETY/DEFECT NOT SATISFYING THE DRAWING/DEFECT RELATED TO REGULATIONS"},
	{Value: "functional_other", Code: "X", Filled: true,
		Label: "FUNCTIONAL DEFECT DOES NOT MENTIONED ABOVE"},
	{Value: "sensory_major", Code: "XX", Filled: false,
		Label: "SENSORY/APPEARANCE DEFECT EVALUATION - MAJOR"},
	{Value: "sensory_minor", Code: "X", Filled: false,
		Label: "SENSORY/APPEARANCE DEFECT EVALUATION - MINOR"},
}

// lookupDefectCode resolves stored input against the catalog: first by value,
// then by short code. Historical rows stored the short code instead of the
// value, so both spellings must keep rendering.
func lookupDefectCode(input string) (defectCode, bool) {
	for _, option := range defectCodes {
		if option.Value == input {
			return option, true
		}
	}
	for _, option := range defectCodes {
		if option.Code == input {
			return option, true
		}
	}
	return defectCode{}, false
}

// drawDefectSymbol draws the square glyph for a defect code at (x, y), with
// the short code beside it. Unrecognized input draws nothing.
func (d *document) drawDefectSymbol(input string, x, y float64) {
	option, ok := lookupDefectCode(input)
	if !ok {
		return
	}
	pdf := d.pdf
	if option.Filled {
		pdf.SetFillColor(0, 0, 0)
		pdf.Rect(x, y-6, 12, 12, "FD")
	} else {
		pdf.Rect(x, y-6, 12, 12, "D")
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 8)
	pdf.Text(x+15, y+2, option.Code)
}

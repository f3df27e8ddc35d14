package report

import "github.com/hmpc-qa/inspection-api/internal/models"

// drawTechnicalPage paints the six measurement sub-tables on their own page,
// all built on the spanning-header table primitive.
func (d *document) drawTechnicalPage() {
	pdf := d.pdf
	pdf.AddPage()
	d.drawHeader()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 16, "Technical Checklist", "", 1, "C", false, 0, "")
	pdf.Ln(10)

	tech := d.job.TechnicalTests

	d.technicalSection("I. Break Testing (Breaking Force daN)")
	y := d.drawTable(
		[][]Cell{{{Text: "Maximum Breaking Force", Span: 4}}},
		brakingRows(tech.BreakingForce.Max),
		[]float64{100, 100, 100, 100}, pdf.GetY(), 10)
	pdf.SetY(y + 10)
	y = d.drawTable(
		[][]Cell{{{Text: "Minimum Breaking Force", Span: 4}}},
		brakingRows(tech.BreakingForce.Min),
		[]float64{100, 100, 100, 100}, pdf.GetY(), 10)
	pdf.SetY(y + 10)

	d.technicalSection("II. Speed Testing")
	y = d.drawTable(
		[][]Cell{{{Text: "Speedometer Reading"}, {Text: "Speed Tester Reading"}}},
		[][]Cell{{
			{Text: tech.SpeedTesting.Speedometer, Align: "C"},
			{Text: tech.SpeedTesting.Tester, Align: "C"},
		}},
		[]float64{200, 200}, pdf.GetY(), 10)
	pdf.SetY(y + 10)

	d.technicalSection("III. Turning Radius")
	y = d.drawTable(
		[][]Cell{{{Text: ""}, {Text: "Inner Tire"}, {Text: "Outer Tire"}}},
		[][]Cell{
			{
				{Text: "Left Hand", Align: "C"},
				{Text: tech.TurningRadius.Inner.Left, Align: "C"},
				{Text: tech.TurningRadius.Outer.Left, Align: "C"},
			},
			{
				{Text: "Right Hand", Align: "C"},
				{Text: tech.TurningRadius.Inner.Right, Align: "C"},
				{Text: tech.TurningRadius.Outer.Right, Align: "C"},
			},
		},
		[]float64{100, 150, 150}, pdf.GetY(), 10)
	pdf.SetY(y + 10)

	d.technicalSection("IV. Slip Tester")
	slipRows := make([][]Cell, 0, len(tech.SlipTester))
	for _, slip := range tech.SlipTester {
		slipRows = append(slipRows, []Cell{
			{Text: slip.Speed, Align: "C"},
			{Text: slip.Value, Align: "C"},
		})
	}
	y = d.drawTable(
		[][]Cell{{{Text: "Speed"}, {Text: "Value"}}},
		slipRows,
		[]float64{200, 200}, pdf.GetY(), 10)
	pdf.SetY(y + 10)

	d.technicalSection("V. Headlight Tester")
	// Smaller header font keeps the two-level spanning header compact.
	y = d.drawTable(
		[][]Cell{
			{{Text: ""}, {Text: "Low Beam", Span: 2}, {Text: "High Beam", Span: 2}},
			{{Text: ""}, {Text: "Before Adjustment"}, {Text: "After Adjustment"}, {Text: "Before Adjustment"}, {Text: "After Adjustment"}},
		},
		[][]Cell{
			{
				{Text: "Left Hand", Align: "C"},
				{Text: orNA(tech.HeadlightTester.LowBeam.Before.Left), Align: "C"},
				{Text: orNA(tech.HeadlightTester.LowBeam.After.Left), Align: "C"},
				{Text: orNA(tech.HeadlightTester.HighBeam.Before.Left), Align: "C"},
				{Text: orNA(tech.HeadlightTester.HighBeam.After.Left), Align: "C"},
			},
			{
				{Text: "Right Hand", Align: "C"},
				{Text: orNA(tech.HeadlightTester.LowBeam.Before.Right), Align: "C"},
				{Text: orNA(tech.HeadlightTester.LowBeam.After.Right), Align: "C"},
				{Text: orNA(tech.HeadlightTester.HighBeam.Before.Right), Align: "C"},
				{Text: orNA(tech.HeadlightTester.HighBeam.After.Right), Align: "C"},
			},
		},
		[]float64{80, 80, 80, 80, 80}, pdf.GetY(), 8)
	pdf.SetY(y + 10)

	d.technicalSection("VI. ABS Testing (if equipped)")
	absRows := make([][]Cell, 0, len(tech.ABSTesting))
	for _, abs := range tech.ABSTesting {
		absRows = append(absRows, []Cell{
			{Text: orNA(abs.Option)},
			{Text: orNA(abs.Remarks)},
		})
	}
	y = d.drawTable(
		[][]Cell{{{Text: "Option"}, {Text: "Remarks"}}},
		absRows,
		[]float64{200, 200}, pdf.GetY(), 10)
	pdf.SetY(y + 10)
}

func (d *document) technicalSection(title string) {
	pdf := d.pdf
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(pageLeft, pdf.GetY()+12, title)
	pdf.SetY(pdf.GetY() + 20)
}

func brakingRows(extremes models.BrakingExtremes) [][]Cell {
	return [][]Cell{
		{
			{Text: "Front (Left Hand)", Align: "C"},
			{Text: "Front (Right Hand)", Align: "C"},
			{Text: "Sum", Align: "C"},
			{Text: "Front Difference", Align: "C"},
		},
		{
			{Text: extremes.Front.Left, Align: "C"},
			{Text: extremes.Front.Right, Align: "C"},
			{Text: extremes.Front.Sum, Align: "C"},
			{Text: extremes.Front.Difference, Align: "C"},
		},
		{
			{Text: "Rear (Left Hand)", Align: "C"},
			{Text: "Rear (Right Hand)", Align: "C"},
			{Text: "Sum", Align: "C"},
			{Text: "Rear Difference", Align: "C"},
		},
		{
			{Text: extremes.Rear.Left, Align: "C"},
			{Text: extremes.Rear.Right, Align: "C"},
			{Text: extremes.Rear.Sum, Align: "C"},
			{Text: extremes.Rear.Difference, Align: "C"},
		},
	}
}

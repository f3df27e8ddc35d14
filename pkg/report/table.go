package report

// Cell is one table cell. Span only applies to header rows; a zero span
// counts as one column.
type Cell struct {
	Text  string
	Align string
	Span  int
}

func (c Cell) span() int {
	if c.Span <= 0 {
		return 1
	}
	return c.Span
}

func (c Cell) align() string {
	if c.Align == "" {
		return "L"
	}
	return c.Align
}

// textHeight measures wrapped text the way the tables size their rows: line
// count at the given width plus vertical padding.
func (d *document) textHeight(text string, width, fontSize float64) float64 {
	d.pdf.SetFont("Helvetica", "", fontSize)
	lines := d.pdf.SplitText(text, width)
	n := len(lines)
	if n == 0 {
		n = 1
	}
	return float64(n)*fontSize*1.2 + 10
}

// drawTable renders a bordered table with spanning header rows and
// variable-height body rows, returning the y position below the last row.
// Columns covered by a header span carry no internal vertical lines in the
// body either. Body rows past the break line start a fresh page with the
// document header re-drawn.
func (d *document) drawTable(headers, rows [][]Cell, colWidths []float64, startY, headerFontSize float64) float64 {
	pdf := d.pdf
	colX := make([]float64, len(colWidths)+1)
	colX[0] = pageLeft
	for i, w := range colWidths {
		colX[i+1] = colX[i] + w
	}
	currentY := startY
	spanned := map[int]bool{}

	for _, headerRow := range headers {
		headerHeight := 15.0
		start := 0
		for _, cell := range headerRow {
			end := start + cell.span() - 1
			spanWidth := colX[end+1] - colX[start]
			if h := d.textHeight(cell.Text, spanWidth-10, headerFontSize); h > headerHeight {
				headerHeight = h
			}
			start = end + 1
		}

		start = 0
		for _, cell := range headerRow {
			end := start + cell.span() - 1
			spanWidth := colX[end+1] - colX[start]
			pdf.SetFont("Helvetica", "B", headerFontSize)
			pdf.SetXY(colX[start]+5, currentY+5)
			pdf.MultiCell(spanWidth-10, headerFontSize*1.2, cell.Text, "", "C", false)
			pdf.Rect(colX[start], currentY, spanWidth, headerHeight, "D")
			for j := 1; j < cell.span(); j++ {
				spanned[start+j] = true
			}
			start = end + 1
		}
		currentY += headerHeight
	}

	for _, row := range rows {
		rowHeight := 20.0
		cellHeights := make([]float64, len(row))
		for i, cell := range row {
			cellHeights[i] = d.textHeight(cell.Text, colWidths[i]-10, 10)
			if cellHeights[i] > rowHeight {
				rowHeight = cellHeights[i]
			}
		}

		if currentY+rowHeight > pageBreakY {
			pdf.AddPage()
			d.drawHeader()
			currentY = pdf.GetY()
		}

		pdf.SetFont("Helvetica", "", 10)
		for i, cell := range row {
			textY := currentY + (rowHeight-cellHeights[i])/2 + 5
			pdf.SetXY(colX[i]+5, textY)
			pdf.MultiCell(colWidths[i]-10, 12, cell.Text, "", cell.align(), false)
		}

		pdf.Line(pageLeft, currentY, colX[len(colX)-1], currentY)
		pdf.Line(pageLeft, currentY+rowHeight, colX[len(colX)-1], currentY+rowHeight)
		for idx, x := range colX {
			if !spanned[idx] {
				pdf.Line(x, currentY, x, currentY+rowHeight)
			}
		}
		currentY += rowHeight
	}

	return currentY
}

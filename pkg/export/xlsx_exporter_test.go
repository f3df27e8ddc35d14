package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestXLSXExporterRender(t *testing.T) {
	exporter := NewXLSXExporter()
	data := Dataset{
		Headers: []string{"No.", "Defect Encountered", "Status"},
		Rows: []map[string]string{
			{"No.": "1", "Defect Encountered": "Brake hose chafing", "Status": "noGood"},
			{"No.": "2", "Defect Encountered": "Loose trim", "Status": "corrected"},
		},
	}

	raw, err := exporter.Render(data, "Defect Summary")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Defect Summary"}, f.GetSheetList())

	header, err := f.GetCellValue("Defect Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Defect Encountered", header)

	value, err := f.GetCellValue("Defect Summary", "C3")
	require.NoError(t, err)
	assert.Equal(t, "corrected", value)
}

func TestXLSXExporterRenderDefaults(t *testing.T) {
	exporter := NewXLSXExporter()

	raw, err := exporter.Render(Dataset{Headers: []string{"Only"}}, "")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Sheet1"}, f.GetSheetList())
}

func TestXLSXExporterRequiresHeaders(t *testing.T) {
	exporter := NewXLSXExporter()
	_, err := exporter.Render(Dataset{}, "Defect Summary")
	require.Error(t, err)
}

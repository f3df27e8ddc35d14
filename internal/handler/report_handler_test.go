package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmpc-qa/inspection-api/internal/dto"
	"github.com/hmpc-qa/inspection-api/internal/service"
	appErrors "github.com/hmpc-qa/inspection-api/pkg/errors"
)

type reportServiceMock struct {
	doc         *service.ReportDocument
	generateErr error
	sections    []dto.SectionPreview
	previewErr  error
}

func (m *reportServiceMock) Generate(ctx context.Context, jobID string) (*service.ReportDocument, error) {
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return m.doc, nil
}

func (m *reportServiceMock) Preview(ctx context.Context, jobID string) ([]dto.SectionPreview, error) {
	if m.previewErr != nil {
		return nil, m.previewErr
	}
	return m.sections, nil
}

type exportServiceMock struct {
	data     []byte
	filename string
	err      error
}

func (m *exportServiceMock) DefectSummaryXLSX(ctx context.Context, jobID string) ([]byte, string, error) {
	if m.err != nil {
		return nil, "", m.err
	}
	return m.data, m.filename, nil
}

func reportTestContext(t *testing.T, method, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, nil)
	require.NoError(t, err)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}
	return c, w
}

func TestReportHandlerDownloadNotFound(t *testing.T) {
	handler := NewReportHandler(&reportServiceMock{generateErr: appErrors.ErrNotFound}, &exportServiceMock{}, nil, nil)
	c, w := reportTestContext(t, http.MethodGet, "/jobs/job-1/report")

	handler.Download(c)
	require.Equal(t, http.StatusNotFound, w.Code)

	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrNotFound.Code, envelope.Error.Code)
}

func TestReportHandlerPreview(t *testing.T) {
	sections := []dto.SectionPreview{
		{ID: "sec-1", Section: "Exterior", Order: 1, Numeral: "I", Rows: []dto.RowPreview{
			{Number: "1", Text: "Paint finish", Status: "good"},
		}},
	}
	handler := NewReportHandler(&reportServiceMock{sections: sections}, &exportServiceMock{}, nil, nil)
	c, w := reportTestContext(t, http.MethodGet, "/jobs/job-1/report/preview")

	handler.Preview(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []dto.SectionPreview `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "I", envelope.Data[0].Numeral)
	assert.Equal(t, "Paint finish", envelope.Data[0].Rows[0].Text)
}

func TestReportHandlerDefectSummaryExport(t *testing.T) {
	handler := NewReportHandler(&reportServiceMock{}, &exportServiceMock{data: []byte("xlsx"), filename: "defect-summary-job-1.xlsx"}, nil, nil)
	c, w := reportTestContext(t, http.MethodGet, "/jobs/job-1/defect-summary/export")

	handler.DefectSummaryExport(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "defect-summary-job-1.xlsx")
	assert.Equal(t, "xlsx", w.Body.String())
}

func TestReportHandlerDefectSummaryExportInvalidID(t *testing.T) {
	handler := NewReportHandler(&reportServiceMock{}, &exportServiceMock{err: appErrors.ErrValidation}, nil, nil)
	c, w := reportTestContext(t, http.MethodGet, "/jobs/nope/defect-summary/export")

	handler.DefectSummaryExport(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

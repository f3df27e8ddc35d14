package handler

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hmpc-qa/inspection-api/internal/dto"
	"github.com/hmpc-qa/inspection-api/internal/service"
	"github.com/hmpc-qa/inspection-api/pkg/response"
)

type reportService interface {
	Generate(ctx context.Context, jobID string) (*service.ReportDocument, error)
	Preview(ctx context.Context, jobID string) ([]dto.SectionPreview, error)
}

type exportService interface {
	DefectSummaryXLSX(ctx context.Context, jobID string) ([]byte, string, error)
}

// ReportHandler streams rendered inspection reports and exports.
type ReportHandler struct {
	reports reportService
	exports exportService
	metrics *service.MetricsService
	logger  *zap.Logger
}

// NewReportHandler builds a new handler.
func NewReportHandler(reports reportService, exports exportService, metrics *service.MetricsService, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{reports: reports, exports: exports, metrics: metrics, logger: logger}
}

var filenameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Download godoc
// @Summary Download the inspection report PDF
// @Tags Reports
// @Produce application/pdf
// @Param id path string true "Job id"
// @Success 200 {file} binary
// @Router /jobs/{id}/report [get]
func (h *ReportHandler) Download(c *gin.Context) {
	doc, err := h.reports.Generate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.filename(doc)))

	start := time.Now()
	if err := doc.Render(c.Writer); err != nil {
		// Headers are already out; all we can do is log and drop the stream.
		h.logger.Error("report rendering failed mid-stream", zap.Error(err), zap.String("job_id", doc.Job.ID))
		c.Abort()
		return
	}
	h.metrics.ObserveReportRender(time.Since(start))
}

// Preview godoc
// @Summary Preview the checklist as the report renders it
// @Tags Reports
// @Produce json
// @Param id path string true "Job id"
// @Success 200 {object} response.Envelope
// @Router /jobs/{id}/report/preview [get]
func (h *ReportHandler) Preview(c *gin.Context) {
	sections, err := h.reports.Preview(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, nil)
}

// DefectSummaryExport godoc
// @Summary Download the defect summary workbook
// @Tags Reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Job id"
// @Success 200 {file} binary
// @Router /jobs/{id}/defect-summary/export [get]
func (h *ReportHandler) DefectSummaryExport(c *gin.Context) {
	data, filename, err := h.exports.DefectSummaryXLSX(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// filename derives the download name from the category, the customer and the
// inspection date.
func (h *ReportHandler) filename(doc *service.ReportDocument) string {
	parts := []string{"inspection-report"}
	if doc.Category != nil && doc.Category.Name != "" {
		parts = append(parts, doc.Category.Name)
	}
	if customer := doc.Job.JobInfo.Customer; customer != "" {
		parts = append(parts, customer)
	}
	if date := doc.Job.JobInfo.Date; date != nil {
		parts = append(parts, date.Format("2006-01-02"))
	}
	name := filenameUnsafe.ReplaceAllString(strings.Join(parts, "-"), "-")
	return name + ".pdf"
}

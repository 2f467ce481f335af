package handler

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/inventario/internal/application/service"
	"github.com/sangkips/inventario/internal/presentation/http/dto/request"
	"github.com/sangkips/inventario/internal/presentation/http/dto/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves sales reports
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Summary returns totals for the requested period
func (h *ReportHandler) Summary(c *gin.Context) {
	r, ok := h.bindRange(c)
	if !ok {
		return
	}
	summary := h.reports.Summary(c.Request.Context(), r)
	response.OK(c, "Sales summary retrieved successfully", response.NewSummaryResponse(summary))
}

// TopProducts returns the best sellers
func (h *ReportHandler) TopProducts(c *gin.Context) {
	var filter request.ReportFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	r, err := parseDateRange(filter.StartDate, filter.EndDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 10
	}
	rows := h.reports.TopProducts(c.Request.Context(), r, limit)
	response.OK(c, "Top products retrieved successfully", response.NewTopProductsResponse(rows))
}

// ExportSales downloads the sales as a spreadsheet
func (h *ReportHandler) ExportSales(c *gin.Context) {
	r, ok := h.bindRange(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.reports.ExportSales(c.Request.Context(), &buf, r); err != nil {
		response.Error(c, err)
		return
	}

	name := fmt.Sprintf("sales_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(200, xlsxContentType, buf.Bytes())
}

func (h *ReportHandler) bindRange(c *gin.Context) (service.DateRange, bool) {
	var filter request.ReportFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return service.DateRange{}, false
	}
	r, err := parseDateRange(filter.StartDate, filter.EndDate)
	if err != nil {
		response.Error(c, err)
		return service.DateRange{}, false
	}
	return r, true
}

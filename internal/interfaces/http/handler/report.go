package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/storefront/backend/internal/application/report"
)

// ReportHandler handles admin sales analytics requests
type ReportHandler struct {
	BaseHandler
	reportService *report.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *report.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// SalesReport godoc
// @Summary      Sales report
// @Description  Revenue summary, daily trend and top products for a period
// @Tags         admin
// @Produce      json
// @Param        start_date query string true "Period start (YYYY-MM-DD)"
// @Param        end_date query string true "Period end (YYYY-MM-DD, inclusive)"
// @Param        product_id query string false "Restrict to one product"
// @Param        category_id query string false "Restrict to one category"
// @Param        limit query int false "Top products limit (default 10)"
// @Success      200 {object} dto.Response{data=report.SalesReportResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/reports/sales [get]
func (h *ReportHandler) SalesReport(c *gin.Context) {
	var req report.SalesReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.reportService.SalesReport(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Summary godoc
// @Summary      Sales summary
// @Description  Aggregated totals only, without trend or rankings
// @Tags         admin
// @Produce      json
// @Param        start_date query string true "Period start (YYYY-MM-DD)"
// @Param        end_date query string true "Period end (YYYY-MM-DD, inclusive)"
// @Success      200 {object} dto.Response{data=report.SalesSummary}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/reports/sales/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	var req report.SalesReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.reportService.Summary(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

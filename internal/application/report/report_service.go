package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/report"
	"github.com/storefront/backend/internal/domain/shared"
)

// DefaultTopProductsLimit caps the best-sellers list when the client
// does not ask for a specific size
const DefaultTopProductsLimit = 10

// MaxTopProductsLimit is the hard ceiling for the best-sellers list
const MaxTopProductsLimit = 100

// SalesReportRequest contains query parameters for sales reports.
// Dates are inclusive calendar days.
type SalesReportRequest struct {
	StartDate  string     `form:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate    string     `form:"end_date" binding:"required,datetime=2006-01-02"`
	ProductID  *uuid.UUID `form:"product_id"`
	CategoryID *uuid.UUID `form:"category_id"`
	Limit      int        `form:"limit" binding:"omitempty,min=1,max=100"`
}

// SalesReportResponse is the full admin sales report
type SalesReportResponse struct {
	Summary     *report.SalesSummary     `json:"summary"`
	DailyTrend  []report.DailySalesPoint `json:"daily_trend"`
	TopProducts []report.ProductSales    `json:"top_products"`
}

// ReportService serves the admin sales analytics read model
type ReportService struct {
	salesRepo report.SalesReportRepository
}

// NewReportService creates a new report service
func NewReportService(salesRepo report.SalesReportRepository) *ReportService {
	return &ReportService{salesRepo: salesRepo}
}

// SalesReport builds the full sales report for a period
func (s *ReportService) SalesReport(ctx context.Context, req SalesReportRequest) (*SalesReportResponse, error) {
	filter, err := s.toFilter(req)
	if err != nil {
		return nil, err
	}

	summary, err := s.salesRepo.GetSalesSummary(ctx, filter)
	if err != nil {
		return nil, err
	}

	trend, err := s.salesRepo.GetDailySalesTrend(ctx, filter)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultTopProductsLimit
	}
	if limit > MaxTopProductsLimit {
		limit = MaxTopProductsLimit
	}

	topProducts, err := s.salesRepo.GetTopProducts(ctx, filter, limit)
	if err != nil {
		return nil, err
	}

	return &SalesReportResponse{
		Summary:     summary,
		DailyTrend:  trend,
		TopProducts: topProducts,
	}, nil
}

// Summary returns only the aggregated figures for a period
func (s *ReportService) Summary(ctx context.Context, req SalesReportRequest) (*report.SalesSummary, error) {
	filter, err := s.toFilter(req)
	if err != nil {
		return nil, err
	}
	return s.salesRepo.GetSalesSummary(ctx, filter)
}

func (s *ReportService) toFilter(req SalesReportRequest) (report.SalesReportFilter, error) {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return report.SalesReportFilter{}, shared.NewDomainError("INVALID_PERIOD", "Start date must be YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return report.SalesReportFilter{}, shared.NewDomainError("INVALID_PERIOD", "End date must be YYYY-MM-DD")
	}

	filter := report.SalesReportFilter{
		StartDate:  start,
		EndDate:    end.Add(24*time.Hour - time.Nanosecond),
		ProductID:  req.ProductID,
		CategoryID: req.CategoryID,
	}

	if err := filter.Validate(); err != nil {
		return report.SalesReportFilter{}, err
	}

	return filter, nil
}

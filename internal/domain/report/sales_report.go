package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// SalesReportFilter contains filter options for sales reporting.
// Only paid orders are counted.
type SalesReportFilter struct {
	StartDate time.Time
	EndDate   time.Time

	// Optional narrowing
	ProductID  *uuid.UUID
	CategoryID *uuid.UUID
}

// Validate checks the filter for consistency
func (f SalesReportFilter) Validate() error {
	if f.StartDate.IsZero() || f.EndDate.IsZero() {
		return shared.NewDomainError("INVALID_PERIOD", "Report period start and end are required")
	}
	if f.EndDate.Before(f.StartDate) {
		return shared.NewDomainError("INVALID_PERIOD", "Report period end must not precede start")
	}
	return nil
}

// SalesSummary is an aggregated view of paid orders over a period
type SalesSummary struct {
	PeriodStart   time.Time       `json:"period_start"`
	PeriodEnd     time.Time       `json:"period_end"`
	TotalOrders   int64           `json:"total_orders"`
	TotalItems    int64           `json:"total_items"`
	GrossRevenue  decimal.Decimal `json:"gross_revenue"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
}

// DailySalesPoint is one day of the sales trend
type DailySalesPoint struct {
	Date       time.Time       `json:"date"`
	OrderCount int64           `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
	ItemsSold  int64           `json:"items_sold"`
}

// ProductSales is aggregated sales for a single product
type ProductSales struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	QuantitySold int64           `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// SalesReportRepository defines read-model queries over paid orders
type SalesReportRepository interface {
	// GetSalesSummary returns aggregated sales figures for the period
	GetSalesSummary(ctx context.Context, filter SalesReportFilter) (*SalesSummary, error)

	// GetDailySalesTrend returns per-day sales figures for the period
	GetDailySalesTrend(ctx context.Context, filter SalesReportFilter) ([]DailySalesPoint, error)

	// GetTopProducts returns the best-selling products for the period
	GetTopProducts(ctx context.Context, filter SalesReportFilter, limit int) ([]ProductSales, error)
}

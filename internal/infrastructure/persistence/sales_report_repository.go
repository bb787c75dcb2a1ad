package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/report"
	"gorm.io/gorm"
)

// GormSalesReportRepository implements SalesReportRepository using GORM
type GormSalesReportRepository struct {
	db *gorm.DB
}

// NewGormSalesReportRepository creates a new GormSalesReportRepository
func NewGormSalesReportRepository(db *gorm.DB) *GormSalesReportRepository {
	return &GormSalesReportRepository{db: db}
}

// paidOrders scopes a query to paid orders within the report period
func (r *GormSalesReportRepository) paidOrders(ctx context.Context, filter report.SalesReportFilter) *gorm.DB {
	return r.db.WithContext(ctx).Table("orders o").
		Where("o.is_paid = ?", true).
		Where("o.paid_at BETWEEN ? AND ?", filter.StartDate, filter.EndDate)
}

// GetSalesSummary returns aggregated sales figures for the period
func (r *GormSalesReportRepository) GetSalesSummary(ctx context.Context, filter report.SalesReportFilter) (*report.SalesSummary, error) {
	// Summing order grand totals through the item join would multiply
	// revenue by the item row count, so orders and items are scanned
	// separately.
	var orderAgg struct {
		TotalOrders  int64
		GrossRevenue decimal.Decimal
	}
	if err := r.paidOrders(ctx, filter).
		Select(`
			COUNT(o.id) as total_orders,
			COALESCE(SUM(o.grand_total), 0) as gross_revenue
		`).
		Scan(&orderAgg).Error; err != nil {
		return nil, err
	}

	itemQuery := r.db.WithContext(ctx).Table("order_items oi").
		Select("COALESCE(SUM(oi.quantity), 0) as total_items").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.is_paid = ?", true).
		Where("o.paid_at BETWEEN ? AND ?", filter.StartDate, filter.EndDate)

	if filter.ProductID != nil {
		itemQuery = itemQuery.Where("oi.product_id = ?", *filter.ProductID)
	}
	if filter.CategoryID != nil {
		itemQuery = itemQuery.Joins("JOIN products p ON p.id = oi.product_id").
			Where("p.category_id = ?", *filter.CategoryID)
	}

	var itemAgg struct {
		TotalItems int64
	}
	if err := itemQuery.Scan(&itemAgg).Error; err != nil {
		return nil, err
	}

	var avgOrderValue decimal.Decimal
	if orderAgg.TotalOrders > 0 {
		avgOrderValue = orderAgg.GrossRevenue.Div(decimal.NewFromInt(orderAgg.TotalOrders)).Round(2)
	}

	return &report.SalesSummary{
		PeriodStart:   filter.StartDate,
		PeriodEnd:     filter.EndDate,
		TotalOrders:   orderAgg.TotalOrders,
		TotalItems:    itemAgg.TotalItems,
		GrossRevenue:  orderAgg.GrossRevenue,
		AvgOrderValue: avgOrderValue,
	}, nil
}

// GetDailySalesTrend returns per-day sales figures for the period
func (r *GormSalesReportRepository) GetDailySalesTrend(ctx context.Context, filter report.SalesReportFilter) ([]report.DailySalesPoint, error) {
	type dailyResult struct {
		Date       time.Time
		OrderCount int64
		Revenue    decimal.Decimal
		ItemsSold  int64
	}

	var results []dailyResult

	err := r.paidOrders(ctx, filter).
		Select(`
			DATE(o.paid_at) as date,
			COUNT(o.id) as order_count,
			COALESCE(SUM(o.grand_total), 0) as revenue,
			COALESCE(SUM((SELECT SUM(oi.quantity) FROM order_items oi WHERE oi.order_id = o.id)), 0) as items_sold
		`).
		Group("DATE(o.paid_at)").
		Order("date ASC").
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	trend := make([]report.DailySalesPoint, len(results))
	for i, row := range results {
		trend[i] = report.DailySalesPoint{
			Date:       row.Date,
			OrderCount: row.OrderCount,
			Revenue:    row.Revenue,
			ItemsSold:  row.ItemsSold,
		}
	}

	return trend, nil
}

// GetTopProducts returns the best-selling products for the period
func (r *GormSalesReportRepository) GetTopProducts(ctx context.Context, filter report.SalesReportFilter, limit int) ([]report.ProductSales, error) {
	if limit <= 0 {
		limit = 10
	}

	type productResult struct {
		ProductID    uuid.UUID
		ProductName  string
		QuantitySold int64
		Revenue      decimal.Decimal
	}

	var results []productResult

	query := r.db.WithContext(ctx).Table("order_items oi").
		Select(`
			oi.product_id,
			oi.name as product_name,
			COALESCE(SUM(oi.quantity), 0) as quantity_sold,
			COALESCE(SUM(oi.unit_price * oi.quantity), 0) as revenue
		`).
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.is_paid = ?", true).
		Where("o.paid_at BETWEEN ? AND ?", filter.StartDate, filter.EndDate)

	if filter.CategoryID != nil {
		query = query.Joins("JOIN products p ON p.id = oi.product_id").
			Where("p.category_id = ?", *filter.CategoryID)
	}

	err := query.
		Group("oi.product_id, oi.name").
		Order("quantity_sold DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	products := make([]report.ProductSales, len(results))
	for i, row := range results {
		products[i] = report.ProductSales{
			ProductID:    row.ProductID,
			ProductName:  row.ProductName,
			QuantitySold: row.QuantitySold,
			Revenue:      row.Revenue,
		}
	}

	return products, nil
}

// Ensure GormSalesReportRepository implements SalesReportRepository
var _ report.SalesReportRepository = (*GormSalesReportRepository)(nil)

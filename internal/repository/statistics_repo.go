package repository

import (
	"context"
	"fmt"
	"time"

	"vendorledger/internal/model"

	"gorm.io/gorm"
)

// TopProductRow is a raw product ranking; TotalValue is a decimal string.
type TopProductRow struct {
	ProductID     uint
	ProductName   string
	TotalQuantity int64
	TotalValue    string
}

type StatisticsRepository interface {
	CountActiveCustomers(ctx context.Context, vendorID uint) (int64, error)
	CountActiveProducts(ctx context.Context, vendorID uint) (int64, error)
	SalesTotal(ctx context.Context, vendorID uint, start, end time.Time) (string, error)
	TopProduct(ctx context.Context, vendorID uint, start, end time.Time) (*TopProductRow, error)
	OutstandingTotal(ctx context.Context, vendorID uint) (string, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) CountActiveCustomers(ctx context.Context, vendorID uint) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Customer{}).
		Where("vendor_id = ? AND status = ?", vendorID, model.StatusActive).
		Count(&count).Error
	return count, err
}

func (r *statisticsRepository) CountActiveProducts(ctx context.Context, vendorID uint) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Product{}).
		Where("vendor_id = ? AND status = ?", vendorID, model.StatusActive).
		Count(&count).Error
	return count, err
}

func (r *statisticsRepository) SalesTotal(ctx context.Context, vendorID uint, start, end time.Time) (string, error) {
	var result struct {
		Value string
	}
	err := GetDB(ctx, r.db).Table("sales").
		Select("COALESCE(CAST(SUM(total_amount) AS TEXT), '0') AS value").
		Where("vendor_id = ? AND sale_date >= ? AND sale_date < ?", vendorID, start, end).
		Scan(&result).Error
	if err != nil {
		return "", fmt.Errorf("failed to sum sales: %w", err)
	}
	return result.Value, nil
}

func (r *statisticsRepository) TopProduct(ctx context.Context, vendorID uint, start, end time.Time) (*TopProductRow, error) {
	var rows []TopProductRow
	err := GetDB(ctx, r.db).Table("sales").
		Select("products.id AS product_id, products.name AS product_name, SUM(sales.quantity) AS total_quantity, CAST(SUM(sales.total_amount) AS TEXT) AS total_value").
		Joins("JOIN products ON products.id = sales.product_id").
		Where("sales.vendor_id = ? AND sales.sale_date >= ? AND sales.sale_date < ?", vendorID, start, end).
		Group("products.id, products.name").
		Order("total_quantity DESC, products.id ASC").
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query top product: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *statisticsRepository) OutstandingTotal(ctx context.Context, vendorID uint) (string, error) {
	var result struct {
		Value string
	}
	err := GetDB(ctx, r.db).Table("invoice_details").
		Select("COALESCE(CAST(SUM(invoice_details.amount - invoice_details.paid_amount) AS TEXT), '0') AS value").
		Joins("JOIN invoices ON invoices.id = invoice_details.invoice_id").
		Where("invoices.vendor_id = ?", vendorID).
		Scan(&result).Error
	if err != nil {
		return "", fmt.Errorf("failed to sum outstanding: %w", err)
	}
	return result.Value, nil
}

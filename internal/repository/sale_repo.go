package repository

import (
	"context"
	"fmt"
	"time"

	"vendorledger/internal/model"

	"gorm.io/gorm"
)

// SaleReportRow is one line of the customer monthly sales report
type SaleReportRow struct {
	SaleID       uint      `json:"sale_id"`
	SaleDate     time.Time `json:"sale_date"`
	CustomerName string    `json:"customer_name"`
	ProductID    uint      `json:"product_id"`
	ProductName  string    `json:"product_name"`
	Quantity     int       `json:"quantity"`
	PricePerUnit string    `json:"price_per_unit"`
	TotalAmount  string    `json:"total_amount"`
	Invoiced     bool      `json:"invoiced"`
}

type SaleRepository interface {
	Create(ctx context.Context, sale *model.Sale) error
	Update(ctx context.Context, sale *model.Sale) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Sale, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Sale, error)
	// LockCustomerSalesInPeriod returns the customer's sales with start <= sale_date < end,
	// ordered by id and locked for the rest of the transaction.
	LockCustomerSalesInPeriod(ctx context.Context, customerID uint, start, end time.Time) ([]model.Sale, error)
	// BilledSaleIDs returns which of ids are already referenced by an invoice detail.
	BilledSaleIDs(ctx context.Context, ids []uint) (map[uint]bool, error)
	MarkInvoiced(ctx context.Context, ids []uint) error
	MonthlyReport(ctx context.Context, customerID uint, start, end time.Time) ([]SaleReportRow, error)
}

type saleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(ctx context.Context, sale *model.Sale) error {
	return GetDB(ctx, r.db).Create(sale).Error
}

func (r *saleRepository) Update(ctx context.Context, sale *model.Sale) error {
	return GetDB(ctx, r.db).Save(sale).Error
}

func (r *saleRepository) Delete(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Delete(&model.Sale{}, id).Error
}

func (r *saleRepository) FindByID(ctx context.Context, id uint) (*model.Sale, error) {
	var sale model.Sale
	if err := GetDB(ctx, r.db).First(&sale, id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Sale, error) {
	var sale model.Sale
	if err := forUpdate(GetDB(ctx, r.db)).First(&sale, id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepository) LockCustomerSalesInPeriod(ctx context.Context, customerID uint, start, end time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	err := forUpdate(GetDB(ctx, r.db)).
		Where("customer_id = ? AND sale_date >= ? AND sale_date < ?", customerID, start, end).
		Order("id asc").
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *saleRepository) BilledSaleIDs(ctx context.Context, ids []uint) (map[uint]bool, error) {
	billed := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return billed, nil
	}
	var found []uint
	err := GetDB(ctx, r.db).Model(&model.InvoiceDetail{}).
		Where("sale_id IN ?", ids).
		Pluck("sale_id", &found).Error
	if err != nil {
		return nil, err
	}
	for _, id := range found {
		billed[id] = true
	}
	return billed, nil
}

func (r *saleRepository) MarkInvoiced(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Model(&model.Sale{}).
		Where("id IN ?", ids).
		Update("invoice_generated", true).Error
}

func (r *saleRepository) MonthlyReport(ctx context.Context, customerID uint, start, end time.Time) ([]SaleReportRow, error) {
	var rows []SaleReportRow
	err := GetDB(ctx, r.db).Table("sales").
		Select(`sales.id AS sale_id, sales.sale_date, customers.name AS customer_name,
			sales.product_id, products.name AS product_name, sales.quantity,
			CAST(sales.price_per_unit AS TEXT) AS price_per_unit,
			CAST(sales.total_amount AS TEXT) AS total_amount,
			EXISTS (SELECT 1 FROM invoice_details d WHERE d.sale_id = sales.id) AS invoiced`).
		Joins("JOIN customers ON customers.id = sales.customer_id").
		Joins("JOIN products ON products.id = sales.product_id").
		Where("sales.customer_id = ? AND sales.sale_date >= ? AND sales.sale_date < ?", customerID, start, end).
		Order("sales.sale_date asc, sales.id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly sales: %w", err)
	}
	return rows, nil
}

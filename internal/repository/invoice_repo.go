package repository

import (
	"context"

	"vendorledger/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceListFilter narrows List. Zero values mean "any".
type InvoiceListFilter struct {
	VendorID   uint
	CustomerID uint
	Status     string
	Page       int
	Limit      int
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	CreateDetails(ctx context.Context, details []model.InvoiceDetail) error
	FindByID(ctx context.Context, id uint) (*model.Invoice, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Invoice, error)
	FindWithRelations(ctx context.Context, id uint) (*model.Invoice, error)
	// LockDetails returns the invoice's details ordered by ascending id, locked for update.
	LockDetails(ctx context.Context, invoiceID uint) ([]model.InvoiceDetail, error)
	UpdateDetailPaid(ctx context.Context, detailID uint, paid decimal.Decimal) error
	UpdateStatus(ctx context.Context, invoiceID uint, status string) error
	List(ctx context.Context, filter InvoiceListFilter) ([]model.Invoice, int64, error)
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
	// LockNumbering serialises invoice number allocation for prefix until the transaction ends.
	LockNumbering(ctx context.Context, prefix string) error
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Omit("Details", "Payments").Create(invoice).Error
}

func (r *invoiceRepository) CreateDetails(ctx context.Context, details []model.InvoiceDetail) error {
	if len(details) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Omit("Sale").Create(&details).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uint) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).First(&invoice, id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := forUpdate(GetDB(ctx, r.db)).First(&invoice, id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindWithRelations(ctx context.Context, id uint) (*model.Invoice, error) {
	var invoice model.Invoice
	err := GetDB(ctx, r.db).
		Preload("Details", func(db *gorm.DB) *gorm.DB { return db.Order("invoice_details.id asc") }).
		Preload("Details.Sale.Product").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("payments.id asc") }).
		First(&invoice, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) LockDetails(ctx context.Context, invoiceID uint) ([]model.InvoiceDetail, error) {
	var details []model.InvoiceDetail
	err := forUpdate(GetDB(ctx, r.db)).
		Where("invoice_id = ?", invoiceID).
		Order("id asc").
		Find(&details).Error
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (r *invoiceRepository) UpdateDetailPaid(ctx context.Context, detailID uint, paid decimal.Decimal) error {
	return GetDB(ctx, r.db).Model(&model.InvoiceDetail{}).
		Where("id = ?", detailID).
		Update("paid_amount", paid).Error
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, invoiceID uint, status string) error {
	return GetDB(ctx, r.db).Model(&model.Invoice{}).
		Where("id = ?", invoiceID).
		Update("status", status).Error
}

func (r *invoiceRepository) List(ctx context.Context, filter InvoiceListFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Invoice{})
	if filter.VendorID != 0 {
		query = query.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	query = query.Session(&gorm.Session{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Preload("Details").Order("id desc").Offset(offset).Limit(filter.Limit).Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func (r *invoiceRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Invoice{}).Where("invoice_no LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *invoiceRepository) LockNumbering(ctx context.Context, prefix string) error {
	db := GetDB(ctx, r.db)
	if !isPostgres(db) {
		return nil
	}
	return db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", prefix).Error
}

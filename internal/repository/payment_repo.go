package repository

import (
	"context"

	"vendorledger/internal/model"

	"gorm.io/gorm"
)

// PaymentRepository is append-only; payments are never updated or deleted.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	ListByInvoice(ctx context.Context, invoiceID uint) ([]model.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Create(payment).Error
}

func (r *paymentRepository) ListByInvoice(ctx context.Context, invoiceID uint) ([]model.Payment, error) {
	var payments []model.Payment
	if err := GetDB(ctx, r.db).Where("invoice_id = ?", invoiceID).Order("id asc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

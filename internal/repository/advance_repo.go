package repository

import (
	"context"
	"time"

	"vendorledger/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdvanceRepository interface {
	FindByCustomer(ctx context.Context, customerID uint) (*model.AdvancePayment, error)
	FindByCustomerForUpdate(ctx context.Context, customerID uint) (*model.AdvancePayment, error)
	Create(ctx context.Context, advance *model.AdvancePayment) error
	// Credit adds amount to the customer's balance, inserting the row if it does not exist.
	// It is a single upsert, so two first deposits for the same customer both accumulate.
	Credit(ctx context.Context, customerID uint, amount decimal.Decimal) error
	SetAmount(ctx context.Context, customerID uint, amount decimal.Decimal) error
	// Debit subtracts amount only if the balance covers it. It reports false
	// when no row was changed, either because the balance is short or there is no row.
	Debit(ctx context.Context, customerID uint, amount decimal.Decimal) (bool, error)
	AppendHistory(ctx context.Context, entry *model.AdvancePaymentHistory) error
	ListHistory(ctx context.Context, customerID uint, page, limit int) ([]model.AdvancePaymentHistory, int64, error)
}

type advanceRepository struct {
	db *gorm.DB
}

func NewAdvanceRepository(db *gorm.DB) AdvanceRepository {
	return &advanceRepository{db: db}
}

func (r *advanceRepository) FindByCustomer(ctx context.Context, customerID uint) (*model.AdvancePayment, error) {
	var adv model.AdvancePayment
	if err := GetDB(ctx, r.db).Where("customer_id = ?", customerID).First(&adv).Error; err != nil {
		return nil, err
	}
	return &adv, nil
}

func (r *advanceRepository) FindByCustomerForUpdate(ctx context.Context, customerID uint) (*model.AdvancePayment, error) {
	var adv model.AdvancePayment
	if err := forUpdate(GetDB(ctx, r.db)).Where("customer_id = ?", customerID).First(&adv).Error; err != nil {
		return nil, err
	}
	return &adv, nil
}

func (r *advanceRepository) Create(ctx context.Context, advance *model.AdvancePayment) error {
	return GetDB(ctx, r.db).Create(advance).Error
}

func (r *advanceRepository) Credit(ctx context.Context, customerID uint, amount decimal.Decimal) error {
	now := time.Now().UTC()
	adv := model.AdvancePayment{CustomerID: customerID, AdvanceAmount: amount, CreatedAt: now, UpdatedAt: now}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"advance_amount": gorm.Expr("advance_payments.advance_amount + excluded.advance_amount"),
			"updated_at":     gorm.Expr("excluded.updated_at"),
		}),
	}).Create(&adv).Error
}

func (r *advanceRepository) SetAmount(ctx context.Context, customerID uint, amount decimal.Decimal) error {
	return GetDB(ctx, r.db).Model(&model.AdvancePayment{}).
		Where("customer_id = ?", customerID).
		Update("advance_amount", amount).Error
}

func (r *advanceRepository) Debit(ctx context.Context, customerID uint, amount decimal.Decimal) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.AdvancePayment{}).
		Where("customer_id = ? AND advance_amount >= ?", customerID, amount).
		Update("advance_amount", gorm.Expr("advance_amount - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *advanceRepository) AppendHistory(ctx context.Context, entry *model.AdvancePaymentHistory) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *advanceRepository) ListHistory(ctx context.Context, customerID uint, page, limit int) ([]model.AdvancePaymentHistory, int64, error) {
	var entries []model.AdvancePaymentHistory
	var total int64

	query := GetDB(ctx, r.db).Model(&model.AdvancePaymentHistory{}).Where("customer_id = ?", customerID).Session(&gorm.Session{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("id desc").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

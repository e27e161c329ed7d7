package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment modes accepted by the payment allocator
const (
	PaymentModeCash         = "cash"
	PaymentModeUPI          = "upi"
	PaymentModeCard         = "card"
	PaymentModeBankTransfer = "bank_transfer"
	PaymentModeCheque       = "cheque"
	PaymentModeAdvance      = "advance"
)

// Payment is an append-only record of money applied to an invoice.
type Payment struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	InvoiceID       uint            `gorm:"not null;index" json:"invoice_id"`
	CustomerID      uint            `gorm:"not null;index" json:"customer_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	PaymentMode     string          `gorm:"type:varchar(20);not null" json:"payment_mode"`
	Notes           string          `gorm:"type:text" json:"notes"`
	FundedByAdvance bool            `gorm:"not null;default:false" json:"funded_by_advance"`
	PaymentDate     time.Time       `gorm:"not null" json:"payment_date"`
	CreatedBy       uint            `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Advance ledger entry kinds
const (
	AdvanceDeposit = "deposit"
	AdvanceSet     = "set"
	AdvanceDebit   = "debit"
)

// AdvancePayment is the escrow balance a customer holds with their vendor.
type AdvancePayment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CustomerID    uint            `gorm:"not null;uniqueIndex" json:"customer_id"`
	AdvanceAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"advance_amount"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// AdvancePaymentHistory is the append-only trail of every balance change.
// AdvanceAmount holds the delta for deposit/debit and the new balance for set.
type AdvancePaymentHistory struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CustomerID    uint            `gorm:"not null;index" json:"customer_id"`
	EntryType     string          `gorm:"type:varchar(10);not null" json:"entry_type"`
	AdvanceAmount decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"advance_amount"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"balance_after"`
	PaymentID     *uint           `json:"payment_id,omitempty"`
	PaymentDate   time.Time       `gorm:"not null" json:"payment_date"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice status values. Status is derived from the paid amount of its details.
const (
	InvoicePending   = "pending"
	InvoicePartial   = "partial"
	InvoiceCompleted = "completed"
)

// Invoice bills a customer for every previously unbilled sale inside a calendar month.
// TotalAmount is fixed at creation and always equals the sum of its detail amounts.
type Invoice struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	InvoiceNo   string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"invoice_no"`
	VendorID    uint            `gorm:"not null;index" json:"vendor_id"`
	CustomerID  uint            `gorm:"not null;index:idx_invoice_customer_period" json:"customer_id"`
	StartDate   time.Time       `gorm:"not null;index:idx_invoice_customer_period" json:"start_date"`
	EndDate     time.Time       `gorm:"not null" json:"end_date"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	Status      string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedBy   uint            `json:"created_by"`
	Details     []InvoiceDetail `gorm:"foreignKey:InvoiceID" json:"details,omitempty"`
	Payments    []Payment       `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// InvoiceDetail is one billed sale. A sale appears in at most one detail.
type InvoiceDetail struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	InvoiceID  uint            `gorm:"not null;index" json:"invoice_id"`
	SaleID     uint            `gorm:"not null;uniqueIndex" json:"sale_id"`
	Sale       *Sale           `gorm:"foreignKey:SaleID" json:"sale,omitempty"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	PaidAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"paid_amount"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Outstanding is the unpaid part of the detail
func (d InvoiceDetail) Outstanding() decimal.Decimal {
	return d.Amount.Sub(d.PaidAmount)
}

// StatusFor derives the invoice status from how much of total has been paid.
func StatusFor(total, paid decimal.Decimal) string {
	switch {
	case paid.IsZero():
		return InvoicePending
	case paid.GreaterThanOrEqual(total):
		return InvoiceCompleted
	default:
		return InvoicePartial
	}
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale records a product sold by a vendor (or one of its employees) to a customer.
// InvoiceGenerated mirrors whether an invoice detail references the sale.
type Sale struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	VendorID         uint            `gorm:"not null;index" json:"vendor_id"`
	CustomerID       uint            `gorm:"not null;index:idx_sale_customer_date" json:"customer_id"`
	ProductID        uint            `gorm:"not null;index" json:"product_id"`
	Product          *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	PricePerUnit     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"price_per_unit"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_amount"`
	SaleDate         time.Time       `gorm:"not null;index:idx_sale_customer_date" json:"sale_date"`
	InvoiceGenerated bool            `gorm:"not null;default:false" json:"invoice_generated"`
	CreatedBy        uint            `json:"created_by"`
	CreatedByRole    string          `gorm:"type:varchar(20)" json:"created_by_role"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// LineTotal is quantity × unit price
func LineTotal(quantity int, pricePerUnit decimal.Decimal) decimal.Decimal {
	return pricePerUnit.Mul(decimal.NewFromInt(int64(quantity)))
}

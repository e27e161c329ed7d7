package service

import (
	"vendorledger/internal/model"

	"github.com/shopspring/decimal"
)

// Allocation is the share of a payment applied to one invoice detail.
type Allocation struct {
	DetailID uint            `json:"detail_id"`
	Applied  decimal.Decimal `json:"applied"`
	PaidNow  decimal.Decimal `json:"paid_amount"`
}

// AllocateFIFO spreads amount over details in the order given (callers pass
// ascending id). Each detail is filled to its amount before the next one is
// touched. Details with nothing outstanding are skipped. The returned leftover
// is non-zero only when amount exceeds the total outstanding.
func AllocateFIFO(details []model.InvoiceDetail, amount decimal.Decimal) ([]Allocation, decimal.Decimal) {
	remaining := amount
	var out []Allocation
	for _, d := range details {
		if !remaining.IsPositive() {
			break
		}
		outstanding := d.Outstanding()
		if !outstanding.IsPositive() {
			continue
		}
		apply := decimal.Min(outstanding, remaining)
		out = append(out, Allocation{
			DetailID: d.ID,
			Applied:  apply,
			PaidNow:  d.PaidAmount.Add(apply),
		})
		remaining = remaining.Sub(apply)
	}
	return out, remaining
}

// sumDetails returns Σ amount and Σ paid_amount
func sumDetails(details []model.InvoiceDetail) (total, paid decimal.Decimal) {
	total, paid = decimal.Zero, decimal.Zero
	for _, d := range details {
		total = total.Add(d.Amount)
		paid = paid.Add(d.PaidAmount)
	}
	return total, paid
}

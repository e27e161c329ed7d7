package service

import (
	"testing"

	"vendorledger/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPayment_FebruaryLifecycle(t *testing.T) {
	h := newHarness(t)
	id := h.february(t)

	res, err := h.pay(id, "60")
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePartial, res.Status)
	assert.Equal(t, "40.00", res.RemainingDue)
	require.Len(t, res.Allocations, 1)
	assert.Equal(t, "60.00", res.Allocations[0].PaidAmount)

	res, err = h.pay(id, "40")
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceCompleted, res.Status)
	assert.Equal(t, "0.00", res.RemainingDue)

	_, err = h.pay(id, "1")
	assert.ErrorIs(t, err, ErrAlreadySettled)

	view, err := h.invoices.ViewInvoice(h.ctx, h.vendor, id, h.f.Customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.00", view.DueAmount)
	assert.Equal(t, "100.00", view.PaidAmount)
	assert.Len(t, view.Payments, 2)
	assert.Equal(t, model.InvoiceCompleted, view.Status)
}

func TestApplyPayment_SettledInvoiceRejectsAnyAmount(t *testing.T) {
	h := newHarness(t)
	id := h.february(t)
	_, err := h.pay(id, "100")
	require.NoError(t, err)

	for _, amount := range []string{"0", "-5", "1000"} {
		_, err := h.pay(id, amount)
		assert.ErrorIs(t, err, ErrAlreadySettled, amount)
	}
}

func TestApplyPayment_RejectsNonPositiveAmount(t *testing.T) {
	h := newHarness(t)
	id := h.february(t)

	for _, amount := range []string{"0", "-0.01", "-50"} {
		_, err := h.pay(id, amount)
		assert.ErrorIs(t, err, ErrInvalidAmount, amount)
	}

	_, err := h.pay(id, "ten")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, model.InvoicePending, h.invoiceStatus(t, id))
}

func TestApplyPayment_RejectsAmountsFinerThanCents(t *testing.T) {
	h := newHarness(t)
	id := h.february(t)

	for _, amount := range []string{"99.99995", "0.005", "40.001"} {
		_, err := h.pay(id, amount)
		assert.ErrorIs(t, err, ErrInvalidAmount, amount)
	}
	payments, err := h.paymentDB.ListByInvoice(h.ctx, id)
	require.NoError(t, err)
	assert.Empty(t, payments)
	assert.Equal(t, model.InvoicePending, h.invoiceStatus(t, id))

	res, err := h.pay(id, "60.0000")
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePartial, res.Status)
	assert.Equal(t, "40.00", res.RemainingDue)

	res, err = h.pay(id, "40.00")
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceCompleted, res.Status)
	assert.Equal(t, model.InvoiceCompleted, h.invoiceStatus(t, id))
}

func TestApplyPayment_RejectsOverpaymentWithoutSideEffects(t *testing.T) {
	h := newHarness(t)
	id := h.february(t)
	_, err := h.pay(id, "30")
	require.NoError(t, err)

	_, err = h.pay(id, "70.01")
	assert.ErrorIs(t, err, ErrOverpaymentRejected)

	payments, err := h.paymentDB.ListByInvoice(h.ctx, id)
	require.NoError(t, err)
	assert.Len(t, payments, 1)
	details := h.details(t, id)
	assert.Equal(t, "30.00", details[0].PaidAmount.StringFixed(2))
	assert.True(t, details[1].PaidAmount.IsZero())
	assert.Equal(t, model.InvoicePartial, h.invoiceStatus(t, id))
}

func TestApplyPayment_AllocatesInDetailOrder(t *testing.T) {
	h := newHarness(t)
	id := h.february(t)

	_, err := h.pay(id, "70")
	require.NoError(t, err)

	details := h.details(t, id)
	require.Len(t, details, 2)
	assert.Equal(t, "60.00", details[0].PaidAmount.StringFixed(2))
	assert.Equal(t, "10.00", details[1].PaidAmount.StringFixed(2))

	_, err = h.pay(id, "25.5")
	require.NoError(t, err)
	details = h.details(t, id)
	assert.Equal(t, "60.00", details[0].PaidAmount.StringFixed(2))
	assert.Equal(t, "35.50", details[1].PaidAmount.StringFixed(2))
}

func TestApplyPayment_PaidAmountsMatchPayments(t *testing.T) {
	h := newHarness(t)
	id := h.february(t)

	for _, amount := range []string{"12.25", "30", "0.75", "7"} {
		_, err := h.pay(id, amount)
		require.NoError(t, err)
	}

	payments, err := h.paymentDB.ListByInvoice(h.ctx, id)
	require.NoError(t, err)
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	_, detailPaid := sumDetails(h.details(t, id))
	assert.True(t, paid.Equal(detailPaid), "payments %s vs details %s", paid, detailPaid)
	assert.Equal(t, "50.00", paid.StringFixed(2))
	assert.Equal(t, model.InvoicePartial, h.invoiceStatus(t, id))
}

func TestApplyPayment_InsufficientAdvanceRollsBack(t *testing.T) {
	h := newHarness(t)
	id := h.february(t)
	_, err := h.advances.DepositAdvance(h.ctx, h.vendor, h.f.Customer.ID, "30")
	require.NoError(t, err)

	_, err = h.payments.ApplyPayment(h.ctx, h.vendor, id, ApplyPaymentRequest{
		CustomerID: h.f.Customer.ID,
		Amount:     "50",
		UseAdvance: true,
	})
	assert.ErrorIs(t, err, ErrInsufficientAdvanceBalance)

	adv, err := h.advances.GetAdvance(h.ctx, h.vendor, h.f.Customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "30.00", adv.AdvanceAmount)

	payments, err := h.paymentDB.ListByInvoice(h.ctx, id)
	require.NoError(t, err)
	assert.Empty(t, payments)
	_, paid := sumDetails(h.details(t, id))
	assert.True(t, paid.IsZero())
	assert.Equal(t, model.InvoicePending, h.invoiceStatus(t, id))
}

func TestApplyPayment_FundedFromAdvance(t *testing.T) {
	h := newHarness(t)
	id := h.february(t)
	_, err := h.advances.DepositAdvance(h.ctx, h.vendor, h.f.Customer.ID, "100")
	require.NoError(t, err)

	res, err := h.payments.ApplyPayment(h.ctx, h.employee, id, ApplyPaymentRequest{
		CustomerID: h.f.Customer.ID,
		Amount:     "60",
		UseAdvance: true,
	})
	require.NoError(t, err)
	require.NotNil(t, res.AdvanceBalance)
	assert.Equal(t, "40.00", *res.AdvanceBalance)
	assert.Equal(t, model.InvoicePartial, res.Status)

	payments, err := h.paymentDB.ListByInvoice(h.ctx, id)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, model.PaymentModeAdvance, payments[0].PaymentMode)
	assert.True(t, payments[0].FundedByAdvance)

	history, total, err := h.advances.History(h.ctx, h.vendor, h.f.Customer.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, model.AdvanceDebit, history[0].EntryType)
	require.NotNil(t, history[0].PaymentID)
	assert.Equal(t, res.PaymentID, *history[0].PaymentID)
	assert.Equal(t, "40.00", history[0].BalanceAfter)
}

func TestApplyPayment_UnknownOrForeignInvoice(t *testing.T) {
	h := newHarness(t)
	id := h.february(t)

	_, err := h.pay(id+50, "10")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = h.payments.ApplyPayment(h.ctx, h.vendor, id, ApplyPaymentRequest{CustomerID: h.f.OtherCustomer.ID, Amount: "10"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = h.payments.ApplyPayment(h.ctx, h.otherVendor(t), id, ApplyPaymentRequest{CustomerID: h.f.Customer.ID, Amount: "10"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = h.payments.ApplyPayment(h.ctx, h.customer, id, ApplyPaymentRequest{CustomerID: h.f.Customer.ID, Amount: "10"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestApplyPayment_WritesAuditAndEvent(t *testing.T) {
	h := newHarness(t)
	id := h.february(t)
	_, err := h.pay(id, "60")
	require.NoError(t, err)

	logs, total, err := h.audits.GetAuditLogs(h.ctx, h.vendor, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	actions := []string{logs[0].Action, logs[1].Action}
	assert.Contains(t, actions, model.ActionApplyPayment)
	assert.Contains(t, actions, model.ActionGenerateInvoice)

	assert.Equal(t, []string{EventInvoiceGenerated, EventPaymentApplied}, h.pub.names())
}

func TestListPayments_CustomerSeesOwnInvoice(t *testing.T) {
	h := newHarness(t)
	id := h.february(t)
	_, err := h.pay(id, "5")
	require.NoError(t, err)

	payments, err := h.payments.ListPayments(h.ctx, h.customer, id)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "5.00", payments[0].Amount)
	assert.Equal(t, model.PaymentModeCash, payments[0].PaymentMode)

	other := Actor{ID: h.f.OtherCustomer.ID, Role: model.RoleCustomer, VendorID: h.f.Vendor.ID}
	_, err = h.payments.ListPayments(h.ctx, other, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

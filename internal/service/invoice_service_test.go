package service

import (
	"testing"
	"time"

	"vendorledger/internal/model"
	"vendorledger/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateInvoice_BillsUnbilledSalesOfMonth(t *testing.T) {
	h := newHarness(t)
	h.invoices.now = fixedClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	s1 := testutil.AddSale(t, h.db, h.f, h.f.Customer.ID, "60", testutil.Day(2024, 2, 5))
	s2 := testutil.AddSale(t, h.db, h.f, h.f.Customer.ID, "40", testutil.Day(2024, 2, 29))
	testutil.AddSale(t, h.db, h.f, h.f.Customer.ID, "15", testutil.Day(2024, 3, 1))
	testutil.AddSale(t, h.db, h.f, h.f.OtherCustomer.ID, "99", testutil.Day(2024, 2, 10))

	res, err := h.invoices.GenerateInvoice(h.ctx, h.employee, GenerateInvoiceRequest{CustomerID: h.f.Customer.ID, Month: 2, Year: 2024})
	require.NoError(t, err)
	require.NotNil(t, res.InvoiceID)
	assert.False(t, res.AlreadyBilled)
	assert.Equal(t, "INV-20240301-00001", res.InvoiceNo)
	assert.Equal(t, "100.00", res.TotalAmount)
	assert.Equal(t, 2, res.SalesBilled)

	view, err := h.invoices.ViewInvoice(h.ctx, h.vendor, *res.InvoiceID, 0)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", view.StartDate)
	assert.Equal(t, "2024-02-29", view.EndDate)
	assert.Equal(t, model.InvoicePending, view.Status)
	assert.Equal(t, "100.00", view.DueAmount)
	require.Len(t, view.Details, 2)
	assert.Equal(t, s1.ID, view.Details[0].SaleID)
	assert.Equal(t, s2.ID, view.Details[1].SaleID)
	assert.Equal(t, "Milk 1L", view.Details[0].ProductName)

	var billed []model.Sale
	require.NoError(t, h.db.Where("invoice_generated = ?", true).Order("id asc").Find(&billed).Error)
	require.Len(t, billed, 2)
	assert.Equal(t, s1.ID, billed[0].ID)

	assert.Equal(t, []string{EventInvoiceGenerated}, h.pub.names())
}

func TestGenerateInvoice_SecondCallReportsAlreadyBilled(t *testing.T) {
	h := newHarness(t)
	h.february(t)

	res, err := h.invoices.GenerateInvoice(h.ctx, h.vendor, GenerateInvoiceRequest{CustomerID: h.f.Customer.ID, Month: 2, Year: 2024})
	require.NoError(t, err)
	assert.True(t, res.AlreadyBilled)
	assert.Nil(t, res.InvoiceID)
	assert.Equal(t, "already billed", res.Message)

	var count int64
	require.NoError(t, h.db.Model(&model.Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	var details int64
	require.NoError(t, h.db.Model(&model.InvoiceDetail{}).Count(&details).Error)
	assert.Equal(t, int64(2), details)
}

func TestGenerateInvoice_LateSaleGetsItsOwnInvoice(t *testing.T) {
	h := newHarness(t)
	h.invoices.now = fixedClock(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))
	first := h.february(t)

	late := testutil.AddSale(t, h.db, h.f, h.f.Customer.ID, "25", testutil.Day(2024, 2, 28))
	res, err := h.invoices.GenerateInvoice(h.ctx, h.vendor, GenerateInvoiceRequest{CustomerID: h.f.Customer.ID, Month: 2, Year: 2024})
	require.NoError(t, err)
	require.NotNil(t, res.InvoiceID)
	assert.NotEqual(t, first, *res.InvoiceID)
	assert.Equal(t, "INV-20240302-00002", res.InvoiceNo)
	assert.Equal(t, "25.00", res.TotalAmount)

	details := h.details(t, *res.InvoiceID)
	require.Len(t, details, 1)
	assert.Equal(t, late.ID, details[0].SaleID)
}

func TestGenerateInvoice_NoSalesInPeriod(t *testing.T) {
	h := newHarness(t)
	testutil.AddSale(t, h.db, h.f, h.f.Customer.ID, "60", testutil.Day(2024, 1, 31))

	_, err := h.invoices.GenerateInvoice(h.ctx, h.vendor, GenerateInvoiceRequest{CustomerID: h.f.Customer.ID, Month: 2, Year: 2024})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGenerateInvoice_RejectsBadInput(t *testing.T) {
	h := newHarness(t)

	_, err := h.invoices.GenerateInvoice(h.ctx, h.vendor, GenerateInvoiceRequest{CustomerID: h.f.Customer.ID, Month: 13, Year: 2024})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = h.invoices.GenerateInvoice(h.ctx, h.vendor, GenerateInvoiceRequest{CustomerID: h.f.Customer.ID, Month: 2, Year: 1999})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = h.invoices.GenerateInvoice(h.ctx, h.vendor, GenerateInvoiceRequest{CustomerID: 9999, Month: 2, Year: 2024})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGenerateInvoice_EnforcesTenancy(t *testing.T) {
	h := newHarness(t)
	testutil.AddSale(t, h.db, h.f, h.f.Customer.ID, "60", testutil.Day(2024, 2, 5))

	_, err := h.invoices.GenerateInvoice(h.ctx, h.otherVendor(t), GenerateInvoiceRequest{CustomerID: h.f.Customer.ID, Month: 2, Year: 2024})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = h.invoices.GenerateInvoice(h.ctx, h.customer, GenerateInvoiceRequest{CustomerID: h.f.Customer.ID, Month: 2, Year: 2024})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestViewInvoice_Scoping(t *testing.T) {
	h := newHarness(t)
	id := h.february(t)

	_, err := h.invoices.ViewInvoice(h.ctx, h.customer, id, 0)
	assert.NoError(t, err, "customers may read their own invoices")

	_, err = h.invoices.ViewInvoice(h.ctx, h.vendor, id, h.f.OtherCustomer.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = h.invoices.ViewInvoice(h.ctx, h.otherVendor(t), id, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = h.invoices.ViewInvoice(h.ctx, h.vendor, id+100, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListInvoices_FiltersByTenantAndStatus(t *testing.T) {
	h := newHarness(t)
	id := h.february(t)
	testutil.AddSale(t, h.db, h.f, h.f.OtherCustomer.ID, "10", testutil.Day(2024, 2, 3))
	_, err := h.invoices.GenerateInvoice(h.ctx, h.vendor, GenerateInvoiceRequest{CustomerID: h.f.OtherCustomer.ID, Month: 2, Year: 2024})
	require.NoError(t, err)
	_, err = h.pay(id, "10")
	require.NoError(t, err)

	all, total, err := h.invoices.ListInvoices(h.ctx, h.vendor, InvoiceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	partial, total, err := h.invoices.ListInvoices(h.ctx, h.vendor, InvoiceFilter{Status: model.InvoicePartial})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, partial, 1)
	assert.Equal(t, "90.00", partial[0].DueAmount)

	mine, total, err := h.invoices.ListInvoices(h.ctx, h.customer, InvoiceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, id, mine[0].ID)

	none, total, err := h.invoices.ListInvoices(h.ctx, h.otherVendor(t), InvoiceFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, none)
}

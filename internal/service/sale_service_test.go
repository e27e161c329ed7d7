package service

import (
	"testing"
	"time"

	"vendorledger/internal/model"
	"vendorledger/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSale_ComputesTotal(t *testing.T) {
	h := newHarness(t)
	h.sales.now = fixedClock(time.Date(2024, 2, 10, 15, 30, 0, 0, time.UTC))

	res, err := h.sales.RecordSale(h.ctx, h.employee, RecordSaleRequest{
		CustomerID: h.f.Customer.ID,
		ProductID:  h.f.Product.ID,
		Quantity:   3,
	})
	require.NoError(t, err)
	assert.Equal(t, "60.00", res.PricePerUnit)
	assert.Equal(t, "180.00", res.TotalAmount)
	assert.Equal(t, "2024-02-10", res.SaleDate)

	res, err = h.sales.RecordSale(h.ctx, h.vendor, RecordSaleRequest{
		CustomerID:   h.f.Customer.ID,
		ProductID:    h.f.Product.ID,
		Quantity:     2,
		PricePerUnit: "12.5",
		SaleDate:     "2024-02-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "25.00", res.TotalAmount)
	assert.Equal(t, "2024-02-01", res.SaleDate)

	var stored model.Sale
	require.NoError(t, h.db.First(&stored, res.ID).Error)
	assert.Equal(t, model.RoleVendor, stored.CreatedByRole)
	assert.False(t, stored.InvoiceGenerated)
}

func TestRecordSale_RejectsForeignProductAndCustomer(t *testing.T) {
	h := newHarness(t)
	other := h.otherVendor(t)
	foreign := model.Product{VendorID: other.VendorID, Name: "Curd", Price: dec("30"), Status: model.StatusActive}
	require.NoError(t, h.db.Create(&foreign).Error)

	_, err := h.sales.RecordSale(h.ctx, h.vendor, RecordSaleRequest{CustomerID: h.f.Customer.ID, ProductID: foreign.ID, Quantity: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = h.sales.RecordSale(h.ctx, other, RecordSaleRequest{CustomerID: h.f.Customer.ID, ProductID: foreign.ID, Quantity: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = h.sales.RecordSale(h.ctx, h.customer, RecordSaleRequest{CustomerID: h.f.Customer.ID, ProductID: h.f.Product.ID, Quantity: 1})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = h.sales.RecordSale(h.ctx, h.vendor, RecordSaleRequest{CustomerID: h.f.Customer.ID, ProductID: h.f.Product.ID, Quantity: 1, PricePerUnit: "0"})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = h.sales.RecordSale(h.ctx, h.vendor, RecordSaleRequest{CustomerID: h.f.Customer.ID, ProductID: h.f.Product.ID, Quantity: 3, PricePerUnit: "1.005"})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCorrectSale_OnlyWhileUnbilled(t *testing.T) {
	h := newHarness(t)
	sale := testutil.AddSale(t, h.db, h.f, h.f.Customer.ID, "60", testutil.Day(2024, 2, 5))

	qty := 4
	res, err := h.sales.CorrectSale(h.ctx, h.employee, sale.ID, CorrectSaleRequest{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, "240.00", res.TotalAmount)

	_, err = h.invoices.GenerateInvoice(h.ctx, h.vendor, GenerateInvoiceRequest{CustomerID: h.f.Customer.ID, Month: 2, Year: 2024})
	require.NoError(t, err)

	qty = 1
	_, err = h.sales.CorrectSale(h.ctx, h.vendor, sale.ID, CorrectSaleRequest{Quantity: &qty})
	assert.ErrorIs(t, err, ErrInvalidState)

	err = h.sales.DeleteSale(h.ctx, h.vendor, sale.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestDeleteSale(t *testing.T) {
	h := newHarness(t)
	sale := testutil.AddSale(t, h.db, h.f, h.f.Customer.ID, "60", testutil.Day(2024, 2, 5))

	err := h.sales.DeleteSale(h.ctx, h.employee, sale.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	err = h.sales.DeleteSale(h.ctx, h.otherVendor(t), sale.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, h.sales.DeleteSale(h.ctx, h.vendor, sale.ID))
	var count int64
	require.NoError(t, h.db.Model(&model.Sale{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCustomerMonthlySales(t *testing.T) {
	h := newHarness(t)
	testutil.AddSale(t, h.db, h.f, h.f.Customer.ID, "60", testutil.Day(2024, 2, 5))
	testutil.AddSale(t, h.db, h.f, h.f.Customer.ID, "40.5", testutil.Day(2024, 2, 20))
	testutil.AddSale(t, h.db, h.f, h.f.Customer.ID, "7", testutil.Day(2024, 3, 1))

	report, err := h.sales.CustomerMonthlySales(h.ctx, h.customer, h.f.Customer.ID, 2, 2024)
	require.NoError(t, err)
	assert.Equal(t, "100.50", report.TotalAmount)
	require.Len(t, report.Sales, 2)
	assert.Equal(t, "Meera", report.Sales[0].CustomerName)
	assert.Equal(t, "Milk 1L", report.Sales[0].ProductName)
	assert.Equal(t, "60.00", report.Sales[0].TotalAmount)
	assert.False(t, report.Sales[0].Invoiced)

	_, err = h.sales.CustomerMonthlySales(h.ctx, h.vendor, h.f.Customer.ID, 4, 2024)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = h.sales.CustomerMonthlySales(h.ctx, h.vendor, h.f.Customer.ID, 0, 2024)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

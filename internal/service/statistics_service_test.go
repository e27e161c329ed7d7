package service

import (
	"testing"
	"time"

	"vendorledger/internal/model"
	"vendorledger/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard_SummarisesYesterday(t *testing.T) {
	h := newHarness(t)
	h.stats.now = fixedClock(time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC))

	bread := model.Product{VendorID: h.f.Vendor.ID, Name: "Bread", Price: dec("30"), Status: model.StatusActive}
	require.NoError(t, h.db.Create(&bread).Error)
	require.NoError(t, h.db.Create(&model.Sale{
		VendorID: h.f.Vendor.ID, CustomerID: h.f.Customer.ID, ProductID: bread.ID,
		Quantity: 5, PricePerUnit: dec("30"), TotalAmount: dec("150"), SaleDate: testutil.Day(2024, 3, 1),
	}).Error)
	testutil.AddSale(t, h.db, h.f, h.f.Customer.ID, "60", testutil.Day(2024, 3, 1))
	testutil.AddSale(t, h.db, h.f, h.f.Customer.ID, "999", testutil.Day(2024, 2, 29))

	dash, err := h.stats.Dashboard(h.ctx, h.vendor)
	require.NoError(t, err)
	assert.Equal(t, int64(2), dash.ActiveCustomers)
	assert.Equal(t, int64(2), dash.ActiveProducts)
	assert.Equal(t, "210.00", dash.YesterdaySales)
	require.NotNil(t, dash.TopProduct)
	assert.Equal(t, "Bread", dash.TopProduct.ProductName)
	assert.Equal(t, int64(5), dash.TopProduct.TotalQuantity)
	assert.Equal(t, "150.00", dash.TopProduct.TotalValue)
	assert.Equal(t, "0.00", dash.OutstandingAmount)
	assert.Equal(t, testutil.Day(2024, 3, 1), dash.Day)
}

func TestDashboard_EmptyDayAndOutstanding(t *testing.T) {
	h := newHarness(t)
	h.stats.now = fixedClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	id := h.february(t)
	_, err := h.pay(id, "25")
	require.NoError(t, err)

	dash, err := h.stats.Dashboard(h.ctx, h.vendor)
	require.NoError(t, err)
	assert.Equal(t, "0.00", dash.YesterdaySales)
	assert.Nil(t, dash.TopProduct)
	assert.Equal(t, "75.00", dash.OutstandingAmount)

	_, err = h.stats.Dashboard(h.ctx, h.employee)
	assert.ErrorIs(t, err, ErrForbidden)
}

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"vendorledger/internal/model"
	"vendorledger/internal/repository"
	"vendorledger/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type publishedEvent struct {
	VendorID uint
	Name     string
	Payload  any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(vendorID uint, event string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{VendorID: vendorID, Name: event, Payload: payload})
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Name)
	}
	return out
}

type harness struct {
	db        *gorm.DB
	f         testutil.Fixture
	pub       *recordingPublisher
	invoices  *invoiceService
	payments  *paymentService
	advances  *advanceService
	sales     *saleService
	stats     *statisticsService
	audits    AuditService
	vendor    Actor
	employee  Actor
	customer  Actor
	ctx       context.Context
	paymentDB repository.PaymentRepository
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	f := testutil.Seed(t, db)
	pub := &recordingPublisher{}
	log := zap.NewNop()

	invoiceRepo := repository.NewInvoiceRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	advanceRepo := repository.NewAdvanceRepository(db)
	partyRepo := repository.NewPartyRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	productRepo := repository.NewProductRepository(db)
	txm := repository.NewTransactionManager(db)

	return &harness{
		db:        db,
		f:         f,
		pub:       pub,
		invoices:  NewInvoiceService(invoiceRepo, saleRepo, partyRepo, auditRepo, txm, pub, log).(*invoiceService),
		payments:  NewPaymentService(invoiceRepo, paymentRepo, advanceRepo, partyRepo, auditRepo, txm, pub, log).(*paymentService),
		advances:  NewAdvanceService(advanceRepo, partyRepo, auditRepo, txm, pub, log).(*advanceService),
		sales:     NewSaleService(saleRepo, productRepo, partyRepo, auditRepo, txm, pub, log).(*saleService),
		stats:     NewStatisticsService(repository.NewStatisticsRepository(db)).(*statisticsService),
		audits:    NewAuditService(auditRepo),
		vendor:    Actor{ID: f.Vendor.ID, Role: model.RoleVendor, VendorID: f.Vendor.ID},
		employee:  Actor{ID: f.Employee.ID, Role: model.RoleEmployee, VendorID: f.Vendor.ID},
		customer:  Actor{ID: f.Customer.ID, Role: model.RoleCustomer, VendorID: f.Vendor.ID},
		ctx:       context.Background(),
		paymentDB: paymentRepo,
	}
}

// otherVendor seeds a second tenant and returns an actor for it.
func (h *harness) otherVendor(t *testing.T) Actor {
	t.Helper()
	v := model.Vendor{Name: "Other", Email: "other@example.com", Mobile: "9111111111", PasswordHash: "x", Status: model.StatusActive}
	require.NoError(t, h.db.Create(&v).Error)
	return Actor{ID: v.ID, Role: model.RoleVendor, VendorID: v.ID}
}

// february bills sales of 60 and 40 for the fixture customer in Feb 2024.
func (h *harness) february(t *testing.T) uint {
	t.Helper()
	testutil.AddSale(t, h.db, h.f, h.f.Customer.ID, "60", testutil.Day(2024, 2, 5))
	testutil.AddSale(t, h.db, h.f, h.f.Customer.ID, "40", testutil.Day(2024, 2, 20))

	res, err := h.invoices.GenerateInvoice(h.ctx, h.vendor, GenerateInvoiceRequest{CustomerID: h.f.Customer.ID, Month: 2, Year: 2024})
	require.NoError(t, err)
	require.NotNil(t, res.InvoiceID)
	return *res.InvoiceID
}

func (h *harness) pay(invoiceID uint, amount string) (PaymentResult, error) {
	return h.payments.ApplyPayment(h.ctx, h.vendor, invoiceID, ApplyPaymentRequest{
		CustomerID: h.f.Customer.ID,
		Amount:     amount,
	})
}

func (h *harness) details(t *testing.T, invoiceID uint) []model.InvoiceDetail {
	t.Helper()
	var details []model.InvoiceDetail
	require.NoError(t, h.db.Where("invoice_id = ?", invoiceID).Order("id asc").Find(&details).Error)
	return details
}

func (h *harness) invoiceStatus(t *testing.T, invoiceID uint) string {
	t.Helper()
	var inv model.Invoice
	require.NoError(t, h.db.First(&inv, invoiceID).Error)
	return inv.Status
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

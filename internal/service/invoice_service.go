package service

import (
	"context"
	"fmt"
	"time"

	"vendorledger/internal/model"
	"vendorledger/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// --- DTOs ---

type GenerateInvoiceRequest struct {
	CustomerID uint `json:"customer_id" binding:"required"`
	Month      int  `json:"month" binding:"required,min=1,max=12"`
	Year       int  `json:"year" binding:"required,min=2000,max=9999"`
}

// GenerateInvoiceResult is returned for both outcomes of a generation call.
// When every sale in the period is already billed, AlreadyBilled is true and InvoiceID is nil.
type GenerateInvoiceResult struct {
	InvoiceID     *uint  `json:"invoice_id"`
	InvoiceNo     string `json:"invoice_no,omitempty"`
	TotalAmount   string `json:"total_amount,omitempty"`
	SalesBilled   int    `json:"sales_billed"`
	AlreadyBilled bool   `json:"already_billed"`
	Message       string `json:"message"`
}

type InvoiceFilter struct {
	CustomerID uint
	Status     string // pending, partial, completed or empty for all
	Page       int
	Limit      int
}

type InvoiceDetailResponse struct {
	ID          uint   `json:"id"`
	SaleID      uint   `json:"sale_id"`
	SaleDate    string `json:"sale_date,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int    `json:"quantity,omitempty"`
	Amount      string `json:"amount"`
	PaidAmount  string `json:"paid_amount"`
}

type PaymentResponse struct {
	ID              uint   `json:"id"`
	Amount          string `json:"amount"`
	PaymentMode     string `json:"payment_mode"`
	Notes           string `json:"notes"`
	FundedByAdvance bool   `json:"funded_by_advance"`
	PaymentDate     string `json:"payment_date"`
}

type InvoiceResponse struct {
	ID          uint                    `json:"id"`
	InvoiceNo   string                  `json:"invoice_no"`
	VendorID    uint                    `json:"vendor_id"`
	CustomerID  uint                    `json:"customer_id"`
	StartDate   string                  `json:"start_date"`
	EndDate     string                  `json:"end_date"`
	TotalAmount string                  `json:"total_amount"`
	PaidAmount  string                  `json:"paid_amount"`
	DueAmount   string                  `json:"due_amount"`
	Status      string                  `json:"status"`
	CreatedAt   string                  `json:"created_at"`
	Details     []InvoiceDetailResponse `json:"details,omitempty"`
	Payments    []PaymentResponse       `json:"payments,omitempty"`
}

// --- Interface ---

type InvoiceService interface {
	GenerateInvoice(ctx context.Context, actor Actor, req GenerateInvoiceRequest) (GenerateInvoiceResult, error)
	// ViewInvoice returns the invoice with details and payments. A non-zero
	// customerID must match the invoice's customer.
	ViewInvoice(ctx context.Context, actor Actor, invoiceID, customerID uint) (InvoiceResponse, error)
	ListInvoices(ctx context.Context, actor Actor, filter InvoiceFilter) ([]InvoiceResponse, int64, error)
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	saleRepo    repository.SaleRepository
	partyRepo   repository.PartyRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	publisher   EventPublisher
	log         *zap.Logger
	now         func() time.Time
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	saleRepo repository.SaleRepository,
	partyRepo repository.PartyRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	publisher EventPublisher,
	log *zap.Logger,
) InvoiceService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		saleRepo:    saleRepo,
		partyRepo:   partyRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		publisher:   publisher,
		log:         log.Named("invoice"),
		now:         time.Now,
	}
}

// BillingPeriod returns [first day of month, first day of next month) in UTC.
func BillingPeriod(month, year int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, newError(ErrInvalidInput, "month must be between 1 and 12")
	}
	if year < 2000 || year > 9999 {
		return time.Time{}, time.Time{}, newError(ErrInvalidInput, "year must be between 2000 and 9999")
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}

// --- Implementation ---

func (s *invoiceService) GenerateInvoice(ctx context.Context, actor Actor, req GenerateInvoiceRequest) (GenerateInvoiceResult, error) {
	if actor.Role == model.RoleCustomer {
		return GenerateInvoiceResult{}, ErrForbidden
	}
	start, end, err := BillingPeriod(req.Month, req.Year)
	if err != nil {
		return GenerateInvoiceResult{}, err
	}

	var result GenerateInvoiceResult
	var vendorID uint
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		customer, err := customerGuard(txCtx, s.partyRepo, actor, req.CustomerID)
		if err != nil {
			return err
		}
		vendorID = customer.VendorID

		sales, err := s.saleRepo.LockCustomerSalesInPeriod(txCtx, customer.ID, start, end)
		if err != nil {
			return storageFault("lock sales", err)
		}
		if len(sales) == 0 {
			return newError(ErrNotFound, "no sales in period")
		}

		ids := make([]uint, 0, len(sales))
		for _, sale := range sales {
			ids = append(ids, sale.ID)
		}
		billed, err := s.saleRepo.BilledSaleIDs(txCtx, ids)
		if err != nil {
			return storageFault("check billed sales", err)
		}

		fresh := make([]model.Sale, 0, len(sales))
		total := decimal.Zero
		for _, sale := range sales {
			if billed[sale.ID] {
				continue
			}
			fresh = append(fresh, sale)
			total = total.Add(sale.TotalAmount)
		}
		if len(fresh) == 0 {
			result = GenerateInvoiceResult{AlreadyBilled: true, Message: "already billed"}
			return nil
		}

		invoiceNo, err := s.generateInvoiceNo(txCtx)
		if err != nil {
			return storageFault("allocate invoice number", err)
		}

		invoice := model.Invoice{
			InvoiceNo:   invoiceNo,
			VendorID:    customer.VendorID,
			CustomerID:  customer.ID,
			StartDate:   start,
			EndDate:     end.AddDate(0, 0, -1),
			TotalAmount: total,
			Status:      model.InvoicePending,
			CreatedBy:   actor.ID,
		}
		if err := s.invoiceRepo.Create(txCtx, &invoice); err != nil {
			return storageFault("create invoice", err)
		}

		details := make([]model.InvoiceDetail, 0, len(fresh))
		freshIDs := make([]uint, 0, len(fresh))
		for _, sale := range fresh {
			details = append(details, model.InvoiceDetail{
				InvoiceID:  invoice.ID,
				SaleID:     sale.ID,
				Amount:     sale.TotalAmount,
				PaidAmount: decimal.Zero,
			})
			freshIDs = append(freshIDs, sale.ID)
		}
		if err := s.invoiceRepo.CreateDetails(txCtx, details); err != nil {
			return storageFault("create invoice details", err)
		}
		if err := s.saleRepo.MarkInvoiced(txCtx, freshIDs); err != nil {
			return storageFault("mark sales invoiced", err)
		}

		if err := writeAudit(txCtx, s.auditRepo, actor, customer.VendorID, model.ActionGenerateInvoice, invoice.ID, invoice.InvoiceNo, map[string]any{
			"customer_id":  customer.ID,
			"month":        req.Month,
			"year":         req.Year,
			"sale_ids":     freshIDs,
			"total_amount": total.StringFixed(MoneyScale),
		}); err != nil {
			return storageFault("write audit log", err)
		}

		id := invoice.ID
		result = GenerateInvoiceResult{
			InvoiceID:   &id,
			InvoiceNo:   invoice.InvoiceNo,
			TotalAmount: total.StringFixed(MoneyScale),
			SalesBilled: len(fresh),
			Message:     "invoice generated",
		}
		return nil
	})
	if err != nil {
		s.logFailure("generate invoice", err, zap.Uint("customer_id", req.CustomerID))
		return GenerateInvoiceResult{}, passThrough("generate invoice", err)
	}

	if result.InvoiceID != nil {
		s.log.Info("invoice generated",
			zap.Uint("invoice_id", *result.InvoiceID),
			zap.String("invoice_no", result.InvoiceNo),
			zap.Uint("customer_id", req.CustomerID),
			zap.Int("sales", result.SalesBilled),
		)
		s.publisher.Publish(vendorID, EventInvoiceGenerated, result)
	}
	return result, nil
}

func (s *invoiceService) ViewInvoice(ctx context.Context, actor Actor, invoiceID, customerID uint) (InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindWithRelations(ctx, invoiceID)
	if err != nil {
		return InvoiceResponse{}, lookupError(err, "find invoice", "invoice not found")
	}
	if customerID != 0 && invoice.CustomerID != customerID {
		return InvoiceResponse{}, newError(ErrNotFound, "invoice not found")
	}
	if _, err := customerGuard(ctx, s.partyRepo, actor, invoice.CustomerID); err != nil {
		return InvoiceResponse{}, asNotFound(err, "invoice not found")
	}
	return toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, actor Actor, filter InvoiceFilter) ([]InvoiceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.InvoiceListFilter{
		CustomerID: filter.CustomerID,
		Status:     filter.Status,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}
	switch {
	case actor.isSystem():
	case actor.Role == model.RoleCustomer:
		repoFilter.CustomerID = actor.ID
	default:
		repoFilter.VendorID = actor.VendorID
	}

	invoices, total, err := s.invoiceRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, storageFault("list invoices", err)
	}

	result := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		resp := toInvoiceResponse(inv)
		resp.Details = nil
		result = append(result, resp)
	}
	return result, total, nil
}

// generateInvoiceNo must run inside the transaction that inserts the invoice.
func (s *invoiceService) generateInvoiceNo(ctx context.Context) (string, error) {
	prefix := "INV-" + s.now().UTC().Format("20060102") + "-"

	if err := s.invoiceRepo.LockNumbering(ctx, prefix); err != nil {
		return "", err
	}
	count, err := s.invoiceRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func (s *invoiceService) logFailure(op string, err error, fields ...zap.Field) {
	logFailure(s.log, op, err, fields...)
}

// --- Mapping ---

func toInvoiceResponse(inv model.Invoice) InvoiceResponse {
	_, paid := sumDetails(inv.Details)
	resp := InvoiceResponse{
		ID:          inv.ID,
		InvoiceNo:   inv.InvoiceNo,
		VendorID:    inv.VendorID,
		CustomerID:  inv.CustomerID,
		StartDate:   inv.StartDate.Format("2006-01-02"),
		EndDate:     inv.EndDate.Format("2006-01-02"),
		TotalAmount: inv.TotalAmount.StringFixed(MoneyScale),
		PaidAmount:  paid.StringFixed(MoneyScale),
		DueAmount:   inv.TotalAmount.Sub(paid).StringFixed(MoneyScale),
		Status:      inv.Status,
		CreatedAt:   inv.CreatedAt.Format(time.RFC3339),
	}

	for _, d := range inv.Details {
		dr := InvoiceDetailResponse{
			ID:         d.ID,
			SaleID:     d.SaleID,
			Amount:     d.Amount.StringFixed(MoneyScale),
			PaidAmount: d.PaidAmount.StringFixed(MoneyScale),
		}
		if d.Sale != nil {
			dr.SaleDate = d.Sale.SaleDate.Format("2006-01-02")
			dr.Quantity = d.Sale.Quantity
			if d.Sale.Product != nil {
				dr.ProductName = d.Sale.Product.Name
			}
		}
		resp.Details = append(resp.Details, dr)
	}
	for _, p := range inv.Payments {
		resp.Payments = append(resp.Payments, toPaymentResponse(p))
	}

	return resp
}

func toPaymentResponse(p model.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		Amount:          p.Amount.StringFixed(MoneyScale),
		PaymentMode:     p.PaymentMode,
		Notes:           p.Notes,
		FundedByAdvance: p.FundedByAdvance,
		PaymentDate:     p.PaymentDate.Format(time.RFC3339),
	}
}

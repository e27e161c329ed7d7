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

type ApplyPaymentRequest struct {
	CustomerID  uint   `json:"customer_id" binding:"required"`
	Amount      string `json:"amount" binding:"required,decimal_amount"`
	PaymentMode string `json:"payment_mode" binding:"omitempty,oneof=cash upi card bank_transfer cheque advance"`
	Notes       string `json:"notes"`
	UseAdvance  bool   `json:"use_advance"`
}

type AllocationResponse struct {
	DetailID   uint   `json:"detail_id"`
	Applied    string `json:"applied"`
	PaidAmount string `json:"paid_amount"`
}

type PaymentResult struct {
	PaymentID    uint                 `json:"payment_id"`
	InvoiceID    uint                 `json:"invoice_id"`
	Amount       string               `json:"amount"`
	Status       string               `json:"status"`
	RemainingDue string               `json:"remaining_due"`
	Allocations  []AllocationResponse `json:"allocations"`
	// AdvanceBalance is the escrow balance after the debit, set only when UseAdvance.
	AdvanceBalance *string `json:"advance_balance,omitempty"`
}

// --- Interface ---

type PaymentService interface {
	ApplyPayment(ctx context.Context, actor Actor, invoiceID uint, req ApplyPaymentRequest) (PaymentResult, error)
	ListPayments(ctx context.Context, actor Actor, invoiceID uint) ([]PaymentResponse, error)
}

type paymentService struct {
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
	advanceRepo repository.AdvanceRepository
	partyRepo   repository.PartyRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	publisher   EventPublisher
	log         *zap.Logger
	now         func() time.Time
}

func NewPaymentService(
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	advanceRepo repository.AdvanceRepository,
	partyRepo repository.PartyRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	publisher EventPublisher,
	log *zap.Logger,
) PaymentService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &paymentService{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		advanceRepo: advanceRepo,
		partyRepo:   partyRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		publisher:   publisher,
		log:         log.Named("payment"),
		now:         time.Now,
	}
}

// --- Implementation ---

// ApplyPayment runs as one transaction holding row locks on the invoice and its
// details. Any rejection or fault rolls back every write, including the escrow debit.
func (s *paymentService) ApplyPayment(ctx context.Context, actor Actor, invoiceID uint, req ApplyPaymentRequest) (PaymentResult, error) {
	if actor.Role == model.RoleCustomer {
		return PaymentResult{}, ErrForbidden
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return PaymentResult{}, newError(ErrInvalidInput, "amount %q is not a number", req.Amount)
	}
	mode := req.PaymentMode
	if mode == "" {
		mode = model.PaymentModeCash
		if req.UseAdvance {
			mode = model.PaymentModeAdvance
		}
	}

	var result PaymentResult
	var vendorID uint
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, err := s.invoiceRepo.FindByIDForUpdate(txCtx, invoiceID)
		if err != nil {
			return lookupError(err, "lock invoice", "invoice not found")
		}
		if invoice.CustomerID != req.CustomerID {
			return newError(ErrNotFound, "invoice not found")
		}
		customer, err := customerGuard(txCtx, s.partyRepo, actor, invoice.CustomerID)
		if err != nil {
			return asNotFound(err, "invoice not found")
		}
		vendorID = customer.VendorID

		details, err := s.invoiceRepo.LockDetails(txCtx, invoice.ID)
		if err != nil {
			return storageFault("lock invoice details", err)
		}
		_, paid := sumDetails(details)
		due := invoice.TotalAmount.Sub(paid)

		if !due.IsPositive() {
			return newError(ErrAlreadySettled, "invoice %s is already fully paid", invoice.InvoiceNo)
		}
		if !amount.IsPositive() {
			return ErrInvalidAmount
		}
		if !WithinMoneyScale(amount) {
			return errTooPrecise
		}
		if amount.GreaterThan(due) {
			return newError(ErrOverpaymentRejected, "payment of %s exceeds outstanding amount %s", amount.StringFixed(MoneyScale), due.StringFixed(MoneyScale))
		}

		if req.UseAdvance {
			ok, err := s.advanceRepo.Debit(txCtx, invoice.CustomerID, amount)
			if err != nil {
				return storageFault("debit advance", err)
			}
			if !ok {
				return newError(ErrInsufficientAdvanceBalance, "advance balance does not cover %s", amount.StringFixed(MoneyScale))
			}
		}

		payment := model.Payment{
			InvoiceID:       invoice.ID,
			CustomerID:      invoice.CustomerID,
			Amount:          amount,
			PaymentMode:     mode,
			Notes:           req.Notes,
			FundedByAdvance: req.UseAdvance,
			PaymentDate:     s.now().UTC(),
			CreatedBy:       actor.ID,
		}
		if err := s.paymentRepo.Create(txCtx, &payment); err != nil {
			return storageFault("insert payment", err)
		}

		if req.UseAdvance {
			adv, err := s.advanceRepo.FindByCustomer(txCtx, invoice.CustomerID)
			if err != nil {
				return storageFault("reload advance", err)
			}
			paymentID := payment.ID
			if err := s.advanceRepo.AppendHistory(txCtx, &model.AdvancePaymentHistory{
				CustomerID:    invoice.CustomerID,
				EntryType:     model.AdvanceDebit,
				AdvanceAmount: amount,
				BalanceAfter:  adv.AdvanceAmount,
				PaymentID:     &paymentID,
				PaymentDate:   payment.PaymentDate,
			}); err != nil {
				return storageFault("append advance history", err)
			}
			balance := adv.AdvanceAmount.StringFixed(MoneyScale)
			result.AdvanceBalance = &balance
		}

		allocations, leftover := AllocateFIFO(details, amount)
		if leftover.IsPositive() {
			return storageFault("allocate payment", fmt.Errorf("invoice %d: %s left unallocated", invoice.ID, leftover))
		}
		for _, a := range allocations {
			if err := s.invoiceRepo.UpdateDetailPaid(txCtx, a.DetailID, a.PaidNow); err != nil {
				return storageFault("update detail paid amount", err)
			}
		}

		newPaid := paid.Add(amount)
		status := model.StatusFor(invoice.TotalAmount, newPaid)
		if err := s.invoiceRepo.UpdateStatus(txCtx, invoice.ID, status); err != nil {
			return storageFault("update invoice status", err)
		}

		if err := writeAudit(txCtx, s.auditRepo, actor, customer.VendorID, model.ActionApplyPayment, payment.ID, invoice.InvoiceNo, map[string]any{
			"invoice_id":   invoice.ID,
			"amount":       amount.StringFixed(MoneyScale),
			"payment_mode": mode,
			"use_advance":  req.UseAdvance,
			"status":       status,
		}); err != nil {
			return storageFault("write audit log", err)
		}

		result.PaymentID = payment.ID
		result.InvoiceID = invoice.ID
		result.Amount = amount.StringFixed(MoneyScale)
		result.Status = status
		result.RemainingDue = invoice.TotalAmount.Sub(newPaid).StringFixed(MoneyScale)
		result.Allocations = make([]AllocationResponse, 0, len(allocations))
		for _, a := range allocations {
			result.Allocations = append(result.Allocations, AllocationResponse{
				DetailID:   a.DetailID,
				Applied:    a.Applied.StringFixed(MoneyScale),
				PaidAmount: a.PaidNow.StringFixed(MoneyScale),
			})
		}
		return nil
	})
	if err != nil {
		logFailure(s.log, "apply payment", err, zap.Uint("invoice_id", invoiceID), zap.String("amount", req.Amount))
		return PaymentResult{}, passThrough("apply payment", err)
	}

	s.log.Info("payment applied",
		zap.Uint("payment_id", result.PaymentID),
		zap.Uint("invoice_id", result.InvoiceID),
		zap.String("amount", result.Amount),
		zap.String("status", result.Status),
	)
	s.publisher.Publish(vendorID, EventPaymentApplied, result)
	return result, nil
}

func (s *paymentService) ListPayments(ctx context.Context, actor Actor, invoiceID uint) ([]PaymentResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, lookupError(err, "find invoice", "invoice not found")
	}
	if _, err := customerGuard(ctx, s.partyRepo, actor, invoice.CustomerID); err != nil {
		return nil, asNotFound(err, "invoice not found")
	}

	payments, err := s.paymentRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, storageFault("list payments", err)
	}
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	return out, nil
}

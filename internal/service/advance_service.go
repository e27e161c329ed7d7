package service

import (
	"context"
	"time"

	"vendorledger/internal/model"
	"vendorledger/internal/repository"

	"go.uber.org/zap"
)

type AdvanceAmountRequest struct {
	Amount string `json:"amount" binding:"required,decimal_amount"`
}

type AdvanceResponse struct {
	CustomerID    uint   `json:"customer_id"`
	AdvanceAmount string `json:"advance_amount"`
	UpdatedAt     string `json:"updated_at"`
}

type AdvanceHistoryResponse struct {
	ID            uint   `json:"id"`
	EntryType     string `json:"entry_type"`
	AdvanceAmount string `json:"advance_amount"`
	BalanceAfter  string `json:"balance_after"`
	PaymentID     *uint  `json:"payment_id,omitempty"`
	PaymentDate   string `json:"payment_date"`
}

// AdvanceService manages the per-customer escrow balance. Debits happen
// only through PaymentService.ApplyPayment.
type AdvanceService interface {
	DepositAdvance(ctx context.Context, actor Actor, customerID uint, amount string) (AdvanceResponse, error)
	SetAdvance(ctx context.Context, actor Actor, customerID uint, amount string) (AdvanceResponse, error)
	GetAdvance(ctx context.Context, actor Actor, customerID uint) (AdvanceResponse, error)
	History(ctx context.Context, actor Actor, customerID uint, page, limit int) ([]AdvanceHistoryResponse, int64, error)
}

type advanceService struct {
	advanceRepo repository.AdvanceRepository
	partyRepo   repository.PartyRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	publisher   EventPublisher
	log         *zap.Logger
	now         func() time.Time
}

func NewAdvanceService(
	advanceRepo repository.AdvanceRepository,
	partyRepo repository.PartyRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	publisher EventPublisher,
	log *zap.Logger,
) AdvanceService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &advanceService{
		advanceRepo: advanceRepo,
		partyRepo:   partyRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		publisher:   publisher,
		log:         log.Named("advance"),
		now:         time.Now,
	}
}

func (s *advanceService) DepositAdvance(ctx context.Context, actor Actor, customerID uint, raw string) (AdvanceResponse, error) {
	if actor.Role == model.RoleCustomer {
		return AdvanceResponse{}, ErrForbidden
	}
	amount, err := parsePositive(raw)
	if err != nil {
		return AdvanceResponse{}, err
	}

	var adv *model.AdvancePayment
	var vendorID uint
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		customer, err := customerGuard(txCtx, s.partyRepo, actor, customerID)
		if err != nil {
			return err
		}
		vendorID = customer.VendorID

		if err := s.advanceRepo.Credit(txCtx, customerID, amount); err != nil {
			return storageFault("credit advance", err)
		}
		adv, err = s.advanceRepo.FindByCustomerForUpdate(txCtx, customerID)
		if err != nil {
			return storageFault("reload advance", err)
		}

		if err := s.advanceRepo.AppendHistory(txCtx, &model.AdvancePaymentHistory{
			CustomerID:    customerID,
			EntryType:     model.AdvanceDeposit,
			AdvanceAmount: amount,
			BalanceAfter:  adv.AdvanceAmount,
			PaymentDate:   s.now().UTC(),
		}); err != nil {
			return storageFault("append advance history", err)
		}
		if err := writeAudit(txCtx, s.auditRepo, actor, vendorID, model.ActionDepositAdvance, customerID, customer.Name, map[string]string{
			"amount":  amount.StringFixed(MoneyScale),
			"balance": adv.AdvanceAmount.StringFixed(MoneyScale),
		}); err != nil {
			return storageFault("write audit log", err)
		}
		return nil
	})
	if err != nil {
		logFailure(s.log, "deposit advance", err, zap.Uint("customer_id", customerID))
		return AdvanceResponse{}, passThrough("deposit advance", err)
	}

	s.log.Info("advance deposited", zap.Uint("customer_id", customerID), zap.String("amount", amount.StringFixed(MoneyScale)))
	resp := toAdvanceResponse(*adv, s.now())
	s.publisher.Publish(vendorID, EventAdvanceChanged, resp)
	return resp, nil
}

func (s *advanceService) SetAdvance(ctx context.Context, actor Actor, customerID uint, raw string) (AdvanceResponse, error) {
	if actor.Role != model.RoleVendor && !actor.isSystem() {
		return AdvanceResponse{}, ErrForbidden
	}
	amount, err := parsePositive(raw)
	if err != nil {
		return AdvanceResponse{}, err
	}

	var adv *model.AdvancePayment
	var vendorID uint
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		customer, err := customerGuard(txCtx, s.partyRepo, actor, customerID)
		if err != nil {
			return err
		}
		vendorID = customer.VendorID

		adv, err = s.advanceRepo.FindByCustomerForUpdate(txCtx, customerID)
		if err != nil {
			return lookupError(err, "lock advance", "no advance payment for customer")
		}
		previous := adv.AdvanceAmount
		adv.AdvanceAmount = amount
		if err := s.advanceRepo.SetAmount(txCtx, customerID, amount); err != nil {
			return storageFault("set advance", err)
		}

		if err := s.advanceRepo.AppendHistory(txCtx, &model.AdvancePaymentHistory{
			CustomerID:    customerID,
			EntryType:     model.AdvanceSet,
			AdvanceAmount: amount,
			BalanceAfter:  amount,
			PaymentDate:   s.now().UTC(),
		}); err != nil {
			return storageFault("append advance history", err)
		}
		if err := writeAudit(txCtx, s.auditRepo, actor, vendorID, model.ActionSetAdvance, customerID, customer.Name, map[string]string{
			"previous": previous.StringFixed(MoneyScale),
			"balance":  amount.StringFixed(MoneyScale),
		}); err != nil {
			return storageFault("write audit log", err)
		}
		return nil
	})
	if err != nil {
		logFailure(s.log, "set advance", err, zap.Uint("customer_id", customerID))
		return AdvanceResponse{}, passThrough("set advance", err)
	}

	s.log.Info("advance overwritten", zap.Uint("customer_id", customerID), zap.String("amount", amount.StringFixed(MoneyScale)))
	resp := toAdvanceResponse(*adv, s.now())
	s.publisher.Publish(vendorID, EventAdvanceChanged, resp)
	return resp, nil
}

func (s *advanceService) GetAdvance(ctx context.Context, actor Actor, customerID uint) (AdvanceResponse, error) {
	if _, err := customerGuard(ctx, s.partyRepo, actor, customerID); err != nil {
		return AdvanceResponse{}, err
	}
	adv, err := s.advanceRepo.FindByCustomer(ctx, customerID)
	if err != nil {
		return AdvanceResponse{}, lookupError(err, "find advance", "no advance payment for customer")
	}
	return toAdvanceResponse(*adv, adv.UpdatedAt), nil
}

func (s *advanceService) History(ctx context.Context, actor Actor, customerID uint, page, limit int) ([]AdvanceHistoryResponse, int64, error) {
	if _, err := customerGuard(ctx, s.partyRepo, actor, customerID); err != nil {
		return nil, 0, err
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	entries, total, err := s.advanceRepo.ListHistory(ctx, customerID, page, limit)
	if err != nil {
		return nil, 0, storageFault("list advance history", err)
	}
	out := make([]AdvanceHistoryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AdvanceHistoryResponse{
			ID:            e.ID,
			EntryType:     e.EntryType,
			AdvanceAmount: e.AdvanceAmount.StringFixed(MoneyScale),
			BalanceAfter:  e.BalanceAfter.StringFixed(MoneyScale),
			PaymentID:     e.PaymentID,
			PaymentDate:   e.PaymentDate.Format(time.RFC3339),
		})
	}
	return out, total, nil
}

func toAdvanceResponse(adv model.AdvancePayment, updatedAt time.Time) AdvanceResponse {
	return AdvanceResponse{
		CustomerID:    adv.CustomerID,
		AdvanceAmount: adv.AdvanceAmount.StringFixed(MoneyScale),
		UpdatedAt:     updatedAt.UTC().Format(time.RFC3339),
	}
}

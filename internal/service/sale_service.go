package service

import (
	"context"
	"time"

	"vendorledger/internal/model"
	"vendorledger/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// --- DTOs ---

type RecordSaleRequest struct {
	CustomerID   uint   `json:"customer_id" binding:"required"`
	ProductID    uint   `json:"product_id" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required,min=1"`
	PricePerUnit string `json:"price_per_unit" binding:"omitempty,decimal_amount"`
	SaleDate     string `json:"sale_date" binding:"omitempty,datetime=2006-01-02"`
}

// CorrectSaleRequest changes only the fields that are set.
type CorrectSaleRequest struct {
	Quantity     *int    `json:"quantity" binding:"omitempty,min=1"`
	PricePerUnit *string `json:"price_per_unit" binding:"omitempty,decimal_amount"`
	SaleDate     *string `json:"sale_date" binding:"omitempty,datetime=2006-01-02"`
}

type SaleResponse struct {
	ID               uint   `json:"id"`
	CustomerID       uint   `json:"customer_id"`
	ProductID        uint   `json:"product_id"`
	Quantity         int    `json:"quantity"`
	PricePerUnit     string `json:"price_per_unit"`
	TotalAmount      string `json:"total_amount"`
	SaleDate         string `json:"sale_date"`
	InvoiceGenerated bool   `json:"invoice_generated"`
}

type MonthlySalesResponse struct {
	CustomerID  uint                       `json:"customer_id"`
	Month       int                        `json:"month"`
	Year        int                        `json:"year"`
	TotalAmount string                     `json:"total_amount"`
	Sales       []repository.SaleReportRow `json:"sales"`
}

// --- Interface ---

type SaleService interface {
	RecordSale(ctx context.Context, actor Actor, req RecordSaleRequest) (SaleResponse, error)
	CorrectSale(ctx context.Context, actor Actor, saleID uint, req CorrectSaleRequest) (SaleResponse, error)
	DeleteSale(ctx context.Context, actor Actor, saleID uint) error
	CustomerMonthlySales(ctx context.Context, actor Actor, customerID uint, month, year int) (MonthlySalesResponse, error)
}

type saleService struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	partyRepo   repository.PartyRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	publisher   EventPublisher
	log         *zap.Logger
	now         func() time.Time
}

func NewSaleService(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	partyRepo repository.PartyRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	publisher EventPublisher,
	log *zap.Logger,
) SaleService {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &saleService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		partyRepo:   partyRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		publisher:   publisher,
		log:         log.Named("sale"),
		now:         time.Now,
	}
}

func parseSaleDate(raw string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, newError(ErrInvalidInput, "sale_date must be YYYY-MM-DD")
	}
	return d, nil
}

// --- Implementation ---

func (s *saleService) RecordSale(ctx context.Context, actor Actor, req RecordSaleRequest) (SaleResponse, error) {
	if actor.Role != model.RoleVendor && actor.Role != model.RoleEmployee {
		return SaleResponse{}, ErrForbidden
	}
	if req.Quantity <= 0 {
		return SaleResponse{}, newError(ErrInvalidInput, "quantity must be at least 1")
	}
	saleDate := s.now().UTC().Truncate(24 * time.Hour)
	if req.SaleDate != "" {
		d, err := parseSaleDate(req.SaleDate)
		if err != nil {
			return SaleResponse{}, err
		}
		saleDate = d
	}

	var sale model.Sale
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		customer, err := customerGuard(txCtx, s.partyRepo, actor, req.CustomerID)
		if err != nil {
			return err
		}
		product, err := s.productRepo.FindByID(txCtx, req.ProductID)
		if err != nil {
			return lookupError(err, "find product", "product not found")
		}
		if product.VendorID != actor.VendorID {
			return newError(ErrNotFound, "product not found")
		}
		if product.Status != model.StatusActive {
			return newError(ErrInvalidState, "product %s is not active", product.Name)
		}

		price := product.Price
		if req.PricePerUnit != "" {
			price, err = parsePositive(req.PricePerUnit)
			if err != nil {
				return err
			}
		}

		sale = model.Sale{
			VendorID:      customer.VendorID,
			CustomerID:    customer.ID,
			ProductID:     product.ID,
			Quantity:      req.Quantity,
			PricePerUnit:  price,
			TotalAmount:   model.LineTotal(req.Quantity, price),
			SaleDate:      saleDate,
			CreatedBy:     actor.ID,
			CreatedByRole: actor.Role,
		}
		if err := s.saleRepo.Create(txCtx, &sale); err != nil {
			return storageFault("create sale", err)
		}

		if err := writeAudit(txCtx, s.auditRepo, actor, customer.VendorID, model.ActionRecordSale, sale.ID, product.Name, map[string]any{
			"customer_id":  customer.ID,
			"quantity":     sale.Quantity,
			"total_amount": sale.TotalAmount.StringFixed(MoneyScale),
		}); err != nil {
			return storageFault("write audit log", err)
		}
		return nil
	})
	if err != nil {
		logFailure(s.log, "record sale", err, zap.Uint("customer_id", req.CustomerID))
		return SaleResponse{}, passThrough("record sale", err)
	}

	resp := toSaleResponse(sale)
	s.publisher.Publish(sale.VendorID, EventSaleRecorded, resp)
	return resp, nil
}

func (s *saleService) CorrectSale(ctx context.Context, actor Actor, saleID uint, req CorrectSaleRequest) (SaleResponse, error) {
	if actor.Role != model.RoleVendor && actor.Role != model.RoleEmployee {
		return SaleResponse{}, ErrForbidden
	}

	var sale *model.Sale
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		sale, err = s.lockUnbilled(txCtx, actor, saleID)
		if err != nil {
			return err
		}

		before := sale.TotalAmount
		if req.Quantity != nil {
			if *req.Quantity <= 0 {
				return newError(ErrInvalidInput, "quantity must be at least 1")
			}
			sale.Quantity = *req.Quantity
		}
		if req.PricePerUnit != nil {
			price, err := parsePositive(*req.PricePerUnit)
			if err != nil {
				return err
			}
			sale.PricePerUnit = price
		}
		if req.SaleDate != nil {
			d, err := parseSaleDate(*req.SaleDate)
			if err != nil {
				return err
			}
			sale.SaleDate = d
		}
		sale.TotalAmount = model.LineTotal(sale.Quantity, sale.PricePerUnit)

		if err := s.saleRepo.Update(txCtx, sale); err != nil {
			return storageFault("update sale", err)
		}
		if err := writeAudit(txCtx, s.auditRepo, actor, sale.VendorID, model.ActionCorrectSale, sale.ID, "", map[string]string{
			"before": before.StringFixed(MoneyScale),
			"after":  sale.TotalAmount.StringFixed(MoneyScale),
		}); err != nil {
			return storageFault("write audit log", err)
		}
		return nil
	})
	if err != nil {
		logFailure(s.log, "correct sale", err, zap.Uint("sale_id", saleID))
		return SaleResponse{}, passThrough("correct sale", err)
	}
	return toSaleResponse(*sale), nil
}

func (s *saleService) DeleteSale(ctx context.Context, actor Actor, saleID uint) error {
	if actor.Role != model.RoleVendor {
		return ErrForbidden
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		sale, err := s.lockUnbilled(txCtx, actor, saleID)
		if err != nil {
			return err
		}
		if err := s.saleRepo.Delete(txCtx, sale.ID); err != nil {
			return storageFault("delete sale", err)
		}
		if err := writeAudit(txCtx, s.auditRepo, actor, sale.VendorID, model.ActionDeleteSale, sale.ID, "", map[string]any{
			"customer_id":  sale.CustomerID,
			"total_amount": sale.TotalAmount.StringFixed(MoneyScale),
		}); err != nil {
			return storageFault("write audit log", err)
		}
		return nil
	})
	if err != nil {
		logFailure(s.log, "delete sale", err, zap.Uint("sale_id", saleID))
		return passThrough("delete sale", err)
	}
	s.log.Info("sale deleted", zap.Uint("sale_id", saleID))
	return nil
}

// lockUnbilled locks a sale of the actor's vendor that no invoice detail references yet.
func (s *saleService) lockUnbilled(ctx context.Context, actor Actor, saleID uint) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByIDForUpdate(ctx, saleID)
	if err != nil {
		return nil, lookupError(err, "lock sale", "sale not found")
	}
	if sale.VendorID != actor.VendorID {
		return nil, newError(ErrNotFound, "sale not found")
	}
	billed, err := s.saleRepo.BilledSaleIDs(ctx, []uint{sale.ID})
	if err != nil {
		return nil, storageFault("check billed sales", err)
	}
	if billed[sale.ID] {
		return nil, newError(ErrInvalidState, "sale %d is already invoiced", sale.ID)
	}
	return sale, nil
}

func (s *saleService) CustomerMonthlySales(ctx context.Context, actor Actor, customerID uint, month, year int) (MonthlySalesResponse, error) {
	start, end, err := BillingPeriod(month, year)
	if err != nil {
		return MonthlySalesResponse{}, err
	}
	if _, err := customerGuard(ctx, s.partyRepo, actor, customerID); err != nil {
		return MonthlySalesResponse{}, err
	}

	rows, err := s.saleRepo.MonthlyReport(ctx, customerID, start, end)
	if err != nil {
		return MonthlySalesResponse{}, storageFault("monthly sales", err)
	}
	if len(rows) == 0 {
		return MonthlySalesResponse{}, newError(ErrNotFound, "no sales in period")
	}

	total := decimal.Zero
	for i, row := range rows {
		amount, err := decimal.NewFromString(row.TotalAmount)
		if err != nil {
			return MonthlySalesResponse{}, storageFault("parse sale amount", err)
		}
		price, err := decimal.NewFromString(row.PricePerUnit)
		if err != nil {
			return MonthlySalesResponse{}, storageFault("parse sale price", err)
		}
		rows[i].TotalAmount = amount.StringFixed(MoneyScale)
		rows[i].PricePerUnit = price.StringFixed(MoneyScale)
		total = total.Add(amount)
	}

	return MonthlySalesResponse{
		CustomerID:  customerID,
		Month:       month,
		Year:        year,
		TotalAmount: total.StringFixed(MoneyScale),
		Sales:       rows,
	}, nil
}

func toSaleResponse(s model.Sale) SaleResponse {
	return SaleResponse{
		ID:               s.ID,
		CustomerID:       s.CustomerID,
		ProductID:        s.ProductID,
		Quantity:         s.Quantity,
		PricePerUnit:     s.PricePerUnit.StringFixed(MoneyScale),
		TotalAmount:      s.TotalAmount.StringFixed(MoneyScale),
		SaleDate:         s.SaleDate.Format("2006-01-02"),
		InvoiceGenerated: s.InvoiceGenerated,
	}
}

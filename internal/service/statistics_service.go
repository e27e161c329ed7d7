package service

import (
	"context"
	"time"

	"vendorledger/internal/model"
	"vendorledger/internal/repository"

	"github.com/shopspring/decimal"
)

type StatisticsService interface {
	// Dashboard summarises the vendor's book for the previous UTC day.
	Dashboard(ctx context.Context, actor Actor) (model.DashboardResponse, error)
}

type statisticsService struct {
	repo repository.StatisticsRepository
	now  func() time.Time
}

func NewStatisticsService(repo repository.StatisticsRepository) StatisticsService {
	return &statisticsService{repo: repo, now: time.Now}
}

func (s *statisticsService) Dashboard(ctx context.Context, actor Actor) (model.DashboardResponse, error) {
	if actor.Role != model.RoleVendor {
		return model.DashboardResponse{}, ErrForbidden
	}
	vendorID := actor.VendorID

	today := s.now().UTC().Truncate(24 * time.Hour)
	yesterday := today.AddDate(0, 0, -1)

	var resp model.DashboardResponse
	resp.Day = yesterday

	var err error
	if resp.ActiveCustomers, err = s.repo.CountActiveCustomers(ctx, vendorID); err != nil {
		return resp, storageFault("count customers", err)
	}
	if resp.ActiveProducts, err = s.repo.CountActiveProducts(ctx, vendorID); err != nil {
		return resp, storageFault("count products", err)
	}

	sales, err := s.repo.SalesTotal(ctx, vendorID, yesterday, today)
	if err != nil {
		return resp, storageFault("sum sales", err)
	}
	if resp.YesterdaySales, err = money(sales); err != nil {
		return resp, storageFault("parse sales total", err)
	}

	top, err := s.repo.TopProduct(ctx, vendorID, yesterday, today)
	if err != nil {
		return resp, storageFault("top product", err)
	}
	if top != nil {
		value, err := money(top.TotalValue)
		if err != nil {
			return resp, storageFault("parse product total", err)
		}
		resp.TopProduct = &model.ProductRanking{
			ProductID:     top.ProductID,
			ProductName:   top.ProductName,
			TotalQuantity: top.TotalQuantity,
			TotalValue:    value,
		}
	}

	outstanding, err := s.repo.OutstandingTotal(ctx, vendorID)
	if err != nil {
		return resp, storageFault("sum outstanding", err)
	}
	if resp.OutstandingAmount, err = money(outstanding); err != nil {
		return resp, storageFault("parse outstanding", err)
	}

	return resp, nil
}

// money normalises a decimal rendered by the database to two places.
func money(raw string) (string, error) {
	if raw == "" {
		return decimal.Zero.StringFixed(MoneyScale), nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return "", err
	}
	return d.StringFixed(MoneyScale), nil
}

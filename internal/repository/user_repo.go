package repository

import (
	"context"

	"vendorledger/internal/model"

	"gorm.io/gorm"
)

// PartyRepository gives read access to vendors, customers and employees,
// plus vendor registration.
type PartyRepository interface {
	CreateVendor(ctx context.Context, vendor *model.Vendor) error
	VendorExists(ctx context.Context, email, mobile string) (bool, error)
	FindVendorByID(ctx context.Context, id uint) (*model.Vendor, error)
	FindVendorByMobile(ctx context.Context, mobile string) (*model.Vendor, error)
	FindCustomerByID(ctx context.Context, id uint) (*model.Customer, error)
	FindCustomerByMobile(ctx context.Context, mobile string) (*model.Customer, error)
	FindEmployeeByID(ctx context.Context, id uint) (*model.Employee, error)
	FindEmployeeByMobile(ctx context.Context, mobile string) (*model.Employee, error)
}

type partyRepository struct {
	db *gorm.DB
}

// NewPartyRepository returns a new instance of PartyRepository
func NewPartyRepository(db *gorm.DB) PartyRepository {
	return &partyRepository{db: db}
}

func (r *partyRepository) CreateVendor(ctx context.Context, vendor *model.Vendor) error {
	return GetDB(ctx, r.db).Create(vendor).Error
}

func (r *partyRepository) VendorExists(ctx context.Context, email, mobile string) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Vendor{}).
		Where("email = ? OR mobile = ?", email, mobile).
		Count(&count).Error
	return count > 0, err
}

func (r *partyRepository) FindVendorByID(ctx context.Context, id uint) (*model.Vendor, error) {
	var vendor model.Vendor
	if err := GetDB(ctx, r.db).First(&vendor, id).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *partyRepository) FindVendorByMobile(ctx context.Context, mobile string) (*model.Vendor, error) {
	var vendor model.Vendor
	if err := GetDB(ctx, r.db).First(&vendor, "mobile = ?", mobile).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *partyRepository) FindCustomerByID(ctx context.Context, id uint) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).First(&customer, id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *partyRepository) FindCustomerByMobile(ctx context.Context, mobile string) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).Where("mobile = ? AND status = ?", mobile, model.StatusActive).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *partyRepository) FindEmployeeByID(ctx context.Context, id uint) (*model.Employee, error) {
	var employee model.Employee
	if err := GetDB(ctx, r.db).First(&employee, id).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *partyRepository) FindEmployeeByMobile(ctx context.Context, mobile string) (*model.Employee, error) {
	var employee model.Employee
	if err := GetDB(ctx, r.db).Where("mobile = ? AND status = ?", mobile, model.StatusActive).First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

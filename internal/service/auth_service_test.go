package service

import (
	"testing"
	"time"

	"vendorledger/internal/auth"
	"vendorledger/internal/model"
	"vendorledger/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthService(t *testing.T, h *harness) (AuthService, *auth.TokenManager) {
	t.Helper()
	tokens, err := auth.NewTokenManager("test-secret", time.Hour, "vendorledger")
	require.NoError(t, err)
	svc := NewAuthService(
		repository.NewPartyRepository(h.db),
		repository.NewAuditRepository(h.db),
		repository.NewTransactionManager(h.db),
		tokens,
		zap.NewNop(),
	)
	return svc, tokens
}

func TestRegisterVendor_ThenLogin(t *testing.T) {
	h := newHarness(t)
	svc, tokens := newAuthService(t, h)

	reg, err := svc.RegisterVendor(h.ctx, RegisterVendorRequest{
		Name: "Gopal Stores", Email: "Gopal@Example.com", Mobile: "9222222222", Password: "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleVendor, reg.Role)
	assert.Equal(t, reg.UserID, reg.VendorID)

	claims, err := tokens.Parse(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.VendorID, claims.VendorID)

	var stored model.Vendor
	require.NoError(t, h.db.First(&stored, reg.UserID).Error)
	assert.Equal(t, "gopal@example.com", stored.Email)
	assert.NotEqual(t, "hunter22", stored.PasswordHash)

	login, err := svc.Login(h.ctx, LoginRequest{Mobile: "9222222222", UserType: model.RoleVendor, Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, login.UserID)

	_, err = svc.Login(h.ctx, LoginRequest{Mobile: "9222222222", UserType: model.RoleVendor, Password: "wrong"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRegisterVendor_Duplicate(t *testing.T) {
	h := newHarness(t)
	svc, _ := newAuthService(t, h)

	_, err := svc.RegisterVendor(h.ctx, RegisterVendorRequest{
		Name: "Dup", Email: "new@example.com", Mobile: h.f.Vendor.Mobile, Password: "secret1",
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestLogin_EmployeeAndCustomerByMobile(t *testing.T) {
	h := newHarness(t)
	svc, _ := newAuthService(t, h)

	emp, err := svc.Login(h.ctx, LoginRequest{Mobile: h.f.Employee.Mobile, UserType: model.RoleEmployee})
	require.NoError(t, err)
	assert.Equal(t, h.f.Employee.ID, emp.UserID)
	assert.Equal(t, h.f.Vendor.ID, emp.VendorID)

	// password is not checked for employees
	emp, err = svc.Login(h.ctx, LoginRequest{Mobile: h.f.Employee.Mobile, UserType: model.RoleEmployee, Password: "anything"})
	require.NoError(t, err)
	assert.Equal(t, h.f.Employee.ID, emp.UserID)

	cust, err := svc.Login(h.ctx, LoginRequest{Mobile: h.f.Customer.Mobile, UserType: model.RoleCustomer})
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, cust.Role)

	_, err = svc.Login(h.ctx, LoginRequest{Mobile: "0000000000", UserType: model.RoleCustomer})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Login(h.ctx, LoginRequest{Mobile: h.f.Customer.Mobile, UserType: "admin"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

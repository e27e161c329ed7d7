package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"vendorledger/internal/model"
	"vendorledger/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DTOs for Request validation
type RegisterVendorRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Mobile       string `json:"mobile" binding:"required,min=8,max=20"`
	Password     string `json:"password" binding:"required,min=6"`
	Address      string `json:"address"`
	BusinessName string `json:"business_name"`
	GSTNumber    string `json:"gst_number"`
}

type LoginRequest struct {
	Mobile   string `json:"mobile" binding:"required"`
	UserType string `json:"user_type" binding:"required,oneof=vendor employee customer"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	UserID    uint   `json:"user_id"`
	Role      string `json:"role"`
	VendorID  uint   `json:"vendor_id"`
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(userID uint, role string, vendorID uint) (string, time.Time, error)
}

type AuthService interface {
	RegisterVendor(ctx context.Context, req RegisterVendorRequest) (TokenResponse, error)
	// Login issues a token for a vendor, employee or customer. Only vendors
	// present a password. Employees and customers are identified by mobile
	// number alone, so anyone who knows a registered mobile can act as that
	// party. Deployments exposing /login publicly should front it with an
	// OTP or similar second factor.
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
}

type authService struct {
	partyRepo repository.PartyRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	tokens    TokenIssuer
	log       *zap.Logger
}

func NewAuthService(
	partyRepo repository.PartyRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	tokens TokenIssuer,
	log *zap.Logger,
) AuthService {
	return &authService{
		partyRepo: partyRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		tokens:    tokens,
		log:       log.Named("auth"),
	}
}

func (s *authService) RegisterVendor(ctx context.Context, req RegisterVendorRequest) (TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	mobile := strings.TrimSpace(req.Mobile)

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return TokenResponse{}, newError(ErrInvalidInput, "password cannot be used")
	}

	vendor := model.Vendor{
		Name:         req.Name,
		Email:        email,
		Mobile:       mobile,
		Address:      req.Address,
		BusinessName: req.BusinessName,
		GSTNumber:    req.GSTNumber,
		PasswordHash: string(hashed),
		Status:       model.StatusActive,
	}
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		exists, err := s.partyRepo.VendorExists(txCtx, email, mobile)
		if err != nil {
			return storageFault("check vendor", err)
		}
		if exists {
			return newError(ErrConflict, "vendor with this email or mobile already exists")
		}
		if err := s.partyRepo.CreateVendor(txCtx, &vendor); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return newError(ErrConflict, "vendor with this email or mobile already exists")
			}
			return storageFault("create vendor", err)
		}
		actor := Actor{ID: vendor.ID, Role: model.RoleVendor, VendorID: vendor.ID}
		if err := writeAudit(txCtx, s.auditRepo, actor, vendor.ID, model.ActionRegisterVendor, vendor.ID, vendor.Name, map[string]string{
			"email":  email,
			"mobile": mobile,
		}); err != nil {
			return storageFault("write audit log", err)
		}
		return nil
	})
	if err != nil {
		logFailure(s.log, "register vendor", err, zap.String("mobile", mobile))
		return TokenResponse{}, passThrough("register vendor", err)
	}

	s.log.Info("vendor registered", zap.Uint("vendor_id", vendor.ID))
	return s.issue(vendor.ID, model.RoleVendor, vendor.ID)
}

// Login checks the bcrypt password for vendors. Employees and customers are
// looked up by mobile only and any password they send is ignored.
func (s *authService) Login(ctx context.Context, req LoginRequest) (TokenResponse, error) {
	mobile := strings.TrimSpace(req.Mobile)
	invalid := newError(ErrUnauthorized, "invalid mobile or password")

	switch req.UserType {
	case model.RoleVendor:
		vendor, err := s.partyRepo.FindVendorByMobile(ctx, mobile)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return TokenResponse{}, invalid
			}
			return TokenResponse{}, storageFault("find vendor", err)
		}
		if vendor.Status != model.StatusActive {
			return TokenResponse{}, invalid
		}
		if err := bcrypt.CompareHashAndPassword([]byte(vendor.PasswordHash), []byte(req.Password)); err != nil {
			return TokenResponse{}, invalid
		}
		return s.issue(vendor.ID, model.RoleVendor, vendor.ID)

	case model.RoleEmployee:
		employee, err := s.partyRepo.FindEmployeeByMobile(ctx, mobile)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return TokenResponse{}, invalid
			}
			return TokenResponse{}, storageFault("find employee", err)
		}
		return s.issue(employee.ID, model.RoleEmployee, employee.VendorID)

	case model.RoleCustomer:
		customer, err := s.partyRepo.FindCustomerByMobile(ctx, mobile)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return TokenResponse{}, invalid
			}
			return TokenResponse{}, storageFault("find customer", err)
		}
		return s.issue(customer.ID, model.RoleCustomer, customer.VendorID)
	}
	return TokenResponse{}, newError(ErrInvalidInput, "user_type must be vendor, employee or customer")
}

func (s *authService) issue(userID uint, role string, vendorID uint) (TokenResponse, error) {
	token, expires, err := s.tokens.Issue(userID, role, vendorID)
	if err != nil {
		s.log.Error("token signing failed", zap.Error(err))
		return TokenResponse{}, &DomainError{Code: ErrStorageFault.Code, Message: ErrStorageFault.Message, cause: err}
	}
	return TokenResponse{
		Token:     token,
		ExpiresAt: expires.UTC().Format(time.RFC3339),
		UserID:    userID,
		Role:      role,
		VendorID:  vendorID,
	}, nil
}

package service

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DomainError is a classified failure. Two DomainErrors match under errors.Is
// when their codes match, so call sites can attach their own message.
type DomainError struct {
	Code    string
	Message string
	cause   error
}

func (e *DomainError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.cause
}

func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrNotFound                   = &DomainError{Code: "NOT_FOUND", Message: "not found"}
	ErrAlreadySettled             = &DomainError{Code: "ALREADY_SETTLED", Message: "invoice is already fully paid"}
	ErrOverpaymentRejected        = &DomainError{Code: "OVERPAYMENT_REJECTED", Message: "payment exceeds outstanding amount"}
	ErrInsufficientAdvanceBalance = &DomainError{Code: "INSUFFICIENT_ADVANCE_BALANCE", Message: "insufficient advance balance"}
	ErrInvalidAmount              = &DomainError{Code: "INVALID_AMOUNT", Message: "amount must be greater than zero"}
	ErrStorageFault               = &DomainError{Code: "STORAGE_FAULT", Message: "internal storage error"}
	ErrInvalidInput               = &DomainError{Code: "INVALID_INPUT", Message: "invalid input"}
	ErrInvalidState               = &DomainError{Code: "INVALID_STATE", Message: "operation not allowed in current state"}
	ErrConflict                   = &DomainError{Code: "CONFLICT", Message: "already exists"}
	ErrForbidden                  = &DomainError{Code: "FORBIDDEN", Message: "access denied"}
	ErrUnauthorized               = &DomainError{Code: "UNAUTHORIZED", Message: "invalid credentials"}
)

// newError returns a copy of kind carrying a specific message.
func newError(kind *DomainError, format string, args ...any) *DomainError {
	return &DomainError{Code: kind.Code, Message: fmt.Sprintf(format, args...)}
}

// storageFault wraps a driver/ORM error. The cause is kept for logs, never shown to clients.
func storageFault(op string, err error) *DomainError {
	return &DomainError{Code: ErrStorageFault.Code, Message: ErrStorageFault.Message, cause: fmt.Errorf("%s: %w", op, err)}
}

// lookupError maps gorm.ErrRecordNotFound to a NotFound with msg and anything else to a storage fault.
func lookupError(err error, op, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newError(ErrNotFound, "%s", msg)
	}
	return storageFault(op, err)
}

// passThrough keeps domain errors as-is and classifies everything else as a storage fault.
func passThrough(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return err
	}
	return storageFault(op, err)
}

// logFailure logs storage faults at error level; business rejections only at debug.
func logFailure(log *zap.Logger, op string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("op", op), zap.Error(err))
	var de *DomainError
	if errors.As(err, &de) && de.Code != ErrStorageFault.Code {
		log.Debug("request rejected", fields...)
		return
	}
	log.Error("ledger operation failed", fields...)
}

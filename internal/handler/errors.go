package handler

import (
	"errors"
	"net/http"
	"strconv"

	"vendorledger/internal/middleware"
	"vendorledger/internal/service"
	"vendorledger/pkg/response"

	"github.com/gin-gonic/gin"
)

var statusByCode = map[string]int{
	service.ErrNotFound.Code:                   http.StatusNotFound,
	service.ErrAlreadySettled.Code:             http.StatusConflict,
	service.ErrConflict.Code:                   http.StatusConflict,
	service.ErrInvalidState.Code:               http.StatusConflict,
	service.ErrOverpaymentRejected.Code:        http.StatusUnprocessableEntity,
	service.ErrInsufficientAdvanceBalance.Code: http.StatusUnprocessableEntity,
	service.ErrInvalidAmount.Code:              http.StatusBadRequest,
	service.ErrInvalidInput.Code:               http.StatusBadRequest,
	service.ErrUnauthorized.Code:               http.StatusUnauthorized,
	service.ErrForbidden.Code:                  http.StatusForbidden,
	service.ErrStorageFault.Code:               http.StatusInternalServerError,
}

// respondError writes err as the standard envelope. Storage faults never leak their cause.
func respondError(c *gin.Context, err error) {
	var de *service.DomainError
	if !errors.As(err, &de) {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, response.ErrorWithCode(http.StatusInternalServerError, service.ErrStorageFault.Code, service.ErrStorageFault.Message))
		return
	}
	status, ok := statusByCode[de.Code]
	if !ok {
		status = http.StatusInternalServerError
	}
	msg := de.Message
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = service.ErrStorageFault.Message
	}
	c.JSON(status, response.ErrorWithCode(status, de.Code, msg))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, response.ErrorWithCode(http.StatusBadRequest, service.ErrInvalidInput.Code, msg))
}

// actor reads the authenticated caller; routes without RequireRole never call it.
func actor(c *gin.Context) (service.Actor, bool) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
	}
	return a, ok
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func uintQuery(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

package handler

import (
	"context"
	"net/http"

	"vendorledger/internal/middleware"
	"vendorledger/internal/model"
	"vendorledger/internal/service"
	"vendorledger/pkg/pagination"
	"vendorledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type AdvanceHandler struct {
	advanceService service.AdvanceService
	tokens         middleware.TokenParser
}

func NewAdvanceHandler(advanceService service.AdvanceService, tokens middleware.TokenParser) *AdvanceHandler {
	return &AdvanceHandler{advanceService: advanceService, tokens: tokens}
}

func (h *AdvanceHandler) RegisterRoutes(router *gin.RouterGroup) {
	anyone := middleware.RequireRole(h.tokens, model.RoleVendor, model.RoleEmployee, model.RoleCustomer)

	advance := router.Group("/api/customers/:id/advance")
	{
		advance.POST("", middleware.RequireRole(h.tokens, model.RoleVendor, model.RoleEmployee), h.Deposit)
		advance.PUT("", middleware.RequireRole(h.tokens, model.RoleVendor), h.Set)
		advance.GET("", anyone, h.Get)
		advance.GET("/history", anyone, h.History)
	}
}

// Deposit adds to a customer's advance balance, creating it if needed
// @Summary      Deposit advance
// @Tags         advance
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                           true  "Customer ID"
// @Param        payload  body      service.AdvanceAmountRequest  true  "Amount"
// @Success      200      {object}  response.Response{data=service.AdvanceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/customers/{id}/advance [post]
func (h *AdvanceHandler) Deposit(c *gin.Context) {
	h.mutate(c, h.advanceService.DepositAdvance)
}

// Set overwrites an existing advance balance
// @Summary      Set advance
// @Tags         advance
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                           true  "Customer ID"
// @Param        payload  body      service.AdvanceAmountRequest  true  "Amount"
// @Success      200      {object}  response.Response{data=service.AdvanceResponse}
// @Failure      404      {object}  response.Response "No advance balance yet"
// @Router       /api/customers/{id}/advance [put]
func (h *AdvanceHandler) Set(c *gin.Context) {
	h.mutate(c, h.advanceService.SetAdvance)
}

type advanceMutation func(ctx context.Context, actor service.Actor, customerID uint, amount string) (service.AdvanceResponse, error)

func (h *AdvanceHandler) mutate(c *gin.Context, op advanceMutation) {
	a, ok := actor(c)
	if !ok {
		return
	}
	customerID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req service.AdvanceAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	adv, err := op(c.Request.Context(), a, customerID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, adv))
}

// Get returns the customer's advance balance
// @Summary      Get advance
// @Tags         advance
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Customer ID"
// @Success      200  {object}  response.Response{data=service.AdvanceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/customers/{id}/advance [get]
func (h *AdvanceHandler) Get(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	customerID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	adv, err := h.advanceService.GetAdvance(c.Request.Context(), a, customerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, adv))
}

// History lists deposits, overwrites and debits, newest first
// @Summary      Advance history
// @Tags         advance
// @Security     BearerAuth
// @Produce      json
// @Param        id     path      int  true   "Customer ID"
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/customers/{id}/advance/history [get]
func (h *AdvanceHandler) History(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	customerID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	p := pagination.Parse(c)

	entries, total, err := h.advanceService.History(c.Request.Context(), a, customerID, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, p.Envelope("history", entries, total)))
}

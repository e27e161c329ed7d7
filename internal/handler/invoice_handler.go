package handler

import (
	"net/http"

	"vendorledger/internal/middleware"
	"vendorledger/internal/model"
	"vendorledger/internal/service"
	"vendorledger/pkg/pagination"
	"vendorledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
	paymentService service.PaymentService
	tokens         middleware.TokenParser
	idempotency    gin.HandlerFunc
}

// NewInvoiceHandler wires invoice and payment endpoints. idempotency guards payment creation.
func NewInvoiceHandler(invoiceService service.InvoiceService, paymentService service.PaymentService, tokens middleware.TokenParser, idempotency gin.HandlerFunc) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		paymentService: paymentService,
		tokens:         tokens,
		idempotency:    idempotency,
	}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(h.tokens, model.RoleVendor, model.RoleEmployee)
	anyone := middleware.RequireRole(h.tokens, model.RoleVendor, model.RoleEmployee, model.RoleCustomer)

	invoices := router.Group("/api/invoices")
	{
		invoices.POST("/generate", staff, h.GenerateInvoice)
		invoices.GET("", anyone, h.ListInvoices)
		invoices.GET("/:id", anyone, h.GetInvoice)
		invoices.GET("/:id/payments", anyone, h.ListPayments)

		pay := []gin.HandlerFunc{staff}
		if h.idempotency != nil {
			pay = append(pay, h.idempotency)
		}
		invoices.POST("/:id/payments", append(pay, h.ApplyPayment)...)
	}
}

// GenerateInvoice bills every unbilled sale of a customer in one month
// @Summary      Generate monthly invoice
// @Description  Creates one invoice for the customer's unbilled sales of the month. Calling it again reports already_billed.
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.GenerateInvoiceRequest  true  "Customer and period"
// @Success      201      {object}  response.Response{data=service.GenerateInvoiceResult}
// @Success      200      {object}  response.Response{data=service.GenerateInvoiceResult} "Already billed"
// @Failure      404      {object}  response.Response "Customer not found or no sales in period"
// @Router       /api/invoices/generate [post]
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req service.GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.invoiceService.GenerateInvoice(c.Request.Context(), a, req)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.AlreadyBilled {
		status = http.StatusOK
	}
	c.JSON(status, response.Success(status, result))
}

// ListInvoices returns a paginated list of invoices visible to the caller
// @Summary      List invoices
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        customer_id  query     int     false  "Filter by customer"
// @Param        status       query     string  false  "pending, partial or completed"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Success      200          {object}  response.Response{data=object}
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	customerID, ok := uintQuery(c, "customer_id")
	if !ok {
		return
	}
	status := c.Query("status")
	switch status {
	case "", model.InvoicePending, model.InvoicePartial, model.InvoiceCompleted:
	default:
		badRequest(c, "status must be pending, partial or completed")
		return
	}
	p := pagination.Parse(c)

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), a, service.InvoiceFilter{
		CustomerID: customerID,
		Status:     status,
		Page:       p.Page,
		Limit:      p.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, p.Envelope("invoices", invoices, total)))
}

// GetInvoice returns an invoice with its details, payments and due amount
// @Summary      View invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id           path      int  true   "Invoice ID"
// @Param        customer_id  query     int  false  "Expected customer"
// @Success      200          {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404          {object}  response.Response
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	customerID, ok := uintQuery(c, "customer_id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.ViewInvoice(c.Request.Context(), a, id, customerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// ApplyPayment records a payment and allocates it to the oldest unpaid details first
// @Summary      Apply payment
// @Description  Optional Idempotency-Key header rejects replays with 409.
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id               path      int                          true   "Invoice ID"
// @Param        Idempotency-Key  header    string                       false  "Client request key"
// @Param        payload          body      service.ApplyPaymentRequest  true   "Payment"
// @Success      201              {object}  response.Response{data=service.PaymentResult}
// @Failure      400              {object}  response.Response "Invalid amount"
// @Failure      404              {object}  response.Response
// @Failure      409              {object}  response.Response "Invoice already settled"
// @Failure      422              {object}  response.Response "Overpayment or insufficient advance"
// @Router       /api/invoices/{id}/payments [post]
func (h *InvoiceHandler) ApplyPayment(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req service.ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.paymentService.ApplyPayment(c.Request.Context(), a, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListPayments returns the payments recorded against an invoice
// @Summary      List invoice payments
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=[]service.PaymentResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id}/payments [get]
func (h *InvoiceHandler) ListPayments(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	payments, err := h.paymentService.ListPayments(c.Request.Context(), a, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payments))
}

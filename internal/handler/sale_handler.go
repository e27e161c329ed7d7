package handler

import (
	"net/http"
	"strconv"

	"vendorledger/internal/middleware"
	"vendorledger/internal/model"
	"vendorledger/internal/service"
	"vendorledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type SaleHandler struct {
	saleService service.SaleService
	tokens      middleware.TokenParser
}

func NewSaleHandler(saleService service.SaleService, tokens middleware.TokenParser) *SaleHandler {
	return &SaleHandler{saleService: saleService, tokens: tokens}
}

func (h *SaleHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(h.tokens, model.RoleVendor, model.RoleEmployee)
	anyone := middleware.RequireRole(h.tokens, model.RoleVendor, model.RoleEmployee, model.RoleCustomer)

	sales := router.Group("/api/sales")
	{
		sales.POST("", staff, h.RecordSale)
		sales.PUT("/:id", staff, h.CorrectSale)
		sales.DELETE("/:id", middleware.RequireRole(h.tokens, model.RoleVendor), h.DeleteSale)
	}
	router.GET("/api/customers/:id/sales", anyone, h.MonthlySales)
}

// RecordSale records a sale for one of the vendor's customers
// @Summary      Record sale
// @Tags         sales
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RecordSaleRequest  true  "Sale"
// @Success      201      {object}  response.Response{data=service.SaleResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/sales [post]
func (h *SaleHandler) RecordSale(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req service.RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	sale, err := h.saleService.RecordSale(c.Request.Context(), a, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, sale))
}

// CorrectSale changes quantity, price or date of a sale that is not invoiced yet
// @Summary      Correct sale
// @Tags         sales
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                         true  "Sale ID"
// @Param        payload  body      service.CorrectSaleRequest  true  "Changes"
// @Success      200      {object}  response.Response{data=service.SaleResponse}
// @Failure      409      {object}  response.Response "Sale already invoiced"
// @Router       /api/sales/{id} [put]
func (h *SaleHandler) CorrectSale(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req service.CorrectSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	sale, err := h.saleService.CorrectSale(c.Request.Context(), a, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sale))
}

// DeleteSale removes a sale that is not invoiced yet
// @Summary      Delete sale
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Sale ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response "Sale already invoiced"
// @Router       /api/sales/{id} [delete]
func (h *SaleHandler) DeleteSale(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.saleService.DeleteSale(c.Request.Context(), a, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "sale deleted"}))
}

// MonthlySales lists a customer's sales for one calendar month
// @Summary      Customer monthly sales
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        id     path      int  true  "Customer ID"
// @Param        month  query     int  true  "Month (1-12)"
// @Param        year   query     int  true  "Year"
// @Success      200    {object}  response.Response{data=service.MonthlySalesResponse}
// @Failure      404    {object}  response.Response "No sales in period"
// @Router       /api/customers/{id}/sales [get]
func (h *SaleHandler) MonthlySales(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	customerID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	month, err1 := strconv.Atoi(c.Query("month"))
	year, err2 := strconv.Atoi(c.Query("year"))
	if err1 != nil || err2 != nil {
		badRequest(c, "month and year are required")
		return
	}

	report, err := h.saleService.CustomerMonthlySales(c.Request.Context(), a, customerID, month, year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

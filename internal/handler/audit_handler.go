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

type AuditHandler struct {
	auditService service.AuditService
	tokens       middleware.TokenParser
}

func NewAuditHandler(auditService service.AuditService, tokens middleware.TokenParser) *AuditHandler {
	return &AuditHandler{auditService: auditService, tokens: tokens}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/audit-logs")
	group.Use(middleware.RequireRole(h.tokens, model.RoleVendor))
	{
		group.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs lists the vendor's audit trail, newest first
// @Summary      Get audit logs
// @Description  Invoice generation, payments, advance changes and sale corrections recorded for the vendor
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Router       /api/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	p := pagination.Parse(c)

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), a, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, p.Envelope("logs", logs, total)))
}

package handler

import (
	"net/http"

	"vendorledger/internal/middleware"
	"vendorledger/internal/model"
	"vendorledger/internal/service"
	"vendorledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
	tokens            middleware.TokenParser
}

func NewStatisticsHandler(statisticsService service.StatisticsService, tokens middleware.TokenParser) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService, tokens: tokens}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/dashboard", middleware.RequireRole(h.tokens, model.RoleVendor), h.GetDashboard)
}

// @Summary      Get vendor dashboard
// @Description  Previous day's sales, payments and outstanding dues for the vendor
// @Tags         statistics
// @Produce      json
// @Success      200 {object} response.Response{data=model.DashboardResponse}
// @Failure      401 {object} response.Response "Unauthorized"
// @Failure      403 {object} response.Response "Vendor only"
// @Security     BearerAuth
// @Router       /api/dashboard [get]
func (h *StatisticsHandler) GetDashboard(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	stats, err := h.statisticsService.Dashboard(c.Request.Context(), a)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

package handler

import (
	"net/http"

	"vendorledger/internal/middleware"
	"vendorledger/internal/service"
	"vendorledger/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	authService  service.AuthService
	secureCookie bool
}

// NewUserHandler sets up the routing dependencies for registration and login
func NewUserHandler(authService service.AuthService, secureCookie bool) *UserHandler {
	return &UserHandler{authService: authService, secureCookie: secureCookie}
}

// RegisterRoutes binds the public identity endpoints
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/register/vendor", h.RegisterVendor)
	router.POST("/login", h.Login)
}

// RegisterVendor creates a vendor account
// @Summary      Register vendor
// @Description  Creates a vendor with a bcrypt-hashed password and returns an access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterVendorRequest  true  "Vendor"
// @Success      201      {object}  response.Response{data=service.TokenResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /register/vendor [post]
func (h *UserHandler) RegisterVendor(c *gin.Context) {
	var req service.RegisterVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	token, err := h.authService.RegisterVendor(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetTokenCookie(c, token.Token, h.secureCookie)
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, token))
}

// Login authenticates a vendor, employee or customer
// @Summary      Login
// @Description  Vendors log in with mobile and password. Employees and customers log in with mobile only; no password is checked for them.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Credentials"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      401      {object}  response.Response
// @Router       /login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetTokenCookie(c, token.Token, h.secureCookie)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, token))
}

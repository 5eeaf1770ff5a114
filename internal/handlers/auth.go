// internal/handlers/auth.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/services"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

// CookieSettings controls the auth cookie written on login.
type CookieSettings struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	authService *services.AuthService
	cookie      CookieSettings
}

func NewAuthHandler(authService *services.AuthService, cookie CookieSettings) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
	}
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	h.setCookie(c, authResponse)
	utils.CreatedResponse(c, authResponse, i18n.KeyAuthRegisterSuccess)
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	h.setCookie(c, authResponse)
	utils.SuccessResponse(c, authResponse, i18n.KeyAuthLoginSuccess)
}

// POST /auth/logout
// Tokens are stateless; logging out only clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	utils.SuccessResponse(c, nil, i18n.KeyAuthLogoutSuccess)
}

// POST /auth/refresh-token
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	h.setCookie(c, authResponse)
	utils.SuccessResponse(c, authResponse, i18n.KeyAuthTokenRefreshed)
}

// POST /auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req services.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), &req); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, nil, i18n.KeyAuthPasswordResetSent)
}

// POST /auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req services.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), &req); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, nil, i18n.KeyAuthPasswordResetDone)
}

// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, user, "")
}

func (h *AuthHandler) setCookie(c *gin.Context, resp *services.AuthResponse) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, resp.AccessToken, resp.ExpiresIn, "/", "", h.cookie.Secure, true)
}

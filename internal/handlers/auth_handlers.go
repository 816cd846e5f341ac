package handlers

import (
	"net/http"

	"storeops/internal/middleware"
	"storeops/internal/models"
	"storeops/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandlers handles authentication HTTP requests
type AuthHandlers struct {
	authService services.AuthService
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

// Register godoc
//
//	@Summary	Register a company and its first admin
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		models.RegisterRequest	true	"Company and admin"
//	@Success	201		{object}	models.AuthResponse
//	@Failure	400		{object}	common.ErrorResponse
//	@Router		/auth/register [post]
func (h *AuthHandlers) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	resp, err := h.authService.Register(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login godoc
//
//	@Summary	Sign in with email and password
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		models.LoginRequest	true	"Credentials"
//	@Success	200		{object}	models.AuthResponse
//	@Failure	401		{object}	common.ErrorResponse
//	@Router		/auth/login [post]
func (h *AuthHandlers) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	resp, err := h.authService.Login(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh godoc
//
//	@Summary	Exchange a refresh token for a new token pair
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		models.RefreshTokenRequest	true	"Refresh token"
//	@Success	200		{object}	models.TokenResponse
//	@Failure	401		{object}	common.ErrorResponse
//	@Router		/auth/refresh [post]
func (h *AuthHandlers) Refresh(c echo.Context) error {
	var req models.RefreshTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	tokens, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tokens)
}

// Logout godoc
//
//	@Summary	Revoke the refresh token and the current access token
//	@Tags		auth
//	@Accept		json
//	@Param		request	body	models.LogoutRequest	false	"Refresh token"
//	@Success	204
//	@Security	BearerAuth
//	@Router		/auth/logout [post]
func (h *AuthHandlers) Logout(c echo.Context) error {
	var req models.LogoutRequest
	if c.Request().ContentLength > 0 {
		if err := c.Bind(&req); err != nil {
			return err
		}
	}
	if err := h.authService.Logout(c.Request().Context(), req.RefreshToken, middleware.ClaimsFromContext(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Me godoc
//
//	@Summary	Current user and tenant
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	models.AuthResponse
//	@Security	BearerAuth
//	@Router		/auth/me [get]
func (h *AuthHandlers) Me(c echo.Context) error {
	tenantID, userID, err := identity(c)
	if err != nil {
		return err
	}
	resp, err := h.authService.Me(c.Request().Context(), tenantID, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// ChangePassword godoc
//
//	@Summary	Change the current user's password
//	@Tags		auth
//	@Accept		json
//	@Param		request	body	models.ChangePasswordRequest	true	"Passwords"
//	@Success	204
//	@Failure	401	{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/auth/me/password [put]
func (h *AuthHandlers) ChangePassword(c echo.Context) error {
	tenantID, userID, err := identity(c)
	if err != nil {
		return err
	}
	var req models.ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.authService.ChangePassword(c.Request().Context(), tenantID, userID, &req); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

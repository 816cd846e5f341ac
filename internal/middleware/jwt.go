package middleware

import (
	"context"
	"errors"
	"fmt"

	"storeops/internal/common"
	"storeops/internal/services"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// ClaimsContextKey is where the parsed *services.TokenClaims live on the echo context.
const ClaimsContextKey = "claims"

// TokenVerifier validates access tokens and reports revoked ones.
type TokenVerifier interface {
	ValidateToken(token string) (*services.TokenClaims, error)
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// JWTMiddleware authenticates bearer tokens and puts the caller's identity on the request context.
func JWTMiddleware(verifier TokenVerifier) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: ClaimsContextKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			claims, err := verifier.ValidateToken(auth)
			if err != nil {
				return nil, err
			}
			revoked, err := verifier.IsRevoked(c.Request().Context(), claims.ID)
			if err != nil {
				return nil, fmt.Errorf("revocation check: %w", err)
			}
			if revoked {
				return nil, common.ErrInvalidToken.WithMessage("token has been revoked")
			}
			return claims, nil
		},
		SuccessHandler: func(c echo.Context) {
			claims, ok := c.Get(ClaimsContextKey).(*services.TokenClaims)
			if !ok {
				return
			}
			tenantID, _ := uuid.Parse(claims.TenantID)
			userID, _ := uuid.Parse(claims.UserID)
			ctx := common.WithIdentity(c.Request().Context(), tenantID, userID, claims.Role)
			ctx = context.WithValue(ctx, common.TokenIDKey, claims.ID)
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var appErr *common.AppError
			if errors.As(err, &appErr) {
				return appErr
			}
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return common.ErrUnauthorized.WithMessage("missing or malformed token")
			}
			return common.ErrInvalidToken
		},
	})
}

// ClaimsFromContext returns the claims stored by JWTMiddleware.
func ClaimsFromContext(c echo.Context) *services.TokenClaims {
	claims, _ := c.Get(ClaimsContextKey).(*services.TokenClaims)
	return claims
}

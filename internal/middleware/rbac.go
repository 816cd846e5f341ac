package middleware

import (
	"slices"

	"storeops/internal/common"

	"github.com/labstack/echo/v4"
)

// RequireRole lets the request through only when the caller's role is one of roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := common.GetRoleFromContext(c.Request().Context())
			if !ok {
				return common.ErrUnauthorized
			}
			if !slices.Contains(roles, role) {
				return common.ErrForbidden
			}
			return next(c)
		}
	}
}

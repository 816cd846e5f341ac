package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storeops/internal/common"
	"storeops/internal/i18n"
	"storeops/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) ValidateToken(token string) (*services.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenClaims), args.Error(1)
}

func (m *mockVerifier) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler(i18n.MustLoad(), zap.NewNop())
	return e
}

func testClaims(role string) *services.TokenClaims {
	return &services.TokenClaims{
		UserID:   uuid.NewString(),
		TenantID: uuid.NewString(),
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
}

func TestJWTMiddleware(t *testing.T) {
	claims := testClaims("SELLER")

	tests := []struct {
		name   string
		header string
		setup  func(v *mockVerifier)
		status int
		code   string
	}{
		{
			name:   "valid token sets identity",
			header: "Bearer good",
			setup: func(v *mockVerifier) {
				v.On("ValidateToken", "good").Return(claims, nil)
				v.On("IsRevoked", mock.Anything, "jti-1").Return(false, nil)
			},
			status: http.StatusOK,
		},
		{
			name:   "missing header",
			setup:  func(v *mockVerifier) {},
			status: http.StatusUnauthorized,
			code:   "UNAUTHORIZED",
		},
		{
			name:   "invalid token",
			header: "Bearer bad",
			setup: func(v *mockVerifier) {
				v.On("ValidateToken", "bad").Return(nil, errors.New("signature is invalid"))
			},
			status: http.StatusUnauthorized,
			code:   "INVALID_TOKEN",
		},
		{
			name:   "revoked token",
			header: "Bearer good",
			setup: func(v *mockVerifier) {
				v.On("ValidateToken", "good").Return(claims, nil)
				v.On("IsRevoked", mock.Anything, "jti-1").Return(true, nil)
			},
			status: http.StatusUnauthorized,
			code:   "INVALID_TOKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := new(mockVerifier)
			tt.setup(verifier)

			e := newTestEcho()
			e.GET("/api/me", func(c echo.Context) error {
				tenantID, userID, err := common.Identity(c.Request().Context())
				require.NoError(t, err)
				assert.Equal(t, claims.TenantID, tenantID.String())
				assert.Equal(t, claims.UserID, userID.String())
				tokenID, _ := common.GetTokenIDFromContext(c.Request().Context())
				assert.Equal(t, "jti-1", tokenID)
				assert.Same(t, claims, ClaimsFromContext(c))
				return c.NoContent(http.StatusOK)
			}, JWTMiddleware(verifier))

			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.code != "" {
				assert.Contains(t, rec.Body.String(), `"code":"`+tt.code+`"`)
			}
			verifier.AssertExpectations(t)
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name   string
		role   string
		status int
	}{
		{"allowed role", "MANAGER", http.StatusOK},
		{"forbidden role", "SELLER", http.StatusForbidden},
		{"no identity", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			e.POST("/api/sales/:id/cancel", func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			}, func(next echo.HandlerFunc) echo.HandlerFunc {
				return func(c echo.Context) error {
					if tt.role != "" {
						ctx := common.WithIdentity(c.Request().Context(), uuid.New(), uuid.New(), tt.role)
						c.SetRequest(c.Request().WithContext(ctx))
					}
					return next(c)
				}
			}, RequireRole("ADMIN", "MANAGER"))

			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sales/1/cancel", nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	e := newTestEcho()
	e.POST("/api/auth/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RateLimit(RateLimitConfig{Enabled: true, Requests: 2, Window: time.Minute}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimitDisabled(t *testing.T) {
	e := newTestEcho()
	e.POST("/api/auth/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RateLimit(RateLimitConfig{Enabled: false, Requests: 1, Window: time.Minute}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestVersionHeader(t *testing.T) {
	vm := NewVersionMiddleware("1.2.0")

	e := echo.New()
	e.GET("/api/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, vm.VersionHeader())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, "v1", rec.Header().Get("X-API-Version"))
	assert.Equal(t, "1.2.0", rec.Header().Get("X-App-Version"))
	assert.Empty(t, rec.Header().Get("X-API-Deprecated"))

	versions := vm.GetSupportedVersions()
	require.Len(t, versions, 1)
	assert.Equal(t, "active", versions[0].Status)
}

func TestVersionHeader_Deprecated(t *testing.T) {
	vm := NewVersionMiddleware("1.2.0")
	sunset := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	vm.Deprecate("v1", sunset)
	vm.Deprecate("v9", sunset)

	e := echo.New()
	e.GET("/api/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, vm.VersionHeader())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, "true", rec.Header().Get("X-API-Deprecated"))
	assert.Equal(t, "2027-01-01T00:00:00Z", rec.Header().Get("X-API-Sunset"))
	assert.Contains(t, rec.Header().Get("Warning"), "2027-01-01")

	versions := vm.GetSupportedVersions()
	require.Len(t, versions, 1)
	assert.Equal(t, "deprecated", versions[0].Status)
}

package common

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	TenantIDKey contextKey = "tenant_id"
	RoleKey     contextKey = "role"
	TokenIDKey  contextKey = "token_id"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	Status    int               `json:"status"`
	Path      string            `json:"path,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(status int, code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{Error: ErrorBody{
		Code:      code,
		Message:   message,
		Details:   details,
		Status:    status,
		Timestamp: time.Now().UTC(),
	}}
}

// Page is a paginated list payload.
type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// NewPage never returns a nil Items slice so the JSON is always an array.
func NewPage[T any](items []T, total, limit, offset int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Limit: limit, Offset: offset}
}

// ParsePagination reads limit/offset query params with defaults and bounds.
func ParsePagination(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	return ValidatePaginationParams(limit, offset)
}

// ValidatePaginationParams clamps limit to [1,100] (default 20) and offset to >= 0.
func ValidatePaginationParams(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ParseUUIDParam parses a path parameter as UUID.
func ParseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		return uuid.Nil, NewAppError(400, "INVALID_ID", fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

// ParseOptionalUUIDQuery returns nil when the query param is absent.
func ParseOptionalUUIDQuery(c echo.Context, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, NewAppError(400, "INVALID_ID", fmt.Sprintf("invalid %s", name))
	}
	return &id, nil
}

// ParseDateQuery parses YYYY-MM-DD or RFC3339 query values.
func ParseDateQuery(c echo.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, NewAppError(400, "INVALID_DATE", fmt.Sprintf("%s must be YYYY-MM-DD", name))
	}
	return &t, nil
}

// ParseDateEndQuery parses an upper bound for half-open ranges. A bare date is read as the
// following midnight so the whole day is included.
func ParseDateEndQuery(c echo.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	t, err := ParseDateQuery(c, name)
	if err != nil || t == nil {
		return t, err
	}
	if _, err := time.Parse("2006-01-02", raw); err == nil {
		next := t.AddDate(0, 0, 1)
		return &next, nil
	}
	return t, nil
}

// ParseBoolQuery returns nil when absent.
func ParseBoolQuery(c echo.Context, name string) *bool {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &b
}

// SafeString safely handles string pointer operations
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns nil for blank strings.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetTenantIDFromContext extracts the tenant ID from the request context
func GetTenantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	tenantID, ok := ctx.Value(TenantIDKey).(uuid.UUID)
	return tenantID, ok
}

// GetRoleFromContext extracts the user role from the request context
func GetRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(RoleKey).(string)
	return role, ok
}

// GetTokenIDFromContext extracts the access token id (jti) from the request context
func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(TokenIDKey).(string)
	return id, ok
}

// WithIdentity stores tenant, user and role on ctx.
func WithIdentity(ctx context.Context, tenantID, userID uuid.UUID, role string) context.Context {
	ctx = context.WithValue(ctx, TenantIDKey, tenantID)
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, RoleKey, role)
}

// Identity returns tenant and user ids from ctx or ErrUnauthorized.
func Identity(ctx context.Context) (uuid.UUID, uuid.UUID, error) {
	tenantID, ok := GetTenantIDFromContext(ctx)
	if !ok {
		return uuid.Nil, uuid.Nil, ErrUnauthorized
	}
	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, uuid.Nil, ErrUnauthorized
	}
	return tenantID, userID, nil
}

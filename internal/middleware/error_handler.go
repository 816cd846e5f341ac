package middleware

import (
	"errors"
	"net/http"
	"strings"

	"storeops/internal/common"
	"storeops/internal/i18n"
	"storeops/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// constraintFields maps unique constraints to the request field they guard.
var constraintFields = map[string]string{
	"users_email_key":                     "email",
	"products_tenant_id_sku_key":          "sku",
	"customers_tenant_id_document_key":    "document",
	"sales_tenant_id_number_key":          "number",
	"service_orders_tenant_id_number_key": "number",
	"invoices_tenant_id_number_key":       "number",
	"invitations_token_hash_key":          "token",
}

var httpStatusCodes = map[int]string{
	http.StatusBadRequest:            "BAD_REQUEST",
	http.StatusUnauthorized:          "UNAUTHORIZED",
	http.StatusForbidden:             "FORBIDDEN",
	http.StatusNotFound:              "ROUTE_NOT_FOUND",
	http.StatusMethodNotAllowed:      "METHOD_NOT_ALLOWED",
	http.StatusRequestEntityTooLarge: "PAYLOAD_TOO_LARGE",
	http.StatusTooManyRequests:       "TOO_MANY_REQUESTS",
}

// ErrorHandler renders every error returned by a handler as a localized ErrorResponse.
func ErrorHandler(catalog *i18n.Catalog, logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, code, message, details := classify(err, catalog)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				zap.Error(err),
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
		}

		resp := common.CreateErrorResponse(status, code, message, details)
		resp.Error.Path = c.Request().URL.Path

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, resp)
		}
		if werr != nil {
			logger.Warn("failed to write error response", zap.Error(werr))
		}
	}
}

func classify(err error, catalog *i18n.Catalog) (int, string, string, map[string]string) {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		if appErr.HasSpecificMessage() {
			return appErr.Status, appErr.Code, catalog.Message(appErr.Message), appErr.Details
		}
		return appErr.Status, appErr.Code, catalog.Error(appErr.Code, appErr.Message), appErr.Details
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			path := validation.FieldPath(fe)
			details[path] = catalog.Validation(fe.Tag(), fe.Field(), fe.Param())
		}
		return http.StatusBadRequest, "VALIDATION_ERROR", catalog.Error("VALIDATION_ERROR", "Validation failed"), details
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if status, code, fallback, details, ok := classifyPg(pgErr); ok {
			return status, code, catalog.Error(code, fallback), details
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return http.StatusNotFound, "NOT_FOUND", catalog.Error("NOT_FOUND", "Resource not found"), nil
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		fallback := http.StatusText(he.Code)
		if msg, ok := he.Message.(string); ok && msg != "" {
			fallback = msg
		}
		if code, ok := httpStatusCodes[he.Code]; ok {
			return he.Code, code, catalog.Error(code, fallback), nil
		}
		if he.Code >= http.StatusInternalServerError {
			return he.Code, "INTERNAL_ERROR", catalog.Error("INTERNAL_ERROR", "Internal server error"), nil
		}
		return he.Code, strings.ToUpper(strings.ReplaceAll(http.StatusText(he.Code), " ", "_")), fallback, nil
	}

	return http.StatusInternalServerError, "INTERNAL_ERROR", catalog.Error("INTERNAL_ERROR", "Internal server error"), nil
}

func classifyPg(pgErr *pgconn.PgError) (int, string, string, map[string]string, bool) {
	switch pgErr.Code {
	case "23505":
		var details map[string]string
		if field := constraintField(pgErr.ConstraintName); field != "" {
			details = map[string]string{"field": field}
		}
		return http.StatusBadRequest, "ALREADY_EXISTS", "Resource already exists", details, true
	case "23503":
		return http.StatusBadRequest, "FOREIGN_KEY_VIOLATION", "Related record missing or in use", nil, true
	case "23514":
		return http.StatusBadRequest, "CHECK_VIOLATION", "Operation violates a data integrity rule", nil, true
	case "22P02":
		return http.StatusBadRequest, "INVALID_INPUT", "Invalid input provided", nil, true
	case "40001", "40P01":
		return http.StatusConflict, "CONFLICT", "Resource was modified concurrently, try again", nil, true
	}
	return 0, "", "", nil, false
}

// constraintField falls back to the last column of a <table>_<cols>_key name.
func constraintField(name string) string {
	if name == "" {
		return ""
	}
	if f, ok := constraintFields[name]; ok {
		return f
	}
	name = strings.TrimSuffix(name, "_key")
	if i := strings.LastIndex(name, "_"); i >= 0 {
		return name[i+1:]
	}
	return name
}

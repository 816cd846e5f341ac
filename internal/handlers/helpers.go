package handlers

import (
	"net/http"

	"storeops/internal/common"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// bindAndValidate decodes the request body into dst and runs the validator.
func bindAndValidate(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return common.ErrInvalidInput.WithMessage("malformed request body")
	}
	return c.Validate(dst)
}

// identity returns the caller's tenant and user ids.
func identity(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	return common.Identity(c.Request().Context())
}

// tenantAndID resolves the caller's tenant and the :id path parameter.
func tenantAndID(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	tenantID, _, err := identity(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return tenantID, id, nil
}

// optionalString returns nil when the query param is absent.
func optionalString(c echo.Context, name string) *string {
	return common.StringPtr(c.QueryParam(name))
}

// RemoveResult tells the client whether a delete was soft.
type RemoveResult struct {
	ID          uuid.UUID `json:"id"`
	Deactivated bool      `json:"deactivated"`
}

func removed(c echo.Context, id uuid.UUID, soft bool) error {
	return c.JSON(http.StatusOK, RemoveResult{ID: id, Deactivated: soft})
}

func attachment(c echo.Context, mime, filename string, data []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, mime, data)
}

package handlers

import (
	"net/http"

	"storeops/internal/common"
	"storeops/internal/models"
	"storeops/internal/services"

	"github.com/labstack/echo/v4"
)

// UserHandlers handles user management requests
type UserHandlers struct {
	userService services.UserService
}

func NewUserHandlers(userService services.UserService) *UserHandlers {
	return &UserHandlers{userService: userService}
}

// ListUsers godoc
//
//	@Summary	List users of the tenant
//	@Tags		users
//	@Produce	json
//	@Param		limit	query		int	false	"Page size"
//	@Param		offset	query		int	false	"Offset"
//	@Success	200		{object}	common.Page[models.User]
//	@Security	BearerAuth
//	@Router		/users [get]
func (h *UserHandlers) ListUsers(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	limit, offset := common.ParsePagination(c)
	page, err := h.userService.List(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetUser godoc
//
//	@Summary	Get a user
//	@Tags		users
//	@Produce	json
//	@Param		id	path		string	true	"User ID"
//	@Success	200	{object}	models.User
//	@Failure	404	{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/users/{id} [get]
func (h *UserHandlers) GetUser(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	user, err := h.userService.Get(c.Request().Context(), tenantID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateUser godoc
//
//	@Summary	Update name, role or active flag
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"User ID"
//	@Param		request	body		models.UpdateUserInput	true	"Changes"
//	@Success	200		{object}	models.User
//	@Security	BearerAuth
//	@Router		/users/{id} [put]
func (h *UserHandlers) UpdateUser(c echo.Context) error {
	tenantID, actorID, err := identity(c)
	if err != nil {
		return err
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var in models.UpdateUserInput
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}
	user, err := h.userService.Update(c.Request().Context(), tenantID, actorID, id, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser godoc
//
//	@Summary	Deactivate a user
//	@Tags		users
//	@Param		id	path	string	true	"User ID"
//	@Success	204
//	@Failure	400	{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/users/{id} [delete]
func (h *UserHandlers) DeleteUser(c echo.Context) error {
	tenantID, actorID, err := identity(c)
	if err != nil {
		return err
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.userService.Remove(c.Request().Context(), tenantID, actorID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

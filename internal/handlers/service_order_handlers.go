package handlers

import (
	"net/http"
	"strings"

	"storeops/internal/common"
	"storeops/internal/models"
	"storeops/internal/services"

	"github.com/labstack/echo/v4"
)

type ServiceOrderHandlers struct {
	orderService services.ServiceOrderService
}

func NewServiceOrderHandlers(orderService services.ServiceOrderService) *ServiceOrderHandlers {
	return &ServiceOrderHandlers{orderService: orderService}
}

// CreateServiceOrder godoc
//
//	@Summary	Open a service order
//	@Tags		service-orders
//	@Accept		json
//	@Produce	json
//	@Param		request	body		models.ServiceOrderInput	true	"Service order"
//	@Success	201		{object}	models.ServiceOrder
//	@Failure	400		{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/service-orders [post]
func (h *ServiceOrderHandlers) CreateServiceOrder(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	var in models.ServiceOrderInput
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}
	order, err := h.orderService.Create(c.Request().Context(), tenantID, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, order)
}

// ListServiceOrders godoc
//
//	@Summary	List service orders
//	@Tags		service-orders
//	@Produce	json
//	@Param		status			query		string	false	"Status"
//	@Param		customer_id		query		string	false	"Customer ID"
//	@Param		technician_id	query		string	false	"Technician ID"
//	@Param		q				query		string	false	"Number or equipment"
//	@Success	200				{object}	common.Page[models.ServiceOrder]
//	@Security	BearerAuth
//	@Router		/service-orders [get]
func (h *ServiceOrderHandlers) ListServiceOrders(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	customerID, err := common.ParseOptionalUUIDQuery(c, "customer_id")
	if err != nil {
		return err
	}
	technicianID, err := common.ParseOptionalUUIDQuery(c, "technician_id")
	if err != nil {
		return err
	}
	limit, offset := common.ParsePagination(c)
	page, err := h.orderService.List(c.Request().Context(), tenantID, &models.ServiceOrderFilter{
		Status:       optionalString(c, "status"),
		CustomerID:   customerID,
		TechnicianID: technicianID,
		Query:        strings.TrimSpace(c.QueryParam("q")),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetServiceOrder godoc
//
//	@Summary	Get a service order
//	@Tags		service-orders
//	@Produce	json
//	@Param		id	path		string	true	"Service order ID"
//	@Success	200	{object}	models.ServiceOrder
//	@Security	BearerAuth
//	@Router		/service-orders/{id} [get]
func (h *ServiceOrderHandlers) GetServiceOrder(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	order, err := h.orderService.GetByID(c.Request().Context(), tenantID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateServiceOrder godoc
//
//	@Summary	Update an open service order
//	@Tags		service-orders
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Service order ID"
//	@Param		request	body		models.ServiceOrderInput	true	"Service order"
//	@Success	200		{object}	models.ServiceOrder
//	@Failure	400		{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/service-orders/{id} [put]
func (h *ServiceOrderHandlers) UpdateServiceOrder(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	var in models.ServiceOrderInput
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}
	order, err := h.orderService.Update(c.Request().Context(), tenantID, id, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// DeleteServiceOrder godoc
//
//	@Summary	Delete an open or cancelled service order
//	@Tags		service-orders
//	@Param		id	path	string	true	"Service order ID"
//	@Success	204
//	@Failure	400	{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/service-orders/{id} [delete]
func (h *ServiceOrderHandlers) DeleteServiceOrder(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	if err := h.orderService.Remove(c.Request().Context(), tenantID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ChangeServiceOrderStatus godoc
//
//	@Summary	Move a service order through its lifecycle
//	@Tags		service-orders
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string							true	"Service order ID"
//	@Param		request	body		models.ServiceOrderStatusInput	true	"New status"
//	@Success	200		{object}	models.ServiceOrder
//	@Failure	400		{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/service-orders/{id}/status [patch]
func (h *ServiceOrderHandlers) ChangeServiceOrderStatus(c echo.Context) error {
	tenantID, userID, err := identity(c)
	if err != nil {
		return err
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var in models.ServiceOrderStatusInput
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}
	order, err := h.orderService.ChangeStatus(c.Request().Context(), tenantID, id, userID, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

package handlers

import (
	"net/http"
	"strings"

	"storeops/internal/common"
	"storeops/internal/models"
	"storeops/internal/services"

	"github.com/labstack/echo/v4"
)

type CustomerHandlers struct {
	customerService services.CustomerService
}

func NewCustomerHandlers(customerService services.CustomerService) *CustomerHandlers {
	return &CustomerHandlers{customerService: customerService}
}

// CreateCustomer godoc
//
//	@Summary	Create a customer
//	@Tags		customers
//	@Accept		json
//	@Produce	json
//	@Param		request	body		models.CustomerInput	true	"Customer"
//	@Success	201		{object}	models.Customer
//	@Failure	400		{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/customers [post]
func (h *CustomerHandlers) CreateCustomer(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	var in models.CustomerInput
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}
	customer, err := h.customerService.Create(c.Request().Context(), tenantID, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, customer)
}

// ListCustomers godoc
//
//	@Summary	List customers
//	@Tags		customers
//	@Produce	json
//	@Param		q		query		string	false	"Name, document, email or phone"
//	@Param		active	query		bool	false	"Active flag"
//	@Success	200		{object}	common.Page[models.Customer]
//	@Security	BearerAuth
//	@Router		/customers [get]
func (h *CustomerHandlers) ListCustomers(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	limit, offset := common.ParsePagination(c)
	page, err := h.customerService.List(c.Request().Context(), tenantID, &models.CustomerFilter{
		Query:  strings.TrimSpace(c.QueryParam("q")),
		Active: common.ParseBoolQuery(c, "active"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetCustomer godoc
//
//	@Summary	Get a customer
//	@Tags		customers
//	@Produce	json
//	@Param		id	path		string	true	"Customer ID"
//	@Success	200	{object}	models.Customer
//	@Failure	404	{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/customers/{id} [get]
func (h *CustomerHandlers) GetCustomer(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	customer, err := h.customerService.GetByID(c.Request().Context(), tenantID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customer)
}

// UpdateCustomer godoc
//
//	@Summary	Update a customer
//	@Tags		customers
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Customer ID"
//	@Param		request	body		models.CustomerInput	true	"Customer"
//	@Success	200		{object}	models.Customer
//	@Security	BearerAuth
//	@Router		/customers/{id} [put]
func (h *CustomerHandlers) UpdateCustomer(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	var in models.CustomerInput
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}
	customer, err := h.customerService.Update(c.Request().Context(), tenantID, id, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customer)
}

// DeleteCustomer godoc
//
//	@Summary	Remove a customer
//	@Description	Customers with sales, service orders or invoices are deactivated.
//	@Tags		customers
//	@Produce	json
//	@Param		id	path		string	true	"Customer ID"
//	@Success	200	{object}	RemoveResult
//	@Security	BearerAuth
//	@Router		/customers/{id} [delete]
func (h *CustomerHandlers) DeleteCustomer(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	soft, err := h.customerService.Remove(c.Request().Context(), tenantID, id)
	if err != nil {
		return err
	}
	return removed(c, id, soft)
}

// CustomerSales godoc
//
//	@Summary	Purchase history of a customer
//	@Tags		customers
//	@Produce	json
//	@Param		id	path		string	true	"Customer ID"
//	@Success	200	{object}	common.Page[models.Sale]
//	@Security	BearerAuth
//	@Router		/customers/{id}/sales [get]
func (h *CustomerHandlers) CustomerSales(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	limit, offset := common.ParsePagination(c)
	page, err := h.customerService.Sales(c.Request().Context(), tenantID, id, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

package handlers

import (
	"net/http"

	"storeops/internal/common"
	"storeops/internal/models"
	"storeops/internal/services"

	"github.com/labstack/echo/v4"
)

// InvoiceHandlers handles HTTP requests for invoices
type InvoiceHandlers struct {
	invoiceService services.InvoiceService
}

// NewInvoiceHandlers creates a new invoice handlers instance
func NewInvoiceHandlers(invoiceService services.InvoiceService) *InvoiceHandlers {
	return &InvoiceHandlers{invoiceService: invoiceService}
}

// CreateInvoice godoc
//
//	@Summary		Create an invoice
//	@Description	From a completed sale, a completed service order, or manual amounts (customer_id + subtotal).
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			request	body		models.InvoiceInput	true	"Invoice source"
//	@Success		201		{object}	models.Invoice
//	@Failure		400		{object}	common.ErrorResponse
//	@Security		BearerAuth
//	@Router			/invoices [post]
func (h *InvoiceHandlers) CreateInvoice(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	var in models.InvoiceInput
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}
	invoice, err := h.invoiceService.Create(c.Request().Context(), tenantID, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, invoice)
}

// ListInvoices godoc
//
//	@Summary	List invoices
//	@Tags		invoices
//	@Produce	json
//	@Param		status		query		string	false	"Status"
//	@Param		customer_id	query		string	false	"Customer ID"
//	@Success	200			{object}	common.Page[models.Invoice]
//	@Security	BearerAuth
//	@Router		/invoices [get]
func (h *InvoiceHandlers) ListInvoices(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	customerID, err := common.ParseOptionalUUIDQuery(c, "customer_id")
	if err != nil {
		return err
	}
	limit, offset := common.ParsePagination(c)
	page, err := h.invoiceService.List(c.Request().Context(), tenantID, &models.InvoiceFilter{
		Status:     optionalString(c, "status"),
		CustomerID: customerID,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetInvoice godoc
//
//	@Summary	Get an invoice
//	@Tags		invoices
//	@Produce	json
//	@Param		id	path		string	true	"Invoice ID"
//	@Success	200	{object}	models.Invoice
//	@Security	BearerAuth
//	@Router		/invoices/{id} [get]
func (h *InvoiceHandlers) GetInvoice(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	invoice, err := h.invoiceService.GetByID(c.Request().Context(), tenantID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, invoice)
}

// UpdateInvoice godoc
//
//	@Summary	Update a draft invoice
//	@Tags		invoices
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Invoice ID"
//	@Param		request	body		models.InvoiceInput	true	"Changes"
//	@Success	200		{object}	models.Invoice
//	@Failure	400		{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/invoices/{id} [put]
func (h *InvoiceHandlers) UpdateInvoice(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	var in models.InvoiceInput
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}
	invoice, err := h.invoiceService.Update(c.Request().Context(), tenantID, id, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice godoc
//
//	@Summary	Delete a draft invoice
//	@Tags		invoices
//	@Param		id	path	string	true	"Invoice ID"
//	@Success	204
//	@Failure	400	{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/invoices/{id} [delete]
func (h *InvoiceHandlers) DeleteInvoice(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	if err := h.invoiceService.Remove(c.Request().Context(), tenantID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateInvoiceStatus godoc
//
//	@Summary	Change invoice status
//	@Tags		invoices
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Invoice ID"
//	@Param		request	body		models.InvoiceStatusInput	true	"New status"
//	@Success	200		{object}	models.Invoice
//	@Failure	400		{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/invoices/{id}/status [patch]
func (h *InvoiceHandlers) UpdateInvoiceStatus(c echo.Context) error {
	tenantID, userID, err := identity(c)
	if err != nil {
		return err
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var in models.InvoiceStatusInput
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}
	invoice, err := h.invoiceService.ChangeStatus(c.Request().Context(), tenantID, id, userID, in.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, invoice)
}

// InvoicePDF godoc
//
//	@Summary	Render the invoice PDF
//	@Tags		invoices
//	@Produce	application/pdf
//	@Param		id	path	string	true	"Invoice ID"
//	@Success	200	{file}	file
//	@Security	BearerAuth
//	@Router		/invoices/{id}/pdf [get]
func (h *InvoiceHandlers) InvoicePDF(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	data, invoice, err := h.invoiceService.PDF(c.Request().Context(), tenantID, id)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `inline; filename="fatura-`+invoice.Number+`.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", data)
}

// SendInvoice godoc
//
//	@Summary	Email the invoice to the customer
//	@Tags		invoices
//	@Produce	json
//	@Param		id	path		string	true	"Invoice ID"
//	@Success	202	{object}	models.NotificationLog
//	@Failure	400	{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/invoices/{id}/send [post]
func (h *InvoiceHandlers) SendInvoice(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	log, err := h.invoiceService.Send(c.Request().Context(), tenantID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, log)
}

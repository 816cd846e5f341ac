package handlers

import (
	"net/http"

	"storeops/internal/common"
	"storeops/internal/models"
	"storeops/internal/services"

	"github.com/labstack/echo/v4"
)

type SaleHandlers struct {
	saleService services.SaleService
}

func NewSaleHandlers(saleService services.SaleService) *SaleHandlers {
	return &SaleHandlers{saleService: saleService}
}

func saleFilter(c echo.Context) (*models.SaleFilter, error) {
	customerID, err := common.ParseOptionalUUIDQuery(c, "customer_id")
	if err != nil {
		return nil, err
	}
	from, err := common.ParseDateQuery(c, "from")
	if err != nil {
		return nil, err
	}
	to, err := common.ParseDateEndQuery(c, "to")
	if err != nil {
		return nil, err
	}
	limit, offset := common.ParsePagination(c)
	return &models.SaleFilter{
		Status:     optionalString(c, "status"),
		CustomerID: customerID,
		From:       from,
		To:         to,
		Limit:      limit,
		Offset:     offset,
	}, nil
}

// CreateSale godoc
//
//	@Summary		Register a sale
//	@Description	Decrements stock, writes the stock ledger, the financial entry and the customer totals atomically.
//	@Tags			sales
//	@Accept			json
//	@Produce		json
//	@Param			request	body		models.CreateSaleInput	true	"Sale"
//	@Success		201		{object}	models.Sale
//	@Failure		400		{object}	common.ErrorResponse
//	@Failure		409		{object}	common.ErrorResponse
//	@Security		BearerAuth
//	@Router			/sales [post]
func (h *SaleHandlers) CreateSale(c echo.Context) error {
	tenantID, userID, err := identity(c)
	if err != nil {
		return err
	}
	var in models.CreateSaleInput
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}
	sale, err := h.saleService.Create(c.Request().Context(), tenantID, userID, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sale)
}

// CancelSale godoc
//
//	@Summary	Cancel a completed sale
//	@Tags		sales
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Sale ID"
//	@Param		request	body		models.CancelSaleInput	true	"Reason"
//	@Success	200		{object}	models.Sale
//	@Failure	400		{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/sales/{id}/cancel [post]
func (h *SaleHandlers) CancelSale(c echo.Context) error {
	tenantID, userID, err := identity(c)
	if err != nil {
		return err
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var in models.CancelSaleInput
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}
	sale, err := h.saleService.Cancel(c.Request().Context(), tenantID, id, userID, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sale)
}

// ListSales godoc
//
//	@Summary	List sales
//	@Tags		sales
//	@Produce	json
//	@Param		status		query		string	false	"COMPLETED or CANCELLED"
//	@Param		customer_id	query		string	false	"Customer ID"
//	@Param		from		query		string	false	"YYYY-MM-DD"
//	@Param		to			query		string	false	"YYYY-MM-DD"
//	@Success	200			{object}	common.Page[models.Sale]
//	@Security	BearerAuth
//	@Router		/sales [get]
func (h *SaleHandlers) ListSales(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	filter, err := saleFilter(c)
	if err != nil {
		return err
	}
	page, err := h.saleService.List(c.Request().Context(), tenantID, filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetSale godoc
//
//	@Summary	Get a sale with its items
//	@Tags		sales
//	@Produce	json
//	@Param		id	path		string	true	"Sale ID"
//	@Success	200	{object}	models.Sale
//	@Failure	404	{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/sales/{id} [get]
func (h *SaleHandlers) GetSale(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	sale, err := h.saleService.GetByID(c.Request().Context(), tenantID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sale)
}

// SalesSummary godoc
//
//	@Summary	Sales count and revenue in a period
//	@Tags		sales
//	@Produce	json
//	@Param		from	query		string	false	"YYYY-MM-DD"
//	@Param		to		query		string	false	"YYYY-MM-DD"
//	@Success	200		{object}	models.SalesSummary
//	@Security	BearerAuth
//	@Router		/sales/summary [get]
func (h *SaleHandlers) SalesSummary(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	from, err := common.ParseDateQuery(c, "from")
	if err != nil {
		return err
	}
	to, err := common.ParseDateQuery(c, "to")
	if err != nil {
		return err
	}
	summary, err := h.saleService.Summary(c.Request().Context(), tenantID, from, to)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// ExportSales godoc
//
//	@Summary	Export sales as XLSX
//	@Tags		sales
//	@Produce	application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Success	200	{file}	file
//	@Security	BearerAuth
//	@Router		/sales/export [get]
func (h *SaleHandlers) ExportSales(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	filter, err := saleFilter(c)
	if err != nil {
		return err
	}
	data, err := h.saleService.Export(c.Request().Context(), tenantID, filter)
	if err != nil {
		return err
	}
	return attachment(c, xlsxMIME, "vendas.xlsx", data)
}

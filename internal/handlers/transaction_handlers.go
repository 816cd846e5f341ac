package handlers

import (
	"net/http"

	"storeops/internal/common"
	"storeops/internal/models"
	"storeops/internal/services"

	"github.com/labstack/echo/v4"
)

type TransactionHandlers struct {
	transactionService services.TransactionService
}

func NewTransactionHandlers(transactionService services.TransactionService) *TransactionHandlers {
	return &TransactionHandlers{transactionService: transactionService}
}

// CreateTransaction godoc
//
//	@Summary	Record a manual income or expense
//	@Tags		transactions
//	@Accept		json
//	@Produce	json
//	@Param		request	body		models.TransactionInput	true	"Transaction"
//	@Success	201		{object}	models.Transaction
//	@Security	BearerAuth
//	@Router		/transactions [post]
func (h *TransactionHandlers) CreateTransaction(c echo.Context) error {
	tenantID, userID, err := identity(c)
	if err != nil {
		return err
	}
	var in models.TransactionInput
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}
	tx, err := h.transactionService.Create(c.Request().Context(), tenantID, userID, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tx)
}

// ListTransactions godoc
//
//	@Summary	List financial transactions
//	@Tags		transactions
//	@Produce	json
//	@Param		type	query		string	false	"INCOME or EXPENSE"
//	@Param		status	query		string	false	"PENDING, PAID or CANCELLED"
//	@Param		from	query		string	false	"YYYY-MM-DD"
//	@Param		to		query		string	false	"YYYY-MM-DD"
//	@Success	200		{object}	common.Page[models.Transaction]
//	@Security	BearerAuth
//	@Router		/transactions [get]
func (h *TransactionHandlers) ListTransactions(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	from, err := common.ParseDateQuery(c, "from")
	if err != nil {
		return err
	}
	to, err := common.ParseDateEndQuery(c, "to")
	if err != nil {
		return err
	}
	limit, offset := common.ParsePagination(c)
	page, err := h.transactionService.List(c.Request().Context(), tenantID, &models.TransactionFilter{
		Type:   optionalString(c, "type"),
		Status: optionalString(c, "status"),
		From:   from,
		To:     to,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetTransaction godoc
//
//	@Summary	Get a transaction
//	@Tags		transactions
//	@Produce	json
//	@Param		id	path		string	true	"Transaction ID"
//	@Success	200	{object}	models.Transaction
//	@Security	BearerAuth
//	@Router		/transactions/{id} [get]
func (h *TransactionHandlers) GetTransaction(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	tx, err := h.transactionService.GetByID(c.Request().Context(), tenantID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tx)
}

// PayTransaction godoc
//
//	@Summary	Mark a pending manual transaction as paid
//	@Tags		transactions
//	@Produce	json
//	@Param		id	path		string	true	"Transaction ID"
//	@Success	200	{object}	models.Transaction
//	@Failure	400	{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/transactions/{id}/pay [patch]
func (h *TransactionHandlers) PayTransaction(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	tx, err := h.transactionService.Pay(c.Request().Context(), tenantID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tx)
}

// CancelTransaction godoc
//
//	@Summary	Cancel a manual transaction
//	@Tags		transactions
//	@Produce	json
//	@Param		id	path		string	true	"Transaction ID"
//	@Success	200	{object}	models.Transaction
//	@Failure	400	{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/transactions/{id}/cancel [patch]
func (h *TransactionHandlers) CancelTransaction(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	tx, err := h.transactionService.Cancel(c.Request().Context(), tenantID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tx)
}

// TransactionSummary godoc
//
//	@Summary	Income, expense, balance and pending totals
//	@Tags		transactions
//	@Produce	json
//	@Param		from	query		string	false	"YYYY-MM-DD"
//	@Param		to		query		string	false	"YYYY-MM-DD"
//	@Success	200		{object}	models.TransactionSummary
//	@Security	BearerAuth
//	@Router		/transactions/summary [get]
func (h *TransactionHandlers) TransactionSummary(c echo.Context) error {
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
	summary, err := h.transactionService.Summary(c.Request().Context(), tenantID, from, to)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

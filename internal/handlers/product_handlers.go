package handlers

import (
	"net/http"
	"strings"

	"storeops/internal/common"
	"storeops/internal/models"
	"storeops/internal/services"

	"github.com/labstack/echo/v4"
)

// ProductHandlers handles HTTP requests for products
type ProductHandlers struct {
	productService services.ProductService
}

// NewProductHandlers creates a new product handlers instance
func NewProductHandlers(productService services.ProductService) *ProductHandlers {
	return &ProductHandlers{productService: productService}
}

// URLResponse carries a presigned object URL.
type URLResponse struct {
	URL string `json:"url"`
}

func productFilter(c echo.Context) *models.ProductFilter {
	limit, offset := common.ParsePagination(c)
	lowStock := common.ParseBoolQuery(c, "low_stock")
	return &models.ProductFilter{
		Query:    strings.TrimSpace(c.QueryParam("q")),
		Category: optionalString(c, "category"),
		Active:   common.ParseBoolQuery(c, "active"),
		LowStock: lowStock != nil && *lowStock,
		Limit:    limit,
		Offset:   offset,
	}
}

// CreateProduct godoc
//
//	@Summary	Create a product
//	@Tags		products
//	@Accept		json
//	@Produce	json
//	@Param		request	body		models.ProductInput	true	"Product"
//	@Success	201		{object}	models.Product
//	@Failure	400		{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/products [post]
func (h *ProductHandlers) CreateProduct(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	var in models.ProductInput
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}
	product, err := h.productService.Create(c.Request().Context(), tenantID, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, product)
}

// ListProducts godoc
//
//	@Summary	List products
//	@Tags		products
//	@Produce	json
//	@Param		q			query		string	false	"Name, SKU or barcode"
//	@Param		category	query		string	false	"Category"
//	@Param		active		query		bool	false	"Active flag"
//	@Param		low_stock	query		bool	false	"Only stock at or below minimum"
//	@Param		limit		query		int		false	"Page size"
//	@Param		offset		query		int		false	"Offset"
//	@Success	200			{object}	common.Page[models.Product]
//	@Security	BearerAuth
//	@Router		/products [get]
func (h *ProductHandlers) ListProducts(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	page, err := h.productService.List(c.Request().Context(), tenantID, productFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetProduct godoc
//
//	@Summary	Get a product
//	@Tags		products
//	@Produce	json
//	@Param		id	path		string	true	"Product ID"
//	@Success	200	{object}	models.Product
//	@Failure	404	{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/products/{id} [get]
func (h *ProductHandlers) GetProduct(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	product, err := h.productService.GetByID(c.Request().Context(), tenantID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

// UpdateProduct godoc
//
//	@Summary	Update a product
//	@Description	Stock is changed only through the stock endpoint.
//	@Tags		products
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Product ID"
//	@Param		request	body		models.ProductInput	true	"Product"
//	@Success	200		{object}	models.Product
//	@Security	BearerAuth
//	@Router		/products/{id} [put]
func (h *ProductHandlers) UpdateProduct(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	var in models.ProductInput
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}
	product, err := h.productService.Update(c.Request().Context(), tenantID, id, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct godoc
//
//	@Summary	Remove a product
//	@Description	Referenced products are deactivated instead of deleted.
//	@Tags		products
//	@Produce	json
//	@Param		id	path		string	true	"Product ID"
//	@Success	200	{object}	RemoveResult
//	@Security	BearerAuth
//	@Router		/products/{id} [delete]
func (h *ProductHandlers) DeleteProduct(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	soft, err := h.productService.Remove(c.Request().Context(), tenantID, id)
	if err != nil {
		return err
	}
	return removed(c, id, soft)
}

// AdjustStock godoc
//
//	@Summary	Manual stock adjustment
//	@Tags		products
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Product ID"
//	@Param		request	body		models.StockAdjustmentInput	true	"Adjustment"
//	@Success	201		{object}	models.StockMovement
//	@Failure	400		{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/products/{id}/stock [post]
func (h *ProductHandlers) AdjustStock(c echo.Context) error {
	tenantID, userID, err := identity(c)
	if err != nil {
		return err
	}
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var in models.StockAdjustmentInput
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}
	movement, err := h.productService.AdjustStock(c.Request().Context(), tenantID, id, userID, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, movement)
}

// ListMovements godoc
//
//	@Summary	Stock ledger of a product
//	@Tags		products
//	@Produce	json
//	@Param		id	path		string	true	"Product ID"
//	@Success	200	{object}	common.Page[models.StockMovement]
//	@Security	BearerAuth
//	@Router		/products/{id}/movements [get]
func (h *ProductHandlers) ListMovements(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	limit, offset := common.ParsePagination(c)
	page, err := h.productService.Movements(c.Request().Context(), tenantID, id, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// LowStock godoc
//
//	@Summary	Products at or below minimum stock
//	@Tags		products
//	@Produce	json
//	@Success	200	{object}	common.Page[models.Product]
//	@Security	BearerAuth
//	@Router		/products/low-stock [get]
func (h *ProductHandlers) LowStock(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	limit, offset := common.ParsePagination(c)
	page, err := h.productService.LowStock(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// UploadImage godoc
//
//	@Summary	Upload the product image
//	@Tags		products
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		id		path		string	true	"Product ID"
//	@Param		image	formData	file	true	"JPEG, PNG or WebP"
//	@Success	200		{object}	models.Product
//	@Security	BearerAuth
//	@Router		/products/{id}/image [post]
func (h *ProductHandlers) UploadImage(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	file, err := c.FormFile("image")
	if err != nil {
		return common.ErrInvalidInput.WithMessage("image file is required")
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	product, err := h.productService.UploadImage(c.Request().Context(), tenantID, id, src, file.Size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

// GetImage godoc
//
//	@Summary	Presigned URL of the product image
//	@Tags		products
//	@Produce	json
//	@Param		id			path		string	true	"Product ID"
//	@Param		redirect	query		bool	false	"Redirect to the image"
//	@Success	200			{object}	URLResponse
//	@Success	307
//	@Security	BearerAuth
//	@Router		/products/{id}/image [get]
func (h *ProductHandlers) GetImage(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	url, err := h.productService.ImageURL(c.Request().Context(), tenantID, id)
	if err != nil {
		return err
	}
	if r := common.ParseBoolQuery(c, "redirect"); r != nil && *r {
		return c.Redirect(http.StatusTemporaryRedirect, url)
	}
	return c.JSON(http.StatusOK, URLResponse{URL: url})
}

// DeleteImage godoc
//
//	@Summary	Delete the product image
//	@Tags		products
//	@Param		id	path	string	true	"Product ID"
//	@Success	204
//	@Security	BearerAuth
//	@Router		/products/{id}/image [delete]
func (h *ProductHandlers) DeleteImage(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	if err := h.productService.DeleteImage(c.Request().Context(), tenantID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ExportProducts godoc
//
//	@Summary	Export products as XLSX
//	@Tags		products
//	@Produce	application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Success	200	{file}	file
//	@Security	BearerAuth
//	@Router		/products/export [get]
func (h *ProductHandlers) ExportProducts(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	data, err := h.productService.Export(c.Request().Context(), tenantID, productFilter(c))
	if err != nil {
		return err
	}
	return attachment(c, xlsxMIME, "produtos.xlsx", data)
}

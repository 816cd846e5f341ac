package handlers

import (
	"net/http"

	"storeops/internal/common"
	"storeops/internal/models"
	"storeops/internal/services"

	"github.com/labstack/echo/v4"
)

type SettingHandlers struct {
	settingService services.SettingService
}

func NewSettingHandlers(settingService services.SettingService) *SettingHandlers {
	return &SettingHandlers{settingService: settingService}
}

// GetSettings godoc
//
//	@Summary	Tenant settings with secrets masked
//	@Tags		settings
//	@Produce	json
//	@Success	200	{object}	models.Setting
//	@Security	BearerAuth
//	@Router		/settings [get]
func (h *SettingHandlers) GetSettings(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	setting, err := h.settingService.Get(c.Request().Context(), tenantID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, setting.Masked())
}

// UpdateSettings godoc
//
//	@Summary	Update tenant settings
//	@Tags		settings
//	@Accept		json
//	@Produce	json
//	@Param		request	body		models.SettingInput	true	"Changes"
//	@Success	200		{object}	models.Setting
//	@Security	BearerAuth
//	@Router		/settings [put]
func (h *SettingHandlers) UpdateSettings(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	var in models.SettingInput
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}
	setting, err := h.settingService.Update(c.Request().Context(), tenantID, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, setting.Masked())
}

// UploadLogo godoc
//
//	@Summary	Upload the company logo
//	@Tags		settings
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		logo	formData	file	true	"JPEG, PNG or WebP"
//	@Success	200		{object}	models.Setting
//	@Security	BearerAuth
//	@Router		/settings/logo [post]
func (h *SettingHandlers) UploadLogo(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	file, err := c.FormFile("logo")
	if err != nil {
		return common.ErrInvalidInput.WithMessage("logo file is required")
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	setting, err := h.settingService.UploadLogo(c.Request().Context(), tenantID, src, file.Size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, setting.Masked())
}

// GetLogo godoc
//
//	@Summary	Presigned URL of the company logo
//	@Tags		settings
//	@Produce	json
//	@Success	200	{object}	URLResponse
//	@Security	BearerAuth
//	@Router		/settings/logo [get]
func (h *SettingHandlers) GetLogo(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	url, err := h.settingService.LogoURL(c.Request().Context(), tenantID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, URLResponse{URL: url})
}

// TestEmail godoc
//
//	@Summary	Send a test email with the current settings
//	@Tags		settings
//	@Accept		json
//	@Produce	json
//	@Param		request	body		models.TestChannelInput	true	"Recipient"
//	@Success	200		{object}	models.NotificationLog
//	@Failure	400		{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/settings/test-email [post]
func (h *SettingHandlers) TestEmail(c echo.Context) error {
	return h.testChannel(c, models.ChannelEmail)
}

// TestWhatsApp godoc
//
//	@Summary	Send a test WhatsApp message with the current settings
//	@Tags		settings
//	@Accept		json
//	@Produce	json
//	@Param		request	body		models.TestChannelInput	true	"Phone"
//	@Success	200		{object}	models.NotificationLog
//	@Failure	400		{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/settings/test-whatsapp [post]
func (h *SettingHandlers) TestWhatsApp(c echo.Context) error {
	return h.testChannel(c, models.ChannelWhatsApp)
}

func (h *SettingHandlers) testChannel(c echo.Context, channel string) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	var in models.TestChannelInput
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}
	log, err := h.settingService.TestChannel(c.Request().Context(), tenantID, channel, in.To)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, log)
}

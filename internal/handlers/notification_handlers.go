package handlers

import (
	"net/http"

	"storeops/internal/common"
	"storeops/internal/models"
	"storeops/internal/services"

	"github.com/labstack/echo/v4"
)

// NotificationHandlers handles notification-related HTTP requests
type NotificationHandlers struct {
	notificationService services.NotificationService
}

// NewNotificationHandlers creates a new notification handlers instance
func NewNotificationHandlers(notificationService services.NotificationService) *NotificationHandlers {
	return &NotificationHandlers{notificationService: notificationService}
}

// SendEmail godoc
//
//	@Summary	Queue an email
//	@Tags		notifications
//	@Accept		json
//	@Produce	json
//	@Param		request	body		models.SendEmailInput	true	"Email"
//	@Success	202		{object}	models.NotificationLog
//	@Failure	400		{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/notifications/email [post]
func (h *NotificationHandlers) SendEmail(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	var in models.SendEmailInput
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}
	log, err := h.notificationService.SendEmail(c.Request().Context(), tenantID, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, log)
}

// SendWhatsApp godoc
//
//	@Summary	Queue a WhatsApp message
//	@Tags		notifications
//	@Accept		json
//	@Produce	json
//	@Param		request	body		models.SendWhatsAppInput	true	"Message"
//	@Success	202		{object}	models.NotificationLog
//	@Failure	400		{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/notifications/whatsapp [post]
func (h *NotificationHandlers) SendWhatsApp(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	var in models.SendWhatsAppInput
	if err := bindAndValidate(c, &in); err != nil {
		return err
	}
	log, err := h.notificationService.SendWhatsApp(c.Request().Context(), tenantID, &in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, log)
}

// ListNotifications godoc
//
//	@Summary	List notification logs
//	@Tags		notifications
//	@Produce	json
//	@Param		channel	query		string	false	"EMAIL or WHATSAPP"
//	@Param		status	query		string	false	"PENDING, SENT or FAILED"
//	@Success	200		{object}	common.Page[models.NotificationLog]
//	@Security	BearerAuth
//	@Router		/notifications [get]
func (h *NotificationHandlers) ListNotifications(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	limit, offset := common.ParsePagination(c)
	page, err := h.notificationService.List(c.Request().Context(), tenantID, &models.NotificationFilter{
		Channel: optionalString(c, "channel"),
		Status:  optionalString(c, "status"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetNotification godoc
//
//	@Summary	Get a notification log
//	@Tags		notifications
//	@Produce	json
//	@Param		id	path		string	true	"Notification ID"
//	@Success	200	{object}	models.NotificationLog
//	@Security	BearerAuth
//	@Router		/notifications/{id} [get]
func (h *NotificationHandlers) GetNotification(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	log, err := h.notificationService.Get(c.Request().Context(), tenantID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, log)
}

// RetryNotification godoc
//
//	@Summary	Re-queue a failed notification
//	@Tags		notifications
//	@Produce	json
//	@Param		id	path		string	true	"Notification ID"
//	@Success	202	{object}	models.NotificationLog
//	@Failure	400	{object}	common.ErrorResponse
//	@Security	BearerAuth
//	@Router		/notifications/{id}/retry [post]
func (h *NotificationHandlers) RetryNotification(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}
	log, err := h.notificationService.Retry(c.Request().Context(), tenantID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, log)
}

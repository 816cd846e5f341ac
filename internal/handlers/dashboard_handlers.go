package handlers

import (
	"net/http"

	"storeops/internal/services"

	"github.com/labstack/echo/v4"
)

type DashboardHandlers struct {
	dashboardService services.DashboardService
}

func NewDashboardHandlers(dashboardService services.DashboardService) *DashboardHandlers {
	return &DashboardHandlers{dashboardService: dashboardService}
}

// Summary godoc
//
//	@Summary	Today's and this month's figures
//	@Tags		dashboard
//	@Produce	json
//	@Success	200	{object}	models.DashboardSummary
//	@Security	BearerAuth
//	@Router		/dashboard/summary [get]
func (h *DashboardHandlers) Summary(c echo.Context) error {
	tenantID, _, err := identity(c)
	if err != nil {
		return err
	}
	summary, err := h.dashboardService.Summary(c.Request().Context(), tenantID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

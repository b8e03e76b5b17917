package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_admin/internal/dashboard"
	"github.com/Skotchmaster/shop_admin/internal/logging"
	"github.com/Skotchmaster/shop_admin/internal/service"
)

type StatsHTTP struct {
	Svc *service.CatalogService
}

func (h *StatsHTTP) GetStats(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.Svc.ListProducts(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("get_stats_error", "status", 500, "reason", "cannot list products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch stats")
	}
	return c.JSON(http.StatusOK, dashboard.NewOverview(products))
}

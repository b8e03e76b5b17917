package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_admin/internal/logging"
	"github.com/Skotchmaster/shop_admin/internal/models"
	"github.com/Skotchmaster/shop_admin/internal/transport"
	"github.com/Skotchmaster/shop_admin/internal/util"
)

type Searcher interface {
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type SearchHTTP struct {
	Svc Searcher
}

func (h *SearchHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		l.Warn("search_error", "status", 400, "reason", "empty query")
		return echo.NewHTTPError(http.StatusBadRequest, "Query parameter q is required")
	}

	from, size, page := util.Calculate(
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
	)

	total, products, err := h.Svc.Search(ctx, q, from, size)
	if err != nil {
		l.Error("search_error", "status", 500, "reason", "search backend failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to search products")
	}

	return c.JSON(http.StatusOK, transport.SearchResponse{Total: total, Page: page, Size: size, Products: products})
}

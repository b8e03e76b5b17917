package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_admin/internal/logging"
	"github.com/Skotchmaster/shop_admin/internal/metrics"
	"github.com/Skotchmaster/shop_admin/internal/models"
	"github.com/Skotchmaster/shop_admin/internal/service"
	"github.com/Skotchmaster/shop_admin/internal/transport"
	"github.com/Skotchmaster/shop_admin/internal/validation"
)

type CatalogHTTP struct {
	Svc     *service.CatalogService
	Metrics *metrics.Manager
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	products, err := h.Svc.ListProducts(ctx)
	if err != nil {
		l.Error("get_products_error", "status", 500, "reason", "cannot list products", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch products")
	}
	if products == nil {
		products = []models.Product{}
	}

	return c.JSON(http.StatusOK, products)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	product, err := h.Svc.GetProduct(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_product_failed", "status", 404, "reason", "product not found", "product_id", c.Param("id"))
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		l.Error("get_product_failed", "status", 500, "reason", "cannot get product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch product")
	}

	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	fields, err := bindProduct(c)
	if err != nil {
		l.Warn("create_product_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	id, err := h.Svc.CreateProduct(ctx, fields)
	if err != nil {
		if verr := validationError(err); verr != nil {
			l.Warn("create_product_error", "status", 400, "reason", "validation failed", "error", err)
			return verr
		}
		l.Error("create_product_error", "status", 500, "reason", "cannot insert product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create product")
	}

	h.Metrics.ProductWrite("create")
	l.Info("create_product_success", "product_id", id)
	return c.JSON(http.StatusCreated, transport.CreatedResponse{Message: "Product created", ID: id})
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update_product")

	fields, err := bindProduct(c)
	if err != nil {
		l.Warn("update_product_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	id := c.Param("id")
	if err := h.Svc.UpdateProduct(ctx, id, fields); err != nil {
		if verr := validationError(err); verr != nil {
			l.Warn("update_product_error", "status", 400, "reason", "validation failed", "error", err)
			return verr
		}
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("update_product_error", "status", 404, "reason", "product not found", "product_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		l.Error("update_product_error", "status", 500, "reason", "cannot update product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update product")
	}

	h.Metrics.ProductWrite("update")
	l.Info("update_product_success", "product_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Product updated"})
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id := c.Param("id")
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("delete_product_error", "status", 404, "reason", "product not found", "product_id", id)
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		l.Error("delete_product_error", "status", 500, "reason", "cannot delete product", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete product")
	}

	h.Metrics.ProductWrite("delete")
	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Product deleted"})
}

// bindProduct decodes the request body into typed fields. Type errors and
// unknown fields come back as a *ValidationError.
func bindProduct(c echo.Context) (models.ProductFields, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return models.ProductFields{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	fields, err := validation.DecodeProduct(body)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			return models.ProductFields{}, &ValidationError{Details: verrs}
		}
		return models.ProductFields{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	return fields, nil
}

func validationError(err error) error {
	if !errors.Is(err, service.ErrValidation) {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return &ValidationError{Details: verrs}
	}
	return echo.NewHTTPError(http.StatusBadRequest, "Validation failed")
}

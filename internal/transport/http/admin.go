package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_admin/internal/logging"
	"github.com/Skotchmaster/shop_admin/internal/service"
	"github.com/Skotchmaster/shop_admin/internal/transport"
)

type AdminHTTP struct {
	Svc     *service.AdminService
	SiteURL string
}

func (h *AdminHTTP) CreateAdmin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_admin")

	var req transport.CreateAdminRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_admin_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	admin, err := h.Svc.CreateAdmin(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			msg := service.AdminValidationMessage(err)
			l.Warn("create_admin_error", "status", 400, "reason", msg)
			return echo.NewHTTPError(http.StatusBadRequest, msg)
		case errors.Is(err, service.ErrConflict):
			l.Warn("create_admin_error", "status", 409, "reason", "email already registered")
			return echo.NewHTTPError(http.StatusConflict, "Admin with this email already exists")
		default:
			l.Error("create_admin_error", "status", 500, "reason", "cannot insert admin", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create admin")
		}
	}

	l.Info("create_admin_success", "admin_id", admin.ID)
	return c.JSON(http.StatusCreated, transport.MessageResponse{Message: "Admin created"})
}

func (h *AdminHTTP) AdminsCount(c echo.Context) error {
	ctx := c.Request().Context()

	count, err := h.Svc.CountAdmins(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("admins_count_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count admins")
	}
	return c.JSON(http.StatusOK, transport.AdminsCountResponse{Count: count, SiteURL: h.SiteURL})
}

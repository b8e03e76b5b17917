package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_admin/internal/logging"
	"github.com/Skotchmaster/shop_admin/internal/metrics"
	authmw "github.com/Skotchmaster/shop_admin/internal/middleware/auth"
	"github.com/Skotchmaster/shop_admin/internal/service"
	"github.com/Skotchmaster/shop_admin/internal/tokens"
	"github.com/Skotchmaster/shop_admin/internal/transport"
)

type AuthHTTP struct {
	Svc           *service.AuthService
	Issuer        *tokens.Issuer
	SecureCookies bool
	Metrics       *metrics.Manager
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	identity, err := h.Svc.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.Metrics.LoginAttempt("rejected")
			l.Warn("login_error", "status", 401, "reason", "invalid credentials")
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		}
		h.Metrics.LoginAttempt("error")
		l.Error("login_error", "status", 500, "reason", "cannot authenticate", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to sign in")
	}

	token, exp, err := h.Issuer.Issue(*identity)
	if err != nil {
		h.Metrics.LoginAttempt("error")
		l.Error("login_error", "status", 500, "reason", "cannot sign session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to sign in")
	}

	c.SetCookie(authmw.CreateCookie(tokens.CookieName, token, "/", exp, h.SecureCookies))
	h.Metrics.LoginAttempt("success")
	l.Info("login_success", "admin_id", identity.ID)
	return c.JSON(http.StatusOK, identity)
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	c.SetCookie(authmw.DeleteCookie(tokens.CookieName, "/", h.SecureCookies))
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Signed out"})
}

func (h *AuthHTTP) Session(c echo.Context) error {
	identity, ok := authmw.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	exp, _ := authmw.ExpiresFrom(c)
	return c.JSON(http.StatusOK, transport.SessionResponse{User: identity, Expires: exp})
}

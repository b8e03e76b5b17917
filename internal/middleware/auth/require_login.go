package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_admin/internal/logging"
	"github.com/Skotchmaster/shop_admin/internal/tokens"
)

var errNoSession = errors.New("no session token")

type SessionMiddleware struct {
	Issuer        *tokens.Issuer
	SecureCookies bool
	LoginPath     string
}

func NewSessionMiddleware(issuer *tokens.Issuer, secureCookies bool) *SessionMiddleware {
	return &SessionMiddleware{Issuer: issuer, SecureCookies: secureCookies, LoginPath: "/login"}
}

// Token reads the session token from the cookie, falling back to a bearer header.
func Token(c echo.Context) string {
	if ck, err := c.Cookie(tokens.CookieName); err == nil && ck.Value != "" {
		return ck.Value
	}
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func (m *SessionMiddleware) claims(c echo.Context) (*tokens.SessionClaims, error) {
	raw := Token(c)
	if raw == "" {
		return nil, errNoSession
	}
	return m.Issuer.Parse(raw)
}

// RequireSession rejects API requests that carry no valid session.
func (m *SessionMiddleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := m.claims(c)
		if err != nil {
			logging.FromContext(c.Request().Context()).Warn("session_rejected", "status", 401, "reason", err.Error())
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}
		setIdentity(c, claims)
		return next(c)
	}
}

// RequirePageSession sends browsers without a valid session to the login page.
func (m *SessionMiddleware) RequirePageSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := m.claims(c)
		if err != nil {
			if !errors.Is(err, errNoSession) {
				c.SetCookie(DeleteCookie(tokens.CookieName, "/", m.SecureCookies))
			}
			return c.Redirect(http.StatusSeeOther, m.LoginPath)
		}
		setIdentity(c, claims)
		return next(c)
	}
}

// Optional attaches the identity when a valid session exists and never rejects.
func (m *SessionMiddleware) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if claims, err := m.claims(c); err == nil {
			setIdentity(c, claims)
		}
		return next(c)
	}
}

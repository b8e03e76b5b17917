// Package csrf protects the dashboard's HTML forms with a double-submit token
// and an origin check.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_admin/internal/logging"
)

const contextKey = "csrf_token"

var (
	errBadOrigin = errors.New("request origin is not trusted")
	errBadToken  = errors.New("form token does not match cookie")
)

type Config struct {
	CookieName string
	FormField  string
	// HeaderName is accepted instead of FormField for scripted requests.
	HeaderName string
	Secure     bool
	TTL        time.Duration

	// TrustedOrigins are scheme://host values allowed to post forms in
	// addition to the request's own host, such as the public site URL when
	// the server sits behind a proxy.
	TrustedOrigins []string
}

func DefaultConfig() Config {
	return Config{
		CookieName: "XSRF-TOKEN",
		FormField:  "csrf_token",
		HeaderName: "X-CSRF-Token",
		TTL:        24 * time.Hour,
	}
}

// Middleware issues a token on every request, exposes it through Token and
// rejects state-changing requests whose origin or token does not check out.
func Middleware(cfg Config) echo.MiddlewareFunc {
	trusted := make([]string, 0, len(cfg.TrustedOrigins))
	for _, o := range cfg.TrustedOrigins {
		if norm, ok := normalizeOrigin(o); ok {
			trusted = append(trusted, norm)
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := cookieToken(c, cfg.CookieName)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to prepare form")
			}
			c.SetCookie(&http.Cookie{
				Name:     cfg.CookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   int(cfg.TTL.Seconds()),
				Secure:   cfg.Secure,
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(contextKey, token)

			if isSafe(c.Request().Method) {
				return next(c)
			}

			if err := check(c, cfg, trusted, token); err != nil {
				logging.FromContext(c.Request().Context()).Warn("csrf_rejected", "status", 403, "reason", err.Error())
				return echo.NewHTTPError(http.StatusForbidden, "Form expired, reload the page and try again")
			}
			return next(c)
		}
	}
}

// Token returns the token forms on this request must submit, or "".
func Token(c echo.Context) string {
	t, _ := c.Get(contextKey).(string)
	return t
}

func check(c echo.Context, cfg Config, trusted []string, token string) error {
	req := c.Request()

	origin, ok := requestOrigin(req)
	if !ok {
		return errBadOrigin
	}
	if origin != selfOrigin(req) && !slices.Contains(trusted, origin) {
		return errBadOrigin
	}

	sent := req.Header.Get(cfg.HeaderName)
	if sent == "" {
		sent = c.FormValue(cfg.FormField)
	}
	if len(sent) != len(token) || subtle.ConstantTimeCompare([]byte(sent), []byte(token)) != 1 {
		return errBadToken
	}
	return nil
}

// cookieToken reuses the browser's token so several open tabs stay valid.
func cookieToken(c echo.Context, name string) (string, error) {
	if ck, err := c.Cookie(name); err == nil && ck.Value != "" {
		return ck.Value, nil
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func isSafe(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func requestOrigin(r *http.Request) (string, bool) {
	if o := r.Header.Get("Origin"); o != "" && o != "null" {
		return normalizeOrigin(o)
	}
	if ref := r.Header.Get("Referer"); ref != "" {
		return normalizeOrigin(ref)
	}
	return "", false
}

func selfOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get(echo.HeaderXForwardedProto); p != "" {
		scheme = p
	}
	return strings.ToLower(scheme + "://" + r.Host)
}

func normalizeOrigin(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), true
}

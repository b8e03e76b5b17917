package csrf

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(cfg Config) *echo.Echo {
	e := echo.New()
	g := e.Group("", Middleware(cfg))
	g.GET("/dashboard/admins", func(c echo.Context) error { return c.String(http.StatusOK, Token(c)) })
	g.POST("/dashboard/admins", func(c echo.Context) error { return c.NoContent(http.StatusCreated) })
	return e
}

func issueToken(t *testing.T, e *echo.Echo) string {
	t.Helper()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/admins", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	token := rec.Body.String()
	require.NotEmpty(t, token)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, token, cookies[0].Value)
	assert.False(t, cookies[0].HttpOnly)
	return token
}

type submission struct {
	cookie, field, header, origin, referer string
}

func (s submission) post(e *echo.Echo) int {
	body := url.Values{"csrf_token": {s.field}}.Encode()
	req := httptest.NewRequest(http.MethodPost, "/dashboard/admins", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	if s.header != "" {
		req.Header.Set("X-CSRF-Token", s.header)
	}
	if s.origin != "" {
		req.Header.Set("Origin", s.origin)
	}
	if s.referer != "" {
		req.Header.Set("Referer", s.referer)
	}
	if s.cookie != "" {
		req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: s.cookie})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	e := newServer(DefaultConfig())
	token := issueToken(t, e)

	tests := []struct {
		name string
		sub  submission
		want int
	}{
		{name: "form field", sub: submission{cookie: token, field: token, origin: "http://example.com"}, want: http.StatusCreated},
		{name: "header", sub: submission{cookie: token, header: token, origin: "http://example.com"}, want: http.StatusCreated},
		{name: "referer fallback", sub: submission{cookie: token, field: token, referer: "http://example.com/dashboard/admins"}, want: http.StatusCreated},
		{name: "wrong token", sub: submission{cookie: token, field: "wrong", origin: "http://example.com"}, want: http.StatusForbidden},
		{name: "foreign origin", sub: submission{cookie: token, field: token, origin: "http://evil.test"}, want: http.StatusForbidden},
		{name: "no origin", sub: submission{cookie: token, field: token}, want: http.StatusForbidden},
		{name: "null origin", sub: submission{cookie: token, field: token, origin: "null"}, want: http.StatusForbidden},
		{name: "no cookie", sub: submission{field: token, origin: "http://example.com"}, want: http.StatusForbidden},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.sub.post(e), tt.name)
	}
}

func TestMiddleware_TrustedOrigins(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.TrustedOrigins = []string{"https://Admin.Example.com/", "not a url"}
	e := newServer(cfg)
	token := issueToken(t, e)

	assert.Equal(t, http.StatusCreated, submission{cookie: token, field: token, origin: "https://admin.example.com"}.post(e))
	assert.Equal(t, http.StatusCreated, submission{cookie: token, field: token, origin: "http://example.com"}.post(e))
	assert.Equal(t, http.StatusForbidden, submission{cookie: token, field: token, origin: "http://admin.example.com"}.post(e))
}

func TestMiddleware_ReusesCookieToken(t *testing.T) {
	t.Parallel()

	e := newServer(DefaultConfig())
	req := httptest.NewRequest(http.MethodGet, "/dashboard/admins", nil)
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: "existing-token"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "existing-token", rec.Body.String())
}

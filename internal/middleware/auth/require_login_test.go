package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shop_admin/internal/models"
	"github.com/Skotchmaster/shop_admin/internal/tokens"
)

func newMiddleware() (*SessionMiddleware, string) {
	iss := &tokens.Issuer{Secret: []byte("mw-secret"), TTL: time.Hour}
	token, _, _ := iss.Issue(models.Identity{ID: "admin-1", Email: "admin@example.com", Name: "Admin User"})
	return NewSessionMiddleware(iss, false), token
}

func okHandler(c echo.Context) error {
	id, ok := IdentityFrom(c)
	if !ok {
		return c.NoContent(http.StatusTeapot)
	}
	return c.String(http.StatusOK, id.Email)
}

func TestRequireSession(t *testing.T) {
	t.Parallel()

	mw, token := newMiddleware()

	tests := []struct {
		name     string
		prepare  func(r *http.Request)
		wantCode int
	}{
		{name: "no token", prepare: func(*http.Request) {}, wantCode: http.StatusUnauthorized},
		{name: "cookie", prepare: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: tokens.CookieName, Value: token}) }, wantCode: http.StatusOK},
		{name: "bearer", prepare: func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+token) }, wantCode: http.StatusOK},
		{name: "tampered", prepare: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: tokens.CookieName, Value: token + "x"}) }, wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := mw.RequireSession(okHandler)(c)
			if tt.wantCode == http.StatusUnauthorized {
				var he *echo.HTTPError
				require.ErrorAs(t, err, &he)
				assert.Equal(t, http.StatusUnauthorized, he.Code)
				assert.Equal(t, "Unauthorized", he.Message)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "admin@example.com", rec.Body.String())
		})
	}
}

func TestRequirePageSession_Redirects(t *testing.T) {
	t.Parallel()

	mw, _ := newMiddleware()
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: tokens.CookieName, Value: "garbage"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, mw.RequirePageSession(okHandler)(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	assert.Contains(t, rec.Header().Get("Set-Cookie"), tokens.CookieName+"=;")
}

func TestOptional_NeverRejects(t *testing.T) {
	t.Parallel()

	mw, _ := newMiddleware()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/login", nil), rec)

	require.NoError(t, mw.Optional(okHandler)(c))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestCookies(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour)
	ck := CreateCookie(tokens.CookieName, "v", "/", exp, true)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)

	del := DeleteCookie(tokens.CookieName, "/", false)
	assert.Equal(t, -1, del.MaxAge)
	assert.Empty(t, del.Value)
}

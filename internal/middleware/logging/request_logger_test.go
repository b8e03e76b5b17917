package loggingmw

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shop_admin/internal/logging"
	authmw "github.com/Skotchmaster/shop_admin/internal/middleware/auth"
	"github.com/Skotchmaster/shop_admin/internal/models"
	"github.com/Skotchmaster/shop_admin/internal/tokens"
)

func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := logging.NewWriter(&buf, "info")

	e := echo.New()
	e.Use(middleware.RequestID(), RequestLogger(base, DefaultOptions()))
	e.GET("/api/products/:id", func(c echo.Context) error {
		logging.FromContext(c.Request().Context()).Info("inside_handler")
		if c.Param("id") == "missing" {
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/abc", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	recs := records(t, &buf)
	require.Len(t, recs, 4)

	assert.Equal(t, "inside_handler", recs[0]["msg"])
	assert.Equal(t, "/api/products/:id", recs[0]["route"])
	assert.NotEmpty(t, recs[0]["request_id"])

	assert.Equal(t, "http_request", recs[1]["msg"])
	assert.EqualValues(t, 200, recs[1]["status"])
	assert.Equal(t, "INFO", recs[1]["level"])
	assert.NotContains(t, recs[1], "admin_id")

	assert.EqualValues(t, 404, recs[3]["status"])
	assert.Equal(t, "WARN", recs[3]["level"])
	assert.Equal(t, "code=404, message=Product not found", recs[3]["error"])
}

func TestRequestLogger_AttachesAdmin(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	issuer := &tokens.Issuer{Secret: []byte("test-secret"), TTL: time.Hour}
	session := authmw.NewSessionMiddleware(issuer, false)
	token, _, err := issuer.Issue(models.Identity{ID: "admin-1", Email: "a@example.com", Name: "A"})
	require.NoError(t, err)

	e := echo.New()
	e.Use(RequestLogger(logging.NewWriter(&buf, "info"), DefaultOptions()))
	e.GET("/api/stats", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, session.RequireSession)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.AddCookie(&http.Cookie{Name: tokens.CookieName, Value: token})
	e.ServeHTTP(httptest.NewRecorder(), req)

	recs := records(t, &buf)
	require.NotEmpty(t, recs)
	last := recs[len(recs)-1]
	assert.Equal(t, "http_request", last["msg"])
	assert.Equal(t, "admin-1", last["admin_id"])
}

func TestOptions_Level(t *testing.T) {
	t.Parallel()

	o := DefaultOptions()
	tests := []struct {
		name    string
		path    string
		status  int
		elapsed time.Duration
		want    slog.Level
	}{
		{name: "ok", path: "/api/products", status: 200, want: slog.LevelInfo},
		{name: "liveness", path: "/health/live", status: 200, want: slog.LevelDebug},
		{name: "scrape", path: "/metrics", status: 200, want: slog.LevelDebug},
		{name: "failing readiness", path: "/health/ready", status: 503, want: slog.LevelError},
		{name: "client error", path: "/api/products/x", status: 404, want: slog.LevelWarn},
		{name: "slow", path: "/api/products", status: 200, elapsed: 3 * time.Second, want: slog.LevelWarn},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, o.level(tt.path, tt.status, tt.elapsed), tt.name)
	}

	assert.Equal(t, slog.LevelInfo, Options{}.level("/api/products", 200, time.Hour))
}

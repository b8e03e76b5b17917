package loggingmw

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_admin/internal/logging"
	authmw "github.com/Skotchmaster/shop_admin/internal/middleware/auth"
)

type Options struct {
	// QuietPrefixes are logged at debug level when they succeed. Health checks
	// and metric scrapes hit these every few seconds.
	QuietPrefixes []string
	// SlowThreshold raises a successful request to warn when exceeded. Zero disables it.
	SlowThreshold time.Duration
}

func DefaultOptions() Options {
	return Options{
		QuietPrefixes: []string{"/health/", "/metrics"},
		SlowThreshold: 2 * time.Second,
	}
}

// RequestLogger stores a request-scoped logger in the context and writes one
// "http_request" record when the handler returns. Handler errors are rendered
// here so the record carries the final status. The admin that made the
// request is attached once a session middleware has identified it.
func RequestLogger(base *slog.Logger, opts Options) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			attrs := []any{
				"method", req.Method,
				"route", c.Path(),
				"url", req.URL.Path,
				"remote_ip", c.RealIP(),
			}
			if rid := requestID(c); rid != "" {
				attrs = append(attrs, "request_id", rid)
			}
			l := base.With(attrs...)
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			elapsed := time.Since(start)
			status := c.Response().Status

			out := []slog.Attr{
				slog.Int("status", status),
				slog.Int64("duration_ms", elapsed.Milliseconds()),
				slog.Int64("bytes", c.Response().Size),
			}
			if id, ok := authmw.IdentityFrom(c); ok {
				out = append(out, slog.String("admin_id", id.ID))
			}
			if err != nil {
				out = append(out, slog.String("error", err.Error()))
			}

			l.LogAttrs(context.Background(), opts.level(req.URL.Path, status, elapsed), "http_request", out...)
			return nil
		}
	}
}

func (o Options) level(path string, status int, elapsed time.Duration) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	case o.SlowThreshold > 0 && elapsed > o.SlowThreshold:
		return slog.LevelWarn
	}
	for _, p := range o.QuietPrefixes {
		if strings.HasPrefix(path, p) {
			return slog.LevelDebug
		}
	}
	return slog.LevelInfo
}

func requestID(c echo.Context) string {
	if rid := c.Response().Header().Get(echo.HeaderXRequestID); rid != "" {
		return rid
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

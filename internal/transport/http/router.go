package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/shop_admin/internal/logging"
	"github.com/Skotchmaster/shop_admin/internal/metrics"
	authmw "github.com/Skotchmaster/shop_admin/internal/middleware/auth"
)

const uploadBodyLimit = "10M"

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	CatalogHandler *CatalogHTTP
	AdminHandler   *AdminHTTP
	AuthHandler    *AuthHTTP
	UploadHandler  *UploadHTTP
	StatsHandler   *StatsHTTP
	// SearchHandler is nil when no search backend is configured.
	SearchHandler *SearchHTTP

	Session      *authmw.SessionMiddleware
	LoginLimiter echo.MiddlewareFunc
	Metrics      *metrics.Manager
	Store        Pinger

	DebugEndpoints bool
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Store == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.Store.Ping(ctx); err != nil {
			logging.FromContext(ctx).Warn("readiness_failed", "status", 503, "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	api := e.Group("/api")

	products := api.Group("/products")
	if d.SearchHandler != nil {
		products.GET("/search", d.SearchHandler.SearchProducts)
	}
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	writes := products.Group("", d.Session.RequireSession)
	writes.POST("", d.CatalogHandler.CreateProduct)
	writes.PUT("/:id", d.CatalogHandler.UpdateProduct)
	writes.DELETE("/:id", d.CatalogHandler.DeleteProduct)

	auth := api.Group("/auth")
	if d.LoginLimiter != nil {
		auth.POST("/login", d.AuthHandler.Login, d.LoginLimiter)
	} else {
		auth.POST("/login", d.AuthHandler.Login)
	}
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.GET("/session", d.AuthHandler.Session, d.Session.RequireSession)

	api.POST("/admins", d.AdminHandler.CreateAdmin, d.Session.RequireSession)
	api.POST("/upload", d.UploadHandler.Upload, d.Session.RequireSession, echomw.BodyLimit(uploadBodyLimit))
	api.GET("/stats", d.StatsHandler.GetStats, d.Session.RequireSession)

	if d.DebugEndpoints {
		api.GET("/debug/admins-count", d.AdminHandler.AdminsCount)
	}
}

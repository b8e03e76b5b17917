// Package webadmin serves the server-rendered admin dashboard.
package webadmin

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/shop_admin/internal/logging"
	"github.com/Skotchmaster/shop_admin/internal/metrics"
	authmw "github.com/Skotchmaster/shop_admin/internal/middleware/auth"
	"github.com/Skotchmaster/shop_admin/internal/middleware/csrf"
	"github.com/Skotchmaster/shop_admin/internal/models"
	"github.com/Skotchmaster/shop_admin/internal/service"
	"github.com/Skotchmaster/shop_admin/internal/tokens"
	"github.com/Skotchmaster/shop_admin/internal/upload"
)

const formBodyLimit = "10M"

var notices = map[string]string{
	"created":  "Product created",
	"updated":  "Product updated",
	"deleted":  "Product deleted",
	"notfound": "Product not found",
}

type Deps struct {
	Catalog *service.CatalogService
	Admins  *service.AdminService
	Auth    *service.AuthService
	Issuer  *tokens.Issuer
	Session *authmw.SessionMiddleware
	// Uploads may be nil or unconfigured; images are then embedded as data URLs.
	Uploads *upload.Client
	Metrics *metrics.Manager

	SecureCookies bool
	// SiteURL is the public address forms are posted from.
	SiteURL       string
	LoginLimiter  echo.MiddlewareFunc
}

type Admin struct {
	catalog *service.CatalogService
	admins  *service.AdminService
	auth    *service.AuthService
	issuer  *tokens.Issuer
	session *authmw.SessionMiddleware
	uploads *upload.Client
	metrics *metrics.Manager

	secureCookies bool
	siteURL       string
	loginLimiter  echo.MiddlewareFunc
	pages         map[string]*template.Template
}

func New(d Deps) *Admin {
	return &Admin{
		catalog:       d.Catalog,
		admins:        d.Admins,
		auth:          d.Auth,
		issuer:        d.Issuer,
		session:       d.Session,
		uploads:       d.Uploads,
		metrics:       d.Metrics,
		secureCookies: d.SecureCookies,
		siteURL:       d.SiteURL,
		loginLimiter:  d.LoginLimiter,
		pages:         parsePages(),
	}
}

func (a *Admin) RegisterRoutes(e *echo.Echo) {
	cfg := csrf.DefaultConfig()
	cfg.Secure = a.secureCookies
	if a.siteURL != "" {
		cfg.TrustedOrigins = []string{a.siteURL}
	}
	csrfMW := csrf.Middleware(cfg)

	e.GET("/", func(c echo.Context) error { return c.Redirect(http.StatusSeeOther, "/dashboard") })

	e.GET("/login", a.handleLoginPage, csrfMW, a.session.Optional)
	loginMW := []echo.MiddlewareFunc{csrfMW}
	if a.loginLimiter != nil {
		loginMW = append([]echo.MiddlewareFunc{a.loginLimiter}, loginMW...)
	}
	e.POST("/login", a.handleLogin, loginMW...)
	e.POST("/logout", a.handleLogout, csrfMW)

	pages := e.Group("/dashboard", echomw.BodyLimit(formBodyLimit), csrfMW, a.session.RequirePageSession)
	pages.GET("", a.handleDashboard)
	pages.GET("/products/new", a.handleNewProduct)
	pages.POST("/products/new", a.handleNewProductStep)
	pages.GET("/products/:id/edit", a.handleEditProduct)
	pages.POST("/products/:id/edit", a.handleEditProductStep)
	pages.POST("/products/:id/delete", a.handleDeleteProduct)
	pages.GET("/admins", a.handleAdminsPage)
	pages.POST("/admins", a.handleCreateAdmin)
}

func (a *Admin) page(c echo.Context, title string) pageData {
	p := pageData{Title: title, CSRFToken: csrf.Token(c)}
	if id, ok := authmw.IdentityFrom(c); ok {
		p.User = &id
	}
	return p
}

func (a *Admin) handleLoginPage(c echo.Context) error {
	if _, ok := authmw.IdentityFrom(c); ok {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}
	return a.render(c, http.StatusOK, pageLogin, loginData{pageData: a.page(c, "Sign in")})
}

func (a *Admin) handleLogin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "webadmin.login")

	email := c.FormValue("email")
	data := loginData{pageData: a.page(c, "Sign in"), Email: email}

	identity, err := a.auth.Authenticate(ctx, email, c.FormValue("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			a.metrics.LoginAttempt("rejected")
			l.Warn("login_error", "status", 401, "reason", "invalid credentials")
			data.Error = "Invalid email or password"
			return a.render(c, http.StatusUnauthorized, pageLogin, data)
		}
		a.metrics.LoginAttempt("error")
		l.Error("login_error", "status", 500, "reason", "cannot authenticate", "error", err)
		data.Error = "Something went wrong. Please try again."
		return a.render(c, http.StatusInternalServerError, pageLogin, data)
	}

	token, exp, err := a.issuer.Issue(*identity)
	if err != nil {
		a.metrics.LoginAttempt("error")
		l.Error("login_error", "status", 500, "reason", "cannot sign session", "error", err)
		data.Error = "Something went wrong. Please try again."
		return a.render(c, http.StatusInternalServerError, pageLogin, data)
	}

	c.SetCookie(authmw.CreateCookie(tokens.CookieName, token, "/", exp, a.secureCookies))
	a.metrics.LoginAttempt("success")
	l.Info("login_success", "admin_id", identity.ID)
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (a *Admin) handleLogout(c echo.Context) error {
	c.SetCookie(authmw.DeleteCookie(tokens.CookieName, "/", a.secureCookies))
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (a *Admin) handleDashboard(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := a.catalog.ListProducts(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("dashboard_error", "status", 500, "reason", "cannot list products", "error", err)
		data := dashboardData{pageData: a.page(c, "Dashboard")}
		data.Error = "Failed to load products"
		return a.render(c, http.StatusInternalServerError, pageDashboard, data)
	}

	data := newDashboardData(products)
	data.pageData = a.page(c, "Dashboard")
	data.Notice = notices[c.QueryParam("notice")]
	return a.render(c, http.StatusOK, pageDashboard, data)
}

func (a *Admin) handleAdminsPage(c echo.Context) error {
	return a.render(c, http.StatusOK, pageAdmins, adminsData{pageData: a.page(c, "Admins")})
}

func (a *Admin) handleCreateAdmin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "webadmin.create_admin")

	data := adminsData{pageData: a.page(c, "Admins"), Name: c.FormValue("name"), Email: c.FormValue("email")}

	admin, err := a.admins.CreateAdmin(ctx, data.Name, data.Email, c.FormValue("password"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			data.Error = service.AdminValidationMessage(err)
			return a.render(c, http.StatusBadRequest, pageAdmins, data)
		case errors.Is(err, service.ErrConflict):
			data.Error = "Admin with this email already exists"
			return a.render(c, http.StatusConflict, pageAdmins, data)
		default:
			l.Error("create_admin_error", "status", 500, "reason", "cannot insert admin", "error", err)
			data.Error = "Failed to create admin"
			return a.render(c, http.StatusInternalServerError, pageAdmins, data)
		}
	}

	l.Info("create_admin_success", "admin_id", admin.ID)
	return a.render(c, http.StatusCreated, pageAdmins, adminsData{
		pageData: pageData{Title: "Admins", User: data.User, CSRFToken: data.CSRFToken, Notice: "Admin created"},
	})
}

func identityOf(c echo.Context) models.Identity {
	id, _ := authmw.IdentityFrom(c)
	return id
}

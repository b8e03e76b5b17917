package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/Skotchmaster/shop_admin/internal/config"
	"github.com/Skotchmaster/shop_admin/internal/db"
	"github.com/Skotchmaster/shop_admin/internal/es"
	"github.com/Skotchmaster/shop_admin/internal/logging"
	"github.com/Skotchmaster/shop_admin/internal/metrics"
	authmw "github.com/Skotchmaster/shop_admin/internal/middleware/auth"
	loggingmw "github.com/Skotchmaster/shop_admin/internal/middleware/logging"
	"github.com/Skotchmaster/shop_admin/internal/mykafka"
	"github.com/Skotchmaster/shop_admin/internal/ratelimit"
	"github.com/Skotchmaster/shop_admin/internal/repo"
	"github.com/Skotchmaster/shop_admin/internal/repo/mongostore"
	"github.com/Skotchmaster/shop_admin/internal/service"
	"github.com/Skotchmaster/shop_admin/internal/service/search"
	"github.com/Skotchmaster/shop_admin/internal/tokens"
	httpserver "github.com/Skotchmaster/shop_admin/internal/transport/http"
	"github.com/Skotchmaster/shop_admin/internal/upload"
	"github.com/Skotchmaster/shop_admin/internal/webadmin"
)

type store interface {
	service.ProductRepo
	service.AdminRepo
	Ping(ctx context.Context) error
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() (err error) {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	logger := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile}).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	ctx := logging.IntoContext(context.Background(), logger)

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeStore()) }()

	producer := mykafka.NewProducer(cfg.KafkaBrokers)
	defer func() { err = multierr.Append(err, producer.Close()) }()
	if !producer.Enabled() {
		logger.Info("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	var (
		indexer       service.Indexer
		searchHandler *httpserver.SearchHTTP
	)
	if cfg.ESURL != "" {
		esClient, err := es.NewClient(ctx, es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
		if err != nil {
			return err
		}
		searchSvc := &search.Service{ES: esClient, Index: cfg.ESIndex}
		indexer = searchSvc
		searchHandler = &httpserver.SearchHTTP{Svc: searchSvc}
	}

	var loginLimiter echo.MiddlewareFunc
	if cfg.RedisAddr != "" {
		limiter, rdb := ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword)
		defer func() { err = multierr.Append(err, rdb.Close()) }()
		loginLimiter = ratelimit.PerClient(limiter, "login", cfg.LoginRateLimitPerMin)
	}

	reg := prometheus.NewRegistry()
	metrics.RegisterRuntime(reg)
	m := metrics.NewManager(cfg.ServiceName, reg)

	issuer := &tokens.Issuer{Secret: []byte(cfg.SessionSecret), TTL: cfg.SessionTTL}
	session := authmw.NewSessionMiddleware(issuer, cfg.SecureCookies())

	catalog := &service.CatalogService{Repo: st, Events: producer, Search: indexer}
	admins := &service.AdminService{Repo: st, Events: producer}
	auth := &service.AuthService{
		Repo:      st,
		Bootstrap: service.BootstrapAdmin{Email: cfg.AdminEmail, Password: cfg.AdminPassword, Name: cfg.AdminName},
	}

	bootCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = auth.EnsureBootstrapAdmin(bootCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	uploads := upload.NewClient(cfg.CloudinaryBaseURL, cfg.CloudinaryCloudName, cfg.CloudinaryUploadPreset)
	if !uploads.Enabled() {
		logger.Info("image_host_disabled", "reason", "CLOUDINARY_CLOUD_NAME is empty")
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(m.Middleware())
	e.Use(loggingmw.RequestLogger(logger, loggingmw.DefaultOptions()))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalog, Metrics: m},
		AdminHandler:   &httpserver.AdminHTTP{Svc: admins, SiteURL: cfg.SiteURL},
		AuthHandler:    &httpserver.AuthHTTP{Svc: auth, Issuer: issuer, SecureCookies: cfg.SecureCookies(), Metrics: m},
		UploadHandler:  &httpserver.UploadHTTP{Client: uploads},
		StatsHandler:   &httpserver.StatsHTTP{Svc: catalog},
		SearchHandler:  searchHandler,
		Session:        session,
		LoginLimiter:   loginLimiter,
		Metrics:        m,
		Store:          st,
		DebugEndpoints: cfg.DebugEndpoints,
	})

	webadmin.New(webadmin.Deps{
		Catalog:       catalog,
		Admins:        admins,
		Auth:          auth,
		Issuer:        issuer,
		Session:       session,
		Uploads:       uploads,
		Metrics:       m,
		SecureCookies: cfg.SecureCookies(),
		SiteURL:       cfg.SiteURL,
		LoginLimiter:  loginLimiter,
	}).RegisterRoutes(e)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server_listening", "addr", srv.Addr, "site_url", cfg.SiteURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}

	logger.Info("shutting_down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("server_stopped")
	return nil
}

// openStore picks the backend from the DATABASE_URL scheme.
func openStore(ctx context.Context, cfg config.Config) (store, func() error, error) {
	kind, err := db.Detect(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if kind == db.KindMongo {
		ms, err := mongostore.Open(openCtx, cfg.DatabaseURL, cfg.DatabaseName)
		if err != nil {
			return nil, nil, fmt.Errorf("mongo open: %w", err)
		}
		return ms, func() error {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return ms.Close(closeCtx)
		}, nil
	}

	gdb, err := db.Open(openCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("db open: %w", err)
	}
	return &repo.GormRepo{DB: gdb}, func() error { return db.Close(gdb) }, nil
}

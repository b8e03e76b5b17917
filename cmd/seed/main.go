package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/fatih/color"
	"go.uber.org/multierr"

	"github.com/Skotchmaster/shop_admin/internal/config"
	"github.com/Skotchmaster/shop_admin/internal/dashboard"
	"github.com/Skotchmaster/shop_admin/internal/db"
	"github.com/Skotchmaster/shop_admin/internal/models"
	"github.com/Skotchmaster/shop_admin/internal/repo"
	"github.com/Skotchmaster/shop_admin/internal/repo/mongostore"
	"github.com/Skotchmaster/shop_admin/internal/service"
)

type seedStore interface {
	service.ProductRepo
	service.AdminRepo
	ResetAdmins(ctx context.Context) (int64, error)
	ResetProducts(ctx context.Context) (int64, error)
}

func main() {
	envFile := flag.String("env", ".env", "path to an optional .env file")
	sample := flag.Int("sample", 0, "number of fake products to insert after the reset")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *envFile, *sample); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, envFile string, sample int) (err error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	st, closeStore, err := open(ctx, cfg.DatabaseURL, cfg.DatabaseName)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeStore()) }()

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	removed, err := st.ResetAdmins(ctx)
	if err != nil {
		return fmt.Errorf("reset admins: %w", err)
	}
	yellow.Printf("    ✗ removed %d admin(s)\n", removed)

	admins := &service.AdminService{Repo: st}
	admin, err := admins.CreateAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("create default admin: %w", err)
	}
	green.Printf("    ▶ created admin %s <%s>\n", admin.Name, admin.Email)

	removed, err = st.ResetProducts(ctx)
	if err != nil {
		return fmt.Errorf("reset products: %w", err)
	}
	yellow.Printf("    ✗ removed %d product(s)\n", removed)

	if sample > 0 {
		catalog := &service.CatalogService{Repo: st}
		for i := 0; i < sample; i++ {
			if _, err := catalog.CreateProduct(ctx, fakeProduct()); err != nil {
				return fmt.Errorf("insert sample product: %w", err)
			}
		}
		green.Printf("    ▶ inserted %d sample product(s)\n", sample)
	}

	return nil
}

func open(ctx context.Context, dsn, database string) (seedStore, func() error, error) {
	kind, err := db.Detect(dsn)
	if err != nil {
		return nil, nil, err
	}

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if kind == db.KindMongo {
		ms, err := mongostore.Open(openCtx, dsn, database)
		if err != nil {
			return nil, nil, err
		}
		return ms, func() error { return ms.Close(context.Background()) }, nil
	}

	gdb, err := db.Open(openCtx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return &repo.GormRepo{DB: gdb}, func() error { return db.Close(gdb) }, nil
}

func fakeProduct() models.ProductFields {
	categories := dashboard.Categories[:len(dashboard.Categories)-1]
	return models.ProductFields{
		Name:        gofakeit.Color() + " " + gofakeit.Noun(),
		Description: gofakeit.Sentence(8),
		Price:       gofakeit.Price(1, 500),
		Stock:       gofakeit.Number(0, 60),
		Category:    categories[gofakeit.Number(0, len(categories)-1)],
		ImageURL:    "https://picsum.photos/seed/" + gofakeit.UUID() + "/400",
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/shop_admin/internal/logging"
	"github.com/Skotchmaster/shop_admin/internal/models"
	"github.com/Skotchmaster/shop_admin/internal/mykafka"
	"github.com/Skotchmaster/shop_admin/internal/repo"
	"github.com/Skotchmaster/shop_admin/internal/validation"
)

type ProductRepo interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, id string, f models.ProductFields, updatedAt time.Time) error
	DeleteProduct(ctx context.Context, id string) error
}

type CatalogService struct {
	Repo   ProductRepo
	Events Publisher
	Search Indexer
	Now    func() time.Time
}

func (s *CatalogService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.Repo.ListProducts(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// CreateProduct validates f and stores it, returning the new id.
func (s *CatalogService) CreateProduct(ctx context.Context, f models.ProductFields) (string, error) {
	if err := validation.Product(f); err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, err)
	}

	now := s.now()
	p := models.Product{CreatedAt: now, UpdatedAt: now}
	f.Apply(&p)

	if err := s.Repo.CreateProduct(ctx, &p); err != nil {
		return "", err
	}

	publish(ctx, s.Events, mykafka.TopicProductEvents, mykafka.Event{Type: "product_created", ID: p.ID, Name: p.Name, At: now})
	s.index(ctx, p)
	return p.ID, nil
}

// UpdateProduct replaces all business fields of an existing product.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, f models.ProductFields) error {
	if err := validation.Product(f); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	now := s.now()
	if err := s.Repo.UpdateProduct(ctx, id, f, now); err != nil {
		return notFound(err)
	}

	publish(ctx, s.Events, mykafka.TopicProductEvents, mykafka.Event{Type: "product_updated", ID: id, Name: f.Name, At: now})
	if s.Search != nil {
		if p, err := s.Repo.GetProduct(ctx, id); err == nil {
			s.index(ctx, *p)
		}
	}
	return nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return notFound(err)
	}

	publish(ctx, s.Events, mykafka.TopicProductEvents, mykafka.Event{Type: "product_deleted", ID: id, At: s.now()})
	if s.Search != nil {
		if err := s.Search.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Error("search_delete_failed", "product_id", id, "error", err)
		}
	}
	return nil
}

func (s *CatalogService) index(ctx context.Context, p models.Product) {
	if s.Search == nil {
		return
	}
	if err := s.Search.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Error("search_index_failed", "product_id", p.ID, "error", err)
	}
}

func notFound(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

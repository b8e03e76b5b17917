// Package mongostore keeps admins and products in MongoDB collections.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Skotchmaster/shop_admin/internal/models"
	"github.com/Skotchmaster/shop_admin/internal/repo"
)

const (
	adminsCollection   = "admins"
	productsCollection = "products"
)

type Store struct {
	client   *mongo.Client
	admins   *mongo.Collection
	products *mongo.Collection
}

// Open connects, pings and ensures the unique email index exists.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := New(client, database)
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func New(client *mongo.Client, database string) *Store {
	d := client.Database(database)
	return &Store{
		client:   client,
		admins:   d.Collection(adminsCollection),
		products: d.Collection(productsCollection),
	}
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.admins.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	cur, err := s.products.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	items := make([]models.Product, 0)
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := s.products.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.products.InsertOne(ctx, p)
	return err
}

func (s *Store) UpdateProduct(ctx context.Context, id string, f models.ProductFields, updatedAt time.Time) error {
	res, err := s.products.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":        f.Name,
		"description": f.Description,
		"price":       f.Price,
		"stock":       f.Stock,
		"category":    f.Category,
		"imageUrl":    f.ImageURL,
		"updatedAt":   updatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Store) ResetProducts(ctx context.Context) (int64, error) {
	res, err := s.products.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) CountAdmins(ctx context.Context) (int64, error) {
	return s.admins.CountDocuments(ctx, bson.D{})
}

func (s *Store) FindAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var a models.Admin
	if err := s.admins.FindOne(ctx, bson.M{"email": email}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *Store) CreateAdminIfAbsent(ctx context.Context, a *models.Admin) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if _, err := s.admins.InsertOne(ctx, a); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (s *Store) ResetAdmins(ctx context.Context) (int64, error) {
	res, err := s.admins.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

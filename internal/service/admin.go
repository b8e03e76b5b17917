package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/shop_admin/internal/hash"
	"github.com/Skotchmaster/shop_admin/internal/models"
	"github.com/Skotchmaster/shop_admin/internal/mykafka"
	"github.com/Skotchmaster/shop_admin/internal/repo"
)

type AdminRepo interface {
	CountAdmins(ctx context.Context) (int64, error)
	FindAdminByEmail(ctx context.Context, email string) (*models.Admin, error)
	CreateAdminIfAbsent(ctx context.Context, a *models.Admin) error
}

var (
	ErrMissingAdminFields = errors.New("Name, email, and password are required")
	ErrPasswordTooLong    = fmt.Errorf("Password must be at most %d bytes", hash.MaxPasswordBytes)
)

type AdminService struct {
	Repo   AdminRepo
	Events Publisher
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AdminService) CreateAdmin(ctx context.Context, name, email, password string) (*models.Admin, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" || email == "" || strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("%w: %w", ErrValidation, ErrMissingAdminFields)
	}
	if len(password) > hash.MaxPasswordBytes {
		return nil, fmt.Errorf("%w: %w", ErrValidation, ErrPasswordTooLong)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	admin := &models.Admin{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Repo.CreateAdminIfAbsent(ctx, admin); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicAdminEvents, mykafka.Event{Type: "admin_created", ID: admin.ID, Name: admin.Name, At: admin.CreatedAt})
	return admin, nil
}

// AdminValidationMessage is the user-facing text for an ErrValidation from CreateAdmin.
func AdminValidationMessage(err error) string {
	if errors.Is(err, ErrPasswordTooLong) {
		return ErrPasswordTooLong.Error()
	}
	return ErrMissingAdminFields.Error()
}

func (s *AdminService) CountAdmins(ctx context.Context) (int64, error) {
	return s.Repo.CountAdmins(ctx)
}

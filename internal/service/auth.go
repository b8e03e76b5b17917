package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Skotchmaster/shop_admin/internal/hash"
	"github.com/Skotchmaster/shop_admin/internal/logging"
	"github.com/Skotchmaster/shop_admin/internal/models"
	"github.com/Skotchmaster/shop_admin/internal/repo"
)

// BootstrapAdmin is the account created when no admin exists yet.
type BootstrapAdmin struct {
	Email    string
	Password string
	Name     string
}

type AuthService struct {
	Repo      AdminRepo
	Bootstrap BootstrapAdmin

	bootstrapped atomic.Bool
	mu           sync.Mutex
}

// EnsureBootstrapAdmin creates the configured default admin when the admin
// collection is empty. It is safe to call concurrently and repeatedly. Once
// admins exist the count is skipped until a login misses.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context) error {
	if s.bootstrapped.Load() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bootstrapped.Load() {
		return nil
	}

	l := logging.FromContext(ctx).With("svc", "auth.bootstrap")

	count, err := s.Repo.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		s.bootstrapped.Store(true)
		return nil
	}

	pwHash, err := hash.HashPassword(s.Bootstrap.Password)
	if err != nil {
		return err
	}
	admin := &models.Admin{
		Name:         s.Bootstrap.Name,
		Email:        NormalizeEmail(s.Bootstrap.Email),
		PasswordHash: pwHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Repo.CreateAdminIfAbsent(ctx, admin); err != nil && !errors.Is(err, repo.ErrAlreadyExists) {
		return err
	} else if err == nil {
		l.Info("bootstrap_admin_created", "email", admin.Email)
	}

	s.bootstrapped.Store(true)
	return nil
}

// Authenticate returns the identity for matching credentials. An unknown email
// and a wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.Identity, error) {
	if err := s.EnsureBootstrapAdmin(ctx); err != nil {
		return nil, err
	}

	email = NormalizeEmail(email)
	admin, err := s.Repo.FindAdminByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		// admins may have been wiped since the last bootstrap
		s.bootstrapped.Store(false)
		if err := s.EnsureBootstrapAdmin(ctx); err != nil {
			return nil, err
		}
		admin, err = s.Repo.FindAdminByEmail(ctx, email)
	}
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			hash.BurnCompare(password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !hash.CheckPassword(admin.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return &models.Identity{ID: admin.ID, Email: admin.Email, Name: admin.Name}, nil
}

package credentials

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/washtrack/washtrack-backend/pkg/config"
	"github.com/washtrack/washtrack-backend/pkg/db/models"
	pkgerrors "github.com/washtrack/washtrack-backend/pkg/errors"
	"github.com/washtrack/washtrack-backend/pkg/security"
)

const minPasswordLength = 4

// Service manages the authorized-salesperson roster. Passwords are stored as
// Argon2id hashes; the authorize/add/set-password contracts are unchanged from
// a cleartext store.
type Service interface {
	Authorize(ctx context.Context, name, password string) (bool, error)
	Add(ctx context.Context, name, password string) (*models.Salesperson, error)
	Remove(ctx context.Context, name string) error
	SetPassword(ctx context.Context, name, newPassword string) error
	ListNames(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

type service struct {
	repo        Repository
	passwordCfg config.PasswordConfig
}

// NewService wires a credentials service with the provided repository.
func NewService(repo Repository, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("credentials repository required")
	}
	return &service{repo: repo, passwordCfg: passwordCfg}, nil
}

func (s *service) Authorize(ctx context.Context, name, password string) (bool, error) {
	person, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return false, err
	}
	if person == nil {
		return false, nil
	}
	return security.VerifyPassword(password, person.PasswordHash)
}

func (s *service) Add(ctx context.Context, name, password string) (*models.Salesperson, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "salesperson name is required")
	}
	if len(password) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	existing, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("salesperson %q already exists", name))
	}

	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return nil, err
	}

	person := &models.Salesperson{
		ID:           uuid.New(),
		Name:         name,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, person); err != nil {
		return nil, err
	}
	return person, nil
}

// Remove deletes the named salesperson; removing an absent name is a no-op,
// mirroring the confirm-then-delete flow it backs.
func (s *service) Remove(ctx context.Context, name string) error {
	return s.repo.Delete(ctx, name)
}

func (s *service) SetPassword(ctx context.Context, name, newPassword string) error {
	person, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return err
	}
	if person == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("salesperson %q not found", name))
	}
	if len(newPassword) < minPasswordLength {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := security.HashPassword(newPassword, s.passwordCfg)
	if err != nil {
		return err
	}
	return s.repo.UpdatePasswordHash(ctx, name, hash)
}

func (s *service) ListNames(ctx context.Context) ([]string, error) {
	return s.repo.ListNames(ctx)
}

func (s *service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

package admin

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/washtrack/washtrack-backend/internal/credentials"
	"github.com/washtrack/washtrack-backend/internal/customers"
	"github.com/washtrack/washtrack-backend/internal/sales"
	"github.com/washtrack/washtrack-backend/pkg/auth"
	"github.com/washtrack/washtrack-backend/pkg/config"
	"github.com/washtrack/washtrack-backend/pkg/db/models"
	pkgerrors "github.com/washtrack/washtrack-backend/pkg/errors"
	"github.com/washtrack/washtrack-backend/pkg/logger"
	"github.com/washtrack/washtrack-backend/pkg/security"
)

// settingAdminPasswordHash keys the stored admin credential.
const settingAdminPasswordHash = "admin_password_hash"

const minAdminPasswordLength = 6

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// LoginResult carries a freshly minted admin session token.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Export is a full snapshot of the store, suitable for backup.
type Export struct {
	Records     []models.SaleRecord `json:"records"`
	Customers   []models.Customer   `json:"customers"`
	Salespeople []string            `json:"salespeople"`
	ExportedAt  time.Time           `json:"exported_at"`
}

// Service handles the admin credential, login tokens, export and the
// full-store reset.
type Service interface {
	Seed(ctx context.Context) error
	Login(ctx context.Context, password string) (*LoginResult, error)
	ChangePassword(ctx context.Context, current, next string) error
	ExportAll(ctx context.Context) (*Export, error)
	Reset(ctx context.Context) error
}

type service struct {
	settings  Repository
	credsRepo credentials.Repository
	custsRepo customers.Repository
	salesRepo sales.Repository
	runner    txRunner
	jwtCfg    config.JWTConfig
	pwdCfg    config.PasswordConfig
	ledgerCfg config.LedgerConfig
	logg      *logger.Logger
}

// NewService wires the admin service over the settings store and the
// repositories it snapshots and resets.
func NewService(
	settings Repository,
	credsRepo credentials.Repository,
	custsRepo customers.Repository,
	salesRepo sales.Repository,
	runner txRunner,
	jwtCfg config.JWTConfig,
	pwdCfg config.PasswordConfig,
	ledgerCfg config.LedgerConfig,
	logg *logger.Logger,
) (Service, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if credsRepo == nil || custsRepo == nil || salesRepo == nil {
		return nil, fmt.Errorf("store repositories required")
	}
	if runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		settings:  settings,
		credsRepo: credsRepo,
		custsRepo: custsRepo,
		salesRepo: salesRepo,
		runner:    runner,
		jwtCfg:    jwtCfg,
		pwdCfg:    pwdCfg,
		ledgerCfg: ledgerCfg,
		logg:      logg,
	}, nil
}

// Seed stores the default admin credential when none exists yet.
func (s *service) Seed(ctx context.Context) error {
	_, err := s.ensureHash(ctx)
	return err
}

func (s *service) ensureHash(ctx context.Context) (string, error) {
	setting, err := s.settings.Get(ctx, settingAdminPasswordHash)
	if err != nil {
		return "", err
	}
	if setting != nil {
		return setting.Value, nil
	}

	hash, err := security.HashPassword(s.ledgerCfg.AdminDefaultPassword, s.pwdCfg)
	if err != nil {
		return "", err
	}
	if err := s.settings.Put(ctx, settingAdminPasswordHash, hash); err != nil {
		return "", err
	}
	if s.logg != nil {
		s.logg.Warn(ctx, "admin password initialized to the default; change it")
	}
	return hash, nil
}

// Login exchanges the admin password for a signed session token.
func (s *service) Login(ctx context.Context, password string) (*LoginResult, error) {
	hash, err := s.ensureHash(ctx)
	if err != nil {
		return nil, err
	}

	ok, err := security.VerifyPassword(password, hash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid admin password")
	}

	now := time.Now()
	token, err := auth.MintAdminToken(s.jwtCfg, now, auth.AdminTokenPayload{})
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute),
	}, nil
}

// ChangePassword rotates the admin credential after checking the current one.
func (s *service) ChangePassword(ctx context.Context, current, next string) error {
	hash, err := s.ensureHash(ctx)
	if err != nil {
		return err
	}

	ok, err := security.VerifyPassword(current, hash)
	if err != nil {
		return err
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "current password is incorrect")
	}

	if len(next) < minAdminPasswordLength {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("password must be at least %d characters", minAdminPasswordLength))
	}

	newHash, err := security.HashPassword(next, s.pwdCfg)
	if err != nil {
		return err
	}
	if err := s.settings.Put(ctx, settingAdminPasswordHash, newHash); err != nil {
		return err
	}
	if s.logg != nil {
		s.logg.Info(ctx, "admin password changed")
	}
	return nil
}

// ExportAll snapshots every record, customer (with history) and roster name.
func (s *service) ExportAll(ctx context.Context) (*Export, error) {
	records, err := s.salesRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	custs, err := s.custsRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	names, err := s.credsRepo.ListNames(ctx)
	if err != nil {
		return nil, err
	}

	return &Export{
		Records:     records,
		Customers:   custs,
		Salespeople: names,
		ExportedAt:  time.Now(),
	}, nil
}

// Reset wipes records, customers and the roster, and restores the default
// admin credential, all in one transaction.
func (s *service) Reset(ctx context.Context) error {
	defaultHash, err := security.HashPassword(s.ledgerCfg.AdminDefaultPassword, s.pwdCfg)
	if err != nil {
		return err
	}

	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.salesRepo.WithTx(tx).DeleteAll(ctx); err != nil {
			return err
		}
		if err := s.custsRepo.WithTx(tx).DeleteAll(ctx); err != nil {
			return err
		}
		if err := s.credsRepo.WithTx(tx).DeleteAll(ctx); err != nil {
			return err
		}
		return s.settings.WithTx(tx).Put(ctx, settingAdminPasswordHash, defaultHash)
	})
	if err != nil {
		return err
	}

	if s.logg != nil {
		s.logg.Warn(ctx, "all ledger data reset")
	}
	return nil
}

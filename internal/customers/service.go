package customers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/washtrack/washtrack-backend/pkg/db/models"
	"github.com/washtrack/washtrack-backend/pkg/enums"
	pkgerrors "github.com/washtrack/washtrack-backend/pkg/errors"
	"github.com/washtrack/washtrack-backend/pkg/logger"
	"github.com/washtrack/washtrack-backend/pkg/metrics"
)

// Service manages prepaid customer balances. Every balance change appends an
// immutable transaction entry; corrections are new entries, never edits.
//
// Reversals clamp the balance at zero. A clamped (or target-missing) reversal
// reports warned=true so the caller can surface a data-integrity warning.
type Service interface {
	WithTx(tx *gorm.DB) Service
	FindOrCreate(ctx context.Context, name string) (*models.Customer, error)
	Credit(ctx context.Context, name string, amount decimal.Decimal, description string) (*models.Customer, error)
	Debit(ctx context.Context, name string, amount decimal.Decimal, description string) (*models.Customer, error)
	ReverseCredit(ctx context.Context, name string, amount decimal.Decimal, description string) (bool, error)
	ReverseDebit(ctx context.Context, name string, amount decimal.Decimal, description string) (bool, error)
	Get(ctx context.Context, name string) (*models.Customer, error)
	List(ctx context.Context) ([]models.Customer, error)
}

type service struct {
	repo    Repository
	logg    *logger.Logger
	metrics *metrics.LedgerMetrics
}

// NewService wires a customer-ledger service with the provided repository.
func NewService(repo Repository, logg *logger.Logger, m *metrics.LedgerMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	return &service{repo: repo, logg: logg, metrics: m}, nil
}

// WithTx rebinds the service to a transaction so balance mutations can join
// the caller's atomic unit.
func (s *service) WithTx(tx *gorm.DB) Service {
	return &service{repo: s.repo.WithTx(tx), logg: s.logg, metrics: s.metrics}
}

// FindOrCreate resolves a customer by exact name, creating a zero-balance
// account on first sight. Names are case-sensitive: "Alice" and "alice" are
// distinct customers.
func (s *service) FindOrCreate(ctx context.Context, name string) (*models.Customer, error) {
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}

	customer, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if customer != nil {
		return customer, nil
	}

	customer = &models.Customer{
		ID:      uuid.New(),
		Name:    name,
		Balance: decimal.Zero,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *service) Credit(ctx context.Context, name string, amount decimal.Decimal, description string) (*models.Customer, error) {
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit amount must be greater than zero")
	}

	customer, err := s.FindOrCreate(ctx, name)
	if err != nil {
		return nil, err
	}

	newBalance := customer.Balance.Add(amount)
	if err := s.applyChange(ctx, customer, newBalance, enums.EntryKindCredit, amount, description); err != nil {
		return nil, err
	}
	return customer, nil
}

// Debit checks then deducts inside the caller's transaction; a shortfall
// rejects the whole operation with the held and required amounts.
func (s *service) Debit(ctx context.Context, name string, amount decimal.Decimal, description string) (*models.Customer, error) {
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debit amount must be greater than zero")
	}

	customer, err := s.FindOrCreate(ctx, name)
	if err != nil {
		return nil, err
	}

	if customer.Balance.LessThan(amount) {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientBalance,
			fmt.Sprintf("customer %q has insufficient balance", name)).
			WithDetails(map[string]string{
				"have": customer.Balance.StringFixed(2),
				"need": amount.StringFixed(2),
			})
	}

	newBalance := customer.Balance.Sub(amount)
	if err := s.applyChange(ctx, customer, newBalance, enums.EntryKindDebit, amount, description); err != nil {
		return nil, err
	}
	return customer, nil
}

// ReverseCredit backs out a prior credit, deducting at most the current
// balance. A clamped deduction or a missing customer means the ledger has
// drifted from the record store; the drift is logged and counted, and
// warned=true is returned.
func (s *service) ReverseCredit(ctx context.Context, name string, amount decimal.Decimal, description string) (bool, error) {
	if !amount.IsPositive() {
		return false, nil
	}

	customer, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return false, err
	}
	if customer == nil {
		s.flagIntegrityDrift(ctx, name, "reversal target customer missing")
		return true, nil
	}

	deduct := amount
	warned := false
	if customer.Balance.LessThan(amount) {
		deduct = customer.Balance
		warned = true
		s.flagIntegrityDrift(ctx, name, "credit reversal clamped at zero balance")
	}
	if deduct.IsPositive() {
		newBalance := customer.Balance.Sub(deduct)
		if err := s.applyChange(ctx, customer, newBalance, enums.EntryKindDebit, deduct, description); err != nil {
			return false, err
		}
	}
	return warned, nil
}

// ReverseDebit restores a prior deduction. Restoring never clamps, but a
// missing customer still signals drift.
func (s *service) ReverseDebit(ctx context.Context, name string, amount decimal.Decimal, description string) (bool, error) {
	if !amount.IsPositive() {
		return false, nil
	}

	customer, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return false, err
	}
	if customer == nil {
		s.flagIntegrityDrift(ctx, name, "reversal target customer missing")
		return true, nil
	}

	newBalance := customer.Balance.Add(amount)
	if err := s.applyChange(ctx, customer, newBalance, enums.EntryKindCredit, amount, description); err != nil {
		return false, err
	}
	return false, nil
}

// Get returns the named customer with full transaction history, or nil when
// the customer is unknown.
func (s *service) Get(ctx context.Context, name string) (*models.Customer, error) {
	return s.repo.FindByNameWithEntries(ctx, name)
}

func (s *service) List(ctx context.Context) ([]models.Customer, error) {
	return s.repo.List(ctx)
}

func (s *service) applyChange(
	ctx context.Context,
	customer *models.Customer,
	newBalance decimal.Decimal,
	kind enums.EntryKind,
	amount decimal.Decimal,
	description string,
) error {
	if err := s.repo.UpdateBalance(ctx, customer.ID, newBalance); err != nil {
		return err
	}
	entry := &models.BalanceEntry{
		ID:          uuid.New(),
		CustomerID:  customer.ID,
		Kind:        kind,
		Amount:      amount,
		Description: description,
	}
	if err := s.repo.AppendEntry(ctx, entry); err != nil {
		return err
	}
	customer.Balance = newBalance
	return nil
}

func (s *service) flagIntegrityDrift(ctx context.Context, name, reason string) {
	if s.logg != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"customer": name,
			"reason":   reason,
		}), "balance ledger integrity drift")
	}
	s.metrics.IncIntegrityWarning()
}

package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/washtrack/washtrack-backend/internal/credentials"
	"github.com/washtrack/washtrack-backend/internal/customers"
	"github.com/washtrack/washtrack-backend/pkg/config"
	"github.com/washtrack/washtrack-backend/pkg/db/models"
	"github.com/washtrack/washtrack-backend/pkg/enums"
	pkgerrors "github.com/washtrack/washtrack-backend/pkg/errors"
	"github.com/washtrack/washtrack-backend/pkg/logger"
	"github.com/washtrack/washtrack-backend/pkg/metrics"
)

// rechargeProduct is the canonical product label for recharge records.
const rechargeProduct = "Recharge"

// integrityWarning is surfaced to the caller when a ledger reversal clamped
// at zero; the records and the balance ledger no longer agree.
const integrityWarning = "customer balance reversal was clamped at zero; the balance ledger may have drifted from the sales records"

// txRunner abstracts the transactional boundary so service tests can run
// without a database.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AttachmentInput is one uploaded receipt image.
type AttachmentInput struct {
	Name        string
	ContentType string
	Data        []byte
}

// InsertInput carries everything needed to record a sale or recharge.
type InsertInput struct {
	Salesperson  string
	Password     string
	Customer     string
	LicensePlate string
	Product      string
	TotalAmount  decimal.Decimal
	PaymentType  enums.PaymentType
	Timestamp    *time.Time
	Attachments  []AttachmentInput
}

// UpdateInput holds the editable record fields; nil pointers leave the
// stored value untouched. Payment type is fixed at creation.
type UpdateInput struct {
	Salesperson  *string
	Customer     *string
	LicensePlate *string
	Product      *string
	TotalAmount  *decimal.Decimal
	Timestamp    *time.Time
}

// Result is the outcome of a ledger-coupled mutation. Warning is non-empty
// when a reversal clamped and the ledger may have drifted.
type Result struct {
	Record  *models.SaleRecord
	Warning string
}

// Service is the sales record store. Inserting, updating and deleting records
// keeps the customer balance ledger in step inside a single transaction.
type Service interface {
	Insert(ctx context.Context, in InsertInput) (*Result, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Result, error)
	Remove(ctx context.Context, id uuid.UUID) (*Result, error)
	Get(ctx context.Context, id uuid.UUID) (*models.SaleRecord, error)
	Query(ctx context.Context, filter Filter) ([]models.SaleRecord, error)
	List(ctx context.Context) ([]models.SaleRecord, error)
}

type service struct {
	repo      Repository
	creds     credentials.Service
	customers customers.Service
	runner    txRunner
	ledgerCfg config.LedgerConfig
	logg      *logger.Logger
	metrics   *metrics.LedgerMetrics
}

// NewService wires the record store with its collaborating services.
func NewService(
	repo Repository,
	creds credentials.Service,
	custs customers.Service,
	runner txRunner,
	ledgerCfg config.LedgerConfig,
	logg *logger.Logger,
	m *metrics.LedgerMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if creds == nil {
		return nil, fmt.Errorf("credentials service required")
	}
	if custs == nil {
		return nil, fmt.Errorf("customers service required")
	}
	if runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:      repo,
		creds:     creds,
		customers: custs,
		runner:    runner,
		ledgerCfg: ledgerCfg,
		logg:      logg,
		metrics:   m,
	}, nil
}

// Insert authorizes the salesperson, validates the payload, then writes the
// record and any balance movement atomically. A failed debit leaves no record
// behind.
func (s *service) Insert(ctx context.Context, in InsertInput) (*Result, error) {
	rosterSize, err := s.creds.Count(ctx)
	if err != nil {
		return nil, err
	}
	if rosterSize == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "no authorized salespeople configured")
	}

	ok, err := s.creds.Authorize(ctx, in.Salesperson, in.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid salesperson credentials")
	}

	if err := s.validateInsert(&in); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating record id: %w", err)
	}

	timestamp := time.Now()
	if in.Timestamp != nil {
		timestamp = *in.Timestamp
	}

	record := &models.SaleRecord{
		ID:           id,
		Timestamp:    timestamp,
		Salesperson:  in.Salesperson,
		Customer:     in.Customer,
		LicensePlate: in.LicensePlate,
		Product:      in.Product,
		TotalAmount:  in.TotalAmount,
		PaymentType:  in.PaymentType,
		Attachments:  buildAttachments(id, in.Attachments),
	}

	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		ledger := s.customers.WithTx(tx)

		switch in.PaymentType {
		case enums.PaymentTypeBalance:
			if _, err := ledger.Debit(ctx, in.Customer, in.TotalAmount, "Purchase "+in.Product); err != nil {
				return err
			}
		case enums.PaymentTypeRecharge:
			if _, err := ledger.Credit(ctx, in.Customer, in.TotalAmount, rechargeProduct); err != nil {
				return err
			}
		}

		return s.repo.WithTx(tx).Insert(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncRecordCreated(string(in.PaymentType))
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"record_id":    record.ID,
			"payment_type": record.PaymentType,
			"amount":       record.TotalAmount,
		}), "sale record created")
	}

	return &Result{Record: record}, nil
}

func (s *service) validateInsert(in *InsertInput) error {
	in.Salesperson = strings.TrimSpace(in.Salesperson)
	in.Customer = strings.TrimSpace(in.Customer)
	in.Product = strings.TrimSpace(in.Product)

	if in.Customer == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if !in.PaymentType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment type %q", in.PaymentType))
	}
	if !in.TotalAmount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "total amount must be greater than zero")
	}

	// Recharges always carry the canonical product label.
	if in.PaymentType == enums.PaymentTypeRecharge {
		in.Product = rechargeProduct
	}
	if in.Product == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product is required")
	}

	maxBytes := s.ledgerCfg.MaxAttachmentBytes()
	for _, att := range in.Attachments {
		if maxBytes > 0 && int64(len(att.Data)) > maxBytes {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("attachment %q exceeds the %dMB limit", att.Name, s.ledgerCfg.MaxAttachmentMB))
		}
	}
	return nil
}

func buildAttachments(recordID uuid.UUID, inputs []AttachmentInput) []models.Attachment {
	if len(inputs) == 0 {
		return nil
	}
	attachments := make([]models.Attachment, 0, len(inputs))
	for _, in := range inputs {
		attachments = append(attachments, models.Attachment{
			ID:          uuid.New(),
			RecordID:    recordID,
			Name:        in.Name,
			ContentType: in.ContentType,
			SizeBytes:   int64(len(in.Data)),
			Data:        in.Data,
		})
	}
	return attachments
}

// Update edits a record in place. Only recharge records reconcile the ledger:
// moving or resizing a recharge adjusts the customer balance by the delta in
// the same transaction. Balance-settled records do not re-derive their debit.
func (s *service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*Result, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
	}

	if in.TotalAmount != nil && !in.TotalAmount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total amount must be greater than zero")
	}
	if in.Customer != nil && strings.TrimSpace(*in.Customer) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}

	updated := *record
	if in.Salesperson != nil {
		updated.Salesperson = strings.TrimSpace(*in.Salesperson)
	}
	if in.Customer != nil {
		updated.Customer = strings.TrimSpace(*in.Customer)
	}
	if in.LicensePlate != nil {
		updated.LicensePlate = strings.TrimSpace(*in.LicensePlate)
	}
	if in.Product != nil {
		updated.Product = strings.TrimSpace(*in.Product)
	}
	if in.TotalAmount != nil {
		updated.TotalAmount = *in.TotalAmount
	}
	if in.Timestamp != nil {
		updated.Timestamp = *in.Timestamp
	}
	if record.PaymentType == enums.PaymentTypeRecharge {
		updated.Product = rechargeProduct
	}

	warned := false
	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		if record.PaymentType == enums.PaymentTypeRecharge {
			w, err := s.reconcileRecharge(ctx, s.customers.WithTx(tx), record, &updated)
			if err != nil {
				return err
			}
			warned = w
		}
		return s.repo.WithTx(tx).Update(ctx, &updated)
	})
	if err != nil {
		return nil, err
	}

	result := &Result{Record: &updated}
	if warned {
		result.Warning = integrityWarning
	}
	return result, nil
}

func (s *service) reconcileRecharge(
	ctx context.Context,
	ledger customers.Service,
	before, after *models.SaleRecord,
) (bool, error) {
	if after.Customer != before.Customer {
		warned, err := ledger.ReverseCredit(ctx, before.Customer, before.TotalAmount, "Recharge reversal")
		if err != nil {
			return false, err
		}
		if _, err := ledger.Credit(ctx, after.Customer, after.TotalAmount, rechargeProduct); err != nil {
			return false, err
		}
		return warned, nil
	}

	delta := after.TotalAmount.Sub(before.TotalAmount)
	switch {
	case delta.IsPositive():
		if _, err := ledger.Credit(ctx, after.Customer, delta, "Recharge adjustment"); err != nil {
			return false, err
		}
	case delta.IsNegative():
		return ledger.ReverseCredit(ctx, after.Customer, delta.Neg(), "Recharge adjustment")
	}
	return false, nil
}

// Remove deletes a record. Deleting a recharge reverses the credited amount,
// clamped at zero; deleting a balance-settled sale does not restore the
// debit.
func (s *service) Remove(ctx context.Context, id uuid.UUID) (*Result, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
	}

	warned := false
	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		if record.PaymentType == enums.PaymentTypeRecharge {
			w, err := s.customers.WithTx(tx).ReverseCredit(ctx, record.Customer, record.TotalAmount, "Recharge reversal")
			if err != nil {
				return err
			}
			warned = w
		}
		return s.repo.WithTx(tx).Delete(ctx, record.ID)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncRecordDeleted()
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "record_id", record.ID), "sale record deleted")
	}

	result := &Result{Record: record}
	if warned {
		result.Warning = integrityWarning
	}
	return result, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.SaleRecord, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) Query(ctx context.Context, filter Filter) ([]models.SaleRecord, error) {
	return s.repo.Query(ctx, filter)
}

func (s *service) List(ctx context.Context) ([]models.SaleRecord, error) {
	return s.repo.List(ctx)
}

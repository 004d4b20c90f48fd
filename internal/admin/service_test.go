package admin

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/washtrack/washtrack-backend/internal/credentials"
	"github.com/washtrack/washtrack-backend/internal/customers"
	"github.com/washtrack/washtrack-backend/internal/sales"
	"github.com/washtrack/washtrack-backend/pkg/auth"
	"github.com/washtrack/washtrack-backend/pkg/config"
	"github.com/washtrack/washtrack-backend/pkg/db/models"
	"github.com/washtrack/washtrack-backend/pkg/enums"
	pkgerrors "github.com/washtrack/washtrack-backend/pkg/errors"
)

type gormRunner struct {
	db *gorm.DB
}

func (r gormRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "washtrack",
	ExpirationMinutes: 60,
}

type adminFixture struct {
	svc       Service
	db        *gorm.DB
	credsRepo credentials.Repository
	custsRepo customers.Repository
	salesRepo sales.Repository
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Salesperson{},
		&models.Customer{},
		&models.BalanceEntry{},
		&models.SaleRecord{},
		&models.Attachment{},
		&models.Setting{},
	))

	credsRepo := credentials.NewRepository(db)
	custsRepo := customers.NewRepository(db)
	salesRepo := sales.NewRepository(db)

	svc, err := NewService(
		NewRepository(db),
		credsRepo,
		custsRepo,
		salesRepo,
		gormRunner{db: db},
		testJWTConfig,
		config.PasswordConfig{},
		config.LedgerConfig{AdminDefaultPassword: "admin123"},
		nil,
	)
	require.NoError(t, err)

	return &adminFixture{svc: svc, db: db, credsRepo: credsRepo, custsRepo: custsRepo, salesRepo: salesRepo}
}

func TestLoginWithDefaultPassword(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Seed(ctx))

	result, err := f.svc.Login(ctx, "admin123")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	assert.True(t, result.ExpiresAt.After(time.Now()))

	claims, err := auth.ParseAdminToken(testJWTConfig, result.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, claims.Role)
}

func TestLoginSeedsWhenUnseeded(t *testing.T) {
	f := newAdminFixture(t)

	// No explicit Seed: first login against an empty store still works.
	_, err := f.svc.Login(context.Background(), "admin123")
	require.NoError(t, err)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAdminFixture(t)

	_, err := f.svc.Login(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestChangePassword(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	err := f.svc.ChangePassword(ctx, "wrong", "newsecret")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())

	err = f.svc.ChangePassword(ctx, "admin123", "short")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	require.NoError(t, f.svc.ChangePassword(ctx, "admin123", "newsecret"))

	_, err = f.svc.Login(ctx, "admin123")
	require.Error(t, err)

	_, err = f.svc.Login(ctx, "newsecret")
	require.NoError(t, err)
}

func (f *adminFixture) seedData(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, f.credsRepo.Create(ctx, &models.Salesperson{
		ID:           uuid.New(),
		Name:         "Amy",
		PasswordHash: "x",
	}))

	customerID := uuid.New()
	require.NoError(t, f.custsRepo.Create(ctx, &models.Customer{
		ID:      customerID,
		Name:    "Bob",
		Balance: decimal.NewFromInt(70),
	}))
	require.NoError(t, f.custsRepo.AppendEntry(ctx, &models.BalanceEntry{
		ID:         uuid.New(),
		CustomerID: customerID,
		Kind:       enums.EntryKindCredit,
		Amount:     decimal.NewFromInt(70),
	}))

	recordID, err := uuid.NewV7()
	require.NoError(t, err)
	require.NoError(t, f.salesRepo.Insert(ctx, &models.SaleRecord{
		ID:          recordID,
		Timestamp:   time.Now(),
		Salesperson: "Amy",
		Customer:    "Bob",
		Product:     "Wash",
		TotalAmount: decimal.NewFromInt(40),
		PaymentType: enums.PaymentTypeCash,
	}))
}

func TestExportAll(t *testing.T) {
	f := newAdminFixture(t)
	f.seedData(t)

	export, err := f.svc.ExportAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, export.Records, 1)
	assert.Len(t, export.Customers, 1)
	require.Len(t, export.Customers[0].Entries, 1)
	assert.Equal(t, []string{"Amy"}, export.Salespeople)
	assert.False(t, export.ExportedAt.IsZero())
}

func TestResetWipesEverything(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	f.seedData(t)
	require.NoError(t, f.svc.ChangePassword(ctx, "admin123", "rotated"))

	require.NoError(t, f.svc.Reset(ctx))

	for _, model := range []any{
		&models.SaleRecord{},
		&models.Customer{},
		&models.BalanceEntry{},
		&models.Salesperson{},
	} {
		var count int64
		require.NoError(t, f.db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}

	// Back to the default credential.
	_, err := f.svc.Login(ctx, "admin123")
	require.NoError(t, err)
}

package customers

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/washtrack/washtrack-backend/pkg/db/models"
	"github.com/washtrack/washtrack-backend/pkg/enums"
	pkgerrors "github.com/washtrack/washtrack-backend/pkg/errors"
)

func setupCustomersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Customer{}, &models.BalanceEntry{}))
	return db
}

func newCustomersService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	db := setupCustomersTestDB(t)
	svc, err := NewService(NewRepository(db), nil, nil)
	require.NoError(t, err)
	return svc, db
}

func TestFindOrCreateIsCaseSensitive(t *testing.T) {
	svc, _ := newCustomersService(t)
	ctx := context.Background()

	alice, err := svc.FindOrCreate(ctx, "Alice")
	require.NoError(t, err)
	assert.True(t, alice.Balance.IsZero())

	lower, err := svc.FindOrCreate(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, alice.ID, lower.ID)

	again, err := svc.FindOrCreate(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, again.ID)
}

func TestFindOrCreateRequiresName(t *testing.T) {
	svc, _ := newCustomersService(t)

	_, err := svc.FindOrCreate(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreditThenDebit(t *testing.T) {
	svc, _ := newCustomersService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, "Bob", decimal.NewFromInt(100), "Recharge")
	require.NoError(t, err)

	customer, err := svc.Debit(ctx, "Bob", decimal.NewFromInt(30), "Purchase Wash")
	require.NoError(t, err)
	assert.True(t, customer.Balance.Equal(decimal.NewFromInt(70)), "balance is %s", customer.Balance)

	stored, err := svc.Get(ctx, "Bob")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Len(t, stored.Entries, 2)
	assert.Equal(t, enums.EntryKindCredit, stored.Entries[0].Kind)
	assert.Equal(t, enums.EntryKindDebit, stored.Entries[1].Kind)
}

func TestDebitInsufficientBalance(t *testing.T) {
	svc, _ := newCustomersService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, "Carla", decimal.NewFromFloat(10.50), "Recharge")
	require.NoError(t, err)

	_, err = svc.Debit(ctx, "Carla", decimal.NewFromInt(25), "Purchase Wax")
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeInsufficientBalance, typed.Code())

	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "10.50", details["have"])
	assert.Equal(t, "25.00", details["need"])

	// The failed debit must leave balance and history untouched.
	customer, err := svc.Get(ctx, "Carla")
	require.NoError(t, err)
	assert.True(t, customer.Balance.Equal(decimal.NewFromFloat(10.50)))
	assert.Len(t, customer.Entries, 1)
}

func TestDebitRejectsNonPositiveAmounts(t *testing.T) {
	svc, _ := newCustomersService(t)

	_, err := svc.Debit(context.Background(), "Dan", decimal.Zero, "Purchase")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Credit(context.Background(), "Dan", decimal.NewFromInt(-5), "Recharge")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestReverseCreditClampsAtZero(t *testing.T) {
	svc, _ := newCustomersService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, "Eve", decimal.NewFromInt(50), "Recharge")
	require.NoError(t, err)

	warned, err := svc.ReverseCredit(ctx, "Eve", decimal.NewFromInt(80), "Recharge reversal")
	require.NoError(t, err)
	assert.True(t, warned)

	customer, err := svc.Get(ctx, "Eve")
	require.NoError(t, err)
	assert.True(t, customer.Balance.IsZero())

	// The correcting entry records what was actually deducted.
	require.Len(t, customer.Entries, 2)
	assert.Equal(t, enums.EntryKindDebit, customer.Entries[1].Kind)
	assert.True(t, customer.Entries[1].Amount.Equal(decimal.NewFromInt(50)))
}

func TestReverseCreditFullAmount(t *testing.T) {
	svc, _ := newCustomersService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, "Frank", decimal.NewFromInt(100), "Recharge")
	require.NoError(t, err)

	warned, err := svc.ReverseCredit(ctx, "Frank", decimal.NewFromInt(40), "Recharge reversal")
	require.NoError(t, err)
	assert.False(t, warned)

	customer, err := svc.Get(ctx, "Frank")
	require.NoError(t, err)
	assert.True(t, customer.Balance.Equal(decimal.NewFromInt(60)))
}

func TestReverseCreditMissingCustomerWarns(t *testing.T) {
	svc, _ := newCustomersService(t)

	warned, err := svc.ReverseCredit(context.Background(), "Ghost", decimal.NewFromInt(10), "Recharge reversal")
	require.NoError(t, err)
	assert.True(t, warned)
}

func TestReverseDebitRestoresBalance(t *testing.T) {
	svc, _ := newCustomersService(t)
	ctx := context.Background()

	_, err := svc.Credit(ctx, "Gina", decimal.NewFromInt(100), "Recharge")
	require.NoError(t, err)
	_, err = svc.Debit(ctx, "Gina", decimal.NewFromInt(40), "Purchase Wash")
	require.NoError(t, err)

	warned, err := svc.ReverseDebit(ctx, "Gina", decimal.NewFromInt(40), "Purchase reversal")
	require.NoError(t, err)
	assert.False(t, warned)

	customer, err := svc.Get(ctx, "Gina")
	require.NoError(t, err)
	assert.True(t, customer.Balance.Equal(decimal.NewFromInt(100)))
	assert.Len(t, customer.Entries, 3)
}

func TestWithTxSharesTransaction(t *testing.T) {
	svc, db := newCustomersService(t)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := svc.WithTx(tx).Credit(ctx, "Hana", decimal.NewFromInt(25), "Recharge"); err != nil {
			return err
		}
		return fmt.Errorf("force rollback")
	})
	require.Error(t, err)

	customer, err := svc.Get(ctx, "Hana")
	require.NoError(t, err)
	assert.Nil(t, customer)
}

package reports

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

	"github.com/washtrack/washtrack-backend/internal/customers"
	"github.com/washtrack/washtrack-backend/internal/sales"
	"github.com/washtrack/washtrack-backend/pkg/db/models"
	"github.com/washtrack/washtrack-backend/pkg/enums"
	pkgerrors "github.com/washtrack/washtrack-backend/pkg/errors"
)

type reportsFixture struct {
	svc       Service
	salesRepo sales.Repository
	customers customers.Service
}

func newReportsFixture(t *testing.T) *reportsFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Customer{},
		&models.BalanceEntry{},
		&models.SaleRecord{},
		&models.Attachment{},
	))

	salesRepo := sales.NewRepository(db)
	custs, err := customers.NewService(customers.NewRepository(db), nil, nil)
	require.NoError(t, err)

	svc, err := NewService(salesRepo, custs)
	require.NoError(t, err)

	return &reportsFixture{svc: svc, salesRepo: salesRepo, customers: custs}
}

func (f *reportsFixture) insertRecord(t *testing.T, salesperson, customer string, amount int64, pt enums.PaymentType, at time.Time) {
	t.Helper()
	f.insertProductRecord(t, salesperson, customer, "Wash", amount, pt, at)
}

func (f *reportsFixture) insertProductRecord(t *testing.T, salesperson, customer, product string, amount int64, pt enums.PaymentType, at time.Time) {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	record := &models.SaleRecord{
		ID:          id,
		Timestamp:   at,
		Salesperson: salesperson,
		Customer:    customer,
		Product:     product,
		TotalAmount: decimal.NewFromInt(amount),
		PaymentType: pt,
	}
	require.NoError(t, f.salesRepo.Insert(context.Background(), record))
}

func TestWeekWindowSundayThroughSaturday(t *testing.T) {
	// 2026-03-04 is a Wednesday.
	wednesday := time.Date(2026, 3, 4, 13, 45, 0, 0, time.Local)
	start, end := WeekWindow(wednesday)

	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local), start)
	assert.Equal(t, time.Weekday(time.Sunday), start.Weekday())
	assert.Equal(t, time.Weekday(time.Saturday), end.Weekday())
	assert.Equal(t, time.Date(2026, 3, 7, 23, 59, 59, 999000000, time.Local), end)
}

func TestWeekWindowOnSunday(t *testing.T) {
	sunday := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	start, _ := WeekWindow(sunday)
	assert.Equal(t, sunday, start)
}

func TestWeeklyCashTotalExcludesBalanceSettlements(t *testing.T) {
	f := newReportsFixture(t)
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.Local)

	f.insertRecord(t, "Amy", "Bob", 40, enums.PaymentTypeCash, now)
	f.insertRecord(t, "Amy", "Bob", 100, enums.PaymentTypeRecharge, now.Add(time.Hour))
	f.insertRecord(t, "Amy", "Bob", 30, enums.PaymentTypeBalance, now.Add(2*time.Hour))
	// Previous week, outside the window.
	f.insertRecord(t, "Amy", "Bob", 500, enums.PaymentTypeCash, now.AddDate(0, 0, -7))

	report, err := f.svc.WeeklyCashTotal(context.Background(), now)
	require.NoError(t, err)
	assert.True(t, report.Total.Equal(decimal.NewFromInt(140)), "total is %s", report.Total)
	assert.Equal(t, 2, report.Count)
}

func TestPerformanceIncludesBalanceSettlements(t *testing.T) {
	f := newReportsFixture(t)
	now := time.Now()

	f.insertRecord(t, "Amy", "Bob", 40, enums.PaymentTypeCash, now)
	f.insertRecord(t, "Amy", "Carla", 30, enums.PaymentTypeBalance, now)
	f.insertRecord(t, "Ben", "Bob", 99, enums.PaymentTypeCash, now)

	report, err := f.svc.PerformanceBySalesperson(context.Background(), "Amy")
	require.NoError(t, err)
	assert.True(t, report.Total.Equal(decimal.NewFromInt(70)))
	assert.Equal(t, 2, report.Count)
	assert.True(t, report.Average.Equal(decimal.NewFromInt(35)), "average is %s", report.Average)
	require.Len(t, report.Breakdown, 2)
	assert.Equal(t, enums.PaymentTypeCash, report.Breakdown[0].PaymentType)
	assert.Equal(t, enums.PaymentTypeBalance, report.Breakdown[1].PaymentType)
}

func TestPerformanceUnknownSalesperson(t *testing.T) {
	f := newReportsFixture(t)

	_, err := f.svc.PerformanceBySalesperson(context.Background(), "Nobody")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestSpendingByCustomer(t *testing.T) {
	f := newReportsFixture(t)
	ctx := context.Background()
	now := time.Now()

	f.insertProductRecord(t, "Amy", "Bob", "Recharge", 100, enums.PaymentTypeRecharge, now)
	f.insertProductRecord(t, "Amy", "Bob", "Deluxe Wash", 40, enums.PaymentTypeCash, now.Add(time.Minute))
	f.insertProductRecord(t, "Amy", "Bob", "Wax", 30, enums.PaymentTypeBalance, now.Add(2*time.Minute))

	_, err := f.customers.Credit(ctx, "Bob", decimal.NewFromInt(100), "Recharge")
	require.NoError(t, err)
	_, err = f.customers.Debit(ctx, "Bob", decimal.NewFromInt(30), "Purchase Wax")
	require.NoError(t, err)

	report, err := f.svc.SpendingByCustomer(ctx, "Bob")
	require.NoError(t, err)
	// Balance settlements don't count as new spending.
	assert.True(t, report.TotalSpent.Equal(decimal.NewFromInt(140)))
	assert.Equal(t, 2, report.Count)
	assert.True(t, report.CashAmount.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, 1, report.CashCount)
	assert.True(t, report.RechargeAmount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 1, report.RechargeCount)
	assert.True(t, report.CurrentBalance.Equal(decimal.NewFromInt(70)))
	assert.Equal(t, []string{"Recharge", "Deluxe Wash"}, report.Products)
}

func TestSpendingKnownCustomerWithoutRecords(t *testing.T) {
	f := newReportsFixture(t)
	ctx := context.Background()

	_, err := f.customers.Credit(ctx, "Dora", decimal.NewFromInt(20), "Recharge")
	require.NoError(t, err)

	report, err := f.svc.SpendingByCustomer(ctx, "Dora")
	require.NoError(t, err)
	assert.True(t, report.TotalSpent.IsZero())
	assert.True(t, report.CurrentBalance.Equal(decimal.NewFromInt(20)))
}

func TestSpendingUnknownCustomer(t *testing.T) {
	f := newReportsFixture(t)

	_, err := f.svc.SpendingByCustomer(context.Background(), "Ghost")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestRangeRankingOrdersAndBreaksTies(t *testing.T) {
	f := newReportsFixture(t)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)

	// Carl appears first among the tied pair and must stay ahead of Dana.
	f.insertRecord(t, "Carl", "Bob", 50, enums.PaymentTypeCash, base)
	f.insertRecord(t, "Dana", "Bob", 50, enums.PaymentTypeCash, base.Add(time.Hour))
	f.insertRecord(t, "Amy", "Bob", 120, enums.PaymentTypeCash, base.Add(2*time.Hour))

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2026, 3, 7, 23, 59, 59, 0, time.Local)

	report, err := f.svc.RangeBySalesperson(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, report.Rankings, 3)
	assert.Equal(t, "Amy", report.Rankings[0].Salesperson)
	assert.Equal(t, 1, report.Rankings[0].Rank)
	assert.True(t, report.Rankings[0].Average.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, "Carl", report.Rankings[1].Salesperson)
	assert.Equal(t, "Dana", report.Rankings[2].Salesperson)
	assert.True(t, report.GrandTotal.Equal(decimal.NewFromInt(220)))
	assert.Equal(t, 3, report.GrandCount)
	assert.Equal(t, 3, report.Salespeople)
}

func TestRangeEmptyWindow(t *testing.T) {
	f := newReportsFixture(t)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2026, 1, 7, 0, 0, 0, 0, time.Local)

	_, err := f.svc.RangeBySalesperson(context.Background(), from, to)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestRangeForSalespersonNewestFirst(t *testing.T) {
	f := newReportsFixture(t)
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)

	f.insertRecord(t, "Amy", "Bob", 10, enums.PaymentTypeCash, base)
	f.insertRecord(t, "Amy", "Carla", 20, enums.PaymentTypeCash, base.Add(time.Hour))
	f.insertRecord(t, "Ben", "Bob", 99, enums.PaymentTypeCash, base)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2026, 3, 7, 23, 59, 59, 0, time.Local)

	report, err := f.svc.RangeForSalesperson(context.Background(), "Amy", from, to)
	require.NoError(t, err)
	assert.True(t, report.Total.Equal(decimal.NewFromInt(30)))
	assert.True(t, report.Average.Equal(decimal.NewFromInt(15)))
	require.Len(t, report.Records, 2)
	assert.Equal(t, "Carla", report.Records[0].Customer)

	_, err = f.svc.RangeForSalesperson(context.Background(), "Nobody", from, to)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/washtrack/washtrack-backend/internal/customers"
	"github.com/washtrack/washtrack-backend/internal/sales"
	"github.com/washtrack/washtrack-backend/pkg/db/models"
	"github.com/washtrack/washtrack-backend/pkg/enums"
	pkgerrors "github.com/washtrack/washtrack-backend/pkg/errors"
)

// WeeklyTotal is the revenue summary for the current calendar week.
type WeeklyTotal struct {
	WeekStart time.Time       `json:"week_start"`
	WeekEnd   time.Time       `json:"week_end"`
	Total     decimal.Decimal `json:"total"`
	Count     int             `json:"count"`
}

// PaymentBreakdown aggregates records of a single payment type.
type PaymentBreakdown struct {
	PaymentType enums.PaymentType `json:"payment_type"`
	Total       decimal.Decimal   `json:"total"`
	Count       int               `json:"count"`
}

// SalespersonPerformance covers every record a salesperson has written,
// regardless of payment type.
type SalespersonPerformance struct {
	Salesperson string             `json:"salesperson"`
	Total       decimal.Decimal    `json:"total"`
	Count       int                `json:"count"`
	Average     decimal.Decimal    `json:"average"`
	Breakdown   []PaymentBreakdown `json:"breakdown"`
}

// CustomerSpending reports what a customer paid in. Balance settlements are
// excluded from TotalSpent: the money was counted when the balance was
// charged up.
type CustomerSpending struct {
	Customer       string          `json:"customer"`
	TotalSpent     decimal.Decimal `json:"total_spent"`
	Count          int             `json:"count"`
	CashAmount     decimal.Decimal `json:"cash_amount"`
	CashCount      int             `json:"cash_count"`
	RechargeAmount decimal.Decimal `json:"recharge_amount"`
	RechargeCount  int             `json:"recharge_count"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Products       []string        `json:"products"`
}

// RankedSalesperson is one row of a range ranking.
type RankedSalesperson struct {
	Rank        int             `json:"rank"`
	Salesperson string          `json:"salesperson"`
	Total       decimal.Decimal `json:"total"`
	Count       int             `json:"count"`
	Average     decimal.Decimal `json:"average"`
}

// RangeReport ranks salespeople over a date range, highest total first.
type RangeReport struct {
	From        time.Time           `json:"from"`
	To          time.Time           `json:"to"`
	Rankings    []RankedSalesperson `json:"rankings"`
	GrandTotal  decimal.Decimal     `json:"grand_total"`
	GrandCount  int                 `json:"grand_count"`
	Salespeople int                 `json:"salespeople"`
}

// SalespersonRangeReport details one salesperson's activity over a range.
type SalespersonRangeReport struct {
	Salesperson string              `json:"salesperson"`
	From        time.Time           `json:"from"`
	To          time.Time           `json:"to"`
	Total       decimal.Decimal     `json:"total"`
	Count       int                 `json:"count"`
	Average     decimal.Decimal     `json:"average"`
	Records     []models.SaleRecord `json:"records"`
}

func average(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(2)
}

// Service derives read-only reports over the record store and the ledger.
type Service interface {
	WeeklyCashTotal(ctx context.Context, now time.Time) (*WeeklyTotal, error)
	PerformanceBySalesperson(ctx context.Context, name string) (*SalespersonPerformance, error)
	SpendingByCustomer(ctx context.Context, name string) (*CustomerSpending, error)
	RangeBySalesperson(ctx context.Context, from, to time.Time) (*RangeReport, error)
	RangeForSalesperson(ctx context.Context, name string, from, to time.Time) (*SalespersonRangeReport, error)
}

type service struct {
	salesRepo sales.Repository
	customers customers.Service
}

// NewService wires the reporting engine over the sales and customer stores.
func NewService(salesRepo sales.Repository, custs customers.Service) (Service, error) {
	if salesRepo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if custs == nil {
		return nil, fmt.Errorf("customers service required")
	}
	return &service{salesRepo: salesRepo, customers: custs}, nil
}

// WeekWindow returns the local calendar week containing t: Sunday 00:00:00.000
// through Saturday 23:59:59.999.
func WeekWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	start = start.AddDate(0, 0, -int(start.Weekday()))
	end := start.AddDate(0, 0, 7).Add(-time.Millisecond)
	return start, end
}

// WeeklyCashTotal sums money actually received this week: cash sales and
// recharges. Balance settlements are excluded so revenue is never counted
// twice.
func (s *service) WeeklyCashTotal(ctx context.Context, now time.Time) (*WeeklyTotal, error) {
	start, end := WeekWindow(now)
	records, err := s.salesRepo.FindBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	count := 0
	for _, record := range records {
		if !record.PaymentType.CountsAsRevenue() {
			continue
		}
		total = total.Add(record.TotalAmount)
		count++
	}

	return &WeeklyTotal{WeekStart: start, WeekEnd: end, Total: total, Count: count}, nil
}

// PerformanceBySalesperson aggregates every record the salesperson wrote,
// including balance settlements: handing over goods is performance even when
// no new money changes hands.
func (s *service) PerformanceBySalesperson(ctx context.Context, name string) (*SalespersonPerformance, error) {
	records, err := s.salesRepo.FindBySalesperson(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no sales data for salesperson %q", name))
	}

	total := decimal.Zero
	byType := map[enums.PaymentType]*PaymentBreakdown{}
	for _, record := range records {
		total = total.Add(record.TotalAmount)
		agg, ok := byType[record.PaymentType]
		if !ok {
			agg = &PaymentBreakdown{PaymentType: record.PaymentType, Total: decimal.Zero}
			byType[record.PaymentType] = agg
		}
		agg.Total = agg.Total.Add(record.TotalAmount)
		agg.Count++
	}

	breakdown := make([]PaymentBreakdown, 0, len(byType))
	for _, pt := range []enums.PaymentType{enums.PaymentTypeCash, enums.PaymentTypeBalance, enums.PaymentTypeRecharge} {
		if agg, ok := byType[pt]; ok {
			breakdown = append(breakdown, *agg)
		}
	}

	return &SalespersonPerformance{
		Salesperson: name,
		Total:       total,
		Count:       len(records),
		Average:     average(total, len(records)),
		Breakdown:   breakdown,
	}, nil
}

// SpendingByCustomer totals the money a customer handed over (cash plus
// recharges) and always reports their current prepaid balance.
func (s *service) SpendingByCustomer(ctx context.Context, name string) (*CustomerSpending, error) {
	records, err := s.salesRepo.FindByCustomer(ctx, name)
	if err != nil {
		return nil, err
	}
	customer, err := s.customers.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 && customer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no data for customer %q", name))
	}

	spent := decimal.Zero
	cashAmount := decimal.Zero
	rechargeAmount := decimal.Zero
	count, cashCount, rechargeCount := 0, 0, 0
	products := []string{}
	for _, record := range records {
		if !record.PaymentType.CountsAsRevenue() {
			continue
		}
		spent = spent.Add(record.TotalAmount)
		count++
		products = append(products, record.Product)
		switch record.PaymentType {
		case enums.PaymentTypeCash:
			cashAmount = cashAmount.Add(record.TotalAmount)
			cashCount++
		case enums.PaymentTypeRecharge:
			rechargeAmount = rechargeAmount.Add(record.TotalAmount)
			rechargeCount++
		}
	}

	balance := decimal.Zero
	if customer != nil {
		balance = customer.Balance
	}

	return &CustomerSpending{
		Customer:       name,
		TotalSpent:     spent,
		Count:          count,
		CashAmount:     cashAmount,
		CashCount:      cashCount,
		RechargeAmount: rechargeAmount,
		RechargeCount:  rechargeCount,
		CurrentBalance: balance,
		Products:       products,
	}, nil
}

// RangeBySalesperson ranks salespeople by total over the range, highest
// first. Equal totals keep the order salespeople first appeared in the
// records.
func (s *service) RangeBySalesperson(ctx context.Context, from, to time.Time) (*RangeReport, error) {
	records, err := s.salesRepo.FindBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no sales data in the selected range")
	}

	var order []string
	byName := map[string]*RankedSalesperson{}
	grandTotal := decimal.Zero
	for _, record := range records {
		row, ok := byName[record.Salesperson]
		if !ok {
			row = &RankedSalesperson{Salesperson: record.Salesperson, Total: decimal.Zero}
			byName[record.Salesperson] = row
			order = append(order, record.Salesperson)
		}
		row.Total = row.Total.Add(record.TotalAmount)
		row.Count++
		grandTotal = grandTotal.Add(record.TotalAmount)
	}

	rankings := make([]RankedSalesperson, 0, len(order))
	for _, name := range order {
		rankings = append(rankings, *byName[name])
	}
	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].Total.GreaterThan(rankings[j].Total)
	})
	for i := range rankings {
		rankings[i].Rank = i + 1
		rankings[i].Average = average(rankings[i].Total, rankings[i].Count)
	}

	return &RangeReport{
		From:        from,
		To:          to,
		Rankings:    rankings,
		GrandTotal:  grandTotal,
		GrandCount:  len(records),
		Salespeople: len(rankings),
	}, nil
}

// RangeForSalesperson details one salesperson's records over the range,
// newest first.
func (s *service) RangeForSalesperson(ctx context.Context, name string, from, to time.Time) (*SalespersonRangeReport, error) {
	records, err := s.salesRepo.FindBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var matched []models.SaleRecord
	total := decimal.Zero
	for _, record := range records {
		if record.Salesperson != name {
			continue
		}
		matched = append(matched, record)
		total = total.Add(record.TotalAmount)
	}
	if len(matched) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("no sales data for salesperson %q in the selected range", name))
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	return &SalespersonRangeReport{
		Salesperson: name,
		From:        from,
		To:          to,
		Total:       total,
		Count:       len(matched),
		Average:     average(total, len(matched)),
		Records:     matched,
	}, nil
}

package reporting

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gagesampsonn/barbershop/internal/domain/apperrors"
	"github.com/gagesampsonn/barbershop/internal/domain/models"
)

type fakeSource struct {
	mu        sync.Mutex
	payments  []models.Payment
	customers map[string]models.Customer
	failOn    func(begin, end time.Time) bool
	calls     int
}

func (f *fakeSource) ListPayments(_ context.Context, begin, end time.Time) ([]models.Payment, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.failOn != nil && f.failOn(begin, end) {
		return nil, errors.New("upstream timeout")
	}
	var out []models.Payment
	for _, p := range f.payments {
		if !p.CreatedAt.Before(begin) && !p.CreatedAt.After(end) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeSource) GetCustomer(_ context.Context, id string) (models.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return models.Customer{}, errors.New("customer not found")
	}
	return c, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func payment(id, status string, total, tip int64, at time.Time, customer string) models.Payment {
	return models.Payment{ID: id, Status: status, TotalCents: total, TipCents: tip, CreatedAt: at, CustomerID: customer}
}

func TestSummarizeScenario(t *testing.T) {
	loc := newYork(t)
	day := models.NewDate(2024, time.February, 14)
	payments := []models.Payment{
		payment("p1", models.PaymentStatusCompleted, 1000, 200, time.Date(2024, 2, 14, 10, 0, 0, 0, loc), ""),
		payment("p2", "FAILED", 500, 0, time.Date(2024, 2, 14, 11, 0, 0, 0, loc), ""),
	}

	got := Summarize(payments, day)
	assert.Equal(t, "2024-02-14", got.Date.String())
	assert.Equal(t, "10.00", got.GrossSales.StringFixed(2))
	assert.Equal(t, "2.00", got.Tips.StringFixed(2))
	assert.Equal(t, "8.00", got.NetSales.StringFixed(2))
	assert.Equal(t, 1, got.TransactionCount)
	assert.Equal(t, models.SummaryOK, got.Status)
}

func TestSummarizeOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	statuses := []string{models.PaymentStatusCompleted, "FAILED", "CANCELED", models.PaymentStatusCompleted}
	var payments []models.Payment
	for i := 0; i < 200; i++ {
		payments = append(payments, payment("p", statuses[rng.Intn(len(statuses))], rng.Int63n(100000), rng.Int63n(2000), time.Unix(0, 0), ""))
	}
	day := models.NewDate(2024, time.January, 1)
	want := Summarize(payments, day)
	assert.True(t, want.NetSales.Equal(want.GrossSales.Sub(want.Tips)))

	for i := 0; i < 10; i++ {
		rng.Shuffle(len(payments), func(a, b int) { payments[a], payments[b] = payments[b], payments[a] })
		got := Summarize(payments, day)
		assert.True(t, want.GrossSales.Equal(got.GrossSales))
		assert.True(t, want.Tips.Equal(got.Tips))
		assert.True(t, want.NetSales.Equal(got.NetSales))
		assert.Equal(t, want.TransactionCount, got.TransactionCount)
	}
}

func summaryFor(date models.Date, count int, grossCents int64) models.DailySalesSummary {
	return models.DailySalesSummary{
		Date:             date,
		GrossSales:       models.CentsToAmount(grossCents),
		Tips:             models.CentsToAmount(0),
		NetSales:         models.CentsToAmount(grossCents),
		TransactionCount: count,
		Status:           models.SummaryOK,
	}
}

func TestRankDays(t *testing.T) {
	d := func(day int) models.Date { return models.NewDate(2024, time.March, day) }
	days := []models.DailySalesSummary{
		summaryFor(d(1), 5, 5000),
		summaryFor(d(2), 0, 0),
		summaryFor(d(3), 9, 4000),
		summaryFor(d(4), 5, 9000),
		models.UnavailableSummary(d(5)),
		summaryFor(d(6), 1, 0),
		summaryFor(d(7), 5, 100),
	}

	byCount := RankDays(days, 3, models.RankByTransactions)
	require.Len(t, byCount, 3)
	assert.Equal(t, "2024-03-03", byCount[0].Date.String())
	// ties on 5 transactions: newest first
	assert.Equal(t, "2024-03-07", byCount[1].Date.String())
	assert.Equal(t, "2024-03-04", byCount[2].Date.String())

	byGross := RankDays(days, 10, models.RankByGrossSales)
	require.Len(t, byGross, 4)
	assert.Equal(t, "2024-03-04", byGross[0].Date.String())
	for i, day := range byGross {
		assert.True(t, day.GrossSales.IsPositive())
		assert.True(t, day.Available())
		if i > 0 {
			assert.True(t, byGross[i-1].GrossSales.GreaterThanOrEqual(day.GrossSales))
		}
	}

	all := RankDays(days, 10, models.RankByTransactions)
	for _, day := range all {
		assert.NotEqual(t, 0, day.TransactionCount)
		assert.NotEqual(t, "2024-03-05", day.Date.String())
	}
	assert.Empty(t, RankDays(days, 0, models.RankByTransactions))
}

func TestBucketByHour(t *testing.T) {
	loc := newYork(t)
	payments := []models.Payment{
		// 14:05 UTC is 09:05 in New York in winter.
		payment("a", models.PaymentStatusCompleted, 1500, 0, time.Date(2024, 1, 10, 14, 5, 0, 0, time.UTC), ""),
		payment("b", models.PaymentStatusCompleted, 2500, 500, time.Date(2024, 1, 10, 9, 59, 0, 0, loc), ""),
		payment("c", "FAILED", 9900, 0, time.Date(2024, 1, 10, 9, 30, 0, 0, loc), ""),
		payment("d", models.PaymentStatusCompleted, 1000, 0, time.Date(2024, 1, 10, 23, 0, 0, 0, loc), ""),
	}

	buckets := BucketByHour(payments, loc)
	require.Len(t, buckets, 24)
	for h, b := range buckets {
		assert.Equal(t, h, b.Hour)
	}
	assert.Equal(t, 2, buckets[9].Count)
	assert.Equal(t, "40.00", buckets[9].Amount.StringFixed(2))
	assert.Equal(t, 1, buckets[23].Count)
	assert.Equal(t, 0, buckets[14].Count)
	assert.True(t, buckets[0].Amount.IsZero())
}

func TestRankCustomers(t *testing.T) {
	at := time.Unix(1700000000, 0)
	payments := []models.Payment{
		payment("1", models.PaymentStatusCompleted, 3000, 0, at, "alice"),
		payment("2", models.PaymentStatusCompleted, 1000, 0, at, "bob"),
		payment("3", models.PaymentStatusCompleted, 2000, 0, at, "bob"),
		payment("4", models.PaymentStatusCompleted, 3000, 0, at, "carol"),
		payment("5", models.PaymentStatusCompleted, 9000, 0, at, ""),
		payment("6", "FAILED", 9000, 0, at, "dave"),
	}

	got := RankCustomers(payments, 10)
	require.Len(t, got, 3)
	// 30.00 each: bob has more visits, then alice before carol by id
	assert.Equal(t, "bob", got[0].ID)
	assert.Equal(t, 2, got[0].VisitCount)
	assert.Equal(t, "alice", got[1].ID)
	assert.Equal(t, "carol", got[2].ID)
	assert.Equal(t, "30.00", got[2].TotalSpent.StringFixed(2))

	assert.Len(t, RankCustomers(payments, 1), 1)
}

func fixedNow(t *testing.T) (time.Time, *time.Location) {
	loc := newYork(t)
	// Wednesday
	return time.Date(2024, 2, 21, 15, 0, 0, 0, loc), loc
}

func TestNotConfigured(t *testing.T) {
	svc := NewService(nil, time.UTC, zaptest.NewLogger(t))
	assert.False(t, svc.Configured())

	_, err := svc.PaymentSummary(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrNotConfigured)
	_, err = svc.MonthlyCalendar(context.Background(), 2024, 1)
	assert.ErrorIs(t, err, apperrors.ErrNotConfigured)
	_, err = svc.TopCustomers(context.Background(), 90, 10)
	assert.ErrorIs(t, err, apperrors.ErrNotConfigured)
}

func TestMonthlyCalendarZeroBasedMonth(t *testing.T) {
	loc := newYork(t)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, loc)
	source := &fakeSource{payments: []models.Payment{
		payment("v1", models.PaymentStatusCompleted, 4500, 500, time.Date(2024, 2, 14, 10, 0, 0, 0, loc), ""),
		payment("v2", models.PaymentStatusCompleted, 3000, 0, time.Date(2024, 2, 14, 18, 30, 0, 0, loc), ""),
		payment("v3", "FAILED", 3000, 0, time.Date(2024, 2, 20, 11, 0, 0, 0, loc), ""),
		// outside February
		payment("m1", models.PaymentStatusCompleted, 3000, 0, time.Date(2024, 3, 1, 11, 0, 0, 0, loc), ""),
	}}

	svc := NewService(source, loc, zaptest.NewLogger(t), WithClock(func() time.Time { return now }))
	cal, err := svc.MonthlyCalendar(context.Background(), 2024, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, cal.Month)
	require.Len(t, cal.Days, 1)
	day, ok := cal.Day(14)
	require.True(t, ok)
	assert.Equal(t, 2, day.TransactionCount)
	assert.Equal(t, "75.00", day.GrossSales.StringFixed(2))
	assert.Equal(t, "2024-02-14", day.Date.String())
	_, ok = cal.Day(20)
	assert.False(t, ok)

	top := RankDays(CalendarDays(cal), 10, models.RankByTransactions)
	require.Len(t, top, 1)

	_, err = svc.MonthlyCalendar(context.Background(), 2024, 12)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	future, err := svc.MonthlyCalendar(context.Background(), 2025, 0)
	require.NoError(t, err)
	assert.Empty(t, future.Days)
}

func weekOfPayments(loc *time.Location) []models.Payment {
	var out []models.Payment
	for day := 15; day <= 21; day++ {
		for i := 0; i < day-14; i++ {
			at := time.Date(2024, 2, day, 9+i, 15, 0, 0, loc)
			out = append(out, payment("p", models.PaymentStatusCompleted, int64(1000*(i+1)), 100, at, ""))
		}
		// just before midnight stays on its own day
		out = append(out, payment("late", models.PaymentStatusCompleted, 700, 0, time.Date(2024, 2, day, 23, 59, 59, 0, loc), ""))
		out = append(out, payment("void", "CANCELED", 5000, 0, time.Date(2024, 2, day, 12, 0, 0, 0, loc), ""))
	}
	return out
}

func TestDailyBreakdownReconciles(t *testing.T) {
	now, loc := fixedNow(t)
	source := &fakeSource{payments: weekOfPayments(loc)}
	svc := NewService(source, loc, zaptest.NewLogger(t), WithClock(func() time.Time { return now }), WithFanOut(3))
	ctx := context.Background()

	days, err := svc.DailyBreakdown(ctx, 7)
	require.NoError(t, err)
	require.Len(t, days, 7)
	assert.Equal(t, "2024-02-21", days[0].Date.String())
	assert.Equal(t, "2024-02-15", days[6].Date.String())

	total := 0
	for _, d := range days {
		total += d.TransactionCount
		assert.True(t, d.NetSales.Equal(d.GrossSales.Sub(d.Tips)))
	}
	window, err := svc.SalesSummary(ctx, models.NewDate(2024, time.February, 15), models.NewDate(2024, time.February, 21))
	require.NoError(t, err)
	assert.Equal(t, window.TransactionCount, total)
	assert.Equal(t, "2024-02-15", window.Date.String())

	_, err = svc.DailyBreakdown(ctx, 0)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestDailyBreakdownIsolatesFailures(t *testing.T) {
	now, loc := fixedNow(t)
	badDay := models.NewDate(2024, time.February, 19).StartIn(loc)
	source := &fakeSource{
		payments: weekOfPayments(loc),
		failOn:   func(begin, _ time.Time) bool { return begin.Equal(badDay) },
	}
	svc := NewService(source, loc, zaptest.NewLogger(t), WithClock(func() time.Time { return now }))

	days, err := svc.DailyBreakdown(context.Background(), 7)
	require.NoError(t, err)
	for _, d := range days {
		if d.Date.String() == "2024-02-19" {
			assert.Equal(t, models.SummaryUnavailable, d.Status)
			assert.Zero(t, d.TransactionCount)
			continue
		}
		assert.Equal(t, models.SummaryOK, d.Status)
		assert.Positive(t, d.TransactionCount)
	}

	top, err := svc.TopBusiestDays(context.Background(), 7, 10, models.RankByTransactions)
	require.NoError(t, err)
	assert.Len(t, top, 6)
	assert.Equal(t, "2024-02-21", top[0].Date.String())

	_, err = svc.TopBusiestDays(context.Background(), 7, 10, "revenue")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestTopCustomers(t *testing.T) {
	now, loc := fixedNow(t)
	at := time.Date(2024, 2, 10, 10, 0, 0, 0, loc)
	source := &fakeSource{
		payments: []models.Payment{
			payment("1", models.PaymentStatusCompleted, 5000, 0, at, "known"),
			payment("2", models.PaymentStatusCompleted, 4000, 0, at, "ghost"),
			payment("3", models.PaymentStatusCompleted, 3000, 0, at, "blank"),
			payment("4", models.PaymentStatusCompleted, 9000, 0, at, ""),
			// outside a 30 day lookback
			payment("5", models.PaymentStatusCompleted, 9000, 0, time.Date(2023, 12, 1, 10, 0, 0, 0, loc), "old"),
		},
		customers: map[string]models.Customer{
			"known": {ID: "known", GivenName: "Sam", FamilyName: "Fade", Email: "sam@example.com", Phone: "+15550101"},
			"blank": {ID: "blank"},
		},
	}
	svc := NewService(source, loc, zaptest.NewLogger(t), WithClock(func() time.Time { return now }))

	got, err := svc.TopCustomers(context.Background(), 30, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Sam Fade", got[0].Name)
	assert.Equal(t, "sam@example.com", got[0].Email)

	assert.Equal(t, "ghost", got[1].ID)
	assert.Equal(t, models.UnknownCustomerName, got[1].Name)
	assert.Empty(t, got[1].Email)
	assert.Empty(t, got[1].Phone)
	assert.Equal(t, "40.00", got[1].TotalSpent.StringFixed(2))
	assert.Equal(t, 1, got[1].VisitCount)

	assert.Equal(t, models.UnknownCustomerName, got[2].Name)

	named := NamedOnly(got)
	require.Len(t, named, 1)
	assert.Equal(t, "known", named[0].ID)

	source.failOn = func(time.Time, time.Time) bool { return true }
	_, err = svc.TopCustomers(context.Background(), 30, 10)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUpstream))
}

func TestHourlyBreakdown(t *testing.T) {
	now, loc := fixedNow(t)
	source := &fakeSource{payments: weekOfPayments(loc)}
	svc := NewService(source, loc, zaptest.NewLogger(t), WithClock(func() time.Time { return now }))

	buckets, err := svc.HourlyBreakdown(context.Background(), models.NewDate(2024, time.February, 16))
	require.NoError(t, err)
	require.Len(t, buckets, 24)
	assert.Equal(t, 1, buckets[9].Count)
	assert.Equal(t, 1, buckets[10].Count)
	assert.Equal(t, 1, buckets[23].Count)
	assert.Equal(t, 0, buckets[12].Count)
}

func TestPaymentSummary(t *testing.T) {
	now, loc := fixedNow(t)
	yesterday := models.NewDate(2024, time.February, 20).StartIn(loc)
	source := &fakeSource{
		payments: weekOfPayments(loc),
		failOn: func(begin, end time.Time) bool {
			// only the standalone yesterday window fails
			return begin.Equal(yesterday) && end.Sub(begin) < 24*time.Hour+time.Hour
		},
	}
	svc := NewService(source, loc, zaptest.NewLogger(t), WithClock(func() time.Time { return now }))

	summary, err := svc.PaymentSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.SummaryOK, summary.Today.Status)
	assert.Equal(t, 8, summary.Today.TransactionCount)

	assert.Equal(t, models.SummaryUnavailable, summary.Yesterday.Status)
	assert.Equal(t, "2024-02-20", summary.Yesterday.Date.String())

	// week starts Sunday 2024-02-18
	assert.Equal(t, "2024-02-18", summary.ThisWeek.Date.String())
	assert.Equal(t, models.SummaryOK, summary.ThisWeek.Status)
	assert.Equal(t, 5+6+7+8, summary.ThisWeek.TransactionCount)

	assert.Equal(t, "2024-02-01", summary.ThisMonth.Date.String())

	assert.LessOrEqual(t, len(summary.TopDays), 10)
	require.NotEmpty(t, summary.TopDays)
	assert.Equal(t, "2024-02-21", summary.TopDays[0].Date.String())
	for _, d := range summary.TopDays {
		assert.NotEqual(t, "2024-02-20", d.Date.String())
	}
}

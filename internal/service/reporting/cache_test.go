package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gagesampsonn/barbershop/internal/domain/models"
	"github.com/gagesampsonn/barbershop/pkg/clients/square"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, time.Hour), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)
	date := models.NewDate(2024, time.February, 14)

	_, ok, err := cache.Get(ctx, date)
	require.NoError(t, err)
	assert.False(t, ok)

	summary := summaryFor(date, 3, 4550)
	require.NoError(t, cache.Set(ctx, summary))
	assert.True(t, mr.Exists("sales:day:2024-02-14"))
	assert.Equal(t, time.Hour, mr.TTL("sales:day:2024-02-14"))

	got, ok, err := cache.Get(ctx, date)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, got.TransactionCount)
	assert.True(t, got.GrossSales.Equal(summary.GrossSales))
	assert.Equal(t, "2024-02-14", got.Date.String())

	require.NoError(t, cache.Set(ctx, models.UnavailableSummary(date.AddDays(1))))
	assert.False(t, mr.Exists("sales:day:2024-02-15"))

	require.NoError(t, mr.Set("sales:day:2024-02-16", "{not json"))
	_, _, err = cache.Get(ctx, date.AddDays(2))
	assert.Error(t, err)
}

func TestDailyBreakdownUsesCacheForSettledDays(t *testing.T) {
	now, loc := fixedNow(t)
	cache, mr := newTestCache(t)
	source := &fakeSource{payments: weekOfPayments(loc)}
	svc := NewService(source, loc, zaptest.NewLogger(t), WithClock(func() time.Time { return now }), WithCache(cache))
	ctx := context.Background()

	first, err := svc.DailyBreakdown(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, source.callCount())
	assert.False(t, mr.Exists("sales:day:2024-02-21"), "today must not be cached")
	assert.False(t, mr.Exists("sales:day:2024-02-20"), "yesterday can still settle")
	assert.True(t, mr.Exists("sales:day:2024-02-19"))

	second, err := svc.DailyBreakdown(ctx, 7)
	require.NoError(t, err)
	// today and yesterday are fetched again
	assert.Equal(t, 9, source.callCount())

	for i := range first {
		assert.Equal(t, first[i].TransactionCount, second[i].TransactionCount)
		assert.True(t, first[i].GrossSales.Equal(second[i].GrossSales))
	}
}

type fakeSquare struct {
	payments []square.Payment
	err      error
}

func (f *fakeSquare) ListPayments(context.Context, time.Time, time.Time) ([]square.Payment, error) {
	return f.payments, f.err
}

func (f *fakeSquare) GetCustomer(_ context.Context, id string) (*square.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &square.Customer{ID: id, GivenName: "Ada", EmailAddress: "ada@example.com", PhoneNumber: "+1555"}, nil
}

func TestSquareSourceConversion(t *testing.T) {
	ctx := context.Background()
	client := &fakeSquare{payments: []square.Payment{
		{
			ID: "p1", Status: "COMPLETED", CreatedAt: "2024-02-14T15:04:05.123Z",
			TotalMoney: &square.Money{Amount: 2500, Currency: "USD"},
			TipMoney:   &square.Money{Amount: 500, Currency: "USD"},
			CustomerID: "C1",
		},
		{
			ID: "p2", Status: "COMPLETED", CreatedAt: "2024-02-14T16:00:00Z",
			AmountMoney: &square.Money{Amount: 1000, Currency: "USD"},
		},
	}}

	source := NewSquareSource(client)
	payments, err := source.ListPayments(ctx, time.Time{}, time.Now())
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, int64(2500), payments[0].TotalCents)
	assert.Equal(t, int64(500), payments[0].TipCents)
	assert.Equal(t, "C1", payments[0].CustomerID)
	assert.Equal(t, 123*time.Millisecond, time.Duration(payments[0].CreatedAt.Nanosecond()))
	assert.Equal(t, int64(1000), payments[1].TotalCents)
	assert.Zero(t, payments[1].TipCents)

	customer, err := source.GetCustomer(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", customer.Email)

	client.payments = []square.Payment{{ID: "bad", CreatedAt: "yesterday"}}
	_, err = source.ListPayments(ctx, time.Time{}, time.Now())
	assert.Error(t, err)

	client.err = errors.New("unauthorized")
	_, err = source.GetCustomer(ctx, "C1")
	assert.Error(t, err)
}

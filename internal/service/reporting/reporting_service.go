package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gagesampsonn/barbershop/internal/domain/apperrors"
	"github.com/gagesampsonn/barbershop/internal/domain/models"
	"github.com/gagesampsonn/barbershop/internal/metrics"
)

const (
	DefaultWindowDays   = 90
	DefaultTopLimit     = 10
	defaultFanOut       = 4
	maxBreakdownDays    = 366
	summaryTopDaysLimit = 10
)

// PaymentSource supplies payment records and customer identities.
type PaymentSource interface {
	ListPayments(ctx context.Context, begin, end time.Time) ([]models.Payment, error)
	GetCustomer(ctx context.Context, id string) (models.Customer, error)
}

// SummaryCache stores summaries of days that can no longer change.
type SummaryCache interface {
	Get(ctx context.Context, date models.Date) (models.DailySalesSummary, bool, error)
	Set(ctx context.Context, summary models.DailySalesSummary) error
}

// Service computes sales reports from a PaymentSource.
type Service struct {
	source PaymentSource
	cache  SummaryCache
	logger *zap.Logger
	loc    *time.Location
	now    func() time.Time
	fanOut int
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCache enables caching of closed days.
func WithCache(cache SummaryCache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithFanOut bounds concurrent fetches.
func WithFanOut(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.fanOut = limit
		}
	}
}

// NewService wires a new reporting service. source may be nil when the payments
// provider is not configured; every report then fails with ErrNotConfigured.
func NewService(source PaymentSource, loc *time.Location, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	svc := &Service{source: source, logger: logger, loc: loc, now: time.Now, fanOut: defaultFanOut}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Configured reports whether a payment source is available.
func (s *Service) Configured() bool { return s.source != nil }

// Today returns the current civil date in the business zone.
func (s *Service) Today() models.Date {
	return models.DateOf(s.now().In(s.loc))
}

func (s *Service) ready() error {
	if s.source == nil {
		return apperrors.ErrNotConfigured
	}
	return nil
}

func (s *Service) fetch(ctx context.Context, begin, end time.Time) ([]models.Payment, error) {
	payments, err := s.source.ListPayments(ctx, begin, end)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeUpstream, "failed to fetch payments", err)
	}
	return payments, nil
}

// SalesSummary summarizes [start 00:00, end 23:59:59.999…] in the business zone.
func (s *Service) SalesSummary(ctx context.Context, start, end models.Date) (models.DailySalesSummary, error) {
	if err := s.ready(); err != nil {
		return models.DailySalesSummary{}, err
	}
	if end.Before(start) {
		return models.DailySalesSummary{}, apperrors.Validation("end date must not be before start date")
	}
	payments, err := s.fetch(ctx, start.StartIn(s.loc), end.EndIn(s.loc))
	if err != nil {
		return models.DailySalesSummary{}, err
	}
	return Summarize(payments, start), nil
}

// window summarizes a range, degrading to an unavailable summary on failure.
func (s *Service) window(ctx context.Context, report string, start, end models.Date) models.DailySalesSummary {
	summary, err := s.SalesSummary(ctx, start, end)
	if err != nil {
		s.logger.Warn("sales window unavailable",
			zap.String("report", report),
			zap.String("start", start.String()),
			zap.String("end", end.String()),
			zap.Error(err))
		metrics.IncUnavailableWindow(report)
		return models.UnavailableSummary(start)
	}
	return summary
}

// daySummary returns one day's summary, using the cache for settled days.
// Square can report a payment as COMPLETED late, so yesterday is always fetched live.
func (s *Service) daySummary(ctx context.Context, date, today models.Date) models.DailySalesSummary {
	closed := s.cache != nil && date.Before(today.AddDays(-1))
	if closed {
		cached, ok, err := s.cache.Get(ctx, date)
		switch {
		case err != nil:
			s.logger.Debug("summary cache read failed", zap.String("date", date.String()), zap.Error(err))
		case ok:
			metrics.IncCacheResult("hit")
			return cached
		default:
			metrics.IncCacheResult("miss")
		}
	}

	summary := s.window(ctx, "daily_breakdown", date, date)
	if closed && summary.Available() {
		if err := s.cache.Set(ctx, summary); err != nil {
			s.logger.Debug("summary cache write failed", zap.String("date", date.String()), zap.Error(err))
		}
	}
	return summary
}

// DailyBreakdown returns one summary per day, slot 0 being today and slot n-1
// being n-1 days ago. A day whose fetch fails is marked unavailable.
func (s *Service) DailyBreakdown(ctx context.Context, days int) ([]models.DailySalesSummary, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if days < 1 || days > maxBreakdownDays {
		return nil, apperrors.Validation("days must be between 1 and %d", maxBreakdownDays)
	}

	today := s.Today()
	results := make([]models.DailySalesSummary, days)

	var g errgroup.Group
	g.SetLimit(s.fanOut)
	for i := 0; i < days; i++ {
		date := today.AddDays(-i)
		g.Go(func() error {
			results[i] = s.daySummary(ctx, date, today)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// TopBusiestDays ranks the last windowDays days by the given key.
func (s *Service) TopBusiestDays(ctx context.Context, windowDays, limit int, rankBy models.RankKey) ([]models.DailySalesSummary, error) {
	if !rankBy.Valid() {
		return nil, apperrors.Validation("unknown rank key %q", rankBy)
	}
	days, err := s.DailyBreakdown(ctx, windowDays)
	if err != nil {
		return nil, err
	}
	return RankDays(days, limit, rankBy), nil
}

// MonthlyCalendar buckets a month's completed payments by day. monthIndex is
// zero based: (2024, 1) is February 2024.
func (s *Service) MonthlyCalendar(ctx context.Context, year, monthIndex int) (models.MonthlyCalendar, error) {
	if err := s.ready(); err != nil {
		return models.MonthlyCalendar{}, err
	}
	if monthIndex < 0 || monthIndex > 11 {
		return models.MonthlyCalendar{}, apperrors.Validation("month must be between 0 and 11, got %d", monthIndex)
	}
	if year < 2000 || year > 9999 {
		return models.MonthlyCalendar{}, apperrors.Validation("year %d is out of range", year)
	}

	cal := models.MonthlyCalendar{Year: year, Month: monthIndex, Days: map[int]models.DailySalesSummary{}}

	first := models.NewDate(year, time.Month(monthIndex+1), 1)
	last := models.DateOf(first.AddDate(0, 1, -1))
	begin := first.StartIn(s.loc)
	end := last.EndIn(s.loc)

	now := s.now()
	if begin.After(now) {
		return cal, nil
	}
	if end.After(now) {
		end = now
	}

	payments, err := s.fetch(ctx, begin, end)
	if err != nil {
		return models.MonthlyCalendar{}, err
	}
	cal.Days = BucketByDay(payments, s.loc)
	return cal, nil
}

// TopCustomers ranks customers over the trailing lookbackDays and resolves
// their identities. A failed lookup keeps the entry under the sentinel name.
func (s *Service) TopCustomers(ctx context.Context, lookbackDays, limit int) ([]models.TopCustomer, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if lookbackDays < 1 || lookbackDays > maxBreakdownDays {
		return nil, apperrors.Validation("days must be between 1 and %d", maxBreakdownDays)
	}

	today := s.Today()
	start := today.AddDays(-(lookbackDays - 1))
	payments, err := s.fetch(ctx, start.StartIn(s.loc), today.EndIn(s.loc))
	if err != nil {
		return nil, err
	}

	ranked := RankCustomers(payments, limit)

	var g errgroup.Group
	g.SetLimit(s.fanOut)
	for i := range ranked {
		g.Go(func() error {
			s.resolveCustomer(ctx, &ranked[i])
			return nil
		})
	}
	_ = g.Wait()

	return ranked, nil
}

func (s *Service) resolveCustomer(ctx context.Context, entry *models.TopCustomer) {
	customer, err := s.source.GetCustomer(ctx, entry.ID)
	if err != nil {
		s.logger.Warn("customer lookup failed", zap.String("customer_id", entry.ID), zap.Error(err))
		entry.Name = models.UnknownCustomerName
		return
	}
	name := strings.TrimSpace(strings.TrimSpace(customer.GivenName) + " " + strings.TrimSpace(customer.FamilyName))
	if name == "" {
		entry.Name = models.UnknownCustomerName
		return
	}
	entry.Name = name
	entry.Email = customer.Email
	entry.Phone = customer.Phone
}

// HourlyBreakdown returns 24 hourly buckets for one day.
func (s *Service) HourlyBreakdown(ctx context.Context, day models.Date) ([]models.HourlyBucket, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	payments, err := s.fetch(ctx, day.StartIn(s.loc), day.EndIn(s.loc))
	if err != nil {
		return nil, err
	}
	return BucketByHour(payments, s.loc), nil
}

// PaymentSummary computes the dashboard roll-up. Windows run concurrently and
// a failing window is reported unavailable without affecting the others.
func (s *Service) PaymentSummary(ctx context.Context) (models.PaymentSummary, error) {
	if err := s.ready(); err != nil {
		return models.PaymentSummary{}, err
	}

	today := s.Today()
	yesterday := today.AddDays(-1)
	weekStart := today.AddDays(-int(today.Weekday()))
	monthStart := models.NewDate(today.Year(), today.Month(), 1)

	var (
		summary models.PaymentSummary
		g       errgroup.Group
	)
	g.Go(func() error {
		summary.Today = s.window(ctx, "today", today, today)
		return nil
	})
	g.Go(func() error {
		summary.Yesterday = s.window(ctx, "yesterday", yesterday, yesterday)
		return nil
	})
	g.Go(func() error {
		summary.ThisWeek = s.window(ctx, "this_week", weekStart, today)
		return nil
	})
	g.Go(func() error {
		summary.ThisMonth = s.window(ctx, "this_month", monthStart, today)
		return nil
	})
	g.Go(func() error {
		top, err := s.TopBusiestDays(ctx, DefaultWindowDays, summaryTopDaysLimit, models.RankByGrossSales)
		if err != nil {
			s.logger.Warn("top days unavailable", zap.Error(err))
			top = []models.DailySalesSummary{}
		}
		summary.TopDays = top
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return models.PaymentSummary{}, fmt.Errorf("payment summary: %w", err)
	}
	return summary, nil
}

package hours

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gagesampsonn/barbershop/internal/domain/apperrors"
	"github.com/gagesampsonn/barbershop/internal/domain/models"
)

// exceptionHorizonDays bounds the public exceptions window.
const exceptionHorizonDays = 90

// Repository is the persistence contract for schedule data.
type Repository interface {
	ListWeeklyHours(ctx context.Context) ([]models.WeeklyScheduleEntry, error)
	UpsertWeeklyHours(ctx context.Context, entries []models.WeeklyScheduleEntry) error
	ListExceptions(ctx context.Context, from, to models.Date) ([]models.ScheduleException, error)
	CreateException(ctx context.Context, exception models.ScheduleException) (models.ScheduleException, error)
	UpdateException(ctx context.Context, exception models.ScheduleException) (models.ScheduleException, error)
	DeleteException(ctx context.Context, id string) error
}

// Service resolves the shop's schedule and applies admin edits.
type Service struct {
	repo   Repository
	logger *zap.Logger
	loc    *time.Location
	now    func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires a new hours service. repo may be nil when no database is configured;
// reads then fall back to defaults and writes report ErrUnavailable.
func NewService(repo Repository, loc *time.Location, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	svc := &Service{repo: repo, logger: logger, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Location returns the business time zone.
func (s *Service) Location() *time.Location { return s.loc }

// Today returns the current civil date in the business zone.
func (s *Service) Today() models.Date {
	return models.DateOf(s.now().In(s.loc))
}

// WeeklySchedule returns exactly seven entries ordered Sunday..Saturday. It never fails.
func (s *Service) WeeklySchedule(ctx context.Context) []models.WeeklyScheduleEntry {
	if s.repo == nil {
		return DefaultWeeklySchedule()
	}
	entries, err := s.repo.ListWeeklyHours(ctx)
	if err != nil {
		s.logger.Warn("load weekly hours, serving defaults", zap.Error(err))
		return DefaultWeeklySchedule()
	}
	if len(entries) == 0 {
		s.logger.Warn("no weekly hours stored, serving defaults")
		return DefaultWeeklySchedule()
	}
	if len(entries) < 7 {
		s.logger.Warn("weekly hours incomplete, filling from defaults", zap.Int("stored", len(entries)))
	}
	return completeSchedule(entries)
}

// UpcomingExceptions returns exceptions dated today through today+90 days. It never fails.
func (s *Service) UpcomingExceptions(ctx context.Context) []models.ScheduleException {
	if s.repo == nil {
		return []models.ScheduleException{}
	}
	today := s.Today()
	exceptions, err := s.repo.ListExceptions(ctx, today, today.AddDays(exceptionHorizonDays))
	if err != nil {
		s.logger.Warn("load schedule exceptions", zap.Error(err))
		return []models.ScheduleException{}
	}
	if exceptions == nil {
		exceptions = []models.ScheduleException{}
	}
	return exceptions
}

// Status resolves the open/closed state at the current instant.
func (s *Service) Status(ctx context.Context) models.HoursStatus {
	schedule := s.WeeklySchedule(ctx)
	exceptions := s.UpcomingExceptions(ctx)
	return s.StatusAt(schedule, exceptions, s.now())
}

// StatusAt resolves the state at an arbitrary instant against already loaded data.
func (s *Service) StatusAt(schedule []models.WeeklyScheduleEntry, exceptions []models.ScheduleException, now time.Time) models.HoursStatus {
	today, weekday, _ := clockIn(now, s.loc)
	status := models.HoursStatus{
		Open: IsOpenNow(schedule, exceptions, now, s.loc),
		Date: today,
		Day:  models.DayNames[weekday],
	}
	if exception, ok := exceptionOn(exceptions, today); ok {
		status.Exception = &exception
		status.TodayHours = FormatExceptionLine(exception)
		return status
	}
	entry, ok := entryFor(schedule, int(weekday))
	if !ok {
		status.TodayHours = closedLabel
		return status
	}
	status.TodayHours = FormatScheduleLine(entry)
	return status
}

// SaveWeeklySchedule replaces the weekly schedule. All seven days are saved together.
func (s *Service) SaveWeeklySchedule(ctx context.Context, entries []models.WeeklyScheduleEntry) ([]models.WeeklyScheduleEntry, error) {
	if s.repo == nil {
		return nil, apperrors.ErrUnavailable
	}
	if len(entries) != 7 {
		return nil, apperrors.Validation("expected 7 weekly entries, got %d", len(entries))
	}
	var seen [7]bool
	for i := range entries {
		entries[i].Normalize()
		if err := entries[i].Validate(); err != nil {
			return nil, err
		}
		if seen[entries[i].Weekday] {
			return nil, apperrors.Validation("duplicate entry for %s", models.DayNames[entries[i].Weekday])
		}
		seen[entries[i].Weekday] = true
	}

	if err := s.repo.UpsertWeeklyHours(ctx, entries); err != nil {
		return nil, fmt.Errorf("save weekly hours: %w", err)
	}
	s.logger.Info("weekly hours saved")
	return s.WeeklySchedule(ctx), nil
}

// ListExceptions returns the exceptions dated within [from, to].
func (s *Service) ListExceptions(ctx context.Context, from, to models.Date) ([]models.ScheduleException, error) {
	if s.repo == nil {
		return nil, apperrors.ErrUnavailable
	}
	if to.Before(from) {
		return nil, apperrors.Validation("to must not be before from")
	}
	exceptions, err := s.repo.ListExceptions(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list exceptions: %w", err)
	}
	return exceptions, nil
}

// CreateException stores a new date override.
func (s *Service) CreateException(ctx context.Context, exception models.ScheduleException) (models.ScheduleException, error) {
	if s.repo == nil {
		return models.ScheduleException{}, apperrors.ErrUnavailable
	}
	exception.Normalize()
	if err := exception.Validate(); err != nil {
		return models.ScheduleException{}, err
	}
	created, err := s.repo.CreateException(ctx, exception)
	if err != nil {
		return models.ScheduleException{}, fmt.Errorf("create exception: %w", err)
	}
	s.logger.Info("schedule exception created", zap.String("id", created.ID), zap.String("date", created.Date.String()))
	return created, nil
}

// UpdateException replaces the override identified by id.
func (s *Service) UpdateException(ctx context.Context, id string, exception models.ScheduleException) (models.ScheduleException, error) {
	if s.repo == nil {
		return models.ScheduleException{}, apperrors.ErrUnavailable
	}
	exception.ID = id
	exception.Normalize()
	if err := exception.Validate(); err != nil {
		return models.ScheduleException{}, err
	}
	updated, err := s.repo.UpdateException(ctx, exception)
	if err != nil {
		return models.ScheduleException{}, fmt.Errorf("update exception %s: %w", id, err)
	}
	return updated, nil
}

// DeleteException removes the override identified by id.
func (s *Service) DeleteException(ctx context.Context, id string) error {
	if s.repo == nil {
		return apperrors.ErrUnavailable
	}
	if err := s.repo.DeleteException(ctx, id); err != nil {
		return fmt.Errorf("delete exception %s: %w", id, err)
	}
	s.logger.Info("schedule exception deleted", zap.String("id", id))
	return nil
}

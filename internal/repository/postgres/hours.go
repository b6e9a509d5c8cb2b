package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gagesampsonn/barbershop/internal/domain/apperrors"
	"github.com/gagesampsonn/barbershop/internal/domain/models"
)

const exceptionColumns = `
	id::text, to_char(date, 'YYYY-MM-DD'), type,
	to_char(open_time, 'HH24:MI:SS'), to_char(close_time, 'HH24:MI:SS'),
	label, notes, updated_at`

// ListWeeklyHours returns stored entries ordered by weekday.
func (s *Store) ListWeeklyHours(ctx context.Context) ([]models.WeeklyScheduleEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, day_of_week, is_closed,
		       to_char(open_time, 'HH24:MI:SS'), to_char(close_time, 'HH24:MI:SS'), updated_at
		FROM weekly_hours
		ORDER BY day_of_week ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query weekly hours: %w", err)
	}
	defer rows.Close()

	var entries []models.WeeklyScheduleEntry
	for rows.Next() {
		var (
			entry           models.WeeklyScheduleEntry
			openAt, closeAt *string
		)
		if err := rows.Scan(&entry.ID, &entry.Weekday, &entry.IsClosed, &openAt, &closeAt, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan weekly hours: %w", err)
		}
		if entry.OpenTime, err = models.TimeOfDayPtr(openAt); err != nil {
			return nil, err
		}
		if entry.CloseTime, err = models.TimeOfDayPtr(closeAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate weekly hours: %w", err)
	}
	return entries, nil
}

// UpsertWeeklyHours writes all entries in one transaction, keyed by weekday.
func (s *Store) UpsertWeeklyHours(ctx context.Context, entries []models.WeeklyScheduleEntry) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin weekly hours tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, e := range entries {
		_, err := tx.Exec(ctx, `
			INSERT INTO weekly_hours (day_of_week, is_closed, open_time, close_time, updated_at)
			VALUES ($1, $2, $3::time, $4::time, now())
			ON CONFLICT (day_of_week) DO UPDATE
			SET is_closed = EXCLUDED.is_closed,
			    open_time = EXCLUDED.open_time,
			    close_time = EXCLUDED.close_time,
			    updated_at = now()
		`, e.Weekday, e.IsClosed, timeArg(e.OpenTime), timeArg(e.CloseTime))
		if err != nil {
			return fmt.Errorf("upsert %s: %w", models.DayNames[e.Weekday], translate(err))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit weekly hours: %w", err)
	}
	return nil
}

// ListExceptions returns exceptions dated within [from, to] ordered by date.
func (s *Store) ListExceptions(ctx context.Context, from, to models.Date) ([]models.ScheduleException, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+exceptionColumns+`
		FROM hour_exceptions
		WHERE date BETWEEN $1::date AND $2::date
		ORDER BY date ASC
	`, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("query exceptions: %w", err)
	}
	defer rows.Close()

	var exceptions []models.ScheduleException
	for rows.Next() {
		exception, err := scanException(rows)
		if err != nil {
			return nil, err
		}
		exceptions = append(exceptions, exception)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exceptions: %w", err)
	}
	return exceptions, nil
}

// CreateException inserts a new exception. A second exception on the same date is a conflict.
func (s *Store) CreateException(ctx context.Context, e models.ScheduleException) (models.ScheduleException, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO hour_exceptions (id, date, type, open_time, close_time, label, notes, updated_at)
		VALUES ($1::uuid, $2::date, $3, $4::time, $5::time, $6, $7, now())
		RETURNING `+exceptionColumns,
		e.ID, e.Date.String(), string(e.Kind), timeArg(e.OpenTime), timeArg(e.CloseTime), e.Label, e.Notes)
	created, err := scanException(row)
	if err != nil {
		return models.ScheduleException{}, translate(err)
	}
	return created, nil
}

// UpdateException replaces every editable field of an exception.
func (s *Store) UpdateException(ctx context.Context, e models.ScheduleException) (models.ScheduleException, error) {
	if !validID(e.ID) {
		return models.ScheduleException{}, apperrors.ErrNotFound
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE hour_exceptions
		SET date = $2::date, type = $3, open_time = $4::time, close_time = $5::time,
		    label = $6, notes = $7, updated_at = now()
		WHERE id = $1::uuid
		RETURNING `+exceptionColumns,
		e.ID, e.Date.String(), string(e.Kind), timeArg(e.OpenTime), timeArg(e.CloseTime), e.Label, e.Notes)
	updated, err := scanException(row)
	if err != nil {
		return models.ScheduleException{}, translate(err)
	}
	return updated, nil
}

// DeleteException removes an exception by id.
func (s *Store) DeleteException(ctx context.Context, id string) error {
	if !validID(id) {
		return apperrors.ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM hour_exceptions WHERE id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("delete exception: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanException(row pgx.Row) (models.ScheduleException, error) {
	var (
		e               models.ScheduleException
		date, kind      string
		openAt, closeAt *string
		updatedAt       time.Time
	)
	if err := row.Scan(&e.ID, &date, &kind, &openAt, &closeAt, &e.Label, &e.Notes, &updatedAt); err != nil {
		return models.ScheduleException{}, err
	}
	parsed, err := models.ParseDate(date)
	if err != nil {
		return models.ScheduleException{}, err
	}
	e.Date = parsed
	e.Kind = models.ExceptionKind(kind)
	e.UpdatedAt = updatedAt
	if e.OpenTime, err = models.TimeOfDayPtr(openAt); err != nil {
		return models.ScheduleException{}, err
	}
	if e.CloseTime, err = models.TimeOfDayPtr(closeAt); err != nil {
		return models.ScheduleException{}, err
	}
	return e, nil
}

// timeArg renders an optional time of day as a SQL parameter.
func timeArg(t *models.TimeOfDay) *string {
	if t == nil {
		return nil
	}
	v := t.String()
	return &v
}

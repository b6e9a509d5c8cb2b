package models

import (
	"strings"
	"time"

	"github.com/gagesampsonn/barbershop/internal/domain/apperrors"
)

// DayNames maps weekday indexes (0=Sunday) to display names.
var DayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// WeeklyScheduleEntry is the recurring schedule for one weekday.
type WeeklyScheduleEntry struct {
	ID        string     `json:"id"`
	Weekday   int        `json:"day_of_week"`
	IsClosed  bool       `json:"is_closed"`
	OpenTime  *TimeOfDay `json:"open_time"`
	CloseTime *TimeOfDay `json:"close_time"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// HasHours reports whether the entry describes an open day with both times set.
func (e WeeklyScheduleEntry) HasHours() bool {
	return !e.IsClosed && e.OpenTime != nil && e.CloseTime != nil
}

// Normalize clears times on closed days.
func (e *WeeklyScheduleEntry) Normalize() {
	if e.IsClosed {
		e.OpenTime = nil
		e.CloseTime = nil
	}
}

// Validate enforces the weekday range and the open/close invariant.
func (e WeeklyScheduleEntry) Validate() error {
	if e.Weekday < 0 || e.Weekday > 6 {
		return apperrors.Validation("day_of_week must be between 0 and 6, got %d", e.Weekday)
	}
	if e.IsClosed {
		return nil
	}
	day := DayNames[e.Weekday]
	if e.OpenTime == nil || e.CloseTime == nil {
		return apperrors.Validation("%s: open and close times are required when open", day)
	}
	if !e.OpenTime.Valid() || !e.CloseTime.Valid() {
		return apperrors.Validation("%s: times must fall within a single day", day)
	}
	if *e.CloseTime <= *e.OpenTime {
		return apperrors.Validation("%s: close time must be after open time", day)
	}
	return nil
}

// ExceptionKind is the type of a date-specific override.
type ExceptionKind string

const (
	ExceptionClosed   ExceptionKind = "closed"
	ExceptionModified ExceptionKind = "modified"
)

// Valid reports whether k is a known kind.
func (k ExceptionKind) Valid() bool {
	return k == ExceptionClosed || k == ExceptionModified
}

// ScheduleException overrides the weekly schedule for a single calendar date.
type ScheduleException struct {
	ID        string        `json:"id"`
	Date      Date          `json:"date"`
	Kind      ExceptionKind `json:"type"`
	OpenTime  *TimeOfDay    `json:"open_time"`
	CloseTime *TimeOfDay    `json:"close_time"`
	Label     string        `json:"label"`
	Notes     *string       `json:"notes"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Normalize trims text fields and drops times that do not apply to the kind.
func (e *ScheduleException) Normalize() {
	e.Label = strings.TrimSpace(e.Label)
	if e.Notes != nil {
		trimmed := strings.TrimSpace(*e.Notes)
		if trimmed == "" {
			e.Notes = nil
		} else {
			e.Notes = &trimmed
		}
	}
	if e.Kind == ExceptionClosed {
		e.OpenTime = nil
		e.CloseTime = nil
	}
}

// Validate mirrors the admin form rules: date and label required, modified
// hours need both times with close after open.
func (e ScheduleException) Validate() error {
	if e.Date.IsZero() {
		return apperrors.Validation("date is required")
	}
	if strings.TrimSpace(e.Label) == "" {
		return apperrors.Validation("label is required")
	}
	if !e.Kind.Valid() {
		return apperrors.Validation("type must be %q or %q", ExceptionClosed, ExceptionModified)
	}
	if e.Kind == ExceptionModified {
		if e.OpenTime == nil || e.CloseTime == nil {
			return apperrors.Validation("open and close times are required for modified hours")
		}
		if *e.CloseTime <= *e.OpenTime {
			return apperrors.Validation("close time must be after open time")
		}
	}
	return nil
}

// HoursStatus is the resolved state of the shop at a given instant.
type HoursStatus struct {
	Open       bool               `json:"open"`
	Date       Date               `json:"date"`
	Day        string             `json:"day"`
	TodayHours string             `json:"today_hours"`
	Exception  *ScheduleException `json:"exception,omitempty"`
}

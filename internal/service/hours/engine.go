package hours

import (
	"fmt"
	"time"

	"github.com/gagesampsonn/barbershop/internal/domain/models"
)

const closedLabel = "Closed"

// DefaultWeeklySchedule is served whenever the persisted schedule is missing:
// Sunday closed, Saturday 07:00-12:00, every other day 09:00-17:00.
func DefaultWeeklySchedule() []models.WeeklyScheduleEntry {
	entries := make([]models.WeeklyScheduleEntry, 7)
	for day := range entries {
		entries[day] = defaultEntry(day)
	}
	return entries
}

func defaultEntry(day int) models.WeeklyScheduleEntry {
	entry := models.WeeklyScheduleEntry{
		ID:      fmt.Sprintf("default-%d", day),
		Weekday: day,
	}
	switch day {
	case int(time.Sunday):
		entry.IsClosed = true
	case int(time.Saturday):
		entry.OpenTime = timePtr("07:00:00")
		entry.CloseTime = timePtr("12:00:00")
	default:
		entry.OpenTime = timePtr("09:00:00")
		entry.CloseTime = timePtr("17:00:00")
	}
	return entry
}

func timePtr(value string) *models.TimeOfDay {
	t := models.MustTimeOfDay(value)
	return &t
}

// clockIn splits now into the business zone's calendar date, weekday and time of day.
func clockIn(now time.Time, loc *time.Location) (models.Date, time.Weekday, models.TimeOfDay) {
	local := now.In(loc)
	tod := models.TimeOfDay(local.Hour()*3600 + local.Minute()*60 + local.Second())
	return models.DateOf(local), local.Weekday(), tod
}

// IsOpenNow resolves whether the shop is open at now. A same-day exception
// overrides the weekly schedule entirely; ranges are [open, close).
func IsOpenNow(schedule []models.WeeklyScheduleEntry, exceptions []models.ScheduleException, now time.Time, loc *time.Location) bool {
	today, weekday, tod := clockIn(now, loc)

	if exception, ok := exceptionOn(exceptions, today); ok {
		if exception.Kind != models.ExceptionModified {
			return false
		}
		return within(exception.OpenTime, exception.CloseTime, tod)
	}

	entry, ok := entryFor(schedule, int(weekday))
	if !ok || !entry.HasHours() {
		return false
	}
	return within(entry.OpenTime, entry.CloseTime, tod)
}

func within(openAt, closeAt *models.TimeOfDay, t models.TimeOfDay) bool {
	if openAt == nil || closeAt == nil {
		return false
	}
	return *openAt <= t && t < *closeAt
}

func exceptionOn(exceptions []models.ScheduleException, date models.Date) (models.ScheduleException, bool) {
	for _, e := range exceptions {
		if e.Date.Equal(date) {
			return e, true
		}
	}
	return models.ScheduleException{}, false
}

func entryFor(schedule []models.WeeklyScheduleEntry, weekday int) (models.WeeklyScheduleEntry, bool) {
	for _, e := range schedule {
		if e.Weekday == weekday {
			return e, true
		}
	}
	return models.WeeklyScheduleEntry{}, false
}

// FormatScheduleLine renders "Closed" or "9:00 AM – 5:00 PM".
func FormatScheduleLine(entry models.WeeklyScheduleEntry) string {
	if !entry.HasHours() {
		return closedLabel
	}
	return formatRange(*entry.OpenTime, *entry.CloseTime)
}

// FormatExceptionLine renders an exception the same way as a weekly line.
func FormatExceptionLine(exception models.ScheduleException) string {
	if exception.Kind != models.ExceptionModified || exception.OpenTime == nil || exception.CloseTime == nil {
		return closedLabel
	}
	return formatRange(*exception.OpenTime, *exception.CloseTime)
}

func formatRange(openAt, closeAt models.TimeOfDay) string {
	return openAt.Format12h() + " – " + closeAt.Format12h()
}

// completeSchedule orders entries by weekday and fills missing days from the defaults.
func completeSchedule(entries []models.WeeklyScheduleEntry) []models.WeeklyScheduleEntry {
	out := DefaultWeeklySchedule()
	for _, e := range entries {
		if e.Weekday >= 0 && e.Weekday <= 6 {
			out[e.Weekday] = e
		}
	}
	return out
}

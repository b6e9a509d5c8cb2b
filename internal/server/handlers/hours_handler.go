package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gagesampsonn/barbershop/internal/domain/apperrors"
	"github.com/gagesampsonn/barbershop/internal/domain/models"
	"github.com/gagesampsonn/barbershop/internal/service/hours"
)

// HoursService is the schedule surface used by the HTTP layer.
type HoursService interface {
	Today() models.Date
	WeeklySchedule(ctx context.Context) []models.WeeklyScheduleEntry
	UpcomingExceptions(ctx context.Context) []models.ScheduleException
	Status(ctx context.Context) models.HoursStatus
	StatusAt(schedule []models.WeeklyScheduleEntry, exceptions []models.ScheduleException, now time.Time) models.HoursStatus
	SaveWeeklySchedule(ctx context.Context, entries []models.WeeklyScheduleEntry) ([]models.WeeklyScheduleEntry, error)
	ListExceptions(ctx context.Context, from, to models.Date) ([]models.ScheduleException, error)
	CreateException(ctx context.Context, exception models.ScheduleException) (models.ScheduleException, error)
	UpdateException(ctx context.Context, id string, exception models.ScheduleException) (models.ScheduleException, error)
	DeleteException(ctx context.Context, id string) error
}

// adminExceptionWindowDays is the default span of the admin exception list.
const adminExceptionWindowDays = 365

// HoursHandler serves the public schedule and its admin editor.
type HoursHandler struct {
	svc    HoursService
	logger *zap.Logger
	now    func() time.Time
}

// NewHoursHandler constructs the HTTP handler adapter.
func NewHoursHandler(svc HoursService, logger *zap.Logger) *HoursHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HoursHandler{svc: svc, logger: logger, now: time.Now}
}

type weeklyView struct {
	Weekday   int               `json:"weekday"`
	Day       string            `json:"day"`
	IsClosed  bool              `json:"is_closed"`
	OpenTime  *models.TimeOfDay `json:"open_time"`
	CloseTime *models.TimeOfDay `json:"close_time"`
	Display   string            `json:"display"`
}

type exceptionView struct {
	models.ScheduleException
	Display string `json:"display"`
}

func toWeeklyViews(entries []models.WeeklyScheduleEntry) []weeklyView {
	views := make([]weeklyView, 0, len(entries))
	for _, e := range entries {
		views = append(views, weeklyView{
			Weekday:   e.Weekday,
			Day:       models.DayNames[e.Weekday],
			IsClosed:  !e.HasHours(),
			OpenTime:  e.OpenTime,
			CloseTime: e.CloseTime,
			Display:   hours.FormatScheduleLine(e),
		})
	}
	return views
}

func toExceptionViews(exceptions []models.ScheduleException) []exceptionView {
	views := make([]exceptionView, 0, len(exceptions))
	for _, e := range exceptions {
		views = append(views, exceptionView{ScheduleException: e, Display: hours.FormatExceptionLine(e)})
	}
	return views
}

// PublicHours returns the weekly schedule, upcoming exceptions and whether the shop is open now.
func (h *HoursHandler) PublicHours(c *gin.Context) {
	ctx := c.Request.Context()
	schedule := h.svc.WeeklySchedule(ctx)
	exceptions := h.svc.UpcomingExceptions(ctx)
	status := h.svc.StatusAt(schedule, exceptions, h.now())

	c.JSON(http.StatusOK, gin.H{
		"weekly":     toWeeklyViews(schedule),
		"exceptions": toExceptionViews(exceptions),
		"open":       status.Open,
	})
}

// Status returns the resolved open/closed state.
func (h *HoursHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Status(c.Request.Context()))
}

// AdminWeekly returns the raw weekly entries.
func (h *HoursHandler) AdminWeekly(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entries": h.svc.WeeklySchedule(c.Request.Context())})
}

type weeklyEntryRequest struct {
	Weekday   *int    `json:"day_of_week" binding:"required,weekday"`
	IsClosed  bool    `json:"is_closed"`
	OpenTime  *string `json:"open_time" binding:"omitempty,timeofday"`
	CloseTime *string `json:"close_time" binding:"omitempty,timeofday"`
}

type weeklyScheduleRequest struct {
	Entries []weeklyEntryRequest `json:"entries" binding:"required,len=7,dive"`
}

func (r weeklyScheduleRequest) toModels() ([]models.WeeklyScheduleEntry, error) {
	entries := make([]models.WeeklyScheduleEntry, 0, len(r.Entries))
	for _, req := range r.Entries {
		openAt, err := models.TimeOfDayPtr(req.OpenTime)
		if err != nil {
			return nil, apperrors.Validation("open_time: %v", err)
		}
		closeAt, err := models.TimeOfDayPtr(req.CloseTime)
		if err != nil {
			return nil, apperrors.Validation("close_time: %v", err)
		}
		entries = append(entries, models.WeeklyScheduleEntry{
			Weekday:   *req.Weekday,
			IsClosed:  req.IsClosed,
			OpenTime:  openAt,
			CloseTime: closeAt,
		})
	}
	return entries, nil
}

// SaveWeekly replaces all seven weekly entries.
func (h *HoursHandler) SaveWeekly(c *gin.Context) {
	var req weeklyScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindingError(err))
		return
	}
	entries, err := req.toModels()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	saved, err := h.svc.SaveWeeklySchedule(c.Request.Context(), entries)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": saved})
}

// ListExceptions returns exceptions in [from, to]; the default window starts today.
func (h *HoursHandler) ListExceptions(c *gin.Context) {
	from := h.svc.Today()
	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		parsed, err := models.ParseDate(raw)
		if err != nil {
			respondError(c, h.logger, apperrors.Validation("from must be a YYYY-MM-DD date"))
			return
		}
		from = parsed
	}
	to := from.AddDays(adminExceptionWindowDays)
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		parsed, err := models.ParseDate(raw)
		if err != nil {
			respondError(c, h.logger, apperrors.Validation("to must be a YYYY-MM-DD date"))
			return
		}
		to = parsed
	}

	exceptions, err := h.svc.ListExceptions(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exceptions": toExceptionViews(exceptions)})
}

type exceptionRequest struct {
	Date      string  `json:"date" binding:"required,datetime=2006-01-02"`
	Type      string  `json:"type" binding:"required,oneof=closed modified"`
	OpenTime  *string `json:"open_time" binding:"omitempty,timeofday"`
	CloseTime *string `json:"close_time" binding:"omitempty,timeofday"`
	Label     string  `json:"label" binding:"required,max=120"`
	Notes     *string `json:"notes" binding:"omitempty,max=500"`
}

func (r exceptionRequest) toModel() (models.ScheduleException, error) {
	date, err := models.ParseDate(r.Date)
	if err != nil {
		return models.ScheduleException{}, apperrors.Validation("date must be a YYYY-MM-DD date")
	}
	openAt, err := models.TimeOfDayPtr(r.OpenTime)
	if err != nil {
		return models.ScheduleException{}, apperrors.Validation("open_time: %v", err)
	}
	closeAt, err := models.TimeOfDayPtr(r.CloseTime)
	if err != nil {
		return models.ScheduleException{}, apperrors.Validation("close_time: %v", err)
	}
	return models.ScheduleException{
		Date:      date,
		Kind:      models.ExceptionKind(r.Type),
		OpenTime:  openAt,
		CloseTime: closeAt,
		Label:     r.Label,
		Notes:     r.Notes,
	}, nil
}

func (h *HoursHandler) bindException(c *gin.Context) (models.ScheduleException, bool) {
	var req exceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindingError(err))
		return models.ScheduleException{}, false
	}
	exception, err := req.toModel()
	if err != nil {
		respondError(c, h.logger, err)
		return models.ScheduleException{}, false
	}
	return exception, true
}

// CreateException adds a date override.
func (h *HoursHandler) CreateException(c *gin.Context) {
	exception, ok := h.bindException(c)
	if !ok {
		return
	}
	created, err := h.svc.CreateException(c.Request.Context(), exception)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, exceptionView{ScheduleException: created, Display: hours.FormatExceptionLine(created)})
}

// UpdateException replaces a date override.
func (h *HoursHandler) UpdateException(c *gin.Context) {
	exception, ok := h.bindException(c)
	if !ok {
		return
	}
	updated, err := h.svc.UpdateException(c.Request.Context(), c.Param("id"), exception)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, exceptionView{ScheduleException: updated, Display: hours.FormatExceptionLine(updated)})
}

// DeleteException removes a date override.
func (h *HoursHandler) DeleteException(c *gin.Context) {
	if err := h.svc.DeleteException(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

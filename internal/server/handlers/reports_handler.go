package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gagesampsonn/barbershop/internal/config"
	"github.com/gagesampsonn/barbershop/internal/domain/apperrors"
	"github.com/gagesampsonn/barbershop/internal/domain/models"
	"github.com/gagesampsonn/barbershop/internal/export"
	"github.com/gagesampsonn/barbershop/internal/service/reporting"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxReportDays   = 366
	maxReportLimit  = 100
)

// ReportService is the sales reporting surface used by the HTTP layer.
type ReportService interface {
	Configured() bool
	Today() models.Date
	SalesSummary(ctx context.Context, start, end models.Date) (models.DailySalesSummary, error)
	DailyBreakdown(ctx context.Context, days int) ([]models.DailySalesSummary, error)
	TopBusiestDays(ctx context.Context, windowDays, limit int, rankBy models.RankKey) ([]models.DailySalesSummary, error)
	MonthlyCalendar(ctx context.Context, year, monthIndex int) (models.MonthlyCalendar, error)
	TopCustomers(ctx context.Context, lookbackDays, limit int) ([]models.TopCustomer, error)
	HourlyBreakdown(ctx context.Context, day models.Date) ([]models.HourlyBucket, error)
	PaymentSummary(ctx context.Context) (models.PaymentSummary, error)
}

// SummaryNotifier sends a summary to the owner.
type SummaryNotifier interface {
	Enabled() bool
	SendDaily(ctx context.Context, heading string, summary models.DailySalesSummary) error
}

// ReportsHandler serves the admin sales dashboard.
type ReportsHandler struct {
	svc          ReportService
	notifier     SummaryNotifier
	logger       *zap.Logger
	lookbackDays int
	topLimit     int
}

// NewReportsHandler constructs the HTTP handler adapter. notifier may be nil.
// cfg supplies the default lookback and list size for ranked reports.
func NewReportsHandler(svc ReportService, notifier SummaryNotifier, cfg config.ReportingConfig, logger *zap.Logger) *ReportsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &ReportsHandler{
		svc:          svc,
		notifier:     notifier,
		logger:       logger,
		lookbackDays: reporting.DefaultWindowDays,
		topLimit:     reporting.DefaultTopLimit,
	}
	if cfg.LookbackDays > 0 && cfg.LookbackDays <= maxReportDays {
		h.lookbackDays = cfg.LookbackDays
	}
	if cfg.TopCustomerMax > 0 && cfg.TopCustomerMax <= maxReportLimit {
		h.topLimit = cfg.TopCustomerMax
	}
	return h
}

// RequireSquare short-circuits every report when no payments provider is configured.
func (h *ReportsHandler) RequireSquare() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.svc.Configured() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Square is not configured"})
			return
		}
		c.Next()
	}
}

// Summary returns the dashboard roll-up.
func (h *ReportsHandler) Summary(c *gin.Context) {
	summary, err := h.svc.PaymentSummary(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Sales summarizes an arbitrary date range; both bounds default to today.
func (h *ReportsHandler) Sales(c *gin.Context) {
	today := h.svc.Today()
	start, err := dateQuery(c, "start", today)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	end, err := dateQuery(c, "end", today)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	summary, err := h.svc.SalesSummary(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Daily returns one summary per day, most recent first.
func (h *ReportsHandler) Daily(c *gin.Context) {
	days, err := intQuery(c, "days", 7, 1, maxReportDays)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	breakdown, err := h.svc.DailyBreakdown(c.Request.Context(), days)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": breakdown})
}

// Busiest ranks recent days by transactions or gross sales.
func (h *ReportsHandler) Busiest(c *gin.Context) {
	days, err := intQuery(c, "days", h.lookbackDays, 1, maxReportDays)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	limit, err := intQuery(c, "limit", h.topLimit, 1, maxReportLimit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	rankBy := models.RankKey(c.DefaultQuery("rank", string(models.RankByTransactions)))

	top, err := h.svc.TopBusiestDays(c.Request.Context(), days, limit, rankBy)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": top})
}

// Customers ranks customers by spend; named=true drops unresolved identities.
func (h *ReportsHandler) Customers(c *gin.Context) {
	days, err := intQuery(c, "days", h.lookbackDays, 1, maxReportDays)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	limit, err := intQuery(c, "limit", h.topLimit, 1, maxReportLimit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	named, err := boolQuery(c, "named")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	customers, err := h.svc.TopCustomers(c.Request.Context(), days, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if named {
		customers = reporting.NamedOnly(customers)
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

// calendarMonth reads year and zero-based month, defaulting to the current month.
func (h *ReportsHandler) calendarMonth(c *gin.Context) (int, int, error) {
	today := h.svc.Today()
	year, err := intQuery(c, "year", today.Year(), 2000, 9999)
	if err != nil {
		return 0, 0, err
	}
	month, err := intQuery(c, "month", int(today.Month())-1, 0, 11)
	if err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

// Calendar returns a month of per-day figures together with the busiest days
// of the rolling lookback window, which do not depend on the month viewed.
func (h *ReportsHandler) Calendar(c *gin.Context) {
	year, month, err := h.calendarMonth(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var (
		cal models.MonthlyCalendar
		top []models.DailySalesSummary
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() (err error) {
		cal, err = h.svc.MonthlyCalendar(ctx, year, month)
		return err
	})
	g.Go(func() (err error) {
		top, err = h.svc.TopBusiestDays(ctx, h.lookbackDays, reporting.DefaultTopLimit, models.RankByTransactions)
		return err
	})
	if err := g.Wait(); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calendar": cal, "topDays": top})
}

// CalendarExport streams the month as an xlsx workbook. Its "Top Days" sheet
// ranks the days of that month only.
func (h *ReportsHandler) CalendarExport(c *gin.Context) {
	year, month, err := h.calendarMonth(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	cal, err := h.svc.MonthlyCalendar(c.Request.Context(), year, month)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	top := reporting.RankDays(reporting.CalendarDays(cal), reporting.DefaultTopLimit, models.RankByTransactions)

	var buf bytes.Buffer
	if err := export.WriteCalendar(&buf, cal, top); err != nil {
		respondError(c, h.logger, fmt.Errorf("export calendar: %w", err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.CalendarFilename(cal)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Hourly returns 24 buckets for one day (default today).
func (h *ReportsHandler) Hourly(c *gin.Context) {
	day, err := dateQuery(c, "date", h.svc.Today())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	buckets, err := h.svc.HourlyBreakdown(c.Request.Context(), day)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": day, "hours": buckets})
}

// Notify sends today's figures to the owner.
func (h *ReportsHandler) Notify(c *gin.Context) {
	if h.notifier == nil || !h.notifier.Enabled() {
		respondError(c, h.logger, apperrors.ErrNotConfigured)
		return
	}
	ctx := c.Request.Context()
	today := h.svc.Today()
	summary, err := h.svc.SalesSummary(ctx, today, today)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if err := h.notifier.SendDaily(ctx, "Today's sales", summary); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "sent", "summary": summary})
}

func dateQuery(c *gin.Context, name string, fallback models.Date) (models.Date, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, nil
	}
	date, err := models.ParseDate(raw)
	if err != nil {
		return models.Date{}, apperrors.Validation("%s must be a YYYY-MM-DD date", name)
	}
	return date, nil
}

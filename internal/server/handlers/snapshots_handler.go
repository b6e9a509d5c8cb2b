package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gagesampsonn/barbershop/internal/domain/apperrors"
	"github.com/gagesampsonn/barbershop/internal/domain/models"
)

const defaultSnapshotDays = 30

// SnapshotArchive reads the nightly sales snapshots.
type SnapshotArchive interface {
	ListSnapshots(ctx context.Context, from, to string) ([]models.SalesSnapshot, error)
}

// SnapshotsHandler serves archived nightly snapshots.
type SnapshotsHandler struct {
	archive SnapshotArchive
	loc     *time.Location
	logger  *zap.Logger
	now     func() time.Time
}

// NewSnapshotsHandler builds the handler. archive is nil when no archive is configured.
func NewSnapshotsHandler(archive SnapshotArchive, loc *time.Location, logger *zap.Logger) *SnapshotsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &SnapshotsHandler{archive: archive, loc: loc, logger: logger, now: time.Now}
}

// List returns snapshots between from and to inclusive. to defaults to yesterday
// and from to 30 days before it.
func (h *SnapshotsHandler) List(c *gin.Context) {
	if h.archive == nil {
		respondError(c, h.logger, apperrors.ErrNotConfigured)
		return
	}

	yesterday := models.DateOf(h.now().In(h.loc)).AddDays(-1)
	to, err := dateQuery(c, "to", yesterday)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	from, err := dateQuery(c, "from", to.AddDays(-(defaultSnapshotDays - 1)))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if to.Before(from) {
		respondError(c, h.logger, apperrors.Validation("to must not be before from"))
		return
	}
	if from.AddDays(maxReportDays).Before(to) {
		respondError(c, h.logger, apperrors.Validation("range must not exceed %d days", maxReportDays))
		return
	}

	snapshots, err := h.archive.ListSnapshots(c.Request.Context(), from.String(), to.String())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "snapshots": snapshots})
}

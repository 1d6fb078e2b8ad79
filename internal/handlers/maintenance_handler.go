package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// defaultStaleLessonAge is used when the request does not specify an age
const defaultStaleLessonAge = 30 * 24 * time.Hour

// LessonPurger is the interface that wraps maintenance operations on lessons
type LessonPurger interface {
	// PurgeStale removes abandoned lessons older than the given age together
	// with their ledger entries and cursors. Returns the number of lessons removed.
	PurgeStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// MaintenanceHandler handles internal maintenance endpoints guarded by API key
type MaintenanceHandler struct {
	BaseHandler
	purger LessonPurger
}

// NewMaintenanceHandler creates a new maintenance handler
func NewMaintenanceHandler(purger LessonPurger, logger *zap.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{
		purger:      purger,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all maintenance handler routes
func (h *MaintenanceHandler) RegisterRoutes(r chi.Router) {
	r.Delete("/internal/lessons/stale", h.PurgeStaleLessons)
}

// PurgeStaleLessons handles DELETE /internal/lessons/stale
// @Summary Purge stale lessons
// @Description Delete abandoned lessons older than the given number of days together with their answers and cursors
// @Tags internal
// @Produce json
// @Param olderThanDays query int false "Minimum lesson age in days (default: 30)"
// @Success 200 {object} map[string]int64 "Number of deleted lessons"
// @Failure 401 {object} map[string]string "Invalid API key"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /internal/lessons/stale [delete]
func (h *MaintenanceHandler) PurgeStaleLessons(w http.ResponseWriter, r *http.Request) {
	olderThan := defaultStaleLessonAge
	if daysStr := r.URL.Query().Get("olderThanDays"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil || days < 1 {
			h.respondError(w, http.StatusBadRequest, "invalid olderThanDays")
			return
		}
		olderThan = time.Duration(days) * 24 * time.Hour
	}

	deleted, err := h.purger.PurgeStale(r.Context(), olderThan)
	if err != nil {
		h.logger.Error("failed to purge stale lessons", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

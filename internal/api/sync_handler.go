package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/service"
)

// SyncHandler serves the v2 sync endpoints: clients push completed workouts
// and pull their analytics summary.
type SyncHandler struct {
	analytics service.AnalyticsService
	now       func() time.Time
}

func NewSyncHandler(analytics service.AnalyticsService) *SyncHandler {
	return &SyncHandler{analytics: analytics, now: time.Now}
}

type LogWorkoutRequest struct {
	WorkoutID       string    `json:"workoutId" binding:"required"`
	DurationMinutes int       `json:"durationMinutes" binding:"gte=0"`
	CompletedAt     time.Time `json:"completedAt"`
}

// LogWorkout godoc
// @Summary Record a completed workout
// @Tags Sync
// @Security BearerAuth
// @Param log body LogWorkoutRequest true "Completion, completedAt defaults to now"
// @Success 201 {object} domain.WorkoutLog
// @Router /sync/logs [post]
func (h *SyncHandler) LogWorkout(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req LogWorkoutRequest
	if !bindJSON(c, &req) {
		return
	}
	completedAt := req.CompletedAt
	if completedAt.IsZero() {
		completedAt = h.now()
	}
	entry, err := h.analytics.LogWorkout(c.Request.Context(), userID, req.WorkoutID, req.DurationMinutes, completedAt)
	if err != nil {
		handleError(c, err, "Failed to log workout")
		return
	}
	respond(c, http.StatusCreated, entry)
}

// ListLogs godoc
// @Summary List the caller's workout history
// @Tags Sync
// @Security BearerAuth
// @Success 200 {array} domain.WorkoutLog
// @Router /sync/logs [get]
func (h *SyncHandler) ListLogs(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	logs, err := h.analytics.ListLogs(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err, "Failed to list logs")
		return
	}
	respond(c, http.StatusOK, emptyIfNil(logs))
}

// Summary godoc
// @Summary Get workout analytics
// @Tags Sync
// @Security BearerAuth
// @Success 200 {object} service.Summary
// @Router /sync/analytics [get]
func (h *SyncHandler) Summary(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	summary, err := h.analytics.Summary(c.Request.Context(), userID, h.now())
	if err != nil {
		handleError(c, err, "Failed to compute analytics")
		return
	}
	respond(c, http.StatusOK, summary)
}

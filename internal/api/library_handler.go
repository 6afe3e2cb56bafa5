package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/service"
)

// maxImportBytes bounds TOML program uploads.
const maxImportBytes = 1 << 20

type LibraryHandler struct {
	library service.LibraryService
}

func NewLibraryHandler(library service.LibraryService) *LibraryHandler {
	return &LibraryHandler{library: library}
}

type LoadWorkoutRequest struct {
	WeekID string `json:"weekId" binding:"required"`
	Day    int    `json:"day" binding:"gte=0"`
}

type LoadWeekRequest struct {
	ProgramID string `json:"programId" binding:"required"`
}

// SaveWorkout godoc
// @Summary Save a workout to the library
// @Tags Library
// @Security BearerAuth
// @Param workout body service.SaveWorkoutRequest true "Existing workout id or a bare workout"
// @Success 201 {object} domain.Workout
// @Router /library/workouts [post]
func (h *LibraryHandler) SaveWorkout(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req service.SaveWorkoutRequest
	if !bindJSON(c, &req) {
		return
	}
	w, err := h.library.SaveWorkout(c.Request.Context(), userID, req)
	if err != nil {
		handleError(c, err, "Failed to save workout")
		return
	}
	respond(c, http.StatusCreated, w)
}

// ListWorkouts godoc
// @Summary List saved workouts
// @Tags Library
// @Security BearerAuth
// @Success 200 {array} domain.Workout
// @Router /library/workouts [get]
func (h *LibraryHandler) ListWorkouts(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	workouts, err := h.library.ListSavedWorkouts(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err, "Failed to list saved workouts")
		return
	}
	respond(c, http.StatusOK, emptyIfNil(workouts))
}

// UpdateWorkout godoc
// @Summary Patch a saved workout
// @Tags Library
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Param patch body domain.WorkoutPatch true "Fields to change"
// @Success 200 {object} domain.Workout
// @Router /library/workouts/{workoutId} [patch]
func (h *LibraryHandler) UpdateWorkout(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var patch domain.WorkoutPatch
	if !bindJSON(c, &patch) {
		return
	}
	w, err := h.library.UpdateSavedWorkout(c.Request.Context(), userID, c.Param("workoutId"), patch)
	if err != nil {
		handleError(c, err, "Failed to update saved workout")
		return
	}
	respond(c, http.StatusOK, w)
}

// RemoveWorkout godoc
// @Summary Remove a workout from the library
// @Tags Library
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 204
// @Router /library/workouts/{workoutId} [delete]
func (h *LibraryHandler) RemoveWorkout(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.library.RemoveSavedWorkout(c.Request.Context(), userID, c.Param("workoutId")); err != nil {
		handleError(c, err, "Failed to remove saved workout")
		return
	}
	c.Status(http.StatusNoContent)
}

// LoadWorkout godoc
// @Summary Copy a saved workout into a week
// @Tags Library
// @Security BearerAuth
// @Param workoutId path string true "Library workout ID"
// @Param target body LoadWorkoutRequest true "Target week and day"
// @Success 201 {object} domain.Workout
// @Router /library/workouts/{workoutId}/load [post]
func (h *LibraryHandler) LoadWorkout(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req LoadWorkoutRequest
	if !bindJSON(c, &req) {
		return
	}
	w, err := h.library.LoadWorkout(c.Request.Context(), userID, c.Param("workoutId"), req.WeekID, req.Day)
	if err != nil {
		handleError(c, err, "Failed to load workout")
		return
	}
	respond(c, http.StatusCreated, w)
}

// SaveWeek godoc
// @Summary Save a week to the library
// @Tags Library
// @Security BearerAuth
// @Param week body service.SaveWeekRequest true "Existing week id or bare workouts"
// @Success 201 {object} service.SavedWeek
// @Router /library/weeks [post]
func (h *LibraryHandler) SaveWeek(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req service.SaveWeekRequest
	if !bindJSON(c, &req) {
		return
	}
	week, err := h.library.SaveWeek(c.Request.Context(), userID, req)
	if err != nil {
		handleError(c, err, "Failed to save week")
		return
	}
	respond(c, http.StatusCreated, week)
}

// ListWeeks godoc
// @Summary List saved weeks
// @Tags Library
// @Security BearerAuth
// @Success 200 {array} service.SavedWeek
// @Router /library/weeks [get]
func (h *LibraryHandler) ListWeeks(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	weeks, err := h.library.ListSavedWeeks(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err, "Failed to list saved weeks")
		return
	}
	respond(c, http.StatusOK, emptyIfNil(weeks))
}

// RemoveWeek godoc
// @Summary Remove a week from the library
// @Tags Library
// @Security BearerAuth
// @Param weekId path string true "Week ID"
// @Success 204
// @Router /library/weeks/{weekId} [delete]
func (h *LibraryHandler) RemoveWeek(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.library.RemoveSavedWeek(c.Request.Context(), userID, c.Param("weekId")); err != nil {
		handleError(c, err, "Failed to remove saved week")
		return
	}
	c.Status(http.StatusNoContent)
}

// LoadWeek godoc
// @Summary Copy a saved week into a program
// @Tags Library
// @Security BearerAuth
// @Param weekId path string true "Library week ID"
// @Param target body LoadWeekRequest true "Target program"
// @Success 201 {object} domain.WorkoutWeek
// @Router /library/weeks/{weekId}/load [post]
func (h *LibraryHandler) LoadWeek(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req LoadWeekRequest
	if !bindJSON(c, &req) {
		return
	}
	week, err := h.library.LoadWeek(c.Request.Context(), userID, c.Param("weekId"), req.ProgramID)
	if err != nil {
		handleError(c, err, "Failed to load week")
		return
	}
	respond(c, http.StatusCreated, week)
}

// SaveProgram godoc
// @Summary Save a program to the library
// @Tags Library
// @Security BearerAuth
// @Param program body service.SaveProgramRequest true "Existing program id or a bare program"
// @Success 201 {object} domain.WorkoutProgram
// @Router /library/programs [post]
func (h *LibraryHandler) SaveProgram(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req service.SaveProgramRequest
	if !bindJSON(c, &req) {
		return
	}
	program, err := h.library.SaveProgram(c.Request.Context(), userID, req)
	if err != nil {
		handleError(c, err, "Failed to save program")
		return
	}
	respond(c, http.StatusCreated, program)
}

// ListPrograms godoc
// @Summary List saved programs
// @Tags Library
// @Security BearerAuth
// @Success 200 {array} domain.WorkoutProgram
// @Router /library/programs [get]
func (h *LibraryHandler) ListPrograms(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	programs, err := h.library.ListSavedPrograms(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err, "Failed to list saved programs")
		return
	}
	respond(c, http.StatusOK, emptyIfNil(programs))
}

// RemoveProgram godoc
// @Summary Remove a program from the library
// @Tags Library
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Success 204
// @Router /library/programs/{programId} [delete]
func (h *LibraryHandler) RemoveProgram(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.library.RemoveSavedProgram(c.Request.Context(), userID, c.Param("programId")); err != nil {
		handleError(c, err, "Failed to remove saved program")
		return
	}
	c.Status(http.StatusNoContent)
}

// CopyProgram godoc
// @Summary Deep copy a program
// @Tags Library
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Success 201 {object} domain.WorkoutProgram
// @Router /library/programs/{programId}/copy [post]
func (h *LibraryHandler) CopyProgram(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	program, err := h.library.CopyProgram(c.Request.Context(), userID, c.Param("programId"))
	if err != nil {
		handleError(c, err, "Failed to copy program")
		return
	}
	respond(c, http.StatusCreated, program)
}

// ImportProgram godoc
// @Summary Create a program from a TOML definition
// @Tags Library
// @Security BearerAuth
// @Accept plain
// @Success 201 {object} domain.WorkoutProgram
// @Router /library/import [post]
func (h *LibraryHandler) ImportProgram(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes+1))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Failed to read body")
		return
	}
	if len(data) > maxImportBytes {
		abortWithError(c, http.StatusRequestEntityTooLarge, "Program definition too large")
		return
	}
	program, err := h.library.ImportProgramTOML(c.Request.Context(), userID, data)
	if err != nil {
		handleError(c, err, "Failed to import program")
		return
	}
	respond(c, http.StatusCreated, program)
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/service"
)

// WorkoutHandler serves workouts and their exercises, sets and circuits.
type WorkoutHandler struct {
	workouts  service.WorkoutService
	exercises service.ExerciseService
	sets      service.SetService
	circuits  service.CircuitService
}

func NewWorkoutHandler(
	workouts service.WorkoutService,
	exercises service.ExerciseService,
	sets service.SetService,
	circuits service.CircuitService,
) *WorkoutHandler {
	return &WorkoutHandler{workouts: workouts, exercises: exercises, sets: sets, circuits: circuits}
}

type AddWorkoutRequest struct {
	Name string `json:"name"`
	Day  int    `json:"day" binding:"gte=0"`
}

type CircuitMemberRequest struct {
	ExerciseID string `json:"exerciseId" binding:"required"`
}

// AddWorkout godoc
// @Summary Add a workout to a week
// @Tags Workouts
// @Security BearerAuth
// @Param weekId path string true "Week ID"
// @Param workout body AddWorkoutRequest true "Name and day, 0 picks the next free day"
// @Success 201 {object} domain.Workout
// @Router /weeks/{weekId}/workouts [post]
func (h *WorkoutHandler) AddWorkout(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req AddWorkoutRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	w, err := h.workouts.AddWorkout(c.Request.Context(), userID, c.Param("weekId"), req.Name, req.Day)
	if err != nil {
		handleError(c, err, "Failed to add workout")
		return
	}
	respond(c, http.StatusCreated, w)
}

// AddWorkoutToProgram godoc
// @Summary Add a workout to the program's first week
// @Description A program without weeks gets "Week 1" first.
// @Tags Workouts
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Param workout body AddWorkoutRequest true "Name and day, 0 picks the next free day"
// @Success 201 {object} domain.Workout
// @Router /programs/{programId}/workouts [post]
func (h *WorkoutHandler) AddWorkoutToProgram(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req AddWorkoutRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	w, err := h.workouts.AddWorkoutToProgram(c.Request.Context(), userID, c.Param("programId"), req.Name, req.Day)
	if err != nil {
		handleError(c, err, "Failed to add workout")
		return
	}
	respond(c, http.StatusCreated, w)
}

// GetWorkout godoc
// @Summary Get a workout with exercises, sets and circuits
// @Tags Workouts
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 200 {object} domain.Workout
// @Router /workouts/{workoutId} [get]
func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	w, err := h.workouts.GetWorkout(c.Request.Context(), userID, c.Param("workoutId"))
	if err != nil {
		handleError(c, err, "Failed to load workout")
		return
	}
	respond(c, http.StatusOK, w)
}

// UpdateWorkout godoc
// @Summary Patch a workout
// @Tags Workouts
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Param patch body domain.WorkoutPatch true "Fields to change"
// @Success 200 {object} domain.Workout
// @Router /workouts/{workoutId} [patch]
func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var patch domain.WorkoutPatch
	if !bindJSON(c, &patch) {
		return
	}
	w, err := h.workouts.UpdateWorkout(c.Request.Context(), userID, c.Param("workoutId"), patch)
	if err != nil {
		handleError(c, err, "Failed to update workout")
		return
	}
	respond(c, http.StatusOK, w)
}

// DeleteWorkout godoc
// @Summary Delete a workout
// @Tags Workouts
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 204
// @Router /workouts/{workoutId} [delete]
func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.workouts.DeleteWorkout(c.Request.Context(), userID, c.Param("workoutId")); err != nil {
		handleError(c, err, "Failed to delete workout")
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdatePrice godoc
// @Summary Price a workout, publishing it under a slug
// @Tags Workouts
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Param price body PriceRequest true "Price"
// @Success 200 {object} domain.Workout
// @Router /workouts/{workoutId}/price [put]
func (h *WorkoutHandler) UpdatePrice(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req PriceRequest
	if !bindJSON(c, &req) {
		return
	}
	w, err := h.workouts.UpdateWorkoutPrice(c.Request.Context(), userID, c.Param("workoutId"), req.Price, req.Purchasable)
	if err != nil {
		handleError(c, err, "Failed to update price")
		return
	}
	respond(c, http.StatusOK, w)
}

// PurchaseWorkout godoc
// @Summary Record a workout purchase
// @Tags Workouts
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 201 {object} domain.Purchase
// @Failure 409 {object} gin.H "Already purchased"
// @Router /workouts/{workoutId}/purchase [post]
func (h *WorkoutHandler) PurchaseWorkout(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	purchase, err := h.workouts.PurchaseWorkout(c.Request.Context(), userID, c.Param("workoutId"))
	if err != nil {
		handleError(c, err, "Failed to record purchase")
		return
	}
	respond(c, http.StatusCreated, purchase)
}

// HasPurchased godoc
// @Summary Check whether the caller bought a workout
// @Tags Workouts
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Success 200 {object} PurchasedResponse
// @Router /workouts/{workoutId}/purchase [get]
func (h *WorkoutHandler) HasPurchased(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	purchased, err := h.workouts.HasUserPurchasedWorkout(c.Request.Context(), userID, c.Param("workoutId"))
	if err != nil {
		handleError(c, err, "Failed to check purchase")
		return
	}
	respond(c, http.StatusOK, PurchasedResponse{Purchased: purchased})
}

// GetPublished godoc
// @Summary Get a published workout by slug
// @Tags Workouts
// @Param slug path string true "Slug"
// @Success 200 {object} domain.Workout
// @Router /published/workouts/{slug} [get]
func (h *WorkoutHandler) GetPublished(c *gin.Context) {
	w, err := h.workouts.GetPublishedWorkout(c.Request.Context(), c.Param("slug"))
	if err != nil {
		handleError(c, err, "Failed to load workout")
		return
	}
	respond(c, http.StatusOK, w)
}

// --- exercises ---

// AddExercise godoc
// @Summary Append an exercise to a workout
// @Tags Exercises
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Param exercise body domain.NewExercise true "Exercise"
// @Success 201 {object} domain.Exercise
// @Router /workouts/{workoutId}/exercises [post]
func (h *WorkoutHandler) AddExercise(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req domain.NewExercise
	if !bindJSON(c, &req) {
		return
	}
	ex, err := h.exercises.AddExercise(c.Request.Context(), userID, c.Param("workoutId"), req)
	if err != nil {
		handleError(c, err, "Failed to add exercise")
		return
	}
	respond(c, http.StatusCreated, ex)
}

// ReorderExercises godoc
// @Summary Reorder the exercises of a workout
// @Tags Exercises
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Param order body ReorderRequest true "Exercise ids in the new order"
// @Success 204
// @Router /workouts/{workoutId}/exercises/order [put]
func (h *WorkoutHandler) ReorderExercises(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req ReorderRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.exercises.ReorderExercises(c.Request.Context(), userID, c.Param("workoutId"), req.IDs); err != nil {
		handleError(c, err, "Failed to reorder exercises")
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateExercise godoc
// @Summary Patch an exercise
// @Tags Exercises
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Param patch body domain.ExercisePatch true "Fields to change"
// @Success 200 {object} domain.Exercise
// @Router /exercises/{exerciseId} [patch]
func (h *WorkoutHandler) UpdateExercise(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var patch domain.ExercisePatch
	if !bindJSON(c, &patch) {
		return
	}
	ex, err := h.exercises.UpdateExercise(c.Request.Context(), userID, c.Param("exerciseId"), patch)
	if err != nil {
		handleError(c, err, "Failed to update exercise")
		return
	}
	respond(c, http.StatusOK, ex)
}

// DeleteExercise godoc
// @Summary Delete an exercise with its sets
// @Tags Exercises
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Success 204
// @Router /exercises/{exerciseId} [delete]
func (h *WorkoutHandler) DeleteExercise(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.exercises.DeleteExercise(c.Request.Context(), userID, c.Param("exerciseId")); err != nil {
		handleError(c, err, "Failed to delete exercise")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- sets ---

// AddSet godoc
// @Summary Append a set, empty fields copy the previous set
// @Tags Sets
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Param set body domain.SetFields false "Set values"
// @Success 201 {object} domain.Set
// @Router /exercises/{exerciseId}/sets [post]
func (h *WorkoutHandler) AddSet(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var fields domain.SetFields
	if c.Request.ContentLength > 0 && !bindJSON(c, &fields) {
		return
	}
	set, err := h.sets.AddSet(c.Request.Context(), userID, c.Param("exerciseId"), fields)
	if err != nil {
		handleError(c, err, "Failed to add set")
		return
	}
	respond(c, http.StatusCreated, set)
}

// UpdateSet godoc
// @Summary Patch a set
// @Tags Sets
// @Security BearerAuth
// @Param setId path string true "Set ID"
// @Param patch body domain.SetPatch true "Fields to change"
// @Success 200 {object} domain.Set
// @Router /sets/{setId} [patch]
func (h *WorkoutHandler) UpdateSet(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var patch domain.SetPatch
	if !bindJSON(c, &patch) {
		return
	}
	set, err := h.sets.UpdateSet(c.Request.Context(), userID, c.Param("setId"), patch)
	if err != nil {
		handleError(c, err, "Failed to update set")
		return
	}
	respond(c, http.StatusOK, set)
}

// DeleteSet godoc
// @Summary Delete a set
// @Tags Sets
// @Security BearerAuth
// @Param setId path string true "Set ID"
// @Success 204
// @Failure 400 {object} gin.H "Last set of an exercise"
// @Router /sets/{setId} [delete]
func (h *WorkoutHandler) DeleteSet(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.sets.DeleteSet(c.Request.Context(), userID, c.Param("setId")); err != nil {
		handleError(c, err, "Failed to delete set")
		return
	}
	c.Status(http.StatusNoContent)
}

// --- circuits ---

// CreateCircuit godoc
// @Summary Create a circuit, superset, EMOM, AMRAP or Tabata
// @Tags Circuits
// @Security BearerAuth
// @Param workoutId path string true "Workout ID"
// @Param circuit body domain.NewCircuit true "Circuit, empty fields use the kind's defaults"
// @Success 201 {object} domain.Circuit
// @Router /workouts/{workoutId}/circuits [post]
func (h *WorkoutHandler) CreateCircuit(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req domain.NewCircuit
	if !bindJSON(c, &req) {
		return
	}
	ctx, workoutID := c.Request.Context(), c.Param("workoutId")
	var (
		circuit *domain.Circuit
		err     error
	)
	switch req.Kind {
	case domain.KindSuperset:
		circuit, err = h.circuits.CreateSuperset(ctx, userID, workoutID, req.ExerciseIDs)
	case domain.KindEMOM:
		circuit, err = h.circuits.CreateEMOM(ctx, userID, workoutID, req.ExerciseIDs)
	case domain.KindAMRAP:
		circuit, err = h.circuits.CreateAMRAP(ctx, userID, workoutID, req.ExerciseIDs)
	case domain.KindTabata:
		circuit, err = h.circuits.CreateTabata(ctx, userID, workoutID, req.ExerciseIDs)
	default:
		circuit, err = h.circuits.CreateCircuit(ctx, userID, workoutID, req)
	}
	if err != nil {
		handleError(c, err, "Failed to create circuit")
		return
	}
	respond(c, http.StatusCreated, circuit)
}

// UpdateCircuit godoc
// @Summary Patch a circuit
// @Tags Circuits
// @Security BearerAuth
// @Param circuitId path string true "Circuit ID"
// @Param patch body domain.CircuitPatch true "Fields to change"
// @Success 200 {object} domain.Circuit
// @Router /circuits/{circuitId} [patch]
func (h *WorkoutHandler) UpdateCircuit(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var patch domain.CircuitPatch
	if !bindJSON(c, &patch) {
		return
	}
	circuit, err := h.circuits.UpdateCircuit(c.Request.Context(), userID, c.Param("circuitId"), patch)
	if err != nil {
		handleError(c, err, "Failed to update circuit")
		return
	}
	respond(c, http.StatusOK, circuit)
}

// DeleteCircuit godoc
// @Summary Delete a circuit, its members stay as standalone exercises
// @Tags Circuits
// @Security BearerAuth
// @Param circuitId path string true "Circuit ID"
// @Success 204
// @Router /circuits/{circuitId} [delete]
func (h *WorkoutHandler) DeleteCircuit(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.circuits.DeleteCircuit(c.Request.Context(), userID, c.Param("circuitId")); err != nil {
		handleError(c, err, "Failed to delete circuit")
		return
	}
	c.Status(http.StatusNoContent)
}

// AddCircuitMember godoc
// @Summary Add an exercise to a circuit
// @Tags Circuits
// @Security BearerAuth
// @Param circuitId path string true "Circuit ID"
// @Param member body CircuitMemberRequest true "Exercise"
// @Success 200 {object} domain.Circuit
// @Router /circuits/{circuitId}/exercises [post]
func (h *WorkoutHandler) AddCircuitMember(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req CircuitMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	circuit, err := h.circuits.AddExerciseToCircuit(c.Request.Context(), userID, c.Param("circuitId"), req.ExerciseID)
	if err != nil {
		handleError(c, err, "Failed to add exercise to circuit")
		return
	}
	respond(c, http.StatusOK, circuit)
}

// RemoveCircuitMember godoc
// @Summary Remove an exercise from a circuit
// @Tags Circuits
// @Security BearerAuth
// @Param circuitId path string true "Circuit ID"
// @Param exerciseId path string true "Exercise ID"
// @Success 200 {object} domain.Circuit
// @Router /circuits/{circuitId}/exercises/{exerciseId} [delete]
func (h *WorkoutHandler) RemoveCircuitMember(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	circuit, err := h.circuits.RemoveExerciseFromCircuit(c.Request.Context(), userID, c.Param("circuitId"), c.Param("exerciseId"))
	if err != nil {
		handleError(c, err, "Failed to remove exercise from circuit")
		return
	}
	respond(c, http.StatusOK, circuit)
}

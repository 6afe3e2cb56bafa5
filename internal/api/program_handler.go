package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/editor"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/service"
)

// ProgramHandler serves programs, their weeks and program purchases.
type ProgramHandler struct {
	programs service.ProgramService
	weeks    service.WeekService
	sessions *editor.Manager
}

func NewProgramHandler(programs service.ProgramService, weeks service.WeekService, sessions *editor.Manager) *ProgramHandler {
	return &ProgramHandler{programs: programs, weeks: weeks, sessions: sessions}
}

type CreateProgramRequest struct {
	Name string `json:"name" binding:"required"`
}

type PriceRequest struct {
	Price       float64 `json:"price" binding:"gte=0"`
	Purchasable bool    `json:"isPurchasable"`
}

type VisibilityRequest struct {
	IsPublic bool `json:"isPublic"`
}

type WeekRequest struct {
	Name string `json:"name"`
}

type ReorderRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

type PurchasedResponse struct {
	Purchased bool `json:"purchased"`
}

// CreateProgram godoc
// @Summary Create a program
// @Tags Programs
// @Security BearerAuth
// @Param program body CreateProgramRequest true "Program name"
// @Success 201 {object} domain.WorkoutProgram
// @Router /programs [post]
func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req CreateProgramRequest
	if !bindJSON(c, &req) {
		return
	}
	program, err := h.programs.CreateProgram(c.Request.Context(), userID, req.Name)
	if err != nil {
		handleError(c, err, "Failed to create program")
		return
	}
	respond(c, http.StatusCreated, program)
}

// ListPrograms godoc
// @Summary List the caller's programs
// @Tags Programs
// @Security BearerAuth
// @Success 200 {array} domain.WorkoutProgram
// @Router /programs [get]
func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	programs, err := h.programs.ListPrograms(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err, "Failed to list programs")
		return
	}
	respond(c, http.StatusOK, emptyIfNil(programs))
}

// ListPublicPrograms godoc
// @Summary List public programs
// @Tags Programs
// @Success 200 {array} domain.WorkoutProgram
// @Router /programs/public [get]
func (h *ProgramHandler) ListPublicPrograms(c *gin.Context) {
	programs, err := h.programs.ListPublicPrograms(c.Request.Context())
	if err != nil {
		handleError(c, err, "Failed to list programs")
		return
	}
	respond(c, http.StatusOK, emptyIfNil(programs))
}

// GetProgram godoc
// @Summary Get a program tree
// @Tags Programs
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Success 200 {object} domain.WorkoutProgram
// @Failure 403 {object} gin.H "Access denied"
// @Failure 404 {object} gin.H "Program not found"
// @Router /programs/{programId} [get]
func (h *ProgramHandler) GetProgram(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	program, err := h.programs.GetProgram(c.Request.Context(), userID, c.Param("programId"))
	if err != nil {
		handleError(c, err, "Failed to load program")
		return
	}
	respond(c, http.StatusOK, program)
}

// UpdateProgram godoc
// @Summary Patch a program
// @Tags Programs
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Param patch body domain.ProgramPatch true "Fields to change"
// @Success 200 {object} domain.WorkoutProgram
// @Router /programs/{programId} [patch]
func (h *ProgramHandler) UpdateProgram(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var patch domain.ProgramPatch
	if !bindJSON(c, &patch) {
		return
	}
	program, err := h.programs.UpdateProgram(c.Request.Context(), userID, c.Param("programId"), patch)
	if err != nil {
		handleError(c, err, "Failed to update program")
		return
	}
	respond(c, http.StatusOK, program)
}

// UpdateSettings godoc
// @Summary Replace the display settings of a program
// @Tags Programs
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Param settings body domain.DisplaySettings true "Settings"
// @Success 200 {object} domain.WorkoutProgram
// @Router /programs/{programId}/settings [put]
func (h *ProgramHandler) UpdateSettings(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var settings domain.DisplaySettings
	if !bindJSON(c, &settings) {
		return
	}
	program, err := h.programs.UpdateSettings(c.Request.Context(), userID, c.Param("programId"), settings)
	if err != nil {
		handleError(c, err, "Failed to update settings")
		return
	}
	respond(c, http.StatusOK, program)
}

// UpdatePrice godoc
// @Summary Set the price of a program
// @Tags Programs
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Param price body PriceRequest true "Price"
// @Success 200 {object} domain.WorkoutProgram
// @Router /programs/{programId}/price [put]
func (h *ProgramHandler) UpdatePrice(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req PriceRequest
	if !bindJSON(c, &req) {
		return
	}
	program, err := h.programs.UpdateProgramPrice(c.Request.Context(), userID, c.Param("programId"), req.Price, req.Purchasable)
	if err != nil {
		handleError(c, err, "Failed to update price")
		return
	}
	respond(c, http.StatusOK, program)
}

// SetVisibility godoc
// @Summary Make a program public or private
// @Tags Programs
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Param visibility body VisibilityRequest true "Visibility"
// @Success 200 {object} domain.WorkoutProgram
// @Router /programs/{programId}/visibility [put]
func (h *ProgramHandler) SetVisibility(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req VisibilityRequest
	if !bindJSON(c, &req) {
		return
	}
	program, err := h.programs.SetVisibility(c.Request.Context(), userID, c.Param("programId"), req.IsPublic)
	if err != nil {
		handleError(c, err, "Failed to update visibility")
		return
	}
	respond(c, http.StatusOK, program)
}

// DeleteProgram godoc
// @Summary Delete a program and everything below it
// @Tags Programs
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Success 204
// @Router /programs/{programId} [delete]
func (h *ProgramHandler) DeleteProgram(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	programID := c.Param("programId")
	if err := h.programs.DeleteProgram(c.Request.Context(), userID, programID); err != nil {
		handleError(c, err, "Failed to delete program")
		return
	}
	h.sessions.CloseProgram(programID)
	c.Status(http.StatusNoContent)
}

// PurchaseProgram godoc
// @Summary Record a program purchase
// @Tags Programs
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Success 201 {object} domain.Purchase
// @Failure 409 {object} gin.H "Already purchased"
// @Router /programs/{programId}/purchase [post]
func (h *ProgramHandler) PurchaseProgram(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	purchase, err := h.programs.PurchaseProgram(c.Request.Context(), userID, c.Param("programId"))
	if err != nil {
		handleError(c, err, "Failed to record purchase")
		return
	}
	respond(c, http.StatusCreated, purchase)
}

// HasPurchased godoc
// @Summary Check whether the caller bought a program
// @Tags Programs
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Success 200 {object} PurchasedResponse
// @Router /programs/{programId}/purchase [get]
func (h *ProgramHandler) HasPurchased(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	purchased, err := h.programs.HasUserPurchasedProgram(c.Request.Context(), userID, c.Param("programId"))
	if err != nil {
		handleError(c, err, "Failed to check purchase")
		return
	}
	respond(c, http.StatusOK, PurchasedResponse{Purchased: purchased})
}

// --- weeks ---

// AddWeek godoc
// @Summary Append a week to a program
// @Tags Weeks
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Param week body WeekRequest false "Week name"
// @Success 201 {object} domain.WorkoutWeek
// @Router /programs/{programId}/weeks [post]
func (h *ProgramHandler) AddWeek(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	// the body is optional, an unnamed week gets "Week N"
	var req WeekRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	week, err := h.weeks.AddWeek(c.Request.Context(), userID, c.Param("programId"), req.Name)
	if err != nil {
		handleError(c, err, "Failed to add week")
		return
	}
	respond(c, http.StatusCreated, week)
}

// ReorderWeeks godoc
// @Summary Reorder the weeks of a program
// @Tags Weeks
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Param order body ReorderRequest true "Week ids in the new order"
// @Success 204
// @Router /programs/{programId}/weeks/order [put]
func (h *ProgramHandler) ReorderWeeks(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req ReorderRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.weeks.ReorderWeeks(c.Request.Context(), userID, c.Param("programId"), req.IDs); err != nil {
		handleError(c, err, "Failed to reorder weeks")
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateWeek godoc
// @Summary Patch a week
// @Tags Weeks
// @Security BearerAuth
// @Param weekId path string true "Week ID"
// @Param patch body domain.WeekPatch true "Fields to change"
// @Success 200 {object} domain.WorkoutWeek
// @Router /weeks/{weekId} [patch]
func (h *ProgramHandler) UpdateWeek(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var patch domain.WeekPatch
	if !bindJSON(c, &patch) {
		return
	}
	week, err := h.weeks.UpdateWeek(c.Request.Context(), userID, c.Param("weekId"), patch)
	if err != nil {
		handleError(c, err, "Failed to update week")
		return
	}
	respond(c, http.StatusOK, week)
}

// DeleteWeek godoc
// @Summary Delete a week and its workouts
// @Tags Weeks
// @Security BearerAuth
// @Param weekId path string true "Week ID"
// @Success 204
// @Router /weeks/{weekId} [delete]
func (h *ProgramHandler) DeleteWeek(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.weeks.DeleteWeek(c.Request.Context(), userID, c.Param("weekId")); err != nil {
		handleError(c, err, "Failed to delete week")
		return
	}
	c.Status(http.StatusNoContent)
}

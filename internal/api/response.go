package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/editor"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/service"
)

// respond writes a success envelope.
func respond(c *gin.Context, code int, data any) {
	c.JSON(code, gin.H{"data": data})
}

// abortWithError writes an error envelope and aborts the request.
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// errorStatuses maps service errors whose message is safe to show.
var errorStatuses = []struct {
	err  error
	code int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{editor.ErrUnknownEntity, http.StatusBadRequest},
	{service.ErrLastSet, http.StatusBadRequest},
	{service.ErrInvalidGroup, http.StatusBadRequest},
	{service.ErrAlreadyInCircuit, http.StatusBadRequest},
	{service.ErrNotInCircuit, http.StatusBadRequest},
	{service.ErrUnsupportedMedia, http.StatusBadRequest},
	{service.ErrNotPurchasable, http.StatusBadRequest},
	{service.ErrNotSaved, http.StatusBadRequest},
	{service.ErrOwnerCannotLeave, http.StatusBadRequest},

	{service.ErrAuthenticationFailed, http.StatusUnauthorized},
	{service.ErrInvalidToken, http.StatusUnauthorized},
	{service.ErrTokenRevoked, http.StatusUnauthorized},

	{service.ErrAccessDenied, http.StatusForbidden},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrNotMember, http.StatusForbidden},

	{service.ErrProgramNotFound, http.StatusNotFound},
	{service.ErrWeekNotFound, http.StatusNotFound},
	{service.ErrWorkoutNotFound, http.StatusNotFound},
	{service.ErrExerciseNotFound, http.StatusNotFound},
	{service.ErrSetNotFound, http.StatusNotFound},
	{service.ErrCircuitNotFound, http.StatusNotFound},
	{service.ErrProfileNotFound, http.StatusNotFound},
	{service.ErrClubNotFound, http.StatusNotFound},
	{service.ErrEventNotFound, http.StatusNotFound},
	{service.ErrPostNotFound, http.StatusNotFound},
	{service.ErrMessageNotFound, http.StatusNotFound},
	{service.ErrProductNotFound, http.StatusNotFound},
	{service.ErrSubscriptionNotFound, http.StatusNotFound},
	{service.ErrShareNotFound, http.StatusNotFound},
	{service.ErrNoMedia, http.StatusNotFound},

	{service.ErrAlreadyShared, http.StatusConflict},
	{service.ErrAlreadyPurchased, http.StatusConflict},
	{service.ErrAlreadyMember, http.StatusConflict},
	{service.ErrUserAlreadyExists, http.StatusConflict},
}

// handleError maps err to a status. Unknown errors are logged and answered
// with fallback so backend details never reach the client.
func handleError(c *gin.Context, err error, fallback string) {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			abortWithError(c, e.code, err.Error())
			return
		}
	}
	log.Errorf("%s %s: %s", c.Request.Method, c.FullPath(), err)
	abortWithError(c, http.StatusInternalServerError, fallback)
}

// bindJSON binds the body and answers 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return false
	}
	return true
}

func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/editor"
)

// EditorHandler exposes editor sessions. Clients open a program, dispatch
// actions against it and get the updated snapshot back after every action.
type EditorHandler struct {
	sessions *editor.Manager
}

func NewEditorHandler(sessions *editor.Manager) *EditorHandler {
	return &EditorHandler{sessions: sessions}
}

// ActionRequest is the wire form of an editor action. Type selects the
// action; only the fields it uses are read.
type ActionRequest struct {
	Type             string                  `json:"type" binding:"required"`
	Name             string                  `json:"name"`
	WeekID           string                  `json:"weekId"`
	WorkoutID        string                  `json:"workoutId"`
	ExerciseID       string                  `json:"exerciseId"`
	SetID            string                  `json:"setId"`
	CircuitID        string                  `json:"circuitId"`
	LibraryWorkoutID string                  `json:"libraryWorkoutId"`
	Day              int                     `json:"day"`
	IDs              []string                `json:"ids"`
	Settings         *domain.DisplaySettings `json:"settings"`
	Exercise         *domain.NewExercise     `json:"exercise"`
	ExercisePatch    *domain.ExercisePatch   `json:"exercisePatch"`
	Set              *domain.SetFields       `json:"set"`
	SetPatch         *domain.SetPatch        `json:"setPatch"`
	Circuit          *domain.NewCircuit      `json:"circuit"`
	CircuitPatch     *domain.CircuitPatch    `json:"circuitPatch"`
}

func (r ActionRequest) action() (editor.Action, error) {
	switch r.Type {
	case "renameProgram":
		return editor.RenameProgram{Name: r.Name}, nil
	case "updateSettings":
		if r.Settings == nil {
			return nil, fmt.Errorf("%s needs settings", r.Type)
		}
		return editor.UpdateSettings{Settings: *r.Settings}, nil

	case "addWeek":
		return editor.AddWeek{Name: r.Name}, nil
	case "renameWeek":
		return editor.RenameWeek{WeekID: r.WeekID, Name: r.Name}, nil
	case "deleteWeek":
		return editor.DeleteWeek{WeekID: r.WeekID}, nil
	case "reorderWeeks":
		return editor.ReorderWeeks{WeekIDs: r.IDs}, nil

	case "addWorkout":
		return editor.AddWorkout{WeekID: r.WeekID, Name: r.Name, Day: r.Day}, nil
	case "renameWorkout":
		return editor.RenameWorkout{WorkoutID: r.WorkoutID, Name: r.Name}, nil
	case "setWorkoutDay":
		return editor.SetWorkoutDay{WorkoutID: r.WorkoutID, Day: r.Day}, nil
	case "moveWorkout":
		return editor.MoveWorkout{WorkoutID: r.WorkoutID, WeekID: r.WeekID}, nil
	case "deleteWorkout":
		return editor.DeleteWorkout{WorkoutID: r.WorkoutID}, nil
	case "loadLibraryWorkout":
		return editor.LoadLibraryWorkout{LibraryWorkoutID: r.LibraryWorkoutID, WeekID: r.WeekID, Day: r.Day}, nil

	case "addExercise":
		if r.Exercise == nil {
			return nil, fmt.Errorf("%s needs exercise", r.Type)
		}
		return editor.AddExercise{WorkoutID: r.WorkoutID, Exercise: *r.Exercise}, nil
	case "updateExercise":
		if r.ExercisePatch == nil {
			return nil, fmt.Errorf("%s needs exercisePatch", r.Type)
		}
		return editor.UpdateExercise{ExerciseID: r.ExerciseID, Patch: *r.ExercisePatch}, nil
	case "deleteExercise":
		return editor.DeleteExercise{ExerciseID: r.ExerciseID}, nil
	case "reorderExercises":
		return editor.ReorderExercises{WorkoutID: r.WorkoutID, ExerciseIDs: r.IDs}, nil

	case "addSet":
		var fields domain.SetFields
		if r.Set != nil {
			fields = *r.Set
		}
		return editor.AddSet{ExerciseID: r.ExerciseID, Fields: fields}, nil
	case "updateSet":
		if r.SetPatch == nil {
			return nil, fmt.Errorf("%s needs setPatch", r.Type)
		}
		return editor.UpdateSet{SetID: r.SetID, Patch: *r.SetPatch}, nil
	case "deleteSet":
		return editor.DeleteSet{SetID: r.SetID}, nil

	case "createCircuit":
		if r.Circuit == nil {
			return nil, fmt.Errorf("%s needs circuit", r.Type)
		}
		return editor.CreateCircuit{WorkoutID: r.WorkoutID, Circuit: *r.Circuit}, nil
	case "addCircuitMember":
		return editor.AddCircuitMember{CircuitID: r.CircuitID, ExerciseID: r.ExerciseID}, nil
	case "removeCircuitMember":
		return editor.RemoveCircuitMember{CircuitID: r.CircuitID, ExerciseID: r.ExerciseID}, nil
	case "updateCircuit":
		if r.CircuitPatch == nil {
			return nil, fmt.Errorf("%s needs circuitPatch", r.Type)
		}
		return editor.UpdateCircuit{CircuitID: r.CircuitID, Patch: *r.CircuitPatch}, nil
	case "deleteCircuit":
		return editor.DeleteCircuit{CircuitID: r.CircuitID}, nil

	case "selectWeek":
		return editor.SelectWeek{WeekID: r.WeekID}, nil
	case "selectWorkout":
		return editor.SelectWorkout{WorkoutID: r.WorkoutID}, nil
	case "selectExercise":
		return editor.SelectExercise{ExerciseID: r.ExerciseID}, nil
	case "refresh":
		return editor.Refresh{}, nil
	}
	return nil, fmt.Errorf("unknown action type %q", r.Type)
}

// Open godoc
// @Summary Open (or resume) an editor session and get its snapshot
// @Tags Editor
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Success 200 {object} editor.Snapshot
// @Failure 403 {object} gin.H "Not the program's creator"
// @Router /editor/{programId} [get]
func (h *EditorHandler) Open(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	session, err := h.sessions.Open(c.Request.Context(), userID, c.Param("programId"))
	if err != nil {
		handleError(c, err, "Failed to open program")
		return
	}
	respond(c, http.StatusOK, session.Snapshot())
}

// Dispatch godoc
// @Summary Apply an action to the edited program
// @Tags Editor
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Param action body ActionRequest true "Action"
// @Success 200 {object} editor.Snapshot
// @Failure 400 {object} gin.H "Unknown action or entity"
// @Router /editor/{programId}/actions [post]
func (h *EditorHandler) Dispatch(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req ActionRequest
	if !bindJSON(c, &req) {
		return
	}
	action, err := req.action()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	snapshot, err := h.sessions.Dispatch(c.Request.Context(), userID, c.Param("programId"), action)
	if err != nil {
		handleError(c, err, "Failed to apply action")
		return
	}
	respond(c, http.StatusOK, snapshot)
}

// Close godoc
// @Summary Close the caller's editor session
// @Tags Editor
// @Security BearerAuth
// @Param programId path string true "Program ID"
// @Success 204
// @Router /editor/{programId} [delete]
func (h *EditorHandler) Close(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	h.sessions.Close(userID, c.Param("programId"))
	c.Status(http.StatusNoContent)
}

package editor

import (
	"context"
	"fmt"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
)

// Action is one mutation or selection change of an editor session. Actions
// are applied by Session.Dispatch only.
type Action interface {
	// apply persists the action and returns what should be selected
	// afterwards. A zero target keeps the current selection.
	apply(ctx context.Context, s *Session) (target, error)
}

// target names the entity an action wants selected. At most one field is
// set; a circuit id selects the circuit's header exercise.
type target struct {
	weekID     string
	workoutID  string
	exerciseID string
	circuitID  string
}

// mutation reports whether the action wrote to the backend, in which case
// the session re-loads its program afterwards.
type mutation interface {
	mutates() bool
}

type writes struct{}

func (writes) mutates() bool { return true }

// --- program ---

type RenameProgram struct {
	writes
	Name string
}

func (a RenameProgram) apply(ctx context.Context, s *Session) (target, error) {
	_, err := s.svc.Programs.UpdateProgram(ctx, s.userID, s.programID, domain.ProgramPatch{Name: &a.Name})
	return target{}, err
}

type UpdateSettings struct {
	writes
	Settings domain.DisplaySettings
}

func (a UpdateSettings) apply(ctx context.Context, s *Session) (target, error) {
	_, err := s.svc.Programs.UpdateSettings(ctx, s.userID, s.programID, a.Settings)
	return target{}, err
}

// --- weeks ---

// AddWeek appends a week and selects it.
type AddWeek struct {
	writes
	Name string
}

func (a AddWeek) apply(ctx context.Context, s *Session) (target, error) {
	week, err := s.svc.Weeks.AddWeek(ctx, s.userID, s.programID, a.Name)
	if err != nil {
		return target{}, err
	}
	return target{weekID: week.ID}, nil
}

type RenameWeek struct {
	writes
	WeekID string
	Name   string
}

func (a RenameWeek) apply(ctx context.Context, s *Session) (target, error) {
	if err := s.requireWeek(a.WeekID); err != nil {
		return target{}, err
	}
	_, err := s.svc.Weeks.UpdateWeek(ctx, s.userID, a.WeekID, domain.WeekPatch{Name: &a.Name})
	return target{}, err
}

type DeleteWeek struct {
	writes
	WeekID string
}

func (a DeleteWeek) apply(ctx context.Context, s *Session) (target, error) {
	if err := s.requireWeek(a.WeekID); err != nil {
		return target{}, err
	}
	workouts := s.program.WorkoutsOfWeek(a.WeekID)
	if err := s.svc.Weeks.DeleteWeek(ctx, s.userID, a.WeekID); err != nil {
		return target{}, err
	}
	for _, w := range workouts {
		s.deleted[w.ID] = struct{}{}
	}
	return target{}, nil
}

type ReorderWeeks struct {
	writes
	WeekIDs []string
}

func (a ReorderWeeks) apply(ctx context.Context, s *Session) (target, error) {
	return target{}, s.svc.Weeks.ReorderWeeks(ctx, s.userID, s.programID, a.WeekIDs)
}

// --- workouts ---

// AddWorkout schedules a workout in a week and selects it. Day <= 0 picks
// the next free day. Without a WeekID the selected week is used, and a
// program with no weeks gets one.
type AddWorkout struct {
	writes
	WeekID string
	Name   string
	Day    int
}

func (a AddWorkout) apply(ctx context.Context, s *Session) (target, error) {
	weekID, err := s.placementWeek(a.WeekID)
	if err != nil {
		return target{}, err
	}
	var w *domain.Workout
	if weekID == "" {
		w, err = s.svc.Workouts.AddWorkoutToProgram(ctx, s.userID, s.programID, a.Name, a.Day)
	} else {
		w, err = s.svc.Workouts.AddWorkout(ctx, s.userID, weekID, a.Name, a.Day)
	}
	if err != nil {
		return target{}, err
	}
	return target{workoutID: w.ID}, nil
}

type RenameWorkout struct {
	writes
	WorkoutID string
	Name      string
}

func (a RenameWorkout) apply(ctx context.Context, s *Session) (target, error) {
	return target{}, s.patchWorkout(ctx, a.WorkoutID, domain.WorkoutPatch{Name: &a.Name})
}

type SetWorkoutDay struct {
	writes
	WorkoutID string
	Day       int
}

func (a SetWorkoutDay) apply(ctx context.Context, s *Session) (target, error) {
	return target{}, s.patchWorkout(ctx, a.WorkoutID, domain.WorkoutPatch{Day: &a.Day})
}

// MoveWorkout moves a workout to another week of the program.
type MoveWorkout struct {
	writes
	WorkoutID string
	WeekID    string
}

func (a MoveWorkout) apply(ctx context.Context, s *Session) (target, error) {
	if err := s.requireWeek(a.WeekID); err != nil {
		return target{}, err
	}
	if err := s.patchWorkout(ctx, a.WorkoutID, domain.WorkoutPatch{WeekID: &a.WeekID}); err != nil {
		return target{}, err
	}
	return target{workoutID: a.WorkoutID}, nil
}

type DeleteWorkout struct {
	writes
	WorkoutID string
}

func (a DeleteWorkout) apply(ctx context.Context, s *Session) (target, error) {
	if err := s.requireWorkout(a.WorkoutID); err != nil {
		return target{}, err
	}
	if err := s.svc.Workouts.DeleteWorkout(ctx, s.userID, a.WorkoutID); err != nil {
		return target{}, err
	}
	s.deleted[a.WorkoutID] = struct{}{}
	return target{}, nil
}

// LoadLibraryWorkout copies a saved workout into a week of the program and
// selects the copy. An empty WeekID behaves as in AddWorkout.
type LoadLibraryWorkout struct {
	writes
	LibraryWorkoutID string
	WeekID           string
	Day              int
}

func (a LoadLibraryWorkout) apply(ctx context.Context, s *Session) (target, error) {
	weekID, err := s.placementWeek(a.WeekID)
	if err != nil {
		return target{}, err
	}
	var w *domain.Workout
	if weekID == "" {
		w, err = s.svc.Library.LoadWorkoutIntoProgram(ctx, s.userID, a.LibraryWorkoutID, s.programID, a.Day)
	} else {
		w, err = s.svc.Library.LoadWorkout(ctx, s.userID, a.LibraryWorkoutID, weekID, a.Day)
	}
	if err != nil {
		return target{}, err
	}
	return target{workoutID: w.ID}, nil
}

// --- exercises and sets ---

// AddExercise appends an exercise to a workout and selects it.
type AddExercise struct {
	writes
	WorkoutID string
	Exercise  domain.NewExercise
}

func (a AddExercise) apply(ctx context.Context, s *Session) (target, error) {
	if err := s.requireWorkout(a.WorkoutID); err != nil {
		return target{}, err
	}
	ex, err := s.svc.Exercises.AddExercise(ctx, s.userID, a.WorkoutID, a.Exercise)
	if err != nil {
		return target{}, err
	}
	return target{exerciseID: ex.ID}, nil
}

type UpdateExercise struct {
	writes
	ExerciseID string
	Patch      domain.ExercisePatch
}

func (a UpdateExercise) apply(ctx context.Context, s *Session) (target, error) {
	if err := s.requireExercise(a.ExerciseID); err != nil {
		return target{}, err
	}
	_, err := s.svc.Exercises.UpdateExercise(ctx, s.userID, a.ExerciseID, a.Patch)
	return target{}, err
}

type DeleteExercise struct {
	writes
	ExerciseID string
}

func (a DeleteExercise) apply(ctx context.Context, s *Session) (target, error) {
	if err := s.requireExercise(a.ExerciseID); err != nil {
		return target{}, err
	}
	return target{}, s.svc.Exercises.DeleteExercise(ctx, s.userID, a.ExerciseID)
}

type ReorderExercises struct {
	writes
	WorkoutID   string
	ExerciseIDs []string
}

func (a ReorderExercises) apply(ctx context.Context, s *Session) (target, error) {
	if err := s.requireWorkout(a.WorkoutID); err != nil {
		return target{}, err
	}
	return target{}, s.svc.Exercises.ReorderExercises(ctx, s.userID, a.WorkoutID, a.ExerciseIDs)
}

// AddSet appends a set. Empty fields copy the exercise's last set.
type AddSet struct {
	writes
	ExerciseID string
	Fields     domain.SetFields
}

func (a AddSet) apply(ctx context.Context, s *Session) (target, error) {
	if err := s.requireExercise(a.ExerciseID); err != nil {
		return target{}, err
	}
	if _, err := s.svc.Sets.AddSet(ctx, s.userID, a.ExerciseID, a.Fields); err != nil {
		return target{}, err
	}
	return target{exerciseID: a.ExerciseID}, nil
}

type UpdateSet struct {
	writes
	SetID string
	Patch domain.SetPatch
}

func (a UpdateSet) apply(ctx context.Context, s *Session) (target, error) {
	if err := s.requireSet(a.SetID); err != nil {
		return target{}, err
	}
	_, err := s.svc.Sets.UpdateSet(ctx, s.userID, a.SetID, a.Patch)
	return target{}, err
}

type DeleteSet struct {
	writes
	SetID string
}

func (a DeleteSet) apply(ctx context.Context, s *Session) (target, error) {
	if err := s.requireSet(a.SetID); err != nil {
		return target{}, err
	}
	return target{}, s.svc.Sets.DeleteSet(ctx, s.userID, a.SetID)
}

// --- circuits ---

// CreateCircuit creates a circuit of the given kind over existing exercises
// and selects its header. Supersets, EMOMs, AMRAPs and Tabatas go through
// their own presets.
type CreateCircuit struct {
	writes
	WorkoutID string
	Circuit   domain.NewCircuit
}

func (a CreateCircuit) apply(ctx context.Context, s *Session) (target, error) {
	if err := s.requireWorkout(a.WorkoutID); err != nil {
		return target{}, err
	}
	var (
		circuit *domain.Circuit
		err     error
	)
	ids := a.Circuit.ExerciseIDs
	switch a.Circuit.Kind {
	case domain.KindSuperset:
		circuit, err = s.svc.Circuits.CreateSuperset(ctx, s.userID, a.WorkoutID, ids)
	case domain.KindEMOM:
		circuit, err = s.svc.Circuits.CreateEMOM(ctx, s.userID, a.WorkoutID, ids)
	case domain.KindAMRAP:
		circuit, err = s.svc.Circuits.CreateAMRAP(ctx, s.userID, a.WorkoutID, ids)
	case domain.KindTabata:
		circuit, err = s.svc.Circuits.CreateTabata(ctx, s.userID, a.WorkoutID, ids)
	default:
		circuit, err = s.svc.Circuits.CreateCircuit(ctx, s.userID, a.WorkoutID, a.Circuit)
	}
	if err != nil {
		return target{}, err
	}
	return target{circuitID: circuit.ID}, nil
}

type AddCircuitMember struct {
	writes
	CircuitID  string
	ExerciseID string
}

func (a AddCircuitMember) apply(ctx context.Context, s *Session) (target, error) {
	if err := s.requireCircuit(a.CircuitID); err != nil {
		return target{}, err
	}
	if err := s.requireExercise(a.ExerciseID); err != nil {
		return target{}, err
	}
	_, err := s.svc.Circuits.AddExerciseToCircuit(ctx, s.userID, a.CircuitID, a.ExerciseID)
	return target{}, err
}

type RemoveCircuitMember struct {
	writes
	CircuitID  string
	ExerciseID string
}

func (a RemoveCircuitMember) apply(ctx context.Context, s *Session) (target, error) {
	if err := s.requireCircuit(a.CircuitID); err != nil {
		return target{}, err
	}
	if err := s.requireExercise(a.ExerciseID); err != nil {
		return target{}, err
	}
	_, err := s.svc.Circuits.RemoveExerciseFromCircuit(ctx, s.userID, a.CircuitID, a.ExerciseID)
	return target{}, err
}

type UpdateCircuit struct {
	writes
	CircuitID string
	Patch     domain.CircuitPatch
}

func (a UpdateCircuit) apply(ctx context.Context, s *Session) (target, error) {
	if err := s.requireCircuit(a.CircuitID); err != nil {
		return target{}, err
	}
	_, err := s.svc.Circuits.UpdateCircuit(ctx, s.userID, a.CircuitID, a.Patch)
	return target{}, err
}

type DeleteCircuit struct {
	writes
	CircuitID string
}

func (a DeleteCircuit) apply(ctx context.Context, s *Session) (target, error) {
	if err := s.requireCircuit(a.CircuitID); err != nil {
		return target{}, err
	}
	return target{}, s.svc.Circuits.DeleteCircuit(ctx, s.userID, a.CircuitID)
}

// --- selection ---

type SelectWeek struct{ WeekID string }

func (a SelectWeek) apply(_ context.Context, s *Session) (target, error) {
	if err := s.requireWeek(a.WeekID); err != nil {
		return target{}, err
	}
	return target{weekID: a.WeekID}, nil
}

type SelectWorkout struct{ WorkoutID string }

func (a SelectWorkout) apply(_ context.Context, s *Session) (target, error) {
	if err := s.requireWorkout(a.WorkoutID); err != nil {
		return target{}, err
	}
	return target{workoutID: a.WorkoutID}, nil
}

type SelectExercise struct{ ExerciseID string }

func (a SelectExercise) apply(_ context.Context, s *Session) (target, error) {
	if err := s.requireExercise(a.ExerciseID); err != nil {
		return target{}, err
	}
	return target{exerciseID: a.ExerciseID}, nil
}

// Refresh re-loads the program, picking up writes made outside the session.
type Refresh struct{ writes }

func (Refresh) apply(context.Context, *Session) (target, error) {
	return target{}, nil
}

// actionName is used in logs.
func actionName(a Action) string {
	return fmt.Sprintf("%T", a)
}

package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/service"
)

type exerciseContent struct {
	Name      string
	Notes     string
	IsCircuit bool
	InCircuit bool
	Sets      []domain.SetFields
}

// contentOf strips identity from a workout so copies can be compared.
func contentOf(w *domain.Workout) []exerciseContent {
	out := make([]exerciseContent, 0, len(w.Exercises))
	for _, ex := range w.Exercises {
		c := exerciseContent{Name: ex.Name, Notes: ex.Notes, IsCircuit: ex.IsCircuit, InCircuit: ex.IsInCircuit}
		for _, s := range ex.Sets {
			c.Sets = append(c.Sets, s.Fields())
		}
		out = append(out, c)
	}
	return out
}

func idsOf(w *domain.Workout) map[string]bool {
	out := map[string]bool{}
	for _, ex := range w.Exercises {
		out[ex.ID] = true
		for _, s := range ex.Sets {
			out[s.ID] = true
		}
	}
	for _, c := range w.Circuits {
		out[c.ID] = true
	}
	return out
}

func TestLibrary_SaveThenLoadRoundTrip(t *testing.T) {
	e := newTestEnv(t)
	w, ids := e.workoutWithExercises(t, "Pull Up", "Dip")
	_, err := e.circuits.CreateSuperset(e.ctx, owner, w.ID, ids)
	require.NoError(t, err)
	src, err := e.workouts.GetWorkout(e.ctx, owner, w.ID)
	require.NoError(t, err)

	saved, err := e.library.SaveWorkout(e.ctx, owner, service.SaveWorkoutRequest{Name: "Upper Pump", Workout: src})
	require.NoError(t, err)
	assert.True(t, saved.Saved)
	assert.Equal(t, "Upper Pump", saved.Name)
	assert.Equal(t, contentOf(src), contentOf(saved))

	list, err := e.library.ListSavedWorkouts(e.ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, saved.ID, list[0].ID)
	// the wrapper program stays out of regular listings
	programs, err := e.programs.ListPrograms(e.ctx, owner)
	require.NoError(t, err)
	assert.Len(t, programs, 1)

	target, err := e.programs.CreateProgram(e.ctx, owner, "Next Block")
	require.NoError(t, err)
	loaded, err := e.library.LoadWorkout(e.ctx, owner, saved.ID, target.Weeks[0].ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Day)
	assert.False(t, loaded.Saved)
	assert.Equal(t, contentOf(src), contentOf(loaded))
	require.Len(t, loaded.Circuits, 1)
	assert.Len(t, loaded.Circuits[0].Exercises, 2)
	assertCircuitConsistency(t, loaded)

	for id := range idsOf(loaded) {
		assert.False(t, idsOf(saved)[id], "id %s reused", id)
		assert.False(t, idsOf(src)[id], "id %s reused", id)
	}

	// saving the loaded copy reproduces the same content
	again, err := e.library.SaveWorkout(e.ctx, owner, service.SaveWorkoutRequest{WorkoutID: loaded.ID})
	require.NoError(t, err)
	assert.True(t, again.Saved)
	assert.Equal(t, contentOf(src), contentOf(again))
}

func TestLibrary_RemoveSaved(t *testing.T) {
	e := newTestEnv(t)
	w, _ := e.workoutWithExercises(t, "Row")

	_, err := e.library.SaveWorkout(e.ctx, owner, service.SaveWorkoutRequest{WorkoutID: w.ID, Name: "Back Day"})
	require.NoError(t, err)
	require.NoError(t, e.library.RemoveSavedWorkout(e.ctx, owner, w.ID))
	assert.ErrorIs(t, e.library.RemoveSavedWorkout(e.ctx, owner, w.ID), service.ErrNotSaved)

	// unsaving keeps a workout that lives in a real program
	kept, err := e.workouts.GetWorkout(e.ctx, owner, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Back Day", kept.Name)

	bare, err := e.library.SaveWorkout(e.ctx, owner, service.SaveWorkoutRequest{Workout: kept})
	require.NoError(t, err)
	before := e.programCount(t, owner)
	require.NoError(t, e.library.RemoveSavedWorkout(e.ctx, owner, bare.ID))
	assert.Equal(t, before-1, e.programCount(t, owner))
	_, err = e.workouts.GetWorkout(e.ctx, owner, bare.ID)
	assert.ErrorIs(t, err, service.ErrWorkoutNotFound)
}

func TestLibrary_UpdateSavedWorkout(t *testing.T) {
	e := newTestEnv(t)
	w, _ := e.workoutWithExercises(t, "Row")

	_, err := e.library.UpdateSavedWorkout(e.ctx, owner, w.ID, domain.WorkoutPatch{Name: strPtr("x")})
	assert.ErrorIs(t, err, service.ErrNotSaved)

	_, err = e.library.SaveWorkout(e.ctx, owner, service.SaveWorkoutRequest{WorkoutID: w.ID})
	require.NoError(t, err)
	updated, err := e.library.UpdateSavedWorkout(e.ctx, owner, w.ID, domain.WorkoutPatch{Name: strPtr("Rows")})
	require.NoError(t, err)
	assert.Equal(t, "Rows", updated.Name)
	assert.True(t, updated.Saved)

	_, err = e.library.UpdateSavedWorkout(e.ctx, owner, w.ID, domain.WorkoutPatch{WeekID: strPtr("w")})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestLibrary_SaveAndLoadWeek(t *testing.T) {
	e := newTestEnv(t)
	program, err := e.programs.CreateProgram(e.ctx, owner, "Source")
	require.NoError(t, err)
	_, err = e.workouts.AddWorkout(e.ctx, owner, program.Weeks[0].ID, "Legs", 3)
	require.NoError(t, err)

	saved, err := e.library.SaveWeek(e.ctx, owner, service.SaveWeekRequest{WeekID: program.Weeks[0].ID, Name: "Base Week"})
	require.NoError(t, err)
	assert.True(t, saved.Week.Saved)
	assert.Len(t, saved.Workouts, 2)

	weeks, err := e.library.ListSavedWeeks(e.ctx, owner)
	require.NoError(t, err)
	require.Len(t, weeks, 1)

	target, err := e.programs.CreateProgram(e.ctx, owner, "Target")
	require.NoError(t, err)
	loaded, err := e.library.LoadWeek(e.ctx, owner, saved.Week.ID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, "Base Week", loaded.Name)

	target, err = e.programs.GetProgram(e.ctx, owner, target.ID)
	require.NoError(t, err)
	require.Len(t, target.Weeks, 2)
	copied := target.WorkoutsOfWeek(loaded.ID)
	require.Len(t, copied, 2)
	assert.Equal(t, "Legs", copied[1].Name)

	require.NoError(t, e.library.RemoveSavedWeek(e.ctx, owner, saved.Week.ID))
	weeks, err = e.library.ListSavedWeeks(e.ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, weeks)
}

func TestLibrary_CopyAndSaveProgram(t *testing.T) {
	e := newTestEnv(t)
	w, ids := e.workoutWithExercises(t, "A", "B")
	_, err := e.circuits.CreateAMRAP(e.ctx, owner, w.ID, ids)
	require.NoError(t, err)
	_, err = e.programs.SetVisibility(e.ctx, owner, w.ProgramID, true)
	require.NoError(t, err)
	src, err := e.programs.GetProgram(e.ctx, owner, w.ProgramID)
	require.NoError(t, err)

	copied, err := e.library.CopyProgram(e.ctx, stranger, src.ID)
	require.NoError(t, err)
	assert.Equal(t, "Strength (Copy)", copied.Name)
	assert.Equal(t, stranger, copied.CreatorID)
	assert.False(t, copied.IsPublic)
	require.Len(t, copied.Workouts, 1)
	assert.Equal(t, contentOf(&src.Workouts[0]), contentOf(&copied.Workouts[0]))

	saved, err := e.library.SaveProgram(e.ctx, stranger, service.SaveProgramRequest{ProgramID: copied.ID})
	require.NoError(t, err)
	assert.True(t, saved.Saved)
	list, err := e.library.ListSavedPrograms(e.ctx, stranger)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NoError(t, e.library.RemoveSavedProgram(e.ctx, stranger, copied.ID))
	assert.ErrorIs(t, e.library.RemoveSavedProgram(e.ctx, stranger, copied.ID), service.ErrNotSaved)

	_, err = e.library.SaveProgram(e.ctx, stranger, service.SaveProgramRequest{ProgramID: src.ID})
	assert.ErrorIs(t, err, service.ErrAccessDenied)
}

const blockTOML = `
name = "Imported Block"

[settings]
weight_unit = "KGS"
hide_notes = true

[[week]]
name = "Intro"

  [[week.workout]]
  name = "Push"
  day = 1

    [[week.workout.circuit]]
    label = "finisher"
    kind = "superset"

    [[week.workout.exercise]]
    name = "Bench Press"
    sets = 3
    reps = "8"
    weight = "60"
    rpe = "7"

    [[week.workout.exercise]]
    name = "Push Up"
    circuit = "finisher"
      [[week.workout.exercise.set]]
      reps = "15"

    [[week.workout.exercise]]
    name = "Dip"
    circuit = "finisher"
      [[week.workout.exercise.set]]
      reps = "10"

[[week]]

  [[week.workout]]
  day = 4
    [[week.workout.exercise]]
    name = "Overhead Press"
`

func TestImportProgramTOML(t *testing.T) {
	e := newTestEnv(t)

	program, err := e.library.ImportProgramTOML(e.ctx, owner, []byte(blockTOML))
	require.NoError(t, err)
	assert.Equal(t, "Imported Block", program.Name)
	assert.Equal(t, domain.WeightUnitKgs, program.Settings.WeightUnit)
	assert.False(t, program.Settings.ShowNotes)
	require.Len(t, program.Weeks, 2)
	assert.Equal(t, "Intro", program.Weeks[0].Name)
	assert.Equal(t, "Week 2", program.Weeks[1].Name)

	push := program.WorkoutsOfWeek(program.Weeks[0].ID)
	require.Len(t, push, 1)
	w := push[0]
	require.Len(t, w.Exercises, 4)
	bench := w.Exercises[0]
	assert.Equal(t, "Bench Press", bench.Name)
	require.Len(t, bench.Sets, 3)
	assert.Equal(t, domain.SetFields{Reps: "8", Weight: "60", Intensity: "7", IntensityType: "rpe"}, bench.Sets[2].Fields())

	require.Len(t, w.Circuits, 1)
	assert.Equal(t, domain.KindSuperset, w.Circuits[0].Kind)
	assert.Equal(t, []string{w.Exercises[1].ID, w.Exercises[2].ID}, w.Circuits[0].Exercises)
	assert.True(t, w.Exercises[3].IsCircuit)
	assertCircuitConsistency(t, &w)

	second := program.WorkoutsOfWeek(program.Weeks[1].ID)
	require.Len(t, second, 1)
	assert.Equal(t, "Day 4", second[0].Name)
	require.Len(t, second[0].Exercises, 1)
	assert.Len(t, second[0].Exercises[0].Sets, 1)
}

func TestParseProgramTOML_Errors(t *testing.T) {
	for name, doc := range map[string]string{
		"syntax":          `name = `,
		"no name":         "[[week]]\nname = \"W\"",
		"no weeks":        `name = "Empty"`,
		"unknown circuit": "name = \"P\"\n[[week]]\n[[week.workout]]\n[[week.workout.exercise]]\nname = \"A\"\ncircuit = \"nope\"",
		"unknown kind":    "name = \"P\"\n[[week]]\n[[week.workout]]\n[[week.workout.circuit]]\nlabel = \"c\"\nkind = \"ladder\"",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := service.ParseProgramTOML([]byte(doc))
			assert.ErrorIs(t, err, service.ErrValidation)
		})
	}
}

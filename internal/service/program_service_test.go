package service_test

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/service"
)

func TestCreateProgram_SeedsFirstChain(t *testing.T) {
	e := newTestEnv(t)

	program, err := e.programs.CreateProgram(e.ctx, owner, "  Hypertrophy Block ")
	require.NoError(t, err)
	assert.Equal(t, "Hypertrophy Block", program.Name)
	assert.Equal(t, domain.DefaultDisplaySettings(), program.Settings)

	require.Len(t, program.Weeks, 1)
	assert.Equal(t, "Week 1", program.Weeks[0].Name)
	require.Len(t, program.Workouts, 1)
	w := program.Workouts[0]
	assert.Equal(t, "Day 1", w.Name)
	assert.Equal(t, 1, w.Day)
	assert.Equal(t, []string{w.ID}, program.Weeks[0].Workouts)
	require.Len(t, w.Exercises, 1)
	assert.Equal(t, "New Exercise", w.Exercises[0].Name)
	require.Len(t, w.Exercises[0].Sets, 1)
	assert.True(t, w.Exercises[0].Sets[0].Fields().IsEmpty())
}

func TestCreateProgram_Validation(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.programs.CreateProgram(e.ctx, owner, "   ")
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.Equal(t, 0, e.programCount(t, owner))
}

func TestProgramScenario_BenchPressSet(t *testing.T) {
	e := newTestEnv(t)

	program, err := e.programs.CreateProgram(e.ctx, owner, "Push")
	require.NoError(t, err)
	week, err := e.weeks.AddWeek(e.ctx, owner, program.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Week 2", week.Name)
	require.Len(t, week.Workouts, 1)

	w, err := e.workouts.AddWorkout(e.ctx, owner, week.ID, "Bench Day", 1)
	require.NoError(t, err)
	bench, err := e.exs.AddExercise(e.ctx, owner, w.ID, domain.NewExercise{
		Name: "Bench Press",
		Sets: []domain.SetFields{{Reps: "8", Weight: "135"}},
	})
	require.NoError(t, err)

	program, err = e.programs.GetProgram(e.ctx, owner, program.ID)
	require.NoError(t, err)
	got, ok := program.Workout(w.ID)
	require.True(t, ok)
	ex, ok := got.Exercise(bench.ID)
	require.True(t, ok)
	require.Len(t, ex.Sets, 1)
	assert.NotEmpty(t, ex.Sets[0].ID)
	assert.Equal(t, domain.SetFields{Reps: "8", Weight: "135"}, ex.Sets[0].Fields())
}

func TestCreateProgram_CompensatesPartialChain(t *testing.T) {
	e := newTestEnv(t)
	e.store.FailOn("sets.create", errors.New("disk full"))

	_, err := e.programs.CreateProgram(e.ctx, owner, "Doomed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 0, e.programCount(t, owner))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.CounterCompensations.WithLabelValues("program", "ok")))

	e.store.FailOn("sets.create", nil)
	_, err = e.programs.CreateProgram(e.ctx, owner, "Works")
	require.NoError(t, err)
	assert.Equal(t, 1, e.programCount(t, owner))
}

func TestAddWeek_CompensationLeavesProgramIntact(t *testing.T) {
	e := newTestEnv(t)
	program, err := e.programs.CreateProgram(e.ctx, owner, "Base")
	require.NoError(t, err)

	e.store.FailOn("exercises.create", errors.New("boom"))
	_, err = e.weeks.AddWeek(e.ctx, owner, program.ID, "Deload")
	require.Error(t, err)
	e.store.FailOn("exercises.create", nil)

	program, err = e.programs.GetProgram(e.ctx, owner, program.ID)
	require.NoError(t, err)
	assert.Len(t, program.Weeks, 1)
	assert.Len(t, program.Workouts, 1)
}

func TestUpdateProgram_PatchKeepsOmittedFields(t *testing.T) {
	e := newTestEnv(t)
	program, err := e.programs.CreateProgram(e.ctx, owner, "Original")
	require.NoError(t, err)

	_, err = e.programs.SetVisibility(e.ctx, owner, program.ID, true)
	require.NoError(t, err)
	settings := domain.DisplaySettings{WeightUnit: domain.WeightUnitKgs, EffortUnit: "bogus", ShowRest: true}
	_, err = e.programs.UpdateSettings(e.ctx, owner, program.ID, settings)
	require.NoError(t, err)

	updated, err := e.programs.UpdateProgram(e.ctx, owner, program.ID, domain.ProgramPatch{Name: strPtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.True(t, updated.IsPublic)
	assert.Equal(t, domain.WeightUnitKgs, updated.Settings.WeightUnit)
	assert.Equal(t, domain.EffortUnitRPE, updated.Settings.EffortUnit)

	same, err := e.programs.UpdateProgram(e.ctx, owner, program.ID, domain.ProgramPatch{})
	require.NoError(t, err)
	assert.Equal(t, updated.Name, same.Name)
}

func TestProgram_AccessRules(t *testing.T) {
	e := newTestEnv(t)
	program, err := e.programs.CreateProgram(e.ctx, owner, "Private")
	require.NoError(t, err)

	_, err = e.programs.GetProgram(e.ctx, stranger, program.ID)
	assert.ErrorIs(t, err, service.ErrAccessDenied)
	_, err = e.programs.UpdateProgram(e.ctx, stranger, program.ID, domain.ProgramPatch{Name: strPtr("Mine")})
	assert.ErrorIs(t, err, service.ErrAccessDenied)
	assert.ErrorIs(t, e.programs.DeleteProgram(e.ctx, stranger, program.ID), service.ErrAccessDenied)

	_, err = e.programs.GetProgram(e.ctx, owner, "missing")
	assert.ErrorIs(t, err, service.ErrProgramNotFound)

	_, err = e.programs.SetVisibility(e.ctx, owner, program.ID, true)
	require.NoError(t, err)
	_, err = e.programs.GetProgram(e.ctx, stranger, program.ID)
	assert.NoError(t, err)

	public, err := e.programs.ListPublicPrograms(e.ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, program.ID, public[0].ID)
}

func TestProgram_PurchaseFlow(t *testing.T) {
	e := newTestEnv(t)
	program, err := e.programs.CreateProgram(e.ctx, owner, "Paid Plan")
	require.NoError(t, err)

	_, err = e.programs.PurchaseProgram(e.ctx, stranger, program.ID)
	assert.ErrorIs(t, err, service.ErrNotPurchasable)

	priced, err := e.programs.UpdateProgramPrice(e.ctx, owner, program.ID, 19.99, true)
	require.NoError(t, err)
	assert.True(t, priced.IsPurchasable)
	assert.NotEmpty(t, priced.Slug)

	p, err := e.programs.PurchaseProgram(e.ctx, stranger, program.ID)
	require.NoError(t, err)
	assert.Equal(t, 19.99, p.AmountPaid)
	_, err = e.programs.PurchaseProgram(e.ctx, stranger, program.ID)
	assert.ErrorIs(t, err, service.ErrAlreadyPurchased)

	ok, err := e.programs.HasUserPurchasedProgram(e.ctx, stranger, program.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// buyers can read the private program
	_, err = e.programs.GetProgram(e.ctx, stranger, program.ID)
	assert.NoError(t, err)

	_, err = e.programs.UpdateProgramPrice(e.ctx, owner, program.ID, -1, true)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestDeleteProgram_RemovesTree(t *testing.T) {
	e := newTestEnv(t)
	w, ids := e.workoutWithExercises(t, "Squat", "Lunge")
	_, err := e.circuits.CreateSuperset(e.ctx, owner, w.ID, ids)
	require.NoError(t, err)

	require.NoError(t, e.programs.DeleteProgram(e.ctx, owner, w.ProgramID))
	assert.Equal(t, 0, e.programCount(t, owner))

	_, err = e.workouts.GetWorkout(e.ctx, owner, w.ID)
	assert.ErrorIs(t, err, service.ErrWorkoutNotFound)
	exercises, err := e.store.Exercises().ListByWorkouts(e.ctx, []string{w.ID})
	require.NoError(t, err)
	assert.Empty(t, exercises)
	circuits, err := e.store.Circuits().ListByWorkouts(e.ctx, []string{w.ID})
	require.NoError(t, err)
	assert.Empty(t, circuits)
}

func TestWeeks_ReorderAndDelete(t *testing.T) {
	e := newTestEnv(t)
	program, err := e.programs.CreateProgram(e.ctx, owner, "Block")
	require.NoError(t, err)
	second, err := e.weeks.AddWeek(e.ctx, owner, program.ID, "Peak")
	require.NoError(t, err)
	first := program.Weeks[0]

	require.NoError(t, e.weeks.ReorderWeeks(e.ctx, owner, program.ID, []string{second.ID, first.ID}))
	program, err = e.programs.GetProgram(e.ctx, owner, program.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, program.Weeks[0].ID)

	err = e.weeks.ReorderWeeks(e.ctx, owner, program.ID, []string{second.ID})
	assert.ErrorIs(t, err, service.ErrValidation)

	renamed, err := e.weeks.UpdateWeek(e.ctx, owner, second.ID, domain.WeekPatch{Name: strPtr("Taper")})
	require.NoError(t, err)
	assert.Equal(t, "Taper", renamed.Name)

	require.NoError(t, e.weeks.DeleteWeek(e.ctx, owner, second.ID))
	program, err = e.programs.GetProgram(e.ctx, owner, program.ID)
	require.NoError(t, err)
	require.Len(t, program.Weeks, 1)
	assert.Equal(t, first.ID, program.Weeks[0].ID)
	assert.Len(t, program.Workouts, 1)
}

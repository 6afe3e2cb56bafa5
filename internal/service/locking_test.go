package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/service"
)

const writeDelay = 20 * time.Millisecond

// slowWorkouts stalls week moves so a concurrent writer can try to slip in.
type slowWorkouts struct {
	repository.WorkoutRepository
	entered chan struct{}
}

func (r *slowWorkouts) Update(ctx context.Context, id string, patch domain.WorkoutPatch) error {
	if patch.WeekID != nil {
		r.entered <- struct{}{}
		time.Sleep(writeDelay)
	}
	return r.WorkoutRepository.Update(ctx, id, patch)
}

// slowExercises stalls group links the same way.
type slowExercises struct {
	repository.ExerciseRepository
	entered chan struct{}
}

func (r *slowExercises) Update(ctx context.Context, id string, patch domain.ExercisePatch) error {
	if patch.GroupID != nil {
		r.entered <- struct{}{}
		time.Sleep(writeDelay)
	}
	return r.ExerciseRepository.Update(ctx, id, patch)
}

func TestMoveWorkout_DeleteTargetWeekWaits(t *testing.T) {
	slow := &slowWorkouts{entered: make(chan struct{}, 1)}
	e := newTestEnvWith(t, func(r *service.Repos) {
		slow.WorkoutRepository = r.Workouts
		r.Workouts = slow
	})
	program, err := e.programs.CreateProgram(e.ctx, owner, "Split")
	require.NoError(t, err)
	target, err := e.weeks.AddWeek(e.ctx, owner, program.ID, "Deload")
	require.NoError(t, err)
	workoutID := program.Workouts[0].ID

	moveErr := make(chan error, 1)
	go func() {
		_, err := e.workouts.UpdateWorkout(e.ctx, owner, workoutID, domain.WorkoutPatch{WeekID: &target.ID})
		moveErr <- err
	}()
	<-slow.entered
	require.NoError(t, e.weeks.DeleteWeek(e.ctx, owner, target.ID))
	require.NoError(t, <-moveErr)

	// the delete ran after the move, so the moved workout went with the week
	workouts, err := e.store.Workouts().ListByProgram(e.ctx, program.ID)
	require.NoError(t, err)
	for _, w := range workouts {
		_, err := e.store.Weeks().GetByID(e.ctx, w.WeekID)
		assert.NoError(t, err, "workout %s points at missing week %s", w.ID, w.WeekID)
	}
	_, err = e.workouts.GetWorkout(e.ctx, owner, workoutID)
	assert.ErrorIs(t, err, service.ErrWorkoutNotFound)
}

func TestMoveWorkout_TargetWeekGone(t *testing.T) {
	e := newTestEnv(t)
	program, err := e.programs.CreateProgram(e.ctx, owner, "Split")
	require.NoError(t, err)
	target, err := e.weeks.AddWeek(e.ctx, owner, program.ID, "")
	require.NoError(t, err)
	require.NoError(t, e.weeks.DeleteWeek(e.ctx, owner, target.ID))

	_, err = e.workouts.UpdateWorkout(e.ctx, owner, program.Workouts[0].ID, domain.WorkoutPatch{WeekID: &target.ID})
	assert.ErrorIs(t, err, service.ErrWeekNotFound)
}

func TestGroupLink_DeleteHeaderWaits(t *testing.T) {
	slow := &slowExercises{entered: make(chan struct{}, 1)}
	e := newTestEnvWith(t, func(r *service.Repos) {
		slow.ExerciseRepository = r.Exercises
		r.Exercises = slow
	})
	_, ids := e.workoutWithExercises(t, "Header", "Member")
	header, member := ids[0], ids[1]
	_, err := e.exs.UpdateExercise(e.ctx, owner, header, domain.ExercisePatch{IsGroup: boolPtr(true)})
	require.NoError(t, err)

	linkErr := make(chan error, 1)
	go func() {
		_, err := e.exs.UpdateExercise(e.ctx, owner, member, domain.ExercisePatch{GroupID: &header})
		linkErr <- err
	}()
	<-slow.entered
	require.NoError(t, e.exs.DeleteExercise(e.ctx, owner, header))
	require.NoError(t, <-linkErr)

	got, err := e.store.Exercises().GetByID(e.ctx, member)
	require.NoError(t, err)
	assert.Empty(t, got.GroupID, "member still points at the deleted header")
}

func TestGroupLink_UngroupHeaderWaits(t *testing.T) {
	slow := &slowExercises{entered: make(chan struct{}, 1)}
	e := newTestEnvWith(t, func(r *service.Repos) {
		slow.ExerciseRepository = r.Exercises
		r.Exercises = slow
	})
	_, ids := e.workoutWithExercises(t, "Header", "Member")
	header, member := ids[0], ids[1]
	_, err := e.exs.UpdateExercise(e.ctx, owner, header, domain.ExercisePatch{IsGroup: boolPtr(true)})
	require.NoError(t, err)

	linkErr := make(chan error, 1)
	go func() {
		_, err := e.exs.UpdateExercise(e.ctx, owner, member, domain.ExercisePatch{GroupID: &header})
		linkErr <- err
	}()
	<-slow.entered
	_, err = e.exs.UpdateExercise(e.ctx, owner, header, domain.ExercisePatch{IsGroup: boolPtr(false)})
	require.NoError(t, err)
	require.NoError(t, <-linkErr)

	got, err := e.store.Exercises().GetByID(e.ctx, member)
	require.NoError(t, err)
	assert.Empty(t, got.GroupID, "member still points at an ungrouped header")
}

func TestAddWorkout_RecreatesMissingWeek(t *testing.T) {
	e := newTestEnv(t)
	program, err := e.programs.CreateProgram(e.ctx, owner, "Split")
	require.NoError(t, err)
	require.NoError(t, e.weeks.DeleteWeek(e.ctx, owner, program.Weeks[0].ID))

	emptied, err := e.programs.GetProgram(e.ctx, owner, program.ID)
	require.NoError(t, err)
	require.Empty(t, emptied.Weeks)

	w, err := e.workouts.AddWorkoutToProgram(e.ctx, owner, program.ID, "Legs", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, w.Day)

	got, err := e.programs.GetProgram(e.ctx, owner, program.ID)
	require.NoError(t, err)
	require.Len(t, got.Weeks, 1)
	assert.Equal(t, "Week 1", got.Weeks[0].Name)
	assert.Equal(t, []string{w.ID}, got.Weeks[0].Workouts)
	assert.Equal(t, got.Weeks[0].ID, w.WeekID)

	// with a week in place the next workout joins it
	second, err := e.workouts.AddWorkoutToProgram(e.ctx, owner, program.ID, "", 0)
	require.NoError(t, err)
	assert.Equal(t, w.WeekID, second.WeekID)
	assert.Equal(t, 2, second.Day)

	_, err = e.workouts.AddWorkoutToProgram(e.ctx, stranger, program.ID, "", 0)
	assert.ErrorIs(t, err, service.ErrAccessDenied)
}

func TestLoadWorkoutIntoProgram_RecreatesMissingWeek(t *testing.T) {
	e := newTestEnv(t)
	w, _ := e.workoutWithExercises(t, "Squat")
	saved, err := e.library.SaveWorkout(e.ctx, owner, service.SaveWorkoutRequest{WorkoutID: w.ID, Name: "Leg Day"})
	require.NoError(t, err)

	program, err := e.programs.CreateProgram(e.ctx, owner, "Block")
	require.NoError(t, err)
	require.NoError(t, e.weeks.DeleteWeek(e.ctx, owner, program.Weeks[0].ID))

	loaded, err := e.library.LoadWorkoutIntoProgram(e.ctx, owner, saved.ID, program.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Day)
	assert.NotEqual(t, saved.ID, loaded.ID)

	got, err := e.programs.GetProgram(e.ctx, owner, program.ID)
	require.NoError(t, err)
	require.Len(t, got.Weeks, 1)
	assert.Equal(t, []string{loaded.ID}, got.Weeks[0].Workouts)
}

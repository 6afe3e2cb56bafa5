package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/metrics"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository/memory"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/service"
)

const (
	owner    = "user-owner"
	stranger = "user-stranger"
)

type testEnv struct {
	ctx      context.Context
	store    *memory.Store
	metrics  *metrics.Manager
	content  *service.Content
	programs service.ProgramService
	weeks    service.WeekService
	workouts service.WorkoutService
	exs      service.ExerciseService
	sets     service.SetService
	circuits service.CircuitService
	library  service.LibraryService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t, nil)
}

// newTestEnvWith lets a test wrap repositories before the services are
// built.
func newTestEnvWith(t *testing.T, wrap func(*service.Repos)) *testEnv {
	t.Helper()
	store := memory.NewStore()
	m := metrics.NewTestManager()
	repos := reposFor(store)
	if wrap != nil {
		wrap(&repos)
	}
	content := service.NewContent(service.ContentParams{
		Repos:   repos,
		Metrics: m,
	})
	return &testEnv{
		ctx:      context.Background(),
		store:    store,
		metrics:  m,
		content:  content,
		programs: service.NewProgramService(content),
		weeks:    service.NewWeekService(content),
		workouts: service.NewWorkoutService(content),
		exs:      service.NewExerciseService(content),
		sets:     service.NewSetService(content),
		circuits: service.NewCircuitService(content),
		library:  service.NewLibraryService(content),
	}
}

func reposFor(store *memory.Store) service.Repos {
	return service.Repos{
		Tx:        store,
		Programs:  store.Programs(),
		Weeks:     store.Weeks(),
		Workouts:  store.Workouts(),
		Exercises: store.Exercises(),
		Sets:      store.Sets(),
		Circuits:  store.Circuits(),
		Purchases: store.Purchases(),
	}
}

// firstWorkout returns the workout CreateProgram seeds.
func (e *testEnv) firstWorkout(t *testing.T, program *domain.WorkoutProgram) *domain.Workout {
	t.Helper()
	require.NotEmpty(t, program.Workouts)
	w, err := e.workouts.GetWorkout(e.ctx, program.CreatorID, program.Workouts[0].ID)
	require.NoError(t, err)
	return w
}

// workoutWithExercises creates a program and adds the named exercises to its
// first workout.
func (e *testEnv) workoutWithExercises(t *testing.T, names ...string) (*domain.Workout, []string) {
	t.Helper()
	program, err := e.programs.CreateProgram(e.ctx, owner, "Strength")
	require.NoError(t, err)
	w := e.firstWorkout(t, program)
	ids := make([]string, 0, len(names))
	for _, name := range names {
		ex, err := e.exs.AddExercise(e.ctx, owner, w.ID, domain.NewExercise{
			Name: name,
			Sets: []domain.SetFields{{Reps: "10", Weight: "50"}},
		})
		require.NoError(t, err)
		ids = append(ids, ex.ID)
	}
	w, err = e.workouts.GetWorkout(e.ctx, owner, w.ID)
	require.NoError(t, err)
	return w, ids
}

// programCount counts the user's programs, library wrappers included.
func (e *testEnv) programCount(t *testing.T, userID string) int {
	t.Helper()
	programs, err := e.store.Programs().List(e.ctx, repository.ProgramFilter{CreatorID: userID, IncludeWrappers: true})
	require.NoError(t, err)
	return len(programs)
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

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

// assertCircuitConsistency checks that membership flags and circuit lists
// agree for every exercise of the workout.
func assertCircuitConsistency(t *testing.T, w *domain.Workout) {
	t.Helper()
	listed := map[string]string{}
	for _, c := range w.Circuits {
		for _, id := range c.Exercises {
			listed[id] = c.ID
		}
	}
	for _, ex := range w.Exercises {
		if !ex.IsInCircuit {
			assert.NotContains(t, listed, ex.ID, "exercise %s listed but not flagged", ex.ID)
			continue
		}
		matches := 0
		for _, c := range w.Circuits {
			if c.ID == ex.CircuitID {
				matches++
			}
		}
		assert.Equal(t, 1, matches, "exercise %s points at unknown circuit", ex.ID)
		assert.Equal(t, ex.CircuitID, listed[ex.ID])
	}
}

func TestCreateSuperset_Scenario(t *testing.T) {
	e := newTestEnv(t)
	w, ids := e.workoutWithExercises(t, "A", "B")

	superset, err := e.circuits.CreateSuperset(e.ctx, owner, w.ID, ids)
	require.NoError(t, err)
	assert.Equal(t, domain.KindSuperset, superset.Kind)
	assert.Equal(t, "0", superset.RestBetweenExercises)
	assert.Equal(t, domain.KindSuperset.Preset().Rounds, superset.Rounds)
	assert.Equal(t, ids, superset.Exercises)

	w, err = e.workouts.GetWorkout(e.ctx, owner, w.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseCircuitAugmented, w.Phase())
	for _, id := range ids {
		ex, ok := w.Exercise(id)
		require.True(t, ok)
		assert.True(t, ex.IsInCircuit)
		assert.Equal(t, superset.ID, ex.CircuitID)
	}
	assertCircuitConsistency(t, w)

	var headers []domain.Exercise
	for _, ex := range w.Exercises {
		if ex.IsCircuit {
			headers = append(headers, ex)
		}
	}
	require.Len(t, headers, 1)
	assert.Equal(t, superset.ID, headers[0].CircuitID)
	assert.Empty(t, headers[0].Sets)
}

func TestCreateCircuit_Validation(t *testing.T) {
	e := newTestEnv(t)
	w, ids := e.workoutWithExercises(t, "A", "B", "C")

	_, err := e.circuits.CreateSuperset(e.ctx, owner, w.ID, ids)
	assert.ErrorIs(t, err, service.ErrValidation)
	_, err = e.circuits.CreateCircuit(e.ctx, owner, w.ID, domain.NewCircuit{Kind: "ladder"})
	assert.ErrorIs(t, err, service.ErrValidation)
	_, err = e.circuits.CreateCircuit(e.ctx, owner, w.ID, domain.NewCircuit{ExerciseIDs: []string{ids[0], ids[0]}})
	assert.ErrorIs(t, err, service.ErrValidation)
	_, err = e.circuits.CreateCircuit(e.ctx, owner, w.ID, domain.NewCircuit{ExerciseIDs: []string{"elsewhere"}})
	assert.ErrorIs(t, err, service.ErrValidation)
	_, err = e.circuits.CreateCircuit(e.ctx, stranger, w.ID, domain.NewCircuit{})
	assert.ErrorIs(t, err, service.ErrAccessDenied)

	_, err = e.circuits.CreateTabata(e.ctx, owner, w.ID, ids[:1])
	require.NoError(t, err)
	_, err = e.circuits.CreateEMOM(e.ctx, owner, w.ID, ids[:1])
	assert.ErrorIs(t, err, service.ErrAlreadyInCircuit)
}

func TestCreateCircuit_KindPresets(t *testing.T) {
	e := newTestEnv(t)
	w, ids := e.workoutWithExercises(t, "A", "B", "C")

	emom, err := e.circuits.CreateEMOM(e.ctx, owner, w.ID, ids[:1])
	require.NoError(t, err)
	assert.Equal(t, "EMOM", emom.Name)
	assert.Equal(t, "10", emom.Rounds)

	amrap, err := e.circuits.CreateAMRAP(e.ctx, owner, w.ID, ids[1:2])
	require.NoError(t, err)
	assert.Equal(t, "1", amrap.Rounds)

	custom, err := e.circuits.CreateCircuit(e.ctx, owner, w.ID, domain.NewCircuit{Name: "Finisher", Rounds: "5", ExerciseIDs: ids[2:]})
	require.NoError(t, err)
	assert.Equal(t, domain.KindCircuit, custom.Kind)
	assert.Equal(t, "5", custom.Rounds)
	assert.Equal(t, "30", custom.RestBetweenExercises)
}

func TestCircuitMembership_RoundTrip(t *testing.T) {
	e := newTestEnv(t)
	w, ids := e.workoutWithExercises(t, "A", "B", "C")
	circuit, err := e.circuits.CreateCircuit(e.ctx, owner, w.ID, domain.NewCircuit{ExerciseIDs: ids[:2]})
	require.NoError(t, err)

	before, err := e.workouts.GetWorkout(e.ctx, owner, w.ID)
	require.NoError(t, err)
	beforeEx, _ := before.Exercise(ids[2])

	added, err := e.circuits.AddExerciseToCircuit(e.ctx, owner, circuit.ID, ids[2])
	require.NoError(t, err)
	assert.Equal(t, ids, added.Exercises)
	mid, err := e.workouts.GetWorkout(e.ctx, owner, w.ID)
	require.NoError(t, err)
	assertCircuitConsistency(t, mid)

	_, err = e.circuits.AddExerciseToCircuit(e.ctx, owner, circuit.ID, ids[2])
	assert.ErrorIs(t, err, service.ErrAlreadyInCircuit)

	removed, err := e.circuits.RemoveExerciseFromCircuit(e.ctx, owner, circuit.ID, ids[2])
	require.NoError(t, err)
	assert.Equal(t, ids[:2], removed.Exercises)
	_, err = e.circuits.RemoveExerciseFromCircuit(e.ctx, owner, circuit.ID, ids[2])
	assert.ErrorIs(t, err, service.ErrNotInCircuit)

	after, err := e.workouts.GetWorkout(e.ctx, owner, w.ID)
	require.NoError(t, err)
	afterEx, _ := after.Exercise(ids[2])
	assert.Equal(t, beforeEx, afterEx)
	assert.Equal(t, before.Circuits, after.Circuits)
	assertCircuitConsistency(t, after)
}

func TestCreateCircuit_CompensatesOnMemberFailure(t *testing.T) {
	e := newTestEnv(t)
	w, ids := e.workoutWithExercises(t, "A", "B")
	before, err := e.workouts.GetWorkout(e.ctx, owner, w.ID)
	require.NoError(t, err)

	e.store.FailOn("circuits.add_member", errors.New("write conflict"))
	_, err = e.circuits.CreateSuperset(e.ctx, owner, w.ID, ids)
	require.Error(t, err)
	e.store.FailOn("circuits.add_member", nil)

	after, err := e.workouts.GetWorkout(e.ctx, owner, w.ID)
	require.NoError(t, err)
	assert.Empty(t, after.Circuits)
	assert.Len(t, after.Exercises, len(before.Exercises))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.CounterCompensations.WithLabelValues("circuit", "ok")))
}

func TestUpdateAndDeleteCircuit(t *testing.T) {
	e := newTestEnv(t)
	w, ids := e.workoutWithExercises(t, "A", "B")
	circuit, err := e.circuits.CreateSuperset(e.ctx, owner, w.ID, ids)
	require.NoError(t, err)

	updated, err := e.circuits.UpdateCircuit(e.ctx, owner, circuit.ID, domain.CircuitPatch{Name: strPtr("Pump"), Rounds: strPtr("4")})
	require.NoError(t, err)
	assert.Equal(t, "Pump", updated.Name)
	assert.Equal(t, "4", updated.Rounds)
	assert.Equal(t, "0", updated.RestBetweenExercises)

	w, err = e.workouts.GetWorkout(e.ctx, owner, w.ID)
	require.NoError(t, err)
	for _, ex := range w.Exercises {
		if ex.IsCircuit {
			assert.Equal(t, "Pump", ex.Name)
		}
	}

	require.NoError(t, e.circuits.DeleteCircuit(e.ctx, owner, circuit.ID))
	w, err = e.workouts.GetWorkout(e.ctx, owner, w.ID)
	require.NoError(t, err)
	assert.Empty(t, w.Circuits)
	assert.Equal(t, domain.PhasePopulated, w.Phase())
	for _, id := range ids {
		ex, ok := w.Exercise(id)
		require.True(t, ok, "members survive their circuit")
		assert.False(t, ex.IsInCircuit)
	}
	for _, ex := range w.Exercises {
		assert.False(t, ex.IsCircuit)
	}
}

func TestDeleteCircuitHeader_DropsCircuit(t *testing.T) {
	e := newTestEnv(t)
	w, ids := e.workoutWithExercises(t, "A", "B")
	_, err := e.circuits.CreateSuperset(e.ctx, owner, w.ID, ids)
	require.NoError(t, err)
	w, err = e.workouts.GetWorkout(e.ctx, owner, w.ID)
	require.NoError(t, err)

	var headerID string
	for _, ex := range w.Exercises {
		if ex.IsCircuit {
			headerID = ex.ID
		}
	}
	require.NotEmpty(t, headerID)
	_, err = e.sets.AddSet(e.ctx, owner, headerID, domain.SetFields{Reps: "1"})
	assert.ErrorIs(t, err, service.ErrValidation)

	require.NoError(t, e.exs.DeleteExercise(e.ctx, owner, headerID))
	w, err = e.workouts.GetWorkout(e.ctx, owner, w.ID)
	require.NoError(t, err)
	assert.Empty(t, w.Circuits)
	assertCircuitConsistency(t, w)
}

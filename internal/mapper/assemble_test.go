package mapper

import (
	"testing"
	"time"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleProgram(t *testing.T) {
	now := time.Now()
	parts := ProgramParts{
		Program: domain.WorkoutProgram{ID: "p1", Name: "Strength"},
		Weeks: []domain.WorkoutWeek{
			{ID: "w2", ProgramID: "p1", Name: "Week 2", OrderIndex: 1, CreatedAt: now},
			{ID: "w1", ProgramID: "p1", Name: "Week 1", OrderIndex: 0, CreatedAt: now},
			{ID: "stray", ProgramID: "other", Name: "Other"},
		},
		Workouts: []domain.Workout{
			{ID: "d2", ProgramID: "p1", WeekID: "w1", Name: "Day 2", Day: 2},
			{ID: "d1", ProgramID: "p1", WeekID: "w1", Name: "Day 1", Day: 1},
			{ID: "d3", ProgramID: "p1", WeekID: "w2", Name: "Day 1", Day: 1},
		},
		Exercises: []domain.Exercise{
			{ID: "e2", WorkoutID: "d1", Name: "Row", OrderIndex: 1},
			{ID: "e1", WorkoutID: "d1", Name: "Bench Press", OrderIndex: 0},
			{ID: "orphan", WorkoutID: "missing", Name: "Nope"},
		},
		Sets: []domain.Set{
			{ID: "s2", ExerciseID: "e1", OrderIndex: 1, Reps: "6"},
			{ID: "s1", ExerciseID: "e1", OrderIndex: 0, Reps: "8", Weight: "135"},
		},
	}

	p := AssembleProgram(parts)
	require.Len(t, p.Weeks, 2)
	assert.Equal(t, "w1", p.Weeks[0].ID)
	assert.Equal(t, []string{"d1", "d2"}, p.Weeks[0].Workouts)
	assert.Equal(t, []string{"d3"}, p.Weeks[1].Workouts)
	require.Len(t, p.Workouts, 3)

	d1, ok := p.Workout("d1")
	require.True(t, ok)
	require.Len(t, d1.Exercises, 2)
	assert.Equal(t, "Bench Press", d1.Exercises[0].Name)
	require.Len(t, d1.Exercises[0].Sets, 2)
	assert.Equal(t, "8", d1.Exercises[0].Sets[0].Reps)
	assert.Equal(t, "135", d1.Exercises[0].Sets[0].Weight)
	assert.NotNil(t, d1.Exercises[1].Sets)

	d3, _ := p.Workout("d3")
	assert.NotNil(t, d3.Exercises)
	assert.NotNil(t, d3.Circuits)
	assert.Equal(t, domain.PhaseEmpty, d3.Phase())
}

func TestProjectCircuitMembership(t *testing.T) {
	exercises := []domain.Exercise{
		{ID: "hdr", IsCircuit: true, CircuitID: "c1"},
		{ID: "a"},
		{ID: "b"},
		// stale stored flags must not leak through
		{ID: "c", IsInCircuit: true, CircuitID: "c1", CircuitOrder: 9},
	}
	circuits := []domain.Circuit{{ID: "c1", Name: "Superset"}}
	memberships := []domain.CircuitMembership{
		{CircuitID: "c1", ExerciseID: "b", Order: 1},
		{CircuitID: "c1", ExerciseID: "a", Order: 0},
		{CircuitID: "gone", ExerciseID: "a", Order: 0},
		{CircuitID: "c1", ExerciseID: "missing", Order: 2},
	}

	ex, cs := ProjectCircuitMembership(exercises, circuits, memberships)
	require.Len(t, cs, 1)
	assert.Equal(t, []string{"a", "b"}, cs[0].Exercises)

	assert.True(t, ex[0].IsCircuit)
	assert.Equal(t, "c1", ex[0].CircuitID)
	assert.False(t, ex[0].IsInCircuit)

	assert.True(t, ex[1].IsInCircuit)
	assert.Equal(t, "c1", ex[1].CircuitID)
	assert.Equal(t, 0, ex[1].CircuitOrder)
	assert.True(t, ex[2].IsInCircuit)
	assert.Equal(t, 1, ex[2].CircuitOrder)

	assert.False(t, ex[3].IsInCircuit)
	assert.Empty(t, ex[3].CircuitID)

	// every member names exactly one circuit of the workout
	for _, e := range ex {
		if !e.IsInCircuit {
			continue
		}
		n := 0
		for _, c := range cs {
			if c.ID == e.CircuitID {
				n++
			}
		}
		assert.Equal(t, 1, n, e.ID)
	}
}

func TestSettingsFromJSON(t *testing.T) {
	assert.Equal(t, domain.DefaultDisplaySettings(), SettingsFromJSON(""))
	assert.Equal(t, domain.DefaultDisplaySettings(), SettingsFromJSON("{not json"))

	s := SettingsFromJSON(`{"weightUnit":"kgs","effortUnit":"rir","showRest":false}`)
	assert.Equal(t, domain.WeightUnitKgs, s.WeightUnit)
	assert.Equal(t, domain.EffortUnitRIR, s.EffortUnit)
	assert.False(t, s.ShowRest)
	assert.True(t, s.ShowNotes)

	s = SettingsFromJSON(`{"weightUnit":"stone"}`)
	assert.Equal(t, domain.WeightUnitLbs, s.WeightUnit)
}

func TestExerciseRowConversion(t *testing.T) {
	workoutID := "65f1c0a2b3c4d5e6f7a8b9c0"
	circuitID := "65f1c0a2b3c4d5e6f7a8b9c1"

	// a member keeps nothing of its projection
	row, err := ExerciseToRow(domain.Exercise{
		WorkoutID:   workoutID,
		Name:        "Squat",
		IsInCircuit: true,
		CircuitID:   circuitID,
	})
	require.NoError(t, err)
	assert.Nil(t, row.CircuitID)
	assert.Nil(t, row.Notes)

	// a header keeps its circuit id
	row, err = ExerciseToRow(domain.Exercise{
		WorkoutID: workoutID,
		Name:      "Circuit",
		Notes:     "go hard",
		IsCircuit: true,
		CircuitID: circuitID,
	})
	require.NoError(t, err)
	require.NotNil(t, row.CircuitID)
	assert.Equal(t, circuitID, row.CircuitID.Hex())

	ex := ExerciseFromRow(row)
	assert.Equal(t, "go hard", ex.Notes)
	assert.Equal(t, circuitID, ex.CircuitID)
	assert.Equal(t, workoutID, ex.WorkoutID)
	assert.Empty(t, ex.ID)

	_, err = ExerciseToRow(domain.Exercise{WorkoutID: "not-hex"})
	assert.ErrorIs(t, err, ErrInvalidID)
}

package mapper

import (
	"cmp"
	"slices"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
)

// ProgramParts are the flat records that make up one program tree.
type ProgramParts struct {
	Program     domain.WorkoutProgram
	Weeks       []domain.WorkoutWeek
	Workouts    []domain.Workout
	Exercises   []domain.Exercise
	Sets        []domain.Set
	Circuits    []domain.Circuit
	Memberships []domain.CircuitMembership
}

// AssembleProgram builds the nested program tree from its flat records.
// Records whose parent is not part of the tree are dropped.
func AssembleProgram(parts ProgramParts) domain.WorkoutProgram {
	program := parts.Program
	program.Weeks = make([]domain.WorkoutWeek, 0, len(parts.Weeks))
	program.Workouts = make([]domain.Workout, 0, len(parts.Workouts))

	weekIndex := make(map[string]int, len(parts.Weeks))
	for _, w := range SortWeeks(parts.Weeks) {
		if w.ProgramID != program.ID {
			continue
		}
		w.Workouts = []string{}
		weekIndex[w.ID] = len(program.Weeks)
		program.Weeks = append(program.Weeks, w)
	}

	workouts := make([]domain.Workout, 0, len(parts.Workouts))
	workoutIDs := make(map[string]struct{}, len(parts.Workouts))
	for _, w := range parts.Workouts {
		if w.ProgramID != program.ID {
			continue
		}
		workouts = append(workouts, w)
		workoutIDs[w.ID] = struct{}{}
	}
	byWorkout := groupExercises(parts.Exercises, parts.Sets, workoutIDs)
	circuitsByWorkout := make(map[string][]domain.Circuit)
	for _, c := range parts.Circuits {
		if _, ok := workoutIDs[c.WorkoutID]; ok {
			circuitsByWorkout[c.WorkoutID] = append(circuitsByWorkout[c.WorkoutID], c)
		}
	}

	for _, w := range SortWorkouts(workouts) {
		w.Exercises, w.Circuits = ProjectCircuitMembership(byWorkout[w.ID], circuitsByWorkout[w.ID], parts.Memberships)
		if i, ok := weekIndex[w.WeekID]; ok {
			program.Weeks[i].Workouts = append(program.Weeks[i].Workouts, w.ID)
		}
		program.Workouts = append(program.Workouts, w)
	}
	return program
}

// AssembleWorkout attaches exercises, sets and circuits to a single workout.
func AssembleWorkout(w domain.Workout, exercises []domain.Exercise, sets []domain.Set, circuits []domain.Circuit, memberships []domain.CircuitMembership) domain.Workout {
	byWorkout := groupExercises(exercises, sets, map[string]struct{}{w.ID: {}})
	own := make([]domain.Circuit, 0, len(circuits))
	for _, c := range circuits {
		if c.WorkoutID == w.ID {
			own = append(own, c)
		}
	}
	w.Exercises, w.Circuits = ProjectCircuitMembership(byWorkout[w.ID], own, memberships)
	return w
}

func groupExercises(exercises []domain.Exercise, sets []domain.Set, workouts map[string]struct{}) map[string][]domain.Exercise {
	setsByExercise := make(map[string][]domain.Set)
	for _, s := range sets {
		setsByExercise[s.ExerciseID] = append(setsByExercise[s.ExerciseID], s)
	}
	out := make(map[string][]domain.Exercise)
	for _, e := range exercises {
		if _, ok := workouts[e.WorkoutID]; !ok {
			continue
		}
		e.Sets = SortSets(setsByExercise[e.ID])
		out[e.WorkoutID] = append(out[e.WorkoutID], e)
	}
	for id, list := range out {
		out[id] = SortExercises(list)
	}
	return out
}

// ProjectCircuitMembership derives the member flags of exercises and the
// exercise lists of circuits from the membership rows. Rows naming a circuit
// or exercise outside this workout are ignored. Stored member flags on the
// exercises are discarded first so the rows stay the only source.
func ProjectCircuitMembership(exercises []domain.Exercise, circuits []domain.Circuit, memberships []domain.CircuitMembership) ([]domain.Exercise, []domain.Circuit) {
	outEx := make([]domain.Exercise, len(exercises))
	exIndex := make(map[string]int, len(exercises))
	for i, e := range exercises {
		e.IsInCircuit = false
		e.CircuitOrder = 0
		if !e.IsCircuit {
			e.CircuitID = ""
		}
		if e.Sets == nil {
			e.Sets = []domain.Set{}
		}
		outEx[i] = e
		exIndex[e.ID] = i
	}

	outCircuits := make([]domain.Circuit, len(circuits))
	circuitIndex := make(map[string]int, len(circuits))
	for i, c := range circuits {
		c.Exercises = []string{}
		outCircuits[i] = c
		circuitIndex[c.ID] = i
	}

	rows := slices.Clone(memberships)
	slices.SortStableFunc(rows, func(a, b domain.CircuitMembership) int {
		return cmp.Compare(a.Order, b.Order)
	})
	for _, m := range rows {
		ci, ok := circuitIndex[m.CircuitID]
		if !ok {
			continue
		}
		ei, ok := exIndex[m.ExerciseID]
		if !ok || outEx[ei].IsInCircuit {
			continue
		}
		outEx[ei].IsInCircuit = true
		outEx[ei].CircuitID = m.CircuitID
		outEx[ei].CircuitOrder = m.Order
		outCircuits[ci].Exercises = append(outCircuits[ci].Exercises, m.ExerciseID)
	}
	return outEx, outCircuits
}

// SortWeeks orders weeks by order index, then creation time.
func SortWeeks(weeks []domain.WorkoutWeek) []domain.WorkoutWeek {
	out := slices.Clone(weeks)
	slices.SortStableFunc(out, func(a, b domain.WorkoutWeek) int {
		if c := cmp.Compare(a.OrderIndex, b.OrderIndex); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}

// SortWorkouts orders workouts by day, order index, then creation time.
func SortWorkouts(workouts []domain.Workout) []domain.Workout {
	out := slices.Clone(workouts)
	slices.SortStableFunc(out, func(a, b domain.Workout) int {
		if c := cmp.Compare(a.Day, b.Day); c != 0 {
			return c
		}
		if c := cmp.Compare(a.OrderIndex, b.OrderIndex); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}

func SortExercises(exercises []domain.Exercise) []domain.Exercise {
	out := slices.Clone(exercises)
	slices.SortStableFunc(out, func(a, b domain.Exercise) int {
		return cmp.Compare(a.OrderIndex, b.OrderIndex)
	})
	return out
}

func SortSets(sets []domain.Set) []domain.Set {
	out := slices.Clone(sets)
	if out == nil {
		return []domain.Set{}
	}
	slices.SortStableFunc(out, func(a, b domain.Set) int {
		return cmp.Compare(a.OrderIndex, b.OrderIndex)
	})
	return out
}

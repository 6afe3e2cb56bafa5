package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/mapper"
)

// cloneWorkout stores a copy of src's exercises, sets and circuits under a
// new workout described by target. No id of src is reused.
func (c *Content) cloneWorkout(ctx context.Context, cs *cascade, src domain.Workout, target domain.Workout) (string, error) {
	target.ID = ""
	target.Exercises, target.Circuits = nil, nil
	target.Slug, target.IsPurchasable, target.Price = "", false, 0
	workoutID, err := c.repos.Workouts.Create(ctx, &target)
	if err != nil {
		return "", fmt.Errorf("create workout: %w", err)
	}
	cs.track(c.repos.Workouts.DeleteMany, workoutID)

	circuitIDs := make(map[string]string, len(src.Circuits))
	for _, ci := range src.Circuits {
		circuit := &domain.Circuit{
			WorkoutID:            workoutID,
			Name:                 ci.Name,
			Kind:                 ci.Kind,
			Rounds:               ci.Rounds,
			RestBetweenExercises: ci.RestBetweenExercises,
			RestBetweenRounds:    ci.RestBetweenRounds,
		}
		id, err := c.repos.Circuits.Create(ctx, circuit)
		if err != nil {
			return "", fmt.Errorf("create circuit: %w", err)
		}
		cs.track(c.repos.Circuits.DeleteMany, id)
		circuitIDs[ci.ID] = id
	}

	exerciseIDs := make(map[string]string, len(src.Exercises))
	for _, ex := range mapper.SortExercises(src.Exercises) {
		clone := domain.Exercise{
			WorkoutID:  workoutID,
			Name:       ex.Name,
			Notes:      ex.Notes,
			OrderIndex: ex.OrderIndex,
			IsGroup:    ex.IsGroup,
			MediaKey:   ex.MediaKey,
		}
		if newCircuit, ok := circuitIDs[ex.CircuitID]; ok && ex.IsCircuit {
			clone.IsCircuit, clone.CircuitID = true, newCircuit
		}
		sets := make([]domain.SetFields, 0, len(ex.Sets))
		for _, st := range mapper.SortSets(ex.Sets) {
			sets = append(sets, st.Fields())
		}
		created, err := c.createExercise(ctx, cs, clone, sets)
		if err != nil {
			return "", err
		}
		exerciseIDs[ex.ID] = created.ID
	}

	for _, ex := range src.Exercises {
		groupID, ok := exerciseIDs[ex.GroupID]
		if ex.GroupID == "" || !ok {
			continue
		}
		if err := c.repos.Exercises.Update(ctx, exerciseIDs[ex.ID], domain.ExercisePatch{GroupID: &groupID}); err != nil {
			return "", fmt.Errorf("link group: %w", err)
		}
	}

	for _, ci := range src.Circuits {
		for i, member := range circuitMembers(src, ci) {
			newExercise, ok := exerciseIDs[member]
			if !ok {
				continue
			}
			if err := c.addMember(ctx, cs, workoutID, circuitIDs[ci.ID], newExercise, i); err != nil {
				return "", err
			}
		}
	}
	return workoutID, nil
}

// circuitMembers returns the circuit's exercise ids in order. A circuit with
// an empty list falls back to the exercises flagged as its members.
func circuitMembers(w domain.Workout, ci domain.Circuit) []string {
	if len(ci.Exercises) > 0 {
		return ci.Exercises
	}
	var flagged []domain.Exercise
	for _, ex := range w.Exercises {
		if ex.IsInCircuit && ex.CircuitID == ci.ID {
			flagged = append(flagged, ex)
		}
	}
	out := make([]string, 0, len(flagged))
	for _, ex := range sortByCircuitOrder(flagged) {
		out = append(out, ex.ID)
	}
	return out
}

func sortByCircuitOrder(exercises []domain.Exercise) []domain.Exercise {
	out := slices.Clone(exercises)
	slices.SortStableFunc(out, func(a, b domain.Exercise) int { return cmp.Compare(a.CircuitOrder, b.CircuitOrder) })
	return out
}

// cloneWeek stores target as a new week holding copies of workouts.
func (c *Content) cloneWeek(ctx context.Context, cs *cascade, workouts []domain.Workout, target domain.WorkoutWeek) (string, error) {
	target.ID = ""
	target.Workouts = nil
	weekID, err := c.repos.Weeks.Create(ctx, &target)
	if err != nil {
		return "", fmt.Errorf("create week: %w", err)
	}
	cs.track(c.repos.Weeks.DeleteMany, weekID)

	for i, w := range mapper.SortWorkouts(workouts) {
		_, err := c.cloneWorkout(ctx, cs, w, domain.Workout{
			ProgramID:  target.ProgramID,
			WeekID:     weekID,
			Name:       w.Name,
			Day:        w.Day,
			OrderIndex: i,
		})
		if err != nil {
			return "", err
		}
	}
	return weekID, nil
}

// cloneProgram stores target as a new program holding a copy of src's tree.
func (c *Content) cloneProgram(ctx context.Context, cs *cascade, src *domain.WorkoutProgram, target domain.WorkoutProgram) (string, error) {
	target.ID = ""
	target.Weeks, target.Workouts = nil, nil
	target.Slug, target.IsPurchasable, target.Price, target.IsPublic = "", false, 0, false
	target.Settings = target.Settings.Normalize()
	programID, err := c.repos.Programs.Create(ctx, &target)
	if err != nil {
		return "", fmt.Errorf("create program: %w", err)
	}
	cs.onFail(func(ctx context.Context) error { return c.repos.Programs.Delete(ctx, programID) })

	for i, week := range mapper.SortWeeks(src.Weeks) {
		_, err := c.cloneWeek(ctx, cs, src.WorkoutsOfWeek(week.ID), domain.WorkoutWeek{
			ProgramID:  programID,
			Name:       week.Name,
			OrderIndex: i,
		})
		if err != nil {
			return "", err
		}
	}
	return programID, nil
}

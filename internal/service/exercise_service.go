package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
)

type ExerciseService interface {
	// AddExercise appends an exercise to the workout together with its sets.
	// Without sets a single blank set is created.
	AddExercise(ctx context.Context, userID, workoutID string, ex domain.NewExercise) (*domain.Exercise, error)
	UpdateExercise(ctx context.Context, userID, exerciseID string, patch domain.ExercisePatch) (*domain.Exercise, error)
	// DeleteExercise removes the exercise, its sets and its circuit
	// membership. Deleting a group header detaches the group's members.
	DeleteExercise(ctx context.Context, userID, exerciseID string) error
	ReorderExercises(ctx context.Context, userID, workoutID string, exerciseIDs []string) error
}

type exerciseService struct {
	*Content
}

func NewExerciseService(content *Content) ExerciseService {
	return &exerciseService{Content: content}
}

func (s *exerciseService) AddExercise(ctx context.Context, userID, workoutID string, in domain.NewExercise) (*domain.Exercise, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	unlock := s.lock(workoutID)
	defer unlock()

	w, _, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	siblings, err := s.repos.Exercises.ListByWorkouts(ctx, []string{workoutID})
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	if in.GroupID != "" {
		if err := checkGroup(siblings, "", in.GroupID); err != nil {
			return nil, err
		}
	}

	var exercise *domain.Exercise
	err = s.runCascade(ctx, "exercise", func(ctx context.Context, cs *cascade) error {
		created, err := s.createExercise(ctx, cs, domain.Exercise{
			WorkoutID:  workoutID,
			Name:       in.Name,
			Notes:      in.Notes,
			OrderIndex: nextOrder(siblings, func(e domain.Exercise) int { return e.OrderIndex }),
			IsGroup:    in.IsGroup,
			GroupID:    in.GroupID,
		}, in.Sets)
		exercise = created
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidateWorkout(w)
	return exercise, nil
}

func (s *exerciseService) UpdateExercise(ctx context.Context, userID, exerciseID string, patch domain.ExercisePatch) (*domain.Exercise, error) {
	if err := validateStruct(s.validate, patch); err != nil {
		return nil, err
	}
	ex, w, err := s.ownedExercise(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}
	// group changes take the workout lock like every other writer of
	// group links (AddExercise, DeleteExercise)
	keys := []string{exerciseID}
	if patch.GroupID != nil || patch.IsGroup != nil {
		keys = append(keys, ex.WorkoutID)
	}
	unlock := s.lock(keys...)
	defer unlock()

	ex, err = s.repos.Exercises.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, notFound(err, ErrExerciseNotFound, "get exercise")
	}
	if patch.GroupID != nil && *patch.GroupID != "" {
		siblings, err := s.repos.Exercises.ListByWorkouts(ctx, []string{ex.WorkoutID})
		if err != nil {
			return nil, fmt.Errorf("list exercises: %w", err)
		}
		if err := checkGroup(siblings, exerciseID, *patch.GroupID); err != nil {
			return nil, err
		}
	}
	ungroup := patch.IsGroup != nil && !*patch.IsGroup && ex.IsGroup

	if !patch.IsEmpty() {
		err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
			if err := s.repos.Exercises.Update(ctx, exerciseID, patch); err != nil {
				return notFound(err, ErrExerciseNotFound, "update exercise")
			}
			// a header that stops being a group releases its members
			if ungroup {
				if err := s.repos.Exercises.ClearGroup(ctx, exerciseID); err != nil {
					return fmt.Errorf("clear group: %w", err)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		s.invalidateWorkout(w)
	}
	return s.exerciseView(ctx, exerciseID)
}

func (s *exerciseService) DeleteExercise(ctx context.Context, userID, exerciseID string) error {
	ex, w, err := s.ownedExercise(ctx, userID, exerciseID)
	if err != nil {
		return err
	}
	unlock := s.lock(ex.WorkoutID, exerciseID)
	defer unlock()

	ex, err = s.repos.Exercises.GetByID(ctx, exerciseID)
	if err != nil {
		return notFound(err, ErrExerciseNotFound, "get exercise")
	}
	err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if ex.IsGroup {
			if err := s.repos.Exercises.ClearGroup(ctx, exerciseID); err != nil {
				return fmt.Errorf("clear group: %w", err)
			}
		}
		// the header stands for its circuit; the circuit goes with it
		if ex.IsCircuit && ex.CircuitID != "" {
			if err := s.repos.Circuits.RemoveCircuitMembers(ctx, []string{ex.CircuitID}); err != nil {
				return fmt.Errorf("remove circuit members: %w", err)
			}
			if err := s.repos.Circuits.DeleteMany(ctx, []string{ex.CircuitID}); err != nil {
				return fmt.Errorf("delete circuit: %w", err)
			}
		}
		return s.deleteExercises(ctx, []string{exerciseID})
	})
	if err != nil {
		return err
	}
	s.invalidateWorkout(w)
	return nil
}

func (s *exerciseService) ReorderExercises(ctx context.Context, userID, workoutID string, exerciseIDs []string) error {
	unlock := s.lock(workoutID)
	defer unlock()

	w, _, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return err
	}
	siblings, err := s.repos.Exercises.ListByWorkouts(ctx, []string{workoutID})
	if err != nil {
		return fmt.Errorf("list exercises: %w", err)
	}
	if err := samePermutation(exerciseIDs, ids(siblings, func(e domain.Exercise) string { return e.ID })); err != nil {
		return err
	}
	err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		for i, id := range exerciseIDs {
			if err := s.repos.Exercises.SetOrder(ctx, id, i); err != nil {
				return fmt.Errorf("reorder exercise %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidateWorkout(w)
	return nil
}

// exerciseView reads the exercise with its sets and circuit projection.
func (c *Content) exerciseView(ctx context.Context, exerciseID string) (*domain.Exercise, error) {
	ex, err := c.repos.Exercises.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, notFound(err, ErrExerciseNotFound, "get exercise")
	}
	w, err := c.repos.Workouts.GetByID(ctx, ex.WorkoutID)
	if err != nil {
		return nil, notFound(err, ErrExerciseNotFound, "get workout")
	}
	full, err := c.loadWorkout(ctx, w)
	if err != nil {
		return nil, err
	}
	view, ok := full.Exercise(exerciseID)
	if !ok {
		return nil, ErrExerciseNotFound
	}
	return view, nil
}

// checkGroup verifies that groupID names a group header among siblings
// other than the exercise itself.
func checkGroup(siblings []domain.Exercise, selfID, groupID string) error {
	if groupID == selfID {
		return ErrInvalidGroup
	}
	for _, e := range siblings {
		if e.ID == groupID {
			if !e.IsGroup {
				return ErrInvalidGroup
			}
			return nil
		}
	}
	return ErrInvalidGroup
}

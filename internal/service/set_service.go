package service

import (
	"context"
	"fmt"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
)

type SetService interface {
	// AddSet appends a set. Empty fields copy the exercise's last set.
	AddSet(ctx context.Context, userID, exerciseID string, fields domain.SetFields) (*domain.Set, error)
	UpdateSet(ctx context.Context, userID, setID string, patch domain.SetPatch) (*domain.Set, error)
	// DeleteSet fails with ErrLastSet for the only set of an exercise.
	DeleteSet(ctx context.Context, userID, setID string) error
}

type setService struct {
	*Content
}

func NewSetService(content *Content) SetService {
	return &setService{Content: content}
}

func (s *setService) AddSet(ctx context.Context, userID, exerciseID string, fields domain.SetFields) (*domain.Set, error) {
	unlock := s.lock(exerciseID)
	defer unlock()

	ex, w, err := s.ownedExercise(ctx, userID, exerciseID)
	if err != nil {
		return nil, err
	}
	if ex.IsCircuit {
		return nil, validationError("circuit headers have no sets")
	}
	existing, err := s.repos.Sets.ListByExercises(ctx, []string{exerciseID})
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	if fields.IsEmpty() && len(existing) > 0 {
		fields = existing[len(existing)-1].Fields()
	}

	var set *domain.Set
	err = s.runCascade(ctx, "set", func(ctx context.Context, cs *cascade) error {
		created, err := s.createSet(ctx, cs, exerciseID, nextOrder(existing, func(st domain.Set) int { return st.OrderIndex }), fields)
		set = created
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidateWorkout(w)
	return set, nil
}

func (s *setService) UpdateSet(ctx context.Context, userID, setID string, patch domain.SetPatch) (*domain.Set, error) {
	unlock := s.lock(setID)
	defer unlock()

	set, w, err := s.ownedSet(ctx, userID, setID)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return set, nil
	}
	if err := s.repos.Sets.Update(ctx, setID, patch); err != nil {
		return nil, notFound(err, ErrSetNotFound, "update set")
	}
	s.invalidateWorkout(w)
	updated := patch.Apply(*set)
	return &updated, nil
}

func (s *setService) DeleteSet(ctx context.Context, userID, setID string) error {
	set, w, err := s.ownedSet(ctx, userID, setID)
	if err != nil {
		return err
	}
	// siblings are counted under the exercise lock
	unlock := s.lock(set.ExerciseID)
	defer unlock()

	siblings, err := s.repos.Sets.ListByExercises(ctx, []string{set.ExerciseID})
	if err != nil {
		return fmt.Errorf("list sets: %w", err)
	}
	if len(siblings) <= 1 {
		return ErrLastSet
	}
	if err := s.repos.Sets.DeleteMany(ctx, []string{setID}); err != nil {
		return fmt.Errorf("delete set: %w", err)
	}
	s.invalidateWorkout(w)
	return nil
}

func (c *Content) ownedSet(ctx context.Context, userID, setID string) (*domain.Set, *domain.Workout, error) {
	set, err := c.repos.Sets.GetByID(ctx, setID)
	if err != nil {
		return nil, nil, notFound(err, ErrSetNotFound, "get set")
	}
	_, w, err := c.ownedExercise(ctx, userID, set.ExerciseID)
	if err != nil {
		return nil, nil, err
	}
	return set, w, nil
}

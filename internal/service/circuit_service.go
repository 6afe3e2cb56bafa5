package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
)

// CircuitService manages circuits. Membership rows are the only record of
// which exercise is in which circuit; exercise flags are derived on read.
type CircuitService interface {
	CreateCircuit(ctx context.Context, userID, workoutID string, in domain.NewCircuit) (*domain.Circuit, error)
	// CreateSuperset pairs exactly two exercises with no rest between them.
	CreateSuperset(ctx context.Context, userID, workoutID string, exerciseIDs []string) (*domain.Circuit, error)
	CreateEMOM(ctx context.Context, userID, workoutID string, exerciseIDs []string) (*domain.Circuit, error)
	CreateAMRAP(ctx context.Context, userID, workoutID string, exerciseIDs []string) (*domain.Circuit, error)
	CreateTabata(ctx context.Context, userID, workoutID string, exerciseIDs []string) (*domain.Circuit, error)
	AddExerciseToCircuit(ctx context.Context, userID, circuitID, exerciseID string) (*domain.Circuit, error)
	RemoveExerciseFromCircuit(ctx context.Context, userID, circuitID, exerciseID string) (*domain.Circuit, error)
	UpdateCircuit(ctx context.Context, userID, circuitID string, patch domain.CircuitPatch) (*domain.Circuit, error)
	// DeleteCircuit drops the circuit and its header. Members stay in the
	// workout as standalone exercises.
	DeleteCircuit(ctx context.Context, userID, circuitID string) error
}

type circuitService struct {
	*Content
}

func NewCircuitService(content *Content) CircuitService {
	return &circuitService{Content: content}
}

func (s *circuitService) CreateCircuit(ctx context.Context, userID, workoutID string, in domain.NewCircuit) (*domain.Circuit, error) {
	if in.Kind != "" && !in.Kind.Valid() {
		return nil, validationError("unknown circuit kind %q", in.Kind)
	}
	in = in.WithDefaults()
	if err := validateStruct(s.validate, in); err != nil {
		return nil, err
	}
	if in.Kind == domain.KindSuperset && len(in.ExerciseIDs) != 2 {
		return nil, validationError("a superset needs exactly two exercises")
	}

	unlock := s.lock(workoutID)
	defer unlock()

	w, _, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	full, err := s.loadWorkout(ctx, w)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(in.ExerciseIDs))
	for _, id := range in.ExerciseIDs {
		if _, dup := seen[id]; dup {
			return nil, validationError("exercise %s listed twice", id)
		}
		seen[id] = struct{}{}
		if err := checkMemberCandidate(full, id); err != nil {
			return nil, err
		}
	}

	var circuitID string
	err = s.runCascade(ctx, "circuit", func(ctx context.Context, cs *cascade) error {
		circuit := &domain.Circuit{
			WorkoutID:            workoutID,
			Name:                 in.Name,
			Kind:                 in.Kind,
			Rounds:               in.Rounds,
			RestBetweenExercises: in.RestBetweenExercises,
			RestBetweenRounds:    in.RestBetweenRounds,
		}
		id, err := s.repos.Circuits.Create(ctx, circuit)
		if err != nil {
			return fmt.Errorf("create circuit: %w", err)
		}
		cs.track(s.repos.Circuits.DeleteMany, id)
		circuitID = id

		_, err = s.createExercise(ctx, cs, domain.Exercise{
			WorkoutID:  workoutID,
			Name:       in.Name,
			OrderIndex: nextOrder(full.Exercises, func(e domain.Exercise) int { return e.OrderIndex }),
			IsCircuit:  true,
			CircuitID:  id,
		}, nil)
		if err != nil {
			return err
		}
		for i, exerciseID := range in.ExerciseIDs {
			if err := s.addMember(ctx, cs, workoutID, id, exerciseID, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateWorkout(w)
	return s.circuitView(ctx, circuitID)
}

func (s *circuitService) CreateSuperset(ctx context.Context, userID, workoutID string, exerciseIDs []string) (*domain.Circuit, error) {
	return s.CreateCircuit(ctx, userID, workoutID, domain.NewCircuit{Kind: domain.KindSuperset, ExerciseIDs: exerciseIDs})
}

func (s *circuitService) CreateEMOM(ctx context.Context, userID, workoutID string, exerciseIDs []string) (*domain.Circuit, error) {
	return s.CreateCircuit(ctx, userID, workoutID, domain.NewCircuit{Kind: domain.KindEMOM, ExerciseIDs: exerciseIDs})
}

func (s *circuitService) CreateAMRAP(ctx context.Context, userID, workoutID string, exerciseIDs []string) (*domain.Circuit, error) {
	return s.CreateCircuit(ctx, userID, workoutID, domain.NewCircuit{Kind: domain.KindAMRAP, ExerciseIDs: exerciseIDs})
}

func (s *circuitService) CreateTabata(ctx context.Context, userID, workoutID string, exerciseIDs []string) (*domain.Circuit, error) {
	return s.CreateCircuit(ctx, userID, workoutID, domain.NewCircuit{Kind: domain.KindTabata, ExerciseIDs: exerciseIDs})
}

func (s *circuitService) AddExerciseToCircuit(ctx context.Context, userID, circuitID, exerciseID string) (*domain.Circuit, error) {
	circuit, w, err := s.ownedCircuit(ctx, userID, circuitID)
	if err != nil {
		return nil, err
	}
	unlock := s.lock(circuit.WorkoutID)
	defer unlock()

	full, err := s.loadWorkout(ctx, w)
	if err != nil {
		return nil, err
	}
	if err := checkMemberCandidate(full, exerciseID); err != nil {
		return nil, err
	}
	if _, ok := full.Circuit(circuitID); !ok {
		return nil, ErrCircuitNotFound
	}
	members, err := s.repos.Circuits.ListMembers(ctx, []string{circuitID})
	if err != nil {
		return nil, fmt.Errorf("list circuit members: %w", err)
	}
	order := nextOrder(members, func(m domain.CircuitMembership) int { return m.Order })

	err = s.runCascade(ctx, "circuit_member", func(ctx context.Context, cs *cascade) error {
		return s.addMember(ctx, cs, circuit.WorkoutID, circuitID, exerciseID, order)
	})
	if err != nil {
		return nil, err
	}
	s.invalidateWorkout(w)
	return s.circuitView(ctx, circuitID)
}

// RemoveExerciseFromCircuit deletes the membership row. The exercise keeps
// its place in the workout.
func (s *circuitService) RemoveExerciseFromCircuit(ctx context.Context, userID, circuitID, exerciseID string) (*domain.Circuit, error) {
	circuit, w, err := s.ownedCircuit(ctx, userID, circuitID)
	if err != nil {
		return nil, err
	}
	unlock := s.lock(circuit.WorkoutID)
	defer unlock()

	members, err := s.repos.Circuits.ListMembers(ctx, []string{circuitID})
	if err != nil {
		return nil, fmt.Errorf("list circuit members: %w", err)
	}
	found := false
	for _, m := range members {
		if m.ExerciseID == exerciseID {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrNotInCircuit
	}
	if err := s.repos.Circuits.RemoveMembers(ctx, []string{exerciseID}); err != nil {
		return nil, fmt.Errorf("remove circuit member: %w", err)
	}
	s.invalidateWorkout(w)
	return s.circuitView(ctx, circuitID)
}

func (s *circuitService) UpdateCircuit(ctx context.Context, userID, circuitID string, patch domain.CircuitPatch) (*domain.Circuit, error) {
	if err := validateStruct(s.validate, patch); err != nil {
		return nil, err
	}
	unlock := s.lock(circuitID)
	defer unlock()

	_, w, err := s.ownedCircuit(ctx, userID, circuitID)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.circuitView(ctx, circuitID)
	}
	err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.repos.Circuits.Update(ctx, circuitID, patch); err != nil {
			return notFound(err, ErrCircuitNotFound, "update circuit")
		}
		if patch.Name == nil {
			return nil
		}
		// the header carries the circuit name in the exercise list
		header, err := s.circuitHeader(ctx, w.ID, circuitID)
		if err != nil || header == nil {
			return err
		}
		return s.repos.Exercises.Update(ctx, header.ID, domain.ExercisePatch{Name: patch.Name})
	})
	if err != nil {
		return nil, err
	}
	s.invalidateWorkout(w)
	return s.circuitView(ctx, circuitID)
}

func (s *circuitService) DeleteCircuit(ctx context.Context, userID, circuitID string) error {
	circuit, w, err := s.ownedCircuit(ctx, userID, circuitID)
	if err != nil {
		return err
	}
	unlock := s.lock(circuit.WorkoutID, circuitID)
	defer unlock()

	err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.repos.Circuits.RemoveCircuitMembers(ctx, []string{circuitID}); err != nil {
			return fmt.Errorf("remove circuit members: %w", err)
		}
		header, err := s.circuitHeader(ctx, circuit.WorkoutID, circuitID)
		if err != nil {
			return err
		}
		if header != nil {
			if err := s.deleteExercises(ctx, []string{header.ID}); err != nil {
				return err
			}
		}
		if err := s.repos.Circuits.DeleteMany(ctx, []string{circuitID}); err != nil {
			return fmt.Errorf("delete circuit: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidateWorkout(w)
	return nil
}

func (c *Content) addMember(ctx context.Context, cs *cascade, workoutID, circuitID, exerciseID string, order int) error {
	err := c.repos.Circuits.AddMember(ctx, workoutID, domain.CircuitMembership{
		CircuitID:  circuitID,
		ExerciseID: exerciseID,
		Order:      order,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrAlreadyInCircuit
	}
	if err != nil {
		return fmt.Errorf("add circuit member: %w", err)
	}
	cs.onFail(func(ctx context.Context) error {
		return c.repos.Circuits.RemoveMembers(ctx, []string{exerciseID})
	})
	return nil
}

func (c *Content) circuitHeader(ctx context.Context, workoutID, circuitID string) (*domain.Exercise, error) {
	exercises, err := c.repos.Exercises.ListByWorkouts(ctx, []string{workoutID})
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	for i := range exercises {
		if exercises[i].IsCircuit && exercises[i].CircuitID == circuitID {
			return &exercises[i], nil
		}
	}
	return nil, nil
}

// circuitView reads the circuit with its member list.
func (c *Content) circuitView(ctx context.Context, circuitID string) (*domain.Circuit, error) {
	circuit, err := c.repos.Circuits.GetByID(ctx, circuitID)
	if err != nil {
		return nil, notFound(err, ErrCircuitNotFound, "get circuit")
	}
	w, err := c.repos.Workouts.GetByID(ctx, circuit.WorkoutID)
	if err != nil {
		return nil, notFound(err, ErrCircuitNotFound, "get workout")
	}
	full, err := c.loadWorkout(ctx, w)
	if err != nil {
		return nil, err
	}
	view, ok := full.Circuit(circuitID)
	if !ok {
		return nil, ErrCircuitNotFound
	}
	return view, nil
}

// checkMemberCandidate verifies the exercise belongs to the workout, is not
// a circuit header and is not already in a circuit.
func checkMemberCandidate(w *domain.Workout, exerciseID string) error {
	ex, ok := w.Exercise(exerciseID)
	if !ok {
		return fmt.Errorf("%w: exercise %s is not part of the workout", ErrValidation, exerciseID)
	}
	if ex.IsCircuit {
		return validationError("a circuit header cannot join a circuit")
	}
	if ex.IsInCircuit {
		return ErrAlreadyInCircuit
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
)

type WeekService interface {
	// AddWeek appends a week with its first workout, exercise and set. An
	// empty name becomes "Week N".
	AddWeek(ctx context.Context, userID, programID, name string) (*domain.WorkoutWeek, error)
	UpdateWeek(ctx context.Context, userID, weekID string, patch domain.WeekPatch) (*domain.WorkoutWeek, error)
	DeleteWeek(ctx context.Context, userID, weekID string) error
	ReorderWeeks(ctx context.Context, userID, programID string, weekIDs []string) error
}

type weekService struct {
	*Content
}

func NewWeekService(content *Content) WeekService {
	return &weekService{Content: content}
}

func (s *weekService) AddWeek(ctx context.Context, userID, programID, name string) (*domain.WorkoutWeek, error) {
	unlock := s.lock(programID)
	defer unlock()

	if _, err := s.ownedProgram(ctx, userID, programID); err != nil {
		return nil, err
	}
	weeks, err := s.repos.Weeks.ListByProgram(ctx, programID)
	if err != nil {
		return nil, fmt.Errorf("list weeks: %w", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = weekName(len(weeks) + 1)
	}

	var week *domain.WorkoutWeek
	err = s.runCascade(ctx, "week", func(ctx context.Context, cs *cascade) error {
		created, _, err := s.createWeekChain(ctx, cs, domain.WorkoutWeek{
			ProgramID:  programID,
			Name:       name,
			OrderIndex: nextOrder(weeks, func(w domain.WorkoutWeek) int { return w.OrderIndex }),
		})
		week = created
		return err
	})
	if err != nil {
		return nil, err
	}
	return week, nil
}

func (s *weekService) UpdateWeek(ctx context.Context, userID, weekID string, patch domain.WeekPatch) (*domain.WorkoutWeek, error) {
	if err := validateStruct(s.validate, patch); err != nil {
		return nil, err
	}
	unlock := s.lock(weekID)
	defer unlock()

	if _, _, err := s.ownedWeek(ctx, userID, weekID); err != nil {
		return nil, err
	}
	if !patch.IsEmpty() {
		if err := s.repos.Weeks.Update(ctx, weekID, patch); err != nil {
			return nil, notFound(err, ErrWeekNotFound, "update week")
		}
	}
	week, err := s.repos.Weeks.GetByID(ctx, weekID)
	if err != nil {
		return nil, notFound(err, ErrWeekNotFound, "get week")
	}
	return week, nil
}

// DeleteWeek removes the week and every workout scheduled in it.
func (s *weekService) DeleteWeek(ctx context.Context, userID, weekID string) error {
	week, _, err := s.ownedWeek(ctx, userID, weekID)
	if err != nil {
		return err
	}
	unlock := s.lock(week.ProgramID, weekID)
	defer unlock()

	return s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		workouts, err := s.repos.Workouts.ListByProgram(ctx, week.ProgramID)
		if err != nil {
			return fmt.Errorf("list workouts: %w", err)
		}
		var inWeek []string
		for _, w := range workouts {
			if w.WeekID == weekID {
				inWeek = append(inWeek, w.ID)
			}
		}
		if err := s.deleteWorkouts(ctx, inWeek); err != nil {
			return err
		}
		if err := s.repos.Weeks.DeleteMany(ctx, []string{weekID}); err != nil {
			return fmt.Errorf("delete week: %w", err)
		}
		return nil
	})
}

// ReorderWeeks assigns order indexes following weekIDs. The list must name
// every week of the program exactly once.
func (s *weekService) ReorderWeeks(ctx context.Context, userID, programID string, weekIDs []string) error {
	unlock := s.lock(programID)
	defer unlock()

	if _, err := s.ownedProgram(ctx, userID, programID); err != nil {
		return err
	}
	weeks, err := s.repos.Weeks.ListByProgram(ctx, programID)
	if err != nil {
		return fmt.Errorf("list weeks: %w", err)
	}
	if err := samePermutation(weekIDs, ids(weeks, func(w domain.WorkoutWeek) string { return w.ID })); err != nil {
		return err
	}
	return s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		for i, id := range weekIDs {
			order := i
			if err := s.repos.Weeks.Update(ctx, id, domain.WeekPatch{OrderIndex: &order}); err != nil {
				return fmt.Errorf("reorder week %s: %w", id, err)
			}
		}
		return nil
	})
}

// samePermutation checks that got lists exactly the ids of want.
func samePermutation(got, want []string) error {
	if len(got) != len(want) {
		return validationError("expected %d ids, got %d", len(want), len(got))
	}
	remaining := make(map[string]struct{}, len(want))
	for _, id := range want {
		remaining[id] = struct{}{}
	}
	for _, id := range got {
		if _, ok := remaining[id]; !ok {
			return validationError("unknown or repeated id %q", id)
		}
		delete(remaining, id)
	}
	return nil
}

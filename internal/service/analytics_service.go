package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
)

const topExercises = 5

type ExerciseCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Summary struct {
	TotalWorkouts     int             `json:"totalWorkouts"`
	TotalMinutes      int             `json:"totalMinutes"`
	CurrentStreak     int             `json:"currentStreak"`
	LongestStreak     int             `json:"longestStreak"`
	MostUsedExercises []ExerciseCount `json:"mostUsedExercises"`
	LastWorkoutAt     *time.Time      `json:"lastWorkoutAt,omitempty"`
}

type AnalyticsService interface {
	// LogWorkout records a completed workout with a snapshot of its exercise names.
	LogWorkout(ctx context.Context, userID, workoutID string, durationMinutes int, completedAt time.Time) (*domain.WorkoutLog, error)
	ListLogs(ctx context.Context, userID string) ([]domain.WorkoutLog, error)
	Summary(ctx context.Context, userID string, now time.Time) (*Summary, error)
}

type analyticsService struct {
	*Content
	logs repository.WorkoutLogRepository
}

func NewAnalyticsService(content *Content, logs repository.WorkoutLogRepository) AnalyticsService {
	return &analyticsService{Content: content, logs: logs}
}

func (s *analyticsService) LogWorkout(ctx context.Context, userID, workoutID string, durationMinutes int, completedAt time.Time) (*domain.WorkoutLog, error) {
	if durationMinutes < 0 {
		return nil, validationError("duration cannot be negative")
	}
	if completedAt.IsZero() {
		completedAt = time.Now()
	}
	w, err := s.readableWorkout(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(w.Exercises))
	for _, ex := range w.Exercises {
		if ex.IsCircuit || ex.IsGroup {
			continue
		}
		names = append(names, ex.Name)
	}
	entry := &domain.WorkoutLog{
		UserID:          userID,
		WorkoutID:       workoutID,
		WorkoutName:     w.Name,
		ExerciseNames:   names,
		DurationMinutes: durationMinutes,
		CompletedAt:     completedAt.UTC(),
	}
	if _, err := s.logs.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create workout log: %w", err)
	}
	return entry, nil
}

func (s *analyticsService) ListLogs(ctx context.Context, userID string) ([]domain.WorkoutLog, error) {
	logs, err := s.logs.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list workout logs: %w", err)
	}
	return logs, nil
}

func (s *analyticsService) Summary(ctx context.Context, userID string, now time.Time) (*Summary, error) {
	logs, err := s.ListLogs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Summarize(logs, now), nil
}

// Summarize computes the summary of a user's logs. Streaks count consecutive
// UTC days with at least one log; the current streak ends today, or
// yesterday when nothing was logged today yet.
func Summarize(logs []domain.WorkoutLog, now time.Time) *Summary {
	sum := &Summary{MostUsedExercises: []ExerciseCount{}}
	counts := map[string]int{}
	days := map[time.Time]struct{}{}
	for _, l := range logs {
		sum.TotalWorkouts++
		sum.TotalMinutes += l.DurationMinutes
		for _, name := range l.ExerciseNames {
			counts[name]++
		}
		days[utcDay(l.CompletedAt)] = struct{}{}
		if sum.LastWorkoutAt == nil || l.CompletedAt.After(*sum.LastWorkoutAt) {
			at := l.CompletedAt
			sum.LastWorkoutAt = &at
		}
	}

	for name, n := range counts {
		sum.MostUsedExercises = append(sum.MostUsedExercises, ExerciseCount{Name: name, Count: n})
	}
	slices.SortFunc(sum.MostUsedExercises, func(a, b ExerciseCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if len(sum.MostUsedExercises) > topExercises {
		sum.MostUsedExercises = sum.MostUsedExercises[:topExercises]
	}

	sorted := make([]time.Time, 0, len(days))
	for d := range days {
		sorted = append(sorted, d)
	}
	slices.SortFunc(sorted, func(a, b time.Time) int { return a.Compare(b) })
	run := 0
	for i, d := range sorted {
		if i > 0 && sorted[i-1].AddDate(0, 0, 1).Equal(d) {
			run++
		} else {
			run = 1
		}
		sum.LongestStreak = max(sum.LongestStreak, run)
	}

	day := utcDay(now)
	if _, ok := days[day]; !ok {
		day = day.AddDate(0, 0, -1)
	}
	for {
		if _, ok := days[day]; !ok {
			break
		}
		sum.CurrentStreak++
		day = day.AddDate(0, 0, -1)
	}
	return sum
}

func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

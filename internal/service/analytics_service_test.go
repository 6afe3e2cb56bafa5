package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/service"
)

func day(d, hour int) time.Time {
	return time.Date(2026, time.May, d, hour, 0, 0, 0, time.UTC)
}

func logAt(at time.Time, minutes int, names ...string) domain.WorkoutLog {
	return domain.WorkoutLog{CompletedAt: at, DurationMinutes: minutes, ExerciseNames: names}
}

func TestSummarize(t *testing.T) {
	logs := []domain.WorkoutLog{
		logAt(day(1, 8), 30, "Squat", "Bench"),
		logAt(day(2, 8), 45, "Squat"),
		logAt(day(3, 8), 20, "Deadlift"),
		logAt(day(3, 19), 10, "Squat"),
		logAt(day(7, 8), 60, "Row", "Press", "Curl", "Bench"),
		logAt(day(8, 23), 40, "Squat", "Row"),
	}

	tests := []struct {
		name    string
		now     time.Time
		current int
	}{
		{name: "logged today", now: day(8, 23), current: 2},
		{name: "nothing yet today", now: day(9, 7), current: 2},
		{name: "streak broken", now: day(10, 7), current: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := service.Summarize(logs, tt.now)
			assert.Equal(t, 6, sum.TotalWorkouts)
			assert.Equal(t, 205, sum.TotalMinutes)
			assert.Equal(t, 3, sum.LongestStreak)
			assert.Equal(t, tt.current, sum.CurrentStreak)
			require.NotNil(t, sum.LastWorkoutAt)
			assert.Equal(t, day(8, 23), *sum.LastWorkoutAt)

			assert.Equal(t, []service.ExerciseCount{
				{Name: "Squat", Count: 4},
				{Name: "Bench", Count: 2},
				{Name: "Row", Count: 2},
				{Name: "Curl", Count: 1},
				{Name: "Deadlift", Count: 1},
			}, sum.MostUsedExercises)
		})
	}
}

func TestSummarize_Empty(t *testing.T) {
	sum := service.Summarize(nil, day(1, 0))
	assert.Zero(t, sum.TotalWorkouts)
	assert.Zero(t, sum.CurrentStreak)
	assert.Nil(t, sum.LastWorkoutAt)
	assert.NotNil(t, sum.MostUsedExercises)
}

func TestAnalytics_LogWorkout(t *testing.T) {
	e := newTestEnv(t)
	analytics := service.NewAnalyticsService(e.content, e.store.WorkoutLogs())
	w, _ := e.workoutWithExercises(t, "Squat", "Bench")

	entry, err := analytics.LogWorkout(e.ctx, owner, w.ID, 50, day(4, 6))
	require.NoError(t, err)
	assert.Equal(t, w.Name, entry.WorkoutName)
	assert.Subset(t, entry.ExerciseNames, []string{"Squat", "Bench"})

	_, err = analytics.LogWorkout(e.ctx, owner, w.ID, -1, time.Time{})
	assert.ErrorIs(t, err, service.ErrValidation)
	_, err = analytics.LogWorkout(e.ctx, stranger, w.ID, 30, time.Time{})
	assert.ErrorIs(t, err, service.ErrAccessDenied)
	_, err = analytics.LogWorkout(e.ctx, owner, "missing", 30, time.Time{})
	assert.ErrorIs(t, err, service.ErrWorkoutNotFound)

	sum, err := analytics.Summary(e.ctx, owner, day(4, 20))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.TotalWorkouts)
	assert.Equal(t, 50, sum.TotalMinutes)
	assert.Equal(t, 1, sum.CurrentStreak)

	others, err := analytics.ListLogs(e.ctx, stranger)
	require.NoError(t, err)
	assert.Empty(t, others)
}

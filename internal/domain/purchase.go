package domain

import (
	"time"
)

// ContentType distinguishes what a purchase or share refers to.
type ContentType string

const (
	ContentWorkout ContentType = "workout"
	ContentProgram ContentType = "program"
)

// Purchase records that a user bought a workout or program. Payment itself
// happens outside this service.
type Purchase struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	ContentType ContentType `json:"contentType"`
	ContentID   string      `json:"contentId"`
	AmountPaid  float64     `json:"amountPaid"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// WorkoutLog is one completed workout, used for analytics.
type WorkoutLog struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	WorkoutID       string    `json:"workoutId"`
	WorkoutName     string    `json:"workoutName"`
	ExerciseNames   []string  `json:"exerciseNames"`
	DurationMinutes int       `json:"durationMinutes"`
	CompletedAt     time.Time `json:"completedAt"`
}

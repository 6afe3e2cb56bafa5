package domain

import (
	"time"
)

// WorkoutPhase describes how far a workout has been built out.
type WorkoutPhase string

const (
	PhaseEmpty            WorkoutPhase = "empty"
	PhasePopulated        WorkoutPhase = "populated"
	PhaseCircuitAugmented WorkoutPhase = "circuit_augmented"
	// PhaseDeleted is only reported by editor sessions, for workouts removed
	// while the session was open.
	PhaseDeleted WorkoutPhase = "deleted"
)

// Workout is a single training session inside a week.
type Workout struct {
	ID            string     `json:"id"`
	ProgramID     string     `json:"programId"`
	WeekID        string     `json:"weekId,omitempty"`
	Name          string     `json:"name"`
	Day           int        `json:"day"`
	OrderIndex    int        `json:"orderIndex"`
	Exercises     []Exercise `json:"exercises"`
	Circuits      []Circuit  `json:"circuits"`
	IsPurchasable bool       `json:"isPurchasable"`
	Price         float64    `json:"price"`
	Slug          string     `json:"slug,omitempty"`
	Saved         bool       `json:"saved"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Phase reports the workout's build-out state.
func (w *Workout) Phase() WorkoutPhase {
	switch {
	case len(w.Circuits) > 0:
		return PhaseCircuitAugmented
	case len(w.Exercises) > 0:
		return PhasePopulated
	default:
		return PhaseEmpty
	}
}

// Exercise returns the exercise with the given id.
func (w *Workout) Exercise(id string) (*Exercise, bool) {
	for i := range w.Exercises {
		if w.Exercises[i].ID == id {
			return &w.Exercises[i], true
		}
	}
	return nil, false
}

// Circuit returns the circuit with the given id.
func (w *Workout) Circuit(id string) (*Circuit, bool) {
	for i := range w.Circuits {
		if w.Circuits[i].ID == id {
			return &w.Circuits[i], true
		}
	}
	return nil, false
}

// WorkoutPatch lists the workout fields that can be updated.
type WorkoutPatch struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Day    *int    `json:"day,omitempty"`
	WeekID *string `json:"weekId,omitempty"`
	Saved  *bool   `json:"saved,omitempty"`
}

func (p WorkoutPatch) IsEmpty() bool {
	return p.Name == nil && p.Day == nil && p.WeekID == nil && p.Saved == nil
}

package domain

import (
	"time"
)

// WeightUnit is the unit weights are displayed in.
type WeightUnit string

const (
	WeightUnitLbs WeightUnit = "lbs"
	WeightUnitKgs WeightUnit = "kgs"
)

// EffortUnit is the scale used for the intensity column.
type EffortUnit string

const (
	EffortUnitRPE EffortUnit = "rpe"
	EffortUnitRIR EffortUnit = "rir"
)

// DisplaySettings are the per-program sheet preferences. They are persisted
// as a JSON blob on the program record.
type DisplaySettings struct {
	WeightUnit WeightUnit `json:"weightUnit"`
	EffortUnit EffortUnit `json:"effortUnit"`
	ShowWeight bool       `json:"showWeight"`
	ShowEffort bool       `json:"showEffort"`
	ShowRest   bool       `json:"showRest"`
	ShowNotes  bool       `json:"showNotes"`
}

// DefaultDisplaySettings returns the settings a new program starts with.
func DefaultDisplaySettings() DisplaySettings {
	return DisplaySettings{
		WeightUnit: WeightUnitLbs,
		EffortUnit: EffortUnitRPE,
		ShowWeight: true,
		ShowEffort: true,
		ShowRest:   true,
		ShowNotes:  true,
	}
}

// Normalize replaces unknown units with the defaults.
func (s DisplaySettings) Normalize() DisplaySettings {
	if s.WeightUnit != WeightUnitLbs && s.WeightUnit != WeightUnitKgs {
		s.WeightUnit = WeightUnitLbs
	}
	if s.EffortUnit != EffortUnitRPE && s.EffortUnit != EffortUnitRIR {
		s.EffortUnit = EffortUnitRPE
	}
	return s
}

// WorkoutProgram is a multi-week training program.
// Weeks are ordered by OrderIndex; Workouts is the flat list every week's
// Workouts id-list points into.
type WorkoutProgram struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	CreatorID      string          `json:"creatorId"`
	Weeks          []WorkoutWeek   `json:"weeks"`
	Workouts       []Workout       `json:"workouts"`
	IsPublic       bool            `json:"isPublic"`
	IsPurchasable  bool            `json:"isPurchasable"`
	Price          float64         `json:"price"`
	Slug           string          `json:"slug,omitempty"`
	Settings       DisplaySettings `json:"settings"`
	Saved          bool            `json:"saved"`
	LibraryWrapper bool            `json:"libraryWrapper"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Week returns the week with the given id.
func (p *WorkoutProgram) Week(id string) (*WorkoutWeek, bool) {
	for i := range p.Weeks {
		if p.Weeks[i].ID == id {
			return &p.Weeks[i], true
		}
	}
	return nil, false
}

// Workout returns the workout with the given id.
func (p *WorkoutProgram) Workout(id string) (*Workout, bool) {
	for i := range p.Workouts {
		if p.Workouts[i].ID == id {
			return &p.Workouts[i], true
		}
	}
	return nil, false
}

// WorkoutsOfWeek returns the workouts of a week in the week's order.
func (p *WorkoutProgram) WorkoutsOfWeek(weekID string) []Workout {
	week, ok := p.Week(weekID)
	if !ok {
		return nil
	}
	out := make([]Workout, 0, len(week.Workouts))
	for _, id := range week.Workouts {
		if w, ok := p.Workout(id); ok {
			out = append(out, *w)
		}
	}
	return out
}

// Exercise finds an exercise anywhere in the program.
func (p *WorkoutProgram) Exercise(id string) (*Exercise, *Workout, bool) {
	for i := range p.Workouts {
		if ex, ok := p.Workouts[i].Exercise(id); ok {
			return ex, &p.Workouts[i], true
		}
	}
	return nil, nil, false
}

// Set finds a set anywhere in the program.
func (p *WorkoutProgram) Set(id string) (*Set, *Exercise, bool) {
	for i := range p.Workouts {
		for j := range p.Workouts[i].Exercises {
			ex := &p.Workouts[i].Exercises[j]
			for k := range ex.Sets {
				if ex.Sets[k].ID == id {
					return &ex.Sets[k], ex, true
				}
			}
		}
	}
	return nil, nil, false
}

// Circuit finds a circuit anywhere in the program.
func (p *WorkoutProgram) Circuit(id string) (*Circuit, *Workout, bool) {
	for i := range p.Workouts {
		if c, ok := p.Workouts[i].Circuit(id); ok {
			return c, &p.Workouts[i], true
		}
	}
	return nil, nil, false
}

// WorkoutWeek is one week of a program.
type WorkoutWeek struct {
	ID         string    `json:"id"`
	ProgramID  string    `json:"programId"`
	Name       string    `json:"name"`
	OrderIndex int       `json:"orderIndex"`
	Workouts   []string  `json:"workouts"`
	Saved      bool      `json:"saved"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ProgramPatch lists the program fields that can be updated. Nil fields are
// left untouched.
type ProgramPatch struct {
	Name          *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	IsPublic      *bool            `json:"isPublic,omitempty"`
	IsPurchasable *bool            `json:"isPurchasable,omitempty"`
	Price         *float64         `json:"price,omitempty" validate:"omitempty,gte=0"`
	Settings      *DisplaySettings `json:"settings,omitempty"`
	Saved         *bool            `json:"saved,omitempty"`
}

func (p ProgramPatch) IsEmpty() bool {
	return p.Name == nil && p.IsPublic == nil && p.IsPurchasable == nil &&
		p.Price == nil && p.Settings == nil && p.Saved == nil
}

// WeekPatch lists the week fields that can be updated.
type WeekPatch struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	OrderIndex *int    `json:"orderIndex,omitempty"`
	Saved      *bool   `json:"saved,omitempty"`
}

func (p WeekPatch) IsEmpty() bool {
	return p.Name == nil && p.OrderIndex == nil && p.Saved == nil
}

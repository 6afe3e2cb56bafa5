package service

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
)

// For TOML parsing only.

type programTOML struct {
	Name     string       `toml:"name"`
	Settings settingsTOML `toml:"settings"`
	Weeks    []weekTOML   `toml:"week"`
}

type settingsTOML struct {
	WeightUnit string `toml:"weight_unit"`
	EffortUnit string `toml:"effort_unit"`
	HideWeight bool   `toml:"hide_weight"`
	HideEffort bool   `toml:"hide_effort"`
	HideRest   bool   `toml:"hide_rest"`
	HideNotes  bool   `toml:"hide_notes"`
}

type weekTOML struct {
	Name     string        `toml:"name"`
	Workouts []workoutTOML `toml:"workout"`
}

type workoutTOML struct {
	Name      string         `toml:"name"`
	Day       int            `toml:"day"`
	Exercises []exerciseTOML `toml:"exercise"`
	Circuits  []circuitTOML  `toml:"circuit"`
}

type exerciseTOML struct {
	Name    string    `toml:"name"`
	Notes   string    `toml:"notes"`
	Circuit string    `toml:"circuit"` // label of the circuit the exercise belongs to
	Sets    []setTOML `toml:"set"`
	// Shorthand: count sets with the same reps/weight.
	SetCount int    `toml:"sets"`
	Reps     string `toml:"reps"`
	Weight   string `toml:"weight"`
	RPE      string `toml:"rpe"`
	Rest     string `toml:"rest"`
}

type setTOML struct {
	Reps          string `toml:"reps"`
	Weight        string `toml:"weight"`
	Intensity     string `toml:"intensity"`
	IntensityType string `toml:"intensity_type"`
	WeightType    string `toml:"weight_type"`
	Rest          string `toml:"rest"`
}

type circuitTOML struct {
	Label                string `toml:"label"`
	Kind                 string `toml:"kind"`
	Name                 string `toml:"name"`
	Rounds               string `toml:"rounds"`
	RestBetweenExercises string `toml:"rest_between_exercises"`
	RestBetweenRounds    string `toml:"rest_between_rounds"`
}

// ParseProgramTOML decodes a program definition into an unsaved program
// tree. Ids in the tree are placeholders that only link its parts.
//
//	name = "Strength Block"
//	[[week]]
//	name = "Week 1"
//	  [[week.workout]]
//	  name = "Push"
//	  day = 1
//	    [[week.workout.exercise]]
//	    name = "Bench Press"
//	    sets = 3
//	    reps = "8"
//	    weight = "135"
func ParseProgramTOML(data []byte) (*domain.WorkoutProgram, error) {
	var def programTOML
	if err := toml.Unmarshal(data, &def); err != nil {
		return nil, validationError("parse program toml: %v", err)
	}
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" {
		return nil, validationError("program name is required")
	}
	if len(def.Weeks) == 0 {
		return nil, validationError("program %q has no weeks", def.Name)
	}

	program := &domain.WorkoutProgram{
		Name: def.Name,
		Settings: domain.DisplaySettings{
			WeightUnit: domain.WeightUnit(strings.ToLower(def.Settings.WeightUnit)),
			EffortUnit: domain.EffortUnit(strings.ToLower(def.Settings.EffortUnit)),
			ShowWeight: !def.Settings.HideWeight,
			ShowEffort: !def.Settings.HideEffort,
			ShowRest:   !def.Settings.HideRest,
			ShowNotes:  !def.Settings.HideNotes,
		}.Normalize(),
	}

	for wi, wk := range def.Weeks {
		week := domain.WorkoutWeek{
			ID:         fmt.Sprintf("week-%d", wi),
			Name:       strings.TrimSpace(wk.Name),
			OrderIndex: wi,
		}
		if week.Name == "" {
			week.Name = weekName(wi + 1)
		}
		for di, wd := range wk.Workouts {
			w, err := workoutFromTOML(wd, fmt.Sprintf("%s-workout-%d", week.ID, di))
			if err != nil {
				return nil, fmt.Errorf("week %q: %w", week.Name, err)
			}
			w.WeekID, w.OrderIndex = week.ID, di
			week.Workouts = append(week.Workouts, w.ID)
			program.Workouts = append(program.Workouts, w)
		}
		program.Weeks = append(program.Weeks, week)
	}
	return program, nil
}

func workoutFromTOML(def workoutTOML, id string) (domain.Workout, error) {
	w := domain.Workout{ID: id, Name: strings.TrimSpace(def.Name), Day: def.Day}
	if w.Day <= 0 {
		w.Day = 1
	}
	if w.Name == "" {
		w.Name = fmt.Sprintf("Day %d", w.Day)
	}

	circuits := make(map[string]int, len(def.Circuits))
	for ci, c := range def.Circuits {
		if c.Label == "" {
			return w, validationError("workout %q: circuit %d has no label", w.Name, ci)
		}
		if _, dup := circuits[c.Label]; dup {
			return w, validationError("workout %q: circuit label %q repeated", w.Name, c.Label)
		}
		kind := domain.CircuitKind(strings.ToLower(c.Kind))
		if c.Kind != "" && !kind.Valid() {
			return w, validationError("workout %q: unknown circuit kind %q", w.Name, c.Kind)
		}
		nc := domain.NewCircuit{
			Kind:                 kind,
			Name:                 c.Name,
			Rounds:               c.Rounds,
			RestBetweenExercises: c.RestBetweenExercises,
			RestBetweenRounds:    c.RestBetweenRounds,
		}.WithDefaults()
		circuitID := fmt.Sprintf("%s-circuit-%d", id, ci)
		circuits[c.Label] = len(w.Circuits)
		w.Circuits = append(w.Circuits, domain.Circuit{
			ID:                   circuitID,
			Name:                 nc.Name,
			Kind:                 nc.Kind,
			Rounds:               nc.Rounds,
			RestBetweenExercises: nc.RestBetweenExercises,
			RestBetweenRounds:    nc.RestBetweenRounds,
		})
	}

	for ei, e := range def.Exercises {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return w, validationError("workout %q: exercise %d has no name", w.Name, ei)
		}
		ex := domain.Exercise{
			ID:         fmt.Sprintf("%s-exercise-%d", id, ei),
			Name:       name,
			Notes:      e.Notes,
			OrderIndex: ei,
			Sets:       setsFromTOML(e),
		}
		if e.Circuit != "" {
			idx, ok := circuits[e.Circuit]
			if !ok {
				return w, validationError("workout %q: exercise %q names unknown circuit %q", w.Name, name, e.Circuit)
			}
			w.Circuits[idx].Exercises = append(w.Circuits[idx].Exercises, ex.ID)
		}
		w.Exercises = append(w.Exercises, ex)
	}

	// every circuit gets a header after the exercises
	for ci, c := range w.Circuits {
		w.Exercises = append(w.Exercises, domain.Exercise{
			ID:         c.ID + "-header",
			Name:       c.Name,
			OrderIndex: len(def.Exercises) + ci,
			IsCircuit:  true,
			CircuitID:  c.ID,
		})
	}
	return w, nil
}

func setsFromTOML(e exerciseTOML) []domain.Set {
	var sets []domain.Set
	for _, st := range e.Sets {
		sets = append(sets, domain.Set{
			OrderIndex:    len(sets),
			Reps:          st.Reps,
			Weight:        st.Weight,
			Intensity:     st.Intensity,
			IntensityType: st.IntensityType,
			WeightType:    st.WeightType,
			Rest:          st.Rest,
		})
	}
	for i := 0; i < e.SetCount; i++ {
		set := domain.Set{OrderIndex: len(sets), Reps: e.Reps, Weight: e.Weight, Rest: e.Rest}
		if e.RPE != "" {
			set.Intensity, set.IntensityType = e.RPE, string(domain.EffortUnitRPE)
		}
		sets = append(sets, set)
	}
	return sets
}

package domain

// CircuitKind names the flavour of a circuit. All kinds share the Circuit
// shape; the kind only drives default naming and rounds.
type CircuitKind string

const (
	KindCircuit  CircuitKind = "circuit"
	KindSuperset CircuitKind = "superset"
	KindEMOM     CircuitKind = "emom"
	KindAMRAP    CircuitKind = "amrap"
	KindTabata   CircuitKind = "tabata"
)

// CircuitPreset holds the defaults applied when a circuit of a kind is created.
type CircuitPreset struct {
	Name                 string
	Rounds               string
	RestBetweenExercises string
	RestBetweenRounds    string
}

var circuitPresets = map[CircuitKind]CircuitPreset{
	KindCircuit:  {Name: "Circuit", Rounds: "3", RestBetweenExercises: "30", RestBetweenRounds: "60"},
	KindSuperset: {Name: "Superset", Rounds: "3", RestBetweenExercises: "0", RestBetweenRounds: "60"},
	KindEMOM:     {Name: "EMOM", Rounds: "10", RestBetweenExercises: "0", RestBetweenRounds: "0"},
	KindAMRAP:    {Name: "AMRAP", Rounds: "1", RestBetweenExercises: "0", RestBetweenRounds: "0"},
	KindTabata:   {Name: "Tabata", Rounds: "8", RestBetweenExercises: "10", RestBetweenRounds: "10"},
}

// Preset returns the defaults for the kind. Unknown kinds get the plain
// circuit defaults.
func (k CircuitKind) Preset() CircuitPreset {
	if p, ok := circuitPresets[k]; ok {
		return p
	}
	return circuitPresets[KindCircuit]
}

func (k CircuitKind) Valid() bool {
	_, ok := circuitPresets[k]
	return ok
}

// Circuit groups exercises that are performed back to back for a number of
// rounds. Exercises is derived from the membership rows, in circuit order.
type Circuit struct {
	ID                   string      `json:"id"`
	WorkoutID            string      `json:"workoutId"`
	Name                 string      `json:"name"`
	Kind                 CircuitKind `json:"kind"`
	Exercises            []string    `json:"exercises"`
	Rounds               string      `json:"rounds"`
	RestBetweenExercises string      `json:"restBetweenExercises"`
	RestBetweenRounds    string      `json:"restBetweenRounds"`
}

// CircuitMembership is the single source of truth for which exercise
// belongs to which circuit.
type CircuitMembership struct {
	CircuitID  string `json:"circuitId"`
	ExerciseID string `json:"exerciseId"`
	Order      int    `json:"order"`
}

// NewCircuit describes a circuit to be created. Empty strings fall back to
// the kind's preset.
type NewCircuit struct {
	Kind                 CircuitKind `json:"kind"`
	Name                 string      `json:"name" validate:"max=200"`
	Rounds               string      `json:"rounds"`
	RestBetweenExercises string      `json:"restBetweenExercises"`
	RestBetweenRounds    string      `json:"restBetweenRounds"`
	ExerciseIDs          []string    `json:"exerciseIds"`
}

// WithDefaults fills empty fields from the kind preset.
func (n NewCircuit) WithDefaults() NewCircuit {
	if !n.Kind.Valid() {
		n.Kind = KindCircuit
	}
	preset := n.Kind.Preset()
	if n.Name == "" {
		n.Name = preset.Name
	}
	if n.Rounds == "" {
		n.Rounds = preset.Rounds
	}
	if n.RestBetweenExercises == "" {
		n.RestBetweenExercises = preset.RestBetweenExercises
	}
	if n.RestBetweenRounds == "" {
		n.RestBetweenRounds = preset.RestBetweenRounds
	}
	return n
}

// CircuitPatch lists the circuit fields that can be updated.
type CircuitPatch struct {
	Name                 *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Rounds               *string `json:"rounds,omitempty"`
	RestBetweenExercises *string `json:"restBetweenExercises,omitempty"`
	RestBetweenRounds    *string `json:"restBetweenRounds,omitempty"`
}

func (p CircuitPatch) IsEmpty() bool {
	return p.Name == nil && p.Rounds == nil && p.RestBetweenExercises == nil && p.RestBetweenRounds == nil
}

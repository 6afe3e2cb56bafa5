package domain

// Exercise is one movement of a workout. Its role is one of:
// standalone, circuit header (IsCircuit), circuit member (IsInCircuit) or
// group header/member (IsGroup / GroupID).
//
// IsInCircuit, CircuitID and CircuitOrder of a member are a projection of
// the circuit membership rows and are never stored on the exercise itself.
type Exercise struct {
	ID           string `json:"id"`
	WorkoutID    string `json:"workoutId"`
	Name         string `json:"name"`
	Notes        string `json:"notes"`
	OrderIndex   int    `json:"orderIndex"`
	Sets         []Set  `json:"sets"`
	IsCircuit    bool   `json:"isCircuit"`
	CircuitID    string `json:"circuitId,omitempty"`
	IsInCircuit  bool   `json:"isInCircuit"`
	CircuitOrder int    `json:"circuitOrder,omitempty"`
	IsGroup      bool   `json:"isGroup"`
	GroupID      string `json:"groupId,omitempty"`
	MediaKey     string `json:"mediaKey,omitempty"`
}

// Set is a single prescribed set. All values are free-form strings so that
// ranges ("8-10") and per-set lists ("10,8,6") survive untouched.
type Set struct {
	ID            string `json:"id"`
	ExerciseID    string `json:"exerciseId"`
	OrderIndex    int    `json:"orderIndex"`
	Reps          string `json:"reps"`
	Weight        string `json:"weight"`
	Intensity     string `json:"intensity"`
	IntensityType string `json:"intensityType"`
	WeightType    string `json:"weightType"`
	Rest          string `json:"rest"`
}

// SetFields is the content of a set without identity.
type SetFields struct {
	Reps          string `json:"reps"`
	Weight        string `json:"weight"`
	Intensity     string `json:"intensity"`
	IntensityType string `json:"intensityType"`
	WeightType    string `json:"weightType"`
	Rest          string `json:"rest"`
}

func (f SetFields) IsEmpty() bool {
	return f == SetFields{}
}

// Fields strips identity from a set.
func (s Set) Fields() SetFields {
	return SetFields{
		Reps:          s.Reps,
		Weight:        s.Weight,
		Intensity:     s.Intensity,
		IntensityType: s.IntensityType,
		WeightType:    s.WeightType,
		Rest:          s.Rest,
	}
}

// NewExercise describes an exercise to be created. When Sets is empty a
// single blank set is created with it.
type NewExercise struct {
	Name    string      `json:"name" validate:"required,max=200"`
	Notes   string      `json:"notes"`
	IsGroup bool        `json:"isGroup"`
	GroupID string      `json:"groupId"`
	Sets    []SetFields `json:"sets"`
}

// ExercisePatch lists the exercise fields that can be updated.
type ExercisePatch struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Notes   *string `json:"notes,omitempty"`
	IsGroup *bool   `json:"isGroup,omitempty"`
	// GroupID set to "" removes the exercise from its group.
	GroupID  *string `json:"groupId,omitempty"`
	MediaKey *string `json:"-"`
}

func (p ExercisePatch) IsEmpty() bool {
	return p.Name == nil && p.Notes == nil && p.IsGroup == nil && p.GroupID == nil && p.MediaKey == nil
}

// SetPatch lists the set fields that can be updated.
type SetPatch struct {
	Reps          *string `json:"reps,omitempty"`
	Weight        *string `json:"weight,omitempty"`
	Intensity     *string `json:"intensity,omitempty"`
	IntensityType *string `json:"intensityType,omitempty"`
	WeightType    *string `json:"weightType,omitempty"`
	Rest          *string `json:"rest,omitempty"`
}

func (p SetPatch) IsEmpty() bool {
	return p.Reps == nil && p.Weight == nil && p.Intensity == nil &&
		p.IntensityType == nil && p.WeightType == nil && p.Rest == nil
}

// Apply returns the set with the patch applied.
func (p SetPatch) Apply(s Set) Set {
	if p.Reps != nil {
		s.Reps = *p.Reps
	}
	if p.Weight != nil {
		s.Weight = *p.Weight
	}
	if p.Intensity != nil {
		s.Intensity = *p.Intensity
	}
	if p.IntensityType != nil {
		s.IntensityType = *p.IntensityType
	}
	if p.WeightType != nil {
		s.WeightType = *p.WeightType
	}
	if p.Rest != nil {
		s.Rest = *p.Rest
	}
	return s
}

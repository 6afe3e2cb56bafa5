package mapper

import (
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
)

// --- Program ---

func ProgramFromRow(r ProgramRow) domain.WorkoutProgram {
	return domain.WorkoutProgram{
		ID:             Hex(r.ID),
		Name:           r.Name,
		CreatorID:      r.CreatorID,
		Weeks:          []domain.WorkoutWeek{},
		Workouts:       []domain.Workout{},
		IsPublic:       r.IsPublic,
		IsPurchasable:  r.IsPurchasable,
		Price:          r.Price,
		Slug:           r.Slug,
		Settings:       SettingsFromJSON(r.Settings),
		Saved:          r.Saved,
		LibraryWrapper: r.LibraryWrapper,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func ProgramToRow(p domain.WorkoutProgram) (ProgramRow, error) {
	id, err := optionalObjectID(p.ID)
	if err != nil {
		return ProgramRow{}, err
	}
	return ProgramRow{
		ID:             id,
		Name:           p.Name,
		CreatorID:      p.CreatorID,
		IsPublic:       p.IsPublic,
		IsPurchasable:  p.IsPurchasable,
		Price:          p.Price,
		Slug:           p.Slug,
		Settings:       SettingsToJSON(p.Settings),
		Saved:          p.Saved,
		LibraryWrapper: p.LibraryWrapper,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}, nil
}

// SettingsFromJSON decodes the settings blob. A missing or unreadable blob
// yields the defaults.
func SettingsFromJSON(blob string) domain.DisplaySettings {
	settings := domain.DefaultDisplaySettings()
	if blob == "" {
		return settings
	}
	if err := json.Unmarshal([]byte(blob), &settings); err != nil {
		return domain.DefaultDisplaySettings()
	}
	return settings.Normalize()
}

func SettingsToJSON(s domain.DisplaySettings) string {
	b, err := json.Marshal(s.Normalize())
	if err != nil {
		return ""
	}
	return string(b)
}

// --- Week ---

func WeekFromRow(r WeekRow) domain.WorkoutWeek {
	return domain.WorkoutWeek{
		ID:         Hex(r.ID),
		ProgramID:  Hex(r.ProgramID),
		Name:       r.Name,
		OrderIndex: r.OrderIndex,
		Workouts:   []string{},
		Saved:      r.Saved,
		CreatedAt:  r.CreatedAt,
	}
}

func WeekToRow(w domain.WorkoutWeek) (WeekRow, error) {
	id, err := optionalObjectID(w.ID)
	if err != nil {
		return WeekRow{}, err
	}
	programID, err := ParseID(w.ProgramID)
	if err != nil {
		return WeekRow{}, err
	}
	return WeekRow{
		ID:         id,
		ProgramID:  programID,
		Name:       w.Name,
		OrderIndex: w.OrderIndex,
		Saved:      w.Saved,
		CreatedAt:  w.CreatedAt,
	}, nil
}

// --- Workout ---

func WorkoutFromRow(r WorkoutRow) domain.Workout {
	return domain.Workout{
		ID:            Hex(r.ID),
		ProgramID:     Hex(r.ProgramID),
		WeekID:        Hex(r.WeekID),
		Name:          r.Name,
		Day:           r.Day,
		OrderIndex:    r.OrderIndex,
		Exercises:     []domain.Exercise{},
		Circuits:      []domain.Circuit{},
		IsPurchasable: r.IsPurchasable,
		Price:         r.Price,
		Slug:          r.Slug,
		Saved:         r.Saved,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func WorkoutToRow(w domain.Workout) (WorkoutRow, error) {
	id, err := optionalObjectID(w.ID)
	if err != nil {
		return WorkoutRow{}, err
	}
	programID, err := ParseID(w.ProgramID)
	if err != nil {
		return WorkoutRow{}, err
	}
	weekID, err := optionalObjectID(w.WeekID)
	if err != nil {
		return WorkoutRow{}, err
	}
	return WorkoutRow{
		ID:            id,
		ProgramID:     programID,
		WeekID:        weekID,
		Name:          w.Name,
		Day:           w.Day,
		OrderIndex:    w.OrderIndex,
		IsPurchasable: w.IsPurchasable,
		Price:         w.Price,
		Slug:          w.Slug,
		Saved:         w.Saved,
		CreatedAt:     w.CreatedAt,
		UpdatedAt:     w.UpdatedAt,
	}, nil
}

// --- Exercise ---

func ExerciseFromRow(r ExerciseRow) domain.Exercise {
	ex := domain.Exercise{
		ID:         Hex(r.ID),
		WorkoutID:  Hex(r.WorkoutID),
		Name:       r.Name,
		OrderIndex: r.OrderIndex,
		Sets:       []domain.Set{},
		IsCircuit:  r.IsCircuit,
		IsGroup:    r.IsGroup,
		GroupID:    hexPtr(r.GroupID),
		MediaKey:   r.MediaKey,
	}
	if r.Notes != nil {
		ex.Notes = *r.Notes
	}
	if r.IsCircuit {
		ex.CircuitID = hexPtr(r.CircuitID)
	}
	return ex
}

// ExerciseToRow drops the member projection; only a circuit header keeps
// its circuit id.
func ExerciseToRow(e domain.Exercise) (ExerciseRow, error) {
	id, err := optionalObjectID(e.ID)
	if err != nil {
		return ExerciseRow{}, err
	}
	workoutID, err := ParseID(e.WorkoutID)
	if err != nil {
		return ExerciseRow{}, err
	}
	groupID, err := OptionalID(e.GroupID)
	if err != nil {
		return ExerciseRow{}, err
	}
	row := ExerciseRow{
		ID:         id,
		WorkoutID:  workoutID,
		Name:       e.Name,
		OrderIndex: e.OrderIndex,
		IsCircuit:  e.IsCircuit,
		IsGroup:    e.IsGroup,
		GroupID:    groupID,
		MediaKey:   e.MediaKey,
	}
	if e.Notes != "" {
		notes := e.Notes
		row.Notes = &notes
	}
	if e.IsCircuit {
		if row.CircuitID, err = OptionalID(e.CircuitID); err != nil {
			return ExerciseRow{}, err
		}
	}
	return row, nil
}

// --- Set ---

func SetFromRow(r SetRow) domain.Set {
	return domain.Set{
		ID:            Hex(r.ID),
		ExerciseID:    Hex(r.ExerciseID),
		OrderIndex:    r.OrderIndex,
		Reps:          r.Reps,
		Weight:        r.Weight,
		Intensity:     r.Intensity,
		IntensityType: r.IntensityType,
		WeightType:    r.WeightType,
		Rest:          r.Rest,
	}
}

func SetToRow(s domain.Set) (SetRow, error) {
	id, err := optionalObjectID(s.ID)
	if err != nil {
		return SetRow{}, err
	}
	exerciseID, err := ParseID(s.ExerciseID)
	if err != nil {
		return SetRow{}, err
	}
	return SetRow{
		ID:            id,
		ExerciseID:    exerciseID,
		OrderIndex:    s.OrderIndex,
		Reps:          s.Reps,
		Weight:        s.Weight,
		Intensity:     s.Intensity,
		IntensityType: s.IntensityType,
		WeightType:    s.WeightType,
		Rest:          s.Rest,
	}, nil
}

// --- Circuit ---

func CircuitFromRow(r CircuitRow) domain.Circuit {
	kind := domain.CircuitKind(r.Kind)
	if !kind.Valid() {
		kind = domain.KindCircuit
	}
	return domain.Circuit{
		ID:                   Hex(r.ID),
		WorkoutID:            Hex(r.WorkoutID),
		Name:                 r.Name,
		Kind:                 kind,
		Exercises:            []string{},
		Rounds:               r.Rounds,
		RestBetweenExercises: r.RestBetweenExercises,
		RestBetweenRounds:    r.RestBetweenRounds,
	}
}

func CircuitToRow(c domain.Circuit) (CircuitRow, error) {
	id, err := optionalObjectID(c.ID)
	if err != nil {
		return CircuitRow{}, err
	}
	workoutID, err := ParseID(c.WorkoutID)
	if err != nil {
		return CircuitRow{}, err
	}
	return CircuitRow{
		ID:                   id,
		WorkoutID:            workoutID,
		Name:                 c.Name,
		Kind:                 string(c.Kind),
		Rounds:               c.Rounds,
		RestBetweenExercises: c.RestBetweenExercises,
		RestBetweenRounds:    c.RestBetweenRounds,
	}, nil
}

func MembershipFromRow(r CircuitExerciseRow) domain.CircuitMembership {
	return domain.CircuitMembership{
		CircuitID:  Hex(r.CircuitID),
		ExerciseID: Hex(r.ExerciseID),
		Order:      r.Order,
	}
}

// --- Profile ---

func ProfileFromRow(r ProfileRow) domain.Profile {
	return domain.Profile{
		ID:           Hex(r.ID),
		Name:         r.Name,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		AvatarURL:    r.AvatarURL,
		Bio:          r.Bio,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func ProfileToRow(p domain.Profile) (ProfileRow, error) {
	id, err := optionalObjectID(p.ID)
	if err != nil {
		return ProfileRow{}, err
	}
	return ProfileRow{
		ID:           id,
		Name:         p.Name,
		Username:     p.Username,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		AvatarURL:    p.AvatarURL,
		Bio:          p.Bio,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}, nil
}

// --- Purchases and logs ---

func PurchaseFromRow(r PurchaseRow) domain.Purchase {
	return domain.Purchase{
		ID:          Hex(r.ID),
		UserID:      r.UserID,
		ContentType: domain.ContentType(r.ContentType),
		ContentID:   r.ContentID,
		AmountPaid:  r.AmountPaid,
		CreatedAt:   r.CreatedAt,
	}
}

func WorkoutLogFromRow(r WorkoutLogRow) domain.WorkoutLog {
	names := r.ExerciseNames
	if names == nil {
		names = []string{}
	}
	return domain.WorkoutLog{
		ID:              Hex(r.ID),
		UserID:          r.UserID,
		WorkoutID:       r.WorkoutID,
		WorkoutName:     r.WorkoutName,
		ExerciseNames:   names,
		DurationMinutes: r.DurationMinutes,
		CompletedAt:     r.CompletedAt,
	}
}

func optionalObjectID(s string) (id primitive.ObjectID, err error) {
	if s == "" {
		return id, nil
	}
	return ParseID(s)
}

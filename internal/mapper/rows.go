// Package mapper converts stored rows (snake_case documents) into the
// camelCase domain entities and back, and assembles program trees.
package mapper

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProgramRow struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	CreatorID      string             `bson:"creator_id"`
	IsPublic       bool               `bson:"is_public"`
	IsPurchasable  bool               `bson:"is_purchasable"`
	Price          float64            `bson:"price"`
	Slug           string             `bson:"slug,omitempty"`
	Settings       string             `bson:"settings,omitempty"` // JSON blob
	Saved          bool               `bson:"saved"`
	LibraryWrapper bool               `bson:"library_wrapper"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

type WeekRow struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ProgramID  primitive.ObjectID `bson:"program_id"`
	Name       string             `bson:"name"`
	OrderIndex int                `bson:"order_index"`
	Saved      bool               `bson:"saved"`
	CreatedAt  time.Time          `bson:"created_at"`
}

type WorkoutRow struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	ProgramID     primitive.ObjectID `bson:"program_id"`
	WeekID        primitive.ObjectID `bson:"week_id,omitempty"`
	Name          string             `bson:"name"`
	Day           int                `bson:"day"`
	OrderIndex    int                `bson:"order_index"`
	IsPurchasable bool               `bson:"is_purchasable"`
	Price         float64            `bson:"price"`
	Slug          string             `bson:"slug,omitempty"`
	Saved         bool               `bson:"saved"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

// ExerciseRow stores only the circuit id of a circuit header. Member flags
// are derived from CircuitExerciseRow.
type ExerciseRow struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty"`
	WorkoutID  primitive.ObjectID  `bson:"workout_id"`
	Name       string              `bson:"name"`
	Notes      *string             `bson:"notes,omitempty"`
	OrderIndex int                 `bson:"order_index"`
	IsCircuit  bool                `bson:"is_circuit"`
	CircuitID  *primitive.ObjectID `bson:"circuit_id,omitempty"`
	IsGroup    bool                `bson:"is_group"`
	GroupID    *primitive.ObjectID `bson:"group_id,omitempty"`
	MediaKey   string              `bson:"media_key,omitempty"`
}

type SetRow struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	ExerciseID    primitive.ObjectID `bson:"exercise_id"`
	OrderIndex    int                `bson:"order_index"`
	Reps          string             `bson:"reps"`
	Weight        string             `bson:"weight"`
	Intensity     string             `bson:"intensity"`
	IntensityType string             `bson:"intensity_type"`
	WeightType    string             `bson:"weight_type"`
	Rest          string             `bson:"rest"`
}

type CircuitRow struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty"`
	WorkoutID            primitive.ObjectID `bson:"workout_id"`
	Name                 string             `bson:"name"`
	Kind                 string             `bson:"kind"`
	Rounds               string             `bson:"rounds"`
	RestBetweenExercises string             `bson:"rest_between_exercises"`
	RestBetweenRounds    string             `bson:"rest_between_rounds"`
	CreatedAt            time.Time          `bson:"created_at"`
}

// CircuitExerciseRow is a circuit membership. ExerciseID is unique across
// the collection.
type CircuitExerciseRow struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	CircuitID  primitive.ObjectID `bson:"circuit_id"`
	ExerciseID primitive.ObjectID `bson:"exercise_id"`
	WorkoutID  primitive.ObjectID `bson:"workout_id"`
	Order      int                `bson:"order"`
}

type ProfileRow struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Username     string             `bson:"username,omitempty"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	AvatarURL    string             `bson:"avatar_url,omitempty"`
	Bio          string             `bson:"bio,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

type PurchaseRow struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     string             `bson:"user_id"`
	ContentType string            `bson:"content_type"`
	ContentID  string             `bson:"content_id"`
	AmountPaid float64            `bson:"amount_paid"`
	CreatedAt  time.Time          `bson:"created_at"`
}

type WorkoutLogRow struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	UserID          string             `bson:"user_id"`
	WorkoutID       string             `bson:"workout_id"`
	WorkoutName     string             `bson:"workout_name"`
	ExerciseNames   []string           `bson:"exercise_names"`
	DurationMinutes int                `bson:"duration_minutes"`
	CompletedAt     time.Time          `bson:"completed_at"`
}

// ProgramRows is everything stored for one program.
type ProgramRows struct {
	Program     ProgramRow
	Weeks       []WeekRow
	Workouts    []WorkoutRow
	Exercises   []ExerciseRow
	Sets        []SetRow
	Circuits    []CircuitRow
	Memberships []CircuitExerciseRow
}

// WorkoutRows is everything stored for one workout.
type WorkoutRows struct {
	Workout     WorkoutRow
	Exercises   []ExerciseRow
	Sets        []SetRow
	Circuits    []CircuitRow
	Memberships []CircuitExerciseRow
}

package mongo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(i int) *int       { return &i }

func TestExerciseUpdate(t *testing.T) {
	header := primitive.NewObjectID()

	tests := []struct {
		name  string
		patch domain.ExercisePatch
		want  bson.M
	}{
		{name: "empty", patch: domain.ExercisePatch{}, want: bson.M{}},
		{
			name:  "fields",
			patch: domain.ExercisePatch{Name: strPtr("Squat"), Notes: strPtr(""), IsGroup: boolPtr(true)},
			want:  bson.M{"name": "Squat", "notes": "", "is_group": true},
		},
		{
			name:  "link to group",
			patch: domain.ExercisePatch{GroupID: strPtr(header.Hex())},
			want:  bson.M{"group_id": &header},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := exerciseUpdate(tt.patch)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unlink stores null", func(t *testing.T) {
		got, err := exerciseUpdate(domain.ExercisePatch{GroupID: strPtr("")})
		require.NoError(t, err)
		require.Contains(t, got, "group_id")
		assert.Nil(t, got["group_id"])
	})

	t.Run("bad group id", func(t *testing.T) {
		_, err := exerciseUpdate(domain.ExercisePatch{GroupID: strPtr("not-hex")})
		assert.ErrorIs(t, err, repository.ErrInvalidID)
	})
}

func TestSetUpdate(t *testing.T) {
	assert.Empty(t, setUpdate(domain.SetPatch{}))
	assert.Equal(t, bson.M{
		"reps":           "8-10",
		"weight":         "",
		"intensity_type": "rpe",
		"rest":           "90s",
	}, setUpdate(domain.SetPatch{
		Reps:          strPtr("8-10"),
		Weight:        strPtr(""),
		IntensityType: strPtr("rpe"),
		Rest:          strPtr("90s"),
	}))
}

func TestWorkoutUpdate(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	week := primitive.NewObjectID()

	got, err := workoutUpdate(domain.WorkoutPatch{}, now)
	require.NoError(t, err)
	assert.Empty(t, got, "an empty patch leaves updated_at alone")

	got, err = workoutUpdate(domain.WorkoutPatch{Name: strPtr("Legs"), Day: intPtr(3), WeekID: strPtr(week.Hex())}, now)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"name": "Legs", "day": 3, "week_id": week, "updated_at": now}, got)

	_, err = workoutUpdate(domain.WorkoutPatch{WeekID: strPtr("nope")}, now)
	assert.ErrorIs(t, err, repository.ErrInvalidID)
}

func TestIDParsing(t *testing.T) {
	oid := primitive.NewObjectID()

	got, err := parseID(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)

	_, err = parseID("nope")
	assert.ErrorIs(t, err, repository.ErrInvalidID)

	// reads treat an impossible id as a miss
	_, err = lookupID("nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = parseIDs([]string{oid.Hex(), "nope"})
	assert.ErrorIs(t, err, repository.ErrInvalidID)
}

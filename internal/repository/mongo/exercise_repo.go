package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/mapper"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
)

const (
	exerciseCollectionName = "exercises"
	setCollectionName      = "exercise_sets"
)

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

// Create inserts a new exercise. Sets are stored separately and circuit
// membership is never written here.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (string, error) {
	exercise.ID = ""
	row, err := mapper.ExerciseToRow(*exercise)
	if err != nil {
		return "", repository.ErrInvalidID
	}
	id, err := insert(ctx, r.collection, row)
	if err != nil {
		return "", err
	}
	exercise.ID = id.Hex()
	return exercise.ID, nil
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	oid, err := lookupID(id)
	if err != nil {
		return nil, err
	}
	var row mapper.ExerciseRow
	if err := findOne(ctx, r.collection, bson.M{"_id": oid}, &row); err != nil {
		return nil, err
	}
	e := mapper.ExerciseFromRow(row)
	return &e, nil
}

func (r *mongoExerciseRepository) ListByWorkouts(ctx context.Context, workoutIDs []string) ([]domain.Exercise, error) {
	if len(workoutIDs) == 0 {
		return []domain.Exercise{}, nil
	}
	oids, err := parseIDs(workoutIDs)
	if err != nil {
		return nil, err
	}
	var rows []mapper.ExerciseRow
	opts := options.Find().SetSort(bson.D{{Key: "order_index", Value: 1}, {Key: "_id", Value: 1}})
	if err := findAll(ctx, r.collection, bson.M{"workout_id": bson.M{"$in": oids}}, &rows, opts); err != nil {
		return nil, err
	}
	out := make([]domain.Exercise, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapper.ExerciseFromRow(row))
	}
	return out, nil
}

// Update applies the non-nil fields of the patch.
func (r *mongoExerciseRepository) Update(ctx context.Context, id string, patch domain.ExercisePatch) error {
	set, err := exerciseUpdate(patch)
	if err != nil {
		return err
	}
	return updateByID(ctx, r.collection, id, set)
}

// exerciseUpdate builds the $set document. An empty group id unlinks the
// exercise and is stored as null.
func exerciseUpdate(patch domain.ExercisePatch) (bson.M, error) {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Notes != nil {
		set["notes"] = *patch.Notes
	}
	if patch.IsGroup != nil {
		set["is_group"] = *patch.IsGroup
	}
	if patch.GroupID != nil {
		groupID, err := mapper.OptionalID(*patch.GroupID)
		if err != nil {
			return nil, repository.ErrInvalidID
		}
		set["group_id"] = groupID
	}
	if patch.MediaKey != nil {
		set["media_key"] = *patch.MediaKey
	}
	return set, nil
}

func (r *mongoExerciseRepository) SetOrder(ctx context.Context, id string, orderIndex int) error {
	return updateByID(ctx, r.collection, id, bson.M{"order_index": orderIndex})
}

func (r *mongoExerciseRepository) ClearGroup(ctx context.Context, groupID string) error {
	oid, err := lookupID(groupID)
	if err != nil {
		return nil
	}
	_, err = r.collection.UpdateMany(ctx, bson.M{"group_id": oid}, bson.M{"$unset": bson.M{"group_id": ""}})
	return err
}

func (r *mongoExerciseRepository) DeleteMany(ctx context.Context, ids []string) error {
	return deleteMany(ctx, r.collection, "_id", ids)
}

// mongoSetRepository implements repository.SetRepository
type mongoSetRepository struct {
	collection *mongo.Collection
}

func NewMongoSetRepository(db *mongo.Database) repository.SetRepository {
	return &mongoSetRepository{
		collection: db.Collection(setCollectionName),
	}
}

func (r *mongoSetRepository) Create(ctx context.Context, set *domain.Set) (string, error) {
	set.ID = ""
	row, err := mapper.SetToRow(*set)
	if err != nil {
		return "", repository.ErrInvalidID
	}
	id, err := insert(ctx, r.collection, row)
	if err != nil {
		return "", err
	}
	set.ID = id.Hex()
	return set.ID, nil
}

func (r *mongoSetRepository) GetByID(ctx context.Context, id string) (*domain.Set, error) {
	oid, err := lookupID(id)
	if err != nil {
		return nil, err
	}
	var row mapper.SetRow
	if err := findOne(ctx, r.collection, bson.M{"_id": oid}, &row); err != nil {
		return nil, err
	}
	s := mapper.SetFromRow(row)
	return &s, nil
}

func (r *mongoSetRepository) ListByExercises(ctx context.Context, exerciseIDs []string) ([]domain.Set, error) {
	if len(exerciseIDs) == 0 {
		return []domain.Set{}, nil
	}
	oids, err := parseIDs(exerciseIDs)
	if err != nil {
		return nil, err
	}
	var rows []mapper.SetRow
	opts := options.Find().SetSort(bson.D{{Key: "order_index", Value: 1}, {Key: "_id", Value: 1}})
	if err := findAll(ctx, r.collection, bson.M{"exercise_id": bson.M{"$in": oids}}, &rows, opts); err != nil {
		return nil, err
	}
	out := make([]domain.Set, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapper.SetFromRow(row))
	}
	return out, nil
}

func (r *mongoSetRepository) Update(ctx context.Context, id string, patch domain.SetPatch) error {
	return updateByID(ctx, r.collection, id, setUpdate(patch))
}

func setUpdate(patch domain.SetPatch) bson.M {
	set := bson.M{}
	if patch.Reps != nil {
		set["reps"] = *patch.Reps
	}
	if patch.Weight != nil {
		set["weight"] = *patch.Weight
	}
	if patch.Intensity != nil {
		set["intensity"] = *patch.Intensity
	}
	if patch.IntensityType != nil {
		set["intensity_type"] = *patch.IntensityType
	}
	if patch.WeightType != nil {
		set["weight_type"] = *patch.WeightType
	}
	if patch.Rest != nil {
		set["rest"] = *patch.Rest
	}
	return set
}

func (r *mongoSetRepository) DeleteMany(ctx context.Context, ids []string) error {
	return deleteMany(ctx, r.collection, "_id", ids)
}

// internal/repository/mongo/workout_repo.go
package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/mapper"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
)

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository
type mongoWorkoutRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
	}
}

// Create inserts a new workout. Exercises and circuits are stored separately.
func (r *mongoWorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (string, error) {
	now := time.Now().UTC()
	workout.ID = ""
	workout.CreatedAt, workout.UpdatedAt = now, now
	row, err := mapper.WorkoutToRow(*workout)
	if err != nil {
		return "", repository.ErrInvalidID
	}
	id, err := insert(ctx, r.collection, row)
	if err != nil {
		return "", err
	}
	workout.ID = id.Hex()
	return workout.ID, nil
}

// GetByID retrieves a single workout by its ID.
func (r *mongoWorkoutRepository) GetByID(ctx context.Context, id string) (*domain.Workout, error) {
	oid, err := lookupID(id)
	if err != nil {
		return nil, err
	}
	return r.getOne(ctx, bson.M{"_id": oid})
}

func (r *mongoWorkoutRepository) GetBySlug(ctx context.Context, slug string) (*domain.Workout, error) {
	if slug == "" {
		return nil, repository.ErrNotFound
	}
	return r.getOne(ctx, bson.M{"slug": slug})
}

func (r *mongoWorkoutRepository) getOne(ctx context.Context, filter bson.M) (*domain.Workout, error) {
	var row mapper.WorkoutRow
	if err := findOne(ctx, r.collection, filter, &row); err != nil {
		return nil, err
	}
	w := mapper.WorkoutFromRow(row)
	return &w, nil
}

// ListByProgram retrieves all workouts of a program, sorted by day.
func (r *mongoWorkoutRepository) ListByProgram(ctx context.Context, programID string) ([]domain.Workout, error) {
	oid, err := lookupID(programID)
	if err != nil {
		return []domain.Workout{}, nil
	}
	var rows []mapper.WorkoutRow
	findOptions := options.Find().SetSort(bson.D{{Key: "day", Value: 1}, {Key: "order_index", Value: 1}, {Key: "created_at", Value: 1}})
	if err := findAll(ctx, r.collection, bson.M{"program_id": oid}, &rows, findOptions); err != nil {
		return nil, err
	}
	out := make([]domain.Workout, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapper.WorkoutFromRow(row))
	}
	return out, nil
}

func (r *mongoWorkoutRepository) Update(ctx context.Context, id string, patch domain.WorkoutPatch) error {
	set, err := workoutUpdate(patch, time.Now().UTC())
	if err != nil {
		return err
	}
	return updateByID(ctx, r.collection, id, set)
}

// workoutUpdate builds the $set document. updated_at only moves when a
// field changes.
func workoutUpdate(patch domain.WorkoutPatch, now time.Time) (bson.M, error) {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Day != nil {
		set["day"] = *patch.Day
	}
	if patch.WeekID != nil {
		weekID, err := parseID(*patch.WeekID)
		if err != nil {
			return nil, err
		}
		set["week_id"] = weekID
	}
	if patch.Saved != nil {
		set["saved"] = *patch.Saved
	}
	if len(set) > 0 {
		set["updated_at"] = now
	}
	return set, nil
}

// UpdatePricing sets price and purchasability. A slug is only written when
// given; the sparse unique index turns a clash into ErrDuplicate.
func (r *mongoWorkoutRepository) UpdatePricing(ctx context.Context, id string, pricing repository.Pricing) error {
	set := bson.M{
		"price":          pricing.Price,
		"is_purchasable": pricing.IsPurchasable,
		"updated_at":     time.Now().UTC(),
	}
	if pricing.Slug != "" {
		set["slug"] = pricing.Slug
	}
	return updateByID(ctx, r.collection, id, set)
}

func (r *mongoWorkoutRepository) DeleteMany(ctx context.Context, ids []string) error {
	return deleteMany(ctx, r.collection, "_id", ids)
}

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

const (
	circuitCollectionName         = "circuits"
	circuitExerciseCollectionName = "circuit_exercises"
)

// mongoCircuitRepository implements repository.CircuitRepository over the
// circuits and circuit_exercises collections.
type mongoCircuitRepository struct {
	circuits *mongo.Collection
	members  *mongo.Collection
}

func NewMongoCircuitRepository(db *mongo.Database) repository.CircuitRepository {
	return &mongoCircuitRepository{
		circuits: db.Collection(circuitCollectionName),
		members:  db.Collection(circuitExerciseCollectionName),
	}
}

func (r *mongoCircuitRepository) Create(ctx context.Context, circuit *domain.Circuit) (string, error) {
	circuit.ID = ""
	row, err := mapper.CircuitToRow(*circuit)
	if err != nil {
		return "", repository.ErrInvalidID
	}
	row.CreatedAt = time.Now().UTC()
	id, err := insert(ctx, r.circuits, row)
	if err != nil {
		return "", err
	}
	circuit.ID = id.Hex()
	return circuit.ID, nil
}

func (r *mongoCircuitRepository) GetByID(ctx context.Context, id string) (*domain.Circuit, error) {
	oid, err := lookupID(id)
	if err != nil {
		return nil, err
	}
	var row mapper.CircuitRow
	if err := findOne(ctx, r.circuits, bson.M{"_id": oid}, &row); err != nil {
		return nil, err
	}
	c := mapper.CircuitFromRow(row)
	return &c, nil
}

func (r *mongoCircuitRepository) ListByWorkouts(ctx context.Context, workoutIDs []string) ([]domain.Circuit, error) {
	if len(workoutIDs) == 0 {
		return []domain.Circuit{}, nil
	}
	oids, err := parseIDs(workoutIDs)
	if err != nil {
		return nil, err
	}
	var rows []mapper.CircuitRow
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if err := findAll(ctx, r.circuits, bson.M{"workout_id": bson.M{"$in": oids}}, &rows, opts); err != nil {
		return nil, err
	}
	out := make([]domain.Circuit, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapper.CircuitFromRow(row))
	}
	return out, nil
}

func (r *mongoCircuitRepository) Update(ctx context.Context, id string, patch domain.CircuitPatch) error {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Rounds != nil {
		set["rounds"] = *patch.Rounds
	}
	if patch.RestBetweenExercises != nil {
		set["rest_between_exercises"] = *patch.RestBetweenExercises
	}
	if patch.RestBetweenRounds != nil {
		set["rest_between_rounds"] = *patch.RestBetweenRounds
	}
	return updateByID(ctx, r.circuits, id, set)
}

func (r *mongoCircuitRepository) DeleteMany(ctx context.Context, ids []string) error {
	return deleteMany(ctx, r.circuits, "_id", ids)
}

// AddMember inserts a membership row. The unique exercise_id index rejects
// a second circuit for the same exercise.
func (r *mongoCircuitRepository) AddMember(ctx context.Context, workoutID string, m domain.CircuitMembership) error {
	oids, err := parseIDs([]string{m.CircuitID, m.ExerciseID, workoutID})
	if err != nil {
		return err
	}
	_, err = insert(ctx, r.members, mapper.CircuitExerciseRow{
		CircuitID:  oids[0],
		ExerciseID: oids[1],
		WorkoutID:  oids[2],
		Order:      m.Order,
	})
	return err
}

func (r *mongoCircuitRepository) ListMembers(ctx context.Context, circuitIDs []string) ([]domain.CircuitMembership, error) {
	if len(circuitIDs) == 0 {
		return []domain.CircuitMembership{}, nil
	}
	oids, err := parseIDs(circuitIDs)
	if err != nil {
		return nil, err
	}
	var rows []mapper.CircuitExerciseRow
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}})
	if err := findAll(ctx, r.members, bson.M{"circuit_id": bson.M{"$in": oids}}, &rows, opts); err != nil {
		return nil, err
	}
	out := make([]domain.CircuitMembership, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapper.MembershipFromRow(row))
	}
	return out, nil
}

func (r *mongoCircuitRepository) RemoveMembers(ctx context.Context, exerciseIDs []string) error {
	return deleteMany(ctx, r.members, "exercise_id", exerciseIDs)
}

func (r *mongoCircuitRepository) RemoveCircuitMembers(ctx context.Context, circuitIDs []string) error {
	return deleteMany(ctx, r.members, "circuit_id", circuitIDs)
}

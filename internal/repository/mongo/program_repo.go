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
	programCollectionName = "programs"
	weekCollectionName    = "weeks"
)

// mongoProgramRepository implements repository.ProgramRepository
type mongoProgramRepository struct {
	collection *mongo.Collection
}

// NewMongoProgramRepository creates a new Program repository.
func NewMongoProgramRepository(db *mongo.Database) repository.ProgramRepository {
	return &mongoProgramRepository{
		collection: db.Collection(programCollectionName),
	}
}

// Create inserts a new program header.
func (r *mongoProgramRepository) Create(ctx context.Context, program *domain.WorkoutProgram) (string, error) {
	now := time.Now().UTC()
	program.ID = ""
	program.CreatedAt, program.UpdatedAt = now, now

	row, err := mapper.ProgramToRow(*program)
	if err != nil {
		return "", repository.ErrInvalidID
	}
	id, err := insert(ctx, r.collection, row)
	if err != nil {
		return "", err
	}
	program.ID = id.Hex()
	return program.ID, nil
}

// GetByID retrieves a single program header by its ID.
func (r *mongoProgramRepository) GetByID(ctx context.Context, id string) (*domain.WorkoutProgram, error) {
	oid, err := lookupID(id)
	if err != nil {
		return nil, err
	}
	var row mapper.ProgramRow
	if err := findOne(ctx, r.collection, bson.M{"_id": oid}, &row); err != nil {
		return nil, err
	}
	p := mapper.ProgramFromRow(row)
	return &p, nil
}

func (r *mongoProgramRepository) List(ctx context.Context, f repository.ProgramFilter) ([]domain.WorkoutProgram, error) {
	filter := bson.M{}
	if f.CreatorID != "" {
		filter["creator_id"] = f.CreatorID
	}
	if f.PublicOnly {
		filter["is_public"] = true
	}
	if f.SavedOnly {
		filter["saved"] = true
	}
	if !f.IncludeWrappers {
		filter["library_wrapper"] = bson.M{"$ne": true}
	}
	var rows []mapper.ProgramRow
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if err := findAll(ctx, r.collection, filter, &rows, opts); err != nil {
		return nil, err
	}
	out := make([]domain.WorkoutProgram, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapper.ProgramFromRow(row))
	}
	return out, nil
}

func (r *mongoProgramRepository) Update(ctx context.Context, id string, patch domain.ProgramPatch) error {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.IsPublic != nil {
		set["is_public"] = *patch.IsPublic
	}
	if patch.IsPurchasable != nil {
		set["is_purchasable"] = *patch.IsPurchasable
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Settings != nil {
		set["settings"] = mapper.SettingsToJSON(*patch.Settings)
	}
	if patch.Saved != nil {
		set["saved"] = *patch.Saved
	}
	if len(set) > 0 {
		set["updated_at"] = time.Now().UTC()
	}
	return updateByID(ctx, r.collection, id, set)
}

func (r *mongoProgramRepository) UpdatePricing(ctx context.Context, id string, pricing repository.Pricing) error {
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

func (r *mongoProgramRepository) Delete(ctx context.Context, id string) error {
	oid, err := lookupID(id)
	if err != nil {
		return err
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// mongoWeekRepository implements repository.WeekRepository
type mongoWeekRepository struct {
	collection *mongo.Collection
}

func NewMongoWeekRepository(db *mongo.Database) repository.WeekRepository {
	return &mongoWeekRepository{
		collection: db.Collection(weekCollectionName),
	}
}

func (r *mongoWeekRepository) Create(ctx context.Context, week *domain.WorkoutWeek) (string, error) {
	week.ID = ""
	week.CreatedAt = time.Now().UTC()
	row, err := mapper.WeekToRow(*week)
	if err != nil {
		return "", repository.ErrInvalidID
	}
	id, err := insert(ctx, r.collection, row)
	if err != nil {
		return "", err
	}
	week.ID = id.Hex()
	return week.ID, nil
}

func (r *mongoWeekRepository) GetByID(ctx context.Context, id string) (*domain.WorkoutWeek, error) {
	oid, err := lookupID(id)
	if err != nil {
		return nil, err
	}
	var row mapper.WeekRow
	if err := findOne(ctx, r.collection, bson.M{"_id": oid}, &row); err != nil {
		return nil, err
	}
	w := mapper.WeekFromRow(row)
	return &w, nil
}

func (r *mongoWeekRepository) ListByProgram(ctx context.Context, programID string) ([]domain.WorkoutWeek, error) {
	oid, err := lookupID(programID)
	if err != nil {
		return []domain.WorkoutWeek{}, nil
	}
	var rows []mapper.WeekRow
	opts := options.Find().SetSort(bson.D{{Key: "order_index", Value: 1}, {Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	if err := findAll(ctx, r.collection, bson.M{"program_id": oid}, &rows, opts); err != nil {
		return nil, err
	}
	out := make([]domain.WorkoutWeek, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapper.WeekFromRow(row))
	}
	return out, nil
}

func (r *mongoWeekRepository) Update(ctx context.Context, id string, patch domain.WeekPatch) error {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.OrderIndex != nil {
		set["order_index"] = *patch.OrderIndex
	}
	if patch.Saved != nil {
		set["saved"] = *patch.Saved
	}
	return updateByID(ctx, r.collection, id, set)
}

func (r *mongoWeekRepository) DeleteMany(ctx context.Context, ids []string) error {
	return deleteMany(ctx, r.collection, "_id", ids)
}

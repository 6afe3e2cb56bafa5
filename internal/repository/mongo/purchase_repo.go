package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/mapper"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
)

const (
	workoutPurchaseCollectionName = "workout_purchases"
	programPurchaseCollectionName = "program_purchases"
	workoutLogCollectionName      = "workout_logs"
)

// mongoPurchaseRepository keeps workout and program purchases in separate
// collections, each unique on (user_id, content_id).
type mongoPurchaseRepository struct {
	workouts *mongo.Collection
	programs *mongo.Collection
}

func NewMongoPurchaseRepository(db *mongo.Database) repository.PurchaseRepository {
	return &mongoPurchaseRepository{
		workouts: db.Collection(workoutPurchaseCollectionName),
		programs: db.Collection(programPurchaseCollectionName),
	}
}

func (r *mongoPurchaseRepository) collection(ct domain.ContentType) (*mongo.Collection, error) {
	switch ct {
	case domain.ContentWorkout:
		return r.workouts, nil
	case domain.ContentProgram:
		return r.programs, nil
	}
	return nil, fmt.Errorf("unknown content type %q", ct)
}

func (r *mongoPurchaseRepository) Create(ctx context.Context, p *domain.Purchase) (string, error) {
	c, err := r.collection(p.ContentType)
	if err != nil {
		return "", err
	}
	p.CreatedAt = time.Now().UTC()
	id, err := insert(ctx, c, mapper.PurchaseRow{
		UserID:      p.UserID,
		ContentType: string(p.ContentType),
		ContentID:   p.ContentID,
		AmountPaid:  p.AmountPaid,
		CreatedAt:   p.CreatedAt,
	})
	if err != nil {
		return "", err
	}
	p.ID = id.Hex()
	return p.ID, nil
}

func (r *mongoPurchaseRepository) Exists(ctx context.Context, userID string, ct domain.ContentType, contentID string) (bool, error) {
	c, err := r.collection(ct)
	if err != nil {
		return false, err
	}
	n, err := c.CountDocuments(ctx, bson.M{"user_id": userID, "content_id": contentID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *mongoPurchaseRepository) ListByUser(ctx context.Context, userID string, ct domain.ContentType) ([]domain.Purchase, error) {
	types := []domain.ContentType{ct}
	if ct == "" {
		types = []domain.ContentType{domain.ContentWorkout, domain.ContentProgram}
	}
	out := []domain.Purchase{}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	for _, t := range types {
		c, err := r.collection(t)
		if err != nil {
			return nil, err
		}
		var rows []mapper.PurchaseRow
		if err := findAll(ctx, c, bson.M{"user_id": userID}, &rows, opts); err != nil {
			return nil, err
		}
		for _, row := range rows {
			p := mapper.PurchaseFromRow(row)
			p.ContentType = t
			out = append(out, p)
		}
	}
	return out, nil
}

// mongoWorkoutLogRepository implements repository.WorkoutLogRepository
type mongoWorkoutLogRepository struct {
	collection *mongo.Collection
}

func NewMongoWorkoutLogRepository(db *mongo.Database) repository.WorkoutLogRepository {
	return &mongoWorkoutLogRepository{
		collection: db.Collection(workoutLogCollectionName),
	}
}

func (r *mongoWorkoutLogRepository) Create(ctx context.Context, l *domain.WorkoutLog) (string, error) {
	if l.CompletedAt.IsZero() {
		l.CompletedAt = time.Now().UTC()
	}
	id, err := insert(ctx, r.collection, mapper.WorkoutLogRow{
		UserID:          l.UserID,
		WorkoutID:       l.WorkoutID,
		WorkoutName:     l.WorkoutName,
		ExerciseNames:   l.ExerciseNames,
		DurationMinutes: l.DurationMinutes,
		CompletedAt:     l.CompletedAt,
	})
	if err != nil {
		return "", err
	}
	l.ID = id.Hex()
	return l.ID, nil
}

func (r *mongoWorkoutLogRepository) ListByUser(ctx context.Context, userID string) ([]domain.WorkoutLog, error) {
	var rows []mapper.WorkoutLogRow
	opts := options.Find().SetSort(bson.D{{Key: "completed_at", Value: -1}})
	if err := findAll(ctx, r.collection, bson.M{"user_id": userID}, &rows, opts); err != nil {
		return nil, err
	}
	out := make([]domain.WorkoutLog, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapper.WorkoutLogFromRow(row))
	}
	return out, nil
}

package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/mapper"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary node to verify the connection.
	// The initial connection might succeed while the server is unresponsive.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}
	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// Transactor runs cascades in a multi-document transaction. Transactions
// need a replica set, so they can be switched off for standalone servers;
// callers then rely on their compensating deletes.
type Transactor struct {
	client  *mongo.Client
	enabled bool
}

func NewTransactor(client *mongo.Client, enabled bool) *Transactor {
	return &Transactor{client: client, enabled: enabled}
}

func (t *Transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled {
		return fn(ctx)
	}
	sess, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

var _ repository.Transactor = (*Transactor)(nil)

// EnsureIndexes creates the indexes of every collection. Call this once
// during startup (or from fitplanctl indexes).
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	all := map[string][]mongo.IndexModel{
		programCollectionName: {
			{Keys: bson.D{{Key: "creator_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "is_public", Value: 1}}},
		},
		weekCollectionName: {
			{Keys: bson.D{{Key: "program_id", Value: 1}, {Key: "order_index", Value: 1}}},
		},
		workoutCollectionName: {
			{Keys: bson.D{{Key: "program_id", Value: 1}, {Key: "day", Value: 1}}},
			{Keys: bson.D{{Key: "week_id", Value: 1}}},
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		},
		exerciseCollectionName: {
			{Keys: bson.D{{Key: "workout_id", Value: 1}, {Key: "order_index", Value: 1}}},
			{Keys: bson.D{{Key: "group_id", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		setCollectionName: {
			{Keys: bson.D{{Key: "exercise_id", Value: 1}, {Key: "order_index", Value: 1}}},
		},
		circuitCollectionName: {
			{Keys: bson.D{{Key: "workout_id", Value: 1}}},
		},
		circuitExerciseCollectionName: {
			// an exercise belongs to at most one circuit
			{Keys: bson.D{{Key: "exercise_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "circuit_id", Value: 1}, {Key: "order", Value: 1}}},
		},
		profileCollectionName: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		},
		workoutPurchaseCollectionName: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "content_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		programPurchaseCollectionName: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "content_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		workoutLogCollectionName: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "completed_at", Value: -1}}},
		},
	}
	for name, models := range all {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes for %s: %w", name, err)
		}
	}
	return nil
}

// --- helpers shared by the repositories ---

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := mapper.ParseID(id)
	if err != nil {
		return primitive.NilObjectID, repository.ErrInvalidID
	}
	return oid, nil
}

func parseIDs(ids []string) ([]primitive.ObjectID, error) {
	oids, err := mapper.ParseIDs(ids)
	if err != nil {
		return nil, repository.ErrInvalidID
	}
	return oids, nil
}

// lookupID parses an id for a read. An id that cannot exist is not found.
func lookupID(id string) (primitive.ObjectID, error) {
	oid, err := mapper.ParseID(id)
	if err != nil {
		return primitive.NilObjectID, repository.ErrNotFound
	}
	return oid, nil
}

func findOne(ctx context.Context, c *mongo.Collection, filter interface{}, out interface{}) error {
	err := c.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	return err
}

func findAll(ctx context.Context, c *mongo.Collection, filter interface{}, out interface{}, opts ...*options.FindOptions) error {
	cursor, err := c.Find(ctx, filter, opts...)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	if err = cursor.All(ctx, out); err != nil {
		return err
	}
	return cursor.Err()
}

func insert(ctx context.Context, c *mongo.Collection, doc interface{}) (primitive.ObjectID, error) {
	result, err := c.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func updateByID(ctx context.Context, c *mongo.Collection, id string, set bson.M) error {
	oid, err := lookupID(id)
	if err != nil {
		return err
	}
	if len(set) == 0 {
		// nothing to write, but the record still has to exist
		n, err := c.CountDocuments(ctx, bson.M{"_id": oid})
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrNotFound
		}
		return nil
	}
	result, err := c.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func deleteMany(ctx context.Context, c *mongo.Collection, field string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	oids, err := parseIDs(ids)
	if err != nil {
		return err
	}
	_, err = c.DeleteMany(ctx, bson.M{field: bson.M{"$in": oids}})
	return err
}

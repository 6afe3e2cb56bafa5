package mongo

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nicksgoat/fitplan-sheets-sub001/internal/domain"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/mapper"
	"github.com/nicksgoat/fitplan-sheets-sub001/internal/repository"
)

const profileCollectionName = "profiles"

// mongoProfileRepository implements the repository.ProfileRepository interface using MongoDB.
type mongoProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoProfileRepository creates a new instance of mongoProfileRepository.
// It expects a connected *mongo.Database instance.
func NewMongoProfileRepository(db *mongo.Database) repository.ProfileRepository {
	return &mongoProfileRepository{
		collection: db.Collection(profileCollectionName),
	}
}

// Create inserts a new profile. Emails are stored lower-cased so the unique
// index is case-insensitive.
func (r *mongoProfileRepository) Create(ctx context.Context, profile *domain.Profile) (string, error) {
	now := time.Now().UTC()
	profile.ID = ""
	profile.Email = strings.ToLower(profile.Email)
	profile.CreatedAt, profile.UpdatedAt = now, now

	row, err := mapper.ProfileToRow(*profile)
	if err != nil {
		return "", repository.ErrInvalidID
	}
	id, err := insert(ctx, r.collection, row)
	if err != nil {
		return "", err
	}
	profile.ID = id.Hex()
	return profile.ID, nil
}

// GetByEmail retrieves a profile by its email address.
func (r *mongoProfileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return r.getOne(ctx, bson.M{"email": strings.ToLower(email)})
}

// GetByID retrieves a profile by its id.
func (r *mongoProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	oid, err := lookupID(id)
	if err != nil {
		return nil, err
	}
	return r.getOne(ctx, bson.M{"_id": oid})
}

func (r *mongoProfileRepository) getOne(ctx context.Context, filter bson.M) (*domain.Profile, error) {
	var row mapper.ProfileRow
	if err := findOne(ctx, r.collection, filter, &row); err != nil {
		return nil, err
	}
	p := mapper.ProfileFromRow(row)
	return &p, nil
}

func (r *mongoProfileRepository) Update(ctx context.Context, id string, patch domain.ProfilePatch) error {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Username != nil {
		set["username"] = *patch.Username
	}
	if patch.AvatarURL != nil {
		set["avatar_url"] = *patch.AvatarURL
	}
	if patch.Bio != nil {
		set["bio"] = *patch.Bio
	}
	if len(set) > 0 {
		set["updated_at"] = time.Now().UTC()
	}
	return updateByID(ctx, r.collection, id, set)
}

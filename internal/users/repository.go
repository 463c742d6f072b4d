package users

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/finstream/finstream/backend/go-services/internal/models"
	"github.com/finstream/finstream/backend/go-services/pkg/httperr"
)

// Repository defines persistence operations for users
type Repository interface {
	// FindByExternalID returns the user for the given external identity id,
	// or nil when no row matches (absence is not an error).
	FindByExternalID(ctx context.Context, externalID string) (*models.User, error)
	// ListAll returns every stored user. No pagination, no ordering guarantee.
	ListAll(ctx context.Context) ([]models.User, error)
	// Persist inserts the user when it has no assigned id, otherwise updates
	// the existing row. Returns the row with store-assigned fields populated
	// and whether it was created rather than updated.
	Persist(ctx context.Context, u *models.User) (*models.User, bool, error)
}

// MongoUserRepository implements Repository using MongoDB
type MongoUserRepository struct {
	col *mongo.Collection
}

// NewMongoUserRepository creates a new repository for the given collection
func NewMongoUserRepository(col *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{col: col}
}

// EnsureIndexes creates the unique index on externalId. Two concurrent
// find-or-create calls for the same new identity race on this constraint; the
// losing insert fails and surfaces as a persistence error.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "externalId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *MongoUserRepository) FindByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"externalId": externalID}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, httperr.Persistence(err)
	}
	return &u, nil
}

func (r *MongoUserRepository) ListAll(ctx context.Context) ([]models.User, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, httperr.Persistence(err)
	}
	out := make([]models.User, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, httperr.Persistence(err)
	}
	return out, nil
}

func (r *MongoUserRepository) Persist(ctx context.Context, u *models.User) (*models.User, bool, error) {
	now := time.Now().UTC()
	u.UpdatedAt = now

	if u.ID == "" {
		u.CreatedAt = now
		res, err := r.col.InsertOne(ctx, u)
		if err != nil {
			return nil, false, httperr.Persistence(err)
		}
		if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
			u.ID = oid.Hex()
		}
		return u, true, nil
	}

	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return nil, false, httperr.Persistence(err)
	}
	update := bson.M{"$set": bson.M{
		"username":   u.Username,
		"email":      u.Email,
		"subscribed": u.Subscribed,
		"updatedAt":  u.UpdatedAt,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.User
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&updated); err != nil {
		return nil, false, httperr.Persistence(err)
	}
	return &updated, false, nil
}

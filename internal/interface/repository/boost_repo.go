package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"swedavia-flights-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const boostDocID = "active_boosts"

// boostDocument stores subscriber id to RFC3339 expiry strings
type boostDocument struct {
	ID           string            `bson:"_id"`
	ActiveBoosts map[string]string `bson:"activeBoosts"`
	UpdatedAt    time.Time         `bson:"updatedAt"`
}

// MongoBoostRepository implements BoostRepository
type MongoBoostRepository struct {
	collection *mongo.Collection
}

// NewMongoBoostRepository creates a new boost window repository
func NewMongoBoostRepository(db *mongo.Database) repository.BoostRepository {
	return &MongoBoostRepository{
		collection: db.Collection("boost_windows"),
	}
}

// Load reads the stored boost windows. A missing document yields an
// empty map; an unparseable expiry fails the whole load.
func (r *MongoBoostRepository) Load(ctx context.Context) (map[string]time.Time, error) {
	var doc boostDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": boostDocID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return map[string]time.Time{}, nil
		}
		return nil, err
	}

	windows := make(map[string]time.Time, len(doc.ActiveBoosts))
	for id, raw := range doc.ActiveBoosts {
		expiry, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("parse boost expiry for %s: %w", id, err)
		}
		windows[id] = expiry
	}
	return windows, nil
}

// Save replaces the stored boost windows wholesale
func (r *MongoBoostRepository) Save(ctx context.Context, windows map[string]time.Time) error {
	boosts := make(map[string]string, len(windows))
	for id, expiry := range windows {
		boosts[id] = expiry.UTC().Format(time.RFC3339)
	}

	doc := boostDocument{
		ID:           boostDocID,
		ActiveBoosts: boosts,
		UpdatedAt:    time.Now().UTC(),
	}

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": boostDocID}, doc, opts)
	return err
}

package repository

import (
	"context"
	"errors"
	"time"

	"swedavia-flights-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const callLogDocID = "call_counter"

// callLogDocument is the single key/value document holding the call log
type callLogDocument struct {
	ID             string    `bson:"_id"`
	CallTimestamps []int64   `bson:"callTimestamps"`
	UpdatedAt      time.Time `bson:"updatedAt"`
}

// MongoCallLogRepository implements CallLogRepository
type MongoCallLogRepository struct {
	collection *mongo.Collection
}

// NewMongoCallLogRepository creates a new call log repository
func NewMongoCallLogRepository(db *mongo.Database) repository.CallLogRepository {
	return &MongoCallLogRepository{
		collection: db.Collection("api_call_log"),
	}
}

// Load reads the stored timestamp list. A missing document is not an
// error; it yields an empty list.
func (r *MongoCallLogRepository) Load(ctx context.Context) ([]int64, error) {
	var doc callLogDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": callLogDocID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.CallTimestamps, nil
}

// Save replaces the stored timestamp list wholesale
func (r *MongoCallLogRepository) Save(ctx context.Context, timestamps []int64) error {
	doc := callLogDocument{
		ID:             callLogDocID,
		CallTimestamps: timestamps,
		UpdatedAt:      time.Now().UTC(),
	}

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": callLogDocID}, doc, opts)
	return err
}

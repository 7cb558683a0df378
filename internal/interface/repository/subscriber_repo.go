package repository

import (
	"context"
	"time"

	"swedavia-flights-service/internal/domain/entity"
	"swedavia-flights-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSubscriberRepository implements SubscriberRepository
type MongoSubscriberRepository struct {
	collection *mongo.Collection
}

// NewMongoSubscriberRepository creates a new subscriber repository
func NewMongoSubscriberRepository(db *mongo.Database) repository.SubscriberRepository {
	collection := db.Collection("subscribers")

	// Create unique index on airport
	ctx := context.Background()
	indexModel := mongo.IndexModel{
		Keys:    bson.M{"airport": 1},
		Options: options.Index().SetUnique(true),
	}
	collection.Indexes().CreateOne(ctx, indexModel)

	return &MongoSubscriberRepository{
		collection: collection,
	}
}

// All returns every subscriber sorted by airport code. The sort keeps the
// enumeration order stable across restarts so stagger offsets stay put.
func (r *MongoSubscriberRepository) All(ctx context.Context) ([]*entity.Subscriber, error) {
	opts := options.Find().SetSort(bson.M{"airport": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subscribers []*entity.Subscriber
	if err := cursor.All(ctx, &subscribers); err != nil {
		return nil, err
	}
	return subscribers, nil
}

// FindByAirport finds a subscriber by IATA code
func (r *MongoSubscriberRepository) FindByAirport(ctx context.Context, airport string) (*entity.Subscriber, error) {
	var subscriber entity.Subscriber
	err := r.collection.FindOne(ctx, bson.M{"airport": airport}).Decode(&subscriber)
	if err != nil {
		return nil, err
	}
	return &subscriber, nil
}

// Upsert creates or updates a subscriber keyed by airport
func (r *MongoSubscriberRepository) Upsert(ctx context.Context, subscriber *entity.Subscriber) error {
	subscriber.UpdatedAt = time.Now()

	if subscriber.ID == "" {
		subscriber.ID = primitive.NewObjectID().Hex()
		subscriber.CreatedAt = time.Now()
	}

	update := bson.M{
		"$set": bson.M{
			"airport":    subscriber.Airport,
			"flightType": subscriber.FlightType,
			"hoursBack":  subscriber.HoursBack,
			"hoursAhead": subscriber.HoursAhead,
			"updatedAt":  subscriber.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":       subscriber.ID,
			"createdAt": subscriber.CreatedAt,
		},
	}

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"airport": subscriber.Airport}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

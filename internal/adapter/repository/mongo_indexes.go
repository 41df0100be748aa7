package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"servicemarket/internal/domain/entity"
)

// EnsureMongoIndexes creates the indexes the mongo repositories query by.
// It is safe to call on every start.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		requirementsCollection: {
			{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		bidsCollection: {
			{Keys: bson.D{{Key: "requirementId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "providerId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{
				Keys: bson.D{{Key: "requirementId", Value: 1}},
				Options: options.Index().
					SetName("one_accepted_bid_per_requirement").
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"status": entity.BidAccepted}),
			},
		},
		messagesCollection: {
			{Keys: bson.D{{Key: "bidId", Value: 1}, {Key: "senderId", Value: 1}, {Key: "receiverId", Value: 1}, {Key: "createdAt", Value: 1}}},
			{Keys: bson.D{{Key: "receiverId", Value: 1}, {Key: "isRead", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}

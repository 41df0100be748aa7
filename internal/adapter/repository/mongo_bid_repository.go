package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"servicemarket/internal/domain/entity"
	"servicemarket/internal/domain/repository"
	"servicemarket/pkg/errors"
)

type mongoBidRepository struct {
	collection *mongo.Collection
}

func NewMongoBidRepository(db *mongo.Database) repository.BidRepository {
	return &mongoBidRepository{
		collection: db.Collection(bidsCollection),
	}
}

func (r *mongoBidRepository) Create(ctx context.Context, bid *entity.Bid) error {
	if bid.ID == "" {
		bid.ID = uuid.New().String()
	}
	now := time.Now()
	if bid.CreatedAt.IsZero() {
		bid.CreatedAt = now
	}
	bid.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, bid); err != nil {
		return errors.Dependency("Failed to create bid", err)
	}
	return nil
}

func (r *mongoBidRepository) GetByID(ctx context.Context, id string) (*entity.Bid, error) {
	var bid entity.Bid
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&bid)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.NotFound("Bid", err)
		}
		return nil, errors.Dependency("Failed to get bid", err)
	}
	return &bid, nil
}

func (r *mongoBidRepository) ListByProvider(ctx context.Context, providerID string) ([]*entity.Bid, error) {
	return r.find(ctx, bson.M{"providerId": providerID})
}

func (r *mongoBidRepository) ListByRequirement(ctx context.Context, requirementID string) ([]*entity.Bid, error) {
	return r.find(ctx, bson.M{"requirementId": requirementID})
}

func (r *mongoBidRepository) find(ctx context.Context, filter bson.M) ([]*entity.Bid, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, errors.Dependency("Failed to list bids", err)
	}

	bids := make([]*entity.Bid, 0)
	if err := cursor.All(ctx, &bids); err != nil {
		return nil, errors.Dependency("Failed to decode bids", err)
	}
	return bids, nil
}

func (r *mongoBidRepository) SetStatus(ctx context.Context, id string, status entity.BidStatus) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
	)
	if err != nil {
		return errors.Dependency("Failed to update bid status", err)
	}
	if result.MatchedCount == 0 {
		return errors.NotFound("Bid", nil)
	}
	return nil
}

// Accept relies on the unique partial index over accepted bids per
// requirement created by EnsureMongoIndexes.
func (r *mongoBidRepository) Accept(ctx context.Context, id string) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": entity.BidAccepted, "updatedAt": time.Now()}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, errors.Dependency("Failed to accept bid", err)
	}
	if result.MatchedCount == 0 {
		return false, errors.NotFound("Bid", nil)
	}
	return true, nil
}

func (r *mongoBidRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Dependency("Failed to delete bid", err)
	}
	if result.DeletedCount == 0 {
		return errors.NotFound("Bid", nil)
	}
	return nil
}

func (r *mongoBidRepository) DeleteByRequirement(ctx context.Context, requirementID string) (int, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"requirementId": requirementID})
	if err != nil {
		return 0, errors.Dependency("Failed to delete bids for requirement", err)
	}
	return int(result.DeletedCount), nil
}

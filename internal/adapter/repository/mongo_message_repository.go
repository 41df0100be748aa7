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

type mongoMessageRepository struct {
	collection *mongo.Collection
}

func NewMongoMessageRepository(db *mongo.Database) repository.MessageRepository {
	return &mongoMessageRepository{
		collection: db.Collection(messagesCollection),
	}
}

func (r *mongoMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, message); err != nil {
		return errors.Dependency("Failed to create message", err)
	}
	return nil
}

func (r *mongoMessageRepository) ListConversation(ctx context.Context, a, b, bidID string) ([]*entity.Message, error) {
	filter := bson.M{
		"bidId": bidID,
		"$or": bson.A{
			bson.M{"senderId": a, "receiverId": b},
			bson.M{"senderId": b, "receiverId": a},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Dependency("Failed to fetch conversation", err)
	}

	messages := make([]*entity.Message, 0)
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, errors.Dependency("Failed to decode messages", err)
	}
	return messages, nil
}

func (r *mongoMessageRepository) MarkRead(ctx context.Context, readerID, senderID, bidID string) (int, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{"receiverId": readerID, "senderId": senderID, "bidId": bidID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return 0, errors.Dependency("Failed to mark messages as read", err)
	}
	return int(result.ModifiedCount), nil
}

func (r *mongoMessageRepository) CountUnread(ctx context.Context, readerID, bidID string) (int, error) {
	filter := bson.M{"receiverId": readerID, "isRead": false}
	if bidID != "" {
		filter["bidId"] = bidID
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, errors.Dependency("Failed to count unread messages", err)
	}
	return int(count), nil
}

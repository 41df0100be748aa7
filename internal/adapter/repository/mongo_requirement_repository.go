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

type mongoRequirementRepository struct {
	collection *mongo.Collection
}

func NewMongoRequirementRepository(db *mongo.Database) repository.RequirementRepository {
	return &mongoRequirementRepository{
		collection: db.Collection(requirementsCollection),
	}
}

func (r *mongoRequirementRepository) Create(ctx context.Context, requirement *entity.Requirement) error {
	if requirement.ID == "" {
		requirement.ID = uuid.New().String()
	}
	now := time.Now()
	if requirement.CreatedAt.IsZero() {
		requirement.CreatedAt = now
	}
	requirement.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, requirement); err != nil {
		return errors.Dependency("Failed to create requirement", err)
	}
	return nil
}

func (r *mongoRequirementRepository) GetByID(ctx context.Context, id string) (*entity.Requirement, error) {
	var requirement entity.Requirement
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&requirement)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.NotFound("Requirement", err)
		}
		return nil, errors.Dependency("Failed to get requirement", err)
	}
	return &requirement, nil
}

func (r *mongoRequirementRepository) List(ctx context.Context, clientID string) ([]*entity.Requirement, error) {
	filter := bson.M{}
	if clientID != "" {
		filter["clientId"] = clientID
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, errors.Dependency("Failed to list requirements", err)
	}

	requirements := make([]*entity.Requirement, 0)
	if err := cursor.All(ctx, &requirements); err != nil {
		return nil, errors.Dependency("Failed to decode requirements", err)
	}
	return requirements, nil
}

func (r *mongoRequirementRepository) Update(ctx context.Context, requirement *entity.Requirement, from entity.RequirementStatus) (bool, error) {
	updatedAt := time.Now()
	set := bson.M{
		"title":       requirement.Title,
		"description": requirement.Description,
		"price":       requirement.Price,
		"location":    requirement.Location,
		"category":    requirement.Category,
		"updatedAt":   updatedAt,
	}
	filter := bson.M{"_id": requirement.ID, "status": bson.M{"$ne": entity.RequirementCompleted}}
	if requirement.Status != from {
		filter["status"] = bson.M{"$eq": from, "$ne": entity.RequirementCompleted}
		set["status"] = requirement.Status
	}

	var stored entity.Requirement
	err := r.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&stored)
	if err == nil {
		requirement.Status = stored.Status
		requirement.UpdatedAt = updatedAt
		return true, nil
	}
	if err != mongo.ErrNoDocuments {
		return false, errors.Dependency("Failed to update requirement", err)
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": requirement.ID})
	if err != nil {
		return false, errors.Dependency("Failed to check requirement", err)
	}
	if count == 0 {
		return false, errors.NotFound("Requirement", nil)
	}
	return false, nil
}

func (r *mongoRequirementRepository) SetStatus(ctx context.Context, id string, status entity.RequirementStatus) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}},
	)
	if err != nil {
		return errors.Dependency("Failed to update requirement status", err)
	}
	if result.MatchedCount == 0 {
		return errors.NotFound("Requirement", nil)
	}
	return nil
}

func (r *mongoRequirementRepository) TransitionStatus(ctx context.Context, id string, from, to entity.RequirementStatus) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}},
	)
	if err != nil {
		return false, errors.Dependency("Failed to transition requirement status", err)
	}
	if result.MatchedCount > 0 {
		return true, nil
	}

	// Nothing matched: either the status moved on or the requirement is gone.
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, errors.Dependency("Failed to check requirement", err)
	}
	if count == 0 {
		return false, errors.NotFound("Requirement", nil)
	}
	return false, nil
}

func (r *mongoRequirementRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Dependency("Failed to delete requirement", err)
	}
	if result.DeletedCount == 0 {
		return errors.NotFound("Requirement", nil)
	}
	return nil
}

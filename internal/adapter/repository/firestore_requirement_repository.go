package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"servicemarket/internal/domain/entity"
	"servicemarket/internal/domain/repository"
	"servicemarket/pkg/errors"
)

const requirementsCollection = "requirements"

type firestoreRequirementRepository struct {
	client *firestore.Client
}

func NewFirestoreRequirementRepository(client *firestore.Client) repository.RequirementRepository {
	return &firestoreRequirementRepository{
		client: client,
	}
}

func (r *firestoreRequirementRepository) Create(ctx context.Context, requirement *entity.Requirement) error {
	if requirement.ID == "" {
		doc := r.client.Collection(requirementsCollection).NewDoc()
		requirement.ID = doc.ID
	}

	now := time.Now()
	if requirement.CreatedAt.IsZero() {
		requirement.CreatedAt = now
	}
	requirement.UpdatedAt = now

	_, err := r.client.Collection(requirementsCollection).Doc(requirement.ID).Set(ctx, requirement)
	if err != nil {
		return errors.Dependency("Failed to create requirement", err)
	}

	return nil
}

func (r *firestoreRequirementRepository) GetByID(ctx context.Context, id string) (*entity.Requirement, error) {
	doc, err := r.client.Collection(requirementsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Requirement", err)
		}
		return nil, errors.Dependency("Failed to get requirement", err)
	}

	var requirement entity.Requirement
	if err := doc.DataTo(&requirement); err != nil {
		return nil, errors.Dependency("Failed to parse requirement data", err)
	}

	return &requirement, nil
}

func (r *firestoreRequirementRepository) List(ctx context.Context, clientID string) ([]*entity.Requirement, error) {
	query := r.client.Collection(requirementsCollection).Query
	if clientID != "" {
		query = query.Where("clientId", "==", clientID)
	}

	// Sorted in memory so the client filter needs no composite index.
	requirements, err := collect[entity.Requirement](ctx, query)
	if err != nil {
		return nil, errors.Dependency("Failed to list requirements", err)
	}
	sortNewestFirst(requirements, func(r *entity.Requirement) int64 { return r.CreatedAt.UnixNano() })

	return requirements, nil
}

func (r *firestoreRequirementRepository) Update(ctx context.Context, requirement *entity.Requirement, from entity.RequirementStatus) (bool, error) {
	docRef := r.client.Collection(requirementsCollection).Doc(requirement.ID)
	var applied entity.RequirementStatus
	updatedAt := time.Now()

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		applied = ""
		doc, err := tx.Get(docRef)
		if err != nil {
			return err
		}

		var stored entity.Requirement
		if err := doc.DataTo(&stored); err != nil {
			return err
		}
		if !updateAllowed(stored.Status, requirement.Status, from) {
			return nil
		}

		updates := []firestore.Update{
			{Path: "title", Value: requirement.Title},
			{Path: "description", Value: requirement.Description},
			{Path: "price", Value: requirement.Price},
			{Path: "location", Value: requirement.Location},
			{Path: "category", Value: requirement.Category},
			{Path: "updatedAt", Value: updatedAt},
		}
		applied = stored.Status
		if requirement.Status != from {
			updates = append(updates, firestore.Update{Path: "status", Value: requirement.Status})
			applied = requirement.Status
		}
		return tx.Update(docRef, updates)
	})
	if err != nil {
		return false, notFoundOr(err, "Requirement", "Failed to update requirement")
	}
	if applied == "" {
		return false, nil
	}

	requirement.Status = applied
	requirement.UpdatedAt = updatedAt
	return true, nil
}

func (r *firestoreRequirementRepository) SetStatus(ctx context.Context, id string, status entity.RequirementStatus) error {
	_, err := r.client.Collection(requirementsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: status},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return notFoundOr(err, "Requirement", "Failed to update requirement status")
	}

	return nil
}

func (r *firestoreRequirementRepository) TransitionStatus(ctx context.Context, id string, from, to entity.RequirementStatus) (bool, error) {
	docRef := r.client.Collection(requirementsCollection).Doc(id)
	changed := false

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		changed = false
		doc, err := tx.Get(docRef)
		if err != nil {
			return err
		}

		var requirement entity.Requirement
		if err := doc.DataTo(&requirement); err != nil {
			return err
		}
		if requirement.Status != from {
			return nil
		}

		changed = true
		return tx.Update(docRef, []firestore.Update{
			{Path: "status", Value: to},
			{Path: "updatedAt", Value: time.Now()},
		})
	})
	if err != nil {
		return false, notFoundOr(err, "Requirement", "Failed to transition requirement status")
	}

	return changed, nil
}

func (r *firestoreRequirementRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(requirementsCollection).Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		return notFoundOr(err, "Requirement", "Failed to delete requirement")
	}

	return nil
}

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
	"servicemarket/pkg/logger"
)

const bidsCollection = "bids"

type firestoreBidRepository struct {
	client *firestore.Client
}

func NewFirestoreBidRepository(client *firestore.Client) repository.BidRepository {
	return &firestoreBidRepository{
		client: client,
	}
}

func (r *firestoreBidRepository) Create(ctx context.Context, bid *entity.Bid) error {
	if bid.ID == "" {
		doc := r.client.Collection(bidsCollection).NewDoc()
		bid.ID = doc.ID
	}

	now := time.Now()
	if bid.CreatedAt.IsZero() {
		bid.CreatedAt = now
	}
	bid.UpdatedAt = now

	_, err := r.client.Collection(bidsCollection).Doc(bid.ID).Set(ctx, bid)
	if err != nil {
		return errors.Dependency("Failed to create bid", err)
	}

	return nil
}

func (r *firestoreBidRepository) GetByID(ctx context.Context, id string) (*entity.Bid, error) {
	doc, err := r.client.Collection(bidsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Bid", err)
		}
		return nil, errors.Dependency("Failed to get bid", err)
	}

	var bid entity.Bid
	if err := doc.DataTo(&bid); err != nil {
		return nil, errors.Dependency("Failed to parse bid data", err)
	}

	return &bid, nil
}

func (r *firestoreBidRepository) ListByProvider(ctx context.Context, providerID string) ([]*entity.Bid, error) {
	return r.listWhere(ctx, "providerId", providerID)
}

func (r *firestoreBidRepository) ListByRequirement(ctx context.Context, requirementID string) ([]*entity.Bid, error) {
	return r.listWhere(ctx, "requirementId", requirementID)
}

func (r *firestoreBidRepository) listWhere(ctx context.Context, field, value string) ([]*entity.Bid, error) {
	query := r.client.Collection(bidsCollection).Where(field, "==", value)

	bids, err := collect[entity.Bid](ctx, query)
	if err != nil {
		logger.Error("Firestore error while listing bids by %s=%s: %v", field, value, err)
		return nil, errors.Dependency("Failed to list bids", err)
	}
	sortNewestFirst(bids, func(b *entity.Bid) int64 { return b.CreatedAt.UnixNano() })

	return bids, nil
}

func (r *firestoreBidRepository) SetStatus(ctx context.Context, id string, status entity.BidStatus) error {
	_, err := r.client.Collection(bidsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: status},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return notFoundOr(err, "Bid", "Failed to update bid status")
	}

	return nil
}

// Accept reads the bid and the accepted bids of its requirement inside one
// transaction, so two accepts on the same requirement cannot both commit.
func (r *firestoreBidRepository) Accept(ctx context.Context, id string) (bool, error) {
	bids := r.client.Collection(bidsCollection)
	docRef := bids.Doc(id)
	var accepted bool

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		accepted = false
		doc, err := tx.Get(docRef)
		if err != nil {
			return err
		}
		var bid entity.Bid
		if err := doc.DataTo(&bid); err != nil {
			return err
		}

		others, err := tx.Documents(bids.
			Where("requirementId", "==", bid.RequirementID).
			Where("status", "==", entity.BidAccepted)).GetAll()
		if err != nil {
			return err
		}
		for _, other := range others {
			if other.Ref.ID != id {
				return nil
			}
		}

		accepted = true
		return tx.Update(docRef, []firestore.Update{
			{Path: "status", Value: entity.BidAccepted},
			{Path: "updatedAt", Value: time.Now()},
		})
	})
	if err != nil {
		return false, notFoundOr(err, "Bid", "Failed to accept bid")
	}

	return accepted, nil
}

func (r *firestoreBidRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(bidsCollection).Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		return notFoundOr(err, "Bid", "Failed to delete bid")
	}

	return nil
}

func (r *firestoreBidRepository) DeleteByRequirement(ctx context.Context, requirementID string) (int, error) {
	docRefs, err := refs(ctx, r.client.Collection(bidsCollection).Where("requirementId", "==", requirementID))
	if err != nil {
		return 0, errors.Dependency("Failed to query bids for requirement", err)
	}

	deleted, err := bulkApply(ctx, r.client, docRefs, func(bw *firestore.BulkWriter, ref *firestore.DocumentRef) (*firestore.BulkWriterJob, error) {
		return bw.Delete(ref)
	})
	if err != nil {
		return deleted, errors.Dependency("Failed to delete bids for requirement", err)
	}

	return deleted, nil
}

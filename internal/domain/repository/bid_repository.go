package repository

import (
	"context"

	"servicemarket/internal/domain/entity"
)

type BidRepository interface {
	Create(ctx context.Context, bid *entity.Bid) error
	GetByID(ctx context.Context, id string) (*entity.Bid, error)
	// ListByProvider and ListByRequirement return bids newest first.
	ListByProvider(ctx context.Context, providerID string) ([]*entity.Bid, error)
	ListByRequirement(ctx context.Context, requirementID string) ([]*entity.Bid, error)
	SetStatus(ctx context.Context, id string, status entity.BidStatus) error
	// Accept marks the bid Accepted unless another bid of the same requirement
	// already is. It reports whether the bid is now Accepted.
	Accept(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	// DeleteByRequirement removes every bid of a requirement and returns how many were removed.
	DeleteByRequirement(ctx context.Context, requirementID string) (int, error)
}

package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"servicemarket/internal/domain/entity"
	"servicemarket/internal/domain/repository"
	"servicemarket/pkg/errors"
	"servicemarket/pkg/logger"
)

type BidUseCase struct {
	bidRepo         repository.BidRepository
	requirementRepo repository.RequirementRepository
	projector       *Projector
}

func NewBidUseCase(
	bidRepo repository.BidRepository,
	requirementRepo repository.RequirementRepository,
	projector *Projector,
) *BidUseCase {
	return &BidUseCase{
		bidRepo:         bidRepo,
		requirementRepo: requirementRepo,
		projector:       projector,
	}
}

type CreateBidInput struct {
	RequirementID string
	Amount        float64
	DeliveryTime  int
	Proposal      string
}

// CreateBid stores a Pending bid and then activates the requirement if it is
// still Pending. The two writes are separate. When the requirement vanished
// in between, the bid is removed again and NotFound is returned; any other
// activation failure leaves the bid in place and the error names it.
func (uc *BidUseCase) CreateBid(ctx context.Context, providerID string, input CreateBidInput) (*entity.Bid, error) {
	if isBlank(providerID) || isBlank(input.RequirementID) {
		return nil, errors.Validation("requirement and provider are required")
	}
	if input.Amount <= 0 {
		return nil, errors.Validation("amount must be greater than zero")
	}
	if input.DeliveryTime <= 0 {
		return nil, errors.Validation("delivery time must be greater than zero")
	}

	requirement, err := uc.requirementRepo.GetByID(ctx, input.RequirementID)
	if err != nil {
		return nil, err
	}
	if requirement.Status == entity.RequirementCompleted {
		return nil, errors.ForbiddenTransition("requirement is completed and no longer accepts bids")
	}

	bid := &entity.Bid{
		RequirementID: requirement.ID,
		ProviderID:    providerID,
		Amount:        input.Amount,
		DeliveryTime:  input.DeliveryTime,
		Proposal:      strings.TrimSpace(input.Proposal),
		Status:        entity.BidPending,
	}
	if err := uc.bidRepo.Create(ctx, bid); err != nil {
		return nil, err
	}

	activated, err := uc.requirementRepo.TransitionStatus(ctx, requirement.ID, entity.RequirementPending, entity.RequirementActive)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, uc.dropOrphan(ctx, bid, err)
		}
		logger.WithFields(logrus.Fields{
			"bid_id":         bid.ID,
			"requirement_id": requirement.ID,
		}).WithError(err).Error("Bid created but requirement activation failed")
		return nil, errors.Dependency(fmt.Sprintf("bid %s was created but requirement %s could not be activated", bid.ID, requirement.ID), err)
	}
	if activated {
		logger.Debug("Requirement %s activated by bid %s", requirement.ID, bid.ID)
	}

	return bid, nil
}

// dropOrphan deletes a bid whose requirement was removed while it was being
// placed.
func (uc *BidUseCase) dropOrphan(ctx context.Context, bid *entity.Bid, cause error) error {
	if err := uc.bidRepo.Delete(ctx, bid.ID); err != nil && !errors.Is(err, errors.CodeNotFound) {
		logger.WithFields(logrus.Fields{
			"bid_id":         bid.ID,
			"requirement_id": bid.RequirementID,
		}).WithError(err).Error("Requirement vanished and the new bid could not be removed")
		return errors.Dependency(fmt.Sprintf("requirement %s was deleted and bid %s could not be removed", bid.RequirementID, bid.ID), err)
	}
	logger.Info("Removed bid %s placed on deleted requirement %s", bid.ID, bid.RequirementID)
	return errors.NotFound("Requirement", cause)
}

func (uc *BidUseCase) ListBidsForProvider(ctx context.Context, providerID string) ([]*BidView, error) {
	if isBlank(providerID) {
		return nil, errors.Validation("provider is required")
	}
	bids, err := uc.bidRepo.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return uc.projector.Bids(ctx, bids)
}

func (uc *BidUseCase) ListBidsForRequirement(ctx context.Context, requirementID string) ([]*BidView, error) {
	if isBlank(requirementID) {
		return nil, errors.Validation("requirement is required")
	}
	bids, err := uc.bidRepo.ListByRequirement(ctx, requirementID)
	if err != nil {
		return nil, err
	}
	return uc.projector.Bids(ctx, bids)
}

func (uc *BidUseCase) GetBid(ctx context.Context, id string) (*BidView, error) {
	bid, err := uc.bidRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.projector.Bid(ctx, bid)
}

// SetBidStatus moves a bid to any status. A requirement keeps at most one
// Accepted bid, enforced by the store; competing bids are not declined
// automatically.
func (uc *BidUseCase) SetBidStatus(ctx context.Context, id string, status entity.BidStatus) (*entity.Bid, error) {
	if !status.Valid() {
		return nil, errors.Validation(fmt.Sprintf("unknown bid status %q", status))
	}

	bid, err := uc.bidRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if status == entity.BidAccepted {
		accepted, err := uc.bidRepo.Accept(ctx, id)
		if err != nil {
			return nil, err
		}
		if !accepted {
			return nil, errors.ForbiddenTransition("another bid is already accepted for this requirement")
		}
	} else if err := uc.bidRepo.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	bid.Status = status
	return bid, nil
}

// DeleteBid removes a bid and returns it. The requirement's status is left
// as it is.
func (uc *BidUseCase) DeleteBid(ctx context.Context, id string) (*entity.Bid, error) {
	bid, err := uc.bidRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.bidRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return bid, nil
}

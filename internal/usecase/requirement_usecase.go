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

type RequirementUseCase struct {
	requirementRepo repository.RequirementRepository
	bidRepo         repository.BidRepository
	projector       *Projector
}

func NewRequirementUseCase(
	requirementRepo repository.RequirementRepository,
	bidRepo repository.BidRepository,
	projector *Projector,
) *RequirementUseCase {
	return &RequirementUseCase{
		requirementRepo: requirementRepo,
		bidRepo:         bidRepo,
		projector:       projector,
	}
}

type CreateRequirementInput struct {
	Title       string
	Description string
	Price       float64
	Location    string
	Category    string
}

// UpdateRequirementInput is a patch; nil fields are left unchanged.
type UpdateRequirementInput struct {
	Title       *string
	Description *string
	Price       *float64
	Location    *string
	Category    *string
	Status      *entity.RequirementStatus
}

func (in UpdateRequirementInput) validate() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"title", in.Title},
		{"description", in.Description},
		{"location", in.Location},
	}
	for _, f := range fields {
		if f.value != nil && isBlank(*f.value) {
			return errors.Validation(fmt.Sprintf("%s cannot be blank", f.name))
		}
	}
	if in.Price != nil && *in.Price <= 0 {
		return errors.Validation("price must be greater than zero")
	}
	if in.Status != nil && !in.Status.Valid() {
		return errors.Validation(fmt.Sprintf("unknown requirement status %q", *in.Status))
	}
	return nil
}

func (uc *RequirementUseCase) CreateRequirement(ctx context.Context, clientID string, input CreateRequirementInput) (*entity.Requirement, error) {
	if isBlank(clientID) {
		return nil, errors.Validation("client is required")
	}
	if isBlank(input.Title) || isBlank(input.Description) || isBlank(input.Location) {
		return nil, errors.Validation("title, description and location are required")
	}
	if input.Price <= 0 {
		return nil, errors.Validation("price must be greater than zero")
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = entity.DefaultCategory
	}

	requirement := &entity.Requirement{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Location:    strings.TrimSpace(input.Location),
		Category:    category,
		Status:      entity.RequirementPending,
		ClientID:    clientID,
	}
	if err := uc.requirementRepo.Create(ctx, requirement); err != nil {
		return nil, err
	}

	logger.Debug("Requirement %s created by client %s", requirement.ID, clientID)
	return requirement, nil
}

// ListRequirements returns every requirement, or one client's when clientID
// is set, newest first with the client's name and email attached.
func (uc *RequirementUseCase) ListRequirements(ctx context.Context, clientID string) ([]*RequirementView, error) {
	requirements, err := uc.requirementRepo.List(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return uc.projector.Requirements(ctx, requirements)
}

func (uc *RequirementUseCase) GetRequirement(ctx context.Context, id string) (*RequirementView, error) {
	requirement, err := uc.requirementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.projector.Requirement(ctx, requirement)
}

// UpdateRequirement applies a patch. A Completed requirement rejects every
// edit, and a status in the patch may only move forward. The fields and the
// status land in one conditional write, so nothing is written when the
// requirement changed after it was read.
func (uc *RequirementUseCase) UpdateRequirement(ctx context.Context, id string, input UpdateRequirementInput) (*entity.Requirement, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	requirement, err := uc.requirementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if requirement.Status == entity.RequirementCompleted {
		return nil, errors.ForbiddenTransition("completed requirements cannot be edited")
	}
	if input.Status != nil && !requirement.Status.CanTransitionTo(*input.Status) {
		return nil, errors.ForbiddenTransition(fmt.Sprintf("cannot move requirement from %s to %s", requirement.Status, *input.Status))
	}

	if input.Title != nil {
		requirement.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		requirement.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		requirement.Price = *input.Price
	}
	if input.Location != nil {
		requirement.Location = strings.TrimSpace(*input.Location)
	}
	if input.Category != nil {
		requirement.Category = strings.TrimSpace(*input.Category)
		if requirement.Category == "" {
			requirement.Category = entity.DefaultCategory
		}
	}

	from := requirement.Status
	if input.Status != nil {
		requirement.Status = *input.Status
	}

	applied, err := uc.requirementRepo.Update(ctx, requirement, from)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, errors.ForbiddenTransition("requirement was completed or its status changed while updating, reload and retry")
	}

	return requirement, nil
}

// SetRequirementStatus sets the status without checking the lifecycle order.
// It is the administrative path; UpdateRequirement is the guarded one.
func (uc *RequirementUseCase) SetRequirementStatus(ctx context.Context, id string, status entity.RequirementStatus) (*entity.Requirement, error) {
	if !status.Valid() {
		return nil, errors.Validation(fmt.Sprintf("unknown requirement status %q", status))
	}
	if err := uc.requirementRepo.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return uc.requirementRepo.GetByID(ctx, id)
}

// DeleteRequirement removes the requirement and then its bids. When the bid
// cleanup fails the requirement is already gone; the error is
// CASCADE_INCOMPLETE so callers can run RepairOrphanBids.
func (uc *RequirementUseCase) DeleteRequirement(ctx context.Context, id string) (*entity.Requirement, error) {
	requirement, err := uc.requirementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := uc.requirementRepo.Delete(ctx, id); err != nil {
		return nil, err
	}

	removed, err := uc.bidRepo.DeleteByRequirement(ctx, id)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"requirement_id": id,
			"bids_removed":   removed,
		}).WithError(err).Error("Bid cleanup failed after requirement delete")
		return nil, errors.CascadeIncomplete(fmt.Sprintf("requirement %s was deleted but its bids were not fully removed", id), err)
	}

	logger.Debug("Requirement %s deleted with %d bids", id, removed)
	return requirement, nil
}

// RepairOrphanBids deletes the bids left behind by an incomplete delete.
// It refuses while the requirement still exists.
func (uc *RequirementUseCase) RepairOrphanBids(ctx context.Context, requirementID string) (int, error) {
	if isBlank(requirementID) {
		return 0, errors.Validation("requirement id is required")
	}

	_, err := uc.requirementRepo.GetByID(ctx, requirementID)
	if err == nil {
		return 0, errors.ForbiddenTransition("requirement still exists, delete it instead")
	}
	if !errors.Is(err, errors.CodeNotFound) {
		return 0, err
	}

	removed, err := uc.bidRepo.DeleteByRequirement(ctx, requirementID)
	if err != nil {
		return removed, err
	}

	logger.Info("Removed %d orphan bids of requirement %s", removed, requirementID)
	return removed, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

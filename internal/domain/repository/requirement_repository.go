package repository

import (
	"context"

	"servicemarket/internal/domain/entity"
)

// RequirementRepository returns errors.NotFound for unknown ids and
// errors.Dependency for store failures.
type RequirementRepository interface {
	Create(ctx context.Context, requirement *entity.Requirement) error
	GetByID(ctx context.Context, id string) (*entity.Requirement, error)
	// List returns requirements newest first; an empty clientID means all clients.
	List(ctx context.Context, clientID string) ([]*entity.Requirement, error)
	// Update writes the editable fields while the stored requirement is not
	// Completed. When requirement.Status differs from `from` the status is
	// written in the same step, and only while the stored status is still
	// `from`. It reports whether the write happened; the client is never touched.
	Update(ctx context.Context, requirement *entity.Requirement, from entity.RequirementStatus) (bool, error)
	SetStatus(ctx context.Context, id string, status entity.RequirementStatus) error
	// TransitionStatus sets status to `to` only while it is still `from`,
	// reporting whether the write happened.
	TransitionStatus(ctx context.Context, id string, from, to entity.RequirementStatus) (bool, error)
	Delete(ctx context.Context, id string) error
}

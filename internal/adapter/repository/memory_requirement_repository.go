package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"servicemarket/internal/domain/entity"
	"servicemarket/internal/domain/repository"
	"servicemarket/pkg/errors"
)

type memoryRequirementRepository struct {
	mu    sync.RWMutex
	items map[string]entity.Requirement
}

func NewMemoryRequirementRepository() repository.RequirementRepository {
	return &memoryRequirementRepository{
		items: make(map[string]entity.Requirement),
	}
}

func (r *memoryRequirementRepository) Create(ctx context.Context, requirement *entity.Requirement) error {
	if requirement.ID == "" {
		requirement.ID = uuid.New().String()
	}
	now := time.Now()
	if requirement.CreatedAt.IsZero() {
		requirement.CreatedAt = now
	}
	requirement.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[requirement.ID] = *requirement
	return nil
}

func (r *memoryRequirementRepository) GetByID(ctx context.Context, id string) (*entity.Requirement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	requirement, ok := r.items[id]
	if !ok {
		return nil, errors.NotFound("Requirement", nil)
	}
	return &requirement, nil
}

func (r *memoryRequirementRepository) List(ctx context.Context, clientID string) ([]*entity.Requirement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	requirements := make([]*entity.Requirement, 0, len(r.items))
	for _, item := range r.items {
		if clientID != "" && item.ClientID != clientID {
			continue
		}
		requirement := item
		requirements = append(requirements, &requirement)
	}
	sort.SliceStable(requirements, func(i, j int) bool {
		return requirements[i].CreatedAt.After(requirements[j].CreatedAt)
	})
	return requirements, nil
}

func (r *memoryRequirementRepository) Update(ctx context.Context, requirement *entity.Requirement, from entity.RequirementStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[requirement.ID]
	if !ok {
		return false, errors.NotFound("Requirement", nil)
	}
	if !updateAllowed(stored.Status, requirement.Status, from) {
		return false, nil
	}
	if requirement.Status != from {
		stored.Status = requirement.Status
	}
	requirement.Status = stored.Status
	stored.Title = requirement.Title
	stored.Description = requirement.Description
	stored.Price = requirement.Price
	stored.Location = requirement.Location
	stored.Category = requirement.Category
	stored.UpdatedAt = time.Now()
	requirement.UpdatedAt = stored.UpdatedAt
	r.items[requirement.ID] = stored
	return true, nil
}

// updateAllowed is the guard shared by the Update implementations.
func updateAllowed(stored, next, from entity.RequirementStatus) bool {
	if stored == entity.RequirementCompleted {
		return false
	}
	return next == from || stored == from
}

func (r *memoryRequirementRepository) SetStatus(ctx context.Context, id string, status entity.RequirementStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	requirement, ok := r.items[id]
	if !ok {
		return errors.NotFound("Requirement", nil)
	}
	requirement.Status = status
	requirement.UpdatedAt = time.Now()
	r.items[id] = requirement
	return nil
}

func (r *memoryRequirementRepository) TransitionStatus(ctx context.Context, id string, from, to entity.RequirementStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	requirement, ok := r.items[id]
	if !ok {
		return false, errors.NotFound("Requirement", nil)
	}
	if requirement.Status != from {
		return false, nil
	}
	requirement.Status = to
	requirement.UpdatedAt = time.Now()
	r.items[id] = requirement
	return true, nil
}

func (r *memoryRequirementRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return errors.NotFound("Requirement", nil)
	}
	delete(r.items, id)
	return nil
}

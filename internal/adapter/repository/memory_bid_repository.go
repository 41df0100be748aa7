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

type memoryBidRepository struct {
	mu    sync.RWMutex
	items map[string]entity.Bid
}

func NewMemoryBidRepository() repository.BidRepository {
	return &memoryBidRepository{
		items: make(map[string]entity.Bid),
	}
}

func (r *memoryBidRepository) Create(ctx context.Context, bid *entity.Bid) error {
	if bid.ID == "" {
		bid.ID = uuid.New().String()
	}
	now := time.Now()
	if bid.CreatedAt.IsZero() {
		bid.CreatedAt = now
	}
	bid.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[bid.ID] = *bid
	return nil
}

func (r *memoryBidRepository) GetByID(ctx context.Context, id string) (*entity.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bid, ok := r.items[id]
	if !ok {
		return nil, errors.NotFound("Bid", nil)
	}
	return &bid, nil
}

func (r *memoryBidRepository) ListByProvider(ctx context.Context, providerID string) ([]*entity.Bid, error) {
	return r.filter(func(b *entity.Bid) bool { return b.ProviderID == providerID }), nil
}

func (r *memoryBidRepository) ListByRequirement(ctx context.Context, requirementID string) ([]*entity.Bid, error) {
	return r.filter(func(b *entity.Bid) bool { return b.RequirementID == requirementID }), nil
}

func (r *memoryBidRepository) filter(match func(*entity.Bid) bool) []*entity.Bid {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bids := make([]*entity.Bid, 0)
	for _, item := range r.items {
		bid := item
		if match(&bid) {
			bids = append(bids, &bid)
		}
	}
	sort.SliceStable(bids, func(i, j int) bool {
		return bids[i].CreatedAt.After(bids[j].CreatedAt)
	})
	return bids
}

func (r *memoryBidRepository) SetStatus(ctx context.Context, id string, status entity.BidStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	bid, ok := r.items[id]
	if !ok {
		return errors.NotFound("Bid", nil)
	}
	bid.Status = status
	bid.UpdatedAt = time.Now()
	r.items[id] = bid
	return nil
}

func (r *memoryBidRepository) Accept(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bid, ok := r.items[id]
	if !ok {
		return false, errors.NotFound("Bid", nil)
	}
	for otherID, other := range r.items {
		if otherID != id && other.RequirementID == bid.RequirementID && other.Status == entity.BidAccepted {
			return false, nil
		}
	}
	bid.Status = entity.BidAccepted
	bid.UpdatedAt = time.Now()
	r.items[id] = bid
	return true, nil
}

func (r *memoryBidRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return errors.NotFound("Bid", nil)
	}
	delete(r.items, id)
	return nil
}

func (r *memoryBidRepository) DeleteByRequirement(ctx context.Context, requirementID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := 0
	for id, bid := range r.items {
		if bid.RequirementID == requirementID {
			delete(r.items, id)
			deleted++
		}
	}
	return deleted, nil
}

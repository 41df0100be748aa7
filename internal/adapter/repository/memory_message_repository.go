package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"servicemarket/internal/domain/entity"
	"servicemarket/internal/domain/repository"
)

// memoryMessageRepository appends messages as they arrive. Callers may set
// CreatedAt themselves, so listings sort by CreatedAt and then ID.
type memoryMessageRepository struct {
	mu    sync.RWMutex
	items []entity.Message
}

func NewMemoryMessageRepository() repository.MessageRepository {
	return &memoryMessageRepository{}
}

func (r *memoryMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	r.items = append(r.items, *message)
	return nil
}

func (r *memoryMessageRepository) ListConversation(ctx context.Context, a, b, bidID string) ([]*entity.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	messages := make([]*entity.Message, 0)
	for i := range r.items {
		item := r.items[i]
		if item.BidID == bidID && item.Between(a, b) {
			messages = append(messages, &item)
		}
	}
	sortByCreation(messages)
	return messages, nil
}

func (r *memoryMessageRepository) MarkRead(ctx context.Context, readerID, senderID, bidID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := 0
	for i := range r.items {
		m := &r.items[i]
		if m.ReceiverID == readerID && m.SenderID == senderID && m.BidID == bidID && !m.IsRead {
			m.IsRead = true
			changed++
		}
	}
	return changed, nil
}

func (r *memoryMessageRepository) CountUnread(ctx context.Context, readerID, bidID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, m := range r.items {
		if m.ReceiverID == readerID && !m.IsRead && (bidID == "" || m.BidID == bidID) {
			count++
		}
	}
	return count, nil
}

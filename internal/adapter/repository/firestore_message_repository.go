package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"golang.org/x/sync/errgroup"

	"servicemarket/internal/domain/entity"
	"servicemarket/internal/domain/repository"
	"servicemarket/pkg/errors"
)

const messagesCollection = "messages"

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

func (r *firestoreMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = r.client.Collection(messagesCollection).NewDoc().ID
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	_, err := r.client.Collection(messagesCollection).Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Dependency("Failed to create message", err)
	}

	return nil
}

// ListConversation queries each direction separately (equality filters only,
// so no composite index) and merges them by creation time.
func (r *firestoreMessageRepository) ListConversation(ctx context.Context, a, b, bidID string) ([]*entity.Message, error) {
	var sent, received []*entity.Message

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sent, err = collect[entity.Message](gctx, r.direction(a, b, bidID))
		return err
	})
	g.Go(func() error {
		var err error
		received, err = collect[entity.Message](gctx, r.direction(b, a, bidID))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Dependency("Failed to fetch conversation", err)
	}

	messages := sent
	// With a == b both queries return the same documents.
	if a != b {
		messages = append(messages, received...)
	}
	sortByCreation(messages)

	return messages, nil
}

func (r *firestoreMessageRepository) direction(senderID, receiverID, bidID string) firestore.Query {
	return r.client.Collection(messagesCollection).
		Where("bidId", "==", bidID).
		Where("senderId", "==", senderID).
		Where("receiverId", "==", receiverID)
}

func (r *firestoreMessageRepository) MarkRead(ctx context.Context, readerID, senderID, bidID string) (int, error) {
	query := r.direction(senderID, readerID, bidID).Where("isRead", "==", false)

	docRefs, err := refs(ctx, query)
	if err != nil {
		return 0, errors.Dependency("Failed to query unread messages", err)
	}

	changed, err := bulkApply(ctx, r.client, docRefs, func(bw *firestore.BulkWriter, ref *firestore.DocumentRef) (*firestore.BulkWriterJob, error) {
		return bw.Update(ref, []firestore.Update{{Path: "isRead", Value: true}})
	})
	if err != nil {
		return changed, errors.Dependency("Failed to mark messages as read", err)
	}

	return changed, nil
}

func (r *firestoreMessageRepository) CountUnread(ctx context.Context, readerID, bidID string) (int, error) {
	query := r.client.Collection(messagesCollection).
		Where("receiverId", "==", readerID).
		Where("isRead", "==", false)
	if bidID != "" {
		query = query.Where("bidId", "==", bidID)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Dependency("Failed to count unread messages", err)
	}

	return len(docs), nil
}

package repository

import (
	"context"

	"servicemarket/internal/domain/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	// ListConversation returns the messages between a and b on bidID,
	// oldest first.
	ListConversation(ctx context.Context, a, b, bidID string) ([]*entity.Message, error)
	// MarkRead flags unread messages sent by senderID to readerID on bidID
	// and returns how many changed.
	MarkRead(ctx context.Context, readerID, senderID, bidID string) (int, error)
	// CountUnread counts unread messages addressed to readerID; empty bidID counts all bids.
	CountUnread(ctx context.Context, readerID, bidID string) (int, error)
}

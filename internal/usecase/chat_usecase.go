package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"servicemarket/internal/domain/entity"
	"servicemarket/internal/domain/repository"
	"servicemarket/pkg/errors"
	"servicemarket/pkg/logger"
)

type ChatUseCase struct {
	messageRepo repository.MessageRepository
	broadcaster Broadcaster
	limiter     MessageLimiter
}

// NewChatUseCase wires the chat tracker. broadcaster and limiter may be nil.
func NewChatUseCase(messageRepo repository.MessageRepository, broadcaster Broadcaster, limiter MessageLimiter) *ChatUseCase {
	return &ChatUseCase{
		messageRepo: messageRepo,
		broadcaster: broadcaster,
		limiter:     limiter,
	}
}

// AppendMessage persists the message and then hands it to the broadcaster.
// A broadcast failure is logged and never undoes the write.
func (uc *ChatUseCase) AppendMessage(ctx context.Context, senderID, receiverID, bidID, text string) (*entity.Message, error) {
	if isBlank(senderID) || isBlank(receiverID) || isBlank(bidID) {
		return nil, errors.Validation("sender, receiver and bid are required")
	}
	if isBlank(text) {
		return nil, errors.Validation("message text cannot be empty")
	}

	if uc.limiter != nil && !uc.limiter.Allow(senderID) {
		logger.Warn("AppendMessage rate limited for user %s", senderID)
		return nil, errors.TooManyRequests("too many messages, slow down")
	}

	message := &entity.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		BidID:      bidID,
		Text:       text,
		IsRead:     false,
		CreatedAt:  time.Now(),
	}
	if err := uc.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	if uc.broadcaster != nil {
		if err := uc.broadcaster.Publish(message); err != nil {
			logger.WithFields(logrus.Fields{
				"message_id": message.ID,
				"bid_id":     bidID,
			}).WithError(err).Warn("Message stored but broadcast failed")
		}
	}

	return message, nil
}

// GetHistory returns the messages exchanged by userA and userB on bidID,
// oldest first.
func (uc *ChatUseCase) GetHistory(ctx context.Context, userA, userB, bidID string) ([]*entity.Message, error) {
	if isBlank(userA) || isBlank(userB) || isBlank(bidID) {
		return nil, errors.Validation("both users and the bid are required")
	}
	return uc.messageRepo.ListConversation(ctx, userA, userB, bidID)
}

// MarkRead flags what otherID sent to readerID on bidID as read. Running it
// twice changes nothing the second time.
func (uc *ChatUseCase) MarkRead(ctx context.Context, readerID, otherID, bidID string) (int, error) {
	if isBlank(readerID) || isBlank(otherID) || isBlank(bidID) {
		return 0, errors.Validation("reader, sender and bid are required")
	}
	return uc.messageRepo.MarkRead(ctx, readerID, otherID, bidID)
}

// UnreadCount counts unread messages addressed to readerID, across all bids
// when bidID is empty.
func (uc *ChatUseCase) UnreadCount(ctx context.Context, readerID, bidID string) (int, error) {
	if isBlank(readerID) {
		return 0, errors.Validation("reader is required")
	}
	return uc.messageRepo.CountUnread(ctx, readerID, bidID)
}

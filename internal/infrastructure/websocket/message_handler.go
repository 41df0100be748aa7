package websocket

import (
	"context"
	"encoding/json"
	"time"

	"servicemarket/internal/domain/entity"
	"servicemarket/pkg/errors"
	"servicemarket/pkg/logger"
)

const (
	MessageTypePing        = "ping"
	MessageTypePong        = "pong"
	MessageTypeSendMessage = "send_message"
	MessageTypeMessageSent = "message_sent"
	MessageTypeMessage     = "message"
	MessageTypeMarkRead    = "mark_read"
	MessageTypeReadReceipt = "read_receipt"
	MessageTypeError       = "error"
)

// ChatService is the part of the chat tracker reachable over the socket.
type ChatService interface {
	AppendMessage(ctx context.Context, senderID, receiverID, bidID, text string) (*entity.Message, error)
	MarkRead(ctx context.Context, readerID, otherID, bidID string) (int, error)
}

// WSMessage is an inbound frame.
type WSMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type envelope struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type SendMessageData struct {
	TempID     string `json:"temp_id,omitempty"`
	ReceiverID string `json:"receiver_id"`
	BidID      string `json:"bid_id"`
	Text       string `json:"text"`
}

type MessageSentData struct {
	TempID  string          `json:"temp_id,omitempty"`
	Message *entity.Message `json:"message"`
}

type MarkReadData struct {
	OtherID string `json:"other_id"`
	BidID   string `json:"bid_id"`
}

type ReadReceiptData struct {
	ReaderID string `json:"reader_id"`
	OtherID  string `json:"other_id"`
	BidID    string `json:"bid_id"`
	Count    int    `json:"count"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func encode(messageType string, data interface{}) ([]byte, error) {
	return json.Marshal(envelope{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleClientMessage processes one inbound frame from client.
func (m *Manager) HandleClientMessage(ctx context.Context, client *Client, chat ChatService, raw []byte) {
	var frame WSMessage
	if err := json.Unmarshal(raw, &frame); err != nil {
		m.sendError(client, errors.BadRequest("Invalid message format", err))
		return
	}

	switch frame.Type {
	case MessageTypePing:
		m.reply(client, MessageTypePong, nil)

	case MessageTypeSendMessage:
		var data SendMessageData
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			m.sendError(client, errors.BadRequest("Invalid send_message payload", err))
			return
		}
		message, err := chat.AppendMessage(ctx, client.UserID, data.ReceiverID, data.BidID, data.Text)
		if err != nil {
			m.sendError(client, err)
			return
		}
		m.reply(client, MessageTypeMessageSent, MessageSentData{TempID: data.TempID, Message: message})

	case MessageTypeMarkRead:
		var data MarkReadData
		if err := json.Unmarshal(frame.Data, &data); err != nil {
			m.sendError(client, errors.BadRequest("Invalid mark_read payload", err))
			return
		}
		count, err := chat.MarkRead(ctx, client.UserID, data.OtherID, data.BidID)
		if err != nil {
			m.sendError(client, err)
			return
		}
		receipt := ReadReceiptData{ReaderID: client.UserID, OtherID: data.OtherID, BidID: data.BidID, Count: count}
		m.reply(client, MessageTypeReadReceipt, receipt)
		if count > 0 {
			if payload, err := encode(MessageTypeReadReceipt, receipt); err == nil {
				m.SendToUser(data.OtherID, payload)
			}
		}

	default:
		m.sendError(client, errors.BadRequest("Unknown message type: "+frame.Type, nil))
	}
}

func (m *Manager) reply(client *Client, messageType string, data interface{}) {
	payload, err := encode(messageType, data)
	if err != nil {
		logger.Error("Failed to encode %s frame: %v", messageType, err)
		return
	}
	m.deliver(client, payload)
}

func (m *Manager) sendError(client *Client, err error) {
	data := ErrorData{Code: errors.CodeInternal, Message: "Something went wrong"}
	if appErr, ok := errors.As(err); ok {
		data = ErrorData{Code: appErr.Code, Message: appErr.Message}
	}
	logger.Debug("Websocket error for %s: %v", client.UserID, err)
	m.reply(client, MessageTypeError, data)
}

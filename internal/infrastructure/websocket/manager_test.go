package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicemarket/internal/domain/entity"
	"servicemarket/pkg/errors"
)

type fakeChat struct {
	appended []SendMessageData
	sender   string
	marked   int
	err      error
}

func (f *fakeChat) AppendMessage(ctx context.Context, senderID, receiverID, bidID, text string) (*entity.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sender = senderID
	f.appended = append(f.appended, SendMessageData{ReceiverID: receiverID, BidID: bidID, Text: text})
	return &entity.Message{ID: "m-1", SenderID: senderID, ReceiverID: receiverID, BidID: bidID, Text: text}, nil
}

func (f *fakeChat) MarkRead(ctx context.Context, readerID, otherID, bidID string) (int, error) {
	return f.marked, f.err
}

func startManager(t *testing.T) *Manager {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	m := NewManager()
	m.Start(ctx)
	return m
}

func receive(t *testing.T, c *Client) envelope {
	t.Helper()
	select {
	case payload, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var e struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(payload, &e))
		return envelope{Type: e.Type, Data: e.Data}
	case <-time.After(time.Second):
		t.Fatal("no frame received")
	}
	return envelope{}
}

func TestManager_PublishReachesEveryClient(t *testing.T) {
	m := startManager(t)
	alice := NewClient("alice", nil)
	bob := NewClient("bob", nil)
	m.Register(alice)
	m.Register(bob)

	require.NoError(t, m.Publish(&entity.Message{ID: "m-1", Text: "hi"}))

	for _, c := range []*Client{alice, bob} {
		frame := receive(t, c)
		assert.Equal(t, MessageTypeMessage, frame.Type)
		assert.Contains(t, string(frame.Data.(json.RawMessage)), `"id":"m-1"`)
	}
}

func TestManager_PublishDoesNotBlockWhenQueueIsFull(t *testing.T) {
	m := NewManager() // hub loop not started, nothing drains the queue

	for i := 0; i < broadcastBuffer; i++ {
		require.NoError(t, m.Publish(&entity.Message{ID: "m"}))
	}
	assert.ErrorIs(t, m.Publish(&entity.Message{ID: "overflow"}), ErrBroadcastFull)
}

func TestManager_UnregisterClosesSend(t *testing.T) {
	m := startManager(t)
	c := NewClient("alice", nil)
	m.Register(c)
	m.Unregister(c)

	select {
	case _, ok := <-c.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
	assert.Equal(t, 0, m.ClientCount())
}

func TestHandleClientMessage_SendMessage(t *testing.T) {
	m := startManager(t)
	c := NewClient("alice", nil)
	m.Register(c)
	chat := &fakeChat{}

	raw := []byte(`{"type":"send_message","data":{"temp_id":"t-1","receiver_id":"bob","bid_id":"bid-1","text":"hello"}}`)
	m.HandleClientMessage(context.Background(), c, chat, raw)

	require.Len(t, chat.appended, 1)
	assert.Equal(t, "alice", chat.sender, "sender comes from the connection, not the payload")
	assert.Equal(t, "bob", chat.appended[0].ReceiverID)

	frame := receive(t, c)
	assert.Equal(t, MessageTypeMessageSent, frame.Type)
	assert.Contains(t, string(frame.Data.(json.RawMessage)), `"temp_id":"t-1"`)
}

func TestHandleClientMessage_ReportsAppErrors(t *testing.T) {
	m := startManager(t)
	c := NewClient("alice", nil)
	m.Register(c)
	chat := &fakeChat{err: errors.Validation("message text cannot be empty")}

	m.HandleClientMessage(context.Background(), c, chat, []byte(`{"type":"send_message","data":{"receiver_id":"bob","bid_id":"b","text":" "}}`))

	frame := receive(t, c)
	assert.Equal(t, MessageTypeError, frame.Type)
	assert.Contains(t, string(frame.Data.(json.RawMessage)), errors.CodeValidation)
}

func TestHandleClientMessage_MarkReadNotifiesOtherParty(t *testing.T) {
	m := startManager(t)
	alice := NewClient("alice", nil)
	bob := NewClient("bob", nil)
	m.Register(alice)
	m.Register(bob)
	chat := &fakeChat{marked: 2}

	m.HandleClientMessage(context.Background(), alice, chat, []byte(`{"type":"mark_read","data":{"other_id":"bob","bid_id":"bid-1"}}`))

	assert.Equal(t, MessageTypeReadReceipt, receive(t, alice).Type)
	assert.Equal(t, MessageTypeReadReceipt, receive(t, bob).Type)
}

func TestHandleClientMessage_InvalidFrame(t *testing.T) {
	m := startManager(t)
	c := NewClient("alice", nil)
	m.Register(c)

	m.HandleClientMessage(context.Background(), c, &fakeChat{}, []byte(`not json`))
	assert.Equal(t, MessageTypeError, receive(t, c).Type)

	m.HandleClientMessage(context.Background(), c, &fakeChat{}, []byte(`{"type":"ping"}`))
	assert.Equal(t, MessageTypePong, receive(t, c).Type)
}

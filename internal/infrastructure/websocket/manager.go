package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"servicemarket/internal/domain/entity"
	"servicemarket/pkg/logger"
)

const (
	broadcastBuffer = 256
	sendBuffer      = 64

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 * 1024
)

// ErrBroadcastFull is returned by Publish when the hub is not keeping up.
var ErrBroadcastFull = errors.New("websocket: broadcast queue is full")

// Client is one websocket connection. A user may hold several.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
	}
}

// Manager is the hub every connection registers with. Sends to a client and
// closing its Send channel both happen under mutex, so a removed client is
// never written to.
type Manager struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop until ctx is done.
func (m *Manager) Start(ctx context.Context) {
	go m.run(ctx)
}

func (m *Manager) run(ctx context.Context) {
	for {
		select {
		case client := <-m.register:
			m.mutex.Lock()
			m.clients[client] = struct{}{}
			m.mutex.Unlock()
			logger.Debug("Websocket client registered: %s", client.UserID)

		case client := <-m.unregister:
			m.mutex.Lock()
			m.remove(client)
			m.mutex.Unlock()
			logger.Debug("Websocket client unregistered: %s", client.UserID)

		case payload := <-m.broadcast:
			m.mutex.Lock()
			for client := range m.clients {
				select {
				case client.Send <- payload:
				default:
					logger.Warn("Dropping slow websocket client %s", client.UserID)
					m.remove(client)
				}
			}
			m.mutex.Unlock()

		case <-ctx.Done():
			close(m.done)
			m.mutex.Lock()
			for client := range m.clients {
				m.remove(client)
			}
			m.mutex.Unlock()
			return
		}
	}
}

// remove must be called with mutex held.
func (m *Manager) remove(client *Client) {
	if _, ok := m.clients[client]; ok {
		delete(m.clients, client)
		close(client.Send)
	}
}

func (m *Manager) Register(client *Client) {
	select {
	case m.register <- client:
	case <-m.done:
		close(client.Send)
	}
}

func (m *Manager) Unregister(client *Client) {
	select {
	case m.unregister <- client:
	case <-m.done:
	}
}

// Publish queues a stored message for every connected client. It never
// blocks: when the queue is full the message is dropped and ErrBroadcastFull
// returned.
func (m *Manager) Publish(message *entity.Message) error {
	payload, err := encode(MessageTypeMessage, message)
	if err != nil {
		return err
	}

	select {
	case m.broadcast <- payload:
		return nil
	default:
		return ErrBroadcastFull
	}
}

// SendToUser delivers payload to every connection of userID.
func (m *Manager) SendToUser(userID string, payload []byte) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for client := range m.clients {
		if client.UserID == userID {
			trySend(client, payload)
		}
	}
}

func (m *Manager) deliver(client *Client, payload []byte) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if _, ok := m.clients[client]; ok {
		trySend(client, payload)
	}
}

func trySend(client *Client, payload []byte) {
	select {
	case client.Send <- payload:
	default:
		logger.Warn("Websocket send buffer full for %s, dropping frame", client.UserID)
	}
}

func (m *Manager) ClientCount() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// ReadPump reads frames until the connection fails and hands each one to
// HandleClientMessage.
func (c *Client) ReadPump(ctx context.Context, m *Manager, chat ChatService) {
	defer func() {
		m.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("Websocket read error for %s: %v", c.UserID, err)
			}
			return
		}
		m.HandleClientMessage(ctx, c, chat, message)
	}
}

// WritePump drains Send to the connection and keeps it alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("Websocket write error for %s: %v", c.UserID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

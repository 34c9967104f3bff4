package pool

import (
	"context"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type ClientPool interface {
	AddClient(userID int, conn *websocket.Conn)
	GetClient(userID int) *Client
	RemoveClient(userID int, conn *websocket.Conn)
	NotifyUser(userID int, eventType string, data interface{}) bool
}

type Client struct {
	UserID int
	Conn   *websocket.Conn
	Ctx    context.Context
	Cancel context.CancelFunc

	mu sync.Mutex
}

// WriteJSON serializes concurrent writes to the connection; the room
// subscription goroutines and notification senders share one socket.
func (c *Client) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(v)
}

type Pool struct {
	mu      sync.Mutex
	clients map[int]*Client
}

var GlobalPool ClientPool = &Pool{
	clients: make(map[int]*Client),
}

// AddClient registers a connection for the user. A reconnect replaces the
// previous registration; the replaced client's context is cancelled so its
// goroutines wind down.
func (p *Pool) AddClient(userID int, conn *websocket.Conn) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if old := p.clients[userID]; old != nil {
		old.Cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.clients[userID] = &Client{
		UserID: userID,
		Conn:   conn,
		Ctx:    ctx,
		Cancel: cancel,
	}
	log.Printf("Client %d added to pool", userID)
}

func (p *Pool) GetClient(userID int) *Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.clients[userID]
}

// RemoveClient drops the user's registration, but only while it still belongs
// to conn. After a reconnect the old connection's cleanup must not evict the
// new registration.
func (p *Pool) RemoveClient(userID int, conn *websocket.Conn) {
	p.mu.Lock()
	client := p.clients[userID]
	if client == nil || client.Conn != conn {
		p.mu.Unlock()
		return
	}
	delete(p.clients, userID)
	p.mu.Unlock()

	client.Cancel()
	log.Printf("Client %d removed from pool", userID)
}

// NotifyUser pushes a one-off event to a connected user. Returns false when
// the user has no live connection; callers treat that as a no-op.
func (p *Pool) NotifyUser(userID int, eventType string, data interface{}) bool {
	client := p.GetClient(userID)
	if client == nil {
		return false
	}

	err := client.WriteJSON(map[string]interface{}{
		"event": eventType,
		"data":  data,
	})
	if err != nil {
		log.Printf("Error sending %s event to user %d: %v", eventType, userID, err)
		client.Conn.Close()
		p.RemoveClient(userID, client.Conn)
		return false
	}

	log.Printf("Sent %s event to user %d", eventType, userID)
	return true
}

package pool

import (
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestPool() *Pool {
	return &Pool{clients: make(map[int]*Client)}
}

func TestRemoveClientRequiresOwningConnection(t *testing.T) {
	p := newTestPool()
	first := &websocket.Conn{}
	second := &websocket.Conn{}

	p.AddClient(7, first)
	p.AddClient(7, second)

	// The first connection's deferred cleanup runs after the reconnect; it
	// must not evict the second registration.
	p.RemoveClient(7, first)

	client := p.GetClient(7)
	if client == nil || client.Conn != second {
		t.Fatal("expected the reconnect's registration to survive the stale cleanup")
	}

	p.RemoveClient(7, second)
	if p.GetClient(7) != nil {
		t.Fatal("expected the owning connection's cleanup to remove the client")
	}
}

func TestAddClientCancelsReplacedRegistration(t *testing.T) {
	p := newTestPool()

	p.AddClient(7, &websocket.Conn{})
	replaced := p.GetClient(7)

	p.AddClient(7, &websocket.Conn{})

	select {
	case <-replaced.Ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("expected the replaced client's context to be cancelled")
	}
}

func TestNotifyUserWithoutConnection(t *testing.T) {
	p := newTestPool()
	if p.NotifyUser(7, "invitation_received", nil) {
		t.Fatal("expected NotifyUser to report false for a disconnected user")
	}
}

package handlers

import (
	"context"
	"log"
	"net/http"

	"FounderHub/server/internal/appMiddleware"
	"FounderHub/server/internal/models"
	"FounderHub/server/internal/pool"
	"FounderHub/server/internal/services"
	"FounderHub/server/internal/stream"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler is the live chat endpoint. After a token handshake the
// client joins rooms; each joined room gets a broker subscription whose
// events are forwarded onto the socket. Messages sent over the socket go
// through the same services as the REST path.
func WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	userID, err := appMiddleware.ParseUserID(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading to WebSocket: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("User %d connected to WebSocket", userID)

	clientPool := pool.GlobalPool
	clientPool.AddClient(userID, conn)
	defer clientPool.RemoveClient(userID, conn)

	client := clientPool.GetClient(userID)
	session := &wsSession{
		userID:        userID,
		client:        client,
		subscriptions: make(map[string]func()),
	}
	defer session.leaveAll()

	for {
		var msg struct {
			Event   string `json:"event"`
			RoomID  string `json:"room_id"`
			Content string `json:"content"`

			Attachment *models.Attachment `json:"attachment"`
		}

		if err := conn.ReadJSON(&msg); err != nil {
			log.Printf("Error reading message from user %d: %v", userID, err)
			break
		}

		switch msg.Event {
		case "join_room":
			session.joinRoom(r.Context(), msg.RoomID)

		case "leave_room":
			session.leaveRoom(msg.RoomID)

		case "send_message":
			session.sendMessage(r.Context(), msg.RoomID, msg.Content, msg.Attachment)

		case "message_read":
			session.markRead(r.Context(), msg.RoomID)

		default:
			log.Printf("User %d sent unknown event %q", userID, msg.Event)
		}
	}
}

// wsSession is the per-connection room subscription state. It is only
// touched from the connection's read loop; the forwarding goroutines it
// spawns write through the client's serialized WriteJSON.
type wsSession struct {
	userID        int
	client        *pool.Client
	subscriptions map[string]func()
}

func (s *wsSession) joinRoom(ctx context.Context, roomID string) {
	if roomID == "" {
		return
	}
	if _, joined := s.subscriptions[roomID]; joined {
		return
	}

	member, err := roomMembership(ctx, roomID, s.userID)
	if err != nil || !member {
		log.Printf("User %d denied joining room %s: %v", s.userID, roomID, err)
		return
	}

	events, unsubscribe := stream.GlobalBroker.Subscribe(roomID)
	s.subscriptions[roomID] = unsubscribe

	go forwardRoomEvents(events, unsubscribe, s.userID, s.client.WriteJSON)

	// Seed the room view so the client does not wait for the next push.
	s.pushMessages(ctx, roomID)
	log.Printf("User %d joined room %s", s.userID, roomID)
}

// forwardRoomEvents pushes broker events onto the socket until the channel
// closes or a write fails. A failed write tears down the subscription so the
// broker stops fanning out to a dead connection.
func forwardRoomEvents(events <-chan stream.Event, unsubscribe func(), userID int, write func(interface{}) error) {
	defer unsubscribe()
	for ev := range events {
		err := write(map[string]interface{}{
			"event":   ev.Type,
			"room_id": ev.RoomID,
			"data":    ev.Data,
		})
		if err != nil {
			log.Printf("Error forwarding %s event to user %d: %v", ev.Type, userID, err)
			return
		}
	}
}

func (s *wsSession) leaveRoom(roomID string) {
	unsubscribe, ok := s.subscriptions[roomID]
	if !ok {
		return
	}
	delete(s.subscriptions, roomID)
	unsubscribe()
	log.Printf("User %d left room %s", s.userID, roomID)
}

func (s *wsSession) leaveAll() {
	for roomID, unsubscribe := range s.subscriptions {
		delete(s.subscriptions, roomID)
		unsubscribe()
	}
}

func (s *wsSession) sendMessage(ctx context.Context, roomID, content string, attachment *models.Attachment) {
	var err error
	switch {
	case services.IsPrivateRoomID(roomID):
		err = privateChatService.SendMessage(ctx, roomID, s.userID, content, attachment)
	case services.IsGroupRoomID(roomID):
		startupID, ok := services.ParseGroupRoomID(roomID)
		if !ok {
			log.Printf("User %d sent message to malformed room %q", s.userID, roomID)
			return
		}
		err = chatService.SendMessage(ctx, startupID, s.userID, content, attachment)
	default:
		log.Printf("User %d sent message to unknown room %q", s.userID, roomID)
		return
	}
	if err != nil {
		log.Printf("Error sending message from user %d to room %s: %v", s.userID, roomID, err)
	}
}

func (s *wsSession) markRead(ctx context.Context, roomID string) {
	var err error
	if services.IsPrivateRoomID(roomID) {
		err = privateChatService.MarkMessagesAsRead(ctx, roomID, s.userID)
	} else {
		err = chatService.MarkMessagesAsRead(ctx, roomID, s.userID)
	}
	if err != nil {
		log.Printf("Error marking room %s read for user %d: %v", roomID, s.userID, err)
	}
}

func (s *wsSession) pushMessages(ctx context.Context, roomID string) {
	var data interface{}
	var err error
	if services.IsPrivateRoomID(roomID) {
		data, err = privateChatService.GetMessages(ctx, roomID)
	} else {
		data, err = chatService.GetMessages(ctx, roomID)
	}
	if err != nil {
		log.Printf("Error loading initial messages for room %s: %v", roomID, err)
		return
	}

	if err := s.client.WriteJSON(map[string]interface{}{
		"event":   "messages",
		"room_id": roomID,
		"data":    data,
	}); err != nil {
		log.Printf("Error sending initial messages to user %d: %v", s.userID, err)
	}
}

func roomMembership(ctx context.Context, roomID string, userID int) (bool, error) {
	if services.IsPrivateRoomID(roomID) {
		return privateChatService.IsParticipant(ctx, roomID, userID)
	}
	return chatService.IsMember(ctx, roomID, userID)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"FounderHub/server/internal/db"
	"FounderHub/server/internal/models"
	"FounderHub/server/internal/stream"

	"github.com/Masterminds/squirrel"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jackc/pgx/v5"
)

// GroupRoomID derives the room key for a startup. One room per startup.
func GroupRoomID(startupID int) string {
	return fmt.Sprintf("startup_%d", startupID)
}

// IsGroupRoomID reports whether a room key names a group room.
func IsGroupRoomID(roomID string) bool {
	return strings.HasPrefix(roomID, "startup_")
}

// ParseGroupRoomID recovers the startup id from a group room key.
func ParseGroupRoomID(roomID string) (int, bool) {
	var startupID int
	if _, err := fmt.Sscanf(roomID, "startup_%d", &startupID); err != nil || startupID <= 0 {
		return 0, false
	}
	return startupID, true
}

type ChatService interface {
	GetOrCreateRoom(ctx context.Context, startupID int, startupName string, memberIDs []int) (string, error)
	AddMember(ctx context.Context, startupID, userID int, fallbackName string, fallbackOwnerID int) error
	GetRoomInfo(ctx context.Context, roomID string) (*models.ChatRoom, error)
	GetUserRooms(ctx context.Context, userID int) ([]models.ChatRoom, error)
	IsMember(ctx context.Context, roomID string, userID int) (bool, error)
	SendMessage(ctx context.Context, startupID, senderID int, content string, attachment *models.Attachment) error
	GetMessages(ctx context.Context, roomID string) ([]models.Message, error)
	MarkMessagesAsRead(ctx context.Context, roomID string, viewerID int) error
	DeleteMessage(ctx context.Context, messageID, requesterID int) error
}

type chatService struct {
	UserService *UserService
	Broker      *stream.Broker
	roomCache   *lru.Cache[string, *models.ChatRoom]
}

func NewChatService(userService *UserService, broker *stream.Broker) *chatService {
	cache, _ := lru.New[string, *models.ChatRoom](256)
	return &chatService{
		UserService: userService,
		Broker:      broker,
		roomCache:   cache,
	}
}

// GetOrCreateRoom creates the startup's room on first access, seeded with
// memberIDs. An existing room gets the ids merged in; the member set never
// shrinks. Creating with an empty member set is a validation error.
func (cs *chatService) GetOrCreateRoom(ctx context.Context, startupID int, startupName string, memberIDs []int) (string, error) {
	roomID := GroupRoomID(startupID)

	if len(memberIDs) == 0 {
		exists, err := cs.roomExists(ctx, roomID)
		if err != nil {
			return "", err
		}
		if !exists {
			log.Printf("Refusing to create room %s with no members", roomID)
			return "", models.ErrEmptyMembers
		}
		return roomID, nil
	}

	if err := cs.upsertRoom(ctx, roomID, startupID, startupName); err != nil {
		return "", err
	}
	if err := cs.insertMembers(ctx, roomID, memberIDs); err != nil {
		return "", err
	}

	cs.roomCache.Remove(roomID)
	return roomID, nil
}

// AddMember folds a user into the startup's room, creating the room seeded
// with {fallbackOwnerID, userID} when it does not exist yet. Adding an
// existing member is a no-op.
func (cs *chatService) AddMember(ctx context.Context, startupID, userID int, fallbackName string, fallbackOwnerID int) error {
	roomID := GroupRoomID(startupID)

	if err := cs.upsertRoom(ctx, roomID, startupID, fallbackName); err != nil {
		return err
	}

	members := []int{userID}
	if fallbackOwnerID != 0 && fallbackOwnerID != userID {
		members = append(members, fallbackOwnerID)
	}
	if err := cs.insertMembers(ctx, roomID, members); err != nil {
		return err
	}

	cs.roomCache.Remove(roomID)
	log.Printf("User %d added to room %s", userID, roomID)
	return nil
}

func (cs *chatService) upsertRoom(ctx context.Context, roomID string, startupID int, startupName string) error {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Insert("chat_rooms").
		Columns("id", "start_up_id", "start_up_name").
		Values(roomID, startupID, startupName).
		Suffix("ON CONFLICT (id) DO NOTHING")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return err
	}

	_, err = db.Pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error upserting room %s: %v", roomID, err)
	}
	return err
}

// insertMembers is an atomic set union: concurrent callers cannot lose each
// other's additions and re-adding an existing member is a no-op.
func (cs *chatService) insertMembers(ctx context.Context, roomID string, memberIDs []int) error {
	builder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Insert("chat_room_members").
		Columns("room_id", "user_id").
		Suffix("ON CONFLICT (room_id, user_id) DO NOTHING")
	for _, id := range memberIDs {
		builder = builder.Values(roomID, id)
	}

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return err
	}

	_, err = db.Pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error adding members to room %s: %v", roomID, err)
	}
	return err
}

func (cs *chatService) roomExists(ctx context.Context, roomID string) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM chat_rooms WHERE id = $1)", roomID).Scan(&exists)
	if err != nil {
		log.Printf("Error checking room %s: %v", roomID, err)
		return false, err
	}
	return exists, nil
}

func (cs *chatService) GetRoomInfo(ctx context.Context, roomID string) (*models.ChatRoom, error) {
	if room, ok := cs.roomCache.Get(roomID); ok {
		return room, nil
	}

	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("id", "start_up_id", "start_up_name", "last_message", "last_message_time", "created_at").
		From("chat_rooms").
		Where(squirrel.Eq{"id": roomID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	var room models.ChatRoom
	err = db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&room.ID, &room.StartUpID,
		&room.StartUpName, &room.LastMessage, &room.LastMessageTime, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrRoomNotFound
		}
		log.Printf("Error fetching room %s: %v", roomID, err)
		return nil, err
	}

	members, err := cs.getMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}
	room.Members = members

	cs.roomCache.Add(roomID, &room)
	return &room, nil
}

func (cs *chatService) getMembers(ctx context.Context, roomID string) ([]int, error) {
	rows, err := db.Pool.Query(ctx,
		"SELECT user_id FROM chat_room_members WHERE room_id = $1 ORDER BY joined_at", roomID)
	if err != nil {
		log.Printf("Error fetching members for room %s: %v", roomID, err)
		return nil, err
	}
	defer rows.Close()

	var members []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			log.Printf("Error scanning member row: %v", err)
			continue
		}
		members = append(members, id)
	}
	return members, rows.Err()
}

func (cs *chatService) GetUserRooms(ctx context.Context, userID int) ([]models.ChatRoom, error) {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("r.id", "r.start_up_id", "r.start_up_name", "r.last_message", "r.last_message_time", "r.created_at").
		From("chat_rooms r").
		Join("chat_room_members m ON r.id = m.room_id").
		Where(squirrel.Eq{"m.user_id": userID}).
		OrderBy("r.last_message_time DESC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error fetching rooms for user %d: %v", userID, err)
		return nil, err
	}
	defer rows.Close()

	var rooms []models.ChatRoom
	for rows.Next() {
		var room models.ChatRoom
		err := rows.Scan(&room.ID, &room.StartUpID, &room.StartUpName,
			&room.LastMessage, &room.LastMessageTime, &room.CreatedAt)
		if err != nil {
			log.Printf("Error scanning room row: %v", err)
			continue
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range rooms {
		members, err := cs.getMembers(ctx, rooms[i].ID)
		if err != nil {
			continue
		}
		rooms[i].Members = members

		unread, err := cs.unreadCount(ctx, rooms[i].ID, userID)
		if err != nil {
			continue
		}
		rooms[i].UnreadCount = unread
	}

	return rooms, nil
}

// unreadCount is derived from the read flags rather than cached on the room,
// so it cannot drift.
func (cs *chatService) unreadCount(ctx context.Context, roomID string, userID int) (int, error) {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("COUNT(*)").
		From("messages").
		Where(squirrel.And{
			squirrel.Eq{"room_id": roomID},
			squirrel.NotEq{"sender_id": userID},
			squirrel.Eq{"is_read": false},
		})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&count)
	return count, err
}

func (cs *chatService) IsMember(ctx context.Context, roomID string, userID int) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM chat_room_members WHERE room_id = $1 AND user_id = $2)",
		roomID, userID).Scan(&exists)
	if err != nil {
		log.Printf("Error checking membership of user %d in room %s: %v", userID, roomID, err)
		return false, err
	}
	return exists, nil
}

// SendMessage appends a message and refreshes the room's denormalized last
// message. Sending with neither text nor attachment is a no-op; only room
// members may send.
func (cs *chatService) SendMessage(ctx context.Context, startupID, senderID int, content string, attachment *models.Attachment) error {
	content = strings.TrimSpace(content)
	if attachment != nil && attachment.URL == "" {
		attachment = nil
	}
	if content == "" && attachment == nil {
		log.Printf("Ignoring empty message from user %d to startup %d", senderID, startupID)
		return nil
	}

	roomID := GroupRoomID(startupID)

	member, err := cs.IsMember(ctx, roomID, senderID)
	if err != nil {
		return err
	}
	if !member {
		log.Printf("User %d may not send to room %s", senderID, roomID)
		return models.ErrNotRoomParticipant
	}

	sender, err := cs.UserService.GetUserById(ctx, senderID)
	if err != nil {
		return err
	}

	var fileURL, fileName, imageURL string
	if attachment != nil {
		fileURL = attachment.URL
		fileName = attachment.Name
		if attachment.IsImage() {
			imageURL = attachment.URL
		}
	}

	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Insert("messages").
		Columns("room_id", "start_up_id", "sender_id", "sender_name", "sender_avatar",
			"content", "file_url", "file_name", "image_url").
		Values(roomID, startupID, senderID, sender.FullName, sender.AvatarURL,
			content, fileURL, fileName, imageURL).
		Suffix("RETURNING id")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return err
	}

	var messageID int
	if err := db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&messageID); err != nil {
		log.Printf("Error saving message: %v", err)
		return err
	}

	lastMessage := content
	if lastMessage == "" {
		lastMessage = fileName
	}
	if err := cs.updateLastMessage(ctx, roomID, lastMessage); err != nil {
		return err
	}

	log.Printf("Message %d sent to room %s by user %d", messageID, roomID, senderID)
	cs.publishMessages(ctx, roomID)
	return nil
}

func (cs *chatService) updateLastMessage(ctx context.Context, roomID, lastMessage string) error {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Update("chat_rooms").
		Set("last_message", lastMessage).
		Set("last_message_time", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": roomID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return err
	}

	_, err = db.Pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error updating last message for room %s: %v", roomID, err)
		return err
	}

	cs.roomCache.Remove(roomID)
	return nil
}

func (cs *chatService) GetMessages(ctx context.Context, roomID string) ([]models.Message, error) {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("id", "room_id", "start_up_id", "sender_id", "sender_name", "sender_avatar",
			"content", "file_url", "file_name", "image_url", "is_read", "created_at").
		From("messages").
		Where(squirrel.Eq{"room_id": roomID}).
		OrderBy("created_at ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error fetching messages for room %s: %v", roomID, err)
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		err := rows.Scan(&msg.ID, &msg.RoomID, &msg.StartUpID, &msg.SenderID, &msg.SenderName,
			&msg.SenderAvatar, &msg.Content, &msg.FileURL, &msg.FileName, &msg.ImageURL,
			&msg.IsRead, &msg.CreatedAt)
		if err != nil {
			log.Printf("Error scanning message row: %v", err)
			continue
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// MarkMessagesAsRead flips the read flag on every unread message not authored
// by the viewer. Idempotent; only room members may mark.
func (cs *chatService) MarkMessagesAsRead(ctx context.Context, roomID string, viewerID int) error {
	member, err := cs.IsMember(ctx, roomID, viewerID)
	if err != nil {
		return err
	}
	if !member {
		log.Printf("User %d may not mark room %s read", viewerID, roomID)
		return models.ErrNotRoomParticipant
	}

	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Update("messages").
		Set("is_read", true).
		Where(squirrel.And{
			squirrel.Eq{"room_id": roomID},
			squirrel.NotEq{"sender_id": viewerID},
			squirrel.Eq{"is_read": false},
		})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return err
	}

	result, err := db.Pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error marking messages as read in room %s: %v", roomID, err)
		return err
	}

	if result.RowsAffected() > 0 {
		log.Printf("Marked %d messages as read in room %s for user %d", result.RowsAffected(), roomID, viewerID)
		cs.publishMessages(ctx, roomID)
	}
	return nil
}

// scrubMessageQuery builds the tombstone update for a deleted message. The row
// is updated in place, never removed, so ids and ordering stay stable.
func scrubMessageQuery(table string, messageID int) (string, []interface{}, error) {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Update(table).
		Set("content", models.TombstoneText).
		Set("file_url", "").
		Set("file_name", "").
		Set("image_url", "").
		Where(squirrel.Eq{"id": messageID}).
		ToSql()
}

// DeleteMessage scrubs the content to a tombstone. The row and its position
// in the ordered sequence are preserved.
func (cs *chatService) DeleteMessage(ctx context.Context, messageID, requesterID int) error {
	var senderID int
	var roomID string
	err := db.Pool.QueryRow(ctx,
		"SELECT sender_id, room_id FROM messages WHERE id = $1", messageID).Scan(&senderID, &roomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrMessageNotFound
		}
		log.Printf("Error fetching message %d: %v", messageID, err)
		return err
	}

	if senderID != requesterID {
		log.Printf("User %d may not delete message %d sent by %d", requesterID, messageID, senderID)
		return models.ErrNotMessageSender
	}

	sqlStr, args, err := scrubMessageQuery("messages", messageID)
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return err
	}

	_, err = db.Pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error deleting message %d: %v", messageID, err)
		return err
	}

	log.Printf("Message %d deleted by user %d", messageID, requesterID)
	cs.publishMessages(ctx, roomID)
	return nil
}

// publishMessages pushes the full ordered message list to room subscribers,
// matching the document-store listener model the clients expect.
func (cs *chatService) publishMessages(ctx context.Context, roomID string) {
	if cs.Broker.Subscribers(roomID) == 0 {
		return
	}

	messages, err := cs.GetMessages(ctx, roomID)
	if err != nil {
		log.Printf("Error loading messages for broadcast in room %s: %v", roomID, err)
		return
	}

	cs.Broker.Publish(stream.Event{
		RoomID: roomID,
		Type:   "messages",
		Data:   messages,
	})
}

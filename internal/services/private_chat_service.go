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
	"github.com/jackc/pgx/v5"
)

// PrivateRoomID derives the deterministic key for a two-party room. The pair
// is sorted so concurrent callers converge on the same key regardless of
// argument order; an invitation id scopes the thread to that invitation.
func PrivateRoomID(userA, userB int, invitationID *int) (string, error) {
	if userA == userB {
		return "", models.ErrSelfChat
	}

	lo, hi := userA, userB
	if lo > hi {
		lo, hi = hi, lo
	}
	if invitationID != nil {
		return fmt.Sprintf("private_invitation_%d_%d_%d", *invitationID, lo, hi), nil
	}
	return fmt.Sprintf("private_%d_%d", lo, hi), nil
}

// IsPrivateRoomID reports whether a room key names a private room.
func IsPrivateRoomID(roomID string) bool {
	return strings.HasPrefix(roomID, "private_")
}

type PrivateChatService interface {
	GetOrCreateRoom(ctx context.Context, userA, userB int, invitationID *int, sctx *models.StartupContext) (string, error)
	GetRoomInfo(ctx context.Context, roomID string) (*models.PrivateChatRoom, error)
	GetUserRooms(ctx context.Context, userID int) ([]models.PrivateChatRoom, error)
	IsParticipant(ctx context.Context, roomID string, userID int) (bool, error)
	SendMessage(ctx context.Context, roomID string, senderID int, content string, attachment *models.Attachment) error
	GetMessages(ctx context.Context, roomID string) ([]models.PrivateMessage, error)
	MarkMessagesAsRead(ctx context.Context, roomID string, viewerID int) error
	DeleteMessage(ctx context.Context, messageID, requesterID int) error
	UpdateInvitationStatus(ctx context.Context, roomID string, status models.InvitationStatus) error
}

type privateChatService struct {
	UserService *UserService
	Broker      *stream.Broker
}

func NewPrivateChatService(userService *UserService, broker *stream.Broker) *privateChatService {
	return &privateChatService{
		UserService: userService,
		Broker:      broker,
	}
}

// GetOrCreateRoom creates the room on first access. For an existing room the
// startup/invitation context is merged in only where previously unset, so an
// earlier invitation linkage is never overwritten by a later call.
func (ps *privateChatService) GetOrCreateRoom(ctx context.Context, userA, userB int, invitationID *int, sctx *models.StartupContext) (string, error) {
	roomID, err := PrivateRoomID(userA, userB, invitationID)
	if err != nil {
		return "", err
	}

	lo, hi := userA, userB
	if lo > hi {
		lo, hi = hi, lo
	}

	var invStatus *models.InvitationStatus
	if invitationID != nil {
		pending := models.StatusPending
		invStatus = &pending
	}

	insert := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Insert("private_chat_rooms").
		Columns("id", "participant_low", "participant_high", "invitation_id", "invitation_status").
		Values(roomID, lo, hi, invitationID, invStatus).
		Suffix("ON CONFLICT (id) DO NOTHING")

	sqlStr, args, err := insert.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return "", err
	}
	if _, err := db.Pool.Exec(ctx, sqlStr, args...); err != nil {
		log.Printf("Error upserting private room %s: %v", roomID, err)
		return "", err
	}

	memberInsert := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Insert("private_chat_members").
		Columns("room_id", "user_id").
		Values(roomID, lo).
		Values(roomID, hi).
		Suffix("ON CONFLICT (room_id, user_id) DO NOTHING")

	sqlStr, args, err = memberInsert.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return "", err
	}
	if _, err := db.Pool.Exec(ctx, sqlStr, args...); err != nil {
		log.Printf("Error adding participants to private room %s: %v", roomID, err)
		return "", err
	}

	if err := ps.mergeContext(ctx, roomID, invitationID, sctx); err != nil {
		return "", err
	}

	return roomID, nil
}

// mergeContext fills unset context fields with COALESCE so racing callers
// cannot clobber an established linkage.
func (ps *privateChatService) mergeContext(ctx context.Context, roomID string, invitationID *int, sctx *models.StartupContext) error {
	update := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Update("private_chat_rooms").
		Where(squirrel.Eq{"id": roomID})

	touched := false
	if invitationID != nil {
		update = update.
			Set("invitation_id", squirrel.Expr("COALESCE(invitation_id, ?)", *invitationID)).
			Set("invitation_status", squirrel.Expr("COALESCE(invitation_status, ?)", models.StatusPending))
		touched = true
	}
	if sctx != nil {
		update = update.
			Set("start_up_id", squirrel.Expr("COALESCE(start_up_id, ?)", sctx.StartUpID)).
			Set("start_up_owner_id", squirrel.Expr("COALESCE(start_up_owner_id, ?)", sctx.StartUpOwnerID)).
			Set("start_up_name", squirrel.Expr("CASE WHEN start_up_name = '' THEN ? ELSE start_up_name END", sctx.StartUpName))
		touched = true
	}
	if !touched {
		return nil
	}

	sqlStr, args, err := update.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return err
	}

	_, err = db.Pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error merging context into private room %s: %v", roomID, err)
	}
	return err
}

func (ps *privateChatService) GetRoomInfo(ctx context.Context, roomID string) (*models.PrivateChatRoom, error) {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("id", "participant_low", "participant_high", "last_message", "last_message_time",
			"invitation_id", "invitation_status", "start_up_id", "start_up_name", "start_up_owner_id", "created_at").
		From("private_chat_rooms").
		Where(squirrel.Eq{"id": roomID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	var room models.PrivateChatRoom
	var lo, hi int
	err = db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&room.ID, &lo, &hi,
		&room.LastMessage, &room.LastMessageTime, &room.InvitationID, &room.InvitationStatus,
		&room.StartUpID, &room.StartUpName, &room.StartUpOwnerID, &room.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrRoomNotFound
		}
		log.Printf("Error fetching private room %s: %v", roomID, err)
		return nil, err
	}
	room.Participants = []int{lo, hi}

	if err := ps.fillParticipants(ctx, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (ps *privateChatService) fillParticipants(ctx context.Context, room *models.PrivateChatRoom) error {
	users, err := ps.UserService.GetUsersByIds(ctx, room.Participants)
	if err != nil {
		return err
	}

	room.ParticipantNames = make(map[int]string, len(room.Participants))
	room.ParticipantAvatars = make(map[int]string, len(room.Participants))
	for _, id := range room.Participants {
		if user, ok := users[id]; ok {
			room.ParticipantNames[id] = user.FullName
			room.ParticipantAvatars[id] = user.AvatarURL
		}
	}

	rows, err := db.Pool.Query(ctx,
		"SELECT user_id, unread_count FROM private_chat_members WHERE room_id = $1", room.ID)
	if err != nil {
		log.Printf("Error fetching unread counts for room %s: %v", room.ID, err)
		return err
	}
	defer rows.Close()

	room.UnreadCounts = make(map[int]int, len(room.Participants))
	for rows.Next() {
		var userID, unread int
		if err := rows.Scan(&userID, &unread); err != nil {
			log.Printf("Error scanning unread count row: %v", err)
			continue
		}
		room.UnreadCounts[userID] = unread
	}
	return rows.Err()
}

func (ps *privateChatService) GetUserRooms(ctx context.Context, userID int) ([]models.PrivateChatRoom, error) {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("id", "participant_low", "participant_high", "last_message", "last_message_time",
			"invitation_id", "invitation_status", "start_up_id", "start_up_name", "start_up_owner_id", "created_at").
		From("private_chat_rooms").
		Where(squirrel.Or{
			squirrel.Eq{"participant_low": userID},
			squirrel.Eq{"participant_high": userID},
		}).
		OrderBy("last_message_time DESC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error fetching private rooms for user %d: %v", userID, err)
		return nil, err
	}
	defer rows.Close()

	var rooms []models.PrivateChatRoom
	for rows.Next() {
		var room models.PrivateChatRoom
		var lo, hi int
		err := rows.Scan(&room.ID, &lo, &hi, &room.LastMessage, &room.LastMessageTime,
			&room.InvitationID, &room.InvitationStatus, &room.StartUpID, &room.StartUpName,
			&room.StartUpOwnerID, &room.CreatedAt)
		if err != nil {
			log.Printf("Error scanning private room row: %v", err)
			continue
		}
		room.Participants = []int{lo, hi}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range rooms {
		if err := ps.fillParticipants(ctx, &rooms[i]); err != nil {
			log.Printf("Error filling participants for room %s: %v", rooms[i].ID, err)
		}
	}
	return rooms, nil
}

func (ps *privateChatService) IsParticipant(ctx context.Context, roomID string, userID int) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM private_chat_members WHERE room_id = $1 AND user_id = $2)",
		roomID, userID).Scan(&exists)
	if err != nil {
		log.Printf("Error checking participant %d in room %s: %v", userID, roomID, err)
		return false, err
	}
	return exists, nil
}

// receiverOf resolves who a message from senderID is addressed to. The sender
// must be one of the room's participants.
func receiverOf(room *models.PrivateChatRoom, senderID int) (int, error) {
	receiverID := 0
	senderFound := false
	for _, id := range room.Participants {
		if id == senderID {
			senderFound = true
		} else {
			receiverID = id
		}
	}
	if !senderFound || receiverID == 0 {
		return 0, models.ErrNotRoomParticipant
	}
	return receiverID, nil
}

// SendMessage appends a message addressed to the other participant and bumps
// their unread counter atomically. Empty sends are a no-op; only participants
// may send.
func (ps *privateChatService) SendMessage(ctx context.Context, roomID string, senderID int, content string, attachment *models.Attachment) error {
	content = strings.TrimSpace(content)
	if attachment != nil && attachment.URL == "" {
		attachment = nil
	}
	if content == "" && attachment == nil {
		log.Printf("Ignoring empty private message from user %d in room %s", senderID, roomID)
		return nil
	}

	room, err := ps.GetRoomInfo(ctx, roomID)
	if err != nil {
		return err
	}

	receiverID, err := receiverOf(room, senderID)
	if err != nil {
		log.Printf("User %d may not send to room %s", senderID, roomID)
		return err
	}

	sender, err := ps.UserService.GetUserById(ctx, senderID)
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
		Insert("private_messages").
		Columns("room_id", "sender_id", "sender_name", "sender_avatar", "receiver_id",
			"content", "file_url", "file_name", "image_url").
		Values(roomID, senderID, sender.FullName, sender.AvatarURL, receiverID,
			content, fileURL, fileName, imageURL).
		Suffix("RETURNING id")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return err
	}

	var messageID int
	if err := db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&messageID); err != nil {
		log.Printf("Error saving private message: %v", err)
		return err
	}

	lastMessage := content
	if lastMessage == "" {
		lastMessage = fileName
	}

	update := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Update("private_chat_rooms").
		Set("last_message", lastMessage).
		Set("last_message_time", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": roomID})

	sqlStr, args, err = update.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return err
	}
	if _, err := db.Pool.Exec(ctx, sqlStr, args...); err != nil {
		log.Printf("Error updating last message for room %s: %v", roomID, err)
		return err
	}

	// Atomic increment, no read-modify-write window.
	_, err = db.Pool.Exec(ctx,
		"UPDATE private_chat_members SET unread_count = unread_count + 1 WHERE room_id = $1 AND user_id = $2",
		roomID, receiverID)
	if err != nil {
		log.Printf("Error incrementing unread count for user %d in room %s: %v", receiverID, roomID, err)
		return err
	}

	log.Printf("Private message %d sent in room %s by user %d", messageID, roomID, senderID)
	ps.publishMessages(ctx, roomID)
	return nil
}

func (ps *privateChatService) GetMessages(ctx context.Context, roomID string) ([]models.PrivateMessage, error) {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("id", "room_id", "sender_id", "sender_name", "sender_avatar", "receiver_id",
			"content", "file_url", "file_name", "image_url", "is_read", "created_at").
		From("private_messages").
		Where(squirrel.Eq{"room_id": roomID}).
		OrderBy("created_at ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error fetching private messages for room %s: %v", roomID, err)
		return nil, err
	}
	defer rows.Close()

	var messages []models.PrivateMessage
	for rows.Next() {
		var msg models.PrivateMessage
		err := rows.Scan(&msg.ID, &msg.RoomID, &msg.SenderID, &msg.SenderName, &msg.SenderAvatar,
			&msg.ReceiverID, &msg.Content, &msg.FileURL, &msg.FileName, &msg.ImageURL,
			&msg.IsRead, &msg.CreatedAt)
		if err != nil {
			log.Printf("Error scanning private message row: %v", err)
			continue
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// MarkMessagesAsRead flips the read flag on every unread message addressed to
// the viewer, then zeroes their unread counter. Idempotent; only participants
// may mark.
func (ps *privateChatService) MarkMessagesAsRead(ctx context.Context, roomID string, viewerID int) error {
	participant, err := ps.IsParticipant(ctx, roomID, viewerID)
	if err != nil {
		return err
	}
	if !participant {
		log.Printf("User %d may not mark room %s read", viewerID, roomID)
		return models.ErrNotRoomParticipant
	}

	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Update("private_messages").
		Set("is_read", true).
		Where(squirrel.And{
			squirrel.Eq{"room_id": roomID},
			squirrel.Eq{"receiver_id": viewerID},
			squirrel.Eq{"is_read": false},
		})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return err
	}

	result, err := db.Pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error marking private messages as read in room %s: %v", roomID, err)
		return err
	}

	_, err = db.Pool.Exec(ctx,
		"UPDATE private_chat_members SET unread_count = 0 WHERE room_id = $1 AND user_id = $2",
		roomID, viewerID)
	if err != nil {
		log.Printf("Error resetting unread count for user %d in room %s: %v", viewerID, roomID, err)
		return err
	}

	if result.RowsAffected() > 0 {
		log.Printf("Marked %d private messages as read in room %s for user %d", result.RowsAffected(), roomID, viewerID)
		ps.publishMessages(ctx, roomID)
	}
	return nil
}

func (ps *privateChatService) DeleteMessage(ctx context.Context, messageID, requesterID int) error {
	var senderID int
	var roomID string
	err := db.Pool.QueryRow(ctx,
		"SELECT sender_id, room_id FROM private_messages WHERE id = $1", messageID).Scan(&senderID, &roomID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrMessageNotFound
		}
		log.Printf("Error fetching private message %d: %v", messageID, err)
		return err
	}

	if senderID != requesterID {
		log.Printf("User %d may not delete private message %d sent by %d", requesterID, messageID, senderID)
		return models.ErrNotMessageSender
	}

	sqlStr, args, err := scrubMessageQuery("private_messages", messageID)
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return err
	}

	_, err = db.Pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error deleting private message %d: %v", messageID, err)
		return err
	}

	log.Printf("Private message %d deleted by user %d", messageID, requesterID)
	ps.publishMessages(ctx, roomID)
	return nil
}

// UpdateInvitationStatus mirrors the invitation's authoritative status onto
// the room. Missing room is reported as ErrRoomNotFound so the coordinator
// can treat it as a skippable condition.
func (ps *privateChatService) UpdateInvitationStatus(ctx context.Context, roomID string, status models.InvitationStatus) error {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Update("private_chat_rooms").
		Set("invitation_status", status).
		Where(squirrel.Eq{"id": roomID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return err
	}

	result, err := db.Pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error updating invitation status on room %s: %v", roomID, err)
		return err
	}
	if result.RowsAffected() == 0 {
		return models.ErrRoomNotFound
	}

	log.Printf("Room %s invitation status set to %s", roomID, status)
	return nil
}

func (ps *privateChatService) publishMessages(ctx context.Context, roomID string) {
	if ps.Broker.Subscribers(roomID) == 0 {
		return
	}

	messages, err := ps.GetMessages(ctx, roomID)
	if err != nil {
		log.Printf("Error loading private messages for broadcast in room %s: %v", roomID, err)
		return
	}

	ps.Broker.Publish(stream.Event{
		RoomID: roomID,
		Type:   "messages",
		Data:   messages,
	})
}

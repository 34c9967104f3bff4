package models

import (
	"time"
)

// ChatRoom is a group room scoped to one startup, keyed "startup_{id}".
type ChatRoom struct {
	ID              string    `json:"id" db:"id"`
	StartUpID       int       `json:"start_up_id" db:"start_up_id"`
	StartUpName     string    `json:"start_up_name" db:"start_up_name"`
	Members         []int     `json:"members"`
	LastMessage     string    `json:"last_message" db:"last_message"`
	LastMessageTime time.Time `json:"last_message_time" db:"last_message_time"`
	UnreadCount     int       `json:"unread_count"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// PrivateChatRoom is a two-party room, optionally linked to one invitation.
// InvitationStatus mirrors the invitation's authoritative status and is
// re-synchronized by the coordinator on every transition.
type PrivateChatRoom struct {
	ID                 string            `json:"id" db:"id"`
	Participants       []int             `json:"participants"`
	ParticipantNames   map[int]string    `json:"participant_names"`
	ParticipantAvatars map[int]string    `json:"participant_avatars"`
	LastMessage        string            `json:"last_message" db:"last_message"`
	LastMessageTime    time.Time         `json:"last_message_time" db:"last_message_time"`
	UnreadCounts       map[int]int       `json:"unread_counts"`
	InvitationID       *int              `json:"invitation_id,omitempty" db:"invitation_id"`
	InvitationStatus   *InvitationStatus `json:"invitation_status,omitempty" db:"invitation_status"`
	StartUpID          *int              `json:"start_up_id,omitempty" db:"start_up_id"`
	StartUpName        string            `json:"start_up_name,omitempty" db:"start_up_name"`
	StartUpOwnerID     *int              `json:"start_up_owner_id,omitempty" db:"start_up_owner_id"`
	CreatedAt          time.Time         `json:"created_at" db:"created_at"`
}

// StartupContext carries the optional startup fields merged into a private
// room on creation. Existing values are never overwritten by a later call.
type StartupContext struct {
	StartUpID      int
	StartUpName    string
	StartUpOwnerID int
}

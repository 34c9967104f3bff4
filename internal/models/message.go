package models

import (
	"strings"
	"time"
)

// TombstoneText replaces the content of a deleted message. The row itself is
// kept so ids and ordering stay stable for clients holding a reference.
const TombstoneText = "This message has been deleted"

// Attachment describes an uploaded file referenced by a message. The store
// records only the durable URL, original name and MIME type.
type Attachment struct {
	URL         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
}

// IsImage reports whether the attachment renders as an inline image.
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(a.ContentType, "image/")
}

type Message struct {
	ID           int       `json:"id" db:"id"`
	RoomID       string    `json:"room_id" db:"room_id"`
	StartUpID    int       `json:"start_up_id" db:"start_up_id"`
	SenderID     int       `json:"sender_id" db:"sender_id"`
	SenderName   string    `json:"sender_name" db:"sender_name"`
	SenderAvatar string    `json:"sender_avatar,omitempty" db:"sender_avatar"`
	Content      string    `json:"content" db:"content"`
	FileURL      string    `json:"file_url,omitempty" db:"file_url"`
	FileName     string    `json:"file_name,omitempty" db:"file_name"`
	ImageURL     string    `json:"image_url,omitempty" db:"image_url"`
	IsRead       bool      `json:"is_read" db:"is_read"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type PrivateMessage struct {
	ID           int       `json:"id" db:"id"`
	RoomID       string    `json:"room_id" db:"room_id"`
	SenderID     int       `json:"sender_id" db:"sender_id"`
	SenderName   string    `json:"sender_name" db:"sender_name"`
	SenderAvatar string    `json:"sender_avatar,omitempty" db:"sender_avatar"`
	ReceiverID   int       `json:"receiver_id" db:"receiver_id"`
	Content      string    `json:"content" db:"content"`
	FileURL      string    `json:"file_url,omitempty" db:"file_url"`
	FileName     string    `json:"file_name,omitempty" db:"file_name"`
	ImageURL     string    `json:"image_url,omitempty" db:"image_url"`
	IsRead       bool      `json:"is_read" db:"is_read"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

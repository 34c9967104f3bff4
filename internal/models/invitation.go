package models

import (
	"time"
)

// InvitationStatus is the four-state recruitment lifecycle. Transitions only
// move forward: Pending -> Dealing -> Success, with Rejected reachable from
// Pending or Dealing. Success and Rejected are terminal.
type InvitationStatus string

const (
	StatusPending  InvitationStatus = "Pending"
	StatusDealing  InvitationStatus = "Dealing"
	StatusSuccess  InvitationStatus = "Success"
	StatusRejected InvitationStatus = "Rejected"
)

func (s InvitationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusDealing, StatusSuccess, StatusRejected:
		return true
	}
	return false
}

func (s InvitationStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusRejected
}

func (s InvitationStatus) CanTransitionTo(next InvitationStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusDealing || next == StatusRejected
	case StatusDealing:
		return next == StatusSuccess || next == StatusRejected
	}
	return false
}

type Invitation struct {
	ID           int              `json:"id" db:"id"`
	StartUpID    int              `json:"start_up_id" db:"start_up_id"`
	StartUpIdea  string           `json:"start_up_idea" db:"start_up_idea"`
	OwnerUserID  int              `json:"owner_user_id" db:"owner_user_id"`
	UserID       int              `json:"user_id" db:"user_id"`
	UserFullName string           `json:"user_full_name"`
	UserAvatar   string           `json:"user_avatar,omitempty"`
	Status       InvitationStatus `json:"status" db:"status"`
	Reason       *string          `json:"reason,omitempty" db:"reason"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`
}

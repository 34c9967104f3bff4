package models

import (
	"errors"
	"fmt"
)

// Error categories. Handlers map these to HTTP status codes with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrInvalidState = errors.New("operation not allowed in current status")
	ErrPermission   = errors.New("permission denied")
	ErrNotFound     = errors.New("not found")
)

var (
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrStartupNotFound    = fmt.Errorf("startup %w", ErrNotFound)
	ErrInvitationNotFound = fmt.Errorf("invitation %w", ErrNotFound)
	ErrRoomNotFound       = fmt.Errorf("chat room %w", ErrNotFound)
	ErrMessageNotFound    = fmt.Errorf("message %w", ErrNotFound)

	ErrNotStartupOwner     = fmt.Errorf("%w: only the startup owner may do this", ErrPermission)
	ErrDuplicateInvitation = fmt.Errorf("%w: an active invitation already exists for this user", ErrValidation)
	ErrSelfInvitation      = fmt.Errorf("%w: cannot invite yourself", ErrValidation)
	ErrSelfChat            = fmt.Errorf("%w: cannot open a private chat with yourself", ErrValidation)
	ErrEmptyMembers        = fmt.Errorf("%w: a new chat room needs at least one member", ErrValidation)
	ErrNotMessageSender    = fmt.Errorf("%w: only the sender may delete a message", ErrPermission)
	ErrNotRoomParticipant  = fmt.Errorf("%w: user is not a participant of this room", ErrPermission)
	ErrNotInvitationParty  = fmt.Errorf("%w: user is not a party to this invitation", ErrPermission)
)

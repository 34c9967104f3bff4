package services

import (
	"context"
	"errors"
	"log"
	"time"

	"FounderHub/server/internal/models"

	"github.com/sethvargo/go-retry"
)

// CoordinationResult reports an invitation transition together with the fate
// of its chat-side effects. The transition itself is the committed fact;
// ChatSynced false means a secondary update was skipped or gave up, which the
// caller surfaces as a partial success, never as a failure.
type CoordinationResult struct {
	Invitation *models.Invitation `json:"invitation"`
	ChatSynced bool               `json:"chat_synced"`
}

type Coordinator interface {
	Accept(ctx context.Context, invitationID, actorID int) (*CoordinationResult, error)
	Reject(ctx context.Context, invitationID, actorID int, reason *string) (*CoordinationResult, error)
	CancelInvite(ctx context.Context, invitationID, actorID int) (*CoordinationResult, error)
	CancelDealing(ctx context.Context, invitationID, actorID int, reason *string) (*CoordinationResult, error)
	FinalizeSuccess(ctx context.Context, invitationID, actorID int) (*CoordinationResult, error)
}

type coordinator struct {
	Invitations InvitationService
	Chats       ChatService
	PrivateChat PrivateChatService
}

func NewCoordinator(invitations InvitationService, chats ChatService, privateChats PrivateChatService) *coordinator {
	return &coordinator{
		Invitations: invitations,
		Chats:       chats,
		PrivateChat: privateChats,
	}
}

// Accept moves the invitation to Dealing, then mirrors the new status onto
// the linked private room. The mirror is best-effort: if the room has not
// been created yet the status is established lazily on room creation instead.
func (c *coordinator) Accept(ctx context.Context, invitationID, actorID int) (*CoordinationResult, error) {
	inv, err := c.Invitations.Accept(ctx, invitationID, actorID)
	if err != nil {
		return nil, err
	}

	synced := c.mirrorStatus(ctx, inv)
	return &CoordinationResult{Invitation: inv, ChatSynced: synced}, nil
}

func (c *coordinator) Reject(ctx context.Context, invitationID, actorID int, reason *string) (*CoordinationResult, error) {
	inv, err := c.Invitations.Reject(ctx, invitationID, actorID, reason)
	if err != nil {
		return nil, err
	}

	synced := c.mirrorStatus(ctx, inv)
	return &CoordinationResult{Invitation: inv, ChatSynced: synced}, nil
}

func (c *coordinator) CancelInvite(ctx context.Context, invitationID, actorID int) (*CoordinationResult, error) {
	inv, err := c.Invitations.CancelInvite(ctx, invitationID, actorID)
	if err != nil {
		return nil, err
	}

	synced := c.mirrorStatus(ctx, inv)
	return &CoordinationResult{Invitation: inv, ChatSynced: synced}, nil
}

func (c *coordinator) CancelDealing(ctx context.Context, invitationID, actorID int, reason *string) (*CoordinationResult, error) {
	inv, err := c.Invitations.CancelDealing(ctx, invitationID, actorID, reason)
	if err != nil {
		return nil, err
	}

	synced := c.mirrorStatus(ctx, inv)
	return &CoordinationResult{Invitation: inv, ChatSynced: synced}, nil
}

// FinalizeSuccess moves the invitation to Success, folds the recruited user
// into the startup's group room, then mirrors the status onto the private
// room. The group-room add relies on AddMember's self-healing creation, so a
// missing room is created rather than failing.
func (c *coordinator) FinalizeSuccess(ctx context.Context, invitationID, actorID int) (*CoordinationResult, error) {
	inv, err := c.Invitations.FinalizeSuccess(ctx, invitationID, actorID)
	if err != nil {
		return nil, err
	}

	synced := true
	err = c.withRetry(ctx, func(ctx context.Context) error {
		return c.Chats.AddMember(ctx, inv.StartUpID, inv.UserID, inv.StartUpIdea, inv.OwnerUserID)
	})
	if err != nil {
		log.Printf("Giving up adding user %d to group room for startup %d: %v", inv.UserID, inv.StartUpID, err)
		synced = false
	}

	if !c.mirrorStatus(ctx, inv) {
		synced = false
	}
	return &CoordinationResult{Invitation: inv, ChatSynced: synced}, nil
}

// mirrorStatus pushes the invitation's status onto its private room. Returns
// false only when the room exists and the update kept failing; a room that
// was never created is fine, its status is seeded on creation.
func (c *coordinator) mirrorStatus(ctx context.Context, inv *models.Invitation) bool {
	roomID, err := PrivateRoomID(inv.OwnerUserID, inv.UserID, &inv.ID)
	if err != nil {
		log.Printf("Cannot derive private room for invitation %d: %v", inv.ID, err)
		return false
	}

	err = c.withRetry(ctx, func(ctx context.Context) error {
		err := c.PrivateChat.UpdateInvitationStatus(ctx, roomID, inv.Status)
		if errors.Is(err, models.ErrRoomNotFound) {
			// No room yet: nothing to mirror.
			return nil
		}
		return err
	})
	if err != nil {
		log.Printf("Giving up mirroring status %s onto room %s: %v", inv.Status, roomID, err)
		return false
	}
	return true
}

// withRetry runs a chat-side effect with bounded exponential backoff. The
// invitation transition has already committed when this runs, so the effect
// is retried briefly and then surrendered rather than rolled back.
func (c *coordinator) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(100*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

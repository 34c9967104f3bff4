package services

import (
	"context"
	"errors"
	"testing"

	"FounderHub/server/internal/models"
)

type fakeInvitations struct {
	InvitationService
	invitation *models.Invitation
	err        error
}

func (f *fakeInvitations) Accept(ctx context.Context, id, actorID int) (*models.Invitation, error) {
	return f.invitation, f.err
}

func (f *fakeInvitations) FinalizeSuccess(ctx context.Context, id, actorID int) (*models.Invitation, error) {
	return f.invitation, f.err
}

type fakeChats struct {
	ChatService
	addMemberErr   error
	addMemberCalls int
}

func (f *fakeChats) AddMember(ctx context.Context, startupID, userID int, fallbackName string, fallbackOwnerID int) error {
	f.addMemberCalls++
	return f.addMemberErr
}

type fakePrivateChats struct {
	PrivateChatService
	updateErr   error
	updateCalls int
	lastStatus  models.InvitationStatus
	lastRoomID  string
}

func (f *fakePrivateChats) UpdateInvitationStatus(ctx context.Context, roomID string, status models.InvitationStatus) error {
	f.updateCalls++
	f.lastRoomID = roomID
	f.lastStatus = status
	return f.updateErr
}

func dealingInvitation() *models.Invitation {
	return &models.Invitation{
		ID:          12,
		StartUpID:   4,
		StartUpIdea: "FounderHub",
		OwnerUserID: 3,
		UserID:      7,
		Status:      models.StatusDealing,
	}
}

func TestAcceptMirrorsStatusOntoPrivateRoom(t *testing.T) {
	private := &fakePrivateChats{}
	c := NewCoordinator(&fakeInvitations{invitation: dealingInvitation()}, &fakeChats{}, private)

	result, err := c.Accept(context.Background(), 12, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.ChatSynced {
		t.Fatal("expected chat to be marked synced")
	}
	if private.lastRoomID != "private_invitation_12_3_7" {
		t.Fatalf("mirrored onto wrong room: %q", private.lastRoomID)
	}
	if private.lastStatus != models.StatusDealing {
		t.Fatalf("mirrored wrong status: %s", private.lastStatus)
	}
}

func TestAcceptMissingRoomIsNotAFailure(t *testing.T) {
	private := &fakePrivateChats{updateErr: models.ErrRoomNotFound}
	c := NewCoordinator(&fakeInvitations{invitation: dealingInvitation()}, &fakeChats{}, private)

	result, err := c.Accept(context.Background(), 12, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.ChatSynced {
		t.Fatal("a room that does not exist yet must not count as a sync failure")
	}
	if private.updateCalls != 1 {
		t.Fatalf("expected a single attempt, got %d", private.updateCalls)
	}
}

func TestAcceptSurvivesPersistentMirrorFailure(t *testing.T) {
	private := &fakePrivateChats{updateErr: errors.New("connection refused")}
	c := NewCoordinator(&fakeInvitations{invitation: dealingInvitation()}, &fakeChats{}, private)

	result, err := c.Accept(context.Background(), 12, 7)
	if err != nil {
		t.Fatalf("the committed transition must not be reported as failed: %v", err)
	}
	if result.ChatSynced {
		t.Fatal("expected ChatSynced false after the mirror gave up")
	}
	if private.updateCalls < 2 {
		t.Fatalf("expected the mirror to be retried, got %d attempts", private.updateCalls)
	}
}

func TestAcceptPropagatesTransitionError(t *testing.T) {
	private := &fakePrivateChats{}
	c := NewCoordinator(&fakeInvitations{err: models.ErrInvitationNotFound}, &fakeChats{}, private)

	_, err := c.Accept(context.Background(), 12, 7)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if private.updateCalls != 0 {
		t.Fatal("no chat side effects may run when the transition fails")
	}
}

func TestFinalizeSuccessAddsMemberToGroupRoom(t *testing.T) {
	inv := dealingInvitation()
	inv.Status = models.StatusSuccess
	chats := &fakeChats{}
	private := &fakePrivateChats{}
	c := NewCoordinator(&fakeInvitations{invitation: inv}, chats, private)

	result, err := c.FinalizeSuccess(context.Background(), 12, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.ChatSynced {
		t.Fatal("expected chat to be marked synced")
	}
	if chats.addMemberCalls != 1 {
		t.Fatalf("expected the recruited user to be added to the group room, got %d calls", chats.addMemberCalls)
	}
	if private.lastStatus != models.StatusSuccess {
		t.Fatalf("mirrored wrong status: %s", private.lastStatus)
	}
}

func TestFinalizeSuccessReportsPartialSyncOnGroupFailure(t *testing.T) {
	inv := dealingInvitation()
	inv.Status = models.StatusSuccess
	chats := &fakeChats{addMemberErr: errors.New("connection refused")}
	private := &fakePrivateChats{}
	c := NewCoordinator(&fakeInvitations{invitation: inv}, chats, private)

	result, err := c.FinalizeSuccess(context.Background(), 12, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ChatSynced {
		t.Fatal("expected ChatSynced false when the group add gave up")
	}
	if private.updateCalls == 0 {
		t.Fatal("mirror must still run after a group-room failure")
	}
}

package services

import (
	"errors"
	"testing"

	"FounderHub/server/internal/models"
)

func TestGroupRoomID(t *testing.T) {
	id := GroupRoomID(42)
	if id != "startup_42" {
		t.Fatalf("expected startup_42, got %q", id)
	}
	if !IsGroupRoomID(id) {
		t.Fatalf("expected %q to be recognized as a group room", id)
	}

	startupID, ok := ParseGroupRoomID(id)
	if !ok || startupID != 42 {
		t.Fatalf("ParseGroupRoomID(%q): got (%d, %v)", id, startupID, ok)
	}

	for _, bad := range []string{"startup_", "startup_x", "private_1_2", ""} {
		if _, ok := ParseGroupRoomID(bad); ok {
			t.Errorf("expected ParseGroupRoomID(%q) to fail", bad)
		}
	}
}

func TestPrivateRoomIDOrderIndependent(t *testing.T) {
	a, err := PrivateRoomID(7, 3, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := PrivateRoomID(3, 7, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Fatalf("expected identical keys, got %q and %q", a, b)
	}
	if a != "private_3_7" {
		t.Fatalf("expected private_3_7, got %q", a)
	}
	if !IsPrivateRoomID(a) {
		t.Fatalf("expected %q to be recognized as a private room", a)
	}
}

func TestPrivateRoomIDInvitationScoped(t *testing.T) {
	inv := 12
	scoped, err := PrivateRoomID(7, 3, &inv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scoped != "private_invitation_12_3_7" {
		t.Fatalf("expected private_invitation_12_3_7, got %q", scoped)
	}

	plain, err := PrivateRoomID(7, 3, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scoped == plain {
		t.Fatalf("invitation-scoped key must differ from the plain pair key")
	}
}

func TestPrivateRoomIDSelfChat(t *testing.T) {
	_, err := PrivateRoomID(5, 5, nil)
	if !errors.Is(err, models.ErrSelfChat) {
		t.Fatalf("expected ErrSelfChat, got %v", err)
	}
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected self-chat to be a validation error, got %v", err)
	}
}

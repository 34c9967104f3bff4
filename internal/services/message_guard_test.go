package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"FounderHub/server/internal/models"
	"FounderHub/server/internal/stream"
)

func TestReceiverOf(t *testing.T) {
	room := &models.PrivateChatRoom{ID: "private_3_7", Participants: []int{3, 7}}

	receiver, err := receiverOf(room, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receiver != 7 {
		t.Fatalf("expected receiver 7, got %d", receiver)
	}

	receiver, err = receiverOf(room, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receiver != 3 {
		t.Fatalf("expected receiver 3, got %d", receiver)
	}
}

func TestReceiverOfRejectsOutsider(t *testing.T) {
	room := &models.PrivateChatRoom{ID: "private_3_7", Participants: []int{3, 7}}

	_, err := receiverOf(room, 9)
	if !errors.Is(err, models.ErrNotRoomParticipant) {
		t.Fatalf("expected ErrNotRoomParticipant, got %v", err)
	}
	if !errors.Is(err, models.ErrPermission) {
		t.Fatalf("expected a permission error, got %v", err)
	}
}

// The empty-send guards must return before any store access; these services
// are wired without a database on purpose, so a missing guard panics.

func TestGroupSendEmptyMessageIsANoOp(t *testing.T) {
	cs := NewChatService(NewUserService(), stream.NewBroker())

	if err := cs.SendMessage(context.Background(), 4, 1, "   ", nil); err != nil {
		t.Fatalf("expected empty send to be a no-op, got %v", err)
	}
	if err := cs.SendMessage(context.Background(), 4, 1, "", &models.Attachment{}); err != nil {
		t.Fatalf("expected send with a blank attachment to be a no-op, got %v", err)
	}
}

func TestScrubMessageQueryTombstonesInPlace(t *testing.T) {
	sqlStr, args, err := scrubMessageQuery("messages", 42)
	if err != nil {
		t.Fatalf("building query: %v", err)
	}

	if !strings.HasPrefix(sqlStr, "UPDATE messages SET") {
		t.Fatalf("expected an in-place update, got %q", sqlStr)
	}
	if strings.Contains(sqlStr, "DELETE") {
		t.Fatalf("a deleted message must keep its row, got %q", sqlStr)
	}
	if !strings.Contains(sqlStr, "WHERE id = $5") {
		t.Fatalf("expected the update scoped to one message, got %q", sqlStr)
	}

	if len(args) != 5 {
		t.Fatalf("expected 5 arguments, got %d: %v", len(args), args)
	}
	if args[0] != models.TombstoneText {
		t.Fatalf("expected the tombstone text, got %v", args[0])
	}
	for i := 1; i < 4; i++ {
		if args[i] != "" {
			t.Fatalf("expected attachment field %d scrubbed to empty, got %v", i, args[i])
		}
	}
	if args[4] != 42 {
		t.Fatalf("expected message id 42, got %v", args[4])
	}
}

func TestPrivateSendEmptyMessageIsANoOp(t *testing.T) {
	ps := NewPrivateChatService(NewUserService(), stream.NewBroker())

	if err := ps.SendMessage(context.Background(), "private_3_7", 3, "", nil); err != nil {
		t.Fatalf("expected empty send to be a no-op, got %v", err)
	}
	if err := ps.SendMessage(context.Background(), "private_3_7", 3, "  ", &models.Attachment{Name: "x"}); err != nil {
		t.Fatalf("expected send with a blank attachment to be a no-op, got %v", err)
	}
}

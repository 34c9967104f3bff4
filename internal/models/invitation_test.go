package models

import "testing"

func TestInvitationStatusTransitions(t *testing.T) {
	tests := []struct {
		from    InvitationStatus
		to      InvitationStatus
		allowed bool
	}{
		{StatusPending, StatusDealing, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusSuccess, false},
		{StatusPending, StatusPending, false},
		{StatusDealing, StatusSuccess, true},
		{StatusDealing, StatusRejected, true},
		{StatusDealing, StatusPending, false},
		{StatusSuccess, StatusRejected, false},
		{StatusSuccess, StatusDealing, false},
		{StatusRejected, StatusPending, false},
		{StatusRejected, StatusDealing, false},
		{StatusRejected, StatusSuccess, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestInvitationStatusTerminal(t *testing.T) {
	terminal := map[InvitationStatus]bool{
		StatusPending:  false,
		StatusDealing:  false,
		StatusSuccess:  true,
		StatusRejected: true,
	}
	for status, want := range terminal {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal(): got %v, want %v", status, got, want)
		}
	}
}

func TestInvitationStatusValid(t *testing.T) {
	for _, status := range []InvitationStatus{StatusPending, StatusDealing, StatusSuccess, StatusRejected} {
		if !status.Valid() {
			t.Errorf("expected %s to be valid", status)
		}
	}
	for _, status := range []InvitationStatus{"", "pending", "Cancelled", "all"} {
		if status.Valid() {
			t.Errorf("expected %q to be invalid", status)
		}
	}
}

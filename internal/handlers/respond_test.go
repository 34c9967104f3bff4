package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"FounderHub/server/internal/models"
)

func TestHTTPStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.ErrSelfInvitation, http.StatusBadRequest},
		{models.ErrDuplicateInvitation, http.StatusBadRequest},
		{models.ErrEmptyMembers, http.StatusBadRequest},
		{fmt.Errorf("%w: invitation is Success", models.ErrInvalidState), http.StatusBadRequest},
		{models.ErrNotStartupOwner, http.StatusForbidden},
		{models.ErrNotRoomParticipant, http.StatusForbidden},
		{models.ErrNotMessageSender, http.StatusForbidden},
		{models.ErrInvitationNotFound, http.StatusNotFound},
		{models.ErrRoomNotFound, http.StatusNotFound},
		{models.ErrUserNotFound, http.StatusNotFound},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatusFor(tt.err); got != tt.want {
			t.Errorf("HTTPStatusFor(%v): got %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRespondServiceErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	respondServiceError(rec, errors.New("pq: password authentication failed"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rec.Code)
	}

	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Message != "Internal server error" {
		t.Fatalf("expected the generic message, got %q", body.Message)
	}
}

func TestRespondServiceErrorKeepsClientMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	respondServiceError(rec, models.ErrSelfChat)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}

	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Message != models.ErrSelfChat.Error() {
		t.Fatalf("expected the sentinel message, got %q", body.Message)
	}
}

package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"FounderHub/server/internal/appMiddleware"
	"FounderHub/server/internal/models"
	"FounderHub/server/internal/pool"
	"FounderHub/server/internal/services"

	"github.com/go-chi/chi/v5"
)

// SendInvitation creates a Pending invitation from the startup owner to a
// candidate member.
func SendInvitation(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		StartUpID int `json:"start_up_id"`
		UserID    int `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StartUpID <= 0 || req.UserID <= 0 {
		respondError(w, http.StatusBadRequest, "start_up_id and user_id are required")
		return
	}

	inv, err := invitationService.SendInvitation(r.Context(), userID, req.StartUpID, req.UserID)
	if err != nil {
		log.Printf("Error sending invitation from user %d: %v", userID, err)
		respondServiceError(w, err)
		return
	}

	pool.GlobalPool.NotifyUser(inv.UserID, "invitation_received", inv)
	respondJSON(w, http.StatusCreated, inv)
}

func ListSentInvitations(w http.ResponseWriter, r *http.Request) {
	listInvitations(w, r, true)
}

func ListReceivedInvitations(w http.ResponseWriter, r *http.Request) {
	listInvitations(w, r, false)
}

func listInvitations(w http.ResponseWriter, r *http.Request, sent bool) {
	userID, ok := appMiddleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	status := models.InvitationStatus(r.URL.Query().Get("status"))
	if status == "all" {
		status = ""
	}

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		limit = 10
	}

	var invitations []models.Invitation
	var total int
	if sent {
		invitations, total, err = invitationService.ListSent(r.Context(), userID, status, page, limit)
	} else {
		invitations, total, err = invitationService.ListReceived(r.Context(), userID, status, page, limit)
	}
	if err != nil {
		log.Printf("Error listing invitations for user %d: %v", userID, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"data":  invitations,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// AcceptInvitation moves a Pending invitation to Dealing (receiver action).
func AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	transitionInvitation(w, r, func(ctx *invitationCall) (*services.CoordinationResult, error) {
		return coordinator.Accept(ctx.r.Context(), ctx.invitationID, ctx.actorID)
	})
}

// RejectInvitation moves a Pending or Dealing invitation to Rejected
// (receiver action).
func RejectInvitation(w http.ResponseWriter, r *http.Request) {
	transitionInvitation(w, r, func(ctx *invitationCall) (*services.CoordinationResult, error) {
		return coordinator.Reject(ctx.r.Context(), ctx.invitationID, ctx.actorID, ctx.reason)
	})
}

// CancelInvitation withdraws a Pending invitation (owner action).
func CancelInvitation(w http.ResponseWriter, r *http.Request) {
	transitionInvitation(w, r, func(ctx *invitationCall) (*services.CoordinationResult, error) {
		return coordinator.CancelInvite(ctx.r.Context(), ctx.invitationID, ctx.actorID)
	})
}

// CancelDealing breaks off an ongoing negotiation (owner action).
func CancelDealing(w http.ResponseWriter, r *http.Request) {
	transitionInvitation(w, r, func(ctx *invitationCall) (*services.CoordinationResult, error) {
		return coordinator.CancelDealing(ctx.r.Context(), ctx.invitationID, ctx.actorID, ctx.reason)
	})
}

// ConfirmSuccess finalizes the recruitment (owner action). The recruited
// member is also folded into the startup's group chat room.
func ConfirmSuccess(w http.ResponseWriter, r *http.Request) {
	transitionInvitation(w, r, func(ctx *invitationCall) (*services.CoordinationResult, error) {
		return coordinator.FinalizeSuccess(ctx.r.Context(), ctx.invitationID, ctx.actorID)
	})
}

type invitationCall struct {
	r            *http.Request
	invitationID int
	actorID      int
	reason       *string
}

func transitionInvitation(w http.ResponseWriter, r *http.Request, fn func(*invitationCall) (*services.CoordinationResult, error)) {
	actorID, ok := appMiddleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	invitationID, err := strconv.Atoi(chi.URLParam(r, "invitation_id"))
	if err != nil || invitationID <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid invitation ID")
		return
	}

	call := &invitationCall{r: r, invitationID: invitationID, actorID: actorID}
	if r.Body != nil {
		var req struct {
			Reason *string `json:"reason"`
		}
		// Body is optional on transition endpoints.
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			call.reason = req.Reason
		}
	}

	result, err := fn(call)
	if err != nil {
		log.Printf("Error transitioning invitation %d by user %d: %v", invitationID, actorID, err)
		respondServiceError(w, err)
		return
	}

	notifyCounterpart(actorID, result.Invitation)
	respondJSON(w, http.StatusOK, result)
}

// notifyCounterpart nudges the other party's live connection so their
// invitation views refresh.
func notifyCounterpart(actorID int, inv *models.Invitation) {
	counterpart := inv.OwnerUserID
	if actorID == inv.OwnerUserID {
		counterpart = inv.UserID
	}
	pool.GlobalPool.NotifyUser(counterpart, "invitation_updated", inv)
}

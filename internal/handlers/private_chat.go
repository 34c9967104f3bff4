package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"FounderHub/server/internal/appMiddleware"
	"FounderHub/server/internal/models"

	"github.com/go-chi/chi/v5"
)

// CreatePrivateChatRoom opens (or returns) a one-to-one room between the
// caller and another user. When an invitation id is supplied the room is
// scoped to that invitation and carries its startup context.
func CreatePrivateChatRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		UserID       int  `json:"user_id"`
		InvitationID *int `json:"invitation_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID <= 0 {
		respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	var sctx *models.StartupContext
	if req.InvitationID != nil {
		inv, err := invitationService.GetInvitationById(r.Context(), *req.InvitationID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		if userID != inv.OwnerUserID && userID != inv.UserID {
			respondServiceError(w, models.ErrNotInvitationParty)
			return
		}
		sctx = &models.StartupContext{
			StartUpID:      inv.StartUpID,
			StartUpName:    inv.StartUpIdea,
			StartUpOwnerID: inv.OwnerUserID,
		}
	}

	roomID, err := privateChatService.GetOrCreateRoom(r.Context(), userID, req.UserID, req.InvitationID, sctx)
	if err != nil {
		log.Printf("Error creating private room for users %d and %d: %v", userID, req.UserID, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"room_id": roomID})
}

func GetPrivateChatRooms(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	rooms, err := privateChatService.GetUserRooms(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing private rooms for user %d: %v", userID, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rooms)
}

func GetPrivateChatRoomInfo(w http.ResponseWriter, r *http.Request) {
	userID, roomID, ok := roomRequest(w, r)
	if !ok {
		return
	}
	if !requireMembership(w, r, roomID, userID) {
		return
	}

	room, err := privateChatService.GetRoomInfo(r.Context(), roomID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, room)
}

func GetPrivateChatMessages(w http.ResponseWriter, r *http.Request) {
	userID, roomID, ok := roomRequest(w, r)
	if !ok {
		return
	}
	if !requireMembership(w, r, roomID, userID) {
		return
	}

	messages, err := privateChatService.GetMessages(r.Context(), roomID)
	if err != nil {
		log.Printf("Error loading private messages for room %s: %v", roomID, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, messages)
}

func SendPrivateChatMessage(w http.ResponseWriter, r *http.Request) {
	userID, roomID, ok := roomRequest(w, r)
	if !ok {
		return
	}
	if !requireMembership(w, r, roomID, userID) {
		return
	}

	var req struct {
		Content    string             `json:"content"`
		Attachment *models.Attachment `json:"attachment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := privateChatService.SendMessage(r.Context(), roomID, userID, req.Content, req.Attachment)
	if err != nil {
		log.Printf("Error sending private message to room %s: %v", roomID, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func DeletePrivateChatMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	messageID, err := strconv.Atoi(chi.URLParam(r, "message_id"))
	if err != nil || messageID <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid message ID")
		return
	}

	if err := privateChatService.DeleteMessage(r.Context(), messageID, userID); err != nil {
		log.Printf("Error deleting private message %d by user %d: %v", messageID, userID, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func MarkPrivateChatMessagesRead(w http.ResponseWriter, r *http.Request) {
	userID, roomID, ok := roomRequest(w, r)
	if !ok {
		return
	}
	if !requireMembership(w, r, roomID, userID) {
		return
	}

	if err := privateChatService.MarkMessagesAsRead(r.Context(), roomID, userID); err != nil {
		log.Printf("Error marking private room %s read for user %d: %v", roomID, userID, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

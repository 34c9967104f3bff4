package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"FounderHub/server/internal/appMiddleware"
	"FounderHub/server/internal/models"
	"FounderHub/server/internal/services"

	"github.com/go-chi/chi/v5"
)

// CreateChatRoom idempotently creates the group room for a startup and
// returns its id. Only the startup owner can create the room.
func CreateChatRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		StartUpID int   `json:"start_up_id"`
		MemberIDs []int `json:"member_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StartUpID <= 0 {
		respondError(w, http.StatusBadRequest, "start_up_id is required")
		return
	}

	startup, err := startupService.GetStartupById(r.Context(), req.StartUpID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if startup.OwnerUserID != userID {
		respondServiceError(w, models.ErrNotStartupOwner)
		return
	}

	members := append([]int{userID}, req.MemberIDs...)
	roomID, err := chatService.GetOrCreateRoom(r.Context(), startup.ID, startup.Idea, members)
	if err != nil {
		log.Printf("Error creating chat room for startup %d: %v", req.StartUpID, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"room_id": roomID})
}

func GetChatRooms(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	rooms, err := chatService.GetUserRooms(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing chat rooms for user %d: %v", userID, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, rooms)
}

func GetChatRoomInfo(w http.ResponseWriter, r *http.Request) {
	userID, roomID, ok := roomRequest(w, r)
	if !ok {
		return
	}
	if !requireMembership(w, r, roomID, userID) {
		return
	}

	room, err := chatService.GetRoomInfo(r.Context(), roomID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, room)
}

func GetChatMessages(w http.ResponseWriter, r *http.Request) {
	userID, roomID, ok := roomRequest(w, r)
	if !ok {
		return
	}
	if !requireMembership(w, r, roomID, userID) {
		return
	}

	messages, err := chatService.GetMessages(r.Context(), roomID)
	if err != nil {
		log.Printf("Error loading messages for room %s: %v", roomID, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, messages)
}

// SendChatMessage posts a message to a startup's group room over REST.
// The live path goes through the websocket handler; both end up in
// ChatService.SendMessage.
func SendChatMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		StartUpID  int                `json:"start_up_id"`
		Content    string             `json:"content"`
		Attachment *models.Attachment `json:"attachment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.StartUpID <= 0 {
		respondError(w, http.StatusBadRequest, "start_up_id is required")
		return
	}

	err := chatService.SendMessage(r.Context(), req.StartUpID, userID, req.Content, req.Attachment)
	if err != nil {
		log.Printf("Error sending message to startup %d: %v", req.StartUpID, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func MarkChatMessagesRead(w http.ResponseWriter, r *http.Request) {
	userID, roomID, ok := roomRequest(w, r)
	if !ok {
		return
	}
	if !requireMembership(w, r, roomID, userID) {
		return
	}

	if err := chatService.MarkMessagesAsRead(r.Context(), roomID, userID); err != nil {
		log.Printf("Error marking room %s read for user %d: %v", roomID, userID, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func DeleteChatMessage(w http.ResponseWriter, r *http.Request) {
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

	if err := chatService.DeleteMessage(r.Context(), messageID, userID); err != nil {
		log.Printf("Error deleting message %d by user %d: %v", messageID, userID, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func roomRequest(w http.ResponseWriter, r *http.Request) (userID int, roomID string, ok bool) {
	userID, authed := appMiddleware.UserIDFromContext(r.Context())
	if !authed {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return 0, "", false
	}
	roomID = chi.URLParam(r, "room_id")
	if roomID == "" {
		respondError(w, http.StatusBadRequest, "Room ID is required")
		return 0, "", false
	}
	return userID, roomID, true
}

func requireMembership(w http.ResponseWriter, r *http.Request, roomID string, userID int) bool {
	var member bool
	var err error
	if services.IsPrivateRoomID(roomID) {
		member, err = privateChatService.IsParticipant(r.Context(), roomID, userID)
	} else {
		member, err = chatService.IsMember(r.Context(), roomID, userID)
	}
	if err != nil {
		if !errors.Is(err, models.ErrRoomNotFound) {
			log.Printf("Error checking membership of user %d in room %s: %v", userID, roomID, err)
		}
		respondServiceError(w, err)
		return false
	}
	if !member {
		respondServiceError(w, models.ErrNotRoomParticipant)
		return false
	}
	return true
}

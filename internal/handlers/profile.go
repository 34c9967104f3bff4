package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"FounderHub/server/internal/appMiddleware"

	"github.com/go-chi/chi/v5"
)

func GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := userService.GetUserById(r.Context(), userID)
	if err != nil {
		log.Printf("Error fetching profile for user %d: %v", userID, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		FullName  string `json:"full_name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := userService.UpdateProfile(r.Context(), userID, req.FullName, req.AvatarURL); err != nil {
		log.Printf("Error updating profile for user %d: %v", userID, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Profile updated"})
}

func GetUserById(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "user_id"))
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := userService.GetUserById(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"FounderHub/server/internal/appMiddleware"

	"github.com/go-chi/chi/v5"
)

func CreateStartup(w http.ResponseWriter, r *http.Request) {
	userID, ok := appMiddleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Idea        string `json:"idea"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Idea == "" {
		respondError(w, http.StatusBadRequest, "Idea is required")
		return
	}

	startup, err := startupService.CreateStartup(r.Context(), userID, req.Idea, req.Description)
	if err != nil {
		log.Printf("Error creating startup for user %d: %v", userID, err)
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, startup)
}

func GetStartupById(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "startup_id"))
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid startup ID")
		return
	}

	startup, err := startupService.GetStartupById(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, startup)
}

func GetStartupsByUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "user_id"))
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	startups, err := startupService.GetStartupsByUser(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, startups)
}

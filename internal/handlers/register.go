package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"FounderHub/server/internal/models"
)

func Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
		Avatar   string `json:"avatar_url"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Email == "" || req.Password == "" {
		log.Printf("Invalid request: %v", err)
		respondError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	ctx := r.Context()

	exists, err := userService.CheckUserExists(ctx, req.Username, req.Email)
	if err != nil {
		log.Printf("Error checking user existence: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if exists {
		respondError(w, http.StatusConflict, "User with this email or username already exists")
		return
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FullName:  req.FullName,
		AvatarURL: req.Avatar,
	}

	userID, err := userService.CreateUser(ctx, user, req.Password)
	if err != nil {
		log.Printf("Error creating user: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message": "User created",
		"user_id": strconv.Itoa(userID),
	})
}

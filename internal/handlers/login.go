package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"FounderHub/server/internal/config"
	"FounderHub/server/internal/models"
	"FounderHub/server/internal/utils"

	"github.com/golang-jwt/jwt/v4"
)

const maxFailedAttempts = 5

func Login(w http.ResponseWriter, r *http.Request) {
	var loginData struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	err := json.NewDecoder(r.Body).Decode(&loginData)
	if err != nil || loginData.Email == "" || loginData.Password == "" {
		respondError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	ctx := r.Context()

	user, err := userService.GetUserByEmail(ctx, loginData.Email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			log.Printf("User with email %s not found", loginData.Email)
			respondError(w, http.StatusUnauthorized, "User not found")
			return
		}
		log.Printf("Error fetching user by email: %v", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if user.LockedUntil != nil && time.Now().Before(*user.LockedUntil) {
		log.Printf("Account is locked until %v for user %d", user.LockedUntil, user.ID)
		respondError(w, http.StatusUnauthorized, "Account is temporarily locked due to multiple failed login attempts")
		return
	}

	if err := utils.CheckPasswordHash(loginData.Password, user.PasswordHash); err != nil {
		log.Printf("Password verification failed for user %d", user.ID)

		updatedUser, err := userService.IncrementFailedLoginAttempts(ctx, user.ID)
		if err != nil {
			log.Printf("Error incrementing failed login attempts for user %d: %v", user.ID, err)
			respondError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		if updatedUser.FailedAttempts >= maxFailedAttempts {
			if err := userService.LockAccount(ctx, user.ID, 5*time.Minute); err != nil {
				log.Printf("Error locking account for user %d: %v", user.ID, err)
				respondError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			log.Printf("Account locked for user %d for 5 minutes", user.ID)
			respondError(w, http.StatusUnauthorized, "Account is temporarily locked due to multiple failed login attempts")
			return
		}

		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err := userService.ResetFailedLoginAttempts(ctx, user.ID); err != nil {
		log.Printf("Error resetting failed login attempts for user %d: %v", user.ID, err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(time.Hour * 24).Unix(),
	})

	tokenString, err := token.SignedString([]byte(config.C.JWTSecret))
	if err != nil {
		log.Printf("Error creating token for user %d: %v", user.ID, err)
		respondError(w, http.StatusInternalServerError, "Token creation error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"token": tokenString})
}

package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"FounderHub/server/internal/models"
)

// errorBody is the structured error envelope clients parse.
type errorBody struct {
	Message string `json:"Message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Message: message})
}

// HTTPStatusFor maps the service error taxonomy to transport codes:
// validation and invalid-state to 400, permission to 403, not-found to 404,
// everything else to 500.
func HTTPStatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func respondServiceError(w http.ResponseWriter, err error) {
	status := HTTPStatusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		// Do not leak internals; the detail is already logged at the source.
		message = "Internal server error"
	}
	respondError(w, status, message)
}

package appMiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"FounderHub/server/internal/config"

	"github.com/golang-jwt/jwt/v4"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func TestAuthMiddleware(t *testing.T) {
	config.C.JWTSecret = "test-secret"

	valid := signToken(t, "test-secret", jwt.MapClaims{
		"user_id":  float64(17),
		"username": "ada",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	wrongKey := signToken(t, "other-secret", jwt.MapClaims{
		"user_id": float64(17),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	noUserID := signToken(t, "test-secret", jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUserID int
	}{
		{"missing header", "", http.StatusUnauthorized, 0},
		{"no bearer prefix", valid, http.StatusUnauthorized, 0},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized, 0},
		{"wrong key", "Bearer " + wrongKey, http.StatusUnauthorized, 0},
		{"missing user_id claim", "Bearer " + noUserID, http.StatusUnauthorized, 0},
		{"valid token", "Bearer " + valid, http.StatusOK, 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID int
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id, ok := UserIDFromContext(r.Context())
				if !ok {
					t.Error("expected user id in request context")
				}
				gotUserID = id
			})

			req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			AuthMiddleware(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && gotUserID != tt.wantUserID {
				t.Fatalf("user id: got %d, want %d", gotUserID, tt.wantUserID)
			}
		})
	}
}

func TestParseUserIDExpiredToken(t *testing.T) {
	config.C.JWTSecret = "test-secret"

	expired := signToken(t, "test-secret", jwt.MapClaims{
		"user_id": float64(17),
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})
	if _, err := ParseUserID(expired); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

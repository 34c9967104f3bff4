package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"FounderHub/server/internal/appMiddleware"
	"FounderHub/server/internal/config"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"pitch-deck.pdf", "pitch-deck.pdf"},
		{"../../etc/passwd", "passwd"},
		{"my résumé.pdf", "my_r_sum_.pdf"},
		{"a b c.png", "a_b_c.png"},
		{"", "file"},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUploadFileStoresAndDescribes(t *testing.T) {
	config.C.UploadDir = t.TempDir()
	config.C.BaseURL = "http://localhost:8080"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "screenshot.png")
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := part.Write([]byte("not-really-a-png")); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(context.WithValue(req.Context(), appMiddleware.UserIDKey, 5))
	rec := httptest.NewRecorder()

	UploadFile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		URL         string `json:"url"`
		FileName    string `json:"file_name"`
		ContentType string `json:"content_type"`
		IsImage     bool   `json:"is_image"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.FileName != "screenshot.png" {
		t.Fatalf("file_name: got %q", resp.FileName)
	}
	if !resp.IsImage {
		t.Fatal("expected a .png upload to be reported as an image")
	}
	if !strings.HasPrefix(resp.URL, "http://localhost:8080/uploads/") {
		t.Fatalf("url: got %q", resp.URL)
	}

	stored := filepath.Join(config.C.UploadDir, filepath.Base(resp.URL))
	data, err := os.ReadFile(stored)
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if string(data) != "not-really-a-png" {
		t.Fatalf("stored content mismatch: %q", data)
	}
}

func TestUploadFileRequiresFile(t *testing.T) {
	config.C.UploadDir = t.TempDir()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(context.WithValue(req.Context(), appMiddleware.UserIDKey, 5))
	rec := httptest.NewRecorder()

	UploadFile(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want 400", rec.Code)
	}
}

package handlers

import (
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"FounderHub/server/internal/appMiddleware"
	"FounderHub/server/internal/config"
)

const maxUploadSize = 20 << 20 // 20 MiB

// UploadFile stores a multipart attachment on disk and returns its public URL
// together with the metadata a chat message attachment needs.
func UploadFile(w http.ResponseWriter, r *http.Request) {
	if _, ok := appMiddleware.UserIDFromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "File is too large or the form is malformed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	if err := os.MkdirAll(config.C.UploadDir, 0o755); err != nil {
		log.Printf("Error creating upload directory: %v", err)
		respondError(w, http.StatusInternalServerError, "Could not save file")
		return
	}

	name := sanitizeFilename(header.Filename)
	stored := fmt.Sprintf("%d_%s", time.Now().UnixNano(), name)
	dst, err := os.Create(filepath.Join(config.C.UploadDir, stored))
	if err != nil {
		log.Printf("Error creating upload file: %v", err)
		respondError(w, http.StatusInternalServerError, "Could not save file")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		log.Printf("Error writing upload file: %v", err)
		respondError(w, http.StatusInternalServerError, "Could not save file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
			contentType = byExt
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"url":          fmt.Sprintf("%s/uploads/%s", config.C.BaseURL, stored),
		"file_name":    header.Filename,
		"content_type": contentType,
		"is_image":     strings.HasPrefix(contentType, "image/"),
	})
}

// sanitizeFilename strips path components and characters that would be unsafe
// in a URL or on disk.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}

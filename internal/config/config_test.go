package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "PORT", "JWT_SECRET", "UPLOAD_DIR", "BASE_URL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port: got %q, want 8080", cfg.Port)
	}
	if cfg.JWTSecret != "secret-key" {
		t.Errorf("JWTSecret: got %q, want secret-key", cfg.JWTSecret)
	}
	if cfg.UploadDir != "./uploads" {
		t.Errorf("UploadDir: got %q, want ./uploads", cfg.UploadDir)
	}
	if cfg.DatabaseURL == "" {
		t.Error("DatabaseURL: expected a default DSN")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("UPLOAD_DIR", "/tmp/founderhub-uploads")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port: got %q, want 9090", cfg.Port)
	}
	if cfg.JWTSecret != "from-env" {
		t.Errorf("JWTSecret: got %q, want from-env", cfg.JWTSecret)
	}
	if cfg.UploadDir != "/tmp/founderhub-uploads" {
		t.Errorf("UploadDir: got %q, want /tmp/founderhub-uploads", cfg.UploadDir)
	}

	if C.Port != "9090" {
		t.Errorf("package config not updated: got %q", C.Port)
	}
}

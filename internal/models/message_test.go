package models

import "testing"

func TestAttachmentIsImage(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"image/png", true},
		{"image/jpeg", true},
		{"application/pdf", false},
		{"text/plain", false},
		{"", false},
	}

	for _, tt := range tests {
		att := Attachment{URL: "/uploads/x", Name: "x", ContentType: tt.contentType}
		if got := att.IsImage(); got != tt.want {
			t.Errorf("IsImage(%q): got %v, want %v", tt.contentType, got, tt.want)
		}
	}
}

package utils

import "testing"

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash must not equal the plaintext")
	}
	if err := CheckPasswordHash("correct horse battery staple", hash); err != nil {
		t.Fatalf("expected the original password to verify: %v", err)
	}
	if err := CheckPasswordHash("wrong password", hash); err == nil {
		t.Fatal("expected a wrong password to be rejected")
	}
}

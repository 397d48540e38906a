package auth

import (
	"errors"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("rahasia-sekali")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "rahasia-sekali" {
		t.Fatal("hash must not equal the plaintext")
	}

	if err := VerifyPassword(hash, "rahasia-sekali"); err != nil {
		t.Errorf("correct password rejected: %v", err)
	}
	if err := VerifyPassword(hash, "salah-total"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("wrong password: got %v, want ErrPasswordMismatch", err)
	}
}

func TestHashPasswordTooShort(t *testing.T) {
	if _, err := HashPassword("pendek"); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("got %v, want ErrPasswordTooShort", err)
	}
}

func TestIsPasswordValid(t *testing.T) {
	if IsPasswordValid("1234567") {
		t.Error("7 characters should be rejected")
	}
	if !IsPasswordValid("12345678") {
		t.Error("8 characters should be accepted")
	}
}

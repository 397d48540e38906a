package auth

import (
	"errors"
	"testing"
	"time"
)

func testManager(expiry time.Duration) *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret",
		Expiry:        expiry,
		RefreshExpiry: expiry * 7,
		Issuer:        "rapor-api",
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	mgr := testManager(time.Hour)

	token, jti, err := mgr.GenerateAccessToken(42, "guru@sekolah.id", "teacher", 3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if jti == "" {
		t.Error("expected a non-empty JTI")
	}

	claims, err := mgr.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("user id = %d, want 42", claims.UserID)
	}
	if claims.Email != "guru@sekolah.id" {
		t.Errorf("email = %q", claims.Email)
	}
	if claims.Role != "teacher" {
		t.Errorf("role = %q", claims.Role)
	}
	if claims.TokenType != "access" {
		t.Errorf("token type = %q, want access", claims.TokenType)
	}
	if claims.TokenVersion != 3 {
		t.Errorf("token version = %d, want 3", claims.TokenVersion)
	}
	if claims.ID != jti {
		t.Errorf("claims JTI %q does not match generated %q", claims.ID, jti)
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	mgr := testManager(time.Hour)
	token, _, err := mgr.GenerateAccessToken(1, "a@b.c", "student", 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other := NewJWTManager(JWTConfig{Secret: "different-secret", Expiry: time.Hour, Issuer: "rapor-api"})
	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: got %v, want ErrInvalidToken", err)
	}

	if _, err := mgr.ValidateToken(token + "x"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("mangled token: got %v, want ErrInvalidToken", err)
	}
}

func TestValidateExpiredToken(t *testing.T) {
	mgr := testManager(-time.Minute)
	token, _, err := mgr.GenerateAccessToken(1, "a@b.c", "student", 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := mgr.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expired token: got %v, want ErrExpiredToken", err)
	}
}

func TestRefreshAccessToken(t *testing.T) {
	mgr := testManager(time.Hour)

	refresh, _, err := mgr.GenerateRefreshToken(7, "siswa@sekolah.id", "student", 1)
	if err != nil {
		t.Fatalf("generate refresh: %v", err)
	}

	access, _, err := mgr.RefreshAccessToken(refresh, 1)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := mgr.ValidateToken(access)
	if err != nil {
		t.Fatalf("validate refreshed: %v", err)
	}
	if claims.TokenType != "access" {
		t.Errorf("token type = %q, want access", claims.TokenType)
	}
	if claims.UserID != 7 {
		t.Errorf("user id = %d, want 7", claims.UserID)
	}

	// An access token cannot be used in place of a refresh token
	if _, _, err := mgr.RefreshAccessToken(access, 1); err == nil {
		t.Error("expected refresh with an access token to fail")
	}
}

func TestGetTokenExpiry(t *testing.T) {
	mgr := testManager(time.Hour)
	token, _, err := mgr.GenerateAccessToken(1, "a@b.c", "admin", 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	expiry, err := mgr.GetTokenExpiry(token)
	if err != nil {
		t.Fatalf("expiry: %v", err)
	}
	until := time.Until(expiry)
	if until < 59*time.Minute || until > 61*time.Minute {
		t.Errorf("expiry %v from now, want about an hour", until)
	}
}

package auth

import (
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret-key"

	token, err := GenerateToken(secret, "42", "amina@example.co.ke", "USER", 0)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.Subject != "42" {
		t.Errorf("expected subject '42', got %q", claims.Subject)
	}
	if claims.Email != "amina@example.co.ke" {
		t.Errorf("expected email, got %q", claims.Email)
	}
	if claims.Role != "USER" {
		t.Errorf("expected role 'USER', got %q", claims.Role)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := GenerateToken("secret1", "1", "a@x.io", "ADMIN", 0)

	_, err := ValidateToken("secret2", token)
	if err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := ValidateToken("secret", "not-a-token")
	if err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestTokenExpiry(t *testing.T) {
	secret := "test"
	token, _ := GenerateToken(secret, "1", "t@x.io", "USER", 0)
	claims, _ := ValidateToken(secret, token)

	expiresAt := claims.ExpiresAt.Time
	expectedExpiry := time.Now().Add(TokenExpiry)

	// Should be within a few seconds.
	diff := expectedExpiry.Sub(expiresAt)
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}

func TestInspectWithoutKey(t *testing.T) {
	token, _ := GenerateToken("backend-only-secret", "7", "o@x.io", "USER", time.Hour)

	claims, err := Inspect(token)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if claims.Subject != "7" {
		t.Errorf("expected subject '7', got %q", claims.Subject)
	}

	if _, err := Inspect("opaque-session-token"); err == nil {
		t.Error("expected error for non-JWT token")
	}
}

func TestExpired(t *testing.T) {
	now := time.Now()

	live, _ := GenerateToken("s", "1", "", "USER", time.Hour)
	if Expired(live, now) {
		t.Error("expected live token not expired")
	}

	dead, _ := GenerateToken("s", "1", "", "USER", -time.Hour)
	if !Expired(dead, now) {
		t.Error("expected past-exp token expired")
	}

	if Expired("opaque-session-token", now) {
		t.Error("opaque tokens must not be treated as expired")
	}
}

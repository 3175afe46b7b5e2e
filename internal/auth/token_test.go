package auth

import (
	"testing"
	"time"
)

func TestModeratorTokenRoundTrip(t *testing.T) {
	cfg := &TokenConfig{Secret: []byte("test-secret"), TTL: time.Hour}

	token, err := MintModeratorToken(cfg, "fuzi")
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	username, err := ValidateModeratorToken(cfg, token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if username != "fuzi" {
		t.Errorf("expected username fuzi, got %q", username)
	}
}

func TestModeratorTokenWrongSecret(t *testing.T) {
	cfg := &TokenConfig{Secret: []byte("test-secret"), TTL: time.Hour}

	token, err := MintModeratorToken(cfg, "fuzi")
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	other := &TokenConfig{Secret: []byte("other-secret"), TTL: time.Hour}
	if _, err := ValidateModeratorToken(other, token); err == nil {
		t.Error("expected validation to fail with a different secret")
	}
}

func TestModeratorTokenExpired(t *testing.T) {
	cfg := &TokenConfig{Secret: []byte("test-secret"), TTL: -time.Minute}

	token, err := MintModeratorToken(cfg, "fuzi")
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	if _, err := ValidateModeratorToken(cfg, token); err == nil {
		t.Error("expected validation to fail for an expired token")
	}
}

func TestModeratorTokenGarbage(t *testing.T) {
	cfg := &TokenConfig{Secret: []byte("test-secret"), TTL: time.Hour}

	if _, err := ValidateModeratorToken(cfg, "not-a-token"); err == nil {
		t.Error("expected validation to fail for garbage input")
	}
}

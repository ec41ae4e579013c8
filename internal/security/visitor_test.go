package security

import (
	"testing"
	"time"
)

func TestVisitorTokenRoundTrip(t *testing.T) {
	tokens := NewVisitorTokens("test-secret", time.Hour)

	visitorID, token, err := tokens.Issue()
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if visitorID == "" || token == "" {
		t.Fatal("Issue() returned empty values")
	}

	parsed, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if parsed != visitorID {
		t.Errorf("Verify() = %q, want %q", parsed, visitorID)
	}
}

func TestVisitorTokenWrongSecret(t *testing.T) {
	tokens := NewVisitorTokens("secret-a", time.Hour)
	_, token, err := tokens.Issue()
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	other := NewVisitorTokens("secret-b", time.Hour)
	if _, err := other.Verify(token); err == nil {
		t.Error("expected verification to fail with wrong secret")
	}
}

func TestVisitorTokenGarbage(t *testing.T) {
	tokens := NewVisitorTokens("test-secret", time.Hour)
	if _, err := tokens.Verify("not-a-token"); err == nil {
		t.Error("expected verification to fail for garbage input")
	}
}

func TestCSRFTokens(t *testing.T) {
	gen := NewCSRFGenerator("csrf-secret")

	token, err := gen.GenerateToken("visitor-1")
	if err != nil {
		t.Fatalf("GenerateToken() error: %v", err)
	}

	if !gen.ValidateToken("visitor-1", token) {
		t.Error("expected token to validate for its visitor")
	}
	if gen.ValidateToken("visitor-2", token) {
		t.Error("token must not validate for another visitor")
	}
	if gen.ValidateToken("visitor-1", "") {
		t.Error("empty token must not validate")
	}
}

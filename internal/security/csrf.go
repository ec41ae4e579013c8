package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// CSRFGenerator derives form tokens from the visitor ID with HMAC-SHA256.
// Stateless: no server-side token storage is needed.
type CSRFGenerator struct {
	secret []byte
}

// NewCSRFGenerator creates an HMAC-based CSRF generator.
func NewCSRFGenerator(secret string) *CSRFGenerator {
	return &CSRFGenerator{secret: []byte(secret)}
}

// GenerateToken returns the CSRF token for the given visitor ID.
func (g *CSRFGenerator) GenerateToken(visitorID string) (string, error) {
	if visitorID == "" {
		return "", fmt.Errorf("visitor ID is required")
	}
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(visitorID))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// ValidateToken reports whether token is the valid CSRF token for visitorID.
func (g *CSRFGenerator) ValidateToken(visitorID, token string) bool {
	if visitorID == "" || token == "" {
		return false
	}
	expected, err := g.GenerateToken(visitorID)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(token))
}

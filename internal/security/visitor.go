package security

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// VisitorCookieName is the cookie carrying the signed visitor token.
const VisitorCookieName = "visitor_token"

// VisitorTokens issues and verifies the signed token that scopes a
// browser's persisted state (identity, submission counters). The token
// identifies a browser, not a user account; there is no login.
type VisitorTokens struct {
	secret []byte
	ttl    time.Duration
}

// NewVisitorTokens creates a token signer with the given HMAC secret.
func NewVisitorTokens(secret string, ttl time.Duration) *VisitorTokens {
	return &VisitorTokens{secret: []byte(secret), ttl: ttl}
}

type visitorClaims struct {
	jwt.RegisteredClaims
}

// Issue mints a token for a fresh visitor ID.
func (v *VisitorTokens) Issue() (visitorID, token string, err error) {
	visitorID = uuid.New().String()

	now := time.Now()
	claims := visitorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   visitorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign visitor token: %w", err)
	}
	return visitorID, token, nil
}

// Verify parses a token and returns the visitor ID it carries.
func (v *VisitorTokens) Verify(token string) (string, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))

	claims := &visitorClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid visitor token: %w", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid visitor token")
	}
	return claims.Subject, nil
}

// IsSecureRequest determines if the request is over HTTPS, directly or
// behind a reverse proxy.
func IsSecureRequest(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
		return true
	}
	return r.URL.Scheme == "https"
}

// CreateVisitorCookie creates the visitor token cookie with proper
// security flags.
func CreateVisitorCookie(r *http.Request, token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     VisitorCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	}
}

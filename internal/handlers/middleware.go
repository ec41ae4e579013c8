package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"mentorspractice/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const VisitorContextKey ContextKey = "visitor"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokens      *security.VisitorTokens
	rateLimiter *security.RateLimiter
	tokenTTL    time.Duration
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(tokens *security.VisitorTokens, rateLimiter *security.RateLimiter, tokenTTL time.Duration) *Middleware {
	return &Middleware{
		tokens:      tokens,
		rateLimiter: rateLimiter,
		tokenTTL:    tokenTTL,
	}
}

// WithVisitor ensures every request carries a visitor ID. A valid token
// cookie is reused; anything else gets a freshly issued token. The visitor ID
// scopes persisted state only, it is not an authenticated user.
func (m *Middleware) WithVisitor(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var visitorID string

		if cookie, err := r.Cookie(security.VisitorCookieName); err == nil {
			if id, err := m.tokens.Verify(cookie.Value); err == nil {
				visitorID = id
			}
		}

		if visitorID == "" {
			id, token, err := m.tokens.Issue()
			if err != nil {
				respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error issuing visitor token", err)
				return
			}
			visitorID = id
			http.SetCookie(w, security.CreateVisitorCookie(r, token, time.Now().Add(m.tokenTTL)))
		}

		ctx := context.WithValue(r.Context(), VisitorContextKey, visitorID)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit applies the per-IP token bucket to burst-sensitive endpoints.
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.rateLimiter.Allow(ip) {
			respondWithJSONError(w, http.StatusTooManyRequests, "Too many requests. Please slow down.", nil)
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetVisitorFromContext retrieves the visitor ID from the request context
func GetVisitorFromContext(ctx context.Context) string {
	visitorID, ok := ctx.Value(VisitorContextKey).(string)
	if !ok {
		return ""
	}
	return visitorID
}

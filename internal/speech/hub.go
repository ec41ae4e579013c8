package speech

import (
	"sync"
	"time"
)

// session pairs a capture with its relay engine and last-touched time.
type session struct {
	capture *Capture
	engine  *RelayEngine
	touched time.Time
}

// SessionHub owns one capture session per visitor. Sessions are created on
// first use and expired after a period of inactivity.
type SessionHub struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
}

// NewSessionHub creates a hub expiring idle sessions after ttl.
func NewSessionHub(ttl time.Duration) *SessionHub {
	return &SessionHub{
		sessions: make(map[string]*session),
		ttl:      ttl,
	}
}

// get returns the visitor's session, creating it if needed.
func (h *SessionHub) get(visitorID string) *session {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[visitorID]
	if !ok {
		engine := NewRelayEngine()
		s = &session{capture: NewCapture(engine), engine: engine}
		h.sessions[visitorID] = s
	}
	s.touched = time.Now()
	return s
}

// Start opens (or reopens) the visitor's recognition session.
func (h *SessionHub) Start(visitorID string) error {
	return h.get(visitorID).capture.Start()
}

// Result relays a recognition result event carrying the full transcript so far.
func (h *SessionHub) Result(visitorID, transcript string) {
	h.get(visitorID).engine.Result(transcript)
}

// Ended relays an engine end event.
func (h *SessionHub) Ended(visitorID string) {
	h.get(visitorID).engine.Ended()
}

// Errored relays an engine error event and returns the resulting
// user-visible message.
func (h *SessionHub) Errored(visitorID, code string) string {
	s := h.get(visitorID)
	s.engine.Errored(code)
	return s.capture.LastError()
}

// Stop ends the visitor's session and returns the frozen transcript.
func (h *SessionHub) Stop(visitorID string) string {
	return h.get(visitorID).capture.Stop()
}

// Transcript returns the visitor's current transcript buffer.
func (h *SessionHub) Transcript(visitorID string) string {
	return h.get(visitorID).capture.Transcript()
}

// CleanupStale removes sessions idle longer than the hub TTL. Intended to
// run from a periodic background ticker.
func (h *SessionHub) CleanupStale() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	cutoff := time.Now().Add(-h.ttl)
	removed := 0
	for id, s := range h.sessions {
		if s.touched.Before(cutoff) {
			delete(h.sessions, id)
			removed++
		}
	}
	return removed
}

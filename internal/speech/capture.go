package speech

import (
	"strings"
	"sync"
)

// State is the capture session state.
type State int

const (
	StateIdle State = iota
	StateListening
)

func (s State) String() string {
	if s == StateListening {
		return "listening"
	}
	return "idle"
}

// Capture owns one continuous recognition session and its transcript
// buffer. Each result event carries the full utterance so far and REPLACES
// the buffer; nothing is ever appended. An unexpected engine end while
// listening triggers a best-effort restart to approximate indefinite
// listening. Stopping detaches the callbacks before stopping the engine so
// an in-flight auto-restart cannot mutate the buffer afterwards.
type Capture struct {
	mu     sync.Mutex
	engine Engine

	state      State
	transcript string
	lastError  string
}

// NewCapture creates an idle capture session over an engine. A nil engine
// means recognition is unsupported; Start will fail.
func NewCapture(engine Engine) *Capture {
	return &Capture{engine: engine}
}

// Start opens a recognition session, clearing any previous transcript.
// Starting while already listening is a no-op.
func (c *Capture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.engine == nil {
		return ErrUnsupported
	}
	if c.state == StateListening {
		return nil
	}

	c.transcript = ""
	c.lastError = ""
	c.state = StateListening

	c.engine.OnResult(c.handleResult)
	c.engine.OnEnd(c.handleEnd)
	c.engine.OnError(c.handleError)

	if err := c.engine.Start(); err != nil {
		c.detachLocked()
		c.state = StateIdle
		return err
	}
	return nil
}

// Stop ends the session and freezes the transcript as the captured
// response. Callbacks are detached first; a late result or end event from
// the engine after Stop returns can no longer reach the buffer.
func (c *Capture) Stop() string {
	c.mu.Lock()
	if c.state != StateListening {
		transcript := c.transcript
		c.mu.Unlock()
		return transcript
	}

	c.detachLocked()
	c.state = StateIdle
	transcript := c.transcript
	engine := c.engine
	c.mu.Unlock()

	engine.Stop()
	return transcript
}

// Transcript returns the current buffer contents.
func (c *Capture) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript
}

// State returns the current session state.
func (c *Capture) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the user-visible message from the most recent engine
// error, if any.
func (c *Capture) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

func (c *Capture) handleResult(transcript string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateListening {
		return
	}
	// Each result batch holds the full utterance so far; overwrite, never append.
	c.transcript = strings.TrimSpace(transcript)
}

func (c *Capture) handleEnd() {
	c.mu.Lock()
	engine := c.engine
	listening := c.state == StateListening
	c.mu.Unlock()

	if !listening {
		return
	}
	// The engine ended on its own (silence timeout). Restart to keep
	// listening until the user stops; a start-on-already-started error
	// is swallowed.
	_ = engine.Start()
}

func (c *Capture) handleError(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if code == "no-speech" {
		c.lastError = "No speech was detected. Please make sure your microphone is working and try again."
	} else {
		c.lastError = "Speech recognition error: " + code
	}

	// Reset to idle but keep whatever was already captured.
	c.detachLocked()
	c.state = StateIdle
}

// detachLocked removes all engine callbacks. Caller holds c.mu.
func (c *Capture) detachLocked() {
	c.engine.OnResult(nil)
	c.engine.OnEnd(nil)
	c.engine.OnError(nil)
}

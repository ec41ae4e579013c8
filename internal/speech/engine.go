// Package speech models continuous speech-to-text capture as an explicit
// state machine driven by engine callbacks. The engine itself runs in the
// visitor's browser; its result/end/error events are relayed to the server
// and injected into the session's Engine.
package speech

import (
	"errors"
	"sync"
)

// ErrAlreadyStarted is returned when Start is called on a running engine.
// The auto-restart path swallows it.
var ErrAlreadyStarted = errors.New("recognition already started")

// ErrUnsupported is returned when no recognition engine is available.
var ErrUnsupported = errors.New("speech recognition not supported")

// Engine mirrors the platform speech-recognition engine: a continuous
// interim-results session that reports through attached callbacks. Passing
// nil to a setter detaches the callback; a detached engine delivers nothing.
type Engine interface {
	Start() error
	Stop()

	OnResult(func(transcript string))
	OnEnd(func())
	OnError(func(code string))
}

// RelayEngine is the Engine implementation backing browser-driven sessions.
// Recognition events relayed over HTTP are injected with Result, Ended and
// Errored and forwarded to whatever callbacks are currently attached.
type RelayEngine struct {
	mu       sync.Mutex
	running  bool
	onResult func(string)
	onEnd    func()
	onError  func(string)
}

// NewRelayEngine creates an idle relay engine.
func NewRelayEngine() *RelayEngine {
	return &RelayEngine{}
}

func (e *RelayEngine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return ErrAlreadyStarted
	}
	e.running = true
	return nil
}

func (e *RelayEngine) Stop() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()
}

func (e *RelayEngine) OnResult(fn func(string)) {
	e.mu.Lock()
	e.onResult = fn
	e.mu.Unlock()
}

func (e *RelayEngine) OnEnd(fn func()) {
	e.mu.Lock()
	e.onEnd = fn
	e.mu.Unlock()
}

func (e *RelayEngine) OnError(fn func(string)) {
	e.mu.Lock()
	e.onError = fn
	e.mu.Unlock()
}

// Result injects one recognition result event. The transcript carries the
// full recognized utterance so far, not a delta.
func (e *RelayEngine) Result(transcript string) {
	e.mu.Lock()
	fn := e.onResult
	e.mu.Unlock()
	if fn != nil {
		fn(transcript)
	}
}

// Ended injects an engine end event (e.g. a silence timeout).
func (e *RelayEngine) Ended() {
	e.mu.Lock()
	e.running = false
	fn := e.onEnd
	e.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Errored injects an engine error event with the engine's error code.
func (e *RelayEngine) Errored(code string) {
	e.mu.Lock()
	e.running = false
	fn := e.onError
	e.mu.Unlock()
	if fn != nil {
		fn(code)
	}
}

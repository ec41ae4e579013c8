package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"mentorspractice/internal/speech"
)

// SpeechHandler relays browser recognition events into the server-side
// capture sessions. The browser owns the microphone; the state machine and
// transcript buffer live here.
type SpeechHandler struct {
	hub *speech.SessionHub
}

// NewSpeechHandler creates a new speech handler
func NewSpeechHandler(hub *speech.SessionHub) *SpeechHandler {
	return &SpeechHandler{hub: hub}
}

type recordingEvent struct {
	Transcript string `json:"transcript"`
	Code       string `json:"code"`
}

// StartRecording opens a recognition session for the visitor.
func (h *SpeechHandler) StartRecording(w http.ResponseWriter, r *http.Request) {
	visitorID := GetVisitorFromContext(r.Context())

	if err := h.hub.Start(visitorID); err != nil {
		if errors.Is(err, speech.ErrUnsupported) {
			respondWithJSONError(w, http.StatusBadRequest, "Speech recognition not supported in this browser.", nil)
			return
		}
		respondWithJSONError(w, http.StatusConflict, "Recording is already in progress.", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"state": "listening"})
}

// RecordingResult relays one recognition result. The event carries the full
// utterance so far, not a delta.
func (h *SpeechHandler) RecordingResult(w http.ResponseWriter, r *http.Request) {
	visitorID := GetVisitorFromContext(r.Context())

	var event recordingEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondWithJSONError(w, http.StatusBadRequest, ErrInvalidRequestBody, err)
		return
	}

	h.hub.Result(visitorID, event.Transcript)
	respondWithJSON(w, http.StatusOK, map[string]string{
		"transcript": h.hub.Transcript(visitorID),
	})
}

// RecordingEnded relays an engine end event. An unexpected end while
// listening restarts the session server-side.
func (h *SpeechHandler) RecordingEnded(w http.ResponseWriter, r *http.Request) {
	visitorID := GetVisitorFromContext(r.Context())

	h.hub.Ended(visitorID)
	respondWithJSON(w, http.StatusOK, map[string]string{
		"transcript": h.hub.Transcript(visitorID),
	})
}

// RecordingError relays an engine error event and returns the user-visible
// message. The partial transcript is preserved.
func (h *SpeechHandler) RecordingError(w http.ResponseWriter, r *http.Request) {
	visitorID := GetVisitorFromContext(r.Context())

	var event recordingEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondWithJSONError(w, http.StatusBadRequest, ErrInvalidRequestBody, err)
		return
	}

	message := h.hub.Errored(visitorID, event.Code)
	respondWithJSON(w, http.StatusOK, map[string]string{
		"message":    message,
		"transcript": h.hub.Transcript(visitorID),
	})
}

// StopRecording ends the visitor's session and returns the frozen transcript.
func (h *SpeechHandler) StopRecording(w http.ResponseWriter, r *http.Request) {
	visitorID := GetVisitorFromContext(r.Context())

	transcript := h.hub.Stop(visitorID)
	respondWithJSON(w, http.StatusOK, map[string]string{"transcript": transcript})
}

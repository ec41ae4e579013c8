package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"mentorspractice/internal/audio"
)

// AudioHandler generates spoken audio for the improved version shown in
// speaking feedback. Files are cached on disk and served from /static/audio.
type AudioHandler struct {
	tts *audio.TTSService
}

// NewAudioHandler creates a new audio handler
func NewAudioHandler(tts *audio.TTSService) *AudioHandler {
	return &AudioHandler{tts: tts}
}

type audioRequest struct {
	Text string `json:"text"`
}

// FeedbackAudio synthesizes the given text and returns the MP3 URL.
func (h *AudioHandler) FeedbackAudio(w http.ResponseWriter, r *http.Request) {
	var req audioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSONError(w, http.StatusBadRequest, ErrInvalidRequestBody, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondWithJSONError(w, http.StatusBadRequest, "Nothing to play", nil)
		return
	}

	filename, err := h.tts.Synthesize(req.Text)
	if err != nil {
		respondWithJSONError(w, http.StatusBadGateway, "Failed to generate audio", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"url": "/static/audio/" + filename,
	})
}

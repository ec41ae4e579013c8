package handlers

import (
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strings"

	"mentorspractice/internal/models"
	"mentorspractice/internal/service"
)

// ChatHandler serves the chat widget transcript partial and its actions.
type ChatHandler struct {
	chatService *service.ChatService
	templates   *template.Template
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService, templates *template.Template) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		templates:   templates,
	}
}

// ChatViewData drives the chat widget partial.
type ChatViewData struct {
	Messages   []ChatMessageView
	Started    bool
	Category   string
	Categories []string
}

func (h *ChatHandler) renderWidget(w http.ResponseWriter, visitorID string) {
	messages, started, category := h.chatService.Transcript(visitorID)

	data := ChatViewData{
		Messages:   NewChatMessageViews(messages),
		Started:    started,
		Category:   category,
		Categories: models.ChatCategories,
	}

	if err := h.templates.ExecuteTemplate(w, "chat.tmpl", data); err != nil {
		log.Printf("Error rendering chat template: %v", err)
	}
}

// ShowWidget returns the current chat widget partial.
func (h *ChatHandler) ShowWidget(w http.ResponseWriter, r *http.Request) {
	h.renderWidget(w, GetVisitorFromContext(r.Context()))
}

type chatActionRequest struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// SelectCategory picks a conversation topic and returns the updated widget.
func (h *ChatHandler) SelectCategory(w http.ResponseWriter, r *http.Request) {
	visitorID := GetVisitorFromContext(r.Context())

	var req chatActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSONError(w, http.StatusBadRequest, ErrInvalidRequestBody, err)
		return
	}

	if err := h.chatService.SelectCategory(visitorID, req.Category); err != nil {
		if errors.Is(err, service.ErrUnknownCategory) {
			respondWithJSONError(w, http.StatusBadRequest, "Unknown category", nil)
			return
		}
		respondWithJSONError(w, http.StatusInternalServerError, ErrInternalServerError, err)
		return
	}

	h.renderWidget(w, visitorID)
}

// SendMessage relays a chat message and returns the updated widget. A
// backend failure already shows up in the transcript as the fallback reply.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	visitorID := GetVisitorFromContext(r.Context())

	var req chatActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSONError(w, http.StatusBadRequest, ErrInvalidRequestBody, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		h.renderWidget(w, visitorID)
		return
	}

	if _, err := h.chatService.SendMessage(r.Context(), visitorID, req.Message); err != nil {
		if errors.Is(err, service.ErrCategoryRequired) {
			respondWithJSONError(w, http.StatusBadRequest, "Please pick a topic first.", nil)
			return
		}
		respondWithJSONError(w, http.StatusInternalServerError, ErrInternalServerError, err)
		return
	}

	h.renderWidget(w, visitorID)
}

// Back resets the conversation to category selection.
func (h *ChatHandler) Back(w http.ResponseWriter, r *http.Request) {
	visitorID := GetVisitorFromContext(r.Context())
	h.chatService.Back(visitorID)
	h.renderWidget(w, visitorID)
}

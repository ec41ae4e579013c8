package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"mentorspractice/internal/assessment"
	"mentorspractice/internal/models"
)

// Fixed assistant messages for the chat widget.
const (
	chatGreeting    = "Hello!. I'm the Mentors' AI Assistant. I will help you with your queries."
	chatCategoryAck = "How can I assist you today?"
	chatFallback    = "Sorry, I couldn't process your request. Please try again."
)

// ErrCategoryRequired is returned when a message is sent before a topic
// category has been selected.
var ErrCategoryRequired = errors.New("a category must be selected before chatting")

// ErrUnknownCategory is returned for a category outside the fixed list.
var ErrUnknownCategory = errors.New("unknown chat category")

// chatSession is one visitor's chat transcript and conversation state.
type chatSession struct {
	category string
	started  bool
	messages []models.ChatMessage
	touched  time.Time
}

// ChatService runs the chat widget conversations. Each visitor moves through
// category selection into free-form chat relayed to the backend; going back
// resets the transcript to the initial greeting.
type ChatService struct {
	backend *assessment.Client

	mu       sync.Mutex
	sessions map[string]*chatSession
	ttl      time.Duration
}

// NewChatService creates a chat service expiring idle conversations after ttl.
func NewChatService(backend *assessment.Client, ttl time.Duration) *ChatService {
	return &ChatService{
		backend:  backend,
		sessions: make(map[string]*chatSession),
		ttl:      ttl,
	}
}

// session returns the visitor's chat session, seeding the greeting on first
// use. Caller must hold s.mu.
func (s *ChatService) session(visitorID string) *chatSession {
	sess, ok := s.sessions[visitorID]
	if !ok {
		sess = &chatSession{
			messages: []models.ChatMessage{assistantMessage(chatGreeting)},
		}
		s.sessions[visitorID] = sess
	}
	sess.touched = time.Now()
	return sess
}

// Transcript returns the visitor's messages, whether a conversation has
// started, and the selected category.
func (s *ChatService) Transcript(visitorID string) ([]models.ChatMessage, bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(visitorID)
	messages := make([]models.ChatMessage, len(sess.messages))
	copy(messages, sess.messages)
	return messages, sess.started, sess.category
}

// SelectCategory picks a topic category and opens the conversation with the
// assistant's acknowledgment.
func (s *ChatService) SelectCategory(visitorID, category string) error {
	if !validCategory(category) {
		return ErrUnknownCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(visitorID)
	sess.category = category
	sess.started = true
	sess.messages = append(sess.messages, assistantMessage(chatCategoryAck))
	return nil
}

// SendMessage appends the visitor's message and relays it to the backend with
// the selected category. A backend failure appends the fallback apology
// instead of surfacing an error; the conversation stays usable.
func (s *ChatService) SendMessage(ctx context.Context, visitorID, text string) ([]models.ChatMessage, error) {
	s.mu.Lock()
	sess := s.session(visitorID)
	if !sess.started {
		s.mu.Unlock()
		return nil, ErrCategoryRequired
	}
	category := sess.category
	sess.messages = append(sess.messages, models.ChatMessage{
		ID:     uuid.NewString(),
		Sender: models.ChatSenderUser,
		Text:   text,
	})
	s.mu.Unlock()

	reply, err := s.backend.Chat(ctx, text, category)
	if err != nil {
		log.Printf("Error relaying chat message: %v", err)
		reply = chatFallback
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess.messages = append(sess.messages, assistantMessage(reply))

	messages := make([]models.ChatMessage, len(sess.messages))
	copy(messages, sess.messages)
	return messages, nil
}

// Back resets the visitor's conversation to category selection with a fresh
// greeting transcript.
func (s *ChatService) Back(visitorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(visitorID)
	sess.category = ""
	sess.started = false
	sess.messages = []models.ChatMessage{assistantMessage(chatGreeting)}
}

// CleanupStale removes conversations idle longer than the service TTL.
// Intended to run from a periodic background ticker.
func (s *ChatService) CleanupStale() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl)
	removed := 0
	for id, sess := range s.sessions {
		if sess.touched.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func validCategory(category string) bool {
	for _, c := range models.ChatCategories {
		if c == category {
			return true
		}
	}
	return false
}

func assistantMessage(text string) models.ChatMessage {
	return models.ChatMessage{
		ID:     uuid.NewString(),
		Sender: models.ChatSenderAssistant,
		Text:   text,
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"mentorspractice/internal/assessment"
	"mentorspractice/internal/limit"
	"mentorspractice/internal/models"
)

// MinWritingWords is the minimum whitespace-separated token count a writing
// answer needs before it can be submitted. Speaking transcripts have no
// minimum.
const MinWritingWords = 100

var (
	// ErrIdentityRequired is returned when a practice operation runs before
	// the visitor has saved their contact details.
	ErrIdentityRequired = errors.New("identity must be saved before practicing")

	// ErrAnswerTooShort is returned when a writing answer is below the
	// minimum word count.
	ErrAnswerTooShort = fmt.Errorf("answer must be at least %d words", MinWritingWords)

	// ErrSubmissionInFlight is returned when a submission for the same
	// visitor and practice type is already waiting on the backend.
	ErrSubmissionInFlight = errors.New("a submission is already being evaluated")

	// ErrAlreadySubmitted is returned when the flow already holds a result;
	// the visitor must reload the page to start over.
	ErrAlreadySubmitted = errors.New("this practice session already has a result")

	// ErrPromptUnavailable is returned when no prompt has been fetched for
	// the flow, so there is nothing to submit an answer against.
	ErrPromptUnavailable = errors.New("no practice question is loaded")
)

// flowState is one visitor's progress through a practice flow. The feedback
// result is held here until the flow is reset by a page reload.
type flowState struct {
	prompt    *models.Prompt
	inFlight  bool
	submitted bool
	result    *models.FeedbackResult
}

// PracticeService orchestrates a practice session: prompt fetch, daily
// allowance checks, submission to the assessment backend, and holding the
// returned feedback until the flow resets.
type PracticeService struct {
	backend  *assessment.Client
	limiter  *limit.DailyLimiter
	identity *IdentityService

	mu    sync.Mutex
	flows map[string]*flowState
}

// NewPracticeService creates a new practice service
func NewPracticeService(backend *assessment.Client, limiter *limit.DailyLimiter, identity *IdentityService) *PracticeService {
	return &PracticeService{
		backend:  backend,
		limiter:  limiter,
		identity: identity,
		flows:    make(map[string]*flowState),
	}
}

// WordCount counts whitespace-separated tokens, ignoring empty strings.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func flowKey(visitorID string, practiceType models.PracticeType) string {
	return visitorID + ":" + string(practiceType)
}

// flow returns the visitor's flow state, creating it if needed.
func (s *PracticeService) flow(visitorID string, practiceType models.PracticeType) *flowState {
	key := flowKey(visitorID, practiceType)
	f, ok := s.flows[key]
	if !ok {
		f = &flowState{}
		s.flows[key] = f
	}
	return f
}

// Question fetches (or returns the already-fetched) practice prompt for the
// visitor. Requires a saved identity.
func (s *PracticeService) Question(ctx context.Context, visitorID string, practiceType models.PracticeType) (*models.Prompt, error) {
	identity, err := s.identity.Current(visitorID)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, ErrIdentityRequired
	}

	s.mu.Lock()
	f := s.flow(visitorID, practiceType)
	if f.prompt != nil {
		prompt := f.prompt
		s.mu.Unlock()
		return prompt, nil
	}
	s.mu.Unlock()

	prompt, err := s.backend.FetchQuestion(ctx, *identity, practiceType)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.flow(visitorID, practiceType).prompt = prompt
	s.mu.Unlock()

	return prompt, nil
}

// Progress fetches the visitor's progress summary for the practice type.
func (s *PracticeService) Progress(ctx context.Context, visitorID string, practiceType models.PracticeType) (*models.ProgressSummary, error) {
	identity, err := s.identity.Current(visitorID)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, ErrIdentityRequired
	}
	return s.backend.Progress(ctx, *identity, practiceType)
}

// Remaining reports how many submissions the visitor has left today.
func (s *PracticeService) Remaining(visitorID string, practiceType models.PracticeType) int {
	return s.limiter.Remaining(visitorID, practiceType)
}

// MaxPerDay returns the daily submission allowance.
func (s *PracticeService) MaxPerDay() int {
	return s.limiter.Max()
}

// Result returns the held feedback result for the flow, if any.
func (s *PracticeService) Result(visitorID string, practiceType models.PracticeType) (*models.FeedbackResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.flow(visitorID, practiceType)
	return f.result, f.result != nil
}

// Reset clears the visitor's flow state. Called when the practice page is
// freshly loaded, matching the reload-to-start-over contract.
func (s *PracticeService) Reset(visitorID string, practiceType models.PracticeType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flows, flowKey(visitorID, practiceType))
}

// Submit runs the full submission workflow: identity gate, writing word-count
// gate, local daily-limit fast-fail, then one backend call per flow at a
// time. Only a successful evaluation increments the local counter and locks
// the flow; a backend 429 or any other failure leaves the counter untouched.
func (s *PracticeService) Submit(ctx context.Context, visitorID string, practiceType models.PracticeType, answer string) (*models.FeedbackResult, error) {
	identity, err := s.identity.Current(visitorID)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, ErrIdentityRequired
	}

	if practiceType == models.PracticeWriting && WordCount(answer) < MinWritingWords {
		return nil, ErrAnswerTooShort
	}

	if s.limiter.Remaining(visitorID, practiceType) <= 0 {
		return nil, assessment.ErrDailyLimitReached
	}

	s.mu.Lock()
	f := s.flow(visitorID, practiceType)
	switch {
	case f.submitted:
		s.mu.Unlock()
		return nil, ErrAlreadySubmitted
	case f.inFlight:
		s.mu.Unlock()
		return nil, ErrSubmissionInFlight
	case f.prompt == nil:
		s.mu.Unlock()
		return nil, ErrPromptUnavailable
	}
	f.inFlight = true
	prompt := f.prompt
	s.mu.Unlock()

	result, err := s.backend.Submit(ctx, practiceType, buildSubmission(*identity, practiceType, prompt, answer))

	s.mu.Lock()
	defer s.mu.Unlock()
	f.inFlight = false

	if err != nil {
		return nil, err
	}

	if recordErr := s.limiter.Record(visitorID, practiceType); recordErr != nil {
		// Counter is advisory; the evaluation still succeeded.
		log.Printf("Error recording submission counter: %v", recordErr)
	}
	f.submitted = true
	f.result = result
	return result, nil
}

// buildSubmission assembles the backend submission envelope. Speaking prompts
// fold their subtopics into the question title.
func buildSubmission(identity models.Identity, practiceType models.PracticeType, prompt *models.Prompt, answer string) models.SubmissionRequest {
	title := prompt.Title
	if practiceType == models.PracticeSpeaking && len(prompt.Subtopics) > 0 {
		title = title + " " + strings.Join(prompt.Subtopics, " ")
	}

	return models.SubmissionRequest{
		Message:       answer,
		QuestionID:    prompt.ID,
		QuestionTitle: title,
		MySQLUserID:   identity.UserID(),
		Name:          identity.Name,
		Email:         identity.Email,
		Phone:         identity.Phone,
		TaskType:      practiceType.TaskType(),
	}
}

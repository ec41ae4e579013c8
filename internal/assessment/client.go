// Package assessment is the HTTP client for the remote assessment and chat
// backend. All calls are single-shot with no retry; failures surface as
// errors for the caller to translate into user-visible conditions.
package assessment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"mentorspractice/internal/models"
)

// ErrDailyLimitReached is returned when the backend itself rejects a
// submission with HTTP 429. The local counter must not be incremented in
// that case; it may already disagree with server state.
var ErrDailyLimitReached = errors.New("daily submission limit reached")

// Client calls the assessment backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a backend client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// identityPayload is the identity envelope sent on prompt and progress calls.
type identityPayload struct {
	MySQLUserID int64  `json:"mysqlUserId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

type questionResponse struct {
	Question *models.Prompt `json:"question"`
}

// FetchQuestion requests a practice prompt for the visitor. A payload
// missing the question field is treated as malformed.
func (c *Client) FetchQuestion(ctx context.Context, identity models.Identity, practiceType models.PracticeType) (*models.Prompt, error) {
	url := fmt.Sprintf("%s/api/%s/question", c.baseURL, practiceType)

	var out questionResponse
	if err := c.postJSON(ctx, url, identityFrom(identity), &out); err != nil {
		return nil, err
	}
	if out.Question == nil {
		return nil, fmt.Errorf("invalid question payload from %s", url)
	}
	return out.Question, nil
}

// criterionDetail holds one scored criterion from the response envelope.
type criterionDetail struct {
	Score *float64 `json:"score"`
}

// submissionPayload mirrors the backend submission envelope across both
// practice types; fields absent for a given type simply stay zero-valued.
type submissionPayload struct {
	Score map[string]*float64 `json:"score"`

	TaskAchievement             criterionDetail `json:"taskAchievement"`
	CoherenceAndCohesion        criterionDetail `json:"coherenceAndCohesion"`
	FluencyAndCoherence         criterionDetail `json:"fluencyAndCoherence"`
	Pronunciation               criterionDetail `json:"pronunciation"`
	LexicalResource             criterionDetail `json:"lexicalResource"`
	GrammaticalRangeAndAccuracy criterionDetail `json:"grammaticalRangeAndAccuracy"`

	Feedback                  string             `json:"feedback"`
	AiSuggestions             string             `json:"AiSuggestions"`
	AiMotivation              string             `json:"AiMotivation"`
	AiGenerateWriting         string             `json:"AiGenerateWriting"`
	AiGenerateSpeaking        string             `json:"AiGenerateSpeaking"`
	TotalVocabularyError      string             `json:"TotalVocabularyError"`
	TotalSentenceError        string             `json:"TotalSentenceError"`
	TotalGrammerError         string             `json:"TotalGrammerError"`
	ReWriteImprovementVersion string             `json:"ReWriteImprovementVersion"`
	ListOfWords               models.MistakeList `json:"listofWords"`
	ListOfSentences           models.MistakeList `json:"listofSentences"`
	ReWriteCorrectWords       string             `json:"ReWriteCorrectWords"`
	ReWriteCorrectSentences   string             `json:"ReWriteCorrectSentences"`
	Topic                     string             `json:"topic"`
	Content                   string             `json:"content"`
}

type submissionEnvelope struct {
	Submission *submissionPayload `json:"submission"`
}

// Submit posts one submission and maps the response envelope into a
// normalized FeedbackResult. HTTP 429 maps to ErrDailyLimitReached; any
// other non-2xx status or transport error is a generic failure.
func (c *Client) Submit(ctx context.Context, practiceType models.PracticeType, req models.SubmissionRequest) (*models.FeedbackResult, error) {
	url := fmt.Sprintf("%s/api/%s", c.baseURL, practiceType)

	var out submissionEnvelope
	if err := c.postJSON(ctx, url, req, &out); err != nil {
		return nil, err
	}
	if out.Submission == nil {
		return nil, fmt.Errorf("missing submission payload from %s", url)
	}
	return normalize(practiceType, out.Submission), nil
}

// Progress fetches the per-module progress summary for the visitor. Absent
// fields fall back to defaults so the strip always renders.
func (c *Client) Progress(ctx context.Context, identity models.Identity, practiceType models.PracticeType) (*models.ProgressSummary, error) {
	url := fmt.Sprintf("%s/api/%s/progress", c.baseURL, practiceType)

	var out models.ProgressSummary
	if err := c.postJSON(ctx, url, identityFrom(identity), &out); err != nil {
		return nil, err
	}
	if out.Level == "" {
		out.Level = "Beginner"
	}
	return &out, nil
}

type chatRequest struct {
	Message  string `json:"message"`
	Category string `json:"category"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// Chat relays one chat message with its selected category and returns the
// assistant reply.
func (c *Client) Chat(ctx context.Context, message, category string) (string, error) {
	url := c.baseURL + "/api/chat"

	var out chatResponse
	if err := c.postJSON(ctx, url, chatRequest{Message: message, Category: category}, &out); err != nil {
		return "", err
	}
	return out.Response, nil
}

func (c *Client) postJSON(ctx context.Context, url string, body, out interface{}) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrDailyLimitReached
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}

func identityFrom(identity models.Identity) identityPayload {
	return identityPayload{
		MySQLUserID: identity.UserID(),
		Name:        identity.Name,
		Email:       identity.Email,
		Phone:       identity.Phone,
	}
}

// normalize maps the wire payload 1:1 into the normalized feedback model.
// No score-range validation is performed; absent criteria keep a nil score.
func normalize(practiceType models.PracticeType, payload *submissionPayload) *models.FeedbackResult {
	result := &models.FeedbackResult{
		PracticeType:       practiceType,
		Feedback:           payload.Feedback,
		Suggestions:        payload.AiSuggestions,
		Motivation:         payload.AiMotivation,
		VocabularyErrors:   payload.TotalVocabularyError,
		SentenceErrors:     payload.TotalSentenceError,
		GrammarErrors:      payload.TotalGrammerError,
		ImprovedVersion:    payload.ReWriteImprovementVersion,
		WordMistakes:       payload.ListOfWords,
		SentenceMistakes:   payload.ListOfSentences,
		CorrectedWords:     payload.ReWriteCorrectWords,
		CorrectedSentences: payload.ReWriteCorrectSentences,
		Topic:              payload.Topic,
		Content:            payload.Content,
	}

	if payload.Score != nil {
		result.OverallBandScore = payload.Score["overallBandScore"]
	}

	result.AIIndicator = payload.AiGenerateWriting
	if practiceType == models.PracticeSpeaking {
		result.AIIndicator = payload.AiGenerateSpeaking
	}

	details := map[string]criterionDetail{
		"taskAchievement":             payload.TaskAchievement,
		"coherenceAndCohesion":        payload.CoherenceAndCohesion,
		"fluencyAndCoherence":         payload.FluencyAndCoherence,
		"pronunciation":               payload.Pronunciation,
		"lexicalResource":             payload.LexicalResource,
		"grammaticalRangeAndAccuracy": payload.GrammaticalRangeAndAccuracy,
	}

	for _, criterion := range models.CriteriaFor(practiceType) {
		score := details[criterion.Key].Score
		if score == nil && payload.Score != nil {
			score = payload.Score[criterion.Key]
		}
		result.Criteria = append(result.Criteria, models.CriterionScore{
			Key:   criterion.Key,
			Label: criterion.Label,
			Score: score,
		})
	}

	return result
}

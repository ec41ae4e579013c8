package models

// PracticeType selects which prompt, criteria and endpoint set is used.
type PracticeType string

const (
	PracticeWriting  PracticeType = "writing"
	PracticeSpeaking PracticeType = "speaking"
)

// TaskType returns the task label the backend expects for submissions.
func (p PracticeType) TaskType() string {
	if p == PracticeSpeaking {
		return "Task 2"
	}
	return "Task 1"
}

// CounterKey returns the fixed storage key suffix holding the daily
// submission counter for this practice type.
func (p PracticeType) CounterKey() string {
	if p == PracticeSpeaking {
		return "speakingSubmissions"
	}
	return "writingSubmissions"
}

// Valid reports whether p names a known practice type.
func (p PracticeType) Valid() bool {
	return p == PracticeWriting || p == PracticeSpeaking
}

// Prompt is a practice question fetched from the backend. Subtopics are only
// present for speaking prompts (cue-card style bullet points).
type Prompt struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Subtopics []string `json:"subtopics,omitempty"`
}

// SubmissionCounter is the per-day submission bookkeeping record. A stored
// date that differs from the current day is treated as count = 0; there is
// no explicit reset.
type SubmissionCounter struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// SubmissionRequest is the payload posted to the backend assessment
// endpoint. Constructed at submit time and never persisted.
type SubmissionRequest struct {
	Message       string `json:"message"`
	QuestionID    string `json:"questionId"`
	QuestionTitle string `json:"questionTitle"`
	MySQLUserID   int64  `json:"mysqlUserId"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	TaskType      string `json:"taskType"`
}

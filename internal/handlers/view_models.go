package handlers

import (
	"html/template"

	"mentorspractice/internal/models"
)

type HomeViewData struct {
	Title string
}

// IdentityFormData carries the modal form state with per-field errors for
// re-rendering after a failed submit.
type IdentityFormData struct {
	Name       string
	Email      string
	Phone      string
	NameError  string
	EmailError string
	PhoneError string
	CSRFToken  string
}

type ProgressViewData struct {
	Level            string
	AverageDisplay   string
	TotalSubmissions int
}

type PracticeViewData struct {
	Title        string
	PracticeType models.PracticeType
	HasIdentity  bool
	IdentityForm IdentityFormData
	Prompt       *models.Prompt
	PromptError  string
	Progress     *ProgressViewData
	Remaining    int
	MaxPerDay    int
	LimitReached bool
	Notes        []string
	CSRFToken    string
}

// CriterionView is one criterion row in the rendered feedback.
type CriterionView struct {
	Label string
	Score string
	Band  string
}

// FeedbackViewData is the rendered form of a FeedbackResult.
type FeedbackViewData struct {
	PracticeType models.PracticeType

	OverallScore string
	OverallBand  string
	Criteria     []CriterionView

	Feedback    string
	Suggestions string
	Motivation  string

	UsingAI bool

	VocabularyErrors string
	SentenceErrors   string
	GrammarErrors    string

	ImprovedVersion  string
	WordMistakes     []MistakePairView
	SentenceMistakes []MistakePairView

	CorrectedWords     string
	CorrectedSentences string
	Topic              string
	Content            string
}

// MistakePairView is one mistake with its correction. Correction may be
// empty when the backend lists are unbalanced.
type MistakePairView struct {
	Mistake    string
	Correction string
}

// NewFeedbackView maps a normalized feedback result into its display form.
func NewFeedbackView(result *models.FeedbackResult) FeedbackViewData {
	view := FeedbackViewData{
		PracticeType:       result.PracticeType,
		OverallScore:       FormatScore(result.OverallBandScore),
		OverallBand:        ScoreBand(result.OverallBandScore),
		Feedback:           result.Feedback,
		Suggestions:        result.Suggestions,
		Motivation:         result.Motivation,
		UsingAI:            AiLikely(result.AIIndicator),
		VocabularyErrors:   result.VocabularyErrors,
		SentenceErrors:     result.SentenceErrors,
		GrammarErrors:      result.GrammarErrors,
		ImprovedVersion:    result.ImprovedVersion,
		WordMistakes:       mistakePairs(result.WordMistakes),
		SentenceMistakes:   mistakePairs(result.SentenceMistakes),
		CorrectedWords:     result.CorrectedWords,
		CorrectedSentences: result.CorrectedSentences,
		Topic:              result.Topic,
		Content:            result.Content,
	}

	for _, criterion := range result.Criteria {
		view.Criteria = append(view.Criteria, CriterionView{
			Label: criterion.Label,
			Score: FormatScore(criterion.Score),
			Band:  ScoreBand(criterion.Score),
		})
	}

	return view
}

// mistakePairs aligns the mistake and correction lists by index, tolerating
// unequal lengths.
func mistakePairs(list models.MistakeList) []MistakePairView {
	pairs := make([]MistakePairView, 0, len(list.Mistakes))
	for i, mistake := range list.Mistakes {
		pair := MistakePairView{Mistake: mistake}
		if i < len(list.Corrections) {
			pair.Correction = list.Corrections[i]
		}
		pairs = append(pairs, pair)
	}
	return pairs
}

// ChatMessageView is one transcript entry prepared for rendering. Assistant
// message text is linkified; user text is plain-escaped.
type ChatMessageView struct {
	Sender string
	IsUser bool
	HTML   template.HTML
}

// NewChatMessageViews prepares a transcript for rendering.
func NewChatMessageViews(messages []models.ChatMessage) []ChatMessageView {
	views := make([]ChatMessageView, 0, len(messages))
	for _, msg := range messages {
		views = append(views, ChatMessageView{
			Sender: msg.Sender,
			IsUser: msg.Sender == models.ChatSenderUser,
			HTML:   LinkifyMessage(msg.Text),
		})
	}
	return views
}

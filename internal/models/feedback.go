package models

// Criterion identifies one assessment criterion: its wire key in the backend
// payload and the label shown to the user.
type Criterion struct {
	Key   string
	Label string
}

// CriteriaFor returns the assessment criteria set for a practice type. The
// two flows share lexical resource and grammar but differ in the first two
// criteria, mirroring the IELTS band descriptors.
func CriteriaFor(p PracticeType) []Criterion {
	if p == PracticeSpeaking {
		return []Criterion{
			{Key: "fluencyAndCoherence", Label: "Fluency & Coherence"},
			{Key: "pronunciation", Label: "Pronunciation"},
			{Key: "lexicalResource", Label: "Lexical Resource"},
			{Key: "grammaticalRangeAndAccuracy", Label: "Grammatical Range & Accuracy"},
		}
	}
	return []Criterion{
		{Key: "taskAchievement", Label: "Task Achievement"},
		{Key: "coherenceAndCohesion", Label: "Coherence & Cohesion"},
		{Key: "lexicalResource", Label: "Lexical Resource"},
		{Key: "grammaticalRangeAndAccuracy", Label: "Grammatical Range & Accuracy"},
	}
}

// CriterionScore is one scored criterion in a normalized feedback result.
// Score is nil when the backend omitted the criterion.
type CriterionScore struct {
	Key   string
	Label string
	Score *float64
}

// MistakeList pairs itemized mistakes with their corrections. The two slices
// are index-aligned; the backend does not guarantee equal lengths, so
// renderers must tolerate a missing correction.
type MistakeList struct {
	Mistakes    []string `json:"mistake"`
	Corrections []string `json:"correct"`
}

// FeedbackResult is the normalized assessment returned by the backend for
// one submission. Fields are mapped 1:1 from the response envelope with no
// validation against score ranges; absent fields stay zero-valued and the
// renderer shows a neutral placeholder for them.
type FeedbackResult struct {
	PracticeType PracticeType

	OverallBandScore *float64
	Criteria         []CriterionScore

	Feedback    string
	Suggestions string
	Motivation  string

	// AIIndicator is a percentage-like free-text string, e.g. "12%".
	AIIndicator string

	VocabularyErrors string
	SentenceErrors   string
	GrammarErrors    string

	ImprovedVersion  string
	WordMistakes     MistakeList
	SentenceMistakes MistakeList

	// Speaking results carry corrections as free text rather than lists,
	// plus an echo of the question and the submitted transcript.
	CorrectedWords     string
	CorrectedSentences string
	Topic              string
	Content            string
}

// ProgressSummary is the per-module progress strip data returned by the
// backend progress endpoint.
type ProgressSummary struct {
	AverageScore     float64 `json:"averageScore"`
	Level            string  `json:"level"`
	TotalSubmissions int     `json:"totalSubmissions"`
}

package handlers

import (
	"fmt"
	"html/template"
	"regexp"
	"strconv"
	"strings"
)

// Band thresholds for coloring scores. Band boundaries follow the coaching
// product's display convention rather than any official rubric.
const (
	StrongScoreThreshold   = 7.0
	ModerateScoreThreshold = 5.0

	// AILikelyThreshold is the percentage above which a response is flagged
	// as probably AI-written.
	AILikelyThreshold = 10.0
)

// ScoreBand classifies a criterion or overall score for display: "strong",
// "moderate" or "weak". A nil score is "none" and renders as N/A.
func ScoreBand(score *float64) string {
	switch {
	case score == nil:
		return "none"
	case *score >= StrongScoreThreshold:
		return "strong"
	case *score >= ModerateScoreThreshold:
		return "moderate"
	default:
		return "weak"
	}
}

// FormatScore renders a score value, or "N/A" when absent.
func FormatScore(score *float64) string {
	if score == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*score, 'f', -1, 64)
}

// ParseAIUsage extracts the first number from a percentage-like string such
// as "12%" or "around 3.5 percent". Unparseable input counts as zero.
func ParseAIUsage(indicator string) float64 {
	match := aiUsageRegex.FindString(indicator)
	if match == "" {
		return 0
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return value
}

// AiLikely reports whether the AI-usage indicator crosses the flagging
// threshold.
func AiLikely(indicator string) bool {
	return ParseAIUsage(indicator) > AILikelyThreshold
}

// ProgressPercent renders an average band score as a percentage with one
// decimal, e.g. 6.5 becomes "65.0%".
func ProgressPercent(averageScore float64) string {
	return fmt.Sprintf("%.1f%%", averageScore*10)
}

var (
	aiUsageRegex = regexp.MustCompile(`\d+(?:\.\d+)?`)
	urlRegex     = regexp.MustCompile(`https?://[^\s]+`)
)

// LinkifyMessage converts URLs in a chat message into anchor tags, escaping
// everything else. Trailing ')', '.' and ',' are stripped from the href and
// kept as plain text, since backends tend to end sentences right after a
// link.
func LinkifyMessage(text string) template.HTML {
	var b strings.Builder

	last := 0
	for _, loc := range urlRegex.FindAllStringIndex(text, -1) {
		b.WriteString(template.HTMLEscapeString(text[last:loc[0]]))

		url := text[loc[0]:loc[1]]
		trailing := ""
		for strings.HasSuffix(url, ")") || strings.HasSuffix(url, ".") || strings.HasSuffix(url, ",") {
			trailing = url[len(url)-1:] + trailing
			url = url[:len(url)-1]
		}

		b.WriteString(`<a href="`)
		b.WriteString(template.HTMLEscapeString(url))
		b.WriteString(`" target="_blank" rel="noopener noreferrer">`)
		b.WriteString(template.HTMLEscapeString(url))
		b.WriteString(`</a>`)
		b.WriteString(template.HTMLEscapeString(trailing))

		last = loc[1]
	}
	b.WriteString(template.HTMLEscapeString(text[last:]))

	return template.HTML(b.String())
}

package services

import (
	"strconv"
	"strings"

	"github.com/111KartoFan111/AiAssistant/models"
)

// ParsedEvaluation is the structured form of a model evaluation response.
type ParsedEvaluation struct {
	Score        int
	Feedback     string
	Strengths    []string
	Improvements []string
	QuestionType models.QuestionType
}

// Fallback values used when the model response misses a section. The score
// defaults to a mid-range 7 so a formatting quirk never reads as a failed
// answer.
const (
	defaultScore    = 7
	defaultFeedback = "Good answer overall."
)

var defaultListItems = []string{"Continue practicing"}

// ParseEvaluation extracts a structured evaluation from the model's
// line-oriented response:
//
//	Score: X/10
//	Feedback: [one or two sentences]
//	Strengths:
//	- [point]
//	Improvements:
//	- [point]
//
// Parsing is best effort and never fails. Each missing or malformed section
// falls back to a neutral default; the second return value reports whether
// any fallback was used, so callers can log the degradation.
func ParseEvaluation(text string, questionType models.QuestionType) (ParsedEvaluation, bool) {
	lines := strings.Split(text, "\n")

	score, scoreOK := extractScore(lines)
	feedback, feedbackOK := extractSection(lines, "Feedback:")
	strengths, strengthsOK := extractList(lines, "Strengths:")
	improvements, improvementsOK := extractList(lines, "Improvements:")

	eval := ParsedEvaluation{
		Score:        score,
		Feedback:     feedback,
		Strengths:    strengths,
		Improvements: improvements,
		QuestionType: questionType,
	}
	degraded := !scoreOK || !feedbackOK || !strengthsOK || !improvementsOK
	return eval, degraded
}

func extractScore(lines []string) (int, bool) {
	for _, line := range lines {
		if !strings.HasPrefix(line, "Score:") {
			continue
		}
		raw := strings.TrimPrefix(line, "Score:")
		raw = strings.TrimSpace(strings.Replace(raw, "/10", "", 1))
		score, err := strconv.Atoi(raw)
		if err != nil {
			return defaultScore, false
		}
		if score < 0 {
			score = 0
		}
		if score > 10 {
			score = 10
		}
		return score, true
	}
	return defaultScore, false
}

func extractSection(lines []string, prefix string) (string, bool) {
	for _, line := range lines {
		if strings.HasPrefix(line, prefix) {
			value := strings.TrimSpace(strings.TrimPrefix(line, prefix))
			if value == "" {
				return defaultFeedback, false
			}
			return value, true
		}
	}
	return defaultFeedback, false
}

// extractList collects "-" bullet lines following the section header until
// the first non-bullet, non-blank line.
func extractList(lines []string, prefix string) ([]string, bool) {
	var items []string
	inSection := false
	for _, line := range lines {
		if strings.HasPrefix(line, prefix) {
			inSection = true
			continue
		}
		if !inSection {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "-") {
			if item := strings.TrimSpace(strings.TrimPrefix(trimmed, "-")); item != "" {
				items = append(items, item)
			}
		} else if trimmed != "" {
			break
		}
	}
	if len(items) == 0 {
		return append([]string(nil), defaultListItems...), false
	}
	return items, true
}

package services

import (
	"testing"

	"github.com/111KartoFan111/AiAssistant/models"
	"github.com/stretchr/testify/assert"
)

func TestParseEvaluationWellFormed(t *testing.T) {
	text := "Score: 8/10\n" +
		"Feedback: Strong answer with concrete examples.\n" +
		"Strengths:\n" +
		"- Clear structure\n" +
		"- Relevant experience\n" +
		"Improvements:\n" +
		"- Quantify the impact\n"

	eval, degraded := ParseEvaluation(text, models.QuestionTypeTechnical)

	assert.False(t, degraded)
	assert.Equal(t, 8, eval.Score)
	assert.Equal(t, "Strong answer with concrete examples.", eval.Feedback)
	assert.Equal(t, []string{"Clear structure", "Relevant experience"}, eval.Strengths)
	assert.Equal(t, []string{"Quantify the impact"}, eval.Improvements)
	assert.Equal(t, models.QuestionTypeTechnical, eval.QuestionType)
}

func TestParseEvaluationDefaults(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty response", ""},
		{"free-form prose", "The candidate did reasonably well and should keep practicing."},
		{"malformed score", "Score: excellent\nFeedback: Nice.\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval, degraded := ParseEvaluation(tt.text, models.QuestionTypeBackground)

			assert.True(t, degraded)
			assert.GreaterOrEqual(t, eval.Score, 0)
			assert.LessOrEqual(t, eval.Score, 10)
			assert.NotEmpty(t, eval.Feedback)
			assert.NotEmpty(t, eval.Strengths)
			assert.NotEmpty(t, eval.Improvements)
		})
	}
}

func TestParseEvaluationPartialSections(t *testing.T) {
	text := "Score: 5\nFeedback: Adequate.\n"

	eval, degraded := ParseEvaluation(text, models.QuestionTypeSituational)

	assert.True(t, degraded)
	assert.Equal(t, 5, eval.Score)
	assert.Equal(t, "Adequate.", eval.Feedback)
	assert.Equal(t, []string{"Continue practicing"}, eval.Strengths)
	assert.Equal(t, []string{"Continue practicing"}, eval.Improvements)
}

func TestParseEvaluationScoreClamped(t *testing.T) {
	eval, degraded := ParseEvaluation("Score: 15/10\nFeedback: Over the top.\nStrengths:\n- A\nImprovements:\n- B\n", models.QuestionTypeTechnical)
	assert.False(t, degraded)
	assert.Equal(t, 10, eval.Score)

	eval, _ = ParseEvaluation("Score: -3/10\n", models.QuestionTypeTechnical)
	assert.Equal(t, 0, eval.Score)
}

func TestParseEvaluationListStopsAtNextSection(t *testing.T) {
	text := "Strengths:\n" +
		"- First point\n" +
		"\n" +
		"- Second point\n" +
		"Improvements:\n" +
		"- Only improvement\n"

	eval, _ := ParseEvaluation(text, models.QuestionTypeBackground)

	assert.Equal(t, []string{"First point", "Second point"}, eval.Strengths)
	assert.Equal(t, []string{"Only improvement"}, eval.Improvements)
}

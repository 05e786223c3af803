package services

import "github.com/111KartoFan111/AiAssistant/models"

// TotalQuestions is the fixed length of every interview: five background
// questions, eight situational, then seven technical.
const TotalQuestions = 20

const (
	backgroundEnd  = 5
	situationalEnd = 13
)

// QuestionTypeFor returns the question category for a 1-based question
// number, or ErrQuestionOutOfRange outside 1..TotalQuestions.
func QuestionTypeFor(questionNumber int) (models.QuestionType, error) {
	switch {
	case questionNumber < 1 || questionNumber > TotalQuestions:
		return "", ErrQuestionOutOfRange
	case questionNumber <= backgroundEnd:
		return models.QuestionTypeBackground, nil
	case questionNumber <= situationalEnd:
		return models.QuestionTypeSituational, nil
	default:
		return models.QuestionTypeTechnical, nil
	}
}

// QuestionCountFor returns how many of the interview's questions belong to
// the given category.
func QuestionCountFor(questionType models.QuestionType) int {
	switch questionType {
	case models.QuestionTypeBackground:
		return backgroundEnd
	case models.QuestionTypeSituational:
		return situationalEnd - backgroundEnd
	case models.QuestionTypeTechnical:
		return TotalQuestions - situationalEnd
	default:
		return 0
	}
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/111KartoFan111/AiAssistant/models"

	"google.golang.org/genai"
)

// QuestionGenerator produces interviewer questions. Implementations may fail;
// callers wrap errors in GenerationError and leave the session untouched.
type QuestionGenerator interface {
	GenerateInitialQuestion(ctx context.Context, position, jobDescription, language string, questionType models.QuestionType) (string, error)
	GenerateNextQuestion(ctx context.Context, history []models.ChatMessage, language string, questionType models.QuestionType, questionNumber, totalQuestions int) (string, error)
}

// AnswerScorer evaluates one candidate answer and returns the model's raw
// text response for ParseEvaluation to interpret.
type AnswerScorer interface {
	ScoreAnswer(ctx context.Context, question, answer, position string, questionType models.QuestionType) (string, error)
}

// GeminiService handles all Gemini AI operations
type GeminiService struct {
	genaiClient *genai.Client
	model       string
}

func NewGeminiService(apiKey, model string) *GeminiService {
	genaiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		slog.Error("Failed to create genai client", "error", err)
		return nil
	}

	return &GeminiService{
		genaiClient: genaiClient,
		model:       model,
	}
}

// GenerateInitialQuestion asks the model for the opening interview question.
func (g *GeminiService) GenerateInitialQuestion(ctx context.Context, position, jobDescription, language string, questionType models.QuestionType) (string, error) {
	if g.genaiClient == nil {
		return "", fmt.Errorf("genai client not initialized")
	}

	prompt := fmt.Sprintf(
		"%s Act as a friendly but professional interviewer. I am applying for the position of %s. "+
			"Here is the job description: '%s'. "+
			"This is question 1 out of %d. %s "+
			"Please ask me the first question to start the interview. Just provide the question text, no preamble.",
		languageInstruction(language), position, jobDescription, TotalQuestions, questionTypeInstruction(questionType),
	)

	result, err := g.genaiClient.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(prompt),
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate initial question: %w", err)
	}

	question := strings.TrimSpace(result.Text())
	slog.Info("Generated initial question", "position", position, "question_type", questionType, "length", len(question))
	return question, nil
}

// GenerateNextQuestion asks the model for a follow-up question given the
// transcript so far.
func (g *GeminiService) GenerateNextQuestion(ctx context.Context, history []models.ChatMessage, language string, questionType models.QuestionType, questionNumber, totalQuestions int) (string, error) {
	if g.genaiClient == nil {
		return "", fmt.Errorf("genai client not initialized")
	}

	contents := buildConversationContents(history)

	followUpPrompt := fmt.Sprintf(
		"%s This is question %d out of %d questions. %s "+
			"Continue the interview by asking a relevant question based on my previous answer. "+
			"Keep your questions professional and relevant to the position. Just provide the question, no preamble.",
		languageInstruction(language), questionNumber, totalQuestions, questionTypeInstruction(questionType),
	)
	contents = append(contents, genai.NewContentFromText(followUpPrompt, genai.RoleUser))

	result, err := g.genaiClient.Models.GenerateContent(
		ctx,
		g.model,
		contents,
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate next question: %w", err)
	}

	question := strings.TrimSpace(result.Text())
	slog.Info("Generated next question", "question_number", questionNumber, "question_type", questionType, "length", len(question))
	return question, nil
}

// ScoreAnswer asks the model to evaluate one answer. The response follows a
// line-oriented format that ParseEvaluation understands.
func (g *GeminiService) ScoreAnswer(ctx context.Context, question, answer, position string, questionType models.QuestionType) (string, error) {
	if g.genaiClient == nil {
		return "", fmt.Errorf("genai client not initialized")
	}

	prompt := fmt.Sprintf(
		"You are an expert interviewer evaluating a candidate's answer.\n\n"+
			"Position: %s\n"+
			"Question Type: %s\n"+
			"Question: %s\n"+
			"Candidate's Answer: %s\n\n"+
			"Please evaluate this answer and provide:\n"+
			"1. Score (0-10)\n"+
			"2. Overall Feedback (2-3 sentences)\n"+
			"3. Strengths (list 2-3 points)\n"+
			"4. Areas for Improvement (list 2-3 points)\n\n"+
			"Format your response as:\n"+
			"Score: X/10\n"+
			"Feedback: [your feedback]\n"+
			"Strengths:\n- [strength 1]\n- [strength 2]\n"+
			"Improvements:\n- [improvement 1]\n- [improvement 2]",
		position, questionType, question, answer,
	)

	result, err := g.genaiClient.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(prompt),
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("failed to evaluate answer: %w", err)
	}

	return result.Text(), nil
}

func buildConversationContents(history []models.ChatMessage) []*genai.Content {
	var contents []*genai.Content
	for _, msg := range history {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		if msg.Role == models.RoleInterviewer {
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		} else {
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	return contents
}

func languageInstruction(language string) string {
	switch language {
	case "ru":
		return "IMPORTANT: Respond ONLY in Russian language."
	case "kz":
		return "IMPORTANT: Respond ONLY in Kazakh language."
	default:
		return "IMPORTANT: Respond ONLY in English language."
	}
}

func questionTypeInstruction(questionType models.QuestionType) string {
	switch questionType {
	case models.QuestionTypeBackground:
		return "Ask a BACKGROUND question - about their experience, education, career history, or personal introduction. " +
			"Example topics: 'Tell me about yourself', 'Describe your work experience', 'Why are you interested in this role?'"
	case models.QuestionTypeSituational:
		return "Ask a SITUATIONAL question - present a hypothetical scenario and ask how they would handle it. " +
			"Example topics: 'How would you handle a conflict with a colleague?', 'What would you do if you missed a deadline?', " +
			"'Describe how you would approach a challenging project.'"
	case models.QuestionTypeTechnical:
		return "Ask a TECHNICAL question - about specific skills, tools, technologies, or domain knowledge required for the position. " +
			"Example topics: programming languages, frameworks, methodologies, industry-specific knowledge, problem-solving approaches."
	default:
		return ""
	}
}

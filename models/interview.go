package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// InterviewStatus is the lifecycle state of an interview session.
type InterviewStatus string

const (
	StatusInProgress InterviewStatus = "in_progress"
	StatusCompleted  InterviewStatus = "completed"
)

// QuestionType is the curriculum category of an interviewer question.
type QuestionType string

const (
	QuestionTypeBackground  QuestionType = "background"
	QuestionTypeSituational QuestionType = "situational"
	QuestionTypeTechnical   QuestionType = "technical"
)

// ParseQuestionType validates a stored question type value. Unknown values
// are rejected rather than defaulted so a bad row surfaces immediately.
func ParseQuestionType(s string) (QuestionType, error) {
	switch QuestionType(s) {
	case QuestionTypeBackground, QuestionTypeSituational, QuestionTypeTechnical:
		return QuestionType(s), nil
	}
	return "", fmt.Errorf("unknown question type: %q", s)
}

// SkillName returns the skill category a question type is scored under.
func (q QuestionType) SkillName() string {
	switch q {
	case QuestionTypeBackground:
		return "Communication & Experience"
	case QuestionTypeSituational:
		return "Problem Solving & Decision Making"
	case QuestionTypeTechnical:
		return "Technical Knowledge & Skills"
	}
	return string(q)
}

// InterviewSession records one end-to-end interview attempt by one user for one position
type InterviewSession struct {
	ID                    string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID                string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Position              string          `gorm:"size:255;not null" json:"position"`
	Company               string          `gorm:"size:255" json:"company,omitempty"`
	JobDescription        string          `gorm:"type:text" json:"job_description,omitempty"`
	Language              string          `gorm:"size:10;not null;default:'en'" json:"language"`
	Status                InterviewStatus `gorm:"size:20;not null;default:'in_progress';check:status IN ('in_progress', 'completed')" json:"status"`
	CurrentQuestionNumber int             `gorm:"not null;default:1" json:"current_question_number"`
	TotalQuestions        int             `gorm:"not null;default:20" json:"total_questions"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	DeletedAt             gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	User        User                  `gorm:"foreignKey:UserID" json:"-"`
	Messages    []ChatMessage         `gorm:"foreignKey:SessionID" json:"messages,omitempty"`
	Evaluations []InterviewEvaluation `gorm:"foreignKey:InterviewID" json:"evaluations,omitempty"`
}

// InterviewEvaluation is the AI assessment of one candidate answer.
// At most one exists per (interview, question number); rows are written
// once and never mutated afterwards.
type InterviewEvaluation struct {
	ID             string                      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	InterviewID    string                      `gorm:"type:uuid;not null;uniqueIndex:idx_eval_interview_question" json:"interview_id"`
	QuestionNumber int                         `gorm:"not null;uniqueIndex:idx_eval_interview_question" json:"question_number"`
	QuestionType   QuestionType                `gorm:"size:20;not null;check:question_type IN ('background', 'situational', 'technical')" json:"question_type"`
	Score          int                         `gorm:"not null;check:score >= 0 AND score <= 10" json:"score"`
	Feedback       string                      `gorm:"type:text;not null" json:"feedback"`
	Strengths      datatypes.JSONSlice[string] `json:"strengths"`
	Improvements   datatypes.JSONSlice[string] `json:"improvements"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`
	DeletedAt      gorm.DeletedAt              `gorm:"index" json:"-"`

	// Relationships
	Session InterviewSession `gorm:"foreignKey:InterviewID" json:"-"`
}

package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// MessageRole identifies who produced a turn in the interview transcript.
type MessageRole string

const (
	RoleCandidate   MessageRole = "candidate"
	RoleInterviewer MessageRole = "interviewer"
)

// ParseMessageRole validates a stored role value.
func ParseMessageRole(s string) (MessageRole, error) {
	switch MessageRole(s) {
	case RoleCandidate, RoleInterviewer:
		return MessageRole(s), nil
	}
	return "", fmt.Errorf("unknown message role: %q", s)
}

// ChatMessage is one turn of an interview: either a candidate answer or an
// interviewer question. Interviewer turns additionally carry the question
// number and its curriculum type. Rows are immutable once created and are
// ordered by Timestamp, with the insertion sequence breaking ties.
type ChatMessage struct {
	ID        string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	SessionID string      `gorm:"type:uuid;not null;index;uniqueIndex:idx_message_session_client" json:"session_id"`
	Role      MessageRole `gorm:"size:20;not null;check:role IN ('candidate', 'interviewer')" json:"role"`
	Content   string      `gorm:"type:text;not null" json:"content"`

	// Set on interviewer turns only.
	QuestionType   *QuestionType `gorm:"size:20" json:"question_type,omitempty"`
	QuestionNumber *int          `json:"question_number,omitempty"`

	// ClientMessageID is an optional caller-supplied idempotency token for
	// candidate turns; a retried submit with the same token upserts instead
	// of appending a duplicate answer.
	ClientMessageID *string `gorm:"size:64;uniqueIndex:idx_message_session_client" json:"client_message_id,omitempty"`

	// Timestamp is the ordering key in unix milliseconds. Sequence breaks
	// ties between turns written within the same millisecond.
	Timestamp int64  `gorm:"not null;index" json:"timestamp"`
	Sequence  uint64 `gorm:"autoIncrement;uniqueIndex" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Session InterviewSession `gorm:"foreignKey:SessionID" json:"-"`
}

// TableName returns the table name for the ChatMessage model
func (ChatMessage) TableName() string {
	return "chat_messages"
}

package model

import (
	"encoding/json"
	"time"
)

// Attempt is one immutable submission of an assessment by a student. The
// only field ever updated after creation is the manual Score/Comment pair;
// the submitted answers are never touched.
// swagger:model Attempt
type Attempt struct {
	UUIDBase
	AssessmentID uint            `gorm:"index:idx_attempt_student_assessment;type:bigint unsigned;not null" json:"assessmentId"`
	StudentID    uint            `gorm:"index:idx_attempt_student_assessment;type:bigint unsigned;not null" json:"studentId"`
	Student      *User           `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Answers      json.RawMessage `gorm:"type:json" json:"answers"`
	Score        *int            `json:"score"` // nil while ungraded
	Comment      string          `gorm:"type:text" json:"comment,omitempty"`
	SubmittedAt  time.Time       `gorm:"index;not null" json:"submittedAt"`
	TotalTime    *int            `json:"totalTime,omitempty"` // elapsed seconds
	MediaURL     string          `gorm:"size:512" json:"mediaUrl,omitempty"` // speaking/writing uploads
	MediaLength  *int            `json:"mediaLength,omitempty"`              // audio duration, seconds
}

func (Attempt) TableName() string {
	return "attempts"
}

// Completion states derived from a student's attempt history. Never stored.
const (
	CompletionNotStarted = "not_started"
	CompletionInProgress = "in_progress"
	CompletionCompleted  = "completed"
)

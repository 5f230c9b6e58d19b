package model

import (
	"encoding/json"
	"time"
)

// Assessment types as produced by the authoring frontend. "quiz" is a
// legacy alias for multiple-choice and is graded identically.
const (
	TypeMultipleChoice = "multiple-choice"
	TypeQuiz           = "quiz"
	TypeMatching       = "matching"
	TypeAssignment     = "assignment"
	TypeDragAndDrop    = "drag-and-drop"
	TypeChangeSequence = "change-sequence"
	TypeSpeaking       = "speaking"
	TypeWriting        = "writing"
	TypeWritingLong    = "writing-long"
)

// Drag-and-drop subtypes. The answer-key shape differs per subtype.
const (
	SubtypeSequence         = "sequence"
	SubtypeFillInBlank      = "fill-in-blank"
	SubtypeLongParagraph    = "long-paragraph-fill-in-blank"
	SubtypeImageFillInBlank = "image-fill-in-blank"
)

// swagger:model Assessment
type Assessment struct {
	BaseModel
	Title       string          `gorm:"size:255;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Type        string          `gorm:"size:50;not null" json:"type"`
	Questions   json.RawMessage `gorm:"type:json" json:"questions"` // ordered, shape depends on Type
	MaxAttempts *int            `json:"maxAttempts,omitempty"`      // nil means unlimited
	Quarter     string          `gorm:"size:2;index;default:'Q1'" json:"quarter"`
	Year        int             `gorm:"index" json:"year"`
	SubjectID   *uint           `gorm:"index;type:bigint unsigned" json:"subjectId,omitempty"`
	IsPublished bool            `gorm:"default:false" json:"isPublished"`
	PublishedAt *time.Time      `json:"publishedAt,omitempty"`
	CreatorID   uint            `gorm:"index;type:bigint unsigned" json:"creatorId"`
}

func (Assessment) TableName() string {
	return "assessments"
}

func ValidAssessmentType(t string) bool {
	switch t {
	case TypeMultipleChoice, TypeQuiz, TypeMatching, TypeAssignment,
		TypeDragAndDrop, TypeChangeSequence, TypeSpeaking, TypeWriting, TypeWritingLong:
		return true
	}
	return false
}

// ManuallyGraded reports whether submissions of this type are left for a
// teacher to score.
func ManuallyGraded(t string) bool {
	switch t {
	case TypeSpeaking, TypeWriting, TypeWritingLong:
		return true
	}
	return false
}

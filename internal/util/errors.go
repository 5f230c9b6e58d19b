package util

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email is already registered")
	ErrNicknameTaken      = errors.New("nickname is already taken")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrAttemptNotFound    = errors.New("attempt not found")
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrResourceNotFound   = errors.New("resource not found")
	ErrInvalidQuarter     = errors.New("quarter must be one of Q1, Q2, Q3, Q4")
	ErrInvalidScore       = errors.New("score must be an integer between 0 and 100")
	ErrAttemptsReferenced = errors.New("assessment still has attempts; delete with cascade to remove them")
)

// QuotaExceededError is returned when a student has used up all attempts
// for an assessment. The configured limit is part of the message shown to
// the caller.
type QuotaExceededError struct {
	Limit int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("maximum of %d attempts reached for this assessment", e.Limit)
}

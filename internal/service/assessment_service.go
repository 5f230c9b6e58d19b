package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"school_lms_backend/internal/grading"
	"school_lms_backend/internal/model"
	"school_lms_backend/internal/repository"
	"school_lms_backend/internal/util"
	"school_lms_backend/pkg/logger"
	"school_lms_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// AssessmentStore and AttemptStore are the persistence surfaces the
// orchestrator needs; the concrete repositories satisfy them.
type AssessmentStore interface {
	Create(a *model.Assessment) error
	FindByID(id uint) (*model.Assessment, error)
	Update(a *model.Assessment) error
	List(f repository.AssessmentFilter, page, limit int) ([]model.Assessment, int64, error)
	Delete(id uint, cascade bool) error
}

type AttemptStore interface {
	CreateWithQuota(attempt *model.Attempt, maxAttempts *int) error
	FindByID(id string) (*model.Attempt, error)
	CountByStudentAndAssessment(studentID, assessmentID uint) (int64, error)
	BestScore(studentID, assessmentID uint) (*int, error)
	Latest(studentID, assessmentID uint) (*model.Attempt, error)
	ListByStudent(studentID uint) ([]model.Attempt, error)
	ListByAssessment(assessmentID uint, page, limit int) ([]model.Attempt, int64, error)
	ApplyManualGrade(attemptID string, score int, comment string) error
	Delete(id string) error
}

// AssessmentService is the only entry point that creates attempts from
// live requests.
type AssessmentService struct {
	Assessments AssessmentStore
	Attempts    AttemptStore
	Quarter     *QuarterService
	Media       StorageProvider // attached speaking/writing uploads; may be nil

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewAssessmentService(assessments AssessmentStore, attempts AttemptStore, quarter *QuarterService, media StorageProvider) *AssessmentService {
	return &AssessmentService{
		Assessments: assessments,
		Attempts:    attempts,
		Quarter:     quarter,
		Media:       media,
		locks:       make(map[string]*sync.Mutex),
	}
}

// submitLock serializes submissions for one (student, assessment) pair.
// The transactional quota check in the repository is the hard guarantee;
// the lock keeps concurrent duplicates from racing to the database at all.
func (s *AssessmentService) submitLock(studentID, assessmentID uint) *sync.Mutex {
	key := fmt.Sprintf("%d:%d", studentID, assessmentID)
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

type SubmitRequest struct {
	AssessmentID   uint            `json:"assessmentId" binding:"required"`
	Answers        json.RawMessage `json:"answers" binding:"required"`
	ElapsedSeconds *float64        `json:"elapsedSeconds,omitempty"`
	// Score is honoured only for manual flows where the caller supplies a
	// pre-agreed score; it overrides the engine's result.
	Score       *int   `json:"score,omitempty"`
	MediaURL    string `json:"mediaUrl,omitempty"`
	MediaLength *int   `json:"mediaLength,omitempty"`
}

type SubmitResult struct {
	Attempt *model.Attempt `json:"attempt"`
	Score   *int           `json:"score"`
}

// Submit validates eligibility, grades the submission and appends it to
// the ledger. A submission either fully succeeds (attempt recorded, score
// known or pending) or fails with a specific reason; nothing partial is
// ever written.
func (s *AssessmentService) Submit(studentID uint, req SubmitRequest) (*SubmitResult, error) {
	assessment, err := s.Assessments.FindByID(req.AssessmentID)
	if err != nil {
		return nil, err
	}
	if !assessment.IsPublished {
		return nil, util.ErrAssessmentNotFound
	}

	lock := s.submitLock(studentID, req.AssessmentID)
	lock.Lock()
	defer lock.Unlock()

	if assessment.MaxAttempts != nil {
		count, err := s.Attempts.CountByStudentAndAssessment(studentID, req.AssessmentID)
		if err != nil {
			return nil, err
		}
		if count >= int64(*assessment.MaxAttempts) {
			monitoring.SubmissionCounter.WithLabelValues(assessment.Type, "rejected").Inc()
			return nil, &util.QuotaExceededError{Limit: *assessment.MaxAttempts}
		}
	}

	questions, err := grading.DecodeQuestions(assessment.Questions)
	if err != nil {
		return nil, err
	}
	score, err := grading.Grade(assessment.Type, questions, req.Answers)
	if err != nil {
		return nil, err
	}
	if req.Score != nil {
		if *req.Score < 0 || *req.Score > 100 {
			return nil, util.ErrInvalidScore
		}
		score = req.Score
	}

	attempt := &model.Attempt{
		AssessmentID: req.AssessmentID,
		StudentID:    studentID,
		Answers:      req.Answers,
		Score:        score,
		SubmittedAt:  time.Now(),
		MediaURL:     req.MediaURL,
		MediaLength:  req.MediaLength,
	}
	if req.ElapsedSeconds != nil {
		rounded := int(math.Round(*req.ElapsedSeconds))
		attempt.TotalTime = &rounded
	}

	if err := s.Attempts.CreateWithQuota(attempt, assessment.MaxAttempts); err != nil {
		var quota *util.QuotaExceededError
		if errors.As(err, &quota) {
			monitoring.SubmissionCounter.WithLabelValues(assessment.Type, "rejected").Inc()
		}
		return nil, err
	}

	outcome := "pending"
	if score != nil {
		outcome = "graded"
	}
	monitoring.SubmissionCounter.WithLabelValues(assessment.Type, outcome).Inc()

	logger.Log.Info("attempt recorded",
		zap.Uint("studentId", studentID),
		zap.Uint("assessmentId", req.AssessmentID),
		zap.Bool("graded", score != nil))
	return &SubmitResult{Attempt: attempt, Score: score}, nil
}

// GradeManually attaches a teacher's score to an existing attempt. It
// never creates a new attempt and never changes the attempt count.
func (s *AssessmentService) GradeManually(attemptID string, score int, comment string) (*model.Attempt, error) {
	if score < 0 || score > 100 {
		return nil, util.ErrInvalidScore
	}
	if err := s.Attempts.ApplyManualGrade(attemptID, score, comment); err != nil {
		return nil, err
	}
	return s.Attempts.FindByID(attemptID)
}

// ProgressEntry is one row of a student's progress view, derived by
// folding over the attempt ledger. Nothing here is stored.
type ProgressEntry struct {
	AssessmentID uint      `json:"assessmentId"`
	Status       string    `json:"status"`
	Attempts     int       `json:"attempts"`
	BestScore    *int      `json:"bestScore"`
	LastAttempt  time.Time `json:"lastAttempt"`
}

// StudentProgress derives per-assessment completion state: completed once
// any attempt is graded, in progress while attempts exist ungraded. A
// later ungraded resubmission cannot revert a completed assessment because
// the graded attempt stays in the ledger.
func (s *AssessmentService) StudentProgress(studentID uint) ([]ProgressEntry, error) {
	attempts, err := s.Attempts.ListByStudent(studentID)
	if err != nil {
		return nil, err
	}

	byAssessment := make(map[uint]*ProgressEntry)
	order := make([]uint, 0)
	for _, a := range attempts {
		entry, ok := byAssessment[a.AssessmentID]
		if !ok {
			entry = &ProgressEntry{AssessmentID: a.AssessmentID, Status: model.CompletionInProgress}
			byAssessment[a.AssessmentID] = entry
			order = append(order, a.AssessmentID)
		}
		entry.Attempts++
		if a.SubmittedAt.After(entry.LastAttempt) {
			entry.LastAttempt = a.SubmittedAt
		}
		if a.Score != nil {
			entry.Status = model.CompletionCompleted
			if entry.BestScore == nil || *a.Score > *entry.BestScore {
				entry.BestScore = a.Score
			}
		}
	}

	result := make([]ProgressEntry, 0, len(order))
	for _, id := range order {
		result = append(result, *byAssessment[id])
	}
	return result, nil
}

// AssessmentStatus reports a single (student, assessment) pair the way the
// progress dashboard wants it, including remaining attempts.
type AssessmentStatus struct {
	AssessmentID      uint           `json:"assessmentId"`
	Status            string         `json:"status"`
	Attempts          int64          `json:"attempts"`
	RemainingAttempts *int           `json:"remainingAttempts,omitempty"` // nil means unlimited
	BestScore         *int           `json:"bestScore"`
	Latest            *model.Attempt `json:"latest,omitempty"`
}

func (s *AssessmentService) StatusFor(studentID, assessmentID uint) (*AssessmentStatus, error) {
	assessment, err := s.Assessments.FindByID(assessmentID)
	if err != nil {
		return nil, err
	}

	count, err := s.Attempts.CountByStudentAndAssessment(studentID, assessmentID)
	if err != nil {
		return nil, err
	}
	best, err := s.Attempts.BestScore(studentID, assessmentID)
	if err != nil {
		return nil, err
	}
	latest, err := s.Attempts.Latest(studentID, assessmentID)
	if err != nil {
		return nil, err
	}

	status := model.CompletionNotStarted
	if count > 0 {
		status = model.CompletionInProgress
	}
	if best != nil {
		status = model.CompletionCompleted
	}

	result := &AssessmentStatus{
		AssessmentID: assessmentID,
		Status:       status,
		Attempts:     count,
		BestScore:    best,
		Latest:       latest,
	}
	if assessment.MaxAttempts != nil {
		remaining := *assessment.MaxAttempts - int(count)
		if remaining < 0 {
			remaining = 0
		}
		result.RemainingAttempts = &remaining
	}
	return result, nil
}

type AssessmentRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Type        string          `json:"type" binding:"required"`
	Questions   json.RawMessage `json:"questions"`
	MaxAttempts *int            `json:"maxAttempts"`
	Quarter     string          `json:"quarter"`
	Year        int             `json:"year"`
	SubjectID   *uint           `json:"subjectId"`
}

func (s *AssessmentService) CreateAssessment(creatorID uint, req AssessmentRequest) (*model.Assessment, error) {
	if !model.ValidAssessmentType(req.Type) {
		return nil, fmt.Errorf("unknown assessment type %q", req.Type)
	}
	if req.MaxAttempts != nil && *req.MaxAttempts <= 0 {
		return nil, fmt.Errorf("maxAttempts must be positive")
	}
	quarter := req.Quarter
	if quarter == "" {
		quarter = model.DefaultQuarter
	}
	if !model.ValidQuarter(quarter) {
		return nil, util.ErrInvalidQuarter
	}

	a := &model.Assessment{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Questions:   req.Questions,
		MaxAttempts: req.MaxAttempts,
		Quarter:     quarter,
		Year:        req.Year,
		SubjectID:   req.SubjectID,
		CreatorID:   creatorID,
	}
	if err := s.Assessments.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateAssessment edits authoring metadata. Once attempts reference the
// assessment the questions and type are frozen; only metadata may change.
func (s *AssessmentService) UpdateAssessment(id uint, req AssessmentRequest) (*model.Assessment, error) {
	a, err := s.Assessments.FindByID(id)
	if err != nil {
		return nil, err
	}

	_, count, err := s.Attempts.ListByAssessment(id, 1, 1)
	if err != nil {
		return nil, err
	}
	if count > 0 && (req.Type != a.Type || string(req.Questions) != string(a.Questions)) {
		return nil, util.ErrAttemptsReferenced
	}

	if req.MaxAttempts != nil && *req.MaxAttempts <= 0 {
		return nil, fmt.Errorf("maxAttempts must be positive")
	}
	if req.Quarter != "" && !model.ValidQuarter(req.Quarter) {
		return nil, util.ErrInvalidQuarter
	}

	a.Title = req.Title
	a.Description = req.Description
	a.Type = req.Type
	a.Questions = req.Questions
	a.MaxAttempts = req.MaxAttempts
	if req.Quarter != "" {
		a.Quarter = req.Quarter
	}
	a.Year = req.Year
	a.SubjectID = req.SubjectID
	if err := s.Assessments.Update(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) PublishAssessment(id uint, publish bool) (*model.Assessment, error) {
	a, err := s.Assessments.FindByID(id)
	if err != nil {
		return nil, err
	}
	a.IsPublished = publish
	if publish && a.PublishedAt == nil {
		now := time.Now()
		a.PublishedAt = &now
	}
	if err := s.Assessments.Update(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) GetAssessment(id uint) (*model.Assessment, error) {
	return s.Assessments.FindByID(id)
}

// ListForStudent returns published assessments visible under the active
// quarter for the student's year.
func (s *AssessmentService) ListForStudent(ctx context.Context, year, page, limit int) ([]model.Assessment, int64, error) {
	quarter, err := s.Quarter.GetActive(ctx)
	if err != nil {
		return nil, 0, err
	}
	published := true
	return s.Assessments.List(repository.AssessmentFilter{
		Quarter:   quarter,
		Year:      year,
		Published: &published,
	}, page, limit)
}

func (s *AssessmentService) ListForTeacher(f repository.AssessmentFilter, page, limit int) ([]model.Assessment, int64, error) {
	return s.Assessments.List(f, page, limit)
}

// DeleteAssessment removes an assessment. With cascade set, its attempts
// and their uploaded media go too; without it the delete is refused while
// attempts exist.
func (s *AssessmentService) DeleteAssessment(ctx context.Context, id uint, cascade bool) error {
	if cascade && s.Media != nil {
		attempts, _, err := s.Attempts.ListByAssessment(id, 1, 10000)
		if err != nil {
			return err
		}
		for _, a := range attempts {
			if a.MediaURL == "" {
				continue
			}
			if err := s.Media.Delete(ctx, objectNameFromURL(a.MediaURL)); err != nil {
				logger.Log.Warn("failed to remove attempt media",
					zap.String("attemptId", a.ID), zap.Error(err))
			}
		}
	}
	return s.Assessments.Delete(id, cascade)
}

// DeleteAttempt is the explicit administrative deletion path; attached
// media is removed with the record.
func (s *AssessmentService) DeleteAttempt(ctx context.Context, attemptID string) error {
	attempt, err := s.Attempts.FindByID(attemptID)
	if err != nil {
		return err
	}
	if attempt.MediaURL != "" && s.Media != nil {
		if err := s.Media.Delete(ctx, objectNameFromURL(attempt.MediaURL)); err != nil {
			logger.Log.Warn("failed to remove attempt media",
				zap.String("attemptId", attemptID), zap.Error(err))
		}
	}
	return s.Attempts.Delete(attemptID)
}

func (s *AssessmentService) AttemptsForAssessment(assessmentID uint, page, limit int) ([]model.Attempt, int64, error) {
	return s.Attempts.ListByAssessment(assessmentID, page, limit)
}

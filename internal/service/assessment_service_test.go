package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"school_lms_backend/internal/model"
	"school_lms_backend/internal/repository"
	"school_lms_backend/internal/util"
)

type fakeAssessmentStore struct {
	mu    sync.Mutex
	items map[uint]*model.Assessment
}

func newFakeAssessmentStore(items ...*model.Assessment) *fakeAssessmentStore {
	s := &fakeAssessmentStore{items: make(map[uint]*model.Assessment)}
	for _, a := range items {
		s.items[a.ID] = a
	}
	return s
}

func (s *fakeAssessmentStore) Create(a *model.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = uint(len(s.items) + 1)
	s.items[a.ID] = a
	return nil
}

func (s *fakeAssessmentStore) FindByID(id uint) (*model.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return nil, util.ErrAssessmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (s *fakeAssessmentStore) Update(a *model.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[a.ID]; !ok {
		return util.ErrAssessmentNotFound
	}
	s.items[a.ID] = a
	return nil
}

func (s *fakeAssessmentStore) List(f repository.AssessmentFilter, page, limit int) ([]model.Assessment, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Assessment
	for _, a := range s.items {
		if f.Published != nil && a.IsPublished != *f.Published {
			continue
		}
		if f.Quarter != "" && a.Quarter != f.Quarter {
			continue
		}
		if f.Year != 0 && a.Year != f.Year {
			continue
		}
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (s *fakeAssessmentStore) Delete(id uint, cascade bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

type fakeAttemptStore struct {
	mu       sync.Mutex
	attempts []model.Attempt
	nextID   int
}

func (s *fakeAttemptStore) CreateWithQuota(attempt *model.Attempt, maxAttempts *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if maxAttempts != nil {
		var count int
		for _, a := range s.attempts {
			if a.StudentID == attempt.StudentID && a.AssessmentID == attempt.AssessmentID {
				count++
			}
		}
		if count >= *maxAttempts {
			return &util.QuotaExceededError{Limit: *maxAttempts}
		}
	}
	s.nextID++
	attempt.ID = fmt.Sprintf("attempt-%d", s.nextID)
	s.attempts = append(s.attempts, *attempt)
	return nil
}

func (s *fakeAttemptStore) FindByID(id string) (*model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.attempts {
		if s.attempts[i].ID == id {
			copied := s.attempts[i]
			return &copied, nil
		}
	}
	return nil, util.ErrAttemptNotFound
}

func (s *fakeAttemptStore) CountByStudentAndAssessment(studentID, assessmentID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, a := range s.attempts {
		if a.StudentID == studentID && a.AssessmentID == assessmentID {
			count++
		}
	}
	return count, nil
}

func (s *fakeAttemptStore) BestScore(studentID, assessmentID uint) (*int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *int
	for _, a := range s.attempts {
		if a.StudentID != studentID || a.AssessmentID != assessmentID || a.Score == nil {
			continue
		}
		if best == nil || *a.Score > *best {
			v := *a.Score
			best = &v
		}
	}
	return best, nil
}

func (s *fakeAttemptStore) Latest(studentID, assessmentID uint) (*model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *model.Attempt
	for i := range s.attempts {
		a := &s.attempts[i]
		if a.StudentID != studentID || a.AssessmentID != assessmentID {
			continue
		}
		if latest == nil || a.SubmittedAt.After(latest.SubmittedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (s *fakeAttemptStore) ListByStudent(studentID uint) ([]model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Attempt
	for _, a := range s.attempts {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeAttemptStore) ListByAssessment(assessmentID uint, page, limit int) ([]model.Attempt, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Attempt
	for _, a := range s.attempts {
		if a.AssessmentID == assessmentID {
			out = append(out, a)
		}
	}
	return out, int64(len(out)), nil
}

func (s *fakeAttemptStore) ApplyManualGrade(attemptID string, score int, comment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.attempts {
		if s.attempts[i].ID == attemptID {
			v := score
			s.attempts[i].Score = &v
			s.attempts[i].Comment = comment
			return nil
		}
	}
	return util.ErrAttemptNotFound
}

func (s *fakeAttemptStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.attempts {
		if s.attempts[i].ID == id {
			s.attempts = append(s.attempts[:i], s.attempts[i+1:]...)
			return nil
		}
	}
	return util.ErrAttemptNotFound
}

func intPtr(v int) *int { return &v }

func multipleChoiceAssessment(id uint, maxAttempts *int) *model.Assessment {
	questions := json.RawMessage(`[
		{"prompt": "q1", "correctAnswerIndex": 1},
		{"prompt": "q2", "correctAnswerIndex": 0},
		{"prompt": "q3", "correctAnswerIndex": 2},
		{"prompt": "q4", "correctAnswerIndex": 3}
	]`)
	a := &model.Assessment{
		Title:       "fractions",
		Type:        model.TypeMultipleChoice,
		Questions:   questions,
		MaxAttempts: maxAttempts,
		Quarter:     "Q1",
		Year:        4,
		IsPublished: true,
	}
	a.ID = id
	return a
}

func newTestService(assessments ...*model.Assessment) (*AssessmentService, *fakeAttemptStore) {
	attempts := &fakeAttemptStore{}
	svc := NewAssessmentService(newFakeAssessmentStore(assessments...), attempts, nil, nil)
	return svc, attempts
}

func TestSubmitGradesMultipleChoice(t *testing.T) {
	svc, attempts := newTestService(multipleChoiceAssessment(1, nil))

	result, err := svc.Submit(7, SubmitRequest{
		AssessmentID: 1,
		Answers:      json.RawMessage(`[1, 0, 2, 0]`),
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Score == nil || *result.Score != 75 {
		t.Fatalf("score = %v, want 75", result.Score)
	}
	if len(attempts.attempts) != 1 {
		t.Fatalf("attempts recorded = %d, want 1", len(attempts.attempts))
	}
	if attempts.attempts[0].Score == nil || *attempts.attempts[0].Score != 75 {
		t.Errorf("stored score = %v, want 75", attempts.attempts[0].Score)
	}
}

func TestSubmitUnpublishedAssessmentNotFound(t *testing.T) {
	a := multipleChoiceAssessment(1, nil)
	a.IsPublished = false
	svc, attempts := newTestService(a)

	_, err := svc.Submit(7, SubmitRequest{AssessmentID: 1, Answers: json.RawMessage(`[1]`)})
	if !errors.Is(err, util.ErrAssessmentNotFound) {
		t.Fatalf("err = %v, want ErrAssessmentNotFound", err)
	}
	if len(attempts.attempts) != 0 {
		t.Errorf("attempt recorded for unpublished assessment")
	}
}

func TestSubmitUnknownAssessmentNotFound(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Submit(7, SubmitRequest{AssessmentID: 99, Answers: json.RawMessage(`[]`)})
	if !errors.Is(err, util.ErrAssessmentNotFound) {
		t.Fatalf("err = %v, want ErrAssessmentNotFound", err)
	}
}

func TestSubmitAttemptLimitUnderConcurrency(t *testing.T) {
	const limit = 3
	const workers = 12
	svc, attempts := newTestService(multipleChoiceAssessment(1, intPtr(limit)))

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Submit(7, SubmitRequest{
				AssessmentID: 1,
				Answers:      json.RawMessage(`[1, 0, 2, 3]`),
			})
		}(i)
	}
	wg.Wait()

	var ok, quota int
	for _, err := range errs {
		var qe *util.QuotaExceededError
		switch {
		case err == nil:
			ok++
		case errors.As(err, &qe):
			quota++
			if qe.Limit != limit {
				t.Errorf("quota error limit = %d, want %d", qe.Limit, limit)
			}
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != limit {
		t.Errorf("successful submissions = %d, want %d", ok, limit)
	}
	if quota != workers-limit {
		t.Errorf("rejected submissions = %d, want %d", quota, workers-limit)
	}
	if len(attempts.attempts) != limit {
		t.Errorf("recorded attempts = %d, want %d", len(attempts.attempts), limit)
	}
}

func TestSubmitManualTypeStaysUngraded(t *testing.T) {
	a := &model.Assessment{
		Title:       "oral exam",
		Type:        model.TypeSpeaking,
		IsPublished: true,
		Quarter:     "Q2",
	}
	a.ID = 1
	svc, attempts := newTestService(a)

	result, err := svc.Submit(7, SubmitRequest{AssessmentID: 1, Answers: json.RawMessage(`[]`), MediaURL: "/uploads/attempts/7/rec.mp3"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Score != nil {
		t.Fatalf("score = %v, want nil for a manually graded type", *result.Score)
	}
	if attempts.attempts[0].MediaURL == "" {
		t.Errorf("media URL not recorded")
	}
}

func TestSubmitScoreOverride(t *testing.T) {
	a := &model.Assessment{Title: "essay", Type: model.TypeWriting, IsPublished: true, Quarter: "Q1"}
	a.ID = 1
	svc, attempts := newTestService(a)

	result, err := svc.Submit(7, SubmitRequest{AssessmentID: 1, Answers: json.RawMessage(`[]`), Score: intPtr(88)})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Score == nil || *result.Score != 88 {
		t.Fatalf("score = %v, want 88", result.Score)
	}

	_, err = svc.Submit(7, SubmitRequest{AssessmentID: 1, Answers: json.RawMessage(`[]`), Score: intPtr(101)})
	if !errors.Is(err, util.ErrInvalidScore) {
		t.Fatalf("err = %v, want ErrInvalidScore", err)
	}
	if len(attempts.attempts) != 1 {
		t.Errorf("out-of-range override recorded an attempt")
	}
}

func TestSubmitRoundsElapsedSeconds(t *testing.T) {
	svc, attempts := newTestService(multipleChoiceAssessment(1, nil))

	elapsed := 41.5
	_, err := svc.Submit(7, SubmitRequest{
		AssessmentID:   1,
		Answers:        json.RawMessage(`[1, 0, 2, 3]`),
		ElapsedSeconds: &elapsed,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	got := attempts.attempts[0].TotalTime
	if got == nil || *got != 42 {
		t.Errorf("total time = %v, want 42", got)
	}
}

func TestManualGradeDoesNotConsumeAttempts(t *testing.T) {
	a := &model.Assessment{Title: "essay", Type: model.TypeWriting, IsPublished: true, Quarter: "Q1", MaxAttempts: intPtr(1)}
	a.ID = 1
	svc, attempts := newTestService(a)

	result, err := svc.Submit(7, SubmitRequest{AssessmentID: 1, Answers: json.RawMessage(`[]`)})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	graded, err := svc.GradeManually(result.Attempt.ID, 90, "well argued")
	if err != nil {
		t.Fatalf("GradeManually: %v", err)
	}
	if graded.Score == nil || *graded.Score != 90 {
		t.Fatalf("score = %v, want 90", graded.Score)
	}
	if graded.Comment != "well argued" {
		t.Errorf("comment = %q", graded.Comment)
	}

	count, _ := attempts.CountByStudentAndAssessment(7, 1)
	if count != 1 {
		t.Errorf("attempt count = %d after manual grade, want 1", count)
	}

	if _, err := svc.GradeManually(result.Attempt.ID, 101, ""); !errors.Is(err, util.ErrInvalidScore) {
		t.Errorf("err = %v, want ErrInvalidScore for score 101", err)
	}
	if _, err := svc.GradeManually("missing", 50, ""); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Errorf("err = %v, want ErrAttemptNotFound", err)
	}
}

func TestStudentProgressDerivation(t *testing.T) {
	attempts := &fakeAttemptStore{}
	now := time.Now()
	seed := []model.Attempt{
		{AssessmentID: 1, StudentID: 7, Score: intPtr(60), SubmittedAt: now.Add(-2 * time.Hour)},
		{AssessmentID: 1, StudentID: 7, Score: intPtr(85), SubmittedAt: now.Add(-time.Hour)},
		{AssessmentID: 1, StudentID: 7, Score: nil, SubmittedAt: now},
		{AssessmentID: 2, StudentID: 7, Score: nil, SubmittedAt: now},
		{AssessmentID: 3, StudentID: 8, Score: intPtr(100), SubmittedAt: now},
	}
	for i := range seed {
		attempts.CreateWithQuota(&seed[i], nil)
	}
	svc := NewAssessmentService(newFakeAssessmentStore(), attempts, nil, nil)

	progress, err := svc.StudentProgress(7)
	if err != nil {
		t.Fatalf("StudentProgress: %v", err)
	}
	if len(progress) != 2 {
		t.Fatalf("entries = %d, want 2", len(progress))
	}

	first := progress[0]
	if first.AssessmentID != 1 || first.Status != model.CompletionCompleted {
		t.Errorf("assessment 1 status = %s, want %s", first.Status, model.CompletionCompleted)
	}
	if first.Attempts != 3 {
		t.Errorf("assessment 1 attempts = %d, want 3", first.Attempts)
	}
	if first.BestScore == nil || *first.BestScore != 85 {
		t.Errorf("assessment 1 best = %v, want 85", first.BestScore)
	}

	second := progress[1]
	if second.AssessmentID != 2 || second.Status != model.CompletionInProgress {
		t.Errorf("assessment 2 status = %s, want %s", second.Status, model.CompletionInProgress)
	}
	if second.BestScore != nil {
		t.Errorf("assessment 2 best = %v, want nil", second.BestScore)
	}
}

func TestStatusForReportsRemainingAttempts(t *testing.T) {
	svc, _ := newTestService(multipleChoiceAssessment(1, intPtr(3)))

	status, err := svc.StatusFor(7, 1)
	if err != nil {
		t.Fatalf("StatusFor: %v", err)
	}
	if status.Status != model.CompletionNotStarted {
		t.Errorf("status = %s, want %s", status.Status, model.CompletionNotStarted)
	}
	if status.RemainingAttempts == nil || *status.RemainingAttempts != 3 {
		t.Errorf("remaining = %v, want 3", status.RemainingAttempts)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.Submit(7, SubmitRequest{AssessmentID: 1, Answers: json.RawMessage(`[1, 0, 2, 3]`)}); err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
	}

	status, err = svc.StatusFor(7, 1)
	if err != nil {
		t.Fatalf("StatusFor: %v", err)
	}
	if status.Status != model.CompletionCompleted {
		t.Errorf("status = %s, want %s", status.Status, model.CompletionCompleted)
	}
	if status.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", status.Attempts)
	}
	if status.RemainingAttempts == nil || *status.RemainingAttempts != 1 {
		t.Errorf("remaining = %v, want 1", status.RemainingAttempts)
	}
	if status.BestScore == nil || *status.BestScore != 100 {
		t.Errorf("best = %v, want 100", status.BestScore)
	}
	if status.Latest == nil {
		t.Errorf("latest attempt missing")
	}

	if _, err := svc.StatusFor(7, 99); !errors.Is(err, util.ErrAssessmentNotFound) {
		t.Errorf("err = %v, want ErrAssessmentNotFound", err)
	}
}

func TestUpdateAssessmentFreezesQuestionsAfterAttempts(t *testing.T) {
	svc, attempts := newTestService(multipleChoiceAssessment(1, nil))
	attempts.CreateWithQuota(&model.Attempt{AssessmentID: 1, StudentID: 7, SubmittedAt: time.Now()}, nil)

	req := AssessmentRequest{
		Title:     "renamed",
		Type:      model.TypeMatching,
		Questions: json.RawMessage(`[]`),
	}
	if _, err := svc.UpdateAssessment(1, req); !errors.Is(err, util.ErrAttemptsReferenced) {
		t.Fatalf("err = %v, want ErrAttemptsReferenced", err)
	}

	// Metadata-only edits remain allowed.
	existing, _ := svc.GetAssessment(1)
	req = AssessmentRequest{
		Title:     "renamed",
		Type:      existing.Type,
		Questions: existing.Questions,
		Quarter:   "Q3",
		Year:      existing.Year,
	}
	updated, err := svc.UpdateAssessment(1, req)
	if err != nil {
		t.Fatalf("UpdateAssessment: %v", err)
	}
	if updated.Title != "renamed" || updated.Quarter != "Q3" {
		t.Errorf("metadata not applied: %+v", updated)
	}
}

func TestCreateAssessmentValidation(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.CreateAssessment(1, AssessmentRequest{Title: "x", Type: "essay"}); err == nil {
		t.Errorf("unknown type accepted")
	}
	if _, err := svc.CreateAssessment(1, AssessmentRequest{Title: "x", Type: model.TypeQuiz, MaxAttempts: intPtr(0)}); err == nil {
		t.Errorf("zero max attempts accepted")
	}
	if _, err := svc.CreateAssessment(1, AssessmentRequest{Title: "x", Type: model.TypeQuiz, Quarter: "Q5"}); !errors.Is(err, util.ErrInvalidQuarter) {
		t.Errorf("invalid quarter accepted")
	}

	a, err := svc.CreateAssessment(1, AssessmentRequest{Title: "x", Type: model.TypeQuiz})
	if err != nil {
		t.Fatalf("CreateAssessment: %v", err)
	}
	if a.Quarter != model.DefaultQuarter {
		t.Errorf("quarter = %s, want default %s", a.Quarter, model.DefaultQuarter)
	}
}

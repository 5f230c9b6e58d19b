package grading

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"school_lms_backend/internal/model"
)

// ErrInvalidAnswerFormat is returned when the submitted payload cannot be
// decoded at all for the given assessment type. Ambiguous-but-decodable
// shapes never error; they fall through to an ungraded result instead.
var ErrInvalidAnswerFormat = errors.New("submitted answers cannot be interpreted for this assessment type")

// Pair is one left/right matching pair of an answer key.
type Pair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Question is one element of an assessment's questions array. Only the
// answer-key fields for the assessment's type are populated; the rest stay
// at their zero values.
type Question struct {
	Prompt string `json:"prompt,omitempty"`
	Text   string `json:"text,omitempty"`

	// multiple-choice / quiz
	Options            []string `json:"options,omitempty"`
	CorrectAnswerIndex *int     `json:"correctAnswerIndex,omitempty"`

	// matching: either Pairs directly, or the legacy parallel lists which
	// are folded into Pairs before grading.
	Pairs       []Pair   `json:"pairs,omitempty"`
	Expressions []string `json:"expressions,omitempty"`
	Meanings    []string `json:"meanings,omitempty"`

	// assignment (free-text fill-in-blank)
	Answers       []string `json:"answers,omitempty"`
	CaseSensitive bool     `json:"caseSensitive,omitempty"`

	// drag-and-drop / change-sequence
	Subtype         string   `json:"subtype,omitempty"`
	CorrectSequence []string `json:"correctSequence,omitempty"`
	Correct         []string `json:"correct,omitempty"`
}

// NormalizedPairs returns the matching pairs, building them from the
// expressions/meanings parallel lists when the key was authored that way.
func (q *Question) NormalizedPairs() []Pair {
	if len(q.Pairs) > 0 {
		return q.Pairs
	}
	if len(q.Expressions) == 0 || len(q.Expressions) != len(q.Meanings) {
		return nil
	}
	pairs := make([]Pair, len(q.Expressions))
	for i := range q.Expressions {
		pairs[i] = Pair{Left: q.Expressions[i], Right: q.Meanings[i]}
	}
	return pairs
}

// sequenceKey returns the expected ordered tokens, honouring the legacy
// "correct" field used by older authoring clients.
func (q *Question) sequenceKey() []string {
	if len(q.CorrectSequence) > 0 {
		return q.CorrectSequence
	}
	return q.Correct
}

// DecodeQuestions parses an assessment's stored questions JSON.
func DecodeQuestions(raw json.RawMessage) ([]Question, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var qs []Question
	if err := json.Unmarshal(raw, &qs); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return qs, nil
}

// Grade scores a submission against an assessment's answer key. It is a
// pure function: no I/O, no clock, no randomness. A nil score with a nil
// error means the submission is accepted but not auto-gradable (manual
// types, absent answer keys, or a shape the tolerant parsers could not
// interpret). ErrInvalidAnswerFormat is returned only when the payload
// cannot be decoded at all.
func Grade(assessmentType string, questions []Question, rawAnswers json.RawMessage) (*int, error) {
	if model.ManuallyGraded(assessmentType) {
		return nil, nil
	}

	answers, err := decodeSubmitted(rawAnswers)
	if err != nil {
		return nil, err
	}

	var correct, total int
	switch assessmentType {
	case model.TypeMultipleChoice, model.TypeQuiz:
		correct, total = gradeMultipleChoice(questions, answers)
	case model.TypeMatching:
		correct, total = gradeMatching(questions, answers)
	case model.TypeAssignment:
		correct, total = gradeAssignment(questions, answers)
	case model.TypeDragAndDrop:
		correct, total = gradeDragAndDrop(questions, answers)
	case model.TypeChangeSequence:
		correct, total = gradeSequence(firstQuestion(questions), answers)
	default:
		return nil, fmt.Errorf("unknown assessment type %q", assessmentType)
	}

	// A malformed or empty key yields total 0; the submission stays
	// ungraded rather than dividing by zero.
	if total == 0 {
		return nil, nil
	}
	score := percent(correct, total)
	return &score, nil
}

func percent(correct, total int) int {
	return int(math.Round(float64(correct) / float64(total) * 100))
}

func firstQuestion(questions []Question) *Question {
	if len(questions) == 0 {
		return nil
	}
	return &questions[0]
}

func gradeMultipleChoice(questions []Question, answers submitted) (correct, total int) {
	total = len(questions)
	for i, q := range questions {
		if q.CorrectAnswerIndex == nil || i >= len(answers) {
			continue
		}
		if picked, ok := asInt(answers[i]); ok && picked == *q.CorrectAnswerIndex {
			correct++
		}
	}
	return correct, total
}

// gradeMatching scores only the first question. Matching assessments with
// multiple questions silently ignore the rest; recorded scores depend on
// this, so it is kept as-is.
func gradeMatching(questions []Question, answers submitted) (correct, total int) {
	q := firstQuestion(questions)
	if q == nil {
		return 0, 0
	}
	pairs := q.NormalizedPairs()
	total = len(pairs)

	picks, ok := asMap(answers.first())
	if !ok {
		return 0, total
	}
	for i := range pairs {
		if idx, ok := matchIndex(picks[fmt.Sprintf("option-%d", i)]); ok && idx == i {
			correct++
		}
	}
	return correct, total
}

func gradeAssignment(questions []Question, answers submitted) (correct, total int) {
	q := firstQuestion(questions)
	if q == nil || len(q.Answers) == 0 {
		return 0, 0
	}
	total = len(q.Answers)

	given := studentAnswerList(answers)
	for i, want := range q.Answers {
		if i >= len(given) {
			break
		}
		got := asString(given[i])
		if q.CaseSensitive {
			if strings.TrimSpace(got) == strings.TrimSpace(want) {
				correct++
			}
		} else if strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(want)) {
			correct++
		}
	}
	return correct, total
}

// studentAnswerList locates the ordered free-text answers inside the
// submission, which arrives either as {"studentAnswers": [...]} or as a
// bare list.
func studentAnswerList(answers submitted) []interface{} {
	if m, ok := asMap(answers.first()); ok {
		if l, ok := asList(m["studentAnswers"]); ok {
			return l
		}
	}
	return answers
}

func gradeDragAndDrop(questions []Question, answers submitted) (correct, total int) {
	q := firstQuestion(questions)
	if q == nil {
		return 0, 0
	}
	switch q.Subtype {
	case model.SubtypeSequence:
		return gradeSequence(q, answers)
	case model.SubtypeFillInBlank, model.SubtypeLongParagraph:
		return gradeBlankFill(q, answers)
	case model.SubtypeImageFillInBlank:
		return gradeImageFillInBlank(q, answers)
	}
	// Older keys omit the subtype; infer it from which fields are set.
	if len(q.CorrectSequence) > 0 {
		return gradeSequence(q, answers)
	}
	if len(q.Correct) > 0 {
		return gradeBlankFill(q, answers)
	}
	return 0, 0
}

func gradeSequence(q *Question, answers submitted) (correct, total int) {
	if q == nil {
		return 0, 0
	}
	key := q.sequenceKey()
	total = len(key)

	given, ok := asList(answers.first())
	if !ok {
		return 0, total
	}
	for i, want := range key {
		if i < len(given) && asString(given[i]) == want {
			correct++
		}
	}
	return correct, total
}

func gradeBlankFill(q *Question, answers submitted) (correct, total int) {
	total = len(q.Correct)

	m, ok := asMap(answers.first())
	if !ok {
		return 0, total
	}
	given, ok := asList(m["dragAndDrop"])
	if !ok {
		return 0, total
	}
	for i, want := range q.Correct {
		if i < len(given) && asString(given[i]) == want {
			correct++
		}
	}
	return correct, total
}

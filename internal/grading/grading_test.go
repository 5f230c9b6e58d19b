package grading

import (
	"encoding/json"
	"errors"
	"testing"

	"school_lms_backend/internal/model"
)

func intPtr(n int) *int { return &n }

func mustGrade(t *testing.T, typ string, questions []Question, answers string) *int {
	t.Helper()
	score, err := Grade(typ, questions, json.RawMessage(answers))
	if err != nil {
		t.Fatalf("Grade(%s) returned error: %v", typ, err)
	}
	return score
}

func wantScore(t *testing.T, got *int, want int) {
	t.Helper()
	if got == nil {
		t.Fatalf("expected score %d, got ungraded", want)
	}
	if *got != want {
		t.Fatalf("expected score %d, got %d", want, *got)
	}
}

func wantUngraded(t *testing.T, got *int) {
	t.Helper()
	if got != nil {
		t.Fatalf("expected ungraded (nil score), got %d", *got)
	}
}

func TestGradeMultipleChoice(t *testing.T) {
	questions := []Question{
		{CorrectAnswerIndex: intPtr(1)},
		{CorrectAnswerIndex: intPtr(0)},
		{CorrectAnswerIndex: intPtr(2)},
		{CorrectAnswerIndex: intPtr(3)},
	}

	tests := []struct {
		name    string
		answers string
		want    int
	}{
		{"three of four correct", `[1, 0, 2, 0]`, 75},
		{"all correct", `[1, 0, 2, 3]`, 100},
		{"all correct as strings", `["1", "0", "2", "3"]`, 100},
		{"none correct", `[0, 1, 3, 2]`, 0},
		{"short submission", `[1, 0]`, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wantScore(t, mustGrade(t, model.TypeMultipleChoice, questions, tt.answers), tt.want)
		})
	}
}

func TestGradeQuizAliasesMultipleChoice(t *testing.T) {
	questions := []Question{{CorrectAnswerIndex: intPtr(2)}}
	wantScore(t, mustGrade(t, model.TypeQuiz, questions, `[2]`), 100)
}

func TestGradeMultipleChoiceInvalidPayload(t *testing.T) {
	questions := []Question{{CorrectAnswerIndex: intPtr(0)}}
	_, err := Grade(model.TypeMultipleChoice, questions, json.RawMessage(`not json`))
	if !errors.Is(err, ErrInvalidAnswerFormat) {
		t.Fatalf("expected ErrInvalidAnswerFormat, got %v", err)
	}
}

func TestGradeMatching(t *testing.T) {
	questions := []Question{{
		Pairs: []Pair{
			{Left: "dog", Right: "perro"},
			{Left: "cat", Right: "gato"},
			{Left: "bird", Right: "pájaro"},
		},
	}}

	t.Run("all pairs matched", func(t *testing.T) {
		answers := `[{"option-0": "match-0", "option-1": "match-1", "option-2": "match-2"}]`
		wantScore(t, mustGrade(t, model.TypeMatching, questions, answers), 100)
	})

	t.Run("one pair swapped", func(t *testing.T) {
		answers := `[{"option-0": "match-0", "option-1": "match-2", "option-2": "match-1"}]`
		wantScore(t, mustGrade(t, model.TypeMatching, questions, answers), 33)
	})

	t.Run("non-object submission scores zero", func(t *testing.T) {
		wantScore(t, mustGrade(t, model.TypeMatching, questions, `["match-0"]`), 0)
	})
}

func TestGradeMatchingOnlyFirstQuestion(t *testing.T) {
	// Matching grades question 0 only; additional questions are ignored.
	// Recorded scores depend on this, so it is pinned here.
	questions := []Question{
		{Pairs: []Pair{{Left: "a", Right: "1"}, {Left: "b", Right: "2"}}},
		{Pairs: []Pair{{Left: "x", Right: "9"}}},
	}
	answers := `[{"option-0": "match-0", "option-1": "match-1"}, {"option-0": "match-99"}]`
	wantScore(t, mustGrade(t, model.TypeMatching, questions, answers), 100)
}

func TestGradeMatchingNormalizesExpressionLists(t *testing.T) {
	questions := []Question{{
		Expressions: []string{"run", "walk"},
		Meanings:    []string{"correr", "caminar"},
	}}
	answers := `[{"option-0": "match-0", "option-1": "match-1"}]`
	wantScore(t, mustGrade(t, model.TypeMatching, questions, answers), 100)
}

func TestGradeAssignment(t *testing.T) {
	questions := []Question{{Answers: []string{"Paris", "France"}}}

	t.Run("case-insensitive by default", func(t *testing.T) {
		answers := `[{"studentAnswers": ["paris", "FRANCE"]}]`
		wantScore(t, mustGrade(t, model.TypeAssignment, questions, answers), 100)
	})

	t.Run("bare list accepted", func(t *testing.T) {
		wantScore(t, mustGrade(t, model.TypeAssignment, questions, `["Paris", "Spain"]`), 50)
	})

	t.Run("case-sensitive when flagged", func(t *testing.T) {
		strict := []Question{{Answers: []string{"Paris", "France"}, CaseSensitive: true}}
		answers := `[{"studentAnswers": ["paris", "France"]}]`
		wantScore(t, mustGrade(t, model.TypeAssignment, strict, answers), 50)
	})

	t.Run("surrounding whitespace ignored", func(t *testing.T) {
		answers := `[{"studentAnswers": [" Paris ", "France"]}]`
		wantScore(t, mustGrade(t, model.TypeAssignment, questions, answers), 100)
	})

	t.Run("absent answer key leaves submission ungraded", func(t *testing.T) {
		wantUngraded(t, mustGrade(t, model.TypeAssignment, []Question{{}}, `["anything"]`))
	})
}

func TestGradeDragAndDropSequence(t *testing.T) {
	questions := []Question{{
		Subtype:         model.SubtypeSequence,
		CorrectSequence: []string{"first", "second", "third"},
	}}

	t.Run("perfect order", func(t *testing.T) {
		wantScore(t, mustGrade(t, model.TypeDragAndDrop, questions, `[["first", "second", "third"]]`), 100)
	})

	t.Run("two in place", func(t *testing.T) {
		wantScore(t, mustGrade(t, model.TypeDragAndDrop, questions, `[["first", "third", "second"]]`), 33)
	})

	t.Run("legacy correct field", func(t *testing.T) {
		legacy := []Question{{Subtype: model.SubtypeSequence, Correct: []string{"a", "b"}}}
		wantScore(t, mustGrade(t, model.TypeDragAndDrop, legacy, `[["a", "b"]]`), 100)
	})

	t.Run("subtype inferred from key fields", func(t *testing.T) {
		untagged := []Question{{CorrectSequence: []string{"a", "b"}}}
		wantScore(t, mustGrade(t, model.TypeDragAndDrop, untagged, `[["a", "x"]]`), 50)
	})
}

func TestGradeDragAndDropFillInBlank(t *testing.T) {
	for _, subtype := range []string{model.SubtypeFillInBlank, model.SubtypeLongParagraph} {
		questions := []Question{{Subtype: subtype, Correct: []string{"red", "green", "blue"}}}
		answers := `[{"dragAndDrop": ["red", "green", "purple"]}]`
		wantScore(t, mustGrade(t, model.TypeDragAndDrop, questions, answers), 67)
	}
}

func TestGradeChangeSequence(t *testing.T) {
	questions := []Question{{CorrectSequence: []string{"wake", "wash", "eat", "go"}}}
	wantScore(t, mustGrade(t, model.TypeChangeSequence, questions, `[["wake", "wash", "go", "eat"]]`), 50)
}

func TestGradeImageFillInBlank(t *testing.T) {
	t.Run("pairs encoding", func(t *testing.T) {
		questions := []Question{{
			Subtype: model.SubtypeImageFillInBlank,
			Pairs:   []Pair{{Left: "img1", Right: "apple"}, {Left: "img2", Right: "pear"}},
		}}
		answers := `[{"option-0": "match-0", "option-1": "match-1"}]`
		wantScore(t, mustGrade(t, model.TypeDragAndDrop, questions, answers), 100)
	})

	t.Run("positional list encoding", func(t *testing.T) {
		questions := []Question{{Subtype: model.SubtypeImageFillInBlank, Correct: []string{"apple", "pear"}}}
		wantScore(t, mustGrade(t, model.TypeDragAndDrop, questions, `[["apple", "plum"]]`), 50)
	})

	t.Run("flat scalar list encoding", func(t *testing.T) {
		questions := []Question{{Subtype: model.SubtypeImageFillInBlank, Correct: []string{"apple", "pear"}}}
		wantScore(t, mustGrade(t, model.TypeDragAndDrop, questions, `["apple", "pear"]`), 100)
	})

	t.Run("dragAndDrop encoding against correct key", func(t *testing.T) {
		// Key has only a "correct" array but the submission uses the
		// dragAndDrop wrapper; the third strategy bridges the two.
		questions := []Question{{Subtype: model.SubtypeImageFillInBlank, Correct: []string{"apple", "pear"}}}
		answers := `[{"dragAndDrop": ["apple", "pear"]}]`
		wantScore(t, mustGrade(t, model.TypeDragAndDrop, questions, answers), 100)
	})

	t.Run("key probe fallback", func(t *testing.T) {
		questions := []Question{{Subtype: model.SubtypeImageFillInBlank, Correct: []string{"apple", "pear"}}}
		answers := `[{"option-0": "apple", "1": "match-1"}]`
		wantScore(t, mustGrade(t, model.TypeDragAndDrop, questions, answers), 100)
	})

	t.Run("unrecognizable shape stays ungraded", func(t *testing.T) {
		questions := []Question{{Subtype: model.SubtypeImageFillInBlank}}
		wantUngraded(t, mustGrade(t, model.TypeDragAndDrop, questions, `[{"mystery": true}]`))
	})
}

func TestGradeManualTypes(t *testing.T) {
	for _, typ := range []string{model.TypeSpeaking, model.TypeWriting, model.TypeWritingLong} {
		score, err := Grade(typ, nil, json.RawMessage(`{"upload": "recording.mp3"}`))
		if err != nil {
			t.Fatalf("Grade(%s) returned error: %v", typ, err)
		}
		wantUngraded(t, score)
	}
}

func TestGradeEmptyKeyProducesNoScore(t *testing.T) {
	wantUngraded(t, mustGrade(t, model.TypeMultipleChoice, nil, `[1, 2]`))
	wantUngraded(t, mustGrade(t, model.TypeMatching, []Question{{}}, `[{}]`))
	wantUngraded(t, mustGrade(t, model.TypeChangeSequence, []Question{{}}, `[[]]`))
}

func TestGradeUnknownType(t *testing.T) {
	if _, err := Grade("essay-v2", nil, json.RawMessage(`[]`)); err == nil {
		t.Fatal("expected error for unknown assessment type")
	}
}

func TestGradeIsDeterministic(t *testing.T) {
	questions := []Question{{
		Subtype: model.SubtypeImageFillInBlank,
		Correct: []string{"a", "b", "c"},
	}}
	answers := json.RawMessage(`[{"dragAndDrop": ["a", "x", "c"]}]`)

	first, err := Grade(model.TypeDragAndDrop, questions, answers)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		again, err := Grade(model.TypeDragAndDrop, questions, answers)
		if err != nil {
			t.Fatal(err)
		}
		if *first != *again {
			t.Fatalf("score changed between runs: %d then %d", *first, *again)
		}
	}
}

func TestScoreBounds(t *testing.T) {
	cases := []struct {
		typ       string
		questions []Question
		answers   string
	}{
		{model.TypeMultipleChoice, []Question{{CorrectAnswerIndex: intPtr(0)}}, `[0]`},
		{model.TypeMatching, []Question{{Pairs: []Pair{{Left: "a", Right: "b"}}}}, `[{"option-0": "match-0"}]`},
		{model.TypeAssignment, []Question{{Answers: []string{"x"}}}, `[{"studentAnswers": ["x", "extra", "extra2"]}]`},
		{model.TypeChangeSequence, []Question{{CorrectSequence: []string{"a"}}}, `[["a", "b", "c"]]`},
	}
	for _, tc := range cases {
		score := mustGrade(t, tc.typ, tc.questions, tc.answers)
		if score != nil && (*score < 0 || *score > 100) {
			t.Errorf("%s: score %d out of bounds", tc.typ, *score)
		}
	}
}

func TestDecodeQuestions(t *testing.T) {
	raw := json.RawMessage(`[{"correctAnswerIndex": 2, "options": ["a", "b", "c"]}]`)
	qs, err := DecodeQuestions(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(qs) != 1 || qs[0].CorrectAnswerIndex == nil || *qs[0].CorrectAnswerIndex != 2 {
		t.Fatalf("unexpected decode result: %+v", qs)
	}

	if _, err := DecodeQuestions(json.RawMessage(`{"oops": 1}`)); err == nil {
		t.Fatal("expected error decoding non-array questions")
	}
}

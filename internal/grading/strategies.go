package grading

import (
	"fmt"
	"strconv"
)

// The image-fill-in-blank subtype has accumulated several incompatible
// answer-key and submission encodings across authoring-client versions.
// Each encoding gets its own strategy; they are tried in a fixed order and
// the first one that recognizes the shape wins. A strategy that does not
// recognize the shape reports !ok instead of failing, so the chain falls
// through cleanly and an unrecognized submission ends up ungraded, never
// rejected.
type imageStrategy func(q *Question, answers submitted) (correct, total int, ok bool)

var imageStrategies = []imageStrategy{
	imagePairsMatch,
	imagePositional,
	imageDragAndDropKeyed,
	imageKeyProbe,
}

func gradeImageFillInBlank(q *Question, answers submitted) (correct, total int) {
	for _, try := range imageStrategies {
		if c, t, ok := try(q, answers); ok {
			return c, t
		}
	}
	return 0, 0
}

// imagePairsMatch handles keys authored as pairs with "option-N" picks in
// the submission, the same encoding as matching assessments.
func imagePairsMatch(q *Question, answers submitted) (correct, total int, ok bool) {
	pairs := q.NormalizedPairs()
	if len(pairs) == 0 {
		return 0, 0, false
	}
	picks, isMap := asMap(answers.first())
	if !isMap {
		return 0, 0, false
	}
	total = len(pairs)
	for i := range pairs {
		if idx, found := matchIndex(picks[fmt.Sprintf("option-%d", i)]); found && idx == i {
			correct++
		}
	}
	return correct, total, true
}

// imagePositional handles submissions that are themselves an ordered list
// of tokens, compared element-wise against the "correct" array.
func imagePositional(q *Question, answers submitted) (correct, total int, ok bool) {
	if len(q.Correct) == 0 {
		return 0, 0, false
	}
	given, isList := asList(answers.first())
	if !isList {
		// A flat scalar array means the submission array itself is the
		// ordered list.
		if !allScalars(answers) {
			return 0, 0, false
		}
		given = answers
	}
	total = len(q.Correct)
	for i, want := range q.Correct {
		if i < len(given) && asString(given[i]) == want {
			correct++
		}
	}
	return correct, total, true
}

// imageDragAndDropKeyed handles the {"dragAndDrop": [...]} wrapper used by
// the other blank-fill subtypes.
func imageDragAndDropKeyed(q *Question, answers submitted) (correct, total int, ok bool) {
	if len(q.Correct) == 0 {
		return 0, 0, false
	}
	m, isMap := asMap(answers.first())
	if !isMap {
		return 0, 0, false
	}
	given, isList := asList(m["dragAndDrop"])
	if !isList {
		return 0, 0, false
	}
	total = len(q.Correct)
	for i, want := range q.Correct {
		if i < len(given) && asString(given[i]) == want {
			correct++
		}
	}
	return correct, total, true
}

// imageKeyProbe is the last resort: probe the submission object under the
// key names known to be emitted ("option-N" or the bare index) and accept
// the expected token, a "match-N" marker, or the index itself as correct.
func imageKeyProbe(q *Question, answers submitted) (correct, total int, ok bool) {
	if len(q.Correct) == 0 {
		return 0, 0, false
	}
	m, isMap := asMap(answers.first())
	if !isMap {
		return 0, 0, false
	}
	total = len(q.Correct)
	for i, want := range q.Correct {
		v, found := m[fmt.Sprintf("option-%d", i)]
		if !found {
			v, found = m[strconv.Itoa(i)]
		}
		if !found {
			continue
		}
		got := asString(v)
		if got == want || got == fmt.Sprintf("match-%d", i) || got == strconv.Itoa(i) {
			correct++
		}
	}
	return correct, total, true
}

func allScalars(answers submitted) bool {
	if len(answers) == 0 {
		return false
	}
	for _, v := range answers {
		switch v.(type) {
		case map[string]interface{}, []interface{}:
			return false
		}
	}
	return true
}

package grading

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Submitted answer payloads arrive as a JSON array whose element shape
// depends on the assessment type: scalars for choice answers, an object
// keyed "option-N" for matching, an object with a "dragAndDrop" list for
// blank-filling, or a bare ordered list for sequencing.
type submitted []interface{}

func decodeSubmitted(raw json.RawMessage) (submitted, error) {
	if len(raw) == 0 {
		return nil, ErrInvalidAnswerFormat
	}
	var s submitted
	if err := json.Unmarshal(raw, &s); err != nil {
		// Some producers wrap the array in an object, e.g.
		// {"studentAnswers": [...]}. Accept that too.
		var obj map[string]interface{}
		if err2 := json.Unmarshal(raw, &obj); err2 != nil {
			return nil, ErrInvalidAnswerFormat
		}
		return submitted{obj}, nil
	}
	return s, nil
}

// first returns the first element, which carries the whole answer for the
// single-question types (matching, drag-and-drop, change-sequence).
func (s submitted) first() interface{} {
	if len(s) == 0 {
		return nil
	}
	return s[0]
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok
}

func asList(v interface{}) ([]interface{}, bool) {
	l, ok := v.([]interface{})
	return l, ok
}

// asString coerces a decoded JSON scalar to its string form. Whole-valued
// numbers render without a fractional part so "2" and 2 compare equal.
func asString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	}
	return ""
}

// asInt coerces a decoded JSON scalar to an integer, accepting both native
// numbers and numeric strings.
func asInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// matchIndex extracts N from a "match-N" answer token.
func matchIndex(v interface{}) (int, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	rest, found := strings.CutPrefix(s, "match-")
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

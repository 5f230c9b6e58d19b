package model

import "testing"

func TestYearLevelFromClass(t *testing.T) {
	cases := []struct {
		class string
		want  int
	}{
		{"P1/1", 1},
		{"P4/2", 4},
		{"P6/6", 6},
		{"M1/3", 7},
		{"M3/1", 9},
		{"", 0},
		{"X1/1", 0},
		{"P4", 4}, // prefix alone still maps
	}
	for _, c := range cases {
		if got := YearLevelFromClass(c.class); got != c.want {
			t.Errorf("YearLevelFromClass(%q) = %d, want %d", c.class, got, c.want)
		}
	}
}

func TestIsValidClass(t *testing.T) {
	valid := []string{"P1/1", "P6/6", "M1/1", "M3/6"}
	for _, c := range valid {
		if !IsValidClass(c) {
			t.Errorf("IsValidClass(%q) = false, want true", c)
		}
	}

	invalid := []string{"", "P1", "P1/0", "P1/7", "P7/1", "M4/1", "X1/2", "P1/12", "p1/1"}
	for _, c := range invalid {
		if IsValidClass(c) {
			t.Errorf("IsValidClass(%q) = true, want false", c)
		}
	}
}

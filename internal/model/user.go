package model

import (
	"strings"
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name       string     `gorm:"size:100;not null" json:"name"`
	Nickname   string     `gorm:"size:100;uniqueIndex" json:"nickname"`
	Email      string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password   string     `gorm:"size:255;not null" json:"-"`
	Role       UserRole   `gorm:"size:20;default:'student'" json:"role"`
	Class      string     `gorm:"size:10" json:"class"` // e.g. P4/2, M1/3; students only
	Year       int        `gorm:"default:0" json:"year"`
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// yearLevelMap mirrors the grade prefixes in use at the school: P1-P6
// primary, M1-M3 secondary.
var yearLevelMap = map[string]int{
	"P1": 1, "P2": 2, "P3": 3, "P4": 4, "P5": 5, "P6": 6,
	"M1": 7, "M2": 8, "M3": 9,
}

// YearLevelFromClass derives the numeric year level from a class code such
// as "P4/2". Returns 0 for an empty or unknown code.
func YearLevelFromClass(classCode string) int {
	if classCode == "" {
		return 0
	}
	prefix, _, _ := strings.Cut(classCode, "/")
	return yearLevelMap[prefix]
}

// IsValidClass reports whether a class code uses a known grade prefix and a
// section number between 1 and 6.
func IsValidClass(classCode string) bool {
	prefix, section, ok := strings.Cut(classCode, "/")
	if !ok {
		return false
	}
	if _, known := yearLevelMap[prefix]; !known {
		return false
	}
	return section >= "1" && section <= "6" && len(section) == 1
}

package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/komaplan/internal/constants"
)

// Grade is a school grade, 1 through 6.
type Grade int

// Valid reports whether g is within 1..6.
func (g Grade) Valid() bool {
	return g >= constants.MinGrade && g <= constants.MaxGrade
}

// Index maps a valid grade onto 0..5.
func (g Grade) Index() int {
	return int(g) - constants.MinGrade
}

func (g Grade) String() string {
	return fmt.Sprintf("g%d", int(g))
}

// AllGrades returns grades 1..6 in order.
func AllGrades() []Grade {
	grades := make([]Grade, 0, constants.GradeCount)
	for g := constants.MinGrade; g <= constants.MaxGrade; g++ {
		grades = append(grades, Grade(g))
	}
	return grades
}

// ParseGrade accepts "3", "3年", "3年生" and "G3". It does not range-check.
func ParseGrade(s string) (Grade, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "年生")
	s = strings.TrimSuffix(s, "年")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "G"), "g")
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		return Grade(int(f)), nil
	}
	return 0, fmt.Errorf("invalid grade %q", s)
}

// PerGrade is a fixed-shape table with one slot per grade.
type PerGrade[T any] [constants.GradeCount]T

// Get returns the value stored for g. g must be valid.
func (p PerGrade[T]) Get(g Grade) T {
	return p[g.Index()]
}

// Set stores v for g. g must be valid.
func (p *PerGrade[T]) Set(g Grade, v T) {
	p[g.Index()] = v
}

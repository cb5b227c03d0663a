package access

import (
	"strconv"
	"strings"
)

// ParseGradeBand expands a grade band string into the ordered set of
// grade levels it covers. A band is either a single integer ("1") or a
// hyphenated inclusive range ("3-4"). Anything malformed parses to an
// empty set so access checks fail closed.
func ParseGradeBand(band string) []int {
	band = strings.TrimSpace(band)
	if band == "" {
		return nil
	}

	if !strings.Contains(band, "-") {
		grade, err := strconv.Atoi(band)
		if err != nil || grade <= 0 {
			return nil
		}
		return []int{grade}
	}

	parts := strings.SplitN(band, "-", 2)
	low, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || low <= 0 {
		return nil
	}
	high, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || high < low {
		return nil
	}

	grades := make([]int, 0, high-low+1)
	for g := low; g <= high; g++ {
		grades = append(grades, g)
	}
	return grades
}

// GradeInBand reports whether the grade level falls inside the band.
func GradeInBand(grade int, band string) bool {
	for _, g := range ParseGradeBand(band) {
		if g == grade {
			return true
		}
	}
	return false
}

package grading

import "math"

// ProgressPercentage computes gradebook completion as a capped whole
// percentage. A class with no students reports zero, never an error.
func ProgressPercentage(scoresEntered, studentCount, expectedItems int) int {
	denominator := studentCount * expectedItems
	if denominator <= 0 {
		return 0
	}
	pct := int(math.Round(float64(scoresEntered) / float64(denominator) * 100))
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// Package grading holds the pure grade and statistics calculations.
// Everything here is deterministic and side-effect free: callers
// materialise score entries from storage and render the results.
package grading

import (
	"fmt"
	"math"
)

// Semester grade component weights. The three weights sum to the
// semester divisor, so a semester grade is a weighted mean of the
// formative average, summative average and final/mid score.
const (
	FormativeWeight = 0.15
	SummativeWeight = 0.20
	FinalWeight     = 0.10
	SemesterDivisor = FormativeWeight + SummativeWeight + FinalWeight

	// KCFSBase is the floor every KCFS term grade builds on.
	KCFSBase = 50.0
)

// Assessment codes recognised by the LT/IT engine.
const (
	CodeFinal = "FINAL"
	CodeMid   = "MID"

	formativeCount = 8
	summativeCount = 4
)

// Entry is a single score as consumed by the engine. A nil Value means
// the score was never entered.
type Entry struct {
	Value  *float64
	Absent bool
}

// UsedCounts reports how many entries qualified per bucket.
type UsedCounts struct {
	Formative int `json:"formative"`
	Summative int `json:"summative"`
	Final     int `json:"final"`
}

// Result is the derived grade snapshot for one student. It is always
// recomputed from raw entries and never persisted as source of truth.
type Result struct {
	FormativeAvg  *float64   `json:"formative_avg,omitempty"`
	SummativeAvg  *float64   `json:"summative_avg,omitempty"`
	FinalScore    *float64   `json:"final_score,omitempty"`
	SemesterGrade *float64   `json:"semester_grade,omitempty"`
	UsedCounts    UsedCounts `json:"used_counts"`
}

// FormativeCodes returns the FA1..FA8 assessment code set.
func FormativeCodes() []string {
	return numberedCodes("FA", formativeCount)
}

// SummativeCodes returns the SA1..SA4 assessment code set.
func SummativeCodes() []string {
	return numberedCodes("SA", summativeCount)
}

func numberedCodes(prefix string, n int) []string {
	codes := make([]string, n)
	for i := range codes {
		codes[i] = fmt.Sprintf("%s%d", prefix, i+1)
	}
	return codes
}

// CalculateGrades computes the LT/IT grade snapshot from a score map
// keyed by assessment code. Entries with a nil or non-positive value
// and entries marked absent never participate in an average.
func CalculateGrades(scores map[string]Entry) Result {
	result := Result{}

	formative, usedF := bucketAverage(scores, FormativeCodes())
	summative, usedS := bucketAverage(scores, SummativeCodes())
	result.FormativeAvg = formative
	result.SummativeAvg = summative
	result.UsedCounts.Formative = usedF
	result.UsedCounts.Summative = usedS

	if final := finalScore(scores); final != nil {
		result.FinalScore = final
		result.UsedCounts.Final = 1
	}

	result.SemesterGrade = CalculateSemesterGrade(result.FormativeAvg, result.SummativeAvg, result.FinalScore)
	return result
}

// CalculateFormativeAverage averages the qualifying FA entries,
// returning nil when none qualify.
func CalculateFormativeAverage(scores map[string]Entry) *float64 {
	avg, _ := bucketAverage(scores, FormativeCodes())
	return avg
}

// CalculateSummativeAverage averages the qualifying SA entries,
// returning nil when none qualify.
func CalculateSummativeAverage(scores map[string]Entry) *float64 {
	avg, _ := bucketAverage(scores, SummativeCodes())
	return avg
}

// CalculateSemesterGrade combines the three components. Any nil
// component makes the semester grade nil.
func CalculateSemesterGrade(formative, summative, final *float64) *float64 {
	if formative == nil || summative == nil || final == nil {
		return nil
	}
	grade := (*formative*FormativeWeight + *summative*SummativeWeight + *final*FinalWeight) / SemesterDivisor
	return round2p(grade)
}

func bucketAverage(scores map[string]Entry, codes []string) (*float64, int) {
	sum := 0.0
	used := 0
	for _, code := range codes {
		entry, ok := scores[code]
		if !ok || entry.Absent || entry.Value == nil || *entry.Value <= 0 {
			continue
		}
		sum += *entry.Value
		used++
	}
	if used == 0 {
		return nil, 0
	}
	return round2p(sum / float64(used)), used
}

func finalScore(scores map[string]Entry) *float64 {
	for _, code := range []string{CodeFinal, CodeMid} {
		entry, ok := scores[code]
		if !ok || entry.Absent || entry.Value == nil || *entry.Value <= 0 {
			continue
		}
		return round2p(*entry.Value)
	}
	return nil
}

// round2p rounds half-up to two decimals and returns a pointer.
func round2p(v float64) *float64 {
	rounded := Round2(v)
	return &rounded
}

// Round2 rounds half-up to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

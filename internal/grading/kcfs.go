package grading

// KCFSBand describes the category layout for a contiguous pair of
// grade levels. Category weights are chosen so a full score of 5 in
// every category reaches 100 from the 50 base.
type KCFSBand struct {
	Categories []string
	Weight     float64
}

var (
	kcfsLowerBand = KCFSBand{
		Categories: []string{"CURIOSITY", "CREATIVITY", "COLLABORATION", "COMMUNICATION"},
		Weight:     2.5,
	}
	kcfsMiddleBand = KCFSBand{
		Categories: []string{"CURIOSITY", "CREATIVITY", "COLLABORATION", "COMMUNICATION", "CRITICAL_THINKING"},
		Weight:     2.0,
	}
	kcfsUpperBand = KCFSBand{
		Categories: []string{"CURIOSITY", "CREATIVITY", "COLLABORATION", "COMMUNICATION", "CRITICAL_THINKING", "CITIZENSHIP"},
		Weight:     5.0 / 3.0,
	}
)

// KCFSBandForGrade maps a grade level to its category band. Grades 1-2
// use four categories, 3-4 five and 5-6 six. Grades outside 1-6 get an
// empty band, which makes every calculation nil.
func KCFSBandForGrade(grade int) KCFSBand {
	switch {
	case grade >= 1 && grade <= 2:
		return kcfsLowerBand
	case grade >= 3 && grade <= 4:
		return kcfsMiddleBand
	case grade >= 5 && grade <= 6:
		return kcfsUpperBand
	}
	return KCFSBand{}
}

// KCFSExpectedCategories returns the expected category count for a
// grade level, used by gradebook completion reporting.
func KCFSExpectedCategories(grade int) int {
	return len(KCFSBandForGrade(grade).Categories)
}

// CalculateTermGrade computes the KCFS term grade for one student:
// 50 + sum(categoryScore * bandWeight) over non-absent categories.
// Absence is the only exclusion signal for KCFS; a genuine zero still
// counts. When every category is absent or missing the result is nil.
func CalculateTermGrade(grade int, scores map[string]Entry) (*float64, int) {
	band := KCFSBandForGrade(grade)
	if len(band.Categories) == 0 {
		return nil, 0
	}

	sum := 0.0
	used := 0
	for _, category := range band.Categories {
		entry, ok := scores[category]
		if !ok || entry.Absent || entry.Value == nil {
			continue
		}
		sum += *entry.Value * band.Weight
		used++
	}
	if used == 0 {
		return nil, 0
	}
	return round2p(KCFSBase + sum), used
}

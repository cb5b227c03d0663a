package grading

import (
	"math"
	"sort"
)

// Summary is the descriptive statistics result for a score series.
type Summary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

// RangeBucket is one fixed performance band of a distribution.
type RangeBucket struct {
	Label      string  `json:"label"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Distribution buckets a score series into the fixed performance bands
// and carries the accompanying shape statistics.
type Distribution struct {
	Ranges   []RangeBucket `json:"ranges"`
	Mean     float64       `json:"mean"`
	Median   float64       `json:"median"`
	StdDev   float64       `json:"std_dev"`
	Skewness float64       `json:"skewness"`
}

type bucketSpec struct {
	label    string
	min, max float64
}

var distributionBuckets = []bucketSpec{
	{"Excellent", 90, 100},
	{"Good", 80, 89},
	{"Satisfactory", 70, 79},
	{"Needs Improvement", 60, 69},
	{"Below Standard", 0, 59},
}

// CalculateStatistics computes descriptive statistics for a value
// series. An empty series yields the all-zero summary, never an error.
func CalculateStatistics(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	return Summary{
		Mean:   Round2(mean),
		Median: Round2(median(sorted)),
		StdDev: Round2(stdDev(sorted, mean)),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Count:  len(sorted),
	}
}

// CalculateDistribution buckets scores into the fixed bands and adds
// mean, median, standard deviation and skewness.
func CalculateDistribution(scores []float64) Distribution {
	dist := Distribution{Ranges: make([]RangeBucket, 0, len(distributionBuckets))}

	// Buckets descend, so the first band whose lower edge the score
	// reaches is the right one. Fractional scores between the display
	// bounds (89.5) land in the band below them.
	counts := make([]int, len(distributionBuckets))
	for _, score := range scores {
		for i, bucket := range distributionBuckets {
			if score >= bucket.min {
				counts[i]++
				break
			}
		}
	}

	total := len(scores)
	for i, bucket := range distributionBuckets {
		percentage := 0.0
		if total > 0 {
			percentage = Round2(float64(counts[i]) / float64(total) * 100)
		}
		dist.Ranges = append(dist.Ranges, RangeBucket{
			Label:      bucket.label,
			Min:        bucket.min,
			Max:        bucket.max,
			Count:      counts[i],
			Percentage: percentage,
		})
	}

	if total == 0 {
		return dist
	}

	sorted := make([]float64, total)
	copy(sorted, scores)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(total)
	sigma := stdDev(sorted, mean)

	dist.Mean = Round2(mean)
	dist.Median = Round2(median(sorted))
	dist.StdDev = Round2(sigma)
	dist.Skewness = Round2(skewness(scores, mean, sigma))
	return dist
}

func median(sorted []float64) float64 {
	n := len(sorted)
	mid := n / 2
	if n%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func stdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// skewness is the third standardised moment; zero when the series has
// no spread.
func skewness(values []float64, mean, sigma float64) float64 {
	if sigma == 0 || len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		z := (v - mean) / sigma
		sum += z * z * z
	}
	return sum / float64(len(values))
}

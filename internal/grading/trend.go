package grading

import (
	"sort"
	"strconv"
)

// Trend directions and significance levels.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"

	SignificanceHigh   = "high"
	SignificanceMedium = "medium"
	SignificanceLow    = "low"

	BasisRegression       = "regression"
	BasisInsufficientData = "insufficient_data"
)

// Slope magnitudes at or below this threshold count as stable.
const stableSlopeThreshold = 0.1

// Significance thresholds on the absolute change percentage.
const (
	highChangeThreshold   = 10.0
	mediumChangeThreshold = 5.0
)

// Point is one observation in a trend series. X is either a numeric
// string or an ISO date; both sort ascending.
type Point struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}

// TrendResult classifies the direction of a score series over time.
type TrendResult struct {
	Direction        string  `json:"trend"`
	ChangePercentage float64 `json:"change_percentage"`
	Significance     string  `json:"significance"`
	Basis            string  `json:"basis"`
}

// CalculateTrend sorts points by x ascending and fits a simple linear
// regression over index positions. Fewer than two points yield the
// stable/zero/low result with the insufficient-data basis.
func CalculateTrend(points []Point) TrendResult {
	if len(points) < 2 {
		return TrendResult{
			Direction:        TrendStable,
			ChangePercentage: 0,
			Significance:     SignificanceLow,
			Basis:            BasisInsufficientData,
		}
	}

	sorted := make([]Point, len(points))
	copy(sorted, points)
	sortPoints(sorted)

	slope := regressionSlope(sorted)

	direction := TrendStable
	if slope > stableSlopeThreshold {
		direction = TrendUp
	} else if slope < -stableSlopeThreshold {
		direction = TrendDown
	}

	change := 0.0
	first := sorted[0].Y
	last := sorted[len(sorted)-1].Y
	if first != 0 {
		change = Round2((last - first) / first * 100)
	}

	significance := SignificanceLow
	abs := change
	if abs < 0 {
		abs = -abs
	}
	if abs > highChangeThreshold {
		significance = SignificanceHigh
	} else if abs > mediumChangeThreshold {
		significance = SignificanceMedium
	}

	return TrendResult{
		Direction:        direction,
		ChangePercentage: change,
		Significance:     significance,
		Basis:            BasisRegression,
	}
}

// sortPoints orders numerically when every x parses as a number,
// otherwise lexicographically, which is correct for ISO dates.
func sortPoints(points []Point) {
	numeric := true
	values := make([]float64, len(points))
	for i, p := range points {
		v, err := strconv.ParseFloat(p.X, 64)
		if err != nil {
			numeric = false
			break
		}
		values[i] = v
	}

	if numeric {
		sort.SliceStable(points, func(i, j int) bool {
			vi, _ := strconv.ParseFloat(points[i].X, 64)
			vj, _ := strconv.ParseFloat(points[j].X, 64)
			return vi < vj
		})
		return
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].X < points[j].X })
}

// regressionSlope fits y = a + b*i over index positions i = 0..n-1 and
// returns b.
func regressionSlope(points []Point) float64 {
	n := float64(len(points))
	var sumX, sumY, sumXY, sumXX float64
	for i, p := range points {
		x := float64(i)
		sumX += x
		sumY += p.Y
		sumXY += x * p.Y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateTrendInsufficientData(t *testing.T) {
	for _, points := range [][]Point{nil, {{X: "1", Y: 80}}} {
		result := CalculateTrend(points)
		assert.Equal(t, TrendStable, result.Direction)
		assert.Equal(t, 0.0, result.ChangePercentage)
		assert.Equal(t, SignificanceLow, result.Significance)
		assert.Equal(t, BasisInsufficientData, result.Basis)
	}
}

func TestCalculateTrendUpHighSignificance(t *testing.T) {
	points := []Point{
		{X: "2025-01-01", Y: 70},
		{X: "2025-02-01", Y: 73},
		{X: "2025-03-01", Y: 76},
		{X: "2025-04-01", Y: 79},
		{X: "2025-05-01", Y: 82},
	}

	result := CalculateTrend(points)
	assert.Equal(t, TrendUp, result.Direction)
	assert.Equal(t, SignificanceHigh, result.Significance)
	assert.InDelta(t, 17.14, result.ChangePercentage, 0.01)
	assert.Equal(t, BasisRegression, result.Basis)
}

func TestCalculateTrendDown(t *testing.T) {
	points := []Point{
		{X: "1", Y: 90},
		{X: "2", Y: 85},
		{X: "3", Y: 80},
	}

	result := CalculateTrend(points)
	assert.Equal(t, TrendDown, result.Direction)
	assert.Equal(t, SignificanceHigh, result.Significance)
	assert.InDelta(t, -11.11, result.ChangePercentage, 0.01)
}

func TestCalculateTrendStableSlope(t *testing.T) {
	points := []Point{
		{X: "1", Y: 80},
		{X: "2", Y: 80.1},
		{X: "3", Y: 80},
	}

	result := CalculateTrend(points)
	assert.Equal(t, TrendStable, result.Direction)
	assert.Equal(t, SignificanceLow, result.Significance)
}

func TestCalculateTrendNumericSortNotLexicographic(t *testing.T) {
	// "10" must sort after "9"; lexicographic order would invert the series.
	points := []Point{
		{X: "10", Y: 95},
		{X: "9", Y: 85},
		{X: "1", Y: 60},
		{X: "2", Y: 70},
	}

	result := CalculateTrend(points)
	assert.Equal(t, TrendUp, result.Direction)
	assert.InDelta(t, 58.33, result.ChangePercentage, 0.01)
}

func TestCalculateTrendZeroFirstValue(t *testing.T) {
	points := []Point{
		{X: "1", Y: 0},
		{X: "2", Y: 50},
	}

	result := CalculateTrend(points)
	assert.Equal(t, 0.0, result.ChangePercentage)
	assert.Equal(t, TrendUp, result.Direction)
}

func TestCalculateTrendMediumSignificance(t *testing.T) {
	points := []Point{
		{X: "1", Y: 80},
		{X: "2", Y: 82},
		{X: "3", Y: 85},
	}

	result := CalculateTrend(points)
	assert.Equal(t, TrendUp, result.Direction)
	assert.Equal(t, SignificanceMedium, result.Significance)
	assert.InDelta(t, 6.25, result.ChangePercentage, 0.01)
}

func TestCalculateTrendIdempotent(t *testing.T) {
	points := []Point{{X: "2", Y: 70}, {X: "1", Y: 60}}
	assert.Equal(t, CalculateTrend(points), CalculateTrend(points))
}

package detector

import (
	"fmt"
	"math"

	"sensor-anomaly-alerts/internal/stats"
)

// Trend detector tuning: slope cutoffs for direction classification and
// the normalized-deviation threshold for a trend break.
const (
	DefaultTrendWindow = 24
	trendSlopeCutoff   = 0.1
	trendThreshold     = 2.0
	trendScoreScale    = 4.0
	trendMinDataPoints = 3
)

// TrendDetector fits a least-squares line over the trailing window,
// extrapolates one step ahead, and flags readings that break the trend.
type TrendDetector struct {
	window int
}

// NewTrendDetector builds a detector; a non-positive window falls back to
// the default.
func NewTrendDetector(window int) *TrendDetector {
	if window <= 0 {
		window = DefaultTrendWindow
	}
	return &TrendDetector{window: window}
}

// Detect compares current against the linear extrapolation of the recent
// trend. Fewer than three history points yield a flagged non-anomaly.
func (d *TrendDetector) Detect(history []float64, current float64) TrendVerdict {
	if len(history) < trendMinDataPoints {
		return TrendVerdict{
			Verdict:     Verdict{Description: descNoTrendData},
			ActualValue: current,
		}
	}

	recent := history
	if len(recent) > d.window {
		recent = recent[len(recent)-d.window:]
	}

	trend := summarizeTrend(recent)

	slope, intercept := stats.LinearFit(recent)
	expected := slope*float64(len(recent)) + intercept

	deviation := math.Abs(current - expected)
	std := stats.PopStdDev(recent)

	normalized := 0.0
	if std > 0 {
		normalized = deviation / (std + normalizationEpsilon)
	}

	return TrendVerdict{
		Verdict: Verdict{
			IsAnomaly:   normalized > trendThreshold,
			Score:       stats.Clamp01(normalized / trendScoreScale),
			Description: fmt.Sprintf("trend %s: expected ~%.1f, got %.1f", trend.Direction, expected, current),
		},
		Trend:              trend,
		ExpectedValue:      expected,
		ActualValue:        current,
		DeviationFromTrend: deviation,
	}
}

// summarizeTrend extracts slope, direction, and (for three or more points)
// the quadratic acceleration coefficient.
func summarizeTrend(sequence []float64) TrendSummary {
	slope, _ := stats.LinearFit(sequence)

	acceleration := 0.0
	if len(sequence) >= trendMinDataPoints {
		acceleration, _, _ = stats.QuadraticFit(sequence)
	}

	direction := TrendStable
	switch {
	case slope > trendSlopeCutoff:
		direction = TrendIncreasing
	case slope < -trendSlopeCutoff:
		direction = TrendDecreasing
	}

	return TrendSummary{
		Direction:    direction,
		Slope:        slope,
		Acceleration: acceleration,
		FirstValue:   sequence[0],
		LastValue:    sequence[len(sequence)-1],
		TotalChange:  sequence[len(sequence)-1] - sequence[0],
	}
}

package detector

import (
	"fmt"

	"sensor-anomaly-alerts/internal/stats"
)

// Default tuning for the rolling z-score detector.
const (
	DefaultZScoreWindow    = 24
	DefaultZScoreThreshold = 2.0
)

// ZScoreDetector flags readings that deviate from the rolling-window mean
// by more than a configured number of sample standard deviations.
type ZScoreDetector struct {
	window    int
	threshold float64
}

// NewZScoreDetector builds a detector; non-positive arguments fall back to
// the defaults.
func NewZScoreDetector(window int, threshold float64) *ZScoreDetector {
	if window <= 0 {
		window = DefaultZScoreWindow
	}
	if threshold <= 0 {
		threshold = DefaultZScoreThreshold
	}
	return &ZScoreDetector{window: window, threshold: threshold}
}

// Detect scores current against the trailing window of history.
func (d *ZScoreDetector) Detect(history []float64, current float64) ZScoreVerdict {
	if len(history) < 2 {
		return ZScoreVerdict{
			Verdict: Verdict{Description: descInsufficientData},
		}
	}

	window := history
	if len(window) > d.window {
		window = window[len(window)-d.window:]
	}

	mean := stats.Mean(window)
	std := stats.SampleStdDev(window)
	z := stats.ZScore(current, mean, std)

	isAnomaly := z > d.threshold
	score := stats.Clamp01(z / (d.threshold * 2))
	deviation := current - mean

	var description string
	switch {
	case isAnomaly && deviation > 0:
		description = fmt.Sprintf("value %.1f is significantly higher than average %.1f", current, mean)
	case isAnomaly:
		description = fmt.Sprintf("value %.1f is significantly lower than average %.1f", current, mean)
	default:
		description = fmt.Sprintf("value %.1f is within normal range (avg %.1f, std %.1f)", current, mean, std)
	}

	return ZScoreVerdict{
		Verdict: Verdict{
			IsAnomaly:   isAnomaly,
			Score:       score,
			Description: description,
		},
		Deviation:  deviation,
		WindowMean: mean,
		WindowStd:  std,
	}
}

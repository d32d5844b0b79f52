package detector

import (
	"fmt"
	"sync"
	"time"

	"sensor-anomaly-alerts/internal/stats"
)

// Seasonal baseline tuning: a daily cycle with a stricter z threshold than
// the rolling detector, since hourly buckets carry less data.
const (
	seasonalThreshold  = 2.5
	seasonalScoreScale = 5.0
	hoursPerDay        = 24
)

// SeasonalDetector learns a per-hour-of-day baseline (mean and sample
// standard deviation) and flags readings that break the daily pattern.
// Train writes the buckets once; Detect only reads them.
type SeasonalDetector struct {
	mu    sync.RWMutex
	state TrainState
	means map[int]float64
	stds  map[int]float64
}

// NewSeasonalDetector builds an untrained detector.
func NewSeasonalDetector() *SeasonalDetector {
	return &SeasonalDetector{}
}

// State reports whether the detector holds fitted buckets.
func (d *SeasonalDetector) State() TrainState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Train buckets the readings by hour of day and fits per-bucket statistics.
func (d *SeasonalDetector) Train(samples []Reading) {
	buckets := make(map[int][]float64, hoursPerDay)
	for _, s := range samples {
		hour := s.Timestamp.Hour()
		buckets[hour] = append(buckets[hour], s.Value)
	}

	means := make(map[int]float64, len(buckets))
	stds := make(map[int]float64, len(buckets))
	for hour, values := range buckets {
		means[hour] = stats.Mean(values)
		stds[hour] = stats.SampleStdDev(values)
	}

	d.mu.Lock()
	d.means = means
	d.stds = stds
	d.state = Trained
	d.mu.Unlock()
}

// Detect checks current against the baseline of the timestamp's hour.
// Untrained models and hours without training data yield flagged
// non-anomalous verdicts.
func (d *SeasonalDetector) Detect(ts time.Time, current float64) SeasonalVerdict {
	d.mu.RLock()
	defer d.mu.RUnlock()

	hour := ts.Hour()
	if d.state != Trained {
		return SeasonalVerdict{
			Verdict: Verdict{Description: descNotTrained},
			State:   Untrained,
			Hour:    hour,
		}
	}

	mean, ok := d.means[hour]
	if !ok {
		return SeasonalVerdict{
			Verdict: Verdict{Description: descNoSeasonalData},
			State:   Trained,
			Hour:    hour,
		}
	}

	z := stats.ZScore(current, mean, d.stds[hour])
	return SeasonalVerdict{
		Verdict: Verdict{
			IsAnomaly:   z > seasonalThreshold,
			Score:       stats.Clamp01(z / seasonalScoreScale),
			Description: fmt.Sprintf("hour %d: expected %.1f, got %.1f", hour, mean, current),
		},
		State:                 Trained,
		Hour:                  hour,
		SeasonalMean:          mean,
		DeviationFromSeasonal: current - mean,
	}
}

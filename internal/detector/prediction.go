package detector

import (
	"fmt"
	"math"

	"sensor-anomaly-alerts/internal/stats"
)

// Prediction detector tuning. The smoothing factor is fixed: the predictor
// is a one-step exponential smoother seeded with the oldest window value.
const (
	DefaultSequenceLength      = 24
	DefaultPredictionThreshold = 2.0
	smoothingAlpha             = 0.3
)

// PredictionDetector predicts the next value by exponential smoothing over
// the trailing window and flags readings whose reconstruction error is
// large relative to the window's spread. The per-point attention weights
// are a diagnostic summary only; they do not alter the prediction.
type PredictionDetector struct {
	sequenceLength int
	threshold      float64
}

// NewPredictionDetector builds a detector; non-positive arguments fall
// back to the defaults.
func NewPredictionDetector(sequenceLength int, threshold float64) *PredictionDetector {
	if sequenceLength <= 0 {
		sequenceLength = DefaultSequenceLength
	}
	if threshold <= 0 {
		threshold = DefaultPredictionThreshold
	}
	return &PredictionDetector{sequenceLength: sequenceLength, threshold: threshold}
}

// Detect compares current against the smoothed one-step prediction.
func (d *PredictionDetector) Detect(history []float64, current float64) PredictionVerdict {
	if len(history) < 2 {
		return PredictionVerdict{
			Verdict:        Verdict{Description: descInsufficientData},
			PredictedValue: current,
			ActualValue:    current,
		}
	}

	sequence := history
	if len(sequence) > d.sequenceLength {
		sequence = sequence[len(sequence)-d.sequenceLength:]
	}

	attention := attentionWeights(sequence)
	predicted := predictNext(sequence)

	reconstructionError := math.Abs(current - predicted)
	std := stats.PopStdDev(sequence)

	normalizedError := 0.0
	if std > 0 {
		normalizedError = reconstructionError / (std + normalizationEpsilon)
	}

	isAnomaly := normalizedError > d.threshold
	score := stats.Clamp01(normalizedError / (d.threshold * 2))

	prevAvg := 0.0
	if len(attention) > 1 {
		prevAvg = stats.Mean(attention[:len(attention)-1])
	}

	return PredictionVerdict{
		Verdict: Verdict{
			IsAnomaly:   isAnomaly,
			Score:       score,
			Description: fmt.Sprintf("predicted %.1f, got %.1f, error %.2f", predicted, current, reconstructionError),
		},
		PredictedValue:      predicted,
		ActualValue:         current,
		ReconstructionError: reconstructionError,
		NormalizedError:     normalizedError,
		AttentionSummary:    fmt.Sprintf("last value weight: %.3f, previous avg: %.3f", attention[len(attention)-1], prevAvg),
	}
}

// attentionWeights gives each point a weight proportional to its
// normalized absolute deviation from the window mean. Unusual points
// weigh more. Degenerate windows get uniform weights.
func attentionWeights(sequence []float64) []float64 {
	if len(sequence) < 2 {
		weights := make([]float64, len(sequence))
		for i := range weights {
			weights[i] = 1
		}
		return weights
	}

	mean := stats.Mean(sequence)
	std := stats.PopStdDev(sequence)
	if std == 0 {
		weights := make([]float64, len(sequence))
		for i := range weights {
			weights[i] = 1
		}
		return weights
	}

	deviations := make([]float64, len(sequence))
	var sum float64
	for i, v := range sequence {
		deviations[i] = math.Abs((v - mean) / std)
		sum += deviations[i]
	}
	for i := range deviations {
		deviations[i] /= sum + normalizationEpsilon
	}
	return deviations
}

// predictNext runs exponential smoothing over the sequence, seeded with
// the first value.
func predictNext(sequence []float64) float64 {
	if len(sequence) == 0 {
		return 0
	}
	smoothed := sequence[0]
	for _, v := range sequence[1:] {
		smoothed = smoothingAlpha*v + (1-smoothingAlpha)*smoothed
	}
	return smoothed
}

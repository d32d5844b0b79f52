package detector

import "fmt"

// EnsembleDetector combines the prediction and trend detectors. Either
// sub-detector alone can flag an anomaly; the combined score is their
// average. ModelsAgree is a diagnostic distinct from the OR-combined
// verdict.
type EnsembleDetector struct {
	prediction *PredictionDetector
	trend      *TrendDetector
}

// NewEnsembleDetector wires both residual detectors with shared tuning.
func NewEnsembleDetector(window int, threshold float64) *EnsembleDetector {
	return &EnsembleDetector{
		prediction: NewPredictionDetector(window, threshold),
		trend:      NewTrendDetector(window),
	}
}

// Detect runs both sub-detectors and combines their verdicts.
func (d *EnsembleDetector) Detect(history []float64, current float64) EnsembleVerdict {
	prediction := d.prediction.Detect(history, current)
	trend := d.trend.Detect(history, current)

	combinedScore := (prediction.Score + trend.Score) / 2
	isAnomaly := prediction.IsAnomaly || trend.IsAnomaly

	return EnsembleVerdict{
		Verdict: Verdict{
			IsAnomaly:   isAnomaly,
			Score:       combinedScore,
			Description: fmt.Sprintf("ensemble detection: anomaly=%t, confidence=%.2f", isAnomaly, combinedScore),
		},
		PredictionScore: prediction.Score,
		TrendScore:      trend.Score,
		ModelsAgree:     prediction.IsAnomaly == trend.IsAnomaly,
		Prediction:      prediction,
		Trend:           trend,
	}
}

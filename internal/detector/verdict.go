// Package detector implements the anomaly detection suites: classical
// statistical detectors (rolling z-score, isolation forest, hour-of-day
// seasonal baseline) and residual-prediction detectors (exponential
// smoothing predictor, trend extrapolation) with their ensemble and the
// classical-vs-ensemble consensus.
//
// Every detector is a pure function of its inputs; only the isolation
// forest and the seasonal baseline hold fitted state, written once by
// Train and guarded by a read-write lock. Degenerate inputs (too little
// history, untrained models, zero variance) always yield a conservative
// non-anomalous verdict, never an error.
package detector

import "time"

// Reading is one timestamped scalar sample from a sensor.
type Reading struct {
	Timestamp time.Time
	Value     float64
}

// Values extracts the value sequence of a reading series in order.
func Values(readings []Reading) []float64 {
	out := make([]float64, len(readings))
	for i, r := range readings {
		out[i] = r.Value
	}
	return out
}

// TrainState reports whether a trainable detector holds a fitted model.
type TrainState int

const (
	// Untrained marks a detector that has not seen a successful Train call.
	Untrained TrainState = iota
	// Trained marks a detector with fitted state ready for inference.
	Trained
)

// String renders the state for logs and reports.
func (s TrainState) String() string {
	if s == Trained {
		return "trained"
	}
	return "untrained"
}

// Verdict is the base result shared by all detectors.
type Verdict struct {
	IsAnomaly   bool
	Score       float64
	Description string
}

// Shared verdict descriptions for degenerate inputs.
const (
	descInsufficientData = "not enough data for analysis"
	descNotTrained       = "model not trained"
	descNoSeasonalData   = "no seasonal data for this hour"
	descNoTrendData      = "not enough data for trend analysis"
)

// ZScoreVerdict extends the base verdict with rolling-window statistics.
type ZScoreVerdict struct {
	Verdict
	Deviation  float64
	WindowMean float64
	WindowStd  float64
}

// ForestVerdict is the isolation forest result.
type ForestVerdict struct {
	Verdict
	State    TrainState
	RawScore float64
}

// SeasonalVerdict is the hour-of-day baseline result.
type SeasonalVerdict struct {
	Verdict
	State                 TrainState
	Hour                  int
	SeasonalMean          float64
	DeviationFromSeasonal float64
}

// PredictionVerdict is the residual-prediction result.
type PredictionVerdict struct {
	Verdict
	PredictedValue      float64
	ActualValue         float64
	ReconstructionError float64
	NormalizedError     float64
	AttentionSummary    string
}

// TrendDirection classifies the fitted slope.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// TrendSummary describes the fitted trend over the analysis window.
type TrendSummary struct {
	Direction    TrendDirection
	Slope        float64
	Acceleration float64
	FirstValue   float64
	LastValue    float64
	TotalChange  float64
}

// TrendVerdict is the trend-extrapolation result.
type TrendVerdict struct {
	Verdict
	Trend              TrendSummary
	ExpectedValue      float64
	ActualValue        float64
	DeviationFromTrend float64
}

// EnsembleVerdict combines the prediction and trend detectors.
type EnsembleVerdict struct {
	Verdict
	PredictionScore float64
	TrendScore      float64
	ModelsAgree     bool
	Prediction      PredictionVerdict
	Trend           TrendVerdict
}

// ConsensusResult reconciles a classical verdict with the ensemble verdict.
// It is the audit unit callers persist for classical-vs-prediction
// comparison history.
type ConsensusResult struct {
	ModelsAgree        bool
	ConsensusIsAnomaly bool
	AgreementScore     float64
}

// Package analyzer orchestrates the detection pipeline for one sensor:
// classical detectors, the residual ensemble, the consensus between the
// two families, and the synthesized recommendation.
package analyzer

import (
	"time"

	"github.com/rs/zerolog"

	"sensor-anomaly-alerts/internal/detector"
	"sensor-anomaly-alerts/internal/recommend"
)

// Options tune the detector suites.
type Options struct {
	Window              int
	ZScoreThreshold     float64
	PredictionThreshold float64
	Contamination       float64
	MinTrainingSamples  int
}

// Input is one sensor's reading plus the context needed to analyze it.
// History is ordered oldest first and must not include Current.
type Input struct {
	SensorName string
	SensorType string
	RoomType   string
	History    []detector.Reading
	Current    detector.Reading
}

// Report is the complete analysis of one reading. Every field is always
// populated; a quiet reading produces a no-action recommendation rather
// than an absent one.
type Report struct {
	SensorName     string
	AnalyzedAt     time.Time
	Classical      detector.ZScoreVerdict
	Seasonal       detector.SeasonalVerdict
	Forest         detector.ForestVerdict
	Ensemble       detector.EnsembleVerdict
	Consensus      detector.ConsensusResult
	Recommendation recommend.Recommendation
}

// Anomalous reports whether any detector family flagged the reading.
func (r Report) Anomalous() bool {
	return r.Classical.IsAnomaly || r.Ensemble.IsAnomaly
}

// Analyzer owns one sensor's detector suite. The z-score, prediction, and
// trend detectors are stateless; the isolation forest and seasonal
// baseline keep fitted state behind their own locks, so a single Analyzer
// may be shared across goroutines.
type Analyzer struct {
	minTraining int
	zscore      *detector.ZScoreDetector
	seasonal    *detector.SeasonalDetector
	forest      *detector.IsolationForestDetector
	ensemble    *detector.EnsembleDetector
	engine      *recommend.Engine
	logger      zerolog.Logger
}

// New wires a full detector suite and recommendation engine.
func New(opts Options, profiles recommend.ProfileTable, logger zerolog.Logger) *Analyzer {
	minTraining := opts.MinTrainingSamples
	if minTraining <= 0 {
		minTraining = 10
	}
	return &Analyzer{
		minTraining: minTraining,
		zscore:      detector.NewZScoreDetector(opts.Window, opts.ZScoreThreshold),
		seasonal:    detector.NewSeasonalDetector(),
		forest:      detector.NewIsolationForest(opts.Contamination, logger),
		ensemble:    detector.NewEnsembleDetector(opts.Window, opts.PredictionThreshold),
		engine:      recommend.NewEngine(profiles, logger),
		logger:      logger.With().Str("component", "analyzer").Logger(),
	}
}

// Trained reports whether the trainable detectors hold fitted state.
func (a *Analyzer) Trained() bool {
	return a.forest.State() == detector.Trained && a.seasonal.State() == detector.Trained
}

// Train fits the isolation forest and the seasonal baseline from history.
// Too little history leaves the detectors untrained; that is not an error.
func (a *Analyzer) Train(history []detector.Reading) {
	if len(history) < a.minTraining {
		a.logger.Debug().Int("samples", len(history)).Int("required", a.minTraining).
			Msg("skipping training, not enough history")
		return
	}

	vectors := make([][]float64, len(history))
	for i, r := range history {
		vectors[i] = []float64{r.Value}
	}
	a.forest.Train(vectors)
	a.seasonal.Train(history)
	a.logger.Info().Int("samples", len(history)).Msg("trainable detectors fitted")
}

// Analyze runs the full pipeline over one reading and returns a complete
// report. It never fails: degenerate inputs surface as conservative
// verdicts inside the report.
func (a *Analyzer) Analyze(in Input) Report {
	values := detector.Values(in.History)

	classical := a.zscore.Detect(values, in.Current.Value)
	seasonal := a.seasonal.Detect(in.Current.Timestamp, in.Current.Value)
	forest := a.forest.Detect([]float64{in.Current.Value})
	ensemble := a.ensemble.Detect(values, in.Current.Value)
	consensus := detector.Reconcile(classical.Verdict, ensemble.Verdict)

	// The triggering verdict drives the recommendation's confidence: the
	// classical one when it fired, otherwise the ensemble's.
	trigger := classical.Verdict
	if !classical.IsAnomaly {
		trigger = ensemble.Verdict
	}

	recommendation := a.engine.Generate(
		in.SensorName, in.SensorType, in.Current.Value,
		trigger, in.RoomType, values,
	)

	report := Report{
		SensorName:     in.SensorName,
		AnalyzedAt:     time.Now().UTC(),
		Classical:      classical,
		Seasonal:       seasonal,
		Forest:         forest,
		Ensemble:       ensemble,
		Consensus:      consensus,
		Recommendation: recommendation,
	}

	a.logger.Debug().
		Str("sensor", in.SensorName).
		Bool("classical", classical.IsAnomaly).
		Bool("ensemble", ensemble.IsAnomaly).
		Bool("consensus", consensus.ConsensusIsAnomaly).
		Float64("agreement", consensus.AgreementScore).
		Msg("reading analyzed")

	return report
}

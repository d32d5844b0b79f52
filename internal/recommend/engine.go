package recommend

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"sensor-anomaly-alerts/internal/detector"
	"sensor-anomaly-alerts/internal/stats"
)

// Condensation becomes likely above this relative humidity.
const condensationHumidity = 80.0

// Recommendation is a synthesized corrective action for one sensor. A
// non-anomalous reading still produces a complete recommendation with a
// "no action required" action; callers never receive a nil result.
type Recommendation struct {
	SensorName            string
	SensorKind            SensorKind
	RoomType              string
	Problem               string
	Action                string
	Reasoning             string
	TargetValue           float64
	CurrentValue          float64
	Confidence            float64
	Severity              Severity
	Priority              int
	CondensationRisk      bool
	EstimatedTimeToNormal string
}

// Engine synthesizes recommendations from detector verdicts and room
// profiles. The profile table is fixed at construction and never mutated.
type Engine struct {
	profiles ProfileTable
	logger   zerolog.Logger
}

// NewEngine builds an engine over a validated profile table.
func NewEngine(profiles ProfileTable, logger zerolog.Logger) *Engine {
	return &Engine{
		profiles: profiles,
		logger:   logger.With().Str("component", "recommend").Logger(),
	}
}

// Generate builds a recommendation for one reading. The verdict supplies
// the confidence; the room profile supplies ranges and targets. Unknown
// room types fall back to the office archetype, unknown sensor kinds to a
// generic investigate path.
func (e *Engine) Generate(sensorName, sensorType string, current float64, verdict detector.Verdict, roomType string, history []float64) Recommendation {
	profile := e.profiles.Lookup(roomType)
	kind := ParseSensorKind(sensorType)

	switch kind {
	case KindTemperature:
		return e.rangeRecommendation(sensorName, kind, roomType, current, verdict, history,
			profile.Temperature, profile.TemperatureTarget, temperatureTexts{})
	case KindHumidity:
		rec := e.rangeRecommendation(sensorName, kind, roomType, current, verdict, history,
			profile.Humidity, profile.HumidityTarget, humidityTexts{})
		rec.CondensationRisk = current > condensationHumidity
		return rec
	default:
		return e.genericRecommendation(sensorName, sensorType, roomType, current, verdict)
	}
}

// kindTexts supplies the per-kind problem/action/reasoning wording.
type kindTexts interface {
	problem(current, limit float64, high bool) string
	action(high bool) string
	reasoning(diff float64, high bool) string
	inRange(current float64) (problem, action, reasoning string)
}

func (e *Engine) rangeRecommendation(sensorName string, kind SensorKind, roomType string, current float64, verdict detector.Verdict, history []float64, normal Range, target float64, texts kindTexts) Recommendation {
	rec := Recommendation{
		SensorName:   sensorName,
		SensorKind:   kind,
		RoomType:     roomType,
		CurrentValue: current,
		Confidence:   stats.Clamp01(verdict.Score),
	}

	switch {
	case current > normal.Max:
		deviation := current - normal.Max
		rec.Severity = severityFor(deviation, normal.Width())
		rec.Problem = texts.problem(current, normal.Max, true)
		rec.Action = texts.action(true)
		rec.Reasoning = texts.reasoning(deviation, true)
		rec.TargetValue = roundTenth(target)
	case current < normal.Min:
		deviation := normal.Min - current
		rec.Severity = severityFor(deviation, normal.Width())
		rec.Problem = texts.problem(current, normal.Min, false)
		rec.Action = texts.action(false)
		rec.Reasoning = texts.reasoning(deviation, false)
		rec.TargetValue = roundTenth(target)
	default:
		rec.Severity = SeverityLow
		problem, action, reasoning := texts.inRange(current)
		rec.Problem = problem
		rec.Action = action
		rec.Reasoning = reasoning
		rec.TargetValue = current
	}

	rec.Priority = rec.Severity.Priority()
	rec.EstimatedTimeToNormal = estimateTimeToTarget(current, rec.TargetValue, history)
	return rec
}

func (e *Engine) genericRecommendation(sensorName, sensorType, roomType string, current float64, verdict detector.Verdict) Recommendation {
	score := stats.Clamp01(verdict.Score)

	severity := SeverityLow
	switch {
	case score > 0.7:
		severity = SeverityHigh
	case score > 0.5:
		severity = SeverityMedium
	}

	return Recommendation{
		SensorName:            sensorName,
		SensorKind:            KindUnknown,
		RoomType:              roomType,
		Problem:               fmt.Sprintf("anomaly detected in %s: %g", sensorType, current),
		Action:                fmt.Sprintf("check %s sensor and investigate the anomaly", sensorName),
		Reasoning:             fmt.Sprintf("anomaly score: %.2f", score),
		TargetValue:           current,
		CurrentValue:          current,
		Confidence:            score,
		Severity:              severity,
		Priority:              severity.Priority(),
		EstimatedTimeToNormal: "unknown (insufficient data)",
	}
}

// BatchItem is one sensor's reading plus its detection verdict.
type BatchItem struct {
	SensorName   string
	SensorType   string
	RoomType     string
	CurrentValue float64
	Verdict      detector.Verdict
	History      []float64
}

// GenerateBatch builds one recommendation per anomalous item and returns
// them ordered by descending priority. Ties keep their input order.
func (e *Engine) GenerateBatch(items []BatchItem) []Recommendation {
	recommendations := make([]Recommendation, 0, len(items))
	for _, item := range items {
		if !item.Verdict.IsAnomaly {
			continue
		}
		recommendations = append(recommendations, e.Generate(
			item.SensorName, item.SensorType, item.CurrentValue,
			item.Verdict, item.RoomType, item.History,
		))
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Priority > recommendations[j].Priority
	})

	e.logger.Debug().Int("sensors", len(items)).Int("recommendations", len(recommendations)).
		Msg("batch recommendations generated")
	return recommendations
}

// severityFor bands the deviation relative to half the normal-range width.
// The band edges are inclusive: exactly 1.5x half-width is already high.
func severityFor(deviation, rangeWidth float64) Severity {
	relative := deviation / (rangeWidth / 2)
	switch {
	case relative >= 2.0:
		return SeverityCritical
	case relative >= 1.5:
		return SeverityHigh
	case relative >= 1.0:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// estimateTimeToTarget projects how long the value needs to reach the
// target at the most recent rate of change.
func estimateTimeToTarget(current, target float64, history []float64) string {
	if len(history) < 2 {
		return "unknown (insufficient data)"
	}

	rate := math.Abs(history[len(history)-1] - history[len(history)-2])
	if rate == 0 {
		return "unable to estimate (no change rate)"
	}

	hours := math.Abs(current-target) / rate
	switch {
	case hours < 1:
		return fmt.Sprintf("~%d minutes", int(hours*60))
	case hours < 24:
		return fmt.Sprintf("~%d hours", int(hours))
	default:
		return fmt.Sprintf("~%d days", int(hours/24))
	}
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

package detector

import (
	"math"

	"sensor-anomaly-alerts/internal/stats"
)

// Reconcile combines one classical verdict and one ensemble verdict into a
// consensus. The consensus anomaly flag is the logical AND of both
// families, stricter than either family's internal combination. The
// agreement score blends score proximity with flag agreement, half each.
func Reconcile(classical, ensemble Verdict) ConsensusResult {
	agree := classical.IsAnomaly == ensemble.IsAnomaly

	agreement := 0.5 * (1 - math.Abs(classical.Score-ensemble.Score))
	if agree {
		agreement += 0.5
	}

	return ConsensusResult{
		ModelsAgree:        agree,
		ConsensusIsAnomaly: classical.IsAnomaly && ensemble.IsAnomaly,
		AgreementScore:     stats.Clamp01(agreement),
	}
}

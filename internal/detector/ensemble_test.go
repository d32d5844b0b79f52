package detector

import (
	"testing"
)

func TestEnsembleFlagsWhenEitherFires(t *testing.T) {
	d := NewEnsembleDetector(24, 2.0)

	// 25 breaks both the linear trend and the smoothed prediction of a
	// 1..10 ramp.
	verdict := d.Detect(ramp(10), 25)
	if !verdict.IsAnomaly {
		t.Fatalf("either sub-detector firing should flag the ensemble: %+v", verdict)
	}
	if !verdict.Prediction.IsAnomaly && !verdict.Trend.IsAnomaly {
		t.Fatal("ensemble anomaly without a firing sub-detector")
	}
}

func TestEnsembleQuietOnNormalReading(t *testing.T) {
	d := NewEnsembleDetector(24, 2.0)

	verdict := d.Detect(stableHistory(24), 20.0)
	if verdict.IsAnomaly {
		t.Fatalf("stable series should be quiet: %+v", verdict)
	}
	if !verdict.ModelsAgree {
		t.Fatal("two quiet sub-detectors should agree")
	}
}

func TestEnsembleScoreIsAverage(t *testing.T) {
	d := NewEnsembleDetector(24, 2.0)

	verdict := d.Detect(ramp(10), 25)
	want := (verdict.PredictionScore + verdict.TrendScore) / 2
	if verdict.Score != want {
		t.Fatalf("score should average the sub-detectors: got %v want %v", verdict.Score, want)
	}
}

func TestEnsembleAgreementMirrorsFlags(t *testing.T) {
	d := NewEnsembleDetector(24, 2.0)

	verdict := d.Detect(ramp(10), 25)
	if verdict.ModelsAgree != (verdict.Prediction.IsAnomaly == verdict.Trend.IsAnomaly) {
		t.Fatalf("agreement flag inconsistent: %+v", verdict)
	}
}

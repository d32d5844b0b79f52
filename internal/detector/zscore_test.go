package detector

import (
	"testing"
)

// stableHistory returns n readings alternating tightly around 20.0 so the
// window has a small but non-zero spread.
func stableHistory(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		if i%2 == 0 {
			values[i] = 19.9
		} else {
			values[i] = 20.1
		}
	}
	return values
}

func TestZScoreFlagsLargeDeviation(t *testing.T) {
	d := NewZScoreDetector(24, 2.0)

	verdict := d.Detect(stableHistory(24), 30.0)
	if !verdict.IsAnomaly {
		t.Fatalf("30.0 against a stable 20.0 window should be anomalous: %+v", verdict)
	}
	if verdict.Score != 1.0 {
		t.Fatalf("extreme deviation should saturate the score at 1, got %v", verdict.Score)
	}
	if verdict.Deviation <= 0 {
		t.Fatalf("deviation should be positive, got %v", verdict.Deviation)
	}
}

func TestZScoreAcceptsInRangeValue(t *testing.T) {
	d := NewZScoreDetector(24, 2.0)

	verdict := d.Detect(stableHistory(24), 20.1)
	if verdict.IsAnomaly {
		t.Fatalf("20.1 against a stable 20.0 window should be normal: %+v", verdict)
	}
	if verdict.Score < 0 || verdict.Score > 1 {
		t.Fatalf("score must stay in [0,1], got %v", verdict.Score)
	}
}

func TestZScoreInsufficientHistory(t *testing.T) {
	d := NewZScoreDetector(24, 2.0)

	verdict := d.Detect([]float64{20.0}, 35.0)
	if verdict.IsAnomaly {
		t.Fatal("one history point must not produce an anomaly")
	}
	if verdict.Score != 0 {
		t.Fatalf("insufficient data should score 0, got %v", verdict.Score)
	}
	if verdict.Description != "not enough data for analysis" {
		t.Fatalf("unexpected description: %q", verdict.Description)
	}
}

func TestZScoreZeroVarianceIsConservative(t *testing.T) {
	d := NewZScoreDetector(24, 2.0)

	flat := make([]float64, 24)
	for i := range flat {
		flat[i] = 20.0
	}

	verdict := d.Detect(flat, 25.0)
	if verdict.IsAnomaly {
		t.Fatal("zero-variance window must not flag an anomaly")
	}
	if verdict.Score != 0 {
		t.Fatalf("zero-variance window should score 0, got %v", verdict.Score)
	}
}

func TestZScoreUsesTrailingWindowOnly(t *testing.T) {
	d := NewZScoreDetector(4, 2.0)

	// Old extreme values fall outside the window and must not matter.
	history := append([]float64{100, 100, 100}, stableHistory(8)...)

	verdict := d.Detect(history, 20.0)
	if verdict.IsAnomaly {
		t.Fatalf("values outside the window should be ignored: %+v", verdict)
	}
	if verdict.WindowMean < 19 || verdict.WindowMean > 21 {
		t.Fatalf("window mean should reflect the trailing values, got %v", verdict.WindowMean)
	}
}

func TestZScoreScoreGrowsWithDeviation(t *testing.T) {
	d := NewZScoreDetector(24, 2.0)
	history := stableHistory(24)

	near := d.Detect(history, 20.3)
	far := d.Detect(history, 21.0)
	if far.Score <= near.Score {
		t.Fatalf("larger deviation should score higher: near=%v far=%v", near.Score, far.Score)
	}
}

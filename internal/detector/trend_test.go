package detector

import (
	"testing"
)

func ramp(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i + 1)
	}
	return values
}

func TestTrendInsufficientHistory(t *testing.T) {
	d := NewTrendDetector(24)

	verdict := d.Detect([]float64{1, 2}, 100)
	if verdict.IsAnomaly {
		t.Fatal("two history points must not produce an anomaly")
	}
	if verdict.Description != "not enough data for trend analysis" {
		t.Fatalf("unexpected description: %q", verdict.Description)
	}
}

func TestTrendFollowingValueIsNormal(t *testing.T) {
	d := NewTrendDetector(24)

	// y = x+1 over x=0..9 extrapolates to 11 at x=10.
	verdict := d.Detect(ramp(10), 11)
	if verdict.IsAnomaly {
		t.Fatalf("continuing the trend should be normal: %+v", verdict)
	}
	if verdict.Trend.Direction != TrendIncreasing {
		t.Fatalf("direction should be increasing, got %v", verdict.Trend.Direction)
	}
	if verdict.ExpectedValue != 11 {
		t.Fatalf("expected extrapolation 11, got %v", verdict.ExpectedValue)
	}
}

func TestTrendFlagsBreak(t *testing.T) {
	d := NewTrendDetector(24)

	verdict := d.Detect(ramp(10), 25)
	if !verdict.IsAnomaly {
		t.Fatalf("25 against an extrapolated 11 should break the trend: %+v", verdict)
	}
	if verdict.DeviationFromTrend != 14 {
		t.Fatalf("deviation should be 14, got %v", verdict.DeviationFromTrend)
	}
}

func TestTrendDirections(t *testing.T) {
	d := NewTrendDetector(24)

	decreasing := []float64{10, 8, 6, 4, 2}
	if got := d.Detect(decreasing, 0).Trend.Direction; got != TrendDecreasing {
		t.Fatalf("direction should be decreasing, got %v", got)
	}

	flat := []float64{5, 5.01, 4.99, 5, 5.02}
	if got := d.Detect(flat, 5).Trend.Direction; got != TrendStable {
		t.Fatalf("near-zero slope should be stable, got %v", got)
	}
}

func TestTrendSummaryTotals(t *testing.T) {
	d := NewTrendDetector(24)

	verdict := d.Detect(ramp(10), 11)
	if verdict.Trend.FirstValue != 1 || verdict.Trend.LastValue != 10 {
		t.Fatalf("summary endpoints wrong: %+v", verdict.Trend)
	}
	if verdict.Trend.TotalChange != 9 {
		t.Fatalf("total change should be 9, got %v", verdict.Trend.TotalChange)
	}
}

package detector

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// clusterSamples produces distinct single-feature vectors tightly grouped
// around 20.
func clusterSamples(n int) [][]float64 {
	samples := make([][]float64, n)
	for i := range samples {
		samples[i] = []float64{20.0 + 0.5*math.Sin(float64(i))}
	}
	return samples
}

func TestForestUntrainedDetect(t *testing.T) {
	d := NewIsolationForest(0.1, testLogger())

	verdict := d.Detect([]float64{100})
	if verdict.IsAnomaly {
		t.Fatal("untrained forest must not flag anomalies")
	}
	if verdict.State != Untrained {
		t.Fatalf("state should be untrained, got %v", verdict.State)
	}
	if verdict.Description != "model not trained" {
		t.Fatalf("unexpected description: %q", verdict.Description)
	}
}

func TestForestRefusesTinyTrainingSet(t *testing.T) {
	d := NewIsolationForest(0.1, testLogger())

	d.Train(clusterSamples(5))
	if d.State() != Untrained {
		t.Fatal("fewer than ten samples must leave the forest untrained")
	}
}

func TestForestFlagsOutlier(t *testing.T) {
	d := NewIsolationForest(0.1, testLogger())
	d.Train(clusterSamples(50))

	if d.State() != Trained {
		t.Fatal("fifty samples should train the forest")
	}

	outlier := d.Detect([]float64{100})
	if !outlier.IsAnomaly {
		t.Fatalf("far outlier should be isolated: %+v", outlier)
	}

	inlier := d.Detect([]float64{20.2})
	if outlier.RawScore <= inlier.RawScore {
		t.Fatalf("outlier must isolate faster than inlier: outlier=%v inlier=%v",
			outlier.RawScore, inlier.RawScore)
	}
}

func TestForestScoreBounds(t *testing.T) {
	d := NewIsolationForest(0.1, testLogger())
	d.Train(clusterSamples(50))

	for _, v := range []float64{-50, 0, 20, 20.3, 500} {
		verdict := d.Detect([]float64{v})
		if verdict.Score < 0 || verdict.Score > 1 {
			t.Fatalf("score for %v out of [0,1]: %v", v, verdict.Score)
		}
	}
}

func TestForestTrainingIsDeterministic(t *testing.T) {
	a := NewIsolationForest(0.1, testLogger())
	b := NewIsolationForest(0.1, testLogger())
	a.Train(clusterSamples(50))
	b.Train(clusterSamples(50))

	va := a.Detect([]float64{42})
	vb := b.Detect([]float64{42})
	if va.RawScore != vb.RawScore {
		t.Fatalf("fixed seed should make training deterministic: %v vs %v", va.RawScore, vb.RawScore)
	}
	if va.IsAnomaly != vb.IsAnomaly {
		t.Fatal("fixed seed should make labels deterministic")
	}
}

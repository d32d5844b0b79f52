package detector

import (
	"testing"
	"time"
)

func readingsAtHour(hour int, values ...float64) []Reading {
	readings := make([]Reading, len(values))
	for i, v := range values {
		readings[i] = Reading{
			Timestamp: time.Date(2026, time.March, 1+i, hour, 0, 0, 0, time.UTC),
			Value:     v,
		}
	}
	return readings
}

func TestSeasonalUntrainedDetect(t *testing.T) {
	d := NewSeasonalDetector()

	verdict := d.Detect(time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC), 30)
	if verdict.IsAnomaly {
		t.Fatal("untrained detector must not flag anomalies")
	}
	if verdict.Description != "model not trained" {
		t.Fatalf("unexpected description: %q", verdict.Description)
	}
}

func TestSeasonalMissingHourBucket(t *testing.T) {
	d := NewSeasonalDetector()
	d.Train(readingsAtHour(10, 19.8, 20.0, 20.2))

	verdict := d.Detect(time.Date(2026, time.March, 1, 11, 0, 0, 0, time.UTC), 20.0)
	if verdict.IsAnomaly {
		t.Fatal("an hour without training data must not flag anomalies")
	}
	if verdict.Description != "no seasonal data for this hour" {
		t.Fatalf("unexpected description: %q", verdict.Description)
	}
	if verdict.Hour != 11 {
		t.Fatalf("verdict should carry the hour, got %d", verdict.Hour)
	}
}

func TestSeasonalFlagsPatternBreak(t *testing.T) {
	d := NewSeasonalDetector()
	d.Train(readingsAtHour(10, 19.8, 20.0, 20.2))

	ts := time.Date(2026, time.March, 5, 10, 30, 0, 0, time.UTC)

	broken := d.Detect(ts, 22.0)
	if !broken.IsAnomaly {
		t.Fatalf("22.0 against an hour-10 baseline of 20.0 should break the pattern: %+v", broken)
	}
	if broken.SeasonalMean != 20.0 {
		t.Fatalf("seasonal mean should be 20.0, got %v", broken.SeasonalMean)
	}
	if broken.DeviationFromSeasonal != 2.0 {
		t.Fatalf("deviation should be 2.0, got %v", broken.DeviationFromSeasonal)
	}

	quiet := d.Detect(ts, 20.1)
	if quiet.IsAnomaly {
		t.Fatalf("20.1 should match the hourly baseline: %+v", quiet)
	}
}

func TestSeasonalStateTransition(t *testing.T) {
	d := NewSeasonalDetector()
	if d.State() != Untrained {
		t.Fatal("fresh detector should be untrained")
	}
	d.Train(readingsAtHour(3, 20, 21))
	if d.State() != Trained {
		t.Fatal("training should transition the state")
	}
}

package simulator

import (
	"testing"

	"github.com/rs/zerolog"

	"sensor-anomaly-alerts/internal/recommend"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestNextValueStaysInRangeWithoutSpikes(t *testing.T) {
	sim := New(Options{
		Seed:           1,
		TemperatureMin: 18,
		TemperatureMax: 22,
		HumidityMin:    50,
		HumidityMax:    60,
	}, testLogger())

	for i := 0; i < 200; i++ {
		temp := sim.NextValue(recommend.KindTemperature)
		if temp < 18 || temp > 22 {
			t.Fatalf("temperature %v escaped the configured range", temp)
		}
		hum := sim.NextValue(recommend.KindHumidity)
		if hum < 50 || hum > 60 {
			t.Fatalf("humidity %v escaped the configured range", hum)
		}
	}
}

func TestNextValueAlwaysSpikesAtProbabilityOne(t *testing.T) {
	sim := New(Options{
		Seed:             1,
		SpikeProbability: 1.0,
		TemperatureMin:   18,
		TemperatureMax:   22,
	}, testLogger())

	for i := 0; i < 50; i++ {
		if v := sim.NextValue(recommend.KindTemperature); v <= 22 {
			t.Fatalf("spike should exceed the range maximum, got %v", v)
		}
	}
}

func TestNextBaselineNeverSpikes(t *testing.T) {
	sim := New(Options{
		Seed:             1,
		SpikeProbability: 1.0,
		TemperatureMin:   18,
		TemperatureMax:   22,
	}, testLogger())

	for i := 0; i < 200; i++ {
		if v := sim.NextBaseline(recommend.KindTemperature); v < 18 || v > 22 {
			t.Fatalf("baseline %v escaped the configured range", v)
		}
	}
}

func TestSeedMakesSequencesReproducible(t *testing.T) {
	opts := Options{Seed: 42, TemperatureMin: 18, TemperatureMax: 22}
	a := New(opts, testLogger())
	b := New(opts, testLogger())

	for i := 0; i < 20; i++ {
		va := a.NextValue(recommend.KindTemperature)
		vb := b.NextValue(recommend.KindTemperature)
		if va != vb {
			t.Fatalf("same seed should reproduce the sequence: %v vs %v at step %d", va, vb, i)
		}
	}
}

func TestInvalidRangesFallBackToDefaults(t *testing.T) {
	sim := New(Options{Seed: 1, TemperatureMin: 30, TemperatureMax: 10}, testLogger())

	for i := 0; i < 50; i++ {
		if v := sim.NextValue(recommend.KindTemperature); v < 18 || v > 22 {
			t.Fatalf("fallback range should be 18-22, got %v", v)
		}
	}
}

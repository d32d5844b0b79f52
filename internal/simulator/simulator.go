// Package simulator synthesizes sensor readings so the pipeline can run
// without physical hardware attached.
package simulator

import (
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"sensor-anomaly-alerts/internal/recommend"
)

// Options tune the generated value ranges and the spike injection rate.
type Options struct {
	Seed             int64
	SpikeProbability float64
	TemperatureMin   float64
	TemperatureMax   float64
	HumidityMin      float64
	HumidityMax      float64
}

// Simulator produces uniformly distributed readings per sensor kind, with
// an occasional out-of-range spike so the detectors have something to find.
type Simulator struct {
	opts   Options
	rng    *rand.Rand
	logger zerolog.Logger
}

// New builds a simulator. A zero seed derives one from the clock; defaults
// mirror a mild indoor climate (20°C ± 2, 55% ± 5).
func New(opts Options, logger zerolog.Logger) *Simulator {
	if opts.TemperatureMax <= opts.TemperatureMin {
		opts.TemperatureMin, opts.TemperatureMax = 18.0, 22.0
	}
	if opts.HumidityMax <= opts.HumidityMin {
		opts.HumidityMin, opts.HumidityMax = 50.0, 60.0
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		opts:   opts,
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger.With().Str("component", "simulator").Logger(),
	}
}

// NextValue generates one reading for the given sensor kind, rounded to
// one decimal place.
func (s *Simulator) NextValue(kind recommend.SensorKind) float64 {
	lo, hi := s.bounds(kind)
	value := lo + s.rng.Float64()*(hi-lo)

	if s.opts.SpikeProbability > 0 && s.rng.Float64() < s.opts.SpikeProbability {
		spike := hi + (hi-lo) + s.rng.Float64()*(hi-lo)
		s.logger.Debug().Str("kind", string(kind)).Float64("value", spike).Msg("injecting spike")
		value = spike
	}

	return roundTenth(value)
}

// NextBaseline generates an in-range reading with spike injection
// suppressed, for seeding training history.
func (s *Simulator) NextBaseline(kind recommend.SensorKind) float64 {
	lo, hi := s.bounds(kind)
	return roundTenth(lo + s.rng.Float64()*(hi-lo))
}

func (s *Simulator) bounds(kind recommend.SensorKind) (float64, float64) {
	if kind == recommend.KindHumidity {
		return s.opts.HumidityMin, s.opts.HumidityMax
	}
	return s.opts.TemperatureMin, s.opts.TemperatureMax
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

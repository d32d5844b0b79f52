// Package recommend turns confirmed anomalies into prioritized corrective
// recommendations based on static room profiles.
package recommend

import (
	"fmt"
	"strings"
)

// SensorKind classifies the measured quantity.
type SensorKind string

const (
	KindTemperature SensorKind = "temperature"
	KindHumidity    SensorKind = "humidity"
	KindUnknown     SensorKind = "unknown"
)

// ParseSensorKind maps free-form sensor type strings to a kind. Anything
// that does not mention temperature or humidity is treated generically.
func ParseSensorKind(sensorType string) SensorKind {
	lower := strings.ToLower(sensorType)
	switch {
	case strings.Contains(lower, "temperature"):
		return KindTemperature
	case strings.Contains(lower, "humidity"):
		return KindHumidity
	default:
		return KindUnknown
	}
}

// Severity grades how far a reading deviates from its acceptable range.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Priority maps a severity to its 1-5 priority. The map deliberately skips
// 3; unknown severities land there.
func (s Severity) Priority() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 4
	case SeverityCritical:
		return 5
	default:
		return 3
	}
}

// AtLeast reports whether s is as severe as other.
func (s Severity) AtLeast(other Severity) bool {
	return s.Priority() >= other.Priority()
}

// Range is a closed acceptable interval for a sensor kind.
type Range struct {
	Min float64
	Max float64
}

// Width returns the interval width.
func (r Range) Width() float64 { return r.Max - r.Min }

// Contains reports whether v lies inside the interval.
func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// Profile is the static policy for one room archetype: acceptable ranges
// and corrective targets per sensor kind.
type Profile struct {
	Temperature       Range
	Humidity          Range
	TemperatureTarget float64
	HumidityTarget    float64
}

// DefaultRoomType is the fallback archetype for unknown room types.
const DefaultRoomType = "office"

// ProfileTable maps room archetypes to their profiles.
type ProfileTable map[string]Profile

// DefaultProfiles returns the built-in archetype table.
func DefaultProfiles() ProfileTable {
	return ProfileTable{
		"server_room": {
			Temperature:       Range{Min: 18, Max: 24},
			Humidity:          Range{Min: 40, Max: 60},
			TemperatureTarget: 21.0,
			HumidityTarget:    50.0,
		},
		"data_center": {
			Temperature:       Range{Min: 16, Max: 20},
			Humidity:          Range{Min: 40, Max: 60},
			TemperatureTarget: 18.0,
			HumidityTarget:    50.0,
		},
		"laboratory": {
			Temperature:       Range{Min: 20, Max: 24},
			Humidity:          Range{Min: 45, Max: 65},
			TemperatureTarget: 22.0,
			HumidityTarget:    50.0,
		},
		"office": {
			Temperature:       Range{Min: 21, Max: 25},
			Humidity:          Range{Min: 40, Max: 60},
			TemperatureTarget: 22.5,
			HumidityTarget:    50.0,
		},
		"production": {
			Temperature:       Range{Min: 18, Max: 28},
			Humidity:          Range{Min: 30, Max: 70},
			TemperatureTarget: 23.0,
			HumidityTarget:    50.0,
		},
	}
}

// Lookup resolves a room type, falling back to the office archetype for
// unknown names.
func (t ProfileTable) Lookup(roomType string) Profile {
	if p, ok := t[roomType]; ok {
		return p
	}
	return t[DefaultRoomType]
}

// Validate checks the table at load time: every range must be non-empty
// and every target must lie inside its range. The fallback archetype must
// exist.
func (t ProfileTable) Validate() error {
	if _, ok := t[DefaultRoomType]; !ok {
		return fmt.Errorf("room profile table is missing the %q fallback archetype", DefaultRoomType)
	}
	for room, p := range t {
		if p.Temperature.Width() <= 0 {
			return fmt.Errorf("room %q: temperature range is empty", room)
		}
		if p.Humidity.Width() <= 0 {
			return fmt.Errorf("room %q: humidity range is empty", room)
		}
		if !p.Temperature.Contains(p.TemperatureTarget) {
			return fmt.Errorf("room %q: temperature target %.1f outside range", room, p.TemperatureTarget)
		}
		if !p.Humidity.Contains(p.HumidityTarget) {
			return fmt.Errorf("room %q: humidity target %.1f outside range", room, p.HumidityTarget)
		}
	}
	return nil
}

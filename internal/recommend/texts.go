package recommend

import "fmt"

// Reasoning bands are fixed numeric cutoffs per sensor kind: degrees over
// the limit for temperature, percentage points for humidity.

type temperatureTexts struct{}

func (temperatureTexts) problem(current, limit float64, high bool) string {
	if high {
		return fmt.Sprintf("temperature is too HIGH (%.1f°C, max: %g°C)", current, limit)
	}
	return fmt.Sprintf("temperature is too LOW (%.1f°C, min: %g°C)", current, limit)
}

func (temperatureTexts) action(high bool) string {
	if high {
		return "increase cooling/AC power or improve ventilation"
	}
	return "increase heating power or close air intakes"
}

func (temperatureTexts) reasoning(diff float64, high bool) string {
	if high {
		switch {
		case diff > 5:
			return fmt.Sprintf("temperature %.1f°C above normal. Risk of hardware overheating. URGENT ACTION REQUIRED.", diff)
		case diff > 2:
			return fmt.Sprintf("temperature %.1f°C above normal. Cooling system may be insufficient.", diff)
		default:
			return fmt.Sprintf("temperature %.1f°C above normal. Monitor cooling system.", diff)
		}
	}
	switch {
	case diff > 5:
		return fmt.Sprintf("temperature %.1f°C below normal. Check heating system or thermal insulation.", diff)
	case diff > 2:
		return fmt.Sprintf("temperature %.1f°C below normal. Heating may be needed.", diff)
	default:
		return fmt.Sprintf("temperature %.1f°C below normal. Monitor heating system.", diff)
	}
}

func (temperatureTexts) inRange(current float64) (string, string, string) {
	return fmt.Sprintf("temperature within normal range (%.1f°C)", current),
		"no action required",
		"temperature is within acceptable range"
}

type humidityTexts struct{}

func (humidityTexts) problem(current, limit float64, high bool) string {
	if high {
		return fmt.Sprintf("humidity is too HIGH (%.1f%%, max: %g%%)", current, limit)
	}
	return fmt.Sprintf("humidity is too LOW (%.1f%%, min: %g%%)", current, limit)
}

func (humidityTexts) action(high bool) string {
	if high {
		return "increase dehumidification or improve ventilation"
	}
	return "add humidifiers or reduce ventilation"
}

func (humidityTexts) reasoning(diff float64, high bool) string {
	if high {
		switch {
		case diff > 20:
			return fmt.Sprintf("humidity %.0f%% above normal. HIGH RISK OF CONDENSATION on electronics!", diff)
		case diff > 10:
			return fmt.Sprintf("humidity %.0f%% above normal. Risk of corrosion and condensation.", diff)
		default:
			return fmt.Sprintf("humidity %.0f%% above normal. Dehumidification recommended.", diff)
		}
	}
	switch {
	case diff > 20:
		return fmt.Sprintf("humidity %.0f%% below normal. Risk of static electricity and material degradation.", diff)
	case diff > 10:
		return fmt.Sprintf("humidity %.0f%% below normal. Humidification recommended.", diff)
	default:
		return fmt.Sprintf("humidity %.0f%% below normal. Monitor humidity levels.", diff)
	}
}

func (humidityTexts) inRange(current float64) (string, string, string) {
	return fmt.Sprintf("humidity within normal range (%.1f%%)", current),
		"no action required",
		"humidity is within acceptable range"
}

package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// System selects how raw metric measurements are displayed.
// Stored values are always °C, km/h and mm.
type System string

const (
	Metric   System = "metric"
	Imperial System = "imperial"
)

// ParseSystem accepts "metric" or "imperial" in any case.
func ParseSystem(s string) (System, error) {
	switch System(strings.ToLower(strings.TrimSpace(s))) {
	case Metric:
		return Metric, nil
	case Imperial:
		return Imperial, nil
	default:
		return "", fmt.Errorf("unknown unit system %q", s)
	}
}

// Toggle returns the other system.
func (s System) Toggle() System {
	if s == Imperial {
		return Metric
	}
	return Imperial
}

// FormatTemperature renders celsius as a whole-degree string.
func FormatTemperature(celsius float64, sys System) string {
	if sys == Imperial {
		return fmt.Sprintf("%d°F", round(celsius*9/5+32))
	}
	return fmt.Sprintf("%d°C", round(celsius))
}

// FormatWind renders km/h as whole km/h or mph.
func FormatWind(kmh float64, sys System) string {
	if sys == Imperial {
		return fmt.Sprintf("%d mph", round(kmh/1.609))
	}
	return fmt.Sprintf("%d km/h", round(kmh))
}

// FormatPrecip renders millimetres with one decimal, or inches with two.
func FormatPrecip(mm float64, sys System) string {
	if sys == Imperial {
		return strconv.FormatFloat(mm/25.4, 'f', 2, 64) + " in"
	}
	return strconv.FormatFloat(mm, 'f', 1, 64) + " mm"
}

// round is half-up toward +Inf; the int conversion drops negative zero.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}

// Formatter carries the display unit through formatting and synthesis calls.
type Formatter struct {
	System System
}

func (f Formatter) Temperature(celsius float64) string {
	return FormatTemperature(celsius, f.System)
}

func (f Formatter) Wind(kmh float64) string {
	return FormatWind(kmh, f.System)
}

func (f Formatter) Precip(mm float64) string {
	return FormatPrecip(mm, f.System)
}

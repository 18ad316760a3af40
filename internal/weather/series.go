package weather

import (
	"time"
)

const dateLayout = "2006-01-02"

// hourLayouts are the timestamp shapes the data source uses for hourly data.
var hourLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// NormalizeDate reduces an ISO date or datetime to its YYYY-MM-DD prefix.
func NormalizeDate(s string) string {
	if len(s) >= len(dateLayout) {
		if _, err := time.Parse(dateLayout, s[:len(dateLayout)]); err == nil {
			return s[:len(dateLayout)]
		}
	}
	return s
}

// parseLocal reads a local timestamp as wall-clock time. No zone shifting is
// applied; RFC3339 values keep their own offset.
func parseLocal(s string) (time.Time, bool) {
	for _, layout := range hourLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func rotate[T any](series []T, i int) []T {
	out := make([]T, 0, len(series))
	out = append(out, series[i:]...)
	return append(out, series[:i]...)
}

// RotateToToday returns the daily series starting at today's entry, with the
// earlier entries moved to the end. When today is absent the series is
// returned unrotated. The input slice is never modified.
func RotateToToday(daily []DailyEntry, now time.Time) []DailyEntry {
	idx := FindDailyByDate(daily, now.Format(dateLayout))
	if idx <= 0 {
		return append([]DailyEntry(nil), daily...)
	}
	return rotate(daily, idx)
}

// FindDailyByDate returns the index of the entry whose normalized date equals
// date, or -1.
func FindDailyByDate(daily []DailyEntry, date string) int {
	want := NormalizeDate(date)
	for i, d := range daily {
		if NormalizeDate(d.Date) == want {
			return i
		}
	}
	return -1
}

// DayGroups is the hourly series split by weekday.
type DayGroups struct {
	// Labels holds the distinct day labels in first-seen order.
	Labels []string
	Hours  map[string][]HourlyEntry
}

// DayLabel is the long weekday name used to group hourly data.
func DayLabel(t time.Time) string {
	return t.Weekday().String()
}

// GroupByDay buckets hourly entries by the weekday of their local date.
// Chronological order is kept inside each bucket. Entries with unparseable
// timestamps are skipped.
func GroupByDay(hourly []HourlyEntry) DayGroups {
	groups := DayGroups{Hours: make(map[string][]HourlyEntry)}
	for _, h := range hourly {
		t, ok := parseLocal(h.Time)
		if !ok {
			continue
		}
		label := DayLabel(t)
		if _, seen := groups.Hours[label]; !seen {
			groups.Labels = append(groups.Labels, label)
		}
		groups.Hours[label] = append(groups.Hours[label], h)
	}
	return groups
}

// RotateToCurrentHour rotates one day's hours so the entry for now's hour
// comes first. Without a match the hours are returned unrotated.
func RotateToCurrentHour(hours []HourlyEntry, now time.Time) []HourlyEntry {
	for i, h := range hours {
		t, ok := parseLocal(h.Time)
		if ok && t.Hour() == now.Hour() {
			if i == 0 {
				break
			}
			return rotate(hours, i)
		}
	}
	return append([]HourlyEntry(nil), hours...)
}

// HoursForDay returns the hours for the selected day label. Only today's
// hours are rotated to the current hour.
func HoursForDay(groups DayGroups, label string, now time.Time) []HourlyEntry {
	hours := groups.Hours[label]
	if label == DayLabel(now) {
		return RotateToCurrentHour(hours, now)
	}
	return append([]HourlyEntry(nil), hours...)
}

// FindIndexByTimestamp returns the index of the exact timestamp match, or -1.
func FindIndexByTimestamp(series []HourlyEntry, ts string) int {
	for i, h := range series {
		if h.Time == ts {
			return i
		}
	}
	return -1
}

// Metrics are the current readings with hourly-only fields aligned to the
// current timestamp.
type Metrics struct {
	TemperatureC    float64
	FeelsLikeC      float64
	HumidityPct     float64
	PrecipitationMm float64
	WindKmh         float64
	Code            *int
}

// CurrentMetrics aligns apparent temperature, humidity and precipitation to
// the current timestamp. A miss falls back to the current temperature for
// feels-like and to zero for humidity and precipitation.
func CurrentMetrics(s Snapshot) Metrics {
	m := Metrics{
		TemperatureC: s.Current.TemperatureC,
		FeelsLikeC:   s.Current.TemperatureC,
		WindKmh:      s.Current.WindKmh,
		Code:         s.Current.Code,
	}

	idx := FindIndexByTimestamp(s.Hourly, s.Current.Time)
	if idx < 0 {
		return m
	}
	h := s.Hourly[idx]
	if h.ApparentTemperatureC != nil {
		m.FeelsLikeC = *h.ApparentTemperatureC
	}
	if h.HumidityPct != nil {
		m.HumidityPct = *h.HumidityPct
	}
	if h.PrecipitationMm != nil {
		m.PrecipitationMm = *h.PrecipitationMm
	}
	return m
}

package dashboard

import (
	"errors"
	"fmt"
	"time"

	"github.com/i474232898/weather-assistant/internal/units"
	"github.com/i474232898/weather-assistant/internal/weather"
)

// ErrUnknownDay is returned when the requested hourly day has no data.
var ErrUnknownDay = errors.New("no hourly data for day")

// Current is the primary card plus the metric grid for the active location.
type Current struct {
	Location      string `json:"location"`
	Date          string `json:"date"`
	Temperature   string `json:"temperature"`
	FeelsLike     string `json:"feelsLike"`
	Humidity      string `json:"humidity"`
	Wind          string `json:"wind"`
	Precipitation string `json:"precipitation"`
	Summary       string `json:"summary"`
	Icon          string `json:"icon"`
	Unit          string `json:"unit"`
}

// Day is one tile of the daily forecast.
type Day struct {
	Date string `json:"date"`
	// Label is the short weekday name, e.g. "Mon".
	Label         string `json:"label"`
	Max           string `json:"max"`
	Min           string `json:"min"`
	Precipitation string `json:"precipitation"`
	Icon          string `json:"icon"`
}

// Hour is one row of the hourly forecast.
type Hour struct {
	Time        string `json:"time"`
	Label       string `json:"label"`
	Temperature string `json:"temperature"`
	Icon        string `json:"icon"`
}

// Hourly is the hourly forecast for one selected day plus the day selector.
type Hourly struct {
	Days     []string `json:"days"`
	Selected string   `json:"selected"`
	Hours    []Hour   `json:"hours"`
}

// BuildCurrent renders the current metrics for loc.
func BuildCurrent(loc weather.NamedLocation, snap weather.Snapshot, f units.Formatter) Current {
	m := weather.CurrentMetrics(snap)
	category := weather.Classify(m.Code)

	date := snap.Current.Time
	if t, err := time.Parse("2006-01-02T15:04", snap.Current.Time); err == nil {
		date = t.Format("Monday, Jan 2, 2006")
	}

	return Current{
		Location:      loc.DisplayName(),
		Date:          date,
		Temperature:   f.Temperature(m.TemperatureC),
		FeelsLike:     f.Temperature(m.FeelsLikeC),
		Humidity:      fmt.Sprintf("%.0f%%", m.HumidityPct),
		Wind:          f.Wind(m.WindKmh),
		Precipitation: f.Precip(m.PrecipitationMm),
		Summary:       category.Summary(),
		Icon:          category.Icon(),
		Unit:          string(f.System),
	}
}

// BuildDaily renders the daily forecast starting at the location's today.
func BuildDaily(snap weather.Snapshot, f units.Formatter, now time.Time) []Day {
	daily := weather.RotateToToday(snap.Daily, snap.Now(now))

	days := make([]Day, 0, len(daily))
	for _, d := range daily {
		date := weather.NormalizeDate(d.Date)
		label := date
		if t, err := time.Parse("2006-01-02", date); err == nil {
			label = t.Format("Mon")
		}
		days = append(days, Day{
			Date:          date,
			Label:         label,
			Max:           f.Temperature(d.TempMaxC),
			Min:           f.Temperature(d.TempMinC),
			Precipitation: f.Precip(d.PrecipitationSumMm),
			Icon:          weather.Classify(d.Code).Icon(),
		})
	}
	return days
}

// BuildHourly renders the hours of day, a long weekday label. An empty day
// selects today. Today's hours start at the current hour.
func BuildHourly(snap weather.Snapshot, day string, f units.Formatter, now time.Time) (Hourly, error) {
	local := snap.Now(now)
	groups := weather.GroupByDay(snap.Hourly)
	if day == "" {
		day = weather.DayLabel(local)
		if _, ok := groups.Hours[day]; !ok && len(groups.Labels) > 0 {
			day = groups.Labels[0]
		}
	}
	if _, ok := groups.Hours[day]; !ok {
		return Hourly{}, fmt.Errorf("%w: %q", ErrUnknownDay, day)
	}

	view := Hourly{Days: groups.Labels, Selected: day}
	for _, h := range weather.HoursForDay(groups, day, local) {
		label := h.Time
		if t, err := time.Parse("2006-01-02T15:04", h.Time); err == nil {
			label = t.Format("3 PM")
		}
		view.Hours = append(view.Hours, Hour{
			Time:        h.Time,
			Label:       label,
			Temperature: f.Temperature(h.TemperatureC),
			Icon:        weather.Classify(h.Code).Icon(),
		})
	}
	return view, nil
}

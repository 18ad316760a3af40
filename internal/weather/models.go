package weather

import (
	"time"

	"github.com/i474232898/weather-assistant/internal/units"
)

// Coordinates is a resolved geographic point.
type Coordinates struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// NamedLocation is a place the user can ask about or select on the dashboard.
// Country is optional.
type NamedLocation struct {
	Coordinates
	Name    string `json:"name" validate:"required"`
	Country string `json:"country,omitempty"`
}

// DisplayName returns "Name, Country", or just Name when no country is known.
func (l NamedLocation) DisplayName() string {
	if l.Country == "" {
		return l.Name
	}
	return l.Name + ", " + l.Country
}

// Key returns a canonical string key for the location.
func (l NamedLocation) Key() string {
	return l.Name + ":" + l.Country
}

// CurrentConditions is the "right now" block of a snapshot.
type CurrentConditions struct {
	TemperatureC float64 `json:"temperatureC"`
	WindKmh      float64 `json:"windKmh"`
	Code         *int    `json:"code"`
	Time         string  `json:"time"`
}

// HourlyEntry is one hour of the hourly series. Optional fields are nil
// when the data source did not deliver them.
type HourlyEntry struct {
	Time                 string   `json:"time"`
	TemperatureC         float64  `json:"temperatureC"`
	ApparentTemperatureC *float64 `json:"apparentTemperatureC,omitempty"`
	HumidityPct          *float64 `json:"humidityPct,omitempty"`
	PrecipitationMm      *float64 `json:"precipitationMm,omitempty"`
	WindKmh              *float64 `json:"windKmh,omitempty"`
	Code                 *int     `json:"code"`
}

// DailyEntry is one day of the daily series.
type DailyEntry struct {
	Date               string  `json:"date"`
	TempMaxC           float64 `json:"tempMaxC"`
	TempMinC           float64 `json:"tempMinC"`
	PrecipitationSumMm float64 `json:"precipitationSumMm"`
	Code               *int    `json:"code"`
}

// Snapshot is one full current+hourly+daily payload for a single location.
// Hourly and Daily are in chronological order as delivered; timestamps are
// local to Timezone.
type Snapshot struct {
	Timezone string            `json:"timezone"`
	Current  CurrentConditions `json:"current"`
	Hourly   []HourlyEntry     `json:"hourly"`
	Daily    []DailyEntry      `json:"daily"`
}

// Now converts t into the snapshot's timezone so calendar comparisons use
// the location's local date. Unknown zones fall back to the process zone.
func (s Snapshot) Now(t time.Time) time.Time {
	if s.Timezone != "" {
		if loc, err := time.LoadLocation(s.Timezone); err == nil {
			return t.In(loc)
		}
	}
	return t.Local()
}

// Preferences is the display context read by formatting and synthesis:
// the selected unit system plus the active location, if any.
type Preferences struct {
	Unit   units.System
	Active *NamedLocation
}

// Formatter returns the unit formatter for these preferences.
func (p Preferences) Formatter() units.Formatter {
	return units.Formatter{System: p.Unit}
}

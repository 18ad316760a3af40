package dashboard

import (
	"errors"
	"testing"
	"time"

	"github.com/i474232898/weather-assistant/internal/units"
	"github.com/i474232898/weather-assistant/internal/weather"
)

func ptr[T any](v T) *T { return &v }

// 2026-10-18 is a Sunday.
var now = time.Date(2026, 10, 18, 15, 20, 0, 0, time.UTC)

func berlinSnapshot() weather.Snapshot {
	return weather.Snapshot{
		Timezone: "UTC",
		Current:  weather.CurrentConditions{TemperatureC: 11.6, WindKmh: 14.2, Code: ptr(3), Time: "2026-10-18T15:00"},
		Hourly: []weather.HourlyEntry{
			{Time: "2026-10-18T14:00", TemperatureC: 11, Code: ptr(1)},
			{Time: "2026-10-18T15:00", TemperatureC: 11.6, Code: ptr(3), ApparentTemperatureC: ptr(9.4), HumidityPct: ptr(71.0), PrecipitationMm: ptr(0.3)},
			{Time: "2026-10-18T16:00", TemperatureC: 12, Code: ptr(61)},
			{Time: "2026-10-19T09:00", TemperatureC: 8, Code: ptr(0)},
			{Time: "2026-10-19T10:00", TemperatureC: 9, Code: ptr(0)},
		},
		Daily: []weather.DailyEntry{
			{Date: "2026-10-17", TempMaxC: 13, TempMinC: 6, Code: ptr(0)},
			{Date: "2026-10-18", TempMaxC: 12.4, TempMinC: 7.5, PrecipitationSumMm: 1.2, Code: ptr(61)},
			{Date: "2026-10-19", TempMaxC: 14, TempMinC: 5, Code: ptr(45)},
		},
	}
}

func TestBuildCurrent(t *testing.T) {
	loc := weather.NamedLocation{Name: "Berlin", Country: "Germany"}
	got := BuildCurrent(loc, berlinSnapshot(), units.Formatter{System: units.Metric})

	want := Current{
		Location:      "Berlin, Germany",
		Date:          "Sunday, Oct 18, 2026",
		Temperature:   "12°C",
		FeelsLike:     "9°C",
		Humidity:      "71%",
		Wind:          "14 km/h",
		Precipitation: "0.3 mm",
		Summary:       "overcast",
		Icon:          "partly-cloudy",
		Unit:          "metric",
	}
	if got != want {
		t.Fatalf("got %+v\nwant %+v", got, want)
	}
}

func TestBuildCurrentWithoutHourlyMatch(t *testing.T) {
	snap := berlinSnapshot()
	snap.Hourly = nil

	got := BuildCurrent(weather.NamedLocation{Name: "Berlin"}, snap, units.Formatter{System: units.Imperial})
	if got.FeelsLike != got.Temperature || got.Humidity != "0%" || got.Precipitation != "0.00 in" {
		t.Fatalf("expected fallbacks, got %+v", got)
	}
}

func TestBuildDailyStartsToday(t *testing.T) {
	snap := berlinSnapshot()
	days := BuildDaily(snap, units.Formatter{System: units.Metric}, now)

	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
	labels := []string{days[0].Label, days[1].Label, days[2].Label}
	if labels[0] != "Sun" || labels[1] != "Mon" || labels[2] != "Sat" {
		t.Fatalf("unexpected order %v", labels)
	}
	if days[0].Max != "12°C" || days[0].Min != "8°C" || days[0].Icon != "rain" {
		t.Fatalf("unexpected today tile %+v", days[0])
	}
	if snap.Daily[0].Date != "2026-10-17" {
		t.Fatal("input series was modified")
	}
}

func TestBuildHourly(t *testing.T) {
	f := units.Formatter{System: units.Metric}

	today, err := BuildHourly(berlinSnapshot(), "", f, now)
	if err != nil {
		t.Fatalf("BuildHourly: %v", err)
	}
	if today.Selected != "Sunday" || len(today.Days) != 2 || today.Days[1] != "Monday" {
		t.Fatalf("unexpected selector %+v", today)
	}
	if today.Hours[0].Label != "3 PM" || today.Hours[2].Label != "2 PM" {
		t.Fatalf("today should start at the current hour, got %+v", today.Hours)
	}

	monday, err := BuildHourly(berlinSnapshot(), "Monday", f, now)
	if err != nil {
		t.Fatalf("BuildHourly: %v", err)
	}
	if len(monday.Hours) != 2 || monday.Hours[0].Label != "9 AM" {
		t.Fatalf("other days keep chronological order, got %+v", monday.Hours)
	}

	if _, err := BuildHourly(berlinSnapshot(), "Friday", f, now); !errors.Is(err, ErrUnknownDay) {
		t.Fatalf("expected ErrUnknownDay, got %v", err)
	}
}

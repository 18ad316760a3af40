package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/i474232898/weather-assistant/internal/weather"
	"github.com/sony/gobreaker"
)

const (
	DefaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
	DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
)

var (
	hourlyFields = []string{
		"temperature_2m",
		"apparent_temperature",
		"relativehumidity_2m",
		"precipitation",
		"windspeed_10m",
		"weathercode",
	}
	dailyFields = []string{
		"temperature_2m_max",
		"temperature_2m_min",
		"precipitation_sum",
		"weathercode",
	}
)

// OpenMeteoProvider implements weather.Forecaster for the Open-Meteo forecast API.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider creates a forecaster. An empty baseURL uses DefaultForecastURL.
func NewOpenMeteoProvider(client *http.Client, baseURL string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultForecastURL
	}
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newBreaker("openmeteo-forecast"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type currentWeatherPayload struct {
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"windspeed"`
	WeatherCode *int    `json:"weathercode"`
	Time        string  `json:"time"`
}

type hourlyPayload struct {
	Time                []string   `json:"time"`
	Temperature         []float64  `json:"temperature_2m"`
	ApparentTemperature []*float64 `json:"apparent_temperature"`
	RelativeHumidity    []*float64 `json:"relativehumidity_2m"`
	Precipitation       []*float64 `json:"precipitation"`
	WindSpeed           []*float64 `json:"windspeed_10m"`
	WeatherCode         []*int     `json:"weathercode"`
}

type dailyPayload struct {
	Time             []string   `json:"time"`
	TemperatureMax   []float64  `json:"temperature_2m_max"`
	TemperatureMin   []float64  `json:"temperature_2m_min"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
	WeatherCode      []*int     `json:"weathercode"`
}

type forecastPayload struct {
	Timezone       string                 `json:"timezone"`
	CurrentWeather *currentWeatherPayload `json:"current_weather"`
	Hourly         hourlyPayload          `json:"hourly"`
	Daily          dailyPayload           `json:"daily"`
}

func (p *OpenMeteoProvider) Forecast(ctx context.Context, coords weather.Coordinates) (weather.Snapshot, error) {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	values.Set("current_weather", "true")
	values.Set("hourly", strings.Join(hourlyFields, ","))
	values.Set("daily", strings.Join(dailyFields, ","))
	values.Set("timezone", "auto")

	var payload forecastPayload
	if err := getJSON(ctx, p.httpCfg, p.circuit, p.baseURL+"?"+values.Encode(), &payload); err != nil {
		return weather.Snapshot{}, fmt.Errorf("openmeteo forecast: %w", err)
	}

	snap, err := payload.toSnapshot()
	if err != nil {
		return weather.Snapshot{}, fmt.Errorf("openmeteo forecast: %w", err)
	}
	return snap, nil
}

// checkLen verifies a parallel array matches its time axis. Optional arrays
// may be absent entirely.
func checkLen(field string, got, want int, optional bool) error {
	if got == want || (optional && got == 0) {
		return nil
	}
	return fmt.Errorf("%w: %s has %d entries, time has %d", ErrMalformedResponse, field, got, want)
}

func at[T any](values []*T, i int) *T {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func (p forecastPayload) toSnapshot() (weather.Snapshot, error) {
	if p.CurrentWeather == nil {
		return weather.Snapshot{}, fmt.Errorf("%w: missing current_weather", ErrMalformedResponse)
	}

	h := p.Hourly
	n := len(h.Time)
	for _, c := range []struct {
		field    string
		got      int
		optional bool
	}{
		{"hourly.temperature_2m", len(h.Temperature), false},
		{"hourly.apparent_temperature", len(h.ApparentTemperature), true},
		{"hourly.relativehumidity_2m", len(h.RelativeHumidity), true},
		{"hourly.precipitation", len(h.Precipitation), true},
		{"hourly.windspeed_10m", len(h.WindSpeed), true},
		{"hourly.weathercode", len(h.WeatherCode), true},
	} {
		if err := checkLen(c.field, c.got, n, c.optional); err != nil {
			return weather.Snapshot{}, err
		}
	}

	d := p.Daily
	m := len(d.Time)
	for _, c := range []struct {
		field    string
		got      int
		optional bool
	}{
		{"daily.temperature_2m_max", len(d.TemperatureMax), false},
		{"daily.temperature_2m_min", len(d.TemperatureMin), false},
		{"daily.precipitation_sum", len(d.PrecipitationSum), true},
		{"daily.weathercode", len(d.WeatherCode), true},
	} {
		if err := checkLen(c.field, c.got, m, c.optional); err != nil {
			return weather.Snapshot{}, err
		}
	}

	snap := weather.Snapshot{
		Timezone: p.Timezone,
		Current: weather.CurrentConditions{
			TemperatureC: p.CurrentWeather.Temperature,
			WindKmh:      p.CurrentWeather.WindSpeed,
			Code:         p.CurrentWeather.WeatherCode,
			Time:         p.CurrentWeather.Time,
		},
		Hourly: make([]weather.HourlyEntry, n),
		Daily:  make([]weather.DailyEntry, m),
	}

	for i := 0; i < n; i++ {
		snap.Hourly[i] = weather.HourlyEntry{
			Time:                 h.Time[i],
			TemperatureC:         h.Temperature[i],
			ApparentTemperatureC: at(h.ApparentTemperature, i),
			HumidityPct:          at(h.RelativeHumidity, i),
			PrecipitationMm:      at(h.Precipitation, i),
			WindKmh:              at(h.WindSpeed, i),
			Code:                 at(h.WeatherCode, i),
		}
	}

	for i := 0; i < m; i++ {
		entry := weather.DailyEntry{
			Date:     weather.NormalizeDate(d.Time[i]),
			TempMaxC: d.TemperatureMax[i],
			TempMinC: d.TemperatureMin[i],
			Code:     at(d.WeatherCode, i),
		}
		if sum := at(d.PrecipitationSum, i); sum != nil {
			entry.PrecipitationSumMm = *sum
		}
		snap.Daily[i] = entry
	}

	return snap, nil
}

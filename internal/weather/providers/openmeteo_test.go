package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weather-assistant/internal/weather"
)

const forecastBody = `{
  "timezone": "Africa/Lagos",
  "current_weather": {"temperature": 27.3, "windspeed": 9.4, "weathercode": 61, "time": "2026-10-18T13:00"},
  "hourly": {
    "time": ["2026-10-18T12:00", "2026-10-18T13:00"],
    "temperature_2m": [26.9, 27.3],
    "apparent_temperature": [29.1, 30.2],
    "relativehumidity_2m": [80, 78],
    "precipitation": [0.2, null],
    "windspeed_10m": [8.1, 9.4],
    "weathercode": [3, 61]
  },
  "daily": {
    "time": ["2026-10-18", "2026-10-19"],
    "temperature_2m_max": [30.1, 29.4],
    "temperature_2m_min": [23.0, 22.6],
    "precipitation_sum": [1.5, 4.2],
    "weathercode": [61, 80]
  }
}`

func testClient() *http.Client {
	return &http.Client{Timeout: 2 * time.Second}
}

func TestOpenMeteoForecast(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(forecastBody))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(testClient(), srv.URL)
	snap, err := p.Forecast(context.Background(), weather.Coordinates{Latitude: 6.45, Longitude: 3.39})
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}

	for _, want := range []string{"latitude=6.45", "longitude=3.39", "current_weather=true", "timezone=auto", "precipitation_sum"} {
		if !strings.Contains(query, want) {
			t.Errorf("query %q missing %q", query, want)
		}
	}

	if snap.Timezone != "Africa/Lagos" || snap.Current.TemperatureC != 27.3 || *snap.Current.Code != 61 {
		t.Fatalf("unexpected current block: %+v", snap.Current)
	}
	if len(snap.Hourly) != 2 || *snap.Hourly[1].ApparentTemperatureC != 30.2 {
		t.Fatalf("unexpected hourly: %+v", snap.Hourly)
	}
	if snap.Hourly[1].PrecipitationMm != nil {
		t.Fatal("null precipitation should decode to nil")
	}
	if len(snap.Daily) != 2 || snap.Daily[1].PrecipitationSumMm != 4.2 || snap.Daily[1].Date != "2026-10-19" {
		t.Fatalf("unexpected daily: %+v", snap.Daily)
	}
}

func TestOpenMeteoForecastRejectsMismatchedArrays(t *testing.T) {
	body := strings.Replace(forecastBody, `"temperature_2m": [26.9, 27.3]`, `"temperature_2m": [26.9]`, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	_, err := NewOpenMeteoProvider(testClient(), srv.URL).Forecast(context.Background(), weather.Coordinates{})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestOpenMeteoForecastMissingCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hourly": {}, "daily": {}}`))
	}))
	defer srv.Close()

	_, err := NewOpenMeteoProvider(testClient(), srv.URL).Forecast(context.Background(), weather.Coordinates{})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestOpenMeteoForecastClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"error": true}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewOpenMeteoProvider(testClient(), srv.URL).Forecast(context.Background(), weather.Coordinates{})
	if !errors.Is(err, errUnexpected) {
		t.Fatalf("expected unexpected status error, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestOpenMeteoForecastRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(forecastBody))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(testClient(), srv.URL)
	p.httpCfg.Backoff = BackoffConfig{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}

	if _, err := p.Forecast(context.Background(), weather.Coordinates{}); err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestOpenMeteoGeocoder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") == "nowhere" {
			_, _ = w.Write([]byte(`{"generationtime_ms": 0.1}`))
			return
		}
		if r.URL.Query().Get("count") != "2" {
			t.Errorf("unexpected count %q", r.URL.Query().Get("count"))
		}
		_, _ = w.Write([]byte(`{"results": [
			{"id": 1, "name": "Lagos", "country": "Nigeria", "latitude": 6.45, "longitude": 3.39},
			{"id": 2, "name": "Lagos", "country": "Portugal", "latitude": 37.1, "longitude": -8.67}
		]}`))
	}))
	defer srv.Close()

	g := NewOpenMeteoGeocoder(testClient(), srv.URL)

	got, err := g.Search(context.Background(), "lagos", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 || got[0].Country != "Nigeria" || got[0].Latitude != 6.45 {
		t.Fatalf("unexpected candidates: %+v", got)
	}

	none, err := g.Search(context.Background(), "nowhere", 2)
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty result without error, got %v, %v", none, err)
	}

	blank, err := g.Search(context.Background(), "  ", 2)
	if err != nil || blank != nil {
		t.Fatalf("blank query should short-circuit, got %v, %v", blank, err)
	}
}

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

// MaxSearchCount caps the number of candidates requested from a geocoder.
const MaxSearchCount = 10

// OpenMeteoGeocoder implements weather.Geocoder for the Open-Meteo geocoding API.
type OpenMeteoGeocoder struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoGeocoder creates a geocoder. An empty baseURL uses DefaultGeocodingURL.
func NewOpenMeteoGeocoder(client *http.Client, baseURL string) *OpenMeteoGeocoder {
	if baseURL == "" {
		baseURL = DefaultGeocodingURL
	}
	return &OpenMeteoGeocoder{
		name:    "openmeteo-geocoding",
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newBreaker("openmeteo-geocoding"),
	}
}

func (g *OpenMeteoGeocoder) Name() string {
	return g.name
}

type geocodingPayload struct {
	Results []struct {
		ID        int64   `json:"id"`
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

// Search returns up to count candidates, best match first. An empty name or
// an unknown place yields no candidates and no error.
func (g *OpenMeteoGeocoder) Search(ctx context.Context, name string, count int) ([]weather.NamedLocation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	if count <= 0 {
		count = 1
	}
	if count > MaxSearchCount {
		count = MaxSearchCount
	}

	values := url.Values{}
	values.Set("name", name)
	values.Set("count", strconv.Itoa(count))

	var payload geocodingPayload
	if err := getJSON(ctx, g.httpCfg, g.circuit, g.baseURL+"?"+values.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("openmeteo geocoding: %w", err)
	}

	out := make([]weather.NamedLocation, 0, len(payload.Results))
	for _, r := range payload.Results {
		out = append(out, weather.NamedLocation{
			Name:    r.Name,
			Country: r.Country,
			Coordinates: weather.Coordinates{
				Latitude:  r.Latitude,
				Longitude: r.Longitude,
			},
		})
		if len(out) == count {
			break
		}
	}
	return out, nil
}

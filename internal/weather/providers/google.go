package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/kelvins/geocoder"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/i474232898/weather-assistant/internal/common"
	"github.com/i474232898/weather-assistant/internal/weather"
)

// GoogleGeocoder implements weather.Geocoder on top of the Google Maps
// geocoding API. It only ever returns the single best match.
type GoogleGeocoder struct {
	name string
}

// NewGoogleGeocoder configures the geocoder package with apiKey. The key is
// package-global in the underlying library, so only one instance should exist.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{
		name: "google-geocoding",
	}
}

func (g *GoogleGeocoder) Name() string {
	return g.name
}

type googleResult struct {
	loc weather.NamedLocation
	err error
}

// Search geocodes name and reverse-geocodes the hit to recover a display
// name and country. The library has no context support, so ctx only bounds
// how long we wait.
func (g *GoogleGeocoder) Search(ctx context.Context, name string, count int) ([]weather.NamedLocation, error) {
	name = strings.TrimSpace(name)
	if name == "" || count == 0 {
		return nil, nil
	}

	done := make(chan googleResult, 1)
	go func() {
		done <- g.lookup(name)
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			if isZeroResults(res.err) {
				return nil, nil
			}
			return nil, fmt.Errorf("google geocoding: %w", res.err)
		}
		return []weather.NamedLocation{res.loc}, nil
	}
}

func (g *GoogleGeocoder) lookup(name string) googleResult {
	point, err := geocoder.Geocoding(geocoder.Address{City: name})
	if err != nil {
		return googleResult{err: err}
	}

	loc := weather.NamedLocation{
		// Casers are stateful; build one per lookup.
		Name: cases.Title(language.English).String(name),
		Coordinates: weather.Coordinates{
			Latitude:  point.Latitude,
			Longitude: point.Longitude,
		},
	}

	// Reverse lookup is best effort; the coordinates are already usable.
	addresses, err := geocoder.GeocodingReverse(point)
	if err == nil && len(addresses) > 0 {
		if addresses[0].City != "" {
			loc.Name = addresses[0].City
		}
		loc.Country = addresses[0].Country
	}
	return googleResult{loc: loc}
}

func isZeroResults(err error) bool {
	return common.HasAny(strings.ToLower(err.Error()), "no results", "zero_results")
}

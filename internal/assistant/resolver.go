package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/i474232898/weather-assistant/internal/weather"
)

// Resolver turns place references into named locations. It holds no
// per-query state and is safe for concurrent use.
type Resolver struct {
	geocoder weather.Geocoder
}

// NewResolver creates a Resolver backed by geocoder.
func NewResolver(geocoder weather.Geocoder) *Resolver {
	return &Resolver{geocoder: geocoder}
}

// Resolve geocodes query and returns the highest-ranked candidate.
// No candidates yields ErrPlaceNotFound; lookup errors are wrapped in ErrFetchFailure.
func (r *Resolver) Resolve(ctx context.Context, query string) (weather.NamedLocation, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return weather.NamedLocation{}, fmt.Errorf("%w: empty query", ErrPlaceNotFound)
	}
	if r.geocoder == nil {
		return weather.NamedLocation{}, fmt.Errorf("%w: no geocoder configured", ErrFetchFailure)
	}

	candidates, err := r.geocoder.Search(ctx, query, 1)
	if err != nil {
		return weather.NamedLocation{}, fmt.Errorf("%w: geocoding %q: %v", ErrFetchFailure, query, err)
	}
	if len(candidates) == 0 {
		return weather.NamedLocation{}, fmt.Errorf("%w: %q", ErrPlaceNotFound, query)
	}
	return candidates[0], nil
}

// ResolveHere returns the active location, or ErrLocationUnknown when none
// is set so the caller can ask the user for a place.
func (r *Resolver) ResolveHere(active *weather.NamedLocation) (weather.NamedLocation, error) {
	if active == nil {
		return weather.NamedLocation{}, ErrLocationUnknown
	}
	return *active, nil
}

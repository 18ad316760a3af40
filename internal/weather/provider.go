package weather

import (
	"context"
)

// Forecaster fetches a full snapshot for a point (e.g. Open-Meteo forecast API).
// Non-2xx and malformed responses are returned as errors.
type Forecaster interface {
	Name() string
	Forecast(ctx context.Context, coords Coordinates) (Snapshot, error)
}

// Geocoder turns a free-text place name into ranked candidates, best first.
// No results is an empty slice, not an error.
type Geocoder interface {
	Name() string
	Search(ctx context.Context, name string, count int) ([]NamedLocation, error)
}

package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/i474232898/weather-assistant/internal/units"
)

var (
	// ErrNoLocation is returned when no location has been selected yet.
	ErrNoLocation = errors.New("no active location")
	// ErrNoSnapshot is returned while the active location has no weather data.
	ErrNoSnapshot = errors.New("no weather data for active location")
	// ErrSuperseded is returned by a fetch whose location was replaced before it finished.
	ErrSuperseded = errors.New("location changed before fetch completed")
)

// Service owns the application-wide display state: the unit system, the
// active location and the latest snapshot fetched for it.
type Service struct {
	forecaster Forecaster
	geocoder   Geocoder

	mu       sync.RWMutex
	unit     units.System
	active   *NamedLocation
	latest   *Snapshot
	fetchErr error

	// generation identifies the current fetch; older fetches are ignored.
	generation uint64
	cancel     context.CancelFunc
}

// NewService creates a new Service.
func NewService(forecaster Forecaster, geocoder Geocoder, unit units.System) *Service {
	if unit == "" {
		unit = units.Metric
	}
	return &Service{
		forecaster: forecaster,
		geocoder:   geocoder,
		unit:       unit,
	}
}

// Preferences returns a copy of the current display context.
func (s *Service) Preferences() Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := Preferences{Unit: s.unit}
	if s.active != nil {
		loc := *s.active
		p.Active = &loc
	}
	return p
}

// SetUnit changes the unit system for all subsequent formatting.
func (s *Service) SetUnit(u units.System) {
	s.mu.Lock()
	s.unit = u
	s.mu.Unlock()
}

// ToggleUnit flips between metric and imperial and returns the new system.
func (s *Service) ToggleUnit() units.System {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unit = s.unit.Toggle()
	return s.unit
}

// SelectLocation makes loc the active location and fetches its snapshot.
// Any fetch still running for a previous location is cancelled and its
// result discarded.
func (s *Service) SelectLocation(ctx context.Context, loc NamedLocation) error {
	if s.forecaster == nil {
		return fmt.Errorf("no forecaster configured")
	}

	s.mu.Lock()
	s.active = &loc
	s.latest = nil
	s.fetchErr = nil
	gen, fetchCtx, cancel := s.beginLocked(ctx)
	s.mu.Unlock()

	return s.fetch(fetchCtx, cancel, gen, loc, true)
}

// Refresh refetches the snapshot for the active location, keeping the
// previous snapshot visible until the new one arrives. A fetch already in
// flight covers the active location, so Refresh leaves it alone.
func (s *Service) Refresh(ctx context.Context) error {
	if s.forecaster == nil {
		return fmt.Errorf("no forecaster configured")
	}

	s.mu.Lock()
	if s.active == nil {
		s.mu.Unlock()
		return ErrNoLocation
	}
	loc := *s.active
	if s.cancel != nil {
		s.mu.Unlock()
		log.Printf("DEBUG: fetch for %s already in flight; skipping refresh", loc.Key())
		return nil
	}
	gen, fetchCtx, cancel := s.beginLocked(ctx)
	s.mu.Unlock()

	return s.fetch(fetchCtx, cancel, gen, loc, false)
}

// beginLocked cancels the running fetch and registers a new generation.
// The caller holds s.mu and has already set s.active to the location the
// new fetch is for.
func (s *Service) beginLocked(ctx context.Context) (uint64, context.Context, context.CancelFunc) {
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return s.generation, fetchCtx, cancel
}

func (s *Service) fetch(ctx context.Context, cancel context.CancelFunc, gen uint64, loc NamedLocation, replace bool) error {
	defer cancel()

	log.Printf("DEBUG: fetching snapshot for %s via %s", loc.Key(), s.forecaster.Name())
	snap, err := s.forecaster.Forecast(ctx, loc.Coordinates)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		log.Printf("DEBUG: discarding stale snapshot for %s", loc.Key())
		return ErrSuperseded
	}
	s.cancel = nil

	if err != nil {
		log.Printf("ERROR: snapshot fetch failed for %s: %v", loc.Key(), err)
		s.fetchErr = err
		if replace {
			s.latest = nil
		}
		return err
	}

	s.latest = &snap
	s.fetchErr = nil
	return nil
}

// Latest returns the active location with its most recent snapshot. When the
// last fetch failed its error is returned wrapped in ErrNoSnapshot.
func (s *Service) Latest() (NamedLocation, Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active == nil {
		return NamedLocation{}, Snapshot{}, ErrNoLocation
	}
	if s.latest == nil {
		if s.fetchErr != nil {
			return *s.active, Snapshot{}, fmt.Errorf("%w: %v", ErrNoSnapshot, s.fetchErr)
		}
		return *s.active, Snapshot{}, ErrNoSnapshot
	}
	return *s.active, *s.latest, nil
}

// Forecast fetches a fresh snapshot for arbitrary coordinates without
// touching the active location.
func (s *Service) Forecast(ctx context.Context, coords Coordinates) (Snapshot, error) {
	if s.forecaster == nil {
		return Snapshot{}, fmt.Errorf("no forecaster configured")
	}
	return s.forecaster.Forecast(ctx, coords)
}

// Search looks up candidate locations for a free-text name.
func (s *Service) Search(ctx context.Context, name string, count int) ([]NamedLocation, error) {
	if s.geocoder == nil {
		return nil, fmt.Errorf("no geocoder configured")
	}
	log.Printf("DEBUG: searching %q via %s (count=%d)", name, s.geocoder.Name(), count)
	return s.geocoder.Search(ctx, name, count)
}

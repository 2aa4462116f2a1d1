package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-charts/internal/weather"
)

var (
	// ErrNotFound is returned when no data is available for a given location.
	ErrNotFound = errors.New("no weather data for location")
	// ErrStale is returned when a cached forecast is older than the caller accepts.
	ErrStale = errors.New("cached forecast is stale")
)

type forecastEntry struct {
	forecast weather.HourlyForecast
	storedAt time.Time
}

// MemoryStore is a concurrency-safe in-memory implementation of weather.Store.
// Snapshots are kept per location in timestamp order; forecasts are kept one
// per location.
type MemoryStore struct {
	mu sync.RWMutex

	snapshots map[string][]weather.WeatherSnapshot
	forecasts map[string]forecastEntry

	maxHistory int           // max snapshots per location, <= 0 is unlimited
	maxAge     time.Duration // snapshots older than this are dropped, <= 0 disables
	now        func() time.Time
}

var _ weather.Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new MemoryStore with optional limits.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		snapshots:  make(map[string][]weather.WeatherSnapshot),
		forecasts:  make(map[string]forecastEntry),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SetClock replaces the clock used for retention and forecast age.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// SaveSnapshot inserts a snapshot for a location and enforces retention.
func (s *MemoryStore) SaveSnapshot(loc weather.Location, snapshot weather.WeatherSnapshot) {
	key := loc.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.snapshots[key]
	// Providers can report slightly out of order; keep the slice sorted.
	i := sort.Search(len(history), func(i int) bool {
		return history[i].Timestamp.After(snapshot.Timestamp)
	})
	history = append(history, weather.WeatherSnapshot{})
	copy(history[i+1:], history[i:])
	history[i] = snapshot

	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		drop := sort.Search(len(history), func(i int) bool {
			return !history[i].Timestamp.Before(cutoff)
		})
		history = history[drop:]
	}

	s.snapshots[key] = history
}

// GetLatest returns the most recent snapshot for a location.
func (s *MemoryStore) GetLatest(loc weather.Location) (weather.WeatherSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.snapshots[loc.Key()]
	if len(history) == 0 {
		return weather.WeatherSnapshot{}, ErrNotFound
	}
	return history[len(history)-1], nil
}

// GetRange returns all snapshots for a location between from and to (inclusive).
func (s *MemoryStore) GetRange(loc weather.Location, from, to time.Time) ([]weather.WeatherSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []weather.WeatherSnapshot
	for _, snap := range s.snapshots[loc.Key()] {
		if snap.Timestamp.Before(from) || snap.Timestamp.After(to) {
			continue
		}
		result = append(result, snap)
	}
	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

// SaveForecast replaces the cached forecast for a location.
func (s *MemoryStore) SaveForecast(loc weather.Location, forecast weather.HourlyForecast) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forecasts[loc.Key()] = forecastEntry{forecast: forecast, storedAt: s.now()}
}

// GetForecast returns the cached forecast for a location. It returns
// ErrStale when the entry is older than maxAge; maxAge <= 0 accepts any age.
func (s *MemoryStore) GetForecast(loc weather.Location, maxAge time.Duration) (weather.HourlyForecast, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.forecasts[loc.Key()]
	if !ok {
		return weather.HourlyForecast{}, ErrNotFound
	}
	if maxAge > 0 && s.now().Sub(entry.storedAt) > maxAge {
		return weather.HourlyForecast{}, ErrStale
	}
	return entry.forecast, nil
}

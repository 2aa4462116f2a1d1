package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/i474232898/weather-charts/internal/logx"
)

var (
	// ErrNoProviders is returned when the service has nothing to fetch from.
	ErrNoProviders = errors.New("no weather providers configured")
	// ErrNoForecast is returned when no forecast provider produced data.
	ErrNoForecast = errors.New("no forecast data available")
	// ErrInvalidDays is returned for a forecast length outside 1..MaxForecastDays.
	ErrInvalidDays = errors.New("days must be between 1 and 7")
)

// MaxForecastDays is the longest forecast the service will request.
const MaxForecastDays = 7

// DefaultForecastTTL is how long a fetched forecast is served from the store.
const DefaultForecastTTL = 30 * time.Minute

func serviceLog() *zerolog.Logger {
	l := logx.Component("service")
	return &l
}

// Service orchestrates fetching from multiple providers and persisting snapshots.
type Service struct {
	store       Store
	providers   []Provider
	resolver    Resolver
	forecastTTL time.Duration
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithResolver sets the resolver used to geocode locations lacking coordinates.
func WithResolver(r Resolver) Option {
	return func(s *Service) { s.resolver = r }
}

// WithForecastTTL sets how long cached forecasts are reused.
func WithForecastTTL(ttl time.Duration) Option {
	return func(s *Service) { s.forecastTTL = ttl }
}

// WithClock overrides the service clock; used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new Service.
func NewService(store Store, providers []Provider, opts ...Option) *Service {
	s := &Service{
		store:       store,
		providers:   providers,
		forecastTTL: DefaultForecastTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// resolve fills in coordinates when a resolver is configured. A failed lookup
// is logged and the location is returned unchanged so name-based providers
// can still serve it.
func (s *Service) resolve(ctx context.Context, loc Location) Location {
	if s.resolver == nil || loc.HasCoordinates() {
		return loc
	}
	resolved, err := s.resolver.Resolve(ctx, loc)
	if err != nil {
		serviceLog().Warn().Err(err).Str("location", loc.Key()).Msg("geocoding failed")
		return loc
	}
	return resolved
}

// FetchAndStore fetches data from all providers concurrently for the given location,
// aggregates successful readings, and stores a snapshot.
func (s *Service) FetchAndStore(ctx context.Context, loc Location) error {
	if len(s.providers) == 0 {
		serviceLog().Error().Str("location", loc.Key()).Msg("no providers available")
		return ErrNoProviders
	}
	loc = s.resolve(ctx, loc)
	serviceLog().Debug().Str("location", loc.Key()).Int("providers", len(s.providers)).Msg("fetching current weather")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		readings []ProviderReading
	)
	for _, p := range s.providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			r, err := p.Fetch(ctx, loc)
			if err != nil {
				// Partial success is fine.
				serviceLog().Warn().Err(err).Str("provider", p.Name()).Str("location", loc.Key()).Msg("provider fetch failed")
				return
			}
			mu.Lock()
			readings = append(readings, r)
			mu.Unlock()
		}(p)
	}
	wg.Wait()

	if len(readings) == 0 {
		// Do not overwrite the last good snapshot.
		serviceLog().Warn().Str("location", loc.Key()).Msg("no successful provider readings; keeping last snapshot")
		return nil
	}

	snapshot := AggregateReadings(loc, readings)
	s.store.SaveSnapshot(loc, snapshot)
	serviceLog().Debug().Str("location", loc.Key()).Int("readings", len(readings)).Msg("snapshot stored")
	return nil
}

// GetForecast returns an hourly forecast covering days days. A cached
// forecast at least that long and younger than the TTL is reused.
func (s *Service) GetForecast(ctx context.Context, loc Location, days int) (HourlyForecast, error) {
	if days < 1 || days > MaxForecastDays {
		return HourlyForecast{}, ErrInvalidDays
	}
	if cached, err := s.store.GetForecast(loc, s.forecastTTL); err == nil && cached.Days >= days {
		serviceLog().Debug().Str("location", loc.Key()).Int("days", days).Msg("serving cached forecast")
		return cached.Trim(days), nil
	}
	return s.RefreshForecast(ctx, loc, days)
}

// RefreshForecast fetches a new forecast from every ForecastProvider,
// bypassing the cache, and stores the merged result.
func (s *Service) RefreshForecast(ctx context.Context, loc Location, days int) (HourlyForecast, error) {
	if days < 1 || days > MaxForecastDays {
		return HourlyForecast{}, ErrInvalidDays
	}
	loc = s.resolve(ctx, loc)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		all     []HourlyReading
		sources []string
	)
	for _, p := range s.providers {
		fp, ok := p.(ForecastProvider)
		if !ok {
			continue
		}
		wg.Add(1)
		go func(fp ForecastProvider) {
			defer wg.Done()
			hours, err := fp.FetchHourly(ctx, loc, days)
			if err != nil {
				serviceLog().Warn().Err(err).Str("provider", fp.Name()).Str("location", loc.Key()).Msg("forecast fetch failed")
				return
			}
			if len(hours) == 0 {
				return
			}
			mu.Lock()
			all = append(all, hours...)
			sources = append(sources, fp.Name())
			mu.Unlock()
		}(fp)
	}
	wg.Wait()

	merged := AggregateHourly(all)
	if len(merged) == 0 {
		return HourlyForecast{}, fmt.Errorf("%s: %w", loc.Key(), ErrNoForecast)
	}

	forecast := HourlyForecast{
		Location:  loc,
		FetchedAt: s.now().UTC(),
		Days:      days,
		Hours:     merged,
		Providers: sources,
	}
	s.store.SaveForecast(loc, forecast)
	serviceLog().Info().Str("location", loc.Key()).Int("hours", len(merged)).Strs("providers", sources).Msg("forecast refreshed")
	return forecast, nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(loc Location) (WeatherSnapshot, error) {
	return s.store.GetLatest(loc)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(loc Location, from, to time.Time) ([]WeatherSnapshot, error) {
	return s.store.GetRange(loc, from, to)
}

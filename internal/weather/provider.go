package weather

import (
	"context"
	"time"
)

// ProviderReading represents a single provider's normalized reading
// that can be aggregated into a WeatherSnapshot.
type ProviderReading struct {
	ProviderName string
	Timestamp    time.Time

	TemperatureC float64
	DewPointC    float64
	HasDewPoint  bool
	HumidityPct  float64
	WindSpeedMS  float64
	PressureHpa  float64
	PrecipMm     float64
	Condition    Condition
}

// Provider abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (ProviderReading, error)
}

// ForecastProvider is a Provider that can also return an hourly forecast
// covering the given number of days from today.
type ForecastProvider interface {
	Provider
	FetchHourly(ctx context.Context, loc Location, days int) ([]HourlyReading, error)
}

// Resolver fills in a location's coordinates.
type Resolver interface {
	Resolve(ctx context.Context, loc Location) (Location, error)
}

// Store is the contract the in-memory store (and any future persistent store) must satisfy.
type Store interface {
	SaveSnapshot(loc Location, snapshot WeatherSnapshot)
	GetLatest(loc Location) (WeatherSnapshot, error)
	GetRange(loc Location, from, to time.Time) ([]WeatherSnapshot, error)

	SaveForecast(loc Location, forecast HourlyForecast)
	// GetForecast returns the cached forecast if it is younger than maxAge
	// (any age when maxAge <= 0).
	GetForecast(loc Location, maxAge time.Duration) (HourlyForecast, error)
}

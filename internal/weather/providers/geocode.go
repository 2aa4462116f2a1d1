package providers

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/weather-charts/internal/weather"
)

// ErrNoGeocoderKey is returned when geocoding is attempted without a key.
var ErrNoGeocoderKey = errors.New("geocoder api key is not configured")

type coords struct{ lat, lon float64 }

// GoogleGeocoder resolves city/country pairs to coordinates with the Google
// Geocoding API. Results are cached for the life of the process.
type GoogleGeocoder struct {
	enabled bool
	lookup  func(geocoder.Address) (geocoder.Location, error)

	mu    sync.Mutex
	cache map[string]coords
}

var _ weather.Resolver = (*GoogleGeocoder)(nil)

// NewGoogleGeocoder configures the geocoder package with apiKey. An empty key
// yields a resolver that only passes through locations that already have
// coordinates.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	if apiKey != "" {
		geocoder.ApiKey = apiKey
	}
	return newGeocoder(apiKey != "", geocoder.Geocoding)
}

func newGeocoder(enabled bool, lookup func(geocoder.Address) (geocoder.Location, error)) *GoogleGeocoder {
	return &GoogleGeocoder{
		enabled: enabled,
		lookup:  lookup,
		cache:   make(map[string]coords),
	}
}

// Resolve returns loc with Lat/Lon set. The underlying client does not take a
// context, so ctx is only checked before the lookup starts.
func (g *GoogleGeocoder) Resolve(ctx context.Context, loc weather.Location) (weather.Location, error) {
	if loc.HasCoordinates() {
		return loc, nil
	}
	if loc.City == "" {
		return loc, fmt.Errorf("geocode: city is required")
	}

	key := loc.Key()
	g.mu.Lock()
	c, ok := g.cache[key]
	g.mu.Unlock()
	if ok {
		return loc.WithCoordinates(c.lat, c.lon), nil
	}

	if !g.enabled {
		return loc, ErrNoGeocoderKey
	}
	if err := ctx.Err(); err != nil {
		return loc, err
	}

	res, err := g.lookup(geocoder.Address{City: loc.City, Country: loc.Country})
	if err != nil {
		return loc, fmt.Errorf("geocode %s: %w", key, err)
	}

	g.mu.Lock()
	g.cache[key] = coords{lat: res.Latitude, lon: res.Longitude}
	g.mu.Unlock()
	log.Info().Str("location", key).Float64("lat", res.Latitude).Float64("lon", res.Longitude).Msg("location geocoded")

	return loc.WithCoordinates(res.Latitude, res.Longitude), nil
}

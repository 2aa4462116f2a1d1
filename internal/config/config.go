package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-charts/internal/weather"
)

type AppConfig struct {
	Port     string `validate:"required,numeric"`
	LogLevel string `validate:"oneof=debug info warn error"`
	// LogPretty switches to zerolog's console writer.
	LogPretty bool

	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GeocoderAPIKey    string

	// FetchInterval controls how often we fetch data for each location.
	FetchInterval time.Duration `validate:"gte=1m"`
	HTTPTimeout   time.Duration `validate:"gt=0"`

	// Locations to track.
	Locations []weather.Location

	// In-memory store retention.
	StoreMaxHistory int           `validate:"gte=0"` // 0 = unlimited
	StoreMaxAge     time.Duration `validate:"gte=0"` // 0 = unlimited

	ForecastDays int           `validate:"min=1,max=7"`
	ForecastTTL  time.Duration `validate:"gte=0"`

	ChartTimezone string `validate:"required"`
	ChartLayout   string `validate:"oneof=detailed compact"`

	// Zone is ChartTimezone loaded.
	Zone *time.Location `validate:"-"`
}

var validate = validator.New()

// Load reads configuration from the environment (and a .env file if present)
// with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &AppConfig{
		Port:              getenvDefault("PORT", "8080"),
		LogLevel:          strings.ToLower(getenvDefault("LOG_LEVEL", "info")),
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		WeatherAPIKey:     os.Getenv("WEATHERAPI_API_KEY"),
		GeocoderAPIKey:    os.Getenv("GEOCODER_API_KEY"),
		StoreMaxHistory:   96, // roughly 24h at 15-minute intervals
		ForecastDays:      3,
		ChartTimezone:     getenvDefault("CHART_TIMEZONE", "America/New_York"),
		ChartLayout:       strings.ToLower(getenvDefault("CHART_LAYOUT", "detailed")),
	}

	var err error
	if cfg.LogPretty, err = getenvBool("LOG_PRETTY", false); err != nil {
		return nil, err
	}
	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"FETCH_INTERVAL", "15m", &cfg.FetchInterval},
		{"HTTP_TIMEOUT", "10s", &cfg.HTTPTimeout},
		{"STORE_MAX_AGE", "24h", &cfg.StoreMaxAge},
		{"FORECAST_TTL", "30m", &cfg.ForecastTTL},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getenvDefault(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}
	if cfg.StoreMaxHistory, err = getenvInt("STORE_MAX_HISTORY", cfg.StoreMaxHistory); err != nil {
		return nil, err
	}
	if cfg.ForecastDays, err = getenvInt("FORECAST_DAYS", cfg.ForecastDays); err != nil {
		return nil, err
	}

	if cfg.Locations, err = loadLocations(); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Zone, err = time.LoadLocation(cfg.ChartTimezone); err != nil {
		return nil, fmt.Errorf("invalid CHART_TIMEZONE: %w", err)
	}
	return cfg, nil
}

// loadLocations pairs the comma-separated city, country and optional
// lat/lon lists element by element.
func loadLocations() ([]weather.Location, error) {
	cities := splitList(os.Getenv("WEATHER_LOCATION_CITY"))
	if len(cities) == 0 {
		return nil, nil
	}
	countries := splitList(os.Getenv("WEATHER_LOCATION_COUNTRY"))
	if len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}
	lats := splitList(os.Getenv("WEATHER_LOCATION_LAT"))
	lons := splitList(os.Getenv("WEATHER_LOCATION_LON"))
	if len(lats) != len(lons) || (len(lats) > 0 && len(lats) != len(cities)) {
		return nil, fmt.Errorf("latitudes and longitudes must be given for every city or not at all")
	}

	locs := make([]weather.Location, 0, len(cities))
	for i := range cities {
		loc := weather.Location{City: cities[i], Country: countries[i]}
		if len(lats) > 0 {
			lat, err := strconv.ParseFloat(lats[i], 64)
			if err != nil || lat < -90 || lat > 90 {
				return nil, fmt.Errorf("invalid latitude %q", lats[i])
			}
			lon, err := strconv.ParseFloat(lons[i], 64)
			if err != nil || lon < -180 || lon > 180 {
				return nil, fmt.Errorf("invalid longitude %q", lons[i])
			}
			loc = loc.WithCoordinates(lat, lon)
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

// Command weather-charts serves and renders temperature and dew point charts.
package main

import (
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/i474232898/weather-charts/internal/config"
	"github.com/i474232898/weather-charts/internal/logx"
	"github.com/i474232898/weather-charts/internal/store"
	"github.com/i474232898/weather-charts/internal/weather"
	"github.com/i474232898/weather-charts/internal/weather/providers"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("weather-charts failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "weather-charts",
		Short:         "Aggregate weather data and draw temperature/dew point charts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newServeCmd(), newRenderCmd())
	return rootCmd
}

// loadConfig reads the configuration and sets up logging from it.
func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logx.Setup(cfg.LogLevel, cfg.LogPretty)
	return cfg, nil
}

// newService wires the store, providers and geocoder.
func newService(cfg *config.AppConfig) (*weather.Service, *store.MemoryStore) {
	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	// Providers sit behind a circuit breaker. Keyed providers
	// are only added when a key is configured.
	provs := []weather.Provider{providers.NewOpenMeteoProvider(httpClient)}
	if cfg.WeatherAPIKey != "" {
		provs = append(provs, providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey))
	}
	if cfg.OpenWeatherAPIKey != "" {
		provs = append(provs, providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey))
	}

	names := make([]string, len(provs))
	for i, p := range provs {
		names[i] = p.Name()
	}
	log.Info().Strs("providers", names).Bool("geocoding", cfg.GeocoderAPIKey != "").Msg("providers configured")

	svc := weather.NewService(memStore, provs,
		weather.WithResolver(providers.NewGoogleGeocoder(cfg.GeocoderAPIKey)),
		weather.WithForecastTTL(cfg.ForecastTTL),
	)
	return svc, memStore
}

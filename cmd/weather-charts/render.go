package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/i474232898/weather-charts/internal/chart"
	"github.com/i474232898/weather-charts/internal/render"
	"github.com/i474232898/weather-charts/internal/weather"
)

type renderOptions struct {
	city, country string
	lat, lon      float64
	days          int
	width, height float64
	layout        string
	format        string
	input         string
	out           string
}

func newRenderCmd() *cobra.Command {
	var o renderOptions
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a forecast chart once and exit",
		Long: `render fetches an hourly forecast for one location and writes the chart
as SVG, or as the composed scene in JSON. With --input it charts a forecast
saved from /api/v1/weather/forecast instead of calling any provider.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), cmd, o)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.city, "city", "", "City to chart")
	f.StringVar(&o.country, "country", "", "Country code of the city")
	f.Float64Var(&o.lat, "lat", 0, "Latitude (skips geocoding; requires --lon)")
	f.Float64Var(&o.lon, "lon", 0, "Longitude (requires --lat)")
	f.IntVar(&o.days, "days", 0, "Forecast days 1-7 (default FORECAST_DAYS)")
	f.Float64Var(&o.width, "width", 0, "Chart width in pixels; below 1000 falls back to 1200")
	f.Float64Var(&o.height, "height", 400, "Chart height in pixels")
	f.StringVar(&o.layout, "layout", "", "Layout: detailed or compact (default CHART_LAYOUT)")
	f.StringVar(&o.format, "format", "svg", "Output format: svg or json")
	f.StringVarP(&o.input, "input", "i", "", "Forecast JSON file to chart instead of fetching")
	f.StringVarP(&o.out, "out", "o", "", "Output file path (default: stdout)")
	cmd.MarkFlagsRequiredTogether("lat", "lon")
	return cmd
}

func runRender(ctx context.Context, cmd *cobra.Command, o renderOptions) error {
	if o.format != "svg" && o.format != "json" {
		return fmt.Errorf("invalid format: %s (must be svg or json)", o.format)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if o.layout == "" {
		o.layout = cfg.ChartLayout
	}
	layout, err := chart.LayoutByName(o.layout)
	if err != nil {
		return err
	}
	if o.days == 0 {
		o.days = cfg.ForecastDays
	}

	var forecast weather.HourlyForecast
	if o.input != "" {
		if forecast, err = readForecast(o.input); err != nil {
			return err
		}
	} else {
		loc := weather.Location{City: o.city, Country: o.country}
		if cmd.Flags().Changed("lat") {
			loc = loc.WithCoordinates(o.lat, o.lon)
		}
		if loc.City == "" && !loc.HasCoordinates() {
			return errors.New("either --city or --lat/--lon is required")
		}

		service, _ := newService(cfg)
		ctx, cancel := context.WithTimeout(ctx, 2*cfg.HTTPTimeout)
		defer cancel()
		if forecast, err = service.GetForecast(ctx, loc, o.days); err != nil {
			return fmt.Errorf("fetch forecast: %w", err)
		}
	}

	scene, err := chart.NewComposer(layout, chart.DefaultColors(), cfg.Zone).
		Compose(weather.ForecastSeries(forecast), chart.Viewport{Width: o.width, Height: o.height})
	if scene.Empty {
		return err
	}
	if err != nil {
		log.Warn().Err(err).Msg("some series were skipped")
	}

	return writeOutput(o.out, func(w io.Writer) error {
		if o.format == "json" {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(scene)
		}
		return render.SVG(w, scene)
	})
}

func readForecast(path string) (weather.HourlyForecast, error) {
	var f weather.HourlyForecast
	data, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parse %s: %w", path, err)
	}
	return f, nil
}

func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		bw := bufio.NewWriter(os.Stdout)
		if err := write(bw); err != nil {
			return err
		}
		return bw.Flush()
	}

	tmp := fmt.Sprintf("%s.%d.tmp", path, time.Now().UnixNano())
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

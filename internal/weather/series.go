package weather

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/i474232898/weather-charts/internal/chart"
)

// ForecastSeries converts a forecast into temperature and dew point series.
func ForecastSeries(f HourlyForecast) []chart.Series {
	hours := append([]HourlyReading(nil), f.Hours...)
	sort.SliceStable(hours, func(i, j int) bool { return hours[i].Timestamp.Before(hours[j].Timestamp) })

	times := make([]int64, len(hours))
	temps := make([]float64, len(hours))
	dews := make([]float64, len(hours))
	for i, h := range hours {
		times[i] = h.Timestamp.UnixMilli()
		temps[i] = h.TemperatureC
		dews[i] = h.DewPointC
	}
	return []chart.Series{
		chart.NewSeries(chart.LabelTemperature, times, temps),
		chart.NewSeries(chart.LabelDewPoint, times, dews),
	}
}

// HistorySeries converts stored snapshots into temperature and dew point
// series. Snapshots without a dew point are left out of the dew point series.
func HistorySeries(snaps []WeatherSnapshot) []chart.Series {
	snaps = append([]WeatherSnapshot(nil), snaps...)
	sort.SliceStable(snaps, func(i, j int) bool { return snaps[i].Timestamp.Before(snaps[j].Timestamp) })

	var (
		tTimes, dTimes []int64
		temps, dews    []float64
	)
	for _, s := range snaps {
		ms := s.Timestamp.UnixMilli()
		tTimes = append(tTimes, ms)
		temps = append(temps, s.Temperature)
		if s.DewPoint != nil {
			dTimes = append(dTimes, ms)
			dews = append(dews, *s.DewPoint)
		}
	}
	return []chart.Series{
		chart.NewSeries(chart.LabelTemperature, tTimes, temps),
		chart.NewSeries(chart.LabelDewPoint, dTimes, dews),
	}
}

// Source selects where chart data comes from.
type Source string

const (
	SourceForecast Source = "forecast"
	SourceHistory  Source = "history"
)

// DefaultHistoryWindow is how far back SourceHistory looks when no window is given.
const DefaultHistoryWindow = 24 * time.Hour

// ChartSeries loads the temperature and dew point series for loc. days
// applies to SourceForecast and window to SourceHistory.
func (s *Service) ChartSeries(ctx context.Context, loc Location, src Source, days int, window time.Duration) ([]chart.Series, error) {
	switch src {
	case SourceForecast, "":
		f, err := s.GetForecast(ctx, loc, days)
		if err != nil {
			return nil, err
		}
		return ForecastSeries(f), nil
	case SourceHistory:
		if window <= 0 {
			window = DefaultHistoryWindow
		}
		to := s.now().UTC()
		snaps, err := s.GetRange(loc, to.Add(-window), to)
		if err != nil {
			return nil, err
		}
		return HistorySeries(snaps), nil
	default:
		return nil, fmt.Errorf("unknown chart source %q", src)
	}
}

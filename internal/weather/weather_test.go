package weather_test

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weather-charts/internal/chart"
	"github.com/i474232898/weather-charts/internal/store"
	"github.com/i474232898/weather-charts/internal/weather"
)

type fakeProvider struct {
	name    string
	reading weather.ProviderReading
	hours   []weather.HourlyReading
	err     error
	calls   atomic.Int32
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	if f.err != nil {
		return weather.ProviderReading{}, f.err
	}
	r := f.reading
	r.ProviderName = f.name
	return r, nil
}

func (f *fakeProvider) FetchHourly(ctx context.Context, loc weather.Location, days int) ([]weather.HourlyReading, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.hours, nil
}

// currentOnly has no hourly forecast.
type currentOnly struct{ name string }

func (c currentOnly) Name() string { return c.name }

func (c currentOnly) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	return weather.ProviderReading{ProviderName: c.name, Timestamp: time.Now()}, nil
}

type fakeResolver struct{ lat, lon float64 }

func (r fakeResolver) Resolve(ctx context.Context, loc weather.Location) (weather.Location, error) {
	return loc.WithCoordinates(r.lat, r.lon), nil
}

var boston = weather.Location{City: "Boston", Country: "US"}

func hourly(start time.Time, n int, temp, dew float64) []weather.HourlyReading {
	out := make([]weather.HourlyReading, n)
	for i := range out {
		out[i] = weather.HourlyReading{
			Timestamp:    start.Add(time.Duration(i) * time.Hour),
			TemperatureC: temp + float64(i),
			DewPointC:    dew,
		}
	}
	return out
}

func TestDewPoint(t *testing.T) {
	dew, ok := weather.DewPointC(20, 100)
	if !ok || math.Abs(dew-20) > 1e-9 {
		t.Errorf("saturated air: expected dew point 20, got %v (ok=%v)", dew, ok)
	}
	dew, ok = weather.DewPointC(25, 50)
	if !ok || math.Abs(dew-13.85) > 0.1 {
		t.Errorf("expected ~13.85, got %v", dew)
	}
	if _, ok := weather.DewPointC(20, 0); ok {
		t.Errorf("expected zero humidity to be rejected")
	}
}

func TestAggregateReadings(t *testing.T) {
	ts := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	snap := weather.AggregateReadings(boston, []weather.ProviderReading{
		{ProviderName: "a", Timestamp: ts, TemperatureC: 20, DewPointC: 10, HasDewPoint: true, Condition: weather.ConditionRain},
		{ProviderName: "b", Timestamp: ts.Add(time.Minute), TemperatureC: 22, Condition: weather.ConditionClear},
		{ProviderName: "c", Timestamp: ts, TemperatureC: 24, DewPointC: 14, HasDewPoint: true, Condition: weather.ConditionClear},
	})
	if snap.Temperature != 22 {
		t.Errorf("expected average temperature 22, got %v", snap.Temperature)
	}
	if snap.DewPoint == nil || *snap.DewPoint != 12 {
		t.Errorf("expected dew point 12 from the reporting providers, got %v", snap.DewPoint)
	}
	if snap.Condition != weather.ConditionClear {
		t.Errorf("expected majority condition clear, got %s", snap.Condition)
	}
	if !snap.Timestamp.Equal(ts.Add(time.Minute)) {
		t.Errorf("expected newest timestamp, got %v", snap.Timestamp)
	}
	if len(snap.Providers) != 3 {
		t.Errorf("expected 3 contributions, got %d", len(snap.Providers))
	}
}

func TestAggregateHourly(t *testing.T) {
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	a := hourly(start, 3, 20, 10)
	b := hourly(start.Add(time.Hour+15*time.Minute), 3, 24, 12)

	got := weather.AggregateHourly(append(b, a...))
	if len(got) != 4 {
		t.Fatalf("expected 4 hours, got %d: %+v", len(got), got)
	}
	for i := 1; i < len(got); i++ {
		if !got[i].Timestamp.After(got[i-1].Timestamp) {
			t.Fatalf("hours not ascending: %+v", got)
		}
	}
	// Hour 1 holds a[1]=21 and b[0]=24.
	if got[1].TemperatureC != 22.5 || got[1].DewPointC != 11 {
		t.Errorf("unexpected merged hour: %+v", got[1])
	}
}

func TestServiceFetchAndStore(t *testing.T) {
	st := store.NewMemoryStore(0, 0)

	svc := weather.NewService(st, nil)
	if err := svc.FetchAndStore(context.Background(), boston); !errors.Is(err, weather.ErrNoProviders) {
		t.Fatalf("expected ErrNoProviders, got %v", err)
	}

	ok := &fakeProvider{name: "ok", reading: weather.ProviderReading{Timestamp: time.Now(), TemperatureC: 18}}
	bad := &fakeProvider{name: "bad", err: errors.New("boom")}
	svc = weather.NewService(st, []weather.Provider{ok, bad})
	if err := svc.FetchAndStore(context.Background(), boston); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap, err := svc.GetLatest(boston)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Temperature != 18 || len(snap.Providers) != 1 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	// All providers failing keeps the previous snapshot.
	svc = weather.NewService(st, []weather.Provider{bad})
	if err := svc.FetchAndStore(context.Background(), boston); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again, _ := svc.GetLatest(boston); again.Temperature != 18 {
		t.Errorf("expected last good snapshot kept, got %+v", again)
	}
}

func TestServiceForecastCaching(t *testing.T) {
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	st := store.NewMemoryStore(0, 0)
	st.SetClock(func() time.Time { return now })

	fp := &fakeProvider{name: "meteo", hours: hourly(now, 72, 20, 10)}
	plain := currentOnly{name: "plain"}
	svc := weather.NewService(st, []weather.Provider{fp, plain},
		weather.WithForecastTTL(time.Hour),
		weather.WithClock(func() time.Time { return now }),
		weather.WithResolver(fakeResolver{lat: 42.36, lon: -71.06}),
	)

	if _, err := svc.GetForecast(context.Background(), boston, 0); !errors.Is(err, weather.ErrInvalidDays) {
		t.Fatalf("expected ErrInvalidDays, got %v", err)
	}
	if _, err := svc.GetForecast(context.Background(), boston, 8); !errors.Is(err, weather.ErrInvalidDays) {
		t.Fatalf("expected ErrInvalidDays, got %v", err)
	}

	f, err := svc.GetForecast(context.Background(), boston, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Hours) != 72 || !f.Location.HasCoordinates() {
		t.Errorf("unexpected forecast: %d hours, location %+v", len(f.Hours), f.Location)
	}

	short, err := svc.GetForecast(context.Background(), boston, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(short.Hours) != 24 {
		t.Errorf("expected trimmed forecast of 24 hours, got %d", len(short.Hours))
	}
	if n := fp.calls.Load(); n != 1 {
		t.Errorf("expected cached forecast to be reused, provider called %d times", n)
	}

	now = now.Add(2 * time.Hour)
	if _, err := svc.GetForecast(context.Background(), boston, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := fp.calls.Load(); n != 2 {
		t.Errorf("expected stale forecast to be refetched, provider called %d times", n)
	}
}

func TestServiceNoForecast(t *testing.T) {
	st := store.NewMemoryStore(0, 0)
	fp := &fakeProvider{name: "meteo", err: errors.New("down")}
	svc := weather.NewService(st, []weather.Provider{fp})
	if _, err := svc.GetForecast(context.Background(), boston, 2); !errors.Is(err, weather.ErrNoForecast) {
		t.Fatalf("expected ErrNoForecast, got %v", err)
	}
}

func TestForecastSeries(t *testing.T) {
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	hours := hourly(start, 5, 20, 10)
	hours[0], hours[4] = hours[4], hours[0]

	series := weather.ForecastSeries(weather.HourlyForecast{Hours: hours})
	if len(series) != 2 || series[0].Label != chart.LabelTemperature || series[1].Label != chart.LabelDewPoint {
		t.Fatalf("unexpected series: %+v", series)
	}
	for _, s := range series {
		if err := s.Validate(); err != nil {
			t.Errorf("series %s invalid: %v", s.Label, err)
		}
	}
	if series[0].Points[0].Value != 20 {
		t.Errorf("expected points sorted by time, got %+v", series[0].Points)
	}
}

func TestHistorySeriesSkipsMissingDewPoint(t *testing.T) {
	ts := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	dew := 9.5
	series := weather.HistorySeries([]weather.WeatherSnapshot{
		{Timestamp: ts.Add(time.Hour), Temperature: 21},
		{Timestamp: ts, Temperature: 20, DewPoint: &dew},
	})
	if len(series[0].Points) != 2 || series[0].Points[0].Value != 20 {
		t.Errorf("unexpected temperature series: %+v", series[0].Points)
	}
	if len(series[1].Points) != 1 || series[1].Points[0].Value != 9.5 {
		t.Errorf("unexpected dew point series: %+v", series[1].Points)
	}
}

func TestChartSeriesHistoryWindow(t *testing.T) {
	now := time.Date(2024, 7, 2, 12, 0, 0, 0, time.UTC)
	st := store.NewMemoryStore(0, 0)
	for h := 0; h < 30; h++ {
		dew := 10.0
		st.SaveSnapshot(boston, weather.WeatherSnapshot{
			Timestamp:   now.Add(-time.Duration(h) * time.Hour),
			Temperature: float64(h),
			DewPoint:    &dew,
		})
	}
	svc := weather.NewService(st, nil, weather.WithClock(func() time.Time { return now }))

	series, err := svc.ChartSeries(context.Background(), boston, weather.SourceHistory, 0, 6*time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(series[0].Points); n != 7 {
		t.Errorf("expected 7 hourly points in a 6h inclusive window, got %d", n)
	}

	series, err = svc.ChartSeries(context.Background(), boston, weather.SourceHistory, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(series[0].Points); n != 25 {
		t.Errorf("expected the default 24h window, got %d points", n)
	}

	if _, err := svc.ChartSeries(context.Background(), boston, weather.Source("radar"), 1, 0); err == nil {
		t.Errorf("expected an error for an unknown source")
	}
}

package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-charts/internal/chart"
	"github.com/i474232898/weather-charts/internal/store"
	"github.com/i474232898/weather-charts/internal/weather"
)

type stubForecaster struct {
	hours []weather.HourlyReading
}

func (s stubForecaster) Name() string { return "stub" }

func (s stubForecaster) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	return weather.ProviderReading{ProviderName: "stub", Timestamp: time.Now(), TemperatureC: 20}, nil
}

func (s stubForecaster) FetchHourly(ctx context.Context, loc weather.Location, days int) ([]weather.HourlyReading, error) {
	return s.hours, nil
}

func stubHours(n int) []weather.HourlyReading {
	start := time.Date(2024, 7, 1, 10, 0, 0, 0, chart.Eastern)
	hours := make([]weather.HourlyReading, n)
	for i := range hours {
		hours[i] = weather.HourlyReading{
			Timestamp:    start.Add(time.Duration(i) * time.Hour),
			TemperatureC: 22 + 6*float64((i%24)-12)/12,
			DewPointC:    14 + float64(i%3),
		}
	}
	return hours
}

func newTestApp(providers ...weather.Provider) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	svc := weather.NewService(store.NewMemoryStore(10, time.Hour), providers)
	RegisterRoutes(app, svc)
	return app
}

func get(t *testing.T, app *fiber.App, target string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return resp
}

// TestForecastDaysValidation verifies that the forecast endpoint enforces the
// expected 1-7 range for the `days` query parameter.
func TestForecastDaysValidation(t *testing.T) {
	app := fiber.New()

	memStore := store.NewMemoryStore(10, time.Hour)
	svc := weather.NewService(memStore, nil)
	RegisterRoutes(app, svc)

	// Missing days parameter should return 400.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/forecast?city=Paris&country=FR", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	// Out-of-range days value should also return 400.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/weather/forecast?city=Paris&country=FR&days=8", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestForecastReturnsHours(t *testing.T) {
	app := newTestApp(stubForecaster{hours: stubHours(48)})

	resp := get(t, app, "/api/v1/weather/forecast?city=Paris&country=FR&days=2")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var f weather.HourlyForecast
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(f.Hours) != 48 || f.Days != 2 {
		t.Errorf("unexpected forecast: %d hours, %d days", len(f.Hours), f.Days)
	}
}

func TestChartSVG(t *testing.T) {
	app := newTestApp(stubForecaster{hours: stubHours(36)})

	resp := get(t, app, "/api/v1/weather/chart?city=Boston&country=US&days=2")
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); !strings.HasPrefix(ct, "image/svg+xml") {
		t.Errorf("unexpected content type %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "<svg") || !strings.Contains(string(body), "gradient-temperature") {
		t.Errorf("expected an SVG with the temperature gradient")
	}
}

func TestChartJSONNormalizesViewport(t *testing.T) {
	app := newTestApp(stubForecaster{hours: stubHours(36)})

	resp := get(t, app, "/api/v1/weather/chart?city=Boston&country=US&format=json&width=800&layout=compact")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var scene chart.Scene
	if err := json.NewDecoder(resp.Body).Decode(&scene); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if scene.Width != chart.FallbackViewportWidth || scene.Height != DefaultChartHeight {
		t.Errorf("expected %vx%v viewport, got %vx%v", chart.FallbackViewportWidth, DefaultChartHeight, scene.Width, scene.Height)
	}
	if scene.Layout != chart.CompactLayout.Name || len(scene.Series) != 2 {
		t.Errorf("unexpected scene: layout %q, %d series", scene.Layout, len(scene.Series))
	}
	for _, s := range scene.Series {
		if s.Gradient != nil {
			t.Errorf("compact layout should not use gradients")
		}
	}
}

func TestChartValidation(t *testing.T) {
	app := newTestApp(stubForecaster{hours: stubHours(24)})

	for _, target := range []string{
		"/api/v1/weather/chart",
		"/api/v1/weather/chart?city=Boston&layout=fancy",
		"/api/v1/weather/chart?city=Boston&format=png",
		"/api/v1/weather/chart?city=Boston&days=9",
		"/api/v1/weather/chart?lat=120&lon=10",
		"/api/v1/weather/chart?lat=42.3",
		"/api/v1/weather/chart?city=Boston&width=-5",
	} {
		if resp := get(t, app, target); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, resp.StatusCode)
		}
	}
}

func TestChartWithoutData(t *testing.T) {
	app := newTestApp(stubForecaster{})

	resp := get(t, app, "/api/v1/weather/chart?lat=42.36&lon=-71.06")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var body struct {
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Error || body.Message == "" {
		t.Errorf("unexpected error body: %+v", body)
	}

	resp = get(t, app, "/api/v1/weather/chart?city=Boston&country=US&source=history")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for empty history, got %d", resp.StatusCode)
	}
}

func TestCurrentAndHealth(t *testing.T) {
	app := newTestApp()
	if resp := get(t, app, "/health"); resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 from health, got %d", resp.StatusCode)
	}
	if resp := get(t, app, "/api/v1/weather/current?city=Paris"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 without country, got %d", resp.StatusCode)
	}
	if resp := get(t, app, "/api/v1/weather/current?city=Paris&country=FR"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 with empty store, got %d", resp.StatusCode)
	}
}

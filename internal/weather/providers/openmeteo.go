package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/weather-charts/internal/weather"
)

// OpenMeteoProvider implements weather.ForecastProvider for Open-Meteo.
// It needs no API key but only accepts coordinates.
type OpenMeteoProvider struct {
	base
}

var _ weather.ForecastProvider = (*OpenMeteoProvider)(nil)

func NewOpenMeteoProvider(client *http.Client, opts ...Option) *OpenMeteoProvider {
	return &OpenMeteoProvider{base: newBase("openmeteo", "https://api.open-meteo.com/v1", client, opts)}
}

func coordValues(loc weather.Location) (url.Values, error) {
	if !loc.HasCoordinates() {
		return nil, fmt.Errorf("openmeteo: %w", ErrNeedsCoordinates)
	}
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(*loc.Lat, 'f', 4, 64))
	values.Set("longitude", strconv.FormatFloat(*loc.Lon, 'f', 4, 64))
	values.Set("timeformat", "unixtime")
	values.Set("wind_speed_unit", "ms")
	return values, nil
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	values, err := coordValues(loc)
	if err != nil {
		return weather.ProviderReading{}, err
	}
	values.Set("current", "temperature_2m,relative_humidity_2m,dew_point_2m,wind_speed_10m,surface_pressure,precipitation,weather_code")

	var payload struct {
		Current struct {
			Time        int64    `json:"time"`
			Temperature float64  `json:"temperature_2m"`
			Humidity    float64  `json:"relative_humidity_2m"`
			DewPoint    *float64 `json:"dew_point_2m"`
			WindSpeed   float64  `json:"wind_speed_10m"`
			Pressure    float64  `json:"surface_pressure"`
			Precip      float64  `json:"precipitation"`
			WeatherCode int      `json:"weather_code"`
		} `json:"current"`
	}
	if err := p.getJSON(ctx, "/forecast", values, &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	cur := payload.Current
	ts := time.Now().UTC()
	if cur.Time > 0 {
		ts = time.Unix(cur.Time, 0).UTC()
	}
	r := weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts,
		TemperatureC: cur.Temperature,
		HumidityPct:  cur.Humidity,
		WindSpeedMS:  cur.WindSpeed,
		PressureHpa:  cur.Pressure,
		PrecipMm:     cur.Precip,
		Condition:    mapOpenMeteoCondition(cur.WeatherCode),
	}
	if cur.DewPoint != nil {
		r.DewPointC, r.HasDewPoint = *cur.DewPoint, true
	} else {
		r.DewPointC, r.HasDewPoint = weather.DewPointC(cur.Temperature, cur.Humidity)
	}
	return r, nil
}

// FetchHourly returns hourly temperature and dew point for days days
// starting at local midnight of the location.
func (p *OpenMeteoProvider) FetchHourly(ctx context.Context, loc weather.Location, days int) ([]weather.HourlyReading, error) {
	values, err := coordValues(loc)
	if err != nil {
		return nil, err
	}
	values.Set("hourly", "temperature_2m,dew_point_2m")
	values.Set("forecast_days", strconv.Itoa(days))
	values.Set("timezone", "auto")

	var payload struct {
		Hourly struct {
			Time        []int64    `json:"time"`
			Temperature []*float64 `json:"temperature_2m"`
			DewPoint    []*float64 `json:"dew_point_2m"`
		} `json:"hourly"`
	}
	if err := p.getJSON(ctx, "/forecast", values, &payload); err != nil {
		return nil, err
	}

	h := payload.Hourly
	if len(h.Temperature) != len(h.Time) || len(h.DewPoint) != len(h.Time) {
		return nil, fmt.Errorf("openmeteo: hourly arrays differ in length")
	}
	out := make([]weather.HourlyReading, 0, len(h.Time))
	for i, ts := range h.Time {
		// Missing hours come back as null.
		if h.Temperature[i] == nil || h.DewPoint[i] == nil {
			continue
		}
		out = append(out, weather.HourlyReading{
			ProviderName: p.name,
			Timestamp:    time.Unix(ts, 0).UTC(),
			TemperatureC: *h.Temperature[i],
			DewPointC:    *h.DewPoint[i],
		})
	}
	return out, nil
}

// mapOpenMeteoCondition maps WMO weather codes.
func mapOpenMeteoCondition(code int) weather.Condition {
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionCloudy
	case code == 45 || code == 48:
		return weather.ConditionMist
	case (code >= 51 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95:
		return weather.ConditionStorm
	default:
		return weather.ConditionUnknown
	}
}

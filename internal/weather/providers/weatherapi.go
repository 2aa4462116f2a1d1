package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/weather-charts/internal/common"
	"github.com/i474232898/weather-charts/internal/weather"
)

// WeatherAPIProvider implements weather.ForecastProvider for WeatherAPI.com.
type WeatherAPIProvider struct {
	base
	apiKey string
}

var _ weather.ForecastProvider = (*WeatherAPIProvider)(nil)

func NewWeatherAPIProvider(client *http.Client, apiKey string, opts ...Option) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		base:   newBase("weatherapi", "https://api.weatherapi.com/v1", client, opts),
		apiKey: apiKey,
	}
}

// values builds the common query; WeatherAPI accepts "city,country" or "lat,lon" as q.
func (p *WeatherAPIProvider) values(loc weather.Location) (url.Values, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("weatherapi: %w", ErrMissingAPIKey)
	}
	values := url.Values{}
	values.Set("key", p.apiKey)
	if loc.HasCoordinates() {
		values.Set("q", fmt.Sprintf("%.4f,%.4f", *loc.Lat, *loc.Lon))
	} else {
		values.Set("q", query(loc.City, loc.Country))
	}
	return values, nil
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, loc weather.Location) (weather.ProviderReading, error) {
	values, err := p.values(loc)
	if err != nil {
		return weather.ProviderReading{}, err
	}

	var payload struct {
		Current struct {
			LastUpdatedEpoch int64    `json:"last_updated_epoch"`
			TempC            float64  `json:"temp_c"`
			DewPointC        *float64 `json:"dewpoint_c"`
			Humidity         float64  `json:"humidity"`
			WindKph          float64  `json:"wind_kph"`
			PressureMb       float64  `json:"pressure_mb"`
			PrecipMm         float64  `json:"precip_mm"`
			Condition        struct {
				Text string `json:"text"`
			} `json:"condition"`
		} `json:"current"`
	}
	if err := p.getJSON(ctx, "/current.json", values, &payload); err != nil {
		return weather.ProviderReading{}, err
	}

	cur := payload.Current
	ts := time.Now().UTC()
	if cur.LastUpdatedEpoch > 0 {
		ts = time.Unix(cur.LastUpdatedEpoch, 0).UTC()
	}
	r := weather.ProviderReading{
		ProviderName: p.name,
		Timestamp:    ts,
		TemperatureC: cur.TempC,
		HumidityPct:  cur.Humidity,
		WindSpeedMS:  cur.WindKph / 3.6,
		PressureHpa:  cur.PressureMb,
		PrecipMm:     cur.PrecipMm,
		Condition:    mapWeatherAPICondition(cur.Condition.Text),
	}
	if cur.DewPointC != nil {
		r.DewPointC, r.HasDewPoint = *cur.DewPointC, true
	} else {
		r.DewPointC, r.HasDewPoint = weather.DewPointC(cur.TempC, cur.Humidity)
	}
	return r, nil
}

// FetchHourly reads the hour blocks of forecast.json.
func (p *WeatherAPIProvider) FetchHourly(ctx context.Context, loc weather.Location, days int) ([]weather.HourlyReading, error) {
	values, err := p.values(loc)
	if err != nil {
		return nil, err
	}
	values.Set("days", strconv.Itoa(days))
	values.Set("aqi", "no")
	values.Set("alerts", "no")

	var payload struct {
		Forecast struct {
			ForecastDay []struct {
				Hour []struct {
					TimeEpoch int64    `json:"time_epoch"`
					TempC     float64  `json:"temp_c"`
					DewPointC *float64 `json:"dewpoint_c"`
					Humidity  float64  `json:"humidity"`
				} `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}
	if err := p.getJSON(ctx, "/forecast.json", values, &payload); err != nil {
		return nil, err
	}

	var out []weather.HourlyReading
	for _, day := range payload.Forecast.ForecastDay {
		for _, h := range day.Hour {
			var (
				dew float64
				ok  bool
			)
			if h.DewPointC != nil {
				dew, ok = *h.DewPointC, true
			} else {
				dew, ok = weather.DewPointC(h.TempC, h.Humidity)
			}
			if !ok {
				continue
			}
			out = append(out, weather.HourlyReading{
				ProviderName: p.name,
				Timestamp:    time.Unix(h.TimeEpoch, 0).UTC(),
				TemperatureC: h.TempC,
				DewPointC:    dew,
			})
		}
	}
	return out, nil
}

func mapWeatherAPICondition(text string) weather.Condition {
	switch {
	case text == "":
		return weather.ConditionUnknown
	case common.ContainsAnyFold(text, "thunder", "storm"):
		return weather.ConditionStorm
	case common.ContainsAnyFold(text, "snow", "sleet", "blizzard", "ice pellets"):
		return weather.ConditionSnow
	case common.ContainsAnyFold(text, "rain", "shower", "drizzle"):
		return weather.ConditionRain
	case common.ContainsAnyFold(text, "mist", "fog"):
		return weather.ConditionMist
	case common.ContainsAnyFold(text, "cloud", "overcast"):
		return weather.ConditionCloudy
	case common.ContainsAnyFold(text, "sunny", "clear"):
		return weather.ConditionClear
	default:
		return weather.ConditionUnknown
	}
}

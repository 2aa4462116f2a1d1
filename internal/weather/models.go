package weather

import (
	"fmt"
	"time"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// Location represents a logical place for which we track weather.
// City/Country identify it; Lat/Lon are filled in by geocoding or config and
// are required by coordinate-only providers such as Open-Meteo.
type Location struct {
	City    string   `json:"city"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat,omitempty"`
	Lon     *float64 `json:"lon,omitempty"`
}

// Key returns a canonical string key for indexing this location in stores.
// Coordinates are not part of the key so a geocoded location still matches.
func (l Location) Key() string {
	if l.City == "" && l.HasCoordinates() {
		return fmt.Sprintf("%.4f,%.4f", *l.Lat, *l.Lon)
	}
	return l.City + ":" + l.Country
}

// HasCoordinates reports whether both latitude and longitude are set.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lon != nil
}

// WithCoordinates returns a copy of l with the given coordinates.
func (l Location) WithCoordinates(lat, lon float64) Location {
	l.Lat, l.Lon = &lat, &lon
	return l
}

// WeatherSnapshot is the normalized, aggregated weather view at a point in time.
type WeatherSnapshot struct {
	Location    Location  `json:"location"`
	Timestamp   time.Time `json:"timestamp"` // always UTC
	Temperature float64   `json:"temperatureC"`
	DewPoint    *float64  `json:"dewPointC,omitempty"`
	Humidity    float64   `json:"humidityPercent"`
	WindSpeed   float64   `json:"windSpeed"`
	Pressure    float64   `json:"pressureHpa"`
	PrecipMM    float64   `json:"precipMm"`
	Condition   Condition `json:"condition"`

	// Providers contributing to this snapshot.
	Providers []ProviderContribution `json:"providers,omitempty"`
}

// ProviderContribution describes data coming from a single provider used in aggregation.
type ProviderContribution struct {
	ProviderName string    `json:"provider"`
	Timestamp    time.Time `json:"timestamp"`
}

// HourlyReading is one hour of a provider's forecast.
type HourlyReading struct {
	ProviderName string    `json:"provider,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	TemperatureC float64   `json:"temperatureC"`
	DewPointC    float64   `json:"dewPointC"`
}

// HourlyForecast is an hour-by-hour forecast ordered by Timestamp ascending.
type HourlyForecast struct {
	Location  Location        `json:"location"`
	FetchedAt time.Time       `json:"fetchedAt"`
	Days      int             `json:"days"`
	Hours     []HourlyReading `json:"hours"`
	Providers []string        `json:"providers,omitempty"`
}

// Trim returns the forecast limited to the first days days after its first hour.
func (f HourlyForecast) Trim(days int) HourlyForecast {
	if days <= 0 || days >= f.Days || len(f.Hours) == 0 {
		return f
	}
	cutoff := f.Hours[0].Timestamp.Add(time.Duration(days) * 24 * time.Hour)
	out := f
	out.Days = days
	out.Hours = nil
	for _, h := range f.Hours {
		if !h.Timestamp.Before(cutoff) {
			break
		}
		out.Hours = append(out.Hours, h)
	}
	return out
}

package weather

import (
	"sort"
	"time"
)

// AggregateReadings combines multiple provider readings into a single WeatherSnapshot.
// Numeric fields are averaged; dew point is averaged over the providers that
// report one. Conditions are selected by majority, ties going to the condition
// seen first.
func AggregateReadings(loc Location, readings []ProviderReading) WeatherSnapshot {
	if len(readings) == 0 {
		return WeatherSnapshot{
			Location:  loc,
			Timestamp: time.Now().UTC(),
			Condition: ConditionUnknown,
		}
	}

	var (
		sumTemp, sumHumidity, sumWind float64
		sumPressure, sumPrecip        float64
		sumDew                        float64
		dewCount                      int
		newestTS                      time.Time
	)

	conditionCounts := make(map[Condition]int)
	var conditionOrder []Condition
	providers := make([]ProviderContribution, 0, len(readings))

	for _, r := range readings {
		sumTemp += r.TemperatureC
		sumHumidity += r.HumidityPct
		sumWind += r.WindSpeedMS
		sumPressure += r.PressureHpa
		sumPrecip += r.PrecipMm
		if r.HasDewPoint {
			sumDew += r.DewPointC
			dewCount++
		}

		if conditionCounts[r.Condition] == 0 {
			conditionOrder = append(conditionOrder, r.Condition)
		}
		conditionCounts[r.Condition]++

		if r.Timestamp.After(newestTS) {
			newestTS = r.Timestamp
		}
		providers = append(providers, ProviderContribution{
			ProviderName: r.ProviderName,
			Timestamp:    r.Timestamp,
		})
	}

	bestCond := ConditionUnknown
	bestCount := 0
	for _, cond := range conditionOrder {
		if conditionCounts[cond] > bestCount {
			bestCount = conditionCounts[cond]
			bestCond = cond
		}
	}

	if newestTS.IsZero() {
		newestTS = time.Now()
	}

	n := float64(len(readings))
	snap := WeatherSnapshot{
		Location:    loc,
		Timestamp:   newestTS.UTC(),
		Temperature: sumTemp / n,
		Humidity:    sumHumidity / n,
		WindSpeed:   sumWind / n,
		Pressure:    sumPressure / n,
		PrecipMM:    sumPrecip / n,
		Condition:   bestCond,
		Providers:   providers,
	}
	if dewCount > 0 {
		dew := sumDew / float64(dewCount)
		snap.DewPoint = &dew
	}
	return snap
}

// AggregateHourly merges hourly readings from several providers. Readings are
// bucketed by the UTC hour they fall in and averaged; the result is sorted by
// time with one reading per hour.
func AggregateHourly(readings []HourlyReading) []HourlyReading {
	type bucket struct {
		temp, dew float64
		n         int
	}
	buckets := make(map[int64]*bucket)
	for _, r := range readings {
		k := r.Timestamp.UTC().Truncate(time.Hour).Unix()
		b, ok := buckets[k]
		if !ok {
			b = &bucket{}
			buckets[k] = b
		}
		b.temp += r.TemperatureC
		b.dew += r.DewPointC
		b.n++
	}

	keys := make([]int64, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]HourlyReading, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		n := float64(b.n)
		out = append(out, HourlyReading{
			Timestamp:    time.Unix(k, 0).UTC(),
			TemperatureC: b.temp / n,
			DewPointC:    b.dew / n,
		})
	}
	return out
}

package weather

import "math"

// Magnus coefficients (Alduchov & Eskridge), valid roughly -45°C to 60°C.
const (
	magnusA = 17.625
	magnusB = 243.04
)

// DewPointC approximates the dew point in Celsius from air temperature and
// relative humidity. ok is false when humidity is outside (0, 100].
func DewPointC(tempC, humidityPct float64) (dew float64, ok bool) {
	if humidityPct <= 0 || humidityPct > 100 {
		return 0, false
	}
	gamma := math.Log(humidityPct/100) + magnusA*tempC/(magnusB+tempC)
	return magnusB * gamma / (magnusA - gamma), true
}

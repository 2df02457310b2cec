package hccutils

import (
	"fmt"
	"math"
)

var (
	ErrHumidityOutOfRange = fmt.Errorf("relative humidity outside 0-100%%")
	ErrTemperatureInvalid = fmt.Errorf("temperature is not finite")
)

// Magnus coefficients over water (Sonntag 1990).
const (
	magnusA         = 17.62
	magnusB         = 243.12
	magnusE0        = 6.112 // hPa
	waterVaporConst = 216.7 // g K / (m3 hPa)
)

// SaturationVaporPressure in hPa for a dry-bulb temperature in °C.
func SaturationVaporPressure(tempC float64) float64 {
	return magnusE0 * math.Exp(magnusA*tempC/(magnusB+tempC))
}

// AbsoluteHumidity returns water vapor density in g/m³.
func AbsoluteHumidity(tempC, relHumidity float64) (float64, error) {
	if err := checkHumidity(relHumidity); err != nil {
		return 0, err
	}
	e := SaturationVaporPressure(tempC) * relHumidity / 100
	return waterVaporConst * e / (tempC + 273.15), nil
}

// DewPoint in °C. Completely dry air has no dew point and is rejected.
func DewPoint(tempC, relHumidity float64) (float64, error) {
	if err := checkHumidity(relHumidity); err != nil {
		return 0, err
	}
	if relHumidity == 0 {
		return 0, fmt.Errorf("%w: no dew point at 0%%", ErrHumidityOutOfRange)
	}
	g := math.Log(relHumidity/100) + magnusA*tempC/(magnusB+tempC)
	return magnusB * g / (magnusA - g), nil
}

func Mean(values ...float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Round to the given number of decimals, for log output and storage.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// CheckReading rejects a raw sensor reading before it is combined with others.
func CheckReading(tempC, relHumidity float64) error {
	if math.IsNaN(tempC) || math.IsInf(tempC, 0) {
		return fmt.Errorf("%w: %v", ErrTemperatureInvalid, tempC)
	}
	return checkHumidity(relHumidity)
}

func checkHumidity(rh float64) error {
	if math.IsNaN(rh) || rh < 0 || rh > 100 {
		return fmt.Errorf("%w: %v", ErrHumidityOutOfRange, rh)
	}
	return nil
}

package aircon

import "github.com/NotCoffee418/home_climate_control/pkg/types"

// Intensity scores how hard a setting drives the aircon. Off scores 0.
func Intensity(s types.AirconSetting) int {
	if s.Power == types.PowerOff {
		return 0
	}
	return temperatureScore(s) + fanScore(s.FanSpeed) + modeScore(s.Mode)
}

func temperatureScore(s types.AirconSetting) int {
	switch {
	case s.Mode.IsCooling():
		switch {
		case s.Temperature <= 24:
			return 5
		case s.Temperature == 25:
			return 4
		case s.Temperature == 26:
			return 3
		case s.Temperature == 27:
			return 2
		default:
			return 1
		}
	case s.Mode.IsHeating():
		switch {
		case s.Temperature <= 24:
			return 5
		case s.Temperature == 25:
			return 4
		default:
			return 3
		}
	}
	return 0
}

func fanScore(f types.AirconFanSpeed) int {
	switch f {
	case types.FanSpeedHigh:
		return 3
	case types.FanSpeedMedium, types.FanSpeedAuto:
		return 2
	default:
		return 1
	}
}

func modeScore(m types.AirconMode) int {
	switch {
	case m.IsPowerful():
		return 4
	case m == types.AirconModeCool || m == types.AirconModeHeat:
		return 3
	case m == types.AirconModeDry:
		return 2
	default:
		return 1
	}
}

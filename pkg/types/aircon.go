package types

import (
	"fmt"
	"strconv"
)

var (
	ErrUnknownMode     = fmt.Errorf("unknown aircon mode")
	ErrUnknownFanSpeed = fmt.Errorf("unknown aircon fan speed")
	ErrUnknownPower    = fmt.Errorf("unknown power state")
	ErrInvalidSetting  = fmt.Errorf("invalid aircon setting")
)

// Temperature range accepted by the aircon's setAll command.
const (
	MinAirconTemperature = 16
	MaxAirconTemperature = 30
)

type AirconMode uint8

const (
	AirconModeAuto AirconMode = iota + 1
	AirconModeCool
	AirconModeDry
	AirconModeFan
	AirconModeHeat
	AirconModePowerfulCool
	AirconModePowerfulHeat
)

// Ids 1-5 are the device's setAll mode ids. The powerful modes have no
// setAll id; 6 and 7 only exist in our own records.
var airconModeIDs = map[AirconMode]string{
	AirconModeAuto:         "1",
	AirconModeCool:         "2",
	AirconModeDry:          "3",
	AirconModeFan:          "4",
	AirconModeHeat:         "5",
	AirconModePowerfulCool: "6",
	AirconModePowerfulHeat: "7",
}

var airconModeDescriptions = map[AirconMode]string{
	AirconModeAuto:         "auto",
	AirconModeCool:         "cooling",
	AirconModeDry:          "dry",
	AirconModeFan:          "fan",
	AirconModeHeat:         "heating",
	AirconModePowerfulCool: "powerful cooling",
	AirconModePowerfulHeat: "powerful heating",
}

var airconModesByID = invert(airconModeIDs)

func AirconModeByID(id string) (AirconMode, error) {
	if m, ok := airconModesByID[id]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, id)
}

func (m AirconMode) ID() string { return airconModeIDs[m] }

func (m AirconMode) String() string {
	if d, ok := airconModeDescriptions[m]; ok {
		return d
	}
	return "mode(" + strconv.Itoa(int(m)) + ")"
}

func (m AirconMode) Valid() bool {
	_, ok := airconModeIDs[m]
	return ok
}

// IsCooling reports whether the mode belongs to the cooling family.
func (m AirconMode) IsCooling() bool {
	return m == AirconModeCool || m == AirconModePowerfulCool
}

// IsHeating reports whether the mode belongs to the heating family.
func (m AirconMode) IsHeating() bool {
	return m == AirconModeHeat || m == AirconModePowerfulHeat
}

// IsPowerful modes can't be expressed with setAll and go out as a named command.
func (m AirconMode) IsPowerful() bool {
	return m == AirconModePowerfulCool || m == AirconModePowerfulHeat
}

func (m AirconMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

type AirconFanSpeed uint8

const (
	FanSpeedAuto AirconFanSpeed = iota + 1
	FanSpeedLow
	FanSpeedMedium
	FanSpeedHigh
)

var fanSpeedIDs = map[AirconFanSpeed]string{
	FanSpeedAuto:   "1",
	FanSpeedLow:    "2",
	FanSpeedMedium: "3",
	FanSpeedHigh:   "4",
}

var fanSpeedDescriptions = map[AirconFanSpeed]string{
	FanSpeedAuto:   "auto",
	FanSpeedLow:    "low",
	FanSpeedMedium: "medium",
	FanSpeedHigh:   "high",
}

var fanSpeedsByID = invert(fanSpeedIDs)

func AirconFanSpeedByID(id string) (AirconFanSpeed, error) {
	if f, ok := fanSpeedsByID[id]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFanSpeed, id)
}

func (f AirconFanSpeed) ID() string { return fanSpeedIDs[f] }

func (f AirconFanSpeed) String() string {
	if d, ok := fanSpeedDescriptions[f]; ok {
		return d
	}
	return "fan(" + strconv.Itoa(int(f)) + ")"
}

func (f AirconFanSpeed) Valid() bool {
	_, ok := fanSpeedIDs[f]
	return ok
}

func (f AirconFanSpeed) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

type Power uint8

const (
	PowerOn Power = iota + 1
	PowerOff
)

var powerIDs = map[Power]string{
	PowerOn:  "on",
	PowerOff: "off",
}

var powersByID = invert(powerIDs)

func PowerByID(id string) (Power, error) {
	if p, ok := powersByID[id]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPower, id)
}

func (p Power) ID() string { return powerIDs[p] }

func (p Power) String() string {
	if id, ok := powerIDs[p]; ok {
		return id
	}
	return "power(" + strconv.Itoa(int(p)) + ")"
}

func (p Power) Valid() bool {
	_, ok := powerIDs[p]
	return ok
}

func (p Power) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// AirconSetting is a complete aircon state. Build it with NewAirconSetting;
// it is passed by value and never patched after construction.
type AirconSetting struct {
	Temperature int            `json:"temperature"`
	Mode        AirconMode     `json:"mode"`
	FanSpeed    AirconFanSpeed `json:"fan_speed"`
	Power       Power          `json:"power"`
	// ForcedFan makes the stabilizer skip dwell and mode-family checks.
	ForcedFan bool `json:"forced_fan"`
}

func NewAirconSetting(temperature int, mode AirconMode, fan AirconFanSpeed, power Power, forcedFan bool) (AirconSetting, error) {
	if !mode.Valid() {
		return AirconSetting{}, fmt.Errorf("%w: %v", ErrUnknownMode, mode)
	}
	if !fan.Valid() {
		return AirconSetting{}, fmt.Errorf("%w: %v", ErrUnknownFanSpeed, fan)
	}
	if !power.Valid() {
		return AirconSetting{}, fmt.Errorf("%w: %v", ErrUnknownPower, power)
	}
	if temperature < MinAirconTemperature || temperature > MaxAirconTemperature {
		return AirconSetting{}, fmt.Errorf("%w: temperature %d outside %d-%d",
			ErrInvalidSetting, temperature, MinAirconTemperature, MaxAirconTemperature)
	}
	return AirconSetting{
		Temperature: temperature,
		Mode:        mode,
		FanSpeed:    fan,
		Power:       power,
		ForcedFan:   forcedFan,
	}, nil
}

// MustAirconSetting is NewAirconSetting for static tables.
func MustAirconSetting(temperature int, mode AirconMode, fan AirconFanSpeed, power Power) AirconSetting {
	s, err := NewAirconSetting(temperature, mode, fan, power, false)
	if err != nil {
		panic(err)
	}
	return s
}

func (s AirconSetting) TemperatureString() string {
	return strconv.Itoa(s.Temperature)
}

// SameState compares what the device would end up doing. ForcedFan is not a device state.
func (s AirconSetting) SameState(o AirconSetting) bool {
	return s.Mode == o.Mode &&
		s.Temperature == o.Temperature &&
		s.FanSpeed == o.FanSpeed &&
		s.Power == o.Power
}

// SetAllParameter renders the "temp,mode,fan,power" parameter of the setAll command.
func (s AirconSetting) SetAllParameter() string {
	return fmt.Sprintf("%d,%s,%s,%s", s.Temperature, s.Mode.ID(), s.FanSpeed.ID(), s.Power.ID())
}

func (s AirconSetting) String() string {
	return fmt.Sprintf("%s:%d:%s:%s", s.Mode, s.Temperature, s.FanSpeed, s.Power)
}

func invert[K comparable, V comparable](m map[K]V) map[V]K {
	out := make(map[V]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

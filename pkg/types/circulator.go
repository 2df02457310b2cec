package types

import "fmt"

const MaxCirculatorFanSpeed = 4

var ErrInvalidCirculatorSetting = fmt.Errorf("invalid circulator setting")

// CirculatorSetting mirrors what we believe the circulator is doing.
// The device only accepts relative steps, so FanSpeed is always reached
// one step at a time.
type CirculatorSetting struct {
	Power    Power `json:"power"`
	FanSpeed int   `json:"fan_speed"`
}

func NewCirculatorSetting(power Power, fanSpeed int) (CirculatorSetting, error) {
	if !power.Valid() {
		return CirculatorSetting{}, fmt.Errorf("%w: %v", ErrUnknownPower, power)
	}
	if fanSpeed < 0 || fanSpeed > MaxCirculatorFanSpeed {
		return CirculatorSetting{}, fmt.Errorf("%w: fan speed %d outside 0-%d",
			ErrInvalidCirculatorSetting, fanSpeed, MaxCirculatorFanSpeed)
	}
	return CirculatorSetting{Power: power, FanSpeed: fanSpeed}, nil
}

func (s CirculatorSetting) String() string {
	return fmt.Sprintf("%s:%d", s.Power, s.FanSpeed)
}

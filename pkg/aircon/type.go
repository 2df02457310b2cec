package aircon

import (
	"math"

	"github.com/NotCoffee418/home_climate_control/pkg/comfort"
	"github.com/NotCoffee418/home_climate_control/pkg/types"
)

// Outcome is the base setting a pmv band asks for.
type Outcome struct {
	Mode        types.AirconMode
	Temperature int
	FanSpeed    types.AirconFanSpeed
}

// Band applies when pmv <= UpperBound. When WarmOutdoor is set and the
// outdoor temperature is at least WarmOutdoorMin, WarmOutdoor is used instead.
type Band struct {
	UpperBound     float64
	Outcome        Outcome
	WarmOutdoor    *Outcome
	WarmOutdoorMin float64
}

// DefaultBands is the pmv staircase, ordered by UpperBound.
var DefaultBands = []Band{
	{UpperBound: -0.20, Outcome: Outcome{types.AirconModePowerfulHeat, 29, types.FanSpeedAuto}},
	{UpperBound: -0.16, Outcome: Outcome{types.AirconModeHeat, 23, types.FanSpeedAuto}},
	{
		UpperBound:     -0.10,
		Outcome:        Outcome{types.AirconModeHeat, 23, types.FanSpeedAuto},
		WarmOutdoor:    &Outcome{types.AirconModeFan, 25, types.FanSpeedLow},
		WarmOutdoorMin: 25,
	},
	{UpperBound: 0, Outcome: Outcome{types.AirconModeFan, 28, types.FanSpeedLow}},
	{UpperBound: 0.10, Outcome: Outcome{types.AirconModeFan, 28, types.FanSpeedLow}},
	{UpperBound: 0.15, Outcome: Outcome{types.AirconModeCool, 27, types.FanSpeedLow}},
	{UpperBound: 0.18, Outcome: Outcome{types.AirconModeCool, 26, types.FanSpeedLow}},
	{UpperBound: 0.20, Outcome: Outcome{types.AirconModeCool, 25, types.FanSpeedMedium}},
	{UpperBound: math.Inf(1), Outcome: Outcome{types.AirconModePowerfulCool, 22, types.FanSpeedAuto}},
}

// Fixed outcomes used by the overrides.
var (
	PassiveFanOutcome  = Outcome{types.AirconModeFan, 28, types.FanSpeedLow}
	DehumidifyOutcome  = Outcome{types.AirconModeDry, 28, types.FanSpeedHigh}
	CondensationFan    = Outcome{types.AirconModeFan, 28, types.FanSpeedHigh}
	CondensationCool   = Outcome{types.AirconModeCool, 26, types.FanSpeedHigh}
	DegradedCoolOutput = Outcome{types.AirconModeCool, 28, types.FanSpeedLow}
)

// Thresholds are the tunable values that drifted between historical versions.
type Thresholds struct {
	// Cooling is replaced by fan when outdoor < MRT - CoolingPassiveMargin
	// and pmv < CoolingPassivePMVBound.
	CoolingPassiveMargin   float64
	CoolingPassivePMVBound float64
	// Heating is replaced by fan when outdoor > MRT - HeatingPassiveMargin.
	HeatingPassiveMargin float64
	// Fan becomes dry above this absolute humidity [g/m³].
	DehumidifyAbsoluteHumidity float64
	// Fan speed is forced high above this inter-room difference [°C].
	InterRoomGradient float64
	// Condensation risk when floor < dew point - DewPointMargin.
	DewPointMargin float64
	// Above this pmv the condensation override cools instead of ventilating.
	CondensationCoolPMV float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		CoolingPassiveMargin:       5,
		CoolingPassivePMVBound:     0.3,
		HeatingPassiveMargin:       5,
		DehumidifyAbsoluteHumidity: 13,
		InterRoomGradient:          1,
		DewPointMargin:             0,
		CondensationCoolPMV:        0.20,
	}
}

// Inputs for a single decision.
type Inputs struct {
	Comfort           comfort.Result
	FloorTemperature  float64
	Outdoor           float64
	AbsoluteHumidity  float64
	DewPoint          float64
	InterRoomGradient float64
}

type Override string

const (
	OverrideCoolingPassive Override = "cooling_passive"
	OverrideHeatingPassive Override = "heating_passive"
	OverrideDehumidify     Override = "dehumidify"
	OverrideInterRoom      Override = "inter_room_gradient"
	OverrideCondensation   Override = "condensation"
)

// Decision is the setting plus how it was reached, for the audit log.
type Decision struct {
	Setting   types.AirconSetting `json:"setting"`
	Base      Outcome             `json:"-"`
	Overrides []Override          `json:"overrides"`
}

// Action is the stabilizer verdict for one cycle.
type Action uint8

const (
	ActionHold Action = iota
	ActionApply
	ActionApplyDegraded
)

func (a Action) String() string {
	switch a {
	case ActionApply:
		return "apply"
	case ActionApplyDegraded:
		return "apply_degraded"
	default:
		return "hold"
	}
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Sends reports whether a command goes out to the device.
func (a Action) Sends() bool {
	return a != ActionHold
}

type Verdict struct {
	Action  Action              `json:"action"`
	Setting types.AirconSetting `json:"setting"`
	Reason  string              `json:"reason"`
}

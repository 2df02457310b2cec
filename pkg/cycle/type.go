package cycle

import (
	"context"
	"time"

	"github.com/NotCoffee418/home_climate_control/pkg/activity"
	"github.com/NotCoffee418/home_climate_control/pkg/aircon"
	"github.com/NotCoffee418/home_climate_control/pkg/circulator"
	"github.com/NotCoffee418/home_climate_control/pkg/climatedb"
	"github.com/NotCoffee418/home_climate_control/pkg/comfort"
	"github.com/NotCoffee418/home_climate_control/pkg/surface"
	"github.com/NotCoffee418/home_climate_control/pkg/types"
)

type Sensors interface {
	ReadTemperatureHumidity(ctx context.Context, loc types.Location) (types.TemperatureHumidity, error)
	ReadCO2(ctx context.Context, loc types.Location) (types.CO2Reading, error)
	HasSensor(loc types.Location) bool
}

type AirconActuator interface {
	ApplyAircon(ctx context.Context, s types.AirconSetting) error
}

type Store interface {
	DecisionContext(ctx context.Context) (types.DecisionContext, error)
	RecordCycle(ctx context.Context, rec climatedb.CycleRecord) error
	DailyMaxTemperature(ctx context.Context, date string) (int, bool, error)
	InsertDailyMaxTemperature(ctx context.Context, date string, v int) error
}

type Forecaster interface {
	DailyMax(ctx context.Context) (int, error)
}

type Publisher interface {
	Publish(ctx context.Context, r Report) error
}

// Housekeeper runs the daily bookkeeping after a cycle.
type Housekeeper interface {
	RegisterYesterday(ctx context.Context, now time.Time) (bool, error)
	Cleanup(ctx context.Context, now time.Time, retentionDays int) (int64, error)
}

// Deps are the collaborators of a Runner. Forecaster, Publisher and
// Housekeeper are optional.
type Deps struct {
	Sensors     Sensors
	Aircon      AirconActuator
	Circulator  circulator.Actuator
	Store       Store
	Forecaster  Forecaster
	Publisher   Publisher
	Housekeeper Housekeeper
}

type Options struct {
	Engine           *aircon.Engine
	Stabilizer       *aircon.Stabilizer
	CirculatorEngine *circulator.Engine
	Wake             activity.ClockTime
	Sleep            activity.ClockTime
	Location         *time.Location
	RetentionDays    int
	// Now defaults to time.Now.
	Now func() time.Time
}

// Report describes one cycle. It is logged, stored, published and served.
type Report struct {
	Timestamp time.Time `json:"timestamp"`

	Readings []types.SensorReading `json:"readings"`
	CO2      *int                  `json:"co2,omitempty"`
	DailyMax *int                  `json:"daily_max,omitempty"`

	Bedtime              bool                 `json:"bedtime"`
	Activity             activity.Profile     `json:"activity"`
	Surfaces             surface.Temperatures `json:"surfaces"`
	Comfort              comfort.Result       `json:"comfort"`
	AbsoluteHumidity     float64              `json:"absolute_humidity"`
	DewPoint             float64              `json:"dew_point"`
	InterRoomGradient    float64              `json:"inter_room_gradient"`
	CeilingFloorGradient float64              `json:"ceiling_floor_gradient"`

	Decision    aircon.Decision `json:"decision"`
	Verdict     aircon.Verdict  `json:"verdict"`
	AirconSent  bool            `json:"aircon_sent"`
	AirconError string          `json:"aircon_error,omitempty"`

	Circulator CirculatorReport `json:"circulator"`
}

type CirculatorReport struct {
	Previous types.CirculatorSetting `json:"previous"`
	Target   types.CirculatorSetting `json:"target"`
	Reached  types.CirculatorSetting `json:"reached"`
	Commands []circulator.Command    `json:"commands"`
	Error    string                  `json:"error,omitempty"`
}

// Reading returns the reading for loc, if present.
func (r Report) Reading(loc types.Location) (types.SensorReading, bool) {
	for _, s := range r.Readings {
		if s.Location == loc {
			return s, true
		}
	}
	return types.SensorReading{}, false
}

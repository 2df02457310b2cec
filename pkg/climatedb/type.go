package climatedb

import (
	"time"

	"github.com/NotCoffee418/home_climate_control/pkg/comfort"
	"github.com/NotCoffee418/home_climate_control/pkg/surface"
	"github.com/NotCoffee418/home_climate_control/pkg/types"
)

// DateLayout is the key format of the per-day tables.
const DateLayout = "2006-01-02"

// CycleRecord is everything one control cycle persists. Aircon is nil when
// no command went out; Circulator is nil when the circulator was skipped.
type CycleRecord struct {
	Timestamp  time.Time
	Readings   []types.SensorReading
	CO2        *CO2Level
	Surfaces   surface.Temperatures
	Comfort    comfort.Result
	Aircon     *types.AirconSetting
	Circulator *types.CirculatorSetting
	// Report is the JSON cycle report served by the status API.
	Report []byte
}

type CO2Level struct {
	Location types.Location
	CO2      int
}

// AirconSettingRow is a stored aircon setting. Known is false when the row
// holds ids this build does not understand.
type AirconSettingRow struct {
	ID        int64
	CreatedAt time.Time
	Setting   types.AirconSetting
	Known     bool
}

type IntensityScore struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
}

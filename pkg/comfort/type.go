package comfort

import "github.com/NotCoffee418/home_climate_control/pkg/surface"

// NominalAirSpeed is the still-air speed assumed indoors [m/s].
const NominalAirSpeed = 0.15

type Input struct {
	Surfaces surface.Temperatures
	DryBulb  float64
	Humidity float64
	Met      float64
	Icl      float64
}

// Result is created once per cycle and only read afterwards.
type Result struct {
	PMV         float64 `json:"pmv"`
	PPD         float64 `json:"ppd"`
	Clo         float64 `json:"clo"`
	Air         float64 `json:"air"`
	Met         float64 `json:"met"`
	Wall        float64 `json:"wall"`
	Ceiling     float64 `json:"ceiling"`
	Floor       float64 `json:"floor"`
	MeanRadiant float64 `json:"mean_radiant"`
	DryBulb     float64 `json:"dry_bulb"`
	Humidity    float64 `json:"humidity"`
}

// OperativeTemperature is the simple mean of air and radiant temperature.
func (r Result) OperativeTemperature() float64 {
	return (r.DryBulb + r.MeanRadiant) / 2
}

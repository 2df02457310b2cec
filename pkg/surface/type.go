package surface

import "time"

// Thermal conductivities [W/(m K)] and interior surface heat transfer
// resistances [(m2 K)/W].
const (
	WallConductivity    = 0.5
	WindowConductivity  = 1.0
	WindowFraction      = 0.3
	CeilingConductivity = 0.15
	FloorConductivity   = 0.26

	WallSurfaceResistance    = 0.11
	CeilingSurfaceResistance = 0.09
	FloorSurfaceResistance   = 0.15

	// Share of the indoor/outdoor difference absorbed by the ventilated underfloor space.
	UnderFloorTempDiffCoefficient = 0.7
)

// Outdoor temperature below which no solar loading is modelled.
const SolarLoadThreshold = 25.0

// Step is one row of a stepped lookup: applies when outdoor >= MinOutdoor.
type Step struct {
	MinOutdoor float64
	Value      float64
}

// RoofSurfaceSteps are absolute roof temperatures, highest threshold first.
var RoofSurfaceSteps = []Step{
	{MinOutdoor: 40, Value: 80},
	{MinOutdoor: 35, Value: 60},
	{MinOutdoor: 30, Value: 40},
	{MinOutdoor: 25, Value: 35},
}

// WestWallOffsets are added to the outdoor temperature while the afternoon
// sun is on the west wall, highest threshold first.
var WestWallOffsets = []Step{
	{MinOutdoor: 40, Value: 50},
	{MinOutdoor: 35, Value: 35},
	{MinOutdoor: 30, Value: 20},
	{MinOutdoor: 25, Value: 10},
}

// West wall sun window, local time, [start, end).
const (
	WestSunStartHour = 13
	WestSunEndHour   = 18
)

type Input struct {
	Outdoor float64
	Ceiling float64
	Floor   float64
	Now     time.Time
}

// Temperatures of the interior surfaces in °C.
type Temperatures struct {
	Wall    float64 `json:"wall"`
	Ceiling float64 `json:"ceiling"`
	Floor   float64 `json:"floor"`
}

package surface

import "time"

// Compute derives all three interior surface temperatures for one cycle.
// Walls face the room at floor level, so the wall uses the floor reading.
func Compute(in Input) Temperatures {
	return Temperatures{
		Wall: InteriorSurfaceTemperature(
			WestWallTemperature(in.Outdoor, in.Now), in.Floor,
			CompositeWallConductivity(), WallSurfaceResistance),
		Ceiling: InteriorSurfaceTemperature(
			RoofSurfaceTemperature(in.Outdoor), in.Ceiling,
			CeilingConductivity, CeilingSurfaceResistance),
		Floor: InteriorSurfaceTemperature(
			UnderFloorTemperature(in.Floor, in.Outdoor), in.Floor,
			FloorConductivity, FloorSurfaceResistance),
	}
}

// InteriorSurfaceTemperature is a steady-state single-resistance model:
// indoor - r * (indoor - outdoorSide) / (1 / conductivity).
func InteriorSurfaceTemperature(outdoorSide, indoor, conductivity, surfaceResistance float64) float64 {
	thermalResistance := 1 / conductivity
	return indoor - surfaceResistance*(indoor-outdoorSide)/thermalResistance
}

func CompositeWallConductivity() float64 {
	return (1-WindowFraction)*WallConductivity + WindowFraction*WindowConductivity
}

// RoofSurfaceTemperature never drops below the outdoor temperature.
func RoofSurfaceTemperature(outdoor float64) float64 {
	if v, ok := lookup(RoofSurfaceSteps, outdoor); ok && v > outdoor {
		return v
	}
	return outdoor
}

// WestWallTemperature is the outdoor-side temperature of the west wall.
func WestWallTemperature(outdoor float64, now time.Time) float64 {
	if now.Hour() < WestSunStartHour || now.Hour() >= WestSunEndHour {
		return outdoor
	}
	if offset, ok := lookup(WestWallOffsets, outdoor); ok {
		return outdoor + offset
	}
	return outdoor
}

func UnderFloorTemperature(floor, outdoor float64) float64 {
	return (floor + outdoor) * (1 - UnderFloorTempDiffCoefficient)
}

func (t Temperatures) MeanRadiant() float64 {
	return (t.Wall + t.Ceiling + t.Floor) / 3
}

func lookup(steps []Step, outdoor float64) (float64, bool) {
	for _, s := range steps {
		if outdoor >= s.MinOutdoor {
			return s.Value, true
		}
	}
	return 0, false
}

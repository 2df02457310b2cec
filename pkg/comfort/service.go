package comfort

import (
	"fmt"
	"math"
)

var ErrInvalidInput = fmt.Errorf("invalid comfort input")

// Estimate computes PMV/PPD for the room. It is pure and fails fast on bad input.
func Estimate(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}

	mrt := in.Surfaces.MeanRadiant()
	air := RelativeAirSpeed(NominalAirSpeed, in.Met)
	clo := DynamicClothing(in.Icl, in.Met)

	pmv, ppd, err := PMVPPD(in.DryBulb, mrt, air, in.Humidity, in.Met, clo)
	if err != nil {
		return Result{}, fmt.Errorf("pmv: %w", err)
	}

	return Result{
		PMV:         pmv,
		PPD:         ppd,
		Clo:         clo,
		Air:         air,
		Met:         in.Met,
		Wall:        in.Surfaces.Wall,
		Ceiling:     in.Surfaces.Ceiling,
		Floor:       in.Surfaces.Floor,
		MeanRadiant: mrt,
		DryBulb:     in.DryBulb,
		Humidity:    in.Humidity,
	}, nil
}

func (in Input) Validate() error {
	values := []struct {
		name string
		v    float64
	}{
		{"dry bulb", in.DryBulb},
		{"humidity", in.Humidity},
		{"met", in.Met},
		{"icl", in.Icl},
		{"wall surface", in.Surfaces.Wall},
		{"ceiling surface", in.Surfaces.Ceiling},
		{"floor surface", in.Surfaces.Floor},
	}
	for _, f := range values {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidInput, f.name)
		}
	}
	if in.Humidity < 0 || in.Humidity > 100 {
		return fmt.Errorf("%w: humidity %.1f outside 0-100", ErrInvalidInput, in.Humidity)
	}
	if in.Met <= 0 {
		return fmt.Errorf("%w: met %.2f must be positive", ErrInvalidInput, in.Met)
	}
	if in.Icl < 0 {
		return fmt.Errorf("%w: icl %.2f must not be negative", ErrInvalidInput, in.Icl)
	}
	return nil
}

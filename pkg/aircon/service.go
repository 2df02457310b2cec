package aircon

import (
	"fmt"
	"math"
	"time"

	"github.com/NotCoffee418/home_climate_control/pkg/types"
)

var ErrInvalidBands = fmt.Errorf("invalid pmv band table")

// Engine maps a comfort result to an aircon setting.
type Engine struct {
	bands      []Band
	thresholds Thresholds
}

func NewEngine(bands []Band, thresholds Thresholds) (*Engine, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidBands)
	}
	for i := 1; i < len(bands); i++ {
		if bands[i].UpperBound <= bands[i-1].UpperBound {
			return nil, fmt.Errorf("%w: bound %.2f not above %.2f",
				ErrInvalidBands, bands[i].UpperBound, bands[i-1].UpperBound)
		}
	}
	if !math.IsInf(bands[len(bands)-1].UpperBound, 1) {
		return nil, fmt.Errorf("%w: last band must be unbounded", ErrInvalidBands)
	}
	return &Engine{bands: bands, thresholds: thresholds}, nil
}

// Decide applies the band table and then the overrides, in order.
func (e *Engine) Decide(in Inputs) (Decision, error) {
	pmv := in.Comfort.PMV
	mrt := in.Comfort.MeanRadiant
	th := e.thresholds

	base := e.band(pmv, in.Outdoor)
	out := base
	var overrides []Override

	if out.Mode.IsCooling() && in.Outdoor < mrt-th.CoolingPassiveMargin && pmv < th.CoolingPassivePMVBound {
		out = PassiveFanOutcome
		overrides = append(overrides, OverrideCoolingPassive)
	}
	if out.Mode.IsHeating() && in.Outdoor > mrt-th.HeatingPassiveMargin {
		out = PassiveFanOutcome
		overrides = append(overrides, OverrideHeatingPassive)
	}
	if out.Mode == types.AirconModeFan && in.AbsoluteHumidity > th.DehumidifyAbsoluteHumidity {
		out = DehumidifyOutcome
		overrides = append(overrides, OverrideDehumidify)
	}
	if math.Abs(in.InterRoomGradient) > th.InterRoomGradient {
		out.FanSpeed = types.FanSpeedHigh
		overrides = append(overrides, OverrideInterRoom)
	}

	forced := false
	if in.FloorTemperature < in.DewPoint-th.DewPointMargin {
		if pmv > th.CondensationCoolPMV {
			out = CondensationCool
		} else {
			out = CondensationFan
		}
		forced = true
		overrides = append(overrides, OverrideCondensation)
	}

	setting, err := types.NewAirconSetting(out.Temperature, out.Mode, out.FanSpeed, types.PowerOn, forced)
	if err != nil {
		return Decision{}, err
	}
	return Decision{Setting: setting, Base: base, Overrides: overrides}, nil
}

func (e *Engine) band(pmv, outdoor float64) Outcome {
	for _, b := range e.bands {
		if pmv <= b.UpperBound {
			if b.WarmOutdoor != nil && outdoor >= b.WarmOutdoorMin {
				return *b.WarmOutdoor
			}
			return b.Outcome
		}
	}
	// NaN falls through every comparison.
	return e.bands[len(e.bands)-1].Outcome
}

// Stabilizer decides whether a freshly decided setting is actually sent.
type Stabilizer struct {
	dwell    time.Duration
	degraded types.AirconSetting
}

func NewStabilizer(dwell time.Duration) *Stabilizer {
	return &Stabilizer{
		dwell: dwell,
		degraded: types.MustAirconSetting(DegradedCoolOutput.Temperature,
			DegradedCoolOutput.Mode, DegradedCoolOutput.FanSpeed, types.PowerOn),
	}
}

func (s *Stabilizer) Evaluate(next types.AirconSetting, ctx types.DecisionContext, now time.Time) Verdict {
	if next.ForcedFan {
		return Verdict{Action: ActionApply, Setting: next, Reason: "forced by condensation risk"}
	}
	if !ctx.AirconKnown || ctx.AirconLastChange.IsZero() || ctx.AirconLastChange.After(now) {
		return Verdict{Action: ActionApply, Setting: next, Reason: "no usable previous setting"}
	}
	if now.Sub(ctx.AirconLastChange) > s.dwell {
		return Verdict{Action: ActionApply, Setting: next, Reason: "dwell window elapsed"}
	}

	current := ctx.Aircon
	if !current.Mode.IsCooling() {
		return Verdict{Action: ActionApply, Setting: next, Reason: "current mode is not cooling"}
	}
	if !next.Mode.IsCooling() {
		if current.SameState(s.degraded) {
			return Verdict{Action: ActionHold, Setting: current, Reason: "already on minimal cooling"}
		}
		return Verdict{Action: ActionApplyDegraded, Setting: s.degraded, Reason: "keeping cooling within dwell window"}
	}
	if !current.SameState(next) {
		return Verdict{Action: ActionApply, Setting: next, Reason: "adjusting within cooling family"}
	}
	return Verdict{Action: ActionHold, Setting: current, Reason: "unchanged cooling setting"}
}

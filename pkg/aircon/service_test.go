package aircon

import (
	"testing"
	"time"

	"github.com/NotCoffee418/home_climate_control/pkg/comfort"
	"github.com/NotCoffee418/home_climate_control/pkg/hccutils"
	"github.com/NotCoffee418/home_climate_control/pkg/surface"
	"github.com/NotCoffee418/home_climate_control/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultBands, DefaultThresholds())
	require.NoError(t, err)
	return e
}

// quiet returns inputs that trigger no override for the given pmv.
func quiet(pmv float64) Inputs {
	return Inputs{
		Comfort:           comfort.Result{PMV: pmv, MeanRadiant: 24, DryBulb: 24},
		FloorTemperature:  24,
		Outdoor:           22,
		AbsoluteHumidity:  10,
		DewPoint:          12,
		InterRoomGradient: 0,
	}
}

func TestDecideBands(t *testing.T) {
	e := newEngine(t)
	tests := []struct {
		pmv  float64
		mode types.AirconMode
		temp int
		fan  types.AirconFanSpeed
	}{
		{-0.18, types.AirconModeHeat, 23, types.FanSpeedAuto},
		{-0.12, types.AirconModeHeat, 23, types.FanSpeedAuto},
		{-0.05, types.AirconModeFan, 28, types.FanSpeedLow},
		{0.05, types.AirconModeFan, 28, types.FanSpeedLow},
		{0.12, types.AirconModeCool, 27, types.FanSpeedLow},
		{0.17, types.AirconModeCool, 26, types.FanSpeedLow},
		{0.19, types.AirconModeCool, 25, types.FanSpeedMedium},
	}
	for _, tt := range tests {
		in := quiet(tt.pmv)
		// Keep heating from being handed back to passive warming.
		if tt.pmv < -0.1 {
			in.Outdoor = 10
		}
		d, err := e.Decide(in)
		require.NoError(t, err)
		assert.Equal(t, tt.mode, d.Setting.Mode, "pmv=%v", tt.pmv)
		assert.Equal(t, tt.temp, d.Setting.Temperature, "pmv=%v", tt.pmv)
		assert.Equal(t, tt.fan, d.Setting.FanSpeed, "pmv=%v", tt.pmv)
		assert.Equal(t, types.PowerOn, d.Setting.Power)
		assert.Empty(t, d.Overrides, "pmv=%v", tt.pmv)
	}
}

func TestDecideExtremes(t *testing.T) {
	e := newEngine(t)

	for pmv := -3.0; pmv <= -0.20; pmv += 0.01 {
		in := quiet(pmv)
		in.Outdoor = 5
		d, err := e.Decide(in)
		require.NoError(t, err)
		assert.Equal(t, types.AirconModePowerfulHeat, d.Setting.Mode, "pmv=%v", pmv)
	}

	for pmv := 0.2001; pmv <= 3; pmv += 0.01 {
		in := quiet(pmv)
		in.Outdoor = 33
		d, err := e.Decide(in)
		require.NoError(t, err)
		assert.Equal(t, types.AirconModePowerfulCool, d.Setting.Mode, "pmv=%v", pmv)
	}
}

func TestDecideWarmOutdoorSkipsHeating(t *testing.T) {
	e := newEngine(t)
	in := quiet(-0.12)
	in.Outdoor = 26

	d, err := e.Decide(in)
	require.NoError(t, err)
	assert.Equal(t, types.AirconModeFan, d.Setting.Mode)
	assert.Equal(t, 25, d.Setting.Temperature)
}

func TestDecideOverrides(t *testing.T) {
	e := newEngine(t)

	t.Run("cooling handed to passive cooling", func(t *testing.T) {
		in := quiet(0.17)
		in.Outdoor = 15
		d, err := e.Decide(in)
		require.NoError(t, err)
		assert.Equal(t, types.AirconModeFan, d.Setting.Mode)
		assert.Equal(t, []Override{OverrideCoolingPassive}, d.Overrides)
	})

	t.Run("hot room keeps cooling", func(t *testing.T) {
		in := quiet(0.35)
		in.Outdoor = 15
		d, err := e.Decide(in)
		require.NoError(t, err)
		assert.Equal(t, types.AirconModePowerfulCool, d.Setting.Mode)
	})

	t.Run("heating handed to passive warming", func(t *testing.T) {
		in := quiet(-0.18)
		in.Comfort.MeanRadiant = 20
		in.Outdoor = 18
		d, err := e.Decide(in)
		require.NoError(t, err)
		assert.Equal(t, types.AirconModeFan, d.Setting.Mode)
		assert.Equal(t, []Override{OverrideHeatingPassive}, d.Overrides)
	})

	t.Run("humid fan becomes dry", func(t *testing.T) {
		in := quiet(0.05)
		in.AbsoluteHumidity = 13.5
		d, err := e.Decide(in)
		require.NoError(t, err)
		assert.Equal(t, types.AirconModeDry, d.Setting.Mode)
		assert.Equal(t, types.FanSpeedHigh, d.Setting.FanSpeed)
		assert.Equal(t, []Override{OverrideDehumidify}, d.Overrides)
	})

	t.Run("humidity does not touch cooling", func(t *testing.T) {
		in := quiet(0.17)
		in.AbsoluteHumidity = 15
		d, err := e.Decide(in)
		require.NoError(t, err)
		assert.Equal(t, types.AirconModeCool, d.Setting.Mode)
	})

	t.Run("inter room gradient forces high fan", func(t *testing.T) {
		in := quiet(0.17)
		in.InterRoomGradient = -1.5
		d, err := e.Decide(in)
		require.NoError(t, err)
		assert.Equal(t, types.AirconModeCool, d.Setting.Mode)
		assert.Equal(t, types.FanSpeedHigh, d.Setting.FanSpeed)
		assert.False(t, d.Setting.ForcedFan)
	})

	t.Run("condensation on a warm room cools", func(t *testing.T) {
		in := quiet(0.25)
		in.Outdoor = 33
		in.FloorTemperature = 18
		in.DewPoint = 19
		d, err := e.Decide(in)
		require.NoError(t, err)
		assert.Equal(t, types.AirconModeCool, d.Setting.Mode)
		assert.Equal(t, types.FanSpeedHigh, d.Setting.FanSpeed)
		assert.True(t, d.Setting.ForcedFan)
	})
}

func TestCondensationOverrideDominates(t *testing.T) {
	e := newEngine(t)
	for pmv := -2.0; pmv <= 2.0; pmv += 0.05 {
		for _, outdoor := range []float64{0, 20, 35} {
			in := quiet(pmv)
			in.Outdoor = outdoor
			in.AbsoluteHumidity = 14
			in.FloorTemperature = 17
			in.DewPoint = 17.5
			d, err := e.Decide(in)
			require.NoError(t, err)
			assert.True(t, d.Setting.ForcedFan, "pmv=%v outdoor=%v", pmv, outdoor)
			assert.Equal(t, types.FanSpeedHigh, d.Setting.FanSpeed)
		}
	}
}

func TestNewEngineValidatesBands(t *testing.T) {
	_, err := NewEngine(nil, DefaultThresholds())
	assert.ErrorIs(t, err, ErrInvalidBands)

	_, err = NewEngine([]Band{{UpperBound: 0.1}, {UpperBound: 0}}, DefaultThresholds())
	assert.ErrorIs(t, err, ErrInvalidBands)

	_, err = NewEngine([]Band{{UpperBound: 0.1}}, DefaultThresholds())
	assert.ErrorIs(t, err, ErrInvalidBands)
}

// cycleInputs runs the model chain the way a control cycle does.
func cycleInputs(t *testing.T, ceiling, floor types.TemperatureHumidity, outdoor float64, met, icl float64) Inputs {
	t.Helper()
	surfaces := surface.Compute(surface.Input{
		Outdoor: outdoor,
		Ceiling: ceiling.Temperature,
		Floor:   floor.Temperature,
		Now:     time.Date(2024, 7, 10, 10, 0, 0, 0, time.UTC),
	})
	rh := hccutils.Mean(ceiling.Humidity, floor.Humidity)
	res, err := comfort.Estimate(comfort.Input{
		Surfaces: surfaces, DryBulb: floor.Temperature, Humidity: rh, Met: met, Icl: icl,
	})
	require.NoError(t, err)
	ah, err := hccutils.AbsoluteHumidity(floor.Temperature, rh)
	require.NoError(t, err)
	dew, err := hccutils.DewPoint(hccutils.Mean(ceiling.Temperature, floor.Temperature), rh)
	require.NoError(t, err)
	return Inputs{
		Comfort:          res,
		FloorTemperature: floor.Temperature,
		Outdoor:          outdoor,
		AbsoluteHumidity: ah,
		DewPoint:         dew,
	}
}

func TestDecideEndToEnd(t *testing.T) {
	e := newEngine(t)

	t.Run("warm afternoon room", func(t *testing.T) {
		in := cycleInputs(t,
			types.TemperatureHumidity{Temperature: 27.7, Humidity: 45},
			types.TemperatureHumidity{Temperature: 25.7, Humidity: 50},
			30, 1.1, 0.6)
		assert.Greater(t, in.Comfort.MeanRadiant, in.Comfort.DryBulb)
		assert.InDelta(t, 0.169, in.Comfort.PMV, 0.005)
		assert.Less(t, in.AbsoluteHumidity, DefaultThresholds().DehumidifyAbsoluteHumidity)

		d, err := e.Decide(in)
		require.NoError(t, err)
		assert.Equal(t, types.AirconModeCool, d.Setting.Mode)
		assert.Equal(t, "26", d.Setting.TemperatureString())
		assert.Equal(t, types.FanSpeedLow, d.Setting.FanSpeed)
		assert.Empty(t, d.Overrides)
	})

	t.Run("mild morning room", func(t *testing.T) {
		in := cycleInputs(t,
			types.TemperatureHumidity{Temperature: 26, Humidity: 55},
			types.TemperatureHumidity{Temperature: 24, Humidity: 60},
			30, 1.1, 0.6)
		assert.Greater(t, in.Comfort.MeanRadiant, in.Comfort.DryBulb)
		assert.InDelta(t, 12.48, in.AbsoluteHumidity, 0.01)
		assert.InDelta(t, 16.02, in.DewPoint, 0.01)

		// The cool side of the table asks for heat, but at 30°C outdoors
		// the room is left to warm up on its own.
		d, err := e.Decide(in)
		require.NoError(t, err)
		assert.Equal(t, types.AirconModePowerfulHeat, d.Base.Mode)
		assert.Equal(t, types.AirconModeFan, d.Setting.Mode)
		assert.Equal(t, []Override{OverrideHeatingPassive}, d.Overrides)
		assert.False(t, d.Setting.ForcedFan)
	})
}

func TestStabilizer(t *testing.T) {
	now := time.Date(2024, 7, 10, 12, 0, 0, 0, time.UTC)
	s := NewStabilizer(time.Hour)

	cool26 := types.MustAirconSetting(26, types.AirconModeCool, types.FanSpeedLow, types.PowerOn)
	cool25 := types.MustAirconSetting(25, types.AirconModeCool, types.FanSpeedMedium, types.PowerOn)
	powerful := types.MustAirconSetting(22, types.AirconModePowerfulCool, types.FanSpeedAuto, types.PowerOn)
	fan := types.MustAirconSetting(28, types.AirconModeFan, types.FanSpeedLow, types.PowerOn)
	heat := types.MustAirconSetting(23, types.AirconModeHeat, types.FanSpeedAuto, types.PowerOn)

	ctx := func(current types.AirconSetting, ago time.Duration) types.DecisionContext {
		return types.DecisionContext{AirconKnown: true, Aircon: current, AirconLastChange: now.Add(-ago)}
	}

	t.Run("hold unchanged cooling inside dwell", func(t *testing.T) {
		v := s.Evaluate(cool26, ctx(cool26, 10*time.Minute), now)
		assert.Equal(t, ActionHold, v.Action)
		assert.False(t, v.Action.Sends())
	})

	t.Run("apply after dwell", func(t *testing.T) {
		v := s.Evaluate(cool26, ctx(cool26, 61*time.Minute), now)
		assert.Equal(t, ActionApply, v.Action)
		assert.Equal(t, cool26, v.Setting)
	})

	t.Run("dwell boundary is exclusive", func(t *testing.T) {
		v := s.Evaluate(cool26, ctx(cool26, time.Hour), now)
		assert.Equal(t, ActionHold, v.Action)
	})

	t.Run("change within cooling family", func(t *testing.T) {
		assert.Equal(t, ActionApply, s.Evaluate(powerful, ctx(cool26, 10*time.Minute), now).Action)
		assert.Equal(t, ActionApply, s.Evaluate(cool25, ctx(cool26, 10*time.Minute), now).Action)
	})

	t.Run("leaving cooling degrades", func(t *testing.T) {
		v := s.Evaluate(fan, ctx(cool26, 10*time.Minute), now)
		assert.Equal(t, ActionApplyDegraded, v.Action)
		assert.Equal(t, types.AirconModeCool, v.Setting.Mode)
		assert.Equal(t, 28, v.Setting.Temperature)
		assert.Equal(t, types.FanSpeedLow, v.Setting.FanSpeed)

		v = s.Evaluate(fan, ctx(v.Setting, 20*time.Minute), now)
		assert.Equal(t, ActionHold, v.Action)
	})

	t.Run("not cooling always applies", func(t *testing.T) {
		assert.Equal(t, ActionApply, s.Evaluate(fan, ctx(fan, time.Minute), now).Action)
		assert.Equal(t, ActionApply, s.Evaluate(cool26, ctx(heat, time.Minute), now).Action)
	})

	t.Run("forced fan bypasses everything", func(t *testing.T) {
		forced, err := types.NewAirconSetting(28, types.AirconModeFan, types.FanSpeedHigh, types.PowerOn, true)
		require.NoError(t, err)
		v := s.Evaluate(forced, ctx(cool26, time.Minute), now)
		assert.Equal(t, ActionApply, v.Action)
		assert.Equal(t, forced, v.Setting)
	})

	t.Run("stale context applies", func(t *testing.T) {
		assert.Equal(t, ActionApply, s.Evaluate(cool26, types.DecisionContext{}, now).Action)
		future := ctx(cool26, -time.Hour)
		assert.Equal(t, ActionApply, s.Evaluate(cool26, future, now).Action)
		zero := types.DecisionContext{AirconKnown: true, Aircon: cool26}
		assert.Equal(t, ActionApply, s.Evaluate(cool26, zero, now).Action)
	})
}

func TestIntensity(t *testing.T) {
	off, err := types.NewAirconSetting(26, types.AirconModeCool, types.FanSpeedHigh, types.PowerOff, false)
	require.NoError(t, err)
	assert.Equal(t, 0, Intensity(off))

	assert.Equal(t, 3+1+3, Intensity(types.MustAirconSetting(26, types.AirconModeCool, types.FanSpeedLow, types.PowerOn)))
	assert.Equal(t, 5+2+4, Intensity(types.MustAirconSetting(22, types.AirconModePowerfulCool, types.FanSpeedAuto, types.PowerOn)))
	assert.Equal(t, 3+2+4, Intensity(types.MustAirconSetting(29, types.AirconModePowerfulHeat, types.FanSpeedAuto, types.PowerOn)))
	assert.Equal(t, 0+3+2, Intensity(types.MustAirconSetting(28, types.AirconModeDry, types.FanSpeedHigh, types.PowerOn)))
	assert.Equal(t, 0+1+1, Intensity(types.MustAirconSetting(28, types.AirconModeFan, types.FanSpeedLow, types.PowerOn)))
}

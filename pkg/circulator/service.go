package circulator

import (
	"context"
	"fmt"
	"math"

	"github.com/NotCoffee418/home_climate_control/pkg/types"
)

var ErrInvalidSteps = fmt.Errorf("invalid circulator step table")

type Engine struct {
	hot        []Step
	mild       []Step
	hotOutdoor float64
}

func NewEngine(hot, mild []Step, hotOutdoor float64) (*Engine, error) {
	for _, steps := range [][]Step{hot, mild} {
		if err := validateSteps(steps); err != nil {
			return nil, err
		}
	}
	return &Engine{hot: hot, mild: mild, hotOutdoor: hotOutdoor}, nil
}

func validateSteps(steps []Step) error {
	if len(steps) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidSteps)
	}
	for i, s := range steps {
		if s.Speed < 0 || s.Speed > types.MaxCirculatorFanSpeed {
			return fmt.Errorf("%w: speed %d", ErrInvalidSteps, s.Speed)
		}
		if i > 0 && s.MinGradient >= steps[i-1].MinGradient {
			return fmt.Errorf("%w: gradients must be descending", ErrInvalidSteps)
		}
	}
	return nil
}

// TargetSpeed picks the fan speed for a ceiling/floor gradient.
// Only the size of the gradient matters.
func (e *Engine) TargetSpeed(outdoor, gradient float64) int {
	steps := e.mild
	if outdoor >= e.hotOutdoor {
		steps = e.hot
	}
	g := math.Abs(gradient)
	for _, s := range steps {
		if g >= s.MinGradient {
			return s.Speed
		}
	}
	return 0
}

// Decide returns the setting the circulator should end up in.
// At bedtime it is always switched off.
func (e *Engine) Decide(outdoor, gradient float64, bedtime bool) types.CirculatorSetting {
	speed := 0
	if !bedtime {
		speed = e.TargetSpeed(outdoor, gradient)
	}
	return targetSetting(speed)
}

func targetSetting(speed int) types.CirculatorSetting {
	if speed == 0 {
		return types.CirculatorSetting{Power: types.PowerOff}
	}
	return types.CirculatorSetting{Power: types.PowerOn, FanSpeed: speed}
}

// Plan lists the commands taking current to target speed. Power goes on
// before any step up and off only once the speed is back at 0.
func Plan(current types.CirculatorSetting, target int) []Command {
	var cmds []Command
	if target == 0 {
		if current.Power != types.PowerOn {
			return nil
		}
		cmds = append(cmds, steps(current.FanSpeed, 0)...)
		return append(cmds, CommandTogglePower)
	}
	if current.Power != types.PowerOn {
		cmds = append(cmds, CommandTogglePower)
	}
	return append(cmds, steps(current.FanSpeed, target)...)
}

func steps(from, to int) []Command {
	var cmds []Command
	for ; from < to; from++ {
		cmds = append(cmds, CommandIncrease)
	}
	for ; from > to; from-- {
		cmds = append(cmds, CommandDecrease)
	}
	return cmds
}

// Apply sends the plan one command at a time. On failure it returns the
// setting reached by the commands that did go through.
func Apply(ctx context.Context, act Actuator, current types.CirculatorSetting, target types.CirculatorSetting) (types.CirculatorSetting, error) {
	reached := current
	for _, cmd := range Plan(current, target.FanSpeed) {
		if err := act.SendCirculator(ctx, cmd); err != nil {
			return reached, fmt.Errorf("circulator %s: %w", cmd, err)
		}
		switch cmd {
		case CommandTogglePower:
			if reached.Power == types.PowerOn {
				reached.Power = types.PowerOff
			} else {
				reached.Power = types.PowerOn
			}
		case CommandIncrease:
			reached.FanSpeed++
		case CommandDecrease:
			reached.FanSpeed--
		}
	}
	return reached, nil
}

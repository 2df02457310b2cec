package circulator

import (
	"context"
	"fmt"
)

// Step maps a ceiling/floor gradient of at least MinGradient °C to a speed.
type Step struct {
	MinGradient float64
	Speed       int
}

// Tables are ordered from the largest gradient down. Below the last entry
// the circulator is switched off.
var (
	HotOutdoorSteps = []Step{
		{3.0, 2},
		{2.5, 1},
		{2.0, 1},
		{1.5, 0},
		{1.0, 0},
	}
	MildOutdoorSteps = []Step{
		{3.0, 4},
		{2.5, 3},
		{2.0, 3},
		{1.5, 2},
		{1.0, 1},
	}
)

// DefaultHotOutdoor selects HotOutdoorSteps at or above this outdoor temperature.
const DefaultHotOutdoor = 25.0

// Command is a relative operation; the device has no absolute speed setter.
type Command uint8

const (
	CommandTogglePower Command = iota + 1
	CommandIncrease
	CommandDecrease
)

func (c Command) String() string {
	switch c {
	case CommandTogglePower:
		return "toggle_power"
	case CommandIncrease:
		return "increase"
	case CommandDecrease:
		return "decrease"
	}
	return fmt.Sprintf("command(%d)", uint8(c))
}

func (c Command) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Actuator sends a single circulator command.
type Actuator interface {
	SendCirculator(ctx context.Context, cmd Command) error
}

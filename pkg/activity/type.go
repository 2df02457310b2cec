package activity

import (
	"fmt"
	"time"
)

// Profile is the occupant's metabolic rate [met] and clothing insulation [clo].
type Profile struct {
	Met float64 `json:"met"`
	Icl float64 `json:"icl"`
}

// ClockTime is a local wall-clock time in minutes since midnight.
type ClockTime int

func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClockTime parses "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return NewClockTime(t.Hour(), t.Minute()), nil
}

func ClockTimeOf(t time.Time) ClockTime {
	return NewClockTime(t.Hour(), t.Minute())
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Window is [Start, End) in local time with an additive adjustment.
type Window struct {
	Start ClockTime
	End   ClockTime
	Bonus float64
}

func (w Window) Contains(c ClockTime) bool {
	return c >= w.Start && c < w.End
}

const (
	MetBedtime = 1.0
	MetAwake   = 1.1

	// Warm regime: outdoor at or above this, or a summer month.
	WarmOutdoorThreshold = 20.0
	WarmRegimeFirstMonth = time.June
	WarmRegimeLastMonth  = time.September
	WarmIcl              = 0.6

	// Cool regime clothing decays linearly from the cold floor to the mild ceiling.
	ColdOutdoorThreshold = 5.0
	MildOutdoorThreshold = 15.0
	IclColdBedtime       = 1.6
	IclColdDaytime       = 1.05
	IclMildBedtime       = 1.0
	IclMildDaytime       = 0.7
)

// ActivityWindows raise met in the warm regime. Overlapping windows add up.
var ActivityWindows = []Window{
	{Start: NewClockTime(11, 0), End: NewClockTime(17, 0), Bonus: 0.25},
	{Start: NewClockTime(12, 0), End: NewClockTime(13, 0), Bonus: 0.2},
	{Start: NewClockTime(19, 0), End: NewClockTime(21, 0), Bonus: 0.3},
}

// PeakTariffWindows add insulation on weekdays so the model asks for less heating.
var PeakTariffWindows = []Window{
	{Start: NewClockTime(7, 40), End: NewClockTime(11, 0), Bonus: 0.2},
	{Start: NewClockTime(17, 0), End: NewClockTime(18, 0), Bonus: 0.2},
}

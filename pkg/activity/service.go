package activity

import "time"

// Estimate derives met and icl from the outdoor temperature and local time.
func Estimate(outdoor float64, now time.Time, bedtime bool) Profile {
	met := MetAwake
	if bedtime {
		met = MetBedtime
	}
	clock := ClockTimeOf(now)

	if isWarmRegime(outdoor, now.Month()) {
		for _, w := range ActivityWindows {
			if w.Contains(clock) {
				met += w.Bonus
			}
		}
		return Profile{Met: met, Icl: WarmIcl}
	}

	icl := coolRegimeIcl(outdoor, bedtime)
	if isWeekday(now.Weekday()) {
		for _, w := range PeakTariffWindows {
			if w.Contains(clock) {
				icl += w.Bonus
			}
		}
	}
	return Profile{Met: met, Icl: icl}
}

// IsBedtime is true outside [wake, sleep).
func IsBedtime(now time.Time, wake, sleep ClockTime) bool {
	c := ClockTimeOf(now)
	return c < wake || c >= sleep
}

func isWarmRegime(outdoor float64, month time.Month) bool {
	return outdoor >= WarmOutdoorThreshold ||
		(month >= WarmRegimeFirstMonth && month <= WarmRegimeLastMonth)
}

func coolRegimeIcl(outdoor float64, bedtime bool) float64 {
	cold, mild := IclColdDaytime, IclMildDaytime
	if bedtime {
		cold, mild = IclColdBedtime, IclMildBedtime
	}
	frac := (MildOutdoorThreshold - outdoor) / (MildOutdoorThreshold - ColdOutdoorThreshold)
	if frac < 0 {
		frac = 0
	} else if frac > 1 {
		frac = 1
	}
	return mild + (cold-mild)*frac
}

func isWeekday(d time.Weekday) bool {
	return d != time.Saturday && d != time.Sunday
}

package control_loop

import (
	"github.com/markusressel/baram/internal/util"
)

// DirectControlLoop gracefully approaches the target pwm by moving at most
// maxPwmChangePerCycle towards it each cycle. The result is always coerced
// into [minPwm, maxPwm], even when the limiter itself did not move.
type DirectControlLoop struct {
	// limits the maximum allowed pwm change per cycle
	maxPwmChangePerCycle int
	minPwm               int
	maxPwm               int

	current int
	primed  bool
}

func NewDirectControlLoop(
	maxPwmChangePerCycle int,
	minPwm int,
	maxPwm int,
) *DirectControlLoop {
	return &DirectControlLoop{
		maxPwmChangePerCycle: maxPwmChangePerCycle,
		minPwm:               minPwm,
		maxPwm:               maxPwm,
	}
}

func (l *DirectControlLoop) Cycle(target int) int {
	target = int(util.Coerce(float64(target), float64(l.minPwm), float64(l.maxPwm)))

	// the very first cycle applies the target as-is to get the fan
	// to a sane speed without ramping from an arbitrary starting point
	if !l.primed {
		l.primed = true
		l.current = target
		return l.current
	}

	err := target - l.current
	if err > 0 {
		l.current += int(util.Coerce(float64(err), 0, float64(l.maxPwmChangePerCycle)))
	} else {
		l.current += int(util.Coerce(float64(err), -float64(l.maxPwmChangePerCycle), 0))
	}

	return l.current
}

// Override forces the loop to the given value, bypassing the rate limit.
// Subsequent cycles ramp from here.
func (l *DirectControlLoop) Override(value int) int {
	l.primed = true
	l.current = int(util.Coerce(float64(value), float64(l.minPwm), float64(l.maxPwm)))
	return l.current
}

package curves

import (
	"github.com/markusressel/baram/internal/configuration"
	"github.com/markusressel/baram/internal/ui"
	"github.com/markusressel/baram/internal/util"
)

// Engine maps GPU temperature to a target pwm value. Raising is immediate,
// lowering is held back until the temperature has dropped far enough below
// the temperature that produced the current output, so the fan does not
// oscillate when the temperature hovers at a breakpoint.
type Engine struct {
	minTemp float64
	maxTemp float64
	minPwm  int
	maxPwm  int

	tempDrop float64
	ceiling  *configuration.SecondaryCeilingConfig

	output     int
	outputTemp float64
	primed     bool
}

func NewEngine(config configuration.Configuration) *Engine {
	return &Engine{
		minTemp:  float64(config.MinTemp),
		maxTemp:  float64(config.MaxTemp),
		minPwm:   config.MinPwm,
		maxPwm:   config.MaxPwm,
		tempDrop: float64(config.TempDrop),
		ceiling:  config.MaxPwmBelow,
	}
}

// Interpolate calculates the raw curve value for the given temperature,
// without hysteresis.
func (e *Engine) Interpolate(temp float64) int {
	var value int
	switch {
	case temp < e.minTemp:
		value = e.minPwm
	case temp >= e.maxTemp:
		value = e.maxPwm
	default:
		ratio := util.Ratio(temp, e.minTemp, e.maxTemp)
		value = e.minPwm + int(ratio*float64(e.maxPwm-e.minPwm))
	}

	// cap noise at moderate loads while still allowing full range above
	// the boundary
	if e.ceiling != nil && temp < float64(e.ceiling.Temp) && value > e.ceiling.Pwm {
		value = e.ceiling.Pwm
	}

	return value
}

// Target calculates the curve output for the given temperature, applying
// hysteresis against the previous output.
func (e *Engine) Target(temp float64) int {
	raw := e.Interpolate(temp)

	if !e.primed {
		e.primed = true
		e.output = raw
		e.outputTemp = temp
		return e.output
	}

	if raw > e.output {
		e.output = raw
		e.outputTemp = temp
	} else if raw < e.output {
		if temp <= e.outputTemp-e.tempDrop {
			ui.Debug("Temperature dropped from %.1f to %.1f, lowering pwm %d -> %d", e.outputTemp, temp, e.output, raw)
			e.output = raw
			e.outputTemp = temp
		}
		// otherwise hold the previous value
	}

	return e.output
}

// Output returns the currently held curve output.
func (e *Engine) Output() int {
	return e.output
}

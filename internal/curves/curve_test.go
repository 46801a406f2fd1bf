package curves

import (
	"testing"

	"github.com/markusressel/baram/internal/configuration"
	"github.com/stretchr/testify/assert"
)

// helper function to create a curve configuration
func createCurveConfig(
	minTemp int,
	maxTemp int,
	minPwm int,
	maxPwm int,
) configuration.Configuration {
	return configuration.Configuration{
		MinTemp:  minTemp,
		MaxTemp:  maxTemp,
		MinPwm:   minPwm,
		MaxPwm:   maxPwm,
		TempDrop: 3,
	}
}

func TestInterpolateBelowMinTemp(t *testing.T) {
	// GIVEN
	engine := NewEngine(createCurveConfig(40, 80, 20, 255))

	// WHEN / THEN
	for _, temp := range []float64{0, 20, 39, 39.9} {
		assert.Equal(t, 20, engine.Interpolate(temp))
	}
}

func TestInterpolateAtOrAboveMaxTemp(t *testing.T) {
	// GIVEN
	engine := NewEngine(createCurveConfig(40, 80, 20, 255))

	// WHEN / THEN
	for _, temp := range []float64{80, 85, 120} {
		assert.Equal(t, 255, engine.Interpolate(temp))
	}
}

func TestInterpolateMidRange(t *testing.T) {
	// GIVEN
	engine := NewEngine(createCurveConfig(40, 80, 20, 255))

	// WHEN
	result := engine.Interpolate(60)

	// THEN
	// 20 + (60-40)/(80-40) * (255-20)
	assert.Equal(t, 137, result)
}

func TestInterpolateIsMonotonic(t *testing.T) {
	// GIVEN
	engine := NewEngine(createCurveConfig(40, 80, 20, 255))

	// WHEN / THEN
	previous := engine.Interpolate(40)
	for temp := 41; temp <= 80; temp++ {
		current := engine.Interpolate(float64(temp))
		assert.GreaterOrEqual(t, current, previous)
		previous = current
	}
}

func TestSecondaryCeilingCapsBelowBoundary(t *testing.T) {
	// GIVEN
	config := createCurveConfig(40, 80, 20, 255)
	config.MaxPwmBelow = &configuration.SecondaryCeilingConfig{
		Temp: 65,
		Pwm:  120,
	}
	engine := NewEngine(config)

	// WHEN / THEN
	assert.Equal(t, 120, engine.Interpolate(60))
	assert.Equal(t, 166, engine.Interpolate(65))
	assert.Equal(t, 255, engine.Interpolate(80))
}

func TestTargetRaisesImmediately(t *testing.T) {
	// GIVEN
	engine := NewEngine(createCurveConfig(40, 80, 20, 255))
	engine.Target(50)

	// WHEN
	result := engine.Target(60)

	// THEN
	assert.Equal(t, 137, result)
}

func TestTargetHoldsWhileHovering(t *testing.T) {
	// GIVEN
	engine := NewEngine(createCurveConfig(40, 80, 20, 255))
	raised := engine.Target(60)

	// WHEN the temperature hovers just below the value that raised the output
	held := engine.Target(59)

	// THEN
	assert.Equal(t, raised, held)
}

func TestTargetLowersAfterTempDrop(t *testing.T) {
	// GIVEN
	engine := NewEngine(createCurveConfig(40, 80, 20, 255))
	raised := engine.Target(60)

	// WHEN the temperature falls by at least temp_drop
	lowered := engine.Target(57)

	// THEN
	assert.Less(t, lowered, raised)
	assert.Equal(t, engine.Interpolate(57), lowered)
}

func TestTargetHysteresisSequence(t *testing.T) {
	// GIVEN
	engine := NewEngine(createCurveConfig(40, 80, 20, 255))

	// WHEN / THEN
	assert.Equal(t, 137, engine.Target(60))
	// raise is immediate
	assert.Equal(t, 149, engine.Target(62))
	// small drop holds
	assert.Equal(t, 149, engine.Target(61))
	assert.Equal(t, 149, engine.Target(60))
	// drop past 62 - 3 releases
	assert.Equal(t, 131, engine.Target(59))
}

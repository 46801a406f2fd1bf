package util

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestRatio(t *testing.T) {
	// GIVEN
	a := 0.0
	b := 100.0
	c := 50.0

	expected := 0.5

	// WHEN
	result := Ratio(c, a, b)

	// THEN
	assert.Equal(t, expected, result)
}

func TestCoerce(t *testing.T) {
	// GIVEN
	min := 0.0
	max := 255.0

	// WHEN
	belowMin := Coerce(-10, min, max)
	aboveMax := Coerce(300, min, max)
	inRange := Coerce(100, min, max)

	// THEN
	assert.Equal(t, min, belowMin)
	assert.Equal(t, max, aboveMax)
	assert.Equal(t, 100.0, inRange)
}

func TestUpdateSimpleMovingAvg(t *testing.T) {
	// GIVEN
	oldAvg := 10.0
	n := 2

	// WHEN
	newAvg := UpdateSimpleMovingAvg(oldAvg, n, 20.0)

	// THEN
	assert.Equal(t, 15.0, newAvg)
}

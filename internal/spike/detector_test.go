package spike

import (
	"testing"
	"time"

	"github.com/markusressel/baram/internal/configuration"
	"github.com/stretchr/testify/assert"
)

func detectorConfig() configuration.Configuration {
	return configuration.Configuration{
		MinPwm:            20,
		MaxPwm:            255,
		WattageThreshold:  200,
		WattageSpikeCount: 3,
		WattagePwm:        100,
	}
}

func TestDetectorInactiveBelowThreshold(t *testing.T) {
	// GIVEN
	detector := NewDetector(detectorConfig())

	// WHEN
	for i := 0; i < 10; i++ {
		detector.Update(150, time.Now())
	}

	// THEN
	assert.False(t, detector.Active())
	assert.Equal(t, 20, detector.Floor())
}

func TestDetectorActivatesAfterConsecutiveSpikes(t *testing.T) {
	// GIVEN
	detector := NewDetector(detectorConfig())

	// WHEN
	detector.Update(250, time.Now())
	detector.Update(250, time.Now())
	assert.False(t, detector.Active())
	detector.Update(250, time.Now())

	// THEN
	assert.True(t, detector.Active())
	assert.Equal(t, 100, detector.Floor())
}

func TestDetectorReadingAtThresholdResetsCounter(t *testing.T) {
	// GIVEN
	detector := NewDetector(detectorConfig())
	detector.Update(250, time.Now())
	detector.Update(250, time.Now())

	// WHEN: a reading exactly at the threshold does not count as a spike
	detector.Update(200, time.Now())
	detector.Update(250, time.Now())
	detector.Update(250, time.Now())

	// THEN
	assert.False(t, detector.Active())
}

func TestDetectorReleasesFloorAfterNormalReading(t *testing.T) {
	// GIVEN
	detector := NewDetector(detectorConfig())
	detector.Update(250, time.Now())
	detector.Update(250, time.Now())
	detector.Update(250, time.Now())
	assert.True(t, detector.Active())

	// WHEN
	detector.Update(150, time.Now())

	// THEN
	assert.False(t, detector.Active())
	assert.Equal(t, 20, detector.Floor())
}

func TestDetectorStaysActiveWhileSpiking(t *testing.T) {
	// GIVEN
	detector := NewDetector(detectorConfig())
	for i := 0; i < 3; i++ {
		detector.Update(250, time.Now())
	}

	// WHEN
	for i := 0; i < 10; i++ {
		detector.Update(250, time.Now())
	}

	// THEN
	assert.True(t, detector.Active())
}

func TestWindowedDetectorToleratesInterleavedNormalReadings(t *testing.T) {
	// GIVEN
	config := detectorConfig()
	config.WattageInterval = 10 * time.Second
	detector := NewDetector(config)
	now := time.Now()

	// WHEN: spikes interleaved with normal readings, all within the window
	detector.Update(250, now)
	detector.Update(150, now.Add(1*time.Second))
	detector.Update(250, now.Add(2*time.Second))
	detector.Update(150, now.Add(3*time.Second))
	detector.Update(250, now.Add(4*time.Second))

	// THEN
	assert.True(t, detector.Active())
}

func TestWindowedDetectorExpiresOldSpikes(t *testing.T) {
	// GIVEN
	config := detectorConfig()
	config.WattageInterval = 10 * time.Second
	detector := NewDetector(config)
	now := time.Now()
	detector.Update(250, now)
	detector.Update(250, now.Add(1*time.Second))
	detector.Update(250, now.Add(2*time.Second))
	assert.True(t, detector.Active())

	// WHEN: enough time passes that the spikes leave the trailing window
	detector.Update(150, now.Add(15*time.Second))

	// THEN
	assert.False(t, detector.Active())
}

package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/markusressel/baram/internal/configuration"
	"github.com/markusressel/baram/internal/fans"
	"github.com/markusressel/baram/internal/sensors"
	"github.com/markusressel/baram/internal/telemetry"
	"github.com/stretchr/testify/assert"
)

type mockFan struct {
	pwm          int
	pwmHistory   []int
	rpm          int
	hasRpm       bool
	setPwmErr    error
	takeErr      error
	releaseCalls int
}

func (fan *mockFan) GetId() string { return "mock" }

func (fan *mockFan) GetPwm() (int, error) { return fan.pwm, nil }

func (fan *mockFan) SetPwm(pwm int) error {
	if fan.setPwmErr != nil {
		return fan.setPwmErr
	}
	fan.pwm = pwm
	fan.pwmHistory = append(fan.pwmHistory, pwm)
	return nil
}

func (fan *mockFan) GetRpm() (int, error) {
	if !fan.hasRpm {
		return 0, errors.New("no rpm sensor")
	}
	return fan.rpm, nil
}

func (fan *mockFan) HasRpmSensor() bool { return fan.hasRpm }

func (fan *mockFan) GetPwmEnabled() (int, error) { return 1, nil }

func (fan *mockFan) SetControlMode(_ fans.ControlMode) error { return nil }

func (fan *mockFan) TakeControl() error { return fan.takeErr }

func (fan *mockFan) Release() error {
	fan.releaseCalls++
	return nil
}

type mockSensor struct {
	readings []sensors.Reading
	errs     []error
	calls    int
}

func (sensor *mockSensor) GetId() string { return "mock-gpu" }

func (sensor *mockSensor) Read() (sensors.Reading, error) {
	i := sensor.calls
	sensor.calls++
	if i < len(sensor.errs) && sensor.errs[i] != nil {
		return sensors.Reading{}, sensor.errs[i]
	}
	if len(sensor.readings) == 0 {
		return sensors.Reading{Temperature: 50, Power: 100, Time: time.Now()}, nil
	}
	if i >= len(sensor.readings) {
		i = len(sensor.readings) - 1
	}
	return sensor.readings[i], nil
}

func (sensor *mockSensor) Close() {}

func testConfig() configuration.Configuration {
	return configuration.Configuration{
		MinTemp:               40,
		MaxTemp:               80,
		MinPwm:                20,
		MaxPwm:                255,
		PwmStep:               5,
		TempDrop:              3,
		WattageThreshold:      200,
		WattageSpikeCount:     3,
		WattagePwm:            100,
		SleepInterval:         time.Millisecond,
		TempRollingWindowSize: 1,
	}
}

func reading(temp float64, power float64) sensors.Reading {
	return sensors.Reading{Temperature: temp, Power: power, Time: time.Now()}
}

func TestRunSetsInitialBoostPwm(t *testing.T) {
	// GIVEN
	fan := &mockFan{}
	sensor := &mockSensor{}
	controller := NewFanController(testConfig(), fan, sensor, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// WHEN
	err := controller.Run(ctx)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 100, fan.pwmHistory[0])
}

func TestRunReleasesFanOnContextCancel(t *testing.T) {
	// GIVEN
	fan := &mockFan{}
	sensor := &mockSensor{}
	controller := NewFanController(testConfig(), fan, sensor, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	// WHEN
	err := controller.Run(ctx)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 1, fan.releaseCalls)
}

func TestRunFailsWhenControlCannotBeTaken(t *testing.T) {
	// GIVEN
	fan := &mockFan{takeErr: errors.New("permission denied")}
	sensor := &mockSensor{}
	controller := NewFanController(testConfig(), fan, sensor, nil)

	// WHEN
	err := controller.Run(context.Background())

	// THEN
	assert.Error(t, err)
	assert.Empty(t, fan.pwmHistory)
}

func TestCycleAppliesCurveTarget(t *testing.T) {
	// GIVEN
	fan := &mockFan{}
	sensor := &mockSensor{readings: []sensors.Reading{reading(60, 100)}}
	controller := NewFanController(testConfig(), fan, sensor, nil).(*fanController)

	// WHEN
	err := controller.cycle()

	// THEN: 60 °C on a 40..80 / 20..255 curve
	assert.NoError(t, err)
	assert.Equal(t, 137, fan.pwm)
}

func TestCycleRateLimitsPwmChanges(t *testing.T) {
	// GIVEN
	fan := &mockFan{}
	sensor := &mockSensor{readings: []sensors.Reading{
		reading(45, 100),
		reading(80, 100),
	}}
	controller := NewFanController(testConfig(), fan, sensor, nil).(*fanController)
	assert.NoError(t, controller.cycle())
	firstPwm := fan.pwm

	// WHEN: temperature jumps to the maximum
	assert.NoError(t, controller.cycle())

	// THEN: pwm only moved by one step
	assert.Equal(t, firstPwm+5, fan.pwm)
}

func TestCycleAppliesSpikeFloor(t *testing.T) {
	// GIVEN: cool gpu, but power draw above the threshold
	fan := &mockFan{}
	sensor := &mockSensor{readings: []sensors.Reading{reading(42, 250)}}
	config := testConfig()
	config.PwmStep = 255
	controller := NewFanController(config, fan, sensor, nil).(*fanController)

	// WHEN
	assert.NoError(t, controller.cycle())
	assert.NoError(t, controller.cycle())
	belowThreshold := fan.pwm
	assert.NoError(t, controller.cycle())

	// THEN: third consecutive spike raises the floor to the boost value
	assert.Less(t, belowThreshold, 100)
	assert.Equal(t, 100, fan.pwm)
	assert.True(t, controller.Snapshot().SpikeFloorActive)
}

func TestCycleRetriesFailedReadOnce(t *testing.T) {
	// GIVEN
	fan := &mockFan{}
	sensor := &mockSensor{
		readings: []sensors.Reading{{}, reading(60, 100)},
		errs:     []error{errors.New("transient")},
	}
	controller := NewFanController(testConfig(), fan, sensor, nil).(*fanController)

	// WHEN
	err := controller.cycle()

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 2, sensor.calls)
	assert.Equal(t, 137, fan.pwm)
}

func TestRunEntersFailsafeAfterConsecutiveFailures(t *testing.T) {
	// GIVEN: every read fails, including retries
	fan := &mockFan{}
	sensor := &mockSensor{errs: []error{
		errors.New("dead"), errors.New("dead"), errors.New("dead"),
		errors.New("dead"), errors.New("dead"), errors.New("dead"),
	}}
	controller := NewFanController(testConfig(), fan, sensor, nil)

	// WHEN
	err := controller.Run(context.Background())

	// THEN
	assert.ErrorIs(t, err, ErrFailsafe)
	assert.Equal(t, 255, fan.pwm)
	assert.Equal(t, 1, fan.releaseCalls)
	assert.True(t, controller.GetStatistics().FailsafeEntered)
}

func TestRunRecoversFromTransientFailures(t *testing.T) {
	// GIVEN: two failed cycles, then healthy readings
	fan := &mockFan{}
	sensor := &mockSensor{
		readings: []sensors.Reading{{}, {}, {}, {}, reading(60, 100)},
		errs: []error{
			errors.New("dead"), errors.New("dead"),
			errors.New("dead"), errors.New("dead"),
		},
	}
	controller := NewFanController(testConfig(), fan, sensor, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	// WHEN
	err := controller.Run(ctx)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 0, controller.GetStatistics().ConsecutiveFailures)
}

func TestCycleRecordsTelemetry(t *testing.T) {
	// GIVEN
	fan := &mockFan{hasRpm: true, rpm: 1400}
	sensor := &mockSensor{readings: []sensors.Reading{reading(60, 150)}}
	sink := &recordingSink{}
	controller := NewFanController(testConfig(), fan, sensor, sink).(*fanController)

	// WHEN
	assert.NoError(t, controller.cycle())

	// THEN
	assert.Len(t, sink.samples, 1)
	sample := sink.samples[0]
	assert.Equal(t, 60.0, sample.Temperature)
	assert.Equal(t, 150.0, sample.Power)
	assert.Equal(t, 137, sample.Pwm)
	assert.Equal(t, 1400, *sample.Rpm)
}

type recordingSink struct {
	samples []telemetry.Sample
	closed  int
}

func (sink *recordingSink) Record(sample telemetry.Sample) error {
	sink.samples = append(sink.samples, sample)
	return nil
}

func (sink *recordingSink) Close() error {
	sink.closed++
	return nil
}

package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/asecurityteam/rolling"
	"github.com/markusressel/baram/internal/configuration"
	"github.com/markusressel/baram/internal/control_loop"
	"github.com/markusressel/baram/internal/curves"
	"github.com/markusressel/baram/internal/fans"
	"github.com/markusressel/baram/internal/sensors"
	"github.com/markusressel/baram/internal/spike"
	"github.com/markusressel/baram/internal/telemetry"
	"github.com/markusressel/baram/internal/ui"
	"github.com/markusressel/baram/internal/util"
)

// ErrFailsafe is returned by Run when consecutive sensor or fan failures
// forced the fan to maximum speed.
var ErrFailsafe = errors.New("controller entered failsafe")

// consecutive failed cycles before the controller gives up on regulation
const maxConsecutiveFailures = 3

type State int

const (
	StateInit State = iota
	StateRunning
	StateFailsafe
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateRunning:
		return "running"
	case StateFailsafe:
		return "failsafe"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Snapshot is the externally visible view of the last control cycle,
// consumed by the REST api.
type Snapshot struct {
	State            string          `json:"state"`
	Reading          sensors.Reading `json:"reading"`
	Pwm              int             `json:"pwm"`
	TargetPwm        int             `json:"target_pwm"`
	SpikeFloorActive bool            `json:"spike_floor_active"`
}

// Statistics are cumulative counters exposed via prometheus.
type Statistics struct {
	TargetPwm           int
	SpikeFloorActive    bool
	ConsecutiveFailures int
	FailsafeEntered     bool
}

type FanController interface {
	Run(ctx context.Context) error
	Snapshot() Snapshot
	GetStatistics() Statistics
	GetFanId() string
}

type fanController struct {
	config configuration.Configuration
	fan    fans.Fan
	sensor sensors.Sensor

	curve      *curves.Engine
	spike      *spike.Detector
	loop       *control_loop.DirectControlLoop
	sink       telemetry.Sink
	tempWindow *rolling.PointPolicy

	releaseOnce sync.Once
	failures    int
	windowFull  bool

	mu       sync.RWMutex
	snapshot Snapshot
	stats    Statistics
}

func NewFanController(
	config configuration.Configuration,
	fan fans.Fan,
	sensor sensors.Sensor,
	sink telemetry.Sink,
) FanController {
	return &fanController{
		config:     config,
		fan:        fan,
		sensor:     sensor,
		curve:      curves.NewEngine(config),
		spike:      spike.NewDetector(config),
		loop:       control_loop.NewDirectControlLoop(config.PwmStep, config.MinPwm, config.MaxPwm),
		sink:       sink,
		tempWindow: util.CreateRollingWindow(config.TempRollingWindowSize),
	}
}

func (f *fanController) GetFanId() string {
	return f.fan.GetId()
}

func (f *fanController) Run(ctx context.Context) error {
	f.setState(StateInit)

	ui.Info("Taking control of %s", f.fan.GetId())
	if err := f.fan.TakeControl(); err != nil {
		return fmt.Errorf("unable to take control of %s: %w", f.fan.GetId(), err)
	}
	defer f.release()

	// start at the configured boost value so the fan is at a safe
	// speed before the first sensor reading arrives
	initialPwm := f.loop.Override(f.config.WattagePwm)
	if err := f.fan.SetPwm(initialPwm); err != nil {
		return fmt.Errorf("unable to set initial pwm on %s: %w", f.fan.GetId(), err)
	}

	ui.Info("Starting controller loop for %s (interval %s)", f.fan.GetId(), f.config.SleepInterval)
	f.setState(StateRunning)

	for {
		select {
		case <-ctx.Done():
			f.setState(StateStopping)
			return nil
		case <-time.After(f.config.SleepInterval):
		}

		if err := f.cycle(); err != nil {
			f.failures++
			f.updateFailureStats()
			ui.Error("Control cycle failed for %s (%d/%d): %v",
				f.fan.GetId(), f.failures, maxConsecutiveFailures, err)

			if f.failures >= maxConsecutiveFailures {
				return f.enterFailsafe()
			}
			continue
		}
		f.failures = 0
	}
}

// cycle runs one read-decide-write iteration.
func (f *fanController) cycle() error {
	reading, err := f.sensor.Read()
	if err != nil {
		// transient sysfs/nvml hiccups are common, retry once before
		// counting the cycle as failed
		ui.Warning("Reading %s failed, retrying: %v", f.sensor.GetId(), err)
		reading, err = f.sensor.Read()
		if err != nil {
			return err
		}
	}

	avgTemp := f.updateTempWindow(reading.Temperature)

	f.spike.Update(reading.Power, reading.Time)

	target := f.curve.Target(avgTemp)
	desired := target
	if floor := f.spike.Floor(); floor > desired {
		desired = floor
	}

	pwm := f.loop.Cycle(desired)
	if err = f.fan.SetPwm(pwm); err != nil {
		return err
	}

	sample := telemetry.Sample{
		Time:        reading.Time,
		Temperature: reading.Temperature,
		Power:       reading.Power,
		Pwm:         pwm,
	}
	if f.fan.HasRpmSensor() {
		if rpm, err := f.fan.GetRpm(); err == nil {
			sample.Rpm = &rpm
		}
	}
	if f.sink != nil {
		if err := f.sink.Record(sample); err != nil {
			// telemetry is best-effort, a full disk must not stop the fan
			ui.Warning("Unable to record telemetry sample: %v", err)
		}
	}

	f.publish(reading, pwm, desired)
	return nil
}

// updateTempWindow smooths the raw temperature over the configured rolling
// window. The window is primed with the first reading so early cycles do
// not average against zeroes.
func (f *fanController) updateTempWindow(temp float64) float64 {
	if !f.windowFull {
		f.windowFull = true
		util.FillWindow(f.tempWindow, f.config.TempRollingWindowSize, temp)
		return temp
	}
	f.tempWindow.Append(temp)
	return util.GetWindowAvg(f.tempWindow)
}

func (f *fanController) enterFailsafe() error {
	f.setState(StateFailsafe)
	ui.Error("CRITICAL: %d consecutive failures, forcing %s to maximum speed",
		maxConsecutiveFailures, f.fan.GetId())

	pwm := f.loop.Override(f.config.MaxPwm)
	if err := f.fan.SetPwm(pwm); err != nil {
		ui.Error("Unable to force maximum speed on %s, make sure the fan is running: %v", f.fan.GetId(), err)
	}

	f.mu.Lock()
	f.stats.FailsafeEntered = true
	f.mu.Unlock()

	return ErrFailsafe
}

// release returns the channel to its previous owner. Safe to call from
// multiple exit paths, only the first call has an effect.
func (f *fanController) release() {
	f.releaseOnce.Do(func() {
		f.setState(StateStopping)
		ui.Info("Restoring previous fan control mode on %s", f.fan.GetId())
		if err := f.fan.Release(); err != nil {
			ui.Warning("Unable to restore fan control mode on %s: %v", f.fan.GetId(), err)
		}
		if f.sink != nil {
			if err := f.sink.Close(); err != nil {
				ui.Warning("Unable to close telemetry sink: %v", err)
			}
		}
	})
}

func (f *fanController) setState(state State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshot.State = state.String()
}

func (f *fanController) publish(reading sensors.Reading, pwm int, target int) {
	floorActive := f.spike.Active()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshot.Reading = reading
	f.snapshot.Pwm = pwm
	f.snapshot.TargetPwm = target
	f.snapshot.SpikeFloorActive = floorActive
	f.stats.TargetPwm = target
	f.stats.SpikeFloorActive = floorActive
	f.stats.ConsecutiveFailures = 0
}

func (f *fanController) updateFailureStats() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats.ConsecutiveFailures = f.failures
}

func (f *fanController) Snapshot() Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snapshot
}

func (f *fanController) GetStatistics() Statistics {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.stats
}

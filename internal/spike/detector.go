package spike

import (
	"time"

	"github.com/markusressel/baram/internal/configuration"
	"github.com/markusressel/baram/internal/ui"
)

// Detector is a Schmitt-trigger over power readings. Sustained overdraw
// raises a cooling floor before the heat ever reaches the temperature sensor,
// which matters on datacenter GPUs that go from idle to full board power in a
// single cycle.
//
// Two modes exist: without a wattage_interval, readings above the threshold
// are counted consecutively and any reading at or below the threshold resets
// the count. With a wattage_interval, readings above the threshold are
// counted within the trailing interval instead.
type Detector struct {
	threshold  float64
	spikeCount int
	floorPwm   int
	minPwm     int
	interval   time.Duration

	counter int
	window  []time.Time
	active  bool
}

func NewDetector(config configuration.Configuration) *Detector {
	return &Detector{
		threshold:  float64(config.WattageThreshold),
		spikeCount: config.WattageSpikeCount,
		floorPwm:   config.WattagePwm,
		minPwm:     config.MinPwm,
		interval:   config.WattageInterval,
	}
}

// Update feeds one power reading into the detector.
func (d *Detector) Update(power float64, at time.Time) {
	if d.interval > 0 {
		d.updateWindowed(power, at)
	} else {
		d.updateConsecutive(power)
	}
}

func (d *Detector) updateConsecutive(power float64) {
	if power > d.threshold {
		d.counter++
	} else {
		d.counter = 0
	}

	active := d.counter >= d.spikeCount
	d.logTransition(active)
	d.active = active
}

func (d *Detector) updateWindowed(power float64, at time.Time) {
	if power > d.threshold {
		d.window = append(d.window, at)
	}

	// drop readings that have left the trailing interval
	cutoff := at.Add(-d.interval)
	kept := d.window[:0]
	for _, t := range d.window {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	d.window = kept

	active := len(d.window) >= d.spikeCount
	d.logTransition(active)
	d.active = active
}

func (d *Detector) logTransition(active bool) {
	if active && !d.active {
		ui.Info("Sustained power draw above %.0fW, raising pwm floor to %d", d.threshold, d.floorPwm)
	} else if !active && d.active {
		ui.Info("Power draw back to normal, releasing pwm floor")
	}
}

// Active indicates whether the cooling floor is currently asserted.
func (d *Detector) Active() bool {
	return d.active
}

// Floor returns the effective minimum pwm value. While the detector is
// active this is the configured boost value, otherwise the regular minimum.
func (d *Detector) Floor() int {
	if d.active {
		return d.floorPwm
	}
	return d.minPwm
}

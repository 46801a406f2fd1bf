package telemetry

import (
	"time"
)

// Sample is one control cycle's worth of measurements.
type Sample struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperature"`
	Power       float64   `json:"power"`
	Pwm         int       `json:"pwm"`
	// Rpm is nil when the resolved channel has no fan_input file
	Rpm *int `json:"rpm"`
}

type Sink interface {
	Record(sample Sample) error
	Close() error
}

// MultiSink fans a sample out to all configured sinks. A failing sink is
// logged by the caller but never blocks the others.
type MultiSink struct {
	sinks []Sink
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Record(sample Sample) error {
	var firstErr error
	for _, sink := range m.sinks {
		if err := sink.Record(sample); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *MultiSink) Close() error {
	var firstErr error
	for _, sink := range m.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

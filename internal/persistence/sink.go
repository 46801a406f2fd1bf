package persistence

import (
	"github.com/markusressel/baram/internal/telemetry"
)

// Sink adapts a Persistence to the telemetry.Sink interface so the
// history store can be wired into the same fan-out as the CSV log.
type Sink struct {
	persistence Persistence
}

func NewSink(persistence Persistence) *Sink {
	return &Sink{persistence: persistence}
}

func (s *Sink) Record(sample telemetry.Sample) error {
	return s.persistence.SaveSample(sample)
}

func (s *Sink) Close() error {
	return nil
}

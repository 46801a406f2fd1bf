package telemetry

import (
	"bytes"
	"encoding/json"

	"github.com/natefinch/atomic"
)

// StatusSink writes the most recent sample as JSON to a fixed path.
// The write is atomic so external tools never observe a partial file.
type StatusSink struct {
	path string
}

func NewStatusSink(path string) *StatusSink {
	return &StatusSink{path: path}
}

func (s *StatusSink) Record(sample Sample) error {
	data, err := json.Marshal(sample)
	if err != nil {
		return err
	}
	return atomic.WriteFile(s.path, bytes.NewReader(data))
}

func (s *StatusSink) Close() error {
	return nil
}

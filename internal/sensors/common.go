package sensors

import (
	"time"
)

// Reading is one sample of the monitored GPU, taken once per control cycle.
type Reading struct {
	// Temperature in degrees celsius
	Temperature float64 `json:"temperature"`
	// Power draw in watts
	Power float64 `json:"power"`
	Time  time.Time `json:"time"`
}

type Sensor interface {
	GetId() string

	// Read takes a single sample of temperature and power draw
	Read() (Reading, error)

	// Close releases the underlying device handle
	Close()
}

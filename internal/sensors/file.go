package sensors

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/markusressel/baram/internal/util"
)

// FileSensor reads temperature and power from plain files using hwmon units,
// millidegrees and microwatts. Useful for GPUs exposing their sensors via
// sysfs instead of NVML, and for testing.
type FileSensor struct {
	TemperaturePath string `json:"temperaturePath"`
	PowerPath       string `json:"powerPath"`
}

func NewFileSensor(temperaturePath string, powerPath string) *FileSensor {
	return &FileSensor{
		TemperaturePath: temperaturePath,
		PowerPath:       powerPath,
	}
}

func (sensor *FileSensor) GetId() string {
	return fmt.Sprintf("file-%s", filepath.Base(sensor.TemperaturePath))
}

func (sensor *FileSensor) Read() (Reading, error) {
	milliDegrees, err := util.ReadIntFromFile(sensor.TemperaturePath)
	if err != nil {
		return Reading{}, err
	}

	microWatts, err := util.ReadIntFromFile(sensor.PowerPath)
	if err != nil {
		return Reading{}, err
	}

	return Reading{
		Temperature: float64(milliDegrees) / 1000.0,
		Power:       float64(microWatts) / 1000000.0,
		Time:        time.Now(),
	}, nil
}

func (sensor *FileSensor) Close() {}

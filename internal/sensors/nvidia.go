package sensors

import (
	"errors"
	"fmt"
	"time"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/markusressel/baram/internal/ui"
)

type NvidiaSensor struct {
	Index int `json:"index"`

	device      nvml.Device
	initialized bool
}

// NewNvidiaSensor initializes NVML and acquires a handle to the GPU at the
// given index.
func NewNvidiaSensor(index int) (*NvidiaSensor, error) {
	ret := nvml.Init()
	if ret != nvml.SUCCESS {
		return nil, fmt.Errorf("unable to initialize NVML: %s", nvml.ErrorString(ret))
	}

	sensor := &NvidiaSensor{
		Index:       index,
		initialized: true,
	}

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		sensor.Close()
		return nil, fmt.Errorf("unable to get device count: %s", nvml.ErrorString(ret))
	}
	if index >= count {
		sensor.Close()
		return nil, fmt.Errorf("gpu index %d invalid, found %d GPU(s)", index, count)
	}

	device, ret := nvml.DeviceGetHandleByIndex(index)
	if ret != nvml.SUCCESS {
		sensor.Close()
		return nil, fmt.Errorf("unable to get device at index %d: %s", index, nvml.ErrorString(ret))
	}
	sensor.device = device

	name, ret := device.GetName()
	if ret == nvml.SUCCESS {
		ui.Info("Monitoring GPU %d: %s", index, name)
	}

	return sensor, nil
}

func (sensor *NvidiaSensor) GetId() string {
	return fmt.Sprintf("nvidia-%d", sensor.Index)
}

func (sensor *NvidiaSensor) Read() (Reading, error) {
	temp, ret := sensor.device.GetTemperature(nvml.TEMPERATURE_GPU)
	if ret != nvml.SUCCESS {
		return Reading{}, errors.New(nvml.ErrorString(ret))
	}

	// NVML reports milliwatts
	power, ret := sensor.device.GetPowerUsage()
	if ret != nvml.SUCCESS {
		return Reading{}, errors.New(nvml.ErrorString(ret))
	}

	return Reading{
		Temperature: float64(temp),
		Power:       float64(power) / 1000.0,
		Time:        time.Now(),
	}, nil
}

func (sensor *NvidiaSensor) Close() {
	if sensor.initialized {
		_ = nvml.Shutdown()
		sensor.initialized = false
	}
}

package statistics

import (
	"github.com/markusressel/baram/internal/sensors"
	"github.com/prometheus/client_golang/prometheus"
)

const sensorSubsystem = "sensor"

type SensorCollector struct {
	sensor      sensors.Sensor
	temperature *prometheus.Desc
	power       *prometheus.Desc
}

func NewSensorCollector(sensor sensors.Sensor) *SensorCollector {
	return &SensorCollector{
		sensor: sensor,
		temperature: prometheus.NewDesc(prometheus.BuildFQName(namespace, sensorSubsystem, "temperature"),
			"Current GPU temperature in degrees celsius",
			[]string{"id"}, nil,
		),
		power: prometheus.NewDesc(prometheus.BuildFQName(namespace, sensorSubsystem, "power"),
			"Current GPU power draw in watts",
			[]string{"id"}, nil,
		),
	}
}

func (collector *SensorCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.temperature
	ch <- collector.power
}

// Collect implements required collect function for all prometheus collectors
func (collector *SensorCollector) Collect(ch chan<- prometheus.Metric) {
	sensorId := collector.sensor.GetId()
	reading, err := collector.sensor.Read()
	if err != nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(collector.temperature, prometheus.GaugeValue, reading.Temperature, sensorId)
	ch <- prometheus.MustNewConstMetric(collector.power, prometheus.GaugeValue, reading.Power, sensorId)
}

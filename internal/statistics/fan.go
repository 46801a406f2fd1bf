package statistics

import (
	"github.com/markusressel/baram/internal/fans"
	"github.com/prometheus/client_golang/prometheus"
)

const fanSubsystem = "fan"

type FanCollector struct {
	fan fans.Fan
	pwm *prometheus.Desc
	rpm *prometheus.Desc
}

func NewFanCollector(fan fans.Fan) *FanCollector {
	return &FanCollector{
		fan: fan,
		pwm: prometheus.NewDesc(prometheus.BuildFQName(namespace, fanSubsystem, "pwm"),
			"Current PWM value of the fan",
			[]string{"id"}, nil,
		),
		rpm: prometheus.NewDesc(prometheus.BuildFQName(namespace, fanSubsystem, "rpm"),
			"Current RPM value of the fan",
			[]string{"id"}, nil,
		),
	}
}

func (collector *FanCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.pwm
	ch <- collector.rpm
}

// Collect implements required collect function for all prometheus collectors
func (collector *FanCollector) Collect(ch chan<- prometheus.Metric) {
	fan := collector.fan
	fanId := fan.GetId()
	if pwm, err := fan.GetPwm(); err == nil {
		ch <- prometheus.MustNewConstMetric(collector.pwm, prometheus.GaugeValue, float64(pwm), fanId)
	}
	if fan.HasRpmSensor() {
		if rpm, err := fan.GetRpm(); err == nil {
			ch <- prometheus.MustNewConstMetric(collector.rpm, prometheus.GaugeValue, float64(rpm), fanId)
		}
	}
}

package statistics

import (
	"github.com/markusressel/baram/internal/controller"
	"github.com/prometheus/client_golang/prometheus"
)

const controllerSubsystem = "controller"

type ControllerCollector struct {
	controller controller.FanController

	targetPwm           *prometheus.Desc
	spikeFloorActive    *prometheus.Desc
	consecutiveFailures *prometheus.Desc
	failsafe            *prometheus.Desc
}

func NewControllerCollector(fanController controller.FanController) *ControllerCollector {
	return &ControllerCollector{
		controller: fanController,
		targetPwm: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "target_pwm"),
			"PWM value the controller is currently steering towards",
			[]string{"id"}, nil,
		),
		spikeFloorActive: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "spike_floor_active"),
			"Whether the power spike cooling floor is currently asserted",
			[]string{"id"}, nil,
		),
		consecutiveFailures: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "consecutive_failures"),
			"Number of consecutive failed control cycles",
			[]string{"id"}, nil,
		),
		failsafe: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "failsafe"),
			"Whether the controller has entered failsafe mode",
			[]string{"id"}, nil,
		),
	}
}

func (collector *ControllerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.targetPwm
	ch <- collector.spikeFloorActive
	ch <- collector.consecutiveFailures
	ch <- collector.failsafe
}

// Collect implements required collect function for all prometheus collectors
func (collector *ControllerCollector) Collect(ch chan<- prometheus.Metric) {
	fanId := collector.controller.GetFanId()
	stats := collector.controller.GetStatistics()
	ch <- prometheus.MustNewConstMetric(collector.targetPwm, prometheus.GaugeValue, float64(stats.TargetPwm), fanId)
	ch <- prometheus.MustNewConstMetric(collector.spikeFloorActive, prometheus.GaugeValue, boolToFloat(stats.SpikeFloorActive), fanId)
	ch <- prometheus.MustNewConstMetric(collector.consecutiveFailures, prometheus.GaugeValue, float64(stats.ConsecutiveFailures), fanId)
	ch <- prometheus.MustNewConstMetric(collector.failsafe, prometheus.GaugeValue, boolToFloat(stats.FailsafeEntered), fanId)
}

func boolToFloat(value bool) float64 {
	if value {
		return 1
	}
	return 0
}

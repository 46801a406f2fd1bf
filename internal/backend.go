package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/markusressel/baram/internal/api"
	"github.com/markusressel/baram/internal/configuration"
	"github.com/markusressel/baram/internal/controller"
	"github.com/markusressel/baram/internal/fans"
	"github.com/markusressel/baram/internal/hwmon"
	"github.com/markusressel/baram/internal/persistence"
	"github.com/markusressel/baram/internal/sensors"
	"github.com/markusressel/baram/internal/statistics"
	"github.com/markusressel/baram/internal/telemetry"
	"github.com/markusressel/baram/internal/ui"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ExitCodeInvalidConfig    = 1
	ExitCodeDiscoveryFailure = 2
	ExitCodeFailsafe         = 3
)

func RunDaemon() {
	// os.Exit skips deferred calls, so the daemon body runs in its own
	// function and only the exit code escapes it
	os.Exit(runDaemon())
}

func runDaemon() int {
	if getProcessOwner() != "root" {
		ui.Fatal("Fan control requires root permissions to be able to modify fan speeds, please run baram as root")
	}

	config := configuration.CurrentConfig
	if err := configuration.Validate(); err != nil {
		ui.Error("Invalid configuration: %v", err)
		return ExitCodeInvalidConfig
	}

	channel, err := hwmon.Resolve(hwmon.DefaultBasePath, config.HwmonDevice, config.PwmChannel)
	if err != nil {
		ui.Error("Unable to find a controllable fan: %v", err)
		return ExitCodeDiscoveryFailure
	}
	ui.Info("Using fan channel %s (%s)", channel.Id(), channel.Name)
	fan := fans.NewHwMonFan(channel)

	sensor, err := createSensor(config)
	if err != nil {
		ui.Error("Unable to initialize gpu sensor: %v", err)
		return ExitCodeDiscoveryFailure
	}
	defer sensor.Close()

	sink := createTelemetrySink(config)

	fanController := controller.NewFanController(config, fan, sensor, sink)

	if config.Statistics.Enabled {
		statistics.Register(statistics.NewSensorCollector(sensor))
		statistics.Register(statistics.NewFanCollector(fan))
		statistics.Register(statistics.NewControllerCollector(fanController))
	}

	ctx, cancel := context.WithCancel(context.Background())

	var g run.Group
	{
		// === fan controller
		g.Add(func() error {
			err := fanController.Run(ctx)
			ui.Info("Fan controller for %s stopped.", fan.GetId())
			return err
		}, func(err error) {
			cancel()
		})
	}
	{
		enabled := config.Statistics.Enabled
		if enabled {
			// === Prometheus Exporter
			port := config.Statistics.Port
			if port <= 0 || port >= 65535 {
				port = 9000
			}
			addr := fmt.Sprintf(":%d", port)
			server := &http.Server{Addr: addr, Handler: promhttp.Handler()}

			g.Add(func() error {
				ui.Info("Serving metrics on %s/metrics", addr)
				if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
					ui.Error("Cannot start prometheus metrics endpoint (%s)", err.Error())
					return err
				}
				return nil
			}, func(err error) {
				timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer timeoutCancel()
				if err := server.Shutdown(timeoutCtx); err != nil {
					ui.Warning("Error stopping statistics server: %v", err)
				} else {
					ui.Info("Statistics server stopped.")
				}
			})
		}
	}
	{
		enabled := config.Api.Enabled
		if enabled {
			// === REST api
			restService := api.CreateRestService(fanController)
			addr := fmt.Sprintf(":%d", config.Api.Port)

			g.Add(func() error {
				ui.Info("Serving api on %s", addr)
				if err := restService.Start(addr); !errors.Is(err, http.ErrServerClosed) {
					ui.Error("Cannot start rest api endpoint (%s)", err.Error())
					return err
				}
				return nil
			}, func(err error) {
				timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer timeoutCancel()
				if err := restService.Shutdown(timeoutCtx); err != nil {
					ui.Warning("Error stopping api server: %v", err)
				} else {
					ui.Info("Api server stopped.")
				}
			})
		}
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		g.Add(func() error {
			select {
			case <-sig:
				ui.Info("Received stop signal, exiting...")
				return nil
			case <-ctx.Done():
				return nil
			}
		}, func(err error) {
			signal.Stop(sig)
			cancel()
		})
	}

	err = g.Run()
	if errors.Is(err, controller.ErrFailsafe) {
		ui.Error("Exiting after failsafe, fan left at maximum speed.")
		return ExitCodeFailsafe
	}
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return 1
	}
	ui.Info("Done.")
	return 0
}

// createSensor builds the gpu sensor, preferring explicit sensor file
// paths over NVML when configured.
func createSensor(config configuration.Configuration) (sensors.Sensor, error) {
	if config.SensorFiles != nil {
		return sensors.NewFileSensor(config.SensorFiles.Temperature, config.SensorFiles.Power), nil
	}
	return sensors.NewNvidiaSensor(config.GpuIndex)
}

// createTelemetrySink assembles the per-cycle telemetry fan-out: a CSV log,
// an atomically written status file and the bbolt history store.
func createTelemetrySink(config configuration.Configuration) telemetry.Sink {
	var sinks []telemetry.Sink

	if config.LogDir != "" {
		csvSink, err := telemetry.NewCsvSink(config.LogDir)
		if err != nil {
			ui.Warning("Unable to open csv log in %s: %v", config.LogDir, err)
		} else {
			sinks = append(sinks, csvSink)
		}
		sinks = append(sinks, telemetry.NewStatusSink(filepath.Join(config.LogDir, "status.json")))
	}

	if config.DbPath != "" {
		pers := persistence.NewPersistence(config.DbPath)
		if err := pers.Init(); err != nil {
			ui.Warning("Unable to initialize telemetry history at %s: %v", config.DbPath, err)
		} else {
			sinks = append(sinks, persistence.NewSink(pers))
		}
	}

	return telemetry.NewMultiSink(sinks...)
}

func getProcessOwner() string {
	stdout, err := exec.Command("ps", "-o", "user=", "-p", strconv.Itoa(os.Getpid())).Output()
	if err != nil {
		ui.Fatal("Error checking process owner: %v", err)
		os.Exit(1)
	}
	return strings.TrimSpace(string(stdout))
}

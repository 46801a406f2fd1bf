package cmd

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/markusressel/baram/internal/configuration"
	"github.com/markusressel/baram/internal/curves"
	"github.com/markusressel/baram/internal/ui"
	"github.com/spf13/cobra"
)

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Print the configured fan curve to console",
	Run: func(cmd *cobra.Command, args []string) {
		setupUi()
		configuration.DetectConfigFile()
		configuration.LoadConfig()
		config := configuration.CurrentConfig
		if err := configuration.Validate(); err != nil {
			ui.Fatal("Invalid configuration: %v", err)
		}

		engine := curves.NewEngine(config)

		var values []float64
		for temp := 20; temp <= 95; temp++ {
			values = append(values, float64(engine.Interpolate(float64(temp))))
		}

		caption := fmt.Sprintf("pwm over temperature (20..95 °C, %d..%d °C active range)",
			config.MinTemp, config.MaxTemp)
		if config.MaxPwmBelow != nil {
			caption += fmt.Sprintf(", capped to %d below %d °C",
				config.MaxPwmBelow.Pwm, config.MaxPwmBelow.Temp)
		}

		graph := asciigraph.Plot(values, asciigraph.Height(15), asciigraph.Width(100), asciigraph.Caption(caption))
		ui.Printfln(graph)
	},
}

func init() {
	rootCmd.AddCommand(curveCmd)
}

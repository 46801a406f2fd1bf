package cmd

import (
	"github.com/guptarohit/asciigraph"
	"github.com/markusressel/baram/internal/configuration"
	"github.com/markusressel/baram/internal/persistence"
	"github.com/markusressel/baram/internal/ui"
	"github.com/spf13/cobra"
)

var statsSampleCount int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print recent telemetry history to console",
	Long:  `Plots the recorded GPU temperature, power draw and pwm history from the local database`,
	Run: func(cmd *cobra.Command, args []string) {
		setupUi()
		configuration.DetectConfigFile()
		configuration.LoadConfig()
		config := configuration.CurrentConfig

		pers := persistence.NewPersistence(config.DbPath)
		samples, err := pers.LoadSamples(statsSampleCount)
		if err != nil {
			ui.Fatal("Unable to load telemetry history from %s: %v", config.DbPath, err)
		}
		if len(samples) == 0 {
			ui.Printfln("No telemetry history recorded yet.")
			return
		}

		temperatures := make([]float64, 0, len(samples))
		powers := make([]float64, 0, len(samples))
		pwms := make([]float64, 0, len(samples))
		for _, sample := range samples {
			temperatures = append(temperatures, sample.Temperature)
			powers = append(powers, sample.Power)
			pwms = append(pwms, float64(sample.Pwm))
		}

		graphs := []struct {
			values  []float64
			caption string
		}{
			{temperatures, "gpu temperature (°C)"},
			{powers, "gpu power draw (W)"},
			{pwms, "fan pwm"},
		}

		for _, g := range graphs {
			graph := asciigraph.Plot(g.values, asciigraph.Height(10), asciigraph.Width(100), asciigraph.Caption(g.caption))
			ui.Printfln(graph)
			ui.Printfln("")
		}
	},
}

func init() {
	statsCmd.Flags().IntVarP(&statsSampleCount, "samples", "n", 300, "Number of most recent samples to plot")
	rootCmd.AddCommand(statsCmd)
}

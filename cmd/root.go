package cmd

import (
	"fmt"
	"os"

	"github.com/markusressel/baram/cmd/global"
	"github.com/markusressel/baram/internal"
	"github.com/markusressel/baram/internal/configuration"
	"github.com/markusressel/baram/internal/ui"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	flagGpuIndex    int
	flagHwmonDevice string
	flagPwmChannel  int
	flagMinTemp     int
	flagMaxTemp     int
	flagMinPwm      int
	flagMaxPwm      int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "baram",
	Short: "A daemon to control a case fan based on GPU temperature.",
	Long: `baram is a simple daemon that drives a motherboard pwm fan
based on the temperature and power draw of a GPU.`,
	// this is the default command to run when no subcommand is specified
	Run: func(cmd *cobra.Command, args []string) {
		setupUi()
		printHeader()

		configPath := configuration.DetectConfigFile()
		if configPath != "" {
			ui.Info("Using configuration file at: %s", configPath)
		}
		configuration.LoadConfig()
		applyFlagOverrides(cmd)

		internal.RunDaemon()
	},
}

// applyFlagOverrides lets command line flags win over the config file
func applyFlagOverrides(cmd *cobra.Command) {
	config := &configuration.CurrentConfig
	if cmd.Flags().Changed("gpu") {
		config.GpuIndex = flagGpuIndex
	}
	if cmd.Flags().Changed("device") {
		config.HwmonDevice = flagHwmonDevice
	}
	if cmd.Flags().Changed("channel") {
		config.PwmChannel = flagPwmChannel
	}
	if cmd.Flags().Changed("min-temp") {
		config.MinTemp = flagMinTemp
	}
	if cmd.Flags().Changed("max-temp") {
		config.MaxTemp = flagMaxTemp
	}
	if cmd.Flags().Changed("min-pwm") {
		config.MinPwm = flagMinPwm
	}
	if cmd.Flags().Changed("max-pwm") {
		config.MaxPwm = flagMaxPwm
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&global.CfgFile, "config", "c", "", "config file (default is $HOME/baram.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&global.NoColor, "no-color", "", false, "Disable all terminal output coloration")
	rootCmd.PersistentFlags().BoolVarP(&global.NoStyle, "no-style", "", false, "Disable all terminal output styling")
	rootCmd.PersistentFlags().BoolVarP(&global.Verbose, "verbose", "v", false, "More verbose output")

	rootCmd.Flags().IntVar(&flagGpuIndex, "gpu", 0, "Index of the GPU to monitor")
	rootCmd.Flags().StringVar(&flagHwmonDevice, "device", "", "Hwmon device to control (path or chip name)")
	rootCmd.Flags().IntVar(&flagPwmChannel, "channel", 1, "Pwm channel of the hwmon device")
	rootCmd.Flags().IntVar(&flagMinTemp, "min-temp", 40, "Temperature at which the fan runs at minimum speed")
	rootCmd.Flags().IntVar(&flagMaxTemp, "max-temp", 80, "Temperature at which the fan runs at maximum speed")
	rootCmd.Flags().IntVar(&flagMinPwm, "min-pwm", 20, "Minimum pwm value")
	rootCmd.Flags().IntVar(&flagMaxPwm, "max-pwm", 255, "Maximum pwm value")
}

func setupUi() {
	ui.SetDebugEnabled(global.Verbose)

	if global.NoColor {
		pterm.DisableColor()
	}
	if global.NoStyle {
		pterm.DisableStyling()
	}
}

// Print a large text with the LetterStyle from the standard theme.
func printHeader() {
	err := pterm.DefaultBigText.WithLetters(
		pterm.NewLettersFromStringWithStyle("ba", pterm.NewStyle(pterm.FgLightBlue)),
		pterm.NewLettersFromStringWithStyle("ram", pterm.NewStyle(pterm.FgWhite)),
	).Render()
	if err != nil {
		fmt.Println("baram")
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.OnInitialize(func() {
		configuration.InitConfig(global.CfgFile)
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

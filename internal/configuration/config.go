package configuration

import (
	"os"
	"time"

	"github.com/markusressel/baram/internal/ui"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

type Configuration struct {
	MinTemp int `mapstructure:"min_temp"`
	MaxTemp int `mapstructure:"max_temp"`

	MinPwm  int `mapstructure:"min_pwm_value"`
	MaxPwm  int `mapstructure:"max_pwm_value"`
	PwmStep int `mapstructure:"pwm_step"`

	TempDrop int `mapstructure:"temp_drop"`

	WattageThreshold  int `mapstructure:"wattage_threshold"`
	WattageSpikeCount int `mapstructure:"wattage_spike_count"`
	WattagePwm        int `mapstructure:"wattage_pwm_value"`
	// WattageInterval selects the time-window spike detector when set,
	// otherwise consecutive readings are counted
	WattageInterval time.Duration `mapstructure:"wattage_interval"`

	// MaxPwmBelow caps the curve output below a boundary temperature
	MaxPwmBelow *SecondaryCeilingConfig `mapstructure:"max_pwm_below"`

	SleepInterval time.Duration `mapstructure:"sleep_interval"`

	GpuIndex    int    `mapstructure:"gpu_index"`
	HwmonDevice string `mapstructure:"hwmon_device"`
	PwmChannel  int    `mapstructure:"pwm_channel"`

	TempRollingWindowSize int `mapstructure:"temp_rolling_window_size"`

	// SensorFiles overrides NVML with plain file based sensors
	SensorFiles *SensorFilesConfig `mapstructure:"sensor_files"`

	LogDir string `mapstructure:"log_dir"`
	DbPath string `mapstructure:"db_path"`

	Statistics StatisticsConfig `mapstructure:"statistics"`
	Api        ApiConfig        `mapstructure:"api"`
}

type SecondaryCeilingConfig struct {
	Temp int `mapstructure:"temp"`
	Pwm  int `mapstructure:"pwm"`
}

type SensorFilesConfig struct {
	Temperature string `mapstructure:"temperature"`
	Power       string `mapstructure:"power"`
}

type StatisticsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

type ApiConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName("baram")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Error("Couldn't detect home directory: %v", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/baram/")
	}

	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	viper.SetDefault("min_temp", 40)
	viper.SetDefault("max_temp", 80)
	viper.SetDefault("min_pwm_value", 20)
	viper.SetDefault("max_pwm_value", 255)
	viper.SetDefault("pwm_step", 5)
	viper.SetDefault("temp_drop", 3)
	viper.SetDefault("wattage_threshold", 200)
	viper.SetDefault("wattage_spike_count", 3)
	viper.SetDefault("wattage_pwm_value", 100)
	viper.SetDefault("sleep_interval", 2*time.Second)
	viper.SetDefault("gpu_index", 0)
	viper.SetDefault("hwmon_device", "")
	viper.SetDefault("pwm_channel", 1)
	viper.SetDefault("temp_rolling_window_size", 1)
	viper.SetDefault("log_dir", "/var/log/baram")
	viper.SetDefault("db_path", "/etc/baram/baram.db")
	viper.SetDefault("statistics.enabled", false)
	viper.SetDefault("statistics.port", 9000)
	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.port", 9001)
}

// DetectConfigFile returns the path of the configuration file that will be used
func DetectConfigFile() string {
	err := readInConfig()
	if err != nil {
		ui.Fatal("Error reading config file, %s", err)
	}
	return GetFilePath()
}

// GetFilePath this is only populated _after_ readInConfig()
func GetFilePath() string {
	return viper.ConfigFileUsed()
}

func readInConfig() error {
	err := viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// the config file is optional, defaults apply
			return nil
		}
	}
	return err
}

func LoadConfig() {
	err := viper.Unmarshal(&CurrentConfig, viper.DecodeHook(decodeHook()))
	if err != nil {
		ui.Fatal("unable to decode into struct, %v", err)
	}
}

package configuration

import (
	"errors"
	"fmt"
)

func Validate() error {
	return validateConfig(&CurrentConfig)
}

func validateConfig(config *Configuration) error {
	if config.MinPwm < 0 || config.MaxPwm > 255 {
		return errors.New("PWM values must be in [0, 255]")
	}
	if config.MinPwm > config.MaxPwm {
		return fmt.Errorf("min_pwm_value (%d) must not exceed max_pwm_value (%d)", config.MinPwm, config.MaxPwm)
	}
	if config.MinTemp >= config.MaxTemp {
		return fmt.Errorf("min_temp (%d) must be below max_temp (%d)", config.MinTemp, config.MaxTemp)
	}
	if config.PwmStep <= 0 {
		return errors.New("pwm_step must be positive")
	}
	if config.TempDrop <= 0 {
		return errors.New("temp_drop must be positive")
	}
	if config.SleepInterval <= 0 {
		return errors.New("sleep_interval must be positive")
	}

	if config.WattageThreshold <= 0 {
		return errors.New("wattage_threshold must be positive")
	}
	if config.WattageSpikeCount <= 0 {
		return errors.New("wattage_spike_count must be positive")
	}
	if config.WattagePwm < 0 || config.WattagePwm > 255 {
		return errors.New("wattage_pwm_value must be in [0, 255]")
	}
	if config.WattageInterval < 0 {
		return errors.New("wattage_interval must not be negative")
	}

	if ceiling := config.MaxPwmBelow; ceiling != nil {
		if ceiling.Temp <= config.MinTemp || ceiling.Temp >= config.MaxTemp {
			return fmt.Errorf("max_pwm_below boundary temp (%d) must be between min_temp and max_temp", ceiling.Temp)
		}
		if ceiling.Pwm < config.MinPwm || ceiling.Pwm > config.MaxPwm {
			return fmt.Errorf("max_pwm_below pwm (%d) must be between min_pwm_value and max_pwm_value", ceiling.Pwm)
		}
	}

	if config.GpuIndex < 0 {
		return errors.New("gpu_index must not be negative")
	}
	if config.PwmChannel < 1 {
		return errors.New("pwm_channel must be >= 1")
	}
	if config.TempRollingWindowSize < 1 {
		return errors.New("temp_rolling_window_size must be >= 1")
	}

	if files := config.SensorFiles; files != nil {
		if len(files.Temperature) <= 0 || len(files.Power) <= 0 {
			return errors.New("sensor_files requires both a temperature and a power path")
		}
	}

	return nil
}

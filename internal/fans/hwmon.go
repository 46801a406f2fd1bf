package fans

import (
	"fmt"

	"github.com/markusressel/baram/internal/hwmon"
	"github.com/markusressel/baram/internal/ui"
	"github.com/markusressel/baram/internal/util"
)

type HwMonFan struct {
	Channel hwmon.Channel `json:"channel"`

	originalPwmEnabled int
	controlTaken       bool
}

func NewHwMonFan(channel hwmon.Channel) *HwMonFan {
	return &HwMonFan{
		Channel: channel,
	}
}

func (fan *HwMonFan) GetId() string {
	return fan.Channel.Id()
}

func (fan *HwMonFan) GetPwm() (int, error) {
	return util.ReadIntFromFile(fan.Channel.PwmPath)
}

func (fan *HwMonFan) SetPwm(pwm int) (err error) {
	ui.Debug("Setting %s to %d ...", fan.GetId(), pwm)
	return util.WriteIntToFile(pwm, fan.Channel.PwmPath)
}

func (fan *HwMonFan) GetRpm() (int, error) {
	if !fan.HasRpmSensor() {
		return -1, fmt.Errorf("%s has no rpm sensor", fan.GetId())
	}
	return util.ReadIntFromFile(fan.Channel.RpmPath)
}

func (fan *HwMonFan) HasRpmSensor() bool {
	return len(fan.Channel.RpmPath) > 0
}

func (fan *HwMonFan) GetPwmEnabled() (int, error) {
	return util.ReadIntFromFile(fan.Channel.EnablePath)
}

// SetControlMode writes the given value to pwmX_enable
// Possible values (unsure if these are true for all scenarios):
// 0 - no control (results in max speed)
// 1 - manual pwm control
// 2 - motherboard pwm control
func (fan *HwMonFan) SetControlMode(mode ControlMode) (err error) {
	value := int(mode)
	err = util.WriteIntToFile(value, fan.Channel.EnablePath)
	if err == nil {
		currentValue, err := util.ReadIntFromFile(fan.Channel.EnablePath)
		if err != nil || currentValue != value {
			return fmt.Errorf("PWM mode stuck to %d", currentValue)
		}
	}
	return err
}

func (fan *HwMonFan) TakeControl() error {
	pwmEnabled, err := fan.GetPwmEnabled()
	if err != nil {
		ui.Warning("Cannot read pwm_enable value of %s", fan.GetId())
		pwmEnabled = int(ControlModeAutomatic)
	}

	err = fan.SetControlMode(ControlModePWM)
	if err != nil {
		err = fan.SetControlMode(ControlModeDisabled)
	}
	if err != nil {
		return fmt.Errorf("could not enable manual control on %s: %w", fan.GetId(), err)
	}

	fan.originalPwmEnabled = pwmEnabled
	fan.controlTaken = true
	return nil
}

func (fan *HwMonFan) Release() error {
	if !fan.controlTaken {
		return nil
	}
	fan.controlTaken = false

	target := ControlMode(fan.originalPwmEnabled)
	if target == ControlModePWM {
		// the fan was in manual mode before, leaving it there would keep
		// the last commanded speed forever
		target = ControlModeAutomatic
	}

	err := fan.SetControlMode(target)
	if err != nil && target != ControlModeAutomatic {
		err = fan.SetControlMode(ControlModeAutomatic)
	}
	return err
}

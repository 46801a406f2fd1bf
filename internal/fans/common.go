package fans

const (
	MaxPwmValue = 255
	MinPwmValue = 0
)

type ControlMode int

const (
	// ControlModeDisabled completely disables control, resulting in a 100% voltage/PWM signal output
	ControlModeDisabled ControlMode = 0
	// ControlModePWM enables manual, fixed speed control via setting the pwm value
	ControlModePWM ControlMode = 1
	// ControlModeAutomatic enables automatic control by the integrated control of the mainboard
	ControlModeAutomatic ControlMode = 2
)

type Fan interface {
	GetId() string

	// GetPwm returns the currently set PWM value of this fan
	GetPwm() (int, error)
	SetPwm(pwm int) (err error)

	// GetRpm returns the current RPM value of this fan
	GetRpm() (int, error)
	// HasRpmSensor indicates whether this fan has a tachometer input
	HasRpmSensor() bool

	// GetPwmEnabled returns the current "pwm_enable" value of this fan
	GetPwmEnabled() (int, error)
	SetControlMode(mode ControlMode) (err error)

	// TakeControl switches the fan to manual pwm control, remembering the
	// mode it was in before
	TakeControl() error
	// Release hands the fan back to the control mode it was in before
	// TakeControl, falling back to automatic control. Safe to call more
	// than once.
	Release() error
}

package control_loop

type ControlLoop interface {
	// Cycle advances the control loop towards the given target pwm
	// and returns the value to apply this cycle.
	Cycle(target int) int
}

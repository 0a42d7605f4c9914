package gpio

// Level describes the binary state of a GPIO pin: either LOW or HIGH.
type Level bool

const (
	Low  Level = false
	High Level = true
)

// GPIO is a pin-level backend addressed by BCM pin number.
type GPIO interface {
	// Output claims a pin and configures it as an output.
	Output(pin int) error

	// Write sets a pin to LOW or HIGH
	Write(pin int, level Level) error

	// PWM sets the frequency (Hz) and duty cycle (0 - 1) for a given pin.
	PWM(pin int, frequency int, duty float64) error

	// Close releases the backend. Pin levels are left as they are.
	Close() error
}

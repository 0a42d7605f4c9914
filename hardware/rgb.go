package hardware

import (
	"fmt"

	"github.com/gloworm-vision/colorlight/color"
	"github.com/gloworm-vision/colorlight/hardware/gpio"
)

// Channel is one of the light's logical color channels.
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	}

	return fmt.Sprintf("channel(%d)", int(c))
}

// ErrChannel is returned when writing a single channel fails. Earlier
// channels of the same Apply have already been written.
type ErrChannel struct {
	Channel Channel
	error
}

func (err ErrChannel) Is(target error) bool {
	_, ok := target.(ErrChannel)
	return ok
}

func (err ErrChannel) Unwrap() error {
	return err.error
}

// RGB owns the three PWM pins of the light.
type RGB struct {
	gpio      gpio.GPIO
	pins      [3]int
	frequency int
}

// NewRGB claims the configured pins on an already opened backend.
func NewRGB(g gpio.GPIO, config Config) (*RGB, error) {
	rgb := &RGB{
		gpio:      g,
		pins:      [3]int{config.RedPin, config.GreenPin, config.BluePin},
		frequency: config.Frequency,
	}

	for ch, pin := range rgb.pins {
		if err := g.Output(pin); err != nil {
			return nil, fmt.Errorf("unable to acquire %s channel on pin %d: %w", Channel(ch), pin, err)
		}
	}

	return rgb, nil
}

// Apply sets the duty cycle of each channel to its intensity / 255, red first.
// It stops at the first channel that fails; nothing is rolled back.
func (r *RGB) Apply(c color.Color) error {
	red, green, blue := c.Duty()

	for ch, duty := range [3]float64{red, green, blue} {
		if err := r.gpio.PWM(r.pins[ch], r.frequency, duty); err != nil {
			return ErrChannel{Channel: Channel(ch), error: fmt.Errorf("can't set %s channel duty cycle: %w", Channel(ch), err)}
		}
	}

	return nil
}

// Close drives all channels low and releases the backend.
func (r *RGB) Close() error {
	for ch, pin := range r.pins {
		if err := r.gpio.Write(pin, gpio.Low); err != nil {
			return fmt.Errorf("unable to turn off %s channel: %w", Channel(ch), err)
		}
	}

	return r.gpio.Close()
}

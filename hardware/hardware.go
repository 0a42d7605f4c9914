// Package hardware drives the three PWM channels of an RGB light.
package hardware

import (
	"fmt"

	"github.com/gloworm-vision/colorlight/hardware/gpio"
	"github.com/sirupsen/logrus"
)

// Driver names a GPIO backend.
type Driver string

const (
	// Pigpio talks to a pigpiod daemon over its socket interface.
	Pigpio Driver = "pigpio"
	// Periph accesses the SoC GPIO registers directly through periph.io.
	Periph Driver = "periph"
	// Log drives no hardware and only logs duty cycles.
	Log Driver = "log"
)

// Config describes which pins make up the light and how to reach them.
type Config struct {
	Driver     Driver `json:"driver"`
	PigpioAddr string `json:"pigpioAddr,omitempty"`

	RedPin   int `json:"redPin"`
	GreenPin int `json:"greenPin"`
	BluePin  int `json:"bluePin"`

	// Frequency is the PWM frequency in Hz shared by all three channels.
	Frequency int `json:"frequency"`
}

// DefaultConfig is a pigpio-driven light on BCM pins 17, 27 and 22 at 60 Hz.
func DefaultConfig() Config {
	return Config{
		Driver:     Pigpio,
		PigpioAddr: "localhost:8888",
		RedPin:     17,
		GreenPin:   27,
		BluePin:    22,
		Frequency:  60,
	}
}

// Validate checks that the config could describe a real light.
func (c Config) Validate() error {
	switch c.Driver {
	case Pigpio:
		if c.PigpioAddr == "" {
			return fmt.Errorf("pigpio driver needs an address")
		}
	case Periph, Log:
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}

	if c.Frequency <= 0 {
		return fmt.Errorf("frequency must be positive, got %d", c.Frequency)
	}

	pins := []int{c.RedPin, c.GreenPin, c.BluePin}
	for i, pin := range pins {
		if pin < 0 {
			return fmt.Errorf("invalid %s pin %d", Channel(i), pin)
		}

		for j := 0; j < i; j++ {
			if pins[j] == pin {
				return fmt.Errorf("%s and %s share pin %d", Channel(j), Channel(i), pin)
			}
		}
	}

	return nil
}

// New opens the configured GPIO backend and claims the three channel pins.
func New(config Config, logger *logrus.Logger) (*RGB, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid hardware config: %w", err)
	}

	var (
		backend gpio.GPIO
		err     error
	)

	switch config.Driver {
	case Pigpio:
		backend, err = gpio.DialPigpio(config.PigpioAddr)
	case Periph:
		backend, err = gpio.OpenPeriph()
	case Log:
		backend = gpio.Logging{Logger: logger}
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open %s gpio: %w", config.Driver, err)
	}

	rgb, err := NewRGB(backend, config)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return rgb, nil
}

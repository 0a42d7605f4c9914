package main

import (
	"flag"
	"time"

	"github.com/gloworm-vision/colorlight/color"
	"github.com/gloworm-vision/colorlight/device"
	"github.com/gloworm-vision/colorlight/hardware"
	"github.com/sirupsen/logrus"
)

// rgbcycle fades each channel up and down in turn to check the wiring.
func main() {
	driver := flag.String("driver", string(hardware.Pigpio), "gpio driver: pigpio, periph or log")
	pigpio := flag.String("pigpio", "localhost:8888", "pigpiod address")
	flag.Parse()

	logger := logrus.New()

	config := hardware.DefaultConfig()
	config.Driver = hardware.Driver(*driver)
	config.PigpioAddr = *pigpio

	rgb, err := hardware.New(config, logger)
	if err != nil {
		logger.WithError(err).Fatal("unable to set up hardware")
	}
	defer rgb.Close()

	state, err := device.New(rgb, color.Color{})
	if err != nil {
		logger.WithError(err).Fatal("unable to turn light off")
	}

	channels := []func(v uint8) color.Color{
		func(v uint8) color.Color { return color.Color{Red: v} },
		func(v uint8) color.Color { return color.Color{Green: v} },
		func(v uint8) color.Color { return color.Color{Blue: v} },
	}

	for {
		for ch, fn := range channels {
			logger.WithField("channel", hardware.Channel(ch)).Info("fading")

			for i := 0; i <= 255; i += 5 {
				if err := state.Set(fn(uint8(i))); err != nil {
					logger.WithError(err).Error("unable to set color")
				}
				time.Sleep(time.Millisecond * 10)
			}

			for i := 255; i >= 0; i -= 5 {
				if err := state.Set(fn(uint8(i))); err != nil {
					logger.WithError(err).Error("unable to set color")
				}
				time.Sleep(time.Millisecond * 10)
			}
		}
	}
}

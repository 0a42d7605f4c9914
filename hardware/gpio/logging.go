package gpio

import (
	"github.com/sirupsen/logrus"
)

// Logging is a GPIO backend without hardware that logs every pin change.
type Logging struct {
	Logger *logrus.Logger
}

var _ GPIO = Logging{}

func (l Logging) Output(pin int) error {
	l.Logger.WithField("pin", pin).Debug("configured output")
	return nil
}

func (l Logging) Write(pin int, level Level) error {
	l.Logger.WithFields(logrus.Fields{"pin": pin, "level": bool(level)}).Debug("write")
	return nil
}

func (l Logging) PWM(pin int, frequency int, duty float64) error {
	l.Logger.WithFields(logrus.Fields{"pin": pin, "frequency": frequency, "duty": duty}).Info("pwm")
	return nil
}

func (l Logging) Close() error {
	return nil
}

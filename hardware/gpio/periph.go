package gpio

import (
	"fmt"
	"strconv"
	"sync"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// Periph drives pins directly through the periph.io host drivers.
type Periph struct {
	lookup func(name string) pgpio.PinIO

	mu   sync.Mutex
	pins map[int]pgpio.PinIO
}

var _ GPIO = &Periph{}

// OpenPeriph initializes the periph host drivers.
func OpenPeriph() (*Periph, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("unable to initialize periph host: %w", err)
	}

	return &Periph{lookup: gpioreg.ByName, pins: make(map[int]pgpio.PinIO)}, nil
}

func (p *Periph) Output(pin int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	io := p.lookup(strconv.Itoa(pin))
	if io == nil {
		return fmt.Errorf("no such pin %d", pin)
	}

	if err := io.Out(pgpio.Low); err != nil {
		return fmt.Errorf("unable to set pin %s as output: %w", io, err)
	}

	p.pins[pin] = io
	return nil
}

func (p *Periph) Write(pin int, level Level) error {
	io, err := p.pin(pin)
	if err != nil {
		return err
	}

	return io.Out(pgpio.Level(level))
}

func (p *Periph) PWM(pin int, frequency int, duty float64) error {
	io, err := p.pin(pin)
	if err != nil {
		return err
	}

	if duty < 0 {
		duty = 0
	} else if duty > 1 {
		duty = 1
	}

	return io.PWM(pgpio.Duty(duty*float64(pgpio.DutyMax)), physic.Frequency(frequency)*physic.Hertz)
}

// Close halts every claimed pin.
func (p *Periph) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for n, io := range p.pins {
		if err := io.Halt(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("unable to halt pin %d: %w", n, err)
		}
	}
	p.pins = make(map[int]pgpio.PinIO)

	return firstErr
}

func (p *Periph) pin(pin int) (pgpio.PinIO, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	io, ok := p.pins[pin]
	if !ok {
		return nil, fmt.Errorf("pin %d is not configured as an output", pin)
	}

	return io, nil
}

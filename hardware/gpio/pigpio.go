package gpio

import (
	"encoding/binary"
	"fmt"
	"net"
	"sync"
)

// Pigpio is used for controlling GPIO over the pigpio socket interface
type Pigpio struct {
	conn net.Conn
	mu   sync.Mutex
}

// compile-time check for whether Pigpio satisfies the GPIO interface
var _ GPIO = &Pigpio{}

// DialPigpio dials into the pigpio socket interface (normally running on port 8888)
func DialPigpio(addr string) (*Pigpio, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("couldn't dial into pigpio socket: %w", err)
	}

	return NewPigpio(conn), nil
}

// NewPigpio wraps an already established pigpio socket connection.
func NewPigpio(conn net.Conn) *Pigpio {
	return &Pigpio{conn: conn}
}

// Close closes the underlying pigpio socket interface connection
func (p *Pigpio) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return fmt.Errorf("connection is already closed")
	}

	err := p.conn.Close()
	p.conn = nil
	return err
}

// Output sets the pin mode to output and fixes its PWM range.
func (p *Pigpio) Output(pin int) error {
	if _, err := p.command(modes, uint32(pin), modeOutput); err != nil {
		return fmt.Errorf("unable to set pin %d as output: %w", pin, err)
	}

	if _, err := p.command(prs, uint32(pin), pwmRange); err != nil {
		return fmt.Errorf("unable to set pwm range on pin %d: %w", pin, err)
	}

	return nil
}

// Write sets a GPIO pin to LOW or HIGH.
func (p *Pigpio) Write(pin int, level Level) error {
	var rawLevel uint32
	if level {
		rawLevel = 1
	}

	_, err := p.command(write, uint32(pin), rawLevel)
	return err
}

// PWM sets frequency and duty cycle for software PWM on the given pin. pigpiod
// picks the closest frequency it supports for its sample rate.
func (p *Pigpio) PWM(pin int, frequency int, duty float64) error {
	if _, err := p.command(pfs, uint32(pin), uint32(frequency)); err != nil {
		return fmt.Errorf("unable to set pwm frequency: %w", err)
	}

	if _, err := p.command(pwm, uint32(pin), dutyToRange(duty)); err != nil {
		return fmt.Errorf("unable to set pwm duty cycle: %w", err)
	}

	return nil
}

type cmd struct {
	Cmd uint32
	P1  uint32
	P2  uint32
	P3  uint32
}

const (
	modes uint32 = 0
	write uint32 = 4
	pwm   uint32 = 5
	prs   uint32 = 6
	pfs   uint32 = 7

	modeOutput uint32 = 1

	// pwmRange is the number of duty cycle steps, pigpiod accepts 25-40000.
	pwmRange uint32 = 10000
)

func dutyToRange(duty float64) uint32 {
	switch {
	case duty <= 0:
		return 0
	case duty >= 1:
		return pwmRange
	}

	return uint32(duty*float64(pwmRange) + 0.5)
}

// ErrPigpio is a negative status returned by pigpiod for a command.
type ErrPigpio struct {
	Cmd    uint32
	Status int32
}

func (err ErrPigpio) Error() string {
	return fmt.Sprintf("pigpio command %d failed with status %d", err.Cmd, err.Status)
}

// command sends one request and returns the result word of the response.
func (p *Pigpio) command(c, p1, p2 uint32) (int32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return 0, fmt.Errorf("not connected to pigpio socket interface")
	}

	request := cmd{
		Cmd: c,
		P1:  p1,
		P2:  p2,
	}

	if err := binary.Write(p.conn, binary.LittleEndian, request); err != nil {
		return 0, fmt.Errorf("unable to write request to socket: %w", err)
	}

	var response cmd
	if err := binary.Read(p.conn, binary.LittleEndian, &response); err != nil {
		return 0, fmt.Errorf("unable to read response from socket: %w", err)
	}

	status := int32(response.P3)
	if status < 0 {
		return status, ErrPigpio{Cmd: c, Status: status}
	}

	return status, nil
}

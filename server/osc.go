package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/gloworm-vision/colorlight/color"
	"github.com/gloworm-vision/colorlight/device"
	"github.com/gloworm-vision/colorlight/osc"
	"github.com/sirupsen/logrus"
)

const colorAddress = "/color"

// OSCListener sets the light from OSC datagrams sent to /color.
type OSCListener struct {
	Addr string

	State  *device.State
	Logger *logrus.Logger

	conn net.PacketConn
}

// Listen binds the datagram socket.
func (l *OSCListener) Listen() error {
	conn, err := net.ListenPacket("udp", l.Addr)
	if err != nil {
		return fmt.Errorf("unable to bind osc socket on %q: %w", l.Addr, err)
	}

	l.conn = conn
	return nil
}

// LocalAddr is the bound address, valid after Listen.
func (l *OSCListener) LocalAddr() net.Addr {
	return l.conn.LocalAddr()
}

// Serve receives datagrams until ctx is done. Bad packets are logged and
// dropped, they never stop the loop.
func (l *OSCListener) Serve(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			l.conn.Close()
		case <-done:
		}
	}()

	buf := make([]byte, osc.MTU)
	for {
		n, from, err := l.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("osc socket closed: %w", err)
			}

			l.Logger.WithError(err).Error("error receiving from osc socket")
			continue
		}

		l.handlePacket(buf[:n], from)
	}
}

func (l *OSCListener) handlePacket(b []byte, from net.Addr) {
	logger := l.Logger.WithField("from", from)

	packet, err := osc.Decode(b)
	if err != nil {
		logger.WithError(err).Warn("error decoding osc packet")
		return
	}

	switch p := packet.(type) {
	case *osc.Message:
		l.handleMessage(logger, p)
	case *osc.Bundle:
		logger.WithFields(logrus.Fields{"timeTag": p.TimeTag, "elements": len(p.Elements)}).Warn("unexpected osc bundle")
	}
}

func (l *OSCListener) handleMessage(logger *logrus.Entry, m *osc.Message) {
	logger = logger.WithFields(logrus.Fields{"address": m.Address, "arguments": m.Arguments})

	if m.Address != colorAddress {
		logger.Warn("unexpected osc message")
		return
	}

	c, ok := colorFromArguments(m.Arguments)
	if !ok {
		logger.Warn("unexpected osc /color command")
		return
	}

	if err := l.State.Set(c); err != nil {
		logger.WithError(err).Error("unable to apply osc color")
		return
	}

	logger.WithField("color", c).Debug("color set over osc")
}

// colorFromArguments accepts three ints, three floats, three doubles or a
// single packed color, in that order.
func colorFromArguments(args []interface{}) (color.Color, bool) {
	switch len(args) {
	case 1:
		if rgba, ok := args[0].(osc.RGBA); ok {
			return color.FromPacked(rgba.Uint32()), true
		}
	case 3:
		if r, g, b, ok := int32s(args); ok {
			return color.FromIntegers(r, g, b), true
		}
		if r, g, b, ok := float32s(args); ok {
			return color.FromFloat32s(r, g, b), true
		}
		if r, g, b, ok := float64s(args); ok {
			return color.FromFloat64s(r, g, b), true
		}
	}

	return color.Color{}, false
}

func int32s(args []interface{}) (r, g, b int32, ok bool) {
	if r, ok = args[0].(int32); !ok {
		return
	}
	if g, ok = args[1].(int32); !ok {
		return
	}
	b, ok = args[2].(int32)
	return
}

func float32s(args []interface{}) (r, g, b float32, ok bool) {
	if r, ok = args[0].(float32); !ok {
		return
	}
	if g, ok = args[1].(float32); !ok {
		return
	}
	b, ok = args[2].(float32)
	return
}

func float64s(args []interface{}) (r, g, b float64, ok bool) {
	if r, ok = args[0].(float64); !ok {
		return
	}
	if g, ok = args[1].(float64); !ok {
		return
	}
	b, ok = args[2].(float64)
	return
}

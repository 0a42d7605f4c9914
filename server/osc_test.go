package server

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gloworm-vision/colorlight/color"
	"github.com/gloworm-vision/colorlight/osc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, p osc.Packet) []byte {
	t.Helper()

	var buf bytes.Buffer
	_, err := p.Encode(&buf)
	require.NoError(t, err)

	return buf.Bytes()
}

func colorMessage(args ...interface{}) *osc.Message {
	return &osc.Message{Address: "/color", Arguments: args}
}

var from = &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9000}

func newTestListener(t *testing.T) (*OSCListener, *fakeOutput) {
	s, out := newTestServer(t)
	return &OSCListener{Addr: "127.0.0.1:0", State: s.State, Logger: s.Logger}, out
}

var acceptedMessages = []struct {
	Name    string
	Message *osc.Message
	Expect  color.Color
}{
	{"ints", colorMessage(int32(255), int32(0), int32(128)), color.Color{Red: 255, Green: 0, Blue: 128}},
	{"floats", colorMessage(float32(255), float32(12.7), float32(0)), color.Color{Red: 255, Green: 12, Blue: 0}},
	{"doubles", colorMessage(1.0, 2.9, 254.99), color.Color{Red: 1, Green: 2, Blue: 254}},
	{"packed", colorMessage(osc.RGBA{R: 0x12, G: 0x34, B: 0x56, A: 0x78}), color.Color{Red: 0x12, Green: 0x34, Blue: 0x56}},
	// out of range integers wrap to their low byte, they aren't clamped
	{"wrapping ints", colorMessage(int32(300), int32(-1), int32(128)), color.Color{Red: 44, Green: 255, Blue: 128}},
}

func TestHandleColorMessages(t *testing.T) {
	for _, c := range acceptedMessages {
		l, out := newTestListener(t)

		l.handlePacket(encode(t, c.Message), from)
		assert.Equal(t, c.Expect, l.State.Get(), c.Name)
		assert.Equal(t, c.Expect, out.applied[len(out.applied)-1], c.Name)
	}
}

var ignoredPackets = []struct {
	Name   string
	Packet osc.Packet
}{
	{"other address", &osc.Message{Address: "/colour", Arguments: []interface{}{int32(1), int32(2), int32(3)}}},
	{"no arguments", colorMessage()},
	{"two ints", colorMessage(int32(1), int32(2))},
	{"four ints", colorMessage(int32(1), int32(2), int32(3), int32(4))},
	{"mixed types", colorMessage(int32(1), float32(2), 3.0)},
	{"strings", colorMessage("1", "2", "3")},
	{"int64s", colorMessage(int64(1), int64(2), int64(3))},
	{"packed plus extra", colorMessage(osc.RGBA{R: 1}, int32(1))},
	{"bundle", &osc.Bundle{TimeTag: osc.Immediately, Elements: []osc.Packet{colorMessage(int32(1), int32(2), int32(3))}}},
}

func TestHandleIgnoredPackets(t *testing.T) {
	for _, c := range ignoredPackets {
		l, out := newTestListener(t)

		l.handlePacket(encode(t, c.Packet), from)
		assert.Equal(t, initial, l.State.Get(), c.Name)
		assert.Len(t, out.applied, 1, c.Name)
	}
}

func TestHandlePackedColorBytes(t *testing.T) {
	l, _ := newTestListener(t)

	packet := []byte{
		'/', 'c', 'o', 'l', 'o', 'r', 0, 0,
		',', 'r', 0, 0,
		0xAB, 0xCD, 0xEF, 0x01,
	}

	l.handlePacket(packet, from)
	assert.Equal(t, color.Color{Red: 0xAB, Green: 0xCD, Blue: 0xEF}, l.State.Get())
}

func TestHandleMalformedPacket(t *testing.T) {
	l, out := newTestListener(t)

	l.handlePacket([]byte("garbage!"), from)
	l.handlePacket(nil, from)
	// no type tag string
	l.handlePacket([]byte{'/', 'c', 'o', 'l', 'o', 'r', 0, 0}, from)
	// truncated packed color
	l.handlePacket([]byte{'/', 'c', 'o', 'l', 'o', 'r', 0, 0, ',', 'r', 0, 0}, from)
	assert.Equal(t, initial, l.State.Get())
	assert.Len(t, out.applied, 1)
}

func TestHandleApplyFailureKeepsGoing(t *testing.T) {
	l, out := newTestListener(t)
	out.fail(errors.New("write failed"))

	l.handlePacket(encode(t, colorMessage(int32(1), int32(2), int32(3))), from)
	assert.Equal(t, color.Color{Red: 1, Green: 2, Blue: 3}, l.State.Get())

	out.fail(nil)
	l.handlePacket(encode(t, colorMessage(int32(4), int32(5), int32(6))), from)
	assert.Equal(t, color.Color{Red: 4, Green: 5, Blue: 6}, l.State.Get())
}

func TestServeOverUDP(t *testing.T) {
	l, _ := newTestListener(t)
	require.NoError(t, l.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() { errs <- l.Serve(ctx) }()

	conn, err := net.Dial("udp", l.LocalAddr().String())
	require.NoError(t, err)
	defer conn.Close()

	// a bad datagram first, the loop has to survive it
	_, err = conn.Write([]byte{1, 2, 3})
	require.NoError(t, err)

	_, err = conn.Write(encode(t, colorMessage(int32(255), int32(0), int32(128))))
	require.NoError(t, err)

	want := color.Color{Red: 255, Green: 0, Blue: 128}
	assert.Eventually(t, func() bool { return l.State.Get() == want }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errs:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve didn't return after cancel")
	}
}

// Starting at the initial color, an HTTP update followed by an OSC update are
// both visible through GET /color.
func TestHTTPThenOSCScenario(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()
	l := &OSCListener{State: s.State, Logger: s.Logger}

	var got color.Color
	decodeBody(t, do(t, h, http.MethodGet, "/color", ""), &got)
	require.Equal(t, color.Color{Red: 242, Green: 155, Blue: 212}, got)

	res := do(t, h, http.MethodPut, "/color", `{"red":0,"green":0,"blue":0}`)
	require.Equal(t, http.StatusNoContent, res.Code)

	decodeBody(t, do(t, h, http.MethodGet, "/color", ""), &got)
	require.Equal(t, color.Color{}, got)

	l.handlePacket(encode(t, colorMessage(float32(255), float32(255), float32(255))), from)

	decodeBody(t, do(t, h, http.MethodGet, "/color", ""), &got)
	assert.Equal(t, color.Color{Red: 255, Green: 255, Blue: 255}, got)
}

func TestConcurrentIngress(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()
	l := &OSCListener{State: s.State, Logger: s.Logger}

	packet := encode(t, colorMessage(int32(10), int32(10), int32(10)))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			l.handlePacket(packet, from)
		}
	}()

	for i := 0; i < 200; i++ {
		do(t, h, http.MethodPut, "/color", `{"red":20,"green":20,"blue":20}`)

		var got color.Color
		decodeBody(t, do(t, h, http.MethodGet, "/color", ""), &got)
		assert.True(t, got.Red == got.Green && got.Green == got.Blue, "torn color %v", got)
	}

	<-done
}

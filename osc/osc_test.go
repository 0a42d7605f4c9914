package osc

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var colorMessage = []byte{
	'/', 'c', 'o', 'l', 'o', 'r', 0, 0,
	',', 'i', 'i', 'i', 0, 0, 0, 0,
	0, 0, 0, 0xFF,
	0, 0, 0, 0,
	0, 0, 0, 0x80,
}

func TestDecodeMessage(t *testing.T) {
	p, err := Decode(colorMessage)
	require.NoError(t, err)

	m, ok := p.(*Message)
	require.True(t, ok, "got %T", p)
	assert.Equal(t, "/color", m.Address)
	assert.Equal(t, []interface{}{int32(255), int32(0), int32(128)}, m.Arguments)
}

func TestEncodeMessage(t *testing.T) {
	var buf bytes.Buffer
	m := Message{Address: "/color", Arguments: []interface{}{int32(255), int32(0), int32(128)}}

	n, err := m.Encode(&buf)
	require.NoError(t, err)
	assert.Equal(t, len(colorMessage), n)
	assert.Equal(t, colorMessage, buf.Bytes())
}

func TestStringPadding(t *testing.T) {
	var buf bytes.Buffer

	_, err := (&oscString{V: "abc"}).Encode(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{'a', 'b', 'c', 0}, buf.Bytes())

	buf.Reset()
	_, err = (&oscString{V: "abcd"}).Encode(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{'a', 'b', 'c', 'd', 0, 0, 0, 0}, buf.Bytes())

	var str oscString
	n, err := str.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, "abcd", str.V)
}

func TestMessageAllArgumentTypes(t *testing.T) {
	m := &Message{
		Address: "/all/types",
		Arguments: []interface{}{
			int32(-7),
			float32(1.5),
			2.25,
			int64(1) << 40,
			"hello",
			[]byte{1, 2, 3, 4, 5},
			Char('x'),
			RGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44},
			MIDI{Port: 1, Status: 0x90, Data1: 60, Data2: 127},
			Immediately,
			true,
			false,
			nil,
			Infinitum{},
			[]interface{}{int32(1), []interface{}{"nested"}},
		},
	}

	var buf bytes.Buffer
	_, err := m.Encode(&buf)
	require.NoError(t, err)
	assert.Zero(t, buf.Len()%4)

	p, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, m, p)
}

func TestEncodeUnsupportedArgument(t *testing.T) {
	var buf bytes.Buffer
	_, err := (&Message{Address: "/x", Arguments: []interface{}{42}}).Encode(&buf)
	assert.Error(t, err)
}

func TestBundle(t *testing.T) {
	b := &Bundle{
		TimeTag: Immediately,
		Elements: []Packet{
			&Message{Address: "/color", Arguments: []interface{}{RGBA{R: 1, G: 2, B: 3, A: 255}}},
			&Bundle{
				TimeTag:  TimeTag(42 << 32),
				Elements: []Packet{&Message{Address: "/empty", Arguments: []interface{}{}}},
			},
		},
	}

	var buf bytes.Buffer
	_, err := b.Encode(&buf)
	require.NoError(t, err)

	p, err := Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, b, p)
}

var malformedPackets = map[string][]byte{
	"empty":            {},
	"unaligned":        {'/', 'a', 0},
	"no address":       {'x', 0, 0, 0},
	"no type tags":     {'/', 'a', 0, 0, 'i', 0, 0, 0},
	"truncated int":    {'/', 'a', 0, 0, ',', 'i', 0, 0},
	"unknown tag":      {'/', 'a', 0, 0, ',', 'X', 0, 0},
	"unbalanced array": {'/', 'a', 0, 0, ',', ']', 0, 0},
	"open array":       {'/', 'a', 0, 0, ',', '[', 0, 0},
	"unterminated":     {'/', 'a', 'b', 'c'},
	"bad bundle":       append([]byte("#bundle\x00"), 0, 0, 0, 0),
}

func TestDecodeMalformed(t *testing.T) {
	for name, b := range malformedPackets {
		_, err := Decode(b)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrMalformed{}), name)
	}
}

func TestTimeTag(t *testing.T) {
	unix := TimeTag(uint64(2208988800) << 32)
	assert.True(t, time.Unix(0, 0).Equal(unix.Time()), unix.Time())

	half := TimeTag(uint64(2208988800)<<32 | 1<<31)
	assert.True(t, time.Unix(0, int64(time.Second/2)).Equal(half.Time()), half.Time())
}

func TestRGBAPacking(t *testing.T) {
	c := NewRGBA(0xABCDEF01)
	assert.Equal(t, RGBA{R: 0xAB, G: 0xCD, B: 0xEF, A: 0x01}, c)
	assert.Equal(t, uint32(0xABCDEF01), c.Uint32())
}

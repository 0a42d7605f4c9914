// Package osc encodes and decodes Open Sound Control 1.0 packets.
//
// Arguments are plain Go values: int32 (i), float32 (f), float64 (d),
// int64 (h), string (s, S), []byte (b), Char (c), RGBA (r), MIDI (m),
// TimeTag (t), bool (T, F), nil (N), Infinitum (I) and []interface{} for
// arrays.
package osc

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"
)

// MTU is the largest datagram a packet is expected to arrive in.
const MTU = 1536

const bundleTag = "#bundle"

// Packet is either a *Message or a *Bundle.
type Packet interface {
	Encode(w io.Writer) (int, error)
}

// Message is a single OSC message addressed to a method.
type Message struct {
	Address   string
	Arguments []interface{}
}

// Bundle is a batch of packets scheduled for the same time.
type Bundle struct {
	TimeTag  TimeTag
	Elements []Packet
}

// Char is a 32-bit ASCII character.
type Char rune

// RGBA is a packed 32-bit color.
type RGBA struct {
	R, G, B, A uint8
}

// NewRGBA splits a 0xRRGGBBAA value.
func NewRGBA(v uint32) RGBA {
	return RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}

// Uint32 packs the color as 0xRRGGBBAA.
func (c RGBA) Uint32() uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

// MIDI is a 4 byte MIDI message: port id, status byte and two data bytes.
type MIDI struct {
	Port, Status, Data1, Data2 uint8
}

// Infinitum is the argument-less "impulse" type.
type Infinitum struct{}

// TimeTag is an NTP timestamp, seconds since 1900 in the upper 32 bits.
type TimeTag uint64

// Immediately is the special time tag meaning "now".
const Immediately TimeTag = 1

var ntpEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// Time converts the tag to a wall clock time.
func (t TimeTag) Time() time.Time {
	secs := time.Duration(uint64(t)>>32) * time.Second
	frac := time.Duration((uint64(t) & 0xFFFFFFFF) * uint64(time.Second) >> 32)
	return ntpEpoch.Add(secs + frac)
}

// ErrMalformed wraps any failure to decode a packet.
type ErrMalformed struct {
	error
}

func (err ErrMalformed) Is(target error) bool {
	_, ok := target.(ErrMalformed)
	return ok
}

func (err ErrMalformed) Unwrap() error {
	return err.error
}

// Decode parses one packet from a datagram.
func Decode(b []byte) (Packet, error) {
	p, err := decodePacket(b)
	if err != nil {
		return nil, ErrMalformed{err}
	}

	return p, nil
}

func decodePacket(b []byte) (Packet, error) {
	switch {
	case len(b) == 0:
		return nil, fmt.Errorf("empty packet")
	case len(b)%4 != 0:
		return nil, fmt.Errorf("packet size %d is not a multiple of 4", len(b))
	case b[0] == '/':
		var m Message
		if _, err := m.Decode(bytes.NewReader(b)); err != nil {
			return nil, err
		}
		return &m, nil
	case bytes.HasPrefix(b, []byte(bundleTag+"\x00")):
		var bundle Bundle
		if _, err := bundle.Decode(bytes.NewReader(b)); err != nil {
			return nil, err
		}
		return &bundle, nil
	}

	return nil, fmt.Errorf("packet starts with neither an address nor %q", bundleTag)
}

type countingReader struct {
	rd io.Reader
	n  int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.rd.Read(p)
	c.n += n
	return n, err
}

func (m *Message) Decode(rd io.Reader) (int, error) {
	address := oscString{}
	addressN, err := address.Decode(rd)
	if err != nil {
		return addressN, fmt.Errorf("unable to read address: %w", err)
	}

	if !strings.HasPrefix(address.V, "/") {
		return addressN, fmt.Errorf("address %q doesn't start with '/'", address.V)
	}

	tags := oscString{}
	tagsN, err := tags.Decode(rd)
	if err != nil {
		return addressN + tagsN, fmt.Errorf("unable to read type tags: %w", err)
	}

	if !strings.HasPrefix(tags.V, ",") {
		return addressN + tagsN, fmt.Errorf("type tags %q don't start with ','", tags.V)
	}

	counter := &countingReader{rd: rd}
	args, _, err := decodeArguments(counter, tags.V[1:], false)
	if err != nil {
		return addressN + tagsN + counter.n, err
	}

	m.Address = address.V
	m.Arguments = args

	return addressN + tagsN + counter.n, nil
}

func (m *Message) Encode(w io.Writer) (int, error) {
	tags := bytes.NewBufferString(",")
	var args bytes.Buffer

	for i, arg := range m.Arguments {
		if err := encodeArgument(tags, &args, arg); err != nil {
			return 0, fmt.Errorf("unable to encode argument %d: %w", i, err)
		}
	}

	var buf bytes.Buffer
	address := oscString{V: m.Address}
	if _, err := address.Encode(&buf); err != nil {
		return 0, fmt.Errorf("unable to encode address: %w", err)
	}

	tagString := oscString{V: tags.String()}
	if _, err := tagString.Encode(&buf); err != nil {
		return 0, fmt.Errorf("unable to encode type tags: %w", err)
	}

	buf.Write(args.Bytes())

	return w.Write(buf.Bytes())
}

func (b *Bundle) Decode(rd io.Reader) (int, error) {
	tag := oscString{}
	tagN, err := tag.Decode(rd)
	if err != nil {
		return tagN, fmt.Errorf("unable to read bundle tag: %w", err)
	}

	if tag.V != bundleTag {
		return tagN, fmt.Errorf("bundle tag is %q", tag.V)
	}

	timeTag, timeN, err := readUint64(rd)
	if err != nil {
		return tagN + timeN, fmt.Errorf("unable to read time tag: %w", err)
	}

	b.TimeTag = TimeTag(timeTag)
	b.Elements = nil
	total := tagN + timeN

	for {
		size, sizeN, err := readUint32(rd)
		total += sizeN
		if err == io.EOF {
			return total, nil
		} else if err != nil {
			return total, fmt.Errorf("unable to read element size: %w", err)
		}

		var element bytes.Buffer
		elementN, err := io.CopyN(&element, rd, int64(size))
		total += int(elementN)
		if err != nil {
			return total, fmt.Errorf("unable to read element %d: %w", len(b.Elements), err)
		}

		p, err := decodePacket(element.Bytes())
		if err != nil {
			return total, fmt.Errorf("unable to decode element %d: %w", len(b.Elements), err)
		}

		b.Elements = append(b.Elements, p)
	}
}

func (b *Bundle) Encode(w io.Writer) (int, error) {
	var buf bytes.Buffer

	tag := oscString{V: bundleTag}
	if _, err := tag.Encode(&buf); err != nil {
		return 0, fmt.Errorf("unable to encode bundle tag: %w", err)
	}
	putUint64(&buf, uint64(b.TimeTag))

	for i, p := range b.Elements {
		var element bytes.Buffer
		if _, err := p.Encode(&element); err != nil {
			return 0, fmt.Errorf("unable to encode element %d: %w", i, err)
		}

		putUint32(&buf, uint32(element.Len()))
		buf.Write(element.Bytes())
	}

	return w.Write(buf.Bytes())
}

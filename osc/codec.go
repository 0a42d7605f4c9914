package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

func padding(n int) int {
	return (4 - n%4) % 4
}

// oscString is a NUL terminated string padded to a multiple of four bytes.
type oscString struct {
	V string
}

func (str *oscString) Decode(rd io.Reader) (int, error) {
	var (
		value []byte
		total int
	)

	chunk := make([]byte, 4)
	for {
		n, err := io.ReadFull(rd, chunk)
		total += n
		if err != nil {
			return total, fmt.Errorf("couldn't read string: %w", err)
		}

		if i := bytes.IndexByte(chunk, 0); i >= 0 {
			value = append(value, chunk[:i]...)
			break
		}

		value = append(value, chunk...)
	}

	str.V = string(value)

	return total, nil
}

func (str *oscString) Encode(w io.Writer) (int, error) {
	buf := make([]byte, len(str.V)+1+padding(len(str.V)+1))
	copy(buf, str.V)

	n, err := w.Write(buf)
	if err != nil {
		return n, fmt.Errorf("couldn't write string: %w", err)
	}

	return n, nil
}

// oscBlob is a size prefixed byte slice padded to a multiple of four bytes.
type oscBlob struct {
	V []byte
}

func (blob *oscBlob) Decode(rd io.Reader) (int, error) {
	size, sizeN, err := readUint32(rd)
	if err != nil {
		return sizeN, fmt.Errorf("couldn't read blob size: %w", err)
	}

	if int32(size) < 0 {
		return sizeN, fmt.Errorf("negative blob size %d", int32(size))
	}

	var buf bytes.Buffer
	dataN, err := io.CopyN(&buf, rd, int64(size)+int64(padding(int(size))))
	if err != nil {
		return sizeN + int(dataN), fmt.Errorf("couldn't read blob data: %w", err)
	}

	blob.V = buf.Bytes()[:size]

	return sizeN + int(dataN), nil
}

func (blob *oscBlob) Encode(w io.Writer) (int, error) {
	buf := make([]byte, 4+len(blob.V)+padding(len(blob.V)))
	binary.BigEndian.PutUint32(buf, uint32(len(blob.V)))
	copy(buf[4:], blob.V)

	n, err := w.Write(buf)
	if err != nil {
		return n, fmt.Errorf("couldn't write blob: %w", err)
	}

	return n, nil
}

func readUint32(rd io.Reader) (uint32, int, error) {
	buf := make([]byte, 4)
	n, err := io.ReadFull(rd, buf)
	if err != nil {
		return 0, n, err
	}

	return binary.BigEndian.Uint32(buf), n, nil
}

func readUint64(rd io.Reader) (uint64, int, error) {
	buf := make([]byte, 8)
	n, err := io.ReadFull(rd, buf)
	if err != nil {
		return 0, n, err
	}

	return binary.BigEndian.Uint64(buf), n, nil
}

func putUint32(buf *bytes.Buffer, v uint32) {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	buf.Write(b)
}

func putUint64(buf *bytes.Buffer, v uint64) {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	buf.Write(b)
}

// decodeArguments reads one argument per type tag. Inside an array it stops
// after the closing ']' and reports how many tags it consumed.
func decodeArguments(rd io.Reader, tags string, nested bool) ([]interface{}, int, error) {
	args := make([]interface{}, 0, len(tags))

	for i := 0; i < len(tags); i++ {
		switch tag := tags[i]; tag {
		case '[':
			array, n, err := decodeArguments(rd, tags[i+1:], true)
			if err != nil {
				return nil, 0, err
			}

			args = append(args, array)
			i += n
		case ']':
			if !nested {
				return nil, 0, fmt.Errorf("unbalanced ']' in type tags %q", tags)
			}

			return args, i + 1, nil
		default:
			arg, err := decodeArgument(rd, tag)
			if err != nil {
				return nil, 0, fmt.Errorf("couldn't decode argument %d (%q): %w", len(args), tag, err)
			}

			args = append(args, arg)
		}
	}

	if nested {
		return nil, 0, fmt.Errorf("unterminated array in type tags %q", tags)
	}

	return args, len(tags), nil
}

func decodeArgument(rd io.Reader, tag byte) (interface{}, error) {
	switch tag {
	case 'i':
		v, _, err := readUint32(rd)
		return int32(v), err
	case 'f':
		v, _, err := readUint32(rd)
		return math.Float32frombits(v), err
	case 'c':
		v, _, err := readUint32(rd)
		return Char(v), err
	case 'r':
		v, _, err := readUint32(rd)
		return NewRGBA(v), err
	case 'm':
		v, _, err := readUint32(rd)
		return MIDI{Port: uint8(v >> 24), Status: uint8(v >> 16), Data1: uint8(v >> 8), Data2: uint8(v)}, err
	case 'h':
		v, _, err := readUint64(rd)
		return int64(v), err
	case 'd':
		v, _, err := readUint64(rd)
		return math.Float64frombits(v), err
	case 't':
		v, _, err := readUint64(rd)
		return TimeTag(v), err
	case 's', 'S':
		var str oscString
		_, err := str.Decode(rd)
		return str.V, err
	case 'b':
		var blob oscBlob
		_, err := blob.Decode(rd)
		return blob.V, err
	case 'T':
		return true, nil
	case 'F':
		return false, nil
	case 'N':
		return nil, nil
	case 'I':
		return Infinitum{}, nil
	}

	return nil, fmt.Errorf("unknown type tag %q", tag)
}

// encodeArgument appends the argument's type tag to tags and its data to buf.
func encodeArgument(tags, buf *bytes.Buffer, arg interface{}) error {
	switch v := arg.(type) {
	case int32:
		tags.WriteByte('i')
		putUint32(buf, uint32(v))
	case float32:
		tags.WriteByte('f')
		putUint32(buf, math.Float32bits(v))
	case Char:
		tags.WriteByte('c')
		putUint32(buf, uint32(v))
	case RGBA:
		tags.WriteByte('r')
		putUint32(buf, v.Uint32())
	case MIDI:
		tags.WriteByte('m')
		putUint32(buf, uint32(v.Port)<<24|uint32(v.Status)<<16|uint32(v.Data1)<<8|uint32(v.Data2))
	case int64:
		tags.WriteByte('h')
		putUint64(buf, uint64(v))
	case float64:
		tags.WriteByte('d')
		putUint64(buf, math.Float64bits(v))
	case TimeTag:
		tags.WriteByte('t')
		putUint64(buf, uint64(v))
	case string:
		tags.WriteByte('s')
		str := oscString{V: v}
		if _, err := str.Encode(buf); err != nil {
			return err
		}
	case []byte:
		tags.WriteByte('b')
		blob := oscBlob{V: v}
		if _, err := blob.Encode(buf); err != nil {
			return err
		}
	case bool:
		if v {
			tags.WriteByte('T')
		} else {
			tags.WriteByte('F')
		}
	case nil:
		tags.WriteByte('N')
	case Infinitum:
		tags.WriteByte('I')
	case []interface{}:
		tags.WriteByte('[')
		for _, elem := range v {
			if err := encodeArgument(tags, buf, elem); err != nil {
				return err
			}
		}
		tags.WriteByte(']')
	default:
		return fmt.Errorf("unsupported argument type %T", arg)
	}

	return nil
}

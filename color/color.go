// Package color holds the canonical 8-bit RGB value the light is driven with
// and the conversions from the other numeric encodings it can arrive in.
package color

import "math"

// Color is a single RGB value with 8 bits per channel.
type Color struct {
	Red   uint8 `json:"red"`
	Green uint8 `json:"green"`
	Blue  uint8 `json:"blue"`
}

// FromIntegers truncates each value to its low 8 bits, so 300 becomes 44 and
// -1 becomes 255. Callers that don't want wrapping must validate first.
func FromIntegers(r, g, b int32) Color {
	return Color{Red: uint8(r), Green: uint8(g), Blue: uint8(b)}
}

// FromFloat32s converts device-native floats (already on a 0-255 scale).
func FromFloat32s(r, g, b float32) Color {
	return FromFloat64s(float64(r), float64(g), float64(b))
}

// FromFloat64s converts device-native floats (already on a 0-255 scale).
// Values truncate toward zero and saturate at 0 and 255; NaN becomes 0.
func FromFloat64s(r, g, b float64) Color {
	return Color{Red: saturate(r), Green: saturate(g), Blue: saturate(b)}
}

// FromPacked splits a 0xRRGGBBAA value into its color bytes. Alpha is dropped.
func FromPacked(rgba uint32) Color {
	return Color{
		Red:   uint8(rgba >> 24),
		Green: uint8(rgba >> 16),
		Blue:  uint8(rgba >> 8),
	}
}

// Packed returns the color as 0xRRGGBBAA with a fully opaque alpha.
func (c Color) Packed() uint32 {
	return uint32(c.Red)<<24 | uint32(c.Green)<<16 | uint32(c.Blue)<<8 | 0xFF
}

// Duty returns the channel intensities as fractions in [0, 1].
func (c Color) Duty() (r, g, b float64) {
	return float64(c.Red) / 255.0, float64(c.Green) / 255.0, float64(c.Blue) / 255.0
}

func saturate(v float64) uint8 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 255:
		return 255
	}

	return uint8(math.Trunc(v))
}

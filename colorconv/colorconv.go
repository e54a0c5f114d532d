// Package colorconv converts between 32-bit packed RGBA colors, as emitted by
// the physics debug render buffer, and normalized float colors used by the
// renderer.
//
// Packed layout is little-endian by byte: byte 0 is red, byte 1 green,
// byte 2 blue and byte 3 alpha.
package colorconv

import "math"

// Normalized holds four channels in [0, 1].
type Normalized struct {
	R, G, B, A float32
}

// New builds a normalized color from its channels. Values are stored as
// given; Pack clamps them.
func New(r, g, b, a float32) Normalized {
	return Normalized{R: r, G: g, B: b, A: a}
}

// Array returns the channels in RGBA order, the layout vertex colors use.
func (c Normalized) Array() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// Unpack splits a packed color into normalized channels.
// It is total: every bit pattern produces channels in [0, 1].
func Unpack(packed uint32) Normalized {
	r := packed & 0xFF
	g := (packed >> 8) & 0xFF
	b := (packed >> 16) & 0xFF
	a := (packed >> 24) & 0xFF

	return Normalized{
		R: float32(r) / 255.0,
		G: float32(g) / 255.0,
		B: float32(b) / 255.0,
		A: float32(a) / 255.0,
	}
}

// Pack is the inverse of Unpack. Channels are clamped to [0, 1], scaled by
// 255 and rounded to nearest; NaN packs to 0.
func Pack(c Normalized) uint32 {
	return uint32(channelByte(c.R)) |
		uint32(channelByte(c.G))<<8 |
		uint32(channelByte(c.B))<<16 |
		uint32(channelByte(c.A))<<24
}

// RGBA packs four 8-bit channels.
func RGBA(r, g, b, a uint8) uint32 {
	return uint32(r) | uint32(g)<<8 | uint32(b)<<16 | uint32(a)<<24
}

func channelByte(v float32) uint8 {
	if math.IsNaN(float64(v)) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(float64(v) * 255.0))
}

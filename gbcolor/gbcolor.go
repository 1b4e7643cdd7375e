/*
Package gbcolor implements the colour conversions used when encoding tiles for
the Game Boy Color.

A Color carries 8-bit red, green and blue channels and an alpha channel
expressed as a fraction between 0 and 1. Colors are compared by packing them
into a 32-bit key:

	AAAAAAAA RRRRRRRR GGGGGGGG BBBBBBBB

where the alpha byte is the fraction rounded to the nearest 255th. The
hardware palette word is 15 bits, five bits per channel:

	0BBBBBGG GGGRRRRR
*/
package gbcolor

import (
	"image/color"
	"math"
	"strconv"
)

// Color is an RGB colour with fractional alpha.
type Color struct {
	R, G, B uint8
	A       float64
}

// Opaque returns a fully opaque Color.
func Opaque(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// Pack returns the 32-bit lookup key for c. Alpha is rounded to 8 bits.
// Channels are not clamped.
func Pack(c Color) uint32 {
	return uint32(math.Round(c.A*0xff))<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Unpack is the inverse of Pack.
func Unpack(v uint32) Color {
	return Color{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: float64(v>>24) / 0xff,
	}
}

// ToRGB555 drops the low three bits of each channel and packs the result as
// r | g<<5 | b<<10.
func ToRGB555(c Color) uint16 {
	return uint16(c.R>>3) | uint16(c.G>>3)<<5 | uint16(c.B>>3)<<10
}

func expand5(v uint16) uint8 {
	v &= 0x1f
	return uint8(v<<3 | v>>2)
}

// FromRGB555 expands a hardware palette word back into an opaque Color.
func FromRGB555(v uint16) Color {
	return Opaque(expand5(v), expand5(v>>5), expand5(v>>10))
}

// Key is shorthand for Pack(c).
func (c Color) Key() uint32 {
	return Pack(c)
}

// RGB555 is shorthand for ToRGB555(c).
func (c Color) RGB555() uint16 {
	return ToRGB555(c)
}

// RGBA implements the color.Color interface.
func (c Color) RGBA() (r, g, b, a uint32) {
	a = uint32(math.Round(c.A * 0xffff))
	r = uint32(c.R) * 0x101 * a / 0xffff
	g = uint32(c.G) * 0x101 * a / 0xffff
	b = uint32(c.B) * 0x101 * a / 0xffff
	return
}

func (c Color) String() string {
	return "rgba(" +
		strconv.Itoa(int(c.R)) + "," +
		strconv.Itoa(int(c.G)) + "," +
		strconv.Itoa(int(c.B)) + "," +
		strconv.FormatFloat(c.A, 'f', -1, 64) + ")"
}

// FromColor converts any color.Color into a Color, normalising the 0-255
// alpha of Go's colour model into a fraction.
func FromColor(c color.Color) Color {
	if gc, ok := c.(Color); ok {
		return gc
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{
		R: n.R,
		G: n.G,
		B: n.B,
		A: float64(n.A) / 0xff,
	}
}

// Model converts colours to Color.
var Model = color.ModelFunc(func(c color.Color) color.Color {
	return FromColor(c)
})

/*
Package palette implements the fixed four colour palettes of the Game Boy
Color and the check that decides which palette, if any, each tile of a picture
can be drawn with.
*/
package palette

import (
	"errors"

	"github.com/bodgit/gbtiles/gbcolor"
	"github.com/bodgit/gbtiles/raster"
)

// Size is the number of colours in a palette; two bits per pixel.
const Size = 4

// ErrPaletteSize is returned when building a palette from anything other than
// exactly Size colours.
var ErrPaletteSize = errors.New("palette: a palette must have exactly 4 colours")

// Palette is an ordered set of colours. A pixel's 2-bit index is the position
// of its colour in the palette.
type Palette [Size]gbcolor.Color

// New builds a Palette from exactly Size colours.
func New(colors ...gbcolor.Color) (Palette, error) {
	var p Palette
	if len(colors) != Size {
		return p, ErrPaletteSize
	}
	copy(p[:], colors)
	return p, nil
}

// Default returns the grey ramp a new palette starts with.
func Default() Palette {
	var p Palette
	step := 255.0 / Size
	for i := range p {
		v := uint8(step * float64(i))
		p[i] = gbcolor.Opaque(v, v, v)
	}
	return p
}

// Index returns the position of c in p, or -1. If a colour appears more than
// once the first position wins.
func (p Palette) Index(c gbcolor.Color) int {
	return p.IndexKey(gbcolor.Pack(c))
}

// IndexKey is like Index but takes a packed colour.
func (p Palette) IndexKey(k uint32) int {
	for i, c := range p {
		if gbcolor.Pack(c) == k {
			return i
		}
	}
	return -1
}

// Contains reports whether every colour in s is in p.
func (p Palette) Contains(s raster.ColorSet) bool {
	for _, k := range s {
		if p.IndexKey(k) < 0 {
			return false
		}
	}
	return true
}

// RGB555 returns the hardware palette words for p.
func (p Palette) RGB555() [Size]uint16 {
	var w [Size]uint16
	for i, c := range p {
		w[i] = gbcolor.ToRGB555(c)
	}
	return w
}

// Set is an ordered list of palettes. Order is significant; see Match.
type Set []Palette

// DefaultSet returns n default palettes.
func DefaultSet(n int) Set {
	s := make(Set, n)
	for i := range s {
		s[i] = Default()
	}
	return s
}

// NewSet builds a Set from a flat list of colours, Size at a time.
func NewSet(colors ...gbcolor.Color) (Set, error) {
	if len(colors)%Size != 0 {
		return nil, ErrPaletteSize
	}
	s := make(Set, len(colors)/Size)
	for i := range s {
		copy(s[i][:], colors[i*Size:])
	}
	return s, nil
}

/*
Package tile implements a Game Boy 2bpp tile encoder and decoder.

Each pixel of a tile is a 2-bit index into one of the four colour palettes.
Every row of eight pixels is stored as two bytes; the first byte holds bit 0 of
each pixel's index and the second byte holds bit 1, with the leftmost pixel in
the most significant bit. A standard 8 by 8 tile is therefore 16 bytes. Rows
wider than eight pixels are split into eight pixel segments, each stored as
its own byte pair, left to right; a short final segment is padded on the right
with index 0.

Identical tiles are stored once. Alongside the tile data the encoder produces
a map with one byte per tile position referencing the stored tile, an
attribute table with one byte per tile position holding the palette number,
and the palettes themselves as 15-bit RGB555 words.
*/
package tile

import (
	"encoding/binary"

	"github.com/bodgit/gbtiles/palette"
)

const (
	// DefaultWidth is the width of a hardware tile.
	DefaultWidth = 8
	// DefaultHeight is the height of a hardware tile.
	DefaultHeight = DefaultWidth

	pixelsPerSegment = 8
	bytesPerSegment  = 2
	maxIndex         = 0xff
)

// SegmentsPerRow returns the number of byte pairs needed for a row of width
// pixels.
func SegmentsPerRow(width int) int {
	return (width + pixelsPerSegment - 1) / pixelsPerSegment
}

// BytesPerTile returns the size of an encoded width by height tile.
func BytesPerTile(width, height int) int {
	return SegmentsPerRow(width) * bytesPerSegment * height
}

// Options alter how tile and palette numbers are written.
type Options struct {
	// TileOffset is added to every map entry, for tile data that will not be
	// loaded at the start of the tile bank.
	TileOffset int
	// PaletteOffset is added to every attribute entry.
	PaletteOffset int
}

// Bundle is the result of encoding a picture. It must not be modified once
// returned by Encode.
type Bundle struct {
	TilesX, TilesY        int
	TileWidth, TileHeight int

	TileOffset, PaletteOffset int

	// Palettes holds the RGB555 words of every palette in the Set.
	Palettes [][palette.Size]uint16
	// Tiles is the deduplicated tile data.
	Tiles []byte
	// Map holds one tile number per grid position, TileOffset applied.
	Map []byte
	// Attributes holds one palette number per grid position,
	// PaletteOffset applied.
	Attributes []byte
}

// BytesPerTile returns the size of a single encoded tile.
func (b *Bundle) BytesPerTile() int {
	return BytesPerTile(b.TileWidth, b.TileHeight)
}

// TileCount returns the number of unique tiles.
func (b *Bundle) TileCount() int {
	if n := b.BytesPerTile(); n > 0 {
		return len(b.Tiles) / n
	}
	return 0
}

// Tile returns the encoded bytes of unique tile i.
func (b *Bundle) Tile(i int) []byte {
	n := b.BytesPerTile()
	return b.Tiles[i*n : (i+1)*n]
}

// PaletteBytes returns the palette words in little-endian byte order, as they
// are written to palette memory.
func (b *Bundle) PaletteBytes() []byte {
	out := make([]byte, 0, len(b.Palettes)*palette.Size*2)
	for _, p := range b.Palettes {
		for _, w := range p {
			out = binary.LittleEndian.AppendUint16(out, w)
		}
	}
	return out
}

/*
Package raster slices a picture into a grid of fixed-size tiles.

Tiles are numbered row-major across the grid so tile n covers the rectangle
starting at ((n % TilesX) * TileWidth, (n / TilesX) * TileHeight). Each tile
exposes its pixels in row-major order and the set of distinct colours it uses.
*/
package raster

import (
	"errors"
	"image"
	"sort"

	"github.com/bodgit/gbtiles/gbcolor"
)

// ErrUnaligned is returned when a picture isn't a whole number of tiles.
var ErrUnaligned = errors.New("raster: image is not a whole number of tiles")

var (
	errTileSize     = errors.New("raster: tile dimensions must be positive")
	errPixelCount   = errors.New("raster: tile has wrong number of pixels")
	errTileCount    = errors.New("raster: wrong number of tiles for grid")
	errGridSize     = errors.New("raster: grid dimensions must not be negative")
	errTileOutOfRng = errors.New("raster: tile id out of range")
)

// Grid describes the tile layout of a picture.
type Grid struct {
	TilesX, TilesY        int
	TileWidth, TileHeight int
}

// Len returns the number of tiles in the grid.
func (g Grid) Len() int {
	return g.TilesX * g.TilesY
}

// Width returns the width of the grid in pixels.
func (g Grid) Width() int {
	return g.TilesX * g.TileWidth
}

// Height returns the height of the grid in pixels.
func (g Grid) Height() int {
	return g.TilesY * g.TileHeight
}

// TileRect returns the pixel rectangle covered by tile id, relative to the
// top-left corner of the grid.
func (g Grid) TileRect(id int) image.Rectangle {
	x, y := id%g.TilesX*g.TileWidth, id/g.TilesX*g.TileHeight
	return image.Rect(x, y, x+g.TileWidth, y+g.TileHeight)
}

// ColorSet is a sorted set of packed colours.
type ColorSet []uint32

// NewColorSet returns the distinct packed colours of pixels.
func NewColorSet(pixels []gbcolor.Color) ColorSet {
	seen := make(map[uint32]struct{}, 4)
	s := make(ColorSet, 0, 4)
	for _, c := range pixels {
		k := gbcolor.Pack(c)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		s = append(s, k)
	}
	sort.Slice(s, func(i, j int) bool { return s[i] < s[j] })
	return s
}

// Contains reports whether k is a member of s.
func (s ColorSet) Contains(k uint32) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= k })
	return i < len(s) && s[i] == k
}

// Colors unpacks every member of s.
func (s ColorSet) Colors() []gbcolor.Color {
	c := make([]gbcolor.Color, len(s))
	for i, k := range s {
		c[i] = gbcolor.Unpack(k)
	}
	return c
}

// Source is anything that can present a tile grid to the encoder.
type Source interface {
	// Grid returns the tile layout.
	Grid() Grid
	// Pixels returns the colours of tile id in row-major order.
	Pixels(id int) []gbcolor.Color
	// Colors returns the distinct colours used by tile id.
	Colors(id int) ColorSet
}

// Tiles is an immutable snapshot of a tile grid.
type Tiles struct {
	grid   Grid
	pixels [][]gbcolor.Color
	colors []ColorSet
}

// NewTiles builds a snapshot from tile pixel data already split into tiles.
func NewTiles(g Grid, pixels [][]gbcolor.Color) (*Tiles, error) {
	if g.TileWidth <= 0 || g.TileHeight <= 0 {
		return nil, errTileSize
	}
	if g.TilesX < 0 || g.TilesY < 0 {
		return nil, errGridSize
	}
	if len(pixels) != g.Len() {
		return nil, errTileCount
	}

	t := &Tiles{
		grid:   g,
		pixels: make([][]gbcolor.Color, len(pixels)),
		colors: make([]ColorSet, len(pixels)),
	}
	for i, p := range pixels {
		if len(p) != g.TileWidth*g.TileHeight {
			return nil, errPixelCount
		}
		t.pixels[i] = append([]gbcolor.Color(nil), p...)
		t.colors[i] = NewColorSet(p)
	}

	return t, nil
}

// New snapshots m as a grid of tileWidth by tileHeight tiles. The image
// dimensions must be exact multiples of the tile dimensions.
func New(m image.Image, tileWidth, tileHeight int) (*Tiles, error) {
	if tileWidth <= 0 || tileHeight <= 0 {
		return nil, errTileSize
	}

	b := m.Bounds()
	if b.Dx()%tileWidth != 0 || b.Dy()%tileHeight != 0 {
		return nil, ErrUnaligned
	}

	g := Grid{
		TilesX:     b.Dx() / tileWidth,
		TilesY:     b.Dy() / tileHeight,
		TileWidth:  tileWidth,
		TileHeight: tileHeight,
	}

	pixels := make([][]gbcolor.Color, g.Len())
	for id := range pixels {
		r := g.TileRect(id).Add(b.Min)
		p := make([]gbcolor.Color, 0, tileWidth*tileHeight)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				p = append(p, gbcolor.FromColor(m.At(x, y)))
			}
		}
		pixels[id] = p
	}

	return NewTiles(g, pixels)
}

// Grid implements Source.
func (t *Tiles) Grid() Grid {
	return t.grid
}

// Pixels implements Source. The returned slice must not be modified.
func (t *Tiles) Pixels(id int) []gbcolor.Color {
	if id < 0 || id >= len(t.pixels) {
		panic(errTileOutOfRng)
	}
	return t.pixels[id]
}

// Colors implements Source.
func (t *Tiles) Colors(id int) ColorSet {
	if id < 0 || id >= len(t.colors) {
		panic(errTileOutOfRng)
	}
	return t.colors[id]
}

// Palette returns every distinct colour used across the whole grid, ordered
// by first appearance scanning tiles in order.
func (t *Tiles) Palette() []gbcolor.Color {
	seen := make(map[uint32]struct{})
	var out []gbcolor.Color
	for _, p := range t.pixels {
		for _, c := range p {
			k := gbcolor.Pack(c)
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				out = append(out, c)
			}
		}
	}
	return out
}

package tile

import (
	"errors"
	"fmt"

	"github.com/bodgit/gbtiles/palette"
	"github.com/bodgit/gbtiles/raster"
)

var (
	// ErrEmptyPaletteSet is returned when encoding without any palettes.
	ErrEmptyPaletteSet = errors.New("tile: no palettes")
	// ErrEmptyGrid is returned when the picture has no tiles.
	ErrEmptyGrid = errors.New("tile: no tiles")
	// ErrInvalidTiles is returned when any tile fails palette validation.
	ErrInvalidTiles = errors.New("tile: invalid tiles")
	// ErrColorNotInPalette means a validated tile used a colour its palette
	// doesn't have. It should never happen.
	ErrColorNotInPalette = errors.New("tile: colour not in assigned palette")
	// ErrOffset is returned when an offset pushes a map or attribute entry
	// outside of a byte.
	ErrOffset = errors.New("tile: offset out of range")

	errPixelCount = errors.New("tile: tile has wrong number of pixels")
)

// InvalidTilesError lists the tiles that failed validation.
type InvalidTilesError struct {
	Tiles []palette.TileValidation
}

func (e *InvalidTilesError) Error() string {
	return fmt.Sprintf("tile: %d invalid tiles, check tile validation", len(e.Tiles))
}

// Unwrap allows errors.Is(err, ErrInvalidTiles).
func (e *InvalidTilesError) Unwrap() error {
	return ErrInvalidTiles
}

// EncodeRow packs a row of 2-bit palette indices into byte pairs, low plane
// first, one pair per eight pixels.
func EncodeRow(indices []uint8) []byte {
	out := make([]byte, 0, SegmentsPerRow(len(indices))*bytesPerSegment)
	for s := 0; s < len(indices); s += pixelsPerSegment {
		var lbits, hbits byte
		for x := s; x < s+pixelsPerSegment; x++ {
			lbits <<= 1
			hbits <<= 1
			if x < len(indices) {
				lbits |= indices[x] & 0x01
				hbits |= indices[x] >> 1 & 0x01
			}
		}
		out = append(out, lbits, hbits)
	}
	return out
}

type encoder struct {
	src  raster.Source
	set  palette.Set
	opts Options
}

func (e *encoder) encodeTile(id int, p palette.Palette) ([]byte, error) {
	g := e.src.Grid()

	pixels := e.src.Pixels(id)
	if len(pixels) != g.TileWidth*g.TileHeight {
		return nil, fmt.Errorf("%w: tile %d", errPixelCount, id)
	}

	out := make([]byte, 0, BytesPerTile(g.TileWidth, g.TileHeight))
	row := make([]uint8, g.TileWidth)
	for y := 0; y < g.TileHeight; y++ {
		for x := range row {
			c := pixels[y*g.TileWidth+x]
			i := p.Index(c)
			if i < 0 {
				return nil, fmt.Errorf("%w: tile %d pixel (%d,%d) %s", ErrColorNotInPalette, id, x, y, c)
			}
			row[x] = uint8(i)
		}
		out = append(out, EncodeRow(row)...)
	}

	return out, nil
}

func (e *encoder) encode() (*Bundle, error) {
	g := e.src.Grid()

	switch {
	case len(e.set) == 0:
		return nil, ErrEmptyPaletteSet
	case g.TilesX <= 0 || g.TilesY <= 0 || g.TileWidth <= 0 || g.TileHeight <= 0:
		return nil, ErrEmptyGrid
	case e.opts.TileOffset < 0 || e.opts.PaletteOffset < 0:
		return nil, ErrOffset
	case len(e.set)-1+e.opts.PaletteOffset > maxIndex:
		return nil, fmt.Errorf("%w: %d palettes from palette %d", ErrOffset, len(e.set), e.opts.PaletteOffset)
	}

	v := palette.Validate(e.src, e.set)
	if !v.Valid() {
		return nil, &InvalidTilesError{Tiles: v.Invalid}
	}

	b := &Bundle{
		TilesX:        g.TilesX,
		TilesY:        g.TilesY,
		TileWidth:     g.TileWidth,
		TileHeight:    g.TileHeight,
		TileOffset:    e.opts.TileOffset,
		PaletteOffset: e.opts.PaletteOffset,
		Palettes:      make([][palette.Size]uint16, len(e.set)),
		Map:           make([]byte, g.Len()),
		Attributes:    make([]byte, g.Len()),
	}

	for i, p := range e.set {
		b.Palettes[i] = p.RGB555()
	}

	// Tile data to the slot it was first seen in
	seen := make(map[string]int)

	for id := 0; id < g.Len(); id++ {
		pal := v.Tiles[id].Palette

		data, err := e.encodeTile(id, e.set[pal])
		if err != nil {
			return nil, err
		}

		slot, ok := seen[string(data)]
		if !ok {
			slot = len(seen)
			seen[string(data)] = slot
			b.Tiles = append(b.Tiles, data...)
		}

		if slot+e.opts.TileOffset > maxIndex {
			return nil, fmt.Errorf("%w: tile %d from tile %d", ErrOffset, slot, e.opts.TileOffset)
		}

		b.Map[id] = byte(slot + e.opts.TileOffset)
		b.Attributes[id] = byte(pal + e.opts.PaletteOffset)
	}

	return b, nil
}

// Encode converts every tile of src into 2bpp tile data using the palettes
// in set. Every tile must validate against set; if any doesn't, an
// *InvalidTilesError is returned and nothing is encoded.
func Encode(src raster.Source, set palette.Set, opts Options) (*Bundle, error) {
	e := encoder{
		src:  src,
		set:  set,
		opts: opts,
	}

	return e.encode()
}

package tile

import (
	"errors"
	"image"
	"image/color"

	"github.com/bodgit/gbtiles/gbcolor"
	"github.com/bodgit/gbtiles/palette"
)

var (
	errNotEnough       = errors.New("tile: not enough tile data")
	errBadTile         = errors.New("tile: invalid tile index")
	errBadPalette      = errors.New("tile: invalid palette index")
	errTooManyPalettes = errors.New("tile: too many palettes to decode")
	errBadMap          = errors.New("tile: map does not match grid")
)

// DecodeRow is the inverse of EncodeRow, returning width 2-bit indices.
func DecodeRow(b []byte, width int) []uint8 {
	out := make([]uint8, width)
	for x := range out {
		s := x / pixelsPerSegment * bytesPerSegment
		shift := pixelsPerSegment - 1 - uint(x%pixelsPerSegment)
		out[x] = b[s]>>shift&0x01 | (b[s+1]>>shift&0x01)<<1
	}
	return out
}

type decoder struct {
	b *Bundle

	image   *image.Paletted
	palette color.Palette
}

func (d *decoder) readPalette() error {
	if len(d.b.Palettes)*palette.Size > 256 {
		return errTooManyPalettes
	}

	d.palette = make(color.Palette, 0, len(d.b.Palettes)*palette.Size)
	for _, p := range d.b.Palettes {
		for _, w := range p {
			d.palette = append(d.palette, gbcolor.FromRGB555(w))
		}
	}
	return nil
}

func (d *decoder) decode() error {
	b := d.b

	if b.TilesX < 0 || b.TilesY < 0 || b.TileWidth <= 0 || b.TileHeight <= 0 || len(b.Map) != b.TilesX*b.TilesY || len(b.Attributes) != len(b.Map) {
		return errBadMap
	}
	if len(b.Tiles)%b.BytesPerTile() != 0 {
		return errNotEnough
	}

	if err := d.readPalette(); err != nil {
		return err
	}

	d.image = image.NewPaletted(image.Rect(0, 0, b.TilesX*b.TileWidth, b.TilesY*b.TileHeight), d.palette)

	rowBytes := SegmentsPerRow(b.TileWidth) * bytesPerSegment

	for ty := 0; ty < b.TilesY; ty++ {
		for tx := 0; tx < b.TilesX; tx++ {
			i := ty*b.TilesX + tx

			t := int(b.Map[i]) - b.TileOffset
			if t < 0 || t >= b.TileCount() {
				return errBadTile
			}

			p := int(b.Attributes[i]) - b.PaletteOffset
			if p < 0 || p >= len(b.Palettes) {
				return errBadPalette
			}

			data := b.Tile(t)
			for y := 0; y < b.TileHeight; y++ {
				for x, c := range DecodeRow(data[y*rowBytes:], b.TileWidth) {
					dx := tx*b.TileWidth + x
					dy := ty*b.TileHeight + y

					d.image.SetColorIndex(dx, dy, uint8(p*palette.Size)+c)
				}
			}
		}
	}

	return nil
}

// Decode renders a Bundle back into an image using its own palettes.
func Decode(b *Bundle) (*image.Paletted, error) {
	d := decoder{b: b}
	if err := d.decode(); err != nil {
		return nil, err
	}
	return d.image, nil
}

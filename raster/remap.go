package raster

import (
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"

	"github.com/KononK/resize"
	"github.com/bodgit/gbtiles/gbcolor"
	"github.com/esimov/colorquant"
)

// Remap returns a copy of m where every pixel inside area whose packed colour
// is a key of conv is replaced by the mapped colour. An empty area remaps the
// whole image. m is left untouched.
func Remap(m image.Image, conv map[uint32]gbcolor.Color, area image.Rectangle) *image.NRGBA {
	b := m.Bounds()
	out := image.NewNRGBA(b)
	draw.Draw(out, b, m, b.Min, draw.Src)

	if area.Empty() {
		area = b
	} else {
		area = area.Add(b.Min).Intersect(b)
	}

	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if c, ok := conv[gbcolor.Pack(gbcolor.FromColor(out.At(x, y)))]; ok {
				out.SetNRGBA(x, y, color.NRGBA{
					R: c.R,
					G: c.G,
					B: c.B,
					A: uint8(gbcolor.Pack(c) >> 24),
				})
			}
		}
	}

	return out
}

// Fit scales m to width by height pixels using nearest neighbour sampling,
// which keeps hard pixel edges intact. If colors is positive the result is
// also reduced to at most that many colours.
func Fit(m image.Image, width, height, colors int) image.Image {
	src := m
	if b := m.Bounds(); b.Dx() != width || b.Dy() != height {
		src = resize.Resize(uint(width), uint(height), m, resize.NearestNeighbor)
	}

	if colors <= 0 {
		return src
	}

	dst := image.NewPaletted(src.Bounds(), palette.WebSafe)

	return colorquant.NoDither.Quantize(src, dst, colors, false, true)
}

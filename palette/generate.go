package palette

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sort"
	"strconv"
	"strings"

	"github.com/bodgit/gbtiles/gbcolor"
	"github.com/ericpauley/go-quantize/quantize"
)

// MaxPalettes is the number of background palettes the hardware holds.
const MaxPalettes = 8

// Give up on a packing attempt after this many steps and quantize harder.
const packBudget = 1 << 16

var (
	errBadSize = errors.New("palette: image is not a whole number of tiles")
	errNoFit   = errors.New("palette: unable to fit image into palettes")
)

type paletteMap struct {
	palette color.Palette
	tiles   []int
}

type byPaletteSize []paletteMap

func (p byPaletteSize) Len() int {
	return len(p)
}

func (p byPaletteSize) Swap(i, j int) {
	p[i], p[j] = p[j], p[i]
}

func (p byPaletteSize) Less(i, j int) bool {
	return len(p[i].palette) < len(p[j].palette)
}

func countColors(m *image.Paletted, r image.Rectangle) map[color.Color]int {
	colors := make(map[color.Color]int)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			colors[m.At(x, y)]++
		}
	}
	return colors
}

func key(c color.Color) uint32 {
	return gbcolor.Pack(gbcolor.FromColor(c))
}

// Unique colours, most frequent first so the common colour lands on index 0
func uniqueColors(m *image.Paletted, r image.Rectangle) color.Palette {
	h := countColors(m, r)
	p := make(color.Palette, 0, len(h))
	for c := range h {
		p = append(p, c)
	}
	sort.Slice(p, func(i, j int) bool {
		if h[p[i]] != h[p[j]] {
			return h[p[i]] > h[p[j]]
		}
		return key(p[i]) < key(p[j])
	})
	return p
}

// Copied from color.sqDiff
func sqDiff(x, y uint32) uint32 {
	d := x - y
	return (d * d) >> 2
}

// Return the two closest colors in a given palette
func closestColors(p color.Palette) (color.Color, color.Color) {
	var rc1, rc2 color.Color
	bestSum := uint32(1<<32 - 1)
	for i, c1 := range p {
		r1, g1, b1, a1 := c1.RGBA()
		for j, c2 := range p {
			r2, g2, b2, a2 := c2.RGBA()
			if i != j {
				sum := sqDiff(r1, r2) + sqDiff(g1, g2) + sqDiff(b1, b2) + sqDiff(a1, a2)
				if sum < bestSum {
					bestSum, rc1, rc2 = sum, c1, c2
				}
			}
		}
	}
	return rc1, rc2
}

// Replace all occurrences of one color in an image with another
func replaceColor(m *image.Paletted, o, n color.Color) {
	i := uint8(m.Palette.Index(n))
	for y := m.Rect.Min.Y; y < m.Rect.Max.Y; y++ {
		for x := m.Rect.Min.X; x < m.Rect.Max.X; x++ {
			if m.At(x, y) == o {
				m.SetColorIndex(x, y, i)
			}
		}
	}
}

// Colors in p2 but not in p1
func paletteDifference(p1, p2 color.Palette) (d color.Palette) {
	m := make(map[color.Color]struct{})
	for _, c := range p1 {
		m[c] = struct{}{}
	}
	for _, c := range p2 {
		if _, ok := m[c]; !ok {
			d = append(d, c)
		}
	}
	return
}

// packer solves a variation of the bin-packing problem; max bins each with
// capacity of Size colours. Based on First Fit Decreasing, it relies on the
// incoming palettes being sorted in decreasing size.
type packer struct {
	max   int
	steps int
}

func (pk *packer) pack(in, out []paletteMap) ([]paletteMap, bool) {
	pk.steps++
	switch {
	case len(out) > pk.max || pk.steps > packBudget:
		return nil, false
	case len(in) == 0:
		return out, true
	case len(out) == 0:
		return pk.pack(in[1:], append(out, in[0]))
	default:
		for i := range out {
			d := paletteDifference(out[i].palette, in[0].palette)

			// Either the candidate palette is a subset or the
			// difference can fit in the current palette
			if len(d) == 0 || len(d)+len(out[i].palette) <= Size {
				dup := make([]paletteMap, len(out))
				copy(dup, out)
				dup[i] = paletteMap{
					palette: append(append(color.Palette{}, out[i].palette...), d...),
					tiles:   append(append([]int{}, out[i].tiles...), in[0].tiles...),
				}
				if ret, ok := pk.pack(in[1:], dup); ok {
					return ret, true
				}
			}
		}
		// Last resort, start a new bin (palette)
		return pk.pack(in[1:], append(out[:len(out):len(out)], in[0]))
	}
}

func padPalette(p color.Palette) color.Palette {
	for len(p) < Size {
		p = append(p, color.NRGBA{0, 0, 0, 0xff})
	}
	return p
}

func tileRects(b image.Rectangle, tileWidth, tileHeight int) []image.Rectangle {
	var rects []image.Rectangle
	for y := b.Min.Y; y < b.Max.Y; y += tileHeight {
		for x := b.Min.X; x < b.Max.X; x += tileWidth {
			rects = append(rects, image.Rect(x, y, x+tileWidth, y+tileHeight))
		}
	}
	return rects
}

func signature(p color.Palette) string {
	keys := make([]string, len(p))
	for i, c := range p {
		keys[i] = strconv.FormatUint(uint64(key(c)), 16)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

func reducePalette(m *image.Paletted, tileWidth, tileHeight, max int) (Set, *image.Paletted, bool) {
	b := m.Bounds()

	// Create a copy of the image
	dup := image.NewPaletted(b, m.Palette)
	draw.Draw(dup, b, m, b.Min, draw.Src)

	// Map of colors to frequency of occurrence
	global := countColors(dup, b)

	rects := tileRects(b, tileWidth, tileHeight)

	// Loop over every tile and reduce the number of colors per tile to no
	// more than Size
	for _, r := range rects {
		p := uniqueColors(dup, r)
		for len(p) > Size {

			// Find the two closest colors
			c1, c2 := closestColors(p)

			// Keep whichever color appears more frequently
			// in the image and replace any occurrence of
			// the other color
			var c color.Color
			if global[c1] > global[c2] {
				replaceColor(dup, c2, c1)
				global[c1] += global[c2]
				c = c2
			} else {
				replaceColor(dup, c1, c2)
				global[c2] += global[c1]
				c = c1
			}

			// Forget the less frequent color
			i := p.Index(c)
			p = append(p[:i], p[i+1:]...)
			delete(global, c)
		}
	}

	// Gather the colors used by each tile, merging tiles that use the
	// same colors
	var palettes []paletteMap
	seen := make(map[string]int)
	for i, r := range rects {
		p := uniqueColors(dup, r)
		sig := signature(p)
		if j, ok := seen[sig]; ok {
			palettes[j].tiles = append(palettes[j].tiles, i)
			continue
		}
		seen[sig] = len(palettes)
		palettes = append(palettes, paletteMap{
			palette: p,
			tiles:   []int{i},
		})
	}

	// Sort with biggest palettes first
	sort.Stable(sort.Reverse(byPaletteSize(palettes)))

	pk := packer{max: max}
	packed, ok := pk.pack(palettes, []paletteMap{})
	if !ok {
		return nil, nil, false
	}

	set := make(Set, len(packed))
	for i, p := range packed {
		for j, c := range padPalette(p.palette) {
			set[i][j] = gbcolor.FromColor(c)
		}
	}

	return set, dup, true
}

func exactPalette(m image.Image) color.Palette {
	b := m.Bounds()
	seen := make(map[uint32]struct{})
	var p color.Palette
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(m.At(x, y))
			k := key(c)
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				p = append(p, c)
			}
		}
	}
	return p
}

// Generate works out a palette Set of no more than maxPalettes palettes that
// can draw every tileWidth by tileHeight tile of m. Tiles using more than
// Size colours have their closest colours merged and, if the tiles still
// cannot be packed, the image is quantized to progressively fewer colours.
// The returned image is m redrawn with the colours actually covered by the
// Set; it always validates against it.
func Generate(m image.Image, tileWidth, tileHeight, maxPalettes int) (Set, image.Image, error) {
	b := m.Bounds()
	if tileWidth <= 0 || tileHeight <= 0 || b.Dx()%tileWidth != 0 || b.Dy()%tileHeight != 0 {
		return nil, nil, errBadSize
	}
	if maxPalettes <= 0 {
		maxPalettes = MaxPalettes
	}

	// Adjust image so that top-left corner is at (0, 0)
	r := b.Sub(b.Min)

	max := Size * maxPalettes

	if p := exactPalette(m); len(p) <= 256 {
		pm := image.NewPaletted(r, p)
		draw.Draw(pm, r, m, b.Min, draw.Src)
		if set, out, ok := reducePalette(pm, tileWidth, tileHeight, maxPalettes); ok {
			return set, out, nil
		}
		if len(p) < max {
			max = len(p)
		}
	}

	q := quantize.MedianCutQuantizer{}

	// Keep reducing the colors until the palette can be packed
	for i := max; i >= Size; i-- {
		pm := image.NewPaletted(r, q.Quantize(make(color.Palette, 0, i), m))
		draw.Draw(pm, r, m, b.Min, draw.Src)

		if set, out, ok := reducePalette(pm, tileWidth, tileHeight, maxPalettes); ok {
			return set, out, nil
		}
	}

	return nil, nil, errNoFit
}

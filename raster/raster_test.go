package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/bodgit/gbtiles/gbcolor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	black = color.NRGBA{0, 0, 0, 255}
	white = color.NRGBA{255, 255, 255, 255}
	red   = color.NRGBA{255, 0, 0, 255}
)

func fill(m *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m.SetNRGBA(x, y, c)
		}
	}
}

func TestNew(t *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 16, 8))
	fill(m, m.Bounds(), black)
	fill(m, image.Rect(8, 0, 16, 8), white)
	m.SetNRGBA(9, 1, red)

	tiles, err := New(m, 8, 8)
	require.NoError(t, err)

	g := tiles.Grid()
	assert.Equal(t, Grid{TilesX: 2, TilesY: 1, TileWidth: 8, TileHeight: 8}, g)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 16, g.Width())
	assert.Equal(t, 8, g.Height())

	assert.Len(t, tiles.Pixels(0), 64)
	assert.Equal(t, ColorSet{0xff000000}, tiles.Colors(0))
	assert.Equal(t, ColorSet{0xffff0000, 0xffffffff}, tiles.Colors(1))

	// Row-major within the tile
	assert.Equal(t, gbcolor.Opaque(255, 0, 0), tiles.Pixels(1)[1*8+1])
	assert.Equal(t, gbcolor.Opaque(255, 255, 255), tiles.Pixels(1)[0])

	assert.Equal(t, []gbcolor.Color{
		gbcolor.Opaque(0, 0, 0),
		gbcolor.Opaque(255, 255, 255),
		gbcolor.Opaque(255, 0, 0),
	}, tiles.Palette())
}

func TestNewOffsetBounds(t *testing.T) {
	m := image.NewNRGBA(image.Rect(4, 4, 12, 20))
	fill(m, m.Bounds(), black)
	fill(m, image.Rect(4, 12, 12, 20), white)

	tiles, err := New(m, 8, 8)
	require.NoError(t, err)
	assert.Equal(t, 1, tiles.Grid().TilesX)
	assert.Equal(t, 2, tiles.Grid().TilesY)
	assert.Equal(t, ColorSet{0xffffffff}, tiles.Colors(1))
}

func TestNewErrors(t *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 12, 8))

	_, err := New(m, 8, 8)
	assert.Equal(t, ErrUnaligned, err)

	_, err = New(m, 0, 8)
	assert.Equal(t, errTileSize, err)
}

func TestNewTiles(t *testing.T) {
	g := Grid{TilesX: 1, TilesY: 1, TileWidth: 2, TileHeight: 1}
	a, b := gbcolor.Opaque(1, 1, 1), gbcolor.Opaque(2, 2, 2)

	tiles, err := NewTiles(g, [][]gbcolor.Color{{b, a}})
	require.NoError(t, err)
	assert.Equal(t, ColorSet{a.Key(), b.Key()}, tiles.Colors(0))

	_, err = NewTiles(g, [][]gbcolor.Color{{a}})
	assert.Equal(t, errPixelCount, err)

	_, err = NewTiles(g, nil)
	assert.Equal(t, errTileCount, err)

	_, err = NewTiles(Grid{TilesX: -1, TilesY: -1, TileWidth: 2, TileHeight: 1}, [][]gbcolor.Color{{a, b}})
	assert.Equal(t, errGridSize, err)
}

func TestTileRect(t *testing.T) {
	g := Grid{TilesX: 5, TilesY: 5, TileWidth: 8, TileHeight: 8}
	assert.Equal(t, image.Rect(0, 0, 8, 8), g.TileRect(0))
	assert.Equal(t, image.Rect(32, 0, 40, 8), g.TileRect(4))
	assert.Equal(t, image.Rect(0, 8, 8, 16), g.TileRect(5))
	assert.Equal(t, image.Rect(32, 32, 40, 40), g.TileRect(24))
}

func TestColorSet(t *testing.T) {
	s := NewColorSet([]gbcolor.Color{
		gbcolor.Opaque(3, 0, 0),
		gbcolor.Opaque(1, 0, 0),
		gbcolor.Opaque(3, 0, 0),
		{R: 3},
	})
	assert.Len(t, s, 3)
	assert.True(t, s.Contains(gbcolor.Opaque(1, 0, 0).Key()))
	assert.True(t, s.Contains(gbcolor.Color{R: 3}.Key()))
	assert.False(t, s.Contains(gbcolor.Opaque(2, 0, 0).Key()))
	assert.Equal(t, []gbcolor.Color{{R: 3}, gbcolor.Opaque(1, 0, 0), gbcolor.Opaque(3, 0, 0)}, s.Colors())
}

func TestRemap(t *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 16, 8))
	fill(m, m.Bounds(), red)

	conv := map[uint32]gbcolor.Color{
		gbcolor.Opaque(255, 0, 0).Key(): gbcolor.Opaque(255, 255, 255),
	}

	// Single tile
	out := Remap(m, conv, image.Rect(8, 0, 16, 8))
	assert.Equal(t, red, out.NRGBAAt(0, 0))
	assert.Equal(t, white, out.NRGBAAt(8, 0))
	assert.Equal(t, red, m.NRGBAAt(8, 0))

	// Whole image
	out = Remap(m, conv, image.Rectangle{})
	assert.Equal(t, white, out.NRGBAAt(0, 0))
	assert.Equal(t, white, out.NRGBAAt(15, 7))
}

func TestFit(t *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	fill(m, m.Bounds(), red)

	out := Fit(m, 8, 8, 0)
	assert.Equal(t, image.Rect(0, 0, 8, 8), out.Bounds())

	same := Fit(m, 4, 4, 0)
	assert.Equal(t, m, same)
}

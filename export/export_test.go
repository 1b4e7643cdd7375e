package export

import (
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/bodgit/gbtiles/palette"
	"github.com/bodgit/gbtiles/tile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBundle() *tile.Bundle {
	tiles := make([]byte, 32)
	for i := range tiles {
		tiles[i] = byte(i)
	}
	return &tile.Bundle{
		TilesX:     2,
		TilesY:     1,
		TileWidth:  8,
		TileHeight: 8,
		Palettes:   [][palette.Size]uint16{{0x7fff, 0x0000, 0x001f, 0x7c00}},
		Tiles:      tiles,
		Map:        []byte{0, 1},
		Attributes: []byte{0, 0},
	}
}

func files(fs []File) map[string]string {
	m := make(map[string]string, len(fs))
	for _, f := range fs {
		m[f.Name] = string(f.Data)
	}
	return m
}

func names(fs []File) []string {
	n := make([]string, len(fs))
	for i, f := range fs {
		n[i] = f.Name
	}
	return n
}

var literalRe = regexp.MustCompile(`(?:0x|\$)([0-9A-F]{2})`)

// section returns the byte values written on the lines following label.
func section(t *testing.T, text, label string) []byte {
	t.Helper()

	var (
		out   []byte
		found bool
	)
	for _, l := range strings.Split(text, "\n") {
		if !found {
			found = strings.HasPrefix(l, label)
			continue
		}
		s := strings.TrimSpace(l)
		if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "DB ") && !strings.HasPrefix(s, ".db ") {
			break
		}
		for _, m := range literalRe.FindAllStringSubmatch(s, -1) {
			v, err := strconv.ParseUint(m[1], 16, 8)
			require.NoError(t, err)
			out = append(out, byte(v))
		}
	}
	require.True(t, found, "label %q not found", label)
	return out
}

func TestLookup(t *testing.T) {
	assert.Equal(t, []string{"bin", "c", "gbdk", "rgbds"}, Formats())

	for _, f := range Formats() {
		e, err := Lookup(f)
		require.NoError(t, err)
		assert.NotNil(t, e)
	}

	_, err := Lookup("C")
	assert.NoError(t, err)

	_, err = Lookup("pascal")
	assert.ErrorIs(t, err, errUnknownFormat)
}

func TestFileNames(t *testing.T) {
	b := testBundle()

	tests := []struct {
		format string
		want   []string
	}{
		{"c", []string{"tiles.c", "tiles.h", "tilesMap.c", "tilesMap.h"}},
		{"rgbds", []string{"tiles.z80", "tiles.h", "tilesMap.z80", "tilesMap.h"}},
		{"gbdk", []string{"tiles.s", "tiles.h", "tilesMap.s", "tilesMap.h"}},
		{"bin", []string{"tiles.2bpp", "tiles.pal", "tiles.tilemap", "tiles.attrmap"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			e, err := Lookup(tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(e(b, "tiles", "tiles", DefaultFlags())))
		})
	}
}

func TestHeader(t *testing.T) {
	b := testBundle()
	b.TileOffset = 4

	c := files(C(b, "tiles", "tiles", DefaultFlags()))["tiles.c"]
	assert.True(t, strings.HasPrefix(c, "/*\n tiles.c\n\n Tile Source File.\n\n Info:\n"))
	assert.Contains(t, c, "\n  Tile size            : 8 x 8\n")
	assert.Contains(t, c, "\n  Tiles                : 2\n")
	assert.Contains(t, c, "\n  Map size             : 2 x 1\n")
	assert.Contains(t, c, "\n  CGB Palette          : 1 Byte per entry.\n*/\n")

	z80 := files(RGBDS(b, "tiles", "tiles", DefaultFlags()))["tiles.z80"]
	assert.True(t, strings.HasPrefix(z80, "; tiles.z80\n;\n; Tile Source File.\n"))
	assert.Contains(t, z80, "\n;  Tiles                : 2\n")
	assert.Contains(t, z80, "tilesTileOffset EQU $04\n")
}

func TestCOutput(t *testing.T) {
	fs := files(C(testBundle(), "tiles", "tiles", DefaultFlags()))

	assert.Contains(t, fs["tiles.c"], "/* CGB palette data. */\nconst unsigned char tilesPalettes[8] = {\n  0xFF,0x7F,0x00,0x00,0x1F,0x00,0x00,0x7C\n};\n")
	assert.Contains(t, fs["tiles.c"], "const unsigned char tiles[32] = {\n  0x00,0x01,0x02,0x03,0x04,0x05,0x06,0x07,0x08,0x09,0x0A,0x0B,0x0C,0x0D,0x0E,0x0F,\n  0x10,")
	assert.True(t, strings.HasSuffix(fs["tiles.c"], "0x1E,0x1F\n};\n"))

	h := fs["tiles.h"]
	assert.Contains(t, h, "#ifndef TILES_H\n#define TILES_H\n")
	assert.Contains(t, h, "#define tilesCGBPal0c0 0x7FFF\n#define tilesCGBPal0c1 0x0000\n#define tilesCGBPal0c2 0x001F\n#define tilesCGBPal0c3 0x7C00\n")
	assert.Contains(t, h, "extern const unsigned char tiles[];\n")
	assert.True(t, strings.HasSuffix(h, "#endif\n"))

	assert.Contains(t, fs["tilesMap.c"], "const unsigned char tilesMap[2] = {\n  0x00,0x01\n};\n")
	assert.Contains(t, fs["tilesMap.c"], "const unsigned char tilesPaletteEntries[2] = {\n  0x00,0x00\n};\n")
	assert.Contains(t, fs["tilesMap.h"], "#define tilesMapWidth 2\n#define tilesMapHeight 1\n")
}

func TestAsmOutput(t *testing.T) {
	fs := files(RGBDS(testBundle(), "tiles", "tiles", DefaultFlags()))
	assert.Contains(t, fs["tiles.z80"], "tiles::\n  DB $00,$01,")
	assert.Contains(t, fs["tiles.z80"], "  SECTION \"tiles\", ROMX\n")
	assert.Contains(t, fs["tilesMap.z80"], "tilesMap::\n  DB $00,$01\n")

	flags := DefaultFlags()
	flags.CodeArea = 3
	fs = files(GBDK(testBundle(), "tiles", "tiles", flags))
	assert.Contains(t, fs["tiles.s"], "\t.area _CODE_3\n")
	assert.Contains(t, fs["tiles.s"], "\t.globl _tiles\n")
	assert.Contains(t, fs["tiles.s"], "_tiles:\n\t.db 0x00,0x01,")
	assert.Contains(t, fs["tilesMap.s"], "_tilesPaletteEntries:\n\t.db 0x00,0x00\n")

	flags.CodeArea = 0
	fs = files(GBDK(testBundle(), "tiles", "tiles", flags))
	assert.Contains(t, fs["tiles.s"], "\t.area _CODE\n")
}

func TestSameBytesEveryFormat(t *testing.T) {
	b := testBundle()
	b.Map = []byte{0x80, 0x81}
	b.Attributes = []byte{2, 3}
	b.TileOffset = 0x80
	b.PaletteOffset = 2

	flags := DefaultFlags()
	flags.Wrap = 5
	flags.MapWrap = 1

	labels := []struct {
		format                         string
		data, tiles, pal, tmap, attrib string
		mapFile                        string
	}{
		{"c", "tiles.c", "const unsigned char tiles[", "const unsigned char tilesPalettes[", "const unsigned char tilesMap[", "const unsigned char tilesPaletteEntries[", "tilesMap.c"},
		{"rgbds", "tiles.z80", "tiles::", "tilesPalettes::", "tilesMap::", "tilesPaletteEntries::", "tilesMap.z80"},
		{"gbdk", "tiles.s", "_tiles:", "_tilesPalettes:", "_tilesMap:", "_tilesPaletteEntries:", "tilesMap.s"},
	}

	for _, l := range labels {
		t.Run(l.format, func(t *testing.T) {
			e, err := Lookup(l.format)
			require.NoError(t, err)
			fs := files(e(b, "tiles", "tiles", flags))

			assert.Equal(t, b.Tiles, section(t, fs[l.data], l.tiles))
			assert.Equal(t, b.PaletteBytes(), section(t, fs[l.data], l.pal))
			assert.Equal(t, b.Map, section(t, fs[l.mapFile], l.tmap))
			assert.Equal(t, b.Attributes, section(t, fs[l.mapFile], l.attrib))
		})
	}

	fs := files(Binary(b, "tiles", "tiles", flags))
	assert.Equal(t, string(b.Tiles), fs["tiles.2bpp"])
	assert.Equal(t, string(b.PaletteBytes()), fs["tiles.pal"])
	assert.Equal(t, string(b.Map), fs["tiles.tilemap"])
	assert.Equal(t, string(b.Attributes), fs["tiles.attrmap"])
}

func TestDeterministic(t *testing.T) {
	b := testBundle()
	for _, f := range Formats() {
		e, err := Lookup(f)
		require.NoError(t, err)

		first := e(b, "tiles", "tiles", DefaultFlags())
		for _, g := range Formats() {
			o, err := Lookup(g)
			require.NoError(t, err)
			o(b, "other", "other", Flags{})
		}
		assert.Equal(t, first, e(b, "tiles", "tiles", DefaultFlags()))
	}
}

func TestFlags(t *testing.T) {
	b := testBundle()

	flags := DefaultFlags()
	flags.IncludeMap = false
	flags.IncludePalette = false

	fs := C(b, "tiles", "tiles", flags)
	assert.Equal(t, []string{"tiles.c", "tiles.h"}, names(fs))
	assert.NotContains(t, string(fs[0].Data), "tilesPalettes")
	assert.NotContains(t, string(fs[1].Data), "CGBPal")

	assert.Equal(t, []string{"tiles.2bpp"}, names(Binary(b, "tiles", "tiles", flags)))

	flags.Wrap = 4
	text := string(C(b, "tiles", "tiles", flags)[0].Data)
	assert.Equal(t, 8, strings.Count(text, "\n  0x"))

	flags.Wrap = 0
	text = string(C(b, "tiles", "tiles", flags)[0].Data)
	assert.Equal(t, 1, strings.Count(text, "\n  0x"))
}

func TestBinaryCopies(t *testing.T) {
	b := testBundle()
	fs := Binary(b, "tiles", "", DefaultFlags())
	fs[0].Data[0] = 0xff
	assert.Equal(t, byte(0), b.Tiles[0])
}

func TestSymbolName(t *testing.T) {
	tests := []struct {
		file, want string
	}{
		{"tiles.png", "tiles"},
		{"/tmp/My Tiles.png", "My_Tiles"},
		{"café-bg.gif", "cafe_bg"},
		{"1up.png", "_1up"},
		{"level_2", "level_2"},
		{"", "_"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.Equal(t, tt.want, SymbolName(tt.file))
		})
	}
}

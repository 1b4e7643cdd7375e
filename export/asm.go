package export

import (
	"bytes"
	"fmt"

	"github.com/bodgit/gbtiles/tile"
)

var (
	rgbdsDialect = dialect{literal: "$%02X", prefix: "  DB "}
	gbdkDialect  = dialect{literal: "0x%02X", prefix: "\t.db "}
)

// RGBDS renders b as Z80 assembly for the RGBDS toolchain, with a matching C
// header.
func RGBDS(b *tile.Bundle, name, symbol string, flags Flags) []File {
	files := []File{
		{Name: name + ".z80", Data: rgbdsSource(b, name+".z80", symbol, flags)},
		{Name: name + ".h", Data: cHeader(b, name+".h", symbol, flags)},
	}
	if flags.IncludeMap {
		m := name + "Map"
		files = append(files,
			File{Name: m + ".z80", Data: rgbdsMapSource(b, m+".z80", symbol, flags)},
			File{Name: m + ".h", Data: cMapHeader(b, m+".h", symbol)},
		)
	}
	return files
}

func rgbdsSource(b *tile.Bundle, file, symbol string, flags Flags) []byte {
	var w bytes.Buffer
	writeHeader(&w, asmComment, file, b)

	fmt.Fprintf(&w, "\n%sTileWidth EQU $%02X\n", symbol, b.TileWidth)
	fmt.Fprintf(&w, "%sTileHeight EQU $%02X\n", symbol, b.TileHeight)
	fmt.Fprintf(&w, "%sTileCount EQU $%02X\n", symbol, b.TileCount())
	fmt.Fprintf(&w, "%sTileOffset EQU $%02X\n", symbol, b.TileOffset)
	fmt.Fprintf(&w, "%sSize EQU $%02X\n", symbol, len(b.Tiles))

	fmt.Fprintf(&w, "\n  SECTION \"%s\", ROMX\n", symbol)

	if flags.IncludePalette {
		fmt.Fprintf(&w, "\n; CGB palette data.\n%sPalettes::\n", symbol)
		rgbdsDialect.writeBytes(&w, b.PaletteBytes(), paletteWrap)
	}

	fmt.Fprintf(&w, "\n; Start of tile array.\n%s::\n", symbol)
	rgbdsDialect.writeBytes(&w, b.Tiles, flags.Wrap)

	return w.Bytes()
}

func rgbdsMapSource(b *tile.Bundle, file, symbol string, flags Flags) []byte {
	var w bytes.Buffer
	writeHeader(&w, asmComment, file, b)

	fmt.Fprintf(&w, "\n%sMapWidth EQU $%02X\n", symbol, b.TilesX)
	fmt.Fprintf(&w, "%sMapHeight EQU $%02X\n", symbol, b.TilesY)
	fmt.Fprintf(&w, "%sMapLength EQU $%02X\n", symbol, len(b.Map))

	fmt.Fprintf(&w, "\n  SECTION \"%sMap\", ROMX\n", symbol)

	fmt.Fprintf(&w, "\n; Map array.\n%sMap::\n", symbol)
	rgbdsDialect.writeBytes(&w, b.Map, flags.MapWrap)

	fmt.Fprintf(&w, "\n; CGBpalette entries.\n%sPaletteEntries::\n", symbol)
	rgbdsDialect.writeBytes(&w, b.Attributes, flags.MapWrap)

	return w.Bytes()
}

// GBDK renders b as SDCC assembler source for GBDK, with a matching C
// header. C symbols gain a leading underscore in assembly.
func GBDK(b *tile.Bundle, name, symbol string, flags Flags) []File {
	files := []File{
		{Name: name + ".s", Data: gbdkSource(b, name+".s", symbol, flags)},
		{Name: name + ".h", Data: cHeader(b, name+".h", symbol, flags)},
	}
	if flags.IncludeMap {
		m := name + "Map"
		files = append(files,
			File{Name: m + ".s", Data: gbdkMapSource(b, m+".s", symbol, flags)},
			File{Name: m + ".h", Data: cMapHeader(b, m+".h", symbol)},
		)
	}
	return files
}

func gbdkArea(w *bytes.Buffer, flags Flags) {
	if flags.CodeArea > 0 {
		fmt.Fprintf(w, "\n\t.area _CODE_%d\n", flags.CodeArea)
		return
	}
	w.WriteString("\n\t.area _CODE\n")
}

func gbdkSource(b *tile.Bundle, file, symbol string, flags Flags) []byte {
	var w bytes.Buffer
	writeHeader(&w, asmComment, file, b)
	gbdkArea(&w, flags)

	w.WriteByte('\n')
	if flags.IncludePalette {
		fmt.Fprintf(&w, "\t.globl _%sPalettes\n", symbol)
	}
	fmt.Fprintf(&w, "\t.globl _%s\n", symbol)

	fmt.Fprintf(&w, "\n_%sTileWidth = 0x%02X\n", symbol, b.TileWidth)
	fmt.Fprintf(&w, "_%sTileHeight = 0x%02X\n", symbol, b.TileHeight)
	fmt.Fprintf(&w, "_%sTileCount = 0x%02X\n", symbol, b.TileCount())
	fmt.Fprintf(&w, "_%sTileOffset = 0x%02X\n", symbol, b.TileOffset)

	if flags.IncludePalette {
		fmt.Fprintf(&w, "\n; CGB palette data.\n_%sPalettes:\n", symbol)
		gbdkDialect.writeBytes(&w, b.PaletteBytes(), paletteWrap)
	}

	fmt.Fprintf(&w, "\n; Start of tile array.\n_%s:\n", symbol)
	gbdkDialect.writeBytes(&w, b.Tiles, flags.Wrap)

	return w.Bytes()
}

func gbdkMapSource(b *tile.Bundle, file, symbol string, flags Flags) []byte {
	var w bytes.Buffer
	writeHeader(&w, asmComment, file, b)
	gbdkArea(&w, flags)

	fmt.Fprintf(&w, "\n\t.globl _%sMap\n", symbol)
	fmt.Fprintf(&w, "\t.globl _%sPaletteEntries\n", symbol)

	fmt.Fprintf(&w, "\n_%sMapLength = 0x%02X\n", symbol, len(b.Map))

	fmt.Fprintf(&w, "\n; Map array.\n_%sMap:\n", symbol)
	gbdkDialect.writeBytes(&w, b.Map, flags.MapWrap)

	fmt.Fprintf(&w, "\n; CGBpalette entries.\n_%sPaletteEntries:\n", symbol)
	gbdkDialect.writeBytes(&w, b.Attributes, flags.MapWrap)

	return w.Bytes()
}

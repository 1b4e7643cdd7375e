package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/bodgit/gbtiles/tile"
)

var cDialect = dialect{literal: "0x%02X", prefix: "  ", lineEnd: ","}

// C renders b as a C source file and header, plus a second pair holding the
// map and attributes when flags.IncludeMap is set.
func C(b *tile.Bundle, name, symbol string, flags Flags) []File {
	files := []File{
		{Name: name + ".c", Data: cSource(b, name+".c", symbol, flags)},
		{Name: name + ".h", Data: cHeader(b, name+".h", symbol, flags)},
	}
	if flags.IncludeMap {
		m := name + "Map"
		files = append(files,
			File{Name: m + ".c", Data: cMapSource(b, m+".c", symbol, flags)},
			File{Name: m + ".h", Data: cMapHeader(b, m+".h", symbol)},
		)
	}
	return files
}

func cArray(w *bytes.Buffer, comment, symbol string, data []byte, wrap int) {
	fmt.Fprintf(w, "\n/* %s */\nconst unsigned char %s[%d] = {\n", comment, symbol, len(data))
	cDialect.writeBytes(w, data, wrap)
	w.WriteString("};\n")
}

func cSource(b *tile.Bundle, file, symbol string, flags Flags) []byte {
	var w bytes.Buffer
	writeHeader(&w, cComment, file, b)
	if flags.IncludePalette {
		cArray(&w, "CGB palette data.", symbol+"Palettes", b.PaletteBytes(), paletteWrap)
	}
	cArray(&w, "Start of tile array.", symbol, b.Tiles, flags.Wrap)
	return w.Bytes()
}

func cMapSource(b *tile.Bundle, file, symbol string, flags Flags) []byte {
	var w bytes.Buffer
	writeHeader(&w, cComment, file, b)
	cArray(&w, "Map array.", symbol+"Map", b.Map, flags.MapWrap)
	cArray(&w, "CGBpalette entries.", symbol+"PaletteEntries", b.Attributes, flags.MapWrap)
	return w.Bytes()
}

func includeGuard(symbol string) string {
	return strings.ToUpper(symbol) + "_H"
}

// cHeader is shared by every text format so C code can link against the
// data whichever assembler produced it.
func cHeader(b *tile.Bundle, file, symbol string, flags Flags) []byte {
	var w bytes.Buffer
	writeHeader(&w, cComment, file, b)

	guard := includeGuard(symbol)
	fmt.Fprintf(&w, "\n#ifndef %s\n#define %s\n\n", guard, guard)

	fmt.Fprintf(&w, "#define %sTileWidth %d\n", symbol, b.TileWidth)
	fmt.Fprintf(&w, "#define %sTileHeight %d\n", symbol, b.TileHeight)
	fmt.Fprintf(&w, "#define %sTileCount %d\n", symbol, b.TileCount())
	fmt.Fprintf(&w, "#define %sTileOffset %d\n", symbol, b.TileOffset)

	if flags.IncludePalette {
		fmt.Fprintf(&w, "#define %sPaletteCount %d\n", symbol, len(b.Palettes))
		for i, p := range b.Palettes {
			fmt.Fprintf(&w, "\n/* Gameboy Color palette %d */\n", i)
			for j, c := range p {
				fmt.Fprintf(&w, "#define %sCGBPal%dc%d 0x%04X\n", symbol, i, j, c)
			}
		}
		fmt.Fprintf(&w, "\n/* CGB palette data. */\nextern const unsigned char %sPalettes[];\n", symbol)
	}

	fmt.Fprintf(&w, "\n/* Start of tile array. */\nextern const unsigned char %s[];\n", symbol)
	w.WriteString("\n#endif\n")

	return w.Bytes()
}

func cMapHeader(b *tile.Bundle, file, symbol string) []byte {
	var w bytes.Buffer
	writeHeader(&w, cComment, file, b)

	guard := includeGuard(symbol + "Map")
	fmt.Fprintf(&w, "\n#ifndef %s\n#define %s\n\n", guard, guard)

	fmt.Fprintf(&w, "#define %sMapWidth %d\n", symbol, b.TilesX)
	fmt.Fprintf(&w, "#define %sMapHeight %d\n", symbol, b.TilesY)
	fmt.Fprintf(&w, "#define %sPaletteOffset %d\n", symbol, b.PaletteOffset)

	fmt.Fprintf(&w, "\n/* Map array. */\nextern const unsigned char %sMap[];\n", symbol)
	fmt.Fprintf(&w, "\n/* CGBpalette entries. */\nextern const unsigned char %sPaletteEntries[];\n", symbol)
	w.WriteString("\n#endif\n")

	return w.Bytes()
}

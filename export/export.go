/*
Package export renders an encoded tile bundle as files for Game Boy
toolchains.

Every emitter is a pure function of the bundle, the output name, the symbol
name and the flags; the same inputs always produce byte-identical files. Text
emitters share a header comment describing the bundle and write byte arrays
wrapped at a configurable number of values per line.
*/
package export

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bodgit/gbtiles/palette"
	"github.com/bodgit/gbtiles/tile"
)

const (
	// DefaultWrap is the number of tile bytes written per line.
	DefaultWrap = 16
	// DefaultMapWrap is the number of map and attribute bytes written per
	// line.
	DefaultMapWrap = 8
	// DefaultCodeArea is the GBDK code bank the data is placed in.
	DefaultCodeArea = 1

	paletteWrap = palette.Size * 2
)

var errUnknownFormat = errors.New("export: unknown format")

// Flags control which sections are written and how.
type Flags struct {
	IncludePalette bool
	IncludeMap     bool
	// Wrap is the number of tile bytes per line, zero or less puts
	// everything on one line.
	Wrap int
	// MapWrap is the number of map and attribute bytes per line.
	MapWrap int
	// CodeArea is the bank number used by the GBDK emitter.
	CodeArea int
}

// DefaultFlags returns flags with every section enabled.
func DefaultFlags() Flags {
	return Flags{
		IncludePalette: true,
		IncludeMap:     true,
		Wrap:           DefaultWrap,
		MapWrap:        DefaultMapWrap,
		CodeArea:       DefaultCodeArea,
	}
}

// File is a single emitted file.
type File struct {
	Name string
	Data []byte
}

// An Emitter renders b into one or more files. name is the base file name
// without extension, symbol is the identifier prefix used for every label.
type Emitter func(b *tile.Bundle, name, symbol string, flags Flags) []File

var emitters = map[string]Emitter{
	"c":     C,
	"rgbds": RGBDS,
	"gbdk":  GBDK,
	"bin":   Binary,
}

// Lookup returns the emitter for format.
func Lookup(format string) (Emitter, error) {
	e, ok := emitters[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownFormat, format)
	}
	return e, nil
}

// Formats returns the names of every supported format.
func Formats() []string {
	formats := make([]string, 0, len(emitters))
	for k := range emitters {
		formats = append(formats, k)
	}
	sort.Strings(formats)
	return formats
}

type comment struct {
	open, line, close string
}

var (
	cComment   = comment{open: "/*", line: " ", close: "*/"}
	asmComment = comment{line: "; "}
)

func writeHeader(w *bytes.Buffer, c comment, file string, b *tile.Bundle) {
	lines := []string{
		file,
		"",
		"Tile Source File.",
		"",
		"Info:",
		fmt.Sprintf(" %-20s : %d x %d", "Tile size", b.TileWidth, b.TileHeight),
		fmt.Sprintf(" %-20s : %d", "Tiles", b.TileCount()),
		fmt.Sprintf(" %-20s : %d", "Map tiles", len(b.Map)),
		fmt.Sprintf(" %-20s : %d x %d", "Map size", b.TilesX, b.TilesY),
		fmt.Sprintf(" %-20s : %d", "Palettes", len(b.Palettes)),
		fmt.Sprintf(" %-20s : %d", "Tile offset", b.TileOffset),
		fmt.Sprintf(" %-20s : %d", "Palette offset", b.PaletteOffset),
		fmt.Sprintf(" %-20s : 1 Byte per entry.", "CGB Palette"),
	}

	if c.open != "" {
		w.WriteString(c.open + "\n")
	}
	for _, l := range lines {
		if l == "" {
			w.WriteString(strings.TrimRight(c.line, " ") + "\n")
			continue
		}
		w.WriteString(c.line + l + "\n")
	}
	if c.close != "" {
		w.WriteString(c.close + "\n")
	}
}

type dialect struct {
	literal string
	prefix  string
	lineEnd string
}

func (d dialect) writeBytes(w *bytes.Buffer, data []byte, wrap int) {
	if wrap <= 0 {
		wrap = len(data)
	}
	for i := 0; i < len(data); i += wrap {
		end := min(i+wrap, len(data))
		w.WriteString(d.prefix)
		for j, v := range data[i:end] {
			if j > 0 {
				w.WriteByte(',')
			}
			fmt.Fprintf(w, d.literal, v)
		}
		if end < len(data) {
			w.WriteString(d.lineEnd)
		}
		w.WriteByte('\n')
	}
}

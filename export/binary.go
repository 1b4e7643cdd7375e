package export

import (
	"bytes"

	"github.com/bodgit/gbtiles/tile"
)

// Binary writes the raw tile data, map, attributes and palettes exactly as
// they are loaded into video memory. symbol is unused.
func Binary(b *tile.Bundle, name, _ string, flags Flags) []File {
	files := []File{
		{Name: name + ".2bpp", Data: bytes.Clone(b.Tiles)},
	}
	if flags.IncludePalette {
		files = append(files, File{Name: name + ".pal", Data: b.PaletteBytes()})
	}
	if flags.IncludeMap {
		files = append(files,
			File{Name: name + ".tilemap", Data: bytes.Clone(b.Map)},
			File{Name: name + ".attrmap", Data: bytes.Clone(b.Attributes)},
		)
	}
	return files
}

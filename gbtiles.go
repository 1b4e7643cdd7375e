/*
Package gbtiles is a library for converting pictures into Game Boy Color tile
data, tile maps and palettes.
*/
package gbtiles

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/gbtiles/export"
	"github.com/bodgit/gbtiles/palette"
	"github.com/bodgit/gbtiles/raster"
	"github.com/bodgit/gbtiles/tile"
)

var errNoDB = errors.New("gbtiles: no palette database")

// Options control a conversion.
type Options struct {
	TileWidth, TileHeight int
	Palettes              palette.Set
	Tile                  tile.Options
	// Format is one of export.Formats.
	Format string
	Flags  export.Flags
	// Symbol is the label prefix, derived from the file name when empty.
	Symbol string
}

// Converter ties the encoding pipeline to files on disk and the palette
// database.
type Converter struct {
	db     *PaletteDB
	logger *log.Logger
}

// New returns a Converter. db may be nil if saved palettes aren't needed.
func New(db *PaletteDB, logger *log.Logger) *Converter {
	return &Converter{
		db:     db,
		logger: logger,
	}
}

// DecodeImage reads a PNG, GIF or JPEG picture.
func DecodeImage(file string) (image.Image, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return m, nil
}

// PaletteGroup returns the palettes saved under id.
func (c *Converter) PaletteGroup(id string) (palette.Set, error) {
	if c.db == nil {
		return nil, errNoDB
	}
	g, err := c.db.PaletteGroup(id)
	if err != nil {
		return nil, err
	}
	return g.Palettes, nil
}

// Validate slices m into tiles and checks every tile against the palettes.
func (c *Converter) Validate(m image.Image, opts Options) (*raster.Tiles, *palette.Validation, error) {
	src, err := raster.New(m, opts.TileWidth, opts.TileHeight)
	if err != nil {
		return nil, nil, err
	}
	return src, palette.Validate(src, opts.Palettes), nil
}

// Encode validates and encodes m.
func (c *Converter) Encode(m image.Image, opts Options) (*tile.Bundle, error) {
	src, err := raster.New(m, opts.TileWidth, opts.TileHeight)
	if err != nil {
		return nil, err
	}

	b, err := tile.Encode(src, opts.Palettes, opts.Tile)
	if err != nil {
		return nil, err
	}

	c.logger.Printf("Encoded %d tiles into %d unique tiles with %d palettes\n", len(b.Map), b.TileCount(), len(b.Palettes))

	return b, nil
}

// Convert encodes m and renders it in the requested format. name is the base
// file name of every output.
func (c *Converter) Convert(m image.Image, name string, opts Options) ([]export.File, error) {
	emit, err := export.Lookup(opts.Format)
	if err != nil {
		return nil, err
	}

	b, err := c.Encode(m, opts)
	if err != nil {
		return nil, err
	}

	symbol := opts.Symbol
	if symbol == "" {
		symbol = export.SymbolName(name)
	}

	return emit(b, name, symbol, opts.Flags), nil
}

// Preview encodes m and renders the result back into a picture, showing
// exactly what the hardware would display.
func (c *Converter) Preview(m image.Image, opts Options) (*image.Paletted, error) {
	b, err := c.Encode(m, opts)
	if err != nil {
		return nil, err
	}
	return tile.Decode(b)
}

// WriteFiles writes every file into dir.
func WriteFiles(dir string, files []export.File) error {
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.Name), f.Data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// ConvertFile converts the picture in file, writing the outputs into dir, or
// alongside file if dir is empty. It returns the names of the files written.
func (c *Converter) ConvertFile(file, dir string, opts Options) ([]string, error) {
	m, err := DecodeImage(file)
	if err != nil {
		return nil, err
	}

	if dir == "" {
		dir = filepath.Dir(file)
	}
	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

	files, err := c.Convert(m, name, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	if err := WriteFiles(dir, files); err != nil {
		return nil, err
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Join(dir, f.Name)
	}

	return names, nil
}

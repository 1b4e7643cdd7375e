package main

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"

	"github.com/bodgit/gbtiles"
	"github.com/bodgit/gbtiles/config"
	"github.com/bodgit/gbtiles/export"
	"github.com/bodgit/gbtiles/palette"
	"github.com/bodgit/gbtiles/raster"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

type env struct {
	cfg    config.Config
	logger *log.Logger
	db     *gbtiles.PaletteDB
	conv   *gbtiles.Converter
}

func setup(c *cli.Context, needDB bool) (*env, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}

	e := &env{
		cfg:    cfg,
		logger: logger,
	}

	if needDB || c.String("palette-group") != "" {
		if err := e.openDB(c); err != nil {
			return nil, err
		}
	}

	e.conv = gbtiles.New(e.db, logger)

	return e, nil
}

func (e *env) openDB(c *cli.Context) error {
	if e.db != nil {
		return nil
	}

	path := e.cfg.Database.Path
	if c.IsSet("db") {
		path = c.String("db")
	}

	db, err := gbtiles.NewPaletteDB(path)
	if err != nil {
		return err
	}
	e.db = db

	return nil
}

func (e *env) Close() error {
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}

func (e *env) palettes(c *cli.Context) (palette.Set, error) {
	if p := c.StringSlice("palette"); len(p) > 0 {
		return config.ParsePalettes(p)
	}
	if id := c.String("palette-group"); id != "" {
		return e.conv.PaletteGroup(id)
	}

	set, err := e.cfg.PaletteSet()
	if err != nil {
		return nil, err
	}
	if len(set) == 0 {
		set = palette.DefaultSet(1)
	}
	return set, nil
}

func (e *env) options(c *cli.Context) (gbtiles.Options, error) {
	set, err := e.palettes(c)
	if err != nil {
		return gbtiles.Options{}, err
	}

	opts := gbtiles.Options{
		TileWidth:  e.cfg.Tile.Width,
		TileHeight: e.cfg.Tile.Height,
		Palettes:   set,
		Tile:       e.cfg.TileOptions(),
		Format:     e.cfg.Export.Format,
		Flags:      e.cfg.Flags(),
		Symbol:     c.String("symbol"),
	}

	if c.IsSet("tile-width") {
		opts.TileWidth = c.Int("tile-width")
	}
	if c.IsSet("tile-height") {
		opts.TileHeight = c.Int("tile-height")
	}
	if c.IsSet("format") {
		opts.Format = c.String("format")
	}
	if c.IsSet("tile-offset") {
		opts.Tile.TileOffset = c.Int("tile-offset")
	}
	if c.IsSet("palette-offset") {
		opts.Tile.PaletteOffset = c.Int("palette-offset")
	}
	if c.IsSet("wrap") {
		opts.Flags.Wrap = c.Int("wrap")
	}
	if c.Bool("no-palette") {
		opts.Flags.IncludePalette = false
	}
	if c.Bool("no-map") {
		opts.Flags.IncludeMap = false
	}

	return opts, nil
}

// action wraps f with the common setup and error handling.
func action(needDB bool, args int, f func(*cli.Context, *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() < args {
			cli.ShowSubcommandHelpAndExit(c, 1)
		}

		e, err := setup(c, needDB)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer e.Close()

		if err := f(c, e); err != nil {
			return cli.Exit(err, 1)
		}

		return nil
	}
}

func writePNG(file string, m image.Image) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, m)
}

var exportFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   fmt.Sprintf("output format, one of %v", export.Formats()),
	},
	&cli.IntFlag{
		Name:  "tile-offset",
		Usage: "add `N` to every map entry",
	},
	&cli.IntFlag{
		Name:  "palette-offset",
		Usage: "add `N` to every attribute entry",
	},
	&cli.BoolFlag{
		Name:  "no-palette",
		Usage: "omit the palette data",
	},
	&cli.BoolFlag{
		Name:  "no-map",
		Usage: "omit the map and attributes",
	},
	&cli.IntFlag{
		Name:  "wrap",
		Usage: "write `N` tile bytes per line",
	},
}

func main() {
	app := cli.NewApp()

	app.Name = "gbtiles"
	app.Usage = "Game Boy Color tile conversion utility"
	app.Version = "1.0.0"
	app.DisableSliceFlagSeparator = true

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			EnvVars: []string{config.EnvPrefix + "_CONFIG"},
			Usage:   "path to configuration `FILE`",
		},
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{config.EnvPrefix + "_DB"},
			Usage:   "path to database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
		&cli.IntFlag{
			Name:  "tile-width",
			Usage: "tile width in pixels",
		},
		&cli.IntFlag{
			Name:  "tile-height",
			Usage: "tile height in pixels",
		},
		&cli.StringSliceFlag{
			Name:    "palette",
			Aliases: []string{"p"},
			Usage:   "a palette of four `COLORS`, may be repeated",
		},
		&cli.StringFlag{
			Name:  "palette-group",
			Usage: "use the saved palette group `ID`",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "validate",
			Usage:     "Check every tile fits a palette",
			ArgsUsage: "IMAGE",
			Action: action(false, 1, func(c *cli.Context, e *env) error {
				opts, err := e.options(c)
				if err != nil {
					return err
				}

				m, err := gbtiles.DecodeImage(c.Args().First())
				if err != nil {
					return err
				}

				src, v, err := e.conv.Validate(m, opts)
				if err != nil {
					return err
				}

				printValidation(os.Stdout, newStyles(), src.Grid(), v)

				if !v.Valid() {
					return fmt.Errorf("%d invalid tiles", len(v.Invalid))
				}

				return nil
			}),
		},
		{
			Name:      "export",
			Usage:     "Convert a picture into tile data",
			ArgsUsage: "IMAGE",
			Flags: append([]cli.Flag{
				&cli.StringFlag{
					Name:    "out",
					Aliases: []string{"o"},
					Usage:   "write files into `DIRECTORY`",
				},
				&cli.StringFlag{
					Name:  "symbol",
					Usage: "label prefix, derived from the file name by default",
				},
			}, exportFlags...),
			Action: action(false, 1, func(c *cli.Context, e *env) error {
				opts, err := e.options(c)
				if err != nil {
					return err
				}

				names, err := e.conv.ConvertFile(c.Args().First(), c.String("out"), opts)
				if err != nil {
					return err
				}

				for _, n := range names {
					e.logger.Printf("Wrote \"%s\"\n", n)
				}

				return nil
			}),
		},
		{
			Name:      "scan",
			Usage:     "Convert every picture under a directory",
			ArgsUsage: "DIRECTORY",
			Flags:     exportFlags,
			Action: action(false, 1, func(c *cli.Context, e *env) error {
				opts, err := e.options(c)
				if err != nil {
					return err
				}

				return e.conv.Scan(c.Args().First(), opts)
			}),
		},
		{
			Name:      "preview",
			Usage:     "Render a picture as the hardware would display it",
			ArgsUsage: "IMAGE OUTPUT",
			Action: action(false, 2, func(c *cli.Context, e *env) error {
				opts, err := e.options(c)
				if err != nil {
					return err
				}

				m, err := gbtiles.DecodeImage(c.Args().Get(0))
				if err != nil {
					return err
				}

				p, err := e.conv.Preview(m, opts)
				if err != nil {
					return err
				}

				return writePNG(c.Args().Get(1), p)
			}),
		},
		{
			Name:      "generate",
			Usage:     "Create palettes that fit a picture",
			ArgsUsage: "IMAGE",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "max",
					Value: palette.MaxPalettes,
					Usage: "create at most `N` palettes",
				},
				&cli.StringFlag{
					Name:  "save",
					Usage: "save the palettes under `LABEL`",
				},
				&cli.StringFlag{
					Name:    "out",
					Aliases: []string{"o"},
					Usage:   "write the picture redrawn with the palettes to `FILE`",
				},
			},
			Action: action(false, 1, func(c *cli.Context, e *env) error {
				opts, err := e.options(c)
				if err != nil {
					return err
				}

				m, err := gbtiles.DecodeImage(c.Args().First())
				if err != nil {
					return err
				}

				set, out, err := palette.Generate(m, opts.TileWidth, opts.TileHeight, c.Int("max"))
				if err != nil {
					return err
				}

				printPalettes(os.Stdout, newStyles(), set)

				if file := c.String("out"); file != "" {
					if err := writePNG(file, out); err != nil {
						return err
					}
				}

				if label := c.String("save"); label != "" {
					if err := e.openDB(c); err != nil {
						return err
					}

					id, err := e.db.SavePalettes(label, set)
					if err != nil {
						return err
					}
					fmt.Println(id)
				}

				return nil
			}),
		},
		{
			Name:      "remap",
			Usage:     "Replace colours using a saved colour map",
			ArgsUsage: "IMAGE OUTPUT",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "map",
					Required: true,
					Usage:    "use the saved colour map `ID`",
				},
				&cli.IntFlag{
					Name:  "tile",
					Value: -1,
					Usage: "only remap tile `N`",
				},
			},
			Action: action(true, 2, func(c *cli.Context, e *env) error {
				opts, err := e.options(c)
				if err != nil {
					return err
				}

				cm, err := e.db.ColorMap(c.String("map"))
				if err != nil {
					return err
				}

				m, err := gbtiles.DecodeImage(c.Args().Get(0))
				if err != nil {
					return err
				}

				var area image.Rectangle
				if id := c.Int("tile"); id >= 0 {
					src, err := raster.New(m, opts.TileWidth, opts.TileHeight)
					if err != nil {
						return err
					}
					if id >= src.Grid().Len() {
						return fmt.Errorf("no tile %d", id)
					}
					area = src.Grid().TileRect(id)
				}

				return writePNG(c.Args().Get(1), raster.Remap(m, cm.Map, area))
			}),
		},
		{
			Name:      "fit",
			Usage:     "Resize and colour reduce a picture",
			ArgsUsage: "IMAGE OUTPUT",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "width",
					Required: true,
					Usage:    "width in pixels",
				},
				&cli.IntFlag{
					Name:     "height",
					Required: true,
					Usage:    "height in pixels",
				},
				&cli.IntFlag{
					Name:  "colors",
					Usage: "reduce to at most `N` colours",
				},
			},
			Action: action(false, 2, func(c *cli.Context, e *env) error {
				m, err := gbtiles.DecodeImage(c.Args().Get(0))
				if err != nil {
					return err
				}

				return writePNG(c.Args().Get(1), raster.Fit(m, c.Int("width"), c.Int("height"), c.Int("colors")))
			}),
		},
		palettesCommand,
		colorMapsCommand,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

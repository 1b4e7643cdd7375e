package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bodgit/gbtiles/config"
	"github.com/bodgit/gbtiles/gbcolor"
	"github.com/urfave/cli/v2"
)

var palettesCommand = &cli.Command{
	Name:  "palettes",
	Usage: "Manage saved palette groups",
	Subcommands: []*cli.Command{
		{
			Name:  "list",
			Usage: "List saved palette groups",
			Action: action(true, 0, func(c *cli.Context, e *env) error {
				groups, err := e.db.Palettes()
				if err != nil {
					return err
				}

				s := newStyles()
				for _, g := range groups {
					fmt.Printf("%s %s %s\n", g.ID, s.heading.Render(g.Label), s.dim.Render(g.Created.Format("2006-01-02 15:04")))
					printPalettes(os.Stdout, s, g.Palettes)
				}

				return nil
			}),
		},
		{
			Name:      "save",
			Usage:     "Save the palettes given with --palette",
			ArgsUsage: "LABEL",
			Action: action(true, 1, func(c *cli.Context, e *env) error {
				set, err := config.ParsePalettes(c.StringSlice("palette"))
				if err != nil {
					return err
				}
				if len(set) == 0 {
					return fmt.Errorf("no palettes given")
				}

				id, err := e.db.SavePalettes(c.Args().First(), set)
				if err != nil {
					return err
				}
				fmt.Println(id)

				return nil
			}),
		},
		{
			Name:      "remove",
			Usage:     "Remove a saved palette group",
			ArgsUsage: "ID",
			Action: action(true, 1, func(c *cli.Context, e *env) error {
				return e.db.RemovePalettes(c.Args().First())
			}),
		},
		{
			Name:      "import",
			Usage:     "Replace saved palettes and colour maps with a settings export",
			ArgsUsage: "FILE",
			Action: action(true, 1, func(c *cli.Context, e *env) error {
				return e.db.ImportJSON(c.Args().First())
			}),
		},
	},
}

// parseMapping reads FROM=TO colour pairs.
func parseMapping(args []string) (map[uint32]gbcolor.Color, error) {
	m := make(map[uint32]gbcolor.Color, len(args))
	for _, a := range args {
		from, to, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("expected FROM=TO, got %q", a)
		}
		f, err := gbcolor.Parse(from)
		if err != nil {
			return nil, err
		}
		t, err := gbcolor.Parse(to)
		if err != nil {
			return nil, err
		}
		m[f.Key()] = t
	}
	return m, nil
}

var colorMapsCommand = &cli.Command{
	Name:  "colormaps",
	Usage: "Manage saved colour maps",
	Subcommands: []*cli.Command{
		{
			Name:  "list",
			Usage: "List saved colour maps",
			Action: action(true, 0, func(c *cli.Context, e *env) error {
				maps, err := e.db.ColorMaps()
				if err != nil {
					return err
				}

				s := newStyles()
				for _, cm := range maps {
					fmt.Printf("%s %s %s\n", cm.ID, s.heading.Render(cm.Label), s.dim.Render(cm.Created.Format("2006-01-02 15:04")))

					keys := make([]uint32, 0, len(cm.Map))
					for k := range cm.Map {
						keys = append(keys, k)
					}
					sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

					for _, k := range keys {
						from, to := gbcolor.Unpack(k), cm.Map[k]
						fmt.Printf("  %s %s -> %s %s\n", swatch(from), hex(from), swatch(to), hex(to))
					}
				}

				return nil
			}),
		},
		{
			Name:      "save",
			Usage:     "Save a colour map",
			ArgsUsage: "LABEL FROM=TO...",
			Action: action(true, 2, func(c *cli.Context, e *env) error {
				m, err := parseMapping(c.Args().Tail())
				if err != nil {
					return err
				}

				id, err := e.db.SaveColorMap(c.Args().First(), m)
				if err != nil {
					return err
				}
				fmt.Println(id)

				return nil
			}),
		},
		{
			Name:      "remove",
			Usage:     "Remove a saved colour map",
			ArgsUsage: "ID",
			Action: action(true, 1, func(c *cli.Context, e *env) error {
				return e.db.RemoveColorMap(c.Args().First())
			}),
		},
	},
}

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/bodgit/gbtiles/gbcolor"
	"github.com/bodgit/gbtiles/palette"
	"github.com/bodgit/gbtiles/raster"
	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	valid   lipgloss.Style
	invalid lipgloss.Style
	heading lipgloss.Style
	dim     lipgloss.Style
}

func newStyles() styles {
	return styles{
		valid:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(2)),
		invalid: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(1)),
		heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(4)),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(8)),
	}
}

func hex(c gbcolor.Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func swatch(c gbcolor.Color) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(hex(c))).Render("  ")
}

// printValidation draws the tile grid with the palette chosen for each tile,
// then lists every invalid tile.
func printValidation(w io.Writer, s styles, g raster.Grid, v *palette.Validation) {
	fmt.Fprintln(w, s.heading.Render(fmt.Sprintf("%d x %d tiles of %d x %d", g.TilesX, g.TilesY, g.TileWidth, g.TileHeight)))

	for y := 0; y < g.TilesY; y++ {
		cells := make([]string, g.TilesX)
		for x := range cells {
			tv := v.Tiles[y*g.TilesX+x]
			if tv.Valid {
				cells[x] = s.valid.Render(fmt.Sprintf("%d", tv.Palette))
			} else {
				cells[x] = s.invalid.Render("X")
			}
		}
		fmt.Fprintln(w, strings.Join(cells, " "))
	}

	for _, tv := range v.Invalid {
		x, y := tv.ID%g.TilesX, tv.ID/g.TilesX

		colors := make([]string, len(tv.Colors))
		for i, c := range tv.Colors.Colors() {
			colors[i] = swatch(c) + " " + hex(c)
		}

		fmt.Fprintf(w, "%s %s %s\n", s.invalid.Render(fmt.Sprintf("tile %d", tv.ID)), s.dim.Render(fmt.Sprintf("(%d, %d)", x, y)), tv.Reason)
		fmt.Fprintf(w, "  %s\n", strings.Join(colors, "  "))
	}

	fmt.Fprintf(w, "%d tiles, %d invalid\n", len(v.Tiles), len(v.Invalid))
}

func printPalettes(w io.Writer, s styles, set palette.Set) {
	for i, p := range set {
		colors := make([]string, len(p))
		for j, c := range p {
			colors[j] = swatch(c) + " " + hex(c)
		}
		fmt.Fprintf(w, "%s %s\n", s.heading.Render(fmt.Sprintf("palette %d", i)), strings.Join(colors, "  "))
	}
}

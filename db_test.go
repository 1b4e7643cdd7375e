package gbtiles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bodgit/gbtiles/gbcolor"
	"github.com/bodgit/gbtiles/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) (*PaletteDB, string) {
	t.Helper()
	file := filepath.Join(t.TempDir(), "data", "gbtiles.db")
	db, err := NewPaletteDB(file)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, file
}

var (
	black = gbcolor.Opaque(0, 0, 0)
	white = gbcolor.Opaque(255, 255, 255)
	grey  = gbcolor.Opaque(128, 128, 128)
	red   = gbcolor.Opaque(255, 0, 0)
	green = gbcolor.Opaque(0, 255, 0)
	blue  = gbcolor.Opaque(0, 0, 255)
)

func TestPaletteGroups(t *testing.T) {
	db, _ := newTestDB(t)

	groups, err := db.Palettes()
	require.NoError(t, err)
	assert.Empty(t, groups)

	first := palette.Set{{black, white, grey, red}, {green, blue, black, white}}
	id1, err := db.SavePalettes("first", first)
	require.NoError(t, err)

	id2, err := db.SavePalettes("second", palette.Set{palette.Default()})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	groups, err = db.Palettes()
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "first", groups[0].Label)
	assert.Equal(t, first, groups[0].Palettes)
	assert.Equal(t, "second", groups[1].Label)
	assert.Equal(t, palette.Set{palette.Default()}, groups[1].Palettes)

	g, err := db.PaletteGroup(id1)
	require.NoError(t, err)
	assert.Equal(t, first, g.Palettes)

	require.NoError(t, db.RemovePalettes(id1))
	assert.ErrorIs(t, db.RemovePalettes(id1), ErrNotFound)

	_, err = db.PaletteGroup(id1)
	assert.ErrorIs(t, err, ErrNotFound)

	groups, err = db.Palettes()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, id2, groups[0].ID)
}

func TestColorMaps(t *testing.T) {
	db, _ := newTestDB(t)

	m := map[uint32]gbcolor.Color{
		red.Key():   black,
		green.Key(): white,
	}
	id, err := db.SaveColorMap("fix", m)
	require.NoError(t, err)

	cm, err := db.ColorMap(id)
	require.NoError(t, err)
	assert.Equal(t, "fix", cm.Label)
	assert.Equal(t, m, cm.Map)

	maps, err := db.ColorMaps()
	require.NoError(t, err)
	require.Len(t, maps, 1)
	assert.Equal(t, m, maps[0].Map)

	require.NoError(t, db.RemoveColorMap(id))
	assert.ErrorIs(t, db.RemoveColorMap(id), ErrNotFound)

	_, err = db.ColorMap(id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReopen(t *testing.T) {
	db, file := newTestDB(t)

	id, err := db.SavePalettes("kept", palette.Set{palette.Default()})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewPaletteDB(file)
	require.NoError(t, err)
	defer db.Close()

	g, err := db.PaletteGroup(id)
	require.NoError(t, err)
	assert.Equal(t, "kept", g.Label)
}

const settingsJSON = `{
  "palettes": [
    {
      "id": 1565000000000,
      "label": "greys",
      "palettes": [
        [[0,0,0,1],[85,85,85,1],[170,170,170,1],[255,255,255,1]],
        ["#ff0000", "rgb(0,255,0)", "rgba(0,0,255,1)", [0,0,0,255]]
      ]
    }
  ],
  "colorMaps": [
    {
      "id": 1565000000001,
      "label": "reds",
      "map": {
        "4294901760": [0,0,0,1],
        "#00ff00": "#ffffff"
      }
    }
  ]
}`

func TestImportJSON(t *testing.T) {
	db, _ := newTestDB(t)

	_, err := db.SavePalettes("replaced", palette.Set{palette.Default()})
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(file, []byte(settingsJSON), 0o644))

	require.NoError(t, db.ImportJSON(file))

	groups, err := db.Palettes()
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "1565000000000", groups[0].ID)
	assert.Equal(t, "greys", groups[0].Label)
	assert.Equal(t, palette.Set{
		{black, gbcolor.Opaque(85, 85, 85), gbcolor.Opaque(170, 170, 170), white},
		{red, green, blue, black},
	}, groups[0].Palettes)

	cm, err := db.ColorMap("1565000000001")
	require.NoError(t, err)
	assert.Equal(t, map[uint32]gbcolor.Color{
		red.Key():   black,
		green.Key(): white,
	}, cm.Map)
}

func TestImportJSONBadPalette(t *testing.T) {
	db, _ := newTestDB(t)

	id, err := db.SavePalettes("kept", palette.Set{palette.Default()})
	require.NoError(t, err)

	file := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"palettes":[{"id":1,"label":"short","palettes":[[[0,0,0,1]]]}]}`), 0o644))

	assert.ErrorIs(t, db.ImportJSON(file), palette.ErrPaletteSize)

	// Nothing changed
	_, err = db.PaletteGroup(id)
	assert.NoError(t, err)
}

package gbtiles

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/bodgit/gbtiles/gbcolor"
	"github.com/bodgit/gbtiles/palette"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrations embed.FS

var (
	// ErrNotFound is returned when a saved palette group or colour map
	// doesn't exist.
	ErrNotFound = errors.New("gbtiles: not found")

	errBadColor = errors.New("gbtiles: invalid colour")
)

// PaletteDB stores named palette groups and colour maps.
type PaletteDB struct {
	db *sql.DB
}

// PaletteGroup is a saved palette set.
type PaletteGroup struct {
	ID       string
	Label    string
	Created  time.Time
	Palettes palette.Set
}

// ColorMap is a saved set of colour replacements, keyed by packed colour.
type ColorMap struct {
	ID      string
	Label   string
	Created time.Time
	Map     map[uint32]gbcolor.Color
}

func migrateDB(file string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite3://"+file)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// NewPaletteDB opens the database in file, creating it and applying any
// schema migrations as necessary.
func NewPaletteDB(file string) (*PaletteDB, error) {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, err
	}

	if err := migrateDB(file); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", file, err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	return &PaletteDB{
		db: db,
	}, nil
}

// Close closes the underlying database.
func (db *PaletteDB) Close() error {
	return db.db.Close()
}

type execer interface {
	Exec(string, ...any) (sql.Result, error)
}

func addPalettes(tx execer, id, label string, created int64, set palette.Set) error {
	if _, err := tx.Exec("INSERT INTO palette_group (id, label, created) VALUES (?, ?, ?)", id, label, created); err != nil {
		return err
	}
	for i, p := range set {
		if _, err := tx.Exec("INSERT INTO palette (group_id, position, color0, color1, color2, color3) VALUES (?, ?, ?, ?, ?, ?)", id, i, p[0].Key(), p[1].Key(), p[2].Key(), p[3].Key()); err != nil {
			return err
		}
	}
	return nil
}

func addColorMap(tx execer, id, label string, created int64, m map[uint32]gbcolor.Color) error {
	if _, err := tx.Exec("INSERT INTO color_map (id, label, created) VALUES (?, ?, ?)", id, label, created); err != nil {
		return err
	}
	for k, c := range m {
		if _, err := tx.Exec("INSERT INTO color_map_entry (map_id, source, target) VALUES (?, ?, ?)", id, k, c.Key()); err != nil {
			return err
		}
	}
	return nil
}

func (db *PaletteDB) inTx(f func(*sql.Tx) error) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	if err := f(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// SavePalettes stores set under label and returns the new group id.
func (db *PaletteDB) SavePalettes(label string, set palette.Set) (string, error) {
	id := uuid.NewString()
	if err := db.inTx(func(tx *sql.Tx) error {
		return addPalettes(tx, id, label, time.Now().UnixNano(), set)
	}); err != nil {
		return "", err
	}
	return id, nil
}

func (db *PaletteDB) loadPalettes(g *PaletteGroup) error {
	rows, err := db.db.Query("SELECT color0, color1, color2, color3 FROM palette WHERE group_id = ? ORDER BY position", g.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c [palette.Size]uint32
		if err := rows.Scan(&c[0], &c[1], &c[2], &c[3]); err != nil {
			return err
		}
		var p palette.Palette
		for i, k := range c {
			p[i] = gbcolor.Unpack(k)
		}
		g.Palettes = append(g.Palettes, p)
	}
	return rows.Err()
}

// Palettes returns every saved palette group, oldest first.
func (db *PaletteDB) Palettes() ([]PaletteGroup, error) {
	rows, err := db.db.Query("SELECT id, label, created FROM palette_group ORDER BY created, rowid")
	if err != nil {
		return nil, err
	}

	var groups []PaletteGroup
	for rows.Next() {
		var g PaletteGroup
		var created int64
		if err := rows.Scan(&g.ID, &g.Label, &created); err != nil {
			rows.Close()
			return nil, err
		}
		g.Created = time.Unix(0, created)
		groups = append(groups, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range groups {
		if err := db.loadPalettes(&groups[i]); err != nil {
			return nil, err
		}
	}

	return groups, nil
}

// PaletteGroup returns the saved palette group id.
func (db *PaletteDB) PaletteGroup(id string) (*PaletteGroup, error) {
	g := &PaletteGroup{ID: id}
	var created int64
	switch err := db.db.QueryRow("SELECT label, created FROM palette_group WHERE id = ?", id).Scan(&g.Label, &created); err {
	case sql.ErrNoRows:
		return nil, fmt.Errorf("%w: palette group %q", ErrNotFound, id)
	case nil:
		g.Created = time.Unix(0, created)
		if err := db.loadPalettes(g); err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, err
	}
}

func removed(result sql.Result, err error, what, id string) error {
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %q", ErrNotFound, what, id)
	}
	return nil
}

// RemovePalettes deletes the saved palette group id.
func (db *PaletteDB) RemovePalettes(id string) error {
	result, err := db.db.Exec("DELETE FROM palette_group WHERE id = ?", id)
	return removed(result, err, "palette group", id)
}

// SaveColorMap stores m under label and returns the new map id.
func (db *PaletteDB) SaveColorMap(label string, m map[uint32]gbcolor.Color) (string, error) {
	id := uuid.NewString()
	if err := db.inTx(func(tx *sql.Tx) error {
		return addColorMap(tx, id, label, time.Now().UnixNano(), m)
	}); err != nil {
		return "", err
	}
	return id, nil
}

func (db *PaletteDB) loadColorMap(cm *ColorMap) error {
	rows, err := db.db.Query("SELECT source, target FROM color_map_entry WHERE map_id = ?", cm.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	cm.Map = make(map[uint32]gbcolor.Color)
	for rows.Next() {
		var source, target uint32
		if err := rows.Scan(&source, &target); err != nil {
			return err
		}
		cm.Map[source] = gbcolor.Unpack(target)
	}
	return rows.Err()
}

// ColorMaps returns every saved colour map, oldest first.
func (db *PaletteDB) ColorMaps() ([]ColorMap, error) {
	rows, err := db.db.Query("SELECT id, label, created FROM color_map ORDER BY created, rowid")
	if err != nil {
		return nil, err
	}

	var maps []ColorMap
	for rows.Next() {
		var cm ColorMap
		var created int64
		if err := rows.Scan(&cm.ID, &cm.Label, &created); err != nil {
			rows.Close()
			return nil, err
		}
		cm.Created = time.Unix(0, created)
		maps = append(maps, cm)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range maps {
		if err := db.loadColorMap(&maps[i]); err != nil {
			return nil, err
		}
	}

	return maps, nil
}

// ColorMap returns the saved colour map id.
func (db *PaletteDB) ColorMap(id string) (*ColorMap, error) {
	cm := &ColorMap{ID: id}
	var created int64
	switch err := db.db.QueryRow("SELECT label, created FROM color_map WHERE id = ?", id).Scan(&cm.Label, &created); err {
	case sql.ErrNoRows:
		return nil, fmt.Errorf("%w: colour map %q", ErrNotFound, id)
	case nil:
		cm.Created = time.Unix(0, created)
		if err := db.loadColorMap(cm); err != nil {
			return nil, err
		}
		return cm, nil
	default:
		return nil, err
	}
}

// RemoveColorMap deletes the saved colour map id.
func (db *PaletteDB) RemoveColorMap(id string) error {
	result, err := db.db.Exec("DELETE FROM color_map WHERE id = ?", id)
	return removed(result, err, "colour map", id)
}

// jsonColor is either [r, g, b, a] or any string Parse accepts.
type jsonColor gbcolor.Color

func (c *jsonColor) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := gbcolor.Parse(s)
		if err != nil {
			return err
		}
		*c = jsonColor(v)
		return nil
	}

	var a []float64
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if len(a) != 3 && len(a) != 4 {
		return fmt.Errorf("%w: %s", errBadColor, b)
	}
	for _, v := range a[:3] {
		if v < 0 || v > 255 {
			return fmt.Errorf("%w: %s", errBadColor, b)
		}
	}

	alpha := 1.0
	if len(a) == 4 {
		alpha = a[3]
		// Older settings stored alpha as 0-255
		if alpha > 1 {
			alpha /= 255
		}
	}
	*c = jsonColor{R: uint8(a[0]), G: uint8(a[1]), B: uint8(a[2]), A: alpha}
	return nil
}

type jsonSettings struct {
	Palettes  []jsonPaletteGroup `json:"palettes"`
	ColorMaps []jsonColorMap     `json:"colorMaps"`
}

type jsonPaletteGroup struct {
	ID       json.Number   `json:"id"`
	Label    string        `json:"label"`
	Palettes [][]jsonColor `json:"palettes"`
}

type jsonColorMap struct {
	ID    json.Number          `json:"id"`
	Label string               `json:"label"`
	Map   map[string]jsonColor `json:"map"`
}

func importID(n json.Number) string {
	if n == "" {
		return uuid.NewString()
	}
	return n.String()
}

// mapKey reads a colour map key, either a packed colour or a colour string.
func mapKey(k string) (uint32, error) {
	if v, err := strconv.ParseUint(k, 10, 32); err == nil {
		return uint32(v), nil
	}
	c, err := gbcolor.Parse(k)
	if err != nil {
		return 0, err
	}
	return c.Key(), nil
}

// ImportJSON replaces every saved palette group and colour map with those
// in the settings file.
func (db *PaletteDB) ImportJSON(file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	var settings jsonSettings
	if err := json.Unmarshal(b, &settings); err != nil {
		return err
	}

	base := time.Now().UnixNano()

	return db.inTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM palette_group"); err != nil {
			return err
		}

		if _, err := tx.Exec("DELETE FROM color_map"); err != nil {
			return err
		}

		for i, g := range settings.Palettes {
			var set palette.Set
			for j, jp := range g.Palettes {
				colors := make([]gbcolor.Color, len(jp))
				for k, c := range jp {
					colors[k] = gbcolor.Color(c)
				}
				p, err := palette.New(colors...)
				if err != nil {
					return fmt.Errorf("palette group %q palette %d: %w", g.Label, j, err)
				}
				set = append(set, p)
			}
			if err := addPalettes(tx, importID(g.ID), g.Label, base+int64(i), set); err != nil {
				return err
			}
		}

		for i, cm := range settings.ColorMaps {
			keys := make([]string, 0, len(cm.Map))
			for k := range cm.Map {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			m := make(map[uint32]gbcolor.Color, len(cm.Map))
			for _, k := range keys {
				source, err := mapKey(k)
				if err != nil {
					return fmt.Errorf("colour map %q: %w", cm.Label, err)
				}
				m[source] = gbcolor.Color(cm.Map[k])
			}
			if err := addColorMap(tx, importID(cm.ID), cm.Label, base+int64(i), m); err != nil {
				return err
			}
		}

		return nil
	})
}

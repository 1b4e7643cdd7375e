// Package config loads gbtiles settings from a TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/gbtiles/export"
	"github.com/bodgit/gbtiles/gbcolor"
	"github.com/bodgit/gbtiles/palette"
	"github.com/bodgit/gbtiles/tile"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable override, so
// export.tile_offset is read from GBTILES_EXPORT_TILE_OFFSET.
const EnvPrefix = "GBTILES"

// Config holds application configuration.
type Config struct {
	Tile     TileConfig     `mapstructure:"tile"`
	Export   ExportConfig   `mapstructure:"export"`
	Database DatabaseConfig `mapstructure:"database"`
	// Palettes lists the default palette set, four colours per entry.
	Palettes []string `mapstructure:"palettes"`
}

// TileConfig holds the tile grid dimensions.
type TileConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// ExportConfig holds emitter settings.
type ExportConfig struct {
	Format         string `mapstructure:"format"`
	TileOffset     int    `mapstructure:"tile_offset"`
	PaletteOffset  int    `mapstructure:"palette_offset"`
	IncludePalette bool   `mapstructure:"include_palette"`
	IncludeMap     bool   `mapstructure:"include_map"`
	Wrap           int    `mapstructure:"wrap"`
	MapWrap        int    `mapstructure:"map_wrap"`
	CodeArea       int    `mapstructure:"code_area"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	v.SetDefault("tile.width", tile.DefaultWidth)
	v.SetDefault("tile.height", tile.DefaultHeight)
	v.SetDefault("export.format", "c")
	v.SetDefault("export.tile_offset", 0)
	v.SetDefault("export.palette_offset", 0)
	v.SetDefault("export.include_palette", true)
	v.SetDefault("export.include_map", true)
	v.SetDefault("export.wrap", export.DefaultWrap)
	v.SetDefault("export.map_wrap", export.DefaultMapWrap)
	v.SetDefault("export.code_area", export.DefaultCodeArea)
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "gbtiles", "gbtiles.db"))
	v.SetDefault("palettes", []string{})
}

// Load reads configuration from path, or when path is empty from
// $GBTILES_CONFIG or ~/.config/gbtiles/config.toml. A missing default file
// is not an error. Env var overrides use prefix GBTILES_.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(home, ".config", "gbtiles"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Flags returns the emitter flags.
func (c Config) Flags() export.Flags {
	return export.Flags{
		IncludePalette: c.Export.IncludePalette,
		IncludeMap:     c.Export.IncludeMap,
		Wrap:           c.Export.Wrap,
		MapWrap:        c.Export.MapWrap,
		CodeArea:       c.Export.CodeArea,
	}
}

// TileOptions returns the encoder offsets.
func (c Config) TileOptions() tile.Options {
	return tile.Options{
		TileOffset:    c.Export.TileOffset,
		PaletteOffset: c.Export.PaletteOffset,
	}
}

// PaletteSet parses the configured palettes. It returns nil if none are
// configured.
func (c Config) PaletteSet() (palette.Set, error) {
	return ParsePalettes(c.Palettes)
}

// ParsePalettes parses each entry as a list of exactly four colours.
func ParsePalettes(entries []string) (palette.Set, error) {
	var set palette.Set
	for i, e := range entries {
		colors, err := gbcolor.ParseList(e)
		if err != nil {
			return nil, fmt.Errorf("palette %d: %w", i, err)
		}
		p, err := palette.New(colors...)
		if err != nil {
			return nil, fmt.Errorf("palette %d: %w", i, err)
		}
		set = append(set, p)
	}
	return set, nil
}

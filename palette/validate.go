package palette

import "github.com/bodgit/gbtiles/raster"

// Reasons a tile fails validation.
const (
	ReasonTooManyColors = "too many colors"
	ReasonNoMatch       = "no palette match"
)

// TileValidation is the outcome of checking a single tile.
type TileValidation struct {
	ID      int
	Valid   bool
	Palette int // index into the Set, -1 when not valid
	Colors  raster.ColorSet
	Reason  string
}

// Validation is the outcome of checking every tile of a grid.
type Validation struct {
	Tiles   []TileValidation
	Invalid []TileValidation
}

// Valid reports whether every tile matched a palette.
func (v *Validation) Valid() bool {
	return len(v.Invalid) == 0
}

// InvalidIDs returns the ids of the tiles that failed.
func (v *Validation) InvalidIDs() []int {
	ids := make([]int, len(v.Invalid))
	for i, t := range v.Invalid {
		ids[i] = t.ID
	}
	return ids
}

// Match returns the lowest index of a palette in set that contains every
// colour in s. The boolean is false with a reason when nothing matches.
func Match(s raster.ColorSet, set Set) (int, string, bool) {
	if len(s) > Size {
		return -1, ReasonTooManyColors, false
	}
	for i, p := range set {
		if p.Contains(s) {
			return i, "", true
		}
	}
	return -1, ReasonNoMatch, false
}

// Validate checks every tile in src against set. It never fails; invalid tiles
// are reported in the result.
func Validate(src raster.Source, set Set) *Validation {
	n := src.Grid().Len()
	v := &Validation{
		Tiles: make([]TileValidation, n),
	}

	for id := 0; id < n; id++ {
		colors := src.Colors(id)
		i, reason, ok := Match(colors, set)
		v.Tiles[id] = TileValidation{
			ID:      id,
			Valid:   ok,
			Palette: i,
			Colors:  colors,
			Reason:  reason,
		}
		if !ok {
			v.Invalid = append(v.Invalid, v.Tiles[id])
		}
	}

	return v
}

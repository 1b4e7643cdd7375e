package gbcolor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var errSyntax = errors.New("gbcolor: invalid colour")

func parseHex(s string) (Color, error) {
	if len(s) != 6 && len(s) != 8 {
		return Color{}, errSyntax
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, errSyntax
	}
	if len(s) == 6 {
		return Opaque(uint8(v>>16), uint8(v>>8), uint8(v)), nil
	}
	return Color{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: float64(v&0xff) / 0xff,
	}, nil
}

func parseChannel(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, errSyntax
	}
	return uint8(v), nil
}

// Parse reads a colour written as #rrggbb, #rrggbbaa, rgb(r,g,b) or
// rgba(r,g,b,a) where a is a fraction between 0 and 1.
func Parse(s string) (Color, error) {
	s = strings.ToLower(strings.Join(strings.Fields(s), ""))

	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}

	var args []string
	switch {
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		args = strings.Split(s[5:len(s)-1], ",")
		if len(args) != 4 {
			return Color{}, errSyntax
		}
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		args = strings.Split(s[4:len(s)-1], ",")
		if len(args) != 3 {
			return Color{}, errSyntax
		}
	default:
		return Color{}, errSyntax
	}

	var c Color
	var err error
	if c.R, err = parseChannel(args[0]); err != nil {
		return Color{}, err
	}
	if c.G, err = parseChannel(args[1]); err != nil {
		return Color{}, err
	}
	if c.B, err = parseChannel(args[2]); err != nil {
		return Color{}, err
	}

	c.A = 1
	if len(args) == 4 {
		if c.A, err = strconv.ParseFloat(args[3], 64); err != nil || c.A < 0 || c.A > 1 {
			return Color{}, errSyntax
		}
	}

	return c, nil
}

// ParseList reads a list of colours separated by commas or whitespace, for
// example "#000000, rgb(85,85,85) #aaaaaa".
func ParseList(s string) ([]Color, error) {
	var (
		fields []string
		depth  int
		start  int
	)
	for i, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')':
			depth--
		case depth == 0 && (r == ',' || r == ' ' || r == '\t' || r == '\n'):
			fields = append(fields, s[start:i])
			start = i + 1
		}
	}
	fields = append(fields, s[start:])

	var colors []Color
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			continue
		}
		c, err := Parse(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, f)
		}
		colors = append(colors, c)
	}

	return colors, nil
}

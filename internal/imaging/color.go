package imaging

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses a hex color string such as "#FF0000", "00ff00", "#f00"
// or "#FF000080" (with alpha). The leading '#' is optional.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}

	alpha := uint8(255)
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha in color %q: %w", s, err)
		}
		alpha = uint8(a)
		s = s[:7]
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// HexColor formats c as "#RRGGBB", ignoring alpha.
func HexColor(c color.Color) string {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		// Fully transparent colors carry no hue information.
		return "#000000"
	}
	return strings.ToUpper(cf.Hex())
}

// contrastText picks black or white, whichever reads better on bg.
func contrastText(bg color.Color) color.Color {
	cf, ok := colorful.MakeColor(bg)
	if !ok {
		return color.Black
	}
	l, _, _ := cf.Lab()
	if l > 0.6 {
		return color.Black
	}
	return color.White
}

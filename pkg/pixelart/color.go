package pixelart

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ErrNotInPalette is returned by SelectColor for colors outside the palette.
var ErrNotInPalette = errors.New("color is not in the palette")

// Color is a 24-bit RGB color.
type Color struct {
	R, G, B uint8
}

// Common colors.
var (
	White = Color{0xFF, 0xFF, 0xFF}
	Black = Color{0x00, 0x00, 0x00}
	// GridLine is the color of the optional grid drawn by Render.
	GridLine = Color{0xE0, 0xE0, 0xE0}
)

var palette = [...]Color{
	{0x00, 0x00, 0x00}, // black
	{0xFF, 0xFF, 0xFF}, // white
	{0xFF, 0x00, 0x00}, // red
	{0xFF, 0xA5, 0x00}, // orange
	{0xFF, 0xFF, 0x00}, // yellow
	{0x00, 0x80, 0x00}, // green
	{0x00, 0x00, 0xFF}, // blue
	{0x4B, 0x00, 0x82}, // indigo
	{0xEE, 0x82, 0xEE}, // violet
	{0xA5, 0x2A, 0x2A}, // brown
	{0x80, 0x80, 0x80}, // gray
	{0xC0, 0xC0, 0xC0}, // silver
}

// Palette returns the twelve colors a canvas can paint with, in display order.
func Palette() []Color {
	out := make([]Color, len(palette))
	copy(out, palette[:])
	return out
}

// InPalette reports whether c is one of the palette colors.
func InPalette(c Color) bool {
	for _, p := range palette {
		if p == c {
			return true
		}
	}
	return false
}

// ParseColor parses a "#RRGGBB" string. The leading '#' is optional and the
// digits are case-insensitive.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// String returns the color as "#RRGGBB".
func (c Color) String() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// RGBA converts c to an opaque image color.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}

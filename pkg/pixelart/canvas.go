// Package pixelart is the model behind the product image editor: a fixed
// 64×64 grid of palette colors that can be rendered and exported as a PNG
// data URL.
package pixelart

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"
	"sync"
)

const (
	// GridSize is the number of cells per row and per column.
	GridSize = 64
	// PixelSize is the edge length of one cell in rendered pixels.
	PixelSize = 5
	// ImageSize is the edge length of a rendered canvas.
	ImageSize = GridSize * PixelSize
)

// DataURLPrefix starts every exported image.
const DataURLPrefix = "data:image/png;base64,"

// Canvas is a 64×64 grid of colors plus the active drawing color. Once
// exported the canvas is closed and ignores further edits.
type Canvas struct {
	mu     sync.RWMutex
	cells  [GridSize][GridSize]Color
	active Color
	closed bool
}

// New returns an all-white canvas with black as the active color.
func New() *Canvas {
	c := &Canvas{active: Black}
	c.fill(White)
	return c
}

func (c *Canvas) fill(col Color) {
	for r := range c.cells {
		for k := range c.cells[r] {
			c.cells[r][k] = col
		}
	}
}

// Paint sets one cell. Coordinates outside the grid are ignored.
func (c *Canvas) Paint(row, col int, color Color) {
	if row < 0 || row >= GridSize || col < 0 || col >= GridSize {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.cells[row][col] = color
}

// PaintActive paints one cell with the active color.
func (c *Canvas) PaintActive(row, col int) {
	c.Paint(row, col, c.Active())
}

// At returns the color of a cell. ok is false outside the grid.
func (c *Canvas) At(row, col int) (Color, bool) {
	if row < 0 || row >= GridSize || col < 0 || col >= GridSize {
		return Color{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cells[row][col], true
}

// Clear resets every cell to white. The active color is kept.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.fill(White)
}

// SelectColor changes the active color. Only palette colors are accepted.
func (c *Canvas) SelectColor(color Color) error {
	if !InPalette(color) {
		return fmt.Errorf("select %s: %w", color, ErrNotInPalette)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = color
	return nil
}

// Active returns the active color.
func (c *Canvas) Active() Color {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// Closed reports whether the canvas has been exported.
func (c *Canvas) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Render draws the canvas at PixelSize pixels per cell. With gridLines set
// the cell borders are drawn in GridLine color, as the editor shows them.
func (c *Canvas) Render(gridLines bool) *image.RGBA {
	c.mu.RLock()
	defer c.mu.RUnlock()

	img := image.NewRGBA(image.Rect(0, 0, ImageSize, ImageSize))
	for r := 0; r < GridSize; r++ {
		for k := 0; k < GridSize; k++ {
			rect := image.Rect(k*PixelSize, r*PixelSize, (k+1)*PixelSize, (r+1)*PixelSize)
			draw.Draw(img, rect, &image.Uniform{C: c.cells[r][k].RGBA()}, image.Point{}, draw.Src)
		}
	}
	if gridLines {
		line := GridLine.RGBA()
		for i := 0; i < GridSize; i++ {
			for p := 0; p < ImageSize; p++ {
				img.SetRGBA(i*PixelSize, p, line)
				img.SetRGBA(p, i*PixelSize, line)
			}
		}
		for p := 0; p < ImageSize; p++ {
			img.SetRGBA(ImageSize-1, p, line)
			img.SetRGBA(p, ImageSize-1, line)
		}
	}
	return img
}

// Export encodes the canvas as a PNG data URL and closes it. The exported
// image has no grid lines.
func (c *Canvas) Export() (string, error) {
	img := c.Render(false)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	return DataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeDataURL decodes a PNG data URL as produced by Export.
func DecodeDataURL(dataURL string) (image.Image, error) {
	payload, ok := strings.CutPrefix(dataURL, DataURLPrefix)
	if !ok {
		return nil, errors.New("not a PNG data URL")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid PNG payload: %w", err)
	}
	return img, nil
}

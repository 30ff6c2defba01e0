package pixelart_test

import (
	"strings"
	"testing"

	"etalase/pkg/pixelart"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c := pixelart.New()

	assert.Equal(t, pixelart.Black, c.Active())
	for r := 0; r < pixelart.GridSize; r++ {
		for k := 0; k < pixelart.GridSize; k++ {
			got, ok := c.At(r, k)
			require.True(t, ok)
			require.Equal(t, pixelart.White, got)
		}
	}
}

func TestCanvas_Paint(t *testing.T) {
	red := pixelart.Color{R: 0xFF}
	c := pixelart.New()

	c.Paint(0, 0, red)
	c.Paint(63, 63, red)
	got, _ := c.At(0, 0)
	assert.Equal(t, red, got)
	got, _ = c.At(63, 63)
	assert.Equal(t, red, got)

	for _, p := range [][2]int{{-1, 0}, {0, -1}, {64, 0}, {0, 64}, {1000, 1000}} {
		c.Paint(p[0], p[1], red)
		_, ok := c.At(p[0], p[1])
		assert.False(t, ok)
	}

	painted := 0
	for r := 0; r < pixelart.GridSize; r++ {
		for k := 0; k < pixelart.GridSize; k++ {
			if got, _ := c.At(r, k); got == red {
				painted++
			}
		}
	}
	assert.Equal(t, 2, painted, "out-of-range paints change nothing")
}

func TestCanvas_PaintActive(t *testing.T) {
	blue, err := pixelart.ParseColor("#0000FF")
	require.NoError(t, err)

	c := pixelart.New()
	require.NoError(t, c.SelectColor(blue))
	c.PaintActive(10, 20)

	got, _ := c.At(10, 20)
	assert.Equal(t, blue, got)
}

func TestCanvas_Clear(t *testing.T) {
	c := pixelart.New()
	require.NoError(t, c.SelectColor(pixelart.Palette()[2]))
	for r := 0; r < pixelart.GridSize; r++ {
		for k := 0; k < pixelart.GridSize; k++ {
			c.PaintActive(r, k)
		}
	}

	c.Clear()

	cleared := 0
	for r := 0; r < pixelart.GridSize; r++ {
		for k := 0; k < pixelart.GridSize; k++ {
			if got, _ := c.At(r, k); got == pixelart.White {
				cleared++
			}
		}
	}
	assert.Equal(t, 4096, cleared)
	assert.Equal(t, pixelart.Palette()[2], c.Active(), "active color survives a clear")
}

func TestCanvas_SelectColor(t *testing.T) {
	c := pixelart.New()

	err := c.SelectColor(pixelart.Color{R: 0x12, G: 0x34, B: 0x56})
	assert.ErrorIs(t, err, pixelart.ErrNotInPalette)
	assert.Equal(t, pixelart.Black, c.Active())

	for _, col := range pixelart.Palette() {
		require.NoError(t, c.SelectColor(col))
		assert.Equal(t, col, c.Active())
	}
}

func TestPalette(t *testing.T) {
	want := []string{
		"#000000", "#FFFFFF", "#FF0000", "#FFA500",
		"#FFFF00", "#008000", "#0000FF", "#4B0082",
		"#EE82EE", "#A52A2A", "#808080", "#C0C0C0",
	}
	got := pixelart.Palette()
	require.Len(t, got, len(want))
	for i, col := range got {
		assert.Equal(t, want[i], col.String())
	}

	got[0] = pixelart.White
	assert.Equal(t, pixelart.Black, pixelart.Palette()[0], "Palette returns a copy")
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    pixelart.Color
		wantErr bool
	}{
		{in: "#FFA500", want: pixelart.Color{R: 0xFF, G: 0xA5}},
		{in: "ee82ee", want: pixelart.Color{R: 0xEE, G: 0x82, B: 0xEE}},
		{in: " #000000 ", want: pixelart.Black},
		{in: "#FFF", wantErr: true},
		{in: "#GGGGGG", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := pixelart.ParseColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanvas_Render(t *testing.T) {
	c := pixelart.New()
	c.Paint(1, 2, pixelart.Black)

	plain := c.Render(false)
	assert.Equal(t, pixelart.ImageSize, plain.Bounds().Dx())
	assert.Equal(t, pixelart.ImageSize, plain.Bounds().Dy())
	assert.Equal(t, pixelart.White.RGBA(), plain.RGBAAt(0, 0))
	// cell (row 1, col 2) covers x 10..14, y 5..9
	assert.Equal(t, pixelart.Black.RGBA(), plain.RGBAAt(12, 7))
	assert.Equal(t, pixelart.White.RGBA(), plain.RGBAAt(15, 7))

	grid := c.Render(true)
	assert.Equal(t, pixelart.GridLine.RGBA(), grid.RGBAAt(0, 3))
	assert.Equal(t, pixelart.GridLine.RGBA(), grid.RGBAAt(3, 5))
	assert.Equal(t, pixelart.White.RGBA(), grid.RGBAAt(3, 3))
}

func TestCanvas_Export(t *testing.T) {
	c := pixelart.New()
	c.Paint(0, 0, pixelart.Black)
	c.Paint(63, 0, pixelart.Palette()[6])

	dataURL, err := c.Export()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))

	img, err := pixelart.DecodeDataURL(dataURL)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 320, img.Bounds().Dy())

	r, g, b, _ := img.At(2, 2).RGBA()
	assert.Equal(t, [3]uint32{0, 0, 0}, [3]uint32{r >> 8, g >> 8, b >> 8})
	r, g, b, _ = img.At(2, 317).RGBA()
	assert.Equal(t, [3]uint32{0, 0, 0xFF}, [3]uint32{r >> 8, g >> 8, b >> 8})
	r, g, b, _ = img.At(5, 2).RGBA()
	assert.Equal(t, [3]uint32{0xFF, 0xFF, 0xFF}, [3]uint32{r >> 8, g >> 8, b >> 8}, "no grid lines in the export")

	assert.True(t, c.Closed())
	c.Paint(5, 5, pixelart.Black)
	got, _ := c.At(5, 5)
	assert.Equal(t, pixelart.White, got, "an exported canvas ignores edits")
}

func TestDecodeDataURL_Rejects(t *testing.T) {
	_, err := pixelart.DecodeDataURL("data:image/jpeg;base64,AAAA")
	assert.Error(t, err)
	_, err = pixelart.DecodeDataURL("data:image/png;base64,!!!")
	assert.Error(t, err)
	_, err = pixelart.DecodeDataURL("data:image/png;base64,AAAA")
	assert.Error(t, err)
}

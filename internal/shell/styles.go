package shell

import (
	"fmt"
	"io"
	"strings"

	"etalase/internal/i18n"
	"etalase/internal/models"
	"etalase/pkg/pixelart"

	"github.com/charmbracelet/lipgloss"
)

// styles are bound to the shell's writer so that a non-terminal output, such
// as a test buffer, gets plain text.
type styles struct {
	renderer *lipgloss.Renderer
	Title    lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Cell     lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		renderer: r,
		Title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A")),
		Muted:    r.NewStyle().Foreground(lipgloss.Color("#808080")),
		Success:  r.NewStyle().Foreground(lipgloss.Color("#8BC34A")),
		Warning:  r.NewStyle().Foreground(lipgloss.Color("#FFC107")),
		Error:    r.NewStyle().Foreground(lipgloss.Color("#e53935")),
		Cell:     r.NewStyle().Padding(0, 1),
	}
}

// productTable renders the catalog the way the shop page lays out its cards:
// one row per product with its stock status and optional info line.
func (st styles) productTable(tr i18n.Translator, products []models.Product) string {
	var sb strings.Builder
	sb.WriteString(st.Title.Render(tr.T("products.title")))
	sb.WriteString("\n")
	if len(products) == 0 {
		sb.WriteString(st.Muted.Render(tr.T("products.empty")))
		sb.WriteString("\n")
		return sb.String()
	}

	rows := make([][]string, 0, len(products))
	for _, p := range products {
		status := st.Success.Render(tr.T("products.available"))
		if p.Stock() == models.StockOutOfStock {
			status = st.Warning.Render(tr.T("products.out_of_stock"))
		}
		image := ""
		if p.HasImage() {
			image = tr.T("products.custom_image")
		}
		rows = append(rows, []string{fmt.Sprintf("#%d", p.ID), p.Name, fmt.Sprint(p.Quantity), status, image})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i, row := range rows {
		for k, cell := range row {
			sb.WriteString(st.Cell.Width(widths[k] + 2).Render(cell))
		}
		sb.WriteString("\n")
		if info := products[i].Info; info != "" {
			sb.WriteString(st.Muted.Render("      " + info))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// swatch renders a color as a two-character block followed by its hex code.
func (st styles) swatch(c pixelart.Color) string {
	block := st.renderer.NewStyle().Background(lipgloss.Color(c.String())).Render("  ")
	return block + " " + c.String()
}

// preview renders the canvas at one character per cell, halving the rows by
// drawing two cells per character with the upper half block.
func (st styles) preview(c *pixelart.Canvas) string {
	var sb strings.Builder
	for r := 0; r < pixelart.GridSize; r += 2 {
		for k := 0; k < pixelart.GridSize; k++ {
			top, _ := c.At(r, k)
			bottom, _ := c.At(r+1, k)
			sb.WriteString(st.renderer.NewStyle().
				Foreground(lipgloss.Color(top.String())).
				Background(lipgloss.Color(bottom.String())).
				Render("▀"))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

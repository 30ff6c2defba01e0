package shell

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"etalase/pkg/pixelart"
)

// editor dispatches the "editor" subcommands. A saved image is kept until the
// next create; opening the editor again starts from a blank canvas.
func (s *Shell) editor(_ context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	if !s.requireAdmin() {
		return nil
	}

	sub, rest := strings.ToLower(args[0]), args[1:]
	if sub == "open" {
		s.canvas = pixelart.New()
		s.penDown = false
		s.success(s.tr.Tf("editor.opened", s.canvas.Active()))
		return nil
	}
	if s.canvas == nil {
		s.warn(s.tr.T("editor.not_open"))
		return nil
	}

	switch sub {
	case "palette":
		s.println(s.tr.T("editor.palette"))
		for _, c := range pixelart.Palette() {
			line := "  " + s.st.swatch(c)
			if c == s.canvas.Active() {
				line += " *"
			}
			s.println(line)
		}
	case "color":
		if len(rest) != 1 {
			return errUsage
		}
		c, err := pixelart.ParseColor(rest[0])
		if err != nil {
			return errUsage
		}
		if err := s.canvas.SelectColor(c); err != nil {
			if errors.Is(err, pixelart.ErrNotInPalette) {
				s.warn(s.tr.Tf("editor.not_in_palette", c))
				return nil
			}
			return err
		}
		s.println(s.tr.Tf("editor.color", c))
	case "pen":
		if len(rest) != 1 {
			return errUsage
		}
		switch strings.ToLower(rest[0]) {
		case "down":
			s.penDown = true
			s.println(s.tr.T("editor.pen_down"))
		case "up":
			s.penDown = false
			s.println(s.tr.T("editor.pen_up"))
		default:
			return errUsage
		}
	case "paint":
		if len(rest) != 2 {
			return errUsage
		}
		row, err1 := strconv.Atoi(rest[0])
		col, err2 := strconv.Atoi(rest[1])
		if err1 != nil || err2 != nil {
			return errUsage
		}
		s.canvas.PaintActive(row, col)
	case "stroke":
		if len(rest) == 0 {
			return errUsage
		}
		if !s.penDown {
			s.warn(s.tr.T("editor.pen_is_up"))
			return nil
		}
		points := make([][2]int, 0, len(rest))
		for _, arg := range rest {
			p, ok := parsePoint(arg)
			if !ok {
				return errUsage
			}
			points = append(points, p)
		}
		for _, p := range points {
			s.canvas.PaintActive(p[0], p[1])
		}
	case "clear":
		s.canvas.Clear()
		s.println(s.tr.T("editor.cleared"))
	case "preview":
		s.println(s.st.preview(s.canvas))
	case "save":
		dataURL, err := s.canvas.Export()
		if err != nil {
			return err
		}
		s.image = &dataURL
		s.closeEditor()
		s.success(s.tr.T("editor.saved"))
	case "cancel":
		s.closeEditor()
		s.println(s.tr.T("editor.cancelled"))
	default:
		return errUsage
	}
	return nil
}

func (s *Shell) closeEditor() {
	s.canvas = nil
	s.penDown = false
}

// parsePoint reads "row,col".
func parsePoint(arg string) ([2]int, bool) {
	r, c, ok := strings.Cut(arg, ",")
	if !ok {
		return [2]int{}, false
	}
	row, err1 := strconv.Atoi(r)
	col, err2 := strconv.Atoi(c)
	if err1 != nil || err2 != nil {
		return [2]int{}, false
	}
	return [2]int{row, col}, true
}

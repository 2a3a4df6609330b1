package menubar

import (
	"fmt"
	"io"
	"strings"
)

// Render writes m in the xbar/SwiftBar plugin text format: the first line
// is the status-bar title, "---" separates it from the dropdown.
func Render(w io.Writer, m Menu) error {
	var b strings.Builder

	title := m.Glyph
	if m.Title != "" {
		title += " " + m.Title
	}
	b.WriteString(line(title, param("color", string(m.Color)), param("tooltip", m.Tooltip)))
	b.WriteString("---\n")

	for i, sec := range m.Sections {
		if i > 0 {
			b.WriteString("---\n")
		}
		if sec.Title != "" {
			b.WriteString(line(sec.Title, "size=11", param("color", string(colorMuted))))
		}
		for _, it := range sec.Items {
			text := it.Title
			if it.Glyph != "" {
				text = it.Glyph + " " + text
			}
			if it.Subtitle != "" {
				text += ": " + it.Subtitle
			}
			b.WriteString(line(text, param("href", it.Href)))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func line(text string, params ...string) string {
	text = sanitize(text)
	var ps []string
	for _, p := range params {
		if p != "" {
			ps = append(ps, p)
		}
	}
	if len(ps) == 0 {
		return text + "\n"
	}
	return text + " | " + strings.Join(ps, " ") + "\n"
}

func param(key, value string) string {
	if value == "" {
		return ""
	}
	if strings.ContainsAny(value, " \t") {
		return fmt.Sprintf("%s=%q", key, strings.ReplaceAll(value, `"`, "'"))
	}
	return key + "=" + value
}

// sanitize keeps plugin control characters out of display text.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "|", "¦")
	s = strings.ReplaceAll(s, "\n", " ")
	if strings.HasPrefix(s, "---") {
		s = "·" + strings.TrimLeft(s, "-")
	}
	return s
}

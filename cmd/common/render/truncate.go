package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// StringWidth returns the display width of s in terminal cells, ignoring ANSI escapes.
func StringWidth(s string) int {
	return lipgloss.Width(s)
}

// Truncate shortens s to maxWidth cells, ending in "…" when anything was cut.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth == 1 {
		return "…"
	}

	result := make([]rune, 0, len(s))
	width := 0
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if width+rw > maxWidth-1 {
			break
		}
		result = append(result, r)
		width += rw
	}
	return string(result) + "…"
}

// PadRight pads s with spaces to width cells, truncating when it is wider.
func PadRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	w := StringWidth(s)
	if w >= width {
		return Truncate(s, width)
	}
	return s + strings.Repeat(" ", width-w)
}

// Quote renders raw input for display, making control characters visible.
func Quote(s string) string {
	return strings.Map(func(r rune) rune {
		if r < ' ' || r == 0x7f {
			return '·'
		}
		return r
	}, s)
}

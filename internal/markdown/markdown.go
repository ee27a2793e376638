// Package markdown renders model answers, which are usually markdown, for
// display in a terminal.
package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// DefaultWidth is used when the caller has no terminal width to offer.
const DefaultWidth = 80

// Render formats md for a terminal of the given width. The "notty" style is
// used so the output stays readable when piped.
func Render(md string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("notty"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}

	out, err := r.Render(md)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}

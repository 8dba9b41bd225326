package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewRenderer returns a function that renders markdown using glamour.
// When plain is true, or the renderer cannot be built, markdown is returned
// untouched so output can be piped.
func NewRenderer(plain bool) func(string) (string, error) {
	passthrough := func(markdown string) (string, error) { return markdown, nil }
	if plain {
		return passthrough
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return passthrough
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

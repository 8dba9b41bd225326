package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the statemap banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Teal to blue, one shade per line.
	lines := []struct {
		text  string
		color string
	}{
		{"      _        _                              ", "#2dd4bf"},
		{"  ___| |_ __ _| |_ ___ _ __ ___   __ _ _ __   ", "#22d3ee"},
		{" / __| __/ _` | __/ _ \\ '_ ` _ \\ / _` | '_ \\  ", "#38bdf8"},
		{" \\__ \\ || (_| | ||  __/ | | | | | (_| | |_) | ", "#60a5fa"},
		{" |___/\\__\\__,_|\\__\\___|_| |_| |_|\\__,_| .__/  ", "#818cf8"},
		{"                                      |_|     ", "#a78bfa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

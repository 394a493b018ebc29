package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the bigraph banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{" _     _                       _     ", "#818cf8"},
		{"| |__ (_) __ _ _ __ __ _ _ __ | |__  ", "#a78bfa"},
		{"| '_ \\| |/ _` | '__/ _` | '_ \\| '_ \\ ", "#c084fc"},
		{"| |_) | | (_| | | | (_| | |_) | | | |", "#e879f9"},
		{"|_.__/|_|\\__, |_|  \\__,_| .__/|_| |_|", "#f472b6"},
		{"         |___/          |_|          ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, termenv.String("  "+version).Faint())
	}
	fmt.Fprintln(w)
}

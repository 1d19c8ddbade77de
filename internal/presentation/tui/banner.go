package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"  _   _            __", "#34d399"},
	{" | |_(_)_ _ _  _ / _|____ __", "#2dd4bf"},
	{" |  _| | ' \\ || |  _(_-< '  \\", "#22d3ee"},
	{"  \\__|_|_||_\\_, |_| /__/_|_|_|", "#38bdf8"},
	{"            |__/", "#60a5fa"},
}

// PrintBanner writes the tinyfsm banner to w using the given color profile.
func PrintBanner(w io.Writer, p termenv.Profile) {
	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, p.String(line.text).Foreground(p.Color(line.color)))
	}
	fmt.Fprintln(w)
}

package tui

import (
	"hash/fnv"
	"os"

	"github.com/aretw0/tinyfsm/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ProfileFor picks the color profile for output written to f.
// Anything that is not a terminal gets plain ASCII.
func ProfileFor(f *os.File) termenv.Profile {
	if !IsTerminal(f) {
		return termenv.Ascii
	}
	return termenv.NewOutput(f).EnvColorProfile()
}

// Width returns the terminal width of f, or fallback when it cannot be read.
func Width(f *os.File, fallback int) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}

var statePalette = []string{"#34d399", "#60a5fa", "#fbbf24", "#f472b6", "#a78bfa", "#f87171", "#2dd4bf"}

// StateStyler colors state names consistently: a name always maps to the same color.
type StateStyler struct {
	profile termenv.Profile
}

// NewStateStyler creates a styler for the given profile.
func NewStateStyler(p termenv.Profile) StateStyler {
	return StateStyler{profile: p}
}

// Style returns name rendered in its color. The terminal state is dimmed.
func (s StateStyler) Style(name string) string {
	switch name {
	case "":
		return s.dim("-")
	case domain.StateEnd:
		return s.dim(name)
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	color := statePalette[h.Sum32()%uint32(len(statePalette))]
	return s.profile.String(name).Foreground(s.profile.Color(color)).Bold().String()
}

func (s StateStyler) dim(text string) string {
	return s.profile.String(text).Foreground(s.profile.Color("#9ca3af")).Faint().String()
}

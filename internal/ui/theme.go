// Package ui renders the terminal views: auth prompts, the chat REPL,
// the review dashboards and the profile browser.
package ui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// palette is one set of colors, light or dark.
type palette struct {
	title   lipgloss.Color
	subtle  lipgloss.Color
	user    lipgloss.Color
	bot     lipgloss.Color
	err     lipgloss.Color
	star    lipgloss.Color
	bar     lipgloss.Color
	barBg   lipgloss.Color
	accent  lipgloss.Color
	success lipgloss.Color
}

var (
	lightPalette = palette{
		title:   lipgloss.Color("18"),  // dark blue
		subtle:  lipgloss.Color("242"), // gray
		user:    lipgloss.Color("28"),  // green
		bot:     lipgloss.Color("25"),  // blue
		err:     lipgloss.Color("124"), // red
		star:    lipgloss.Color("178"), // gold
		bar:     lipgloss.Color("33"),
		barBg:   lipgloss.Color("254"),
		accent:  lipgloss.Color("88"), // brand red
		success: lipgloss.Color("28"),
	}
	darkPalette = palette{
		title:   lipgloss.Color("81"),
		subtle:  lipgloss.Color("245"),
		user:    lipgloss.Color("114"),
		bot:     lipgloss.Color("75"),
		err:     lipgloss.Color("203"),
		star:    lipgloss.Color("221"),
		bar:     lipgloss.Color("221"),
		barBg:   lipgloss.Color("238"),
		accent:  lipgloss.Color("203"),
		success: lipgloss.Color("114"),
	}
)

// Theme is the process-wide light/dark store. Every view pulls its
// styles from here; Toggle flips the palette for the rest of the
// session.
type Theme struct {
	mu   sync.RWMutex
	dark bool

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Subtle   lipgloss.Style
	UserTag  lipgloss.Style
	BotTag   lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Star     lipgloss.Style
	Bar      lipgloss.Style
	BarBg    lipgloss.Style
	Accent   lipgloss.Style
}

// NewTheme builds a theme for the given mode, "light" or "dark".
func NewTheme(mode string) *Theme {
	t := &Theme{dark: mode == "dark"}
	t.apply()
	return t
}

// DetectMode inspects the terminal background, used when no theme is
// configured.
func DetectMode() string {
	if termenv.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// IsDark reports the current flag.
func (t *Theme) IsDark() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dark
}

// Mode returns "dark" or "light".
func (t *Theme) Mode() string {
	if t.IsDark() {
		return "dark"
	}
	return "light"
}

// Toggle flips light/dark and rebuilds the styles.
func (t *Theme) Toggle() {
	t.mu.Lock()
	t.dark = !t.dark
	t.mu.Unlock()
	t.apply()
}

func (t *Theme) apply() {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := lightPalette
	if t.dark {
		p = darkPalette
	}

	t.Title = lipgloss.NewStyle().Bold(true).Foreground(p.title)
	t.Subtitle = lipgloss.NewStyle().Foreground(p.title)
	t.Subtle = lipgloss.NewStyle().Foreground(p.subtle)
	t.UserTag = lipgloss.NewStyle().Bold(true).Foreground(p.user)
	t.BotTag = lipgloss.NewStyle().Bold(true).Foreground(p.bot)
	t.Error = lipgloss.NewStyle().Foreground(p.err)
	t.Success = lipgloss.NewStyle().Foreground(p.success)
	t.Star = lipgloss.NewStyle().Foreground(p.star)
	t.Bar = lipgloss.NewStyle().Foreground(p.bar)
	t.BarBg = lipgloss.NewStyle().Foreground(p.barBg)
	t.Accent = lipgloss.NewStyle().Bold(true).Foreground(p.accent)
}

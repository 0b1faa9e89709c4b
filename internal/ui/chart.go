package ui

import (
	"fmt"
	"strings"
)

// barWidth is the printable width of a chart bar.
const barWidth = 30

// renderBar draws one horizontal bar scaled against max. A zero max
// renders an empty track.
func (t *Theme) renderBar(value, max float64) string {
	filled := 0
	if max > 0 {
		filled = int((value / max) * barWidth)
		if filled > barWidth {
			filled = barWidth
		}
		if filled < 0 {
			filled = 0
		}
	}
	return t.Bar.Render(strings.Repeat("█", filled)) +
		t.BarBg.Render(strings.Repeat("░", barWidth-filled))
}

// labeledBar is one row of a bar chart: a fixed-width label, the bar
// and the raw value.
func (t *Theme) labeledBar(label string, value, max float64, format string) string {
	return fmt.Sprintf("%-14s %s %s",
		label, t.renderBar(value, max), t.Subtle.Render(fmt.Sprintf(format, value)))
}

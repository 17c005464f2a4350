// Package ui renders the module board and the bus flow for the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/haricheung/signals/internal/devices"
	"github.com/haricheung/signals/internal/host"
	"github.com/haricheung/signals/internal/scope"
	"github.com/haricheung/signals/internal/tables"
	"github.com/haricheung/signals/internal/types"
)

const (
	slotWidth  = 6
	labelWidth = 10
)

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	traceDay   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	traceNight = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
)

// Board renders the visible state of every part on b. The scope trace is
// decoded back from its texture offset, so the picture shows exactly what
// the parts show.
func Board(b *host.Board, offsets *tables.OffsetTable) string {
	var lines []string
	lines = append(lines, titleStyle.Render("SIGNALS"))
	for _, d := range types.Switches {
		lines = append(lines, row(string(d), switchGlyph(b, d)))
	}
	lines = append(lines, row("CHANNEL", channelGlyph(b)))
	lines = append(lines, row("SUBMIT", buttonGlyph(b)))
	lines = append(lines, "")
	lines = append(lines, scopeLines(b, offsets)...)
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func row(label, value string) string {
	return pad(label, labelWidth) + value
}

func active(b *host.Board, d types.Device, name string) bool {
	p := b.Part(d, name)
	return p != nil && p.Active()
}

func switchGlyph(b *host.Board, d types.Device) string {
	switch {
	case active(b, d, devices.PartNorth):
		return "▲ up"
	case active(b, d, devices.PartCenter):
		return "● center"
	case active(b, d, devices.PartSouth):
		return "▼ down"
	}
	return "?"
}

func channelGlyph(b *host.Board) string {
	switch {
	case active(b, types.DeviceSelector, devices.PartLeft):
		return "[A] B"
	case active(b, types.DeviceSelector, devices.PartRight):
		return "A [B]"
	}
	return "?"
}

func buttonGlyph(b *host.Board) string {
	if active(b, types.DeviceButton, devices.PartPressed) {
		return "(pressed)"
	}
	return "( )"
}

func scopeLines(b *host.Board, offsets *tables.OffsetTable) []string {
	var (
		header string
		trace  *host.Part
		style  lipgloss.Style
	)
	switch {
	case active(b, types.DeviceScope, scope.PartBackgroundDayA):
		header, trace, style = "SCOPE  ☀ ch A", b.Part(types.DeviceScope, scope.PartSignalDay), traceDay
	case active(b, types.DeviceScope, scope.PartBackgroundDayB):
		header, trace, style = "SCOPE  ☀ ch B", b.Part(types.DeviceScope, scope.PartSignalDay), traceDay
	case active(b, types.DeviceScope, scope.PartBackgroundNight):
		header, trace, style = "SCOPE  ☾", b.Part(types.DeviceScope, scope.PartSignalNight), traceNight
	default:
		return []string{"SCOPE  (dark)"}
	}
	if trace == nil || !trace.Active() {
		return []string{header, "  (no trace)"}
	}
	sig, ok := offsets.SignalAt(trace.Offset())
	if !ok {
		return []string{header, fmt.Sprintf("  (unknown offset %s)", trace.Offset())}
	}
	out := []string{header}
	for _, l := range Waveform(sig) {
		out = append(out, "  "+style.Render(l))
	}
	return out
}

// Waveform draws s as three rows (positive, zero, negative) with one
// segment per slot and vertical joins between slots at different levels.
//
// Expectations:
//   - Always returns exactly three rows of equal display width
//   - A POSITIVE slot draws on row 0, ZERO on row 1, NEGATIVE on row 2
func Waveform(s types.Signal) []string {
	var rows [3]strings.Builder
	prev := -1
	for _, c := range s.Coefficients() {
		level := levelRow(c)
		if prev >= 0 {
			lo, hi := min(prev, level), max(prev, level)
			for r := range rows {
				switch {
				case prev == level:
					if r == level {
						rows[r].WriteString("─")
					} else {
						rows[r].WriteString(" ")
					}
				case r == lo:
					if lo == prev {
						rows[r].WriteString("┐")
					} else {
						rows[r].WriteString("┌")
					}
				case r == hi:
					if hi == prev {
						rows[r].WriteString("┘")
					} else {
						rows[r].WriteString("└")
					}
				case r > lo && r < hi:
					rows[r].WriteString("│")
				default:
					rows[r].WriteString(" ")
				}
			}
		}
		for r := range rows {
			if r == level {
				rows[r].WriteString(strings.Repeat("─", slotWidth))
			} else {
				rows[r].WriteString(strings.Repeat(" ", slotWidth))
			}
		}
		prev = level
	}
	return []string{rows[0].String(), rows[1].String(), rows[2].String()}
}

func levelRow(c types.Coefficient) int {
	switch c {
	case types.Positive:
		return 0
	case types.Negative:
		return 2
	}
	return 1
}

// pad right-fills s with spaces to n display columns, accounting for wide runes.
func pad(s string, n int) string {
	return runewidth.FillRight(s, n)
}


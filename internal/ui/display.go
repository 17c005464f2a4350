package ui

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/haricheung/signals/internal/types"
)

var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	strikeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	stateStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	effectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

var deviceEmoji = map[types.Device]string{
	types.DeviceSwitch1:  "🎚",
	types.DeviceSwitch2:  "🎚",
	types.DeviceSwitch3:  "🎚",
	types.DeviceSelector: "🔀",
	types.DeviceButton:   "🔴",
	types.DeviceScope:    "📟",
}

// Display prints one flow line per bus message it is fed.
type Display struct {
	feeds []<-chan types.Message
	out   io.Writer
	mu    sync.Mutex
	quiet bool
}

// New creates a Display reading from feeds and writing to out.
func New(out io.Writer, feeds ...<-chan types.Message) *Display {
	return &Display{feeds: feeds, out: out}
}

// SetQuiet suppresses output while true (one-shot mode prints its own summary).
func (d *Display) SetQuiet(q bool) {
	d.mu.Lock()
	d.quiet = q
	d.mu.Unlock()
}

// Run fans in every feed and prints until ctx is cancelled or all feeds close.
func (d *Display) Run(ctx context.Context) {
	merged := make(chan types.Message)
	var wg sync.WaitGroup
	for _, f := range d.feeds {
		wg.Add(1)
		go func(f <-chan types.Message) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-f:
					if !ok {
						return
					}
					select {
					case merged <- msg:
					case <-ctx.Done():
						return
					}
				}
			}
		}(f)
	}
	go func() {
		wg.Wait()
		close(merged)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-merged:
			if !ok {
				return
			}
			d.mu.Lock()
			quiet := d.quiet
			d.mu.Unlock()
			if quiet {
				continue
			}
			if line := FlowLine(msg); line != "" {
				fmt.Fprintln(d.out, line)
			}
		}
	}
}

// FlowLine renders one bus message as a single terminal line. Messages with
// nothing worth showing return "".
func FlowLine(msg types.Message) string {
	switch p := msg.Payload.(type) {
	case types.Lifecycle:
		return "  " + stateStyle.Render("◆ module "+p.State)
	case types.Interaction:
		if p.Device == types.DeviceButton && p.Phase == "end" {
			return dimStyle.Render(fmt.Sprintf("  %s %s released", deviceLabel(p.Device), "submit"))
		}
		return fmt.Sprintf("  %s ──► %s", deviceLabel(p.Device), p.State)
	case types.EffectRequest:
		if p.Sound == types.SoundNone && !p.Punch {
			return ""
		}
		det := string(p.Sound)
		if p.Punch {
			if det != "" {
				det += " + "
			}
			det += "punch"
		}
		return dimStyle.Render("    ♪ ") + effectStyle.Render(det)
	case types.Verdict:
		return verdictLine(p)
	case types.Lights:
		if p.On {
			return "  " + stateStyle.Render("☀ lights on")
		}
		return "  " + stateStyle.Render("☾ lights off")
	}
	return ""
}

func verdictLine(v types.Verdict) string {
	head := passStyle.Render("✅ PASS")
	if v.Outcome != "pass" {
		head = strikeStyle.Render("❌ STRIKE")
	}
	return fmt.Sprintf("  %s %s", head, dimStyle.Render(fmt.Sprintf(
		"tier=%s input=%s generator=%s", v.Tier, v.Input, v.Generator)))
}

func deviceLabel(d types.Device) string {
	emoji, ok := deviceEmoji[d]
	if !ok {
		emoji = "•"
	}
	return emoji + " " + string(d)
}


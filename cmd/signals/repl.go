package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/haricheung/signals/internal/command"
	"github.com/haricheung/signals/internal/config"
	"github.com/haricheung/signals/internal/history"
	"github.com/haricheung/signals/internal/host"
	"github.com/haricheung/signals/internal/puzzle"
	"github.com/haricheung/signals/internal/tables"
	"github.com/haricheung/signals/internal/types"
	"github.com/haricheung/signals/internal/ui"
)

const recentLimit = 10

var metaHelp = strings.Join([]string{
	"look [draw the module]",
	"lights on|off",
	"activate [start the timer]",
	"strikes [n] [show or set the bomb's strikes]",
	"history [recent submissions]",
	"exit",
}, " | ")

// shell executes one line of input against the host.
type shell struct {
	host   *host.Host
	tables *tables.Set
	hist   *history.Store
	out    io.Writer
	log    *slog.Logger
	last   []puzzle.Result
}

// exec runs one line. Invalid input is reported to the user and returns
// nil; a non-nil error is a module defect and ends the program.
//
// Expectations:
//   - Meta commands are matched case-insensitively on the first word
//   - Anything else goes through command.Parse; invalid commands execute nothing
//   - quit is true only for "exit" or "quit"
func (s *shell) exec(line string) (quit bool, err error) {
	line = strings.TrimSpace(line)
	s.last = nil
	if line == "" {
		return false, nil
	}
	fields := strings.Fields(strings.ToLower(line))

	switch fields[0] {
	case "exit", "quit":
		return true, nil
	case "help":
		fmt.Fprintln(s.out, command.Help(""))
		fmt.Fprintln(s.out, metaHelp)
		return false, nil
	case "look":
		fmt.Fprintln(s.out, ui.Board(s.host.Board(), s.tables.Offsets))
		return false, nil
	case "activate":
		s.host.Activate()
		return false, nil
	case "lights":
		if len(fields) != 2 || (fields[1] != "on" && fields[1] != "off") {
			fmt.Fprintln(s.out, "usage: lights on|off")
			return false, nil
		}
		if err := s.host.SetLights(fields[1] == "on"); err != nil {
			s.log.Error("lights change failed", "error", err)
			return false, fmt.Errorf("lights change: %w", err)
		}
		return false, nil
	case "strikes":
		if len(fields) == 2 {
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 0 {
				fmt.Fprintln(s.out, "usage: strikes [n]")
				return false, nil
			}
			s.host.SetStrikes(n)
		}
		fmt.Fprintf(s.out, "strikes: %d\n", s.host.Strikes())
		return false, nil
	case "history":
		s.printHistory()
		return false, nil
	}

	targets, err := command.Parse(line)
	if err != nil {
		fmt.Fprintf(s.out, "%v\n%s\n", err, command.Help(""))
		return false, nil
	}
	s.last, err = s.host.Run(targets)
	if err != nil {
		s.log.Error("interaction failed", "targets", targets, "error", err)
		return false, fmt.Errorf("run %q: %w", line, err)
	}
	return false, nil
}

func (s *shell) printHistory() {
	if s.hist == nil {
		fmt.Fprintln(s.out, "history unavailable")
		return
	}
	recs, err := s.hist.Recent(recentLimit)
	if err != nil {
		fmt.Fprintf(s.out, "history: %v\n", err)
		return
	}
	if len(recs) == 0 {
		fmt.Fprintln(s.out, "no submissions yet")
		return
	}
	for _, r := range recs {
		session := r.SessionID
		if len(session) > 8 {
			session = session[:8]
		}
		fmt.Fprintf(s.out, "%s #%d %-6s tier=%-11s input=%s generator=%s\n",
			session, r.Seq, r.Verdict.Outcome, r.Verdict.Tier, r.Verdict.Input, r.Verdict.Generator)
	}
}

// printResults prints the verdicts of the last executed line.
func (s *shell) printResults() {
	for _, r := range s.last {
		fmt.Fprintln(s.out, ui.FlowLine(types.Message{Type: types.MsgVerdict, Payload: types.Verdict{
			Outcome:   r.Verdict.String(),
			Strikes:   r.Strikes,
			Tier:      r.Tier.String(),
			Input:     r.Input,
			Generator: r.Generator,
			Solution:  r.Solution,
		}}))
	}
}

func completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("channel"),
		readline.PcItem("submit"),
		readline.PcItem("s1"),
		readline.PcItem("s2"),
		readline.PcItem("s3"),
		readline.PcItem("look"),
		readline.PcItem("lights", readline.PcItem("on"), readline.PcItem("off")),
		readline.PcItem("activate"),
		readline.PcItem("strikes"),
		readline.PcItem("history"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

func runREPL(ctx context.Context, sh *shell, feeds []<-chan types.Message, cfg config.Config, start func(func())) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "signals> ",
		HistoryFile:     filepath.Join(cfg.CacheDir, "repl_history"),
		AutoComplete:    completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	sh.out = rl.Stdout()
	disp := ui.New(rl.Stdout(), feeds...)
	start(func() { disp.Run(ctx) })

	fmt.Fprintf(sh.out, "signals — module %d on bomb %s (type 'help' for commands)\n", cfg.InstanceID, cfg.Serial)
	fmt.Fprintln(sh.out, ui.Board(sh.host.Board(), sh.tables.Offsets))

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("readline: %w", err)
		}
		quit, err := sh.exec(line)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
		if sh.host.Passed() && len(sh.last) > 0 && sh.last[len(sh.last)-1].Verdict == puzzle.VerdictPass {
			fmt.Fprintln(sh.out, ui.Board(sh.host.Board(), sh.tables.Offsets))
		}
	}
}

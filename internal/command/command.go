// Package command parses the text command surface into device targets.
package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/haricheung/signals/internal/types"
)

// ErrInvalidCommand means the command contained an unknown token, or no
// tokens at all. Nothing is executed for an invalid command.
var ErrInvalidCommand = errors.New("command: invalid command")

var switchTokens = map[string]types.Target{
	"s1": types.DeviceSwitch1,
	"s2": types.DeviceSwitch2,
	"s3": types.DeviceSwitch3,
}

// Parse maps a command to the devices to trigger, in order. Matching is
// case-insensitive. "channel" and "submit" must stand alone; otherwise the
// command is a sequence of s1/s2/s3 tokens.
//
// Expectations:
//   - "channel" → [selector]; "submit" → [button]
//   - "s1 s1 s2 s3" → four switch targets in that order
//   - Any unrecognised token rejects the whole command with ErrInvalidCommand
//   - Empty or whitespace-only input is ErrInvalidCommand
func Parse(cmd string) ([]types.Target, error) {
	cmd = strings.ToLower(strings.TrimSpace(cmd))

	switch cmd {
	case "channel":
		return []types.Target{types.DeviceSelector}, nil
	case "submit":
		return []types.Target{types.DeviceButton}, nil
	}

	var out []types.Target
	for _, tok := range strings.Fields(cmd) {
		t, ok := switchTokens[tok]
		if !ok {
			return nil, fmt.Errorf("%w: unknown token %q", ErrInvalidCommand, tok)
		}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidCommand)
	}
	return out, nil
}

// Help returns the usage line, with prefix in front of each example.
func Help(prefix string) string {
	return strings.Join([]string{
		prefix + "channel [switch channel]",
		prefix + "s1 [flip S1]",
		prefix + "s2 [flip S2]",
		prefix + "s3 [flip S3]",
		prefix + "s1 s1 s2 s3 [flip multiple switches]",
		prefix + "submit [submit solution]",
		"Not case-sensitive",
	}, " | ")
}

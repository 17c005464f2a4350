package session

import (
	"fmt"

	"github.com/haricheung/signals/internal/devices"
	"github.com/haricheung/signals/internal/types"
)

// CoefficientMapping assigns one coefficient to each switch position. The
// three coefficients are always used exactly once.
type CoefficientMapping struct {
	Up     types.Coefficient
	Down   types.Coefficient
	Center types.Coefficient
}

// NewCoefficientMapping starts from UP→POSITIVE, DOWN→NEGATIVE, CENTER→ZERO
// and applies two draws. The first bit swaps CENTER with DOWN (1) or with
// UP (0); the second bit swaps UP and DOWN when 0. Only four of the six
// permutations are reachable, with the distribution the shipped solution
// tables were tuned against.
func NewCoefficientMapping(r *Randomizer) CoefficientMapping {
	m := CoefficientMapping{Up: types.Positive, Down: types.Negative, Center: types.Zero}

	if r.Bit() == 1 {
		m.Center, m.Down = m.Down, m.Center
	} else {
		m.Center, m.Up = m.Up, m.Center
	}

	if r.Bit() == 0 {
		m.Up, m.Down = m.Down, m.Up
	}
	return m
}

// Map resolves a switch position. Both center positions share one value.
func (m CoefficientMapping) Map(s devices.SwitchState) (types.Coefficient, error) {
	switch s {
	case devices.SwitchUp:
		return m.Up, nil
	case devices.SwitchDown:
		return m.Down, nil
	case devices.SwitchCenterNextDown, devices.SwitchCenterNextUp:
		return m.Center, nil
	}
	return 0, fmt.Errorf("session: unknown switch state %d", int(s))
}

func (m CoefficientMapping) String() string {
	return fmt.Sprintf("UP->%s,DOWN->%s,CENTER->%s", m.Up, m.Down, m.Center)
}

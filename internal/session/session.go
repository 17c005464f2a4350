// Package session holds the per-session randomized setup: the seed, one
// coefficient mapping per switch, the switch-to-slot permutation and the
// input signal. Everything is drawn from one Randomizer in a fixed order,
// so equal seeds give equal sessions.
package session

import (
	"fmt"

	"github.com/haricheung/signals/internal/devices"
	"github.com/haricheung/signals/internal/types"
)

// Session is the randomized state fixed at module start.
type Session struct {
	Seed        int32
	Mappings    [3]CoefficientMapping
	Permutation Permutation
	Input       types.Signal
}

// New derives the seed from serial and instanceID and draws the session.
func New(serial string, instanceID int) *Session {
	return FromSeed(SeedFrom(serial, instanceID))
}

// FromSeed draws, in order: switch 1..3 mappings, the permutation, then the
// input signal slot by slot.
func FromSeed(seed int32) *Session {
	r := NewRandomizer(seed)
	s := &Session{Seed: seed}
	for i := range s.Mappings {
		s.Mappings[i] = NewCoefficientMapping(r)
	}
	s.Permutation = NewPermutation(r)
	s.Input = randomSignal(r)
	return s
}

// randomSignal picks each slot uniformly over the three coefficients.
func randomSignal(r *Randomizer) types.Signal {
	var t [3]types.Coefficient
	for i := range t {
		t[i] = types.Coefficients[r.RangeInclusive(0, 2)]
	}
	return types.SignalOf(t)
}

// Resolve computes the generator signal for the given switch positions:
// each position goes through its own switch's mapping, then the triple is
// permuted into slot order.
//
// Expectations:
//   - Pure: the same positions always give the same Signal
//   - Returns an error only for an unknown switch state or a corrupt permutation
func (s *Session) Resolve(positions [3]devices.SwitchState) (types.Signal, error) {
	var mapped [3]types.Coefficient
	for i, p := range positions {
		c, err := s.Mappings[i].Map(p)
		if err != nil {
			return types.Signal{}, fmt.Errorf("switch %d: %w", i+1, err)
		}
		mapped[i] = c
	}
	slots, err := s.Permutation.Map(mapped)
	if err != nil {
		return types.Signal{}, err
	}
	return types.SignalOf(slots), nil
}

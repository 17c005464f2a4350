package session

import (
	"errors"
	"fmt"

	"github.com/haricheung/signals/internal/types"
)

// ErrPermutationIndex indicates a permutation mode outside 0..5. It can only
// happen through a construction bug.
var ErrPermutationIndex = errors.New("session: permutation index out of range")

// PermutationCount is the number of orderings of three switches.
const PermutationCount = 6

var permutationLabels = [PermutationCount]string{
	"S1->C1,S2->C2,S3->C3",
	"S1->C1,S2->C3,S3->C2",
	"S1->C2,S2->C1,S3->C3",
	"S1->C2,S2->C3,S3->C1",
	"S1->C3,S2->C1,S3->C2",
	"S1->C3,S2->C2,S3->C1",
}

// Permutation decides which switch feeds which slot of the generator
// signal. It is fixed for the session.
type Permutation struct {
	mode int
}

// NewPermutation draws a mode uniformly from 0..5 inclusive.
func NewPermutation(r *Randomizer) Permutation {
	return Permutation{mode: r.RangeInclusive(0, PermutationCount-1)}
}

// PermutationMode builds a Permutation with an explicit mode.
func PermutationMode(mode int) (Permutation, error) {
	if mode < 0 || mode >= PermutationCount {
		return Permutation{}, fmt.Errorf("%w: %d", ErrPermutationIndex, mode)
	}
	return Permutation{mode: mode}, nil
}

// Mode returns the chosen mode index.
func (p Permutation) Mode() int { return p.mode }

// Map reorders in per the chosen mode. For in = (A,B,C):
//
//	0 → (A,B,C)   1 → (A,C,B)   2 → (B,A,C)
//	3 → (B,C,A)   4 → (C,A,B)   5 → (C,B,A)
func (p Permutation) Map(in [3]types.Coefficient) ([3]types.Coefficient, error) {
	a, b, c := in[0], in[1], in[2]
	switch p.mode {
	case 0:
		return [3]types.Coefficient{a, b, c}, nil
	case 1:
		return [3]types.Coefficient{a, c, b}, nil
	case 2:
		return [3]types.Coefficient{b, a, c}, nil
	case 3:
		return [3]types.Coefficient{b, c, a}, nil
	case 4:
		return [3]types.Coefficient{c, a, b}, nil
	case 5:
		return [3]types.Coefficient{c, b, a}, nil
	}
	return in, fmt.Errorf("%w: %d", ErrPermutationIndex, p.mode)
}

func (p Permutation) String() string {
	if p.mode < 0 || p.mode >= PermutationCount {
		return fmt.Sprintf("invalid(%d)", p.mode)
	}
	return permutationLabels[p.mode]
}

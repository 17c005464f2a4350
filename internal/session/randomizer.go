package session

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// SeedFrom derives the session seed from the host's identifying string and
// the module instance id: MD5 of the ASCII bytes of serial+id, first four
// bytes read as a little-endian signed int32.
func SeedFrom(serial string, instanceID int) int32 {
	sum := md5.Sum([]byte(fmt.Sprintf("%s%d", serial, instanceID)))
	return int32(binary.LittleEndian.Uint32(sum[:4]))
}

// Randomizer is the single deterministic source every randomized choice of
// a session is drawn from.
//
// Expectations:
//   - Two Randomizers built from the same seed yield identical draw sequences
//   - Bit returns 0 or 1
//   - RangeInclusive(lo, hi) returns a value in [lo, hi], both ends reachable
type Randomizer struct {
	seed int32
	rng  *rand.Rand
}

// NewRandomizer seeds a PCG generator from seed.
func NewRandomizer(seed int32) *Randomizer {
	s := uint64(uint32(seed))
	return &Randomizer{seed: seed, rng: rand.New(rand.NewPCG(s, s))}
}

// Seed returns the seed the randomizer was built with.
func (r *Randomizer) Seed() int32 { return r.seed }

// Bit draws 0 or 1.
func (r *Randomizer) Bit() int {
	return r.rng.IntN(2)
}

// RangeInclusive draws uniformly from [lo, hi].
func (r *Randomizer) RangeInclusive(lo, hi int) int {
	return lo + r.rng.IntN(hi-lo+1)
}

// Package tables loads the fixed lookup data the module is driven by: the
// scope's signal → texture offset table and the three solution tables, one
// per strike tier.
//
// Tables are decoded once at module start from JSON lists of records and are
// read-only afterwards. A key absent at lookup time is a data defect and is
// reported as ErrSignalNotFound, never defaulted.
package tables

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/haricheung/signals/internal/types"
)

var (
	// ErrSignalNotFound indicates a lookup key missing from a loaded table.
	ErrSignalNotFound = errors.New("tables: signal not found")
	// ErrDuplicateKey indicates a signal listed twice in one table.
	ErrDuplicateKey = errors.New("tables: duplicate signal")
)

// File names shared by the embedded data and on-disk overrides.
const (
	FileOffsets            = "signal_offsets.json"
	FileSolutionsNoStrikes = "solutions_no_strikes.json"
	FileSolutionsOneStrike = "solutions_one_strike.json"
	FileSolutionsTwoStrike = "solutions_two_strikes.json"
)

//go:embed data/*.json
var embedded embed.FS

// Tier selects which solution table is authoritative.
type Tier int

const (
	TierNoStrikes Tier = iota
	TierOneStrike
	TierTwoStrikes
)

func (t Tier) String() string {
	switch t {
	case TierNoStrikes:
		return "no_strikes"
	case TierOneStrike:
		return "one_strike"
	case TierTwoStrikes:
		return "two_strikes"
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// TierForStrikes maps a strike count to its tier: 0, 1, or 2 and above.
func TierForStrikes(strikes int) Tier {
	switch {
	case strikes <= 0:
		return TierNoStrikes
	case strikes == 1:
		return TierOneStrike
	default:
		return TierTwoStrikes
	}
}

// SolutionTable maps an input signal to the generator signal that solves it.
type SolutionTable struct {
	tier    Tier
	entries map[types.Signal]types.Signal
}

type solutionRecord struct {
	Signal   types.Signal `json:"signal"`
	Solution types.Signal `json:"solution"`
}

// LoadSolutionTable decodes a JSON list of {"signal":…,"solution":…} records.
//
// Expectations:
//   - Rejects a signal listed twice with ErrDuplicateKey
//   - Does not require all 27 signals; Missing reports the gaps
func LoadSolutionTable(tier Tier, r io.Reader) (*SolutionTable, error) {
	var recs []solutionRecord
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, fmt.Errorf("solution table %s: decode: %w", tier, err)
	}
	t := &SolutionTable{tier: tier, entries: make(map[types.Signal]types.Signal, len(recs))}
	for _, rec := range recs {
		if _, dup := t.entries[rec.Signal]; dup {
			return nil, fmt.Errorf("solution table %s: %w: %s", tier, ErrDuplicateKey, rec.Signal)
		}
		t.entries[rec.Signal] = rec.Solution
	}
	return t, nil
}

// NewSolutionTable builds a table from an in-memory map (copied).
func NewSolutionTable(tier Tier, entries map[types.Signal]types.Signal) *SolutionTable {
	t := &SolutionTable{tier: tier, entries: make(map[types.Signal]types.Signal, len(entries))}
	for k, v := range entries {
		t.entries[k] = v
	}
	return t
}

// Tier returns the strike tier the table serves.
func (t *SolutionTable) Tier() Tier { return t.tier }

// Len returns the number of entries.
func (t *SolutionTable) Len() int { return len(t.entries) }

// Get returns the expected generator signal for input.
func (t *SolutionTable) Get(input types.Signal) (types.Signal, error) {
	sol, ok := t.entries[input]
	if !ok {
		return types.Signal{}, fmt.Errorf("solution table %s: %w: %s", t.tier, ErrSignalNotFound, input)
	}
	return sol, nil
}

// Missing lists every possible signal absent from the table.
func (t *SolutionTable) Missing() []types.Signal {
	return missing(func(s types.Signal) bool { _, ok := t.entries[s]; return ok })
}

// OffsetTable maps every signal to its texture offset on the scope.
type OffsetTable struct {
	entries map[types.Signal]types.Offset
}

type offsetRecord struct {
	Signal types.Signal `json:"signal"`
	Offset types.Offset `json:"offset"`
}

// LoadOffsetTable decodes a JSON list of {"signal":…,"offset":{"x","y"}} records.
func LoadOffsetTable(r io.Reader) (*OffsetTable, error) {
	var recs []offsetRecord
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, fmt.Errorf("offset table: decode: %w", err)
	}
	t := &OffsetTable{entries: make(map[types.Signal]types.Offset, len(recs))}
	for _, rec := range recs {
		if _, dup := t.entries[rec.Signal]; dup {
			return nil, fmt.Errorf("offset table: %w: %s", ErrDuplicateKey, rec.Signal)
		}
		t.entries[rec.Signal] = rec.Offset
	}
	return t, nil
}

// NewOffsetTable builds a table from an in-memory map (copied).
func NewOffsetTable(entries map[types.Signal]types.Offset) *OffsetTable {
	t := &OffsetTable{entries: make(map[types.Signal]types.Offset, len(entries))}
	for k, v := range entries {
		t.entries[k] = v
	}
	return t
}

// Get returns the offset for s.
func (t *OffsetTable) Get(s types.Signal) (types.Offset, error) {
	off, ok := t.entries[s]
	if !ok {
		return types.Offset{}, fmt.Errorf("offset table: %w: %s", ErrSignalNotFound, s)
	}
	return off, nil
}

// SignalAt is the reverse lookup used by renderers that only see an offset.
func (t *OffsetTable) SignalAt(off types.Offset) (types.Signal, bool) {
	for s, o := range t.entries {
		if o == off {
			return s, true
		}
	}
	return types.Signal{}, false
}

// Missing lists every possible signal absent from the table.
func (t *OffsetTable) Missing() []types.Signal {
	return missing(func(s types.Signal) bool { _, ok := t.entries[s]; return ok })
}

func missing(has func(types.Signal) bool) []types.Signal {
	var out []types.Signal
	for _, s := range types.AllSignals() {
		if !has(s) {
			out = append(out, s)
		}
	}
	return out
}

// Set is the full load-time data of one module.
type Set struct {
	Offsets   *OffsetTable
	Solutions [3]*SolutionTable // indexed by Tier
}

// Solution returns the table authoritative for the given strike count.
func (s *Set) Solution(strikes int) *SolutionTable {
	return s.Solutions[TierForStrikes(strikes)]
}

// Validate reports the first table that is not total over all 27 signals.
func (s *Set) Validate() error {
	if n := s.Offsets.Missing(); len(n) > 0 {
		return fmt.Errorf("offset table: %w: %d signals, first %s", ErrSignalNotFound, len(n), n[0])
	}
	for _, t := range s.Solutions {
		if n := t.Missing(); len(n) > 0 {
			return fmt.Errorf("solution table %s: %w: %d signals, first %s", t.Tier(), ErrSignalNotFound, len(n), n[0])
		}
	}
	return nil
}

// LoadEmbedded loads the tables shipped with the binary.
func LoadEmbedded() (*Set, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// LoadDir loads the four table files from dir.
func LoadDir(dir string) (*Set, error) {
	return LoadFS(os.DirFS(filepath.Clean(dir)))
}

// LoadFS loads the four table files from the root of fsys.
func LoadFS(fsys fs.FS) (*Set, error) {
	set := &Set{}

	f, err := fsys.Open(FileOffsets)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", FileOffsets, err)
	}
	set.Offsets, err = LoadOffsetTable(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	files := [3]string{FileSolutionsNoStrikes, FileSolutionsOneStrike, FileSolutionsTwoStrike}
	for i, name := range files {
		f, err := fsys.Open(name)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		set.Solutions[i], err = LoadSolutionTable(Tier(i), f)
		f.Close()
		if err != nil {
			return nil, err
		}
	}
	return set, nil
}

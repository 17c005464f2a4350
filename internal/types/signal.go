package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Coefficient is one ternary slot value of a Signal.
type Coefficient uint8

const (
	Zero     Coefficient = 0
	Positive Coefficient = 1
	Negative Coefficient = 2
)

// Coefficients lists the three values in declaration order.
var Coefficients = [3]Coefficient{Zero, Positive, Negative}

func (c Coefficient) String() string {
	switch c {
	case Zero:
		return "ZERO"
	case Positive:
		return "POSITIVE"
	case Negative:
		return "NEGATIVE"
	}
	return fmt.Sprintf("Coefficient(%d)", uint8(c))
}

// Valid reports whether c is one of the three defined values.
func (c Coefficient) Valid() bool {
	return c <= Negative
}

// UnmarshalJSON accepts the integer form and rejects out-of-range values.
func (c *Coefficient) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("coefficient: %w", err)
	}
	if n < 0 || n > int(Negative) {
		return fmt.Errorf("coefficient: value %d out of range 0..2", n)
	}
	*c = Coefficient(n)
	return nil
}

// Signal is an ordered triple of coefficients.
//
// Expectations:
//   - Two Signals are equal (==) iff all three slots match pairwise
//   - A Signal is usable as a map key; its identity is its coefficient triple
//   - There is no way to change a Signal after construction
type Signal struct {
	c [3]Coefficient
}

// NewSignal builds a Signal from its three slots.
func NewSignal(c1, c2, c3 Coefficient) Signal {
	return Signal{c: [3]Coefficient{c1, c2, c3}}
}

// SignalOf builds a Signal from a triple.
func SignalOf(t [3]Coefficient) Signal {
	return Signal{c: t}
}

// Slot returns the coefficient in slot i (0-based).
func (s Signal) Slot(i int) Coefficient { return s.c[i] }

// Coefficients returns a copy of the triple.
func (s Signal) Coefficients() [3]Coefficient { return s.c }

// Equal reports slot-wise equality.
func (s Signal) Equal(o Signal) bool { return s == o }

func (s Signal) String() string {
	return fmt.Sprintf("(C1=%s,C2=%s,C3=%s)", s.c[0], s.c[1], s.c[2])
}

// AllSignals returns the 27 possible Signals, slot 1 major.
func AllSignals() []Signal {
	out := make([]Signal, 0, 27)
	for _, a := range Coefficients {
		for _, b := range Coefficients {
			for _, c := range Coefficients {
				out = append(out, NewSignal(a, b, c))
			}
		}
	}
	return out
}

type signalJSON struct {
	Coefficients [3]Coefficient `json:"coefficients"`
}

// MarshalJSON writes {"coefficients":[c1,c2,c3]}.
func (s Signal) MarshalJSON() ([]byte, error) {
	return json.Marshal(signalJSON{Coefficients: s.c})
}

// UnmarshalJSON reads either {"coefficients":[...]} or a bare [c1,c2,c3].
func (s *Signal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var t [3]Coefficient
		if err := decodeTriple(data, &t); err != nil {
			return err
		}
		s.c = t
		return nil
	}
	var raw struct {
		Coefficients json.RawMessage `json:"coefficients"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("signal: %w", err)
	}
	if raw.Coefficients == nil {
		return fmt.Errorf("signal: missing coefficients")
	}
	var t [3]Coefficient
	if err := decodeTriple(raw.Coefficients, &t); err != nil {
		return err
	}
	s.c = t
	return nil
}

// decodeTriple insists on exactly three entries; a Go array would silently
// accept short or long lists.
func decodeTriple(data []byte, t *[3]Coefficient) error {
	var list []Coefficient
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("signal: %w", err)
	}
	if len(list) != 3 {
		return fmt.Errorf("signal: expected 3 coefficients, got %d", len(list))
	}
	copy(t[:], list)
	return nil
}

// Offset is a 2D texture offset on the scope.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (o Offset) String() string {
	return fmt.Sprintf("(%.4f,%.4f)", o.X, o.Y)
}

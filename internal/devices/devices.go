// Package devices implements the module's input devices: three-position
// switches, the channel selector and the submit button.
//
// Each device owns its visual parts. Parts are looked up by name on a Rig
// supplied by the host at construction time; a missing part makes the
// device unusable, so constructors fail with ErrMissingPart.
package devices

import (
	"errors"
	"fmt"
)

// ErrMissingPart indicates the host rig lacks a part a device needs.
var ErrMissingPart = errors.New("devices: part not found")

// Part is a host visual element that can be shown or hidden.
type Part interface {
	SetActive(active bool)
}

// Rig resolves named child parts of a device object.
type Rig interface {
	Part(name string) (Part, bool)
}

// lookup resolves every name or fails with ErrMissingPart naming the first
// absent one.
func lookup(rig Rig, owner string, names ...string) ([]Part, error) {
	parts := make([]Part, len(names))
	for i, n := range names {
		p, ok := rig.Part(n)
		if !ok || p == nil {
			return nil, fmt.Errorf("%w: %s (parent: %s)", ErrMissingPart, n, owner)
		}
		parts[i] = p
	}
	return parts, nil
}

// SwitchState is the position of a three-position switch. The two center
// states look the same but remember the direction of travel.
type SwitchState int

const (
	SwitchUp SwitchState = iota
	SwitchCenterNextDown
	SwitchDown
	SwitchCenterNextUp
)

func (s SwitchState) String() string {
	switch s {
	case SwitchUp:
		return "UP"
	case SwitchCenterNextDown:
		return "CENTER_NEXT_DOWN"
	case SwitchDown:
		return "DOWN"
	case SwitchCenterNextUp:
		return "CENTER_NEXT_UP"
	}
	return fmt.Sprintf("SwitchState(%d)", int(s))
}

// IsCenter reports whether s is either center position.
func (s SwitchState) IsCenter() bool {
	return s == SwitchCenterNextDown || s == SwitchCenterNextUp
}

// Switch part names.
const (
	PartNorth  = "rendererNorth"
	PartCenter = "rendererCenter"
	PartSouth  = "rendererSouth"
)

// Switch is a three-position toggle that steps through a 4-cycle.
type Switch struct {
	name   string
	state  SwitchState
	north  Part
	center Part
	south  Part
}

// NewSwitch wires a switch to its rig and sets the initial state.
func NewSwitch(name string, rig Rig, initial SwitchState) (*Switch, error) {
	parts, err := lookup(rig, name, PartNorth, PartSouth, PartCenter)
	if err != nil {
		return nil, err
	}
	s := &Switch{name: name, north: parts[0], south: parts[1], center: parts[2]}
	s.set(initial)
	return s, nil
}

// State returns the current position.
func (s *Switch) State() SwitchState { return s.state }

// Clicked advances one step: UP → CENTER_NEXT_DOWN → DOWN → CENTER_NEXT_UP → UP.
func (s *Switch) Clicked() SwitchState {
	switch s.state {
	case SwitchUp:
		s.set(SwitchCenterNextDown)
	case SwitchCenterNextDown:
		s.set(SwitchDown)
	case SwitchDown:
		s.set(SwitchCenterNextUp)
	case SwitchCenterNextUp:
		s.set(SwitchUp)
	}
	return s.state
}

func (s *Switch) set(st SwitchState) {
	s.state = st
	s.north.SetActive(st == SwitchUp)
	s.center.SetActive(st.IsCenter())
	s.south.SetActive(st == SwitchDown)
}

// SelectorState is the position of the channel selector.
type SelectorState int

const (
	SelectorLeft SelectorState = iota
	SelectorRight
)

func (s SelectorState) String() string {
	if s == SelectorLeft {
		return "LEFT"
	}
	return "RIGHT"
}

// Selector part names.
const (
	PartLeft  = "rendererLeft"
	PartRight = "rendererRight"
)

// Selector is a two-position toggle.
type Selector struct {
	state SelectorState
	left  Part
	right Part
}

// NewSelector wires a selector to its rig and sets the initial state.
func NewSelector(name string, rig Rig, initial SelectorState) (*Selector, error) {
	parts, err := lookup(rig, name, PartLeft, PartRight)
	if err != nil {
		return nil, err
	}
	s := &Selector{left: parts[0], right: parts[1]}
	s.set(initial)
	return s, nil
}

// State returns the current position.
func (s *Selector) State() SelectorState { return s.state }

// Clicked toggles LEFT ↔ RIGHT and returns the new state.
func (s *Selector) Clicked() SelectorState {
	if s.state == SelectorLeft {
		s.set(SelectorRight)
	} else {
		s.set(SelectorLeft)
	}
	return s.state
}

func (s *Selector) set(st SelectorState) {
	s.state = st
	s.left.SetActive(st == SelectorLeft)
	s.right.SetActive(st == SelectorRight)
}

// ButtonState is the state of the submit button.
type ButtonState int

const (
	ButtonReleased ButtonState = iota
	ButtonPressed
)

func (s ButtonState) String() string {
	if s == ButtonPressed {
		return "PRESSED"
	}
	return "RELEASED"
}

// Button part names.
const (
	PartReleased = "rendererReleased"
	PartPressed  = "rendererPressed"
)

// Button is driven by separate press and release events. Neither validates
// the current state.
type Button struct {
	state    ButtonState
	released Part
	pressed  Part
}

// NewButton wires a button to its rig; it starts released.
func NewButton(name string, rig Rig) (*Button, error) {
	parts, err := lookup(rig, name, PartReleased, PartPressed)
	if err != nil {
		return nil, err
	}
	b := &Button{released: parts[0], pressed: parts[1]}
	b.Release()
	return b, nil
}

// State returns the current state.
func (b *Button) State() ButtonState { return b.state }

// Press shows the pressed part.
func (b *Button) Press() {
	b.state = ButtonPressed
	b.released.SetActive(false)
	b.pressed.SetActive(true)
}

// Release shows the released part.
func (b *Button) Release() {
	b.state = ButtonReleased
	b.released.SetActive(true)
	b.pressed.SetActive(false)
}

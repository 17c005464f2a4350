// Package scope implements the module's oscilloscope display. Channel A
// always shows the input signal and channel B the generator signal; the
// shown signal is turned into a texture offset through the offset table.
package scope

import (
	"fmt"

	"github.com/haricheung/signals/internal/devices"
	"github.com/haricheung/signals/internal/tables"
	"github.com/haricheung/signals/internal/types"
)

// Channel selects which signal the scope shows.
type Channel int

const (
	ChannelA Channel = iota
	ChannelB
)

func (c Channel) String() string {
	if c == ChannelA {
		return "A"
	}
	return "B"
}

// Part names.
const (
	PartBackgroundDayA  = "rendererBackgroundDayA"
	PartBackgroundDayB  = "rendererBackgroundDayB"
	PartBackgroundNight = "rendererBackgroundNight"
	PartSignalDay       = "rendererSignalDay"
	PartSignalNight     = "rendererSignalNight"
)

// SignalPart is a part whose texture can be scrolled to a signal's tile.
type SignalPart interface {
	devices.Part
	SetTextureOffset(off types.Offset)
}

// Display is the scope state plus its parts.
type Display struct {
	Channel Channel
	Day     bool
	SignalA types.Signal
	SignalB types.Signal

	offsets *tables.OffsetTable

	bgDayA   devices.Part
	bgDayB   devices.Part
	bgNight  devices.Part
	sigDay   SignalPart
	sigNight SignalPart
}

// New wires the scope to rig and renders the initial state.
func New(rig devices.Rig, offsets *tables.OffsetTable, ch Channel, signalA, signalB types.Signal, day bool) (*Display, error) {
	d := &Display{Channel: ch, Day: day, SignalA: signalA, SignalB: signalB, offsets: offsets}

	var err error
	if d.bgDayA, err = part(rig, PartBackgroundDayA); err != nil {
		return nil, err
	}
	if d.bgDayB, err = part(rig, PartBackgroundDayB); err != nil {
		return nil, err
	}
	if d.bgNight, err = part(rig, PartBackgroundNight); err != nil {
		return nil, err
	}
	if d.sigDay, err = signalPart(rig, PartSignalDay); err != nil {
		return nil, err
	}
	if d.sigNight, err = signalPart(rig, PartSignalNight); err != nil {
		return nil, err
	}

	if _, err := d.Update(); err != nil {
		return nil, err
	}
	return d, nil
}

func part(rig devices.Rig, name string) (devices.Part, error) {
	p, ok := rig.Part(name)
	if !ok || p == nil {
		return nil, fmt.Errorf("%w: %s (parent: scope)", devices.ErrMissingPart, name)
	}
	return p, nil
}

func signalPart(rig devices.Rig, name string) (SignalPart, error) {
	p, err := part(rig, name)
	if err != nil {
		return nil, err
	}
	sp, ok := p.(SignalPart)
	if !ok {
		return nil, fmt.Errorf("%w: %s cannot take a texture offset", devices.ErrMissingPart, name)
	}
	return sp, nil
}

// Shown returns the signal on the current channel.
func (d *Display) Shown() types.Signal {
	if d.Channel == ChannelA {
		return d.SignalA
	}
	return d.SignalB
}

// Update resolves the shown signal's offset and refreshes the parts. In
// daylight the background matches the channel; at night a single night
// background is used for both channels.
//
// Expectations:
//   - Returns an error wrapping tables.ErrSignalNotFound when the shown signal has no offset
//   - Leaves the parts untouched when the lookup fails
func (d *Display) Update() (types.Offset, error) {
	off, err := d.offsets.Get(d.Shown())
	if err != nil {
		return types.Offset{}, fmt.Errorf("scope channel %s: %w", d.Channel, err)
	}

	if d.Day {
		d.sigDay.SetTextureOffset(off)
		d.bgDayA.SetActive(d.Channel == ChannelA)
		d.bgDayB.SetActive(d.Channel == ChannelB)
		d.bgNight.SetActive(false)
		d.sigDay.SetActive(true)
		d.sigNight.SetActive(false)
	} else {
		d.sigNight.SetTextureOffset(off)
		d.bgDayA.SetActive(false)
		d.bgDayB.SetActive(false)
		d.bgNight.SetActive(true)
		d.sigDay.SetActive(false)
		d.sigNight.SetActive(true)
	}
	return off, nil
}

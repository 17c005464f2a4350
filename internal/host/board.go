package host

import (
	"sync"

	"github.com/haricheung/signals/internal/devices"
	"github.com/haricheung/signals/internal/scope"
	"github.com/haricheung/signals/internal/types"
)

// Part is an in-memory visual element. The terminal UI renders from these.
type Part struct {
	mu     sync.Mutex
	active bool
	offset types.Offset
}

// SetActive shows or hides the part.
func (p *Part) SetActive(a bool) {
	p.mu.Lock()
	p.active = a
	p.mu.Unlock()
}

// SetTextureOffset scrolls the part's texture.
func (p *Part) SetTextureOffset(off types.Offset) {
	p.mu.Lock()
	p.offset = off
	p.mu.Unlock()
}

// Active reports whether the part is shown.
func (p *Part) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Offset returns the last texture offset.
func (p *Part) Offset() types.Offset {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.offset
}

// object is the named parts of one device.
type object map[string]*Part

func (o object) Part(name string) (devices.Part, bool) {
	p, ok := o[name]
	if !ok {
		return nil, false
	}
	return p, true
}

// Board holds every device object of one module.
type Board struct {
	objects map[types.Device]object
}

var partNames = map[types.Device][]string{
	types.DeviceSwitch1:  {devices.PartNorth, devices.PartCenter, devices.PartSouth},
	types.DeviceSwitch2:  {devices.PartNorth, devices.PartCenter, devices.PartSouth},
	types.DeviceSwitch3:  {devices.PartNorth, devices.PartCenter, devices.PartSouth},
	types.DeviceSelector: {devices.PartLeft, devices.PartRight},
	types.DeviceButton:   {devices.PartReleased, devices.PartPressed},
	types.DeviceScope: {
		scope.PartBackgroundDayA, scope.PartBackgroundDayB, scope.PartBackgroundNight,
		scope.PartSignalDay, scope.PartSignalNight,
	},
}

// NewBoard creates a fully wired board.
func NewBoard() *Board {
	b := &Board{objects: make(map[types.Device]object, len(partNames))}
	for d, names := range partNames {
		o := make(object, len(names))
		for _, n := range names {
			o[n] = &Part{}
		}
		b.objects[d] = o
	}
	return b
}

// Rigs returns the board as the controller's device rigs.
func (b *Board) Rigs() map[types.Device]devices.Rig {
	out := make(map[types.Device]devices.Rig, len(b.objects))
	for d, o := range b.objects {
		out[d] = o
	}
	return out
}

// Part returns the named part of a device, or nil.
func (b *Board) Part(d types.Device, name string) *Part {
	return b.objects[d][name]
}

// Remove drops a part, simulating a broken asset.
func (b *Board) Remove(d types.Device, name string) {
	delete(b.objects[d], name)
}

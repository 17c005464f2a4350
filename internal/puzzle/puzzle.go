// Package puzzle wires the session, devices, scope and solution tables into
// the module controller the host drives.
//
// Design constraints:
//   - Single-threaded: every handler runs to completion before the next
//     event is delivered, so callers never see a half-updated generator.
//   - Each handler asks the host for at most one side effect.
//   - Table and wiring defects are returned as errors; the controller never
//     defaults a missing lookup.
package puzzle

import (
	"fmt"

	"github.com/haricheung/signals/internal/devices"
	"github.com/haricheung/signals/internal/scope"
	"github.com/haricheung/signals/internal/session"
	"github.com/haricheung/signals/internal/tables"
	"github.com/haricheung/signals/internal/types"
)

// State is the module lifecycle state. Transitions only move forward.
type State int

const (
	StateStart State = iota
	StateAwake
	StateActive
	StateDisarmed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "START"
	case StateAwake:
		return "AWAKE"
	case StateActive:
		return "ACTIVE"
	case StateDisarmed:
		return "DISARMED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Verdict is the outcome of a button release.
type Verdict int

const (
	VerdictNone Verdict = iota // not active; display-only press
	VerdictPass
	VerdictStrike
)

func (v Verdict) String() string {
	switch v {
	case VerdictPass:
		return "pass"
	case VerdictStrike:
		return "strike"
	}
	return "none"
}

// Bomb is the host's view of the surrounding game: the strike counter and
// the pass/strike report sinks.
type Bomb interface {
	Strikes() int
	HandlePass()
	HandleStrike()
}

// Effects receives the side effect of each interaction.
type Effects interface {
	Request(types.EffectRequest)
}

// Logger is the logging collaborator; *slog.Logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
}

// Config is everything the controller needs at module start.
type Config struct {
	Serial     string // host identifying string (bomb serial number)
	InstanceID int    // module instance id, part of the seed
	Tables     *tables.Set
	Rigs       map[types.Device]devices.Rig
	Bomb       Bomb
	Effects    Effects
	Logger     Logger
}

// Result reports what a submission was judged against.
type Result struct {
	Verdict   Verdict
	Strikes   int
	Tier      tables.Tier
	Input     types.Signal
	Generator types.Signal
	Solution  types.Signal
}

// Controller is one puzzle module instance.
type Controller struct {
	id      int
	state   State
	session *session.Session
	tables  *tables.Set

	switches [3]*devices.Switch
	selector *devices.Selector
	button   *devices.Button
	scope    *scope.Display

	generator types.Signal

	bomb    Bomb
	effects Effects
	log     Logger
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

type nopEffects struct{}

func (nopEffects) Request(types.EffectRequest) {}

// New performs module start: derives the session from the serial and
// instance id, builds the devices (switches DOWN, selector LEFT, button
// released), computes the initial generator signal and shows channel A at
// night.
func New(cfg Config) (*Controller, error) {
	if cfg.Tables == nil {
		return nil, fmt.Errorf("puzzle: no tables")
	}
	if cfg.Bomb == nil {
		return nil, fmt.Errorf("puzzle: no bomb")
	}
	c := &Controller{
		id:      cfg.InstanceID,
		state:   StateStart,
		tables:  cfg.Tables,
		bomb:    cfg.Bomb,
		effects: cfg.Effects,
		log:     cfg.Logger,
	}
	if c.effects == nil {
		c.effects = nopEffects{}
	}
	if c.log == nil {
		c.log = nopLogger{}
	}
	c.log.Debug("state", "state", c.state)

	c.session = session.New(cfg.Serial, cfg.InstanceID)
	c.log.Debug("seed", "seed", c.session.Seed)

	rig := func(d types.Device) (devices.Rig, error) {
		r, ok := cfg.Rigs[d]
		if !ok || r == nil {
			return nil, fmt.Errorf("%w: %s object", devices.ErrMissingPart, d)
		}
		return r, nil
	}

	for i, d := range types.Switches {
		r, err := rig(d)
		if err != nil {
			return nil, err
		}
		if c.switches[i], err = devices.NewSwitch(string(d), r, devices.SwitchDown); err != nil {
			return nil, err
		}
	}
	r, err := rig(types.DeviceSelector)
	if err != nil {
		return nil, err
	}
	if c.selector, err = devices.NewSelector(string(types.DeviceSelector), r, devices.SelectorLeft); err != nil {
		return nil, err
	}
	if r, err = rig(types.DeviceButton); err != nil {
		return nil, err
	}
	if c.button, err = devices.NewButton(string(types.DeviceButton), r); err != nil {
		return nil, err
	}

	for i, m := range c.session.Mappings {
		c.log.Debug("switch mapping", "switch", types.Switches[i], "mapping", m.String())
	}
	c.log.Debug("switch permutation", "permutation", c.session.Permutation.String())
	c.log.Debug("input", "signal", c.session.Input.String())

	if c.generator, err = c.session.Resolve(c.positions()); err != nil {
		return nil, err
	}
	c.log.Debug("generator", "signal", c.generator.String())

	if r, err = rig(types.DeviceScope); err != nil {
		return nil, err
	}
	c.scope, err = scope.New(r, cfg.Tables.Offsets, channelFor(c.selector.State()), c.session.Input, c.generator, false)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func channelFor(s devices.SelectorState) scope.Channel {
	if s == devices.SelectorLeft {
		return scope.ChannelA
	}
	return scope.ChannelB
}

func (c *Controller) positions() [3]devices.SwitchState {
	return [3]devices.SwitchState{c.switches[0].State(), c.switches[1].State(), c.switches[2].State()}
}

func (c *Controller) advance(to State) {
	if to <= c.state {
		return
	}
	c.state = to
	c.log.Debug("state", "state", c.state)
}

// Awake is called when the room is shown.
func (c *Controller) Awake() { c.advance(StateAwake) }

// Activate is called when the timer starts.
func (c *Controller) Activate() { c.advance(StateActive) }

// HandleSwitch flips switch i (0-based), recomputes the generator signal and
// refreshes the scope.
func (c *Controller) HandleSwitch(i int) error {
	if i < 0 || i >= len(c.switches) {
		return fmt.Errorf("puzzle: switch index %d out of range", i)
	}
	d := types.Switches[i]
	c.effects.Request(types.EffectRequest{Device: d, Sound: types.SoundButtonPress})
	st := c.switches[i].Clicked()
	c.log.Debug("switch", "switch", d, "state", st)

	gen, err := c.session.Resolve(c.positions())
	if err != nil {
		return err
	}
	c.generator = gen
	c.log.Debug("generator", "signal", c.generator.String())

	c.scope.SignalB = c.generator
	_, err = c.scope.Update()
	return err
}

// HandleSelector toggles the channel selector: LEFT shows channel A, RIGHT
// channel B.
func (c *Controller) HandleSelector() error {
	c.effects.Request(types.EffectRequest{Device: types.DeviceSelector, Sound: types.SoundButtonPress, Punch: true})
	st := c.selector.Clicked()
	c.log.Debug("selector", "state", st)

	c.scope.Channel = channelFor(st)
	_, err := c.scope.Update()
	return err
}

// HandlePress is the submit button's interaction begin.
func (c *Controller) HandlePress() {
	c.effects.Request(types.EffectRequest{Device: types.DeviceButton, Sound: types.SoundBigButtonPress, Punch: true})
	c.button.Press()
	c.log.Debug("button", "state", c.button.State())
}

// HandleRelease is the submit button's interaction end. While active it
// judges the generator signal against the solution for the current strike
// tier.
//
// Expectations:
//   - Returns VerdictNone without consulting the tables unless ACTIVE
//   - Chooses table 0, 1 or 2 from Bomb.Strikes() at release time
//   - On a match moves to DISARMED and calls Bomb.HandlePass once
//   - On a mismatch calls Bomb.HandleStrike and stays ACTIVE
//   - Returns an error wrapping tables.ErrSignalNotFound for a partial table
func (c *Controller) HandleRelease() (Result, error) {
	c.effects.Request(types.EffectRequest{Device: types.DeviceButton, Sound: types.SoundBigButtonRelease})
	c.button.Release()
	c.log.Debug("button", "state", c.button.State())

	if c.state != StateActive {
		return Result{Verdict: VerdictNone}, nil
	}

	strikes := c.bomb.Strikes()
	tbl := c.tables.Solution(strikes)
	solution, err := tbl.Get(c.session.Input)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Strikes:   strikes,
		Tier:      tbl.Tier(),
		Input:     c.session.Input,
		Generator: c.generator,
		Solution:  solution,
	}
	if c.generator == solution {
		res.Verdict = VerdictPass
		c.log.Debug("PASS", "input", res.Input.String(), "generator", res.Generator.String(), "solution", res.Solution.String())
		c.advance(StateDisarmed)
		c.bomb.HandlePass()
	} else {
		res.Verdict = VerdictStrike
		c.log.Debug("STRIKE", "input", res.Input.String(), "generator", res.Generator.String(), "solution", res.Solution.String())
		c.bomb.HandleStrike()
	}
	return res, nil
}

// HandleLightsChange switches the scope between day and night rendering.
func (c *Controller) HandleLightsChange(on bool) error {
	c.scope.Day = on
	_, err := c.scope.Update()
	return err
}

// Interact dispatches an interaction begin to the device's handler. The
// Result is only meaningful for the button's InteractEnded.
func (c *Controller) Interact(d types.Device) error {
	if i := types.SwitchIndex(d); i >= 0 {
		return c.HandleSwitch(i)
	}
	switch d {
	case types.DeviceSelector:
		return c.HandleSelector()
	case types.DeviceButton:
		c.HandlePress()
		return nil
	}
	return fmt.Errorf("puzzle: device %q is not interactable", d)
}

// InteractEnded dispatches an interaction end. Only the button reacts.
func (c *Controller) InteractEnded(d types.Device) (Result, error) {
	if d == types.DeviceButton {
		return c.HandleRelease()
	}
	return Result{Verdict: VerdictNone}, nil
}

// ID returns the instance id.
func (c *Controller) ID() int { return c.id }

// State returns the lifecycle state.
func (c *Controller) State() State { return c.state }

// Input returns the session's fixed input signal.
func (c *Controller) Input() types.Signal { return c.session.Input }

// Generator returns the current generator signal.
func (c *Controller) Generator() types.Signal { return c.generator }

// Session exposes the randomized setup for diagnostics.
func (c *Controller) Session() *session.Session { return c.session }

// SwitchState returns the position of switch i (0-based).
func (c *Controller) SwitchState(i int) devices.SwitchState { return c.switches[i].State() }

// SelectorState returns the selector position.
func (c *Controller) SelectorState() devices.SelectorState { return c.selector.State() }

// ButtonState returns the button state.
func (c *Controller) ButtonState() devices.ButtonState { return c.button.State() }

// Channel returns the scope channel.
func (c *Controller) Channel() scope.Channel { return c.scope.Channel }

// Shown returns the signal currently on the scope.
func (c *Controller) Shown() types.Signal { return c.scope.Shown() }

// Day reports whether the scope renders in daylight.
func (c *Controller) Day() bool { return c.scope.Day }

package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haricheung/signals/internal/devices"
	"github.com/haricheung/signals/internal/scope"
	"github.com/haricheung/signals/internal/session"
	"github.com/haricheung/signals/internal/tables"
	"github.com/haricheung/signals/internal/types"
)

const testSerial = "AB1CD2"

type fakePart struct {
	active bool
	offset types.Offset
}

func (p *fakePart) SetActive(a bool)                 { p.active = a }
func (p *fakePart) SetTextureOffset(off types.Offset) { p.offset = off }

type fakeRig map[string]*fakePart

func (r fakeRig) Part(name string) (devices.Part, bool) {
	p, ok := r[name]
	if !ok {
		return nil, false
	}
	return p, true
}

func rigWith(names ...string) fakeRig {
	r := make(fakeRig)
	for _, n := range names {
		r[n] = &fakePart{}
	}
	return r
}

func fullRigs() map[types.Device]devices.Rig {
	sw := []string{devices.PartNorth, devices.PartCenter, devices.PartSouth}
	return map[types.Device]devices.Rig{
		types.DeviceSwitch1:  rigWith(sw...),
		types.DeviceSwitch2:  rigWith(sw...),
		types.DeviceSwitch3:  rigWith(sw...),
		types.DeviceSelector: rigWith(devices.PartLeft, devices.PartRight),
		types.DeviceButton:   rigWith(devices.PartReleased, devices.PartPressed),
		types.DeviceScope: rigWith(scope.PartBackgroundDayA, scope.PartBackgroundDayB,
			scope.PartBackgroundNight, scope.PartSignalDay, scope.PartSignalNight),
	}
}

type fakeBomb struct {
	strikes     int
	passes      int
	strikeCalls int
}

func (b *fakeBomb) Strikes() int  { return b.strikes }
func (b *fakeBomb) HandlePass()   { b.passes++ }
func (b *fakeBomb) HandleStrike() { b.strikeCalls++ }

type recordEffects struct{ reqs []types.EffectRequest }

func (r *recordEffects) Request(e types.EffectRequest) { r.reqs = append(r.reqs, e) }

// other returns a signal different from s.
func other(s types.Signal) types.Signal {
	c := s.Coefficients()
	c[0] = types.Coefficients[(int(c[0])+1)%3]
	return types.SignalOf(c)
}

// solutionsFor builds a total table mapping every signal to itself except
// input, which maps to want.
func solutionsFor(tier tables.Tier, input, want types.Signal) *tables.SolutionTable {
	m := make(map[types.Signal]types.Signal, 27)
	for _, s := range types.AllSignals() {
		m[s] = s
	}
	m[input] = want
	return tables.NewSolutionTable(tier, m)
}

// newTestController builds a controller with tables whose three tiers
// expect want0, want1, want2 for the session's input signal.
func newTestController(t *testing.T, bomb *fakeBomb, want func(input, gen types.Signal) [3]types.Signal) (*Controller, *recordEffects) {
	t.Helper()
	set, err := tables.LoadEmbedded()
	require.NoError(t, err)

	sess := session.New(testSerial, 1)
	gen, err := sess.Resolve([3]devices.SwitchState{devices.SwitchDown, devices.SwitchDown, devices.SwitchDown})
	require.NoError(t, err)
	w := want(sess.Input, gen)
	for i := range set.Solutions {
		set.Solutions[i] = solutionsFor(tables.Tier(i), sess.Input, w[i])
	}

	fx := &recordEffects{}
	c, err := New(Config{
		Serial:     testSerial,
		InstanceID: 1,
		Tables:     set,
		Rigs:       fullRigs(),
		Bomb:       bomb,
		Effects:    fx,
	})
	require.NoError(t, err)
	return c, fx
}

func TestNew_InitialState(t *testing.T) {
	c, _ := newTestController(t, &fakeBomb{}, func(in, gen types.Signal) [3]types.Signal { return [3]types.Signal{gen, gen, gen} })

	assert.Equal(t, StateStart, c.State())
	for i := 0; i < 3; i++ {
		assert.Equal(t, devices.SwitchDown, c.SwitchState(i))
	}
	assert.Equal(t, devices.SelectorLeft, c.SelectorState())
	assert.Equal(t, devices.ButtonReleased, c.ButtonState())
	assert.Equal(t, scope.ChannelA, c.Channel())
	assert.False(t, c.Day())
	assert.Equal(t, c.Input(), c.Shown())

	sess := session.New(testSerial, 1)
	assert.Equal(t, sess.Input, c.Input())
}

func TestNew_DeterministicAcrossInstances(t *testing.T) {
	a, _ := newTestController(t, &fakeBomb{}, func(in, gen types.Signal) [3]types.Signal { return [3]types.Signal{gen, gen, gen} })
	b, _ := newTestController(t, &fakeBomb{}, func(in, gen types.Signal) [3]types.Signal { return [3]types.Signal{gen, gen, gen} })
	assert.Equal(t, a.Session(), b.Session())
	assert.Equal(t, a.Generator(), b.Generator())
}

func TestLifecycle_OnlyMovesForward(t *testing.T) {
	c, _ := newTestController(t, &fakeBomb{}, func(in, gen types.Signal) [3]types.Signal { return [3]types.Signal{gen, gen, gen} })
	c.Activate()
	assert.Equal(t, StateActive, c.State())
	c.Awake()
	assert.Equal(t, StateActive, c.State(), "awake after activate must not regress")
}

func TestRelease_BeforeActiveHasNoVerdict(t *testing.T) {
	// Submissions before ACTIVE are display-only presses
	bomb := &fakeBomb{}
	c, _ := newTestController(t, bomb, func(in, gen types.Signal) [3]types.Signal { return [3]types.Signal{gen, gen, gen} })
	c.Awake()

	c.HandlePress()
	assert.Equal(t, devices.ButtonPressed, c.ButtonState())
	res, err := c.HandleRelease()
	require.NoError(t, err)
	assert.Equal(t, VerdictNone, res.Verdict)
	assert.Equal(t, devices.ButtonReleased, c.ButtonState())
	assert.Equal(t, 0, bomb.passes)
	assert.Equal(t, 0, bomb.strikeCalls)
	assert.Equal(t, StateAwake, c.State())
}

func TestSubmit_AllDownNoStrikesPasses(t *testing.T) {
	// Switches all DOWN, selector LEFT, 0 strikes, table-0 expects the current generator
	bomb := &fakeBomb{}
	c, _ := newTestController(t, bomb, func(in, gen types.Signal) [3]types.Signal {
		return [3]types.Signal{gen, other(gen), other(gen)}
	})
	c.Awake()
	c.Activate()

	c.HandlePress()
	res, err := c.HandleRelease()
	require.NoError(t, err)
	assert.Equal(t, VerdictPass, res.Verdict)
	assert.Equal(t, tables.TierNoStrikes, res.Tier)
	assert.Equal(t, res.Solution, res.Generator)
	assert.Equal(t, StateDisarmed, c.State())
	assert.Equal(t, 1, bomb.passes)
	assert.Equal(t, 0, bomb.strikeCalls)

	// Further submissions after disarm are display-only
	c.HandlePress()
	res, err = c.HandleRelease()
	require.NoError(t, err)
	assert.Equal(t, VerdictNone, res.Verdict)
	assert.Equal(t, 1, bomb.passes)
}

func TestSubmit_MismatchStrikesAndStaysActive(t *testing.T) {
	bomb := &fakeBomb{}
	c, _ := newTestController(t, bomb, func(in, gen types.Signal) [3]types.Signal {
		return [3]types.Signal{other(gen), gen, gen}
	})
	c.Activate()

	c.HandlePress()
	res, err := c.HandleRelease()
	require.NoError(t, err)
	assert.Equal(t, VerdictStrike, res.Verdict)
	assert.NotEqual(t, res.Solution, res.Generator)
	assert.Equal(t, StateActive, c.State())
	assert.Equal(t, 1, bomb.strikeCalls)
	assert.Equal(t, 0, bomb.passes)
}

func TestSubmit_TierFollowsStrikeCount(t *testing.T) {
	// The generator that satisfies table-0 strikes once the bomb has one strike
	bomb := &fakeBomb{strikes: 1}
	c, _ := newTestController(t, bomb, func(in, gen types.Signal) [3]types.Signal {
		return [3]types.Signal{gen, other(gen), gen}
	})
	c.Activate()

	c.HandlePress()
	res, err := c.HandleRelease()
	require.NoError(t, err)
	assert.Equal(t, VerdictStrike, res.Verdict)
	assert.Equal(t, tables.TierOneStrike, res.Tier)

	// Two or more strikes select table-2, which accepts the generator
	bomb.strikes = 4
	c.HandlePress()
	res, err = c.HandleRelease()
	require.NoError(t, err)
	assert.Equal(t, VerdictPass, res.Verdict)
	assert.Equal(t, tables.TierTwoStrikes, res.Tier)
}

func TestSubmit_PartialTableIsError(t *testing.T) {
	c, _ := newTestController(t, &fakeBomb{}, func(in, gen types.Signal) [3]types.Signal { return [3]types.Signal{gen, gen, gen} })
	c.tables.Solutions[0] = tables.NewSolutionTable(tables.TierNoStrikes, nil)
	c.Activate()

	_, err := c.HandleRelease()
	require.Error(t, err)
	assert.ErrorIs(t, err, tables.ErrSignalNotFound)
	assert.Equal(t, StateActive, c.State())
}

func TestSwitch_FourClicksRestoreGenerator(t *testing.T) {
	c, _ := newTestController(t, &fakeBomb{}, func(in, gen types.Signal) [3]types.Signal { return [3]types.Signal{gen, gen, gen} })
	before := c.Generator()

	for i := 0; i < 4; i++ {
		require.NoError(t, c.HandleSwitch(0))
	}
	assert.Equal(t, devices.SwitchDown, c.SwitchState(0))
	assert.Equal(t, before, c.Generator())
}

func TestSwitch_GeneratorTracksSession(t *testing.T) {
	// After any click the generator equals the session's resolution of the positions
	c, _ := newTestController(t, &fakeBomb{}, func(in, gen types.Signal) [3]types.Signal { return [3]types.Signal{gen, gen, gen} })
	for _, i := range []int{0, 1, 1, 2, 0, 2, 2} {
		require.NoError(t, c.HandleSwitch(i))
		want, err := c.Session().Resolve([3]devices.SwitchState{c.SwitchState(0), c.SwitchState(1), c.SwitchState(2)})
		require.NoError(t, err)
		assert.Equal(t, want, c.Generator())
	}
	assert.Error(t, c.HandleSwitch(3))
}

func TestSelector_TwiceRestoresChannel(t *testing.T) {
	c, _ := newTestController(t, &fakeBomb{}, func(in, gen types.Signal) [3]types.Signal { return [3]types.Signal{gen, gen, gen} })

	require.NoError(t, c.HandleSelector())
	assert.Equal(t, scope.ChannelB, c.Channel())
	assert.Equal(t, c.Generator(), c.Shown())

	require.NoError(t, c.HandleSelector())
	assert.Equal(t, scope.ChannelA, c.Channel())
	assert.Equal(t, c.Input(), c.Shown())
}

func TestLightsChange_TogglesDay(t *testing.T) {
	c, _ := newTestController(t, &fakeBomb{}, func(in, gen types.Signal) [3]types.Signal { return [3]types.Signal{gen, gen, gen} })
	require.NoError(t, c.HandleLightsChange(true))
	assert.True(t, c.Day())
	require.NoError(t, c.HandleLightsChange(false))
	assert.False(t, c.Day())
}

func TestEffects_OnePerInteraction(t *testing.T) {
	c, fx := newTestController(t, &fakeBomb{}, func(in, gen types.Signal) [3]types.Signal { return [3]types.Signal{gen, gen, gen} })

	require.NoError(t, c.Interact(types.DeviceSwitch2))
	require.NoError(t, c.Interact(types.DeviceSelector))
	require.NoError(t, c.Interact(types.DeviceButton))
	_, err := c.InteractEnded(types.DeviceButton)
	require.NoError(t, err)
	_, err = c.InteractEnded(types.DeviceSwitch2)
	require.NoError(t, err)

	require.Len(t, fx.reqs, 4)
	assert.Equal(t, types.EffectRequest{Device: types.DeviceSwitch2, Sound: types.SoundButtonPress}, fx.reqs[0])
	assert.Equal(t, types.EffectRequest{Device: types.DeviceSelector, Sound: types.SoundButtonPress, Punch: true}, fx.reqs[1])
	assert.Equal(t, types.EffectRequest{Device: types.DeviceButton, Sound: types.SoundBigButtonPress, Punch: true}, fx.reqs[2])
	assert.Equal(t, types.EffectRequest{Device: types.DeviceButton, Sound: types.SoundBigButtonRelease}, fx.reqs[3])

	assert.Error(t, c.Interact(types.DeviceScope))
}

func TestNew_MissingDeviceObject(t *testing.T) {
	set, err := tables.LoadEmbedded()
	require.NoError(t, err)
	rigs := fullRigs()
	delete(rigs, types.DeviceSelector)

	_, err = New(Config{Serial: testSerial, InstanceID: 1, Tables: set, Rigs: rigs, Bomb: &fakeBomb{}})
	assert.ErrorIs(t, err, devices.ErrMissingPart)
}

func TestNew_MissingScopePart(t *testing.T) {
	set, err := tables.LoadEmbedded()
	require.NoError(t, err)
	rigs := fullRigs()
	delete(rigs[types.DeviceScope].(fakeRig), scope.PartSignalDay)

	_, err = New(Config{Serial: testSerial, InstanceID: 1, Tables: set, Rigs: rigs, Bomb: &fakeBomb{}})
	assert.ErrorIs(t, err, devices.ErrMissingPart)
}

func TestNew_IncompleteOffsetTable(t *testing.T) {
	set, err := tables.LoadEmbedded()
	require.NoError(t, err)
	set.Offsets = tables.NewOffsetTable(nil)

	_, err = New(Config{Serial: testSerial, InstanceID: 1, Tables: set, Rigs: fullRigs(), Bomb: &fakeBomb{}})
	assert.ErrorIs(t, err, tables.ErrSignalNotFound)
}

package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haricheung/signals/internal/bus"
	"github.com/haricheung/signals/internal/host"
	"github.com/haricheung/signals/internal/tables"
	"github.com/haricheung/signals/internal/types"
)

func makeMsg(t types.MessageType, payload any) types.Message {
	return types.Message{Type: t, Payload: payload}
}

// --- FlowLine ---

func TestFlowLine_Verdict(t *testing.T) {
	v := types.Verdict{Outcome: "strike", Tier: "no_strikes",
		Input: types.NewSignal(types.Zero, types.Positive, types.Negative)}
	got := FlowLine(makeMsg(types.MsgVerdict, v))
	assert.Contains(t, got, "STRIKE")
	assert.Contains(t, got, "tier=no_strikes")
	assert.Contains(t, got, "C2=POSITIVE")

	v.Outcome = "pass"
	assert.Contains(t, FlowLine(makeMsg(types.MsgVerdict, v)), "PASS")
}

func TestFlowLine_Interaction(t *testing.T) {
	got := FlowLine(makeMsg(types.MsgInteraction, types.Interaction{Device: types.DeviceSwitch2, Phase: "begin", State: "UP"}))
	assert.Contains(t, got, "S2")
	assert.Contains(t, got, "UP")
}

func TestFlowLine_SilentEffectIsHidden(t *testing.T) {
	// Effect with no sound and no punch has nothing to show
	assert.Empty(t, FlowLine(makeMsg(types.MsgEffect, types.EffectRequest{Device: types.DeviceSwitch1})))
	got := FlowLine(makeMsg(types.MsgEffect, types.EffectRequest{Device: types.DeviceButton, Sound: types.SoundBigButtonPress, Punch: true}))
	assert.Contains(t, got, "BigButtonPress")
	assert.Contains(t, got, "punch")
}

func TestFlowLine_UnknownPayload(t *testing.T) {
	assert.Empty(t, FlowLine(makeMsg(types.MsgLifecycle, "not a lifecycle")))
}

// --- Display ---

func TestDisplay_PrintsFannedInFeeds(t *testing.T) {
	b := bus.New()
	var out bytes.Buffer
	d := New(&out, b.Subscribe(types.MsgLifecycle), b.Subscribe(types.MsgLights))

	done := make(chan struct{})
	go func() {
		d.Run(context.Background())
		close(done)
	}()
	b.Publish(makeMsg(types.MsgLifecycle, types.Lifecycle{State: "AWAKE"}))
	b.Publish(makeMsg(types.MsgLights, types.Lights{On: true}))
	b.Close()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("display did not exit after feeds closed")
	}
	assert.Contains(t, out.String(), "module AWAKE")
	assert.Contains(t, out.String(), "lights on")
}

func TestDisplay_QuietSuppressesOutput(t *testing.T) {
	feed := make(chan types.Message, 1)
	var out bytes.Buffer
	d := New(&out, feed)
	d.SetQuiet(true)

	feed <- makeMsg(types.MsgLifecycle, types.Lifecycle{State: "ACTIVE"})
	close(feed)
	d.Run(context.Background())
	assert.Empty(t, out.String())
}

// --- Waveform ---

func TestWaveform_RowsHaveEqualWidth(t *testing.T) {
	for _, s := range types.AllSignals() {
		rows := Waveform(s)
		require.Len(t, rows, 3)
		w := runewidth.StringWidth(rows[0])
		assert.Equal(t, w, runewidth.StringWidth(rows[1]), s.String())
		assert.Equal(t, w, runewidth.StringWidth(rows[2]), s.String())
	}
}

func TestWaveform_LevelsAndJoins(t *testing.T) {
	rows := Waveform(types.NewSignal(types.Positive, types.Negative, types.Negative))
	assert.True(t, strings.HasPrefix(rows[0], "──────┐"))
	assert.Contains(t, rows[1], "│")
	assert.Contains(t, rows[2], "└─────────────")
}

// --- Board ---

func TestBoard_RendersHostParts(t *testing.T) {
	set, err := tables.LoadEmbedded()
	require.NoError(t, err)
	h, err := host.New(nil, host.Config{Serial: "AB1CD2", InstanceID: 1, Tables: set})
	require.NoError(t, err)

	got := Board(h.Board(), set.Offsets)
	assert.Contains(t, got, "SIGNALS")
	assert.Contains(t, got, "▼ down")
	assert.Contains(t, got, "[A] B")
	assert.Contains(t, got, "☾")
	assert.NotContains(t, got, "unknown offset")

	_, err = h.Run([]types.Target{types.DeviceSwitch1, types.DeviceSelector})
	require.NoError(t, err)
	require.NoError(t, h.SetLights(true))
	got = Board(h.Board(), set.Offsets)
	assert.Contains(t, got, "● center")
	assert.Contains(t, got, "A [B]")
	assert.Contains(t, got, "ch B")
}

func TestPad_WideRunes(t *testing.T) {
	assert.Equal(t, 10, runewidth.StringWidth(pad("信号", 10)))
	assert.Equal(t, 10, runewidth.StringWidth(pad("S1", 10)))
}

// Package host is the terminal stand-in for the game the module lives in.
// It owns the strike counter, routes effect requests and verdicts onto the
// bus, and drives the controller one event at a time.
package host

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haricheung/signals/internal/bus"
	"github.com/haricheung/signals/internal/puzzle"
	"github.com/haricheung/signals/internal/tables"
	"github.com/haricheung/signals/internal/types"
)

// Config holds the module identity and data for one host session.
type Config struct {
	Serial     string
	InstanceID int
	Tables     *tables.Set
	Logger     *slog.Logger
}

// Host runs one module and publishes what happens to it.
//
// Expectations:
//   - Not safe for concurrent use; the REPL calls it from one goroutine
//   - Publishes exactly one Interaction message per begin and per end event
//   - Publishes a Verdict message for every judged submission
type Host struct {
	sessionID string
	bus       *bus.Bus
	board     *Board
	ctrl      *puzzle.Controller
	strikes   int
	passed    bool
	lights    bool
}

// New builds the board and the controller (module start) and publishes the
// START lifecycle message.
func New(b *bus.Bus, cfg Config) (*Host, error) {
	h := &Host{
		sessionID: uuid.New().String(),
		bus:       b,
		board:     NewBoard(),
	}
	var logger puzzle.Logger
	if cfg.Logger != nil {
		logger = cfg.Logger.With("session", h.sessionID)
	}
	ctrl, err := puzzle.New(puzzle.Config{
		Serial:     cfg.Serial,
		InstanceID: cfg.InstanceID,
		Tables:     cfg.Tables,
		Rigs:       h.board.Rigs(),
		Bomb:       h,
		Effects:    h,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("module start: %w", err)
	}
	h.ctrl = ctrl
	h.publishLifecycle()
	return h, nil
}

func (h *Host) publish(t types.MessageType, payload any) {
	if h.bus == nil {
		return
	}
	h.bus.Publish(types.Message{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		SessionID: h.sessionID,
		Type:      t,
		Payload:   payload,
	})
}

func (h *Host) publishLifecycle() {
	h.publish(types.MsgLifecycle, types.Lifecycle{State: h.ctrl.State().String()})
}

// Awake signals that the room is visible.
func (h *Host) Awake() {
	h.ctrl.Awake()
	h.publishLifecycle()
}

// Activate signals that the timer started.
func (h *Host) Activate() {
	h.ctrl.Activate()
	h.publishLifecycle()
}

// SetLights delivers an ambient light change.
func (h *Host) SetLights(on bool) error {
	h.lights = on
	h.publish(types.MsgLights, types.Lights{On: on})
	return h.ctrl.HandleLightsChange(on)
}

// Run interacts with each target in order. The button gets a press and a
// release; other devices only an interaction begin. Run stops at the first
// error, which is always a data or wiring defect.
func (h *Host) Run(targets []types.Target) ([]puzzle.Result, error) {
	var results []puzzle.Result
	for _, t := range targets {
		if err := h.ctrl.Interact(t); err != nil {
			return results, err
		}
		h.publish(types.MsgInteraction, types.Interaction{Device: t, Phase: "begin", State: h.deviceState(t)})

		if t != types.DeviceButton {
			continue
		}
		res, err := h.ctrl.InteractEnded(t)
		if err != nil {
			return results, err
		}
		h.publish(types.MsgInteraction, types.Interaction{Device: t, Phase: "end", State: h.deviceState(t)})
		if res.Verdict == puzzle.VerdictNone {
			continue
		}
		results = append(results, res)
		h.publish(types.MsgVerdict, types.Verdict{
			Outcome:   res.Verdict.String(),
			Strikes:   res.Strikes,
			Tier:      res.Tier.String(),
			Input:     res.Input,
			Generator: res.Generator,
			Solution:  res.Solution,
		})
		if res.Verdict == puzzle.VerdictPass {
			h.publishLifecycle()
		}
	}
	return results, nil
}

func (h *Host) deviceState(d types.Device) string {
	if i := types.SwitchIndex(d); i >= 0 {
		return h.ctrl.SwitchState(i).String()
	}
	switch d {
	case types.DeviceSelector:
		return h.ctrl.SelectorState().String()
	case types.DeviceButton:
		return h.ctrl.ButtonState().String()
	}
	return ""
}

// Strikes implements puzzle.Bomb.
func (h *Host) Strikes() int { return h.strikes }

// HandlePass implements puzzle.Bomb.
func (h *Host) HandlePass() { h.passed = true }

// HandleStrike implements puzzle.Bomb.
func (h *Host) HandleStrike() { h.strikes++ }

// SetStrikes overrides the strike counter (other modules on the bomb may
// have struck).
func (h *Host) SetStrikes(n int) {
	if n < 0 {
		n = 0
	}
	h.strikes = n
}

// Request implements puzzle.Effects by publishing the effect.
func (h *Host) Request(e types.EffectRequest) {
	h.publish(types.MsgEffect, e)
}

// SessionID returns the id every published message carries.
func (h *Host) SessionID() string { return h.sessionID }

// Controller returns the module controller.
func (h *Host) Controller() *puzzle.Controller { return h.ctrl }

// Board returns the visual parts.
func (h *Host) Board() *Board { return h.board }

// Passed reports whether the module was solved.
func (h *Host) Passed() bool { return h.passed }

// Lights reports the last ambient light state delivered.
func (h *Host) Lights() bool { return h.lights }

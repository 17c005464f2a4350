// Package auditor taps the bus read-only and writes one AuditEvent per
// message to a JSONL file, flagging host behaviour that looks wrong for a
// module session.
package auditor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/haricheung/signals/internal/types"
)

const strikeStreakThreshold = 3

// sessionState is what the auditor remembers about one session.
type sessionState struct {
	lifecycle string
	streak    int // consecutive strikes
}

// Auditor taps the message bus read-only and writes structured AuditEvents to a JSONL file.
type Auditor struct {
	tap     <-chan types.Message
	logPath string
	mu      sync.Mutex
	out     io.Writer

	sessions  map[string]*sessionState
	anomalies []string
}

// New creates an Auditor.
func New(tap <-chan types.Message, logPath string) *Auditor {
	return &Auditor{
		tap:      tap,
		logPath:  logPath,
		sessions: make(map[string]*sessionState),
	}
}

// Run starts the auditor loop. It blocks until ctx is cancelled or the tap closes.
func (a *Auditor) Run(ctx context.Context) {
	if err := os.MkdirAll(filepath.Dir(a.logPath), 0o755); err != nil {
		log.Printf("[AUDIT] ERROR: create log dir: %v", err)
		return
	}

	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("[AUDIT] ERROR: open log file: %v", err)
		return
	}
	a.mu.Lock()
	a.out = f
	a.mu.Unlock()
	defer f.Close()

	log.Printf("[AUDIT] started; writing to %s", a.logPath)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-a.tap:
			if !ok {
				return
			}
			a.process(msg)
		}
	}
}

func (a *Auditor) session(id string) *sessionState {
	s, ok := a.sessions[id]
	if !ok {
		s = &sessionState{lifecycle: "START"}
		a.sessions[id] = s
	}
	return s
}

func (a *Auditor) process(msg types.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()

	anomaly := "none"
	var detail *string
	flag := func(kind, d string) {
		anomaly = kind
		detail = &d
		a.anomalies = append(a.anomalies, kind+": "+d)
		log.Printf("[AUDIT] %s: %s", kind, d)
	}

	s := a.session(msg.SessionID)

	switch msg.Type {
	case types.MsgLifecycle:
		var l types.Lifecycle
		if remarshal(msg.Payload, &l) == nil && l.State != "" {
			s.lifecycle = l.State
		}

	case types.MsgInteraction:
		var in types.Interaction
		if remarshal(msg.Payload, &in) != nil {
			break
		}
		// 1. Interaction after the module was solved
		if s.lifecycle == "DISARMED" {
			flag("post_disarm_interaction", fmt.Sprintf("session %s %s %s after disarm", msg.SessionID, in.Device, in.Phase))
			break
		}
		// 2. Submit released before the timer started
		if in.Device == types.DeviceButton && in.Phase == "end" && s.lifecycle != "ACTIVE" {
			flag("inactive_submit", fmt.Sprintf("session %s submit while %s", msg.SessionID, s.lifecycle))
		}

	case types.MsgVerdict:
		var v types.Verdict
		if remarshal(msg.Payload, &v) != nil {
			break
		}
		if v.Outcome != "strike" {
			s.streak = 0
			break
		}
		// 3. Strike streak
		s.streak++
		if s.streak >= strikeStreakThreshold {
			flag("strike_streak", fmt.Sprintf("session %s %d consecutive strikes (threshold=%d) tier=%s",
				msg.SessionID, s.streak, strikeStreakThreshold, v.Tier))
		}
	}

	a.writeEvent(types.AuditEvent{
		EventID:     uuid.New().String(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		SessionID:   msg.SessionID,
		MessageType: string(msg.Type),
		Anomaly:     anomaly,
		Detail:      detail,
	})
}

// writeEvent appends one JSON line; callers hold a.mu.
func (a *Auditor) writeEvent(e types.AuditEvent) {
	if a.out == nil {
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		log.Printf("[AUDIT] ERROR: marshal event: %v", err)
		return
	}
	if _, err := fmt.Fprintf(a.out, "%s\n", data); err != nil {
		log.Printf("[AUDIT] ERROR: write event: %v", err)
	}
}

// Anomalies returns a copy of every anomaly flagged so far.
func (a *Auditor) Anomalies() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.anomalies...)
}

func remarshal(src, dst any) error {
	b, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}

package types

import "time"

// Device identifies one interactable part of the module.
type Device string

const (
	DeviceSwitch1  Device = "S1"
	DeviceSwitch2  Device = "S2"
	DeviceSwitch3  Device = "S3"
	DeviceSelector Device = "CS"
	DeviceButton   Device = "B"
	DeviceScope    Device = "SCOPE"
)

// Target is one device the host should interact with, in order.
type Target = Device

// Switches lists the switch devices in slot order.
var Switches = [3]Device{DeviceSwitch1, DeviceSwitch2, DeviceSwitch3}

// SwitchIndex returns the 0-based index of a switch device, or -1.
func SwitchIndex(d Device) int {
	for i, s := range Switches {
		if s == d {
			return i
		}
	}
	return -1
}

// Sound names a host sound effect.
type Sound string

const (
	SoundNone             Sound = ""
	SoundButtonPress      Sound = "ButtonPress"
	SoundBigButtonPress   Sound = "BigButtonPress"
	SoundBigButtonRelease Sound = "BigButtonRelease"
)

// EffectRequest is the single visual/audio side effect an interaction asks
// the host for.
type EffectRequest struct {
	Device Device `json:"device"`
	Sound  Sound  `json:"sound,omitempty"`
	Punch  bool   `json:"punch,omitempty"` // interaction punch (camera shake)
}

// MessageType identifies the payload type of a bus message
type MessageType string

const (
	MsgLifecycle   MessageType = "Lifecycle"
	MsgInteraction MessageType = "Interaction"
	MsgEffect      MessageType = "Effect"
	MsgVerdict     MessageType = "Verdict"
	MsgLights      MessageType = "Lights"
)

// Message is the envelope for everything the host publishes on the bus.
type Message struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	SessionID string      `json:"session_id"`
	Type      MessageType `json:"type"`
	Payload   any         `json:"payload"`
}

// Lifecycle is published when the module changes lifecycle state.
type Lifecycle struct {
	State string `json:"state"` // "START" | "AWAKE" | "ACTIVE" | "DISARMED"
}

// Interaction is published for every interaction begin/end the host delivers.
type Interaction struct {
	Device Device `json:"device"`
	Phase  string `json:"phase"` // "begin" | "end"
	State  string `json:"state"` // device state after the handler ran
}

// Verdict is published once per submission evaluated while active.
type Verdict struct {
	Outcome   string `json:"outcome"` // "pass" | "strike"
	Strikes   int    `json:"strikes"` // strike count the tier was chosen from
	Tier      string `json:"tier"`
	Input     Signal `json:"input"`
	Generator Signal `json:"generator"`
	Solution  Signal `json:"solution"`
}

// Lights is published when the ambient light state changes.
type Lights struct {
	On bool `json:"on"`
}

// VerdictRecord is one persisted verdict in the history store.
type VerdictRecord struct {
	ID        string  `json:"id"`
	SessionID string  `json:"session_id"`
	Seq       int     `json:"seq"`
	Timestamp string  `json:"timestamp"`
	Verdict   Verdict `json:"verdict"`
}

// AuditEvent is written to the audit log by the Auditor
type AuditEvent struct {
	EventID     string  `json:"event_id"`
	Timestamp   string  `json:"timestamp"`
	SessionID   string  `json:"session_id"`
	MessageType string  `json:"message_type"`
	Anomaly     string  `json:"anomaly"` // "inactive_submit" | "post_disarm_interaction" | "strike_streak" | "none"
	Detail      *string `json:"detail"`
}

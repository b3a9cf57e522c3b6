package model

import "time"

type State string

const (
	StateUninitialized State = "uninitialized"
	StateConnecting    State = "connecting"
	StateAwaitingScan  State = "awaiting_scan"
	StateReady         State = "ready"
	StateDisconnected  State = "disconnected"
	// StateDegraded means a reset stopped after the client was destroyed;
	// another reset resumes it.
	StateDegraded State = "degraded"
)

// Status is a snapshot of the single WhatsApp session.
type Status struct {
	State       State     `json:"state"`
	InstanceID  string    `json:"instanceId,omitempty"`
	QRAvailable bool      `json:"qrAvailable"`
	QRProduced  bool      `json:"qrProduced"`
	LastError   string    `json:"lastError,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

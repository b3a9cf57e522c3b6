package ws

import "time"

// Event names shared with websocket consumers.
const (
	EventQRGenerated          = "QR_GENERATED"
	EventSessionStatusChanged = "SESSION_STATUS_CHANGED"
	EventSessionError         = "SESSION_ERROR"
)

// WsEvent is the envelope of every websocket message. Consumers switch on
// Event and decode Data accordingly.
type WsEvent struct {
	Event     string      `json:"event"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// QRGeneratedData carries a freshly rendered login QR.
type QRGeneratedData struct {
	InstanceID string `json:"instance_id"`
	QRData     string `json:"qr_data"`
}

// SessionStatusChangedData is sent on ready, disconnect and reset transitions.
type SessionStatusChangedData struct {
	InstanceID string `json:"instance_id,omitempty"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
}

// SessionErrorData reports a failed lifecycle step, e.g. a reset that
// stopped half way.
type SessionErrorData struct {
	InstanceID string `json:"instance_id,omitempty"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// RealtimePublisher is implemented by Hub; nil-safe callers check for nil.
type RealtimePublisher interface {
	Publish(evt WsEvent)
}

// NewEvent stamps evt with the current UTC time.
func NewEvent(name string, data interface{}) WsEvent {
	return WsEvent{Event: name, Timestamp: time.Now().UTC(), Data: data}
}

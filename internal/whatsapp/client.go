// Package whatsapp wraps the WhatsApp multi-device client behind a small,
// event-driven Client interface.
package whatsapp

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotReady       = errors.New("whatsapp client is not ready")
	ErrDestroyed      = errors.New("whatsapp client was destroyed")
	ErrAlreadyStarted = errors.New("whatsapp client already started")
	ErrInvalidAddress = errors.New("invalid recipient address")
	ErrEmptyBody      = errors.New("message body is empty")
)

type EventKind string

const (
	EventChallenge    EventKind = "challenge"
	EventReady        EventKind = "ready"
	EventMessage      EventKind = "message"
	EventDisconnected EventKind = "disconnected"
)

// Event is published by a Client on its Events channel.
type Event struct {
	Kind EventKind
	// Code is the raw login challenge (EventChallenge).
	Code string
	// From and Body describe an inbound message (EventMessage).
	From string
	Body string
	// Reason explains an EventDisconnected.
	Reason string
}

type SendResult struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	To        string    `json:"to"`
}

// Client is one connection to the messaging network. Instances are single use:
// once destroyed, a new one must be created.
type Client interface {
	ID() string
	// Connect starts connecting in the background and returns immediately.
	Connect(ctx context.Context) error
	SendMessage(ctx context.Context, address, body string) (*SendResult, error)
	// Logout unlinks the device from the phone. No-op without a session.
	Logout(ctx context.Context) error
	// Destroy tears down the connection and closes the Events channel.
	Destroy(ctx context.Context) error
	Events() <-chan Event
	Ready() bool
}

// Factory creates a fresh, unconnected Client.
type Factory func(ctx context.Context) (Client, error)

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gowa-bridge/internal/model"
	"gowa-bridge/internal/qr"
	"gowa-bridge/internal/whatsapp"
	"gowa-bridge/internal/ws"

	"github.com/rs/zerolog"
)

var (
	ErrNotInitialized     = errors.New("whatsapp client is not initialized")
	ErrAlreadyInitialized = errors.New("whatsapp client is already initialized")
	ErrResetInProgress    = errors.New("whatsapp reset already in progress")
)

// SessionStore removes persisted authentication artifacts.
type SessionStore interface {
	Clear(ctx context.Context) error
}

// Forwarder relays an inbound message without blocking the caller.
type Forwarder interface {
	Forward(sender, body string)
}

type Options struct {
	Factory   whatsapp.Factory
	Store     SessionStore
	QR        *qr.Cache
	Renderer  qr.Renderer
	Forwarder Forwarder
	// Realtime is optional.
	Realtime ws.RealtimePublisher
	Log      zerolog.Logger
}

type resetStep int

const (
	stepNone resetStep = iota
	stepClear
	stepInitialize
)

func (s resetStep) String() string {
	switch s {
	case stepClear:
		return "clear"
	case stepInitialize:
		return "initialize"
	}
	return "none"
}

// Controller owns the single WhatsApp client of the process.
type Controller struct {
	factory   whatsapp.Factory
	store     SessionStore
	qr        *qr.Cache
	renderer  qr.Renderer
	forwarder Forwarder
	realtime  ws.RealtimePublisher
	log       zerolog.Logger

	// resetMu serializes Reset; concurrent calls fail instead of queueing.
	resetMu sync.Mutex

	mu        sync.RWMutex
	current   whatsapp.Client
	state     model.State
	pending   resetStep
	lastErr   error
	updatedAt time.Time
}

func New(opts Options) *Controller {
	cache := opts.QR
	if cache == nil {
		cache = qr.NewCache()
	}
	return &Controller{
		factory:   opts.Factory,
		store:     opts.Store,
		qr:        cache,
		renderer:  opts.Renderer,
		forwarder: opts.Forwarder,
		realtime:  opts.Realtime,
		log:       opts.Log,
		state:     model.StateUninitialized,
		updatedAt: time.Now(),
	}
}

// Initialize creates the client, wires its events and starts connecting.
func (c *Controller) Initialize(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initializeLocked(ctx)
}

func (c *Controller) initializeLocked(ctx context.Context) error {
	if c.current != nil {
		return ErrAlreadyInitialized
	}

	client, err := c.factory(ctx)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	c.qr.Bind(client.ID())
	c.current = client
	go c.dispatch(client)

	if err := client.Connect(ctx); err != nil {
		c.current = nil
		c.qr.Bind("")
		if derr := client.Destroy(ctx); derr != nil {
			c.log.Warn().Err(derr).Msg("Failed to destroy client after connect error")
		}
		return fmt.Errorf("connect client: %w", err)
	}

	c.state = model.StateConnecting
	c.updatedAt = time.Now()
	c.log.Info().Str("instance", client.ID()).Msg("WhatsApp client initialized")
	return nil
}

// Current returns a snapshot of the active client.
func (c *Controller) Current() (whatsapp.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil, ErrNotInitialized
	}
	return c.current, nil
}

// QR returns the latest login QR of the active client.
func (c *Controller) QR() (string, bool) {
	return c.qr.Read()
}

func (c *Controller) Status() model.Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, available := c.qr.Read()
	st := model.Status{
		State:       c.state,
		QRAvailable: available,
		QRProduced:  c.qr.Produced(),
		UpdatedAt:   c.updatedAt,
	}
	if c.current != nil {
		st.InstanceID = c.current.ID()
	}
	if c.lastErr != nil {
		st.LastError = c.lastErr.Error()
	}
	return st
}

// Reset destroys the client, clears the stored session and starts a new
// client. A reset that failed after the destroy step is resumed from the
// failed step by the next call.
func (c *Controller) Reset(ctx context.Context) error {
	if !c.resetMu.TryLock() {
		return ErrResetInProgress
	}
	defer c.resetMu.Unlock()

	c.mu.RLock()
	current, step := c.current, c.pending
	c.mu.RUnlock()

	if current == nil && step == stepNone {
		return ErrNotInitialized
	}

	if current != nil {
		if current.Ready() {
			if err := current.Logout(ctx); err != nil {
				c.log.Warn().Err(err).Msg("Logout before reset failed, continuing")
			}
		}

		// ErrDestroyed means the teardown already happened.
		if err := current.Destroy(ctx); err != nil && !errors.Is(err, whatsapp.ErrDestroyed) {
			c.mu.Lock()
			c.lastErr = err
			c.mu.Unlock()
			c.publishError(current.ID(), "DESTROY_FAILED", err)
			c.log.Error().Err(err).Msg("Failed to destroy WhatsApp client")
			return fmt.Errorf("destroy client: %w", err)
		}

		c.mu.Lock()
		c.current = nil
		c.pending = stepClear
		c.state = model.StateUninitialized
		c.updatedAt = time.Now()
		c.mu.Unlock()
		c.qr.Bind("")
		step = stepClear
		c.log.Info().Str("instance", current.ID()).Msg("WhatsApp client destroyed, clearing session")
	} else {
		c.log.Warn().Stringer("step", step).Msg("Resuming interrupted reset")
	}

	if step == stepClear {
		if err := c.store.Clear(ctx); err != nil {
			c.degrade(stepClear, err)
			return fmt.Errorf("clear session: %w", err)
		}
		step = stepInitialize
	}

	c.mu.Lock()
	if err := c.initializeLocked(ctx); err != nil {
		c.mu.Unlock()
		c.degrade(stepInitialize, err)
		return fmt.Errorf("initialize client: %w", err)
	}
	c.pending = stepNone
	c.lastErr = nil
	fresh := c.current.ID()
	c.mu.Unlock()

	c.log.Info().Str("instance", fresh).Msg("WhatsApp reset, waiting for a new QR code")
	c.publishStatus(fresh, model.StateConnecting, "reset")
	return nil
}

func (c *Controller) degrade(step resetStep, err error) {
	c.mu.Lock()
	c.pending = step
	c.lastErr = err
	c.state = model.StateDegraded
	c.updatedAt = time.Now()
	c.mu.Unlock()

	c.log.Error().Err(err).Stringer("step", step).Msg("Reset interrupted, session is degraded until the next reset")
	c.publishError("", "RESET_FAILED", err)
}

// Shutdown destroys the active client and keeps the stored session.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	current := c.current
	c.current = nil
	c.state = model.StateUninitialized
	c.updatedAt = time.Now()
	c.mu.Unlock()

	if current == nil {
		return nil
	}
	c.qr.Bind("")
	return current.Destroy(ctx)
}

func (c *Controller) dispatch(client whatsapp.Client) {
	log := c.log.With().Str("instance", client.ID()).Logger()

	for evt := range client.Events() {
		if !c.isCurrent(client) {
			log.Debug().Str("event", string(evt.Kind)).Msg("Dropping event from inactive client")
			continue
		}

		switch evt.Kind {
		case whatsapp.EventChallenge:
			payload, err := c.renderer.Render(evt.Code)
			if err != nil {
				log.Error().Err(err).Msg("Failed to render QR code")
				continue
			}
			if c.qr.Record(client.ID(), payload) {
				log.Info().Msg("QR code updated, fetch it from /get-qr")
				c.setState(client, model.StateAwaitingScan, "")
				c.publish(ws.EventQRGenerated, ws.QRGeneratedData{InstanceID: client.ID(), QRData: payload})
			}

		case whatsapp.EventReady:
			c.qr.Clear()
			c.setState(client, model.StateReady, "")

		case whatsapp.EventMessage:
			c.forwarder.Forward(evt.From, evt.Body)

		case whatsapp.EventDisconnected:
			log.Warn().Str("reason", evt.Reason).Msg("WhatsApp client disconnected")
			c.setState(client, model.StateDisconnected, evt.Reason)
		}
	}
}

func (c *Controller) isCurrent(client whatsapp.Client) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current == client
}

func (c *Controller) setState(client whatsapp.Client, state model.State, reason string) {
	c.mu.Lock()
	if c.current != client {
		c.mu.Unlock()
		return
	}
	c.state = state
	c.updatedAt = time.Now()
	c.mu.Unlock()

	c.publishStatus(client.ID(), state, reason)
}

func (c *Controller) publishStatus(instanceID string, state model.State, reason string) {
	c.publish(ws.EventSessionStatusChanged, ws.SessionStatusChangedData{
		InstanceID: instanceID,
		Status:     string(state),
		Reason:     reason,
	})
}

func (c *Controller) publishError(instanceID, code string, err error) {
	c.publish(ws.EventSessionError, ws.SessionErrorData{
		InstanceID: instanceID,
		Code:       code,
		Message:    err.Error(),
	})
}

func (c *Controller) publish(name string, data interface{}) {
	if c.realtime == nil {
		return
	}
	c.realtime.Publish(ws.NewEvent(name, data))
}

package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"gowa-bridge/internal/helper"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
)

const eventBuffer = 64

// Conn is the part of *whatsmeow.Client the adapter drives.
type Conn interface {
	AddEventHandler(handler whatsmeow.EventHandler) uint32
	RemoveEventHandler(id uint32) bool
	GetQRChannel(ctx context.Context) (<-chan whatsmeow.QRChannelItem, error)
	Connect() error
	Disconnect()
	IsLoggedIn() bool
	Logout(ctx context.Context) error
	SendMessage(ctx context.Context, to types.JID, message *waE2E.Message, extra ...whatsmeow.SendRequestExtra) (whatsmeow.SendResponse, error)
}

// Adapter implements Client on top of a whatsmeow connection.
type Adapter struct {
	id   string
	conn Conn
	log  zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	events chan Event
	done   chan struct{}

	handlerID uint32
	started   atomic.Bool
	destroyed atomic.Bool
	ready     atomic.Bool

	// mu guards closed and orders wg.Add against Destroy.
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewAdapter(conn Conn, log zerolog.Logger) *Adapter {
	ctx, cancel := context.WithCancel(context.Background())
	a := &Adapter{
		id:     uuid.NewString(),
		conn:   conn,
		ctx:    ctx,
		cancel: cancel,
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}
	a.log = log.With().Str("instance", a.id).Logger()
	a.handlerID = conn.AddEventHandler(a.handleEvent)
	return a
}

func (a *Adapter) ID() string { return a.id }

func (a *Adapter) Events() <-chan Event { return a.events }

func (a *Adapter) Ready() bool { return a.ready.Load() }

func (a *Adapter) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrDestroyed
	}
	if !a.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	a.wg.Add(1)
	go a.run()
	return nil
}

func (a *Adapter) run() {
	defer a.wg.Done()
	// A connect that lands after Destroy must not leave the socket open.
	defer func() {
		if a.ctx.Err() != nil {
			a.conn.Disconnect()
		}
	}()

	for a.ctx.Err() == nil {
		qrChan, err := a.conn.GetQRChannel(a.ctx)
		if a.ctx.Err() != nil {
			return
		}
		if err != nil && !errors.Is(err, whatsmeow.ErrQRStoreContainsID) {
			a.fail("get qr channel", err)
			return
		}

		if err := a.conn.Connect(); err != nil {
			if a.ctx.Err() == nil {
				a.fail("connect", err)
			}
			return
		}
		if a.ctx.Err() != nil {
			return
		}

		if qrChan == nil {
			a.log.Info().Msg("Existing session found, connecting")
			return
		}

		if !a.watchQR(qrChan) {
			return
		}

		// The library drops the socket once every code of a round expired.
		a.log.Info().Msg("QR codes expired, requesting a new round")
		a.conn.Disconnect()
	}
}

// watchQR reports whether a new QR round should be started.
func (a *Adapter) watchQR(qrChan <-chan whatsmeow.QRChannelItem) bool {
	for item := range qrChan {
		switch item.Event {
		case "code":
			a.log.Info().Msg("QR code updated")
			a.emit(Event{Kind: EventChallenge, Code: item.Code})
		case "success":
			a.log.Info().Msg("QR scanned, pairing successful")
			return false
		case "timeout":
			return a.ctx.Err() == nil
		default:
			a.log.Error().Err(item.Error).Str("event", item.Event).Msg("QR channel failed")
			a.disconnected(item.Event)
			return false
		}
	}
	return false
}

func (a *Adapter) handleEvent(evt any) {
	if a.destroyed.Load() {
		return
	}

	switch v := evt.(type) {
	case *events.Connected:
		a.ready.Store(true)
		a.log.Info().Msg("WhatsApp is ready")
		a.emit(Event{Kind: EventReady})

	case *events.PairSuccess:
		a.log.Info().Str("jid", v.ID.String()).Msg("Pair success")

	case *events.Message:
		if v.Info.IsFromMe || v.Info.Chat == types.StatusBroadcastJID {
			return
		}
		from := helper.AddressFromJID(helper.SenderJID(v.Info.Sender, v.Info.SenderAlt))
		body := helper.MessageText(v.Message)
		a.log.Info().Str("from", from).Msg("Message received")
		a.emit(Event{Kind: EventMessage, From: from, Body: body})

	case *events.Disconnected:
		a.disconnected("connection lost")

	case *events.LoggedOut:
		a.disconnected("logged out")

	case *events.StreamReplaced:
		a.disconnected("stream replaced")
	}
}

func (a *Adapter) disconnected(reason string) {
	a.ready.Store(false)
	a.log.Warn().Str("reason", reason).Msg("WhatsApp client disconnected")
	a.emit(Event{Kind: EventDisconnected, Reason: reason})
}

func (a *Adapter) fail(step string, err error) {
	a.log.Error().Err(err).Str("step", step).Msg("Connect failed")
	a.disconnected(fmt.Sprintf("%s: %v", step, err))
}

func (a *Adapter) emit(evt Event) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return
	}
	select {
	case a.events <- evt:
	case <-a.done:
	}
}

func (a *Adapter) SendMessage(ctx context.Context, address, body string) (*SendResult, error) {
	if a.destroyed.Load() {
		return nil, ErrDestroyed
	}
	if !a.ready.Load() {
		return nil, ErrNotReady
	}

	jid, err := helper.ParseAddress(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if body == "" {
		return nil, ErrEmptyBody
	}

	resp, err := a.conn.SendMessage(ctx, jid, helper.TextMessage(body))
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	return &SendResult{ID: resp.ID, Timestamp: resp.Timestamp, To: address}, nil
}

func (a *Adapter) Logout(ctx context.Context) error {
	if a.destroyed.Load() {
		return ErrDestroyed
	}
	if !a.conn.IsLoggedIn() {
		return nil
	}
	a.ready.Store(false)
	if err := a.conn.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Destroy tears the instance down. Teardown is complete when it returns; a
// connect loop still blocked in the library past ctx is left to disconnect
// on its own when the call returns.
func (a *Adapter) Destroy(ctx context.Context) error {
	if !a.destroyed.CompareAndSwap(false, true) {
		return ErrDestroyed
	}

	a.ready.Store(false)
	close(a.done)
	a.cancel()
	a.conn.RemoveEventHandler(a.handlerID)
	a.conn.Disconnect()

	a.mu.Lock()
	a.closed = true
	close(a.events)
	a.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		a.log.Info().Msg("WhatsApp client destroyed")
		return nil
	case <-ctx.Done():
		a.log.Warn().Err(ctx.Err()).Msg("WhatsApp client destroyed, connect loop still draining")
		return nil
	}
}

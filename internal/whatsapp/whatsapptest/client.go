// Package whatsapptest provides an in-memory whatsapp.Client for tests.
package whatsapptest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gowa-bridge/internal/whatsapp"
)

type Sent struct {
	Address string
	Body    string
}

// Client records calls and lets tests drive the event stream with Emit.
type Client struct {
	id     string
	events chan whatsapp.Event

	mu        sync.Mutex
	ready     bool
	connects  int
	logouts   int
	destroyed bool
	sent      []Sent

	ConnectErr error
	SendErr    error
	LogoutErr  error
	// DestroyErr makes Destroy fail before any teardown, leaving the client
	// usable. A repeat Destroy fails with whatsapp.ErrDestroyed, as the
	// real adapter does.
	DestroyErr error
}

func NewClient(id string) *Client {
	return &Client{id: id, events: make(chan whatsapp.Event, 16)}
}

func (c *Client) ID() string { return c.id }

func (c *Client) Events() <-chan whatsapp.Event { return c.events }

func (c *Client) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready && !c.destroyed
}

func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return whatsapp.ErrDestroyed
	}
	c.connects++
	return c.ConnectErr
}

func (c *Client) SendMessage(ctx context.Context, address, body string) (*whatsapp.SendResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.destroyed:
		return nil, whatsapp.ErrDestroyed
	case !c.ready:
		return nil, whatsapp.ErrNotReady
	case c.SendErr != nil:
		return nil, c.SendErr
	}
	c.sent = append(c.sent, Sent{Address: address, Body: body})
	return &whatsapp.SendResult{
		ID:        fmt.Sprintf("MSG%d", len(c.sent)),
		Timestamp: time.Unix(1700000000, 0).UTC(),
		To:        address,
	}, nil
}

func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return whatsapp.ErrDestroyed
	}
	c.logouts++
	return c.LogoutErr
}

func (c *Client) Destroy(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return whatsapp.ErrDestroyed
	}
	if c.DestroyErr != nil {
		return c.DestroyErr
	}
	c.destroyed = true
	c.ready = false
	close(c.events)
	return nil
}

// Emit publishes evt as the real adapter would. Ready and disconnected
// events also flip the ready flag.
func (c *Client) Emit(evt whatsapp.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.destroyed {
		return
	}
	switch evt.Kind {
	case whatsapp.EventReady:
		c.ready = true
	case whatsapp.EventDisconnected:
		c.ready = false
	}
	c.events <- evt
}

func (c *Client) Sent() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sent(nil), c.sent...)
}

func (c *Client) Connects() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connects
}

func (c *Client) Logouts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logouts
}

func (c *Client) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

// Factory hands out numbered Clients and remembers them.
type Factory struct {
	mu      sync.Mutex
	clients []*Client
	Err     error
}

func (f *Factory) New(ctx context.Context) (whatsapp.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	c := NewClient(fmt.Sprintf("client-%d", len(f.clients)+1))
	f.clients = append(f.clients, c)
	return c, nil
}

func (f *Factory) Clients() []*Client {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Client(nil), f.clients...)
}

func (f *Factory) Last() *Client {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.clients) == 0 {
		return nil
	}
	return f.clients[len(f.clients)-1]
}

func (f *Factory) SetErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Err = err
}

package webhook

import (
	"context"
	"fmt"
	"time"

	"gowa-bridge/internal/helper"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Payload is the body posted for every inbound message.
type Payload struct {
	From string `json:"from"`
	Body string `json:"body"`
}

// Forwarder relays inbound messages to a single external endpoint.
type Forwarder struct {
	url     string
	timeout time.Duration
	http    *resty.Client
	log     zerolog.Logger
}

func NewForwarder(url string, timeout time.Duration, log zerolog.Logger) *Forwarder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	if url == "" {
		log.Warn().Msg("WEBHOOK_URL not set, inbound messages will not be forwarded")
	}
	return &Forwarder{url: url, timeout: timeout, http: client, log: log}
}

// Forward delivers in the background. Failures are logged and dropped.
func (f *Forwarder) Forward(sender, body string) {
	if f.url == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
		defer cancel()

		if err := f.Deliver(ctx, sender, body); err != nil {
			f.log.Error().Err(err).Str("from", sender).Msg("Webhook delivery failed")
			return
		}
		f.log.Info().Str("from", sender).Msg("Message forwarded to webhook")
	}()
}

// Deliver posts one message synchronously. Non-2xx answers are errors.
func (f *Forwarder) Deliver(ctx context.Context, sender, body string) error {
	payload := Payload{
		From: helper.ExtractPhoneFromJID(sender),
		Body: body,
	}

	resp, err := f.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post(f.url)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("webhook answered %s", resp.Status())
	}
	return nil
}

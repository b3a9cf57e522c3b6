package whatsapp

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store"
	waLog "go.mau.fi/whatsmeow/util/log"
)

var _ Conn = (*whatsmeow.Client)(nil)

// DeviceSource hands out the device the next client should log in with.
type DeviceSource interface {
	Device(ctx context.Context) (*store.Device, error)
}

// NewFactory builds adapters over real whatsmeow clients.
func NewFactory(devices DeviceSource, log zerolog.Logger) Factory {
	return func(ctx context.Context) (Client, error) {
		device, err := devices.Device(ctx)
		if err != nil {
			return nil, fmt.Errorf("load device: %w", err)
		}

		cli := whatsmeow.NewClient(device, waLog.Zerolog(log.With().Str("module", "whatsmeow").Logger()))
		return NewAdapter(cli, log), nil
	}
}

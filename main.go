package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gowa-bridge/config"
	"gowa-bridge/internal/handler"
	"gowa-bridge/internal/helper"
	"gowa-bridge/internal/qr"
	"gowa-bridge/internal/service"
	"gowa-bridge/internal/session"
	"gowa-bridge/internal/webhook"
	"gowa-bridge/internal/whatsapp"
	"gowa-bridge/internal/ws"
)

const version = "1.0.0"

func main() {
	cfg := config.Load()
	log := helper.NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := session.NewStore(session.Options{
		Dialect:    cfg.SessionDialect,
		Dir:        cfg.SessionDir,
		DSN:        cfg.DatabaseURL,
		DeviceName: cfg.DeviceName,
	}, log.With().Str("component", "session").Logger())
	defer store.Close()

	var terminal io.Writer
	if cfg.QRTerminal {
		terminal = os.Stdout
	}

	// Inisialisasi WebSocket Hub
	hub := ws.NewHub(cfg.CORSOrigins, log.With().Str("component", "ws").Logger())
	go hub.Run(ctx)

	ctrl := service.New(service.Options{
		Factory:   whatsapp.NewFactory(store, log.With().Str("component", "whatsapp").Logger()),
		Store:     store,
		QR:        qr.NewCache(),
		Renderer:  qr.PNGRenderer{Size: cfg.QRSize, Terminal: terminal},
		Forwarder: webhook.NewForwarder(cfg.WebhookURL, cfg.WebhookTimeout, log.With().Str("component", "webhook").Logger()),
		Realtime:  hub,
		Log:       log.With().Str("component", "lifecycle").Logger(),
	})

	if err := ctrl.Initialize(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize WhatsApp client")
	}

	h := handler.New(ctrl, version, log.With().Str("component", "http").Logger())
	e := handler.NewServer(h, handler.ServerOptions{
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   cfg.RateLimit,
		JWTSecret:   cfg.JWTSecret,
		Realtime:    hub,
	})

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("Server starting")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown failed")
	}
	if err := ctrl.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("WhatsApp shutdown failed")
	}
}

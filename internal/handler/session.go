package handler

import (
	"context"
	"net/http"
	"time"

	"gowa-bridge/internal/model"
	"gowa-bridge/internal/whatsapp"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const defaultResetTimeout = 2 * time.Minute

// Lifecycle is the part of the session controller the routes use.
type Lifecycle interface {
	Current() (whatsapp.Client, error)
	QR() (string, bool)
	Reset(ctx context.Context) error
	Status() model.Status
}

type Handler struct {
	ctrl         Lifecycle
	log          zerolog.Logger
	version      string
	resetTimeout time.Duration
}

func New(ctrl Lifecycle, version string, log zerolog.Logger) *Handler {
	return &Handler{
		ctrl:         ctrl,
		log:          log,
		version:      version,
		resetTimeout: defaultResetTimeout,
	}
}

// POST /reset-whatsapp
func (h *Handler) ResetWhatsApp(c echo.Context) error {
	// The reset outlives a dropped request; only the timeout bounds it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), h.resetTimeout)
	defer cancel()

	if err := h.ctrl.Reset(ctx); err != nil {
		h.log.Error().Err(err).Msg("Reset failed")
		return c.JSON(http.StatusInternalServerError, StatusResponse{
			Status: "Erro ao resetar o WhatsApp",
			Error:  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, StatusResponse{Status: "WhatsApp reinicializado com sucesso"})
}

// GET /get-qr
func (h *Handler) GetQR(c echo.Context) error {
	payload, ok := h.ctrl.QR()
	if !ok {
		return c.JSON(http.StatusNotFound, NotFoundResponse{Error: "QR Code não encontrado."})
	}
	return c.JSON(http.StatusOK, QRResponse{QR: payload})
}

// GET /status
func (h *Handler) GetStatus(c echo.Context) error {
	return SuccessResponse(c, http.StatusOK, "Session status", h.ctrl.Status())
}

// GET /
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "WhatsApp bridge is running",
		"version": h.version,
	})
}

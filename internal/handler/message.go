package handler

import (
	"context"
	"net/http"

	"gowa-bridge/internal/helper"

	"github.com/labstack/echo/v4"
)

// Request body untuk send message
type SendMessageRequest struct {
	Numero   string `json:"numero"`
	Mensagem string `json:"mensagem"`
}

// POST /send
func (h *Handler) SendMessage(c echo.Context) error {
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		// Fields stay empty and the client rejects the send below.
		h.log.Debug().Err(err).Msg("Send request body not bound")
	}

	client, err := h.ctrl.Current()
	if err != nil {
		return sendFailed(c, err)
	}

	// A send that was issued runs to completion even if the caller hangs up.
	ctx := context.WithoutCancel(c.Request().Context())
	resp, err := client.SendMessage(ctx, helper.ChatAddress(req.Numero), req.Mensagem)
	if err != nil {
		h.log.Error().Err(err).Str("numero", req.Numero).Msg("Send failed")
		return sendFailed(c, err)
	}

	return c.JSON(http.StatusOK, StatusResponse{Status: "Mensagem enviada", Response: resp})
}

func sendFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusInternalServerError, StatusResponse{
		Status: "Erro ao enviar mensagem",
		Error:  err.Error(),
	})
}

package qr

import (
	"fmt"
	"io"

	"github.com/mdp/qrterminal"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/vincent-petithory/dataurl"
)

// Renderer turns a raw login challenge into a displayable payload.
type Renderer interface {
	Render(code string) (string, error)
}

type RenderFunc func(code string) (string, error)

func (f RenderFunc) Render(code string) (string, error) { return f(code) }

// PNGRenderer produces "data:image/png;base64,..." URLs.
type PNGRenderer struct {
	Size int
	// Terminal, when set, also receives a half-block rendering of the code.
	Terminal io.Writer
}

func (r PNGRenderer) Render(code string) (string, error) {
	size := r.Size
	if size <= 0 {
		size = 256
	}

	png, err := qrcode.Encode(code, qrcode.Medium, size)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}

	if r.Terminal != nil {
		qrterminal.GenerateHalfBlock(code, qrterminal.L, r.Terminal)
	}

	return dataurl.New(png, "image/png").String(), nil
}

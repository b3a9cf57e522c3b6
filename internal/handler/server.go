package handler

import (
	"net/http"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

type ServerOptions struct {
	CORSOrigins []string
	// RateLimit is requests per second per IP; zero disables the limiter.
	RateLimit float64
	// JWTSecret, when set, protects every route but the health check.
	JWTSecret string
	// Realtime serves GET /ws when set.
	Realtime http.Handler
}

// NewServer builds the echo instance with middleware and routes.
func NewServer(h *Handler, opts ServerOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = HTTPErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			evt := h.log.Info()
			if v.Error != nil {
				evt = h.log.Warn().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	}))

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{
			echo.GET,
			echo.POST,
			echo.OPTIONS,
		},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderXRequestedWith,
			echo.HeaderAuthorization,
		},
	}))

	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(
				middleware.RateLimiterMemoryStoreConfig{
					Rate:      rate.Limit(opts.RateLimit),
					Burst:     burst,
					ExpiresIn: 3 * time.Minute,
				},
			),
		}))
	}

	var auth []echo.MiddlewareFunc
	if opts.JWTSecret != "" {
		auth = append(auth, echojwt.WithConfig(echojwt.Config{
			SigningKey: []byte(opts.JWTSecret),
			// Browsers cannot set headers on websocket upgrades.
			TokenLookup: "header:Authorization:Bearer ,query:token",
			ErrorHandler: func(c echo.Context, err error) error {
				return ErrorResponse(c, http.StatusUnauthorized,
					"Authentication required",
					"UNAUTHORIZED",
					"Please provide a valid Bearer token in the Authorization header",
				)
			},
		}))
	}

	e.GET("/", h.Health)
	e.POST("/reset-whatsapp", h.ResetWhatsApp, auth...)
	e.GET("/get-qr", h.GetQR, auth...)
	e.POST("/send", h.SendMessage, auth...)
	e.GET("/status", h.GetStatus, auth...)
	if opts.Realtime != nil {
		e.GET("/ws", echo.WrapHandler(opts.Realtime), auth...)
	}

	return e
}

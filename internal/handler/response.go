package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Standard response structure
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// StatusResponse is the body of the reset and send routes.
type StatusResponse struct {
	Status   string      `json:"status"`
	Response interface{} `json:"response,omitempty"`
	Error    string      `json:"error,omitempty"`
}

type QRResponse struct {
	QR string `json:"qr"`
}

type NotFoundResponse struct {
	Error string `json:"error"`
}

// Success response helper
func SuccessResponse(c echo.Context, statusCode int, message string, data interface{}) error {
	return c.JSON(statusCode, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error response helper
func ErrorResponse(c echo.Context, statusCode int, message string, errorCode string, details string) error {
	response := APIResponse{
		Success: false,
		Message: message,
	}

	if errorCode != "" || details != "" {
		response.Error = &ErrorInfo{
			Code:    errorCode,
			Details: details,
		}
	}

	return c.JSON(statusCode, response)
}

// HTTPErrorHandler renders errors that escape a handler, such as unknown
// routes or rejected tokens.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal Server Error"

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		message = fmt.Sprintf("%v", he.Message)
	}

	response := map[string]interface{}{
		"success": false,
		"error":   message,
	}
	switch code {
	case http.StatusUnauthorized:
		response["message"] = "Authentication required. Please provide a valid Bearer token."
	case http.StatusMethodNotAllowed:
		response["message"] = "Method not allowed for this endpoint"
	case http.StatusNotFound:
		response["message"] = "Endpoint not found"
	}

	if c.Request().Method == http.MethodHead {
		c.NoContent(code)
		return
	}
	c.JSON(code, response)
}

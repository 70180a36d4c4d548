package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/zizouhuweidi/trivia/internal/service"
)

// ErrorResponse is the envelope of every failed request
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   int    `json:"error"`
	Message string `json:"message"`
}

var errorMessages = map[int]string{
	http.StatusBadRequest:          "Invalid request",
	http.StatusNotFound:            "Requested resource not found",
	http.StatusMethodNotAllowed:    "Method not allowed",
	http.StatusUnprocessableEntity: "Sorry, could not process your request",
	http.StatusInternalServerError: "Server error",
}

// HTTPErrorHandler renders err as an ErrorResponse and logs failures
// that are not the caller's fault.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := statusCode(err)
	message, ok := errorMessages[code]
	if !ok {
		message = http.StatusText(code)
	}

	fields := log.JSON{
		"status":     code,
		"method":     c.Request().Method,
		"uri":        c.Request().RequestURI,
		"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
		"cause":      service.CauseOf(err).String(),
		"error":      err.Error(),
	}
	switch {
	case code >= http.StatusInternalServerError:
		c.Logger().Errorj(fields)
	case code == http.StatusUnprocessableEntity:
		c.Logger().Warnj(fields)
	default:
		c.Logger().Debugj(fields)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, ErrorResponse{
			Success: false,
			Error:   code,
			Message: message,
		})
	}
	if err != nil {
		c.Logger().Error(err)
	}
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnprocessable):
		return http.StatusUnprocessableEntity
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

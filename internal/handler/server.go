package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const requestLogFormat = `{"time":"${time_rfc3339}","id":"${id}","remote_ip":"${remote_ip}",` +
	`"method":"${method}","uri":"${uri}","status":${status},"latency_human":"${latency_human}",` +
	`"bytes_out":${bytes_out}}` + "\n"

// Setup installs the validator, error handler and middleware shared by every route
func Setup(e *echo.Echo, allowedOrigins []string) {
	e.HideBanner = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = HTTPErrorHandler

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: requestLogFormat,
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
}

package handler

import (
	"errors"
	"fmt"
	"net/http"
	"storefront-api/internal/dto"
	"storefront-api/internal/service"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func respond(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, dto.Envelope{
		Success:    true,
		Data:       data,
		Message:    message,
		StatusCode: status,
		Timestamp:  timestamp(),
	})
}

// NewHTTPErrorHandler renders every error as an envelope. Domain errors keep
// their message; unexpected errors are logged and reported as 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, message := classify(err)
		if status >= http.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Request().Method).
				Str("uri", c.Request().RequestURI).
				Msg("request failed")
		}

		errText := http.StatusText(status)
		body := dto.Envelope{
			Success:    false,
			Error:      &errText,
			Message:    message,
			StatusCode: status,
			Timestamp:  timestamp(),
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Error().Err(err).Msg("write error response")
		}
	}
}

func classify(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprint(he.Message)
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrSignatureInvalid):
		return http.StatusUnauthorized, "invalid webhook signature"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrPaymentProvider):
		return http.StatusBadGateway, "payment provider unavailable"
	}

	return http.StatusInternalServerError, "internal server error"
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: invalid request body", service.ErrValidation)
	}
	return c.Validate(req)
}

package http

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"

	apperrors "todo-items.com/todo-items/internal/errors"
)

type errorMapping struct {
	match  func(error) bool
	status int
}

// errorMappings is checked in order, so subtypes must precede their parents.
var errorMappings = []errorMapping{
	{apperrors.IsNotFound, http.StatusNotFound},
	{apperrors.IsUniqueConstraintViolation, http.StatusConflict},
	{apperrors.IsValidation, http.StatusUnprocessableEntity},
	{apperrors.IsAccessViolation, http.StatusForbidden},
	{apperrors.IsStateConflict, http.StatusConflict},
	{apperrors.IsAccessTokenMalformed, http.StatusUnauthorized},
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func statusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if m.match(err) {
			return m.status, apperrors.Message(err)
		}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return he.Code, msg
		}
		return he.Code, http.StatusText(he.Code)
	}

	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}

func ErrorHandler(logger *log.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, detail := statusFor(err)
		if status == http.StatusInternalServerError {
			logger.Error("unhandled error", "method", c.Request().Method, "uri", c.Request().RequestURI, "err", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, errorResponse{Detail: detail})
		}
		if err != nil {
			logger.Error("failed to write error response", "err", err)
		}
	}
}

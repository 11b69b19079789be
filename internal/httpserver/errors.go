package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/jwt_auth/internal/service"
	"github.com/Skotchmaster/jwt_auth/pkg/logging"
)

const timestampLayout = "02.01.2006 - 15:04:05 -0700"

// APIError is the body of every error response.
type APIError struct {
	Message    string            `json:"message"`
	HTTPStatus string            `json:"httpStatus"`
	Timestamp  string            `json:"timestamp"`
	Errors     map[string]string `json:"errors,omitempty"`
}

// StatusName turns 400 into "BAD_REQUEST".
func StatusName(code int) string {
	text := http.StatusText(code)
	if text == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(text))
}

// ErrorHandler maps service sentinels and echo errors to the envelope.
// Business failures on user resources answer 400, as existing clients
// expect.
func ErrorHandler(now func() time.Time) echo.HTTPErrorHandler {
	if now == nil {
		now = time.Now
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := classify(err)
		body.HTTPStatus = StatusName(code)
		body.Timestamp = now().UTC().Format(timestampLayout)

		if code >= http.StatusInternalServerError {
			logging.FromContext(c.Request().Context()).Error("unhandled_error", "status", code, "error", err)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, body)
		}
		if werr != nil {
			logging.FromContext(c.Request().Context()).Error("error_response_failed", "error", werr)
		}
	}
}

func classify(err error) (int, APIError) {
	var verr *service.ValidationError
	var herr *echo.HTTPError

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, APIError{Message: "Validation Error", Errors: verr.Fields}
	case errors.Is(err, service.ErrInvalidRefreshToken):
		return http.StatusBadRequest, APIError{Message: "Invalid refresh token"}
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusBadRequest, APIError{Message: "User is not exist!"}
	case errors.Is(err, service.ErrRoleNotFound):
		return http.StatusBadRequest, APIError{Message: "Role is not exist!"}
	case errors.Is(err, service.ErrNotAuthorized):
		return http.StatusBadRequest, APIError{Message: "You are not authorized to perform this action!"}
	case errors.Is(err, service.ErrConflict):
		return http.StatusBadRequest, APIError{Message: conflictMessage(err)}
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, APIError{Message: "Validation Error"}
	case errors.As(err, &herr):
		return herr.Code, APIError{Message: httpErrorMessage(herr)}
	default:
		return http.StatusInternalServerError, APIError{Message: http.StatusText(http.StatusInternalServerError)}
	}
}

// conflictMessage drops the "conflict: " prefix added by the service.
func conflictMessage(err error) string {
	msg := err.Error()
	if _, rest, ok := strings.Cut(msg, service.ErrConflict.Error()+": "); ok {
		return rest
	}
	return msg
}

func httpErrorMessage(herr *echo.HTTPError) string {
	switch m := herr.Message.(type) {
	case string:
		return m
	case error:
		return m.Error()
	default:
		return http.StatusText(herr.Code)
	}
}

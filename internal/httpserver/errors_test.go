package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/jwt_auth/internal/service"
)

func TestStatusName(t *testing.T) {
	assert.Equal(t, "BAD_REQUEST", StatusName(http.StatusBadRequest))
	assert.Equal(t, "UNAUTHORIZED", StatusName(http.StatusUnauthorized))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", StatusName(http.StatusInternalServerError))
	assert.Equal(t, "NON_AUTHORITATIVE_INFORMATION", StatusName(http.StatusNonAuthoritativeInfo))
	assert.Equal(t, "UNKNOWN", StatusName(799))
}

func TestErrorHandler_Mapping(t *testing.T) {
	fixed := time.Date(2026, 10, 15, 9, 5, 7, 0, time.UTC)
	h := ErrorHandler(func() time.Time { return fixed })

	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"invalid refresh", service.ErrInvalidRefreshToken, 400, "Invalid refresh token"},
		{"user not found", fmt.Errorf("wrapped: %w", service.ErrUserNotFound), 400, "User is not exist!"},
		{"not authorized", service.ErrNotAuthorized, 400, "You are not authorized to perform this action!"},
		{"conflict", fmt.Errorf("%w: username \"bob\" is taken", service.ErrConflict), 400, "username \"bob\" is taken"},
		{"echo error", echo.NewHTTPError(http.StatusForbidden, "nope"), 403, "nope"},
		{"not found route", echo.ErrNotFound, 404, "Not Found"},
		{"unknown", errors.New("db exploded"), 500, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			h(tt.err, c)

			assert.Equal(t, tt.code, rec.Code)
			var body APIError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body.Message)
			assert.Equal(t, StatusName(tt.code), body.HTTPStatus)
			assert.Equal(t, "15.10.2026 - 09:05:07 +0000", body.Timestamp)
			assert.Nil(t, body.Errors)
		})
	}
}

func TestErrorHandler_ValidationErrors(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	ErrorHandler(nil)(&service.ValidationError{Fields: map[string]string{"email": "must be a well-formed email address"}}, c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Validation Error", body.Message)
	assert.Equal(t, map[string]string{"email": "must be a well-formed email address"}, body.Errors)
}

func TestErrorHandler_HeadHasNoBody(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodHead, "/", nil), rec)

	ErrorHandler(nil)(service.ErrUserNotFound, c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestValidator_MaxMessage(t *testing.T) {
	v := NewValidator()
	type req struct {
		Name string `json:"name" validate:"required,max=3"`
	}

	err := v.Validate(&req{Name: "toolong"})
	var verr *service.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "size must be between 0 and 3", verr.Fields["name"])

	assert.NoError(t, v.Validate(&req{Name: "ok"}))
}

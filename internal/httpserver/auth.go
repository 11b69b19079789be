package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/jwt_auth/internal/service"
	"github.com/Skotchmaster/jwt_auth/internal/transport"
	"github.com/Skotchmaster/jwt_auth/pkg/logging"
)

type AuthHTTP struct {
	Svc   *service.TokenService
	Users *UserHTTP
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req transport.TokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("refresh_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	pair, err := h.Svc.Refresh(ctx, req.Token)
	if err != nil {
		return err
	}

	l.Info("refresh_successful")
	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHTTP) SignOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_signout")

	var req transport.TokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("signout_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	if err := h.Svc.Logout(ctx, req.Token); err != nil {
		l.Warn("signout_error", "status", 400, "error", err)
		return err
	}

	l.Info("successful_logout")
	return c.NoContent(http.StatusOK)
}

// SignUp is an alias of POST /users.
func (h *AuthHTTP) SignUp(c echo.Context) error {
	return h.Users.Create(c)
}

func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

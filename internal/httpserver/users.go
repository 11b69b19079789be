package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	auth "github.com/Skotchmaster/jwt_auth/internal/middleware/auth"
	"github.com/Skotchmaster/jwt_auth/internal/service"
	"github.com/Skotchmaster/jwt_auth/internal/transport"
	"github.com/Skotchmaster/jwt_auth/pkg/logging"
)

type UserHTTP struct {
	Svc *service.UserService
}

// actor is the username of the authenticated caller. The route gate
// guarantees one is present on every route that calls this.
func actor(c echo.Context) (string, error) {
	p, ok := auth.PrincipalFrom(c)
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Full authentication is required to access this resource")
	}
	return p.Username, nil
}

func (h *UserHTTP) List(c echo.Context) error {
	users, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	name, err := actor(c)
	if err != nil {
		return err
	}

	user, err := h.Svc.Get(ctx, c.Param("username"), name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_create")

	var req transport.UserRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("register_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	user, err := h.Svc.Create(ctx, req.Input())
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderLocation, "/users/"+user.UserName)
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_update")

	name, err := actor(c)
	if err != nil {
		return err
	}

	var req transport.UserRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("update_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	user, err := h.Svc.Update(ctx, req.Input(), name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	name, err := actor(c)
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(ctx, c.Param("username"), name); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

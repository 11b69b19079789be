package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/jwt_auth/internal/service"
	"github.com/Skotchmaster/jwt_auth/internal/transport"
	"github.com/Skotchmaster/jwt_auth/pkg/logging"
)

type RoleHTTP struct {
	Svc *service.RoleService
}

func (h *RoleHTTP) List(c echo.Context) error {
	roles, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roles)
}

func (h *RoleHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "role_create")

	var req transport.RoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("role_create_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	role, err := h.Svc.Create(ctx, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, role)
}

func (h *RoleHTTP) AddToUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "role_add_to_user")

	var req transport.AddRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("role_grant_error", "status", 400, "reason", "invalid body", "error", err)
		return err
	}

	if err := h.Svc.AddToUser(ctx, req.User(), req.RoleName); err != nil {
		return err
	}
	return c.NoContent(http.StatusOK)
}

package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/jwt_auth/internal/policy"
	"github.com/Skotchmaster/jwt_auth/pkg/logging"
)

const (
	unauthenticatedMessage = "Full authentication is required to access this resource"
	accessDeniedMessage    = "Access to this resource on the server is denied!"
)

// Gate applies the route table to the current Principal.
type Gate struct {
	Table policy.Table
}

func NewGate(table policy.Table) *Gate {
	return &Gate{Table: table}
}

func (g *Gate) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		p, _ := PrincipalFrom(c)

		decision := g.Table.Decide(req.Method, req.URL.Path, p)
		if decision == policy.Allow {
			return next(c)
		}

		l := logging.FromContext(req.Context())
		if decision == policy.Unauthorized {
			l.Info("route_denied", "status", 401, "reason", decision.String())
			return echo.NewHTTPError(http.StatusUnauthorized, unauthenticatedMessage)
		}
		if p != nil {
			l = l.With("principal", p.Username)
		}
		l.Info("route_denied", "status", 403, "reason", decision.String())
		return echo.NewHTTPError(http.StatusForbidden, accessDeniedMessage)
	}
}

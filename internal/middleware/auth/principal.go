// Package auth holds the request pipeline that turns credentials and
// bearer tokens into a Principal and gates routes on it.
package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/jwt_auth/internal/policy"
)

type Principal = policy.Principal

const principalKey = "principal"

func SetPrincipal(c echo.Context, p *Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the caller installed by the Authorizer, if any.
func PrincipalFrom(c echo.Context) (*Principal, bool) {
	p, ok := c.Get(principalKey).(*Principal)
	return p, ok && p != nil
}

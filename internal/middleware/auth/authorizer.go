package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/jwt_auth/pkg/logging"
	"github.com/Skotchmaster/jwt_auth/pkg/tokens"
)

// HeaderError carries the reason a bearer token was rejected.
const HeaderError = "error"

// Authorizer turns a bearer token into a Principal. Requests without a
// bearer token continue anonymously; a bad token is rejected with 403.
type Authorizer struct {
	Codec     *tokens.Codec
	LoginPath string
	Now       func() time.Time
}

func NewAuthorizer(codec *tokens.Codec, loginPath string) *Authorizer {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Authorizer{Codec: codec, LoginPath: loginPath, Now: time.Now}
}

func (a *Authorizer) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().URL.Path == a.LoginPath {
			return next(c)
		}

		raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return next(c)
		}

		now := time.Now()
		if a.Now != nil {
			now = a.Now()
		}

		claims, err := a.Codec.Verify(raw, now)
		if err != nil {
			reason := "token invalid"
			if errors.Is(err, tokens.ErrTokenExpired) {
				reason = "token expired"
			}
			logging.FromContext(c.Request().Context()).Info("token_rejected",
				"status", 403, "reason", reason, "error", err)

			c.Response().Header().Set(HeaderError, reason)
			return echo.NewHTTPError(http.StatusForbidden, reason).SetInternal(err)
		}

		SetPrincipal(c, &Principal{Username: claims.Subject, Authorities: claims.Roles})
		return next(c)
	}
}

// bearerToken reports ok for any header using the Bearer scheme. An
// empty token after the scheme still counts so it gets rejected.
func bearerToken(header string) (string, bool) {
	scheme, token, _ := strings.Cut(strings.TrimSpace(header), " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(token), true
}

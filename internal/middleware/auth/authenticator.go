package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/jwt_auth/internal/models"
	"github.com/Skotchmaster/jwt_auth/internal/service"
	"github.com/Skotchmaster/jwt_auth/pkg/logging"
)

const badCredentialsMessage = "Invalid username or password!"

type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, username, password string) (*models.User, error)
}

type TokenIssuer interface {
	IssueFor(ctx context.Context, username string) (*service.TokenPair, error)
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	UserName string `json:"userName" form:"userName"`
	Password string `json:"password" form:"password"`
}

func (r loginRequest) name() string {
	if r.Username != "" {
		return r.Username
	}
	return r.UserName
}

// Authenticator answers POST <LoginPath> with a fresh token pair. Every
// other request passes through untouched.
type Authenticator struct {
	LoginPath string
	Users     CredentialVerifier
	Tokens    TokenIssuer
}

func NewAuthenticator(loginPath string, users CredentialVerifier, tokens TokenIssuer) *Authenticator {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Authenticator{LoginPath: loginPath, Users: users, Tokens: tokens}
}

func (a *Authenticator) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		if req.Method != http.MethodPost || req.URL.Path != a.LoginPath {
			return next(c)
		}
		return a.login(c)
	}
}

func (a *Authenticator) login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var body loginRequest
	if err := c.Bind(&body); err != nil {
		l.Warn("login_error", "status", 401, "reason", "cannot read credentials", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, badCredentialsMessage).SetInternal(err)
	}

	username := body.name()
	user, err := a.Users.VerifyCredentials(ctx, username, body.Password)
	if err != nil {
		if errors.Is(err, service.ErrBadCredentials) {
			l.Info("login_failed", "status", 401, "username", username)
			return echo.NewHTTPError(http.StatusUnauthorized, badCredentialsMessage)
		}
		l.Error("login_error", "status", 500, "username", username, "error", err)
		return err
	}

	pair, err := a.Tokens.IssueFor(ctx, user.UserName)
	if err != nil {
		l.Error("login_error", "status", 500, "username", username, "error", err)
		return err
	}

	l.Info("login_successful", "username", user.UserName)
	return c.JSON(http.StatusOK, pair)
}

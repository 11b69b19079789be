package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	auth "github.com/Skotchmaster/jwt_auth/internal/middleware/auth"
)

type Deps struct {
	AuthHandler   *AuthHTTP
	UserHandler   *UserHTTP
	RoleHandler   *RoleHTTP
	Authenticator *auth.Authenticator
	Authorizer    *auth.Authorizer
	Gate          *auth.Gate
}

// Register installs the security pipeline and every route. The login
// endpoint has no route: the Authenticator answers it.
func Register(e *echo.Echo, d *Deps) {
	if e.Validator == nil {
		e.Validator = NewValidator()
	}

	e.Use(d.Authenticator.Middleware, d.Authorizer.Middleware, d.Gate.Middleware)

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authg := e.Group("/auth")
	authg.POST("/refresh", d.AuthHandler.Refresh)
	authg.POST("/signout", d.AuthHandler.SignOut)
	authg.POST("/signup", d.AuthHandler.SignUp)

	users := e.Group("/users")
	users.GET("", d.UserHandler.List)
	users.POST("", d.UserHandler.Create)
	users.PUT("", d.UserHandler.Update)
	users.GET("/:username", d.UserHandler.Get)
	users.DELETE("/:username", d.UserHandler.Delete)

	roles := e.Group("/roles")
	roles.GET("", d.RoleHandler.List)
	roles.POST("", d.RoleHandler.Create)
	roles.POST("/addtouser", d.RoleHandler.AddToUser)
}

package echoapi

import (
	"math"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/opel-edu/dashboard/core"
	"github.com/opel-edu/dashboard/core/session"
	"github.com/opel-edu/dashboard/core/user"
	"github.com/opel-edu/dashboard/services/metrics"
)

type (
	authApi struct {
		svc     *user.Service
		mgr     *session.Manager
		metrics *metrics.Metrics
		logger  core.Logger
		cookies sessionCookies
	}

	loginResponse struct {
		Success bool      `json:"success"`
		User    user.View `json:"user"`
		Message string    `json:"message"`
	}

	userResponse struct {
		Success bool      `json:"success"`
		User    user.View `json:"user"`
	}

	messageResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
)

func registerAuthAPI(g *echo.Group, deps ServerDeps) {
	api := authApi{
		svc:     deps.UserSvc,
		mgr:     deps.SessionMgr,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		cookies: newSessionCookies(deps),
	}

	var loginMiddleware []echo.MiddlewareFunc
	if limit := deps.Conf.Server.LoginRate; limit > 0 {
		loginMiddleware = append(loginMiddleware, middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
				Rate:  rate.Limit(limit),
				Burst: loginBurst(limit),
			}),
			DenyHandler: func(ctx echo.Context, identifier string, err error) error {
				return errTooManyLogins
			},
		}))
	}

	g.POST("/auth", api.login, loginMiddleware...)
	g.GET("/auth", api.me)
	g.DELETE("/auth", api.logout)
}

// loginBurst allows at least one attempt per client, also for fractional rates.
func loginBurst(limit float64) int {
	if b := int(math.Ceil(limit)); b > 1 {
		return b
	}
	return 1
}

func newSessionCookies(deps ServerDeps) sessionCookies {
	return sessionCookies{
		name:   deps.Conf.Session.CookieName,
		maxAge: deps.SessionMgr.MaxAge(),
		secure: deps.Conf.IsProd(),
	}
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data user.LoginCredentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginCredentials")
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == user.ErrInvalidCredentials {
			api.metrics.ObserveLogin(false)
		}
		return errors.Wrap(err, "authenticating")
	}

	token, _, err := api.mgr.Issue(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "issuing session")
	}
	api.metrics.ObserveLogin(true)
	api.cookies.set(ctx, token)

	return ctx.JSON(http.StatusOK, loginResponse{
		Success: true,
		User:    usr.View(),
		Message: "Login successful",
	})
}

func (api *authApi) me(ctx echo.Context) error {
	usr, err := api.mgr.Resolve(ctx.Request().Context(), api.cookies.token(ctx))
	if err != nil {
		return errors.Wrap(err, "resolving session")
	}
	return ctx.JSON(http.StatusOK, userResponse{Success: true, User: usr.View()})
}

func (api *authApi) logout(ctx echo.Context) error {
	api.mgr.Revoke(ctx.Request().Context(), api.cookies.token(ctx))
	api.cookies.clear(ctx)
	return ctx.JSON(http.StatusOK, messageResponse{Success: true, Message: "Logged out successfully"})
}

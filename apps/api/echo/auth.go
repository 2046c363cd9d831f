package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/opel-edu/dashboard/core/session"
	"github.com/opel-edu/dashboard/core/user"
)

const contextUserKey = "user"

type sessionCookies struct {
	name   string
	maxAge time.Duration
	secure bool
}

func (sc sessionCookies) token(ctx echo.Context) string {
	cookie, err := ctx.Cookie(sc.name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (sc sessionCookies) set(ctx echo.Context, token string) {
	ctx.SetCookie(&http.Cookie{
		Name:     sc.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sc.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   sc.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (sc sessionCookies) clear(ctx echo.Context) {
	ctx.SetCookie(&http.Cookie{
		Name:     sc.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   sc.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionMiddleware rejects requests without a resolvable session with errUnauthorized,
// and stores the session user in the context.
func sessionMiddleware(mgr *session.Manager, cookies sessionCookies) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := mgr.Resolve(ctx.Request().Context(), cookies.token(ctx))
			if err != nil {
				if isSessionError(err) {
					return errUnauthorized
				}
				return errors.Wrap(err, "resolving session")
			}
			ctx.Set(contextUserKey, usr)
			return next(ctx)
		}
	}
}

// isSessionError reports whether err means the request carries no valid session.
func isSessionError(err error) bool {
	switch errors.Cause(err) {
	case session.ErrNoToken, session.ErrInvalidToken, session.ErrSessionNotFound, user.ErrNotFound:
		return true
	}
	return false
}

func getContextUser(ctx echo.Context) (user.User, bool) {
	usr, ok := ctx.Get(contextUserKey).(user.User)
	return usr, ok
}

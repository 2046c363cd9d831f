package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/opel-edu/dashboard/core"
	"github.com/opel-edu/dashboard/core/session"
	"github.com/opel-edu/dashboard/core/student"
	"github.com/opel-edu/dashboard/core/user"
)

var (
	errNotAuthenticated = echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	errInvalidSession   = echo.NewHTTPError(http.StatusUnauthorized, "Invalid session")
	errUnauthorized     = echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	errTooManyLogins    = echo.NewHTTPError(http.StatusTooManyRequests, "Too many login attempts, please try again later")

	errInternal = "Internal server error"
)

var (
	errUsrNotFound        = echo.NewHTTPError(http.StatusNotFound, "User not found")
	errInvalidCredentials = echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	errStudentNotFound    = echo.NewHTTPError(http.StatusNotFound, "Student not found")
)

// httpError returns the HTTP response of a domain error, if it has one.
func httpError(err error) (*echo.HTTPError, bool) {
	switch err {
	case user.ErrNotFound:
		return errUsrNotFound, true
	case user.ErrInvalidCredentials:
		return errInvalidCredentials, true
	case student.ErrNotFound:
		return errStudentNotFound, true
	case session.ErrNoToken:
		return errNotAuthenticated, true
	case session.ErrInvalidToken, session.ErrSessionNotFound:
		return errInvalidSession, true
	}
	return nil, false
}

type errorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var (
			code int
			res  = errorResponse{Success: false}
		)

		cause := errors.Cause(err)
		if herr, ok := httpError(cause); ok {
			cause = herr
		}

		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			res.Message = fmt.Sprint(origErr.Message)
		case *core.ValidationError:
			code = http.StatusBadRequest
			res.Message = origErr.Error()
			res.Errors = origErr.FieldMap()
		default: // any other error is a server error
			code = http.StatusInternalServerError
			res.Message = errInternal

			args := []interface{}{errors.Wrap(err, errInternal)}
			if usr, ok := getContextUser(ctx); ok {
				args = append(args, usr.View())
			}
			logger.Error(err.Error(), args...)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, res)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

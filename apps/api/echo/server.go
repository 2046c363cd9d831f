package echoapi

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/opel-edu/dashboard/core"
	"github.com/opel-edu/dashboard/core/session"
	"github.com/opel-edu/dashboard/core/student"
	"github.com/opel-edu/dashboard/core/user"
	"github.com/opel-edu/dashboard/services/metrics"
	redisdb "github.com/opel-edu/dashboard/storage/redis"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Metrics    *metrics.Metrics
		UserSvc    *user.Service
		StudentSvc *student.Service
		SessionMgr *session.Manager
		Redis      *redisdb.Redis // nil unless sessions are stored in redis
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Debug = conf.Debug
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     conf.Server.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowCredentials: true,
	}))
	s.app.Use(middleware.Secure())
	s.app.Use(s.deps.Metrics.Middleware("/metrics", "/healthz"))

	if err := s.deps.Metrics.RegisterGauge("active_sessions", "Live sessions.", s.activeSessions); err != nil {
		s.deps.Logger.Warn(fmt.Sprintf("registering sessions gauge: %v", err), err)
	}

	s.app.GET("/", s.home)
	s.app.GET("/healthz", s.health)
	s.app.GET("/metrics", echo.WrapHandler(s.deps.Metrics.Handler()))

	api := s.app.Group("/api")
	registerAuthAPI(api, s.deps)
	registerProjectAPI(api, s.deps)
}

// Start blocks until the server stops. Errors other than a graceful shutdown are sent to Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

// Errors returns the channel receiving server errors.
func (s *Server) Errors() <-chan error {
	return s.errors
}

// ShutdownSignal returns the channel notified on SIGINT, SIGTERM or a fatal application error.
func (s *Server) ShutdownSignal() <-chan os.Signal {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) activeSessions() float64 {
	n, err := s.deps.SessionMgr.Active(context.Background())
	if err != nil {
		return 0
	}
	return float64(n)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, fmt.Sprintf("Welcome to %s API!", s.deps.Conf.AppName))
}

type healthResponse struct {
	Status   string `json:"status"`
	Sessions string `json:"sessions"`
	Redis    bool   `json:"redis"`
}

func (s *Server) health(ctx echo.Context) error {
	res := healthResponse{Status: "ok", Sessions: s.deps.Conf.Session.Backend}
	code := http.StatusOK
	if s.deps.Redis != nil {
		res.Redis = s.deps.Redis.Healthy(ctx.Request().Context())
		if !res.Redis {
			res.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	return ctx.JSON(code, res)
}

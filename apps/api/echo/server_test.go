package echoapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/opel-edu/dashboard/core"
	"github.com/opel-edu/dashboard/core/student"
	"github.com/opel-edu/dashboard/services/metrics"
	redisdb "github.com/opel-edu/dashboard/storage/redis"
	testutil "github.com/opel-edu/dashboard/tests"
)

func TestHome(t *testing.T) {
	server, _ := setup(t)

	req, rec := newRequest(http.MethodGet, "/")
	server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Opel Dashboard API!", rec.Body.String())
}

func TestHealth(t *testing.T) {
	server, _ := setup(t)
	runHttpTests(t, server, []httpTest{{
		name: "memory sessions", path: "/healthz",
		wantData: marchallObj(t, healthResponse{Status: "ok", Sessions: core.SessionBackendMemory}),
	}})

	t.Run("redis sessions", func(t *testing.T) {
		mr := miniredis.RunT(t)
		app := testutil.NewApp(t)
		app.Conf.Session.Backend = core.SessionBackendRedis
		app.Conf.Redis.Addr = mr.Addr()
		r := redisdb.NewRedis(app.Conf)
		defer func() { _ = r.Close() }()

		server := NewServer(ServerDeps{
			Conf:       app.Conf,
			Logger:     app.Logger,
			Metrics:    metrics.New(),
			UserSvc:    app.UserSvc,
			StudentSvc: app.StudentSvc,
			SessionMgr: app.SessionMgr,
			Redis:      r,
		})
		runHttpTests(t, server, []httpTest{{
			name: "healthy", path: "/healthz",
			wantData: marchallObj(t, healthResponse{Status: "ok", Sessions: core.SessionBackendRedis, Redis: true}),
		}})

		mr.Close()
		runHttpTests(t, server, []httpTest{{
			name: "redis down", path: "/healthz", wantCode: http.StatusServiceUnavailable,
			wantData: marchallObj(t, healthResponse{Status: "degraded", Sessions: core.SessionBackendRedis}),
		}})
	})
}

func TestMetrics(t *testing.T) {
	server, app := setup(t)
	token := app.Login(t, testutil.AdminEmail)

	req, rec := newAuthRequest(http.MethodGet, "/api/projects", token)
	server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req, rec = newRequest(http.MethodGet, "/metrics")
	server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `opel_http_requests_total{code="200",method="GET",route="/api/projects"} 1`), body)
	assert.True(t, strings.Contains(body, "opel_active_sessions 1"), body)
}

func TestAppHTTPErrorHandler(t *testing.T) {
	app := testutil.NewApp(t)

	tests := []struct {
		name         string
		err          error
		wantCode     int
		wantData     httpErr
		wantShutdown bool
	}{
		{
			name: "validation error", err: errors.Wrap(core.NewValidationMessage("Bad", core.FieldError{Field: "x", Error: "y"}), "ctx"),
			wantCode: http.StatusBadRequest, wantData: newHttpErr("Bad", map[string]string{"x": "y"}),
		},
		{
			name: "domain error", err: errors.Wrap(student.ErrNotFound, "ctx"),
			wantCode: http.StatusNotFound, wantData: newHttpErr("Student not found"),
		},
		{
			name: "http error", err: echo.NewHTTPError(http.StatusTeapot, "short and stout"),
			wantCode: http.StatusTeapot, wantData: newHttpErr("short and stout"),
		},
		{
			name: "unknown error", err: errors.New("database exploded"),
			wantCode: http.StatusInternalServerError, wantData: newHttpErr("Internal server error"),
		},
		{
			name: "shutdown error", err: errors.Wrap(core.NewShutdownError("integrity lost"), "ctx"),
			wantCode: http.StatusInternalServerError, wantData: newHttpErr("Internal server error"), wantShutdown: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var shutdown bool
			handler := newAppHTTPErrorHandler(app.Logger, func() { shutdown = true })

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			handler(tt.err, e.NewContext(req, rec))

			checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: marchallObj(t, tt.wantData)}, rec)
			assert.Equal(t, tt.wantShutdown, shutdown)
		})
	}
}

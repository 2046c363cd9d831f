package logsvc

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/opel-edu/dashboard/core"
	"github.com/opel-edu/dashboard/core/user"
)

func TestRollbarLogger(t *testing.T) {
	obs, logs := observer.New(zap.DebugLevel)
	conf := newTestConfig()
	logger := NewRollbarLogger(zap.New(obs), conf)

	usr := user.View{ID: "1", Name: "Admin User", Email: "admin@opel.edu", Role: user.RoleAdmin}
	logger.Error("boom", errors.New("db down"), map[string]interface{}{"path": "/api/projects"}, usr)
	logger.Info("started")

	entries := logs.AllUntimed()
	if assert.Len(t, entries, 2) {
		ctx := entries[0].ContextMap()
		assert.Equal(t, "boom", entries[0].Message)
		assert.Equal(t, zap.ErrorLevel, entries[0].Level)
		assert.Contains(t, ctx["error"], "db down")
		assert.Equal(t, "/api/projects", ctx["path"])
		assert.Equal(t, "1", ctx["user.id"])
		assert.Equal(t, "admin@opel.edu", ctx["user.email"])

		assert.Equal(t, "started", entries[1].Message)
		assert.Empty(t, entries[1].Context)
	}
}

func TestRollbarLoggerPrepare(t *testing.T) {
	logger := NewRollbarLogger(zap.NewNop(), newTestConfig())
	err := errors.New("oops")
	args := logger.prepare("msg", []interface{}{err, user.View{ID: "2"}, user.View{ID: "3"}})
	assert.Equal(t, []interface{}{"msg", err}, args, "user views are never forwarded as items")
}

func newTestConfig() *core.Config {
	return core.NewTestConfig()
}

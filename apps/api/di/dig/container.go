package dig_container

import (
	"fmt"
	"log"

	"github.com/pkg/errors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	echoapi "github.com/opel-edu/dashboard/apps/api/echo"
	"github.com/opel-edu/dashboard/core"
	"github.com/opel-edu/dashboard/core/session"
	"github.com/opel-edu/dashboard/core/student"
	"github.com/opel-edu/dashboard/core/user"
	logsvc "github.com/opel-edu/dashboard/services/logger"
	"github.com/opel-edu/dashboard/services/metrics"
	"github.com/opel-edu/dashboard/storage/database/fixtures"
	inmemdb "github.com/opel-edu/dashboard/storage/database/inmem"
	redisdb "github.com/opel-edu/dashboard/storage/redis"
)

type ServerParams struct {
	dig.In
	Conf       *core.Config
	Logger     core.Logger
	Metrics    *metrics.Metrics
	UserSvc    *user.Service
	StudentSvc *student.Service
	SessionMgr *session.Manager
	Redis      *redisdb.Redis
}

func newZapLogger(conf *core.Config) *zap.Logger {
	zl, err := logsvc.NewZapLogger(conf)
	if err != nil {
		log.Fatal(errors.Wrap(err, "building zap logger").Error())
	}
	return zl
}

func newRollbarLogger(zl *zap.Logger, conf *core.Config) *logsvc.RollbarLogger {
	return logsvc.NewRollbarLogger(zl.Named("api"), conf)
}

func newLogger(logger *logsvc.RollbarLogger) core.Logger {
	return logger
}

func newDB(conf *core.Config, logger core.Logger) *inmemdb.DB {
	setUp := func() (*inmemdb.DB, error) {
		db, err := inmemdb.Open()
		if err != nil {
			return nil, err
		}
		if err = fixtures.Seed(db, conf); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

// newRedis returns nil unless sessions are stored in redis.
func newRedis(conf *core.Config) *redisdb.Redis {
	if conf.Session.Backend != core.SessionBackendRedis {
		return nil
	}
	return redisdb.NewRedis(conf)
}

func newSessionStore(conf *core.Config, db *inmemdb.DB, r *redisdb.Redis, logger core.Logger) session.Store {
	switch conf.Session.Backend {
	case core.SessionBackendMemory:
		return inmemdb.NewSessionStore(db)
	case core.SessionBackendRedis:
		return redisdb.NewSessionStore(r, conf.Redis.KeyPrefix)
	}
	logger.Fatal(fmt.Sprintf("unknown session backend %q", conf.Session.Backend))
	return nil
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		Metrics:    p.Metrics,
		UserSvc:    p.UserSvc,
		StudentSvc: p.StudentSvc,
		SessionMgr: p.SessionMgr,
		Redis:      p.Redis,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	return build(core.NewConfig)
}

func build(newConfig func() *core.Config) *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newZapLogger))
	must(c.Provide(newRollbarLogger))
	must(c.Provide(newLogger))
	must(c.Provide(newDB))
	must(c.Provide(newRedis))
	must(c.Provide(newSessionStore))
	must(c.Provide(core.NewValidator))
	must(c.Provide(inmemdb.NewUserRepository))
	must(c.Provide(inmemdb.NewStudentRepository))
	must(c.Provide(user.NewService))
	must(c.Provide(student.NewService))
	must(c.Provide(session.NewManager))
	must(c.Provide(metrics.New))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}

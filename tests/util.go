// Package testutil builds the application dependencies used across tests.
package testutil

import (
	"context"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/opel-edu/dashboard/core"
	"github.com/opel-edu/dashboard/core/session"
	"github.com/opel-edu/dashboard/core/student"
	"github.com/opel-edu/dashboard/core/user"
	logsvc "github.com/opel-edu/dashboard/services/logger"
	"github.com/opel-edu/dashboard/storage/database/fixtures"
	inmemdb "github.com/opel-edu/dashboard/storage/database/inmem"
)

// Seeded users, see fs/fixtures/seed.yaml.
const (
	AdminEmail   = "admin@opel.edu"
	TeacherEmail = "teacher@opel.edu"
	StudentEmail = "student@opel.edu"
	Password     = "password123"
)

type App struct {
	Conf       *core.Config
	DB         *inmemdb.DB
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	UserSvc    *user.Service
	StudentSvc *student.Service
	Sessions   session.Store
	SessionMgr *session.Manager
}

// NewDB returns an in-memory DB seeded with the default fixture.
func NewDB(t *testing.T, conf *core.Config) *inmemdb.DB {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	if err := fixtures.Seed(db, conf); err != nil {
		t.Fatalf("fixtures.Seed() failed: %v", err)
	}
	return db
}

// NewApp wires the services on top of a freshly seeded in-memory DB.
func NewApp(t *testing.T) *App {
	t.Helper()
	conf := core.NewTestConfig()
	db := NewDB(t, conf)
	logger := logsvc.NewRollbarLogger(zap.NewNop(), conf)
	validate, translator := core.NewValidator()

	usrSvc := user.NewService(inmemdb.NewUserRepository(db))
	store := inmemdb.NewSessionStore(db)
	return &App{
		Conf:       conf,
		DB:         db,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		UserSvc:    usrSvc,
		StudentSvc: student.NewService(inmemdb.NewStudentRepository(db), validate, translator),
		Sessions:   store,
		SessionMgr: session.NewManager(store, usrSvc, conf, logger),
	}
}

// Login issues a session for the user with the given email and returns its token.
func (app *App) Login(t *testing.T, email string) string {
	t.Helper()
	usr, err := app.UserSvc.Authenticate(context.Background(), email, Password)
	if err != nil {
		t.Fatalf("Authenticate(%s) failed: %v", email, err)
	}
	token, _, err := app.SessionMgr.Issue(context.Background(), usr)
	if err != nil {
		t.Fatalf("Issue(%s) failed: %v", email, err)
	}
	return token
}

package echoapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opel-edu/dashboard/core/user"
	"github.com/opel-edu/dashboard/services/metrics"
	testutil "github.com/opel-edu/dashboard/tests"
)

func Test_authApi_login(t *testing.T) {
	server, app := setup(t)

	admin, err := app.UserSvc.GetByEmail(context.Background(), testutil.AdminEmail)
	require.NoError(t, err)

	creds := func(email, pwd string) []byte {
		return marchallObj(t, user.LoginCredentials{Email: email, Password: pwd})
	}
	required := map[string]string{"password": "this field is required"}

	tests := []httpTest{
		{
			name: "empty body", method: http.MethodPost, path: "/api/auth",
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, newHttpErr("Email and password are required", map[string]string{
				"email": "this field is required", "password": "this field is required",
			})),
		},
		{
			name: "missing password", method: http.MethodPost, path: "/api/auth", body: creds(testutil.AdminEmail, ""),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, newHttpErr("Email and password are required", required)),
		},
		{
			name: "malformed body", method: http.MethodPost, path: "/api/auth", body: []byte(`{"email":`),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/api/auth", body: creds(testutil.AdminEmail, "nope"),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, newHttpErr("Invalid credentials")),
		},
		{
			name: "unknown email", method: http.MethodPost, path: "/api/auth", body: creds("ghost@opel.edu", testutil.Password),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, newHttpErr("Invalid credentials")),
		},
		{
			name: "success", method: http.MethodPost, path: "/api/auth", body: creds(testutil.AdminEmail, testutil.Password),
			wantData: marchallObj(t, loginResponse{Success: true, User: admin.View(), Message: "Login successful"}),
		},
	}
	runHttpTests(t, server, tests)
}

func Test_authApi_loginCookie(t *testing.T) {
	server, app := setup(t)

	req, rec := newRequest(http.MethodPost, "/api/auth", marchallObj(t, user.LoginCredentials{
		Email:    testutil.TeacherEmail,
		Password: testutil.Password,
	}))
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.NotContains(t, rec.Body.String(), "password")

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 604800, cookie.MaxAge)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.NotEqual(t, "token-2", cookie.Value)

	usr, err := app.SessionMgr.Resolve(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, user.RoleTeacher, usr.Role)
}

func Test_authApi_loginSecureCookieInProd(t *testing.T) {
	app := testutil.NewApp(t)
	app.Conf.Env = "prod"
	server := NewServer(ServerDeps{
		Conf:       app.Conf,
		Logger:     app.Logger,
		Metrics:    metrics.New(),
		UserSvc:    app.UserSvc,
		StudentSvc: app.StudentSvc,
		SessionMgr: app.SessionMgr,
	})

	req, rec := newRequest(http.MethodPost, "/api/auth", marchallObj(t, user.LoginCredentials{
		Email:    testutil.AdminEmail,
		Password: testutil.Password,
	}))
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.True(t, cookie.Secure)
}

func Test_authApi_loginRateLimit(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		password string
		wantCode int
	}{
		{name: "one per second", rate: 1, password: "wrong", wantCode: http.StatusUnauthorized},
		{name: "fractional rate still lets the first login through", rate: 0.5, password: testutil.Password, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testutil.NewApp(t)
			app.Conf.Server.LoginRate = tt.rate
			server := NewServer(ServerDeps{
				Conf:       app.Conf,
				Logger:     app.Logger,
				Metrics:    metrics.New(),
				UserSvc:    app.UserSvc,
				StudentSvc: app.StudentSvc,
				SessionMgr: app.SessionMgr,
			})

			body := marchallObj(t, user.LoginCredentials{Email: testutil.AdminEmail, Password: tt.password})
			codes := make([]int, 0, 3)
			for i := 0; i < 3; i++ {
				req, rec := newRequest(http.MethodPost, "/api/auth", body)
				server.ServeHTTP(rec, req)
				codes = append(codes, rec.Code)
			}
			assert.Equal(t, tt.wantCode, codes[0])
			assert.Contains(t, codes[1:], http.StatusTooManyRequests)
		})
	}
}

func Test_loginBurst(t *testing.T) {
	tests := []struct {
		limit float64
		want  int
	}{
		{limit: 0.2, want: 1},
		{limit: 0.5, want: 1},
		{limit: 1, want: 1},
		{limit: 2.5, want: 3},
		{limit: 5, want: 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, loginBurst(tt.limit), "limit %v", tt.limit)
	}
}

func Test_authApi_me(t *testing.T) {
	server, app := setup(t)
	ctx := context.Background()

	admin, err := app.UserSvc.GetByEmail(ctx, testutil.AdminEmail)
	require.NoError(t, err)
	adminToken := app.Login(t, testutil.AdminEmail)

	revokedToken := app.Login(t, testutil.AdminEmail)
	app.SessionMgr.Revoke(ctx, revokedToken)

	tests := []httpTest{
		{name: "no cookie", path: "/api/auth", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, newHttpErr("Not authenticated"))},
		{
			name: "forged cookie", path: "/api/auth", token: "token-1",
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, newHttpErr("Invalid session")),
		},
		{
			name: "revoked session", path: "/api/auth", token: revokedToken,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, newHttpErr("Invalid session")),
		},
		{name: "ok", path: "/api/auth", token: adminToken, wantData: marchallObj(t, userResponse{Success: true, User: admin.View()})},
		{name: "trailing slash", path: "/api/auth/", token: adminToken, wantData: marchallObj(t, userResponse{Success: true, User: admin.View()})},
	}
	runHttpTests(t, server, tests)

	t.Run("user gone", func(t *testing.T) {
		teacher, err := app.UserSvc.GetByEmail(ctx, testutil.TeacherEmail)
		require.NoError(t, err)
		require.NoError(t, app.DB.Load([]user.User{teacher}, nil))

		req, rec := newAuthRequest(http.MethodGet, "/api/auth", adminToken)
		server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, newHttpErr("User not found")),
		}, rec)
	})
}

func Test_authApi_logout(t *testing.T) {
	server, app := setup(t)
	token := app.Login(t, testutil.AdminEmail)
	loggedOut := marchallObj(t, messageResponse{Success: true, Message: "Logged out successfully"})

	req, rec := newAuthRequest(http.MethodDelete, "/api/auth", token)
	server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: loggedOut}, rec)

	cookie := sessionCookie(rec)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)

	// the session is gone server side, even if the client kept the cookie
	req, rec = newAuthRequest(http.MethodGet, "/api/projects", token)
	server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// logging out without a session always succeeds
	runHttpTests(t, server, []httpTest{
		{name: "no cookie", method: http.MethodDelete, path: "/api/auth", wantData: loggedOut},
		{name: "garbage cookie", method: http.MethodDelete, path: "/api/auth", token: "garbage", wantData: loggedOut},
	})
}

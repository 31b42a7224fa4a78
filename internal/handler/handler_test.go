package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-backend/internal/i18n"
	"attendance-backend/internal/model"
	"attendance-backend/internal/service"
	"attendance-backend/internal/service/servicetest"
)

var testNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	users    *servicetest.Users
	records  *servicetest.Attendance
	certs    *servicetest.Certificates
	notifier *servicetest.Notifier
	server   *Server
	admin    *model.User
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	require.NoError(t, i18n.Init("en"))

	env := &testEnv{
		users:    servicetest.NewUsers(),
		records:  servicetest.NewAttendance(),
		certs:    servicetest.NewCertificates(),
		notifier: &servicetest.Notifier{},
	}
	env.server = newServerWith(env.users, env.records, env.certs, env.notifier)

	hash, err := service.HashPassword("Admin@123")
	require.NoError(t, err)
	env.admin = env.users.Add(&model.User{
		Name: "Blinkit Admin", Username: "admin@blinkit.com", Password: hash,
		Role: model.RoleAdmin, AccountStatus: model.AccountStatusApproved,
	})
	return env
}

func newServerWith(users service.UserRepository, records service.AttendanceRepository, certs service.CertificateRepository, notifier service.Notifier) *Server {
	log := discardLogger()
	clock := func() time.Time { return testNow }
	return NewServer(&ServerConfig{Log: log, EnableMetrics: true}, nil,
		NewAuthHandler(service.NewAuthService(users, notifier, clock, log), log),
		NewAttendanceHandler(service.NewAttendanceService(records), log),
		NewProfileHandler(service.NewProfileService(users), log),
		NewAdminHandler(service.NewAdminService(users, records, certs, clock, log), log),
		NewCertificateHandler(service.NewCertificateService(certs), log),
	)
}

type call struct {
	method string
	path   string
	body   any
	caller string
	lang   string
}

func (env *testEnv) do(t *testing.T, c call) (int, map[string]any) {
	t.Helper()
	status, raw := env.doRaw(t, c)
	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return status, out
}

func (env *testEnv) doRaw(t *testing.T, c call) (int, []byte) {
	t.Helper()
	var body io.Reader
	if c.body != nil {
		data, err := json.Marshal(c.body)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	req.Header.Set("Content-Type", "application/json")
	if c.caller != "" {
		req.Header.Set(callerHeader, c.caller)
	}
	if c.lang != "" {
		req.Header.Set("Accept-Language", c.lang)
	}
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	return rec.Code, rec.Body.Bytes()
}

func (env *testEnv) employee(t *testing.T, name string, status model.AccountStatus) *model.User {
	t.Helper()
	hash, err := service.HashPassword("secret1")
	require.NoError(t, err)
	return env.users.Add(&model.User{Name: name, Username: name, Password: hash, Role: model.RoleEmployee, AccountStatus: status})
}

func TestBannerAndHealth(t *testing.T) {
	env := newTestEnv(t)

	status, raw := env.doRaw(t, call{method: http.MethodGet, path: "/"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, banner, string(raw))

	status, body := env.do(t, call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, _ = env.doRaw(t, call{method: http.MethodGet, path: "/metrics"})
	assert.Equal(t, http.StatusOK, status)
}

func TestDrainUndrain(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, call{method: http.MethodGet, path: "/ready"})
	assert.Equal(t, http.StatusOK, status)

	_, body := env.do(t, call{method: http.MethodGet, path: "/drain"})
	assert.Equal(t, "draining", body["status"])
	_, body = env.do(t, call{method: http.MethodGet, path: "/drain"})
	assert.Equal(t, "already draining", body["status"])

	status, _ = env.do(t, call{method: http.MethodGet, path: "/ready"})
	assert.Equal(t, http.StatusServiceUnavailable, status)

	_, body = env.do(t, call{method: http.MethodGet, path: "/undrain"})
	assert.Equal(t, "ready", body["status"])
	status, _ = env.do(t, call{method: http.MethodGet, path: "/ready"})
	assert.Equal(t, http.StatusOK, status)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return assert.AnError }

func TestReady_StoreDown(t *testing.T) {
	s := NewServer(&ServerConfig{Log: discardLogger()}, failingPinger{})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

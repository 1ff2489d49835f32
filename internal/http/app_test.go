package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rekk2/event-registration/internal/broadcast"
	"github.com/rekk2/event-registration/internal/domain"
	"github.com/rekk2/event-registration/internal/repository"
	"github.com/rekk2/event-registration/internal/service"
	"github.com/rekk2/event-registration/internal/store"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testCookie = "event_session"

type testApp struct {
	handler http.Handler
	store   *repository.MemoryStore
	hub     *broadcast.Hub
	users   service.UserService
	healthy error
}

func newTestApp(t *testing.T, seedAdmins bool) *testApp {
	t.Helper()
	logger := zap.NewNop()
	mem := repository.NewMemoryStore()
	for _, d := range []string{"A", "B"} {
		_, err := mem.CreateDoor(context.Background(), d)
		require.NoError(t, err)
	}

	hub := broadcast.NewHub(logger)
	t.Cleanup(hub.Close)

	users := service.NewUserService(mem, logger)
	auth := service.NewAuthService(mem, store.NewMemoryKV(), time.Hour, logger)
	app := &testApp{store: mem, hub: hub, users: users}

	router := NewRouter(logger)
	authn := NewAuthenticator(auth, testCookie, logger)
	router.RegisterNameRoutes(authn, NewNameHandler(
		service.NewRegistrationService(mem, mem, hub, service.RegistrationOptions{RequireKnownDoor: true}, logger),
		service.NewQueryService(mem, mem, service.QueryOptions{}),
		logger,
	))
	router.RegisterDoorRoutes(authn, NewDoorHandler(service.NewDoorService(mem, logger), logger))
	router.RegisterArchiveRoutes(authn, NewArchiveHandler(service.NewArchiveService(mem, logger), logger))
	router.RegisterExportRoutes(authn, NewExportHandler(service.NewExportService(mem, mem, time.UTC), logger))
	router.RegisterAuthRoutes(authn, NewAuthHandler(auth, users, CookieConfig{Name: testCookie}, logger))
	router.RegisterSocketRoute(authn, broadcast.NewWebSocketHandler(hub, 8, logger))
	router.RegisterOpsRoutes(NewHealthHandler(map[string]HealthCheck{
		"store": func(context.Context) error { return app.healthy },
	}, logger), promhttp.Handler())

	app.handler = WithMiddleware(router, logger)

	if seedAdmins {
		ctx := context.Background()
		root, err := users.CreateMainAdmin(ctx, nil, "root", "rootpass")
		require.NoError(t, err)
		_, err = users.CreateUser(ctx, root, service.CreateUserRequest{Username: "admin", Password: "adminpass", Role: "admin"})
		require.NoError(t, err)
		_, err = users.CreateUser(ctx, root, service.CreateUserRequest{Username: "door", Password: "doorpass", Role: "door-user", Door: "A"})
		require.NoError(t, err)
	}
	return app
}

var testPasswords = map[domain.Role][2]string{
	domain.RoleMainAdmin: {"root", "rootpass"},
	domain.RoleAdmin:     {"admin", "adminpass"},
	domain.RoleDoorUser:  {"door", "doorpass"},
}

func (a *testApp) login(t *testing.T, role domain.Role) *http.Cookie {
	t.Helper()
	creds := testPasswords[role]
	return a.loginAs(t, creds[0], creds[1])
}

func (a *testApp) loginAs(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/login", map[string]string{"username": username, "password": password}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == testCookie {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func (a *testApp) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeResult[T any](t *testing.T, rec *httptest.ResponseRecorder) Result[T] {
	t.Helper()
	var res Result[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	return res
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

var errStoreDown = errors.New("store down")

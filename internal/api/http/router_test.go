package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/member-portal/internal/api/http/handlers"
	"github.com/spec-kit/member-portal/internal/auth"
	"github.com/spec-kit/member-portal/internal/config"
	"github.com/spec-kit/member-portal/internal/events"
	"github.com/spec-kit/member-portal/internal/observability"
	"github.com/spec-kit/member-portal/internal/repository"
	"github.com/spec-kit/member-portal/internal/service"
	"github.com/spec-kit/member-portal/internal/session"
	"github.com/spec-kit/member-portal/internal/view"
)

const cookieName = "mp_session"

// testClient wraps a fiber app and carries cookies between requests the
// way a browser would.
type testClient struct {
	t       *testing.T
	app     *fiber.App
	users   *repository.JSONFileRepository
	cookies map[string]string
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()

	usersFile := filepath.Join(t.TempDir(), "users.json")
	users, err := repository.NewJSONFileRepository(usersFile)
	require.NoError(t, err)

	sessions := session.NewManager(session.NewMemoryStore(), config.SessionConfig{
		Secret:             "test-secret",
		CookieName:         cookieName,
		MaxLifetimeHours:   1,
		IdleTimeoutMinutes: 30,
	})

	tracker := auth.NewMemoryAttemptTracker(auth.LockoutPolicy{
		MaxAttempts:   5,
		AttemptWindow: time.Minute,
		LockDuration:  time.Minute,
	})

	authService, err := service.NewAuthService(auth.MinBcryptCost, service.AuthDependencies{
		UserRepo:   users,
		Attempts:   tracker,
		Dispatcher: events.NewInMemoryDispatcher(),
		Metrics:    observability.NewMetrics(),
	})
	require.NoError(t, err)

	engine, err := view.NewEngine()
	require.NoError(t, err)

	app := fiber.New(fiber.Config{Views: engine})
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)

	gate := auth.NewGate(sessions, users, cookieName)
	cookie := handlers.CookieConfig{Name: cookieName}

	RegisterRoutes(app, RouteConfig{
		Pages:  handlers.NewPagesHandler(sessions),
		Auth:   handlers.NewAuthHandler(authService, sessions, cookie),
		Health: handlers.NewHealthHandler("member-portal", "test", users, nil),
		Gate:   gate,
	})

	return &testClient{t: t, app: app, users: users, cookies: make(map[string]string)}
}

func (tc *testClient) do(method, path string, form url.Values) *http.Response {
	tc.t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for name, value := range tc.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := tc.app.Test(req, 10000)
	require.NoError(tc.t, err)

	for _, c := range resp.Cookies() {
		if c.Value == "" || c.Expires.Before(time.Now().Add(-time.Minute)) {
			delete(tc.cookies, c.Name)
			continue
		}
		tc.cookies[c.Name] = c.Value
	}
	return resp
}

func (tc *testClient) body(resp *http.Response) string {
	tc.t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(tc.t, err)
	resp.Body.Close()
	return string(data)
}

func registerForm(name, email, password string) url.Values {
	return url.Values{"name": {name}, "email": {email}, "password": {password}}
}

func loginForm(email, password string) url.Values {
	return url.Values{"email": {email}, "password": {password}}
}

func TestProtectedPageRedirectsAnonymous(t *testing.T) {
	t.Parallel()

	tc := newTestClient(t)
	resp := tc.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestAnonymousPagesRender(t *testing.T) {
	t.Parallel()

	tc := newTestClient(t)

	resp := tc.do(http.MethodGet, "/login", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, tc.body(resp), "Login")

	resp = tc.do(http.MethodGet, "/register", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, tc.body(resp), "Register")
}

func TestRegisterLoginLogoutScenario(t *testing.T) {
	t.Parallel()

	tc := newTestClient(t)

	// pre-registration, anonymous: the form renders
	resp := tc.do(http.MethodGet, "/register", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = tc.do(http.MethodPost, "/register", registerForm("Ann", "ann@x.com", "secret123"))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	// the stored record holds a hash, not the plaintext
	require.Equal(t, 1, tc.users.Count())
	stored, err := tc.users.GetByEmail(context.Background(), "ann@x.com")
	require.NoError(t, err)
	require.NotEqual(t, "secret123", stored.PasswordHash)
	require.True(t, strings.HasPrefix(stored.PasswordHash, "$2"))

	resp = tc.do(http.MethodPost, "/login", loginForm("ann@x.com", "secret123"))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	resp = tc.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, tc.body(resp), "Ann")

	// authenticated requests to the anonymous pages bounce to /
	resp = tc.do(http.MethodGet, "/login", nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	resp = tc.do(http.MethodGet, "/register", nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	// logout destroys the session
	resp = tc.do(http.MethodPost, "/logout", url.Values{"_method": {"DELETE"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	resp = tc.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestLoginFailureShowsGenericFlashOnce(t *testing.T) {
	t.Parallel()

	tc := newTestClient(t)

	resp := tc.do(http.MethodPost, "/register", registerForm("Ann", "ann@x.com", "secret123"))
	require.Equal(t, http.StatusFound, resp.StatusCode)

	tests := []url.Values{
		loginForm("ann@x.com", "wrong-password"),
		loginForm("nobody@x.com", "whatever"),
	}
	for _, form := range tests {
		resp = tc.do(http.MethodPost, "/login", form)
		require.Equal(t, http.StatusFound, resp.StatusCode)
		require.Equal(t, "/login", resp.Header.Get("Location"))

		// the same message for wrong password and unknown email
		resp = tc.do(http.MethodGet, "/login", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, tc.body(resp), "Invalid email or password.")

		// flash is one-shot
		resp = tc.do(http.MethodGet, "/login", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotContains(t, tc.body(resp), "Invalid email or password.")
	}

	// failures left the session anonymous
	resp = tc.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestDuplicateRegistrationFlashes(t *testing.T) {
	t.Parallel()

	tc := newTestClient(t)

	resp := tc.do(http.MethodPost, "/register", registerForm("Ann", "ann@x.com", "secret123"))
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp = tc.do(http.MethodPost, "/register", registerForm("Ann Again", "ann@x.com", "other"))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/register", resp.Header.Get("Location"))

	resp = tc.do(http.MethodGet, "/register", nil)
	require.Contains(t, tc.body(resp), "already registered")
	require.Equal(t, 1, tc.users.Count())
}

func TestTamperedCookieReadsAsAnonymous(t *testing.T) {
	t.Parallel()

	tc := newTestClient(t)

	resp := tc.do(http.MethodPost, "/register", registerForm("Ann", "ann@x.com", "secret123"))
	require.Equal(t, http.StatusFound, resp.StatusCode)
	resp = tc.do(http.MethodPost, "/login", loginForm("ann@x.com", "secret123"))
	require.Equal(t, http.StatusFound, resp.StatusCode)

	tc.cookies[cookieName] += "tampered"

	resp = tc.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	tc := newTestClient(t)

	resp := tc.do(http.MethodGet, "/health/live", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = tc.do(http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

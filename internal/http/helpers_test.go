package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	"storefront/internal/repos"
	"storefront/internal/session"
)

type mailed struct{ to, link string }

type captureMailer struct {
	mu   sync.Mutex
	sent []mailed
}

func (m *captureMailer) SendActivation(_ context.Context, to, _, link string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, mailed{to, link})
	return nil
}

func (m *captureMailer) last(t *testing.T) mailed {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

type testEnv struct {
	app  *fiber.App
	db   *sqlx.DB
	mail *captureMailer
}

const testBaseURL = "http://shop.test"

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{
		BaseURL:          testBaseURL,
		MediaDir:         t.TempDir(),
		ActivationSecret: "test-secret",
		ActivationTTL:    time.Hour,
	}
	m := &captureMailer{}
	deps := handlers.NewDeps(db, cfg, m)
	deps.Accounts.Cost = 4

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Use(requestid.New())
	app.Use(handlers.Sessions(session.NewStore(time.Hour, nil)))
	handlers.Routes(app, deps, 3)
	app.Use(handlers.NotFound)

	return &testEnv{app: app, db: db, mail: m}
}

// productID looks up a seeded product by name.
func (e *testEnv) productID(t *testing.T, name string) string {
	t.Helper()
	var id string
	require.NoError(t, e.db.Get(&id, `SELECT id FROM products WHERE name = ?`, name))
	return id
}

// client carries the session cookie between requests.
type client struct {
	t   *testing.T
	app *fiber.App
	sid string
}

func (e *testEnv) client(t *testing.T) *client { return &client{t: t, app: e.app} }

func (cl *client) do(method, path string, form url.Values) *http.Response {
	cl.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cl.sid != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cl.sid})
	}
	resp, err := cl.app.Test(req, -1)
	require.NoError(cl.t, err)
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			cl.sid = c.Value
		}
	}
	return resp
}

func (cl *client) get(path string) *http.Response { return cl.do(http.MethodGet, path, nil) }

func (cl *client) post(path string, form url.Values) *http.Response {
	if form == nil {
		form = url.Values{}
	}
	return cl.do(http.MethodPost, path, form)
}

func (cl *client) login(username string) {
	cl.t.Helper()
	resp := cl.post("/login", url.Values{"username": {username}, "password": {"Passw0rd!"}})
	require.Equal(cl.t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(cl.t, cl.sid)
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

// captureLogs swaps the standard logger output while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW, oldFlags := log.Writer(), log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}

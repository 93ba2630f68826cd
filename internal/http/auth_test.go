package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordsSeededAreHashed(t *testing.T) {
	env := newTestEnv(t)
	var hashes []string
	require.NoError(t, env.db.Select(&hashes, `SELECT password_hash FROM users`))
	require.NotEmpty(t, hashes)
	for _, h := range hashes {
		assert.NotContains(t, h, "Passw0rd!")
		assert.True(t, strings.HasPrefix(h, "$2"), h)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(h), []byte("Passw0rd!")))
	}
}

func registration(username, email string) url.Values {
	return url.Values{
		"username":      {username},
		"email":         {email},
		"confirm_email": {email},
		"password1":     {"Str0ng!pass"},
		"password2":     {"Str0ng!pass"},
	}
}

func TestRegisterActivateLogin(t *testing.T) {
	env := newTestEnv(t)
	cl := env.client(t)

	resp := cl.post("/register", registration("nina", "nina@shop.test"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = cl.post("/login", url.Values{"username": {"nina"}, "password": {"Str0ng!pass"}})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "inactive account cannot log in")

	m := env.mail.last(t)
	assert.Equal(t, "nina@shop.test", m.to)
	require.True(t, strings.HasPrefix(m.link, testBaseURL+"/activate/"))
	path := strings.TrimPrefix(m.link, testBaseURL)

	resp = cl.get(path)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login?activated=1", resp.Header.Get("Location"))

	resp = cl.get(path)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/register?activation=invalid", resp.Header.Get("Location"), "link is single-use")

	resp = cl.post("/login", url.Values{"username": {"nina@shop.test"}, "password": {"Str0ng!pass"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	me := decode(t, cl.get("/me"))
	user := me["user"].(map[string]any)
	assert.Equal(t, "nina", user["username"])
	assert.Equal(t, true, user["is_active"])
	assert.NotContains(t, user, "password_hash")
}

func TestActivationLinkForOtherUser(t *testing.T) {
	env := newTestEnv(t)
	cl := env.client(t)

	require.Equal(t, http.StatusCreated, cl.post("/register", registration("otto", "otto@shop.test")).StatusCode)
	linkU := env.mail.last(t).link
	require.Equal(t, http.StatusCreated, cl.post("/register", registration("pia", "pia@shop.test")).StatusCode)
	linkV := env.mail.last(t).link

	// uid of V with token of U
	partsU := strings.Split(strings.TrimPrefix(linkU, testBaseURL+"/activate/"), "/")
	partsV := strings.Split(strings.TrimPrefix(linkV, testBaseURL+"/activate/"), "/")
	resp := cl.get("/activate/" + partsV[0] + "/" + partsU[1])
	assert.Equal(t, "/register?activation=invalid", resp.Header.Get("Location"))

	var active bool
	require.NoError(t, env.db.Get(&active, `SELECT is_active FROM users WHERE username = 'pia'`))
	assert.False(t, active)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	cl := env.client(t)
	var before, after int
	require.NoError(t, env.db.Get(&before, `SELECT COUNT(*) FROM users`))

	resp := cl.post("/register", registration("alice2", "alice@storefront.test"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "email already used", decode(t, resp)["error"])

	require.NoError(t, env.db.Get(&after, `SELECT COUNT(*) FROM users`))
	assert.Equal(t, before, after)
}

func TestRegisterFieldErrors(t *testing.T) {
	env := newTestEnv(t)
	form := registration("", "bad")
	form.Set("password1", "weak")

	resp := env.client(t).post("/register", form)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	fields := decode(t, resp)["fields"].(map[string]any)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password1")
}

func TestLoginFailLogoutAndThrottle(t *testing.T) {
	env := newTestEnv(t)
	cl := env.client(t)

	resp := cl.post("/login", url.Values{"username": {"alice"}, "password": {"wrongpass!"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	cl.login("alice")
	assert.Equal(t, http.StatusOK, cl.get("/me").StatusCode)

	require.Equal(t, http.StatusOK, cl.post("/logout", nil).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, cl.get("/me").StatusCode)

	// the limiter allows three attempts; two were used above
	cl.post("/login", url.Values{"username": {"alice"}, "password": {"wrongpass!"}})
	resp = cl.post("/login", url.Values{"username": {"alice"}, "password": {"wrongpass!"}})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

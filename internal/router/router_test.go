package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/messagely/config"
	"github.com/oksasatya/messagely/internal/container"
	"github.com/oksasatya/messagely/internal/infrastructure/sqlite"
	"github.com/oksasatya/messagely/internal/router"
	"github.com/oksasatya/messagely/pkg/helpers"
)

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type api struct {
	t      *testing.T
	engine *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := helpers.NewNopLogger()
	conn, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	cfg := config.Load()
	cfg.SecretKey = "router-test-secret"
	cfg.BcryptWorkFactor = bcrypt.MinCost
	c := container.New(cfg, logger, sqlite.NewUserRepository(conn), sqlite.NewMessageRepository(conn))

	engine := gin.New()
	reg := router.NewRegistry(engine)
	router.InitModules(reg, c)
	reg.RegisterAll()
	return &api{t: t, engine: engine}
}

func (a *api) do(method, path, token string, body any) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "" && bytes.HasPrefix(w.Body.Bytes(), []byte("{")) {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func (a *api) register(username string) string {
	a.t.Helper()
	code, env := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username, "password": "pw-" + username,
		"first_name": "F", "last_name": "L", "phone": "+15550100",
	})
	require.Equal(a.t, http.StatusCreated, code, env.Message)
	var res struct {
		Token string `json:"token"`
		Msg   string `json:"msg"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &res))
	assert.Equal(a.t, fmt.Sprintf("User %s created. Welcome!", username), res.Msg)
	return res.Token
}

func TestAuthFlow(t *testing.T) {
	a := newAPI(t)
	a.register("alice")

	code, env := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "alice", "password": "x", "first_name": "F", "last_name": "L", "phone": "1",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Username taken. Please pick another!", env.Message)
	assert.Contains(t, string(env.Error), "alice")

	code, env = a.do(http.MethodPost, "/api/auth/register", "", map[string]string{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(env.Error), "password")

	code, env = a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "bob", "password": strings.Repeat("p", 73), "first_name": "F", "last_name": "L", "phone": "1",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Password must be at most 72 bytes", env.Message)
	code, _ = a.do(http.MethodGet, "/api/users/bob", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "pw-alice"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Welcome back, alice!", env.Message)

	_, wrongPw := a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "bad"})
	code, unknown := a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ghost", "password": "bad"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Incorrect username/password", unknown.Message)
	assert.Equal(t, wrongPw.Message, unknown.Message)
}

func TestMessageFlow(t *testing.T) {
	a := newAPI(t)
	alice := a.register("alice")
	bob := a.register("bob")
	carol := a.register("carol")

	code, env := a.do(http.MethodPost, "/api/messages", alice, map[string]string{"to_username": "bob", "body": "hi bob"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var sent struct {
		Message struct {
			ID int64 `json:"id"`
		} `json:"message"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sent))
	path := fmt.Sprintf("/api/messages/%d", sent.Message.ID)

	for _, tok := range []string{alice, bob} {
		code, env = a.do(http.MethodGet, path, tok, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Contains(t, string(env.Data), `"body":"hi bob"`)
	}

	code, _ = a.do(http.MethodGet, path, carol, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = a.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = a.do(http.MethodGet, "/api/messages/999", alice, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = a.do(http.MethodGet, "/api/messages/abc", alice, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.do(http.MethodPost, path+"/read", alice, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, first := a.do(http.MethodPost, path+"/read", bob, nil)
	require.Equal(t, http.StatusOK, code)
	code, second := a.do(http.MethodPost, path+"/read", bob, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, string(first.Data), string(second.Data))

	code, env = a.do(http.MethodGet, "/api/users/bob/to", bob, nil)
	require.Equal(t, http.StatusOK, code)
	var inbox struct {
		Messages []struct {
			Body     string `json:"body"`
			FromUser struct {
				Username string `json:"username"`
			} `json:"from_user"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &inbox))
	require.Len(t, inbox.Messages, 1)
	assert.Equal(t, "alice", inbox.Messages[0].FromUser.Username)

	code, _ = a.do(http.MethodGet, "/api/users/bob/to", alice, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = a.do(http.MethodGet, "/api/users/carol/to", carol, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"messages":[]}`, string(env.Data))

	code, _ = a.do(http.MethodPost, "/api/messages", alice, map[string]string{"to_username": "ghost", "body": "x"})
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = a.do(http.MethodPost, "/api/messages", "", map[string]string{"to_username": "bob", "body": "x"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestTokenInBody(t *testing.T) {
	a := newAPI(t)
	alice := a.register("alice")
	a.register("bob")

	code, env := a.do(http.MethodPost, "/api/messages", "", map[string]string{"_token": alice, "to_username": "bob", "body": "via body"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	assert.Contains(t, string(env.Data), `"from_username":"alice"`)
}

func TestForgedTokenRejected(t *testing.T) {
	a := newAPI(t)
	alice := a.register("alice")

	last := byte('A')
	if alice[len(alice)-1] == 'A' {
		last = 'E'
	}
	forged := alice[:len(alice)-1] + string(last)
	code, env := a.do(http.MethodGet, "/api/users", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid token", env.Message)
}

func TestPublicProfiles(t *testing.T) {
	a := newAPI(t)
	a.register("alice")
	a.register("bob")

	code, env := a.do(http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, string(env.Data), "password")
	assert.Contains(t, string(env.Data), `"username":"alice"`)

	code, env = a.do(http.MethodGet, "/api/users/bob", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"join_at"`)
	assert.NotContains(t, string(env.Data), "password")

	code, _ = a.do(http.MethodGet, "/api/users/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, env = a.do(http.MethodGet, "/api/users/search?q=bo", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"username":"bob"`)
	assert.NotContains(t, string(env.Data), `"username":"alice"`)
}

func TestDebugVars(t *testing.T) {
	a := newAPI(t)
	a.register("alice")

	req := httptest.NewRequest(http.MethodGet, "/api/debug/vars", nil)
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"messagely"`)
}

func TestEndToEnd(t *testing.T) {
	a := newAPI(t)
	a.register("u1")
	a.register("u2")

	code, env := a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "u2", "password": "pw-u2"})
	require.Equal(t, http.StatusOK, code)
	var u2 struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &u2))

	code, env = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "u1", "password": "pw-u1"})
	require.Equal(t, http.StatusOK, code)
	var u1 struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &u1))

	code, env = a.do(http.MethodPost, "/api/messages", u1.Token, map[string]string{"to_username": "u2", "body": "hello"})
	require.Equal(t, http.StatusCreated, code)
	var sent struct {
		Message struct {
			ID int64 `json:"id"`
		} `json:"message"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sent))
	path := fmt.Sprintf("/api/messages/%d", sent.Message.ID)

	code, env = a.do(http.MethodGet, path, u2.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var got struct {
		Message struct {
			Body   string  `json:"body"`
			ReadAt *string `json:"read_at"`
		} `json:"message"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "hello", got.Message.Body)
	assert.Nil(t, got.Message.ReadAt)

	code, env = a.do(http.MethodPost, path+"/read", u2.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var receipt struct {
		Message struct {
			ReadAt *string `json:"read_at"`
		} `json:"message"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &receipt))
	assert.NotNil(t, receipt.Message.ReadAt)

	code, _ = a.do(http.MethodPost, path+"/read", u1.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestUnknownRoute(t *testing.T) {
	a := newAPI(t)
	code, env := a.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "route not found", env.Message)
}

func TestStaleCookieDoesNotBlockPublicRoutes(t *testing.T) {
	a := newAPI(t)
	a.register("alice")

	send := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		req.AddCookie(&http.Cookie{Name: "access_token", Value: "stale.token.value"})
		w := httptest.NewRecorder()
		a.engine.ServeHTTP(w, req)
		return w
	}

	w := send(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"pw-alice"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Welcome back, alice!")

	w = send(http.MethodPost, "/api/auth/register",
		`{"username":"bob","password":"pw-bob","first_name":"F","last_name":"L","phone":"1"}`)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = send(http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"username":"bob"`)

	// anonymous after the cookie is dropped, so private routes still refuse
	w = send(http.MethodGet, "/api/users/alice/to", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "invalid token")
}

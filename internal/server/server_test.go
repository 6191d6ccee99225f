package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer spins up the full stack — router, services, a real SQLite
// database in the test's temp dir — behind an httptest server.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	s, err := New(Config{
		Port:        0,
		DBPath:      filepath.Join(t.TempDir(), "test.db"),
		TokenSecret: "test-secret-at-least-16-chars!!",
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)

	return ts
}

// doJSON sends a JSON request and returns the response with its body read.
func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, payload
}

// registerAccount registers an account and returns its id from the response.
func registerAccount(t *testing.T, ts *httptest.Server, name, email, username, password string) string {
	t.Helper()

	resp, body := doJSON(t, ts, http.MethodPost, "/user", "", map[string]string{
		"name":     name,
		"email":    email,
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "register response: %s", body)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotEmpty(t, created.ID)

	return created.ID
}

// loginAccount logs in and returns the session token.
func loginAccount(t *testing.T, ts *httptest.Server, user, password string) string {
	t.Helper()

	resp, body := doJSON(t, ts, http.MethodPost, "/user/login", "", map[string]string{
		"user":     user,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "login response: %s", body)

	// The body is the bare token as a JSON string.
	var token string
	require.NoError(t, json.Unmarshal(body, &token))
	require.NotEmpty(t, token)

	return token
}

// =========================================================================
// ACCOUNT SCENARIOS
// =========================================================================

func TestRegister(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodPost, "/user", "", map[string]string{
		"name":     "Betty",
		"email":    "betty@email.com",
		"username": "betty01",
		"password": "#bettyB01",
	})

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]any
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "Betty", created["name"])
	assert.Equal(t, "betty01", created["username"])
	// The credential never leaves the server.
	assert.NotContains(t, created, "password")
	assert.NotContains(t, created, "passwordHash")
	assert.NotContains(t, created, "salt")
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ts := newTestServer(t)
	registerAccount(t, ts, "Betty", "betty@email.com", "betty01", "#bettyB01")

	resp, body := doJSON(t, ts, http.MethodPost, "/user", "", map[string]string{
		"name":     "Another Betty",
		"email":    "betty2@email.com",
		"username": "betty01",
		"password": "#bettyB01",
	})

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.JSONEq(t, `{"error":"The username betty01 is already registered!"}`, string(body))
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := newTestServer(t)
	registerAccount(t, ts, "Betty", "betty@email.com", "betty01", "#bettyB01")

	resp, body := doJSON(t, ts, http.MethodPost, "/user/login", "", map[string]string{
		"user":     "betty01",
		"password": "#wrongB01",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Incorrect password!"}`, string(body))
}

func TestLogin_UnknownUser(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, ts, http.MethodPost, "/user/login", "", map[string]string{
		"user":     "nobody",
		"password": "#bettyB01",
	})

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"User not found!"}`, string(body))
}

func TestLogin_TokenAuthenticates(t *testing.T) {
	ts := newTestServer(t)
	id := registerAccount(t, ts, "Betty", "betty@email.com", "betty01", "#bettyB01")
	token := loginAccount(t, ts, "betty@email.com", "#bettyB01")

	resp, body := doJSON(t, ts, http.MethodPost, "/user/auth", token, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var claims struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(body, &claims))
	assert.Equal(t, id, claims.ID)
	assert.Equal(t, "Betty", claims.Name)
}

func TestProtectedRoutes_RejectMissingToken(t *testing.T) {
	ts := newTestServer(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/user/auth"},
		{http.MethodGet, "/user/some-id"},
		{http.MethodGet, "/tasks"},
		{http.MethodDelete, "/tasks/all"},
	} {
		resp, body := doJSON(t, ts, route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", route.method, route.path)
		assert.JSONEq(t, `{"error":"Invalid access token!"}`, string(body))
	}
}

func TestGetUser_OtherAccount(t *testing.T) {
	ts := newTestServer(t)
	registerAccount(t, ts, "Betty", "betty@email.com", "betty01", "#bettyB01")
	token := loginAccount(t, ts, "betty01", "#bettyB01")

	resp, body := doJSON(t, ts, http.MethodGet, "/user/someone-else", token, nil)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"It's not possible to fetch other users' information!"}`, string(body))
}

// =========================================================================
// TASK SCENARIOS
// =========================================================================

func TestCreateTask(t *testing.T) {
	ts := newTestServer(t)
	id := registerAccount(t, ts, "Betty", "betty@email.com", "betty01", "#bettyB01")
	token := loginAccount(t, ts, "betty01", "#bettyB01")

	resp, body := doJSON(t, ts, http.MethodPost, "/tasks", token, map[string]any{
		"description": "Water the plants",
		"userId":      id,
	})

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var task map[string]any
	require.NoError(t, json.Unmarshal(body, &task))
	assert.NotEmpty(t, task["id"])
	assert.Equal(t, "Water the plants", task["description"])
	assert.Equal(t, id, task["userId"])
	assert.Equal(t, false, task["completed"])
}

func TestCreateTask_ForAnotherUser(t *testing.T) {
	ts := newTestServer(t)
	registerAccount(t, ts, "Betty", "betty@email.com", "betty01", "#bettyB01")
	token := loginAccount(t, ts, "betty01", "#bettyB01")

	resp, body := doJSON(t, ts, http.MethodPost, "/tasks", token, map[string]any{
		"description": "Water the plants",
		"userId":      "someone-else",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"It's not possible to create a task for other users!"}`, string(body))
}

func TestUpdateTask_AlterID(t *testing.T) {
	ts := newTestServer(t)
	id := registerAccount(t, ts, "Betty", "betty@email.com", "betty01", "#bettyB01")
	token := loginAccount(t, ts, "betty01", "#bettyB01")

	resp, body := doJSON(t, ts, http.MethodPost, "/tasks", token, map[string]any{
		"description": "Water the plants",
		"userId":      id,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var task struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &task))

	resp, body = doJSON(t, ts, http.MethodPut, "/tasks/"+task.ID, token, map[string]any{
		"id": "other-id",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"It's not allowed to alter the task's ID!"}`, string(body))
}

func TestTaskLifecycle(t *testing.T) {
	ts := newTestServer(t)
	id := registerAccount(t, ts, "Betty", "betty@email.com", "betty01", "#bettyB01")
	token := loginAccount(t, ts, "betty01", "#bettyB01")

	// Three tasks, one already completed.
	for i, completed := range []bool{false, true, false} {
		resp, body := doJSON(t, ts, http.MethodPost, "/tasks", token, map[string]any{
			"description": fmt.Sprintf("Task number %d", i+1),
			"completed":   completed,
			"userId":      id,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, "create response: %s", body)
	}

	resp, body := doJSON(t, ts, http.MethodGet, "/tasks", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tasks []map[string]any
	require.NoError(t, json.Unmarshal(body, &tasks))
	require.Len(t, tasks, 3)

	// /tasks/completed routes to the bulk handler, not the {id} wildcard.
	resp, body = doJSON(t, ts, http.MethodDelete, "/tasks/completed", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", string(bytes.TrimSpace(body)))

	// Running it again finds nothing to delete.
	resp, body = doJSON(t, ts, http.MethodDelete, "/tasks/completed", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0", string(bytes.TrimSpace(body)))

	// /tasks/all sweeps the remainder.
	resp, body = doJSON(t, ts, http.MethodDelete, "/tasks/all", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2", string(bytes.TrimSpace(body)))

	resp, body = doJSON(t, ts, http.MethodGet, "/tasks", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", string(bytes.TrimSpace(body)))
}

func TestTaskIsolationBetweenAccounts(t *testing.T) {
	ts := newTestServer(t)
	bettyID := registerAccount(t, ts, "Betty", "betty@email.com", "betty01", "#bettyB01")
	bettyToken := loginAccount(t, ts, "betty01", "#bettyB01")
	registerAccount(t, ts, "Joanne", "joanne@email.com", "joanne01", "#joanneJ01")
	joanneToken := loginAccount(t, ts, "joanne01", "#joanneJ01")

	resp, body := doJSON(t, ts, http.MethodPost, "/tasks", bettyToken, map[string]any{
		"description": "Betty's task",
		"userId":      bettyID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var task struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(body, &task))

	// Joanne can't read Betty's task.
	resp, body = doJSON(t, ts, http.MethodGet, "/tasks/"+task.ID, joanneToken, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"error":"It's not possible to fetch another users' tasks!"}`, string(body))

	// And doesn't see it in her list.
	resp, body = doJSON(t, ts, http.MethodGet, "/tasks", joanneToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", string(bytes.TrimSpace(body)))
}

func TestDeleteUser_RemovesTasks(t *testing.T) {
	ts := newTestServer(t)
	id := registerAccount(t, ts, "Betty", "betty@email.com", "betty01", "#bettyB01")
	token := loginAccount(t, ts, "betty01", "#bettyB01")

	resp, _ := doJSON(t, ts, http.MethodPost, "/tasks", token, map[string]any{
		"description": "Water the plants",
		"userId":      id,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, ts, http.MethodDelete, "/user/"+id, token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// The account is gone, so its token no longer names a living user but the
	// database no longer holds the tasks either — re-registering the same
	// username starts clean.
	registerAccount(t, ts, "Betty", "betty@email.com", "betty01", "#bettyB01")
	freshToken := loginAccount(t, ts, "betty01", "#bettyB01")

	resp, body := doJSON(t, ts, http.MethodGet, "/tasks", freshToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", string(bytes.TrimSpace(body)))
}

func TestMalformedJSON(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/user", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Please, check if all the fields are filled correctly!"}`, string(body))
}

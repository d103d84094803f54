package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/tictactoe-go/internal/api/apierr"
	"github.com/mcoot/tictactoe-go/internal/api/response"
	"github.com/mcoot/tictactoe-go/internal/factory"
	"github.com/mcoot/tictactoe-go/internal/model"
	"github.com/mcoot/tictactoe-go/internal/services/coordinator"
)

// testServer wraps the application router for in-process requests
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	t.Cleanup(app.Close)

	return &testServer{
		handler: app.Router(),
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v))
	return v
}

func register(t *testing.T, ts *testServer, username string) string {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": username,
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[response.AuthResponse](t, rr).Token
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "alice",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	registered := decode[response.AuthResponse](t, rr)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "alice", registered.User.Username)
	assert.NotEmpty(t, registered.User.ID)

	rr = ts.request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "alice",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	loggedIn := decode[response.AuthResponse](t, rr)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
	assert.NotEqual(t, registered.Token, loggedIn.Token)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	ts := newTestServer(t)
	register(t, ts, "alice")

	rr := ts.request(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "alice",
		"password": "another123",
	}, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeUsernameExists, decode[apierr.ErrorResponse](t, rr).Error.Code)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"username": "alice",
		"password": "123",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "password must be at least 6 characters", decode[apierr.ErrorResponse](t, rr).Error.Message)

	rr = ts.request(http.MethodPost, "/api/v1/auth/register", map[string]string{"username": "alice"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	register(t, ts, "alice")

	rr := ts.request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeInvalidCredentials, decode[apierr.ErrorResponse](t, rr).Error.Code)
}

func TestMalformedBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetMe(t *testing.T) {
	ts := newTestServer(t)
	token := register(t, ts, "alice")

	rr := ts.request(http.MethodGet, "/api/v1/auth/me", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	user := decode[response.User](t, rr)
	assert.Equal(t, "alice", user.Username)
	assert.NotContains(t, rr.Body.String(), "password")
}

func TestUnauthorizedWithoutToken(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/history", nil, "bogus")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t)
	token := register(t, ts, "alice")

	rr := ts.request(http.MethodPost, "/api/v1/auth/logout", nil, token)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/auth/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHistoryFlow(t *testing.T) {
	ts := newTestServer(t)
	token := register(t, ts, "alice")

	rr := ts.request(http.MethodPost, "/api/v1/history", map[string]string{
		"gameType": "computer",
		"result":   "win",
		"winner":   "X",
	}, token)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[response.HistoryRecord](t, rr)
	assert.Equal(t, "alice", created.Player)
	assert.Equal(t, "vs Computer", created.GameTypeDisplay)
	assert.Equal(t, "Win", created.ResultDisplay)
	assert.Equal(t, "Computer", created.OpponentDisplay)

	rr = ts.request(http.MethodPost, "/api/v1/history", map[string]string{
		"gameType": "multiplayer",
		"result":   "draw",
		"winner":   "draw",
	}, token)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/history", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	mine := decode[[]response.HistoryRecord](t, rr)
	require.Len(t, mine, 2)
	assert.Equal(t, "Local Multiplayer", mine[0].GameTypeDisplay)
	assert.Equal(t, "Player 2", mine[0].OpponentDisplay)

	// Public lookup by name
	rr = ts.request(http.MethodGet, "/api/v1/history/alice", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]response.HistoryRecord](t, rr), 2)
}

func TestHistoryLimitedToTen(t *testing.T) {
	ts := newTestServer(t)
	token := register(t, ts, "alice")

	for range 12 {
		rr := ts.request(http.MethodPost, "/api/v1/history", map[string]string{
			"gameType": "online",
			"result":   "loss",
			"winner":   "O",
			"opponent": "bob",
		}, token)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := ts.request(http.MethodGet, "/api/v1/history", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]response.HistoryRecord](t, rr), model.HistoryLimit)
}

func TestHistoryRejectsInvalidRecord(t *testing.T) {
	ts := newTestServer(t)
	token := register(t, ts, "alice")

	rr := ts.request(http.MethodPost, "/api/v1/history", map[string]string{
		"gameType": "chess",
		"result":   "win",
		"winner":   "X",
	}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHistoryForUnknownPlayerIsEmpty(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/history/nobody", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestRoomsAndStatsWhenEmpty(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/rooms", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = ts.request(http.MethodGet, "/api/v1/stats", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, coordinator.Stats{}, decode[coordinator.Stats](t, rr))
}

func TestUnknownRoomFeed(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/room_missing/events", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Room not found", decode[apierr.ErrorResponse](t, rr).Error.Message)
}

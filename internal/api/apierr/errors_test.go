package apierr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/tictactoe-go/internal/model"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", model.ErrRoomNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", model.ErrUserNotFound), http.StatusNotFound},
		{"invalid input", model.ErrInvalidHistory, http.StatusBadRequest},
		{"forbidden", model.ErrNotYourTurn, http.StatusForbidden},
		{"invalid state", model.ErrGameNotInProgress, http.StatusConflict},
		{"username taken", model.ErrUsernameTaken, http.StatusConflict},
		{"bad credentials", model.ErrInvalidCredentials, http.StatusUnauthorized},
		{"bad token", model.ErrInvalidToken, http.StatusUnauthorized},
		{"storage down", model.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{"timeout", context.DeadlineExceeded, http.StatusServiceUnavailable},
		{"explicit", NewInvalidRequestError("bad"), http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, Status(tc.err))
		})
	}
}

func TestWriteErrorUsesDomainMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, model.ErrInvalidPassword)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, CodeInvalidRequest, resp.Error.Code)
	assert.Equal(t, "password must be at least 6 characters", resp.Error.Message)
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, errors.New("redis: connection pool exhausted"))

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, CodeInternalError, resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "redis")
}

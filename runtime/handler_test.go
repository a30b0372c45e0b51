package runtime_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/ghostpeony/sidecar/internal/execution/health"
	"github.com/ghostpeony/sidecar/internal/execution/supervisor"
	"github.com/ghostpeony/sidecar/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRuntime struct {
	mock.Mock
}

func (m *mockRuntime) Start(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockRuntime) Stop(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockRuntime) Status(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockRuntime) CheckHealth(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockRuntime) BackendURL() string {
	return m.Called().String(0)
}

func (m *mockRuntime) AwaitHealthy(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockRuntime) Shutdown(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func createHandler(rt runtime.Runtime) runtime.Handler {
	return runtime.NewRuntimeHandler(runtime.HandlerParams{
		Runtime: rt,
		Log:     zap.NewNop(),
	})
}

func decodeBody(t *testing.T, res runtime.Response) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(res.Body, &body))

	return body
}

func errorBody(t *testing.T, res runtime.Response) map[string]any {
	t.Helper()

	body := decodeBody(t, res)
	require.Contains(t, body, "error")

	return body["error"].(map[string]any)
}

func TestRuntimeHandler_Start(t *testing.T) {
	rt := new(mockRuntime)
	rt.On("Start", mock.Anything).Return(runtime.MessageStarted, nil)

	res := createHandler(rt).Handle(context.Background(), runtime.Request{
		Path:   "/start",
		Method: http.MethodPost,
	})

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
	assert.Equal(t, runtime.MessageStarted, decodeBody(t, res)["message"])
	rt.AssertExpectations(t)
}

func TestRuntimeHandler_Stop(t *testing.T) {
	rt := new(mockRuntime)
	rt.On("Stop", mock.Anything).Return(runtime.MessageStopped, nil)

	res := createHandler(rt).Handle(context.Background(), runtime.Request{
		Path:   "/stop",
		Method: http.MethodPost,
	})

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, runtime.MessageStopped, decodeBody(t, res)["message"])
}

func TestRuntimeHandler_Status(t *testing.T) {
	rt := new(mockRuntime)
	rt.On("Status", mock.Anything).Return(true, nil)

	res := createHandler(rt).Handle(context.Background(), runtime.Request{
		Path:   "/status",
		Method: http.MethodGet,
	})

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, true, decodeBody(t, res)["running"])
}

func TestRuntimeHandler_CheckHealth(t *testing.T) {
	rt := new(mockRuntime)
	rt.On("CheckHealth", mock.Anything).Return(runtime.MessageHealthy, nil)

	res := createHandler(rt).Handle(context.Background(), runtime.Request{
		Path:   "/check-health",
		Method: http.MethodGet,
	})

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, runtime.MessageHealthy, decodeBody(t, res)["message"])
}

func TestRuntimeHandler_BackendURL(t *testing.T) {
	rt := new(mockRuntime)
	rt.On("BackendURL").Return("http://127.0.0.1:8765")

	res := createHandler(rt).Handle(context.Background(), runtime.Request{
		Path:   "/get_backend_url",
		Method: http.MethodPost,
	})

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "http://127.0.0.1:8765", decodeBody(t, res)["url"])
}

func TestRuntimeHandler_CommandHeader(t *testing.T) {
	rt := new(mockRuntime)
	rt.On("Status", mock.Anything).Return(false, nil)

	header := make(http.Header)
	header.Set("command", "status")

	res := createHandler(rt).Handle(context.Background(), runtime.Request{
		Path:   "/",
		Method: http.MethodGet,
		Header: header,
	})

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, false, decodeBody(t, res)["running"])
}

func TestRuntimeHandler_RequestErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		method string
		status int
		code   string
	}{
		{"missing command", "/", http.MethodGet, http.StatusNotFound, "command_not_found"},
		{"nested path", "/a/b", http.MethodGet, http.StatusNotFound, "command_not_found"},
		{"unknown command", "/restart", http.MethodPost, http.StatusBadRequest, "invalid_command"},
		{"start via GET", "/start", http.MethodGet, http.StatusMethodNotAllowed, "invalid_method"},
		{"stop via DELETE", "/stop", http.MethodDelete, http.StatusMethodNotAllowed, "invalid_method"},
		{"status via PUT", "/status", http.MethodPut, http.StatusMethodNotAllowed, "invalid_method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := new(mockRuntime)

			res := createHandler(rt).Handle(context.Background(), runtime.Request{
				Path:   tt.path,
				Method: tt.method,
			})

			assert.Equal(t, tt.status, res.StatusCode)
			assert.Equal(t, tt.code, errorBody(t, res)["code"])
			rt.AssertNotCalled(t, "Start", mock.Anything)
			rt.AssertNotCalled(t, "Stop", mock.Anything)
		})
	}
}

func TestRuntimeHandler_RuntimeErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"already running", supervisor.ErrAlreadyRunning, http.StatusConflict, "already_running"},
		{"lock unavailable", fmt.Errorf("%w: %w", supervisor.ErrLockUnavailable, context.DeadlineExceeded), http.StatusServiceUnavailable, "lock_unavailable"},
		{"spawn failed", fmt.Errorf("%w: %w", supervisor.ErrSpawnFailed, assert.AnError), http.StatusInternalServerError, "spawn_failed"},
		{"status check failed", fmt.Errorf("%w: %w", supervisor.ErrStatusCheckFailed, assert.AnError), http.StatusInternalServerError, "status_check_failed"},
		{"unknown", assert.AnError, http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := new(mockRuntime)
			rt.On("Start", mock.Anything).Return("", tt.err)

			res := createHandler(rt).Handle(context.Background(), runtime.Request{
				Path:   "/start",
				Method: http.MethodPost,
			})

			assert.Equal(t, tt.status, res.StatusCode)

			body := errorBody(t, res)
			assert.Equal(t, tt.code, body["code"])
			assert.Equal(t, tt.err.Error(), body["message"])
		})
	}
}

func TestRuntimeHandler_StopNotRunning(t *testing.T) {
	rt := new(mockRuntime)
	rt.On("Stop", mock.Anything).Return("", supervisor.ErrNotRunning)

	res := createHandler(rt).Handle(context.Background(), runtime.Request{
		Path:   "/stop",
		Method: http.MethodPost,
	})

	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Equal(t, "not_running", errorBody(t, res)["code"])
}

func TestRuntimeHandler_HealthErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unreachable", fmt.Errorf("%w: %w", health.ErrUnreachable, assert.AnError), http.StatusServiceUnavailable, "unreachable"},
		{"unhealthy", fmt.Errorf("%w: %s", health.ErrUnhealthyStatus, "503 Service Unavailable"), http.StatusBadGateway, "unhealthy_status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := new(mockRuntime)
			rt.On("CheckHealth", mock.Anything).Return("", tt.err)

			res := createHandler(rt).Handle(context.Background(), runtime.Request{
				Path:   "/check_health",
				Method: http.MethodGet,
			})

			assert.Equal(t, tt.status, res.StatusCode)
			assert.Equal(t, tt.code, errorBody(t, res)["code"])
		})
	}
}

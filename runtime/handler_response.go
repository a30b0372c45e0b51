package runtime

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ghostpeony/sidecar/internal/execution/health"
	"github.com/ghostpeony/sidecar/internal/execution/supervisor"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// wellKnownErrors is matched in order with errors.Is.
var wellKnownErrors = []errorMapping{
	{ErrCommandNotFound, http.StatusNotFound, "command_not_found"},
	{ErrInvalidCommand, http.StatusBadRequest, "invalid_command"},
	{ErrInvalidMethod, http.StatusMethodNotAllowed, "invalid_method"},
	{supervisor.ErrAlreadyRunning, http.StatusConflict, "already_running"},
	{supervisor.ErrNotRunning, http.StatusConflict, "not_running"},
	{supervisor.ErrLockUnavailable, http.StatusServiceUnavailable, "lock_unavailable"},
	{supervisor.ErrSpawnFailed, http.StatusInternalServerError, "spawn_failed"},
	{supervisor.ErrTerminationFailed, http.StatusInternalServerError, "termination_failed"},
	{supervisor.ErrWaitFailed, http.StatusInternalServerError, "wait_failed"},
	{supervisor.ErrStatusCheckFailed, http.StatusInternalServerError, "status_check_failed"},
	{health.ErrUnreachable, http.StatusServiceUnavailable, "unreachable"},
	{health.ErrUnhealthyStatus, http.StatusBadGateway, "unhealthy_status"},
}

// getErrorMapping returns the status code and error code for the given error.
func getErrorMapping(err error) (int, string) {
	for _, m := range wellKnownErrors {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}

	return http.StatusInternalServerError, "internal"
}

// newErrorResponse creates a new error response.
func newErrorResponse(err error) Response {
	statusCode, code := getErrorMapping(err)

	return newJSONResponse(statusCode, struct {
		Error ErrorResponse `json:"error"`
	}{
		Error: ErrorResponse{
			Message: err.Error(),
			Code:    code,
		},
	})
}

// newJSONResponse marshals v and creates a new response.
func newJSONResponse(status int, v any) Response {
	body, err := json.Marshal(v)
	if err != nil {
		return Response{StatusCode: http.StatusInternalServerError}
	}

	return newResponse(status, body)
}

// newResponse creates a new response.
func newResponse(status int, body []byte) Response {
	header := make(http.Header)
	header.Add("Content-Type", "application/json")

	return Response{
		StatusCode: status,
		Body:       body,
		Header:     header,
	}
}

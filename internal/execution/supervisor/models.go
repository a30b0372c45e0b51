package supervisor

import "errors"

var (
	ErrAlreadyRunning    = errors.New("backend is already running")
	ErrNotRunning        = errors.New("backend is not running")
	ErrSpawnFailed       = errors.New("failed to start backend")
	ErrTerminationFailed = errors.New("failed to kill backend process")
	ErrWaitFailed        = errors.New("failed to wait for backend process")
	ErrStatusCheckFailed = errors.New("error checking process status")
	ErrLockUnavailable   = errors.New("supervisor lock unavailable")
)

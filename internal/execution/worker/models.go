package worker

import (
	"errors"
	"time"
)

var ErrInvalidCommand = errors.New("invalid command")

const (
	// DefaultOutputLimit is the number of trailing bytes of stdout
	// and stderr kept for each process if no limit is configured.
	DefaultOutputLimit = 64 * 1024

	// DefaultWaitDelay bounds how long Wait keeps draining output
	// pipes after the process itself has exited.
	DefaultWaitDelay = 2 * time.Second
)

type StartConfig struct {
	// Cmd is the path or name of the binary to execute
	Cmd string `conf:"cmd"`

	// Cwd is the working directory in which
	// the binary should be executed
	Cwd string `conf:"cwd"`

	// Args is the list of arguments to pass to the command
	Args []string `conf:"args"`

	// Env is a map of environment variables to set when running
	// the command, on top of the inherited environment
	Env map[string]string `conf:"env"`

	// OutputLimit is the number of trailing bytes of stdout and
	// stderr to keep in memory
	OutputLimit int `conf:"output_limit"`

	// WaitDelay is the duration to keep reading output after the
	// process exited, before the pipes are forcibly closed
	WaitDelay time.Duration `conf:"wait_delay"`
}

// ExitEvent describes how a process terminated.
type ExitEvent struct {
	// Code is the exit code of the process
	Code *int

	// Signal is the signal that caused the process to exit
	Signal *int

	// Stdout is the tail of the stdout output of the process
	Stdout string

	// Stderr is the tail of the stderr output of the process
	Stderr string
}

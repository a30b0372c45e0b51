package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Process is an owned handle to a spawned OS process. Only the
// owner of the handle may signal or wait on the process.
type Process interface {
	// ID returns the instance id assigned to the process on spawn.
	ID() string

	// Pid returns the OS process id.
	Pid() int

	// Alive reports whether the process is still running, without
	// blocking. An error means the OS could not be queried, which
	// is distinct from the process having exited.
	Alive() (bool, error)

	// Kill forcefully terminates the process. Killing a process
	// that already exited is not an error.
	Kill() error

	// Wait blocks until the process has exited and was reaped.
	Wait() (ExitEvent, error)
}

// SpawnFunc starts a new process described by the given config.
type SpawnFunc func(context.Context, StartConfig, *zap.Logger) (Process, error)

type ProcessWorker struct {
	id  string
	cmd *exec.Cmd

	done    chan struct{}
	waitErr error

	stdout *tailWriter
	stderr *tailWriter

	log *zap.Logger
}

var _ Process = (*ProcessWorker)(nil)

// Spawn starts the process described by config. The context is only
// consulted before the process is started, the process itself is not
// bound to the lifetime of ctx.
func Spawn(ctx context.Context, config StartConfig, log *zap.Logger) (Process, error) {
	w, err := Start(ctx, config, log)
	if err != nil {
		return nil, err
	}

	return w, nil
}

// Start starts the process described by config and returns its handle.
func Start(ctx context.Context, config StartConfig, log *zap.Logger) (*ProcessWorker, error) {
	if config.Cmd == "" {
		return nil, ErrInvalidCommand
	}

	// exit early if the context is already cancelled
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := uuid.NewString()

	log = log.Named("worker").With(zap.String("instance", id))

	log.With(
		zap.String("command", config.Cmd),
		zap.Strings("args", config.Args),
		zap.String("cwd", config.Cwd),
	).Debug("starting process")

	cmd := exec.Command(config.Cmd, config.Args...)

	if config.Cwd != "" {
		cmd.Dir = filepath.Clean(config.Cwd)
	}

	if len(config.Env) > 0 {
		env := os.Environ()
		for k, v := range config.Env {
			env = append(env, fmt.Sprintf("%s=%s", k, v))
		}
		cmd.Env = env
	}

	stdout := newTailWriter(config.OutputLimit)
	stderr := newTailWriter(config.OutputLimit)

	cmd.Stdout = stdout
	cmd.Stderr = stderr

	cmd.WaitDelay = config.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}

	initCmd(cmd)

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	w := &ProcessWorker{
		id:     id,
		cmd:    cmd,
		done:   make(chan struct{}),
		stdout: stdout,
		stderr: stderr,
		log:    log.With(zap.Int("pid", cmd.Process.Pid)),
	}

	go func() {
		// block until the process exits and output is drained
		w.waitErr = cmd.Wait()

		// unblock everyone waiting for the process
		close(w.done)
	}()

	w.log.Info("process started")

	return w, nil
}

func (w *ProcessWorker) ID() string {
	return w.id
}

func (w *ProcessWorker) Pid() int {
	return w.cmd.Process.Pid
}

// Done returns a channel that is closed once the process was reaped.
func (w *ProcessWorker) Done() <-chan struct{} {
	return w.done
}

func (w *ProcessWorker) Alive() (bool, error) {
	select {
	case <-w.done:
		return false, nil
	default:
	}

	err := probeProcess(w.cmd.Process)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, os.ErrProcessDone) {
		return false, nil
	}

	return false, err
}

func (w *ProcessWorker) Kill() error {
	// the leader may have exited while children of it are still
	// running, so the group is signalled either way. Kill reports
	// success if nothing was left to signal.
	w.log.Info("killing process")

	err := w.killProcess()
	if err == nil || errors.Is(err, os.ErrProcessDone) || errors.Is(err, syscall.ESRCH) {
		return nil
	}

	return err
}

func (w *ProcessWorker) Wait() (ExitEvent, error) {
	<-w.done

	err := w.waitErr

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) && !errors.Is(err, exec.ErrWaitDelay) {
		return ExitEvent{}, err
	}

	return getExitEvent(err, w.stdout.String(), w.stderr.String()), nil
}

// MARK: - Helpers

func getExitEvent(err error, stdout, stderr string) ExitEvent {
	var cell int
	var exitStatus *int
	var signo *int

	var exitError *exec.ExitError

	if err == nil || errors.Is(err, exec.ErrWaitDelay) {
		// the process exited successfully, set the exit code to 0
		exitStatus = &cell
	} else if errors.As(err, &exitError) {
		// the process exited with an error
		if status, ok := exitError.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				// the process was terminated by a signal
				cell = int(status.Signal())
				signo = &cell
			} else {
				// the process exited with an exit code
				cell = status.ExitStatus()
				exitStatus = &cell
			}
		}
	}

	if signo == nil && exitStatus == nil {
		// could not determine the exit status or signal,
		// set exit status to 1
		cell = 1
		exitStatus = &cell
	}

	return ExitEvent{
		Code:   exitStatus,
		Signal: signo,
		Stdout: stdout,
		Stderr: stderr,
	}
}

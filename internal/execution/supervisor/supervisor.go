package supervisor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghostpeony/sidecar/internal/execution/worker"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

type Supervisor interface {
	// Start spawns the backend process. It fails with ErrAlreadyRunning
	// if a previously spawned process is still alive.
	Start(ctx context.Context) error

	// Stop kills the backend process and blocks until it was reaped.
	// It fails with ErrNotRunning if no process is held.
	Stop(ctx context.Context) error

	// Status reports whether the backend process is alive. A process
	// that is observed to have exited is released.
	Status(ctx context.Context) (bool, error)
}

// WorkerSupervisor holds at most one backend process. All operations
// are serialized by a single lock, held for the whole operation.
type WorkerSupervisor struct {
	lock *semaphore.Weighted

	process worker.Process

	spawn       worker.SpawnFunc
	startParams StartConfig

	log *zap.Logger
}

var _ Supervisor = (*WorkerSupervisor)(nil)

type Params struct {
	// Config is the config used to spawn the backend process.
	Config Config

	// SpawnFunc is called to spawn a new process. Defaults to
	// worker.Spawn.
	SpawnFunc worker.SpawnFunc

	// Log is the logger to use for the supervisor
	Log *zap.Logger
}

func New(params Params) *WorkerSupervisor {
	if params.SpawnFunc == nil {
		params.SpawnFunc = worker.Spawn
	}

	log := params.Log
	if log == nil {
		log = zap.NewNop()
	}

	return &WorkerSupervisor{
		lock:        semaphore.NewWeighted(1),
		spawn:       params.SpawnFunc,
		startParams: params.Config.StartParams,
		log:         log.Named("supervisor"),
	}
}

func (s *WorkerSupervisor) Start(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	if s.process != nil {
		alive, err := s.process.Alive()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStatusCheckFailed, err)
		}

		if alive {
			return ErrAlreadyRunning
		}

		// the previous process exited without being observed, drop it
		go s.reap(s.process)
		s.process = nil
	}

	config, err := s.resolveStartConfig()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSpawnFailed, err)
	}

	process, err := s.spawn(ctx, config, s.log)
	if err != nil {
		s.log.Error("failed to spawn backend",
			zap.String("command", config.Cmd),
			zap.String("cwd", config.Cwd),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %w", ErrSpawnFailed, err)
	}

	s.process = process

	s.log.Info("backend started",
		zap.String("instance", process.ID()),
		zap.Int("pid", process.Pid()),
	)

	return nil
}

func (s *WorkerSupervisor) Stop(ctx context.Context) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	if s.process == nil {
		return ErrNotRunning
	}

	// release the handle before signalling, so a failed kill
	// never leaves a handle to an unkillable process behind
	process := s.process
	s.process = nil

	log := s.log.With(
		zap.String("instance", process.ID()),
		zap.Int("pid", process.Pid()),
	)

	if err := process.Kill(); err != nil {
		log.Error("failed to kill backend", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrTerminationFailed, err)
	}

	evt, err := process.Wait()
	if err != nil {
		log.Error("failed to wait for backend", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrWaitFailed, err)
	}

	log.Info("backend stopped", exitFields(evt)...)

	return nil
}

func (s *WorkerSupervisor) Status(ctx context.Context) (bool, error) {
	if err := s.acquire(ctx); err != nil {
		return false, err
	}
	defer s.release()

	if s.process == nil {
		return false, nil
	}

	alive, err := s.process.Alive()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStatusCheckFailed, err)
	}

	if alive {
		return true, nil
	}

	go s.reap(s.process)
	s.process = nil

	return false, nil
}

func (s *WorkerSupervisor) acquire(ctx context.Context) error {
	if err := s.lock.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: %w", ErrLockUnavailable, err)
	}

	return nil
}

func (s *WorkerSupervisor) release() {
	s.lock.Release(1)
}

// reap logs the exit event of a process that is known to have exited.
// The handle is no longer referenced by the supervisor at this point.
func (s *WorkerSupervisor) reap(process worker.Process) {
	log := s.log.With(
		zap.String("instance", process.ID()),
		zap.Int("pid", process.Pid()),
	)

	evt, err := process.Wait()
	if err != nil {
		log.Warn("backend exited, failed to collect exit status", zap.Error(err))
		return
	}

	log.Warn("backend exited", exitFields(evt)...)
}

func (s *WorkerSupervisor) resolveStartConfig() (StartConfig, error) {
	config := s.startParams

	if filepath.IsAbs(config.Cwd) {
		return config, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return config, err
	}

	config.Cwd = filepath.Join(cwd, config.Cwd)

	return config, nil
}

func exitFields(evt worker.ExitEvent) []zap.Field {
	fields := make([]zap.Field, 0, 3)

	if evt.Code != nil {
		fields = append(fields, zap.Int("code", *evt.Code))
	}

	if evt.Signal != nil {
		fields = append(fields, zap.Int("signal", *evt.Signal))
	}

	if evt.Stderr != "" {
		fields = append(fields, zap.String("stderr", evt.Stderr))
	}

	return fields
}

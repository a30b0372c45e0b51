package runtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/ghostpeony/sidecar/internal/execution/endpoint"
	"github.com/ghostpeony/sidecar/internal/execution/health"
	"github.com/ghostpeony/sidecar/internal/execution/supervisor"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	MessageStarted = "backend started successfully"
	MessageStopped = "backend stopped successfully"
	MessageHealthy = "backend is healthy"
)

var (
	ErrStartupTimeout      = errors.New("backend did not become healthy")
	ErrExitedDuringStartup = errors.New("backend exited before becoming healthy")
)

const (
	defaultPollInterval   = 500 * time.Millisecond
	defaultStartupTimeout = 30 * time.Second
)

// Runtime is the command surface of the sidecar. Every method is a
// direct pass-through to the supervisor, the health prober or the
// backend endpoint.
type Runtime interface {
	Start(context.Context) (string, error)

	Stop(context.Context) (string, error)

	Status(context.Context) (bool, error)

	CheckHealth(context.Context) (string, error)

	BackendURL() string

	// AwaitHealthy polls the health endpoint until the backend is
	// healthy, the backend exited, or the startup timeout elapsed.
	AwaitHealthy(context.Context) error

	// Shutdown stops the backend if it is running.
	Shutdown(context.Context) error
}

// Prober checks the health of the backend.
type Prober interface {
	Check(context.Context) error
}

type Config struct {
	// Backend is the config used to spawn the backend process
	Backend supervisor.Config `conf:"backend"`

	// Endpoint is the address the backend listens on
	Endpoint endpoint.Config `conf:"endpoint"`

	// Health is the config of the health prober
	Health health.Config `conf:"health"`

	// Autostart starts the backend together with the sidecar
	Autostart bool `conf:"autostart"`

	// StartupTimeout is the maximum duration to wait for a
	// freshly started backend to become healthy
	StartupTimeout time.Duration `conf:"startup_timeout"`

	// PollInterval is the interval between health and
	// status polls while supervising the backend
	PollInterval time.Duration `conf:"poll_interval"`
}

// BackendRuntime implements the command surface on top of a
// supervisor and a health prober.
type BackendRuntime struct {
	supervisor supervisor.Supervisor
	prober     Prober
	endpoint   endpoint.Endpoint
	config     Config

	log *zap.Logger
}

var _ Runtime = (*BackendRuntime)(nil)

type Params struct {
	Config     Config
	Supervisor supervisor.Supervisor
	Prober     Prober
	Endpoint   endpoint.Endpoint
	Log        *zap.Logger
}

// New creates a runtime from explicit collaborators.
func New(params Params) *BackendRuntime {
	config := params.Config

	if config.PollInterval <= 0 {
		config.PollInterval = defaultPollInterval
	}

	if config.StartupTimeout <= 0 {
		config.StartupTimeout = defaultStartupTimeout
	}

	log := params.Log
	if log == nil {
		log = zap.NewNop()
	}

	return &BackendRuntime{
		supervisor: params.Supervisor,
		prober:     params.Prober,
		endpoint:   params.Endpoint,
		config:     config,
		log:        log.Named("runtime"),
	}
}

// RuntimeParams defines the dependencies for the runtime.
type RuntimeParams struct {
	fx.In

	// Config is the config for the backend and its supervisor
	Config Config

	// Log is the logger to use for the runtime
	Log *zap.Logger
}

// NewRuntime creates a runtime, its supervisor and its prober from config.
func NewRuntime(params RuntimeParams) (*BackendRuntime, error) {
	ep, err := endpoint.New(params.Config.Endpoint)
	if err != nil {
		return nil, err
	}

	sv := supervisor.New(supervisor.Params{
		Config: params.Config.Backend,
		Log:    params.Log,
	})

	prober := health.NewProber(health.Params{
		Config:   params.Config.Health,
		Endpoint: ep,
		Log:      params.Log,
	})

	return New(Params{
		Config:     params.Config,
		Supervisor: sv,
		Prober:     prober,
		Endpoint:   ep,
		Log:        params.Log,
	}), nil
}

// NewLifecycleRuntime creates a runtime that stops the backend when
// the application stops.
func NewLifecycleRuntime(params RuntimeParams, lc fx.Lifecycle) (Runtime, error) {
	r, err := NewRuntime(params)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return r.Shutdown(ctx)
		},
	})

	return r, nil
}

func (r *BackendRuntime) Start(ctx context.Context) (string, error) {
	if err := r.supervisor.Start(ctx); err != nil {
		r.log.Debug("start failed", zap.Error(err))
		return "", err
	}

	return MessageStarted, nil
}

func (r *BackendRuntime) Stop(ctx context.Context) (string, error) {
	if err := r.supervisor.Stop(ctx); err != nil {
		if errors.Is(err, supervisor.ErrTerminationFailed) || errors.Is(err, supervisor.ErrWaitFailed) {
			// the backend may have been leaked
			sentry.CaptureException(err)
		}

		r.log.Debug("stop failed", zap.Error(err))
		return "", err
	}

	return MessageStopped, nil
}

func (r *BackendRuntime) Status(ctx context.Context) (bool, error) {
	return r.supervisor.Status(ctx)
}

func (r *BackendRuntime) CheckHealth(ctx context.Context) (string, error) {
	if err := r.prober.Check(ctx); err != nil {
		return "", err
	}

	return MessageHealthy, nil
}

func (r *BackendRuntime) BackendURL() string {
	return r.endpoint.BaseURL()
}

func (r *BackendRuntime) AwaitHealthy(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.config.StartupTimeout)
	defer cancel()

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		err := r.prober.Check(ctx)
		if err == nil {
			return nil
		}

		// fail fast if the backend died while we were waiting
		if running, statusErr := r.supervisor.Status(ctx); statusErr == nil && !running {
			return fmt.Errorf("%w: %w", ErrExitedDuringStartup, err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrStartupTimeout, err)
		case <-ticker.C:
		}
	}
}

func (r *BackendRuntime) Shutdown(ctx context.Context) error {
	if _, err := r.Stop(ctx); err != nil && !errors.Is(err, supervisor.ErrNotRunning) {
		r.log.Error("failed to stop backend", zap.Error(err))
		return err
	}

	return nil
}

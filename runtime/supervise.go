package runtime

import (
	"context"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type superviseParams struct {
	fx.In

	Context    context.Context
	Config     Config
	Runtime    Runtime
	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Log        *zap.Logger
}

// Supervise starts the backend when the application starts and waits
// for it to become healthy. If exitOnFailure is set, a failed start
// aborts the application, and it is shut down with exit code 1 once
// the backend fails to become healthy or exits on its own. Otherwise
// failures are only logged.
func Supervise(exitOnFailure bool) fx.Option {
	return fx.Invoke(func(params superviseParams) {
		s := &watcher{
			runtime:       params.Runtime,
			shutdowner:    params.Shutdowner,
			interval:      params.Config.PollInterval,
			exitOnFailure: exitOnFailure,
			stop:          make(chan struct{}),
			log:           params.Log.Named("watcher"),
		}

		if s.interval <= 0 {
			s.interval = defaultPollInterval
		}

		params.Lifecycle.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if _, err := s.runtime.Start(ctx); err != nil {
					if s.exitOnFailure {
						return err
					}

					// keep the app running, the backend can be
					// started again through the start command
					s.log.Error("failed to start backend", zap.Error(err))
					return nil
				}

				s.wg.Add(1)
				go s.run(params.Context)

				return nil
			},
			OnStop: func(context.Context) error {
				close(s.stop)
				s.wg.Wait()
				return nil
			},
		})
	})
}

type watcher struct {
	runtime       Runtime
	shutdowner    fx.Shutdowner
	interval      time.Duration
	exitOnFailure bool

	stop chan struct{}
	wg   sync.WaitGroup

	log *zap.Logger
}

func (w *watcher) run(appCtx context.Context) {
	defer w.wg.Done()

	ctx, cancel := context.WithCancel(appCtx)
	defer cancel()

	go func() {
		select {
		case <-w.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := w.runtime.AwaitHealthy(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}

		w.log.Error("backend failed to become healthy", zap.Error(err))
		w.fail()
		return
	}

	w.log.Info("backend is healthy", zap.String("url", w.runtime.BackendURL()))

	// the backend may be stopped on request later on
	if !w.exitOnFailure {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		running, err := w.runtime.Status(ctx)
		if err != nil {
			if ctx.Err() == nil {
				w.log.Warn("failed to query backend status", zap.Error(err))
			}
			continue
		}

		if !running {
			w.log.Error("backend exited unexpectedly")
			w.fail()
			return
		}
	}
}

func (w *watcher) fail() {
	if !w.exitOnFailure {
		return
	}

	if err := w.shutdowner.Shutdown(fx.ExitCode(1)); err != nil {
		w.log.Error("failed to shut down", zap.Error(err))
	}
}

package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ghostpeony/sidecar/internal/execution/endpoint"
	"go.uber.org/zap"
)

var (
	ErrUnreachable     = errors.New("failed to connect to backend")
	ErrUnhealthyStatus = errors.New("backend returned status")
)

// DefaultTimeout is the ceiling for a single probe.
const DefaultTimeout = 5 * time.Second

// maxDrain bounds how much of a response body is read before the
// connection is returned to the pool.
const maxDrain = 4 * 1024

type Config struct {
	// Timeout is the maximum duration of a single probe
	Timeout time.Duration `conf:"timeout"`
}

type Params struct {
	Config Config

	// Endpoint is the address of the backend
	Endpoint endpoint.Endpoint

	// Client is the http client used for probes. Defaults
	// to a client with the configured timeout.
	Client *http.Client

	Log *zap.Logger
}

// Prober checks whether the backend serves its liveness endpoint. It
// holds no mutable state and is safe for concurrent use.
type Prober struct {
	client  *http.Client
	url     string
	timeout time.Duration
	log     *zap.Logger
}

func NewProber(params Params) *Prober {
	timeout := params.Config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := params.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	log := params.Log
	if log == nil {
		log = zap.NewNop()
	}

	return &Prober{
		client:  client,
		url:     params.Endpoint.HealthURL(),
		timeout: timeout,
		log:     log.Named("health"),
	}
}

// Check issues a single GET request against the health endpoint. Any
// 2xx status is healthy. Failures are reported, never retried.
func (p *Prober) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}

	res, err := p.client.Do(req)
	if err != nil {
		p.log.Debug("health probe failed", zap.String("url", p.url), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer res.Body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, maxDrain))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		p.log.Debug("backend unhealthy", zap.String("url", p.url), zap.Int("status", res.StatusCode))
		return fmt.Errorf("%w: %s", ErrUnhealthyStatus, res.Status)
	}

	return nil
}

// URL returns the probed url.
func (p *Prober) URL() string {
	return p.url
}

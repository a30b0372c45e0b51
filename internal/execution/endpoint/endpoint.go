package endpoint

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultHost       = "127.0.0.1"
	DefaultPort       = 8765
	DefaultHealthPath = "/health"
)

var (
	ErrInvalidHost = errors.New("invalid backend host")
	ErrInvalidPort = errors.New("invalid backend port")
	ErrInvalidPath = errors.New("invalid health path")
)

type Config struct {
	// Host is the host the backend listens on
	Host string `conf:"host"`

	// Port is the port the backend listens on
	Port int `conf:"port"`

	// HealthPath is the path of the backend's liveness endpoint
	HealthPath string `conf:"health_path"`
}

// Endpoint is the fixed network address of the backend. It is
// immutable once created and safe for concurrent use.
type Endpoint struct {
	base   url.URL
	health url.URL
}

func New(config Config) (Endpoint, error) {
	if strings.TrimSpace(config.Host) == "" {
		return Endpoint{}, ErrInvalidHost
	}

	if config.Port <= 0 || config.Port > 65535 {
		return Endpoint{}, fmt.Errorf("%w: %d", ErrInvalidPort, config.Port)
	}

	if !strings.HasPrefix(config.HealthPath, "/") {
		return Endpoint{}, fmt.Errorf("%w: %q", ErrInvalidPath, config.HealthPath)
	}

	base := url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(config.Host, strconv.Itoa(config.Port)),
	}

	health := base
	health.Path = config.HealthPath

	return Endpoint{base: base, health: health}, nil
}

// BaseURL returns the base url of the backend, e.g. http://127.0.0.1:8765.
func (e Endpoint) BaseURL() string {
	return e.base.String()
}

// HealthURL returns the url of the backend's liveness endpoint.
func (e Endpoint) HealthURL() string {
	return e.health.String()
}

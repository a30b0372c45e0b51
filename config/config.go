package config

import (
	_ "embed"
	"time"

	"github.com/ghostpeony/sidecar/internal/execution/endpoint"
	"github.com/ghostpeony/sidecar/internal/execution/health"
	"github.com/ghostpeony/sidecar/internal/execution/worker"
	"github.com/ghostpeony/sidecar/runtime"
	"github.com/ghostpeony/sidecar/util/conf"
)

// EnvPrefix is the prefix of env vars holding config values,
// e.g. SIDECAR_BACKEND__CMD for backend.cmd.
const EnvPrefix = "SIDECAR_"

// Schema is the json schema config files are validated against.
//
//go:embed schema.json
var Schema []byte

type AuthConfig struct {
	// Key is the shared secret expected in the api-key header.
	// Authorization is disabled if empty.
	Key string `conf:"key"`
}

type Config struct {
	// LogLevel is the log level for the application
	LogLevel string `conf:"log_level"`

	// LogFormat is the log format for the application
	LogFormat string `conf:"log_format"`

	// Auth is the authorization config of the control server
	Auth AuthConfig `conf:"auth"`

	// Runtime is the runtime configuration
	Runtime runtime.Config `conf:",squash"`
}

var DefaultConfig = conf.Merge(
	conf.DefaultConfig{
		"log_level":       "info",
		"log_format":      "production",
		"auth.key":        "",
		"autostart":       false,
		"startup_timeout": 30 * time.Second,
		"poll_interval":   500 * time.Millisecond,
	},
	conf.MergeDefaults("backend", conf.DefaultConfig{
		"cmd":          "python",
		"args":         []string{"main.py"},
		"cwd":          "backend",
		"output_limit": worker.DefaultOutputLimit,
		"wait_delay":   worker.DefaultWaitDelay,
	}),
	conf.MergeDefaults("endpoint", conf.DefaultConfig{
		"host":        endpoint.DefaultHost,
		"port":        endpoint.DefaultPort,
		"health_path": endpoint.DefaultHealthPath,
	}),
	conf.MergeDefaults("health", conf.DefaultConfig{
		"timeout": health.DefaultTimeout,
	}),
)

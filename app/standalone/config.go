package standalone

import (
	"github.com/ghostpeony/sidecar/internal/server"
	"github.com/ghostpeony/sidecar/util/conf"
)

type Config struct {
	// HttpConfig represents the configuration for the HTTP server.
	HttpConfig server.HttpConfig `conf:",squash"`

	// Autostart starts the backend together with the server. It is
	// taken from the runtime config.
	Autostart bool `conf:"-"`
}

// EnvPrefix is the prefix of env vars holding server config values,
// e.g. SIDECAR_HTTP_PORT for port.
const EnvPrefix = "SIDECAR_HTTP_"

var DefaultConfig = conf.DefaultConfig{
	"host": "127.0.0.1",
	"port": 8766,
	"h2c":  false,
}

package standalone

import (
	"go.uber.org/fx"

	"github.com/ghostpeony/sidecar/handler"
	"github.com/ghostpeony/sidecar/internal/server"
	"github.com/ghostpeony/sidecar/runtime"
	"github.com/ghostpeony/sidecar/util/logging"
)

func Module(config Config) fx.Option {
	options := []fx.Option{
		// rename logger for module
		logging.DecorateLogger("serve"),
		// provide handlers
		handler.Module(),
		// provide server
		server.Module(config.HttpConfig),
	}

	if config.Autostart {
		// the server keeps running if the backend fails,
		// so it can be restarted through the start command
		options = append(options, runtime.Supervise(false))
	}

	return fx.Module("serve", options...)
}

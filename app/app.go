package app

import (
	"github.com/ghostpeony/sidecar/config"
	"github.com/ghostpeony/sidecar/internal/shell"
	"github.com/ghostpeony/sidecar/runtime"
	"github.com/ghostpeony/sidecar/util/conf"
	"github.com/ghostpeony/sidecar/util/logging"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
)

// New creates a shell running the backend runtime, using the logger
// and config stored in the cli context.
func New(ctx *cli.Context) (*shell.Shell, error) {
	log, err := logging.LoggerFromContext(ctx.Context)
	if err != nil {
		return nil, err
	}

	config, err := conf.GetConfigFromContext[config.Config](ctx.Context)
	if err != nil {
		return nil, err
	}

	sharedModule := fx.Module(
		"shared",
		// provide global config
		fx.Supply(config),
		// provide runtime
		runtime.Module(config.Runtime),
	)

	return shell.New(log, sharedModule), nil
}

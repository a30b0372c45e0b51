package cmd

import (
	"github.com/ghostpeony/sidecar/app"
	"github.com/ghostpeony/sidecar/app/standalone"
	"github.com/ghostpeony/sidecar/config"
	"github.com/ghostpeony/sidecar/util/conf"
	"github.com/ghostpeony/sidecar/util/logging"
	"github.com/urfave/cli/v2"
)

var (
	serveCmdDescription = `The serve command starts a http control server exposing the
start, stop, status, check_health and get_backend_url commands,
e.g. POST /start or GET /status.

If autostart is set, the backend is started together with the
server. The command blocks until it is signalled, then stops the
backend if it is still running.`
	serveCmd = &cli.Command{
		Name:        "serve",
		Usage:       "Start a http control server for the backend.",
		Description: serveCmdDescription,
		Action:      serveAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "host",
				Aliases:  []string{"H"},
				Usage:    "The host to listen on.",
				Value:    "127.0.0.1",
				Category: "http",
				EnvVars:  []string{"HTTP_HOST"},
			},
			&cli.IntFlag{
				Name:     "port",
				Aliases:  []string{"P"},
				Usage:    "The port to listen on.",
				Value:    8766,
				Category: "http",
				EnvVars:  []string{"HTTP_PORT"},
			},
			&cli.BoolFlag{
				Name:     "h2c",
				Usage:    "Enable HTTP/2 cleartext upgrade.",
				Value:    false,
				Category: "http",
				EnvVars:  []string{"HTTP_H2C"},
			},
		},
	}
)

func serveAction(ctx *cli.Context) error {
	log, err := logging.LoggerFromContext(ctx.Context)
	if err != nil {
		return err
	}

	rootCfg, err := conf.GetConfigFromContext[config.Config](ctx.Context)
	if err != nil {
		return err
	}

	app, err := app.New(ctx)
	if err != nil {
		return err
	}

	cfg, err := conf.Parse[standalone.Config](conf.ParseOptions{
		Defaults:  standalone.DefaultConfig,
		EnvPrefix: standalone.EnvPrefix,
		Log:       log,
		Cli:       ctx,
	})
	if err != nil {
		return err
	}

	cfg.Autostart = rootCfg.Runtime.Autostart

	return app.Run(ctx.Context, standalone.Module(cfg))
}

func init() {
	rootApp.Commands = append(rootApp.Commands, serveCmd)
}

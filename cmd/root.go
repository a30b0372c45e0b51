package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ghostpeony/sidecar/config"
	"github.com/ghostpeony/sidecar/internal/shell"
	"github.com/ghostpeony/sidecar/util/conf"
	"github.com/ghostpeony/sidecar/util/logging"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var (
	appName  = "sidecar"
	appUsage = `A supervisor for a single long-running backend process that
serves a desktop application's UI over http.`
	rootApp = &cli.App{
		Name:            appName,
		Usage:           appUsage,
		HideHelpCommand: true,
		Flags: []cli.Flag{
			// general flags
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "set the log level. Options: debug, info, warn, error, panic, fatal.",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "set the log format. Options: production, development.",
				EnvVars: []string{"LOG_FORMAT"},
			},
			&cli.PathFlag{
				Name:    "config",
				Usage:   "load config from a json or .env file.",
				EnvVars: []string{"SIDECAR_CONFIG"},
			},
			// backend flags
			&cli.StringFlag{
				Name:     "command",
				Usage:    "the command to invoke in order to start the backend process.",
				Aliases:  []string{"c"},
				Category: "backend",
			},
			&cli.StringSliceFlag{
				Name:     "arg",
				Usage:    "additional arguments to pass to the backend process.",
				Aliases:  []string{"a"},
				Category: "backend",
			},
			&cli.StringFlag{
				Name:     "cwd",
				Usage:    "the working directory of the backend process, relative to the current directory.",
				Category: "backend",
			},
			&cli.BoolFlag{
				Name:     "autostart",
				Usage:    "start the backend together with the sidecar.",
				Category: "backend",
			},
		},
		Before: func(ctx *cli.Context) error {
			// create a bootstrap logger from the flags
			log, err := createLogger(ctx.String("log-format"), ctx.String("log-level"))
			if err != nil {
				return err
			}

			// parse config using defaults, file, env and flags
			cfg, err := conf.Parse[config.Config](conf.ParseOptions{
				Cli: ctx,
				CliMap: map[string]string{
					"command": "backend.cmd",
					"arg":     "backend.args",
					"cwd":     "backend.cwd",
				},
				Defaults:  config.DefaultConfig,
				EnvPrefix: config.EnvPrefix,
				FileName:  ctx.Path("config"),
				Schema:    config.Schema,
				Log:       log,
			})
			if err != nil {
				return err
			}

			// recreate the logger, the level may be set in a file or env var
			log, err = createLogger(cfg.LogFormat, cfg.LogLevel)
			if err != nil {
				return err
			}

			// inject logger into cli context
			ctx.Context = logging.ContextWithLogger(ctx.Context, log)

			// inject the config into the cli context
			ctx.Context = conf.ContextWithConfig(ctx.Context, cfg)

			return nil
		},
		After: func(ctx *cli.Context) error {
			// no logger if Before failed
			log, err := logging.LoggerFromContext(ctx.Context)
			if err != nil {
				return nil
			}

			_ = log.Sync()

			return nil
		},
	}
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:               "version",
		Usage:              "print the version",
		DisableDefaultText: true,
	}
}

type ExecuteParams struct {
	Version  string
	Compiled time.Time
}

func Execute(params ExecuteParams) int {
	rootApp.Version = params.Version
	rootApp.Compiled = params.Compiled

	return run(context.Background(), os.Args)
}

func run(ctx context.Context, args []string) int {
	err := rootApp.RunContext(ctx, args)

	// if app exited without error, return
	if err == nil {
		return 0
	}

	// if app exited with ExitError, exit with given exit code
	if exitErr, ok := shell.AsExitError(err); ok {
		return exitErr.ExitCode
	}

	// otherwise, exit with exit code 1
	fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())

	return 1
}

func createLogger(format, level string) (*zap.Logger, error) {
	var config zap.Config
	if format == "development" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}

	config.InitialFields = map[string]any{
		"app": appName,
	}

	config.Level = parseLogLevel(level)

	return config.Build()
}

func parseLogLevel(lvl string) zap.AtomicLevel {
	if atom, err := zap.ParseAtomicLevel(lvl); err == nil {
		return atom
	}

	return zap.NewAtomicLevelAt(zap.InfoLevel)
}

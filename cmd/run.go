package cmd

import (
	"github.com/ghostpeony/sidecar/app"
	"github.com/ghostpeony/sidecar/runtime"
	"github.com/urfave/cli/v2"
)

var (
	runCmdDescription = `The run command starts the backend, waits until its health
endpoint reports healthy and then blocks until it is signalled,
stopping the backend on the way out.

If the backend does not become healthy within the startup timeout
or exits on its own, the command exits with a non-zero exit code.`
	runCmd = &cli.Command{
		Name:        "run",
		Usage:       "Start the backend and supervise it.",
		Description: runCmdDescription,
		Action:      runAction,
	}
)

func runAction(ctx *cli.Context) error {
	app, err := app.New(ctx)
	if err != nil {
		return err
	}

	return app.Run(ctx.Context, runtime.Supervise(true))
}

func init() {
	rootApp.Commands = append(rootApp.Commands, runCmd)
}

package cmd

import (
	"fmt"

	"github.com/ghostpeony/sidecar/config"
	"github.com/ghostpeony/sidecar/internal/shell"
	"github.com/ghostpeony/sidecar/runtime"
	"github.com/ghostpeony/sidecar/util/conf"
	"github.com/ghostpeony/sidecar/util/logging"
	"github.com/urfave/cli/v2"
)

var (
	checkCmdDescription = `The check command probes the health endpoint of a running
backend once and exits with a non-zero exit code if it is not
reachable or does not report healthy.`
	checkCmd = &cli.Command{
		Name:        "check",
		Usage:       "Check the health of the backend.",
		Description: checkCmdDescription,
		Action:      checkAction,
	}
	urlCmd = &cli.Command{
		Name:   "url",
		Usage:  "Print the base url of the backend.",
		Action: urlAction,
	}
)

func newRuntime(ctx *cli.Context) (*runtime.BackendRuntime, error) {
	log, err := logging.LoggerFromContext(ctx.Context)
	if err != nil {
		return nil, err
	}

	cfg, err := conf.GetConfigFromContext[config.Config](ctx.Context)
	if err != nil {
		return nil, err
	}

	return runtime.NewRuntime(runtime.RuntimeParams{
		Config: cfg.Runtime,
		Log:    log,
	})
}

func checkAction(ctx *cli.Context) error {
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}

	msg, err := rt.CheckHealth(ctx.Context)
	if err != nil {
		fmt.Fprintln(ctx.App.ErrWriter, err.Error())
		return shell.NewExitError(1)
	}

	fmt.Fprintln(ctx.App.Writer, msg)

	return nil
}

func urlAction(ctx *cli.Context) error {
	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.App.Writer, rt.BackendURL())

	return nil
}

func init() {
	rootApp.Commands = append(rootApp.Commands, checkCmd, urlCmd)
}

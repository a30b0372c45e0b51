package supervisor

import (
	"github.com/ghostpeony/sidecar/internal/execution/worker"
)

// StartConfig describes the configuration for starting the backend.
type StartConfig = worker.StartConfig

type Config struct {
	// StartParams are the parameters used to spawn the backend process.
	// A relative working directory is resolved against the current
	// working directory of the application at the time of the spawn.
	StartParams StartConfig `conf:",squash"`
}

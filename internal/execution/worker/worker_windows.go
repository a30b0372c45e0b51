//go:build windows

package worker

import (
	"os"
	"os/exec"
)

func (w *ProcessWorker) killProcess() error {
	return w.cmd.Process.Kill()
}

// probeProcess is a no-op on Windows, liveness is derived from the
// wait goroutine alone.
func probeProcess(_ *os.Process) error {
	return nil
}

func initCmd(cmd *exec.Cmd) {
	// No-op on Windows.
}

//go:build unix

package worker

import (
	"os"
	"os/exec"
	"syscall"
)

func (w *ProcessWorker) killProcess() error {
	// the process is its own group leader (Setpgid), so its pid is
	// the pgid, even after the leader itself was reaped
	return syscall.Kill(-w.cmd.Process.Pid, syscall.SIGKILL)
}

// probeProcess sends signal 0, which performs the permission and
// existence checks without delivering a signal.
func probeProcess(p *os.Process) error {
	return p.Signal(syscall.Signal(0))
}

func initCmd(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

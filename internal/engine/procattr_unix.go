//go:build !windows

package engine

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// sysProcAttr puts the engine in its own process group so terminal signals
// aimed at turnsync do not interrupt a turn being hosted.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// killTree kills the engine's whole process group, so a wrapper script
// cannot leave the real engine running after a timeout.
func killTree(cmd *exec.Cmd) func() error {
	return func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
}

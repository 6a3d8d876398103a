//go:build unix

package runner

import (
	"os/exec"
	"syscall"
)

// configure puts the child in its own process group so a timeout kills
// everything it spawned, not just the direct child. Grandchildren holding the
// pipes open would otherwise keep the drain goroutines blocked.
func configure(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}

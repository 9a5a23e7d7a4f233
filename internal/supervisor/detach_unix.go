//go:build unix

package supervisor

import (
	"os/exec"
	"syscall"
)

// detach places the child in its own session so it outlives the
// orchestrator process and never receives its terminal signals.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}

package supervisor

import (
	"fmt"

	gnet "github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// PidAlive reports whether pid refers to a live process.
func PidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	ok, err := process.PidExists(int32(pid))
	return err == nil && ok
}

// terminatePid sends a graceful termination signal to pid.
func terminatePid(pid int) error {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return fmt.Errorf("pid %d: %w", pid, err)
	}
	if err := p.Terminate(); err != nil {
		return fmt.Errorf("terminate pid %d: %w", pid, err)
	}
	return nil
}

// pidListeningOn reverse-maps a TCP port to the pid of its listener. This is
// the recovery path when handle bookkeeping was lost: the descriptor's fixed
// port is the one piece of state that survives an interrupted run.
func pidListeningOn(port int) (int, bool) {
	conns, err := gnet.Connections("tcp")
	if err != nil {
		return 0, false
	}
	for _, c := range conns {
		if c.Status == "LISTEN" && c.Laddr.Port == uint32(port) && c.Pid > 0 {
			return int(c.Pid), true
		}
	}
	return 0, false
}

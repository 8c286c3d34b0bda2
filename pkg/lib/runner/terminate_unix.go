//go:build unix

package runner

import (
	"errors"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

func shellCommand(line string) *exec.Cmd {
	return exec.Command("sh", "-c", line)
}

func setProcAttr(cmd *exec.Cmd) {
	// New process group to manage children as a unit
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// terminateTree asks the whole process group to exit.
func terminateTree(pid int) error {
	return signalGroup(pid, unix.SIGTERM)
}

func killTree(pid int) error {
	return signalGroup(pid, unix.SIGKILL)
}

func signalGroup(pid int, sig unix.Signal) error {
	// Negative PID addresses the process group; Setpgid made it equal to pid.
	err := unix.Kill(-pid, sig)
	if errors.Is(err, unix.ESRCH) {
		err = unix.Kill(pid, sig)
		if errors.Is(err, unix.ESRCH) {
			return nil
		}
	}
	return err
}

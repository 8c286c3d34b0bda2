//go:build windows

package runner

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
)

func shellCommand(line string) *exec.Cmd {
	return exec.Command("cmd", "/C", line)
}

func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}

// terminateTree force-kills the shell and every child it spawned. Killing only
// the shell would leave the dev server running.
func terminateTree(pid int) error {
	out, err := exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(pid)).CombinedOutput()
	if err != nil {
		return fmt.Errorf("taskkill: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func killTree(pid int) error {
	return terminateTree(pid)
}

//go:build unix

package idle

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

func terminate(pid int) error {
	return unix.Kill(pid, unix.SIGTERM)
}

// Spawn starts exe detached in its own session with stdio on /dev/null and
// returns its PID without waiting.
func Spawn(exe string, args []string, env []string) (int, error) {
	cmd := exec.Command(exe, args...)
	cmd.Env = env
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	return pid, cmd.Process.Release()
}

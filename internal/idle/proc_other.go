//go:build !unix

package idle

import (
	"os"
	"os/exec"
)

func terminate(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}

// Spawn starts exe in the background and returns its PID without waiting.
func Spawn(exe string, args []string, env []string) (int, error) {
	cmd := exec.Command(exe, args...)
	cmd.Env = env
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	return pid, cmd.Process.Release()
}

//go:build windows

package process

import "os/exec"

func setProcessGroup(*exec.Cmd) {}

// interruptGroup kills the child; console helpers have no SIGTERM.
func interruptGroup(c *exec.Cmd) error {
	if c.Process == nil {
		return nil
	}
	return c.Process.Kill()
}

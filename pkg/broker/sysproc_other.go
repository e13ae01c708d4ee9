//go:build !windows

package broker

import "os/exec"

// hideConsoleWindow is a no-op outside Windows; there is no console window to
// suppress.
func hideConsoleWindow(cmd *exec.Cmd) {}

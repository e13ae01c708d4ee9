//go:build windows

package broker

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// hideConsoleWindow suppresses the console window the interpreter would
// otherwise flash open. Presentation only; captured bytes are unaffected.
func hideConsoleWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: windows.CREATE_NO_WINDOW,
	}
}

// Package shell models the version-dependent capabilities of the PowerShell
// interpreter and decides, per invocation, how output streams are captured.
package shell

import (
	"fmt"

	"psrun/pkg/textenc"
)

// Capabilities describes one interpreter version. Resolved once per invocation
// and treated as read-only input from then on; never branch on raw version
// strings at call sites.
type Capabilities struct {
	// MajorVersion is the interpreter's major version as reported by
	// $PSVersionTable (5 for Windows PowerShell, 7 for PowerShell 7+).
	MajorVersion int `yaml:"major_version"`
	// SupportsDirectRedirectWithElevation is true when an elevated child's
	// streams can still be wired to pipes owned by this process. Windows UAC
	// elevation cannot combine with direct redirection; sudo-style elevation
	// on other hosts can.
	SupportsDirectRedirectWithElevation bool `yaml:"supports_direct_redirect_with_elevation"`
	// HasRedirectStandardFlags is true when Start-Process understands
	// -RedirectStandardOutput / -RedirectStandardError.
	HasRedirectStandardFlags bool `yaml:"has_redirect_standard_flags"`
	// DefaultEncoding is the interpreter's native encoding for redirected
	// output.
	DefaultEncoding textenc.Encoding `yaml:"default_encoding"`
}

// Strategy is the capture wiring chosen for one invocation.
type Strategy int

const (
	// DirectPipe wires the child's stdout/stderr to readable handles owned
	// by this process.
	DirectPipe Strategy = iota
	// FileRelay redirects the child's streams to temporary files from inside
	// that child's own command text, read back after completion.
	FileRelay
)

func (s Strategy) String() string {
	switch s {
	case DirectPipe:
		return "direct-pipe"
	case FileRelay:
		return "file-relay"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Plan decides the capture strategy for one invocation. It is a pure function
// of the elevation requirement and the resolved capabilities, computed once
// before any process is spawned; the launch step commits to its result. There
// is no fallback across strategies within one invocation.
func Plan(elevate bool, caps Capabilities) Strategy {
	if !elevate {
		return DirectPipe
	}
	if caps.SupportsDirectRedirectWithElevation {
		return DirectPipe
	}
	return FileRelay
}

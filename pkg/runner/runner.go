// Package runner defines the interface for one-shot command execution.
// This package exists to break import cycles between testing and shell packages.
package runner

import (
	"context"
	"os/exec"
)

// CommandRunner defines an interface for running a binary and collecting its
// combined output. This allows for mocking in tests.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// LiveCommandRunner is an implementation of CommandRunner that runs commands on
// the live system.
type LiveCommandRunner struct{}

// Run executes the given command and returns its combined output.
func (r *LiveCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

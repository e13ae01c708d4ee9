// Package invoke is the orchestrating facade of the invocation layer: it
// accepts a command or script plus an elevation flag, plans the stream
// capture, delegates the launch, and resolves the final status.
package invoke

import (
	"strings"
	"time"
)

// CommandSpec is one unit of work. Immutable once constructed; the layer never
// infers elevation need from the body, the caller decides.
type CommandSpec struct {
	// Body is the inline command text, or a script file path when
	// IsScriptFile is set. The layer treats it as opaque.
	Body string
	// IsScriptFile marks Body as a path to a .ps1 file. Script files are
	// invoked with the call operator, never dot-sourced: only the call
	// operator composes with inline redirection syntax.
	IsScriptFile bool
	// Elevate requests privilege elevation through an OS consent prompt.
	Elevate bool
	// PropagateExitCode makes the invocation report the body's own native
	// exit code. When false the body runs in a nested interpreter and the
	// outer interpreter's exit code is reported instead.
	PropagateExitCode bool
	// ForceStopOnError runs the body with terminating-error semantics for
	// this one invocation, instead of relying on any ambient interpreter
	// state.
	ForceStopOnError bool
	// Timeout bounds the whole invocation including any consent prompt.
	// Zero falls back to the invoker's default.
	Timeout time.Duration
}

// SafeQuote escapes single quotes so a value can sit inside an interpreter
// single-quote literal.
func SafeQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

package invoke

import "fmt"

// Status is the unified outcome of one invocation. Every interpreter-side
// failure maps to a Status value; nothing escapes the Run boundary as a panic
// or error.
type Status int

const (
	// StatusSuccess: the body completed. Either the native exit code was
	// zero, or no native exit code was recorded and stderr stayed empty.
	StatusSuccess Status = iota
	// StatusNonZeroExit: the body ran and reported a nonzero native exit
	// code.
	StatusNonZeroExit
	// StatusTerminatingError: no native exit code, but the body wrote error
	// text. The interpreter's exit-code semantics are unreliable for
	// pure-script failures; non-empty stderr is the fallback signal.
	StatusTerminatingError
	// StatusLaunchFailure: the OS could not create the process, or the
	// elevation request was rejected before the body executed.
	StatusLaunchFailure
	// StatusTimeout: the caller-specified deadline elapsed; forced
	// termination was attempted.
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNonZeroExit:
		return "non-zero-exit"
	case StatusTerminatingError:
		return "terminating-error"
	case StatusLaunchFailure:
		return "launch-failure"
	case StatusTimeout:
		return "timeout"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is produced exactly once per invocation and owned by the caller
// after return. Stdout and Stderr are canonical UTF-8 without a byte order
// mark, regardless of what the interpreter produced.
type Result struct {
	// ExitCode is the native exit code, absent when the body never ran a
	// native executable nor set one explicitly.
	ExitCode *int
	Stdout   string
	Stderr   string
	Status   Status
	// Warnings carries data-quality signals such as undetectable stream
	// encodings. Never affects Status.
	Warnings []string
}

// Resolve disambiguates the raw wait outcome into one Status. Rules apply in
// order: launch failure, timeout, nonzero exit, zero exit, then the
// stderr-non-emptiness heuristic for invocations without a native exit code.
func Resolve(launchFailed, timedOut bool, exitCode *int, stderr string) Status {
	switch {
	case launchFailed:
		return StatusLaunchFailure
	case timedOut:
		return StatusTimeout
	case exitCode != nil && *exitCode != 0:
		return StatusNonZeroExit
	case exitCode != nil:
		return StatusSuccess
	case stderr != "":
		return StatusTerminatingError
	default:
		return StatusSuccess
	}
}

package invoke

import (
	"fmt"
	"strings"
)

// emptyBody is what the interpreter gets for an empty inline body: -Command
// refuses a missing argument, a newline string does not.
const emptyBody = "\"`n\""

// stopPreamble forces terminating-error semantics for one invocation. Passed
// as part of the command text, never as ambient interpreter state.
const stopPreamble = "$ErrorActionPreference = 'Stop'; "

// streamMerge folds the warning, verbose, debug and information streams into
// the success stream so a single redirection captures them all.
const streamMerge = "6>&1 5>&1 4>&1 3>&1"

// inlineBody renders the runnable form of a spec's body. Script files are
// invoked with the call operator: dot-sourcing has different failure and
// isolation semantics and does not compose with inline redirection.
func inlineBody(spec CommandSpec) string {
	body := spec.Body
	if spec.IsScriptFile {
		body = "& '" + SafeQuote(spec.Body) + "'"
	} else if body == "" {
		return emptyBody
	}
	if spec.ForceStopOnError {
		return stopPreamble + body
	}
	return body
}

// directText builds the -Command argument for a non-elevated invocation. When
// the native exit code should not propagate, the body runs in a nested
// interpreter and the outer interpreter's own exit code is what the caller
// sees.
func directText(interpreter string, spec CommandSpec) string {
	body := inlineBody(spec)
	if spec.PropagateExitCode {
		return body
	}
	if body == emptyBody {
		return interpreter + " -NoProfile -Command " + emptyBody
	}
	return interpreter + " -NoProfile -Command '" + SafeQuote(body) + "'"
}

// exitTrailer propagates the body's native exit code out of the elevated
// interpreter. Backtick escapes keep the variables unevaluated until the
// elevated process runs them.
const exitTrailer = "`$code = `$LASTEXITCODE; if (`$code) { exit `$code } else { exit 0 }"

// elevatedText builds the wrapper command for a file-relay elevated
// invocation. The wrapper itself runs unelevated; its text issues the OS
// elevation request with the interpreter as the target. Once control crosses
// the elevation boundary there is no second chance to attach redirection, so
// the redirection operators travel inside the elevated process's own command
// text as one atomic instruction. The wrapper's exit code is the elevated
// process's exit code.
//
// forceStop injects terminating-error semantics into the elevated child for
// user-supplied script files, which cross the boundary by path and cannot
// carry a preamble in their content.
func elevatedText(interpreter, scriptPath, stdoutPath, stderrPath string, propagate, forceStop bool) string {
	call := "& $script"
	if forceStop {
		call = "`$ErrorActionPreference = 'Stop'; " + call
	}
	var inner string
	if propagate {
		inner = "try { " + call + " " + streamMerge + " >$out 2>$err; " + exitTrailer + " } catch { (`$_ | Out-String) >>$err; exit 1 }"
	} else {
		inner = "try { " + call + " " + streamMerge + " >$out 2>$err } catch { (`$_ | Out-String) >>$err; exit 1 }"
	}

	parts := []string{
		"$ErrorView = 'ConciseView'; $ErrorActionPreference = 'Stop'",
		fmt.Sprintf("$script = '%s'", SafeQuote(scriptPath)),
		fmt.Sprintf("$out = '%s'", SafeQuote(stdoutPath)),
		fmt.Sprintf("$err = '%s'", SafeQuote(stderrPath)),
		fmt.Sprintf("$arg = @('-NoProfile','-ExecutionPolicy','Bypass','-Command',\"%s\")", inner),
		fmt.Sprintf("$p = Start-Process %s -PassThru -Wait -Verb RunAs -WindowStyle Hidden -ArgumentList $arg", interpreter),
		"exit $p.ExitCode",
	}
	return strings.Join(parts, "; ")
}

// elevationCommand is the elevating prefix for hosts where elevation keeps
// the child's pipes. The interpreter and its full argument list are passed
// through unchanged, so capture works exactly as in the non-elevated case.
const elevationCommand = "sudo"

// commandArgs is the only interpreter command-line surface this layer
// consumes.
func commandArgs(text string) []string {
	return []string{"-NoProfile", "-Command", text}
}

// scriptContent renders the body written to an allocated script channel for
// elevated inline invocations.
func scriptContent(spec CommandSpec) string {
	body := spec.Body
	if spec.ForceStopOnError {
		body = stopPreamble + "\n" + body
	}
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	return body
}

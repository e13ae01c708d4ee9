package invoke

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/afero"

	"psrun/pkg/broker"
	"psrun/pkg/channel"
	"psrun/pkg/log"
	"psrun/pkg/runner"
	"psrun/pkg/shell"
	"psrun/pkg/textenc"
)

// Options configures an Invoker. Every field is optional.
type Options struct {
	// Interpreter is the interpreter binary name or path. Empty means the
	// host's conventional default.
	Interpreter string
	// Capabilities, when set, skips the per-invocation version probe.
	Capabilities *shell.Capabilities
	// Launcher overrides process launching; tests use this.
	Launcher broker.Launcher
	// Runner executes the version probe.
	Runner runner.CommandRunner
	// Fs backs the relay channel files.
	Fs afero.Fs
	// TempDir overrides the OS temporary directory for relay files.
	TempDir string
	// DefaultTimeout applies when a spec carries no timeout. Zero waits
	// forever.
	DefaultTimeout time.Duration
	Logger         log.Logger
}

// Invoker runs one CommandSpec at a time. Safe for concurrent use: each Run
// owns its own allocator and handle, and shares nothing mutable.
type Invoker struct {
	interpreter    string
	caps           *shell.Capabilities
	broker         *broker.Broker
	runner         runner.CommandRunner
	fs             afero.Fs
	tempDir        string
	defaultTimeout time.Duration
	logger         log.Logger
}

// New builds an Invoker, filling unset options with live defaults.
func New(opts Options) *Invoker {
	if opts.Interpreter == "" {
		opts.Interpreter = shell.DefaultInterpreter()
	}
	if opts.Runner == nil {
		opts.Runner = &runner.LiveCommandRunner{}
	}
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = log.NopLogger{}
	}
	return &Invoker{
		interpreter:    opts.Interpreter,
		caps:           opts.Capabilities,
		broker:         broker.New(opts.Launcher, opts.Logger),
		runner:         opts.Runner,
		fs:             opts.Fs,
		tempDir:        opts.TempDir,
		defaultTimeout: opts.DefaultTimeout,
		logger:         opts.Logger,
	}
}

// Run executes one spec synchronously and always returns a Result; every
// failure is carried in Result.Status, never as a panic or error. The calling
// goroutine blocks until the child completes or the timeout elapses.
func (inv *Invoker) Run(ctx context.Context, spec CommandSpec) Result {
	var res Result

	caps, err := inv.resolveCaps(ctx)
	if err != nil {
		inv.logger.Error("capability probe failed", "error", err)
		res.Status = StatusLaunchFailure
		res.Warnings = append(res.Warnings, fmt.Sprintf("capability probe failed: %v", err))
		return res
	}

	strategy := shell.Plan(spec.Elevate, caps)
	inv.logger.Debug("invocation planned",
		"strategy", strategy.String(), "elevate", spec.Elevate, "script_file", spec.IsScriptFile)

	alloc := channel.NewAllocator(inv.fs, inv.tempDir)
	defer func() {
		if err := alloc.ReleaseAll(); err != nil {
			inv.logger.Warn("channel cleanup incomplete", "error", err)
		}
	}()

	var stdoutBuf, stderrBuf bytes.Buffer
	req := broker.LaunchRequest{
		Interpreter: inv.interpreter,
		Stdout:      &stdoutBuf,
		Stderr:      &stderrBuf,
		Elevated:    spec.Elevate,
	}

	relay := spec.Elevate && strategy == shell.FileRelay
	var stdoutPath, stderrPath string
	switch {
	case !spec.Elevate:
		req.Args = commandArgs(directText(inv.interpreter, spec))
	case !relay:
		// Pipe-preserving elevation: the unchanged interpreter invocation
		// runs behind an elevating prefix, so the child's streams stay
		// wired to the same pipes as the non-elevated case.
		req.Interpreter = elevationCommand
		req.Args = append([]string{inv.interpreter}, commandArgs(directText(inv.interpreter, spec))...)
	default:
		scriptPath := spec.Body
		if !spec.IsScriptFile {
			scriptPath, err = inv.materializeScript(alloc, spec, caps)
			if err != nil {
				res.Status = StatusLaunchFailure
				res.Warnings = append(res.Warnings, err.Error())
				return res
			}
		}
		if stdoutPath, err = alloc.Allocate(channel.KindStdout); err == nil {
			stderrPath, err = alloc.Allocate(channel.KindStderr)
		}
		if err != nil {
			res.Status = StatusLaunchFailure
			res.Warnings = append(res.Warnings, err.Error())
			return res
		}
		req.Args = commandArgs(elevatedText(
			inv.interpreter, scriptPath, stdoutPath, stderrPath,
			spec.PropagateExitCode, spec.ForceStopOnError && spec.IsScriptFile))
	}

	handle, err := inv.broker.Launch(ctx, req)
	if err != nil {
		inv.logger.Error("launch failed", "error", err)
		res.Status = StatusLaunchFailure
		res.Warnings = append(res.Warnings, err.Error())
		return res
	}

	timeout := spec.Timeout
	if timeout == 0 {
		timeout = inv.defaultTimeout
	}
	wres := inv.broker.Wait(handle, timeout)
	if wres.TimedOut {
		inv.logger.Warn("invocation timed out", "timeout", timeout)
		res.Status = StatusTimeout
		return res
	}

	rawOut, rawErr := stdoutBuf.Bytes(), stderrBuf.Bytes()
	if relay {
		// The wrapper itself must stay silent; anything on its streams means
		// the elevation request failed before the body executed.
		if len(bytes.TrimSpace(rawOut)) > 0 || len(bytes.TrimSpace(rawErr)) > 0 {
			return inv.wrapperFailure(rawOut, rawErr)
		}
		rawOut = inv.readRelay(alloc, stdoutPath, &res)
		rawErr = inv.readRelay(alloc, stderrPath, &res)
	}

	hint := textenc.UTF8NoBOM
	if relay {
		// Only redirected files carry the interpreter's default encoding;
		// piped console output is 8-bit on every version.
		hint = caps.DefaultEncoding
	}
	var warnings []string
	res.Stdout, warnings = textenc.Decode(rawOut, hint)
	res.Warnings = append(res.Warnings, warnings...)
	res.Stderr, warnings = textenc.Decode(rawErr, hint)
	res.Warnings = append(res.Warnings, warnings...)

	// Exit code zero cannot be told apart from "no native exit code was
	// ever set"; report it as absent and let the stderr heuristic decide.
	if wres.ExitCode != 0 {
		code := wres.ExitCode
		res.ExitCode = &code
	}
	res.Status = Resolve(false, false, res.ExitCode, res.Stderr)

	inv.logger.Debug("invocation finished", "status", res.Status.String())
	return res
}

func (inv *Invoker) resolveCaps(ctx context.Context) (shell.Capabilities, error) {
	if inv.caps != nil {
		return *inv.caps, nil
	}
	return shell.Probe(ctx, inv.runner, inv.interpreter)
}

func (inv *Invoker) materializeScript(alloc *channel.Allocator, spec CommandSpec, caps shell.Capabilities) (string, error) {
	path, err := alloc.Allocate(channel.KindScript)
	if err != nil {
		return "", err
	}
	if err := alloc.WriteScript(path, scriptContent(spec), caps.DefaultEncoding); err != nil {
		return "", err
	}
	return path, nil
}

// wrapperFailure turns unexpected wrapper output into a LaunchFailure result,
// classifying the text so callers can tell a declined consent prompt from a
// blocked interpreter.
func (inv *Invoker) wrapperFailure(rawOut, rawErr []byte) Result {
	var res Result
	outText, w1 := textenc.Decode(rawOut, textenc.UTF8NoBOM)
	errText, w2 := textenc.Decode(rawErr, textenc.UTF8NoBOM)
	res.Warnings = append(res.Warnings, w1...)
	res.Warnings = append(res.Warnings, w2...)

	res.Stderr = strings.TrimSpace(strings.TrimSpace(outText) + "\n" + strings.TrimSpace(errText))
	if cause := Classify(res.Stderr); cause != nil {
		res.Warnings = append(res.Warnings, cause.Error())
	}
	res.Status = StatusLaunchFailure
	inv.logger.Error("elevation wrapper produced unexpected output", "stderr", res.Stderr)
	return res
}

func (inv *Invoker) readRelay(alloc *channel.Allocator, path string, res *Result) []byte {
	raw, err := alloc.ReadBack(path)
	if err != nil {
		inv.logger.Warn("relay readback failed", "path", path, "error", err)
		res.Warnings = append(res.Warnings, err.Error())
		return nil
	}
	return raw
}

// Package broker launches the interpreter and owns the wait/termination
// boundary. Elevated invocations go through a non-elevated wrapper process
// whose command text performs the OS elevation request, so every handle exposes
// the same blocking wait regardless of path; callers never branch on which path
// was used after launch.
package broker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"psrun/pkg/log"
)

// Process is the minimal handle contract the broker needs from a launched
// child: a blocking wait, a forced kill, and an exit code readable after wait.
type Process interface {
	Wait() error
	Kill() error
	ExitCode() int
}

// Launcher starts the interpreter process. Implementations other than
// ExecLauncher exist only in tests.
type Launcher interface {
	Launch(ctx context.Context, name string, args []string, stdout, stderr io.Writer) (Process, error)
}

// ExecLauncher launches via os/exec with stdin closed, stdout/stderr wired to
// the given writers, and any OS console-window presentation disabled for the
// child.
type ExecLauncher struct{}

func (ExecLauncher) Launch(ctx context.Context, name string, args []string, stdout, stderr io.Writer) (Process, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = nil
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	hideConsoleWindow(cmd)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd}, nil
}

type execProcess struct {
	cmd     *exec.Cmd
	waitErr error
}

func (p *execProcess) Wait() error {
	p.waitErr = p.cmd.Wait()
	return p.waitErr
}

func (p *execProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	err := p.cmd.Process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

func (p *execProcess) ExitCode() int {
	if p.cmd.ProcessState != nil {
		return p.cmd.ProcessState.ExitCode()
	}
	if p.waitErr == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(p.waitErr, &exitErr) && exitErr.ProcessState != nil {
		return exitErr.ProcessState.ExitCode()
	}
	return -1
}

// killReapGrace bounds how long Wait lingers for a killed child to be reaped.
const killReapGrace = 2 * time.Second

// Broker owns launch and wait for one interpreter process at a time. A Broker
// itself is stateless; every Launch returns a Handle scoped to one invocation.
type Broker struct {
	launcher Launcher
	logger   log.Logger
}

// New returns a Broker using the given launcher. A nil launcher means
// ExecLauncher; a nil logger means no logging.
func New(launcher Launcher, logger log.Logger) *Broker {
	if launcher == nil {
		launcher = ExecLauncher{}
	}
	if logger == nil {
		logger = log.NopLogger{}
	}
	return &Broker{launcher: launcher, logger: logger}
}

// LaunchRequest names the interpreter and the fully assembled argument list.
// Stream wiring and any elevation request are already committed by the time
// the request reaches the broker: elevated invocations carry the elevation
// verb and relay redirection inside Args, not here.
type LaunchRequest struct {
	Interpreter string
	Args        []string
	Stdout      io.Writer
	Stderr      io.Writer
	Elevated    bool
}

// Handle is the per-invocation wait handle. Never retained across calls.
type Handle struct {
	proc Process
	done chan error
}

// Launch starts the interpreter. A returned error means the OS could not
// create the process at all.
func (b *Broker) Launch(ctx context.Context, req LaunchRequest) (*Handle, error) {
	b.logger.Debug("launching interpreter", "interpreter", req.Interpreter, "elevated", req.Elevated)
	proc, err := b.launcher.Launch(ctx, req.Interpreter, req.Args, req.Stdout, req.Stderr)
	if err != nil {
		return nil, fmt.Errorf("launching %s: %w", req.Interpreter, err)
	}
	h := &Handle{proc: proc, done: make(chan error, 1)}
	go func() {
		h.done <- proc.Wait()
	}()
	return h, nil
}

// WaitResult reports how a launched process finished.
type WaitResult struct {
	ExitCode int
	TimedOut bool
	Err      error
}

// Wait blocks until the process exits or the timeout elapses. A timeout of
// zero waits forever. On timeout the process is forcibly terminated,
// best-effort; an elevation consent prompt has no programmatic cancellation,
// so this external deadline is the only way out of it.
func (b *Broker) Wait(h *Handle, timeout time.Duration) WaitResult {
	var deadline <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		deadline = t.C
	}

	select {
	case err := <-h.done:
		return WaitResult{ExitCode: h.proc.ExitCode(), Err: err}
	case <-deadline:
		if err := h.proc.Kill(); err != nil {
			b.logger.Warn("terminating timed-out process", "error", err)
		}
		// Reap the killed child so no wait goroutine lingers, but do not
		// hang on an unkillable one.
		select {
		case <-h.done:
		case <-time.After(killReapGrace):
			b.logger.Warn("timed-out process not reaped within grace period")
		}
		return WaitResult{TimedOut: true}
	}
}

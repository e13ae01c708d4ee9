package shell

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"psrun/pkg/runner"
	"psrun/pkg/textenc"
)

// versionQuery asks the interpreter for its major version. Works on every
// version back to Windows PowerShell 2.
const versionQuery = "$PSVersionTable.PSVersion.Major"

// Probe resolves the interpreter's capabilities by running a version query.
// The result is intended to be resolved once and threaded through as data.
func Probe(ctx context.Context, r runner.CommandRunner, interpreter string) (Capabilities, error) {
	out, err := r.Run(ctx, interpreter, "-NoProfile", "-Command", versionQuery)
	if err != nil {
		return Capabilities{}, fmt.Errorf("probing %s: %w", interpreter, err)
	}

	// Version probes come back in the interpreter's own console encoding;
	// a 16-bit marker shows up when stdout is a redirected file on 5.x.
	text, _ := textenc.Decode(out, textenc.UTF8NoBOM)
	major, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return Capabilities{}, fmt.Errorf("parsing version from %q: %w", strings.TrimSpace(text), err)
	}

	return CapabilitiesForVersion(major), nil
}

// CapabilitiesForVersion maps a major interpreter version to its capability
// descriptor on the current host.
func CapabilitiesForVersion(major int) Capabilities {
	return capabilitiesFor(major, runtime.GOOS)
}

func capabilitiesFor(major int, goos string) Capabilities {
	caps := Capabilities{MajorVersion: major}
	if major >= 6 {
		caps.DefaultEncoding = textenc.UTF8NoBOM
		caps.HasRedirectStandardFlags = true
	} else {
		caps.DefaultEncoding = textenc.UTF16LEBOM
	}
	// UAC elevation launches through the shell service and severs stream
	// inheritance; sudo-style elevation keeps the pipes.
	caps.SupportsDirectRedirectWithElevation = goos != "windows"
	return caps
}

// DefaultInterpreter returns the conventional interpreter binary name for the
// current host: Windows PowerShell on Windows, PowerShell 7+ elsewhere.
func DefaultInterpreter() string {
	if runtime.GOOS == "windows" {
		return "powershell"
	}
	return "pwsh"
}

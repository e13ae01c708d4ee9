// Package channel manages the short-lived backing files used to relay output
// out of an elevated child process when direct pipe redirection is unavailable.
//
// Each invocation owns its own Allocator; uniqueness of generated names is the
// only isolation mechanism between concurrent invocations.
package channel

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"psrun/pkg/textenc"
)

// Kind identifies the purpose of an allocated channel file.
type Kind int

const (
	KindScript Kind = iota
	KindStdout
	KindStderr
)

func (k Kind) String() string {
	switch k {
	case KindScript:
		return "script"
	case KindStdout:
		return "stdout"
	case KindStderr:
		return "stderr"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// suffix returns the file suffix for a kind. Script channels must end in .ps1
// or the interpreter refuses to dot-source or call them.
func (k Kind) suffix() string {
	if k == KindScript {
		return ".ps1"
	}
	return ".tmp"
}

// Allocator creates and owns temporary relay files for a single invocation.
// ReleaseAll must run on every exit path of the owning invocation and is
// idempotent.
type Allocator struct {
	fs  afero.Fs
	dir string

	mu    sync.Mutex
	paths []string
}

// NewAllocator returns an allocator creating files under dir on fs. An empty
// dir means the OS temporary directory.
func NewAllocator(fs afero.Fs, dir string) *Allocator {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Allocator{fs: fs, dir: dir}
}

// Allocate creates a uniquely named, exclusively owned backing file for the
// given kind and returns its path. The file exists and is empty on return.
func (a *Allocator) Allocate(kind Kind) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.fs.MkdirAll(a.dir, 0o700); err != nil {
		return "", fmt.Errorf("creating channel directory %s: %w", a.dir, err)
	}

	f, err := afero.TempFile(a.fs, a.dir, "psrun-"+kind.String()+"-"+uuid.NewString()+"-*"+kind.suffix())
	if err != nil {
		return "", fmt.Errorf("allocating %s channel: %w", kind, err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		_ = a.fs.Remove(path)
		return "", fmt.Errorf("closing %s channel: %w", kind, err)
	}

	a.paths = append(a.paths, path)
	return path, nil
}

// WriteScript writes a script body to an allocated script channel in the
// interpreter's native encoding. A byte order mark is included for 16-bit
// encodings so the readback normalization can detect endianness.
func (a *Allocator) WriteScript(path, body string, enc textenc.Encoding) error {
	raw, err := textenc.EncodeNative(body, enc)
	if err != nil {
		return fmt.Errorf("encoding script body: %w", err)
	}
	if err := afero.WriteFile(a.fs, path, raw, 0o600); err != nil {
		return fmt.Errorf("writing script channel %s: %w", path, err)
	}
	return nil
}

// ReadBack returns the raw bytes relayed through an allocated channel file.
func (a *Allocator) ReadBack(path string) ([]byte, error) {
	raw, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading channel %s: %w", path, err)
	}
	return raw, nil
}

// ReleaseAll deletes every file this allocator created. Safe to call multiple
// times; files already gone are not an error.
func (a *Allocator) ReleaseAll() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var firstErr error
	for _, path := range a.paths {
		if err := a.fs.Remove(path); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = fmt.Errorf("removing channel %s: %w", path, err)
			}
		}
	}
	a.paths = nil
	return firstErr
}

// Count reports how many channel files are currently owned by the allocator.
func (a *Allocator) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.paths)
}

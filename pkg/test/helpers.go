package test

import (
	"os"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// SetupTestFilesystem creates a temporary directory and returns an afero
// filesystem rooted at it, plus a cleanup function that should be deferred.
func SetupTestFilesystem(t *testing.T) (afero.Fs, func()) {
	tempDir, err := os.MkdirTemp("", "psrun-test-")
	require.NoError(t, err)

	fs := afero.NewBasePathFs(afero.NewOsFs(), tempDir)

	return fs, func() {
		os.RemoveAll(tempDir)
	}
}

// SetupMockFilesystem creates an in-memory filesystem for testing.
func SetupMockFilesystem(t *testing.T) afero.Fs {
	return afero.NewMemMapFs()
}

// RequireEqualText fails the test with a character-level diff when the two
// strings differ. Plain require.Equal output is unreadable for multi-line
// interpreter transcripts.
func RequireEqualText(t *testing.T, expected, actual string) {
	t.Helper()
	if expected == actual {
		return
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(expected, actual, false)
	t.Fatalf("text mismatch:\n--- diff ---\n%s\n--- end diff ---", dmp.DiffPrettyText(diffs))
}

// CreateTestFile creates a file with content in the test filesystem.
func CreateTestFile(t *testing.T, fs afero.Fs, path, content string) {
	err := afero.WriteFile(fs, path, []byte(content), 0644)
	require.NoError(t, err)
}

// AssertFileGone checks that no file exists at path.
func AssertFileGone(t *testing.T, fs afero.Fs, path string) {
	exists, err := afero.Exists(fs, path)
	require.NoError(t, err)
	require.False(t, exists, "File %s should have been removed", path)
}

package channel

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"psrun/pkg/test"
	"psrun/pkg/textenc"
)

func TestAllocate_CreatesUniqueFiles(t *testing.T) {
	fs := test.SetupMockFilesystem(t)
	a := NewAllocator(fs, "/tmp/psrun")

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		path, err := a.Allocate(KindStdout)
		require.NoError(t, err)

		assert.False(t, seen[path], "path %s allocated twice", path)
		seen[path] = true

		exists, err := afero.Exists(fs, path)
		require.NoError(t, err)
		assert.True(t, exists)
	}
	assert.Equal(t, 20, a.Count())
}

func TestAllocate_ScriptSuffix(t *testing.T) {
	fs := test.SetupMockFilesystem(t)
	a := NewAllocator(fs, "/tmp/psrun")

	script, err := a.Allocate(KindScript)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(script, ".ps1"), "script channel %s must end in .ps1", script)

	stderr, err := a.Allocate(KindStderr)
	require.NoError(t, err)
	assert.False(t, strings.HasSuffix(stderr, ".ps1"))
}

func TestWriteScript_NativeEncodingWithMarker(t *testing.T) {
	fs := test.SetupMockFilesystem(t)
	a := NewAllocator(fs, "/tmp/psrun")

	path, err := a.Allocate(KindScript)
	require.NoError(t, err)
	require.NoError(t, a.WriteScript(path, "Write-Output 'hi'", textenc.UTF16LEBOM))

	raw, err := a.ReadBack(path)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(raw), 2)
	assert.Equal(t, []byte{0xFF, 0xFE}, raw[:2], "16-bit script channels must carry a byte order mark")

	decoded, warnings := textenc.Decode(raw, textenc.UTF16LEBOM)
	assert.Equal(t, "Write-Output 'hi'", decoded)
	assert.Empty(t, warnings)
}

func TestReleaseAll_RemovesEverything(t *testing.T) {
	fs := test.SetupMockFilesystem(t)
	a := NewAllocator(fs, "/tmp/psrun")

	var paths []string
	for _, kind := range []Kind{KindScript, KindStdout, KindStderr} {
		p, err := a.Allocate(kind)
		require.NoError(t, err)
		paths = append(paths, p)
	}

	require.NoError(t, a.ReleaseAll())
	for _, p := range paths {
		test.AssertFileGone(t, fs, p)
	}
	assert.Equal(t, 0, a.Count())
}

func TestReleaseAll_OnRealFilesystem(t *testing.T) {
	fs, cleanup := test.SetupTestFilesystem(t)
	defer cleanup()

	a := NewAllocator(fs, "/channels")
	p, err := a.Allocate(KindStdout)
	require.NoError(t, err)
	require.NoError(t, a.WriteScript(p, "x", textenc.UTF8NoBOM))

	require.NoError(t, a.ReleaseAll())
	test.AssertFileGone(t, fs, p)
}

func TestReleaseAll_Idempotent(t *testing.T) {
	fs := test.SetupMockFilesystem(t)
	a := NewAllocator(fs, "/tmp/psrun")

	_, err := a.Allocate(KindStdout)
	require.NoError(t, err)

	require.NoError(t, a.ReleaseAll())
	require.NoError(t, a.ReleaseAll())
	require.NoError(t, a.ReleaseAll())
}

func TestReleaseAll_ToleratesExternallyDeletedFiles(t *testing.T) {
	fs := test.SetupMockFilesystem(t)
	a := NewAllocator(fs, "/tmp/psrun")

	p, err := a.Allocate(KindStderr)
	require.NoError(t, err)

	// The elevated child may fail before the relay file is ever written, or
	// something external may have removed it. Cleanup must not care.
	require.NoError(t, fs.Remove(p))
	require.NoError(t, a.ReleaseAll())
}

func TestNewAllocator_DefaultsToOSTempDir(t *testing.T) {
	a := NewAllocator(test.SetupMockFilesystem(t), "")
	assert.NotEmpty(t, a.dir)
}

func TestAllocatorsAreIsolated(t *testing.T) {
	fs := test.SetupMockFilesystem(t)
	a := NewAllocator(fs, "/tmp/psrun")
	b := NewAllocator(fs, "/tmp/psrun")

	pa, err := a.Allocate(KindStdout)
	require.NoError(t, err)
	pb, err := b.Allocate(KindStdout)
	require.NoError(t, err)
	require.NotEqual(t, pa, pb)

	require.NoError(t, a.ReleaseAll())

	// b's file survives a's cleanup.
	exists, err := afero.Exists(fs, pb)
	require.NoError(t, err)
	assert.True(t, exists)
}

package gitsync

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSentinels(t *testing.T) *Sentinels {
	t.Helper()
	workDir := t.TempDir()
	gitDir := filepath.Join(workDir, ".git")
	require.NoError(t, os.MkdirAll(gitDir, 0o755))
	return NewSentinels(workDir, gitDir)
}

func TestSentinels_UnsyncedMarkerLifecycle(t *testing.T) {
	s := newTestSentinels(t)

	assert.False(t, s.HasUnsynced())

	require.NoError(t, s.SetUnsynced())
	assert.True(t, s.HasUnsynced())

	// setting twice is a no-op
	require.NoError(t, s.SetUnsynced())
	assert.True(t, s.HasUnsynced())

	require.NoError(t, s.ClearUnsynced())
	assert.False(t, s.HasUnsynced())

	// clearing an absent marker is fine
	require.NoError(t, s.ClearUnsynced())
}

func TestSentinels_SizeCaches(t *testing.T) {
	s := newTestSentinels(t)

	// unreadable caches default to zero
	assert.Equal(t, uint64(0), s.WorkingSize())
	assert.Equal(t, uint64(0), s.HistorySize())

	require.NoError(t, os.WriteFile(filepath.Join(s.workDir, "a.txt"), []byte("12345"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.gitDir, "objects"), []byte("123"), 0o644))

	s.RefreshSizes()

	assert.Equal(t, uint64(5), s.WorkingSize(), "metadata dir excluded from working size")
	assert.GreaterOrEqual(t, s.HistorySize(), uint64(3))
}

func TestSentinels_CorruptSizeCacheReadsAsZero(t *testing.T) {
	s := newTestSentinels(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.gitDir, workingSizeName), []byte("not a number"), 0o644))
	assert.Equal(t, uint64(0), s.WorkingSize())
}

func TestSentinels_KeepEmptyDirs(t *testing.T) {
	s := newTestSentinels(t)

	empty := filepath.Join(s.workDir, "photos", "2024")
	require.NoError(t, os.MkdirAll(empty, 0o755))
	full := filepath.Join(s.workDir, "docs")
	require.NoError(t, os.MkdirAll(full, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(full, "guide.md"), []byte("x"), 0o644))

	require.NoError(t, s.KeepEmptyDirs())

	assert.FileExists(t, filepath.Join(empty, ".empty"))
	assert.NoFileExists(t, filepath.Join(full, ".empty"))
	assert.NoFileExists(t, filepath.Join(s.gitDir, ".empty"), "metadata dir is never touched")
}

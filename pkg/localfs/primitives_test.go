package localfs

import (
	"os"
	"path/filepath"
	"runtime"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inode(t *testing.T, path string) uint64 {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	stat, ok := info.Sys().(*syscall.Stat_t)
	require.True(t, ok, "only meaningful on platforms exposing syscall.Stat_t")
	return stat.Ino
}

func TestTouch_UpdatesModTime(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "f")
	writeFile(t, path, "x")

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, past, past))

	frozen := time.Now()
	restoreNow := stubNow(frozen)
	defer restoreNow()

	require.NoError(t, touch(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.WithinDuration(t, frozen, info.ModTime(), time.Second)
}

func TestTouch_MissingFileFails(t *testing.T) {
	root := t.TempDir()
	err := touch(filepath.Join(root, "absent"))
	require.Error(t, err)
	assert.Equal(t, KindFileNotFound, errKind(err))
}

func TestMoveViaHardlink_SameVolumeSharesInodeThenUnlinksSource(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hardlinks behave differently on windows")
	}
	root := t.TempDir()
	source := filepath.Join(root, "src")
	target := filepath.Join(root, "dst")
	writeFile(t, source, "payload")
	sourceInode := inode(t, source)

	require.NoError(t, moveViaHardlink(source, target))

	assert.Equal(t, sourceInode, inode(t, target))
	_, err := os.Stat(source)
	assert.True(t, os.IsNotExist(err), "source must be unlinked after move")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestCopyViaHardlink_SharesInode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hardlinks behave differently on windows")
	}
	root := t.TempDir()
	source := filepath.Join(root, "src")
	target := filepath.Join(root, "dst")
	writeFile(t, source, "payload")

	require.NoError(t, copyViaHardlink(source, target))

	assert.Equal(t, inode(t, source), inode(t, target))
}

func TestCopyViaTempDir_CopiesBytesIntoDistinctInode(t *testing.T) {
	root := t.TempDir()
	tempDir := filepath.Join(root, ".upload")
	require.NoError(t, os.MkdirAll(tempDir, 0o755))
	source := filepath.Join(root, "src")
	target := filepath.Join(root, "dst")
	writeFile(t, source, "payload")

	require.NoError(t, copyViaTempDir(source, target, tempDir))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	if runtime.GOOS != "windows" {
		assert.NotEqual(t, inode(t, source), inode(t, target))
	}
}

func TestCopyViaTempDir_RemovesStagingFileOnFailure(t *testing.T) {
	root := t.TempDir()
	tempDir := filepath.Join(root, ".upload")
	require.NoError(t, os.MkdirAll(tempDir, 0o755))
	source := filepath.Join(root, "does-not-exist")
	target := filepath.Join(root, "dst")

	err := copyViaTempDir(source, target, tempDir)
	require.Error(t, err)

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "staging file must be removed after a failed copy")
}

func TestDoCopy_SamePathOnlyTouches(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "f")
	writeFile(t, path, "x")
	before := inode(t, path)

	require.NoError(t, doCopy(path, path, filepath.Join(root, ".upload"), true, false))

	assert.Equal(t, before, inode(t, path))
}

func TestDoCopy_UsesTempDirWhenHardlinkDisabled(t *testing.T) {
	root := t.TempDir()
	tempDir := filepath.Join(root, ".upload")
	require.NoError(t, os.MkdirAll(tempDir, 0o755))
	source := filepath.Join(root, "src")
	writeFile(t, source, "payload")
	target := filepath.Join(root, "dst")

	require.NoError(t, doCopy(source, target, tempDir, false, false))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.NotEqual(t, inode(t, source), inode(t, target))
}

func TestDoMove_SamePathOnlyTouches(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "f")
	writeFile(t, path, "x")

	require.NoError(t, doMove(path, path, false))

	_, err := os.Stat(path)
	require.NoError(t, err)
}

// stubNow overrides the package's now() hook for the duration of a test and
// returns a func to restore it.
func stubNow(t2 time.Time) func() {
	prev := now
	now = func() time.Time { return t2 }
	return func() { now = prev }
}

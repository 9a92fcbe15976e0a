package localfs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) (*resolver, string) {
	t.Helper()
	root := t.TempDir()
	tempDir := filepath.Join(root, ".upload")
	return newResolver(root, tempDir), root
}

func TestResolver_ResolvesUnderRoot(t *testing.T) {
	res, root := newTestResolver(t)

	path, err := res.resolve("a/b.txt")
	require.Nil(t, err)
	assert.True(t, isDescendant(root, path), "resolved path %q must be a descendant of %q", path, root)
	assert.Equal(t, filepath.Join(root, "a", "b.txt"), path)
}

func TestResolver_RejectsEmptyName(t *testing.T) {
	res, _ := newTestResolver(t)

	_, err := res.resolve("")
	require.NotNil(t, err)
	assert.Equal(t, KindForbiddenPath, err.Kind)
}

func TestResolver_RejectsTraversalEscapingRoot(t *testing.T) {
	res, _ := newTestResolver(t)

	_, err := res.resolve("../escape")
	require.NotNil(t, err)
	assert.Equal(t, KindForbiddenPath, err.Kind)
}

func TestResolver_RejectsDeepTraversalEscapingRoot(t *testing.T) {
	res, _ := newTestResolver(t)

	_, err := res.resolve("a/b/../../../escape")
	require.NotNil(t, err)
	assert.Equal(t, KindForbiddenPath, err.Kind)
}

func TestResolver_AllowsInternalDotDotThatStaysUnderRoot(t *testing.T) {
	res, root := newTestResolver(t)

	path, err := res.resolve("a/b/../c.txt")
	require.Nil(t, err)
	assert.Equal(t, filepath.Join(root, "a", "c.txt"), path)
}

func TestResolver_RejectsTempDirItself(t *testing.T) {
	res, _ := newTestResolver(t)

	_, err := res.resolve(".upload")
	require.NotNil(t, err)
	assert.Equal(t, KindForbiddenPath, err.Kind)
}

func TestResolver_RejectsNameInsideTempDir(t *testing.T) {
	res, _ := newTestResolver(t)

	_, err := res.resolve(".upload/staged-file")
	require.NotNil(t, err)
	assert.Equal(t, KindForbiddenPath, err.Kind)
}

func TestResolver_RelativeNameRoundTrips(t *testing.T) {
	res, root := newTestResolver(t)

	path, err := res.resolve("a/b/c.txt")
	require.Nil(t, err)

	assert.Equal(t, "a/b/c.txt", res.relativeName(path))
	_ = root
}

package localfs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_StringIsHumanReadable(t *testing.T) {
	assert.Equal(t, "ForbiddenPath", KindForbiddenPath.String())
	assert.Equal(t, "BatchError", KindBatch.String())
}

func TestError_IsMatchesByKindOnly(t *testing.T) {
	a := newError(KindFileNotFound, "a", "", nil)
	b := newError(KindFileNotFound, "b", "different message", errors.New("cause"))
	c := newError(KindIsADirectory, "a", "", nil)

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestNormalizeScalar_PassesThroughDomainError(t *testing.T) {
	res, _ := newTestResolver(t)
	original := newError(KindIllegalOffset, "n", "", nil)

	got := normalizeScalar(res, "n", original)
	assert.Same(t, original, got)
}

func TestNormalizeScalar_NotExistBecomesFileNotFound(t *testing.T) {
	res, _ := newTestResolver(t)

	got := normalizeScalar(res, "missing", os.ErrNotExist)
	require.NotNil(t, got)
	assert.Equal(t, KindFileNotFound, got.Kind)
}

func TestNormalizeScalar_ExistingDirectoryBecomesIsADirectory(t *testing.T) {
	res, root := newTestResolver(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "d"), 0o755))

	got := normalizeScalar(res, "d", os.ErrExist)
	require.NotNil(t, got)
	assert.Equal(t, KindIsADirectory, got.Kind)
}

func TestNormalizeScalar_ExistingFileBecomesPathContainsFile(t *testing.T) {
	res, root := newTestResolver(t)
	writeFile(t, filepath.Join(root, "f"), "x")

	got := normalizeScalar(res, "f", os.ErrExist)
	require.NotNil(t, got)
	assert.Equal(t, KindPathContainsFile, got.Kind)
}

func TestNormalizeScalar_MalformedGlobPassesThroughKind(t *testing.T) {
	res, _ := newTestResolver(t)

	got := normalizeScalar(res, "*", errMalformedGlob)
	require.NotNil(t, got)
	assert.Equal(t, KindMalformedGlob, got.Kind)
}

func TestBatchError_UnwrapSingleCollapsesOneEntry(t *testing.T) {
	inner := newError(KindFileNotFound, "a", "", nil)
	batch := &BatchError{Failures: map[string]*Error{"a": inner}}

	assert.Same(t, inner, batch.unwrapSingle())
}

func TestBatchError_UnwrapSingleRejectsMultipleEntries(t *testing.T) {
	batch := &BatchError{Failures: map[string]*Error{
		"a": newError(KindFileNotFound, "a", "", nil),
		"b": newError(KindIsADirectory, "b", "", nil),
	}}

	got := batch.unwrapSingle()
	require.NotNil(t, got)
	assert.Equal(t, KindIOError, got.Kind)
}

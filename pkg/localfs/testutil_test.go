package localfs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newTestStore opens a Store rooted at a fresh t.TempDir(), applying opts on
// top of the package defaults, and registers Close as a cleanup.
func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := New(context.Background(), t.TempDir(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// mustUpload streams data into name via Upload and waits for publication,
// failing the test on any error.
func mustUpload(t *testing.T, s *Store, name string, data []byte) Info {
	t.Helper()
	ctx := context.Background()
	sink, results, err := s.Upload(ctx, name)
	require.NoError(t, err)
	require.NoError(t, sink.Send(ctx, data))
	sink.Close(ctx, nil)

	result := waitUpload(t, results)
	require.NoError(t, result.Err)
	return result.Info
}

func waitUpload(t *testing.T, results <-chan UploadResult) UploadResult {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for upload result")
		return UploadResult{}
	}
}

func waitAppend(t *testing.T, results <-chan AppendResult) AppendResult {
	t.Helper()
	select {
	case r := <-results:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for append result")
		return AppendResult{}
	}
}

// mustDownloadAll opens a Download and drains it to a byte slice.
func mustDownloadAll(t *testing.T, s *Store, name string, offset, limit int64) []byte {
	t.Helper()
	ctx := context.Background()
	source, err := s.Download(ctx, name, offset, limit)
	require.NoError(t, err)

	var out []byte
	for {
		block, err := source.Next(ctx)
		if err != nil {
			break
		}
		out = append(out, block...)
	}
	return out
}

// errKind returns the Kind of err if it is a *Error, or -1 otherwise.
func errKind(err error) Kind {
	domainErr, ok := err.(*Error)
	if !ok {
		return -1
	}
	return domainErr.Kind
}

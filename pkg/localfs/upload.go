package localfs

import (
	"context"
	"os"
	"time"
)

// UploadResult is delivered once an upload started with Upload/UploadSized
// finishes, successfully or not.
type UploadResult struct {
	Info Info
	Err  error
}

// Upload begins publishing a new object under name, returning a Sink the
// caller streams bytes into and a channel that receives exactly one
// UploadResult once the Sink is closed and the bytes have been published
// (or the upload has failed/aborted).
//
// This realizes the upload state machine of §4.8: staged → streaming →
// publishing → published | aborted. Closing the Sink with a non-nil error,
// or cancelling ctx before the Sink is closed, takes the aborted branch and
// best-effort unlinks the staging file.
func (s *Store) Upload(ctx context.Context, name string) (*Sink, <-chan UploadResult, error) {
	return s.upload(ctx, name, -1)
}

// UploadSized is Upload with an exact expected byte count enforced: if the
// Sink is closed having transferred a different number of bytes, the
// upload fails with KindUnexpectedSize and no file appears at name.
func (s *Store) UploadSized(ctx context.Context, name string, size int64) (*Sink, <-chan UploadResult, error) {
	return s.upload(ctx, name, size)
}

func (s *Store) upload(ctx context.Context, name string, expectedSize int64) (*Sink, <-chan UploadResult, error) {
	start := time.Now()

	target, rErr := s.resolve(name)
	if rErr != nil {
		s.metrics.ObserveUpload(0, time.Since(start), rErr)
		return nil, nil, rErr
	}

	staging, err := await(ctx, s.pool, s.loop, func() (*os.File, error) {
		return os.CreateTemp(s.tempDir, uploadTempPrefix)
	})
	if err != nil {
		domainErr := normalizeScalar(s.resolver, name, err)
		s.metrics.ObserveUpload(0, time.Since(start), domainErr)
		return nil, nil, domainErr
	}
	stagingPath := staging.Name()

	sink, source := newPipe()
	results := make(chan UploadResult, 1)

	go s.runUpload(ctx, start, name, target, stagingPath, staging, source, expectedSize, results)

	return sink, results, nil
}

func (s *Store) runUpload(
	ctx context.Context,
	start time.Time,
	name, target, stagingPath string,
	staging *os.File,
	source *Source,
	expectedSize int64,
	results chan<- UploadResult,
) {
	written, copyErr := source.WriteTo(ctx, staging, s.pool, s.loop)
	if copyErr == nil && ctx.Err() != nil {
		// ctx was cancelled before the end of stream was observed.
		copyErr = ctx.Err()
	}

	closeErr := staging.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr == nil && s.synced {
		fsyncFile(stagingPath)
	}

	if copyErr == nil && expectedSize >= 0 && written != expectedSize {
		copyErr = newError(KindUnexpectedSize, name, "", nil)
	}

	if copyErr != nil {
		s.abortUpload(stagingPath)
		domainErr := normalizeScalar(s.resolver, name, copyErr)
		s.metrics.ObserveUpload(written, time.Since(start), domainErr)
		results <- UploadResult{Err: domainErr}
		return
	}

	publishErr := ensureTargetVoid(target, s.synced, func(target string) error {
		if err := os.Rename(stagingPath, target); err != nil {
			return err
		}
		return nil
	})
	if publishErr != nil {
		s.abortUpload(stagingPath)
		domainErr := normalizeScalar(s.resolver, name, publishErr)
		s.metrics.ObserveUpload(written, time.Since(start), domainErr)
		results <- UploadResult{Err: domainErr}
		return
	}

	info, statErr := statInfo(s.resolver, target)
	if statErr != nil {
		domainErr := normalizeScalar(s.resolver, name, statErr)
		s.metrics.ObserveUpload(written, time.Since(start), domainErr)
		results <- UploadResult{Err: domainErr}
		return
	}

	s.metrics.ObserveUpload(written, time.Since(start), nil)
	results <- UploadResult{Info: info}
}

// abortUpload best-effort removes a staging file left behind by a failed or
// cancelled upload, matching the aborted branch of the upload state machine.
func (s *Store) abortUpload(stagingPath string) {
	_ = os.Remove(stagingPath)
}

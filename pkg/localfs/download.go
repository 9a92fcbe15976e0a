package localfs

import (
	"context"
	"io"
	"os"
	"time"
)

// Unbounded, passed as limit to Download to read to end of file, mirroring
// the Java source's sentinel-max limit.
const Unbounded int64 = -1

// Download opens name for reading starting at offset, bounded by limit
// bytes (or to EOF when limit is Unbounded), and returns a Source the
// caller drains.
//
// This realizes the download state machine of §4.8: opening validates
// offset against the current size, streaming delivers up to limit bytes.
func (s *Store) Download(ctx context.Context, name string, offset, limit int64) (*Source, error) {
	start := time.Now()

	if offset < 0 {
		err := newError(KindIllegalOffset, name, "", nil)
		s.metrics.ObserveDownload(0, time.Since(start), err)
		return nil, err
	}

	target, rErr := s.resolve(name)
	if rErr != nil {
		s.metrics.ObserveDownload(0, time.Since(start), rErr)
		return nil, rErr
	}

	file, err := await(ctx, s.pool, s.loop, func() (*os.File, error) {
		return openDownloadTarget(target, offset)
	})
	if err != nil {
		domainErr := normalizeScalar(s.resolver, name, err)
		s.metrics.ObserveDownload(0, time.Since(start), domainErr)
		return nil, domainErr
	}

	sink, source := newPipe()
	go s.runDownload(ctx, start, name, file, sink, limit)

	return source, nil
}

func openDownloadTarget(target string, offset int64) (*os.File, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, newError(KindIsADirectory, "", "", nil)
	}
	if offset > info.Size() {
		return nil, newError(KindIllegalOffset, "", "", nil)
	}

	file, err := os.Open(target)
	if err != nil {
		return nil, err
	}
	if offset > 0 {
		if _, err := file.Seek(offset, io.SeekStart); err != nil {
			_ = file.Close()
			return nil, err
		}
	}
	return file, nil
}

func (s *Store) runDownload(ctx context.Context, start time.Time, name string, file *os.File, sink *Sink, limit int64) {
	defer func() { _ = file.Close() }()

	reader := io.Reader(file)
	if limit >= 0 {
		reader = io.LimitReader(file, limit)
	}

	buf := make([]byte, s.readerBufferSize)
	var total int64
	var streamErr error

	for {
		n, err := await(ctx, s.pool, s.loop, func() (int, error) {
			return reader.Read(buf)
		})
		if n > 0 {
			if sendErr := sink.Send(ctx, buf[:n]); sendErr != nil {
				streamErr = sendErr
				break
			}
			total += int64(n)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			streamErr = err
			break
		}
	}

	sink.Close(ctx, streamErr)
	s.metrics.ObserveDownload(total, time.Since(start), streamErr)
}

package localfs

import (
	"context"
	"os"
	"time"
)

// AppendResult is delivered once an append started with Append finishes.
type AppendResult struct {
	Info Info
	Err  error
}

// Append opens name for writing starting at offset and returns a Sink the
// caller streams additional bytes into, plus a channel receiving exactly
// one AppendResult once the Sink closes.
//
// This realizes the append state machine of §4.8: opening → writing →
// closed. At opening, a zero offset creates the file if absent; any other
// offset requires the file to already exist and not exceed it in size.
func (s *Store) Append(ctx context.Context, name string, offset int64) (*Sink, <-chan AppendResult, error) {
	beginStart := time.Now()

	if offset < 0 {
		err := newError(KindIllegalOffset, name, "", nil)
		s.metrics.ObserveAppendBegin(time.Since(beginStart), err)
		return nil, nil, err
	}

	target, rErr := s.resolve(name)
	if rErr != nil {
		s.metrics.ObserveAppendBegin(time.Since(beginStart), rErr)
		return nil, nil, rErr
	}

	file, err := await(ctx, s.pool, s.loop, func() (*os.File, error) {
		return openAppendTarget(target, offset, s.syncedAppend)
	})
	if err != nil {
		domainErr := normalizeScalar(s.resolver, name, err)
		s.metrics.ObserveAppendBegin(time.Since(beginStart), domainErr)
		return nil, nil, domainErr
	}

	s.metrics.ObserveAppendBegin(time.Since(beginStart), nil)

	sink, source := newPipe()
	results := make(chan AppendResult, 1)

	go s.runAppend(ctx, name, target, file, source, results)

	return sink, results, nil
}

// openAppendTarget implements the "opening" state: create-if-absent at
// offset zero, otherwise require existence and offset <= size. syncedAppend
// opens the file with O_SYNC, matching the synced_append configuration
// knob.
func openAppendTarget(target string, offset int64, syncedAppend bool) (*os.File, error) {
	flags := os.O_RDWR
	if syncedAppend {
		flags |= os.O_SYNC
	}

	if offset == 0 {
		return os.OpenFile(target, flags|os.O_CREATE, 0o644)
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if offset > info.Size() {
		return nil, newError(KindIllegalOffset, "", "", nil)
	}

	file, err := os.OpenFile(target, flags, 0o644)
	if err != nil {
		return nil, err
	}
	if _, err := file.Seek(offset, 0); err != nil {
		_ = file.Close()
		return nil, err
	}
	return file, nil
}

func (s *Store) runAppend(ctx context.Context, name, target string, file *os.File, source *Source, results chan<- AppendResult) {
	finishStart := time.Now()

	written, copyErr := source.WriteTo(ctx, file, s.pool, s.loop)

	// At close, force durability if synced is requested and the file was
	// not already opened with the synchronous-write flag.
	if copyErr == nil && s.synced && !s.syncedAppend {
		if err := file.Sync(); err != nil {
			copyErr = err
		}
	}

	closeErr := file.Close()
	if copyErr == nil {
		copyErr = closeErr
	}

	if copyErr != nil {
		domainErr := normalizeScalar(s.resolver, name, copyErr)
		s.metrics.ObserveAppendFinish(written, time.Since(finishStart), domainErr)
		results <- AppendResult{Err: domainErr}
		return
	}

	info, statErr := statInfo(s.resolver, target)
	if statErr != nil {
		domainErr := normalizeScalar(s.resolver, name, statErr)
		s.metrics.ObserveAppendFinish(written, time.Since(finishStart), domainErr)
		results <- AppendResult{Err: domainErr}
		return
	}

	s.metrics.ObserveAppendFinish(written, time.Since(finishStart), nil)
	results <- AppendResult{Info: info}
}
